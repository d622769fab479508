package validation

// Schema names understood by NewRequestValidator.
const (
	SchemaRegister = "register"
	SchemaLogin    = "login"
	SchemaSearch   = "search"
)

const registerSchema = `{
	"type": "object",
	"required": ["email", "password", "full_name"],
	"properties": {
		"email":     {"type": "string", "format": "email", "maxLength": 254},
		"password":  {"type": "string", "minLength": 1},
		"full_name": {"type": "string", "minLength": 1}
	}
}`

const loginSchema = `{
	"type": "object",
	"required": ["email", "password"],
	"properties": {
		"email":    {"type": "string", "format": "email"},
		"password": {"type": "string", "minLength": 1}
	}
}`

const searchSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"filters": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["field", "operator", "value"],
				"additionalProperties": false,
				"properties": {
					"field":    {"type": "string", "minLength": 1},
					"operator": {"enum": ["=", "!=", ">", ">=", "<", "<=", "CONTAINS", "NOT_CONTAINS"]},
					"value":    {"type": "string", "minLength": 1}
				}
			}
		},
		"order_by": {"type": "string"},
		"order":    {"type": "string", "pattern": "^(?i)(asc|desc|none)?$"},
		"limit":    {"type": "integer", "minimum": 0},
		"offset":   {"type": "integer", "minimum": 0}
	}
}`
