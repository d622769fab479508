package validation

import (
	"errors"
	"testing"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewRequestValidator()
	if err != nil {
		t.Fatalf("NewRequestValidator() error = %v", err)
	}
	return v
}

func TestValidate_Register(t *testing.T) {
	v := newTestValidator(t)

	valid := `{"email":"jane@example.com","password":"Passw0rd!","full_name":"Jane Doe"}`
	if err := v.Validate(SchemaRegister, []byte(valid)); err != nil {
		t.Errorf("expected valid document, got %v", err)
	}

	err := v.Validate(SchemaRegister, []byte(`{"email":"jane@example.com"}`))
	ve := GetValidationErrors(err)
	if ve == nil {
		t.Fatalf("expected validation errors, got %v", err)
	}

	fields := ve.Fields()
	if _, ok := fields["password"]; !ok {
		t.Errorf("expected password to be reported, got %v", fields)
	}
	if _, ok := fields["full_name"]; !ok {
		t.Errorf("expected full_name to be reported, got %v", fields)
	}
}

func TestValidate_LoginRejectsBadEmail(t *testing.T) {
	v := newTestValidator(t)

	err := v.Validate(SchemaLogin, []byte(`{"email":"not-an-email","password":"x"}`))
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := GetValidationErrors(err).Fields()["email"]; !ok {
		t.Errorf("expected email field error, got %v", err)
	}
}

func TestValidate_Search(t *testing.T) {
	v := newTestValidator(t)

	valid := `{"filters":[{"field":"email","operator":"CONTAINS","value":"x"}],"order_by":"email","order":"DESC","limit":5}`
	if err := v.Validate(SchemaSearch, []byte(valid)); err != nil {
		t.Errorf("expected valid search, got %v", err)
	}

	invalid := []string{
		`{"filters":[{"field":"email","operator":"LIKE","value":"x"}]}`,
		`{"filters":[{"field":"email","operator":"="}]}`,
		`{"limit":-1}`,
		`{"order":"sideways"}`,
		`{"unknown":true}`,
	}
	for _, doc := range invalid {
		if err := v.Validate(SchemaSearch, []byte(doc)); !IsValidationError(err) {
			t.Errorf("Validate(%s) expected validation error, got %v", doc, err)
		}
	}
}

func TestValidate_MalformedJSON(t *testing.T) {
	v := newTestValidator(t)
	if err := v.Validate(SchemaLogin, []byte(`{"email":`)); !IsValidationError(err) {
		t.Errorf("expected validation error for malformed JSON, got %v", err)
	}
}

func TestValidate_UnknownSchema(t *testing.T) {
	v := newTestValidator(t)
	if err := v.Validate("nope", []byte(`{}`)); !errors.Is(err, ErrUnknownSchema) {
		t.Errorf("expected ErrUnknownSchema, got %v", err)
	}
}

func TestNewValidator_RejectsBrokenSchema(t *testing.T) {
	if _, err := NewValidator(map[string]string{"broken": `{"type": 12}`}); err == nil {
		t.Error("expected error for invalid schema")
	}
}
