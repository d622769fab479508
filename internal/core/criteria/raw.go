package criteria

import "errors"

// ErrInvalidValue is reported when a filter value cannot be read as the type
// of the field it targets.
var ErrInvalidValue = errors.New("invalid filter value")

// RawQuery is a query as it arrives from a transport, before any validation.
// A nil Filters slice means the caller sent no filters at all.
type RawQuery struct {
	Filters   []map[string]string
	OrderBy   string
	OrderType string
	Limit     *uint32
	Offset    *uint32
}

// IsInvalid reports whether err stems from malformed criteria input rather
// than from the backend evaluating it.
func IsInvalid(err error) bool {
	for _, target := range []error{ErrEmptyValue, ErrMalformedFilter, ErrUnknownOperator, ErrUnknownOrderType, ErrInvalidValue} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
