package query

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/archetype/archetype/internal/core/criteria"
)

var ErrUnsupportedType = errors.New("unsupported field type")

// CoercionError reports a raw filter value that could not be converted to the
// type of the field it targets.
type CoercionError struct {
	Field string
	Value string
	Type  reflect.Type
	Err   error
}

func (e *CoercionError) Error() string {
	field := e.Field
	if field == "" {
		field = "?"
	}
	return fmt.Sprintf("field %s: cannot use %q as %v: %v", field, e.Value, e.Type, e.Err)
}

func (e *CoercionError) Unwrap() []error {
	if errors.Is(e.Err, ErrUnsupportedType) {
		return []error{e.Err}
	}
	return []error{criteria.ErrInvalidValue, e.Err}
}

var (
	timeType            = reflect.TypeFor[time.Time]()
	uuidType            = reflect.TypeFor[uuid.UUID]()
	decimalType         = reflect.TypeFor[decimal.Decimal]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// Accepted timestamp layouts, tried in order. Layouts without an offset are
// read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Coerce converts raw into a value whose dynamic type is exactly target (or
// its element type when target is a pointer). Failures are *CoercionError.
func Coerce(raw string, target reflect.Type) (any, error) {
	t := deref(target)
	v, err := coerce(raw, t)
	if err != nil {
		return nil, &CoercionError{Value: raw, Type: t, Err: err}
	}
	return v.Interface(), nil
}

func coerce(raw string, t reflect.Type) (reflect.Value, error) {
	if t == nil {
		return reflect.Value{}, ErrUnsupportedType
	}

	switch t {
	case timeType:
		ts, err := parseTime(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(ts), nil
	case uuidType:
		id, err := uuid.Parse(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(id), nil
	case decimalType:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(d), nil
	}

	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		p := reflect.New(t)
		if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
			return reflect.Value{}, err
		}
		return p.Elem(), nil
	}

	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		switch {
		case strings.EqualFold(raw, "true"):
			v.SetBool(true)
		case strings.EqualFold(raw, "false"):
			v.SetBool(false)
		default:
			return reflect.Value{}, errors.New("expected true or false")
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetFloat(n)
	default:
		return reflect.Value{}, ErrUnsupportedType
	}
	return v, nil
}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, errors.New("expected an ISO-8601 date or timestamp")
}
