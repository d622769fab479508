package criteria

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyValue      = errors.New("value must not be empty")
	ErrMalformedFilter = errors.New("malformed filter")
)

// Keys expected in a raw filter map.
const (
	KeyField    = "field"
	KeyOperator = "operator"
	KeyValue    = "value"
)

// FilterField names the (possibly dotted) field a filter applies to.
type FilterField struct {
	value string
}

func NewFilterField(value string) (FilterField, error) {
	v, err := nonEmpty(value)
	if err != nil {
		return FilterField{}, fmt.Errorf("filter field: %w", err)
	}
	return FilterField{value: v}, nil
}

func (f FilterField) Value() string  { return f.value }
func (f FilterField) String() string { return f.value }

// FilterValue is the raw, not yet typed, operand of a filter.
type FilterValue struct {
	value string
}

func NewFilterValue(value string) (FilterValue, error) {
	v, err := nonEmpty(value)
	if err != nil {
		return FilterValue{}, fmt.Errorf("filter value: %w", err)
	}
	return FilterValue{value: v}, nil
}

func (f FilterValue) Value() string  { return f.value }
func (f FilterValue) String() string { return f.value }

// Filter is one field/operator/value triple.
type Filter struct {
	field    FilterField
	operator Operator
	value    FilterValue
}

func NewFilter(field FilterField, operator Operator, value FilterValue) Filter {
	return Filter{field: field, operator: operator, value: value}
}

// FilterFromValues builds a Filter from a raw map holding the "field",
// "operator" and "value" keys.
func FilterFromValues(values map[string]string) (Filter, error) {
	for _, key := range []string{KeyField, KeyOperator, KeyValue} {
		if _, ok := values[key]; !ok {
			return Filter{}, fmt.Errorf("%w: missing %q", ErrMalformedFilter, key)
		}
	}

	field, err := NewFilterField(values[KeyField])
	if err != nil {
		return Filter{}, fmt.Errorf("%w: %w", ErrMalformedFilter, err)
	}

	op, err := ParseOperator(values[KeyOperator])
	if err != nil {
		return Filter{}, err
	}

	value, err := NewFilterValue(values[KeyValue])
	if err != nil {
		return Filter{}, fmt.Errorf("%w: %w", ErrMalformedFilter, err)
	}

	return NewFilter(field, op, value), nil
}

func (f Filter) Field() FilterField { return f.field }
func (f Filter) Operator() Operator { return f.operator }
func (f Filter) Value() FilterValue { return f.value }

func (f Filter) String() string {
	return fmt.Sprintf("%s %s %s", f.field, f.operator, f.value)
}

// Filters is an ordered set of filters. A nil *Filters means no filters were
// supplied, which is distinct from an empty set.
type Filters struct {
	values []Filter
}

func NewFilters(filters ...Filter) *Filters {
	return &Filters{values: append([]Filter(nil), filters...)}
}

// FiltersFromValues converts raw filter maps. A nil slice yields nil; a
// non-nil slice, even an empty one, yields a non-nil *Filters.
func FiltersFromValues(raw []map[string]string) (*Filters, error) {
	if raw == nil {
		return nil, nil
	}

	filters := make([]Filter, 0, len(raw))
	for i, values := range raw {
		f, err := FilterFromValues(values)
		if err != nil {
			return nil, fmt.Errorf("filter %d: %w", i, err)
		}
		filters = append(filters, f)
	}
	return &Filters{values: filters}, nil
}

func (f *Filters) Values() []Filter {
	if f == nil {
		return nil
	}
	return append([]Filter(nil), f.values...)
}

func (f *Filters) Len() int {
	if f == nil {
		return 0
	}
	return len(f.values)
}

// Only keeps the raw filters whose field is in allowed, compared
// case-insensitively. A nil input stays nil.
func Only(raw []map[string]string, allowed ...string) []map[string]string {
	if raw == nil {
		return nil
	}

	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
	}

	kept := make([]map[string]string, 0, len(raw))
	for _, filter := range raw {
		field, ok := filter[KeyField]
		if !ok {
			continue
		}
		if _, ok := set[strings.ToLower(strings.TrimSpace(field))]; ok {
			kept = append(kept, filter)
		}
	}
	return kept
}

func nonEmpty(value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", ErrEmptyValue
	}
	return v, nil
}
