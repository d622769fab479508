package query

import (
	"bytes"
	"cmp"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/archetype/archetype/internal/core/criteria"
)

// Direction of an ordering.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// Expr is a boolean predicate over an entity. Backends either evaluate it
// directly through Match or translate the concrete node types.
type Expr interface {
	// Match evaluates the predicate against entity, which may be a struct
	// value or a pointer to one.
	Match(entity reflect.Value) bool
	expr()
}

// Comparison compares a field against a constant already coerced to the
// field's type.
type Comparison struct {
	Field    ResolvedField
	Operator criteria.Operator
	Value    any
}

// Containment tests whether the textual form of a field contains Substring.
type Containment struct {
	Field     ResolvedField
	Substring string
	Negated   bool

	text textFunc
}

// Conjunction holds when every term holds. An empty Conjunction matches
// everything.
type Conjunction []Expr

func (Comparison) expr()  {}
func (Containment) expr() {}
func (Conjunction) expr() {}

func (c Comparison) Match(entity reflect.Value) bool {
	v, ok := c.Field.value(entity)
	if !ok {
		return false
	}
	return matches(c.Operator, v, reflect.ValueOf(c.Value))
}

func (c Containment) Match(entity reflect.Value) bool {
	text := c.text
	if text == nil {
		var ok bool
		if text, ok = textOf(c.Field.Type); !ok {
			return false
		}
	}

	v, ok := c.Field.value(entity)
	if !ok {
		return false
	}
	s, ok := text(v)
	if !ok {
		return false
	}
	return strings.Contains(s, c.Substring) != c.Negated
}

func (c Conjunction) Match(entity reflect.Value) bool {
	for _, e := range c {
		if !e.Match(entity) {
			return false
		}
	}
	return true
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s %s %v", c.Field.Path, c.Operator, c.Value)
}

func (c Containment) String() string {
	op := criteria.Contains
	if c.Negated {
		op = criteria.NotContains
	}
	return fmt.Sprintf("%s %s %q", c.Field.Path, op, c.Substring)
}

func matches(op criteria.Operator, a, b reflect.Value) bool {
	switch op {
	case criteria.Equal, criteria.NotEqual:
		eq, ok := equal(a, b)
		return ok && eq == (op == criteria.Equal)
	}

	n, ok := compare(a, b)
	if !ok {
		return false
	}
	switch op {
	case criteria.GreaterThan:
		return n > 0
	case criteria.GreaterThanOrEqual:
		return n >= 0
	case criteria.LessThan:
		return n < 0
	case criteria.LessThanOrEqual:
		return n <= 0
	}
	return false
}

func equal(a, b reflect.Value) (bool, bool) {
	if n, ok := compare(a, b); ok {
		return n == 0, true
	}
	if a.Type() == b.Type() && a.Comparable() {
		return a.Equal(b), true
	}
	return false, false
}

// compare orders a against b, converting b to a's type when needed. ok is
// false when the type has no natural ordering.
func compare(a, b reflect.Value) (int, bool) {
	if !a.IsValid() || !b.IsValid() {
		return 0, false
	}
	if a.Type() != b.Type() {
		if !b.CanConvert(a.Type()) {
			return 0, false
		}
		b = b.Convert(a.Type())
	}

	if a.CanInterface() && b.CanInterface() {
		switch x := a.Interface().(type) {
		case time.Time:
			return x.Compare(b.Interface().(time.Time)), true
		case uuid.UUID:
			y := b.Interface().(uuid.UUID)
			return bytes.Compare(x[:], y[:]), true
		case decimal.Decimal:
			return x.Cmp(b.Interface().(decimal.Decimal)), true
		}
	}

	switch a.Kind() {
	case reflect.String:
		return strings.Compare(a.String(), b.String()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(a.Uint(), b.Uint()), true
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(a.Float(), b.Float()), true
	case reflect.Bool:
		return cmp.Compare(boolRank(a.Bool()), boolRank(b.Bool())), true
	}
	return 0, false
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

type textFunc func(reflect.Value) (string, bool)

var stringerType = reflect.TypeFor[fmt.Stringer]()

// textOf picks how a field of type t is read as a string for containment:
// the value itself when it is a string, a wrapped string, its String method,
// or the plain formatting of a scalar, in that order of preference.
func textOf(t reflect.Type) (textFunc, bool) {
	if t == nil {
		return nil, false
	}
	if t.Kind() == reflect.String {
		return func(v reflect.Value) (string, bool) { return v.String(), true }, true
	}

	if inner, unwrap, ok := wrapped(t); ok && deref(inner).Kind() == reflect.String {
		return func(v reflect.Value) (string, bool) {
			w, ok := unwrap(v)
			if !ok {
				return "", false
			}
			if w, ok = indirect(w); !ok {
				return "", false
			}
			return w.String(), true
		}, true
	}

	if t.Implements(stringerType) || reflect.PointerTo(t).Implements(stringerType) {
		return func(v reflect.Value) (string, bool) {
			m, ok := method(v, "String")
			if !ok {
				return "", false
			}
			return m.Call(nil)[0].String(), true
		}, true
	}

	switch t.Kind() {
	case reflect.Bool:
		return func(v reflect.Value) (string, bool) { return strconv.FormatBool(v.Bool()), true }, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(v reflect.Value) (string, bool) { return strconv.FormatInt(v.Int(), 10), true }, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(v reflect.Value) (string, bool) { return strconv.FormatUint(v.Uint(), 10), true }, true
	case reflect.Float32, reflect.Float64:
		bits := t.Bits()
		return func(v reflect.Value) (string, bool) { return strconv.FormatFloat(v.Float(), 'f', -1, bits), true }, true
	}
	return nil, false
}
