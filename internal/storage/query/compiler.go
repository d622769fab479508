// Package query compiles criteria into predicates and orderings over Go
// types and applies them to a Queryable backend.
package query

import (
	"errors"
	"reflect"

	"go.uber.org/zap"

	"github.com/archetype/archetype/internal/core/criteria"
)

// Compiler turns criteria into expressions against a root type. It is safe
// for concurrent use.
type Compiler struct {
	resolver *Resolver
	logger   *zap.Logger
	recorder Recorder
}

type Option func(*Compiler)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithRecorder(recorder Recorder) Option {
	return func(c *Compiler) {
		if recorder != nil {
			c.recorder = recorder
		}
	}
}

// NewCompiler builds a Compiler. A nil resolver gets a private one sharing
// the compiler's recorder.
func NewCompiler(resolver *Resolver, opts ...Option) *Compiler {
	c := &Compiler{
		logger:   zap.NewNop(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if resolver == nil {
		resolver = NewResolver(c.recorder)
	}
	c.resolver = resolver
	return c
}

func (c *Compiler) Resolver() *Resolver {
	return c.resolver
}

// Predicate compiles the filters of crit into one expression over root. It
// returns nil when there is nothing to filter on. Filters naming a field that
// does not exist, or asking for containment on a field without a text form,
// are skipped. A value that cannot be read as its field's type is an error.
func (c *Compiler) Predicate(root reflect.Type, crit *criteria.Criteria) (Expr, error) {
	if crit == nil || !crit.HasFilters() {
		return nil, nil
	}

	var terms Conjunction
	for _, f := range crit.Filters().Values() {
		e, err := c.filter(root, f)
		if err != nil {
			return nil, err
		}
		if e != nil {
			terms = append(terms, e)
		}
	}

	switch len(terms) {
	case 0:
		return nil, nil
	case 1:
		return terms[0], nil
	}
	return terms, nil
}

func (c *Compiler) filter(root reflect.Type, f criteria.Filter) (Expr, error) {
	field := c.resolver.Resolve(root, f.Field().Value())
	if !field.Resolved() {
		c.skip(f, field, SkipUnresolvedField)
		return nil, nil
	}

	if f.Operator().IsContainment() {
		text, ok := textOf(field.Type)
		if !ok {
			c.skip(f, field, SkipNoTextForm)
			return nil, nil
		}
		return Containment{
			Field:     field,
			Substring: f.Value().Value(),
			Negated:   f.Operator() == criteria.NotContains,
			text:      text,
		}, nil
	}

	value, err := Coerce(f.Value().Value(), field.Type)
	if err != nil {
		var ce *CoercionError
		if errors.As(err, &ce) {
			ce.Field = f.Field().Value()
		}
		return nil, err
	}
	return Comparison{Field: field, Operator: f.Operator(), Value: value}, nil
}

func (c *Compiler) skip(f criteria.Filter, field ResolvedField, reason string) {
	c.recorder.FilterSkipped(reason)
	c.logger.Warn("criteria filter skipped",
		zap.String("field", f.Field().Value()),
		zap.String("path", field.Path),
		zap.Stringer("operator", f.Operator()),
		zap.String("reason", reason),
	)
}

// Ordering resolves the order of crit against root. ok is false when crit
// asks for no ordering or names a field that does not exist.
func (c *Compiler) Ordering(root reflect.Type, crit *criteria.Criteria) (field ResolvedField, dir Direction, ok bool) {
	if crit == nil || !crit.HasOrder() {
		return ResolvedField{}, Ascending, false
	}

	order := crit.Order()
	field = c.resolver.Resolve(root, order.OrderBy().Value())
	if !field.Resolved() {
		c.logger.Warn("criteria order skipped",
			zap.String("field", order.OrderBy().Value()),
			zap.String("reason", SkipUnresolvedField),
		)
		return ResolvedField{}, Ascending, false
	}

	if order.OrderType() == criteria.OrderDesc {
		return field, Descending, true
	}
	return field, Ascending, true
}

// ApplyFilters narrows src by the filters of crit.
func ApplyFilters[T any](c *Compiler, src Queryable[T], crit *criteria.Criteria) (Queryable[T], error) {
	e, err := c.Predicate(reflect.TypeFor[T](), crit)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return src, nil
	}
	return src.Where(e), nil
}

// ApplyOrder sorts src by the order of crit, if any.
func ApplyOrder[T any](c *Compiler, src Queryable[T], crit *criteria.Criteria) Queryable[T] {
	field, dir, ok := c.Ordering(reflect.TypeFor[T](), crit)
	if !ok {
		return src
	}
	return src.OrderBy(field, dir)
}

// ApplyOffset skips the first offset rows. A zero offset is a no-op.
func ApplyOffset[T any](src Queryable[T], crit *criteria.Criteria) Queryable[T] {
	if crit == nil {
		return src
	}
	if offset, ok := crit.Offset(); ok && offset > 0 {
		return src.Skip(int(offset))
	}
	return src
}

// ApplyLimit caps src to limit rows. A zero limit means no cap.
func ApplyLimit[T any](src Queryable[T], crit *criteria.Criteria) Queryable[T] {
	if crit == nil {
		return src
	}
	if limit, ok := crit.Limit(); ok && limit > 0 {
		return src.Take(int(limit))
	}
	return src
}

// SearchByCriteria applies filters, ordering, offset and limit to src, in
// that order.
func SearchByCriteria[T any](c *Compiler, src Queryable[T], crit *criteria.Criteria) (Queryable[T], error) {
	q, err := ApplyFilters(c, src, crit)
	if err != nil {
		return nil, err
	}
	q = ApplyOrder(c, q, crit)
	q = ApplyOffset(q, crit)
	return ApplyLimit(q, crit), nil
}
