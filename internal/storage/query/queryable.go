package query

import (
	"context"
	"reflect"
	"slices"
)

// Queryable is a lazily composed query over entities of type T. Each method
// returns a new Queryable and leaves the receiver untouched; nothing runs
// until All is called.
type Queryable[T any] interface {
	Where(e Expr) Queryable[T]
	OrderBy(field ResolvedField, dir Direction) Queryable[T]
	Skip(n int) Queryable[T]
	Take(n int) Queryable[T]
	All(ctx context.Context) ([]T, error)
}

// Slice is the in-memory Queryable.
type Slice[T any] struct {
	source []T
	ops    []func([]T) []T
}

// FromSlice wraps items. The slice is read when All runs, not copied here.
func FromSlice[T any](items []T) *Slice[T] {
	return &Slice[T]{source: items}
}

func (s *Slice[T]) with(op func([]T) []T) *Slice[T] {
	ops := make([]func([]T) []T, len(s.ops), len(s.ops)+1)
	copy(ops, s.ops)
	return &Slice[T]{source: s.source, ops: append(ops, op)}
}

func (s *Slice[T]) Where(e Expr) Queryable[T] {
	return s.with(func(items []T) []T {
		return slices.DeleteFunc(items, func(item T) bool {
			return !e.Match(reflect.ValueOf(&item))
		})
	})
}

// OrderBy sorts stably. Entities whose field cannot be read sort last when
// ascending and first when descending.
func (s *Slice[T]) OrderBy(field ResolvedField, dir Direction) Queryable[T] {
	return s.with(func(items []T) []T {
		keys := make(map[int]reflect.Value, len(items))
		idx := make([]int, len(items))
		for i := range items {
			idx[i] = i
			if v, ok := field.value(reflect.ValueOf(&items[i])); ok {
				keys[i] = v
			}
		}

		slices.SortStableFunc(idx, func(a, b int) int {
			n := compareKeys(keys[a], keys[b])
			if dir == Descending {
				return -n
			}
			return n
		})

		sorted := make([]T, len(items))
		for i, j := range idx {
			sorted[i] = items[j]
		}
		return sorted
	})
}

func compareKeys(a, b reflect.Value) int {
	switch {
	case !a.IsValid() && !b.IsValid():
		return 0
	case !a.IsValid():
		return 1
	case !b.IsValid():
		return -1
	}
	n, _ := compare(a, b)
	return n
}

func (s *Slice[T]) Skip(n int) Queryable[T] {
	return s.with(func(items []T) []T {
		if n <= 0 {
			return items
		}
		if n >= len(items) {
			return items[:0]
		}
		return items[n:]
	})
}

func (s *Slice[T]) Take(n int) Queryable[T] {
	return s.with(func(items []T) []T {
		if n <= 0 {
			return items[:0]
		}
		if n >= len(items) {
			return items
		}
		return items[:n]
	})
}

func (s *Slice[T]) All(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := slices.Clone(s.source)
	for _, op := range s.ops {
		items = op(items)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
