package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/lib/pq"

	"github.com/archetype/archetype/internal/core/criteria"
	"github.com/archetype/archetype/internal/storage/query"
)

var (
	ErrUnmappedField   = errors.New("field has no column")
	ErrUnsupportedExpr = errors.New("unsupported expression")
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type Scanner interface {
	Scan(dest ...any) error
}

// Table describes how entities of type T are stored. Fields maps resolved
// field paths, as produced by query.Resolver, to column names.
type Table[T any] struct {
	Name    string
	Columns []string
	Fields  map[string]string
	Scan    func(Scanner) (T, error)
}

type ordering struct {
	field query.ResolvedField
	dir   query.Direction
}

// Select is a query.Queryable rendered to a single parameterised SELECT.
type Select[T any] struct {
	db     Querier
	table  *Table[T]
	where  query.Conjunction
	order  []ordering
	offset int
	limit  int
}

func NewSelect[T any](db Querier, table *Table[T]) *Select[T] {
	return &Select[T]{db: db, table: table, limit: -1}
}

func (s *Select[T]) clone() *Select[T] {
	c := *s
	c.where = append(query.Conjunction(nil), s.where...)
	c.order = append([]ordering(nil), s.order...)
	return &c
}

func (s *Select[T]) Where(e query.Expr) query.Queryable[T] {
	c := s.clone()
	c.where = append(c.where, e)
	return c
}

// OrderBy adds a sort key after any already present.
func (s *Select[T]) OrderBy(field query.ResolvedField, dir query.Direction) query.Queryable[T] {
	c := s.clone()
	c.order = append(c.order, ordering{field: field, dir: dir})
	return c
}

func (s *Select[T]) Skip(n int) query.Queryable[T] {
	c := s.clone()
	if n <= 0 {
		return c
	}
	c.offset += n
	if c.limit >= 0 {
		c.limit = max(c.limit-n, 0)
	}
	return c
}

func (s *Select[T]) Take(n int) query.Queryable[T] {
	c := s.clone()
	n = max(n, 0)
	if c.limit < 0 || n < c.limit {
		c.limit = n
	}
	return c
}

// SQL renders the statement and its positional arguments.
func (s *Select[T]) SQL() (string, []any, error) {
	var (
		b    strings.Builder
		args []any
	)

	cols := make([]string, len(s.table.Columns))
	for i, col := range s.table.Columns {
		cols[i] = pq.QuoteIdentifier(col)
	}
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(cols, ", "), pq.QuoteIdentifier(s.table.Name))

	if len(s.where) > 0 {
		cond, err := s.render(s.where, &args)
		if err != nil {
			return "", nil, err
		}
		b.WriteString(" WHERE ")
		b.WriteString(cond)
	}

	if len(s.order) > 0 {
		keys := make([]string, len(s.order))
		for i, o := range s.order {
			col, err := s.column(o.field)
			if err != nil {
				return "", nil, err
			}
			keys[i] = col + " " + o.dir.String()
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(keys, ", "))
	}

	if s.limit >= 0 {
		args = append(args, s.limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if s.offset > 0 {
		args = append(args, s.offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}

	return b.String(), args, nil
}

func (s *Select[T]) render(e query.Expr, args *[]any) (string, error) {
	switch e := e.(type) {
	case query.Conjunction:
		if len(e) == 0 {
			return "TRUE", nil
		}
		parts := make([]string, len(e))
		for i, term := range e {
			p, err := s.render(term, args)
			if err != nil {
				return "", err
			}
			parts[i] = p
		}
		if len(parts) == 1 {
			return parts[0], nil
		}
		return "(" + strings.Join(parts, " AND ") + ")", nil

	case query.Comparison:
		col, err := s.column(e.Field)
		if err != nil {
			return "", err
		}
		op, ok := comparisonOperators[e.Operator]
		if !ok {
			return "", fmt.Errorf("%w: operator %s", ErrUnsupportedExpr, e.Operator)
		}
		*args = append(*args, e.Value)
		return fmt.Sprintf("%s %s $%d", col, op, len(*args)), nil

	case query.Containment:
		col, err := s.column(e.Field)
		if err != nil {
			return "", err
		}
		if e.Field.Type == nil || e.Field.Type.Kind() != reflect.String {
			col = "CAST(" + col + " AS TEXT)"
		}
		op := "LIKE"
		if e.Negated {
			op = "NOT LIKE"
		}
		*args = append(*args, "%"+escapeLike(e.Substring)+"%")
		return fmt.Sprintf(`%s %s $%d ESCAPE '\'`, col, op, len(*args)), nil
	}
	return "", fmt.Errorf("%w: %T", ErrUnsupportedExpr, e)
}

func (s *Select[T]) column(f query.ResolvedField) (string, error) {
	col, ok := s.table.Fields[f.Path]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnmappedField, f.Path)
	}
	return pq.QuoteIdentifier(col), nil
}

var comparisonOperators = map[criteria.Operator]string{
	criteria.Equal:              "=",
	criteria.NotEqual:           "<>",
	criteria.GreaterThan:        ">",
	criteria.GreaterThanOrEqual: ">=",
	criteria.LessThan:           "<",
	criteria.LessThanOrEqual:    "<=",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (s *Select[T]) All(ctx context.Context) ([]T, error) {
	stmt, args, err := s.SQL()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		item, err := s.table.Scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
