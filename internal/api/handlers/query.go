package handlers

import (
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/archetype/archetype/internal/core/criteria"
)

// Query string keys that carry ordering and paging rather than filters.
const (
	paramOrderBy = "orderby"
	paramOrder   = "order"
	paramLimit   = "limit"
	paramOffset  = "offset"
)

// operatorSuffixes maps the suffix of a "field-suffix" query key to an
// operator token.
var operatorSuffixes = map[string]string{
	"eq":           criteria.Equal.String(),
	"equals":       criteria.Equal.String(),
	"ne":           criteria.NotEqual.String(),
	"not-equals":   criteria.NotEqual.String(),
	"gt":           criteria.GreaterThan.String(),
	"gte":          criteria.GreaterThanOrEqual.String(),
	"lt":           criteria.LessThan.String(),
	"lte":          criteria.LessThanOrEqual.String(),
	"contains":     criteria.Contains.String(),
	"not-contains": criteria.NotContains.String(),
}

// ParseListQuery turns a query string such as
//
//	?email-contains=example&createdAt-gte=2024-01-01&orderBy=email&order=asc&limit=10
//
// into a RawQuery. A key without a suffix filters by equality; an unknown
// suffix falls back to CONTAINS. Keys or values that are empty are dropped.
// Limit and offset that do not parse as unsigned integers are ignored.
func ParseListQuery(values url.Values) criteria.RawQuery {
	raw := criteria.RawQuery{Filters: []map[string]string{}}

	for _, key := range slices.Sorted(maps.Keys(values)) {
		first := strings.TrimSpace(values.Get(key))

		switch strings.ToLower(key) {
		case paramOrderBy:
			raw.OrderBy = first
			continue
		case paramOrder:
			raw.OrderType = first
			continue
		case paramLimit:
			raw.Limit = parseUint32(first)
			continue
		case paramOffset:
			raw.Offset = parseUint32(first)
			continue
		}

		field, operator := splitFilterKey(key)
		if field == "" {
			continue
		}
		for _, v := range values[key] {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			raw.Filters = append(raw.Filters, map[string]string{
				criteria.KeyField:    field,
				criteria.KeyOperator: operator,
				criteria.KeyValue:    v,
			})
		}
	}

	return raw
}

func splitFilterKey(key string) (field, operator string) {
	field, suffix, found := strings.Cut(strings.TrimSpace(key), "-")
	if !found {
		return field, criteria.Equal.String()
	}
	if op, ok := operatorSuffixes[strings.ToLower(suffix)]; ok {
		return field, op
	}
	return field, criteria.Contains.String()
}

func parseUint32(s string) *uint32 {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return nil
	}
	v := uint32(n)
	return &v
}
