package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperator(t *testing.T) {
	cases := map[string]Operator{
		"=":            Equal,
		"!=":           NotEqual,
		">":            GreaterThan,
		">=":           GreaterThanOrEqual,
		"<":            LessThan,
		"<=":           LessThanOrEqual,
		"CONTAINS":     Contains,
		"NOT_CONTAINS": NotContains,
	}
	for token, want := range cases {
		got, err := ParseOperator(token)
		require.NoError(t, err, token)
		assert.Equal(t, want, got)
		assert.Equal(t, token, got.String())
	}
}

func TestParseOperator_Unknown(t *testing.T) {
	for _, token := range []string{"starts_with", "", "contains", "==", "LIKE"} {
		_, err := ParseOperator(token)
		assert.ErrorIs(t, err, ErrUnknownOperator, token)
	}
}

func TestOperator_IsPositive(t *testing.T) {
	assert.False(t, NotEqual.IsPositive())
	assert.False(t, NotContains.IsPositive())
	for _, op := range []Operator{Equal, GreaterThan, GreaterThanOrEqual, LessThan, LessThanOrEqual, Contains} {
		assert.True(t, op.IsPositive(), op.String())
	}
}

func TestNewFilterField_TrimsAndRejectsEmpty(t *testing.T) {
	f, err := NewFilterField("  email ")
	require.NoError(t, err)
	assert.Equal(t, "email", f.Value())

	_, err = NewFilterField("   ")
	assert.ErrorIs(t, err, ErrEmptyValue)

	_, err = NewFilterValue("")
	assert.ErrorIs(t, err, ErrEmptyValue)
}

func TestFilterValues_EqualByValue(t *testing.T) {
	a, _ := NewFilterField("email")
	b, _ := NewFilterField(" email")
	assert.Equal(t, a, b)
	assert.True(t, a == b)
}

func TestFilterFromValues(t *testing.T) {
	f, err := FilterFromValues(map[string]string{
		"field":    "email",
		"operator": "CONTAINS",
		"value":    "@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "email", f.Field().Value())
	assert.Equal(t, Contains, f.Operator())
	assert.Equal(t, "@example.com", f.Value().Value())
}

func TestFilterFromValues_MissingKey(t *testing.T) {
	for _, missing := range []string{"field", "operator", "value"} {
		raw := map[string]string{"field": "email", "operator": "=", "value": "a@b.co"}
		delete(raw, missing)

		_, err := FilterFromValues(raw)
		require.ErrorIs(t, err, ErrMalformedFilter, missing)
		assert.Contains(t, err.Error(), missing)
	}
}

func TestFilterFromValues_UnknownOperator(t *testing.T) {
	_, err := FilterFromValues(map[string]string{"field": "email", "operator": "starts_with", "value": "a"})
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

func TestFiltersFromValues_NilAndEmptyAreDistinct(t *testing.T) {
	none, err := FiltersFromValues(nil)
	require.NoError(t, err)
	assert.Nil(t, none)

	empty, err := FiltersFromValues([]map[string]string{})
	require.NoError(t, err)
	require.NotNil(t, empty)
	assert.Equal(t, 0, empty.Len())

	assert.False(t, New(none, nil).HasFilters())
	assert.False(t, New(empty, nil).HasFilters())
}

func TestFiltersFromValues_KeepsOrder(t *testing.T) {
	filters, err := FiltersFromValues([]map[string]string{
		{"field": "a", "operator": "=", "value": "1"},
		{"field": "b", "operator": ">", "value": "2"},
	})
	require.NoError(t, err)

	values := filters.Values()
	require.Len(t, values, 2)
	assert.Equal(t, "a", values[0].Field().Value())
	assert.Equal(t, "b", values[1].Field().Value())
}

func TestFiltersFromValues_PropagatesErrors(t *testing.T) {
	_, err := FiltersFromValues([]map[string]string{
		{"field": "a", "operator": "=", "value": "1"},
		{"field": "b", "value": "2"},
	})
	assert.ErrorIs(t, err, ErrMalformedFilter)
}

func TestOnly(t *testing.T) {
	raw := []map[string]string{
		{"field": "Email", "operator": "=", "value": "a@b.co"},
		{"field": "passwordHash", "operator": "=", "value": "x"},
		{"field": "fullname", "operator": "CONTAINS", "value": "Jo"},
		{"operator": "=", "value": "orphan"},
	}

	kept := Only(raw, "email", "FullName")
	require.Len(t, kept, 2)
	assert.Equal(t, "Email", kept[0]["field"])
	assert.Equal(t, "fullname", kept[1]["field"])

	filters, err := FiltersFromValues(Only(raw, "email"))
	require.NoError(t, err)
	require.Equal(t, 1, filters.Len())
	assert.Equal(t, "Email", filters.Values()[0].Field().Value())
}

func TestOnly_PreservesNil(t *testing.T) {
	assert.Nil(t, Only(nil, "email"))
	assert.NotNil(t, Only([]map[string]string{}, "email"))
}
