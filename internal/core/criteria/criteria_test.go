package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderFromValues_EmptyTypeIsNone(t *testing.T) {
	for _, field := range []string{"", "email", "CreatedAt"} {
		o, err := OrderFromValues(field, "")
		require.NoError(t, err)
		assert.Equal(t, OrderNone, o.OrderType(), field)
	}
}

func TestOrderFromValues_CaseInsensitive(t *testing.T) {
	for _, s := range []string{"asc", "ASC", "Asc"} {
		o, err := OrderFromValues("email", s)
		require.NoError(t, err)
		assert.Equal(t, OrderAsc, o.OrderType())
	}

	o, err := OrderFromValues("email", "dEsC")
	require.NoError(t, err)
	assert.Equal(t, OrderDesc, o.OrderType())
	assert.Equal(t, "email", o.OrderBy().Value())
}

func TestOrderFromValues_Unknown(t *testing.T) {
	_, err := OrderFromValues("email", "sideways")
	assert.ErrorIs(t, err, ErrUnknownOrderType)
}

func TestNoOrder(t *testing.T) {
	o := NoOrder()
	assert.Equal(t, "", o.OrderBy().Value())
	assert.Equal(t, OrderNone, o.OrderType())
	assert.False(t, New(nil, &o).HasOrder())
}

func TestCriteria_HasOrder(t *testing.T) {
	asc := NewOrder(NewOrderBy("email"), OrderAsc)
	blank := NewOrder(NewOrderBy("  "), OrderDesc)
	none := NewOrder(NewOrderBy("email"), OrderNone)

	assert.True(t, New(nil, &asc).HasOrder())
	assert.False(t, New(nil, &blank).HasOrder())
	assert.False(t, New(nil, &none).HasOrder())
	assert.False(t, New(nil, nil).HasOrder())
}

func TestCriteria_HasFilters(t *testing.T) {
	field, _ := NewFilterField("email")
	value, _ := NewFilterValue("x")

	assert.True(t, New(NewFilters(NewFilter(field, Equal, value)), nil).HasFilters())
	assert.False(t, New(NewFilters(), nil).HasFilters())
}

func TestCriteria_Pagination(t *testing.T) {
	c := New(nil, nil)
	_, ok := c.Limit()
	assert.False(t, ok)
	_, ok = c.Offset()
	assert.False(t, ok)

	c = New(nil, nil, WithLimit(5), WithOffset(10))
	limit, ok := c.Limit()
	assert.True(t, ok)
	assert.EqualValues(t, 5, limit)
	offset, ok := c.Offset()
	assert.True(t, ok)
	assert.EqualValues(t, 10, offset)

	l := uint32(3)
	c = New(nil, nil, WithPagination(&l, nil))
	limit, _ = c.Limit()
	assert.EqualValues(t, 3, limit)
	_, ok = c.Offset()
	assert.False(t, ok)
}
