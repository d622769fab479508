// Package criteria holds the storage-neutral description of a query: which
// rows to keep, how to order them and which window of them to return.
package criteria

type Criteria struct {
	filters *Filters
	order   *Order
	limit   *uint32
	offset  *uint32
}

type Option func(*Criteria)

func WithLimit(limit uint32) Option {
	return func(c *Criteria) { c.limit = &limit }
}

func WithOffset(offset uint32) Option {
	return func(c *Criteria) { c.offset = &offset }
}

// WithPagination sets limit and offset when present.
func WithPagination(limit, offset *uint32) Option {
	return func(c *Criteria) {
		if limit != nil {
			l := *limit
			c.limit = &l
		}
		if offset != nil {
			o := *offset
			c.offset = &o
		}
	}
}

func New(filters *Filters, order *Order, opts ...Option) *Criteria {
	c := &Criteria{filters: filters, order: order}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Criteria) Filters() *Filters { return c.filters }
func (c *Criteria) Order() *Order     { return c.order }

func (c *Criteria) Limit() (uint32, bool) {
	if c.limit == nil {
		return 0, false
	}
	return *c.limit, true
}

func (c *Criteria) Offset() (uint32, bool) {
	if c.offset == nil {
		return 0, false
	}
	return *c.offset, true
}

func (c *Criteria) HasFilters() bool {
	return c.filters.Len() > 0
}

func (c *Criteria) HasOrder() bool {
	return c.order != nil &&
		c.order.orderType != OrderNone &&
		c.order.orderBy.value != ""
}
