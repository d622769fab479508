package criteria

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownOrderType = errors.New("unsupported order type")

type OrderType int

const (
	OrderNone OrderType = iota
	OrderAsc
	OrderDesc
)

var orderTypeNames = map[OrderType]string{
	OrderNone: "NONE",
	OrderAsc:  "ASC",
	OrderDesc: "DESC",
}

// ParseOrderType parses NONE, ASC or DESC in any casing.
func ParseOrderType(s string) (OrderType, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for t, name := range orderTypeNames {
		if name == upper {
			return t, nil
		}
	}
	return OrderNone, fmt.Errorf("%w: %q", ErrUnknownOrderType, s)
}

func (t OrderType) String() string {
	if name, ok := orderTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("OrderType(%d)", int(t))
}

// OrderBy names the field to sort on. Unlike filter fields it may be empty.
type OrderBy struct {
	value string
}

func NewOrderBy(value string) OrderBy {
	return OrderBy{value: strings.TrimSpace(value)}
}

func (o OrderBy) Value() string  { return o.value }
func (o OrderBy) String() string { return o.value }

type Order struct {
	orderBy   OrderBy
	orderType OrderType
}

func NewOrder(orderBy OrderBy, orderType OrderType) Order {
	return Order{orderBy: orderBy, orderType: orderType}
}

// OrderFromValues builds an Order from raw strings. An empty orderType means
// no ordering regardless of orderBy.
func OrderFromValues(orderBy, orderType string) (Order, error) {
	if strings.TrimSpace(orderType) == "" {
		return NewOrder(NewOrderBy(orderBy), OrderNone), nil
	}

	t, err := ParseOrderType(orderType)
	if err != nil {
		return Order{}, err
	}
	return NewOrder(NewOrderBy(orderBy), t), nil
}

// NoOrder is the no-op ordering.
func NoOrder() Order {
	return NewOrder(NewOrderBy(""), OrderNone)
}

func (o Order) OrderBy() OrderBy     { return o.orderBy }
func (o Order) OrderType() OrderType { return o.orderType }
