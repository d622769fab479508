package criteria

import (
	"errors"
	"fmt"
)

var ErrUnknownOperator = errors.New("unsupported filter operator")

// Operator is the comparison a Filter applies between a field and a value.
type Operator int

const (
	Equal Operator = iota
	NotEqual
	GreaterThan
	GreaterThanOrEqual
	LessThan
	LessThanOrEqual
	Contains
	NotContains
)

var operatorTokens = map[Operator]string{
	Equal:              "=",
	NotEqual:           "!=",
	GreaterThan:        ">",
	GreaterThanOrEqual: ">=",
	LessThan:           "<",
	LessThanOrEqual:    "<=",
	Contains:           "CONTAINS",
	NotContains:        "NOT_CONTAINS",
}

// ParseOperator maps a symbolic token to its Operator. Tokens are matched
// exactly; anything else is rejected.
func ParseOperator(token string) (Operator, error) {
	for op, t := range operatorTokens {
		if t == token {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOperator, token)
}

func (o Operator) String() string {
	if t, ok := operatorTokens[o]; ok {
		return t
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// IsPositive reports whether the operator selects matching rows rather than
// excluding them.
func (o Operator) IsPositive() bool {
	return o != NotEqual && o != NotContains
}

// IsContainment reports whether the operator has substring semantics.
func (o Operator) IsContainment() bool {
	return o == Contains || o == NotContains
}
