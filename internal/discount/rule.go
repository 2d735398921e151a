// Package discount decides whether a discount code applies to a set of order
// lines and how much it takes off. It also loads bulk code definitions.
package discount

import (
	"fmt"

	"fashion-shop/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Rule is the amount rule of a discount code. The only implementations are
// FlatAmount and Percent.
type Rule interface {
	rule()
}

// FlatAmount takes a fixed amount off the eligible subtotal.
type FlatAmount struct {
	Value decimal.Decimal
}

// Percent takes a percentage of the eligible subtotal, optionally capped.
type Percent struct {
	Value decimal.Decimal
	Cap   *decimal.Decimal
}

func (FlatAmount) rule() {}
func (Percent) rule()    {}

// RuleOf reads the amount rule stored on a discount code.
func RuleOf(code *model.DiscountCode) (Rule, error) {
	switch code.Type {
	case model.DiscountTypeMoney:
		return FlatAmount{Value: code.Discount}, nil
	case model.DiscountTypePercent:
		return Percent{Value: code.Discount, Cap: code.MaximumDiscount}, nil
	}
	return nil, fmt.Errorf("discount code %s has unknown type %q", code.Code, code.Type)
}

// Amount applies rule to the eligible subtotal. The result is never negative
// and never exceeds the subtotal. Percent amounts keep their fraction up to
// the two decimal places prices are stored with.
func Amount(rule Rule, eligible decimal.Decimal) decimal.Decimal {
	if !eligible.IsPositive() {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch r := rule.(type) {
	case FlatAmount:
		amount = decimal.Min(r.Value, eligible)
	case Percent:
		amount = eligible.Mul(r.Value).Div(hundred).Round(2)
		if r.Cap != nil {
			amount = decimal.Min(amount, *r.Cap)
		}
		amount = decimal.Min(amount, eligible)
	default:
		panic(fmt.Sprintf("discount: unhandled rule %T", rule))
	}

	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}
