package discount

import (
	"time"

	"fashion-shop/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is an order line as the evaluator sees it.
type Line struct {
	ProductID uuid.UUID
	Price     decimal.Decimal
	Quantity  int
}

// Total returns price times quantity.
func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Subtotal sums every line.
func Subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	return total
}

// EligibleSubtotal sums the lines whose product is on the code's allowlist,
// or every line when the allowlist is empty. The boolean reports whether at
// least one line matched.
func EligibleSubtotal(code *model.DiscountCode, lines []Line) (decimal.Decimal, bool) {
	if len(code.ApplicableProducts) == 0 {
		return Subtotal(lines), len(lines) > 0
	}

	allowed := make(map[uuid.UUID]struct{}, len(code.ApplicableProducts))
	for _, id := range code.ApplicableProducts {
		allowed[id] = struct{}{}
	}

	total := decimal.Zero
	matched := false
	for _, l := range lines {
		if _, ok := allowed[l.ProductID]; ok {
			total = total.Add(l.Total())
			matched = true
		}
	}
	return total, matched
}

// CheckEligibility applies every redemption rule for buyer at time now, in a
// fixed order, and returns the first violation.
func CheckEligibility(code *model.DiscountCode, buyer uuid.UUID, lines []Line, now time.Time) error {
	if code == nil || code.Disabled {
		return model.ErrDiscountNotFound
	}
	if now.Before(code.StartDate) {
		return model.ErrDiscountNotStarted
	}
	if now.After(code.EndDate) {
		return model.ErrDiscountExpired
	}
	if code.Exhausted() {
		return model.ErrDiscountExhausted
	}
	if code.UsedByUser(buyer) {
		return model.ErrDiscountAlreadyUsed
	}
	if _, matched := EligibleSubtotal(code, lines); !matched {
		return model.ErrDiscountNotApplied
	}
	return nil
}

// Evaluate checks eligibility and returns the discount amount. Placement and
// preview both go through here so they always agree.
func Evaluate(code *model.DiscountCode, buyer uuid.UUID, lines []Line, now time.Time) (decimal.Decimal, error) {
	if err := CheckEligibility(code, buyer, lines, now); err != nil {
		return decimal.Zero, err
	}

	rule, err := RuleOf(code)
	if err != nil {
		return decimal.Zero, err
	}

	eligible, _ := EligibleSubtotal(code, lines)
	return Amount(rule, eligible), nil
}
