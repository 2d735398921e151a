package discount

import (
	"strings"

	"fashion-shop/internal/model"
)

const (
	minCodeLength = 4
	maxCodeLength = 32
)

// NormalizeCode trims and upper-cases a code for storage and lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateDefinition checks a staff-supplied or imported code definition.
func ValidateDefinition(req *model.DiscountCodeRequest) error {
	req.Code = NormalizeCode(req.Code)

	if len(req.Code) < minCodeLength || len(req.Code) > maxCodeLength {
		return model.NewValidationError("discount code must be between %d and %d characters", minCodeLength, maxCodeLength)
	}

	switch req.Type {
	case model.DiscountTypeMoney:
		if req.MaximumDiscount != nil {
			return model.NewValidationError("maximum discount only applies to percent codes")
		}
	case model.DiscountTypePercent:
		if req.Discount.GreaterThan(hundred) {
			return model.NewValidationError("percent discount cannot exceed 100")
		}
		if req.MaximumDiscount != nil && !req.MaximumDiscount.IsPositive() {
			return model.NewValidationError("maximum discount must be greater than zero")
		}
	default:
		return model.NewValidationError("discount type must be %q or %q", model.DiscountTypeMoney, model.DiscountTypePercent)
	}

	if !req.Discount.IsPositive() {
		return model.NewValidationError("discount must be greater than zero")
	}

	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return model.NewValidationError("start date and end date are required")
	}
	if !req.EndDate.After(req.StartDate) {
		return model.NewValidationError("end date must be after start date")
	}

	if req.IsUsageLimit && req.UsageLimit < 1 {
		return model.NewValidationError("usage limit must be at least 1")
	}

	return nil
}
