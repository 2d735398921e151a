package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType is the stored kind of a discount code.
type DiscountType string

const (
	DiscountTypeMoney   DiscountType = "money"
	DiscountTypePercent DiscountType = "percent"
)

// DiscountCode is a promotional code.
type DiscountCode struct {
	ID                 uuid.UUID        `json:"id" db:"id"`
	Code               string           `json:"code" db:"code"`
	Type               DiscountType     `json:"discountType" db:"discount_type"`
	Discount           decimal.Decimal  `json:"discount" db:"discount"`
	MaximumDiscount    *decimal.Decimal `json:"maximumDiscount,omitempty" db:"maximum_discount"`
	StartDate          time.Time        `json:"startDate" db:"start_date"`
	EndDate            time.Time        `json:"endDate" db:"end_date"`
	IsUsageLimit       bool             `json:"isUsageLimit" db:"is_usage_limit"`
	UsageLimit         int              `json:"usageLimit" db:"usage_limit"`
	Used               int              `json:"used" db:"used"`
	UsedBy             []uuid.UUID      `json:"usedBy" db:"used_by"`
	ApplicableProducts []uuid.UUID      `json:"applicableProducts" db:"applicable_products"`
	Disabled           bool             `json:"disabled" db:"disabled"`
	CreatedAt          time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time        `json:"updatedAt" db:"updated_at"`
}

// UsedByUser reports whether userID already redeemed the code.
func (d *DiscountCode) UsedByUser(userID uuid.UUID) bool {
	for _, id := range d.UsedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// Exhausted reports whether a limited code has no uses left.
func (d *DiscountCode) Exhausted() bool {
	return d.IsUsageLimit && d.Used >= d.UsageLimit
}

// DiscountCodeRequest is the staff payload for creating or editing a code.
type DiscountCodeRequest struct {
	Code               string           `json:"code"`
	Type               DiscountType     `json:"discountType"`
	Discount           decimal.Decimal  `json:"discount"`
	MaximumDiscount    *decimal.Decimal `json:"maximumDiscount,omitempty"`
	StartDate          time.Time        `json:"startDate"`
	EndDate            time.Time        `json:"endDate"`
	IsUsageLimit       bool             `json:"isUsageLimit"`
	UsageLimit         int              `json:"usageLimit"`
	ApplicableProducts []uuid.UUID      `json:"applicableProducts"`
}

// DiscountPreviewRequest asks what a code would take off a prospective order.
type DiscountPreviewRequest struct {
	DiscountCode string             `json:"discountCode"`
	Items        []OrderItemRequest `json:"orderItems"`
}

// DiscountPreview is the outcome of a discount calculation.
type DiscountPreview struct {
	Code              string          `json:"discountCode"`
	Discount          decimal.Decimal `json:"discount"`
	TotalProductPrice decimal.Decimal `json:"totalProductPrice"`
}
