package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultRequiredNote lets the receiver inspect nothing before accepting.
const DefaultRequiredNote = "KHONGCHOXEMHANG"

// Delivery is the shipment record of an order.
type Delivery struct {
	ID             uuid.UUID             `json:"id" db:"id"`
	OrderID        uuid.UUID             `json:"order" db:"order_id"`
	UserID         uuid.UUID             `json:"user" db:"user_id"`
	ToName         string                `json:"to_name" db:"to_name"`
	ToPhone        string                `json:"to_phone" db:"to_phone"`
	ToAddress      string                `json:"to_address" db:"to_address"`
	ToProvinceID   int                   `json:"to_province_id" db:"to_province_id"`
	ToProvinceName string                `json:"to_province_name" db:"to_province_name"`
	ToDistrictID   int                   `json:"to_district_id" db:"to_district_id"`
	ToDistrictName string                `json:"to_district_name" db:"to_district_name"`
	ToWardCode     string                `json:"to_ward_code" db:"to_ward_code"`
	ToWardName     string                `json:"to_ward_name" db:"to_ward_name"`
	Package        Package               `json:"package"`
	ServiceID      int                   `json:"service_id" db:"service_id"`
	InsuranceValue decimal.Decimal       `json:"insurance_value" db:"insurance_value"`
	Note           string                `json:"note" db:"note"`
	RequiredNote   string                `json:"required_note" db:"required_note"`
	Fee            decimal.Decimal       `json:"fee" db:"fee"`
	LeadTime       *time.Time            `json:"leadTime,omitempty" db:"lead_time"`
	DeliveryCode   *string               `json:"deliveryCode,omitempty" db:"delivery_code"`
	Status         string                `json:"status" db:"status"`
	StatusHistory  []DeliveryStatusEntry `json:"statusHistory"`
	CreatedAt      time.Time             `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time             `json:"updatedAt" db:"updated_at"`
}

// Package holds the physical size of a shipment.
type Package struct {
	Weight int `json:"weight"` // grams
	Length int `json:"length"` // centimetres
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DeliveryStatusEntry mirrors a carrier-reported state.
type DeliveryStatusEntry struct {
	Status      string    `json:"status" db:"status"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Shipment is what the carrier returns when a shipping order is created.
type Shipment struct {
	DeliveryCode string
	Fee          decimal.Decimal
	ExpectedAt   *time.Time
}

// ShippingQuoteRequest asks for the fee and lead time of a prospective order.
type ShippingQuoteRequest struct {
	Items      []OrderItemRequest `json:"orderItems"`
	DistrictID int                `json:"district"`
	WardCode   string             `json:"ward"`
}

// ShippingQuote is the carrier's price and arrival estimate.
type ShippingQuote struct {
	Fee      decimal.Decimal `json:"fee"`
	LeadTime time.Time       `json:"leadTime"`
}
