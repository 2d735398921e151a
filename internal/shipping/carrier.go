// Package shipping talks to the carrier API: address master data, fee and
// lead time quotes, shipment creation and label printing.
package shipping

import (
	"context"
	"time"

	"fashion-shop/internal/model"

	"github.com/shopspring/decimal"
)

// ServiceName identifies the carrier in upstream errors.
const ServiceName = "shipping"

// Config is the carrier account and endpoint configuration.
type Config struct {
	BaseURL        string
	PrintURL       string
	Token          string
	ShopID         int
	ServiceID      int
	FromDistrictID int
	Timeout        time.Duration
}

// Province is a first-level administrative area.
type Province struct {
	ID   int    `json:"ProvinceID"`
	Name string `json:"ProvinceName"`
}

// District belongs to a province.
type District struct {
	ID         int    `json:"DistrictID"`
	ProvinceID int    `json:"ProvinceID"`
	Name       string `json:"DistrictName"`
}

// Ward belongs to a district and is identified by a string code.
type Ward struct {
	Code       string `json:"WardCode"`
	DistrictID int    `json:"DistrictID"`
	Name       string `json:"WardName"`
}

// QuoteRequest describes a parcel to price or schedule.
type QuoteRequest struct {
	ToDistrictID   int
	ToWardCode     string
	Package        model.Package
	InsuranceValue decimal.Decimal
}

// ShipmentItem is a line printed on the carrier's waybill.
type ShipmentItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// ShipmentRequest asks the carrier to pick up an order.
type ShipmentRequest struct {
	ClientOrderCode string
	Delivery        model.Delivery
	CODAmount       decimal.Decimal
	Items           []ShipmentItem
}

// PageSize is a supported label format.
type PageSize string

const (
	PageA5    PageSize = "A5"
	Page80x80 PageSize = "80x80"
	Page52x70 PageSize = "52x70"
)

// Valid reports whether s is a supported label format.
func (s PageSize) Valid() bool {
	return s == PageA5 || s == Page80x80 || s == Page52x70
}

// Directory serves address master data.
type Directory interface {
	Provinces(ctx context.Context) ([]Province, error)
	Districts(ctx context.Context, provinceID int) ([]District, error)
	Wards(ctx context.Context, districtID int) ([]Ward, error)
}

// Carrier is the full carrier API.
type Carrier interface {
	Directory

	CalculateFee(ctx context.Context, req QuoteRequest) (decimal.Decimal, error)
	EstimateLeadTime(ctx context.Context, req QuoteRequest) (time.Time, error)
	CreateShipment(ctx context.Context, req ShipmentRequest) (model.Shipment, error)

	// PrintURL returns a link to the waybill of deliveryCode.
	PrintURL(ctx context.Context, deliveryCode string, size PageSize) (string, error)
}
