package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Attribute is a name/value pair describing a variant, e.g. Size: M.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Product represents a catalogue product.
type Product struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	Slug       string          `json:"slug" db:"slug"`
	Image      string          `json:"image" db:"image"`
	Category   string          `json:"category" db:"category"`
	Price      decimal.Decimal `json:"price" db:"price"`
	PriceSale  decimal.Decimal `json:"priceSale" db:"price_sale"`
	Quantity   int             `json:"quantity" db:"quantity"`
	TotalSales int             `json:"totalSales" db:"total_sales"`
	Disabled   bool            `json:"disabled" db:"disabled"`
	Deleted    bool            `json:"-" db:"deleted"`
	Variants   []Variant       `json:"variants,omitempty"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time       `json:"updatedAt" db:"updated_at"`
}

// Variant is a purchasable SKU of a product with its own stock and price.
type Variant struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	ProductID  uuid.UUID       `json:"product" db:"product_id"`
	Attributes []Attribute     `json:"attributes" db:"attributes"`
	Image      string          `json:"image,omitempty" db:"image"`
	Price      decimal.Decimal `json:"price" db:"price"`
	PriceSale  decimal.Decimal `json:"priceSale" db:"price_sale"`
	Quantity   int             `json:"quantity" db:"quantity"`
	Weight     int             `json:"weight" db:"weight"` // grams
	Length     int             `json:"length" db:"length"` // centimetres
	Width      int             `json:"width" db:"width"`
	Height     int             `json:"height" db:"height"`
	Disabled   bool            `json:"disabled" db:"disabled"`
	Deleted    bool            `json:"-" db:"deleted"`
}

// VariantDetail is a variant joined with the product fields an order needs.
type VariantDetail struct {
	Variant
	ProductName     string `json:"productName"`
	ProductImage    string `json:"productImage"`
	ProductDisabled bool   `json:"-"`
}

// Available reports whether the variant can be sold.
func (v *VariantDetail) Available() bool {
	return !v.Disabled && !v.Deleted && !v.ProductDisabled
}

// DisplayName renders the product name with its attribute values.
func (v *VariantDetail) DisplayName() string {
	if len(v.Attributes) == 0 {
		return v.ProductName
	}
	values := make([]string, 0, len(v.Attributes))
	for _, a := range v.Attributes {
		values = append(values, a.Value)
	}
	return fmt.Sprintf("%s (%s)", v.ProductName, strings.Join(values, ", "))
}

// ListImage returns the variant image, falling back to the product image.
func (v *VariantDetail) ListImage() string {
	if v.Image != "" {
		return v.Image
	}
	return v.ProductImage
}
