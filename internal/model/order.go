package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents a customer order.
type Order struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	UserID            uuid.UUID       `json:"user" db:"user_id"`
	Username          string          `json:"username" db:"username"`
	Items             []OrderItem     `json:"orderItems"`
	ShippingAddress   ShippingAddress `json:"shippingAddress" db:"shipping_address"`
	TotalProductPrice decimal.Decimal `json:"totalProductPrice" db:"total_product_price"`
	ShippingPrice     decimal.Decimal `json:"shippingPrice" db:"shipping_price"`
	TotalDiscount     decimal.Decimal `json:"totalDiscount" db:"total_discount"`
	TotalPayment      decimal.Decimal `json:"totalPayment" db:"total_payment"`
	Status            OrderStatus     `json:"status" db:"status"`
	StatusHistory     []StatusEntry   `json:"statusHistory"`
	Delivery          *Delivery       `json:"delivery,omitempty"`
	Payment           *Payment        `json:"paymentInformation,omitempty"`
	DiscountCode      *string         `json:"discountCode,omitempty" db:"discount_code"`
	Disabled          bool            `json:"disabled" db:"disabled"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item snapshot taken at purchase time.
type OrderItem struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	OrderID        uuid.UUID       `json:"-" db:"order_id"`
	ProductID      uuid.UUID       `json:"product" db:"product_id"`
	VariantID      uuid.UUID       `json:"variant" db:"variant_id"`
	Name           string          `json:"name" db:"name"`
	Image          string          `json:"image" db:"image"`
	Attributes     []Attribute     `json:"attributes" db:"attributes"`
	Price          decimal.Decimal `json:"price" db:"price"`
	Quantity       int             `json:"quantity" db:"quantity"`
	IsAbleToReview bool            `json:"isAbleToReview" db:"is_able_to_review"`
}

// LineTotal returns price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ShippingAddress is the destination chosen by the buyer.
type ShippingAddress struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	ProvinceID   int    `json:"province"`
	DistrictID   int    `json:"district"`
	WardCode     string `json:"ward"`
	ProvinceName string `json:"provinceName,omitempty"`
	DistrictName string `json:"districtName,omitempty"`
	WardName     string `json:"wardName,omitempty"`
}

// StatusEntry is one append-only record of the order history.
type StatusEntry struct {
	Status      OrderStatus `json:"status" db:"status"`
	Description string      `json:"description" db:"description"`
	UpdatedBy   *uuid.UUID  `json:"updatedBy,omitempty" db:"updated_by"`
	Role        Role        `json:"role,omitempty" db:"role"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
}

// NewStatusEntry records a status change made by actor.
func NewStatusEntry(status OrderStatus, description string, actor *Actor) StatusEntry {
	entry := StatusEntry{Status: status, Description: description}
	if actor != nil {
		id := actor.ID
		entry.UpdatedBy = &id
		entry.Role = actor.Role
	}
	return entry
}

// LastLifecycleStatus returns the most recent history entry that is an
// order lifecycle state, skipping orthogonal annotations like paid.
func (o *Order) LastLifecycleStatus() (OrderStatus, bool) {
	for i := len(o.StatusHistory) - 1; i >= 0; i-- {
		if o.StatusHistory[i].Status.IsLifecycle() {
			return o.StatusHistory[i].Status, true
		}
	}
	return "", false
}

// VariantIDs returns the variants referenced by the order lines.
func (o *Order) VariantIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(o.Items))
	for i, item := range o.Items {
		ids[i] = item.VariantID
	}
	return ids
}

// Totals is the price breakdown of an order.
type Totals struct {
	ProductPrice  decimal.Decimal
	ShippingPrice decimal.Decimal
	Discount      decimal.Decimal
	Payment       decimal.Decimal
}

// ComputeTotals applies max(0, product + shipping - discount).
func ComputeTotals(productPrice, shippingPrice, discount decimal.Decimal) Totals {
	payment := productPrice.Add(shippingPrice).Sub(discount)
	if payment.IsNegative() {
		payment = decimal.Zero
	}
	return Totals{
		ProductPrice:  productPrice,
		ShippingPrice: shippingPrice,
		Discount:      discount,
		Payment:       payment,
	}
}

// PlaceOrderRequest represents the request payload for placing an order.
type PlaceOrderRequest struct {
	ShippingAddress ShippingAddress    `json:"shippingAddress"`
	PaymentMethod   PaymentMethod      `json:"paymentMethod"`
	Items           []OrderItemRequest `json:"orderItems"`
	DiscountCode    string             `json:"discountCode,omitempty"`
	Note            string             `json:"note,omitempty"`
	RequiredNote    string             `json:"requiredNote,omitempty"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	VariantID uuid.UUID `json:"variant"`
	Quantity  int       `json:"quantity"`
}

// TransitionRequest carries the optional note attached to a status change.
type TransitionRequest struct {
	Description string `json:"description"`
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	UserID *uuid.UUID
	Status *OrderStatus
	Limit  int
	Page   int
}

// Offset returns the row offset of the requested page.
func (f OrderFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// OrderPage is one page of an order listing.
type OrderPage struct {
	Orders []Order `json:"orders"`
	Page   int     `json:"page"`
	Pages  int     `json:"pages"`
	Total  int     `json:"total"`
}
