package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod selects how the buyer pays.
type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "payment-with-cash"
	PaymentMethodGateway PaymentMethod = "payment-with-momo"
)

// Valid reports whether m is a supported method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodGateway
}

// Payment records how and whether an order was paid.
type Payment struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"order" db:"order_id"`
	UserID    uuid.UUID       `json:"user" db:"user_id"`
	Method    PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	RequestID *string         `json:"requestId,omitempty" db:"request_id"`
	PayURL    *string         `json:"payUrl,omitempty" db:"pay_url"`
	Amount    decimal.Decimal `json:"paymentAmount" db:"payment_amount"`
	Paid      bool            `json:"paid" db:"paid"`
	PaidAt    *time.Time      `json:"paidAt,omitempty" db:"paid_at"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// PaymentNotification is the gateway's server-to-server payment result.
type PaymentNotification struct {
	OrderID   string          `json:"orderId"`
	RequestID string          `json:"requestId"`
	Amount    decimal.Decimal `json:"amount"`
}

// PayURLResponse carries the gateway redirect for an unpaid order.
type PayURLResponse struct {
	PayURL string `json:"payUrl"`
}
