package model

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one variant in a buyer's cart.
type CartItem struct {
	UserID    uuid.UUID      `json:"user" db:"user_id"`
	VariantID uuid.UUID      `json:"variant" db:"variant_id"`
	Quantity  int            `json:"quantity" db:"quantity"`
	Detail    *VariantDetail `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
}

// CartItemRequest adds or updates a cart line.
type CartItemRequest struct {
	VariantID uuid.UUID `json:"variant"`
	Quantity  int       `json:"quantity"`
}
