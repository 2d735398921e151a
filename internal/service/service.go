package service

import (
	"context"

	"fashion-shop/internal/model"
	"fashion-shop/internal/shipping"

	"github.com/google/uuid"
)

// ProductService defines catalogue reads.
type ProductService interface {
	// GetAll retrieves visible products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product with its active variants.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

// OrderService defines the order workflow.
type OrderService interface {
	// PlaceOrder validates, prices and persists a new order, then starts the
	// online payment when the buyer chose the gateway.
	PlaceOrder(ctx context.Context, actor model.Actor, req *model.PlaceOrderRequest) (*model.Order, error)

	GetByID(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, actor model.Actor, filter model.OrderFilter) (*model.OrderPage, error)
	ListByUser(ctx context.Context, actor model.Actor, userID uuid.UUID, filter model.OrderFilter) (*model.OrderPage, error)

	Confirm(ctx context.Context, actor model.Actor, id uuid.UUID, req model.TransitionRequest) (*model.Order, error)
	// ConfirmDelivery hands the order to the carrier and stores the tracking code.
	ConfirmDelivery(ctx context.Context, actor model.Actor, id uuid.UUID, req model.TransitionRequest) (*model.Order, error)
	ConfirmDelivered(ctx context.Context, actor model.Actor, id uuid.UUID, req model.TransitionRequest) (*model.Order, error)
	ConfirmReceived(ctx context.Context, actor model.Actor, id uuid.UUID, req model.TransitionRequest) (*model.Order, error)
	// Cancel restores stock. Discount usage is kept.
	Cancel(ctx context.Context, actor model.Actor, id uuid.UUID, req model.TransitionRequest) (*model.Order, error)

	// PaymentNotification records a gateway-reported payment.
	PaymentNotification(ctx context.Context, id uuid.UUID, n model.PaymentNotification) error
	// MarkPaid records a payment confirmed by an admin.
	MarkPaid(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error)
	GetPayURL(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.PayURLResponse, error)

	// PrintLabel returns a link to the carrier's printable label.
	PrintLabel(ctx context.Context, actor model.Actor, id uuid.UUID, size shipping.PageSize) (string, error)
}

// DiscountService defines discount code management and preview.
type DiscountService interface {
	// Preview computes what a code would take off, without redeeming it.
	Preview(ctx context.Context, actor model.Actor, req *model.DiscountPreviewRequest) (*model.DiscountPreview, error)

	List(ctx context.Context) ([]model.DiscountCode, error)
	GetByCode(ctx context.Context, code string) (*model.DiscountCode, error)
	Create(ctx context.Context, req *model.DiscountCodeRequest) (*model.DiscountCode, error)
	Update(ctx context.Context, id uuid.UUID, req *model.DiscountCodeRequest) (*model.DiscountCode, error)
	Disable(ctx context.Context, id uuid.UUID) error

	// Upsert writes an imported definition, keeping usage counters.
	Upsert(ctx context.Context, def *model.DiscountCodeRequest) error
}

// CartService defines the buyer's cart.
type CartService interface {
	GetItems(ctx context.Context, actor model.Actor) ([]model.CartItem, error)
	AddItem(ctx context.Context, actor model.Actor, req *model.CartItemRequest) ([]model.CartItem, error)
	RemoveItem(ctx context.Context, actor model.Actor, variantID uuid.UUID) error
}

// DeliveryService defines address master data and shipping quotes.
type DeliveryService interface {
	Provinces(ctx context.Context) ([]shipping.Province, error)
	Districts(ctx context.Context, provinceID int) ([]shipping.District, error)
	Wards(ctx context.Context, districtID int) ([]shipping.Ward, error)

	// Quote prices a prospective order the same way placement does.
	Quote(ctx context.Context, req *model.ShippingQuoteRequest) (*model.ShippingQuote, error)
}
