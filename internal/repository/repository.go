package repository

import (
	"context"

	"fashion-shop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the subset shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProductRepository defines the interface for catalogue reads.
type ProductRepository interface {
	// GetAll retrieves visible products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product with its active variants.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

// InventoryRepository reads variant stock and moves it in and out of orders.
type InventoryRepository interface {
	// GetVariants loads the variants joined with their product, keyed by variant ID.
	// Missing IDs are simply absent from the map.
	GetVariants(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.VariantDetail, error)

	// Reserve decrements variant stock for every line and bumps product aggregates.
	// A line whose variant cannot cover its quantity fails with ErrInsufficientStock.
	Reserve(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// Release gives the stock of every line back.
	Release(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts the order, its items and its first history entry.
	Create(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetByID retrieves an order with items, history, delivery and payment.
	// Returns nil when the order does not exist or is disabled.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// List returns one page of orders, newest first, and the total match count.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, int, error)

	// LockByID loads an order with its items and holds its row lock until tx ends.
	LockByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// TransitionStatus moves the order to entry.Status when its current status is
	// one of from, and appends entry to the history. Reports false when no row matched.
	TransitionStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from []model.OrderStatus, entry model.StatusEntry) (bool, error)

	// AppendHistory records an entry without changing the status.
	AppendHistory(ctx context.Context, tx pgx.Tx, id uuid.UUID, entry model.StatusEntry) error

	// Disable hides the order from every read.
	Disable(ctx context.Context, tx pgx.Tx, id uuid.UUID) error

	// MarkItemsReviewable flags every line of the order as reviewable.
	MarkItemsReviewable(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// DiscountRepository defines discount code persistence and usage accounting.
type DiscountRepository interface {
	GetByCode(ctx context.Context, code string) (*model.DiscountCode, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.DiscountCode, error)
	List(ctx context.Context) ([]model.DiscountCode, error)
	Create(ctx context.Context, code *model.DiscountCode) error
	Update(ctx context.Context, code *model.DiscountCode) error
	Disable(ctx context.Context, id uuid.UUID) error

	// Upsert writes a definition by code without touching usage counters.
	Upsert(ctx context.Context, def *model.DiscountCodeRequest) error

	// MarkUsed records one redemption by userID. Fails with ErrDiscountExhausted or
	// ErrDiscountAlreadyUsed when a concurrent redemption got there first.
	MarkUsed(ctx context.Context, tx pgx.Tx, code string, userID uuid.UUID) error

	// ReleaseUsage undoes one redemption by userID.
	ReleaseUsage(ctx context.Context, tx pgx.Tx, code string, userID uuid.UUID) error
}

// PaymentRepository defines payment record access.
type PaymentRepository interface {
	Create(ctx context.Context, tx pgx.Tx, payment *model.Payment) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Payment, error)
	LockByOrderID(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.Payment, error)

	// MarkPaid sets paid and paid_at unless the payment is already paid.
	// Reports false when it was.
	MarkPaid(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (bool, error)

	SetPayURL(ctx context.Context, orderID uuid.UUID, payURL string) error
}

// DeliveryRepository defines delivery record access.
type DeliveryRepository interface {
	Create(ctx context.Context, tx pgx.Tx, delivery *model.Delivery) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Delivery, error)

	// SetShipment stores what the carrier returned for a created shipping order.
	SetShipment(ctx context.Context, tx pgx.Tx, deliveryID uuid.UUID, shipment model.Shipment) error

	// AppendStatus sets the current carrier status and records it in the history.
	AppendStatus(ctx context.Context, tx pgx.Tx, deliveryID uuid.UUID, entry model.DeliveryStatusEntry) error
}

// CartRepository defines cart access.
type CartRepository interface {
	GetItems(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)
	Upsert(ctx context.Context, userID, variantID uuid.UUID, quantity int) error

	// Remove deletes one line. Reports false when the line did not exist.
	Remove(ctx context.Context, userID, variantID uuid.UUID) (bool, error)

	// RemoveVariants drops the given variants from the cart. A missing cart is not an error.
	RemoveVariants(ctx context.Context, tx pgx.Tx, userID uuid.UUID, variantIDs []uuid.UUID) error
}
