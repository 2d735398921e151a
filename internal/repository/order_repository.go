package repository

import (
	"context"
	"errors"
	"fmt"

	"fashion-shop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

const orderColumns = `id, user_id, username, shipping_address, total_product_price, shipping_price,
	total_discount, total_payment, status, discount_code, disabled, created_at, updated_at`

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(
		&o.ID, &o.UserID, &o.Username, &o.ShippingAddress,
		&o.TotalProductPrice, &o.ShippingPrice, &o.TotalDiscount, &o.TotalPayment,
		&o.Status, &o.DiscountCode, &o.Disabled, &o.CreatedAt, &o.UpdatedAt,
	)
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Create inserts the order, its items and its first history entry.
func (r *orderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, user_id, username, shipping_address, total_product_price, shipping_price,
		                    total_discount, total_payment, status, discount_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.UserID, order.Username, order.ShippingAddress,
		order.TotalProductPrice, order.ShippingPrice, order.TotalDiscount, order.TotalPayment,
		string(order.Status), order.DiscountCode, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err := r.createItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}

	for _, entry := range order.StatusHistory {
		if err := r.AppendHistory(ctx, tx, order.ID, entry); err != nil {
			return err
		}
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Int("items", len(order.Items)).
		Msg("order created successfully")

	return nil
}

func (r *orderRepository) createItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, position, product_id, variant_id, name, image,
		                         attributes, price, quantity, is_able_to_review)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	batch := &pgx.Batch{}
	for i, item := range items {
		batch.Queue(query, item.ID, orderID, i, item.ProductID, item.VariantID, item.Name, item.Image,
			item.Attributes, item.Price, item.Quantity, item.IsAbleToReview)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range items {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", orderID.String()).
				Str("variant_id", items[i].VariantID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return nil
}

// GetByID retrieves an order with items, history, delivery and payment.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND NOT disabled`

	var order model.Order
	if err := scanOrder(r.pool.QueryRow(ctx, query, id), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := loadOrderItems(ctx, r.pool, []uuid.UUID{id})
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order items")
		return nil, err
	}
	order.Items = items[id]

	if order.StatusHistory, err = loadStatusHistory(ctx, r.pool, id); err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order history")
		return nil, err
	}

	if order.Delivery, err = loadDelivery(ctx, r.pool, id, false); err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query delivery")
		return nil, err
	}

	if order.Payment, err = loadPayment(ctx, r.pool, id, false); err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query payment")
		return nil, err
	}

	return &order, nil
}

// List returns one page of orders, newest first, and the total match count.
func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, int, error) {
	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	where := `
		WHERE NOT disabled
		  AND ($1::uuid IS NULL OR user_id = $1)
		  AND ($2::text IS NULL OR status = $2)
	`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, filter.UserID, status).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders` + where + `
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4
	`

	rows, err := r.pool.Query(ctx, query, filter.UserID, status, filter.Limit, filter.Offset())
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	ids := []uuid.UUID{}
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}
	rows.Close()

	items, err := loadOrderItems(ctx, r.pool, ids)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order items")
		return nil, 0, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return orders, total, nil
}

// LockByID loads an order with its items and holds its row lock until tx ends.
func (r *orderRepository) LockByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND NOT disabled FOR UPDATE`

	var order model.Order
	if err := scanOrder(tx.QueryRow(ctx, query, id), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	items, err := loadOrderItems(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]

	return &order, nil
}

// TransitionStatus moves the order to entry.Status when its current status is one of from.
func (r *orderRepository) TransitionStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from []model.OrderStatus, entry model.StatusEntry) (bool, error) {
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}

	query := `
		UPDATE orders
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = ANY($2) AND NOT disabled
	`

	tag, err := tx.Exec(ctx, query, id, allowed, string(entry.Status))
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().
			Str("order_id", id.String()).
			Str("to", string(entry.Status)).
			Msg("order status precondition not met")
		return false, nil
	}

	if err := r.AppendHistory(ctx, tx, id, entry); err != nil {
		return false, err
	}

	return true, nil
}

// AppendHistory records an entry without changing the status.
func (r *orderRepository) AppendHistory(ctx context.Context, tx pgx.Tx, id uuid.UUID, entry model.StatusEntry) error {
	query := `
		INSERT INTO order_status_history (order_id, status, description, updated_by, role, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
	`

	var createdAt any
	if !entry.CreatedAt.IsZero() {
		createdAt = entry.CreatedAt
	}

	_, err := tx.Exec(ctx, query, id, string(entry.Status), entry.Description, entry.UpdatedBy, string(entry.Role), createdAt)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to append order history")
		return fmt.Errorf("failed to append order history: %w", err)
	}
	return nil
}

// Disable hides the order from every read.
func (r *orderRepository) Disable(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	if _, err := tx.Exec(ctx, `UPDATE orders SET disabled = TRUE, updated_at = NOW() WHERE id = $1`, id); err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to disable order")
		return fmt.Errorf("failed to disable order: %w", err)
	}
	return nil
}

// MarkItemsReviewable flags every line of the order as reviewable.
func (r *orderRepository) MarkItemsReviewable(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	if _, err := tx.Exec(ctx, `UPDATE order_items SET is_able_to_review = TRUE WHERE order_id = $1`, id); err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to mark items reviewable")
		return fmt.Errorf("failed to mark items reviewable: %w", err)
	}
	return nil
}

func loadOrderItems(ctx context.Context, q querier, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	items := make(map[uuid.UUID][]model.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return items, nil
	}

	query := `
		SELECT id, order_id, product_id, variant_id, name, image, attributes, price, quantity, is_able_to_review
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`

	rows, err := q.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.VariantID, &item.Name, &item.Image,
			&item.Attributes, &item.Price, &item.Quantity, &item.IsAbleToReview,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

func loadStatusHistory(ctx context.Context, q querier, orderID uuid.UUID) ([]model.StatusEntry, error) {
	query := `
		SELECT status, description, updated_by, role, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order history: %w", err)
	}
	defer rows.Close()

	history := []model.StatusEntry{}
	for rows.Next() {
		var e model.StatusEntry
		if err := rows.Scan(&e.Status, &e.Description, &e.UpdatedBy, &e.Role, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order history: %w", err)
		}
		history = append(history, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order history: %w", err)
	}

	return history, nil
}
