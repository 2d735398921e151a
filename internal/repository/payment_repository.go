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

type paymentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPaymentRepository creates a new PostgreSQL-backed payment repository.
func NewPaymentRepository(pool *pgxpool.Pool, logger zerolog.Logger) PaymentRepository {
	return &paymentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "payment").Logger(),
	}
}

func (r *paymentRepository) Create(ctx context.Context, tx pgx.Tx, p *model.Payment) error {
	query := `
		INSERT INTO payments (id, order_id, user_id, payment_method, request_id, pay_url, payment_amount,
		                      paid, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := tx.Exec(ctx, query,
		p.ID, p.OrderID, p.UserID, string(p.Method), p.RequestID, p.PayURL, p.Amount,
		p.Paid, p.PaidAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", p.OrderID.String()).Msg("failed to create payment")
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Payment, error) {
	p, err := loadPayment(ctx, r.pool, orderID, false)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query payment")
	}
	return p, err
}

func (r *paymentRepository) LockByOrderID(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.Payment, error) {
	p, err := loadPayment(ctx, tx, orderID, true)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to lock payment")
	}
	return p, err
}

// MarkPaid sets paid and paid_at unless the payment is already paid.
func (r *paymentRepository) MarkPaid(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (bool, error) {
	query := `
		UPDATE payments
		SET paid = TRUE, paid_at = NOW(), updated_at = NOW()
		WHERE order_id = $1 AND NOT paid
	`

	tag, err := tx.Exec(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to mark payment paid")
		return false, fmt.Errorf("failed to mark payment paid: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *paymentRepository) SetPayURL(ctx context.Context, orderID uuid.UUID, payURL string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE payments SET pay_url = $2, updated_at = NOW() WHERE order_id = $1`, orderID, payURL)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to store pay url")
		return fmt.Errorf("failed to store pay url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

func loadPayment(ctx context.Context, q querier, orderID uuid.UUID, forUpdate bool) (*model.Payment, error) {
	query := `
		SELECT id, order_id, user_id, payment_method, request_id, pay_url, payment_amount,
		       paid, paid_at, created_at, updated_at
		FROM payments
		WHERE order_id = $1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var p model.Payment
	err := q.QueryRow(ctx, query, orderID).Scan(
		&p.ID, &p.OrderID, &p.UserID, &p.Method, &p.RequestID, &p.PayURL, &p.Amount,
		&p.Paid, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query payment: %w", err)
	}
	return &p, nil
}
