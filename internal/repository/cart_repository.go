package repository

import (
	"context"
	"fmt"

	"fashion-shop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

func (r *cartRepository) GetItems(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	query := `
		SELECT user_id, variant_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at, variant_id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	ids := []uuid.UUID{}
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.UserID, &item.VariantID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
		ids = append(ids, item.VariantID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}
	rows.Close()

	details, err := loadVariantDetails(ctx, r.pool, ids)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to load cart variants")
		return nil, err
	}
	for i := range items {
		if d, ok := details[items[i].VariantID]; ok {
			items[i].Detail = &d
		}
	}

	return items, nil
}

func (r *cartRepository) Upsert(ctx context.Context, userID, variantID uuid.UUID, quantity int) error {
	query := `
		INSERT INTO cart_items (user_id, variant_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, variant_id) DO UPDATE
		SET quantity = EXCLUDED.quantity, updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, userID, variantID, quantity); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to upsert cart item")
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}
	return nil
}

func (r *cartRepository) Remove(ctx context.Context, userID, variantID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND variant_id = $2`, userID, variantID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to remove cart item")
		return false, fmt.Errorf("failed to remove cart item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RemoveVariants drops the given variants from the cart.
func (r *cartRepository) RemoveVariants(ctx context.Context, tx pgx.Tx, userID uuid.UUID, variantIDs []uuid.UUID) error {
	if len(variantIDs) == 0 {
		return nil
	}
	tag, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND variant_id = ANY($2)`, userID, variantIDs)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to clear ordered cart items")
		return fmt.Errorf("failed to clear ordered cart items: %w", err)
	}
	r.logger.Debug().Int64("removed", tag.RowsAffected()).Msg("ordered items removed from cart")
	return nil
}
