package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"fashion-shop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// inventoryRepository implements InventoryRepository with conditional updates,
// so stock never goes negative regardless of how many orders race.
type inventoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewInventoryRepository creates a new PostgreSQL-backed inventory repository.
func NewInventoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) InventoryRepository {
	return &inventoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "inventory").Logger(),
	}
}

// GetVariants loads the variants joined with their product, keyed by variant ID.
func (r *inventoryRepository) GetVariants(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.VariantDetail, error) {
	return loadVariantDetails(ctx, r.pool, ids)
}

func loadVariantDetails(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID]model.VariantDetail, error) {
	details := make(map[uuid.UUID]model.VariantDetail, len(ids))
	if len(ids) == 0 {
		return details, nil
	}

	query := `
		SELECT v.id, v.product_id, v.attributes, v.image, v.price, v.price_sale, v.quantity,
		       v.weight, v.length, v.width, v.height, v.disabled, v.deleted,
		       p.name, p.image, p.disabled OR p.deleted
		FROM variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = ANY($1)
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d model.VariantDetail
		err := rows.Scan(
			&d.ID, &d.ProductID, &d.Attributes, &d.Image, &d.Price, &d.PriceSale, &d.Quantity,
			&d.Weight, &d.Length, &d.Width, &d.Height, &d.Disabled, &d.Deleted,
			&d.ProductName, &d.ProductImage, &d.ProductDisabled,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		details[d.ID] = d
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}

	return details, nil
}

// Reserve decrements variant stock for every line and bumps product aggregates.
// Variants and then products are locked in ID order to keep concurrent
// reservations from deadlocking each other.
func (r *inventoryRepository) Reserve(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	lines := sortedByVariant(items)

	variantQuery := `
		UPDATE variants
		SET quantity = quantity - $2, updated_at = NOW()
		WHERE id = $1 AND quantity >= $2 AND NOT disabled AND NOT deleted
		RETURNING product_id
	`

	deltas := make(map[uuid.UUID]int)
	for _, line := range lines {
		var productID uuid.UUID
		err := tx.QueryRow(ctx, variantQuery, line.VariantID, line.Quantity).Scan(&productID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				r.logger.Warn().
					Str("variant_id", line.VariantID.String()).
					Int("quantity", line.Quantity).
					Msg("variant cannot cover requested quantity")
				return model.NewInsufficientStockError(line.Name)
			}
			r.logger.Error().Err(err).Str("variant_id", line.VariantID.String()).Msg("failed to reserve variant stock")
			return fmt.Errorf("failed to reserve variant stock: %w", err)
		}
		deltas[productID] += line.Quantity
	}

	// A product whose aggregate is below its variants' stock fails the
	// quantity CHECK here instead of being clamped.
	productQuery := `
		UPDATE products
		SET quantity = quantity - $2, total_sales = total_sales + $2, updated_at = NOW()
		WHERE id = $1
	`

	for _, productID := range sortedKeys(deltas) {
		if _, err := tx.Exec(ctx, productQuery, productID, deltas[productID]); err != nil {
			r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to update product aggregates")
			return fmt.Errorf("failed to update product aggregates: %w", err)
		}
	}

	r.logger.Debug().Int("lines", len(lines)).Msg("stock reserved")

	return nil
}

// Release gives the stock of every line back.
func (r *inventoryRepository) Release(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	lines := sortedByVariant(items)

	variantQuery := `
		UPDATE variants
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING product_id
	`

	deltas := make(map[uuid.UUID]int)
	for _, line := range lines {
		var productID uuid.UUID
		if err := tx.QueryRow(ctx, variantQuery, line.VariantID, line.Quantity).Scan(&productID); err != nil {
			r.logger.Error().Err(err).Str("variant_id", line.VariantID.String()).Msg("failed to release variant stock")
			return fmt.Errorf("failed to release variant stock: %w", err)
		}
		deltas[productID] += line.Quantity
	}

	productQuery := `
		UPDATE products
		SET quantity = quantity + $2, total_sales = total_sales - $2, updated_at = NOW()
		WHERE id = $1
	`

	for _, productID := range sortedKeys(deltas) {
		if _, err := tx.Exec(ctx, productQuery, productID, deltas[productID]); err != nil {
			r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to restore product aggregates")
			return fmt.Errorf("failed to restore product aggregates: %w", err)
		}
	}

	r.logger.Debug().Int("lines", len(lines)).Msg("stock released")

	return nil
}

func sortedByVariant(items []model.OrderItem) []model.OrderItem {
	lines := make([]model.OrderItem, len(items))
	copy(lines, items)
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].VariantID.String() < lines[j].VariantID.String()
	})
	return lines
}

func sortedKeys(m map[uuid.UUID]int) []uuid.UUID {
	keys := make([]uuid.UUID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}
