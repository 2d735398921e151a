package repository

import (
	"context"
	"errors"
	"fmt"

	"fashion-shop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const uniqueViolation = "23505"

// discountRepository implements DiscountRepository. Redemptions are
// conditional updates so a code is never used past its limit or twice by
// the same buyer.
type discountRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDiscountRepository creates a new PostgreSQL-backed discount code repository.
func NewDiscountRepository(pool *pgxpool.Pool, logger zerolog.Logger) DiscountRepository {
	return &discountRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "discount").Logger(),
	}
}

const discountColumns = `id, code, discount_type, discount, maximum_discount, start_date, end_date,
	is_usage_limit, usage_limit, used, used_by, applicable_products, disabled, created_at, updated_at`

func scanDiscount(row pgx.Row, d *model.DiscountCode) error {
	return row.Scan(
		&d.ID, &d.Code, &d.Type, &d.Discount, &d.MaximumDiscount, &d.StartDate, &d.EndDate,
		&d.IsUsageLimit, &d.UsageLimit, &d.Used, &d.UsedBy, &d.ApplicableProducts,
		&d.Disabled, &d.CreatedAt, &d.UpdatedAt,
	)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (r *discountRepository) getOne(ctx context.Context, q querier, where string, arg any) (*model.DiscountCode, error) {
	var d model.DiscountCode
	err := scanDiscount(q.QueryRow(ctx, `SELECT `+discountColumns+` FROM discount_codes WHERE `+where, arg), &d)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query discount code")
		return nil, fmt.Errorf("failed to query discount code: %w", err)
	}
	return &d, nil
}

func (r *discountRepository) GetByCode(ctx context.Context, code string) (*model.DiscountCode, error) {
	return r.getOne(ctx, r.pool, `code = $1`, code)
}

func (r *discountRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.DiscountCode, error) {
	return r.getOne(ctx, r.pool, `id = $1`, id)
}

func (r *discountRepository) List(ctx context.Context) ([]model.DiscountCode, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+discountColumns+` FROM discount_codes ORDER BY created_at DESC, code`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query discount codes")
		return nil, fmt.Errorf("failed to query discount codes: %w", err)
	}
	defer rows.Close()

	codes := []model.DiscountCode{}
	for rows.Next() {
		var d model.DiscountCode
		if err := scanDiscount(rows, &d); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan discount code row")
			return nil, fmt.Errorf("failed to scan discount code: %w", err)
		}
		codes = append(codes, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating discount codes: %w", err)
	}

	return codes, nil
}

func (r *discountRepository) Create(ctx context.Context, d *model.DiscountCode) error {
	query := `
		INSERT INTO discount_codes (id, code, discount_type, discount, maximum_discount, start_date, end_date,
		                            is_usage_limit, usage_limit, applicable_products, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		d.ID, d.Code, string(d.Type), d.Discount, d.MaximumDiscount, d.StartDate, d.EndDate,
		d.IsUsageLimit, d.UsageLimit, nonNilIDs(d.ApplicableProducts), d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDiscountCodeExists
		}
		r.logger.Error().Err(err).Str("code", d.Code).Msg("failed to create discount code")
		return fmt.Errorf("failed to create discount code: %w", err)
	}
	return nil
}

func (r *discountRepository) Update(ctx context.Context, d *model.DiscountCode) error {
	query := `
		UPDATE discount_codes
		SET code = $2, discount_type = $3, discount = $4, maximum_discount = $5, start_date = $6,
		    end_date = $7, is_usage_limit = $8, usage_limit = $9, applicable_products = $10, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		d.ID, d.Code, string(d.Type), d.Discount, d.MaximumDiscount, d.StartDate,
		d.EndDate, d.IsUsageLimit, d.UsageLimit, nonNilIDs(d.ApplicableProducts),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDiscountCodeExists
		}
		r.logger.Error().Err(err).Str("discount_id", d.ID.String()).Msg("failed to update discount code")
		return fmt.Errorf("failed to update discount code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrDiscountNotFound
	}
	return nil
}

func (r *discountRepository) Disable(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE discount_codes SET disabled = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("discount_id", id.String()).Msg("failed to disable discount code")
		return fmt.Errorf("failed to disable discount code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrDiscountNotFound
	}
	return nil
}

// Upsert writes a definition by code without touching usage counters.
func (r *discountRepository) Upsert(ctx context.Context, def *model.DiscountCodeRequest) error {
	query := `
		INSERT INTO discount_codes (id, code, discount_type, discount, maximum_discount, start_date, end_date,
		                            is_usage_limit, usage_limit, applicable_products)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (code) DO UPDATE
		SET discount_type = EXCLUDED.discount_type,
		    discount = EXCLUDED.discount,
		    maximum_discount = EXCLUDED.maximum_discount,
		    start_date = EXCLUDED.start_date,
		    end_date = EXCLUDED.end_date,
		    is_usage_limit = EXCLUDED.is_usage_limit,
		    usage_limit = GREATEST(EXCLUDED.usage_limit, discount_codes.used),
		    applicable_products = EXCLUDED.applicable_products,
		    updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		uuid.New(), def.Code, string(def.Type), def.Discount, def.MaximumDiscount, def.StartDate, def.EndDate,
		def.IsUsageLimit, def.UsageLimit, nonNilIDs(def.ApplicableProducts),
	)
	if err != nil {
		r.logger.Error().Err(err).Str("code", def.Code).Msg("failed to upsert discount code")
		return fmt.Errorf("failed to upsert discount code: %w", err)
	}
	return nil
}

// MarkUsed records one redemption by userID.
func (r *discountRepository) MarkUsed(ctx context.Context, tx pgx.Tx, code string, userID uuid.UUID) error {
	query := `
		UPDATE discount_codes
		SET used = used + 1, used_by = array_append(used_by, $2), updated_at = NOW()
		WHERE code = $1
		  AND NOT disabled
		  AND (NOT is_usage_limit OR used < usage_limit)
		  AND NOT ($2 = ANY(used_by))
	`

	tag, err := tx.Exec(ctx, query, code, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to mark discount code used")
		return fmt.Errorf("failed to mark discount code used: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	current, err := r.getOne(ctx, tx, `code = $1`, code)
	if err != nil {
		return err
	}

	r.logger.Warn().Str("code", code).Str("user_id", userID.String()).Msg("discount code redemption lost a race")

	switch {
	case current == nil || current.Disabled:
		return model.ErrDiscountNotFound
	case current.UsedByUser(userID):
		return model.ErrDiscountAlreadyUsed
	default:
		return model.ErrDiscountExhausted
	}
}

// ReleaseUsage undoes one redemption by userID.
func (r *discountRepository) ReleaseUsage(ctx context.Context, tx pgx.Tx, code string, userID uuid.UUID) error {
	query := `
		UPDATE discount_codes
		SET used = GREATEST(used - 1, 0), used_by = array_remove(used_by, $2), updated_at = NOW()
		WHERE code = $1 AND $2 = ANY(used_by)
	`

	if _, err := tx.Exec(ctx, query, code, userID); err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to release discount code usage")
		return fmt.Errorf("failed to release discount code usage: %w", err)
	}
	return nil
}

func nonNilIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
