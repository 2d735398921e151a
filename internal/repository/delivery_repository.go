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

type deliveryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDeliveryRepository creates a new PostgreSQL-backed delivery repository.
func NewDeliveryRepository(pool *pgxpool.Pool, logger zerolog.Logger) DeliveryRepository {
	return &deliveryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "delivery").Logger(),
	}
}

func (r *deliveryRepository) Create(ctx context.Context, tx pgx.Tx, d *model.Delivery) error {
	query := `
		INSERT INTO deliveries (id, order_id, user_id, to_name, to_phone, to_address,
		                        to_province_id, to_province_name, to_district_id, to_district_name,
		                        to_ward_code, to_ward_name, weight, length, width, height,
		                        service_id, insurance_value, note, required_note, fee, lead_time,
		                        status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		        $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`

	_, err := tx.Exec(ctx, query,
		d.ID, d.OrderID, d.UserID, d.ToName, d.ToPhone, d.ToAddress,
		d.ToProvinceID, d.ToProvinceName, d.ToDistrictID, d.ToDistrictName,
		d.ToWardCode, d.ToWardName, d.Package.Weight, d.Package.Length, d.Package.Width, d.Package.Height,
		d.ServiceID, d.InsuranceValue, d.Note, d.RequiredNote, d.Fee, d.LeadTime,
		d.Status, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", d.OrderID.String()).Msg("failed to create delivery")
		return fmt.Errorf("failed to create delivery: %w", err)
	}
	return nil
}

func (r *deliveryRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Delivery, error) {
	d, err := loadDelivery(ctx, r.pool, orderID, false)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query delivery")
	}
	return d, err
}

// SetShipment stores what the carrier returned for a created shipping order.
func (r *deliveryRepository) SetShipment(ctx context.Context, tx pgx.Tx, deliveryID uuid.UUID, s model.Shipment) error {
	query := `
		UPDATE deliveries
		SET delivery_code = $2, fee = $3, lead_time = COALESCE($4, lead_time), updated_at = NOW()
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, query, deliveryID, s.DeliveryCode, s.Fee, s.ExpectedAt); err != nil {
		r.logger.Error().Err(err).Str("delivery_id", deliveryID.String()).Msg("failed to store shipment")
		return fmt.Errorf("failed to store shipment: %w", err)
	}
	return nil
}

// AppendStatus sets the current carrier status and records it in the history.
func (r *deliveryRepository) AppendStatus(ctx context.Context, tx pgx.Tx, deliveryID uuid.UUID, entry model.DeliveryStatusEntry) error {
	if _, err := tx.Exec(ctx, `UPDATE deliveries SET status = $2, updated_at = NOW() WHERE id = $1`, deliveryID, entry.Status); err != nil {
		r.logger.Error().Err(err).Str("delivery_id", deliveryID.String()).Msg("failed to update delivery status")
		return fmt.Errorf("failed to update delivery status: %w", err)
	}

	query := `
		INSERT INTO delivery_status_history (delivery_id, status, description)
		VALUES ($1, $2, $3)
	`
	if _, err := tx.Exec(ctx, query, deliveryID, entry.Status, entry.Description); err != nil {
		r.logger.Error().Err(err).Str("delivery_id", deliveryID.String()).Msg("failed to append delivery history")
		return fmt.Errorf("failed to append delivery history: %w", err)
	}
	return nil
}

func loadDelivery(ctx context.Context, q querier, orderID uuid.UUID, forUpdate bool) (*model.Delivery, error) {
	query := `
		SELECT id, order_id, user_id, to_name, to_phone, to_address,
		       to_province_id, to_province_name, to_district_id, to_district_name,
		       to_ward_code, to_ward_name, weight, length, width, height,
		       service_id, insurance_value, note, required_note, fee, lead_time,
		       delivery_code, status, created_at, updated_at
		FROM deliveries
		WHERE order_id = $1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var d model.Delivery
	err := q.QueryRow(ctx, query, orderID).Scan(
		&d.ID, &d.OrderID, &d.UserID, &d.ToName, &d.ToPhone, &d.ToAddress,
		&d.ToProvinceID, &d.ToProvinceName, &d.ToDistrictID, &d.ToDistrictName,
		&d.ToWardCode, &d.ToWardName, &d.Package.Weight, &d.Package.Length, &d.Package.Width, &d.Package.Height,
		&d.ServiceID, &d.InsuranceValue, &d.Note, &d.RequiredNote, &d.Fee, &d.LeadTime,
		&d.DeliveryCode, &d.Status, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query delivery: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT status, description, created_at
		FROM delivery_status_history
		WHERE delivery_id = $1
		ORDER BY id
	`, d.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery history: %w", err)
	}
	defer rows.Close()

	d.StatusHistory = []model.DeliveryStatusEntry{}
	for rows.Next() {
		var e model.DeliveryStatusEntry
		if err := rows.Scan(&e.Status, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivery history: %w", err)
		}
		d.StatusHistory = append(d.StatusHistory, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating delivery history: %w", err)
	}

	return &d, nil
}
