package service

import (
	"context"
	"time"

	"fashion-shop/internal/discount"
	"fashion-shop/internal/model"
	"fashion-shop/internal/repository"
	"fashion-shop/internal/shipping"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// deliveryService implements DeliveryService.
type deliveryService struct {
	carrier   shipping.Carrier
	directory shipping.Directory
	inventory repository.InventoryRepository
	logger    zerolog.Logger
}

// NewDeliveryService creates a new delivery service. Master data is read
// through directory, which is usually a cached view of the carrier.
func NewDeliveryService(
	carrier shipping.Carrier,
	directory shipping.Directory,
	inventory repository.InventoryRepository,
	logger zerolog.Logger,
) DeliveryService {
	if directory == nil {
		directory = carrier
	}
	return &deliveryService{
		carrier:   carrier,
		directory: directory,
		inventory: inventory,
		logger:    logger.With().Str("service", "delivery").Logger(),
	}
}

func (s *deliveryService) Provinces(ctx context.Context) ([]shipping.Province, error) {
	return s.directory.Provinces(ctx)
}

func (s *deliveryService) Districts(ctx context.Context, provinceID int) ([]shipping.District, error) {
	if provinceID <= 0 {
		return nil, model.NewValidationError("provinceId is required")
	}
	return s.directory.Districts(ctx, provinceID)
}

func (s *deliveryService) Wards(ctx context.Context, districtID int) ([]shipping.Ward, error) {
	if districtID <= 0 {
		return nil, model.NewValidationError("districtId is required")
	}
	return s.directory.Wards(ctx, districtID)
}

func (s *deliveryService) Quote(ctx context.Context, req *model.ShippingQuoteRequest) (*model.ShippingQuote, error) {
	if req.DistrictID <= 0 {
		return nil, model.NewValidationError("district is required")
	}
	if req.WardCode == "" {
		return nil, model.NewValidationError("ward is required")
	}
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}

	items, parcels, err := resolveItems(ctx, s.inventory, req.Items)
	if err != nil {
		return nil, err
	}

	q := shipping.QuoteRequest{
		ToDistrictID:   req.DistrictID,
		ToWardCode:     req.WardCode,
		Package:        shipping.PackageFor(parcels),
		InsuranceValue: discount.Subtotal(discountLines(items)),
	}

	var (
		fee      decimal.Decimal
		leadTime time.Time
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		fee, err = s.carrier.CalculateFee(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		leadTime, err = s.carrier.EstimateLeadTime(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn().Err(err).Int("district_id", req.DistrictID).Msg("shipping quote failed")
		return nil, err
	}

	return &model.ShippingQuote{Fee: fee, LeadTime: leadTime}, nil
}
