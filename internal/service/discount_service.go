package service

import (
	"context"
	"fmt"
	"time"

	"fashion-shop/internal/discount"
	"fashion-shop/internal/model"
	"fashion-shop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// discountService implements DiscountService and discount.Store.
type discountService struct {
	discounts repository.DiscountRepository
	inventory repository.InventoryRepository
	clock     func() time.Time
	logger    zerolog.Logger
}

var _ discount.Store = (*discountService)(nil)

// NewDiscountService creates a new discount service.
func NewDiscountService(
	discounts repository.DiscountRepository,
	inventory repository.InventoryRepository,
	clock func() time.Time,
	logger zerolog.Logger,
) DiscountService {
	if clock == nil {
		clock = time.Now
	}
	return &discountService{
		discounts: discounts,
		inventory: inventory,
		clock:     clock,
		logger:    logger.With().Str("service", "discount").Logger(),
	}
}

// Preview prices the lines and evaluates the code exactly as placement
// would. Usage counters are not touched.
func (s *discountService) Preview(ctx context.Context, actor model.Actor, req *model.DiscountPreviewRequest) (*model.DiscountPreview, error) {
	code := discount.NormalizeCode(req.DiscountCode)
	if code == "" {
		return nil, model.NewValidationError("discountCode is required")
	}
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}

	items, _, err := resolveItems(ctx, s.inventory, req.Items)
	if err != nil {
		return nil, err
	}

	dc, err := s.discounts.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load discount code: %w", err)
	}

	lines := discountLines(items)
	amount, err := discount.Evaluate(dc, actor.ID, lines, s.clock().UTC())
	if err != nil {
		return nil, err
	}

	return &model.DiscountPreview{
		Code:              code,
		Discount:          amount,
		TotalProductPrice: discount.Subtotal(lines),
	}, nil
}

func (s *discountService) List(ctx context.Context) ([]model.DiscountCode, error) {
	codes, err := s.discounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list discount codes: %w", err)
	}
	if codes == nil {
		codes = []model.DiscountCode{}
	}
	return codes, nil
}

func (s *discountService) GetByCode(ctx context.Context, code string) (*model.DiscountCode, error) {
	dc, err := s.discounts.GetByCode(ctx, discount.NormalizeCode(code))
	if err != nil {
		return nil, fmt.Errorf("failed to get discount code: %w", err)
	}
	if dc == nil {
		return nil, model.ErrDiscountNotFound
	}
	return dc, nil
}

func applyDefinition(dc *model.DiscountCode, req *model.DiscountCodeRequest) {
	dc.Code = req.Code
	dc.Type = req.Type
	dc.Discount = req.Discount
	dc.MaximumDiscount = req.MaximumDiscount
	dc.StartDate = req.StartDate
	dc.EndDate = req.EndDate
	dc.IsUsageLimit = req.IsUsageLimit
	dc.UsageLimit = req.UsageLimit
	dc.ApplicableProducts = req.ApplicableProducts
}

func (s *discountService) Create(ctx context.Context, req *model.DiscountCodeRequest) (*model.DiscountCode, error) {
	if err := discount.ValidateDefinition(req); err != nil {
		return nil, err
	}

	now := s.clock().UTC()
	dc := &model.DiscountCode{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	applyDefinition(dc, req)

	if err := s.discounts.Create(ctx, dc); err != nil {
		return nil, err
	}

	s.logger.Info().Str("discount_code", dc.Code).Msg("discount code created")
	return dc, nil
}

// Update replaces the definition of a code. Redemptions so far are kept,
// so a limit cannot drop below them.
func (s *discountService) Update(ctx context.Context, id uuid.UUID, req *model.DiscountCodeRequest) (*model.DiscountCode, error) {
	if err := discount.ValidateDefinition(req); err != nil {
		return nil, err
	}

	dc, err := s.discounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get discount code: %w", err)
	}
	if dc == nil {
		return nil, model.ErrDiscountNotFound
	}
	if req.IsUsageLimit && req.UsageLimit < dc.Used {
		return nil, model.NewValidationError("usage limit cannot be lower than the %d uses so far", dc.Used)
	}

	applyDefinition(dc, req)
	dc.UpdatedAt = s.clock().UTC()

	if err := s.discounts.Update(ctx, dc); err != nil {
		return nil, err
	}

	s.logger.Info().Str("discount_code", dc.Code).Msg("discount code updated")
	return dc, nil
}

func (s *discountService) Disable(ctx context.Context, id uuid.UUID) error {
	if err := s.discounts.Disable(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("discount_id", id.String()).Msg("discount code disabled")
	return nil
}

func (s *discountService) Upsert(ctx context.Context, def *model.DiscountCodeRequest) error {
	if err := discount.ValidateDefinition(def); err != nil {
		return fmt.Errorf("invalid discount code %q: %w", def.Code, err)
	}
	return s.discounts.Upsert(ctx, def)
}
