package service

import (
	"context"
	"fmt"

	"fashion-shop/internal/model"
	"fashion-shop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	carts     repository.CartRepository
	inventory repository.InventoryRepository
	logger    zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(carts repository.CartRepository, inventory repository.InventoryRepository, logger zerolog.Logger) CartService {
	return &cartService{
		carts:     carts,
		inventory: inventory,
		logger:    logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) GetItems(ctx context.Context, actor model.Actor) ([]model.CartItem, error) {
	items, err := s.carts.GetItems(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if items == nil {
		items = []model.CartItem{}
	}
	return items, nil
}

// AddItem sets the quantity of a variant in the cart. The variant must be
// on sale and in stock for that quantity.
func (s *cartService) AddItem(ctx context.Context, actor model.Actor, req *model.CartItemRequest) ([]model.CartItem, error) {
	if err := validateItems([]model.OrderItemRequest{{VariantID: req.VariantID, Quantity: req.Quantity}}); err != nil {
		return nil, err
	}

	variants, err := s.inventory.GetVariants(ctx, []uuid.UUID{req.VariantID})
	if err != nil {
		return nil, fmt.Errorf("failed to load variant: %w", err)
	}
	v, ok := variants[req.VariantID]
	if !ok || !v.Available() {
		return nil, model.NewVariantNotFoundError(req.VariantID)
	}
	if v.Quantity < req.Quantity {
		return nil, model.NewInsufficientStockError(v.DisplayName())
	}

	if err := s.carts.Upsert(ctx, actor.ID, req.VariantID, req.Quantity); err != nil {
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}

	s.logger.Debug().
		Str("user_id", actor.ID.String()).
		Str("variant_id", req.VariantID.String()).
		Int("quantity", req.Quantity).
		Msg("cart updated")

	return s.GetItems(ctx, actor)
}

func (s *cartService) RemoveItem(ctx context.Context, actor model.Actor, variantID uuid.UUID) error {
	removed, err := s.carts.Remove(ctx, actor.ID, variantID)
	if err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	if !removed {
		return model.ErrCartItemNotFound
	}
	return nil
}
