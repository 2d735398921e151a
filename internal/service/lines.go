package service

import (
	"context"
	"fmt"

	"fashion-shop/internal/discount"
	"fashion-shop/internal/model"
	"fashion-shop/internal/repository"
	"fashion-shop/internal/shipping"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// validateItems checks the requested lines before any lookup.
func validateItems(items []model.OrderItemRequest) error {
	if len(items) == 0 {
		return model.NewValidationError("orderItems must contain at least one item")
	}

	seen := make(map[uuid.UUID]struct{}, len(items))
	for i, item := range items {
		if item.VariantID == uuid.Nil {
			return model.NewValidationError("orderItems[%d].variant is required", i)
		}
		if item.Quantity <= 0 {
			return model.NewValidationError("orderItems[%d].quantity must be greater than zero", i)
		}
		if _, dup := seen[item.VariantID]; dup {
			return model.NewValidationError("orderItems[%d].variant %s is listed more than once", i, item.VariantID)
		}
		seen[item.VariantID] = struct{}{}
	}
	return nil
}

// unitPrice is what one unit of the variant sells for.
func unitPrice(v *model.VariantDetail) decimal.Decimal {
	if v.PriceSale.IsPositive() {
		return v.PriceSale
	}
	return v.Price
}

// resolveItems loads the requested variants and snapshots them as order
// lines. Every variant must be on sale and have enough stock right now; the
// stock is checked again atomically when it is reserved.
func resolveItems(ctx context.Context, inventory repository.InventoryRepository, req []model.OrderItemRequest) ([]model.OrderItem, []shipping.Parcel, error) {
	ids := make([]uuid.UUID, len(req))
	for i, item := range req {
		ids[i] = item.VariantID
	}

	variants, err := inventory.GetVariants(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load variants: %w", err)
	}

	items := make([]model.OrderItem, len(req))
	parcels := make([]shipping.Parcel, len(req))
	for i, line := range req {
		v, ok := variants[line.VariantID]
		if !ok || !v.Available() {
			return nil, nil, model.NewVariantNotFoundError(line.VariantID)
		}
		if v.Quantity < line.Quantity {
			return nil, nil, model.NewInsufficientStockError(v.DisplayName())
		}

		items[i] = model.OrderItem{
			ProductID:  v.ProductID,
			VariantID:  v.ID,
			Name:       v.DisplayName(),
			Image:      v.ListImage(),
			Attributes: v.Attributes,
			Price:      unitPrice(&v),
			Quantity:   line.Quantity,
		}
		parcels[i] = shipping.Parcel{
			Weight:   v.Weight,
			Length:   v.Length,
			Width:    v.Width,
			Height:   v.Height,
			Quantity: line.Quantity,
		}
	}

	return items, parcels, nil
}

// discountLines projects order lines for the discount evaluator.
func discountLines(items []model.OrderItem) []discount.Line {
	lines := make([]discount.Line, len(items))
	for i, item := range items {
		lines[i] = discount.Line{ProductID: item.ProductID, Price: item.Price, Quantity: item.Quantity}
	}
	return lines
}
