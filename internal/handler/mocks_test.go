package handler

import (
	"context"

	"fashion-shop/internal/model"
	"fashion-shop/internal/shipping"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) order(args mock.Arguments) (*model.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) page(args mock.Arguments) (*model.OrderPage, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderPage), args.Error(1)
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, actor model.Actor, req *model.PlaceOrderRequest) (*model.Order, error) {
	return m.order(m.Called(ctx, actor, req))
}

func (m *MockOrderService) GetByID(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error) {
	return m.order(m.Called(ctx, actor, id))
}

func (m *MockOrderService) List(ctx context.Context, actor model.Actor, filter model.OrderFilter) (*model.OrderPage, error) {
	return m.page(m.Called(ctx, actor, filter))
}

func (m *MockOrderService) ListByUser(ctx context.Context, actor model.Actor, userID uuid.UUID, filter model.OrderFilter) (*model.OrderPage, error) {
	return m.page(m.Called(ctx, actor, userID, filter))
}

func (m *MockOrderService) Confirm(ctx context.Context, actor model.Actor, id uuid.UUID, req model.TransitionRequest) (*model.Order, error) {
	return m.order(m.Called(ctx, actor, id, req))
}

func (m *MockOrderService) ConfirmDelivery(ctx context.Context, actor model.Actor, id uuid.UUID, req model.TransitionRequest) (*model.Order, error) {
	return m.order(m.Called(ctx, actor, id, req))
}

func (m *MockOrderService) ConfirmDelivered(ctx context.Context, actor model.Actor, id uuid.UUID, req model.TransitionRequest) (*model.Order, error) {
	return m.order(m.Called(ctx, actor, id, req))
}

func (m *MockOrderService) ConfirmReceived(ctx context.Context, actor model.Actor, id uuid.UUID, req model.TransitionRequest) (*model.Order, error) {
	return m.order(m.Called(ctx, actor, id, req))
}

func (m *MockOrderService) Cancel(ctx context.Context, actor model.Actor, id uuid.UUID, req model.TransitionRequest) (*model.Order, error) {
	return m.order(m.Called(ctx, actor, id, req))
}

func (m *MockOrderService) PaymentNotification(ctx context.Context, id uuid.UUID, n model.PaymentNotification) error {
	return m.Called(ctx, id, n).Error(0)
}

func (m *MockOrderService) MarkPaid(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error) {
	return m.order(m.Called(ctx, actor, id))
}

func (m *MockOrderService) GetPayURL(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.PayURLResponse, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PayURLResponse), args.Error(1)
}

func (m *MockOrderService) PrintLabel(ctx context.Context, actor model.Actor, id uuid.UUID, size shipping.PageSize) (string, error) {
	args := m.Called(ctx, actor, id, size)
	return args.String(0), args.Error(1)
}

type MockDiscountService struct {
	mock.Mock
}

func (m *MockDiscountService) code(args mock.Arguments) (*model.DiscountCode, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DiscountCode), args.Error(1)
}

func (m *MockDiscountService) Preview(ctx context.Context, actor model.Actor, req *model.DiscountPreviewRequest) (*model.DiscountPreview, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DiscountPreview), args.Error(1)
}

func (m *MockDiscountService) List(ctx context.Context) ([]model.DiscountCode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DiscountCode), args.Error(1)
}

func (m *MockDiscountService) GetByCode(ctx context.Context, code string) (*model.DiscountCode, error) {
	return m.code(m.Called(ctx, code))
}

func (m *MockDiscountService) Create(ctx context.Context, req *model.DiscountCodeRequest) (*model.DiscountCode, error) {
	return m.code(m.Called(ctx, req))
}

func (m *MockDiscountService) Update(ctx context.Context, id uuid.UUID, req *model.DiscountCodeRequest) (*model.DiscountCode, error) {
	return m.code(m.Called(ctx, id, req))
}

func (m *MockDiscountService) Disable(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDiscountService) Upsert(ctx context.Context, def *model.DiscountCodeRequest) error {
	return m.Called(ctx, def).Error(0)
}

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) GetItems(ctx context.Context, actor model.Actor) ([]model.CartItem, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItem), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, actor model.Actor, req *model.CartItemRequest) ([]model.CartItem, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItem), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, actor model.Actor, variantID uuid.UUID) error {
	return m.Called(ctx, actor, variantID).Error(0)
}

type MockDeliveryService struct {
	mock.Mock
}

func (m *MockDeliveryService) Provinces(ctx context.Context) ([]shipping.Province, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.Province), args.Error(1)
}

func (m *MockDeliveryService) Districts(ctx context.Context, provinceID int) ([]shipping.District, error) {
	args := m.Called(ctx, provinceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.District), args.Error(1)
}

func (m *MockDeliveryService) Wards(ctx context.Context, districtID int) ([]shipping.Ward, error) {
	args := m.Called(ctx, districtID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.Ward), args.Error(1)
}

func (m *MockDeliveryService) Quote(ctx context.Context, req *model.ShippingQuoteRequest) (*model.ShippingQuote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShippingQuote), args.Error(1)
}
