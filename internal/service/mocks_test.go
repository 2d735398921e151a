package service

import (
	"context"
	"time"

	"fashion-shop/internal/events"
	"fashion-shop/internal/model"
	"fashion-shop/internal/payment"
	"fashion-shop/internal/shipping"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// MockInventoryRepository is a mock implementation of InventoryRepository.
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) GetVariants(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.VariantDetail, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]model.VariantDetail), args.Error(1)
}

func (m *MockInventoryRepository) Reserve(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	return m.Called(ctx, tx, items).Error(0)
}

func (m *MockInventoryRepository) Release(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	return m.Called(ctx, tx, items).Error(0)
}

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	return m.Called(ctx, tx, order).Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.Order), args.Int(1), args.Error(2)
}

func (m *MockOrderRepository) LockByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) TransitionStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from []model.OrderStatus, entry model.StatusEntry) (bool, error) {
	args := m.Called(ctx, tx, id, from, entry)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) AppendHistory(ctx context.Context, tx pgx.Tx, id uuid.UUID, entry model.StatusEntry) error {
	return m.Called(ctx, tx, id, entry).Error(0)
}

func (m *MockOrderRepository) Disable(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	return m.Called(ctx, tx, id).Error(0)
}

func (m *MockOrderRepository) MarkItemsReviewable(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	return m.Called(ctx, tx, id).Error(0)
}

// MockDiscountRepository is a mock implementation of DiscountRepository.
type MockDiscountRepository struct {
	mock.Mock
}

func (m *MockDiscountRepository) GetByCode(ctx context.Context, code string) (*model.DiscountCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DiscountCode), args.Error(1)
}

func (m *MockDiscountRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.DiscountCode, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DiscountCode), args.Error(1)
}

func (m *MockDiscountRepository) List(ctx context.Context) ([]model.DiscountCode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DiscountCode), args.Error(1)
}

func (m *MockDiscountRepository) Create(ctx context.Context, code *model.DiscountCode) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockDiscountRepository) Update(ctx context.Context, code *model.DiscountCode) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockDiscountRepository) Disable(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDiscountRepository) Upsert(ctx context.Context, def *model.DiscountCodeRequest) error {
	return m.Called(ctx, def).Error(0)
}

func (m *MockDiscountRepository) MarkUsed(ctx context.Context, tx pgx.Tx, code string, userID uuid.UUID) error {
	return m.Called(ctx, tx, code, userID).Error(0)
}

func (m *MockDiscountRepository) ReleaseUsage(ctx context.Context, tx pgx.Tx, code string, userID uuid.UUID) error {
	return m.Called(ctx, tx, code, userID).Error(0)
}

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, tx pgx.Tx, p *model.Payment) error {
	return m.Called(ctx, tx, p).Error(0)
}

func (m *MockPaymentRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) LockByOrderID(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.Payment, error) {
	args := m.Called(ctx, tx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) MarkPaid(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) SetPayURL(ctx context.Context, orderID uuid.UUID, payURL string) error {
	return m.Called(ctx, orderID, payURL).Error(0)
}

// MockDeliveryRepository is a mock implementation of DeliveryRepository.
type MockDeliveryRepository struct {
	mock.Mock
}

func (m *MockDeliveryRepository) Create(ctx context.Context, tx pgx.Tx, d *model.Delivery) error {
	return m.Called(ctx, tx, d).Error(0)
}

func (m *MockDeliveryRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Delivery, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) SetShipment(ctx context.Context, tx pgx.Tx, deliveryID uuid.UUID, s model.Shipment) error {
	return m.Called(ctx, tx, deliveryID, s).Error(0)
}

func (m *MockDeliveryRepository) AppendStatus(ctx context.Context, tx pgx.Tx, deliveryID uuid.UUID, entry model.DeliveryStatusEntry) error {
	return m.Called(ctx, tx, deliveryID, entry).Error(0)
}

// MockCartRepository is a mock implementation of CartRepository.
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) GetItems(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItem), args.Error(1)
}

func (m *MockCartRepository) Upsert(ctx context.Context, userID, variantID uuid.UUID, quantity int) error {
	return m.Called(ctx, userID, variantID, quantity).Error(0)
}

func (m *MockCartRepository) Remove(ctx context.Context, userID, variantID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, variantID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) RemoveVariants(ctx context.Context, tx pgx.Tx, userID uuid.UUID, variantIDs []uuid.UUID) error {
	return m.Called(ctx, tx, userID, variantIDs).Error(0)
}

// MockCarrier is a mock implementation of shipping.Carrier.
type MockCarrier struct {
	mock.Mock
}

func (m *MockCarrier) Provinces(ctx context.Context) ([]shipping.Province, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.Province), args.Error(1)
}

func (m *MockCarrier) Districts(ctx context.Context, provinceID int) ([]shipping.District, error) {
	args := m.Called(ctx, provinceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.District), args.Error(1)
}

func (m *MockCarrier) Wards(ctx context.Context, districtID int) ([]shipping.Ward, error) {
	args := m.Called(ctx, districtID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.Ward), args.Error(1)
}

func (m *MockCarrier) CalculateFee(ctx context.Context, req shipping.QuoteRequest) (decimal.Decimal, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockCarrier) EstimateLeadTime(ctx context.Context, req shipping.QuoteRequest) (time.Time, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockCarrier) CreateShipment(ctx context.Context, req shipping.ShipmentRequest) (model.Shipment, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.Shipment), args.Error(1)
}

func (m *MockCarrier) PrintURL(ctx context.Context, deliveryCode string, size shipping.PageSize) (string, error) {
	args := m.Called(ctx, deliveryCode, size)
	return args.String(0), args.Error(1)
}

// MockGateway is a mock implementation of payment.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePayment(ctx context.Context, req payment.Request) (payment.Result, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(payment.Result), args.Error(1)
}

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, evts ...events.Event) error {
	return m.Called(ctx, evts).Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed bool
}

// newMockTx returns a transaction whose deferred Rollback is always allowed.
func newMockTx() *MockTx {
	tx := new(MockTx)
	tx.On("Rollback", mock.Anything).Return(nil).Maybe()
	return tx
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = args.Error(0) == nil
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	if m.committed {
		return pgx.ErrTxClosed
	}
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
