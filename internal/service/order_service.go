package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"fashion-shop/internal/discount"
	"fashion-shop/internal/events"
	"fashion-shop/internal/model"
	"fashion-shop/internal/payment"
	"fashion-shop/internal/repository"
	"fashion-shop/internal/shipping"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

var defaultDescriptions = map[model.OrderStatus]string{
	model.StatusPlaced:     "Order has been placed",
	model.StatusConfirm:    "Order has been confirmed",
	model.StatusDelivering: "Order has been handed to the carrier",
	model.StatusDelivered:  "Order has been delivered",
	model.StatusCompleted:  "Buyer has received the order",
	model.StatusCancelled:  "Order has been cancelled",
	model.StatusPaid:       "Order has been paid",
}

func describe(status model.OrderStatus, note string) string {
	if note != "" {
		return note
	}
	return defaultDescriptions[status]
}

// OrderDependencies are the collaborators of the order workflow.
type OrderDependencies struct {
	Orders     repository.OrderRepository
	Inventory  repository.InventoryRepository
	Discounts  repository.DiscountRepository
	Payments   repository.PaymentRepository
	Deliveries repository.DeliveryRepository
	Carts      repository.CartRepository
	Carrier    shipping.Carrier
	Directory  shipping.Directory
	Gateway    payment.Gateway
	Publisher  events.Publisher

	// ServiceID is the carrier service recorded on new deliveries.
	ServiceID int
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// orderService implements OrderService.
type orderService struct {
	OrderDependencies
	logger zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(deps OrderDependencies, logger zerolog.Logger) OrderService {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Publisher == nil {
		deps.Publisher = events.Nop{}
	}
	if deps.Directory == nil {
		deps.Directory = deps.Carrier
	}
	return &orderService{
		OrderDependencies: deps,
		logger:            logger.With().Str("service", "order").Logger(),
	}
}

// placement is a fully priced order that has not been written yet.
type placement struct {
	order    *model.Order
	discount *model.DiscountCode
}

// PlaceOrder runs decide, commit and notify in that order. Nothing is
// written until every check and external lookup has succeeded.
func (s *orderService) PlaceOrder(ctx context.Context, actor model.Actor, req *model.PlaceOrderRequest) (*model.Order, error) {
	p, err := s.decide(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	if err := s.commit(ctx, p); err != nil {
		return nil, err
	}

	return s.notify(ctx, actor, p)
}

func validatePlaceOrder(req *model.PlaceOrderRequest) error {
	if req == nil {
		return model.NewValidationError("order request is required")
	}
	if err := validateItems(req.Items); err != nil {
		return err
	}

	addr := req.ShippingAddress
	switch {
	case addr.Name == "":
		return model.NewValidationError("shippingAddress.name is required")
	case addr.Phone == "":
		return model.NewValidationError("shippingAddress.phone is required")
	case addr.Address == "":
		return model.NewValidationError("shippingAddress.address is required")
	case addr.ProvinceID <= 0:
		return model.NewValidationError("shippingAddress.province is required")
	case addr.DistrictID <= 0:
		return model.NewValidationError("shippingAddress.district is required")
	case addr.WardCode == "":
		return model.NewValidationError("shippingAddress.ward is required")
	}

	if !req.PaymentMethod.Valid() {
		return model.NewValidationError("paymentMethod must be %q or %q", model.PaymentMethodCash, model.PaymentMethodGateway)
	}
	return nil
}

// shippingQuote is the result of the placement fan-out.
type shippingQuote struct {
	fee          decimal.Decimal
	leadTime     time.Time
	provinceName string
	districtName string
	wardName     string
}

// quote asks the carrier for price, lead time and the address names at
// once. Any failure cancels the rest and is returned as is.
func (s *orderService) quote(ctx context.Context, addr model.ShippingAddress, pkg model.Package, insurance decimal.Decimal) (*shippingQuote, error) {
	req := shipping.QuoteRequest{
		ToDistrictID:   addr.DistrictID,
		ToWardCode:     addr.WardCode,
		Package:        pkg,
		InsuranceValue: insurance,
	}

	var q shippingQuote
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		q.fee, err = s.Carrier.CalculateFee(gctx, req)
		return err
	})
	g.Go(func() (err error) {
		q.leadTime, err = s.Carrier.EstimateLeadTime(gctx, req)
		return err
	})
	g.Go(func() (err error) {
		q.provinceName, err = shipping.ProvinceName(gctx, s.Directory, addr.ProvinceID)
		return err
	})
	g.Go(func() (err error) {
		q.districtName, err = shipping.DistrictName(gctx, s.Directory, addr.ProvinceID, addr.DistrictID)
		return err
	})
	g.Go(func() (err error) {
		q.wardName, err = shipping.WardName(gctx, s.Directory, addr.DistrictID, addr.WardCode)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *orderService) decide(ctx context.Context, actor model.Actor, req *model.PlaceOrderRequest) (*placement, error) {
	if err := validatePlaceOrder(req); err != nil {
		return nil, err
	}

	items, parcels, err := resolveItems(ctx, s.Inventory, req.Items)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", actor.ID.String()).Msg("order items rejected")
		return nil, err
	}

	lines := discountLines(items)
	subtotal := discount.Subtotal(lines)
	now := s.Clock().UTC()

	var code *model.DiscountCode
	amount := decimal.Zero
	if c := discount.NormalizeCode(req.DiscountCode); c != "" {
		code, err = s.Discounts.GetByCode(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("failed to load discount code: %w", err)
		}
		amount, err = discount.Evaluate(code, actor.ID, lines, now)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("discount_code", c).
				Str("user_id", actor.ID.String()).
				Msg("discount code rejected")
			return nil, err
		}
	}

	pkg := shipping.PackageFor(parcels)
	q, err := s.quote(ctx, req.ShippingAddress, pkg, subtotal)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", actor.ID.String()).Msg("shipping quote failed")
		return nil, err
	}

	totals := model.ComputeTotals(subtotal, q.fee, amount)
	if req.PaymentMethod == model.PaymentMethodGateway {
		if !totals.Payment.IsPositive() {
			return nil, model.NewValidationError("orders with nothing to pay must use %q", model.PaymentMethodCash)
		}
		// The gateway charges whole currency units; the stored amount must be
		// exactly what is sent so the notification can be matched.
		if !totals.Payment.IsInteger() {
			return nil, model.NewValidationError("online payment needs a whole amount, %s must be paid with %q",
				totals.Payment.String(), model.PaymentMethodCash)
		}
	}

	orderID := uuid.New()
	for i := range items {
		items[i].ID = uuid.New()
		items[i].OrderID = orderID
	}

	addr := req.ShippingAddress
	addr.ProvinceName = q.provinceName
	addr.DistrictName = q.districtName
	addr.WardName = q.wardName

	placed := model.NewStatusEntry(model.StatusPlaced, describe(model.StatusPlaced, ""), &actor)
	placed.CreatedAt = now

	order := &model.Order{
		ID:                orderID,
		UserID:            actor.ID,
		Username:          actor.Name,
		Items:             items,
		ShippingAddress:   addr,
		TotalProductPrice: totals.ProductPrice,
		ShippingPrice:     totals.ShippingPrice,
		TotalDiscount:     totals.Discount,
		TotalPayment:      totals.Payment,
		Status:            model.StatusPlaced,
		StatusHistory:     []model.StatusEntry{placed},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if code != nil {
		c := code.Code
		order.DiscountCode = &c
	}

	requiredNote := req.RequiredNote
	if requiredNote == "" {
		requiredNote = model.DefaultRequiredNote
	}
	leadTime := q.leadTime
	order.Delivery = &model.Delivery{
		ID:             uuid.New(),
		OrderID:        orderID,
		UserID:         actor.ID,
		ToName:         addr.Name,
		ToPhone:        addr.Phone,
		ToAddress:      addr.Address,
		ToProvinceID:   addr.ProvinceID,
		ToProvinceName: addr.ProvinceName,
		ToDistrictID:   addr.DistrictID,
		ToDistrictName: addr.DistrictName,
		ToWardCode:     addr.WardCode,
		ToWardName:     addr.WardName,
		Package:        pkg,
		ServiceID:      s.ServiceID,
		InsuranceValue: subtotal,
		Note:           req.Note,
		RequiredNote:   requiredNote,
		Fee:            q.fee,
		LeadTime:       &leadTime,
		Status:         "pending",
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	order.Payment = &model.Payment{
		ID:        uuid.New(),
		OrderID:   orderID,
		UserID:    actor.ID,
		Method:    req.PaymentMethod,
		Amount:    totals.Payment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.PaymentMethod == model.PaymentMethodGateway {
		requestID := uuid.NewString()
		order.Payment.RequestID = &requestID
	}

	return &placement{order: order, discount: code}, nil
}

func (s *orderService) rollback(ctx context.Context, tx pgx.Tx) {
	// Rollback after Commit reports ErrTxClosed.
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		s.logger.Error().Err(err).Msg("failed to rollback transaction")
	}
}

func (s *orderService) commit(ctx context.Context, p *placement) error {
	order := p.order

	tx, err := s.Orders.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to place order: %w", err)
	}
	defer s.rollback(ctx, tx)

	if err := s.Inventory.Reserve(ctx, tx, order.Items); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("stock reservation failed")
		return err
	}

	if p.discount != nil {
		if err := s.Discounts.MarkUsed(ctx, tx, p.discount.Code, order.UserID); err != nil {
			s.logger.Warn().Err(err).Str("discount_code", p.discount.Code).Msg("discount redemption failed")
			return err
		}
	}

	if err := s.Orders.Create(ctx, tx, order); err != nil {
		return fmt.Errorf("failed to place order: %w", err)
	}
	if err := s.Deliveries.Create(ctx, tx, order.Delivery); err != nil {
		return fmt.Errorf("failed to place order: %w", err)
	}
	if err := s.Payments.Create(ctx, tx, order.Payment); err != nil {
		return fmt.Errorf("failed to place order: %w", err)
	}
	if err := s.Carts.RemoveVariants(ctx, tx, order.UserID, order.VariantIDs()); err != nil {
		return fmt.Errorf("failed to place order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to place order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", order.UserID.String()).
		Int("item_count", len(order.Items)).
		Str("total_payment", order.TotalPayment.String()).
		Msg("order placed")

	return nil
}

func (s *orderService) notify(ctx context.Context, actor model.Actor, p *placement) (*model.Order, error) {
	order := p.order

	if order.Payment.Method == model.PaymentMethodGateway {
		result, err := s.Gateway.CreatePayment(ctx, payment.Request{
			OrderID:   order.ID.String(),
			RequestID: *order.Payment.RequestID,
			Amount:    order.TotalPayment,
			OrderInfo: "Payment for order " + order.ID.String(),
		})
		if err != nil {
			if cerr := s.compensate(ctx, p, err); cerr != nil {
				return nil, fmt.Errorf("order %s needs manual review, payment could not be started (%v) and the placement was not rolled back: %w",
					order.ID, err, cerr)
			}
			return nil, err
		}

		payURL := result.PayURL
		order.Payment.PayURL = &payURL
		if err := s.Payments.SetPayURL(ctx, order.ID, payURL); err != nil {
			s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to store pay url")
		}
	}

	s.publish(ctx, events.NewOrderEvent(events.OrderPlaced, order, &actor))
	return order, nil
}

// compensate undoes a committed placement whose payment could not be
// started: the order is cancelled and hidden, stock and discount usage go
// back. A non-nil error leaves the order placed with its stock reserved.
func (s *orderService) compensate(ctx context.Context, p *placement, cause error) error {
	ctx = context.WithoutCancel(ctx)
	order := p.order
	log := s.logger.With().Str("order_id", order.ID.String()).AnErr("cause", cause).Logger()

	err := s.undoPlacement(ctx, p, cause)
	if err != nil {
		log.Error().Err(err).Msg("failed to compensate order placement, order left placed with stock reserved")
		return err
	}

	log.Warn().Msg("order placement rolled back after payment gateway failure")
	return nil
}

func (s *orderService) undoPlacement(ctx context.Context, p *placement, cause error) error {
	order := p.order

	tx, err := s.Orders.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin compensation: %w", err)
	}
	defer s.rollback(ctx, tx)

	entry := model.NewStatusEntry(model.StatusCancelled, "Payment gateway request failed: "+cause.Error(), nil)
	ok, err := s.Orders.TransitionStatus(ctx, tx, order.ID, []model.OrderStatus{model.StatusPlaced}, entry)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	if !ok {
		return fmt.Errorf("order %s is no longer placed", order.ID)
	}

	if err := s.Inventory.Release(ctx, tx, order.Items); err != nil {
		return fmt.Errorf("failed to release reserved stock: %w", err)
	}
	if p.discount != nil {
		if err := s.Discounts.ReleaseUsage(ctx, tx, p.discount.Code, order.UserID); err != nil {
			return fmt.Errorf("failed to release discount usage: %w", err)
		}
	}
	if err := s.Orders.Disable(ctx, tx, order.ID); err != nil {
		return fmt.Errorf("failed to disable order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit compensation: %w", err)
	}
	return nil
}

func (s *orderService) publish(ctx context.Context, evts ...events.Event) {
	if err := s.Publisher.Publish(ctx, evts...); err != nil {
		s.logger.Error().Err(err).Int("count", len(evts)).Msg("failed to publish order events")
	}
}

// GetByID returns the order when the actor may see it.
func (s *orderService) GetByID(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error) {
	order, err := s.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || !actor.CanAccess(order.UserID) {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func normalizeFilter(filter model.OrderFilter) (model.OrderFilter, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Status != nil && !filter.Status.IsLifecycle() {
		return filter, model.NewValidationError("unknown order status %q", *filter.Status)
	}
	return filter, nil
}

func (s *orderService) list(ctx context.Context, filter model.OrderFilter) (*model.OrderPage, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	orders, total, err := s.Orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []model.Order{}
	}

	return &model.OrderPage{
		Orders: orders,
		Page:   filter.Page,
		Pages:  int(math.Ceil(float64(total) / float64(filter.Limit))),
		Total:  total,
	}, nil
}

// List returns every buyer's orders. Staff only.
func (s *orderService) List(ctx context.Context, actor model.Actor, filter model.OrderFilter) (*model.OrderPage, error) {
	if !actor.Role.IsStaff() {
		return nil, model.ErrForbidden
	}
	filter.UserID = nil
	return s.list(ctx, filter)
}

// ListByUser returns one buyer's orders to that buyer or to staff.
func (s *orderService) ListByUser(ctx context.Context, actor model.Actor, userID uuid.UUID, filter model.OrderFilter) (*model.OrderPage, error) {
	if !actor.CanAccess(userID) {
		return nil, model.ErrForbidden
	}
	filter.UserID = &userID
	return s.list(ctx, filter)
}

// transitionHook runs inside the transition transaction, after the order
// row is locked and the move is known to be legal.
type transitionHook func(ctx context.Context, tx pgx.Tx, order *model.Order) error

func (s *orderService) transition(ctx context.Context, actor model.Actor, id uuid.UUID, action model.Action, note string, hook transitionHook) (*model.Order, error) {
	if _, err := model.AllowedFrom(action, actor.Role); err != nil {
		return nil, err
	}

	tx, err := s.Orders.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to %s order: %w", action, err)
	}
	defer s.rollback(ctx, tx)

	order, err := s.Orders.LockByID(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to %s order: %w", action, err)
	}
	if order == nil || !actor.CanAccess(order.UserID) {
		return nil, model.ErrOrderNotFound
	}

	to, from, err := model.Transition(action, order.Status, actor.Role)
	if err != nil {
		s.logger.Debug().
			Str("order_id", id.String()).
			Str("action", string(action)).
			Str("status", string(order.Status)).
			Msg("transition rejected")
		return nil, err
	}

	if hook != nil {
		if err := hook(ctx, tx, order); err != nil {
			return nil, err
		}
	}

	entry := model.NewStatusEntry(to, describe(to, note), &actor)
	ok, err := s.Orders.TransitionStatus(ctx, tx, id, from, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to %s order: %w", action, err)
	}
	if !ok {
		return nil, model.ErrConcurrentTransition
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to %s order: %w", action, err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(order.Status)).
		Str("to", string(to)).
		Str("actor_id", actor.ID.String()).
		Str("role", string(actor.Role)).
		Msg("order status changed")

	updated, err := s.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	if updated == nil {
		return nil, model.ErrOrderNotFound
	}

	s.publish(ctx, events.NewOrderEvent(events.OrderStatusChanged, updated, &actor))
	return updated, nil
}

func (s *orderService) Confirm(ctx context.Context, actor model.Actor, id uuid.UUID, req model.TransitionRequest) (*model.Order, error) {
	return s.transition(ctx, actor, id, model.ActionConfirm, req.Description, nil)
}

func (s *orderService) ConfirmDelivery(ctx context.Context, actor model.Actor, id uuid.UUID, req model.TransitionRequest) (*model.Order, error) {
	var shipped string
	order, err := s.transition(ctx, actor, id, model.ActionDelivery, req.Description,
		func(ctx context.Context, tx pgx.Tx, order *model.Order) error {
			code, err := s.ship(ctx, tx, order)
			shipped = code
			return err
		})
	if err != nil && shipped != "" {
		// The carrier order exists but the order row never recorded it.
		s.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Str("delivery_code", shipped).
			Msg("carrier shipment created but order not updated, reconcile manually")
	}
	return order, err
}

func (s *orderService) ConfirmDelivered(ctx context.Context, actor model.Actor, id uuid.UUID, req model.TransitionRequest) (*model.Order, error) {
	return s.transition(ctx, actor, id, model.ActionDelivered, req.Description,
		func(ctx context.Context, tx pgx.Tx, order *model.Order) error {
			return s.appendDeliveryStatus(ctx, tx, order.ID, "delivered")
		})
}

func (s *orderService) ConfirmReceived(ctx context.Context, actor model.Actor, id uuid.UUID, req model.TransitionRequest) (*model.Order, error) {
	return s.transition(ctx, actor, id, model.ActionReceived, req.Description,
		func(ctx context.Context, tx pgx.Tx, order *model.Order) error {
			return s.Orders.MarkItemsReviewable(ctx, tx, order.ID)
		})
}

func (s *orderService) Cancel(ctx context.Context, actor model.Actor, id uuid.UUID, req model.TransitionRequest) (*model.Order, error) {
	return s.transition(ctx, actor, id, model.ActionCancel, req.Description,
		func(ctx context.Context, tx pgx.Tx, order *model.Order) error {
			return s.Inventory.Release(ctx, tx, order.Items)
		})
}

// ship creates the carrier shipping order while the order row is locked.
// It returns the carrier's delivery code once the shipment exists, even if
// recording it fails afterwards.
func (s *orderService) ship(ctx context.Context, tx pgx.Tx, order *model.Order) (string, error) {
	delivery, err := s.Deliveries.GetByOrderID(ctx, order.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load delivery: %w", err)
	}
	if delivery == nil {
		return "", fmt.Errorf("order %s has no delivery record", order.ID)
	}

	pay, err := s.Payments.GetByOrderID(ctx, order.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load payment: %w", err)
	}
	cod := order.TotalPayment
	if pay != nil && pay.Paid {
		cod = decimal.Zero
	}

	items := make([]shipping.ShipmentItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = shipping.ShipmentItem{Name: item.Name, Quantity: item.Quantity, Price: item.Price.IntPart()}
	}

	shipment, err := s.Carrier.CreateShipment(ctx, shipping.ShipmentRequest{
		ClientOrderCode: order.ID.String(),
		Delivery:        *delivery,
		CODAmount:       cod,
		Items:           items,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("carrier rejected shipping order")
		return "", err
	}

	if err := s.Deliveries.SetShipment(ctx, tx, delivery.ID, shipment); err != nil {
		return shipment.DeliveryCode, err
	}
	return shipment.DeliveryCode, s.Deliveries.AppendStatus(ctx, tx, delivery.ID, model.DeliveryStatusEntry{
		Status:      "ready_to_pick",
		Description: shipping.StatusDescription("ready_to_pick"),
		CreatedAt:   s.Clock().UTC(),
	})
}

func (s *orderService) appendDeliveryStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status string) error {
	delivery, err := s.Deliveries.GetByOrderID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load delivery: %w", err)
	}
	if delivery == nil {
		return fmt.Errorf("order %s has no delivery record", orderID)
	}
	return s.Deliveries.AppendStatus(ctx, tx, delivery.ID, model.DeliveryStatusEntry{
		Status:      status,
		Description: shipping.StatusDescription(status),
		CreatedAt:   s.Clock().UTC(),
	})
}

// PaymentNotification accepts the gateway's report only when it names the
// request and amount that were sent.
func (s *orderService) PaymentNotification(ctx context.Context, id uuid.UUID, n model.PaymentNotification) error {
	tx, err := s.Orders.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	defer s.rollback(ctx, tx)

	order, err := s.Orders.LockByID(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	if order == nil {
		return model.ErrOrderNotFound
	}

	pay, err := s.Payments.LockByOrderID(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	if pay == nil {
		return model.ErrOrderNotFound
	}

	if (n.OrderID != "" && n.OrderID != id.String()) ||
		pay.RequestID == nil || *pay.RequestID != n.RequestID ||
		!pay.Amount.Equal(n.Amount) {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("request_id", n.RequestID).
			Str("amount", n.Amount.String()).
			Msg("payment notification does not match")
		return model.ErrPaymentMismatch
	}

	return s.markPaid(ctx, tx, order, nil, "Payment confirmed by the gateway")
}

// MarkPaid records a payment collected outside the gateway. Admin only.
func (s *orderService) MarkPaid(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error) {
	if actor.Role != model.RoleAdmin {
		return nil, model.ErrForbidden
	}

	tx, err := s.Orders.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	defer s.rollback(ctx, tx)

	order, err := s.Orders.LockByID(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if err := s.markPaid(ctx, tx, order, &actor, ""); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, actor, id)
}

func (s *orderService) markPaid(ctx context.Context, tx pgx.Tx, order *model.Order, actor *model.Actor, note string) error {
	ok, err := s.Payments.MarkPaid(ctx, tx, order.ID)
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	if !ok {
		return model.ErrAlreadyPaid
	}

	entry := model.NewStatusEntry(model.StatusPaid, describe(model.StatusPaid, note), actor)
	if err := s.Orders.AppendHistory(ctx, tx, order.ID, entry); err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}

	s.logger.Info().Str("order_id", order.ID.String()).Msg("order paid")
	s.publish(ctx, events.NewOrderEvent(events.OrderPaid, order, actor))
	return nil
}

// GetPayURL returns the stored gateway link of an unpaid online order.
func (s *orderService) GetPayURL(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.PayURLResponse, error) {
	order, err := s.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || order.UserID != actor.ID {
		return nil, model.ErrOrderNotFound
	}

	pay := order.Payment
	if pay == nil || pay.Method != model.PaymentMethodGateway {
		return nil, model.ErrPaymentNotPayable
	}
	if pay.Paid {
		return nil, model.ErrAlreadyPaid
	}
	if pay.PayURL == nil {
		return nil, model.ErrPaymentNotPayable
	}
	return &model.PayURLResponse{PayURL: *pay.PayURL}, nil
}

// PrintLabel returns the carrier label link of a shipped order. Staff only.
func (s *orderService) PrintLabel(ctx context.Context, actor model.Actor, id uuid.UUID, size shipping.PageSize) (string, error) {
	if !actor.Role.IsStaff() {
		return "", model.ErrForbidden
	}
	if size == "" {
		size = shipping.PageA5
	}
	if !size.Valid() {
		return "", model.NewValidationError("pageSize must be one of %s, %s, %s", shipping.PageA5, shipping.Page80x80, shipping.Page52x70)
	}

	order, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return "", err
	}
	if order.Delivery == nil || order.Delivery.DeliveryCode == nil {
		return "", model.ErrShipmentNotCreated
	}

	return s.Carrier.PrintURL(ctx, *order.Delivery.DeliveryCode, size)
}
