package handler

import (
	"context"
	"net/http"

	"fashion-shop/internal/model"
	"fashion-shop/internal/service"
	"fashion-shop/internal/shipping"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Place handles POST /order.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	var req model.PlaceOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), actor, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusCreated, order)
}

func orderFilter(r *http.Request) (model.OrderFilter, error) {
	var filter model.OrderFilter
	var err error
	if filter.Limit, err = queryInt(r, "limit", 0); err != nil {
		return filter, err
	}
	if filter.Page, err = queryInt(r, "page", 0); err != nil {
		return filter, err
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := model.OrderStatus(raw)
		filter.Status = &status
	}
	return filter, nil
}

// List handles GET /order.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	filter, err := orderFilter(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	page, err := h.service.List(r.Context(), actor, filter)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, page)
}

// ListByUser handles GET /order/ordered/{userId}.
func (h *OrderHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	userID, err := pathUUID(r, "userId")
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	filter, err := orderFilter(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	page, err := h.service.ListByUser(r.Context(), actor, userID, filter)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, page)
}

// GetByID handles GET /order/{id}.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	order, err := h.service.GetByID(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, order)
}

type transitionFunc func(ctx context.Context, actor model.Actor, id uuid.UUID, req model.TransitionRequest) (*model.Order, error)

// transition serves the PATCH /order/{id}/<action> routes. The body is
// optional.
func (h *OrderHandler) transition(fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			writeServiceError(w, err, h.logger)
			return
		}
		id, err := pathUUID(r, "id")
		if err != nil {
			writeServiceError(w, err, h.logger)
			return
		}

		var req model.TransitionRequest
		if err := decodeOptionalJSON(r, &req); err != nil {
			writeServiceError(w, err, h.logger)
			return
		}

		order, err := fn(r.Context(), actor, id, req)
		if err != nil {
			writeServiceError(w, err, h.logger)
			return
		}
		writeData(w, http.StatusOK, order)
	}
}

// Confirm handles PATCH /order/{id}/confirm.
func (h *OrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(h.service.Confirm)(w, r)
}

// ConfirmDelivery handles PATCH /order/{id}/delivery.
func (h *OrderHandler) ConfirmDelivery(w http.ResponseWriter, r *http.Request) {
	h.transition(h.service.ConfirmDelivery)(w, r)
}

// ConfirmDelivered handles PATCH /order/{id}/delivered.
func (h *OrderHandler) ConfirmDelivered(w http.ResponseWriter, r *http.Request) {
	h.transition(h.service.ConfirmDelivered)(w, r)
}

// ConfirmReceived handles PATCH /order/{id}/received.
func (h *OrderHandler) ConfirmReceived(w http.ResponseWriter, r *http.Request) {
	h.transition(h.service.ConfirmReceived)(w, r)
}

// Cancel handles PATCH /order/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(h.service.Cancel)(w, r)
}

// PaymentNotification handles the gateway callback at
// POST /order/{id}/payment-notification.
func (h *OrderHandler) PaymentNotification(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	var n model.PaymentNotification
	if err := decodeJSON(r, &n); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := h.service.PaymentNotification(r.Context(), id, n); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPayURL handles GET /order/{id}/payment.
func (h *OrderHandler) GetPayURL(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	resp, err := h.service.GetPayURL(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, resp)
}

// MarkPaid handles PATCH /order/{id}/payment.
func (h *OrderHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	order, err := h.service.MarkPaid(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, order)
}

// PrintLabel handles GET /order/{id}/delivery/print?pageSize=.
func (h *OrderHandler) PrintLabel(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	size := shipping.PageSize(r.URL.Query().Get("pageSize"))
	link, err := h.service.PrintLabel(r.Context(), actor, id, size)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"url": link})
}
