package handler

import (
	"net/http"

	"fashion-shop/internal/model"
	"fashion-shop/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler serves the caller's own cart.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	items, err := h.service.GetItems(r.Context(), actor)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, items)
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	var req model.CartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	items, err := h.service.AddItem(r.Context(), actor, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, items)
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	variantID, err := pathUUID(r, "variantId")
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := h.service.RemoveItem(r.Context(), actor, variantID); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
