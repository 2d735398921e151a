package handler

import (
	"net/http"

	"fashion-shop/internal/model"
	"fashion-shop/internal/service"

	"github.com/rs/zerolog"
)

// DeliveryHandler serves address master data and fee quotes.
type DeliveryHandler struct {
	service service.DeliveryService
	logger  zerolog.Logger
}

func NewDeliveryHandler(service service.DeliveryService, logger zerolog.Logger) *DeliveryHandler {
	return &DeliveryHandler{
		service: service,
		logger:  logger.With().Str("handler", "delivery").Logger(),
	}
}

// Provinces handles GET /delivery/province.
func (h *DeliveryHandler) Provinces(w http.ResponseWriter, r *http.Request) {
	provinces, err := h.service.Provinces(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, provinces)
}

// Districts handles GET /delivery/district/{provinceId}.
func (h *DeliveryHandler) Districts(w http.ResponseWriter, r *http.Request) {
	provinceID, err := pathInt(r, "provinceId")
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	districts, err := h.service.Districts(r.Context(), provinceID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, districts)
}

// Wards handles GET /delivery/ward/{districtId}.
func (h *DeliveryHandler) Wards(w http.ResponseWriter, r *http.Request) {
	districtID, err := pathInt(r, "districtId")
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	wards, err := h.service.Wards(r.Context(), districtID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, wards)
}

// Fee handles POST /delivery/fee.
func (h *DeliveryHandler) Fee(w http.ResponseWriter, r *http.Request) {
	var req model.ShippingQuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	quote, err := h.service.Quote(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, quote)
}
