package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"fashion-shop/internal/middleware"
	"fashion-shop/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DataResponse wraps every successful payload.
type DataResponse struct {
	Data any `json:"data"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, DataResponse{Data: data})
}

var kindStatus = map[model.ErrorKind]int{
	model.KindValidation:   http.StatusBadRequest,
	model.KindBusinessRule: http.StatusBadRequest,
	model.KindNotFound:     http.StatusNotFound,
	model.KindForbidden:    http.StatusForbidden,
	model.KindConflict:     http.StatusConflict,
	model.KindUnauthorised: http.StatusUnauthorized,
}

// writeServiceError maps a service error to its HTTP response. Unknown
// errors are logged in full and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status, ok := kindStatus[domainErr.Kind]
		if !ok {
			status = http.StatusBadRequest
		}
		logger.Debug().Str("code", domainErr.Code).Int("status", status).Msg(domainErr.Message)
		writeJSON(w, status, ErrorResponse{Message: domainErr.Message, Code: domainErr.Code})
		return
	}

	var upstream *model.UpstreamError
	if errors.As(err, &upstream) {
		status := upstream.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		logger.Warn().Str("upstream", upstream.Service).Int("status", status).Msg(upstream.Message)
		writeJSON(w, status, ErrorResponse{Message: upstream.Message})
		return
	}

	logger.Error().Err(err).Msg("handler error")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "internal server error", Code: model.ErrCodeInternalError})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.ErrInvalidJSON
	}
	return nil
}

// decodeOptionalJSON is decodeJSON that also accepts an empty body.
func decodeOptionalJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return model.ErrInvalidJSON
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, model.NewValidationError("%s must be a valid id", name)
	}
	return id, nil
}

func pathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, model.NewValidationError("%s must be a number", name)
	}
	return n, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.NewValidationError("invalid %s parameter", name)
	}
	return n, nil
}

func actorFrom(r *http.Request) (model.Actor, error) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return model.Actor{}, model.ErrUnauthorised
	}
	return actor, nil
}
