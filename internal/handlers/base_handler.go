package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/learnsphere/client/internal/backend"
	"github.com/learnsphere/client/internal/middlewares"
	"go.uber.org/zap"
)

// maxBodySize caps JSON request bodies; uploads are limited by the request size middleware
const maxBodySize = 1 << 20

type BaseHandler struct {
	logger *zap.Logger
}

// respondJSON sends a JSON response
func (h *BaseHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// respondError sends an error JSON response in the same shape the middlewares use
func (h *BaseHandler) respondError(w http.ResponseWriter, status int, message string) {
	if err := middlewares.WriteError(w, status, message); err != nil {
		h.logger.Error("failed to encode error response", zap.Error(err))
	}
}

// respondBackendError maps a backend failure to a gateway response.
// Client errors of the backend are passed through with its message; everything else is a bad gateway.
func (h *BaseHandler) respondBackendError(w http.ResponseWriter, err error, message string) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusConflict:
			if apiErr.Message != "" {
				message = apiErr.Message
			}
			h.respondError(w, apiErr.StatusCode, message)
			return
		}
	}

	h.logger.Error(message, zap.Error(err))
	h.respondError(w, http.StatusBadGateway, message)
}

// decodeJSON decodes the request body into dst. An empty body leaves dst untouched.
func (h *BaseHandler) decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
