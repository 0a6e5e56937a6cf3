package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/storefront/internal/common"
)

type transactionResponse struct {
	StatusCode  int    `json:"status_code"`
	Transaction string `json:"transaction"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

const (
	detailUnauthorized = "Could not validate user."
	detailUnavailable  = "Service temporarily unavailable"
	detailInternal     = "Internal server error"
	detailBadRequest   = "Invalid request"
)

func (s *HTTPServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(r.Context(), "failed to write response", "error", err)
	}
}

func (s *HTTPServer) writeTransaction(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, r, status, transactionResponse{StatusCode: status, Transaction: msg})
}

// writeError maps service errors to status codes and a {"detail": ...} body.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var rl *common.RateLimitError
	if errors.As(err, &rl) {
		w.Header().Set("Retry-After", strconv.Itoa(rl.RetrySeconds()))
		s.writeJSON(w, r, http.StatusTooManyRequests, errorResponse{Detail: rl.Error()})
		return
	}

	status, detail := http.StatusInternalServerError, detailInternal
	switch {
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		status, detail = http.StatusUnauthorized, detailUnauthorized
		w.Header().Set("WWW-Authenticate", "Bearer")
	case errors.Is(err, common.ErrorForbidden):
		status, detail = http.StatusForbidden, detailOf(err, http.StatusText(http.StatusForbidden))
	case errors.Is(err, common.ErrorNotFound):
		status, detail = http.StatusNotFound, detailOf(err, http.StatusText(http.StatusNotFound))
	case errors.Is(err, common.ErrorConflict):
		status, detail = http.StatusConflict, detailOf(err, http.StatusText(http.StatusConflict))
	case errors.Is(err, common.ErrorValidation):
		status, detail = http.StatusBadRequest, detailOf(err, detailBadRequest)
	case errors.Is(err, common.ErrorStoreUnavailable):
		status, detail = http.StatusServiceUnavailable, detailUnavailable
		s.logger.Error(r.Context(), "store unavailable", "path", r.URL.Path, "error", err)
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}

	s.writeJSON(w, r, status, errorResponse{Detail: detail})
}

func detailOf(err error, fallback string) string {
	var de *common.DetailError
	if errors.As(err, &de) {
		return de.Detail
	}
	return fallback
}
