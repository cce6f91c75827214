package web

// errors.go turns job errors into JSON responses.
//
// Every error response carries the core.MapError code and action so an
// operator can act on it without reading the log, and the chi request id so
// the log entry can be found when they do.

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/cusip/internal/core"
	"github.com/JonMunkholm/cusip/internal/logging"
)

// errInvalidBody is returned for request bodies that are not a LoadRequest.
var errInvalidBody = errors.New("invalid request body")

// ErrorResponse is the JSON body of every non-2xx job response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Detail    string `json:"detail"`
	Action    string `json:"action,omitempty"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFor picks the HTTP status for a discovery or gating error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidBody), errors.Is(err, core.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrDirectoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrAmbiguousFiles), errors.Is(err, core.ErrLoadInProgress):
		return http.StatusConflict
	case errors.Is(err, core.ErrSourceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// respondError logs err with request context and writes an ErrorResponse.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)
	requestID := middleware.GetReqID(r.Context())

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request rejected", args...)
	}

	writeJSONStatus(w, status, ErrorResponse{
		Error:     msg.Message,
		Detail:    err.Error(),
		Action:    msg.Action,
		Code:      msg.Code,
		RequestID: requestID,
	})
}

// writeJSON encodes v with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus encodes v as JSON. Encoding errors are only logged since
// headers are already sent.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
