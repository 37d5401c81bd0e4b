// Package handler exposes the SKU service over JSON HTTP endpoints.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/skuengine/internal/domain"
)

const internalErrorMessage = "An internal error occurred. Please try again later."

// ErrorCodeToHTTPStatus maps a domain error code to an HTTP status.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse writes err as a JSON error envelope. Internal errors are
// logged and answered with a generic message.
func ErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	body := errorBody{Code: domain.ErrorCode(err), Message: domain.ErrorMessage(err)}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body.Code = domain.EINVALID
		body.Message = "Validation failed"
		body.Fields = ve.Fields
	}

	status := ErrorCodeToHTTPStatus(body.Code)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.ErrorContext(r.Context(), "request failed",
				slog.String("path", r.URL.Path),
				slog.String("op", domain.ErrorOp(err)),
				slog.String("error", err.Error()),
			)
		}
		body.Code = domain.EINTERNAL
		body.Message = internalErrorMessage
	}

	writeJSON(w, status, map[string]errorBody{"error": body})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
