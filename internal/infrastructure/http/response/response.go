// Package response writes the JSON envelope shared by every API endpoint
package response

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/alchemorsel/dishgen/pkg/errors"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool                 `json:"success"`
	Data    interface{}          `json:"data,omitempty"`
	Error   *errors.ErrorDetails `json:"error,omitempty"`
	Message string               `json:"message,omitempty"`
}

// JSON writes a successful envelope
func JSON(w http.ResponseWriter, status int, data interface{}, message string) {
	write(w, status, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// Error writes an error envelope. Errors that are not *errors.AppError
// are reported as internal errors without leaking their text.
func Error(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.NewInternalError("An unexpected error occurred").WithCause(err)
	}

	status := appErr.StatusCode()
	requestID := chimiddleware.GetReqID(r.Context())

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("request_id", requestID),
			zap.String("code", string(appErr.Code)),
			zap.Error(err),
		)
	} else {
		logger.Debug("Request rejected",
			zap.String("request_id", requestID),
			zap.String("code", string(appErr.Code)),
			zap.String("message", appErr.Message),
		)
	}

	details := errors.ToErrorResponse(appErr, requestID).Error
	if status >= http.StatusInternalServerError {
		details.Details = ""
	}

	write(w, status, APIResponse{
		Success: false,
		Error:   &details,
		Message: appErr.Message,
	})
}

func write(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
