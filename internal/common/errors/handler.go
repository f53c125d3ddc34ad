// internal/common/errors/handler.go
package errors

import (
	stderrors "errors"
	"net/http"
	"time"
)

// HTTPStatus maps an error to the status the thin HTTP boundary should
// return. Validation failures are the caller's fault; everything else
// retryable maps to 503 so clients can back off and retry.
func HTTPStatus(err error) int {
	var std *StandardError
	if !stderrors.As(err, &std) {
		return http.StatusInternalServerError
	}

	switch std.Code {
	case ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeCatalogUnavailable, ErrCodeCatalogTimeout:
		return http.StatusServiceUnavailable
	default:
		if std.Retryable {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	}
}

// Normalize ensures we always have a StandardError to report.
func Normalize(err error) *StandardError {
	var std *StandardError
	if stderrors.As(err, &std) {
		return std
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
