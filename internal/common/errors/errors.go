// Package errors provides standardized error handling for the recommendation engine.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Preference payload errors
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Catalog errors
	ErrCodeCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeCatalogTimeout     ErrorCode = "CATALOG_TIMEOUT"

	// Measurement harness errors
	ErrCodeLogWriteFailed        ErrorCode = "LOG_WRITE_FAILED"
	ErrCodeLogQueryFailed        ErrorCode = "LOG_QUERY_FAILED"
	ErrCodeScenarioLoadFailed    ErrorCode = "SCENARIO_LOAD_FAILED"
	ErrCodeScenarioCorpusInvalid ErrorCode = "SCENARIO_CORPUS_INVALID"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is lets callers match by code with errors.Is against a bare code error.
func (e *StandardError) Is(target error) bool {
	var std *StandardError
	if stderrors.As(target, &std) {
		return e.Code == std.Code
	}
	return false
}

// CodeOf extracts the error code from any error, or empty string.
func CodeOf(err error) ErrorCode {
	var std *StandardError
	if stderrors.As(err, &std) {
		return std.Code
	}
	return ""
}

// IsRetryable reports whether the error is safe to retry.
func IsRetryable(err error) bool {
	var std *StandardError
	if stderrors.As(err, &std) {
		return std.Retryable
	}
	return false
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable preference payload error.
// Only structurally unparseable payloads produce this; malformed optional
// fields are coerced by the preference builder instead.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Preference payload validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogUnavailableError creates a retryable catalog query error.
func NewCatalogUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogUnavailable,
		Message:   "Catalog query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogTimeoutError creates a retryable catalog timeout error.
func NewCatalogTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogTimeout,
		Message:   "Catalog query timeout",
		Details:   "query exceeded the configured deadline",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLogWriteFailedError creates a log persistence error. It is captured by
// the request logger and never surfaced to the caller.
func NewLogWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLogWriteFailed,
		Message:   "Request log write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLogQueryFailedError creates a retryable log read error.
func NewLogQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLogQueryFailed,
		Message:   "Request log query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewScenarioLoadFailedError creates a non-retryable corpus read error.
func NewScenarioLoadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScenarioLoadFailed,
		Message:   "Scenario corpus load failed",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewScenarioCorpusInvalidError creates a non-retryable corpus schema error.
func NewScenarioCorpusInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeScenarioCorpusInvalid,
		Message:   "Scenario corpus failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
