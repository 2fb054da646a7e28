package services

import (
	"fmt"
	"net/http"
)

// ===============================
// ERROR TYPES
// ===============================

// ServiceError represents a structured service error
type ServiceError struct {
	Type       string                 `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// GetStatusCode returns the HTTP status code for this error
func (e *ServiceError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// ===============================
// ERROR CONSTRUCTORS
// ===============================

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       "VALIDATION_ERROR",
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewBusinessError creates a business logic error
func NewBusinessError(message, code string) *ServiceError {
	return &ServiceError{
		Type:       "BUSINESS_ERROR",
		Message:    message,
		Code:       code,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Type:       "NOT_FOUND",
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message, code string) *ServiceError {
	return &ServiceError{
		Type:       "CONFLICT",
		Message:    message,
		Code:       code,
		StatusCode: http.StatusConflict,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *ServiceError {
	return &ServiceError{
		Type:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewServiceUnavailableError creates a service unavailable error
func NewServiceUnavailableError(message string) *ServiceError {
	return &ServiceError{
		Type:       "SERVICE_UNAVAILABLE",
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
	}
}

// ===============================
// ENGINE ERRORS
// ===============================

// NewInvalidScopeError rejects a scope that references unknown journals
// or malformed filter dimensions, before any computation runs.
func NewInvalidScopeError(message string) *ServiceError {
	return &ServiceError{
		Type:       "INVALID_SCOPE",
		Message:    message,
		Code:       "INVALID_SCOPE",
		StatusCode: http.StatusBadRequest,
	}
}

// NewNoEligibleRecipientError reports an award computation with zero
// eligible candidates. An award is never materialized without a recipient.
func NewNoEligibleRecipientError(awardType string, year int) *ServiceError {
	return &ServiceError{
		Type:       "NO_ELIGIBLE_RECIPIENT",
		Message:    fmt.Sprintf("no eligible recipient for %s in %d", awardType, year),
		Code:       "NO_ELIGIBLE_RECIPIENT",
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewIdentifierExhaustionError reports repeated verification-code
// collisions past the retry budget. This signals a shrinking identifier
// space and is escalated, never silently retried further.
func NewIdentifierExhaustionError(attempts int, cause error) *ServiceError {
	return &ServiceError{
		Type:       "IDENTIFIER_EXHAUSTION",
		Message:    fmt.Sprintf("verification code space exhausted after %d attempts", attempts),
		Code:       "IDENTIFIER_EXHAUSTION",
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ===============================
// ERROR UTILITIES
// ===============================

// IsServiceError checks if an error is a ServiceError
func IsServiceError(err error) bool {
	_, ok := err.(*ServiceError)
	return ok
}

// GetServiceError extracts a ServiceError from an error, or creates a generic one
func GetServiceError(err error) *ServiceError {
	if serviceErr, ok := err.(*ServiceError); ok {
		return serviceErr
	}
	return NewInternalError(err.Error())
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType string) bool {
	if serviceErr, ok := err.(*ServiceError); ok {
		return serviceErr.Type == errorType
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return IsErrorType(err, "NOT_FOUND")
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return IsErrorType(err, "VALIDATION_ERROR")
}

// IsInvalidScopeError checks if an error is an invalid scope error
func IsInvalidScopeError(err error) bool {
	return IsErrorType(err, "INVALID_SCOPE")
}

// IsNoEligibleRecipientError checks if an error reports an empty award
// candidate set
func IsNoEligibleRecipientError(err error) bool {
	return IsErrorType(err, "NO_ELIGIBLE_RECIPIENT")
}

// IsIdentifierExhaustionError checks if an error reports code-space
// exhaustion
func IsIdentifierExhaustionError(err error) bool {
	return IsErrorType(err, "IDENTIFIER_EXHAUSTION")
}
