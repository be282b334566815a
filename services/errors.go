package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeInternal     ErrorType = "internal"
	ErrorTypeExternal     ErrorType = "external"
)

// DomainError represents a structured step failure with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors of the same type and message
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithDetail adds a detail to a copy of the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{Type: e.Type, Message: e.Message, Err: e.Err, Details: details}
}

// Wrap returns a copy of the error carrying cause
func (e *DomainError) Wrap(cause error) *DomainError {
	return &DomainError{Type: e.Type, Message: e.Message, Err: cause, Details: e.Details}
}

// StatusCode maps the error type to the HTTP status reported to the host
func (e *DomainError) StatusCode() int {
	switch e.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Payload renders the error as the structured object written into a pipeline
// payload: error, message and statusCode, the details, and rawError for the cause
func (e *DomainError) Payload() map[string]interface{} {
	out := map[string]interface{}{
		"error":      true,
		"message":    e.Message,
		"statusCode": e.StatusCode(),
	}
	for k, v := range e.Details {
		out[k] = v
	}
	if _, ok := out["rawError"]; !ok && e.Err != nil {
		out["rawError"] = e.Err.Error()
	}
	return out
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Domain error variables

var (
	// Validation Errors
	ErrMissingOAuthParams   = NewDomainError(ErrorTypeValidation, "Missing required Google OAuth parameters", nil)
	ErrMissingCredentials   = NewDomainError(ErrorTypeValidation, "Missing Google OAuth client credentials", nil)
	ErrMissingClientName    = NewDomainError(ErrorTypeValidation, "Missing OAuth client name", nil)
	ErrMissingConfig        = NewDomainError(ErrorTypeValidation, "Missing config for ecoflow-authentication package", nil)
	ErrMissingCode          = NewDomainError(ErrorTypeValidation, "Missing authorization code", nil)
	ErrMissingRefreshToken  = NewDomainError(ErrorTypeValidation, "Missing refresh token", nil)
	ErrInvalidStepInput     = NewDomainError(ErrorTypeValidation, "Invalid step input", nil)

	// Authentication Errors
	ErrInvalidAuthorization = NewDomainError(ErrorTypeUnauthorized, "Invalid authorization", nil)
	ErrConsentDenied        = NewDomainError(ErrorTypeUnauthorized, "Google OAuth authorization was denied", nil)

	// Not Found Errors
	ErrKeyNotFound = NewDomainError(ErrorTypeNotFound, "key not found", nil)

	// Internal Errors
	ErrInternal = NewDomainError(ErrorTypeInternal, "error occurred", nil)

	// External Provider Errors
	ErrCodeExchangeFailed = NewDomainError(ErrorTypeExternal, "Failed to exchange authorization code", nil)
	ErrUserInfoFailed     = NewDomainError(ErrorTypeExternal, "Failed to fetch user details", nil)
)

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// StatusCodeOf returns the HTTP status for any error; non-domain errors are internal
func StatusCodeOf(err error) int {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.StatusCode()
	}
	return http.StatusInternalServerError
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}
