package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation error")
	ErrRateLimited = errors.New("rate limited")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// RateLimitScope identifies which limiter granularity produced a denial.
type RateLimitScope string

const (
	RateLimitScopeGlobal  RateLimitScope = "global"
	RateLimitScopeIP      RateLimitScope = "ip"
	RateLimitScopeIPDaily RateLimitScope = "ip_daily"
	RateLimitScopeTopic   RateLimitScope = "topic"
)

// RateLimitError is returned when a request is denied by a rate limiter.
// RetryAfter is the time until the denying window resets.
type RateLimitError struct {
	Scope      RateLimitScope
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited (%s): retry after %s", e.Scope, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }
