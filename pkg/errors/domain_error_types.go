package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// DomainErrorType represents the category of domain error
type DomainErrorType string

const (
	// DomainValidationError indicates input validation failure
	DomainValidationError DomainErrorType = "VALIDATION_ERROR"

	// DomainBusinessRuleError indicates a trip rule the caller must resolve,
	// such as confirming an empty itinerary
	DomainBusinessRuleError DomainErrorType = "BUSINESS_RULE_ERROR"

	DomainNotFoundError DomainErrorType = "NOT_FOUND"
	DomainConflictError DomainErrorType = "CONFLICT"

	// DomainInfrastructureError indicates a store, bus or model failure
	DomainInfrastructureError DomainErrorType = "INFRASTRUCTURE_ERROR"

	DomainRateLimitError DomainErrorType = "RATE_LIMIT_ERROR"
)

var statusByDomainType = map[DomainErrorType]int{
	DomainValidationError:     http.StatusBadRequest,
	DomainBusinessRuleError:   http.StatusUnprocessableEntity,
	DomainNotFoundError:       http.StatusNotFound,
	DomainConflictError:       http.StatusConflict,
	DomainRateLimitError:      http.StatusTooManyRequests,
	DomainInfrastructureError: http.StatusInternalServerError,
}

// DomainError represents a domain-specific error with rich context
type DomainError struct {
	Type       DomainErrorType        `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
}

// NewDomainError creates a new domain error
func NewDomainError(errorType DomainErrorType, code string, message string) *DomainError {
	return &DomainError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		Details:    make(map[string]interface{}),
		Retryable:  false,
		StatusCode: statusByDomainType[errorType],
	}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// WithCause returns a copy of the error with a cause attached.
// The With* methods never mutate the receiver, so sentinels stay shared-safe.
func (e *DomainError) WithCause(cause error) *DomainError {
	d := e.Derive("")
	d.Cause = cause
	return d
}

// WithDetail returns a copy of the error with a detail added
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	d := e.Derive("")
	d.Details[key] = value
	return d
}

// WithRetryable returns a copy of the error with the retryable flag set
func (e *DomainError) WithRetryable(retryable bool) *DomainError {
	d := e.Derive("")
	d.Retryable = retryable
	return d
}

// WithStatusCode returns a copy of the error with a custom HTTP status code
func (e *DomainError) WithStatusCode(code int) *DomainError {
	d := e.Derive("")
	d.StatusCode = code
	return d
}

// Is checks if the error is of a specific type
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Sentinels. Attach context with Derive or the With* methods, never by
// mutating them.

var (
	// Itinerary errors
	ErrInvalidTimeFormat = NewDomainError(
		DomainValidationError,
		"INVALID_TIME_FORMAT",
		"Time must be in h:mm AM/PM format",
	)

	ErrInvalidDate = NewDomainError(
		DomainValidationError,
		"INVALID_DATE",
		"Date must be a valid MM/DD/YYYY calendar date",
	)

	ErrInvalidDateRange = NewDomainError(
		DomainValidationError,
		"INVALID_DATE_RANGE",
		"End date must not be before start date",
	)

	// Trip errors
	ErrTripNotFound = NewDomainError(
		DomainNotFoundError,
		"TRIP_NOT_FOUND",
		"The requested trip does not exist",
	)

	ErrTripAlreadyExists = NewDomainError(
		DomainConflictError,
		"TRIP_ALREADY_EXISTS",
		"Trip already exists.",
	)

	ErrUnsupportedAttribute = NewDomainError(
		DomainValidationError,
		"UNSUPPORTED_ATTRIBUTE",
		"The attribute cannot be updated",
	)

	ErrConfirmationRequired = NewDomainError(
		DomainBusinessRuleError,
		"CONFIRMATION_REQUIRED",
		"The itinerary has no activities. Confirm to save it anyway.",
	)

	// Image errors
	ErrUnsupportedFileType = NewDomainError(
		DomainValidationError,
		"UNSUPPORTED_FILE_TYPE",
		"Only image uploads are supported",
	)

	ErrUploadNotConfigured = NewDomainError(
		DomainInfrastructureError,
		"UPLOAD_NOT_CONFIGURED",
		"Image uploads are not configured",
	).WithStatusCode(http.StatusServiceUnavailable)

	// Rate limiting errors
	ErrRateLimitExceeded = NewDomainError(
		DomainRateLimitError,
		"RATE_LIMIT_EXCEEDED",
		"Too many requests, please try again later",
	).WithRetryable(true)

	// Infrastructure errors
	ErrDatabaseConnection = NewDomainError(
		DomainInfrastructureError,
		"DATABASE_CONNECTION_ERROR",
		"Failed to connect to database",
	).WithRetryable(true)

	ErrEventPublishFailed = NewDomainError(
		DomainInfrastructureError,
		"EVENT_PUBLISH_FAILED",
		"Failed to publish domain event",
	).WithRetryable(true)

	ErrAssistantUnavailable = NewDomainError(
		DomainInfrastructureError,
		"ASSISTANT_UNAVAILABLE",
		"The travel assistant is unavailable",
	).WithRetryable(true).WithStatusCode(http.StatusServiceUnavailable)
)

// Derive returns a copy of a sentinel domain error so details can be attached
// without mutating the shared value. errors.Is still matches the sentinel.
func (e *DomainError) Derive(message string) *DomainError {
	derived := &DomainError{
		Type:       e.Type,
		Code:       e.Code,
		Message:    e.Message,
		Details:    make(map[string]interface{}, len(e.Details)),
		Retryable:  e.Retryable,
		StatusCode: e.StatusCode,
		Cause:      e.Cause,
	}
	for k, v := range e.Details {
		derived.Details[k] = v
	}
	if message != "" {
		derived.Message = message
	}
	return derived
}

// ValidationErrors aggregates multiple validation errors
type ValidationErrors struct {
	Errors []*DomainError `json:"errors"`
}

// NewValidationErrors creates a new validation errors collection
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]*DomainError, 0),
	}
}

// Add adds a validation error
func (v *ValidationErrors) Add(field string, message string) {
	err := NewDomainError(DomainValidationError, "FIELD_VALIDATION_ERROR", message).
		WithDetail("field", field)
	v.Errors = append(v.Errors, err)
}

// AddError adds a pre-existing domain error
func (v *ValidationErrors) AddError(err *DomainError) {
	v.Errors = append(v.Errors, err)
}

// HasErrors returns true if there are validation errors
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Messages returns the human-readable message of every violation in order
func (v *ValidationErrors) Messages() []string {
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Message
	}
	return messages
}

// ErrorOrNil returns nil when no violations were collected
func (v *ValidationErrors) ErrorOrNil() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

// Error implements the error interface
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}

	return fmt.Sprintf("Validation failed: %s", strings.Join(v.Messages(), "; "))
}

// ToMap converts validation errors to a map for JSON serialization
func (v *ValidationErrors) ToMap() map[string][]string {
	result := make(map[string][]string)

	for _, err := range v.Errors {
		field, ok := err.Details["field"].(string)
		if !ok {
			field = "general"
		}

		if _, exists := result[field]; !exists {
			result[field] = make([]string, 0)
		}
		result[field] = append(result[field], err.Message)
	}

	return result
}
