package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code and message so sentinel values survive wrapping.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeConfiguration = "CONFIGURATION_ERROR"
	ErrCodeUpstream      = "UPSTREAM_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrQuestionRequired     = NewDomainError(ErrCodeValidation, "prompt is required")
	ErrInvalidRoute         = NewDomainError(ErrCodeValidation, "invalid route")
	ErrInvalidLimit         = NewDomainError(ErrCodeValidation, "invalid limit")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Configuration errors
var (
	ErrGenerationNotConfigured = NewDomainError(ErrCodeConfiguration, "GEMINI_API_KEY not configured")
	ErrKnowledgeNotConfigured  = NewDomainError(ErrCodeConfiguration, "NOTION_PAGE_ID not configured")
)

// Not found errors
var (
	ErrSnapshotsDisabled = NewDomainError(ErrCodeNotFound, "snapshot storage not configured")
	ErrDecisionLogOff    = NewDomainError(ErrCodeNotFound, "decision log not configured")
)

// UpstreamError is a non-success answer from an external backend. Status and
// Details are carried through to the HTTP boundary for diagnostics.
type UpstreamError struct {
	Service string
	Status  int
	Details any
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s request failed (status %d): %v", e.Service, e.Status, e.Err)
	}
	return fmt.Sprintf("%s request failed (status %d)", e.Service, e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Transient reports whether a retry has a reasonable chance of succeeding.
func (e *UpstreamError) Transient() bool {
	return e.Status == 429 || e.Status >= 500
}
