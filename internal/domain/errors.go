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

// Is reports whether target carries the same code and message, so wrapped
// copies created with Wrap still match their sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// Wrap returns a copy of the sentinel carrying cause as its underlying error.
func (e *DomainError) Wrap(cause error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Err: cause}
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
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeInternalError       = "INTERNAL_ERROR"
	ErrCodeAuth                = "AUTH_ERROR"
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrCodeDataShape           = "DATA_SHAPE"
	ErrCodeNotConfigured       = "NOT_CONFIGURED"
)

// Validation errors
var (
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrEmptyMessage         = NewDomainError(ErrCodeValidation, "message cannot be empty")
	ErrInvalidReplyType     = NewDomainError(ErrCodeValidation, "invalid reply type")
	ErrInvalidQueryType     = NewDomainError(ErrCodeValidation, "invalid query type")
	ErrInvalidAction        = NewDomainError(ErrCodeValidation, "invalid action")
	ErrSessionEnded         = NewDomainError(ErrCodeValidation, "chat session has ended")
)

// Not found errors
var (
	ErrSessionNotFound  = NewDomainError(ErrCodeNotFound, "chat session not found")
	ErrAdminNotFound    = NewDomainError(ErrCodeNotFound, "admin user not found")
	ErrChunkNotFound    = NewDomainError(ErrCodeNotFound, "knowledge chunk not found")
	ErrScheduleNotFound = NewDomainError(ErrCodeNotFound, "payment schedule not found")
)

// Authorization errors
var (
	ErrMissingUserID = NewDomainError(ErrCodeUnauthorized, "admin authentication required")
	ErrNotAdmin      = NewDomainError(ErrCodeForbidden, "admin access required")
)

// Remote HR API errors
var (
	ErrAuthFailed          = NewDomainError(ErrCodeAuth, "hr api authentication failed")
	ErrTokenMissing        = NewDomainError(ErrCodeAuth, "authentication succeeded but no token was returned")
	ErrUpstreamUnavailable = NewDomainError(ErrCodeUpstreamUnavailable, "hr api unavailable")
	ErrUnexpectedShape     = NewDomainError(ErrCodeDataShape, "unexpected response shape")
)

// Configuration errors
var (
	ErrEmbeddingsNotConfigured = NewDomainError(ErrCodeNotConfigured, "embedding provider not configured")
	ErrMailerNotConfigured     = NewDomainError(ErrCodeNotConfigured, "mail transport not configured")
	ErrStorageNotConfigured    = NewDomainError(ErrCodeNotConfigured, "object storage not configured")
	ErrLLMNotConfigured        = NewDomainError(ErrCodeNotConfigured, "language model not configured")
)
