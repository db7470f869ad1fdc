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

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// Common domain error codes
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeIngestion       = "INGESTION_ERROR"
	ErrCodeRetrieval       = "RETRIEVAL_ERROR"
	ErrCodeCompletion      = "COMPLETION_ERROR"
	ErrCodeMalformedOutput = "MALFORMED_OUTPUT"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// Ingestion and auth errors are the fatal ones: a document that cannot be
// read or chunked yields no fields at all. Retrieval and completion
// failures degrade per field or per pool instead and carry their own
// context.
var (
	ErrEmptyDocument   = NewDomainError(ErrCodeIngestion, "document is empty or unreadable")
	ErrInvalidChunking = NewDomainError(ErrCodeValidation, "chunk overlap must be smaller than chunk size")
	ErrInvalidAPIKey   = NewDomainError(ErrCodeUnauthorized, "invalid api key")
)

// malformedPrefixMax bounds the offending-text prefix carried by
// MalformedOutputError.
const malformedPrefixMax = 300

// MalformedOutputError is raised when every sanitizer parse strategy has
// been exhausted. It keeps the final decode error and a truncated prefix
// of the offending model output for diagnostics.
type MalformedOutputError struct {
	Err    error
	Prefix string
}

// NewMalformedOutputError builds a MalformedOutputError from the decode
// error and the raw model text.
func NewMalformedOutputError(err error, raw string) *MalformedOutputError {
	prefix := raw
	if len(prefix) > malformedPrefixMax {
		prefix = prefix[:malformedPrefixMax] + "..."
	}
	return &MalformedOutputError{Err: err, Prefix: prefix}
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("[%s] failed to parse model output: %v (text: %q)", ErrCodeMalformedOutput, e.Err, e.Prefix)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Err
}
