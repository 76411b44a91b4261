// Package errors defines the typed failure taxonomy shared by the ledger and
// escrow services. Every rejection surfaced to a caller carries a stable code
// and a human-readable reason.
package errors

import "fmt"

// Error codes recognized at the call boundary.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInsufficientFunds  = "INSUFFICIENT_FUNDS"
	CodeInvalidTransition  = "INVALID_STATE_TRANSITION"
	CodeConflictingPending = "CONFLICTING_PENDING_OPERATION"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
)

// DomainError is a typed business failure with a stable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches on the code so wrapped domain errors compare by category.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// New builds a DomainError with a formatted message.
func New(code, format string, args ...interface{}) *DomainError {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a VALIDATION_ERROR.
func Validation(format string, args ...interface{}) *DomainError {
	return New(CodeValidation, format, args...)
}

// InvalidTransition builds an INVALID_STATE_TRANSITION error.
func InvalidTransition(format string, args ...interface{}) *DomainError {
	return New(CodeInvalidTransition, format, args...)
}

// NotFound builds a NOT_FOUND error.
func NotFound(format string, args ...interface{}) *DomainError {
	return New(CodeNotFound, format, args...)
}
