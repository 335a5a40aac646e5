// Package errors defines the error taxonomy shared across the engine:
// incompatible-DD ("top"), evaluation errors, invariant violations,
// interrupts and double-init. Package-specific error types (sdd.TopError,
// hom.EvalError, ...) wrap one of these codes so callers can test with a
// single vocabulary via errors.Is/errors.As.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the engine.
const (
	CodeUnknown            = "UNKNOWN_ERROR"
	CodeTop                = "TOP_ERROR"
	CodeEvalError          = "EVAL_ERROR"
	CodeInvariantViolation = "INVARIANT_VIOLATION"
	CodeInterrupt          = "INTERRUPT"
	CodeDoubleInit         = "DOUBLE_INIT"
)

// AppError represents an engine error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target by code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Sentinel instances usable with errors.Is.
var (
	ErrTop                = New(CodeTop, "incompatible decision diagrams")
	ErrEvalError          = New(CodeEvalError, "homomorphism evaluation failed")
	ErrInvariantViolation = New(CodeInvariantViolation, "invariant violation")
	ErrInterrupt          = New(CodeInterrupt, "evaluation interrupted")
	ErrDoubleInit         = New(CodeDoubleInit, "manager already initialized")
)

// IsTop reports whether err is (or wraps) an incompatible-DD error.
func IsTop(err error) bool {
	return errors.Is(err, ErrTop)
}

// IsEvalError reports whether err is (or wraps) an evaluation error.
func IsEvalError(err error) bool {
	return errors.Is(err, ErrEvalError)
}

// IsInvariantViolation reports whether err is (or wraps) an invariant violation.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrInvariantViolation)
}

// IsInterrupt reports whether err is (or wraps) an interrupt.
func IsInterrupt(err error) bool {
	return errors.Is(err, ErrInterrupt)
}

// IsDoubleInit reports whether err is (or wraps) a double-init error.
func IsDoubleInit(err error) bool {
	return errors.Is(err, ErrDoubleInit)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the error message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
