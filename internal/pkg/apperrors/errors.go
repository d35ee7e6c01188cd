// internal/pkg/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so the HTTP boundary can map it to a status
// code without inspecting concrete error types.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindEmptyOrder
	KindInvalidTransition
	KindInvalidSignature
	KindAmountMismatch
	KindPaymentConfig
)

// Error is a tagged domain error carrying the failing operation and the
// wrapped cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op
	}
}

// Unwrap returns the wrapped cause
func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a tagged error
func E(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// Validation builds a validation error
func Validation(op, message string) *Error {
	return E(KindValidation, op, message, nil)
}

// NotFound builds a not-found error
func NotFound(op, message string) *Error {
	return E(KindNotFound, op, message, nil)
}

// Internal wraps an unclassified failure
func Internal(op string, err error) *Error {
	return E(KindInternal, op, "", err)
}

// KindOf extracts the kind from an error chain, KindInternal when untagged
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to the HTTP status code it should surface as
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindEmptyOrder, KindInvalidTransition,
		KindInvalidSignature, KindAmountMismatch:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindPaymentConfig, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns a response-safe message. Internal details stay in
// the logs.
func UserMessage(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return "internal server error"
	}
	switch appErr.Kind {
	case KindInternal, KindPaymentConfig:
		return "internal server error"
	default:
		if appErr.Message != "" {
			return appErr.Message
		}
		return appErr.Error()
	}
}
