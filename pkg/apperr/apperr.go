// Package apperr defines the error taxonomy shared by services and the HTTP
// layer. Services return *Error values; handlers render them with
// response.Fail / ctx.Fail, which pick the status code from the Kind.
//
//	if qty < 1 {
//	    return apperr.InvalidInput("quantity must be at least 1")
//	}
//
//	switch apperr.KindOf(err) {
//	case apperr.KindNotFound: …
//	}
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Kind is a machine-readable error category.
type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindNotFound           Kind = "not_found"
	KindEmptyCart          Kind = "empty_cart"
	KindTransactionFailure Kind = "transaction_failure"
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindConflict           Kind = "conflict"
	KindTooManyRequests    Kind = "too_many_requests"
	KindInternal           Kind = "internal"
)

// Error carries a Kind, a client-safe message, optional per-field messages
// and the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Kind, so callers can write
// errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrEmptyCart          = &Error{Kind: KindEmptyCart}
	ErrTransactionFailure = &Error{Kind: KindTransactionFailure}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrConflict           = &Error{Kind: KindConflict}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func InvalidInput(message string) *Error { return New(KindInvalidInput, message) }

// Validation builds an InvalidInput error carrying field-level messages.
func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindInvalidInput, Message: "Validation failed", Fields: fields}
}

func NotFound(message string) *Error     { return New(KindNotFound, message) }
func EmptyCart(message string) *Error    { return New(KindEmptyCart, message) }
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }
func Forbidden(message string) *Error    { return New(KindForbidden, message) }
func Conflict(message string) *Error     { return New(KindConflict, message) }

func TransactionFailure(message string, err error) *Error {
	return Wrap(KindTransactionFailure, message, err)
}

func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// As returns the *Error inside err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf classifies any error. gorm.ErrRecordNotFound counts as not_found;
// nil yields "".
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Kind
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return KindNotFound
	}
	return KindInternal
}

// Status maps a Kind onto an HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case KindInvalidInput, KindEmptyCart:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text safe to show a client. Internal causes are never
// exposed.
func PublicMessage(err error) string {
	if e, ok := As(err); ok && e.Message != "" {
		return e.Message
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "Not found"
	}
	return "Internal Server Error"
}
