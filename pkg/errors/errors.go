package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error is an API failure carrying the code and HTTP status the envelope
// reports. Err keeps the underlying cause for logs only.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is compares codes, so a Clone with its own message still matches the
// template it came from.
func (e *Error) Is(target error) bool {
	var t *Error
	if e == nil || !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New declares an error template.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap builds an error with the given code around cause.
func Wrap(cause error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: cause}
}

// Account and access.
var (
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrPaymentRequired    = New("SUBSCRIPTION_REQUIRED", http.StatusPaymentRequired, "an active subscription is required")
)

// Gradebook records.
var (
	ErrValidation = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrNotFound   = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict   = New("CONFLICT", http.StatusConflict, "conflict")
)

// Infrastructure.
var (
	ErrPaymentProvider = New("PAYMENT_PROVIDER_ERROR", http.StatusBadGateway, "payment provider unavailable")
	ErrTimeout         = New("TIMEOUT", http.StatusGatewayTimeout, "request timed out")
	ErrInternal        = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss       = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError returns err as an *Error. Expired request deadlines become
// ErrTimeout; anything else unknown becomes ErrInternal.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(err, ErrTimeout.Code, ErrTimeout.Status, ErrTimeout.Message)
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone copies a template, replacing its message when one is given.
func Clone(tmpl *Error, message string) *Error {
	if tmpl == nil {
		return nil
	}
	clone := *tmpl
	if message != "" {
		clone.Message = message
	}
	return &clone
}
