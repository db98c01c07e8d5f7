// Package apperr holds the error taxonomy shared by the booking core, the
// repositories and the HTTP adaptors.
//
// Match with errors.Is against the sentinel values; two *Error values are
// equal under errors.Is when their kinds match, so a specialised business
// error (for example ErrFreeWalkUsed) still matches ErrInsufficientBalance.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindUnauthorized         Kind = "unauthorized"
	KindForbidden            Kind = "forbidden"
	KindUserNotFound         Kind = "user_not_found"
	KindInvalidSlotAlignment Kind = "invalid_slot_alignment"
	KindInsufficientBalance  Kind = "insufficient_balance"
	KindSlotConflict         Kind = "slot_conflict"
	KindBookingNotFound      Kind = "booking_not_found"
	KindBookingNotActive     Kind = "booking_not_active"
	KindTransactionAborted   Kind = "transaction_aborted"
	KindUpstreamUnavailable  Kind = "upstream_unavailable"
	KindValidation           Kind = "validation"
	KindInvalidDate          Kind = "invalid_date"
)

// Error is a classified failure. Message is safe to show to end users; Err
// carries the internal cause and is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches an internal cause to a classified error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

var (
	ErrUnauthorized         = New(KindUnauthorized, "authentication required")
	ErrForbidden            = New(KindForbidden, "you are not allowed to access this resource")
	ErrUserNotFound         = New(KindUserNotFound, "user profile not found")
	ErrInvalidSlotAlignment = New(KindInvalidSlotAlignment, "start time is not a bookable slot")
	ErrInsufficientBalance  = New(KindInsufficientBalance, "insufficient walk balance")
	ErrFreeWalkUsed         = New(KindInsufficientBalance, "you already have a free walk booked")
	ErrSlotConflict         = New(KindSlotConflict, "slot already booked")
	ErrBookingNotFound      = New(KindBookingNotFound, "booking not found")
	ErrBookingNotActive     = New(KindBookingNotActive, "booking is not active")
	ErrTransactionAborted   = New(KindTransactionAborted, "the system is busy, please try again")
	ErrUpstreamUnavailable  = New(KindUpstreamUnavailable, "service temporarily unavailable")
	ErrValidation           = New(KindValidation, "validation failed")
	ErrInvalidDate          = New(KindInvalidDate, "invalid date")
)

// KindOf classifies err. Unclassified errors are treated as upstream failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstreamUnavailable
}

// Message returns the user-facing text for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindUpstreamUnavailable {
		return e.Message
	}
	return ErrUpstreamUnavailable.Message
}

// Retryable reports whether the caller may safely repeat the request.
func Retryable(err error) bool {
	k := KindOf(err)
	return k == KindTransactionAborted || k == KindUpstreamUnavailable
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindUserNotFound, KindBookingNotFound:
		return http.StatusNotFound
	case KindInvalidSlotAlignment, KindInsufficientBalance, KindValidation, KindInvalidDate:
		return http.StatusBadRequest
	case KindSlotConflict, KindBookingNotActive:
		return http.StatusConflict
	case KindTransactionAborted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
