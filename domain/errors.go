package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeSlotTaken    ErrorCode = "SLOT_TAKEN"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeUnavailable  ErrorCode = "UNAVAILABLE"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

const metaLabel = "label"

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
	Meta    map[string]string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Invalid reports a request that failed validation.
func Invalid(format string, args ...interface{}) *Error {
	return NewError(ErrCodeInvalid, fmt.Sprintf(format, args...))
}

// Unavailable marks an infrastructure failure the caller may retry.
func Unavailable(message string, err error) *Error {
	return WrapError(ErrCodeUnavailable, message, err)
}

// NewSlotTakenError reports that the slot is held by the reservation labelled label.
func NewSlotTakenError(resourceID, date, slot, label string) *Error {
	msg := fmt.Sprintf("slot %s on %s for court %s is already booked", slot, date, resourceID)
	if label != "" {
		msg = fmt.Sprintf("slot %s on %s for court %s is already booked by %s", slot, date, resourceID, label)
	}
	return &Error{
		Code:    ErrCodeSlotTaken,
		Message: msg,
		Meta:    map[string]string{metaLabel: label},
	}
}

// Common domain errors.
var (
	ErrReservationNotFound = NewError(ErrCodeNotFound, "reservation not found")
	ErrCustomerNotFound    = NewError(ErrCodeNotFound, "customer not found")
	ErrProductNotFound     = NewError(ErrCodeNotFound, "product not found")
	ErrPurchaseNotFound    = NewError(ErrCodeNotFound, "purchase not found")
	ErrSessionNotFound     = NewError(ErrCodeNotFound, "session not found")
	ErrUnknownCustomer     = NewError(ErrCodeInvalid, "customer reference does not exist")
	ErrPurchaseAlreadyPaid = NewError(ErrCodeConflict, "purchase already paid")
	ErrUnauthorized        = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload      = NewError(ErrCodeInvalid, "invalid payload")

	// ErrSlotConflict is returned by storage when an insert violates the
	// one-active-reservation-per-slot constraint.
	ErrSlotConflict = NewError(ErrCodeConflict, "active reservation already exists for slot")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// ConflictingLabel extracts the holder label from a SLOT_TAKEN error.
func ConflictingLabel(err error) (string, bool) {
	var dErr *Error
	if !errors.As(err, &dErr) || dErr.Code != ErrCodeSlotTaken {
		return "", false
	}
	return dErr.Meta[metaLabel], true
}
