package utils

import (
	"errors"
	"fmt"
)

// ErrorKind is a language-neutral error classification returned to callers.
type ErrorKind string

const (
	KindInvalidRange      ErrorKind = "invalid_range"
	KindBelowMinimumStay  ErrorKind = "below_minimum_stay"
	KindPromotionNotFound ErrorKind = "promotion_not_found"
	KindPromotionInactive ErrorKind = "promotion_inactive"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindValidation        ErrorKind = "validation_error"
	KindNotFound          ErrorKind = "not_found"
	KindUnitUnavailable   ErrorKind = "unit_unavailable"
)

// AppError is the typed error every service returns for expected failures.
// Field names the offending input for validation errors.
type AppError struct {
	Kind    ErrorKind
	Field   string
	Message string
}

func (e *AppError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches any *AppError of the same kind, so errors.Is(err, ErrInvalidTransition)
// holds for every invalid transition regardless of its message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func NewAppError(kind ErrorKind, msg string) error {
	return &AppError{Kind: kind, Message: msg}
}

func NewAppErrorf(kind ErrorKind, format string, args ...any) error {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewValidationError reports a missing or malformed input field.
func NewValidationError(field, msg string) error {
	return &AppError{Kind: KindValidation, Field: field, Message: msg}
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidRange      = &AppError{Kind: KindInvalidRange}
	ErrBelowMinimumStay  = &AppError{Kind: KindBelowMinimumStay}
	ErrPromotionNotFound = &AppError{Kind: KindPromotionNotFound}
	ErrPromotionInactive = &AppError{Kind: KindPromotionInactive}
	ErrInvalidTransition = &AppError{Kind: KindInvalidTransition}
	ErrValidation        = &AppError{Kind: KindValidation}
	ErrNotFound          = &AppError{Kind: KindNotFound}
	ErrUnitUnavailable   = &AppError{Kind: KindUnitUnavailable}
)

// KindOf extracts the kind of an application error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
