package booking

import (
	"strings"
	"time"

	"vidaview/models"
	"vidaview/utils"
)

// Transitions take a booking by value and return the next state. On error the
// caller's copy is untouched.

func invalidTransition(b models.Booking, action string) error {
	return utils.NewAppErrorf(utils.KindInvalidTransition, "cannot %s booking %s in status %s", action, b.ID, b.Status)
}

func advance(b models.Booking, to models.BookingStatus, at time.Time) models.Booking {
	b.Status = to
	b.Version++
	b.UpdatedAt = at
	return b
}

// Approve moves a pending booking to confirmed.
func Approve(b models.Booking, at time.Time) (models.Booking, error) {
	if b.Status != models.BookingPending {
		return b, invalidTransition(b, "approve")
	}
	next := advance(b, models.BookingConfirmed, at)
	next.ConfirmedAt = &at
	return next, nil
}

// Reject moves a pending booking to rejected. reason is required.
func Reject(b models.Booking, reason string, at time.Time) (models.Booking, error) {
	if b.Status != models.BookingPending {
		return b, invalidTransition(b, "reject")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return b, utils.NewValidationError("reason", "rejection reason is required")
	}
	next := advance(b, models.BookingRejected, at)
	next.RejectionReason = reason
	next.RejectedAt = &at
	return next, nil
}

// Cancel is allowed while the booking has not started.
func Cancel(b models.Booking, at time.Time) (models.Booking, error) {
	if b.Status != models.BookingPending && b.Status != models.BookingConfirmed {
		return b, invalidTransition(b, "cancel")
	}
	next := advance(b, models.BookingCancelled, at)
	next.CancelledAt = &at
	return next, nil
}

// Activate requires a confirmed booking whose primary payment is completed.
func Activate(b models.Booking, paymentCompleted bool, at time.Time) (models.Booking, error) {
	if b.Status != models.BookingConfirmed {
		return b, invalidTransition(b, "activate")
	}
	if !paymentCompleted {
		return b, utils.NewAppErrorf(utils.KindInvalidTransition, "booking %s has no completed payment", b.ID)
	}
	next := advance(b, models.BookingActive, at)
	next.ActivatedAt = &at
	return next, nil
}

// Complete ends an active booking.
func Complete(b models.Booking, at time.Time) (models.Booking, error) {
	if b.Status != models.BookingActive {
		return b, invalidTransition(b, "complete")
	}
	next := advance(b, models.BookingCompleted, at)
	next.CompletedAt = &at
	return next, nil
}
