package payment

import (
	"strings"
	"time"

	"vidaview/models"
	"vidaview/utils"
)

func invalidTransition(p models.Payment, action string) error {
	return utils.NewAppErrorf(utils.KindInvalidTransition, "cannot %s payment %s in status %s", action, p.ID, p.Status)
}

func advance(p models.Payment, to models.PaymentStatus, at time.Time) models.Payment {
	p.Status = to
	p.Version++
	p.UpdatedAt = at
	return p
}

// Confirm records the tenant's proof of payment and moves it to verifying.
func Confirm(p models.Payment, method models.PaymentMethod, reference string, receiptAttached bool, at time.Time) (models.Payment, error) {
	if p.Status != models.PaymentPending {
		return p, invalidTransition(p, "confirm")
	}
	if !method.IsValid() {
		return p, utils.NewValidationError("method", "unknown payment method")
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return p, utils.NewValidationError("transactionReference", "transaction reference is required")
	}
	next := advance(p, models.PaymentVerifying, at)
	next.Method = method
	next.TransactionReference = reference
	next.ReceiptAttached = receiptAttached
	next.PaidAt = &at
	return next, nil
}

// Verify settles a verifying payment as completed or failed.
func Verify(p models.Payment, approved bool, notes string, at time.Time) (models.Payment, error) {
	if p.Status != models.PaymentVerifying {
		return p, invalidTransition(p, "verify")
	}
	to := models.PaymentFailed
	if approved {
		to = models.PaymentCompleted
	}
	next := advance(p, to, at)
	next.VerifierNotes = strings.TrimSpace(notes)
	next.VerifiedAt = &at
	return next, nil
}

// Abandon fails a payment that was never confirmed.
func Abandon(p models.Payment, notes string, at time.Time) (models.Payment, error) {
	if p.Status != models.PaymentPending {
		return p, invalidTransition(p, "abandon")
	}
	next := advance(p, models.PaymentFailed, at)
	next.VerifierNotes = strings.TrimSpace(notes)
	return next, nil
}
