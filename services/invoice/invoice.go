package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"vidaview/database"
	bookingRepo "vidaview/database/repository/booking"
	"vidaview/models"
	"vidaview/utils"
)

// Build snapshots a booking and one of its payments into an invoice. It fails
// when the payment belongs to another booking or the frozen breakdown does
// not add up.
func Build(booking models.Booking, payment models.Payment, issuedAt time.Time) (models.Invoice, error) {
	if payment.BookingID != booking.ID {
		return models.Invoice{}, utils.NewValidationError("paymentId", "payment does not belong to booking")
	}
	charge := booking.Charge
	if !charge.Consistent() {
		return models.Invoice{}, fmt.Errorf("booking %s has an inconsistent charge breakdown", booking.ID)
	}

	lines := []models.InvoiceLine{
		{Label: fmt.Sprintf("Rent %d x %d", charge.TotalMonths, charge.MonthlyRate), Amount: charge.RentSubtotal},
		{Label: "Security deposit", Amount: charge.DepositAmount},
		{Label: "Utility deposit", Amount: charge.UtilityDeposit},
		{Label: "Admin fee", Amount: charge.AdminFee},
	}
	if charge.DiscountAmount > 0 {
		lines = append(lines, models.InvoiceLine{Label: "Discount " + charge.PromotionCode, Amount: -charge.DiscountAmount})
	}

	var paid int64
	if payment.Status == models.PaymentCompleted {
		paid = payment.Amount
	}

	return models.Invoice{
		InvoiceNumber: "INV" + strings.TrimPrefix(payment.PaymentCode, utils.PaymentCodePrefix),
		BookingID:     booking.ID,
		BookingCode:   booking.BookingCode,
		PaymentID:     payment.ID,
		PaymentCode:   payment.PaymentCode,
		TenantID:      booking.TenantID,
		UnitID:        booking.UnitID,
		PeriodStart:   booking.StartDate,
		PeriodEnd:     booking.EndDate,
		TotalMonths:   charge.TotalMonths,
		Lines:         lines,
		Subtotal:      charge.Subtotal,
		Discount:      charge.DiscountAmount,
		Total:         charge.Total,
		AmountPaid:    paid,
		BookingStatus: booking.Status,
		PaymentStatus: payment.Status,
		PaymentMethod: payment.Method,
		Final:         booking.Status.IsTerminal() || payment.Status == models.PaymentCompleted,
		IssuedAt:      issuedAt,
	}, nil
}

// Renderer turns an invoice into a document. PDF and spreadsheet renderers
// live outside this service.
type Renderer interface {
	ContentType() string
	Render(invoice models.Invoice) ([]byte, error)
}

type JSONRenderer struct{}

func (JSONRenderer) ContentType() string { return "application/json; charset=utf-8" }

func (JSONRenderer) Render(invoice models.Invoice) ([]byte, error) {
	return json.Marshal(invoice)
}

// InvoiceService picks the payment to invoice for a booking.
type InvoiceService struct {
	Repo  bookingRepo.BookingRepository
	Clock utils.Clock
}

// ForBooking invoices the latest primary payment attempt of the booking.
func (s *InvoiceService) ForBooking(ctx context.Context, bookingID string) (models.Invoice, error) {
	booking, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return models.Invoice{}, utils.NewAppErrorf(utils.KindNotFound, "booking %s not found", bookingID)
		}
		return models.Invoice{}, fmt.Errorf("failed to fetch booking %s: %w", bookingID, err)
	}
	payments, err := s.Repo.ListPayments(ctx, bookingID)
	if err != nil {
		return models.Invoice{}, fmt.Errorf("failed to fetch payments of booking %s: %w", bookingID, err)
	}

	var primary *models.Payment
	for i := range payments {
		if payments[i].IsPrimary && (primary == nil || payments[i].Attempt > primary.Attempt) {
			primary = &payments[i]
		}
	}
	if primary == nil {
		return models.Invoice{}, utils.NewAppErrorf(utils.KindNotFound, "booking %s has no payment", bookingID)
	}
	return Build(*booking, *primary, s.Clock())
}
