package bookingRepo

import (
	"context"
	"time"

	"vidaview/models"
)

// BookingRepository persists bookings together with their payment attempts.
// Status changes go through compare-and-swap on Version: the record is only
// written when its stored version equals expectedVersion, otherwise
// database.ErrVersionConflict is returned and nothing changes.
type BookingRepository interface {
	// CreateWithPayment stores a booking and its initial payment atomically.
	CreateWithPayment(ctx context.Context, booking *models.Booking, payment *models.Payment) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int64, error)
	// FindOverlapping returns bookings on unitID in one of statuses whose range
	// intersects [start, end), excluding excludeID.
	FindOverlapping(ctx context.Context, unitID string, start, end time.Time, statuses []models.BookingStatus, excludeID string) ([]models.Booking, error)
	// FindEnded returns bookings in status whose end date is on or before date.
	FindEnded(ctx context.Context, status models.BookingStatus, date time.Time) ([]models.Booking, error)
	SaveTransition(ctx context.Context, booking *models.Booking, expectedVersion int) error

	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	ListPayments(ctx context.Context, bookingID string) ([]models.Payment, error)
	// QueryPayments pages through payments across bookings, newest first.
	QueryPayments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int64, error)
	SavePaymentTransition(ctx context.Context, payment *models.Payment, expectedVersion int) error
}

func statusStrings(statuses []models.BookingStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func paymentStatusStrings(statuses []models.PaymentStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
