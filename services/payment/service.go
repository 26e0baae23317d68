package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vidaview/database"
	bookingRepo "vidaview/database/repository/booking"
	"vidaview/models"
	"vidaview/services/activity"
	"vidaview/services/booking"
	"vidaview/services/notification"
	"vidaview/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxCodeAttempts = 3

// PaymentService drives payment attempts for bookings.
type PaymentService interface {
	CreatePayment(ctx context.Context, input CreatePaymentInput) (*models.Payment, error)
	ConfirmPayment(ctx context.Context, id string, input ConfirmInput) (*models.Payment, error)
	VerifyPayment(ctx context.Context, id string, approved bool, notes string) (*models.Payment, error)
	AbandonPayment(ctx context.Context, id, notes string) (*models.Payment, error)
	RetryPayment(ctx context.Context, bookingID string) (*models.Payment, error)
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	ListPayments(ctx context.Context, bookingID string) ([]models.Payment, error)
	SearchPayments(ctx context.Context, filter models.PaymentFilter) (PaymentPage, error)
}

type ConfirmInput struct {
	Method               models.PaymentMethod `json:"method"`
	TransactionReference string               `json:"transactionReference"`
	ReceiptAttached      bool                 `json:"receiptAttached"`
}

// CreatePaymentInput describes an extra charge raised against a booking. A
// zero DueDate falls back to the configured number of days from today.
type CreatePaymentInput struct {
	BookingID string
	Kind      models.PaymentKind
	Amount    int64
	DueDate   time.Time
}

type PaymentPage struct {
	Payments []models.Payment `json:"payments"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PerPage  int              `json:"perPage"`
}

// Activator is the part of the booking service a verified payment hands off to.
type Activator interface {
	ActivateIfPaid(ctx context.Context, bookingID string) (*models.Booking, bool, error)
}

// DefaultPaymentService implements PaymentService. Locker serialises retries
// on a booking's unit; without it the primary-attempt index is the only guard.
type DefaultPaymentService struct {
	Repo           bookingRepo.BookingRepository
	Activator      Activator
	Locker         booking.UnitLocker
	Notifier       notification.Notifier
	Activity       activity.Recorder
	Clock          utils.Clock
	AutoActivate   bool
	PaymentDueDays int
	Logger         *zap.Logger
}

func (s *DefaultPaymentService) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	p, err := s.Repo.GetPayment(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewAppErrorf(utils.KindNotFound, "payment %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch payment %s: %w", id, err)
	}
	return p, nil
}

func (s *DefaultPaymentService) getBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewAppErrorf(utils.KindNotFound, "booking %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return b, nil
}

// acceptsPayment reports whether b can still take money on p. The primary
// payment settles the booking before it runs; extra charges follow the
// booking until it is rejected or cancelled.
func acceptsPayment(b *models.Booking, p *models.Payment) bool {
	if p.IsPrimary {
		return b.Status == models.BookingPending || b.Status == models.BookingConfirmed
	}
	return b.Status != models.BookingRejected && b.Status != models.BookingCancelled
}

func closedBooking(b *models.Booking) error {
	return utils.NewAppErrorf(utils.KindInvalidTransition, "booking %s in status %s does not accept payments", b.ID, b.Status)
}

// payableBooking loads the payment's booking and checks it still accepts payments.
func (s *DefaultPaymentService) payableBooking(ctx context.Context, p *models.Payment) (*models.Booking, error) {
	b, err := s.getBooking(ctx, p.BookingID)
	if err != nil {
		return nil, err
	}
	if !acceptsPayment(b, p) {
		return nil, closedBooking(b)
	}
	return b, nil
}

func (s *DefaultPaymentService) commit(ctx context.Context, action string, current, next models.Payment) (*models.Payment, error) {
	if err := s.Repo.SavePaymentTransition(ctx, &next, current.Version); err != nil {
		if errors.Is(err, database.ErrVersionConflict) {
			return nil, utils.NewAppErrorf(utils.KindInvalidTransition, "payment %s was modified concurrently", current.ID)
		}
		return nil, fmt.Errorf("failed to save payment %s: %w", current.ID, err)
	}
	s.Logger.Info("payment transitioned",
		zap.String("paymentID", next.ID),
		zap.String("bookingID", next.BookingID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next.Status)))
	activity.Log(ctx, s.Activity, s.Logger,
		activity.New(models.ActivityPayment, next.ID, action, string(current.Status), string(next.Status), current, next, next.UpdatedAt))
	return &next, nil
}

// insert stores p with a fresh payment code. On a duplicate key it asks
// codeCollision whether the code was the clash and regenerates if so; any
// other duplicate is returned as database.ErrDuplicate.
func (s *DefaultPaymentService) insert(ctx context.Context, p *models.Payment, codeCollision func() (bool, error)) error {
	var err error
	for attempt := 1; ; attempt++ {
		if p.PaymentCode, err = utils.GeneratePaymentCode(p.CreatedAt); err != nil {
			return err
		}
		err = s.Repo.CreatePayment(ctx, p)
		if err == nil {
			return nil
		}
		if !errors.Is(err, database.ErrDuplicate) {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		collision, cerr := codeCollision()
		if cerr != nil {
			return cerr
		}
		if !collision {
			return database.ErrDuplicate
		}
		if attempt == maxCodeAttempts {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		s.Logger.Warn("payment code collision, regenerating", zap.String("paymentCode", p.PaymentCode))
	}
}

// CreatePayment raises an extra charge on a booking. It never counts towards
// activation.
func (s *DefaultPaymentService) CreatePayment(ctx context.Context, input CreatePaymentInput) (*models.Payment, error) {
	if strings.TrimSpace(input.BookingID) == "" {
		return nil, utils.NewValidationError("bookingId", "booking id is required")
	}
	if !input.Kind.IsValid() {
		return nil, utils.NewValidationError("kind", "unknown payment kind")
	}
	if input.Amount <= 0 {
		return nil, utils.NewValidationError("amount", "amount must be positive")
	}

	now := s.Clock()
	today := utils.Date(now)
	due := today.AddDate(0, 0, s.PaymentDueDays)
	if !input.DueDate.IsZero() {
		due = utils.Date(input.DueDate)
		if due.Before(today) {
			return nil, utils.NewValidationError("dueDate", "due date must not be in the past")
		}
	}

	b, err := s.getBooking(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	p := &models.Payment{
		ID:        uuid.New().String(),
		BookingID: b.ID,
		Kind:      input.Kind,
		Amount:    input.Amount,
		Status:    models.PaymentPending,
		Attempt:   1,
		DueDate:   due,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !acceptsPayment(b, p) {
		return nil, closedBooking(b)
	}

	// extra charges are not primary, so only the payment code is unique
	if err := s.insert(ctx, p, func() (bool, error) { return true, nil }); err != nil {
		return nil, err
	}
	s.Logger.Info("payment created",
		zap.String("bookingID", b.ID),
		zap.String("paymentID", p.ID),
		zap.String("kind", string(p.Kind)),
		zap.Int64("amount", p.Amount))
	activity.Log(ctx, s.Activity, s.Logger,
		activity.New(models.ActivityPayment, p.ID, activity.ActionCreate, "", string(p.Status), nil, p, now))
	notification.Send(ctx, s.Notifier, s.Logger,
		notification.New(b.TenantID, models.NotificationPayment, notification.EventPaymentRequested, p.ID, now))
	return p, nil
}

// ConfirmPayment records the tenant's transfer details for verification.
func (s *DefaultPaymentService) ConfirmPayment(ctx context.Context, id string, input ConfirmInput) (*models.Payment, error) {
	current, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	b, err := s.payableBooking(ctx, current)
	if err != nil {
		return nil, err
	}
	next, err := Confirm(*current, input.Method, input.TransactionReference, input.ReceiptAttached, s.Clock())
	if err != nil {
		return nil, err
	}
	confirmed, err := s.commit(ctx, activity.ActionConfirm, *current, next)
	if err != nil {
		return nil, err
	}
	notification.Send(ctx, s.Notifier, s.Logger,
		notification.New(b.OwnerID, models.NotificationPayment, notification.EventPaymentSubmitted, confirmed.ID, confirmed.UpdatedAt))
	return confirmed, nil
}

// VerifyPayment settles a verifying payment. Exactly one of several
// concurrent verifications wins; the rest get InvalidTransition. A rejected
// payment leaves the booking as it is. Rejection is allowed after the
// booking closed, approval is not.
func (s *DefaultPaymentService) VerifyPayment(ctx context.Context, id string, approved bool, notes string) (*models.Payment, error) {
	current, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	b, err := s.getBooking(ctx, current.BookingID)
	if err != nil {
		return nil, err
	}
	if approved && !acceptsPayment(b, current) {
		return nil, closedBooking(b)
	}
	next, err := Verify(*current, approved, notes, s.Clock())
	if err != nil {
		return nil, err
	}
	verified, err := s.commit(ctx, activity.ActionVerify, *current, next)
	if err != nil {
		return nil, err
	}

	event := notification.EventPaymentRejected
	if approved {
		event = notification.EventPaymentVerified
	}
	notification.Send(ctx, s.Notifier, s.Logger,
		notification.New(b.TenantID, models.NotificationPayment, event, verified.ID, verified.UpdatedAt))

	if approved && verified.IsPrimary && s.AutoActivate && s.Activator != nil {
		if _, _, err := s.Activator.ActivateIfPaid(ctx, b.ID); err != nil {
			s.Logger.Warn("activation after payment verification failed",
				zap.String("bookingID", b.ID), zap.String("paymentID", verified.ID), zap.Error(err))
		}
	}
	return verified, nil
}

// AbandonPayment fails a payment the tenant never confirmed.
func (s *DefaultPaymentService) AbandonPayment(ctx context.Context, id, notes string) (*models.Payment, error) {
	current, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := Abandon(*current, notes, s.Clock())
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, activity.ActionAbandon, *current, next)
}

// primaryAttempts returns the highest primary attempt of the booking, or an
// InvalidTransition when one of them is still open.
func primaryAttempts(payments []models.Payment) (int, error) {
	last := 0
	for _, p := range payments {
		if !p.IsPrimary {
			continue
		}
		if p.Status != models.PaymentFailed {
			return 0, utils.NewAppErrorf(utils.KindInvalidTransition, "payment %s is still %s", p.ID, p.Status)
		}
		if p.Attempt > last {
			last = p.Attempt
		}
	}
	return last, nil
}

// RetryPayment opens a new primary attempt after the previous one failed.
// Concurrent retries on one booking open at most one attempt; the others get
// InvalidTransition.
func (s *DefaultPaymentService) RetryPayment(ctx context.Context, bookingID string) (*models.Payment, error) {
	b, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if s.Locker != nil {
		unlock, err := s.Locker.Lock(ctx, b.UnitID)
		if err != nil {
			return nil, err
		}
		defer unlock()
		if b, err = s.getBooking(ctx, bookingID); err != nil {
			return nil, err
		}
	}
	if b.Status != models.BookingPending && b.Status != models.BookingConfirmed {
		return nil, closedBooking(b)
	}

	payments, err := s.Repo.ListPayments(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments of booking %s: %w", bookingID, err)
	}
	lastAttempt, err := primaryAttempts(payments)
	if err != nil {
		return nil, err
	}

	now := s.Clock()
	retry := booking.NewPrimaryPayment(b, lastAttempt+1, now, s.PaymentDueDays)
	err = s.insert(ctx, retry, func() (bool, error) {
		current, err := s.Repo.ListPayments(ctx, bookingID)
		if err != nil {
			return false, fmt.Errorf("failed to list payments of booking %s: %w", bookingID, err)
		}
		for _, p := range current {
			if p.IsPrimary && p.Attempt == retry.Attempt {
				return false, nil
			}
		}
		return true, nil
	})
	if errors.Is(err, database.ErrDuplicate) {
		return nil, utils.NewAppErrorf(utils.KindInvalidTransition, "attempt %d of booking %s was opened concurrently", retry.Attempt, bookingID)
	}
	if err != nil {
		return nil, err
	}
	s.Logger.Info("payment retry opened",
		zap.String("bookingID", b.ID), zap.String("paymentID", retry.ID), zap.Int("attempt", retry.Attempt))
	activity.Log(ctx, s.Activity, s.Logger,
		activity.New(models.ActivityPayment, retry.ID, activity.ActionRetry, "", string(retry.Status), nil, retry, now))
	return retry, nil
}

func (s *DefaultPaymentService) ListPayments(ctx context.Context, bookingID string) ([]models.Payment, error) {
	if _, err := s.getBooking(ctx, bookingID); err != nil {
		return nil, err
	}
	payments, err := s.Repo.ListPayments(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments of booking %s: %w", bookingID, err)
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	return payments, nil
}

// SearchPayments pages through payments across bookings, newest first.
func (s *DefaultPaymentService) SearchPayments(ctx context.Context, filter models.PaymentFilter) (PaymentPage, error) {
	for _, status := range filter.Statuses {
		switch status {
		case models.PaymentPending, models.PaymentVerifying, models.PaymentCompleted, models.PaymentFailed:
		default:
			return PaymentPage{}, utils.NewValidationError("status", fmt.Sprintf("unknown status %q", status))
		}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 10
	}
	payments, total, err := s.Repo.QueryPayments(ctx, filter)
	if err != nil {
		return PaymentPage{}, fmt.Errorf("failed to list payments: %w", err)
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	return PaymentPage{Payments: payments, Total: total, Page: filter.Page, PerPage: filter.PerPage}, nil
}
