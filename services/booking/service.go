package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vidaview/database"
	bookingRepo "vidaview/database/repository/booking"
	unitRepo "vidaview/database/repository/unit"
	"vidaview/models"
	"vidaview/services/activity"
	"vidaview/services/notification"
	"vidaview/services/pricing"
	"vidaview/services/promotion"
	"vidaview/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxCodeAttempts = 3

var occupyingStatuses = []models.BookingStatus{models.BookingConfirmed, models.BookingActive}

// BookingService is the booking side of the engine exposed to the request layer.
type BookingService interface {
	PreviewPrice(ctx context.Context, input PreviewInput) (models.ChargeBreakdown, error)
	CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, error)
	ApproveBooking(ctx context.Context, id string) (*models.Booking, error)
	RejectBooking(ctx context.Context, id, reason string) (*models.Booking, error)
	CancelBooking(ctx context.Context, id string) (*models.Booking, error)
	ActivateBooking(ctx context.Context, id string) (*models.Booking, error)
	CompleteBooking(ctx context.Context, id string) (*models.Booking, error)
	CompleteExpired(ctx context.Context) (int, error)
	ActivateIfPaid(ctx context.Context, id string) (*models.Booking, bool, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) (BookingPage, error)
}

type PreviewInput struct {
	UnitID    string
	StartDate time.Time
	EndDate   time.Time
	PromoCode string
}

type CreateBookingInput struct {
	UnitID    string
	TenantID  string
	StartDate time.Time
	EndDate   time.Time
	PromoCode string
	Notes     string
}

type BookingPage struct {
	Bookings []models.Booking `json:"bookings"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PerPage  int              `json:"perPage"`
}

// DefaultBookingService implements BookingService. With AutoActivate set, an
// approval whose primary payment already completed activates the booking
// right away.
type DefaultBookingService struct {
	Repo           bookingRepo.BookingRepository
	Units          unitRepo.UnitRepository
	Promotions     promotion.Validator
	Calculator     *pricing.Calculator
	Locker         UnitLocker
	Notifier       notification.Notifier
	Activity       activity.Recorder
	Clock          utils.Clock
	AutoActivate   bool
	PaymentDueDays int
	Logger         *zap.Logger
}

func (s *DefaultBookingService) today() time.Time {
	return utils.Date(s.Clock())
}

func (s *DefaultBookingService) loadUnit(ctx context.Context, unitID string) (*models.Unit, error) {
	if strings.TrimSpace(unitID) == "" {
		return nil, utils.NewValidationError("unitId", "unit id is required")
	}
	unit, err := s.Units.GetByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewAppErrorf(utils.KindNotFound, "unit %s not found", unitID)
		}
		return nil, fmt.Errorf("failed to fetch unit %s: %w", unitID, err)
	}
	return unit, nil
}

// quote prices the stay. Range and minimum-stay errors are reported before the
// promotion code is looked at.
func (s *DefaultBookingService) quote(ctx context.Context, unit models.Unit, start, end time.Time, code string) (models.ChargeBreakdown, error) {
	breakdown, err := s.Calculator.Price(unit, start, end, nil)
	if err != nil || strings.TrimSpace(code) == "" {
		return breakdown, err
	}
	discount, err := s.Promotions.Validate(ctx, code, s.today())
	if err != nil {
		return models.ChargeBreakdown{}, err
	}
	return s.Calculator.Price(unit, start, end, &discount)
}

func (s *DefaultBookingService) PreviewPrice(ctx context.Context, input PreviewInput) (models.ChargeBreakdown, error) {
	unit, err := s.loadUnit(ctx, input.UnitID)
	if err != nil {
		return models.ChargeBreakdown{}, err
	}
	return s.quote(ctx, *unit, input.StartDate, input.EndDate, input.PromoCode)
}

// CreateBooking prices the request and stores the pending booking together
// with its primary payment in one transaction.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	if strings.TrimSpace(input.TenantID) == "" {
		return nil, utils.NewValidationError("tenantId", "tenant id is required")
	}
	start, end := utils.Date(input.StartDate), utils.Date(input.EndDate)
	today := s.today()
	if start.Before(today) {
		return nil, utils.NewValidationError("startDate", "start date must not be in the past")
	}

	unit, err := s.loadUnit(ctx, input.UnitID)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.quote(ctx, *unit, start, end, input.PromoCode)
	if err != nil {
		return nil, err
	}
	if err := s.ensureAvailable(ctx, unit.ID, start, end, ""); err != nil {
		return nil, err
	}

	now := s.Clock()
	booking := &models.Booking{
		ID:        uuid.New().String(),
		UnitID:    unit.ID,
		OwnerID:   unit.OwnerID,
		TenantID:  input.TenantID,
		StartDate: start,
		EndDate:   end,
		Charge:    breakdown,
		Status:    models.BookingPending,
		Notes:     strings.TrimSpace(input.Notes),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	payment := NewPrimaryPayment(booking, 1, now, s.PaymentDueDays)

	for attempt := 1; ; attempt++ {
		if booking.BookingCode, err = utils.GenerateBookingCode(now); err != nil {
			return nil, err
		}
		if payment.PaymentCode, err = utils.GeneratePaymentCode(now); err != nil {
			return nil, err
		}
		err = s.Repo.CreateWithPayment(ctx, booking, payment)
		if err == nil {
			break
		}
		if !errors.Is(err, database.ErrDuplicate) || attempt == maxCodeAttempts {
			return nil, fmt.Errorf("failed to create booking: %w", err)
		}
		s.Logger.Warn("booking code collision, regenerating", zap.String("bookingCode", booking.BookingCode))
	}

	s.Logger.Info("booking created",
		zap.String("bookingID", booking.ID),
		zap.String("bookingCode", booking.BookingCode),
		zap.String("unitID", booking.UnitID),
		zap.Int64("total", booking.Charge.Total))
	activity.Log(ctx, s.Activity, s.Logger,
		activity.New(models.ActivityBooking, booking.ID, activity.ActionCreate, "", string(booking.Status), nil, booking, now),
		activity.New(models.ActivityPayment, payment.ID, activity.ActionCreate, "", string(payment.Status), nil, payment, now))
	notification.Send(ctx, s.Notifier, s.Logger,
		notification.New(booking.TenantID, models.NotificationBooking, notification.EventBookingCreated, booking.ID, now),
		notification.New(booking.OwnerID, models.NotificationBooking, notification.EventBookingRequested, booking.ID, now),
	)
	return booking, nil
}

// NewPrimaryPayment builds the payment attempt that settles the booking total.
func NewPrimaryPayment(booking *models.Booking, attempt int, now time.Time, dueDays int) *models.Payment {
	return &models.Payment{
		ID:        uuid.New().String(),
		BookingID: booking.ID,
		Kind:      models.PaymentKindDeposit,
		Amount:    booking.Charge.Total,
		Status:    models.PaymentPending,
		IsPrimary: true,
		Attempt:   attempt,
		DueDate:   utils.Date(now).AddDate(0, 0, dueDays),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *DefaultBookingService) ensureAvailable(ctx context.Context, unitID string, start, end time.Time, excludeID string) error {
	clashes, err := s.Repo.FindOverlapping(ctx, unitID, start, end, occupyingStatuses, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check availability of unit %s: %w", unitID, err)
	}
	if len(clashes) > 0 {
		return utils.NewAppErrorf(utils.KindUnitUnavailable, "unit %s is already booked from %s to %s",
			unitID, clashes[0].StartDate.Format(utils.DateLayout), clashes[0].EndDate.Format(utils.DateLayout))
	}
	return nil
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewAppErrorf(utils.KindNotFound, "booking %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return booking, nil
}

func (s *DefaultBookingService) ListBookings(ctx context.Context, filter models.BookingFilter) (BookingPage, error) {
	for _, status := range filter.Statuses {
		if !status.IsValid() {
			return BookingPage{}, utils.NewValidationError("status", fmt.Sprintf("unknown status %q", status))
		}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 10
	}
	bookings, total, err := s.Repo.List(ctx, filter)
	if err != nil {
		return BookingPage{}, fmt.Errorf("failed to list bookings: %w", err)
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return BookingPage{Bookings: bookings, Total: total, Page: filter.Page, PerPage: filter.PerPage}, nil
}

// commit stores a transition computed from current and appends it to the
// activity trail. A concurrent writer that got there first turns into
// InvalidTransition.
func (s *DefaultBookingService) commit(ctx context.Context, action string, current, next models.Booking) (*models.Booking, error) {
	if err := s.Repo.SaveTransition(ctx, &next, current.Version); err != nil {
		if errors.Is(err, database.ErrVersionConflict) {
			return nil, utils.NewAppErrorf(utils.KindInvalidTransition, "booking %s was modified concurrently", current.ID)
		}
		return nil, fmt.Errorf("failed to save booking %s: %w", current.ID, err)
	}
	s.Logger.Info("booking transitioned",
		zap.String("bookingID", next.ID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next.Status)),
		zap.Int("version", next.Version))
	activity.Log(ctx, s.Activity, s.Logger,
		activity.New(models.ActivityBooking, next.ID, action, string(current.Status), string(next.Status), current, next, next.UpdatedAt))
	return &next, nil
}

// ApproveBooking confirms a pending booking. Approvals on the same unit are
// serialised and the unit's calendar is re-checked under the lock. With
// AutoActivate set, a booking whose primary payment is already verified goes
// straight to active.
func (s *DefaultBookingService) ApproveBooking(ctx context.Context, id string) (*models.Booking, error) {
	current, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock, err := s.Locker.Lock(ctx, current.UnitID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if current, err = s.GetBooking(ctx, id); err != nil {
		return nil, err
	}
	next, err := Approve(*current, s.Clock())
	if err != nil {
		return nil, err
	}
	if err := s.ensureAvailable(ctx, current.UnitID, current.StartDate, current.EndDate, current.ID); err != nil {
		return nil, err
	}
	approved, err := s.commit(ctx, activity.ActionApprove, *current, next)
	if err != nil {
		return nil, err
	}
	notification.Send(ctx, s.Notifier, s.Logger,
		notification.New(approved.TenantID, models.NotificationBooking, notification.EventBookingApproved, approved.ID, approved.UpdatedAt))

	if !s.AutoActivate {
		return approved, nil
	}
	activated, ok, err := s.ActivateIfPaid(ctx, approved.ID)
	if err != nil {
		s.Logger.Warn("activation after approval failed", zap.String("bookingID", approved.ID), zap.Error(err))
		return approved, nil
	}
	if ok {
		return activated, nil
	}
	return approved, nil
}

func (s *DefaultBookingService) RejectBooking(ctx context.Context, id, reason string) (*models.Booking, error) {
	current, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := Reject(*current, reason, s.Clock())
	if err != nil {
		return nil, err
	}
	rejected, err := s.commit(ctx, activity.ActionReject, *current, next)
	if err != nil {
		return nil, err
	}
	notification.Send(ctx, s.Notifier, s.Logger,
		notification.New(rejected.TenantID, models.NotificationBooking, notification.EventBookingRejected, rejected.ID, rejected.UpdatedAt))
	return rejected, nil
}

func (s *DefaultBookingService) CancelBooking(ctx context.Context, id string) (*models.Booking, error) {
	current, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := Cancel(*current, s.Clock())
	if err != nil {
		return nil, err
	}
	cancelled, err := s.commit(ctx, activity.ActionCancel, *current, next)
	if err != nil {
		return nil, err
	}
	notification.Send(ctx, s.Notifier, s.Logger,
		notification.New(cancelled.TenantID, models.NotificationBooking, notification.EventBookingCancelled, cancelled.ID, cancelled.UpdatedAt),
		notification.New(cancelled.OwnerID, models.NotificationBooking, notification.EventBookingCancelled, cancelled.ID, cancelled.UpdatedAt))
	return cancelled, nil
}

func (s *DefaultBookingService) primaryPaymentCompleted(ctx context.Context, bookingID string) (bool, error) {
	payments, err := s.Repo.ListPayments(ctx, bookingID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch payments of booking %s: %w", bookingID, err)
	}
	for _, p := range payments {
		if p.IsPrimary && p.Status == models.PaymentCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (s *DefaultBookingService) activate(ctx context.Context, current models.Booking) (*models.Booking, error) {
	paid, err := s.primaryPaymentCompleted(ctx, current.ID)
	if err != nil {
		return nil, err
	}
	next, err := Activate(current, paid, s.Clock())
	if err != nil {
		return nil, err
	}
	activated, err := s.commit(ctx, activity.ActionActivate, current, next)
	if err != nil {
		return nil, err
	}
	notification.Send(ctx, s.Notifier, s.Logger,
		notification.New(activated.TenantID, models.NotificationBooking, notification.EventBookingActivated, activated.ID, activated.UpdatedAt),
		notification.New(activated.OwnerID, models.NotificationBooking, notification.EventBookingActivated, activated.ID, activated.UpdatedAt))
	return activated, nil
}

// ActivateBooking moves a confirmed booking to active once its primary
// payment has completed.
func (s *DefaultBookingService) ActivateBooking(ctx context.Context, id string) (*models.Booking, error) {
	current, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.activate(ctx, *current)
}

// ActivateIfPaid activates the booking when it is confirmed and paid. It
// reports false without error when either condition does not hold yet.
func (s *DefaultBookingService) ActivateIfPaid(ctx context.Context, id string) (*models.Booking, bool, error) {
	current, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if current.Status != models.BookingConfirmed {
		return current, false, nil
	}
	paid, err := s.primaryPaymentCompleted(ctx, id)
	if err != nil || !paid {
		return current, false, err
	}
	activated, err := s.activate(ctx, *current)
	if err != nil {
		return nil, false, err
	}
	return activated, true, nil
}

func (s *DefaultBookingService) CompleteBooking(ctx context.Context, id string) (*models.Booking, error) {
	current, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, *current)
}

func (s *DefaultBookingService) complete(ctx context.Context, current models.Booking) (*models.Booking, error) {
	next, err := Complete(current, s.Clock())
	if err != nil {
		return nil, err
	}
	completed, err := s.commit(ctx, activity.ActionComplete, current, next)
	if err != nil {
		return nil, err
	}
	notification.Send(ctx, s.Notifier, s.Logger,
		notification.New(completed.TenantID, models.NotificationBooking, notification.EventBookingCompleted, completed.ID, completed.UpdatedAt),
		notification.New(completed.OwnerID, models.NotificationBooking, notification.EventBookingCompleted, completed.ID, completed.UpdatedAt))
	return completed, nil
}

// CompleteExpired completes every active booking whose end date has been
// reached. Bookings that fail to transition are logged and skipped.
func (s *DefaultBookingService) CompleteExpired(ctx context.Context) (int, error) {
	ended, err := s.Repo.FindEnded(ctx, models.BookingActive, s.today())
	if err != nil {
		return 0, fmt.Errorf("failed to find ended bookings: %w", err)
	}

	completed := 0
	for _, b := range ended {
		if _, err := s.complete(ctx, b); err != nil {
			s.Logger.Warn("could not complete ended booking", zap.String("bookingID", b.ID), zap.Error(err))
			continue
		}
		completed++
	}
	if completed > 0 {
		s.Logger.Info("completed ended bookings", zap.Int("count", completed))
	}
	return completed, nil
}
