package payment

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"vidaview/database"
	"vidaview/database/repository"
	bookingRepo "vidaview/database/repository/booking"
	"vidaview/models"
	"vidaview/services/activity"
	"vidaview/services/booking"
	"vidaview/services/pricing"
	"vidaview/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// slowPaymentList widens the window between reading a booking's payments and
// writing a new one.
type slowPaymentList struct {
	bookingRepo.BookingRepository
	delay time.Duration
}

func (r slowPaymentList) ListPayments(ctx context.Context, bookingID string) ([]models.Payment, error) {
	time.Sleep(r.delay)
	return r.BookingRepository.ListPayments(ctx, bookingID)
}

type testEnv struct {
	bookings *booking.DefaultBookingService
	payments *DefaultPaymentService
	repos    *repository.Set
}

func newTestEnv(t *testing.T, autoActivate bool) *testEnv {
	t.Helper()
	db, err := database.OpenSQL("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	repos := repository.NewGormSet(db)
	require.NoError(t, repos.Units.Upsert(context.Background(), &models.Unit{
		ID:                "unit-1",
		OwnerID:           "owner-1",
		MonthlyRate:       decimal.NewFromInt(3000000),
		MinimumStayMonths: 1,
	}))

	clock := func() time.Time { return time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC) }
	locker := booking.NewLocalUnitLocker()
	recorder := activity.NewStoreRecorder(repos.Activity)
	bookings := &booking.DefaultBookingService{
		Repo:           repos.Bookings,
		Units:          repos.Units,
		Calculator:     pricing.NewCalculator(500000, decimal.RequireFromString("0.20")),
		Locker:         locker,
		Activity:       recorder,
		Clock:          clock,
		AutoActivate:   autoActivate,
		PaymentDueDays: 3,
		Logger:         zap.NewNop(),
	}
	payments := &DefaultPaymentService{
		Repo:           repos.Bookings,
		Activator:      bookings,
		Locker:         locker,
		Activity:       recorder,
		Clock:          clock,
		AutoActivate:   autoActivate,
		PaymentDueDays: 3,
		Logger:         zap.NewNop(),
	}
	return &testEnv{bookings: bookings, payments: payments, repos: repos}
}

func (env *testEnv) newBooking(t *testing.T) (*models.Booking, *models.Payment) {
	t.Helper()
	ctx := context.Background()
	b, err := env.bookings.CreateBooking(ctx, booking.CreateBookingInput{
		UnitID:    "unit-1",
		TenantID:  "tenant-1",
		StartDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	payments, err := env.payments.ListPayments(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	return b, &payments[0]
}

func (env *testEnv) confirm(t *testing.T, paymentID string) {
	t.Helper()
	_, err := env.payments.ConfirmPayment(context.Background(), paymentID, ConfirmInput{
		Method:               models.MethodBankTransfer,
		TransactionReference: "TRX-20250110-01",
		ReceiptAttached:      true,
	})
	require.NoError(t, err)
}

func TestVerifyAfterApprovalActivatesBooking(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	b, p := env.newBooking(t)

	_, err := env.bookings.ApproveBooking(ctx, b.ID)
	require.NoError(t, err)
	env.confirm(t, p.ID)

	verified, err := env.payments.VerifyPayment(ctx, p.ID, true, "received")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, verified.Status)

	got, err := env.bookings.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingActive, got.Status)
}

func TestVerifyBeforeApprovalLeavesBookingPending(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	b, p := env.newBooking(t)
	env.confirm(t, p.ID)

	_, err := env.payments.VerifyPayment(ctx, p.ID, true, "")
	require.NoError(t, err)

	got, err := env.bookings.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, got.Status)

	// approval picks up the completed payment
	got, err = env.bookings.ApproveBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingActive, got.Status)
}

func TestVerifyWithoutAutoActivate(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	b, p := env.newBooking(t)
	_, err := env.bookings.ApproveBooking(ctx, b.ID)
	require.NoError(t, err)
	env.confirm(t, p.ID)

	_, err = env.payments.VerifyPayment(ctx, p.ID, true, "")
	require.NoError(t, err)

	got, err := env.bookings.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.Status)

	got, err = env.bookings.ActivateBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingActive, got.Status)
}

func TestVerifyTwiceFails(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	b, p := env.newBooking(t)
	_, err := env.bookings.ApproveBooking(ctx, b.ID)
	require.NoError(t, err)
	env.confirm(t, p.ID)

	_, err = env.payments.VerifyPayment(ctx, p.ID, true, "")
	require.NoError(t, err)
	_, err = env.payments.VerifyPayment(ctx, p.ID, true, "")
	assert.ErrorIs(t, err, utils.ErrInvalidTransition)
}

func TestConcurrentVerificationHasOneWinner(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	_, p := env.newBooking(t)
	env.confirm(t, p.ID)

	const verifiers = 6
	var wg sync.WaitGroup
	errs := make([]error, verifiers)
	for i := 0; i < verifiers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.payments.VerifyPayment(ctx, p.ID, i%2 == 0, "")
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		assert.ErrorIs(t, err, utils.ErrInvalidTransition)
	}
	assert.Equal(t, 1, won)

	got, err := env.payments.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Status.IsTerminal())
	assert.Equal(t, 3, got.Version)
}

func TestFailedPaymentKeepsBookingAndAllowsRetry(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	b, p := env.newBooking(t)
	_, err := env.bookings.ApproveBooking(ctx, b.ID)
	require.NoError(t, err)

	_, err = env.payments.RetryPayment(ctx, b.ID)
	assert.ErrorIs(t, err, utils.ErrInvalidTransition)

	env.confirm(t, p.ID)
	failed, err := env.payments.VerifyPayment(ctx, p.ID, false, "reference not found")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, failed.Status)

	got, err := env.bookings.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.Status)

	_, err = env.bookings.ActivateBooking(ctx, b.ID)
	assert.ErrorIs(t, err, utils.ErrInvalidTransition)

	retry, err := env.payments.RetryPayment(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, retry.Attempt)
	assert.Equal(t, b.Charge.Total, retry.Amount)
	assert.True(t, retry.IsPrimary)

	env.confirm(t, retry.ID)
	_, err = env.payments.VerifyPayment(ctx, retry.ID, true, "")
	require.NoError(t, err)

	got, err = env.bookings.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingActive, got.Status)

	payments, err := env.payments.ListPayments(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestPaymentsRefusedOnClosedBooking(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	b, p := env.newBooking(t)
	_, err := env.bookings.CancelBooking(ctx, b.ID)
	require.NoError(t, err)

	_, err = env.payments.ConfirmPayment(ctx, p.ID, ConfirmInput{Method: models.MethodCard, TransactionReference: "x"})
	assert.ErrorIs(t, err, utils.ErrInvalidTransition)

	_, err = env.payments.RetryPayment(ctx, b.ID)
	assert.ErrorIs(t, err, utils.ErrInvalidTransition)

	abandoned, err := env.payments.AbandonPayment(ctx, p.ID, "booking cancelled")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, abandoned.Status)

	_, err = env.payments.GetPayment(ctx, "missing")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func (env *testEnv) failPrimary(t *testing.T, paymentID string) {
	t.Helper()
	env.confirm(t, paymentID)
	_, err := env.payments.VerifyPayment(context.Background(), paymentID, false, "reference not found")
	require.NoError(t, err)
}

func runRetries(env *testEnv, bookingID string, n int) ([]*models.Payment, []error) {
	var wg sync.WaitGroup
	opened := make([]*models.Payment, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			opened[i], errs[i] = env.payments.RetryPayment(context.Background(), bookingID)
		}(i)
	}
	wg.Wait()
	return opened, errs
}

func assertOneOpenPrimary(t *testing.T, env *testEnv, bookingID string) {
	t.Helper()
	payments, err := env.repos.Bookings.ListPayments(context.Background(), bookingID)
	require.NoError(t, err)
	open := 0
	for _, p := range payments {
		if p.IsPrimary && p.Status == models.PaymentPending {
			open++
			assert.Equal(t, 2, p.Attempt)
		}
	}
	assert.Equal(t, 1, open)
	assert.Len(t, payments, 2)
}

func TestConcurrentRetriesOpenOneAttempt(t *testing.T) {
	env := newTestEnv(t, true)
	b, p := env.newBooking(t)
	env.failPrimary(t, p.ID)
	env.payments.Repo = slowPaymentList{BookingRepository: env.repos.Bookings, delay: 20 * time.Millisecond}

	opened, errs := runRetries(env, b.ID, 4)

	won := 0
	for i, err := range errs {
		if err == nil {
			won++
			assert.Equal(t, 2, opened[i].Attempt)
			continue
		}
		assert.ErrorIs(t, err, utils.ErrInvalidTransition)
	}
	assert.Equal(t, 1, won)
	assertOneOpenPrimary(t, env, b.ID)
}

func TestConcurrentRetriesWithoutLockerStopAtIndex(t *testing.T) {
	env := newTestEnv(t, true)
	b, p := env.newBooking(t)
	env.failPrimary(t, p.ID)
	env.payments.Locker = nil
	env.payments.Repo = slowPaymentList{BookingRepository: env.repos.Bookings, delay: 20 * time.Millisecond}

	_, errs := runRetries(env, b.ID, 4)

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		assert.ErrorIs(t, err, utils.ErrInvalidTransition)
	}
	assert.Equal(t, 1, won)
	assertOneOpenPrimary(t, env, b.ID)
}

func TestRejectVerifyingPaymentAfterCancellation(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	b, p := env.newBooking(t)
	env.confirm(t, p.ID)
	_, err := env.bookings.CancelBooking(ctx, b.ID)
	require.NoError(t, err)

	_, err = env.payments.VerifyPayment(ctx, p.ID, true, "")
	assert.ErrorIs(t, err, utils.ErrInvalidTransition)

	rejected, err := env.payments.VerifyPayment(ctx, p.ID, false, "booking cancelled, refund issued")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, rejected.Status)
	assert.Equal(t, "booking cancelled, refund issued", rejected.VerifierNotes)

	got, err := env.bookings.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, got.Status)
}

func TestCreatePaymentAddsExtraCharge(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	b, p := env.newBooking(t)
	_, err := env.bookings.ApproveBooking(ctx, b.ID)
	require.NoError(t, err)

	extra, err := env.payments.CreatePayment(ctx, CreatePaymentInput{
		BookingID: b.ID,
		Kind:      models.PaymentKindUtility,
		Amount:    250000,
	})
	require.NoError(t, err)
	assert.False(t, extra.IsPrimary)
	assert.Equal(t, models.PaymentPending, extra.Status)
	assert.Equal(t, time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), extra.DueDate)
	assert.Regexp(t, `^PAY20250110\d{6}$`, extra.PaymentCode)

	// an open extra charge neither blocks activation nor counts towards it
	env.confirm(t, p.ID)
	_, err = env.payments.VerifyPayment(ctx, p.ID, true, "")
	require.NoError(t, err)
	got, err := env.bookings.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingActive, got.Status)

	// active bookings still take extra charges
	penalty, err := env.payments.CreatePayment(ctx, CreatePaymentInput{
		BookingID: b.ID,
		Kind:      models.PaymentKindPenalty,
		Amount:    100000,
		DueDate:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), penalty.DueDate)
	env.confirm(t, penalty.ID)

	payments, err := env.payments.ListPayments(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 3)
}

func TestCreatePaymentValidation(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	b, _ := env.newBooking(t)

	_, err := env.payments.CreatePayment(ctx, CreatePaymentInput{BookingID: b.ID, Kind: "tip", Amount: 1000})
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = env.payments.CreatePayment(ctx, CreatePaymentInput{BookingID: b.ID, Kind: models.PaymentKindUtility})
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = env.payments.CreatePayment(ctx, CreatePaymentInput{
		BookingID: b.ID,
		Kind:      models.PaymentKindUtility,
		Amount:    1000,
		DueDate:   time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = env.payments.CreatePayment(ctx, CreatePaymentInput{BookingID: "missing", Kind: models.PaymentKindUtility, Amount: 1000})
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = env.bookings.RejectBooking(ctx, b.ID, "no documents")
	require.NoError(t, err)
	_, err = env.payments.CreatePayment(ctx, CreatePaymentInput{BookingID: b.ID, Kind: models.PaymentKindUtility, Amount: 1000})
	assert.ErrorIs(t, err, utils.ErrInvalidTransition)
}

func TestSearchPayments(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	_, first := env.newBooking(t)
	env.newBooking(t)
	env.confirm(t, first.ID)

	all, err := env.payments.SearchPayments(ctx, models.PaymentFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
	assert.Equal(t, 1, all.Page)
	assert.Equal(t, 10, all.PerPage)

	verifying, err := env.payments.SearchPayments(ctx, models.PaymentFilter{Statuses: []models.PaymentStatus{models.PaymentVerifying}})
	require.NoError(t, err)
	require.Len(t, verifying.Payments, 1)
	assert.Equal(t, first.ID, verifying.Payments[0].ID)

	paged, err := env.payments.SearchPayments(ctx, models.PaymentFilter{Page: 2, PerPage: 1})
	require.NoError(t, err)
	assert.Len(t, paged.Payments, 1)
	assert.Equal(t, int64(2), paged.Total)

	_, err = env.payments.SearchPayments(ctx, models.PaymentFilter{Statuses: []models.PaymentStatus{"refunded"}})
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestPaymentTransitionsAreRecorded(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	_, p := env.newBooking(t)
	env.failPrimary(t, p.ID)

	trail, err := env.repos.Activity.ListByEntity(ctx, models.ActivityPayment, p.ID)
	require.NoError(t, err)
	require.Len(t, trail, 3)
	actions := []string{trail[0].Action, trail[1].Action, trail[2].Action}
	assert.ElementsMatch(t, []string{activity.ActionCreate, activity.ActionConfirm, activity.ActionVerify}, actions)
	for _, entry := range trail {
		if entry.Action == activity.ActionVerify {
			assert.Equal(t, "verifying", entry.FromStatus)
			assert.Equal(t, "failed", entry.ToStatus)
			assert.Contains(t, entry.NewData, "reference not found")
		}
	}
}
