package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vidaview/database"
	"vidaview/database/repository"
	"vidaview/handlers"
	"vidaview/models"
	"vidaview/routes"
	"vidaview/services/activity"
	"vidaview/services/booking"
	"vidaview/services/invoice"
	"vidaview/services/notification"
	"vidaview/services/payment"
	"vidaview/services/pricing"
	"vidaview/services/promotion"
	"vidaview/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (*gin.Engine, *repository.Set) {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
		UnitNumber:        "A-101",
		MonthlyRate:       decimal.NewFromInt(5000000),
		DepositAmount:     decimal.NewFromInt(5000000),
		MinimumStayMonths: 3,
	}))

	clock := func() time.Time { return time.Date(2024, 12, 20, 9, 0, 0, 0, time.UTC) }
	logger := zap.NewNop()
	notifier := repoNotifier{repos}
	locker := booking.NewLocalUnitLocker()
	recorder := activity.NewStoreRecorder(repos.Activity)

	promos := promotion.NewDefaultPromotionService(repos.Promotions, clock, logger)
	bookings := &booking.DefaultBookingService{
		Repo:           repos.Bookings,
		Units:          repos.Units,
		Promotions:     promos,
		Calculator:     pricing.NewCalculator(500000, decimal.RequireFromString("0.20")),
		Locker:         locker,
		Notifier:       notifier,
		Activity:       recorder,
		Clock:          clock,
		AutoActivate:   true,
		PaymentDueDays: 3,
		Logger:         logger,
	}
	payments := &payment.DefaultPaymentService{
		Repo:           repos.Bookings,
		Activator:      bookings,
		Locker:         locker,
		Notifier:       notifier,
		Activity:       recorder,
		Clock:          clock,
		AutoActivate:   true,
		PaymentDueDays: 3,
		Logger:         logger,
	}

	bh := &handlers.BookingHandler{
		Bookings: bookings,
		Payments: payments,
		Invoices: &invoice.InvoiceService{Repo: repos.Bookings, Clock: clock},
		Renderer: invoice.JSONRenderer{},
		Activity: recorder,
		Logger:   logger,
	}
	ph := &handlers.PaymentHandler{Payments: payments, Activity: recorder, Logger: logger}
	prh := &handlers.PromotionHandler{Promotions: promos, Clock: clock, Logger: logger}
	nh := &handlers.NotificationHandler{Inbox: notification.NewInbox(repos.Notifications, logger), Logger: logger}

	router := gin.New()
	router.Use(utils.ErrorHandler())
	routes.RegisterRoutes(router, handlers.NewHandlerBundle(bh, ph, prh, nh, nil), logger, 1000)
	return router, repos
}

type repoNotifier struct {
	repos *repository.Set
}

func (n repoNotifier) Notify(ctx context.Context, msg models.Notification) error {
	return n.repos.Notifications.Create(ctx, &msg)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestPreviewPriceEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/bookings/preview", gin.H{
		"unitId": "unit-1", "startDate": "2025-01-01", "endDate": "2025-04-01",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	breakdown := decode[models.ChargeBreakdown](t, w)
	assert.Equal(t, int64(21500000), breakdown.Total)
	assert.Equal(t, 3, breakdown.TotalMonths)
}

func TestErrorResponseShape(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name   string
		body   gin.H
		status int
		kind   string
		field  string
	}{
		{"below minimum stay", gin.H{"unitId": "unit-1", "startDate": "2025-01-01", "endDate": "2025-02-15"}, http.StatusUnprocessableEntity, "below_minimum_stay", ""},
		{"inverted range", gin.H{"unitId": "unit-1", "startDate": "2025-04-01", "endDate": "2025-01-01"}, http.StatusUnprocessableEntity, "invalid_range", ""},
		{"unknown promotion", gin.H{"unitId": "unit-1", "startDate": "2025-01-01", "endDate": "2025-04-01", "promoCode": "NOPE"}, http.StatusNotFound, "promotion_not_found", ""},
		{"bad date", gin.H{"unitId": "unit-1", "startDate": "01/01/2025", "endDate": "2025-04-01"}, http.StatusUnprocessableEntity, "validation_error", "startDate"},
		{"unknown unit", gin.H{"unitId": "unit-9", "startDate": "2025-01-01", "endDate": "2025-04-01"}, http.StatusNotFound, "not_found", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/bookings/preview", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			resp := decode[utils.ErrorResponse](t, w)
			assert.Equal(t, tt.kind, resp.Error)
			assert.Equal(t, tt.field, resp.Field)
		})
	}
}

func TestBookingPaymentFlow(t *testing.T) {
	router, repos := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/bookings", gin.H{
		"unitId": "unit-1", "tenantId": "tenant-1", "startDate": "2025-01-01", "endDate": "2025-04-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Booking](t, w)
	assert.Equal(t, models.BookingPending, created.Status)

	w = doJSON(t, router, http.MethodPost, "/api/bookings/"+created.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.BookingConfirmed, decode[models.Booking](t, w).Status)

	w = doJSON(t, router, http.MethodPost, "/api/bookings/"+created.ID+"/approve", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_transition", decode[utils.ErrorResponse](t, w).Error)

	w = doJSON(t, router, http.MethodGet, "/api/bookings/"+created.ID+"/payments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Payments []models.Payment `json:"payments"`
	}](t, w)
	require.Len(t, list.Payments, 1)
	paymentID := list.Payments[0].ID
	assert.Equal(t, int64(21500000), list.Payments[0].Amount)

	w = doJSON(t, router, http.MethodPost, "/api/payments/"+paymentID+"/confirm", gin.H{
		"method": "bank_transfer", "transactionReference": "TRX-42", "receiptAttached": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.PaymentVerifying, decode[models.Payment](t, w).Status)

	w = doJSON(t, router, http.MethodPost, "/api/payments/"+paymentID+"/verify", gin.H{"notes": "ok"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "approved", decode[utils.ErrorResponse](t, w).Field)

	w = doJSON(t, router, http.MethodPost, "/api/payments/"+paymentID+"/verify", gin.H{"approved": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.PaymentCompleted, decode[models.Payment](t, w).Status)

	w = doJSON(t, router, http.MethodGet, "/api/bookings/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.BookingActive, decode[models.Booking](t, w).Status)

	w = doJSON(t, router, http.MethodGet, "/api/bookings/"+created.ID+"/invoice", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	inv := decode[models.Invoice](t, w)
	assert.Equal(t, int64(21500000), inv.Total)
	assert.True(t, inv.Final)

	w = doJSON(t, router, http.MethodGet, "/api/bookings?tenantId=tenant-1&status=active", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[booking.BookingPage](t, w)
	assert.Equal(t, int64(1), page.Total)

	sent, total, err := repos.Notifications.Query(context.Background(), models.NotificationFilter{UserID: "tenant-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, sent)
	assert.Equal(t, int64(len(sent)), total)
}

func createBooking(t *testing.T, router *gin.Engine) models.Booking {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/bookings", gin.H{
		"unitId": "unit-1", "tenantId": "tenant-1", "startDate": "2025-01-01", "endDate": "2025-04-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Booking](t, w)
}

func TestAdminPaymentEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	b := createBooking(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/payments", gin.H{
		"bookingId": b.ID, "kind": "utility", "amount": 350000, "dueDate": "2025-01-05",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	extra := decode[models.Payment](t, w)
	assert.False(t, extra.IsPrimary)
	assert.Equal(t, int64(350000), extra.Amount)
	assert.Equal(t, "2025-01-05", extra.DueDate.Format(utils.DateLayout))

	w = doJSON(t, router, http.MethodPost, "/api/payments", gin.H{"bookingId": b.ID, "kind": "utility", "amount": 1, "dueDate": "05/01/2025"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "dueDate", decode[utils.ErrorResponse](t, w).Field)

	w = doJSON(t, router, http.MethodPost, "/api/payments", gin.H{"bookingId": "missing", "kind": "utility", "amount": 1})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/payments/"+extra.ID+"/confirm", gin.H{
		"method": "e_wallet", "transactionReference": "EW-7",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/payments?status=verifying", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	verifying := decode[payment.PaymentPage](t, w)
	assert.Equal(t, int64(1), verifying.Total)
	require.Len(t, verifying.Payments, 1)
	assert.Equal(t, extra.ID, verifying.Payments[0].ID)

	w = doJSON(t, router, http.MethodGet, "/api/payments?page=1&perPage=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[payment.PaymentPage](t, w)
	assert.Equal(t, int64(2), all.Total)
	assert.Len(t, all.Payments, 1)
	assert.Equal(t, 1, all.PerPage)

	w = doJSON(t, router, http.MethodGet, "/api/payments?status=lost", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestNotificationInboxEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	b := createBooking(t, router)
	w := doJSON(t, router, http.MethodPost, "/api/bookings/"+b.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/notifications/unread-count?userId=tenant-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(2), decode[struct {
		UnreadCount int64 `json:"unreadCount"`
	}](t, w).UnreadCount)

	w = doJSON(t, router, http.MethodGet, "/api/notifications?userId=tenant-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	inbox := decode[notification.NotificationPage](t, w)
	require.Len(t, inbox.Notifications, 2)
	first := inbox.Notifications[0]

	w = doJSON(t, router, http.MethodPost, "/api/notifications/"+first.ID+"/read?userId=owner-1", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/notifications/"+first.ID+"/read?userId=tenant-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[models.Notification](t, w).Read)

	w = doJSON(t, router, http.MethodGet, "/api/notifications?userId=tenant-1&read=false", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[notification.NotificationPage](t, w).Total)

	w = doJSON(t, router, http.MethodPost, "/api/notifications/mark-all-read?userId=tenant-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[struct {
		Updated int64 `json:"updated"`
	}](t, w).Updated)

	w = doJSON(t, router, http.MethodDelete, "/api/notifications/"+first.ID+"?userId=tenant-1", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/notifications?userId=tenant-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[notification.NotificationPage](t, w).Total)

	w = doJSON(t, router, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "userId", decode[utils.ErrorResponse](t, w).Field)
}

func TestActivityEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	b := createBooking(t, router)
	w := doJSON(t, router, http.MethodPost, "/api/bookings/"+b.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/bookings/"+b.ID+"/activity", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	trail := decode[struct {
		Activity []models.ActivityLog `json:"activity"`
	}](t, w)
	require.Len(t, trail.Activity, 2)
	actions := []string{trail.Activity[0].Action, trail.Activity[1].Action}
	assert.ElementsMatch(t, []string{activity.ActionCreate, activity.ActionApprove}, actions)

	w = doJSON(t, router, http.MethodGet, "/api/bookings/"+b.ID+"/payments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Payments []models.Payment `json:"payments"`
	}](t, w)
	w = doJSON(t, router, http.MethodGet, "/api/payments/"+list.Payments[0].ID+"/activity", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/bookings/missing/activity", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRejectRequiresReason(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/bookings", gin.H{
		"unitId": "unit-1", "tenantId": "tenant-1", "startDate": "2025-01-01", "endDate": "2025-04-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[models.Booking](t, w).ID

	w = doJSON(t, router, http.MethodPost, "/api/bookings/"+id+"/reject", gin.H{"reason": "  "})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "validation_error", decode[utils.ErrorResponse](t, w).Error)

	w = doJSON(t, router, http.MethodPost, "/api/bookings/"+id+"/reject", gin.H{"reason": "unit under renovation"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.BookingRejected, decode[models.Booking](t, w).Status)
}

func TestPromotionEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/promotions", gin.H{
		"code":  "hemat10", "title": "Ten percent off", "kind": string(models.PromotionPercent),
		"value": "10", "activeFrom": "2024-12-01", "activeUntil": "2024-12-31", "enabled": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	promo := decode[models.Promotion](t, w)
	assert.Equal(t, "HEMAT10", promo.Code)

	w = doJSON(t, router, http.MethodGet, "/api/promotions/validate/HEMAT10", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	descriptor := decode[models.DiscountDescriptor](t, w)
	assert.True(t, decimal.NewFromInt(10).Equal(descriptor.Value))

	w = doJSON(t, router, http.MethodGet, "/api/promotions/validate/HEMAT10?date=2025-01-05", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "promotion_inactive", decode[utils.ErrorResponse](t, w).Error)

	w = doJSON(t, router, http.MethodDelete, "/api/promotions/"+promo.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/promotions/validate/HEMAT10", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthWithoutMonitor(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
