package handlers

import (
	"net/http"

	"vidaview/utils"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Booking endpoints
	PreviewPrice    gin.HandlerFunc
	CreateBooking   gin.HandlerFunc
	ListBookings    gin.HandlerFunc
	GetBooking      gin.HandlerFunc
	ApproveBooking  gin.HandlerFunc
	RejectBooking   gin.HandlerFunc
	CancelBooking   gin.HandlerFunc
	ActivateBooking gin.HandlerFunc
	CompleteBooking gin.HandlerFunc
	ListPayments    gin.HandlerFunc
	RetryPayment    gin.HandlerFunc
	GetInvoice      gin.HandlerFunc
	BookingActivity gin.HandlerFunc

	// Payment endpoints
	CreatePayment   gin.HandlerFunc
	SearchPayments  gin.HandlerFunc
	GetPayment      gin.HandlerFunc
	ConfirmPayment  gin.HandlerFunc
	VerifyPayment   gin.HandlerFunc
	AbandonPayment  gin.HandlerFunc
	PaymentActivity gin.HandlerFunc

	// Notification endpoints
	ListNotifications  gin.HandlerFunc
	UnreadCount        gin.HandlerFunc
	MarkRead           gin.HandlerFunc
	MarkAllRead        gin.HandlerFunc
	DeleteNotification gin.HandlerFunc

	// Promotion endpoints
	ListPromotions    gin.HandlerFunc
	CreatePromotion   gin.HandlerFunc
	GetPromotion      gin.HandlerFunc
	UpdatePromotion   gin.HandlerFunc
	DeletePromotion   gin.HandlerFunc
	ValidatePromotion gin.HandlerFunc

	Health gin.HandlerFunc
}

func NewHandlerBundle(bh *BookingHandler, ph *PaymentHandler, prh *PromotionHandler, nh *NotificationHandler, health *utils.HealthMonitor) *HandlerBundle {
	return &HandlerBundle{
		PreviewPrice:    bh.PreviewPrice,
		CreateBooking:   bh.CreateBooking,
		ListBookings:    bh.ListBookings,
		GetBooking:      bh.GetBooking,
		ApproveBooking:  bh.ApproveBooking(),
		RejectBooking:   bh.RejectBooking(),
		CancelBooking:   bh.CancelBooking(),
		ActivateBooking: bh.ActivateBooking(),
		CompleteBooking: bh.CompleteBooking(),
		ListPayments:    bh.ListPayments,
		RetryPayment:    bh.RetryPayment,
		GetInvoice:      bh.GetInvoice,
		BookingActivity: bh.GetActivity,

		CreatePayment:   ph.CreatePayment,
		SearchPayments:  ph.SearchPayments,
		GetPayment:      ph.GetPayment,
		ConfirmPayment:  ph.ConfirmPayment,
		VerifyPayment:   ph.VerifyPayment,
		AbandonPayment:  ph.AbandonPayment,
		PaymentActivity: ph.GetActivity,

		ListNotifications:  nh.ListNotifications,
		UnreadCount:        nh.UnreadCount,
		MarkRead:           nh.MarkRead,
		MarkAllRead:        nh.MarkAllRead,
		DeleteNotification: nh.DeleteNotification,

		ListPromotions:    prh.ListPromotions,
		CreatePromotion:   prh.CreatePromotion,
		GetPromotion:      prh.GetPromotion,
		UpdatePromotion:   prh.UpdatePromotion,
		DeletePromotion:   prh.DeletePromotion,
		ValidatePromotion: prh.ValidatePromotion,

		Health: healthHandler(health),
	}
}

func healthHandler(monitor *utils.HealthMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if monitor == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		status := monitor.Status()
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	}
}
