package routes

import (
	"time"

	"vidaview/handlers"
	"vidaview/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterBookingRoutes registers booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.POST("/preview", hb.PreviewPrice)
		api.POST("", hb.CreateBooking)
		api.GET("", hb.ListBookings)
		api.GET("/:id", hb.GetBooking)
		api.POST("/:id/approve", hb.ApproveBooking)
		api.POST("/:id/reject", hb.RejectBooking)
		api.POST("/:id/cancel", hb.CancelBooking)
		api.POST("/:id/activate", hb.ActivateBooking)
		api.POST("/:id/complete", hb.CompleteBooking)
		api.GET("/:id/payments", hb.ListPayments)
		api.POST("/:id/payments/retry", hb.RetryPayment)
		api.GET("/:id/invoice", hb.GetInvoice)
		api.GET("/:id/activity", hb.BookingActivity)
	}
}

// RegisterPaymentRoutes registers payment creation, confirmation and verification endpoints.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.POST("", hb.CreatePayment)
		api.GET("", hb.SearchPayments)
		api.GET("/:id", hb.GetPayment)
		api.POST("/:id/confirm", hb.ConfirmPayment)
		api.POST("/:id/verify", hb.VerifyPayment)
		api.POST("/:id/abandon", hb.AbandonPayment)
		api.GET("/:id/activity", hb.PaymentActivity)
	}
}

// RegisterNotificationRoutes registers the in-app notification inbox.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications")
	{
		api.GET("", hb.ListNotifications)
		api.GET("/unread-count", hb.UnreadCount)
		api.POST("/mark-all-read", hb.MarkAllRead)
		api.POST("/:id/read", hb.MarkRead)
		api.DELETE("/:id", hb.DeleteNotification)
	}
}

// RegisterPromotionRoutes registers promotion management endpoints.
func RegisterPromotionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/promotions")
	{
		api.GET("", hb.ListPromotions)
		api.POST("", hb.CreatePromotion)
		api.GET("/validate/:code", hb.ValidatePromotion)
		api.GET("/:id", hb.GetPromotion)
		api.PUT("/:id", hb.UpdatePromotion)
		api.DELETE("/:id", hb.DeletePromotion)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, logger *zap.Logger, maxRequestsPerMin int) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.RateLimitMiddleware(maxRequestsPerMin, logger))

	RegisterHealthRoute(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterPromotionRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
}
