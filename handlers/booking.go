package handlers

import (
	"net/http"
	"strings"

	"vidaview/models"
	"vidaview/services/activity"
	"vidaview/services/booking"
	"vidaview/services/invoice"
	"vidaview/services/payment"
	"vidaview/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	Bookings booking.BookingService
	Payments payment.PaymentService
	Invoices *invoice.InvoiceService
	Renderer invoice.Renderer
	Activity *activity.StoreRecorder
	Logger   *zap.Logger
}

type priceRequest struct {
	UnitID    string `json:"unitId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	PromoCode string `json:"promoCode"`
}

type createBookingRequest struct {
	UnitID    string `json:"unitId"`
	TenantID  string `json:"tenantId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	PromoCode string `json:"promoCode"`
	Notes     string `json:"notes"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// PreviewPrice prices a prospective stay without creating anything.
func (h *BookingHandler) PreviewPrice(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, logger, bindError(err))
		return
	}
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}
	breakdown, err := h.Bookings.PreviewPrice(c.Request.Context(), booking.PreviewInput{
		UnitID:    req.UnitID,
		StartDate: start,
		EndDate:   end,
		PromoCode: req.PromoCode,
	})
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, logger, bindError(err))
		return
	}
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}
	b, err := h.Bookings.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		UnitID:    req.UnitID,
		TenantID:  req.TenantID,
		StartDate: start,
		EndDate:   end,
		PromoCode: req.PromoCode,
		Notes:     req.Notes,
	})
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) ListBookings(c *gin.Context) {
	filter := models.BookingFilter{
		TenantID: c.Query("tenantId"),
		UnitID:   c.Query("unitId"),
		Page:     queryInt(c, "page", 1),
		PerPage:  queryInt(c, "perPage", 10),
	}
	if status := c.Query("status"); status != "" {
		for _, s := range strings.Split(status, ",") {
			filter.Statuses = append(filter.Statuses, models.BookingStatus(strings.TrimSpace(s)))
		}
	}
	page, err := h.Bookings.ListBookings(c.Request.Context(), filter)
	if err != nil {
		utils.JSONError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.Bookings.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// transition adapts a single-id booking operation to a handler.
func (h *BookingHandler) transition(op func(*gin.Context, string) (*models.Booking, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := op(c, c.Param("id"))
		if err != nil {
			utils.JSONError(c, getLogger(c, h.Logger), err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

func (h *BookingHandler) ApproveBooking() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, id string) (*models.Booking, error) {
		return h.Bookings.ApproveBooking(c.Request.Context(), id)
	})
}

func (h *BookingHandler) RejectBooking() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, id string) (*models.Booking, error) {
		var req rejectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, bindError(err)
		}
		return h.Bookings.RejectBooking(c.Request.Context(), id, req.Reason)
	})
}

func (h *BookingHandler) CancelBooking() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, id string) (*models.Booking, error) {
		return h.Bookings.CancelBooking(c.Request.Context(), id)
	})
}

func (h *BookingHandler) ActivateBooking() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, id string) (*models.Booking, error) {
		return h.Bookings.ActivateBooking(c.Request.Context(), id)
	})
}

func (h *BookingHandler) CompleteBooking() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, id string) (*models.Booking, error) {
		return h.Bookings.CompleteBooking(c.Request.Context(), id)
	})
}

func (h *BookingHandler) ListPayments(c *gin.Context) {
	payments, err := h.Payments.ListPayments(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

func (h *BookingHandler) RetryPayment(c *gin.Context) {
	p, err := h.Payments.RetryPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *BookingHandler) GetInvoice(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	inv, err := h.Invoices.ForBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}
	body, err := h.Renderer.Render(inv)
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}
	c.Data(http.StatusOK, h.Renderer.ContentType(), body)
}

// GetActivity returns the booking's activity trail, oldest first.
func (h *BookingHandler) GetActivity(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	b, err := h.Bookings.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}
	entries, err := h.Activity.History(c.Request.Context(), models.ActivityBooking, b.ID)
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": entries})
}
