package handlers

import (
	"net/http"
	"strings"
	"time"

	"vidaview/models"
	"vidaview/services/activity"
	"vidaview/services/payment"
	"vidaview/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	Payments payment.PaymentService
	Activity *activity.StoreRecorder
	Logger   *zap.Logger
}

type createPaymentRequest struct {
	BookingID string             `json:"bookingId"`
	Kind      models.PaymentKind `json:"kind"`
	Amount    int64              `json:"amount"`
	DueDate   string             `json:"dueDate"`
}

type verifyRequest struct {
	Approved *bool  `json:"approved"`
	Notes    string `json:"notes"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

// CreatePayment raises an extra charge against a booking.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, logger, bindError(err))
		return
	}
	var due time.Time
	if strings.TrimSpace(req.DueDate) != "" {
		d, err := parseDateField("dueDate", req.DueDate)
		if err != nil {
			utils.JSONError(c, logger, err)
			return
		}
		due = d
	}
	p, err := h.Payments.CreatePayment(c.Request.Context(), payment.CreatePaymentInput{
		BookingID: req.BookingID,
		Kind:      req.Kind,
		Amount:    req.Amount,
		DueDate:   due,
	})
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PaymentHandler) SearchPayments(c *gin.Context) {
	filter := models.PaymentFilter{
		BookingID: c.Query("bookingId"),
		Page:      queryInt(c, "page", 1),
		PerPage:   queryInt(c, "perPage", 10),
	}
	if status := c.Query("status"); status != "" {
		for _, s := range strings.Split(status, ",") {
			filter.Statuses = append(filter.Statuses, models.PaymentStatus(strings.TrimSpace(s)))
		}
	}
	page, err := h.Payments.SearchPayments(c.Request.Context(), filter)
	if err != nil {
		utils.JSONError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	p, err := h.Payments.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	var req payment.ConfirmInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, logger, bindError(err))
		return
	}
	p, err := h.Payments.ConfirmPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, logger, bindError(err))
		return
	}
	if req.Approved == nil {
		utils.JSONError(c, logger, utils.NewValidationError("approved", "approved is required"))
		return
	}
	p, err := h.Payments.VerifyPayment(c.Request.Context(), c.Param("id"), *req.Approved, req.Notes)
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PaymentHandler) AbandonPayment(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	var req notesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.JSONError(c, logger, bindError(err))
			return
		}
	}
	p, err := h.Payments.AbandonPayment(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PaymentHandler) GetActivity(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	p, err := h.Payments.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}
	entries, err := h.Activity.History(c.Request.Context(), models.ActivityPayment, p.ID)
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": entries})
}
