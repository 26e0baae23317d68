package handlers

import (
	"net/http"
	"time"

	"vidaview/services/promotion"
	"vidaview/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PromotionHandler struct {
	Promotions promotion.PromotionService
	Clock      utils.Clock
	Logger     *zap.Logger
}

func (h *PromotionHandler) ListPromotions(c *gin.Context) {
	promos, err := h.Promotions.ListPromotions(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		utils.JSONError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"promotions": promos})
}

func (h *PromotionHandler) GetPromotion(c *gin.Context) {
	promo, err := h.Promotions.GetPromotion(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, promo)
}

func (h *PromotionHandler) CreatePromotion(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	var req promotion.PromotionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, logger, bindError(err))
		return
	}
	promo, err := h.Promotions.CreatePromotion(c.Request.Context(), req)
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, promo)
}

func (h *PromotionHandler) UpdatePromotion(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	var req promotion.PromotionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, logger, bindError(err))
		return
	}
	promo, err := h.Promotions.UpdatePromotion(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, promo)
}

func (h *PromotionHandler) DeletePromotion(c *gin.Context) {
	if err := h.Promotions.DeletePromotion(c.Request.Context(), c.Param("id")); err != nil {
		utils.JSONError(c, getLogger(c, h.Logger), err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ValidatePromotion checks a code against ?date=YYYY-MM-DD, defaulting to today.
func (h *PromotionHandler) ValidatePromotion(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	var on time.Time
	if raw := c.Query("date"); raw != "" {
		d, err := parseDateField("date", raw)
		if err != nil {
			utils.JSONError(c, logger, err)
			return
		}
		on = d
	} else {
		on = utils.Date(h.Clock())
	}
	descriptor, err := h.Promotions.Validate(c.Request.Context(), c.Param("code"), on)
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, descriptor)
}
