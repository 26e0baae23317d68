package handlers

import (
	"net/http"

	"vidaview/models"
	"vidaview/services/notification"
	"vidaview/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NotificationHandler serves a recipient's in-app notifications. The
// recipient is named by the userId query parameter.
type NotificationHandler struct {
	Inbox  *notification.Inbox
	Logger *zap.Logger
}

func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	filter := models.NotificationFilter{
		UserID:  c.Query("userId"),
		Page:    queryInt(c, "page", 1),
		PerPage: queryInt(c, "perPage", 20),
	}
	switch c.Query("read") {
	case "true":
		read := true
		filter.Read = &read
	case "false":
		unread := false
		filter.Read = &unread
	}
	page, err := h.Inbox.List(c.Request.Context(), filter)
	if err != nil {
		utils.JSONError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.Inbox.UnreadCount(c.Request.Context(), c.Query("userId"))
	if err != nil {
		utils.JSONError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unreadCount": count})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	n, err := h.Inbox.MarkRead(c.Request.Context(), c.Query("userId"), c.Param("id"))
	if err != nil {
		utils.JSONError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	changed, err := h.Inbox.MarkAllRead(c.Request.Context(), c.Query("userId"))
	if err != nil {
		utils.JSONError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": changed})
}

func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	if err := h.Inbox.Delete(c.Request.Context(), c.Query("userId"), c.Param("id")); err != nil {
		utils.JSONError(c, getLogger(c, h.Logger), err)
		return
	}
	c.Status(http.StatusNoContent)
}
