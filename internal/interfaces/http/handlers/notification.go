// internal/interfaces/http/handlers/notification.go
package handlers

import (
	"net/http"

	"github.com/Lizasatasiya/Zelie-web/internal/domain/notification"
	"github.com/Lizasatasiya/Zelie-web/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// NotificationHandler exposes the session's popup slot
type NotificationHandler struct {
	notifications *notification.Service
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications *notification.Service) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// GetCurrent handles GET /notifications/current. data is null when nothing
// is showing.
func (h *NotificationHandler) GetCurrent(c *gin.Context) {
	msg, err := h.notifications.Current(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve notification",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Notification retrieved successfully",
		"data":    msg,
	})
}

// Dismiss handles DELETE /notifications/current
func (h *NotificationHandler) Dismiss(c *gin.Context) {
	if err := h.notifications.Dismiss(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to dismiss notification",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Notification dismissed",
	})
}
