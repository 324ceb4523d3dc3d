// internal/handlers/notification/notification_handler.go
package notification

import (
	"net/http"
	"strconv"

	"lumen-service/internal/domain/notification"
	"lumen-service/internal/middleware"
	"lumen-service/internal/pkg/response"
	service "lumen-service/internal/service/notification"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService *service.Service
}

func NewNotificationHandler(notificationService *service.Service) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List returns the user's notifications, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var filters notification.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	result, err := h.notificationService.List(c.Request.Context(), userID, filters)
	if err != nil {
		response.FromError(c, "failed to list notifications", err)
		return
	}

	response.Success(c, http.StatusOK, "notifications retrieved", result)
}

// MarkRead marks one notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid notification id", err)
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), userID, id); err != nil {
		response.FromError(c, "failed to mark notification read", err)
		return
	}

	response.Success(c, http.StatusOK, "notification marked read", nil)
}

// UnreadCount returns the number of unread notifications.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	count, err := h.notificationService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, "failed to count notifications", err)
		return
	}

	response.Success(c, http.StatusOK, "unread count retrieved", gin.H{"unread": count})
}
