// internal/handlers/subscription/subscription_handler.go
package subscription

import (
	"net/http"

	"lumen-service/internal/domain/subscription"
	"lumen-service/internal/middleware"
	"lumen-service/internal/pkg/response"
	service "lumen-service/internal/service/subscription"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptionService *service.Service
}

func NewSubscriptionHandler(subscriptionService *service.Service) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// ========== User Endpoints ==========

// Current returns the subscription representing live service.
func (h *SubscriptionHandler) Current(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	view, err := h.subscriptionService.GetCurrent(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, "no current subscription", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription retrieved", view)
}

// History returns all subscription rows for the user, newest first.
func (h *SubscriptionHandler) History(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	views, err := h.subscriptionService.History(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, "failed to load history", err)
		return
	}

	response.Success(c, http.StatusOK, "history retrieved", views)
}

// Subscribe creates a new active subscription.
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req subscription.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid subscribe request", err)
		return
	}

	result, err := h.subscriptionService.Subscribe(c.Request.Context(), userID, &req)
	if err != nil {
		response.FromError(c, "subscribe failed", err)
		return
	}

	response.Success(c, http.StatusCreated, "subscription created", result)
}

// Upgrade switches to a new plan immediately.
func (h *SubscriptionHandler) Upgrade(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req subscription.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid upgrade request", err)
		return
	}

	result, err := h.subscriptionService.Upgrade(c.Request.Context(), userID, req.PlanID)
	if err != nil {
		response.FromError(c, "upgrade failed", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription upgraded", result)
}

// Downgrade schedules a plan change for the end of the paid period.
func (h *SubscriptionHandler) Downgrade(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req subscription.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid downgrade request", err)
		return
	}

	result, err := h.subscriptionService.Downgrade(c.Request.Context(), userID, req.PlanID)
	if err != nil {
		response.FromError(c, "downgrade failed", err)
		return
	}

	response.Success(c, http.StatusOK, "downgrade scheduled", result)
}

// Cancel ends the subscription at the close of the paid period.
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	result, err := h.subscriptionService.Cancel(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, "cancel failed", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription cancelled", result)
}

// ========== Admin Endpoints ==========

// AdminUpdate forces a user onto a plan.
func (h *SubscriptionHandler) AdminUpdate(c *gin.Context) {
	var req subscription.AdminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid admin update request", err)
		return
	}

	result, err := h.subscriptionService.AdminUpdate(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "admin update failed", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription updated", result)
}

// AdminCancel ends a user's service immediately.
func (h *SubscriptionHandler) AdminCancel(c *gin.Context) {
	var req subscription.AdminCancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid admin cancel request", err)
		return
	}

	result, err := h.subscriptionService.AdminCancel(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "admin cancel failed", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription cancelled", result)
}

// AdminList returns subscriptions across users with filters.
func (h *SubscriptionHandler) AdminList(c *gin.Context) {
	var filters subscription.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	result, err := h.subscriptionService.ListAll(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list subscriptions", err)
		return
	}

	response.Success(c, http.StatusOK, "subscriptions retrieved", result)
}
