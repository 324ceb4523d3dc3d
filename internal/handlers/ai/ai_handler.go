// internal/handlers/ai/ai_handler.go
package ai

import (
	"net/http"

	"lumen-service/internal/domain/ai"
	"lumen-service/internal/middleware"
	"lumen-service/internal/pkg/response"
	service "lumen-service/internal/service/ai"

	"github.com/gin-gonic/gin"
)

type AIHandler struct {
	aiService *service.Service
}

func NewAIHandler(aiService *service.Service) *AIHandler {
	return &AIHandler{aiService: aiService}
}

// Recommendations returns a plan suggestion for the authenticated user.
func (h *AIHandler) Recommendations(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	rec, err := h.aiService.Recommend(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, "failed to generate recommendation", err)
		return
	}

	response.Success(c, http.StatusOK, "recommendation generated", rec)
}

// ChurnPrediction returns a churn-risk estimate for the authenticated user.
func (h *AIHandler) ChurnPrediction(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	pred, err := h.aiService.Churn(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, "failed to predict churn", err)
		return
	}

	response.Success(c, http.StatusOK, "churn prediction generated", pred)
}

// Notifications generates notification copy for a lifecycle event.
func (h *AIHandler) Notifications(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req ai.NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid notification request", err)
		return
	}

	copyText, err := h.aiService.NotificationCopy(c.Request.Context(), userID, req.Event)
	if err != nil {
		response.FromError(c, "failed to generate notification copy", err)
		return
	}

	response.Success(c, http.StatusOK, "notification copy generated", copyText)
}

// Batch generates recommendations for a list of users. Admin only.
func (h *AIHandler) Batch(c *gin.Context) {
	var req ai.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid batch request", err)
		return
	}

	results := h.aiService.Batch(c.Request.Context(), req.UserIDs)
	response.Success(c, http.StatusOK, "batch recommendations generated", results)
}
