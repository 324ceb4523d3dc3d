// internal/handlers/usage/usage_handler.go
package usage

import (
	"net/http"
	"strconv"

	"lumen-service/internal/domain/usage"
	"lumen-service/internal/middleware"
	"lumen-service/internal/pkg/response"
	service "lumen-service/internal/service/usage"

	"github.com/gin-gonic/gin"
)

type UsageHandler struct {
	usageService *service.Service
}

func NewUsageHandler(usageService *service.Service) *UsageHandler {
	return &UsageHandler{usageService: usageService}
}

// Report upserts the daily usage sample.
func (h *UsageHandler) Report(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req usage.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid usage report", err)
		return
	}

	rec, err := h.usageService.Report(c.Request.Context(), userID, &req)
	if err != nil {
		response.FromError(c, "failed to record usage", err)
		return
	}

	response.Success(c, http.StatusOK, "usage recorded", rec)
}

// List returns recent usage records.
func (h *UsageHandler) List(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	records, err := h.usageService.List(c.Request.Context(), userID, days)
	if err != nil {
		response.FromError(c, "failed to list usage", err)
		return
	}

	response.Success(c, http.StatusOK, "usage retrieved", records)
}

// Summary returns aggregated usage over the requested window.
func (h *UsageHandler) Summary(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	summary, err := h.usageService.Summary(c.Request.Context(), userID, days)
	if err != nil {
		response.FromError(c, "failed to compute usage summary", err)
		return
	}

	response.Success(c, http.StatusOK, "usage summary retrieved", summary)
}
