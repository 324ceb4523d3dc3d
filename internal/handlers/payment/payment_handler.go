// internal/handlers/payment/payment_handler.go
package payment

import (
	"net/http"
	"strconv"

	"lumen-service/internal/domain/payment"
	"lumen-service/internal/middleware"
	"lumen-service/internal/pkg/response"
	service "lumen-service/internal/service/payment"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService *service.Service
}

func NewPaymentHandler(paymentService *service.Service) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// List returns the user's billing history, newest first.
func (h *PaymentHandler) List(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var filters payment.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	result, err := h.paymentService.List(c.Request.Context(), userID, &filters)
	if err != nil {
		response.FromError(c, "failed to list payments", err)
		return
	}

	response.Success(c, http.StatusOK, "payments retrieved", result)
}

// Get returns a single ledger entry owned by the user.
func (h *PaymentHandler) Get(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid payment id", err)
		return
	}

	p, err := h.paymentService.Get(c.Request.Context(), userID, id, middleware.IsAdmin(c))
	if err != nil {
		response.FromError(c, "payment not found", err)
		return
	}

	response.Success(c, http.StatusOK, "payment retrieved", p)
}

// RevenueSummary returns ledger aggregates for the admin dashboard.
func (h *PaymentHandler) RevenueSummary(c *gin.Context) {
	summary, err := h.paymentService.RevenueSummary(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to compute revenue summary", err)
		return
	}

	response.Success(c, http.StatusOK, "revenue summary retrieved", summary)
}
