// internal/handlers/offer/offer_handler.go
package offer

import (
	"net/http"
	"strconv"

	"lumen-service/internal/domain/offer"
	"lumen-service/internal/pkg/response"
	service "lumen-service/internal/service/offer"

	"github.com/gin-gonic/gin"
)

type OfferHandler struct {
	offerService *service.Service
}

func NewOfferHandler(offerService *service.Service) *OfferHandler {
	return &OfferHandler{offerService: offerService}
}

// ListActive returns currently valid offers.
func (h *OfferHandler) ListActive(c *gin.Context) {
	offers, err := h.offerService.ListActive(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to list offers", err)
		return
	}

	response.Success(c, http.StatusOK, "offers retrieved", offers)
}

// Get returns a single offer.
func (h *OfferHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.ValidationError(c, "invalid offer id", err)
		return
	}

	o, err := h.offerService.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "offer not found", err)
		return
	}

	response.Success(c, http.StatusOK, "offer retrieved", o)
}

// Apply redeems the offer against a plan and returns the discounted price.
func (h *OfferHandler) Apply(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.ValidationError(c, "invalid offer id", err)
		return
	}

	var req offer.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid apply request", err)
		return
	}

	result, err := h.offerService.Apply(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, "offer cannot be applied", err)
		return
	}

	response.Success(c, http.StatusOK, "offer applied", result)
}

// ========== Admin Endpoints ==========

func (h *OfferHandler) Create(c *gin.Context) {
	var req offer.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid offer", err)
		return
	}

	o, err := h.offerService.Create(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to create offer", err)
		return
	}

	response.Success(c, http.StatusCreated, "offer created", o)
}

func (h *OfferHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.ValidationError(c, "invalid offer id", err)
		return
	}

	var req offer.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid offer update", err)
		return
	}

	o, err := h.offerService.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, "failed to update offer", err)
		return
	}

	response.Success(c, http.StatusOK, "offer updated", o)
}

func (h *OfferHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.ValidationError(c, "invalid offer id", err)
		return
	}

	if err := h.offerService.Delete(c.Request.Context(), id); err != nil {
		response.FromError(c, "failed to delete offer", err)
		return
	}

	response.Success(c, http.StatusOK, "offer deleted", nil)
}

// ListAll returns every offer including inactive and expired ones.
func (h *OfferHandler) ListAll(c *gin.Context) {
	offers, err := h.offerService.ListAll(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to list offers", err)
		return
	}

	response.Success(c, http.StatusOK, "offers retrieved", offers)
}

func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
