// internal/handlers/plan/plan_handler.go
package plan

import (
	"net/http"

	"lumen-service/internal/catalog"
	"lumen-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	plans *catalog.Catalog
}

func NewPlanHandler(plans *catalog.Catalog) *PlanHandler {
	return &PlanHandler{plans: plans}
}

// List returns the full plan catalog. Repeated calls return identical data.
func (h *PlanHandler) List(c *gin.Context) {
	response.Success(c, http.StatusOK, "plans retrieved", h.plans.List())
}

// Get returns a single plan by id.
func (h *PlanHandler) Get(c *gin.Context) {
	p, err := h.plans.FindByID(c.Param("id"))
	if err != nil {
		response.FromError(c, "plan not found", err)
		return
	}

	response.Success(c, http.StatusOK, "plan retrieved", p)
}
