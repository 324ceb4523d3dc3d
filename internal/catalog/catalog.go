// internal/catalog/catalog.go
package catalog

import (
	xerrors "lumen-service/internal/pkg/errors"
)

type PlanType string

const (
	PlanTypeFiber    PlanType = "fiber"
	PlanTypeCopper   PlanType = "copper"
	PlanTypeBusiness PlanType = "business"
)

// Plan is an immutable broadband plan definition. Plans are compiled-in:
// price changes are code changes, and every handler reads the same catalog
// instance instead of carrying its own literal list.
type Plan struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Type          PlanType `json:"type"`
	Price         float64  `json:"price"`
	DownloadSpeed int      `json:"download_speed"`
	UploadSpeed   int      `json:"upload_speed"`
	Features      []string `json:"features"`
}

// Catalog is the single lookup service for plan definitions.
type Catalog struct {
	plans []Plan
	byID  map[string]int
}

// Default returns the production plan catalog.
func Default() *Catalog {
	return New([]Plan{
		{
			ID:            "basic-copper",
			Name:          "Basic Copper",
			Type:          PlanTypeCopper,
			Price:         24.99,
			DownloadSpeed: 50,
			UploadSpeed:   10,
			Features:      []string{"Unlimited data", "Standard support"},
		},
		{
			ID:            "basic-fiber",
			Name:          "Basic Fiber",
			Type:          PlanTypeFiber,
			Price:         39.99,
			DownloadSpeed: 300,
			UploadSpeed:   150,
			Features:      []string{"Unlimited data", "WiFi router included", "Standard support"},
		},
		{
			ID:            "premium-fiber",
			Name:          "Premium Fiber",
			Type:          PlanTypeFiber,
			Price:         59.99,
			DownloadSpeed: 1000,
			UploadSpeed:   500,
			Features:      []string{"Unlimited data", "WiFi 6 router included", "Priority support", "Static IP"},
		},
		{
			ID:            "business-fiber",
			Name:          "Business Fiber",
			Type:          PlanTypeBusiness,
			Price:         99.99,
			DownloadSpeed: 2000,
			UploadSpeed:   1000,
			Features:      []string{"Unlimited data", "SLA 99.9%", "Dedicated support", "Static IP block", "Managed router"},
		},
	})
}

func New(plans []Plan) *Catalog {
	c := &Catalog{
		plans: make([]Plan, len(plans)),
		byID:  make(map[string]int, len(plans)),
	}
	copy(c.plans, plans)
	for i, p := range c.plans {
		c.byID[p.ID] = i
	}
	return c
}

// FindByID looks up a plan; returns ErrInvalidPlan when the id is unknown.
func (c *Catalog) FindByID(id string) (*Plan, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, xerrors.ErrInvalidPlan
	}
	plan := clonePlan(c.plans[i])
	return &plan, nil
}

// List returns a defensive copy of the catalog, so repeated reads are
// identical and callers cannot mutate shared state.
func (c *Catalog) List() []Plan {
	out := make([]Plan, len(c.plans))
	for i, p := range c.plans {
		out[i] = clonePlan(p)
	}
	return out
}

func clonePlan(p Plan) Plan {
	features := make([]string, len(p.Features))
	copy(features, p.Features)
	p.Features = features
	return p
}
