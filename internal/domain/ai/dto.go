// internal/domain/ai/dto.go
package ai

// Recommendation is the provider's (or the fallback's) plan suggestion.
// Degraded marks fallback responses so callers can tell static data from a
// real provider answer.
type Recommendation struct {
	RecommendedPlan string   `json:"recommended_plan"`
	Reasons         []string `json:"reasons"`
	Confidence      float64  `json:"confidence"`
	EstimatedSaving float64  `json:"estimated_saving,omitempty"`

	Degraded       bool   `json:"degraded"`
	DegradedReason string `json:"degraded_reason,omitempty"`
}

type ChurnPrediction struct {
	Risk    float64  `json:"risk"`
	Level   string   `json:"level"`
	Factors []string `json:"factors"`

	Degraded       bool   `json:"degraded"`
	DegradedReason string `json:"degraded_reason,omitempty"`
}

type NotificationCopy struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`

	Degraded       bool   `json:"degraded"`
	DegradedReason string `json:"degraded_reason,omitempty"`
}

type NotificationRequest struct {
	Event string `json:"event" binding:"required,oneof=subscribed upgraded downgraded cancelled payment_due"`
}

type BatchRequest struct {
	UserIDs []int64 `json:"user_ids" binding:"required,min=1,max=100"`
}

type BatchResult struct {
	UserID         int64           `json:"user_id"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
	Error          string          `json:"error,omitempty"`
}
