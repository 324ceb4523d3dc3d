// internal/service/ai/fallback.go
package ai

import (
	"fmt"

	"lumen-service/internal/domain/ai"
	"lumen-service/internal/domain/user"
)

// Static fallback rules used whenever the provider is unreachable or its
// output fails extraction. Deterministic thresholds over the denormalized
// usage summary; every result is marked Degraded.

func fallbackRecommendation(u *user.User, reason string) *ai.Recommendation {
	usage := u.UsageData

	planID := "basic-copper"
	reasons := []string{"Light usage fits the entry plan"}

	switch {
	case usage.AverageDownload > 600 || usage.DeviceCount > 10:
		planID = "business-fiber"
		reasons = []string{"Sustained heavy downloads", "Large number of connected devices"}
	case usage.AverageDownload > 200 || usage.PeakUsage > 500 || usage.DeviceCount > 5:
		planID = "premium-fiber"
		reasons = []string{"High average download usage", "Peak usage exceeds mid-tier headroom"}
	case usage.AverageDownload > 40 || usage.DeviceCount > 2:
		planID = "basic-fiber"
		reasons = []string{"Moderate usage outgrows copper speeds"}
	}

	return &ai.Recommendation{
		RecommendedPlan: planID,
		Reasons:         reasons,
		Confidence:      0.5,
		Degraded:        true,
		DegradedReason:  reason,
	}
}

func fallbackChurn(u *user.User, reason string) *ai.ChurnPrediction {
	risk := 0.2
	factors := []string{"Stable usage pattern"}

	if u.SubscriptionStatus == user.SubscriptionStatusInactive {
		risk = 0.8
		factors = []string{"No active subscription"}
	} else if u.UsageData.AverageDownload < 5 && u.UsageData.DeviceCount <= 1 {
		risk = 0.6
		factors = []string{"Very low usage on a paid plan"}
	}

	return &ai.ChurnPrediction{
		Risk:           risk,
		Level:          churnLevel(risk),
		Factors:        factors,
		Degraded:       true,
		DegradedReason: reason,
	}
}

func fallbackNotification(u *user.User, event, reason string) *ai.NotificationCopy {
	copies := map[string][2]string{
		"subscribed":  {"Welcome aboard", "Your new broadband plan is active. Enjoy your connection, %s."},
		"upgraded":    {"Plan upgraded", "Your upgraded plan is live, %s. Faster speeds start now."},
		"downgraded":  {"Plan change scheduled", "Your plan change is scheduled, %s. It takes effect at the end of the current billing period."},
		"cancelled":   {"Sorry to see you go", "Your subscription has been cancelled, %s. Service continues until the end of the paid period."},
		"payment_due": {"Payment reminder", "Your next payment is due soon, %s."},
	}

	c, ok := copies[event]
	if !ok {
		c = [2]string{"Account update", "There is an update on your account, %s."}
	}

	return &ai.NotificationCopy{
		Subject:        c[0],
		Body:           fmt.Sprintf(c[1], u.FullName),
		Degraded:       true,
		DegradedReason: reason,
	}
}

func churnLevel(risk float64) string {
	switch {
	case risk >= 0.7:
		return "high"
	case risk >= 0.4:
		return "medium"
	default:
		return "low"
	}
}
