package order

import "github.com/fekuna/omnipos-order-service/internal/model"

// Enrichment is the annotation stored against a confirmed order. The predictions are
// rule based stand-ins until a trained model exists.
type Enrichment struct {
	CustomerPreferences   PreferenceSnapshot `json:"customer_preferences"`
	PredictedKitchenLoad  string             `json:"predicted_kitchen_load"`
	EstimatedPrepMinutes  int                `json:"estimated_prep_minutes"`
	PredictedSatisfaction float64            `json:"predicted_satisfaction"`
	ModelVersion          string             `json:"model_version"`
}

type PreferenceSnapshot struct {
	CustomerID   string   `json:"customer_id,omitempty"`
	ServiceType  string   `json:"service_type,omitempty"`
	OrderedItems []string `json:"ordered_items"`
	OrderTotal   float64  `json:"order_total"`
}

const enrichmentModelVersion = "heuristic-v1"

func BuildEnrichment(session *model.OrderSession, calc *model.OrderCalculation) Enrichment {
	units := 0
	items := make([]string, 0, len(calc.Breakdown))
	for _, line := range calc.Breakdown {
		units += line.Quantity
		items = append(items, line.Description)
	}

	return Enrichment{
		CustomerPreferences: PreferenceSnapshot{
			CustomerID:   session.CustomerID,
			ServiceType:  session.ServiceType,
			OrderedItems: items,
			OrderTotal:   calc.TotalAmount,
		},
		PredictedKitchenLoad:  kitchenLoad(units),
		EstimatedPrepMinutes:  5 + 2*units,
		PredictedSatisfaction: 0.9,
		ModelVersion:          enrichmentModelVersion,
	}
}

func kitchenLoad(units int) string {
	switch {
	case units < 3:
		return "low"
	case units < 8:
		return "medium"
	default:
		return "high"
	}
}
