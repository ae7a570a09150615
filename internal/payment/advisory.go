package payment

import "github.com/fekuna/omnipos-order-service/internal/model"

const (
	maxAdvisories        = 3
	largePaymentAmount   = 1000
	walletOfferThreshold = 50
)

func isCard(method string) bool {
	return method == "credit_card" || method == "debit_card"
}

// Advisories suggests follow-ups for a settled payment, at most three.
func Advisories(p *model.PaymentTransaction, assessment *model.FraudAssessment) []model.PaymentRecommendation {
	var out []model.PaymentRecommendation

	if p.Amount >= largePaymentAmount {
		out = append(out, model.PaymentRecommendation{
			Type:        "gateway_routing",
			Title:       "Route large payments to a lower fee gateway",
			Description: "Payments of this size save noticeably on percentage fees with an interchange-plus processor.",
			Priority:    "medium",
		})
	}

	if assessment != nil && assessment.RiskLevel != model.RiskLow && isCard(p.PaymentMethod) {
		out = append(out, model.PaymentRecommendation{
			Type:        "three_d_secure",
			Title:       "Require 3-D Secure for elevated risk card payments",
			Description: "Step-up authentication shifts chargeback liability to the issuer.",
			Priority:    "high",
		})
	}

	if isCard(p.PaymentMethod) && p.Amount < walletOfferThreshold {
		out = append(out, model.PaymentRecommendation{
			Type:        "digital_wallet",
			Title:       "Offer digital wallet checkout",
			Description: "Small card payments complete faster with a tap to pay wallet.",
			Priority:    "low",
		})
	}

	if len(out) > maxAdvisories {
		out = out[:maxAdvisories]
	}
	return out
}
