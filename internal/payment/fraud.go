package payment

import (
	"time"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/shopspring/decimal"
)

// RiskInput is everything a rule may look at.
type RiskInput struct {
	Amount float64
	Method string
	At     time.Time
}

// RiskRule scores one factor in [0, 1]. The assessment adds score * weight over all rules.
type RiskRule struct {
	Name   string
	Weight float64
	Score  func(in RiskInput) (score float64, description string)
}

var methodRisk = map[string]float64{
	"credit_card":    0.10,
	"debit_card":     0.05,
	"digital_wallet": 0.05,
	"apple_pay":      0.05,
	"google_pay":     0.05,
	"bank_transfer":  0.15,
	"cash":           0,
}

const unknownMethodRisk = 0.40

// DefaultRules holds the amount, method and time-of-day factors.
var DefaultRules = []RiskRule{
	{
		Name:   "amount",
		Weight: 0.30,
		Score: func(in RiskInput) (float64, string) {
			score := min(in.Amount/500, 0.5)
			if score >= 0.5 {
				return score, "large payment amount"
			}
			return score, "amount within normal range"
		},
	},
	{
		Name:   "payment_method",
		Weight: 0.20,
		Score: func(in RiskInput) (float64, string) {
			if score, ok := methodRisk[in.Method]; ok {
				return score, "known payment method " + in.Method
			}
			return unknownMethodRisk, "unrecognized payment method"
		},
	},
	{
		Name:   "time_of_day",
		Weight: 0.15,
		Score: func(in RiskInput) (float64, string) {
			if h := in.At.Hour(); h < 6 || h >= 22 {
				return 0.30, "outside business hours"
			}
			return 0.05, "within business hours"
		},
	},
}

type FraudEngine struct {
	rules []RiskRule
}

// NewFraudEngine builds an engine over rules, or DefaultRules when none are given.
func NewFraudEngine(rules ...RiskRule) *FraudEngine {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &FraudEngine{rules: rules}
}

// Assess is deterministic for a given input.
func (e *FraudEngine) Assess(transactionID string, in RiskInput) *model.FraudAssessment {
	total := decimal.Zero
	factors := make([]model.RiskFactor, 0, len(e.rules))
	for _, rule := range e.rules {
		score, desc := rule.Score(in)
		weighted := decimal.NewFromFloat(score).Mul(decimal.NewFromFloat(rule.Weight))
		total = total.Add(weighted)
		factors = append(factors, model.RiskFactor{
			Name:        rule.Name,
			Score:       score,
			Weight:      rule.Weight,
			Weighted:    weighted.Round(4).InexactFloat64(),
			Description: desc,
		})
	}

	score := total.Round(4).InexactFloat64()
	level, rec := Classify(score)
	return &model.FraudAssessment{
		TransactionID:  transactionID,
		RiskScore:      score,
		RiskLevel:      level,
		Recommendation: rec,
		Factors:        factors,
		AssessedAt:     in.At,
	}
}

// Classify maps a risk score onto its level and recommendation.
func Classify(score float64) (model.RiskLevel, model.FraudRecommendation) {
	switch {
	case score < 0.3:
		return model.RiskLow, model.FraudApprove
	case score < 0.6:
		return model.RiskMedium, model.FraudReview
	case score < 0.8:
		return model.RiskHigh, model.FraudReview
	default:
		return model.RiskCritical, model.FraudDecline
	}
}
