package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

type FraudRecommendation string

const (
	FraudApprove FraudRecommendation = "approve"
	FraudReview  FraudRecommendation = "review"
	FraudDecline FraudRecommendation = "decline"
)

// PaymentDetails is stored in the details column of a PAYMENT transaction.
type PaymentDetails struct {
	PaymentMethod        string    `json:"payment_method"`
	OrderID              string    `json:"order_id,omitempty"`
	CustomerID           string    `json:"customer_id,omitempty"`
	BaseAmount           float64   `json:"base_amount"`
	TaxAmount            float64   `json:"tax_amount"`
	TipAmount            float64   `json:"tip_amount"`
	DiscountAmount       float64   `json:"discount_amount"`
	ProcessingFee        float64   `json:"processing_fee"`
	NetAmount            float64   `json:"net_amount"`
	GatewayTransactionID string    `json:"gateway_transaction_id,omitempty"`
	AuthorizationCode    string    `json:"authorization_code,omitempty"`
	FraudScore           float64   `json:"fraud_score"`
	RiskLevel            RiskLevel `json:"risk_level,omitempty"`
	ComplianceFlags      []string  `json:"compliance_flags,omitempty"`
	FailureCode          string    `json:"failure_code,omitempty"`
	FailureReason        string    `json:"failure_reason,omitempty"`
}

// PaymentTransaction is the typed view of a PAYMENT universal transaction.
type PaymentTransaction struct {
	ID                string            `json:"id"`
	OrganizationID    string            `json:"organization_id"`
	TransactionNumber string            `json:"transaction_number"`
	TransactionDate   time.Time         `json:"transaction_date"`
	Amount            float64           `json:"amount"`
	Currency          string            `json:"currency"`
	Status            TransactionStatus `json:"status"`
	PaymentDetails
	Lines []TransactionLine `json:"lines,omitempty"`
}

// NewPaymentTransaction decodes a PAYMENT header into its typed view.
func NewPaymentTransaction(tx *UniversalTransaction) (*PaymentTransaction, error) {
	if tx.TransactionType != TransactionTypePayment {
		return nil, fmt.Errorf("transaction %s is %s, not %s", tx.ID, tx.TransactionType, TransactionTypePayment)
	}
	p := &PaymentTransaction{
		ID:                tx.ID,
		OrganizationID:    tx.OrganizationID,
		TransactionNumber: tx.TransactionNumber,
		TransactionDate:   tx.TransactionDate,
		Amount:            tx.TotalAmount,
		Currency:          tx.Currency,
		Status:            tx.Status,
		Lines:             tx.Lines,
	}
	if len(tx.Details) > 0 {
		if err := json.Unmarshal(tx.Details, &p.PaymentDetails); err != nil {
			return nil, fmt.Errorf("decode payment details: %w", err)
		}
	}
	return p, nil
}

type RiskFactor struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	Weight      float64 `json:"weight"`
	Weighted    float64 `json:"weighted"`
	Description string  `json:"description"`
}

type FraudAssessment struct {
	TransactionID  string              `json:"transaction_id"`
	RiskScore      float64             `json:"risk_score"`
	RiskLevel      RiskLevel           `json:"risk_level"`
	Recommendation FraudRecommendation `json:"recommendation"`
	Factors        []RiskFactor        `json:"factors"`
	AssessedAt     time.Time           `json:"assessed_at"`
}

// GatewayResponse mirrors what a card processor returns for a charge attempt.
type GatewayResponse struct {
	Success              bool    `json:"success"`
	GatewayTransactionID string  `json:"gateway_transaction_id,omitempty"`
	AuthorizationCode    string  `json:"authorization_code,omitempty"`
	ProcessingFee        float64 `json:"processing_fee,omitempty"`
	ErrorCode            string  `json:"error_code,omitempty"`
	Error                string  `json:"error,omitempty"`
}

type PaymentRecommendation struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type PaymentResult struct {
	Success         bool                    `json:"success"`
	Transaction     *PaymentTransaction     `json:"transaction"`
	FraudAssessment *FraudAssessment        `json:"fraud_assessment,omitempty"`
	GatewayResponse *GatewayResponse        `json:"gateway_response,omitempty"`
	Recommendations []PaymentRecommendation `json:"recommendations,omitempty"`
	ErrorCode       string                  `json:"error_code,omitempty"`
	Error           string                  `json:"error,omitempty"`
}

type MethodShare struct {
	Method string  `json:"method"`
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
	Share  float64 `json:"share"`
}

type DailyTotal struct {
	Date    string  `json:"date"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type PaymentAnalytics struct {
	Timeframe          string        `json:"timeframe"`
	Start              time.Time     `json:"start"`
	End                time.Time     `json:"end"`
	TotalRevenue       float64       `json:"total_revenue"`
	TransactionCount   int           `json:"transaction_count"`
	SuccessfulCount    int           `json:"successful_count"`
	SuccessRate        float64       `json:"success_rate"`
	AverageValue       float64       `json:"average_value"`
	ProcessingFees     float64       `json:"processing_fees"`
	MethodDistribution []MethodShare `json:"method_distribution"`
	DailyBreakdown     []DailyTotal  `json:"daily_breakdown"`
}
