package payment

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/payment/dto"
)

type UseCase interface {
	CreatePaymentTransaction(ctx context.Context, input *dto.CreatePaymentInput) (*model.PaymentTransaction, error)
	GetPayment(ctx context.Context, orgID, paymentID string) (*model.PaymentTransaction, error)
	// PerformFraudCheck scores a payment and records the assessment. An empty method falls
	// back to the method stored on the payment.
	PerformFraudCheck(ctx context.Context, orgID, paymentID, method string) (*model.FraudAssessment, error)
	// ProcessPayment returns a result even when it also returns an error, so callers can
	// show the assessment behind a decline.
	ProcessPayment(ctx context.Context, orgID, paymentID, method string) (*model.PaymentResult, error)
	UpdatePaymentStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.PaymentTransaction, error)
	RefundPayment(ctx context.Context, orgID, paymentID, reason string) (*model.PaymentTransaction, error)
	CancelPayment(ctx context.Context, orgID, paymentID, reason string) (*model.PaymentTransaction, error)
	GetPaymentAnalytics(ctx context.Context, orgID, timeframe string) (*model.PaymentAnalytics, error)
}

type ChargeRequest struct {
	OrganizationID string
	TransactionID  string
	Method         string
	Amount         float64
	Currency       string
	RiskLevel      model.RiskLevel
}

// Gateway charges a payment with a card processor.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*model.GatewayResponse, error)
}

type Window struct {
	Timeframe string
	Start     time.Time
	End       time.Time
}

// AnalyticsAggregator folds the payments of a window into a report.
type AnalyticsAggregator interface {
	Aggregate(window Window, payments []model.PaymentTransaction) *model.PaymentAnalytics
}

// Cache is satisfied by cache.RedisClient.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Locker is satisfied by cache.RedisClient.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}
