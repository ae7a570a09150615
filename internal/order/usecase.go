package order

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/order/dto"
)

type UseCase interface {
	CreateOrderSession(ctx context.Context, input *dto.CreateSessionInput) (*model.OrderSession, error)
	GetOrderSession(ctx context.Context, orgID, sessionID string) (*model.OrderSession, error)
	AddItemToOrder(ctx context.Context, input *dto.AddItemInput) (*model.OrderItem, error)
	CalculateOrderTotal(ctx context.Context, orgID, sessionID string) (*model.OrderCalculation, error)
	// ConfirmOrder is idempotent per session: confirming a completed session returns the
	// transaction it produced.
	ConfirmOrder(ctx context.Context, input *dto.ConfirmOrderInput) (*model.UniversalTransaction, error)
	AbandonOrderSession(ctx context.Context, orgID, sessionID string) (*model.OrderSession, error)
	GetPersonalizedRecommendations(ctx context.Context, orgID, customerID string, currentItems []string) ([]model.Recommendation, error)
}

type RecommendationRequest struct {
	OrganizationID string
	CustomerID     string
	// CurrentItems holds the product ids already in the cart.
	CurrentItems []string
	Limit        int
}

type RecommendationEngine interface {
	Recommend(ctx context.Context, req RecommendationRequest) ([]model.Recommendation, error)
}

// Locker is satisfied by cache.RedisClient.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}
