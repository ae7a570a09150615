package entity

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, e *model.Entity) error
	FindByID(ctx context.Context, id string) (*model.Entity, error)
	FindByType(ctx context.Context, orgID, entityType string) ([]model.Entity, error)
	FindByAttribute(ctx context.Context, orgID, entityType, field, value string) ([]model.Entity, error)
	Update(ctx context.Context, e *model.Entity) error

	// Attributes are unique per (entity, field); writes replace the previous value.
	UpsertAttributes(ctx context.Context, attrs []model.DynamicAttribute) error
	FindAttributes(ctx context.Context, entityID string) ([]model.DynamicAttribute, error)
	FindAttributesByEntities(ctx context.Context, entityIDs []string) ([]model.DynamicAttribute, error)

	// IncrementCounter atomically adds one to a number attribute, creating it at 1.
	IncrementCounter(ctx context.Context, orgID, entityID, field string) (int, error)
	// CompareAndSetAttribute writes next only if the stored value equals expected.
	CompareAndSetAttribute(ctx context.Context, entityID, field, expected, next string) (bool, error)
}
