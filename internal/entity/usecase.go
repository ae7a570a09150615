package entity

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/entity/dto"
	"github.com/fekuna/omnipos-order-service/internal/model"
)

type UseCase interface {
	CreateEntity(ctx context.Context, input *dto.CreateEntityInput) (*model.Entity, error)
	GetEntity(ctx context.Context, orgID, id string) (*model.Entity, error)
	ListEntities(ctx context.Context, orgID, entityType string) ([]model.Entity, error)
	FindByAttribute(ctx context.Context, orgID, entityType, field string, value model.FieldValue) ([]model.Entity, error)
	UpdateEntity(ctx context.Context, input *dto.UpdateEntityInput) (*model.Entity, error)
	DeactivateEntity(ctx context.Context, orgID, id string) error

	SetAttribute(ctx context.Context, orgID, entityID string, attr dto.AttributeInput) error
	SetAttributes(ctx context.Context, orgID, entityID string, attrs []dto.AttributeInput) error
	GetAttributes(ctx context.Context, orgID, entityID string) ([]model.DynamicAttribute, error)
	GetAttributesByEntities(ctx context.Context, entityIDs []string) (map[string]model.Attributes, error)

	IncrementCounter(ctx context.Context, orgID, entityID, field string) (int, error)
	CompareAndSetAttribute(ctx context.Context, entityID, field string, expected, next model.FieldValue) (bool, error)
}
