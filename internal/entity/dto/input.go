package dto

import "github.com/fekuna/omnipos-order-service/internal/model"

type CreateEntityInput struct {
	OrganizationID string
	EntityType     string
	EntityName     string
	EntityCode     string
}

// UpdateEntityInput carries a partial update; nil fields are left as they are.
type UpdateEntityInput struct {
	ID             string
	OrganizationID string
	EntityName     *string
	EntityCode     *string
	IsActive       *bool
}

type AttributeInput struct {
	FieldName   string
	Value       model.FieldValue
	IsEncrypted bool
}
