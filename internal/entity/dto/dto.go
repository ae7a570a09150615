package dto

import (
	"time"

	"github.com/fekuna/omnipos-order-service/internal/model"
)

type CreateEntityRequest struct {
	EntityType string `json:"entity_type" validate:"required,max=64"`
	EntityName string `json:"entity_name" validate:"required,max=255"`
	EntityCode string `json:"entity_code" validate:"required,max=64"`
}

type UpdateEntityRequest struct {
	EntityName *string `json:"entity_name" validate:"omitempty,min=1,max=255"`
	EntityCode *string `json:"entity_code" validate:"omitempty,min=1,max=64"`
	IsActive   *bool   `json:"is_active"`
}

type AttributeRequest struct {
	FieldName   string `json:"field_name" validate:"required,max=128"`
	FieldType   string `json:"field_type" validate:"required,fieldtype"`
	Value       any    `json:"value"`
	IsEncrypted bool   `json:"is_encrypted"`
}

type SetAttributesRequest struct {
	Attributes []AttributeRequest `json:"attributes" validate:"required,min=1,dive"`
}

type AttributeResponse struct {
	FieldName   string           `json:"field_name"`
	FieldType   string           `json:"field_type"`
	Value       model.FieldValue `json:"value"`
	IsEncrypted bool             `json:"is_encrypted"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
