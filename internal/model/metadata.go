package model

import "github.com/jmoiron/sqlx/types"

type MetadataRecord struct {
	BaseModel
	OrganizationID    string         `db:"organization_id" json:"organization_id"`
	EntityType        string         `db:"entity_type" json:"entity_type"`
	EntityID          string         `db:"entity_id" json:"entity_id"`
	MetadataType      string         `db:"metadata_type" json:"metadata_type"`
	MetadataCategory  string         `db:"metadata_category" json:"metadata_category"`
	MetadataKey       string         `db:"metadata_key" json:"metadata_key"`
	MetadataValue     types.JSONText `db:"metadata_value" json:"metadata_value"`
	IsSystemGenerated bool           `db:"is_system_generated" json:"is_system_generated"`
	CreatedBy         *string        `db:"created_by" json:"created_by,omitempty"`
}
