package dto

import "encoding/json"

type WriteMetadataRequest struct {
	SubjectType  string          `json:"subject_type" validate:"required,max=64"`
	SubjectID    string          `json:"subject_id" validate:"required,max=128"`
	MetadataType string          `json:"metadata_type" validate:"required,max=64"`
	Category     string          `json:"metadata_category" validate:"max=64"`
	Key          string          `json:"metadata_key" validate:"max=128"`
	Value        json.RawMessage `json:"metadata_value" validate:"required"`
	// Mode is append (default) or upsert.
	Mode string `json:"mode" validate:"omitempty,oneof=append upsert"`
}
