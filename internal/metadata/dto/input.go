package dto

type WriteMetadataInput struct {
	OrganizationID string
	SubjectType    string
	SubjectID      string
	MetadataType   string
	Category       string
	Key            string
	// Value is marshaled to JSON. json.RawMessage is stored as is.
	Value             any
	IsSystemGenerated bool
	CreatedBy         string
}
