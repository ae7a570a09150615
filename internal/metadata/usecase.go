package metadata

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/metadata/dto"
	"github.com/fekuna/omnipos-order-service/internal/model"
)

// UseCase exposes both write modes; callers pick accumulation or overwrite explicitly.
type UseCase interface {
	AppendMetadata(ctx context.Context, input *dto.WriteMetadataInput) (*model.MetadataRecord, error)
	UpsertMetadata(ctx context.Context, input *dto.WriteMetadataInput) (*model.MetadataRecord, error)
	ReadMetadata(ctx context.Context, orgID, subjectType, subjectID, metadataType string) ([]model.MetadataRecord, error)
	LatestMetadata(ctx context.Context, orgID, subjectType, subjectID, metadataType, category, key string) (*model.MetadataRecord, error)
}

// Metadata types written by the workflows.
const (
	TypeSessionConfig     = "session_configuration"
	TypeItemModifications = "item_modifications"
	TypeOrderEnrichment   = "ai_enrichment"
	TypePaymentBreakdown  = "payment_breakdown"
	TypeFraudAssessment   = "fraud_assessment"
	TypeGatewayResponse   = "gateway_response"
	TypePaymentAdvisories = "payment_recommendations"
	TypeStatusChange      = "status_change"
)

// Subject types for records that do not hang off a core entity type.
const (
	SubjectTransaction = "universal_transaction"
)
