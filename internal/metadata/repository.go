package metadata

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/model"
)

type Repository interface {
	Insert(ctx context.Context, rec *model.MetadataRecord) error
	// Upsert overwrites the newest record with the same subject and (type, category, key),
	// inserting rec when there is none. rec.ID and rec.CreatedAt reflect the stored row.
	Upsert(ctx context.Context, rec *model.MetadataRecord) error
	// FindBySubject returns records newest first. An empty metadataType matches all types.
	FindBySubject(ctx context.Context, orgID, subjectType, subjectID, metadataType string) ([]model.MetadataRecord, error)
	FindLatest(ctx context.Context, orgID, subjectType, subjectID, metadataType, category, key string) (*model.MetadataRecord, error)
}
