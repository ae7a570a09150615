package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/metadata"
	"github.com/fekuna/omnipos-order-service/internal/metadata/dto"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"
)

type metadataUseCase struct {
	repo   metadata.Repository
	logger logger.ZapLogger
	now    func() time.Time
}

func NewMetadataUseCase(repo metadata.Repository, log logger.ZapLogger) metadata.UseCase {
	return &metadataUseCase{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

func (uc *metadataUseCase) AppendMetadata(ctx context.Context, input *dto.WriteMetadataInput) (*model.MetadataRecord, error) {
	const op = "metadata.AppendMetadata"
	rec, err := uc.build(op, input)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Insert(ctx, rec); err != nil {
		return nil, uc.persistence(op, input, err)
	}
	return rec, nil
}

func (uc *metadataUseCase) UpsertMetadata(ctx context.Context, input *dto.WriteMetadataInput) (*model.MetadataRecord, error) {
	const op = "metadata.UpsertMetadata"
	rec, err := uc.build(op, input)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Upsert(ctx, rec); err != nil {
		return nil, uc.persistence(op, input, err)
	}
	return rec, nil
}

func (uc *metadataUseCase) ReadMetadata(ctx context.Context, orgID, subjectType, subjectID, metadataType string) ([]model.MetadataRecord, error) {
	const op = "metadata.ReadMetadata"
	if subjectType == "" || subjectID == "" {
		return nil, apperror.Validation(op, "subject type and id are required")
	}
	records, err := uc.repo.FindBySubject(ctx, orgID, subjectType, subjectID, metadataType)
	if err != nil {
		uc.logger.Error("metadata read failed", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, apperror.Persistence(op, err)
	}
	return records, nil
}

func (uc *metadataUseCase) LatestMetadata(ctx context.Context, orgID, subjectType, subjectID, metadataType, category, key string) (*model.MetadataRecord, error) {
	const op = "metadata.LatestMetadata"
	rec, err := uc.repo.FindLatest(ctx, orgID, subjectType, subjectID, metadataType, category, key)
	if err != nil {
		uc.logger.Error("metadata read failed", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, apperror.Persistence(op, err)
	}
	if rec == nil {
		return nil, apperror.NotFound(op, "no %s metadata for %s %s", metadataType, subjectType, subjectID)
	}
	return rec, nil
}

func (uc *metadataUseCase) build(op string, input *dto.WriteMetadataInput) (*model.MetadataRecord, error) {
	switch {
	case input.OrganizationID == "":
		return nil, apperror.Validation(op, "organization id is required")
	case input.SubjectType == "" || input.SubjectID == "":
		return nil, apperror.Validation(op, "subject type and id are required")
	case input.MetadataType == "":
		return nil, apperror.Validation(op, "metadata type is required")
	}

	value, err := encodeValue(input.Value)
	if err != nil {
		return nil, apperror.Validation(op, "metadata value is not valid JSON: %v", err)
	}

	now := uc.now()
	rec := &model.MetadataRecord{
		BaseModel:         model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OrganizationID:    input.OrganizationID,
		EntityType:        input.SubjectType,
		EntityID:          input.SubjectID,
		MetadataType:      input.MetadataType,
		MetadataCategory:  input.Category,
		MetadataKey:       input.Key,
		MetadataValue:     value,
		IsSystemGenerated: input.IsSystemGenerated,
	}
	if input.CreatedBy != "" {
		createdBy := input.CreatedBy
		rec.CreatedBy = &createdBy
	}
	return rec, nil
}

func encodeValue(v any) (types.JSONText, error) {
	switch val := v.(type) {
	case nil:
		return types.JSONText("{}"), nil
	case json.RawMessage:
		text := types.JSONText(val)
		return text, text.Unmarshal(new(any))
	case types.JSONText:
		return val, val.Unmarshal(new(any))
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return types.JSONText(data), nil
}

func (uc *metadataUseCase) persistence(op string, input *dto.WriteMetadataInput, err error) error {
	uc.logger.Error("metadata write failed",
		zap.String("op", op),
		zap.String("subject_type", input.SubjectType),
		zap.String("subject_id", input.SubjectID),
		zap.String("metadata_type", input.MetadataType),
		zap.Error(err),
	)
	return apperror.Persistence(op, err)
}
