package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/entity"
	"github.com/fekuna/omnipos-order-service/internal/entity/dto"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type entityUseCase struct {
	repo   entity.Repository
	logger logger.ZapLogger
	now    func() time.Time
}

func NewEntityUseCase(repo entity.Repository, log logger.ZapLogger) entity.UseCase {
	return &entityUseCase{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

func (uc *entityUseCase) CreateEntity(ctx context.Context, input *dto.CreateEntityInput) (*model.Entity, error) {
	const op = "entity.CreateEntity"

	switch {
	case strings.TrimSpace(input.OrganizationID) == "":
		return nil, apperror.Validation(op, "organization id is required")
	case strings.TrimSpace(input.EntityType) == "":
		return nil, apperror.Validation(op, "entity type is required")
	case strings.TrimSpace(input.EntityName) == "":
		return nil, apperror.Validation(op, "entity name is required")
	case strings.TrimSpace(input.EntityCode) == "":
		return nil, apperror.Validation(op, "entity code is required")
	}

	now := uc.now()
	e := &model.Entity{
		BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OrganizationID: input.OrganizationID,
		EntityType:     input.EntityType,
		EntityName:     input.EntityName,
		EntityCode:     input.EntityCode,
		IsActive:       true,
	}
	if err := uc.repo.Create(ctx, e); err != nil {
		return nil, uc.persistence(op, err)
	}
	return e, nil
}

func (uc *entityUseCase) GetEntity(ctx context.Context, orgID, id string) (*model.Entity, error) {
	const op = "entity.GetEntity"
	if id == "" {
		return nil, apperror.Validation(op, "entity id is required")
	}
	return uc.load(ctx, op, orgID, id)
}

func (uc *entityUseCase) ListEntities(ctx context.Context, orgID, entityType string) ([]model.Entity, error) {
	const op = "entity.ListEntities"
	if orgID == "" || entityType == "" {
		return nil, apperror.Validation(op, "organization id and entity type are required")
	}
	entities, err := uc.repo.FindByType(ctx, orgID, entityType)
	if err != nil {
		return nil, uc.persistence(op, err)
	}
	return entities, nil
}

func (uc *entityUseCase) FindByAttribute(ctx context.Context, orgID, entityType, field string, value model.FieldValue) ([]model.Entity, error) {
	const op = "entity.FindByAttribute"
	if orgID == "" || entityType == "" || field == "" {
		return nil, apperror.Validation(op, "organization id, entity type and field name are required")
	}
	entities, err := uc.repo.FindByAttribute(ctx, orgID, entityType, field, value.String())
	if err != nil {
		return nil, uc.persistence(op, err)
	}
	return entities, nil
}

func (uc *entityUseCase) UpdateEntity(ctx context.Context, input *dto.UpdateEntityInput) (*model.Entity, error) {
	const op = "entity.UpdateEntity"

	e, err := uc.load(ctx, op, input.OrganizationID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.EntityName != nil {
		if strings.TrimSpace(*input.EntityName) == "" {
			return nil, apperror.Validation(op, "entity name cannot be empty")
		}
		e.EntityName = *input.EntityName
	}
	if input.EntityCode != nil {
		if strings.TrimSpace(*input.EntityCode) == "" {
			return nil, apperror.Validation(op, "entity code cannot be empty")
		}
		e.EntityCode = *input.EntityCode
	}
	if input.IsActive != nil {
		e.IsActive = *input.IsActive
	}
	e.UpdatedAt = uc.now()

	if err := uc.repo.Update(ctx, e); err != nil {
		return nil, uc.persistence(op, err)
	}
	return e, nil
}

func (uc *entityUseCase) DeactivateEntity(ctx context.Context, orgID, id string) error {
	inactive := false
	_, err := uc.UpdateEntity(ctx, &dto.UpdateEntityInput{ID: id, OrganizationID: orgID, IsActive: &inactive})
	return err
}

func (uc *entityUseCase) SetAttribute(ctx context.Context, orgID, entityID string, attr dto.AttributeInput) error {
	return uc.SetAttributes(ctx, orgID, entityID, []dto.AttributeInput{attr})
}

func (uc *entityUseCase) SetAttributes(ctx context.Context, orgID, entityID string, attrs []dto.AttributeInput) error {
	const op = "entity.SetAttributes"
	if len(attrs) == 0 {
		return nil
	}

	if _, err := uc.load(ctx, op, orgID, entityID); err != nil {
		return err
	}

	now := uc.now()
	index := make(map[string]int, len(attrs))
	rows := make([]model.DynamicAttribute, 0, len(attrs))
	for _, attr := range attrs {
		if strings.TrimSpace(attr.FieldName) == "" {
			return apperror.Validation(op, "field name is required")
		}
		row := model.DynamicAttribute{
			BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
			OrganizationID: orgID,
			EntityID:       entityID,
			FieldName:      attr.FieldName,
			FieldValue:     attr.Value.String(),
			FieldType:      attr.Value.Kind(),
			IsEncrypted:    attr.IsEncrypted,
		}
		// Last write wins inside a batch as well.
		if i, ok := index[attr.FieldName]; ok {
			rows[i] = row
			continue
		}
		index[attr.FieldName] = len(rows)
		rows = append(rows, row)
	}

	if err := uc.repo.UpsertAttributes(ctx, rows); err != nil {
		return uc.persistence(op, err)
	}
	return nil
}

func (uc *entityUseCase) GetAttributes(ctx context.Context, orgID, entityID string) ([]model.DynamicAttribute, error) {
	const op = "entity.GetAttributes"
	if _, err := uc.load(ctx, op, orgID, entityID); err != nil {
		return nil, err
	}
	attrs, err := uc.repo.FindAttributes(ctx, entityID)
	if err != nil {
		return nil, uc.persistence(op, err)
	}
	return attrs, nil
}

func (uc *entityUseCase) GetAttributesByEntities(ctx context.Context, entityIDs []string) (map[string]model.Attributes, error) {
	const op = "entity.GetAttributesByEntities"
	rows, err := uc.repo.FindAttributesByEntities(ctx, entityIDs)
	if err != nil {
		return nil, uc.persistence(op, err)
	}

	grouped := make(map[string][]model.DynamicAttribute, len(entityIDs))
	for _, row := range rows {
		grouped[row.EntityID] = append(grouped[row.EntityID], row)
	}
	result := make(map[string]model.Attributes, len(grouped))
	for id, attrs := range grouped {
		result[id] = model.NewAttributes(attrs)
	}
	return result, nil
}

func (uc *entityUseCase) IncrementCounter(ctx context.Context, orgID, entityID, field string) (int, error) {
	const op = "entity.IncrementCounter"
	if entityID == "" || field == "" {
		return 0, apperror.Validation(op, "entity id and field name are required")
	}
	n, err := uc.repo.IncrementCounter(ctx, orgID, entityID, field)
	if err != nil {
		return 0, uc.persistence(op, err)
	}
	return n, nil
}

func (uc *entityUseCase) CompareAndSetAttribute(ctx context.Context, entityID, field string, expected, next model.FieldValue) (bool, error) {
	const op = "entity.CompareAndSetAttribute"
	if expected.Kind() != next.Kind() {
		return false, apperror.Validation(op, "cannot change %s from %s to %s", field, expected.Kind(), next.Kind())
	}
	ok, err := uc.repo.CompareAndSetAttribute(ctx, entityID, field, expected.String(), next.String())
	if err != nil {
		return false, uc.persistence(op, err)
	}
	return ok, nil
}

// load fetches an entity scoped to orgID. Entities of other organizations read as missing.
func (uc *entityUseCase) load(ctx context.Context, op, orgID, id string) (*model.Entity, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.NotFound(op, "entity %s not found", id)
	}
	e, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, uc.persistence(op, err)
	}
	if e == nil || (orgID != "" && e.OrganizationID != orgID) {
		return nil, apperror.NotFound(op, "entity %s not found", id)
	}
	return e, nil
}

func (uc *entityUseCase) persistence(op string, err error) error {
	uc.logger.Error("entity store failure", zap.String("op", op), zap.Error(err))
	return apperror.Persistence(op, err)
}
