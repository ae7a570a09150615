package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/metadata"
	"github.com/fekuna/omnipos-order-service/internal/metadata/dto"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-order-service/internal/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUseCase() (metadata.UseCase, *storetest.MetadataRepo) {
	repo := storetest.NewMetadataRepo()
	return NewMetadataUseCase(repo, logger.NewNop()), repo
}

func input(value any) *dto.WriteMetadataInput {
	return &dto.WriteMetadataInput{
		OrganizationID: "org-1",
		SubjectType:    "order_session",
		SubjectID:      "s-1",
		MetadataType:   metadata.TypeSessionConfig,
		Category:       "session",
		Key:            "configuration",
		Value:          value,
	}
}

func TestAppendAccumulates(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()

	_, err := uc.AppendMetadata(ctx, input(map[string]any{"table": 4}))
	require.NoError(t, err)
	_, err = uc.AppendMetadata(ctx, input(map[string]any{"table": 5}))
	require.NoError(t, err)

	records, err := uc.ReadMetadata(ctx, "org-1", "order_session", "s-1", "")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"table":5}`, string(records[0].MetadataValue))

	latest, err := uc.LatestMetadata(ctx, "org-1", "order_session", "s-1", metadata.TypeSessionConfig, "session", "configuration")
	require.NoError(t, err)
	assert.JSONEq(t, `{"table":5}`, string(latest.MetadataValue))
}

func TestUpsertOverwritesNamespace(t *testing.T) {
	uc, repo := newUseCase()
	ctx := context.Background()

	first, err := uc.UpsertMetadata(ctx, input(map[string]any{"score": 0.1}))
	require.NoError(t, err)
	second, err := uc.UpsertMetadata(ctx, input(map[string]any{"score": 0.4}))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	stored := repo.Records(metadata.TypeSessionConfig)
	require.Len(t, stored, 1)
	assert.JSONEq(t, `{"score":0.4}`, string(stored[0].MetadataValue))

	other := input(map[string]any{"score": 0.9})
	other.Key = "other"
	_, err = uc.UpsertMetadata(ctx, other)
	require.NoError(t, err)
	assert.Len(t, repo.Records(metadata.TypeSessionConfig), 2)
}

func TestValueEncoding(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()

	rec, err := uc.AppendMetadata(ctx, input(nil))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(rec.MetadataValue))

	rec, err = uc.AppendMetadata(ctx, input(json.RawMessage(`{"raw":true}`)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"raw":true}`, string(rec.MetadataValue))

	_, err = uc.AppendMetadata(ctx, input(json.RawMessage(`{not json`)))
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCreatedByIsOptional(t *testing.T) {
	uc, _ := newUseCase()

	rec, err := uc.AppendMetadata(context.Background(), input(nil))
	require.NoError(t, err)
	assert.Nil(t, rec.CreatedBy)

	in := input(nil)
	in.CreatedBy = "staff-1"
	in.IsSystemGenerated = true
	rec, err = uc.AppendMetadata(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, rec.CreatedBy)
	assert.Equal(t, "staff-1", *rec.CreatedBy)
	assert.True(t, rec.IsSystemGenerated)
}

func TestWriteValidation(t *testing.T) {
	uc, _ := newUseCase()

	tests := []struct {
		name   string
		mutate func(*dto.WriteMetadataInput)
	}{
		{"missing organization", func(in *dto.WriteMetadataInput) { in.OrganizationID = "" }},
		{"missing subject", func(in *dto.WriteMetadataInput) { in.SubjectID = "" }},
		{"missing type", func(in *dto.WriteMetadataInput) { in.MetadataType = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := input(nil)
			tt.mutate(in)
			_, err := uc.AppendMetadata(context.Background(), in)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestReadFiltersAndErrors(t *testing.T) {
	uc, repo := newUseCase()
	ctx := context.Background()

	_, err := uc.AppendMetadata(ctx, input(nil))
	require.NoError(t, err)
	mods := input(nil)
	mods.MetadataType = metadata.TypeItemModifications
	_, err = uc.AppendMetadata(ctx, mods)
	require.NoError(t, err)

	records, err := uc.ReadMetadata(ctx, "org-1", "order_session", "s-1", metadata.TypeItemModifications)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = uc.ReadMetadata(ctx, "org-2", "order_session", "s-1", "")
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = uc.ReadMetadata(ctx, "org-1", "", "s-1", "")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = uc.LatestMetadata(ctx, "org-1", "order_session", "s-1", "missing", "", "")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	repo.Fail = storetest.Failures{"Insert": errors.New("disk full")}
	_, err = uc.AppendMetadata(ctx, input(nil))
	assert.ErrorIs(t, err, apperror.ErrPersistence)
}
