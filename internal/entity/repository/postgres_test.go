package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entityColumns = []string{
	"id", "organization_id", "entity_type", "entity_name", "entity_code",
	"is_active", "created_at", "updated_at",
}

func newMock(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPGRepository(sqlx.NewDb(db, "pgx")), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()
	e := &model.Entity{
		BaseModel:      model.BaseModel{ID: "e-1", CreatedAt: now, UpdatedAt: now},
		OrganizationID: "org-1",
		EntityType:     model.EntityTypeProduct,
		EntityName:     "Latte",
		EntityCode:     "SKU-1",
		IsActive:       true,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO core_entities")).
		WithArgs("e-1", "org-1", "product", "Latte", "SKU-1", true, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDMissingReturnsNil(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM core_entities WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(entityColumns))

	e, err := repo.FindByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, e)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM core_entities WHERE id = $1")).
		WithArgs("e-1").
		WillReturnRows(sqlmock.NewRows(entityColumns).
			AddRow("e-1", "org-1", "product", "Latte", "SKU-1", true, now, now))

	e, err := repo.FindByID(context.Background(), "e-1")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "Latte", e.EntityName)
	assert.True(t, e.IsActive)
}

func TestFindByAttribute(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("JOIN core_dynamic_data d ON d.entity_id = e.id")).
		WithArgs("org-1", "order_item", "session_id", "s-1").
		WillReturnRows(sqlmock.NewRows(entityColumns).
			AddRow("i-1", "org-1", "order_item", "Latte", "SES-001", true, now, now).
			AddRow("i-2", "org-1", "order_item", "Mocha", "SES-002", true, now, now))

	items, err := repo.FindByAttribute(context.Background(), "org-1", "order_item", "session_id", "s-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "i-2", items[1].ID)
}

func TestUpsertAttributesUsesConflictClause(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()
	attrs := []model.DynamicAttribute{
		{BaseModel: model.BaseModel{ID: "a-1", CreatedAt: now, UpdatedAt: now}, OrganizationID: "org-1", EntityID: "e-1", FieldName: "status", FieldValue: "active", FieldType: model.FieldTypeText},
		{BaseModel: model.BaseModel{ID: "a-2", CreatedAt: now, UpdatedAt: now}, OrganizationID: "org-1", EntityID: "e-1", FieldName: "total", FieldValue: "4.86", FieldType: model.FieldTypeNumber},
	}

	for range attrs {
		mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (entity_id, field_name)")).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	require.NoError(t, repo.UpsertAttributes(context.Background(), attrs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertAttributesReportsField(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec("INSERT INTO core_dynamic_data").WillReturnError(errors.New("boom"))

	err := repo.UpsertAttributes(context.Background(), []model.DynamicAttribute{{FieldName: "status", EntityID: "e-1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert attribute status")
}

func TestFindAttributesByEntities(t *testing.T) {
	repo, mock := newMock(t)

	attrs, err := repo.FindAttributesByEntities(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, attrs)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM core_dynamic_data WHERE entity_id IN ($1, $2)")).
		WithArgs("e-1", "e-2").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "organization_id", "entity_id", "field_name", "field_value",
			"field_type", "is_encrypted", "created_at", "updated_at",
		}).AddRow("a-1", "org-1", "e-1", "base_price", "4.5", "number", false, now, now))

	attrs, err = repo.FindAttributesByEntities(context.Background(), []string{"e-1", "e-2"})
	require.NoError(t, err)
	require.Len(t, attrs, 1)
	assert.Equal(t, model.FieldTypeNumber, attrs[0].FieldType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementCounter(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("RETURNING field_value")).
		WithArgs(sqlmock.AnyArg(), "org-1", "s-1", "line_counter", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"field_value"}).AddRow("3"))

	n, err := repo.IncrementCounter(context.Background(), "org-1", "s-1", "line_counter")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCompareAndSetAttribute(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE core_dynamic_data")).
		WithArgs("completed", sqlmock.AnyArg(), "s-1", "status", "active").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE core_dynamic_data")).
		WithArgs("completed", sqlmock.AnyArg(), "s-1", "status", "active").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.CompareAndSetAttribute(context.Background(), "s-1", "status", "active", "completed")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.CompareAndSetAttribute(context.Background(), "s-1", "status", "active", "completed")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
