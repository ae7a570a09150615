package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, e *model.Entity) error {
	query := `
        INSERT INTO core_entities (
            id, organization_id, entity_type, entity_name, entity_code,
            is_active, created_at, updated_at
        )
        VALUES (
            :id, :organization_id, :entity_type, :entity_name, :entity_code,
            :is_active, :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, postgres.Conn(ctx, r.DB), query, e)
	if err != nil {
		return fmt.Errorf("insert entity: %w", err)
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Entity, error) {
	var e model.Entity
	query := `SELECT * FROM core_entities WHERE id = $1 LIMIT 1`
	err := sqlx.GetContext(ctx, postgres.Conn(ctx, r.DB), &e, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select entity: %w", err)
	}
	return &e, nil
}

func (r *PGRepository) FindByType(ctx context.Context, orgID, entityType string) ([]model.Entity, error) {
	entities := []model.Entity{}
	query := `
        SELECT * FROM core_entities
        WHERE organization_id = $1 AND entity_type = $2 AND is_active = TRUE
        ORDER BY created_at DESC
    `
	if err := sqlx.SelectContext(ctx, postgres.Conn(ctx, r.DB), &entities, query, orgID, entityType); err != nil {
		return nil, fmt.Errorf("select entities by type: %w", err)
	}
	return entities, nil
}

func (r *PGRepository) FindByAttribute(ctx context.Context, orgID, entityType, field, value string) ([]model.Entity, error) {
	entities := []model.Entity{}
	query := `
        SELECT e.* FROM core_entities e
        JOIN core_dynamic_data d ON d.entity_id = e.id
        WHERE e.organization_id = $1
          AND e.entity_type = $2
          AND e.is_active = TRUE
          AND d.field_name = $3
          AND d.field_value = $4
        ORDER BY e.created_at ASC
    `
	if err := sqlx.SelectContext(ctx, postgres.Conn(ctx, r.DB), &entities, query, orgID, entityType, field, value); err != nil {
		return nil, fmt.Errorf("select entities by attribute: %w", err)
	}
	return entities, nil
}

func (r *PGRepository) Update(ctx context.Context, e *model.Entity) error {
	query := `
        UPDATE core_entities
        SET entity_name = :entity_name,
            entity_code = :entity_code,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id AND organization_id = :organization_id
    `
	_, err := sqlx.NamedExecContext(ctx, postgres.Conn(ctx, r.DB), query, e)
	if err != nil {
		return fmt.Errorf("update entity: %w", err)
	}
	return nil
}

func (r *PGRepository) UpsertAttributes(ctx context.Context, attrs []model.DynamicAttribute) error {
	query := `
        INSERT INTO core_dynamic_data (
            id, organization_id, entity_id, field_name, field_value,
            field_type, is_encrypted, created_at, updated_at
        )
        VALUES (
            :id, :organization_id, :entity_id, :field_name, :field_value,
            :field_type, :is_encrypted, :created_at, :updated_at
        )
        ON CONFLICT (entity_id, field_name)
        DO UPDATE SET
            field_value = EXCLUDED.field_value,
            field_type = EXCLUDED.field_type,
            is_encrypted = EXCLUDED.is_encrypted,
            updated_at = EXCLUDED.updated_at
    `
	conn := postgres.Conn(ctx, r.DB)
	for i := range attrs {
		if _, err := sqlx.NamedExecContext(ctx, conn, query, &attrs[i]); err != nil {
			return fmt.Errorf("upsert attribute %s: %w", attrs[i].FieldName, err)
		}
	}
	return nil
}

func (r *PGRepository) FindAttributes(ctx context.Context, entityID string) ([]model.DynamicAttribute, error) {
	attrs := []model.DynamicAttribute{}
	query := `SELECT * FROM core_dynamic_data WHERE entity_id = $1 ORDER BY field_name`
	if err := sqlx.SelectContext(ctx, postgres.Conn(ctx, r.DB), &attrs, query, entityID); err != nil {
		return nil, fmt.Errorf("select attributes: %w", err)
	}
	return attrs, nil
}

func (r *PGRepository) FindAttributesByEntities(ctx context.Context, entityIDs []string) ([]model.DynamicAttribute, error) {
	if len(entityIDs) == 0 {
		return []model.DynamicAttribute{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM core_dynamic_data WHERE entity_id IN (?)`, entityIDs)
	if err != nil {
		return nil, err
	}

	conn := postgres.Conn(ctx, r.DB)
	query = conn.Rebind(query)

	attrs := []model.DynamicAttribute{}
	if err := sqlx.SelectContext(ctx, conn, &attrs, query, args...); err != nil {
		return nil, fmt.Errorf("select attributes by entities: %w", err)
	}
	return attrs, nil
}

func (r *PGRepository) IncrementCounter(ctx context.Context, orgID, entityID, field string) (int, error) {
	// The conflict branch takes a row lock, so concurrent callers get distinct values.
	query := `
        INSERT INTO core_dynamic_data (
            id, organization_id, entity_id, field_name, field_value,
            field_type, is_encrypted, created_at, updated_at
        )
        VALUES ($1, $2, $3, $4, '1', 'number', FALSE, $5, $5)
        ON CONFLICT (entity_id, field_name)
        DO UPDATE SET
            field_value = (COALESCE(NULLIF(core_dynamic_data.field_value, ''), '0')::numeric + 1)::text,
            updated_at = EXCLUDED.updated_at
        RETURNING field_value
    `
	var raw string
	err := sqlx.GetContext(ctx, postgres.Conn(ctx, r.DB), &raw, query,
		uuid.New().String(), orgID, entityID, field, time.Now())
	if err != nil {
		return 0, fmt.Errorf("increment %s: %w", field, err)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("counter %s holds %q: %w", field, raw, err)
	}
	return n, nil
}

func (r *PGRepository) CompareAndSetAttribute(ctx context.Context, entityID, field, expected, next string) (bool, error) {
	query := `
        UPDATE core_dynamic_data
        SET field_value = $1, updated_at = $2
        WHERE entity_id = $3 AND field_name = $4 AND field_value = $5
    `
	res, err := postgres.Conn(ctx, r.DB).ExecContext(ctx, query, next, time.Now(), entityID, field, expected)
	if err != nil {
		return false, fmt.Errorf("compare and set %s: %w", field, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
