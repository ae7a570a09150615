package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pkg/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Insert(ctx context.Context, rec *model.MetadataRecord) error {
	query := `
        INSERT INTO core_metadata (
            id, organization_id, entity_type, entity_id, metadata_type,
            metadata_category, metadata_key, metadata_value, is_system_generated,
            created_by, created_at, updated_at
        )
        VALUES (
            :id, :organization_id, :entity_type, :entity_id, :metadata_type,
            :metadata_category, :metadata_key, :metadata_value, :is_system_generated,
            :created_by, :created_at, :updated_at
        )
    `
	if _, err := sqlx.NamedExecContext(ctx, postgres.Conn(ctx, r.DB), query, rec); err != nil {
		return fmt.Errorf("insert metadata: %w", err)
	}
	return nil
}

func (r *PGRepository) Upsert(ctx context.Context, rec *model.MetadataRecord) error {
	// The lock must be its own statement so the upsert below takes a snapshot after
	// any concurrent upsert of the same key has committed.
	return postgres.NewTxManager(r.DB).WithinTransaction(ctx, func(ctx context.Context) error {
		lockKey := strings.Join([]string{
			rec.OrganizationID, rec.EntityType, rec.EntityID,
			rec.MetadataType, rec.MetadataCategory, rec.MetadataKey,
		}, "|")
		if _, err := postgres.Conn(ctx, r.DB).ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockKey); err != nil {
			return fmt.Errorf("lock metadata key: %w", err)
		}
		return r.upsert(ctx, rec)
	})
}

func (r *PGRepository) upsert(ctx context.Context, rec *model.MetadataRecord) error {
	// core_metadata has no unique key on the namespace (appends are allowed), so the
	// newest matching row is updated in place and a fresh row is inserted only when the
	// update touched nothing.
	query := `
        WITH latest AS (
            SELECT id FROM core_metadata
            WHERE organization_id = :organization_id
              AND entity_type = :entity_type
              AND entity_id = :entity_id
              AND metadata_type = :metadata_type
              AND metadata_category = :metadata_category
              AND metadata_key = :metadata_key
            ORDER BY created_at DESC
            LIMIT 1
            FOR UPDATE
        ),
        updated AS (
            UPDATE core_metadata m
            SET metadata_value = :metadata_value,
                is_system_generated = :is_system_generated,
                created_by = :created_by,
                updated_at = :updated_at
            FROM latest
            WHERE m.id = latest.id
            RETURNING m.id, m.created_at
        ),
        inserted AS (
            INSERT INTO core_metadata (
                id, organization_id, entity_type, entity_id, metadata_type,
                metadata_category, metadata_key, metadata_value, is_system_generated,
                created_by, created_at, updated_at
            )
            SELECT
                :id, :organization_id, :entity_type, :entity_id, :metadata_type,
                :metadata_category, :metadata_key, :metadata_value, :is_system_generated,
                :created_by, :created_at, :updated_at
            WHERE NOT EXISTS (SELECT 1 FROM updated)
            RETURNING id, created_at
        )
        SELECT id, created_at FROM updated
        UNION ALL
        SELECT id, created_at FROM inserted
    `
	rows, err := sqlx.NamedQueryContext(ctx, postgres.Conn(ctx, r.DB), query, rec)
	if err != nil {
		return fmt.Errorf("upsert metadata: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&rec.ID, &rec.CreatedAt); err != nil {
			return fmt.Errorf("scan upserted metadata: %w", err)
		}
	}
	return rows.Err()
}

func (r *PGRepository) FindBySubject(ctx context.Context, orgID, subjectType, subjectID, metadataType string) ([]model.MetadataRecord, error) {
	records := []model.MetadataRecord{}
	query := `
        SELECT * FROM core_metadata
        WHERE organization_id = $1 AND entity_type = $2 AND entity_id = $3
    `
	args := []interface{}{orgID, subjectType, subjectID}
	if metadataType != "" {
		query += ` AND metadata_type = $4`
		args = append(args, metadataType)
	}
	query += ` ORDER BY created_at DESC`

	if err := sqlx.SelectContext(ctx, postgres.Conn(ctx, r.DB), &records, query, args...); err != nil {
		return nil, fmt.Errorf("select metadata: %w", err)
	}
	return records, nil
}

func (r *PGRepository) FindLatest(ctx context.Context, orgID, subjectType, subjectID, metadataType, category, key string) (*model.MetadataRecord, error) {
	var rec model.MetadataRecord
	query := `
        SELECT * FROM core_metadata
        WHERE organization_id = $1 AND entity_type = $2 AND entity_id = $3
          AND metadata_type = $4 AND metadata_category = $5 AND metadata_key = $6
        ORDER BY created_at DESC
        LIMIT 1
    `
	err := sqlx.GetContext(ctx, postgres.Conn(ctx, r.DB), &rec, query, orgID, subjectType, subjectID, metadataType, category, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select latest metadata: %w", err)
	}
	return &rec, nil
}
