package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pkg/postgres"
	"github.com/fekuna/omnipos-order-service/internal/transaction"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
)

const (
	uniqueViolation  = "23505"
	orderSourceIndex = "uq_universal_transactions_order_source"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) CreateHeader(ctx context.Context, tx *model.UniversalTransaction) error {
	// DO NOTHING keeps an enclosing transaction usable when the number collides. Other
	// unique indexes still raise.
	query := `
        INSERT INTO universal_transactions (
            id, organization_id, transaction_type, transaction_number, transaction_date,
            total_amount, currency, status, source_entity_id, details, created_at, updated_at
        )
        VALUES (
            :id, :organization_id, :transaction_type, :transaction_number, :transaction_date,
            :total_amount, :currency, :status, :source_entity_id, :details, :created_at, :updated_at
        )
        ON CONFLICT (organization_id, transaction_number) DO NOTHING
    `
	res, err := sqlx.NamedExecContext(ctx, postgres.Conn(ctx, r.DB), query, tx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == orderSourceIndex {
			return transaction.ErrDuplicateSource
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return transaction.ErrDuplicateNumber
	}
	return nil
}

func (r *PGRepository) AppendLines(ctx context.Context, lines []model.TransactionLine) error {
	query := `
        INSERT INTO universal_transaction_lines (
            id, transaction_id, line_entity_id, line_type, description,
            quantity, unit_price, line_amount, line_order, created_at
        )
        VALUES (
            :id, :transaction_id, :line_entity_id, :line_type, :description,
            :quantity, :unit_price, :line_amount, :line_order, :created_at
        )
    `
	conn := postgres.Conn(ctx, r.DB)
	for i := range lines {
		if _, err := sqlx.NamedExecContext(ctx, conn, query, &lines[i]); err != nil {
			return fmt.Errorf("insert line %d: %w", lines[i].LineOrder, err)
		}
	}
	return nil
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id string, status model.TransactionStatus) error {
	query := `UPDATE universal_transactions SET status = $1, updated_at = $2 WHERE id = $3`
	res, err := postgres.Conn(ctx, r.DB).ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return expectOne(res, transaction.ErrNotFound)
}

func (r *PGRepository) CompareAndSetStatus(ctx context.Context, id string, expected, next model.TransactionStatus) error {
	query := `
        UPDATE universal_transactions
        SET status = $1, updated_at = $2
        WHERE id = $3 AND status = $4
    `
	res, err := postgres.Conn(ctx, r.DB).ExecContext(ctx, query, next, time.Now(), id, expected)
	if err != nil {
		return fmt.Errorf("compare and set status: %w", err)
	}
	return expectOne(res, transaction.ErrStatusMismatch)
}

func (r *PGRepository) UpdateDetails(ctx context.Context, id string, details types.JSONText) error {
	query := `UPDATE universal_transactions SET details = $1, updated_at = $2 WHERE id = $3`
	res, err := postgres.Conn(ctx, r.DB).ExecContext(ctx, query, details, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update details: %w", err)
	}
	return expectOne(res, transaction.ErrNotFound)
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.UniversalTransaction, error) {
	var tx model.UniversalTransaction
	query := `SELECT * FROM universal_transactions WHERE id = $1 LIMIT 1`
	err := sqlx.GetContext(ctx, postgres.Conn(ctx, r.DB), &tx, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select transaction: %w", err)
	}
	return &tx, nil
}

func (r *PGRepository) FindLines(ctx context.Context, transactionID string) ([]model.TransactionLine, error) {
	lines := []model.TransactionLine{}
	query := `SELECT * FROM universal_transaction_lines WHERE transaction_id = $1 ORDER BY line_order`
	if err := sqlx.SelectContext(ctx, postgres.Conn(ctx, r.DB), &lines, query, transactionID); err != nil {
		return nil, fmt.Errorf("select lines: %w", err)
	}
	return lines, nil
}

func (r *PGRepository) FindBySourceEntity(ctx context.Context, orgID, txType, sourceEntityID string) (*model.UniversalTransaction, error) {
	var tx model.UniversalTransaction
	query := `
        SELECT * FROM universal_transactions
        WHERE organization_id = $1 AND transaction_type = $2 AND source_entity_id = $3
        ORDER BY created_at
        LIMIT 1
    `
	err := sqlx.GetContext(ctx, postgres.Conn(ctx, r.DB), &tx, query, orgID, txType, sourceEntityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select transaction by source: %w", err)
	}
	return &tx, nil
}

func (r *PGRepository) FindByType(ctx context.Context, orgID, txType string, limit int) ([]model.UniversalTransaction, error) {
	txs := []model.UniversalTransaction{}
	query := `
        SELECT * FROM universal_transactions
        WHERE organization_id = $1 AND transaction_type = $2
        ORDER BY transaction_date DESC
        LIMIT $3
    `
	if err := sqlx.SelectContext(ctx, postgres.Conn(ctx, r.DB), &txs, query, orgID, txType, limit); err != nil {
		return nil, fmt.Errorf("select transactions by type: %w", err)
	}
	return txs, nil
}

func (r *PGRepository) FindByDateRange(ctx context.Context, orgID string, start, end time.Time, txType string) ([]model.UniversalTransaction, error) {
	txs := []model.UniversalTransaction{}
	query := `
        SELECT * FROM universal_transactions
        WHERE organization_id = $1 AND transaction_date >= $2 AND transaction_date < $3
    `
	args := []interface{}{orgID, start, end}
	if txType != "" {
		query += ` AND transaction_type = $4`
		args = append(args, txType)
	}
	query += ` ORDER BY transaction_date DESC`

	if err := sqlx.SelectContext(ctx, postgres.Conn(ctx, r.DB), &txs, query, args...); err != nil {
		return nil, fmt.Errorf("select transactions by date: %w", err)
	}
	return txs, nil
}

func expectOne(res sql.Result, none error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return none
	}
	return nil
}
