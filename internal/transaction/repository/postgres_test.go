package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/transaction"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var headerColumns = []string{
	"id", "organization_id", "transaction_type", "transaction_number", "transaction_date",
	"total_amount", "currency", "status", "source_entity_id", "details", "created_at", "updated_at",
}

func newMock(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPGRepository(sqlx.NewDb(db, "pgx")), mock
}

func header() *model.UniversalTransaction {
	now := time.Now()
	source := "s-1"
	return &model.UniversalTransaction{
		BaseModel:         model.BaseModel{ID: "t-1", CreatedAt: now, UpdatedAt: now},
		OrganizationID:    "org-1",
		TransactionType:   model.TransactionTypeOrder,
		TransactionNumber: "ORD-20260314-7F3A",
		TransactionDate:   now,
		TotalAmount:       4.86,
		Currency:          "USD",
		Status:            model.StatusPending,
		SourceEntityID:    &source,
		Details:           types.JSONText(`{}`),
	}
}

func TestCreateHeader(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (organization_id, transaction_number) DO NOTHING")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreateHeader(context.Background(), header()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateHeaderConflictIsDuplicateNumber(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO universal_transactions")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.CreateHeader(context.Background(), header())
	assert.ErrorIs(t, err, transaction.ErrDuplicateNumber)
}

func TestCreateHeaderSourceConflictIsNotDuplicateNumber(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO universal_transactions")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_universal_transactions_order_source"})

	err := repo.CreateHeader(context.Background(), header())
	assert.ErrorIs(t, err, transaction.ErrDuplicateSource)
	assert.NotErrorIs(t, err, transaction.ErrDuplicateNumber)
}

func TestAppendLines(t *testing.T) {
	repo, mock := newMock(t)
	lines := []model.TransactionLine{
		{ID: "l-1", TransactionID: "t-1", LineType: model.LineTypeItem, LineOrder: 1},
		{ID: "l-2", TransactionID: "t-1", LineType: model.LineTypeTax, LineOrder: 2},
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO universal_transaction_lines")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO universal_transaction_lines")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AppendLines(context.Background(), lines))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompareAndSetStatus(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $3 AND status = $4")).
		WithArgs("authorized", sqlmock.AnyArg(), "t-1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $3 AND status = $4")).
		WithArgs("authorized", sqlmock.AnyArg(), "t-1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.CompareAndSetStatus(context.Background(), "t-1", model.StatusPending, model.StatusAuthorized))
	err := repo.CompareAndSetStatus(context.Background(), "t-1", model.StatusPending, model.StatusAuthorized)
	assert.ErrorIs(t, err, transaction.ErrStatusMismatch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusMissingRow(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE universal_transactions SET status = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "t-404", model.StatusCancelled)
	assert.ErrorIs(t, err, transaction.ErrNotFound)
}

func TestUpdateDetails(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE universal_transactions SET details = $1")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "t-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateDetails(context.Background(), "t-1", types.JSONText(`{"fraud_score":0.1}`)))
}

func TestFindByID(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM universal_transactions WHERE id = $1")).
		WithArgs("t-1").
		WillReturnRows(sqlmock.NewRows(headerColumns).AddRow(
			"t-1", "org-1", "ORDER", "ORD-20260314-7F3A", now,
			4.86, "USD", "pending", "s-1", []byte(`{"table":4}`), now, now,
		))

	tx, err := repo.FindByID(context.Background(), "t-1")
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, model.StatusPending, tx.Status)
	require.NotNil(t, tx.SourceEntityID)
	assert.Equal(t, "s-1", *tx.SourceEntityID)
	assert.JSONEq(t, `{"table":4}`, string(tx.Details))
}

func TestFindBySourceEntityMissing(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("source_entity_id = $3")).
		WithArgs("org-1", "ORDER", "s-404").
		WillReturnRows(sqlmock.NewRows(headerColumns))

	tx, err := repo.FindBySourceEntity(context.Background(), "org-1", "ORDER", "s-404")
	require.NoError(t, err)
	assert.Nil(t, tx)
}

func TestFindByDateRangeHalfOpen(t *testing.T) {
	repo, mock := newMock(t)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)

	mock.ExpectQuery(regexp.QuoteMeta("transaction_date >= $2 AND transaction_date < $3 AND transaction_type = $4")).
		WithArgs("org-1", start, end, "PAYMENT").
		WillReturnRows(sqlmock.NewRows(headerColumns))

	txs, err := repo.FindByDateRange(context.Background(), "org-1", start, end, "PAYMENT")
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
