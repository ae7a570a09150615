package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/jmoiron/sqlx/types"
)

var (
	// ErrDuplicateNumber means the transaction number is already taken in the organization.
	ErrDuplicateNumber = errors.New("transaction number already exists")
	// ErrDuplicateSource means the source entity already produced an ORDER transaction.
	ErrDuplicateSource = errors.New("source entity already has a transaction")
	// ErrStatusMismatch means a conditional status update found a different current status.
	ErrStatusMismatch = errors.New("transaction status mismatch")
	ErrNotFound       = errors.New("transaction not found")
)

type Repository interface {
	CreateHeader(ctx context.Context, tx *model.UniversalTransaction) error
	AppendLines(ctx context.Context, lines []model.TransactionLine) error
	// UpdateStatus writes status unconditionally. Transition rules belong to the workflows.
	UpdateStatus(ctx context.Context, id string, status model.TransactionStatus) error
	CompareAndSetStatus(ctx context.Context, id string, expected, next model.TransactionStatus) error
	UpdateDetails(ctx context.Context, id string, details types.JSONText) error

	FindByID(ctx context.Context, id string) (*model.UniversalTransaction, error)
	FindLines(ctx context.Context, transactionID string) ([]model.TransactionLine, error)
	FindBySourceEntity(ctx context.Context, orgID, txType, sourceEntityID string) (*model.UniversalTransaction, error)
	FindByType(ctx context.Context, orgID, txType string, limit int) ([]model.UniversalTransaction, error)
	// FindByDateRange covers [start, end). An empty txType matches every type.
	FindByDateRange(ctx context.Context, orgID string, start, end time.Time, txType string) ([]model.UniversalTransaction, error)
}
