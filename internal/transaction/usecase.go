package transaction

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/transaction/dto"
)

type UseCase interface {
	// CreateTransaction writes a header and its lines. A blank number is generated as
	// <PREFIX>-<YYYYMMDD>-<XXXX> and retried on collision.
	CreateTransaction(ctx context.Context, input *dto.CreateTransactionInput) (*model.UniversalTransaction, error)
	AppendLines(ctx context.Context, orgID, transactionID string, lines []dto.LineInput) ([]model.TransactionLine, error)
	UpdateStatus(ctx context.Context, orgID, id string, status model.TransactionStatus) (*model.UniversalTransaction, error)
	CompareAndSetStatus(ctx context.Context, orgID, id string, expected, next model.TransactionStatus) (*model.UniversalTransaction, error)
	UpdateDetails(ctx context.Context, orgID, id string, details any) error

	GetTransaction(ctx context.Context, orgID, id string) (*model.UniversalTransaction, error)
	FindBySourceEntity(ctx context.Context, orgID, txType, sourceEntityID string) (*model.UniversalTransaction, error)
	ListByType(ctx context.Context, orgID, txType string, limit int) ([]model.UniversalTransaction, error)
	ListByDateRange(ctx context.Context, orgID string, start, end time.Time, txType string) ([]model.UniversalTransaction, error)
}
