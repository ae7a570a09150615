package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-order-service/internal/pkg/postgres"
	"github.com/fekuna/omnipos-order-service/internal/transaction"
	"github.com/fekuna/omnipos-order-service/internal/transaction/dto"
	"github.com/fekuna/omnipos-order-service/internal/transaction/realtime"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"
)

const (
	maxNumberAttempts = 5
	defaultListLimit  = 50
	maxListLimit      = 500
	defaultCurrency   = "USD"
)

var numberPrefixes = map[string]string{
	model.TransactionTypeOrder:   "ORD",
	model.TransactionTypePayment: "PAY",
}

type transactionUseCase struct {
	repo      transaction.Repository
	tx        postgres.Transactor
	publisher realtime.Publisher
	logger    logger.ZapLogger
	now       func() time.Time
}

func NewTransactionUseCase(repo transaction.Repository, tx postgres.Transactor, publisher realtime.Publisher, log logger.ZapLogger) transaction.UseCase {
	return &transactionUseCase{
		repo:      repo,
		tx:        tx,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

func (uc *transactionUseCase) CreateTransaction(ctx context.Context, input *dto.CreateTransactionInput) (*model.UniversalTransaction, error) {
	const op = "transaction.CreateTransaction"

	if input.OrganizationID == "" {
		return nil, apperror.Validation(op, "organization id is required")
	}
	if input.TransactionType == "" {
		return nil, apperror.Validation(op, "transaction type is required")
	}
	status := input.Status
	if status == "" {
		status = model.StatusPending
	}
	if !status.Valid() {
		return nil, apperror.Validation(op, "unknown status %q", status)
	}
	details, err := encodeDetails(input.Details)
	if err != nil {
		return nil, apperror.Validation(op, "details: %v", err)
	}

	now := uc.now()
	date := input.TransactionDate
	if date.IsZero() {
		date = now
	}
	currency := input.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	header := &model.UniversalTransaction{
		BaseModel:       model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OrganizationID:  input.OrganizationID,
		TransactionType: input.TransactionType,
		TransactionDate: date,
		TotalAmount:     input.TotalAmount,
		Currency:        strings.ToUpper(currency),
		Status:          status,
		Details:         details,
	}
	if input.SourceEntityID != "" {
		source := input.SourceEntityID
		header.SourceEntityID = &source
	}

	lines, err := uc.buildLines(op, header.ID, input.Lines, nil)
	if err != nil {
		return nil, err
	}

	err = uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.insertHeader(ctx, header, input.TransactionNumber); err != nil {
			return err
		}
		if len(lines) > 0 {
			if err := uc.repo.AppendLines(ctx, lines); err != nil {
				return err
			}
		}
		uc.publishAfterCommit(ctx, realtime.EventInsert, header)
		return nil
	})
	if err != nil {
		return nil, uc.fail(op, err)
	}

	header.Lines = lines
	return header, nil
}

// insertHeader writes the header, generating numbers until one is free. An explicit
// number is tried once.
func (uc *transactionUseCase) insertHeader(ctx context.Context, header *model.UniversalTransaction, number string) error {
	const op = "transaction.CreateTransaction"

	if number != "" {
		header.TransactionNumber = number
		err := uc.repo.CreateHeader(ctx, header)
		if errors.Is(err, transaction.ErrDuplicateNumber) {
			return apperror.Conflict(op, "DUPLICATE_NUMBER", "transaction number %s already exists", number)
		}
		return duplicateSource(op, header, err)
	}

	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		header.TransactionNumber = GenerateNumber(header.TransactionType, header.TransactionDate)
		err := uc.repo.CreateHeader(ctx, header)
		if err == nil {
			return nil
		}
		if !errors.Is(err, transaction.ErrDuplicateNumber) {
			return duplicateSource(op, header, err)
		}
		uc.logger.Warn("transaction number collision, retrying",
			zap.String("number", header.TransactionNumber),
			zap.Int("attempt", attempt),
		)
	}
	return apperror.Conflict(op, "DUPLICATE_NUMBER", "could not allocate a transaction number after %d attempts", maxNumberAttempts)
}

func duplicateSource(op string, header *model.UniversalTransaction, err error) error {
	if errors.Is(err, transaction.ErrDuplicateSource) && header.SourceEntityID != nil {
		return apperror.Conflict(op, "DUPLICATE_SOURCE", "source %s already has a %s transaction", *header.SourceEntityID, header.TransactionType)
	}
	return err
}

// GenerateNumber builds a display number such as ORD-20260314-7F3A.
func GenerateNumber(txType string, date time.Time) string {
	prefix, ok := numberPrefixes[txType]
	if !ok {
		prefix = strings.ToUpper(txType)
		if len(prefix) > 3 {
			prefix = prefix[:3]
		}
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:4])
	return fmt.Sprintf("%s-%s-%s", prefix, date.UTC().Format("20060102"), suffix)
}

func (uc *transactionUseCase) AppendLines(ctx context.Context, orgID, transactionID string, inputs []dto.LineInput) ([]model.TransactionLine, error) {
	const op = "transaction.AppendLines"

	var lines []model.TransactionLine
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		header, err := uc.load(ctx, op, orgID, transactionID)
		if err != nil {
			return err
		}
		existing, err := uc.repo.FindLines(ctx, header.ID)
		if err != nil {
			return err
		}
		lines, err = uc.buildLines(op, header.ID, inputs, existing)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		return uc.repo.AppendLines(ctx, lines)
	})
	if err != nil {
		return nil, uc.fail(op, err)
	}
	return lines, nil
}

// buildLines converts inputs into rows. Line order is supplied by the caller and must not
// repeat within the batch or against existing lines.
func (uc *transactionUseCase) buildLines(op, transactionID string, inputs []dto.LineInput, existing []model.TransactionLine) ([]model.TransactionLine, error) {
	taken := make(map[int]bool, len(existing)+len(inputs))
	for _, line := range existing {
		taken[line.LineOrder] = true
	}

	now := uc.now()
	lines := make([]model.TransactionLine, 0, len(inputs))
	for _, in := range inputs {
		if in.LineOrder < 1 {
			return nil, apperror.Validation(op, "line order must be positive")
		}
		if taken[in.LineOrder] {
			return nil, apperror.Validation(op, "line order %d is already used", in.LineOrder)
		}
		taken[in.LineOrder] = true

		lineType := in.LineType
		if lineType == "" {
			lineType = model.LineTypeItem
		}
		line := model.TransactionLine{
			ID:            uuid.New().String(),
			TransactionID: transactionID,
			LineType:      lineType,
			Description:   in.Description,
			Quantity:      in.Quantity,
			UnitPrice:     in.UnitPrice,
			LineAmount:    in.LineAmount,
			LineOrder:     in.LineOrder,
			CreatedAt:     now,
		}
		if in.LineEntityID != "" {
			entityID := in.LineEntityID
			line.LineEntityID = &entityID
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (uc *transactionUseCase) UpdateStatus(ctx context.Context, orgID, id string, status model.TransactionStatus) (*model.UniversalTransaction, error) {
	const op = "transaction.UpdateStatus"
	if !status.Valid() {
		return nil, apperror.Validation(op, "unknown status %q", status)
	}

	var header *model.UniversalTransaction
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		header, err = uc.load(ctx, op, orgID, id)
		if err != nil {
			return err
		}
		if err := uc.repo.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		header.Status = status
		header.UpdatedAt = uc.now()
		uc.publishAfterCommit(ctx, realtime.EventUpdate, header)
		return nil
	})
	if err != nil {
		return nil, uc.fail(op, err)
	}
	return header, nil
}

func (uc *transactionUseCase) CompareAndSetStatus(ctx context.Context, orgID, id string, expected, next model.TransactionStatus) (*model.UniversalTransaction, error) {
	const op = "transaction.CompareAndSetStatus"
	if !expected.Valid() || !next.Valid() {
		return nil, apperror.Validation(op, "unknown status %q -> %q", expected, next)
	}

	var header *model.UniversalTransaction
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		header, err = uc.load(ctx, op, orgID, id)
		if err != nil {
			return err
		}
		if err := uc.repo.CompareAndSetStatus(ctx, id, expected, next); err != nil {
			if errors.Is(err, transaction.ErrStatusMismatch) {
				return apperror.Conflict(op, "STATUS_MISMATCH", "transaction %s is not %s", id, expected)
			}
			return err
		}
		header.Status = next
		header.UpdatedAt = uc.now()
		uc.publishAfterCommit(ctx, realtime.EventUpdate, header)
		return nil
	})
	if err != nil {
		return nil, uc.fail(op, err)
	}
	return header, nil
}

func (uc *transactionUseCase) UpdateDetails(ctx context.Context, orgID, id string, details any) error {
	const op = "transaction.UpdateDetails"
	encoded, err := encodeDetails(details)
	if err != nil {
		return apperror.Validation(op, "details: %v", err)
	}
	err = uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := uc.load(ctx, op, orgID, id); err != nil {
			return err
		}
		return uc.repo.UpdateDetails(ctx, id, encoded)
	})
	if err != nil {
		return uc.fail(op, err)
	}
	return nil
}

func (uc *transactionUseCase) GetTransaction(ctx context.Context, orgID, id string) (*model.UniversalTransaction, error) {
	const op = "transaction.GetTransaction"
	header, err := uc.load(ctx, op, orgID, id)
	if err != nil {
		return nil, uc.fail(op, err)
	}
	lines, err := uc.repo.FindLines(ctx, header.ID)
	if err != nil {
		return nil, uc.fail(op, err)
	}
	header.Lines = lines
	return header, nil
}

func (uc *transactionUseCase) FindBySourceEntity(ctx context.Context, orgID, txType, sourceEntityID string) (*model.UniversalTransaction, error) {
	const op = "transaction.FindBySourceEntity"
	header, err := uc.repo.FindBySourceEntity(ctx, orgID, txType, sourceEntityID)
	if err != nil {
		return nil, uc.fail(op, err)
	}
	if header == nil {
		return nil, apperror.NotFound(op, "no %s transaction for %s", txType, sourceEntityID)
	}
	lines, err := uc.repo.FindLines(ctx, header.ID)
	if err != nil {
		return nil, uc.fail(op, err)
	}
	header.Lines = lines
	return header, nil
}

func (uc *transactionUseCase) ListByType(ctx context.Context, orgID, txType string, limit int) ([]model.UniversalTransaction, error) {
	const op = "transaction.ListByType"
	if orgID == "" || txType == "" {
		return nil, apperror.Validation(op, "organization id and transaction type are required")
	}
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	txs, err := uc.repo.FindByType(ctx, orgID, txType, limit)
	if err != nil {
		return nil, uc.fail(op, err)
	}
	return txs, nil
}

func (uc *transactionUseCase) ListByDateRange(ctx context.Context, orgID string, start, end time.Time, txType string) ([]model.UniversalTransaction, error) {
	const op = "transaction.ListByDateRange"
	if orgID == "" {
		return nil, apperror.Validation(op, "organization id is required")
	}
	if !end.After(start) {
		return nil, apperror.Validation(op, "end must be after start")
	}
	txs, err := uc.repo.FindByDateRange(ctx, orgID, start, end, txType)
	if err != nil {
		return nil, uc.fail(op, err)
	}
	return txs, nil
}

func (uc *transactionUseCase) load(ctx context.Context, op, orgID, id string) (*model.UniversalTransaction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.NotFound(op, "transaction %s not found", id)
	}
	header, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if header == nil || (orgID != "" && header.OrganizationID != orgID) {
		return nil, apperror.NotFound(op, "transaction %s not found", id)
	}
	return header, nil
}

func (uc *transactionUseCase) publishAfterCommit(ctx context.Context, eventType realtime.EventType, header *model.UniversalTransaction) {
	if uc.publisher == nil {
		return
	}
	evt := realtime.NewEvent(eventType, header)
	publishCtx := context.WithoutCancel(ctx)
	postgres.AfterCommit(ctx, func() {
		if err := uc.publisher.Publish(publishCtx, evt); err != nil {
			uc.logger.Error("failed to publish transaction event",
				zap.String("transaction_id", evt.TransactionID),
				zap.Error(err),
			)
		}
	})
}

func (uc *transactionUseCase) fail(op string, err error) error {
	if errors.Is(err, transaction.ErrNotFound) {
		return apperror.NotFound(op, "transaction not found")
	}
	wrapped := apperror.Wrap(op, err)
	if apperror.KindOf(wrapped) == apperror.KindPersistence {
		uc.logger.Error("transaction store failure", zap.String("op", op), zap.Error(err))
	}
	return wrapped
}

func encodeDetails(v any) (types.JSONText, error) {
	switch val := v.(type) {
	case nil:
		return types.JSONText("{}"), nil
	case types.JSONText:
		return val, nil
	case json.RawMessage:
		return types.JSONText(val), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return types.JSONText(data), nil
}
