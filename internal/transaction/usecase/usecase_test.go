package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-order-service/internal/storetest"
	"github.com/fekuna/omnipos-order-service/internal/transaction/dto"
	"github.com/fekuna/omnipos-order-service/internal/transaction/realtime"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const org = "org-1"

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt realtime.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) Events() []realtime.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]realtime.Event(nil), p.events...)
}

type fixture struct {
	uc   *transactionUseCase
	repo *storetest.TransactionRepo
	pub  *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := storetest.NewTransactionRepo()
	pub := &recordingPublisher{}
	uc := NewTransactionUseCase(repo, &storetest.Transactor{}, pub, logger.NewNop()).(*transactionUseCase)
	return &fixture{uc: uc, repo: repo, pub: pub}
}

func (f *fixture) create(t *testing.T, in *dto.CreateTransactionInput) *model.UniversalTransaction {
	t.Helper()
	tx, err := f.uc.CreateTransaction(context.Background(), in)
	require.NoError(t, err)
	return tx
}

func orderInput() *dto.CreateTransactionInput {
	return &dto.CreateTransactionInput{
		OrganizationID:  org,
		TransactionType: model.TransactionTypeOrder,
		TotalAmount:     4.86,
		Currency:        "usd",
		SourceEntityID:  uuid.New().String(),
		Details:         map[string]any{"table": 4},
		Lines: []dto.LineInput{
			{LineType: model.LineTypeItem, Description: "Latte", Quantity: 1, UnitPrice: 4.5, LineAmount: 4.5, LineOrder: 1},
			{LineType: model.LineTypeTax, Description: "Tax", Quantity: 1, UnitPrice: 0.36, LineAmount: 0.36, LineOrder: 2},
		},
	}
}

func TestCreateTransactionDefaults(t *testing.T) {
	f := newFixture(t)

	tx := f.create(t, orderInput())

	assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{4}$`, tx.TransactionNumber)
	assert.Equal(t, model.StatusPending, tx.Status)
	assert.Equal(t, "USD", tx.Currency)
	assert.False(t, tx.TransactionDate.IsZero())
	assert.JSONEq(t, `{"table":4}`, string(tx.Details))
	require.Len(t, tx.Lines, 2)
	assert.Equal(t, tx.ID, tx.Lines[0].TransactionID)

	events := f.pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, realtime.EventInsert, events[0].Type)
	assert.Equal(t, tx.ID, events[0].TransactionID)
}

func TestCreateTransactionRetriesNumberCollisions(t *testing.T) {
	f := newFixture(t)
	f.repo.Collisions = 2

	tx := f.create(t, orderInput())
	assert.NotEmpty(t, tx.TransactionNumber)

	f.repo.Collisions = maxNumberAttempts
	_, err := f.uc.CreateTransaction(context.Background(), orderInput())
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, "DUPLICATE_NUMBER", apperror.CodeOf(err))
}

func TestCreateTransactionExplicitNumberIsNotRetried(t *testing.T) {
	f := newFixture(t)

	in := orderInput()
	in.TransactionNumber = "ORD-1"
	f.create(t, in)

	dup := orderInput()
	dup.TransactionNumber = "ORD-1"
	_, err := f.uc.CreateTransaction(context.Background(), dup)
	assert.Equal(t, "DUPLICATE_NUMBER", apperror.CodeOf(err))
}

func TestCreateTransactionSourceConflictIsNotRetried(t *testing.T) {
	f := newFixture(t)

	in := orderInput()
	f.create(t, in)

	dup := orderInput()
	dup.SourceEntityID = in.SourceEntityID
	_, err := f.uc.CreateTransaction(context.Background(), dup)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, "DUPLICATE_SOURCE", apperror.CodeOf(err))
	assert.Equal(t, 1, f.repo.Count(model.TransactionTypeOrder))
}

func TestCreateTransactionValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(*dto.CreateTransactionInput)
	}{
		{"missing organization", func(in *dto.CreateTransactionInput) { in.OrganizationID = "" }},
		{"missing type", func(in *dto.CreateTransactionInput) { in.TransactionType = "" }},
		{"unknown status", func(in *dto.CreateTransactionInput) { in.Status = "shipped" }},
		{"zero line order", func(in *dto.CreateTransactionInput) { in.Lines[0].LineOrder = 0 }},
		{"repeated line order", func(in *dto.CreateTransactionInput) { in.Lines[1].LineOrder = 1 }},
		{"unencodable details", func(in *dto.CreateTransactionInput) { in.Details = make(chan int) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := orderInput()
			tt.mutate(in)
			_, err := f.uc.CreateTransaction(context.Background(), in)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
	assert.Empty(t, f.pub.Events())
}

func TestGenerateNumberPrefixes(t *testing.T) {
	date := time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)

	assert.Regexp(t, `^PAY-20260314-`, GenerateNumber(model.TransactionTypePayment, date))
	assert.Regexp(t, `^REF-20260314-`, GenerateNumber("refund", date))
	assert.Regexp(t, `^GC-20260314-`, GenerateNumber("gc", date))
}

func TestAppendLinesContinuesOrdering(t *testing.T) {
	f := newFixture(t)
	tx := f.create(t, orderInput())

	lines, err := f.uc.AppendLines(context.Background(), org, tx.ID, []dto.LineInput{
		{LineType: model.LineTypeTip, Description: "Tip", LineAmount: 1, LineOrder: 3},
	})
	require.NoError(t, err)
	require.Len(t, lines, 1)

	_, err = f.uc.AppendLines(context.Background(), org, tx.ID, []dto.LineInput{{LineOrder: 2}})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	got, err := f.uc.GetTransaction(context.Background(), org, tx.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{got.Lines[0].LineOrder, got.Lines[1].LineOrder, got.Lines[2].LineOrder})
}

func TestCompareAndSetStatus(t *testing.T) {
	f := newFixture(t)
	tx := f.create(t, orderInput())

	updated, err := f.uc.CompareAndSetStatus(context.Background(), org, tx.ID, model.StatusPending, model.StatusAuthorized)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAuthorized, updated.Status)

	_, err = f.uc.CompareAndSetStatus(context.Background(), org, tx.ID, model.StatusPending, model.StatusFailed)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, "STATUS_MISMATCH", apperror.CodeOf(err))

	events := f.pub.Events()
	require.Len(t, events, 2)
	assert.Equal(t, realtime.EventUpdate, events[1].Type)
	assert.Equal(t, model.StatusAuthorized, events[1].Status)
}

func TestConcurrentCompareAndSetHasOneWinner(t *testing.T) {
	f := newFixture(t)
	tx := f.create(t, orderInput())

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.CompareAndSetStatus(context.Background(), org, tx.ID, model.StatusPending, model.StatusCancelled)
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestUpdateStatusIsUnconditional(t *testing.T) {
	f := newFixture(t)
	tx := f.create(t, orderInput())

	updated, err := f.uc.UpdateStatus(context.Background(), org, tx.ID, model.StatusRefunded)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRefunded, updated.Status)

	_, err = f.uc.UpdateStatus(context.Background(), org, tx.ID, "lost")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUpdateDetails(t *testing.T) {
	f := newFixture(t)
	tx := f.create(t, orderInput())

	require.NoError(t, f.uc.UpdateDetails(context.Background(), org, tx.ID, map[string]any{"fraud_score": 0.12}))
	got, err := f.uc.GetTransaction(context.Background(), org, tx.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fraud_score":0.12}`, string(got.Details))

	err = f.uc.UpdateDetails(context.Background(), "org-2", tx.ID, nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestLookups(t *testing.T) {
	f := newFixture(t)
	in := orderInput()
	tx := f.create(t, in)

	found, err := f.uc.FindBySourceEntity(context.Background(), org, model.TransactionTypeOrder, in.SourceEntityID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, found.ID)
	assert.Len(t, found.Lines, 2)

	_, err = f.uc.FindBySourceEntity(context.Background(), org, model.TransactionTypeOrder, uuid.New().String())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.uc.GetTransaction(context.Background(), "org-2", tx.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	list, err := f.uc.ListByType(context.Background(), org, model.TransactionTypeOrder, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.uc.ListByType(context.Background(), org, "", 10)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestListByDateRangeIsHalfOpen(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	for _, date := range []time.Time{start, start.Add(12 * time.Hour), end} {
		in := orderInput()
		in.TransactionDate = date
		f.create(t, in)
	}

	list, err := f.uc.ListByDateRange(context.Background(), org, start, end, model.TransactionTypeOrder)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = f.uc.ListByDateRange(context.Background(), org, end, start, "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")

	tx := f.create(t, orderInput())
	assert.NotEmpty(t, tx.ID)
}

func TestStoreFailureIsPersistenceError(t *testing.T) {
	f := newFixture(t)
	f.repo.Fail = storetest.Failures{"CreateHeader": errors.New("connection refused")}

	_, err := f.uc.CreateTransaction(context.Background(), orderInput())
	assert.ErrorIs(t, err, apperror.ErrPersistence)
}
