package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/metadata"
	metadatadto "github.com/fekuna/omnipos-order-service/internal/metadata/dto"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/payment"
	"github.com/fekuna/omnipos-order-service/internal/payment/dto"
	"github.com/fekuna/omnipos-order-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-order-service/internal/pkg/postgres"
	"github.com/fekuna/omnipos-order-service/internal/transaction"
	txdto "github.com/fekuna/omnipos-order-service/internal/transaction/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultTimeframe = "30d"
	defaultCacheTTL  = 5 * time.Minute
	lockAttempts     = 3
	lockRetryDelay   = 100 * time.Millisecond
	lockTTL          = 30 * time.Second
)

var timeframes = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
}

// Options carries the optional collaborators. A nil Cache disables analytics caching and
// a nil Locker leaves double processing to the pending -> authorized claim.
type Options struct {
	Cache    payment.Cache
	CacheTTL time.Duration
	Locker   payment.Locker
}

type paymentUseCase struct {
	transactions transaction.UseCase
	metadata     metadata.UseCase
	tx           postgres.Transactor
	fraud        *payment.FraudEngine
	gateway      payment.Gateway
	aggregator   payment.AnalyticsAggregator
	cache        payment.Cache
	cacheTTL     time.Duration
	locker       payment.Locker
	logger       logger.ZapLogger
	now          func() time.Time
}

func NewPaymentUseCase(
	transactions transaction.UseCase,
	meta metadata.UseCase,
	tx postgres.Transactor,
	fraud *payment.FraudEngine,
	gateway payment.Gateway,
	aggregator payment.AnalyticsAggregator,
	opts Options,
	log logger.ZapLogger,
) payment.UseCase {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	return &paymentUseCase{
		transactions: transactions,
		metadata:     meta,
		tx:           tx,
		fraud:        fraud,
		gateway:      gateway,
		aggregator:   aggregator,
		cache:        opts.Cache,
		cacheTTL:     opts.CacheTTL,
		locker:       opts.Locker,
		logger:       log,
		now:          time.Now,
	}
}

func (uc *paymentUseCase) CreatePaymentTransaction(ctx context.Context, input *dto.CreatePaymentInput) (*model.PaymentTransaction, error) {
	const op = "payment.CreatePaymentTransaction"

	switch {
	case input.OrganizationID == "":
		return nil, apperror.Validation(op, "organization id is required")
	case input.PaymentMethod == "":
		return nil, apperror.Validation(op, "payment method is required")
	case input.Amount <= 0:
		return nil, apperror.Validation(op, "amount must be positive")
	case input.TaxAmount < 0 || input.TipAmount < 0 || input.DiscountAmount < 0:
		return nil, apperror.Validation(op, "tax, tip and discount cannot be negative")
	}

	b := payment.Split(input.Amount, input.TaxAmount, input.TipAmount, input.DiscountAmount)
	if b.BaseAmount < 0 {
		return nil, apperror.Validation(op, "tax and tip exceed the payment amount")
	}

	details := model.PaymentDetails{
		PaymentMethod:  input.PaymentMethod,
		OrderID:        input.OrderID,
		CustomerID:     input.CustomerID,
		BaseAmount:     b.BaseAmount,
		TaxAmount:      b.TaxAmount,
		TipAmount:      b.TipAmount,
		DiscountAmount: b.DiscountAmount,
		ProcessingFee:  b.ProcessingFee,
		NetAmount:      b.NetAmount,
	}

	var created *model.UniversalTransaction
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = uc.transactions.CreateTransaction(ctx, &txdto.CreateTransactionInput{
			OrganizationID:  input.OrganizationID,
			TransactionType: model.TransactionTypePayment,
			TransactionDate: uc.now(),
			TotalAmount:     input.Amount,
			Currency:        input.Currency,
			Status:          model.StatusPending,
			SourceEntityID:  input.OrderID,
			Details:         details,
			Lines:           paymentLines(input, b),
		})
		if err != nil {
			return err
		}

		_, err = uc.metadata.AppendMetadata(ctx, &metadatadto.WriteMetadataInput{
			OrganizationID: input.OrganizationID,
			SubjectType:    metadata.SubjectTransaction,
			SubjectID:      created.ID,
			MetadataType:   metadata.TypePaymentBreakdown,
			Category:       "payment",
			Key:            "breakdown",
			Value: map[string]any{
				"breakdown": b,
				"fee_rate":  payment.FeeRate,
				"fee_fixed": payment.FeeFixed,
				"compliance": map[string]any{
					"pci_scope":        "tokenized",
					"fraud_check":      "pending",
					"requires_3ds":     false,
					"aml_review_level": "none",
				},
			},
			IsSystemGenerated: true,
			CreatedBy:         input.CreatedBy,
		})
		return err
	})
	if err != nil {
		return nil, uc.fail(op, err)
	}

	uc.logger.Info("payment created",
		zap.String("payment_id", created.ID),
		zap.String("transaction_number", created.TransactionNumber),
		zap.Float64("amount", created.TotalAmount),
		zap.String("method", input.PaymentMethod),
	)
	return uc.decode(op, created)
}

func (uc *paymentUseCase) GetPayment(ctx context.Context, orgID, paymentID string) (*model.PaymentTransaction, error) {
	const op = "payment.GetPayment"
	p, err := uc.load(ctx, op, orgID, paymentID)
	if err != nil {
		return nil, uc.fail(op, err)
	}
	return p, nil
}

func (uc *paymentUseCase) PerformFraudCheck(ctx context.Context, orgID, paymentID, method string) (*model.FraudAssessment, error) {
	const op = "payment.PerformFraudCheck"

	p, err := uc.load(ctx, op, orgID, paymentID)
	if err != nil {
		return nil, uc.fail(op, err)
	}
	var assessment *model.FraudAssessment
	err = uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		assessment, err = uc.assess(ctx, p, method)
		return err
	})
	if err != nil {
		return nil, uc.fail(op, err)
	}
	return assessment, nil
}

func (uc *paymentUseCase) ProcessPayment(ctx context.Context, orgID, paymentID, method string) (*model.PaymentResult, error) {
	const op = "payment.ProcessPayment"

	if uc.locker != nil {
		release, err := uc.lock(ctx, op, "lock:payment:process:"+paymentID)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	p, err := uc.load(ctx, op, orgID, paymentID)
	if err != nil {
		return nil, uc.fail(op, err)
	}
	if p.Status != model.StatusPending {
		return nil, apperror.Conflict(op, "INVALID_TRANSITION", "payment %s is %s and cannot be processed", paymentID, p.Status)
	}
	if method != "" {
		p.PaymentMethod = method
	}

	// Only the request that moves the payment to authorized may score it and reach the
	// gateway.
	if err := uc.claim(ctx, op, p); err != nil {
		return nil, uc.fail(op, err)
	}

	result := &model.PaymentResult{Transaction: p}
	err = uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		result.FraudAssessment, err = uc.assess(ctx, p, p.PaymentMethod)
		return err
	})
	if err != nil {
		uc.unclaim(ctx, p, "fraud check failed")
		return nil, uc.fail(op, err)
	}

	if result.FraudAssessment.Recommendation == model.FraudDecline {
		msg := fmt.Sprintf("payment declined by risk engine (score %.2f)", result.FraudAssessment.RiskScore)
		p.FailureCode, p.FailureReason = "FRAUD_DECLINE", msg
		if err := uc.settle(ctx, p, model.StatusFailed, nil); err != nil {
			return nil, uc.fail(op, err)
		}
		result.ErrorCode, result.Error = p.FailureCode, msg
		uc.logger.Warn("payment declined by fraud check",
			zap.String("payment_id", p.ID),
			zap.Float64("risk_score", result.FraudAssessment.RiskScore),
		)
		return result, apperror.FraudDecline(op, msg)
	}

	resp, err := uc.gateway.Charge(ctx, payment.ChargeRequest{
		OrganizationID: p.OrganizationID,
		TransactionID:  p.ID,
		Method:         p.PaymentMethod,
		Amount:         p.Amount,
		Currency:       p.Currency,
		RiskLevel:      result.FraudAssessment.RiskLevel,
	})
	if err != nil {
		// The charge never reached a decision, so the payment goes back to pending for a retry.
		uc.logger.Error("payment gateway unavailable", zap.String("payment_id", p.ID), zap.Error(err))
		uc.unclaim(ctx, p, "gateway unavailable")
		result.ErrorCode, result.Error = "GATEWAY_UNAVAILABLE", "payment gateway unavailable"
		return result, apperror.Gateway(op, result.ErrorCode, result.Error)
	}
	result.GatewayResponse = resp

	if !resp.Success {
		p.FailureCode, p.FailureReason = resp.ErrorCode, resp.Error
		if err := uc.settle(ctx, p, model.StatusFailed, resp); err != nil {
			return nil, uc.fail(op, err)
		}
		result.ErrorCode, result.Error = resp.ErrorCode, resp.Error
		return result, apperror.Gateway(op, resp.ErrorCode, resp.Error)
	}

	p.GatewayTransactionID = resp.GatewayTransactionID
	p.AuthorizationCode = resp.AuthorizationCode
	result.Recommendations = payment.Advisories(p, result.FraudAssessment)
	if err := uc.settle(ctx, p, model.StatusCompleted, resp); err != nil {
		uc.logger.Error("charged payment could not be settled",
			zap.String("payment_id", p.ID),
			zap.String("gateway_transaction_id", resp.GatewayTransactionID),
			zap.Error(err),
		)
		return nil, uc.fail(op, err)
	}
	if len(result.Recommendations) > 0 {
		uc.advise(ctx, p, result.Recommendations)
	}

	result.Success = true
	uc.logger.Info("payment completed",
		zap.String("payment_id", p.ID),
		zap.String("gateway_transaction_id", resp.GatewayTransactionID),
		zap.String("risk_level", string(result.FraudAssessment.RiskLevel)),
	)
	return result, nil
}

func (uc *paymentUseCase) UpdatePaymentStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.PaymentTransaction, error) {
	const op = "payment.UpdatePaymentStatus"
	if !input.Status.Valid() {
		return nil, apperror.Validation(op, "unknown status %q", input.Status)
	}
	p, err := uc.transition(ctx, op, input)
	if err != nil {
		return nil, uc.fail(op, err)
	}
	return p, nil
}

func (uc *paymentUseCase) RefundPayment(ctx context.Context, orgID, paymentID, reason string) (*model.PaymentTransaction, error) {
	const op = "payment.RefundPayment"
	p, err := uc.transition(ctx, op, &dto.UpdateStatusInput{
		OrganizationID: orgID,
		PaymentID:      paymentID,
		Status:         model.StatusRefunded,
		Reason:         reason,
	})
	if err != nil {
		return nil, uc.fail(op, err)
	}
	return p, nil
}

func (uc *paymentUseCase) CancelPayment(ctx context.Context, orgID, paymentID, reason string) (*model.PaymentTransaction, error) {
	const op = "payment.CancelPayment"
	p, err := uc.transition(ctx, op, &dto.UpdateStatusInput{
		OrganizationID: orgID,
		PaymentID:      paymentID,
		Status:         model.StatusCancelled,
		Reason:         reason,
	})
	if err != nil {
		return nil, uc.fail(op, err)
	}
	return p, nil
}

func (uc *paymentUseCase) GetPaymentAnalytics(ctx context.Context, orgID, timeframe string) (*model.PaymentAnalytics, error) {
	const op = "payment.GetPaymentAnalytics"

	if orgID == "" {
		return nil, apperror.Validation(op, "organization id is required")
	}
	if timeframe == "" {
		timeframe = defaultTimeframe
	}
	span, ok := timeframes[timeframe]
	if !ok {
		return nil, apperror.Validation(op, "timeframe must be one of 24h, 7d, 30d, 90d")
	}

	key := fmt.Sprintf("analytics:payments:%s:%s", orgID, timeframe)
	if uc.cache != nil {
		var cached model.PaymentAnalytics
		err := uc.cache.GetJSON(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			uc.logger.Warn("analytics cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	end := uc.now()
	window := payment.Window{Timeframe: timeframe, Start: end.Add(-span), End: end}
	txs, err := uc.transactions.ListByDateRange(ctx, orgID, window.Start, window.End, model.TransactionTypePayment)
	if err != nil {
		return nil, uc.fail(op, err)
	}

	payments := make([]model.PaymentTransaction, 0, len(txs))
	for i := range txs {
		p, err := model.NewPaymentTransaction(&txs[i])
		if err != nil {
			uc.logger.Warn("skipping undecodable payment", zap.String("transaction_id", txs[i].ID), zap.Error(err))
			continue
		}
		payments = append(payments, *p)
	}

	report := uc.aggregator.Aggregate(window, payments)
	if uc.cache != nil {
		if err := uc.cache.SetJSON(ctx, key, report, uc.cacheTTL); err != nil {
			uc.logger.Warn("analytics cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return report, nil
}

// transition applies a guarded status change and records it.
func (uc *paymentUseCase) transition(ctx context.Context, op string, input *dto.UpdateStatusInput) (*model.PaymentTransaction, error) {
	var out *model.PaymentTransaction
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := uc.load(ctx, op, input.OrganizationID, input.PaymentID)
		if err != nil {
			return err
		}
		if !model.CanTransition(p.Status, input.Status) {
			return apperror.Conflict(op, "INVALID_TRANSITION", "payment %s cannot move from %s to %s", p.ID, p.Status, input.Status)
		}
		from := p.Status
		if _, err := uc.transactions.CompareAndSetStatus(ctx, p.OrganizationID, p.ID, from, input.Status); err != nil {
			return err
		}
		if err := uc.recordStatusChange(ctx, p, from, input.Status, input.Reason, input.ChangedBy); err != nil {
			return err
		}
		p.Status = input.Status
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("payment status changed",
		zap.String("payment_id", out.ID),
		zap.String("status", string(out.Status)),
	)
	return out, nil
}

// claim moves p from pending to authorized in its own transaction. A concurrent request
// that already claimed the payment makes this one fail with INVALID_TRANSITION.
func (uc *paymentUseCase) claim(ctx context.Context, op string, p *model.PaymentTransaction) error {
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := uc.transactions.CompareAndSetStatus(ctx, p.OrganizationID, p.ID, model.StatusPending, model.StatusAuthorized); err != nil {
			if apperror.CodeOf(err) == "STATUS_MISMATCH" {
				return apperror.Conflict(op, "INVALID_TRANSITION", "payment %s is already being processed", p.ID)
			}
			return err
		}
		return uc.recordStatusChange(ctx, p, model.StatusPending, model.StatusAuthorized, "processing", "")
	})
	if err != nil {
		return err
	}
	p.Status = model.StatusAuthorized
	return nil
}

// unclaim returns an authorized payment to pending after the gateway gave no decision.
// Failures are logged only; the payment then stays authorized for manual follow-up.
func (uc *paymentUseCase) unclaim(ctx context.Context, p *model.PaymentTransaction, reason string) {
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := uc.transactions.CompareAndSetStatus(ctx, p.OrganizationID, p.ID, model.StatusAuthorized, model.StatusPending); err != nil {
			return err
		}
		return uc.recordStatusChange(ctx, p, model.StatusAuthorized, model.StatusPending, reason, "")
	})
	if err != nil {
		uc.logger.Error("failed to return payment to pending", zap.String("payment_id", p.ID), zap.Error(err))
		return
	}
	p.Status = model.StatusPending
}

// settle walks a claimed payment to its final status, storing its details and the gateway
// response alongside.
func (uc *paymentUseCase) settle(ctx context.Context, p *model.PaymentTransaction, final model.TransactionStatus, resp *model.GatewayResponse) error {
	path, err := model.TransitionPath(p.Status, final)
	if err != nil {
		return apperror.Conflict("payment.settle", "INVALID_TRANSITION", "%v", err)
	}

	return uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		from := p.Status
		for _, next := range path {
			if _, err := uc.transactions.CompareAndSetStatus(ctx, p.OrganizationID, p.ID, from, next); err != nil {
				return err
			}
			if err := uc.recordStatusChange(ctx, p, from, next, p.FailureReason, ""); err != nil {
				return err
			}
			from = next
		}
		p.Status = final

		if err := uc.transactions.UpdateDetails(ctx, p.OrganizationID, p.ID, p.PaymentDetails); err != nil {
			return err
		}
		if resp == nil {
			return nil
		}
		_, err := uc.metadata.AppendMetadata(ctx, &metadatadto.WriteMetadataInput{
			OrganizationID:    p.OrganizationID,
			SubjectType:       metadata.SubjectTransaction,
			SubjectID:         p.ID,
			MetadataType:      metadata.TypeGatewayResponse,
			Category:          "gateway",
			Key:               "charge",
			Value:             resp,
			IsSystemGenerated: true,
		})
		return err
	})
}

// assess scores p, stores the assessment and copies the score onto the payment details.
func (uc *paymentUseCase) assess(ctx context.Context, p *model.PaymentTransaction, method string) (*model.FraudAssessment, error) {
	if method == "" {
		method = p.PaymentMethod
	}
	assessment := uc.fraud.Assess(p.ID, payment.RiskInput{Amount: p.Amount, Method: method, At: uc.now()})

	p.FraudScore = assessment.RiskScore
	p.RiskLevel = assessment.RiskLevel
	p.ComplianceFlags = complianceFlags(assessment)
	if err := uc.transactions.UpdateDetails(ctx, p.OrganizationID, p.ID, p.PaymentDetails); err != nil {
		return nil, err
	}
	_, err := uc.metadata.UpsertMetadata(ctx, &metadatadto.WriteMetadataInput{
		OrganizationID:    p.OrganizationID,
		SubjectType:       metadata.SubjectTransaction,
		SubjectID:         p.ID,
		MetadataType:      metadata.TypeFraudAssessment,
		Category:          "risk",
		Key:               "assessment",
		Value:             assessment,
		IsSystemGenerated: true,
	})
	if err != nil {
		return nil, err
	}
	return assessment, nil
}

// advise stores settlement advisories. Failures are logged only.
func (uc *paymentUseCase) advise(ctx context.Context, p *model.PaymentTransaction, recs []model.PaymentRecommendation) {
	_, err := uc.metadata.AppendMetadata(ctx, &metadatadto.WriteMetadataInput{
		OrganizationID:    p.OrganizationID,
		SubjectType:       metadata.SubjectTransaction,
		SubjectID:         p.ID,
		MetadataType:      metadata.TypePaymentAdvisories,
		Category:          "recommendations",
		Key:               "settlement",
		Value:             recs,
		IsSystemGenerated: true,
	})
	if err != nil {
		uc.logger.Warn("failed to store payment advisories", zap.String("payment_id", p.ID), zap.Error(err))
	}
}

func (uc *paymentUseCase) recordStatusChange(ctx context.Context, p *model.PaymentTransaction, from, to model.TransactionStatus, reason, changedBy string) error {
	_, err := uc.metadata.AppendMetadata(ctx, &metadatadto.WriteMetadataInput{
		OrganizationID: p.OrganizationID,
		SubjectType:    metadata.SubjectTransaction,
		SubjectID:      p.ID,
		MetadataType:   metadata.TypeStatusChange,
		Category:       "status",
		Key:            string(to),
		Value: map[string]any{
			"from":       from,
			"to":         to,
			"reason":     reason,
			"changed_at": uc.now(),
		},
		IsSystemGenerated: changedBy == "",
		CreatedBy:         changedBy,
	})
	return err
}

func (uc *paymentUseCase) load(ctx context.Context, op, orgID, paymentID string) (*model.PaymentTransaction, error) {
	tx, err := uc.transactions.GetTransaction(ctx, orgID, paymentID)
	if err != nil {
		return nil, err
	}
	if tx.TransactionType != model.TransactionTypePayment {
		return nil, apperror.NotFound(op, "payment %s not found", paymentID)
	}
	return uc.decode(op, tx)
}

func (uc *paymentUseCase) decode(op string, tx *model.UniversalTransaction) (*model.PaymentTransaction, error) {
	p, err := model.NewPaymentTransaction(tx)
	if err != nil {
		return nil, apperror.Persistence(op, err)
	}
	return p, nil
}

func (uc *paymentUseCase) lock(ctx context.Context, op, key string) (func(), error) {
	value := uuid.New().String()
	for i := 0; i < lockAttempts; i++ {
		ok, err := uc.locker.AcquireLock(ctx, key, value, lockTTL)
		if err != nil {
			uc.logger.Warn("payment lock unavailable, continuing without it", zap.String("key", key), zap.Error(err))
			return func() {}, nil
		}
		if ok {
			return func() {
				if err := uc.locker.ReleaseLock(context.WithoutCancel(ctx), key, value); err != nil {
					uc.logger.Warn("failed to release payment lock", zap.String("key", key), zap.Error(err))
				}
			}, nil
		}
		time.Sleep(lockRetryDelay)
	}
	return nil, apperror.Conflict(op, "PAYMENT_LOCKED", "payment is being processed by another request, try again")
}

func (uc *paymentUseCase) fail(op string, err error) error {
	wrapped := apperror.Wrap(op, err)
	if apperror.KindOf(wrapped) == apperror.KindPersistence {
		uc.logger.Error("payment workflow failed", zap.String("op", op), zap.Error(err))
	}
	return wrapped
}

func complianceFlags(a *model.FraudAssessment) []string {
	var flags []string
	switch a.RiskLevel {
	case model.RiskMedium:
		flags = append(flags, "manual_review")
	case model.RiskHigh:
		flags = append(flags, "manual_review", "step_up_auth")
	case model.RiskCritical:
		flags = append(flags, "blocked")
	}
	return flags
}

func paymentLines(input *dto.CreatePaymentInput, b payment.Breakdown) []txdto.LineInput {
	lines := []txdto.LineInput{{
		LineEntityID: input.OrderID,
		LineType:     model.LineTypeItem,
		Description:  "Payment base amount",
		Quantity:     1,
		UnitPrice:    b.BaseAmount,
		LineAmount:   b.BaseAmount,
	}, {
		LineType:    model.LineTypeTax,
		Description: "Tax",
		Quantity:    1,
		UnitPrice:   b.TaxAmount,
		LineAmount:  b.TaxAmount,
	}}
	if b.TipAmount > 0 {
		lines = append(lines, txdto.LineInput{
			LineType: model.LineTypeTip, Description: "Tip", Quantity: 1,
			UnitPrice: b.TipAmount, LineAmount: b.TipAmount,
		})
	}
	if b.DiscountAmount > 0 {
		lines = append(lines, txdto.LineInput{
			LineType: model.LineTypeDiscount, Description: "Discount", Quantity: 1,
			UnitPrice: -b.DiscountAmount, LineAmount: -b.DiscountAmount,
		})
	}
	lines = append(lines, txdto.LineInput{
		LineType:    model.LineTypeFee,
		Description: fmt.Sprintf("Processing fee (%.1f%% + %.2f)", payment.FeeRate*100, payment.FeeFixed),
		Quantity:    1,
		UnitPrice:   -b.ProcessingFee,
		LineAmount:  -b.ProcessingFee,
	})
	for i := range lines {
		lines[i].LineOrder = i + 1
	}
	return lines
}
