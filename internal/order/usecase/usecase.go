package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/entity"
	entitydto "github.com/fekuna/omnipos-order-service/internal/entity/dto"
	"github.com/fekuna/omnipos-order-service/internal/metadata"
	metadatadto "github.com/fekuna/omnipos-order-service/internal/metadata/dto"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/order"
	"github.com/fekuna/omnipos-order-service/internal/order/dto"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-order-service/internal/pkg/postgres"
	"github.com/fekuna/omnipos-order-service/internal/transaction"
	txdto "github.com/fekuna/omnipos-order-service/internal/transaction/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	lockAttempts     = 3
	lockRetryDelay   = 100 * time.Millisecond
	defaultLockTTL   = 10 * time.Second
	defaultCurrency  = "USD"
	modifierPrefix   = "modification."
	maxRecommendable = 3
)

type orderUseCase struct {
	entities     entity.UseCase
	metadata     metadata.UseCase
	transactions transaction.UseCase
	tx           postgres.Transactor
	recommender  order.RecommendationEngine
	locker       order.Locker
	lockTTL      time.Duration
	logger       logger.ZapLogger
	now          func() time.Time
}

// NewOrderUseCase wires the order workflow. locker may be nil, in which case confirmation
// relies on the session status compare-and-set alone.
func NewOrderUseCase(
	entities entity.UseCase,
	meta metadata.UseCase,
	transactions transaction.UseCase,
	tx postgres.Transactor,
	recommender order.RecommendationEngine,
	locker order.Locker,
	lockTTL time.Duration,
	log logger.ZapLogger,
) order.UseCase {
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	return &orderUseCase{
		entities:     entities,
		metadata:     meta,
		transactions: transactions,
		tx:           tx,
		recommender:  recommender,
		locker:       locker,
		lockTTL:      lockTTL,
		logger:       log,
		now:          time.Now,
	}
}

func (uc *orderUseCase) CreateOrderSession(ctx context.Context, input *dto.CreateSessionInput) (*model.OrderSession, error) {
	const op = "order.CreateOrderSession"

	now := uc.now()
	code := sessionCode(now)

	var session *model.OrderSession
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		e, err := uc.entities.CreateEntity(ctx, &entitydto.CreateEntityInput{
			OrganizationID: input.OrganizationID,
			EntityType:     model.EntityTypeOrderSession,
			EntityName:     "Order " + code,
			EntityCode:     code,
		})
		if err != nil {
			return err
		}

		attrs := []entitydto.AttributeInput{
			{FieldName: order.AttrStatus, Value: model.Text(string(model.SessionActive))},
			{FieldName: order.AttrSubtotal, Value: model.Number(0)},
			{FieldName: order.AttrTaxAmount, Value: model.Number(0)},
			{FieldName: order.AttrDiscountAmount, Value: model.Number(0)},
			{FieldName: order.AttrTotalAmount, Value: model.Number(0)},
			{FieldName: order.AttrLoyaltyPoints, Value: model.Number(0)},
			{FieldName: order.AttrLineCounter, Value: model.Number(0)},
		}
		optional := []struct {
			field string
			value string
			id    bool
		}{
			{order.AttrCustomerID, input.CustomerID, true},
			{order.AttrStaffID, input.StaffID, true},
			{order.AttrSource, input.Source, false},
			{order.AttrServiceType, input.ServiceType, false},
			{order.AttrTableNumber, input.TableNumber, false},
		}
		for _, o := range optional {
			if o.value == "" {
				continue
			}
			value := model.Text(o.value)
			if o.id {
				value = idValue(o.value)
			}
			attrs = append(attrs, entitydto.AttributeInput{FieldName: o.field, Value: value})
		}
		if err := uc.entities.SetAttributes(ctx, input.OrganizationID, e.ID, attrs); err != nil {
			return err
		}

		_, err = uc.metadata.AppendMetadata(ctx, &metadatadto.WriteMetadataInput{
			OrganizationID: input.OrganizationID,
			SubjectType:    model.EntityTypeOrderSession,
			SubjectID:      e.ID,
			MetadataType:   metadata.TypeSessionConfig,
			Category:       "session",
			Key:            "configuration",
			Value: map[string]any{
				"source":       input.Source,
				"service_type": input.ServiceType,
				"table_number": input.TableNumber,
				"customer_id":  input.CustomerID,
				"staff_id":     input.StaffID,
				"preferences":  input.Preferences,
				"tax_rate":     order.TaxRate,
			},
			IsSystemGenerated: true,
			CreatedBy:         input.StaffID,
		})
		if err != nil {
			return err
		}

		session = &model.OrderSession{
			ID:             e.ID,
			OrganizationID: e.OrganizationID,
			SessionCode:    e.EntityCode,
			CustomerID:     input.CustomerID,
			StaffID:        input.StaffID,
			Status:         model.SessionActive,
			Source:         input.Source,
			ServiceType:    input.ServiceType,
			TableNumber:    input.TableNumber,
			Items:          []model.OrderItem{},
			CreatedAt:      e.CreatedAt,
			UpdatedAt:      e.UpdatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, uc.fail(op, err)
	}

	uc.logger.Info("order session created",
		zap.String("session_id", session.ID),
		zap.String("organization_id", session.OrganizationID),
	)
	return session, nil
}

func (uc *orderUseCase) GetOrderSession(ctx context.Context, orgID, sessionID string) (*model.OrderSession, error) {
	const op = "order.GetOrderSession"

	e, attrs, err := uc.loadSession(ctx, op, orgID, sessionID)
	if err != nil {
		return nil, uc.fail(op, err)
	}
	items, err := uc.loadItems(ctx, orgID, sessionID)
	if err != nil {
		return nil, uc.fail(op, err)
	}
	return projectSession(e, attrs, items), nil
}

func (uc *orderUseCase) AddItemToOrder(ctx context.Context, input *dto.AddItemInput) (*model.OrderItem, error) {
	const op = "order.AddItemToOrder"

	switch {
	case input.SessionID == "":
		return nil, apperror.Validation(op, "session id is required")
	case input.ProductID == "":
		return nil, apperror.Validation(op, "product id is required")
	case input.Quantity < 1:
		return nil, apperror.Validation(op, "quantity must be at least 1")
	}

	var item *model.OrderItem
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		session, sessionAttrs, err := uc.loadSession(ctx, op, input.OrganizationID, input.SessionID)
		if err != nil {
			return err
		}
		if status := model.SessionStatus(sessionAttrs.Text(order.AttrStatus)); status != model.SessionActive {
			return apperror.Conflict(op, "SESSION_NOT_ACTIVE", "session %s is %s", input.SessionID, status)
		}
		active, err := uc.holdActive(ctx, input.SessionID)
		if err != nil {
			return err
		}
		if !active {
			return apperror.Conflict(op, "SESSION_NOT_ACTIVE", "session %s is no longer active", input.SessionID)
		}

		product, productAttrs, err := uc.loadProduct(ctx, op, input.OrganizationID, input.ProductID)
		if err != nil {
			return err
		}

		basePrice := productAttrs.Number(order.AttrBasePrice)
		unitPrice := order.UnitPrice(basePrice, input.Modifications)
		lineAmount := order.LineAmount(unitPrice, input.Quantity)

		lineOrder, err := uc.entities.IncrementCounter(ctx, input.OrganizationID, input.SessionID, order.AttrLineCounter)
		if err != nil {
			return err
		}

		itemEntity, err := uc.entities.CreateEntity(ctx, &entitydto.CreateEntityInput{
			OrganizationID: input.OrganizationID,
			EntityType:     model.EntityTypeOrderItem,
			EntityName:     product.EntityName,
			EntityCode:     fmt.Sprintf("%s-%03d", session.EntityCode, lineOrder),
		})
		if err != nil {
			return err
		}

		attrs := []entitydto.AttributeInput{
			{FieldName: order.AttrSessionID, Value: model.UUID(input.SessionID)},
			{FieldName: order.AttrProductID, Value: model.UUID(product.ID)},
			{FieldName: order.AttrQuantity, Value: model.Number(float64(input.Quantity))},
			{FieldName: order.AttrBasePrice, Value: model.Number(basePrice)},
			{FieldName: order.AttrUnitPrice, Value: model.Number(unitPrice)},
			{FieldName: order.AttrLineAmount, Value: model.Number(lineAmount)},
			{FieldName: order.AttrLineOrder, Value: model.Number(float64(lineOrder))},
		}
		if input.SpecialInstructions != "" {
			attrs = append(attrs, entitydto.AttributeInput{FieldName: order.AttrSpecialInstructions, Value: model.Text(input.SpecialInstructions)})
		}
		for _, key := range sortedKeys(input.Modifications) {
			attrs = append(attrs, entitydto.AttributeInput{FieldName: modifierPrefix + key, Value: model.Text(input.Modifications[key])})
		}
		if err := uc.entities.SetAttributes(ctx, input.OrganizationID, itemEntity.ID, attrs); err != nil {
			return err
		}

		if len(input.Modifications) > 0 || input.SpecialInstructions != "" {
			_, err := uc.metadata.AppendMetadata(ctx, &metadatadto.WriteMetadataInput{
				OrganizationID: input.OrganizationID,
				SubjectType:    model.EntityTypeOrderItem,
				SubjectID:      itemEntity.ID,
				MetadataType:   metadata.TypeItemModifications,
				Category:       "modifications",
				Key:            product.ID,
				Value: map[string]any{
					"modifications":        input.Modifications,
					"special_instructions": input.SpecialInstructions,
					"price_adjustment":     order.SizeModifier(input.Modifications[order.AttrSize]),
				},
				IsSystemGenerated: false,
			})
			if err != nil {
				return err
			}
		}

		if _, err := uc.refreshTotals(ctx, input.OrganizationID, input.SessionID); err != nil {
			return err
		}

		item = &model.OrderItem{
			ID:                  itemEntity.ID,
			SessionID:           input.SessionID,
			ProductID:           product.ID,
			ProductName:         product.EntityName,
			Quantity:            input.Quantity,
			BasePrice:           basePrice,
			UnitPrice:           unitPrice,
			LineAmount:          lineAmount,
			LineOrder:           lineOrder,
			Modifications:       input.Modifications,
			SpecialInstructions: input.SpecialInstructions,
			CreatedAt:           itemEntity.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, uc.fail(op, err)
	}
	return item, nil
}

func (uc *orderUseCase) CalculateOrderTotal(ctx context.Context, orgID, sessionID string) (*model.OrderCalculation, error) {
	const op = "order.CalculateOrderTotal"

	if _, _, err := uc.loadSession(ctx, op, orgID, sessionID); err != nil {
		return nil, uc.fail(op, err)
	}
	items, err := uc.loadItems(ctx, orgID, sessionID)
	if err != nil {
		return nil, uc.fail(op, err)
	}
	return order.Calculate(sessionID, items), nil
}

func (uc *orderUseCase) ConfirmOrder(ctx context.Context, input *dto.ConfirmOrderInput) (*model.UniversalTransaction, error) {
	const op = "order.ConfirmOrder"

	if input.SessionID == "" {
		return nil, apperror.Validation(op, "session id is required")
	}

	if uc.locker != nil {
		release, err := uc.lock(ctx, op, "lock:order:confirm:"+input.SessionID)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	var (
		confirmed *model.UniversalTransaction
		session   *model.OrderSession
		calc      *model.OrderCalculation
	)
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		e, attrs, err := uc.loadSession(ctx, op, input.OrganizationID, input.SessionID)
		if err != nil {
			return err
		}

		status := model.SessionStatus(attrs.Text(order.AttrStatus))
		if status == model.SessionCompleted {
			confirmed, err = uc.existingConfirmation(ctx, op, input.OrganizationID, input.SessionID, attrs)
			return err
		}
		if !model.CanTransitionSession(status, model.SessionCompleted) {
			return invalidTransition(op, input.SessionID, status, model.SessionCompleted)
		}

		// The status row stays locked from here on, so no item can be added between the
		// item read and the status flip.
		active, err := uc.holdActive(ctx, input.SessionID)
		if err != nil {
			return err
		}
		if !active {
			confirmed, err = uc.confirmedElsewhere(ctx, op, input.OrganizationID, input.SessionID)
			return err
		}

		// Totals are recomputed from the items, never taken from the session attributes.
		items, err := uc.loadItems(ctx, input.OrganizationID, input.SessionID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return apperror.Validation(op, "session %s has no items", input.SessionID)
		}
		calc = order.Calculate(input.SessionID, items)

		swapped, err := uc.entities.CompareAndSetAttribute(ctx, input.SessionID, order.AttrStatus,
			model.Text(string(model.SessionActive)), model.Text(string(model.SessionCompleted)))
		if err != nil {
			return err
		}
		if !swapped {
			confirmed, err = uc.confirmedElsewhere(ctx, op, input.OrganizationID, input.SessionID)
			return err
		}

		session = projectSession(e, attrs, items)
		confirmed, err = uc.transactions.CreateTransaction(ctx, &txdto.CreateTransactionInput{
			OrganizationID:  input.OrganizationID,
			TransactionType: model.TransactionTypeOrder,
			TransactionDate: uc.now(),
			TotalAmount:     calc.TotalAmount,
			Currency:        defaultCurrency,
			Status:          model.StatusPending,
			SourceEntityID:  input.SessionID,
			Details:         orderDetails(session, calc, input.PaymentData),
			Lines:           transactionLines(items, calc),
		})
		if err != nil {
			return err
		}

		return uc.entities.SetAttributes(ctx, input.OrganizationID, input.SessionID, append(
			totalsAttributes(calc),
			entitydto.AttributeInput{FieldName: order.AttrTransactionID, Value: model.UUID(confirmed.ID)},
		))
	})
	if err != nil {
		return nil, uc.fail(op, err)
	}

	if session != nil {
		uc.logger.Info("order confirmed",
			zap.String("session_id", input.SessionID),
			zap.String("transaction_id", confirmed.ID),
			zap.String("transaction_number", confirmed.TransactionNumber),
			zap.Float64("total_amount", confirmed.TotalAmount),
		)
		uc.enrich(ctx, confirmed, session, calc)
	}
	return confirmed, nil
}

func (uc *orderUseCase) AbandonOrderSession(ctx context.Context, orgID, sessionID string) (*model.OrderSession, error) {
	const op = "order.AbandonOrderSession"

	var session *model.OrderSession
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, attrs, err := uc.loadSession(ctx, op, orgID, sessionID)
		if err != nil {
			return err
		}
		status := model.SessionStatus(attrs.Text(order.AttrStatus))
		if !model.CanTransitionSession(status, model.SessionAbandoned) {
			return invalidTransition(op, sessionID, status, model.SessionAbandoned)
		}

		swapped, err := uc.entities.CompareAndSetAttribute(ctx, sessionID, order.AttrStatus,
			model.Text(string(status)), model.Text(string(model.SessionAbandoned)))
		if err != nil {
			return err
		}
		if !swapped {
			return apperror.Conflict(op, "INVALID_TRANSITION", "session %s changed status concurrently", sessionID)
		}

		e, attrs, err := uc.loadSession(ctx, op, orgID, sessionID)
		if err != nil {
			return err
		}
		items, err := uc.loadItems(ctx, orgID, sessionID)
		if err != nil {
			return err
		}
		session = projectSession(e, attrs, items)
		return nil
	})
	if err != nil {
		return nil, uc.fail(op, err)
	}
	return session, nil
}

func (uc *orderUseCase) GetPersonalizedRecommendations(ctx context.Context, orgID, customerID string, currentItems []string) ([]model.Recommendation, error) {
	const op = "order.GetPersonalizedRecommendations"

	if orgID == "" {
		return nil, apperror.Validation(op, "organization id is required")
	}
	if uc.recommender == nil {
		return []model.Recommendation{}, nil
	}
	recs, err := uc.recommender.Recommend(ctx, order.RecommendationRequest{
		OrganizationID: orgID,
		CustomerID:     customerID,
		CurrentItems:   currentItems,
		Limit:          maxRecommendable,
	})
	if err != nil {
		return nil, uc.fail(op, err)
	}
	return recs, nil
}

func (uc *orderUseCase) loadSession(ctx context.Context, op, orgID, sessionID string) (*model.Entity, model.Attributes, error) {
	e, err := uc.entities.GetEntity(ctx, orgID, sessionID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil, apperror.NotFound(op, "order session %s not found", sessionID)
		}
		return nil, nil, err
	}
	if e.EntityType != model.EntityTypeOrderSession {
		return nil, nil, apperror.NotFound(op, "order session %s not found", sessionID)
	}
	rows, err := uc.entities.GetAttributes(ctx, orgID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return e, model.NewAttributes(rows), nil
}

func (uc *orderUseCase) loadProduct(ctx context.Context, op, orgID, productID string) (*model.Entity, model.Attributes, error) {
	product, err := uc.entities.GetEntity(ctx, orgID, productID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil, apperror.NotFound(op, "product %s not found", productID)
		}
		return nil, nil, err
	}
	if product.EntityType != model.EntityTypeProduct || !product.IsActive {
		return nil, nil, apperror.NotFound(op, "product %s not found", productID)
	}
	rows, err := uc.entities.GetAttributes(ctx, orgID, productID)
	if err != nil {
		return nil, nil, err
	}
	return product, model.NewAttributes(rows), nil
}

// loadItems returns the session's items ordered by line order.
func (uc *orderUseCase) loadItems(ctx context.Context, orgID, sessionID string) ([]model.OrderItem, error) {
	entities, err := uc.entities.FindByAttribute(ctx, orgID, model.EntityTypeOrderItem, order.AttrSessionID, model.UUID(sessionID))
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return []model.OrderItem{}, nil
	}

	ids := make([]string, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.ID)
	}
	attrsByID, err := uc.entities.GetAttributesByEntities(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]model.OrderItem, 0, len(entities))
	for _, e := range entities {
		items = append(items, projectItem(e, attrsByID[e.ID]))
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].LineOrder < items[j].LineOrder })
	return items, nil
}

// refreshTotals stores the running totals on the session for display. Confirmation
// recomputes them.
func (uc *orderUseCase) refreshTotals(ctx context.Context, orgID, sessionID string) (*model.OrderCalculation, error) {
	items, err := uc.loadItems(ctx, orgID, sessionID)
	if err != nil {
		return nil, err
	}
	calc := order.Calculate(sessionID, items)
	if err := uc.entities.SetAttributes(ctx, orgID, sessionID, totalsAttributes(calc)); err != nil {
		return nil, err
	}
	return calc, nil
}

// holdActive rewrites the session status in place. The update locks the status row for
// the rest of the transaction and reports whether the session is still active.
func (uc *orderUseCase) holdActive(ctx context.Context, sessionID string) (bool, error) {
	active := model.Text(string(model.SessionActive))
	return uc.entities.CompareAndSetAttribute(ctx, sessionID, order.AttrStatus, active, active)
}

// confirmedElsewhere resolves a confirmation that lost the race to another request.
func (uc *orderUseCase) confirmedElsewhere(ctx context.Context, op, orgID, sessionID string) (*model.UniversalTransaction, error) {
	_, attrs, err := uc.loadSession(ctx, op, orgID, sessionID)
	if err != nil {
		return nil, err
	}
	if status := model.SessionStatus(attrs.Text(order.AttrStatus)); status != model.SessionCompleted {
		return nil, invalidTransition(op, sessionID, status, model.SessionCompleted)
	}
	return uc.existingConfirmation(ctx, op, orgID, sessionID, attrs)
}

func (uc *orderUseCase) existingConfirmation(ctx context.Context, op, orgID, sessionID string, attrs model.Attributes) (*model.UniversalTransaction, error) {
	if txID := attrs.Text(order.AttrTransactionID); txID != "" {
		tx, err := uc.transactions.GetTransaction(ctx, orgID, txID)
		if err == nil {
			return tx, nil
		}
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
	}

	tx, err := uc.transactions.FindBySourceEntity(ctx, orgID, model.TransactionTypeOrder, sessionID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Conflict(op, "ALREADY_CONFIRMED", "session %s was already confirmed", sessionID)
		}
		return nil, err
	}
	return tx, nil
}

// enrich records the confirmation annotation. Failures are logged, never returned.
func (uc *orderUseCase) enrich(ctx context.Context, tx *model.UniversalTransaction, session *model.OrderSession, calc *model.OrderCalculation) {
	_, err := uc.metadata.AppendMetadata(ctx, &metadatadto.WriteMetadataInput{
		OrganizationID:    tx.OrganizationID,
		SubjectType:       metadata.SubjectTransaction,
		SubjectID:         tx.ID,
		MetadataType:      metadata.TypeOrderEnrichment,
		Category:          "ai_insights",
		Key:               "order_confirmation",
		Value:             order.BuildEnrichment(session, calc),
		IsSystemGenerated: true,
	})
	if err != nil {
		uc.logger.Warn("failed to store order enrichment",
			zap.String("transaction_id", tx.ID),
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
	}
}

func (uc *orderUseCase) lock(ctx context.Context, op, key string) (func(), error) {
	value := uuid.New().String()
	for i := 0; i < lockAttempts; i++ {
		ok, err := uc.locker.AcquireLock(ctx, key, value, uc.lockTTL)
		if err != nil {
			// The status compare-and-set still guards confirmation, so a cache outage
			// degrades to running unlocked.
			uc.logger.Warn("order lock unavailable, continuing without it", zap.String("key", key), zap.Error(err))
			return func() {}, nil
		}
		if ok {
			return func() {
				if err := uc.locker.ReleaseLock(context.WithoutCancel(ctx), key, value); err != nil {
					uc.logger.Warn("failed to release order lock", zap.String("key", key), zap.Error(err))
				}
			}, nil
		}
		time.Sleep(lockRetryDelay)
	}
	return nil, apperror.Conflict(op, "ORDER_LOCKED", "order is being confirmed by another request, try again")
}

func (uc *orderUseCase) fail(op string, err error) error {
	wrapped := apperror.Wrap(op, err)
	if apperror.KindOf(wrapped) == apperror.KindPersistence {
		uc.logger.Error("order workflow failed", zap.String("op", op), zap.Error(err))
	}
	return wrapped
}

func invalidTransition(op, sessionID string, from, to model.SessionStatus) error {
	return apperror.Conflict(op, "INVALID_TRANSITION", "session %s cannot move from %s to %s", sessionID, from, to)
}

func projectSession(e *model.Entity, attrs model.Attributes, items []model.OrderItem) *model.OrderSession {
	return &model.OrderSession{
		ID:                  e.ID,
		OrganizationID:      e.OrganizationID,
		SessionCode:         e.EntityCode,
		CustomerID:          attrs.Text(order.AttrCustomerID),
		StaffID:             attrs.Text(order.AttrStaffID),
		Status:              model.SessionStatus(attrs.Text(order.AttrStatus)),
		Source:              attrs.Text(order.AttrSource),
		ServiceType:         attrs.Text(order.AttrServiceType),
		TableNumber:         attrs.Text(order.AttrTableNumber),
		Subtotal:            attrs.Number(order.AttrSubtotal),
		TaxAmount:           attrs.Number(order.AttrTaxAmount),
		DiscountAmount:      attrs.Number(order.AttrDiscountAmount),
		TotalAmount:         attrs.Number(order.AttrTotalAmount),
		LoyaltyPointsEarned: int64(attrs.Number(order.AttrLoyaltyPoints)),
		TransactionID:       attrs.Text(order.AttrTransactionID),
		Items:               items,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

func projectItem(e model.Entity, attrs model.Attributes) model.OrderItem {
	item := model.OrderItem{
		ID:                  e.ID,
		SessionID:           attrs.Text(order.AttrSessionID),
		ProductID:           attrs.Text(order.AttrProductID),
		ProductName:         e.EntityName,
		Quantity:            int(attrs.Number(order.AttrQuantity)),
		BasePrice:           attrs.Number(order.AttrBasePrice),
		UnitPrice:           attrs.Number(order.AttrUnitPrice),
		LineAmount:          attrs.Number(order.AttrLineAmount),
		LineOrder:           int(attrs.Number(order.AttrLineOrder)),
		SpecialInstructions: attrs.Text(order.AttrSpecialInstructions),
		CreatedAt:           e.CreatedAt,
	}
	for field, value := range attrs {
		if key, ok := strings.CutPrefix(field, modifierPrefix); ok {
			if item.Modifications == nil {
				item.Modifications = make(map[string]string)
			}
			item.Modifications[key] = value.String()
		}
	}
	return item
}

func transactionLines(items []model.OrderItem, calc *model.OrderCalculation) []txdto.LineInput {
	lines := make([]txdto.LineInput, 0, len(items)+1)
	for i, item := range items {
		lines = append(lines, txdto.LineInput{
			LineEntityID: item.ProductID,
			LineType:     model.LineTypeItem,
			Description:  item.ProductName,
			Quantity:     float64(item.Quantity),
			UnitPrice:    item.UnitPrice,
			LineAmount:   item.LineAmount,
			LineOrder:    i + 1,
		})
	}
	lines = append(lines, txdto.LineInput{
		LineType:    model.LineTypeTax,
		Description: fmt.Sprintf("Sales tax (%.0f%%)", calc.TaxRate*100),
		Quantity:    1,
		UnitPrice:   calc.TaxAmount,
		LineAmount:  calc.TaxAmount,
		LineOrder:   len(items) + 1,
	})
	return lines
}

func totalsAttributes(calc *model.OrderCalculation) []entitydto.AttributeInput {
	return []entitydto.AttributeInput{
		{FieldName: order.AttrSubtotal, Value: model.Number(calc.Subtotal)},
		{FieldName: order.AttrTaxAmount, Value: model.Number(calc.TaxAmount)},
		{FieldName: order.AttrDiscountAmount, Value: model.Number(calc.DiscountAmount)},
		{FieldName: order.AttrTotalAmount, Value: model.Number(calc.TotalAmount)},
		{FieldName: order.AttrLoyaltyPoints, Value: model.Number(float64(calc.LoyaltyPointsEarned))},
	}
}

type orderDetailsPayload struct {
	SessionID           string           `json:"session_id"`
	SessionCode         string           `json:"session_code"`
	CustomerID          string           `json:"customer_id,omitempty"`
	StaffID             string           `json:"staff_id,omitempty"`
	ServiceType         string           `json:"service_type,omitempty"`
	TableNumber         string           `json:"table_number,omitempty"`
	Subtotal            float64          `json:"subtotal"`
	TaxAmount           float64          `json:"tax_amount"`
	DiscountAmount      float64          `json:"discount_amount"`
	LoyaltyPointsEarned int64            `json:"loyalty_points_earned"`
	Payment             *dto.PaymentData `json:"payment,omitempty"`
}

func orderDetails(session *model.OrderSession, calc *model.OrderCalculation, payment *dto.PaymentData) orderDetailsPayload {
	return orderDetailsPayload{
		SessionID:           session.ID,
		SessionCode:         session.SessionCode,
		CustomerID:          session.CustomerID,
		StaffID:             session.StaffID,
		ServiceType:         session.ServiceType,
		TableNumber:         session.TableNumber,
		Subtotal:            calc.Subtotal,
		TaxAmount:           calc.TaxAmount,
		DiscountAmount:      calc.DiscountAmount,
		LoyaltyPointsEarned: calc.LoyaltyPointsEarned,
		Payment:             payment,
	}
}

func sessionCode(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("SES-%s-%s", now.UTC().Format("20060102"), suffix)
}

// idValue stores identifiers as uuid when they are one, text otherwise.
func idValue(id string) model.FieldValue {
	if _, err := uuid.Parse(id); err == nil {
		return model.UUID(id)
	}
	return model.Text(id)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
