package handler

import (
	"io"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/auth"
	"github.com/fekuna/omnipos-order-service/internal/httpapi"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-order-service/internal/transaction"
	"github.com/fekuna/omnipos-order-service/internal/transaction/dto"
	"github.com/fekuna/omnipos-order-service/internal/transaction/realtime"
	"github.com/fekuna/omnipos-order-service/internal/validation"
	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const defaultHeartbeat = 15 * time.Second

// Subscriber is satisfied by realtime.Hub.
type Subscriber interface {
	Subscribe(filter realtime.Filter) *realtime.Subscription
}

type TransactionHandler struct {
	uc        transaction.UseCase
	hub       Subscriber
	validate  *validatorv10.Validate
	logger    logger.ZapLogger
	heartbeat time.Duration
}

func NewTransactionHandler(uc transaction.UseCase, hub Subscriber, v *validatorv10.Validate, log logger.ZapLogger) *TransactionHandler {
	return &TransactionHandler{
		uc:        uc,
		hub:       hub,
		validate:  v,
		logger:    log,
		heartbeat: defaultHeartbeat,
	}
}

func (h *TransactionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/transactions")
	g.POST("", h.CreateTransaction)
	g.GET("", h.ListByType)
	g.GET("/range", h.ListByDateRange)
	g.GET("/stream", h.Stream)
	g.GET("/:id", h.GetTransaction)
	g.POST("/:id/lines", h.AppendLines)
	g.PATCH("/:id/status", h.UpdateStatus)
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	ctx := c.Request.Context()
	input := &dto.CreateTransactionInput{
		OrganizationID:    auth.GetOrganizationID(ctx),
		TransactionType:   req.TransactionType,
		TransactionNumber: req.TransactionNumber,
		TotalAmount:       req.TotalAmount,
		Currency:          req.Currency,
		Status:            model.TransactionStatus(req.Status),
	}
	if req.TransactionDate != nil {
		input.TransactionDate = *req.TransactionDate
	}
	for _, l := range req.Lines {
		input.Lines = append(input.Lines, l.Input())
	}

	tx, err := h.uc.CreateTransaction(ctx, input)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.Created(c, tx)
}

func (h *TransactionHandler) ListByType(c *gin.Context) {
	ctx := c.Request.Context()
	limit, _ := strconv.Atoi(c.Query("limit"))
	txs, err := h.uc.ListByType(ctx, auth.GetOrganizationID(ctx), c.Query("type"), limit)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.OK(c, txs)
}

func (h *TransactionHandler) ListByDateRange(c *gin.Context) {
	const op = "transaction.ListByDateRange"
	ctx := c.Request.Context()

	start, err := ParseTime(c.Query("start"))
	if err != nil {
		httpapi.Error(c, apperror.Validation(op, "start: %v", err))
		return
	}
	end, err := ParseTime(c.Query("end"))
	if err != nil {
		httpapi.Error(c, apperror.Validation(op, "end: %v", err))
		return
	}

	txs, err := h.uc.ListByDateRange(ctx, auth.GetOrganizationID(ctx), start, end, c.Query("type"))
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.OK(c, txs)
}

func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	ctx := c.Request.Context()
	tx, err := h.uc.GetTransaction(ctx, auth.GetOrganizationID(ctx), c.Param("id"))
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.OK(c, tx)
}

func (h *TransactionHandler) AppendLines(c *gin.Context) {
	var req dto.AppendLinesRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	inputs := make([]dto.LineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		inputs = append(inputs, l.Input())
	}

	ctx := c.Request.Context()
	lines, err := h.uc.AppendLines(ctx, auth.GetOrganizationID(ctx), c.Param("id"), inputs)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.Created(c, lines)
}

func (h *TransactionHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	ctx := c.Request.Context()
	orgID := auth.GetOrganizationID(ctx)
	next := model.TransactionStatus(req.Status)

	var (
		tx  *model.UniversalTransaction
		err error
	)
	if req.ExpectedStatus != "" {
		tx, err = h.uc.CompareAndSetStatus(ctx, orgID, c.Param("id"), model.TransactionStatus(req.ExpectedStatus), next)
	} else {
		tx, err = h.uc.UpdateStatus(ctx, orgID, c.Param("id"), next)
	}
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.OK(c, tx)
}

// Stream pushes transaction change events for the caller's organization as server-sent
// events until the client disconnects.
func (h *TransactionHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	filter := realtime.Filter{
		OrganizationID:  auth.GetOrganizationID(ctx),
		TransactionType: c.Query("type"),
	}
	sub := h.hub.Subscribe(filter)
	defer sub.Close()

	h.logger.Debug("realtime subscriber connected",
		zap.String("organization_id", filter.OrganizationID),
		zap.String("transaction_type", filter.TransactionType),
	)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case evt, ok := <-sub.Events():
			if !ok {
				return false
			}
			c.SSEvent("transaction", evt)
			return true
		case <-heartbeat.C:
			c.SSEvent("heartbeat", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}

// ParseTime accepts RFC 3339 timestamps and plain dates.
func ParseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}
