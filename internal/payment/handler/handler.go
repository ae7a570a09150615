package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/fekuna/omnipos-order-service/internal/auth"
	"github.com/fekuna/omnipos-order-service/internal/httpapi"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/payment"
	"github.com/fekuna/omnipos-order-service/internal/payment/dto"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-order-service/internal/validation"
	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	uc       payment.UseCase
	validate *validatorv10.Validate
	logger   logger.ZapLogger
}

func NewPaymentHandler(uc payment.UseCase, v *validatorv10.Validate, log logger.ZapLogger) *PaymentHandler {
	return &PaymentHandler{
		uc:       uc,
		validate: v,
		logger:   log,
	}
}

func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/payments")
	g.POST("", h.CreatePayment)
	g.GET("/analytics", h.GetAnalytics)
	g.GET("/:id", h.GetPayment)
	g.POST("/:id/fraud-check", h.FraudCheck)
	g.POST("/:id/process", h.ProcessPayment)
	g.POST("/:id/refund", h.RefundPayment)
	g.POST("/:id/cancel", h.CancelPayment)
	g.PATCH("/:id/status", h.UpdateStatus)
}

func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	ctx := c.Request.Context()
	p, err := h.uc.CreatePaymentTransaction(ctx, &dto.CreatePaymentInput{
		OrganizationID: auth.GetOrganizationID(ctx),
		OrderID:        req.OrderID,
		CustomerID:     req.CustomerID,
		PaymentMethod:  req.PaymentMethod,
		Amount:         req.Amount,
		TaxAmount:      req.TaxAmount,
		TipAmount:      req.TipAmount,
		DiscountAmount: req.DiscountAmount,
		Currency:       req.Currency,
		CreatedBy:      auth.GetUserID(ctx),
	})
	if err != nil {
		h.logger.Warn("failed to create payment", zap.Error(err))
		httpapi.Error(c, err)
		return
	}
	httpapi.Created(c, p)
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.uc.GetPayment(ctx, auth.GetOrganizationID(ctx), c.Param("id"))
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.OK(c, p)
}

func (h *PaymentHandler) FraudCheck(c *gin.Context) {
	var req dto.ProcessPaymentRequest
	if !h.bindOptional(c, &req) {
		return
	}

	ctx := c.Request.Context()
	a, err := h.uc.PerformFraudCheck(ctx, auth.GetOrganizationID(ctx), c.Param("id"), req.PaymentMethod)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.OK(c, a)
}

// ProcessPayment answers declines with the payment result as data so clients can show the
// assessment or gateway reason.
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	var req dto.ProcessPaymentRequest
	if !h.bindOptional(c, &req) {
		return
	}

	ctx := c.Request.Context()
	result, err := h.uc.ProcessPayment(ctx, auth.GetOrganizationID(ctx), c.Param("id"), req.PaymentMethod)
	if err != nil {
		h.logger.Warn("payment not completed", zap.String("payment_id", c.Param("id")), zap.Error(err))
		if result != nil {
			httpapi.ErrorWithData(c, err, result)
			return
		}
		httpapi.Error(c, err)
		return
	}
	httpapi.OK(c, result)
}

func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	var req dto.ReasonRequest
	if !h.bindOptional(c, &req) {
		return
	}

	ctx := c.Request.Context()
	p, err := h.uc.RefundPayment(ctx, auth.GetOrganizationID(ctx), c.Param("id"), req.Reason)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.OK(c, p)
}

func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	var req dto.ReasonRequest
	if !h.bindOptional(c, &req) {
		return
	}

	ctx := c.Request.Context()
	p, err := h.uc.CancelPayment(ctx, auth.GetOrganizationID(ctx), c.Param("id"), req.Reason)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.OK(c, p)
}

func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	ctx := c.Request.Context()
	p, err := h.uc.UpdatePaymentStatus(ctx, &dto.UpdateStatusInput{
		OrganizationID: auth.GetOrganizationID(ctx),
		PaymentID:      c.Param("id"),
		Status:         model.TransactionStatus(req.Status),
		Reason:         req.Reason,
		ChangedBy:      auth.GetUserID(ctx),
	})
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.OK(c, p)
}

func (h *PaymentHandler) GetAnalytics(c *gin.Context) {
	ctx := c.Request.Context()
	report, err := h.uc.GetPaymentAnalytics(ctx, auth.GetOrganizationID(ctx), c.Query("timeframe"))
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.OK(c, report)
}

// bindOptional binds a body that may be empty.
func (h *PaymentHandler) bindOptional(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil && !errors.Is(err, io.EOF) {
		httpapi.Fail(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err.Error())
		return false
	}
	return validation.Validate(c, out, h.validate) == nil
}
