package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-order-service/internal/auth"
	"github.com/fekuna/omnipos-order-service/internal/httpapi"
	"github.com/fekuna/omnipos-order-service/internal/order"
	"github.com/fekuna/omnipos-order-service/internal/order/dto"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-order-service/internal/validation"
	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type OrderHandler struct {
	uc       order.UseCase
	validate *validatorv10.Validate
	logger   logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, v *validatorv10.Validate, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{
		uc:       uc,
		validate: v,
		logger:   log,
	}
}

func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/orders")
	g.GET("/recommendations", h.GetRecommendations)
	g.POST("/sessions", h.CreateSession)
	g.GET("/sessions/:id", h.GetSession)
	g.POST("/sessions/:id/items", h.AddItem)
	g.GET("/sessions/:id/total", h.CalculateTotal)
	g.POST("/sessions/:id/confirm", h.ConfirmOrder)
	g.POST("/sessions/:id/abandon", h.AbandonSession)
}

func (h *OrderHandler) CreateSession(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	ctx := c.Request.Context()
	staffID := req.StaffID
	if staffID == "" {
		staffID = auth.GetUserID(ctx)
	}
	session, err := h.uc.CreateOrderSession(ctx, &dto.CreateSessionInput{
		OrganizationID: auth.GetOrganizationID(ctx),
		CustomerID:     req.CustomerID,
		StaffID:        staffID,
		Source:         req.Source,
		ServiceType:    req.ServiceType,
		TableNumber:    req.TableNumber,
		Preferences:    req.Preferences,
	})
	if err != nil {
		h.logger.Warn("failed to create order session", zap.Error(err))
		httpapi.Error(c, err)
		return
	}
	httpapi.Created(c, session)
}

func (h *OrderHandler) GetSession(c *gin.Context) {
	ctx := c.Request.Context()
	session, err := h.uc.GetOrderSession(ctx, auth.GetOrganizationID(ctx), c.Param("id"))
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.OK(c, session)
}

func (h *OrderHandler) AddItem(c *gin.Context) {
	var req dto.AddItemRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	ctx := c.Request.Context()
	item, err := h.uc.AddItemToOrder(ctx, &dto.AddItemInput{
		OrganizationID:      auth.GetOrganizationID(ctx),
		SessionID:           c.Param("id"),
		ProductID:           req.ProductID,
		Quantity:            req.Quantity,
		Modifications:       req.Modifications,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.Created(c, item)
}

func (h *OrderHandler) CalculateTotal(c *gin.Context) {
	ctx := c.Request.Context()
	calc, err := h.uc.CalculateOrderTotal(ctx, auth.GetOrganizationID(ctx), c.Param("id"))
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.OK(c, calc)
}

// ConfirmOrder accepts an empty body. Payment data, when sent, is copied into the order
// transaction details.
func (h *OrderHandler) ConfirmOrder(c *gin.Context) {
	var req dto.ConfirmOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httpapi.Fail(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err.Error())
		return
	}
	if err := validation.Validate(c, &req, h.validate); err != nil {
		return
	}

	ctx := c.Request.Context()
	input := &dto.ConfirmOrderInput{
		OrganizationID: auth.GetOrganizationID(ctx),
		SessionID:      c.Param("id"),
	}
	if p := req.PaymentData; p != nil {
		input.PaymentData = &dto.PaymentData{Method: p.Method, Amount: p.Amount, Reference: p.Reference}
	}

	tx, err := h.uc.ConfirmOrder(ctx, input)
	if err != nil {
		h.logger.Warn("failed to confirm order", zap.String("session_id", input.SessionID), zap.Error(err))
		httpapi.Error(c, err)
		return
	}
	httpapi.OK(c, tx)
}

func (h *OrderHandler) AbandonSession(c *gin.Context) {
	ctx := c.Request.Context()
	session, err := h.uc.AbandonOrderSession(ctx, auth.GetOrganizationID(ctx), c.Param("id"))
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.OK(c, session)
}

// GetRecommendations reads the cart from repeated or comma separated items parameters.
func (h *OrderHandler) GetRecommendations(c *gin.Context) {
	var items []string
	for _, raw := range c.QueryArray("items") {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				items = append(items, id)
			}
		}
	}

	ctx := c.Request.Context()
	recs, err := h.uc.GetPersonalizedRecommendations(ctx, auth.GetOrganizationID(ctx), c.Query("customer_id"), items)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.OK(c, recs)
}
