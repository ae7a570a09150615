package handler

import (
	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/auth"
	"github.com/fekuna/omnipos-order-service/internal/entity"
	"github.com/fekuna/omnipos-order-service/internal/entity/dto"
	"github.com/fekuna/omnipos-order-service/internal/httpapi"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-order-service/internal/validation"
	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type EntityHandler struct {
	uc       entity.UseCase
	validate *validatorv10.Validate
	logger   logger.ZapLogger
}

func NewEntityHandler(uc entity.UseCase, v *validatorv10.Validate, log logger.ZapLogger) *EntityHandler {
	return &EntityHandler{
		uc:       uc,
		validate: v,
		logger:   log,
	}
}

func (h *EntityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/entities")
	g.POST("", h.CreateEntity)
	g.GET("", h.ListEntities)
	g.GET("/:id", h.GetEntity)
	g.PATCH("/:id", h.UpdateEntity)
	g.DELETE("/:id", h.DeactivateEntity)
	g.PUT("/:id/attributes", h.SetAttributes)
	g.GET("/:id/attributes", h.GetAttributes)
}

func (h *EntityHandler) CreateEntity(c *gin.Context) {
	var req dto.CreateEntityRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	e, err := h.uc.CreateEntity(c.Request.Context(), &dto.CreateEntityInput{
		OrganizationID: auth.GetOrganizationID(c.Request.Context()),
		EntityType:     req.EntityType,
		EntityName:     req.EntityName,
		EntityCode:     req.EntityCode,
	})
	if err != nil {
		h.logger.Warn("failed to create entity", zap.Error(err))
		httpapi.Error(c, err)
		return
	}
	httpapi.Created(c, e)
}

// ListEntities lists active entities of a type. With field and value query parameters it
// narrows to entities holding that attribute value.
func (h *EntityHandler) ListEntities(c *gin.Context) {
	ctx := c.Request.Context()
	orgID := auth.GetOrganizationID(ctx)
	entityType := c.Query("type")
	if entityType == "" {
		httpapi.Error(c, apperror.Validation("entity.ListEntities", "type query parameter is required"))
		return
	}

	var (
		entities []model.Entity
		err      error
	)
	if field := c.Query("field"); field != "" {
		entities, err = h.uc.FindByAttribute(ctx, orgID, entityType, field, model.Text(c.Query("value")))
	} else {
		entities, err = h.uc.ListEntities(ctx, orgID, entityType)
	}
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.OK(c, entities)
}

func (h *EntityHandler) GetEntity(c *gin.Context) {
	ctx := c.Request.Context()
	e, err := h.uc.GetEntity(ctx, auth.GetOrganizationID(ctx), c.Param("id"))
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.OK(c, e)
}

func (h *EntityHandler) UpdateEntity(c *gin.Context) {
	var req dto.UpdateEntityRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	ctx := c.Request.Context()
	e, err := h.uc.UpdateEntity(ctx, &dto.UpdateEntityInput{
		ID:             c.Param("id"),
		OrganizationID: auth.GetOrganizationID(ctx),
		EntityName:     req.EntityName,
		EntityCode:     req.EntityCode,
		IsActive:       req.IsActive,
	})
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.OK(c, e)
}

func (h *EntityHandler) DeactivateEntity(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.uc.DeactivateEntity(ctx, auth.GetOrganizationID(ctx), c.Param("id")); err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.OK(c, gin.H{"id": c.Param("id"), "is_active": false})
}

func (h *EntityHandler) SetAttributes(c *gin.Context) {
	const op = "entity.SetAttributes"

	var req dto.SetAttributesRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	inputs := make([]dto.AttributeInput, 0, len(req.Attributes))
	for _, a := range req.Attributes {
		value, err := model.ParseJSONFieldValue(model.FieldType(a.FieldType), a.Value)
		if err != nil {
			httpapi.Error(c, apperror.Validation(op, "attribute %s: %v", a.FieldName, err))
			return
		}
		inputs = append(inputs, dto.AttributeInput{FieldName: a.FieldName, Value: value, IsEncrypted: a.IsEncrypted})
	}

	ctx := c.Request.Context()
	if err := h.uc.SetAttributes(ctx, auth.GetOrganizationID(ctx), c.Param("id"), inputs); err != nil {
		httpapi.Error(c, err)
		return
	}
	h.GetAttributes(c)
}

func (h *EntityHandler) GetAttributes(c *gin.Context) {
	ctx := c.Request.Context()
	rows, err := h.uc.GetAttributes(ctx, auth.GetOrganizationID(ctx), c.Param("id"))
	if err != nil {
		httpapi.Error(c, err)
		return
	}

	resp := make([]dto.AttributeResponse, 0, len(rows))
	for _, row := range rows {
		value, err := row.Value()
		if err != nil {
			h.logger.Warn("skipping unreadable attribute",
				zap.String("entity_id", row.EntityID),
				zap.String("field_name", row.FieldName),
				zap.Error(err),
			)
			continue
		}
		resp = append(resp, dto.AttributeResponse{
			FieldName:   row.FieldName,
			FieldType:   string(value.Kind()),
			Value:       value,
			IsEncrypted: row.IsEncrypted,
			UpdatedAt:   row.UpdatedAt,
		})
	}
	httpapi.OK(c, resp)
}
