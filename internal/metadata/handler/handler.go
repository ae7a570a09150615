package handler

import (
	"github.com/fekuna/omnipos-order-service/internal/auth"
	"github.com/fekuna/omnipos-order-service/internal/httpapi"
	"github.com/fekuna/omnipos-order-service/internal/metadata"
	"github.com/fekuna/omnipos-order-service/internal/metadata/dto"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-order-service/internal/validation"
	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
)

type MetadataHandler struct {
	uc       metadata.UseCase
	validate *validatorv10.Validate
	logger   logger.ZapLogger
}

func NewMetadataHandler(uc metadata.UseCase, v *validatorv10.Validate, log logger.ZapLogger) *MetadataHandler {
	return &MetadataHandler{
		uc:       uc,
		validate: v,
		logger:   log,
	}
}

func (h *MetadataHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/metadata")
	g.POST("", h.WriteMetadata)
	g.GET("/:subjectType/:subjectId", h.ReadMetadata)
}

func (h *MetadataHandler) WriteMetadata(c *gin.Context) {
	var req dto.WriteMetadataRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	ctx := c.Request.Context()
	input := &dto.WriteMetadataInput{
		OrganizationID: auth.GetOrganizationID(ctx),
		SubjectType:    req.SubjectType,
		SubjectID:      req.SubjectID,
		MetadataType:   req.MetadataType,
		Category:       req.Category,
		Key:            req.Key,
		Value:          req.Value,
		CreatedBy:      auth.GetUserID(ctx),
	}

	var (
		rec *model.MetadataRecord
		err error
	)
	if req.Mode == "upsert" {
		rec, err = h.uc.UpsertMetadata(ctx, input)
	} else {
		rec, err = h.uc.AppendMetadata(ctx, input)
	}
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.Created(c, rec)
}

// ReadMetadata lists records for a subject. latest=true with type, category and key
// returns only the newest matching record.
func (h *MetadataHandler) ReadMetadata(c *gin.Context) {
	ctx := c.Request.Context()
	orgID := auth.GetOrganizationID(ctx)

	if c.Query("latest") == "true" {
		rec, err := h.uc.LatestMetadata(ctx, orgID, c.Param("subjectType"), c.Param("subjectId"),
			c.Query("type"), c.Query("category"), c.Query("key"))
		if err != nil {
			httpapi.Error(c, err)
			return
		}
		httpapi.OK(c, rec)
		return
	}

	records, err := h.uc.ReadMetadata(ctx, orgID, c.Param("subjectType"), c.Param("subjectId"), c.Query("type"))
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.OK(c, records)
}
