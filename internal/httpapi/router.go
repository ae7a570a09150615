package httpapi

import (
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

// RouteRegistrar is implemented by every domain handler.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

func NewRouter(log logger.ZapLogger, handlers ...RouteRegistrar) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(log), RequestLogger(log))

	r.GET("/health", func(c *gin.Context) {
		OK(c, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1", RequireOrganization())
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}
	return r
}
