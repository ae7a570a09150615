package httpapi

import (
	"net/http"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/auth"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const headerUserID = "X-User-ID"

// RequireOrganization rejects requests without an organization header and puts the
// organization on the request context.
func RequireOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.GetHeader(auth.HeaderOrganizationID)
		if orgID == "" {
			Fail(c, http.StatusUnauthorized, "MISSING_ORGANIZATION", "missing "+auth.HeaderOrganizationID+" header")
			return
		}

		ctx := auth.WithOrganizationID(c.Request.Context(), orgID)
		if userID := c.GetHeader(headerUserID); userID != "" {
			ctx = auth.WithUser(ctx, auth.UserContext{OrganizationID: orgID, UserID: userID})
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func RequestLogger(log logger.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if orgID := auth.GetOrganizationID(c.Request.Context()); orgID != "" {
			fields = append(fields, zap.String("organization_id", orgID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("http request", fields...)
			return
		}
		log.Info("http request", fields...)
	}
}

func Recovery(log logger.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", zap.Any("panic", r), zap.String("path", c.Request.URL.Path))
				Fail(c, http.StatusInternalServerError, "INTERNAL", "internal error")
			}
		}()
		c.Next()
	}
}
