package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/auth"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testRoutes struct{}

func (testRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/whoami", func(c *gin.Context) {
		OK(c, gin.H{
			"organization_id": auth.GetOrganizationID(c.Request.Context()),
			"user_id":         auth.GetUserID(c.Request.Context()),
		})
	})
	rg.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	rg.GET("/fail/:kind", func(c *gin.Context) {
		switch c.Param("kind") {
		case "storage":
			Error(c, apperror.Persistence("test", errors.New("pq: password authentication failed")))
		case "fraud":
			ErrorWithData(c, apperror.FraudDecline("test", "declined"), gin.H{"risk_level": "critical"})
		default:
			Error(c, apperror.Conflict("test", "ORDER_LOCKED", "order is locked"))
		}
	})
}

func serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	NewRouter(logger.NewNop(), testRoutes{}).ServeHTTP(w, req)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestHealthNeedsNoOrganization(t *testing.T) {
	w, env := serve(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestRequireOrganization(t *testing.T) {
	w, env := serve(t, httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "MISSING_ORGANIZATION", env.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil)
	req.Header.Set(auth.HeaderOrganizationID, "org-1")
	req.Header.Set("X-User-ID", "staff-7")
	w, env = serve(t, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"organization_id": "org-1", "user_id": "staff-7"}, env.Data)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/api/v1/fail/storage", http.StatusInternalServerError, "PERSISTENCE_ERROR"},
		{"/api/v1/fail/fraud", http.StatusPaymentRequired, "FRAUD_DECLINE"},
		{"/api/v1/fail/conflict", http.StatusConflict, "ORDER_LOCKED"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set(auth.HeaderOrganizationID, "org-1")
			w, env := serve(t, req)
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Code)
		})
	}
}

func TestStorageErrorsAreRedacted(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/fail/storage", nil)
	req.Header.Set(auth.HeaderOrganizationID, "org-1")
	_, env := serve(t, req)
	assert.Equal(t, "internal storage error", env.Error)
}

func TestErrorWithDataKeepsPayload(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/fail/fraud", nil)
	req.Header.Set(auth.HeaderOrganizationID, "org-1")
	_, env := serve(t, req)
	assert.Equal(t, map[string]any{"risk_level": "critical"}, env.Data)
}

func TestRecoveryReturnsEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/panic", nil)
	req.Header.Set(auth.HeaderOrganizationID, "org-1")
	w, env := serve(t, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL", env.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(apperror.KindValidation))
	assert.Equal(t, http.StatusNotFound, StatusFor(apperror.KindNotFound))
	assert.Equal(t, http.StatusBadGateway, StatusFor(apperror.KindGateway))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(apperror.KindPersistence))
}
