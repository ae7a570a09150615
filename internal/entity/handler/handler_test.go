package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-order-service/internal/auth"
	"github.com/fekuna/omnipos-order-service/internal/entity/usecase"
	"github.com/fekuna/omnipos-order-service/internal/httpapi"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-order-service/internal/storetest"
	"github.com/fekuna/omnipos-order-service/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields"`
}

func setup(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	uc := usecase.NewEntityUseCase(storetest.NewEntityRepo(), log)
	return httpapi.NewRouter(log, NewEntityHandler(uc, validation.New(), log))
}

func do(t *testing.T, r *gin.Engine, org, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.HeaderOrganizationID, org)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func create(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w, env := do(t, r, "org-1", http.MethodPost, "/api/v1/entities",
		`{"entity_type":"product","entity_name":"Latte","entity_code":"SKU-LATTE"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var e struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &e))
	return e.ID
}

func TestEntityLifecycle(t *testing.T) {
	r := setup(t)
	id := create(t, r)

	w, env := do(t, r, "org-1", http.MethodGet, "/api/v1/entities/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"entity_name":"Latte"`)

	w, _ = do(t, r, "org-2", http.MethodGet, "/api/v1/entities/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = do(t, r, "org-1", http.MethodPatch, "/api/v1/entities/"+id, `{"entity_name":"Oat Latte"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"entity_name":"Oat Latte"`)

	w, env = do(t, r, "org-1", http.MethodGet, "/api/v1/entities?type=product", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	w, _ = do(t, r, "org-1", http.MethodDelete, "/api/v1/entities/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)

	_, env = do(t, r, "org-1", http.MethodGet, "/api/v1/entities?type=product", "")
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Empty(t, list)
}

func TestCreateEntityValidation(t *testing.T) {
	r := setup(t)

	w, env := do(t, r, "org-1", http.MethodPost, "/api/v1/entities", `{"entity_type":"product"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
	assert.Contains(t, env.Fields, "CreateEntityRequest.EntityName")

	w, env = do(t, r, "org-1", http.MethodPost, "/api/v1/entities", `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST_BODY", env.Code)

	w, _ = do(t, r, "org-1", http.MethodGet, "/api/v1/entities", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetAndGetAttributes(t *testing.T) {
	r := setup(t)
	id := create(t, r)

	w, env := do(t, r, "org-1", http.MethodPut, "/api/v1/entities/"+id+"/attributes", `{"attributes":[
		{"field_name":"base_price","field_type":"number","value":4.5},
		{"field_name":"category","field_type":"text","value":"coffee"},
		{"field_name":"available","field_type":"boolean","value":true}
	]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var attrs []struct {
		FieldName string `json:"field_name"`
		FieldType string `json:"field_type"`
		Value     any    `json:"value"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &attrs))
	require.Len(t, attrs, 3)
	assert.Equal(t, "available", attrs[0].FieldName)
	assert.Equal(t, true, attrs[0].Value)
	assert.Equal(t, "base_price", attrs[1].FieldName)
	assert.Equal(t, 4.5, attrs[1].Value)

	w, _ = do(t, r, "org-1", http.MethodGet, "/api/v1/entities?type=product&field=category&value=coffee", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetAttributesRejectsMismatchedValue(t *testing.T) {
	r := setup(t)
	id := create(t, r)

	w, env := do(t, r, "org-1", http.MethodPut, "/api/v1/entities/"+id+"/attributes",
		`{"attributes":[{"field_name":"base_price","field_type":"number","value":true}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	w, _ = do(t, r, "org-1", http.MethodPut, "/api/v1/entities/"+id+"/attributes",
		`{"attributes":[{"field_name":"base_price","field_type":"money","value":1}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
