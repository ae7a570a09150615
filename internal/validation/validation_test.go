package validation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-order-service/internal/httpapi"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	FieldType string  `json:"field_type" validate:"required,fieldtype"`
	Status    string  `json:"status" validate:"omitempty,txstatus"`
	Amount    float64 `json:"amount" validate:"gt=0,cents"`
}

func TestCustomTags(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(sampleRequest{FieldType: "number", Status: "pending", Amount: 4.5}))
	assert.Error(t, v.Struct(sampleRequest{FieldType: "money", Amount: 4.5}))
	assert.Error(t, v.Struct(sampleRequest{FieldType: "text", Status: "shipped", Amount: 4.5}))
	assert.Error(t, v.Struct(sampleRequest{FieldType: "text", Amount: 4.505}))
}

func TestBindAndValidate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	v := New()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{name: "valid", body: `{"field_type":"text","amount":1.25}`, wantStatus: http.StatusOK},
		{name: "malformed json", body: `{"field_type":`, wantStatus: http.StatusBadRequest, wantCode: "INVALID_REQUEST_BODY"},
		{name: "failed validation", body: `{"field_type":"blob","amount":1}`, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req sampleRequest
			err := BindAndValidate(c, &req, v)
			if tt.wantCode == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, w.Code)

			var env httpapi.Envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantCode, env.Code)
		})
	}
}
