// Package httpapi holds the gin plumbing shared by every handler: the response envelope,
// error to status mapping, middleware and the router.
package httpapi

import (
	"net/http"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/gin-gonic/gin"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func Fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Error: message, Code: code})
}

// Error writes err with the status of its kind. Storage details never reach the client.
func Error(c *gin.Context, err error) {
	ErrorWithData(c, err, nil)
}

// ErrorWithData is Error plus a payload, used when a failed workflow still has a result
// worth returning (a declined payment carries its fraud assessment).
func ErrorWithData(c *gin.Context, err error, data any) {
	kind := apperror.KindOf(err)
	message := err.Error()
	if kind == apperror.KindPersistence {
		message = "internal storage error"
	}
	c.AbortWithStatusJSON(StatusFor(kind), Envelope{
		Success: false,
		Data:    data,
		Error:   message,
		Code:    apperror.CodeOf(err),
	})
}

func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindFraudDecline:
		return http.StatusPaymentRequired
	case apperror.KindGateway:
		return http.StatusBadGateway
	case apperror.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
