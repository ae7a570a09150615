package validation

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-order-service/internal/httpapi"
	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
)

// BindAndValidate binds the JSON body into out and runs validation.
// On failure it writes a 400 envelope and returns the error so the handler can stop.
func BindAndValidate(c *gin.Context, out any, v *validatorv10.Validate) error {
	if err := c.ShouldBindJSON(out); err != nil {
		httpapi.Fail(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err.Error())
		return err
	}
	return Validate(c, out, v)
}

// Validate runs struct validation on an already bound value, such as query parameters.
func Validate(c *gin.Context, out any, v *validatorv10.Validate) error {
	if err := v.Struct(out); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, httpapi.Envelope{
			Success: false,
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Fields:  validationErrorsToMap(err),
		})
		return err
	}
	return nil
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	var ve validatorv10.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fe.Namespace()] = fe.Error()
		}
	} else {
		out["error"] = err.Error()
	}
	return out
}
