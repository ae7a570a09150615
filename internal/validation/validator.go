package validation

import (
	"math"

	"github.com/fekuna/omnipos-order-service/internal/model"
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a validator with the custom tags used by request DTOs:
// fieldtype (attribute type tag), txstatus (transaction status) and cents (at most two
// decimal places).
func New() *validatorv10.Validate {
	v := validatorv10.New()

	_ = v.RegisterValidation("fieldtype", func(fl validatorv10.FieldLevel) bool {
		return model.FieldType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("txstatus", func(fl validatorv10.FieldLevel) bool {
		return model.TransactionStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("cents", func(fl validatorv10.FieldLevel) bool {
		f := fl.Field().Float() * 100
		return math.Abs(f-math.Round(f)) < 1e-6
	})

	return v
}
