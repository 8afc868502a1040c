package validation

import "github.com/go-playground/validator/v10"

// RegisterEnum registers tag as a validation accepting string values for
// which valid returns true. Domain packages own their value sets; this keeps
// the validator wiring in one place.
func RegisterEnum(v *validator.Validate, tag string, valid func(string) bool) error {
	return v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return valid(fl.Field().String())
	})
}
