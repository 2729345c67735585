// Package validators wires go-playground/validator into echo and renders
// failures as field-keyed message maps.
package validators

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aviary-social/backend/internal/apperrors"
)

// Validator implements echo.Validator.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	// Report fields under their JSON names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate checks the struct and converts failures into a validation
// error with one message per offending field.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Internal(err)
	}

	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = message(fe)
	}
	return apperrors.Validation(fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Must not be empty"
	case "email":
		return "Must be a valid email address"
	case "eqfield":
		return "Passwords must match"
	default:
		return "Invalid value"
	}
}
