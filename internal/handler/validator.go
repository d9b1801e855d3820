package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Validator implements echo.Validator on top of go-playground/validator.
// Field names in errors use the json tag so clients see the names they sent.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("cartid", func(fl validator.FieldLevel) bool {
		return domain.ValidCartID(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Validate checks i's struct tags and returns a *domain.ValidationError
// listing every failing field.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.Internal(err, "handler.validate", "Validation could not run")
	}

	var out error
	for _, fe := range fieldErrs {
		if out == nil {
			out = domain.NewValidationError("handler.validate", fe.Field(), fieldMessage(fe))
			continue
		}
		out = domain.AddFieldError(out, fe.Field(), fieldMessage(fe))
	}
	return out
}

// Var validates a single value against tag, e.g. Var(email, "required,email").
func (v *Validator) Var(field string, value any, tag string) error {
	err := v.validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return domain.NewValidationError("handler.validate", field, messageFor(field, fe.Tag(), fe.Param()))
	}
	return domain.Internal(err, "handler.validate", "Validation could not run")
}

func fieldMessage(fe validator.FieldError) string {
	return messageFor(fe.Field(), fe.Tag(), fe.Param())
}

func messageFor(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "cartid":
		return fmt.Sprintf("%s must be at most %d characters of letters, digits, '.', '_', ':' or '-'", field, domain.MaxCartIDLength)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
