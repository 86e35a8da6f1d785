package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/infield/user-service/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Besides the built-in tags it understands "specialty" and "region", which
// check membership in the skill vocabularies.
func NewValidator() *echoValidator {
	v := validator.New()
	_ = v.RegisterValidation("specialty", func(fl validator.FieldLevel) bool {
		return domain.IsSpecialty(fl.Field().String())
	})
	_ = v.RegisterValidation("region", func(fl validator.FieldLevel) bool {
		return domain.IsRegion(fl.Field().String())
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "len":
		return fmt.Sprintf("%s must be %s characters long", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "numeric":
		return field + " must contain only digits"
	case "specialty":
		return fmt.Sprintf("%q is not a known specialty", fe.Value())
	case "region":
		return fmt.Sprintf("%q is not a known region", fe.Value())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
