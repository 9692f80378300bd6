package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/attendance-dashboard/internal/models"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
)

// NewValidator returns a validator with the dashboard's custom tags.
func NewValidator() *validator.Validate {
	v := validator.New()
	registerValidations(v)
	return v
}

func registerValidations(v *validator.Validate) {
	_ = v.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	})
}

// validationError turns validator output into a VALIDATION_ERROR whose message
// names the first broken rule in words a form can show.
func validationError(err error, fallback string) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fallback)
	}
	fe := fieldErrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required.", label(fe.Field()))
	case "email":
		msg = "Please enter a valid email address."
	case "min":
		msg = fmt.Sprintf("%s must be at least %s characters.", label(fe.Field()), fe.Param())
	case "eqfield":
		msg = "Passwords do not match."
	case "user_role":
		msg = fmt.Sprintf("Role must be one of %s.", roleList())
	default:
		msg = fallback
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, msg)
}

func label(field string) string {
	switch field {
	case "ID":
		return "User"
	case "RetypePassword":
		return "Retype password"
	default:
		return field
	}
}

func roleList() string {
	names := make([]string, len(models.AssignableRoles))
	for i, r := range models.AssignableRoles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
