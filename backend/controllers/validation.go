package controllers

import (
	"errors"
	"reflect"
	"strings"

	"examprep/backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// RequestValidator wraps go-playground validator with the exam rules.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("option_id", validateOptionID)

	return &RequestValidator{validate: v}
}

// validateOptionID accepts an empty selection or a short option key.
func validateOptionID(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return len(s) <= 64 && !strings.ContainsAny(s, "\n\r")
}

// Validate returns a 400 AppError listing every failed field.
func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return utils.NewValidationError("Invalid request", err.Error())
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		key := strings.TrimPrefix(fe.Namespace(), strings.SplitN(fe.Namespace(), ".", 2)[0]+".")
		details[key] = fieldMessage(fe)
	}
	return utils.NewValidationError("Validation failed", details)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

// bind parses the JSON body into out and validates it.
func (rv *RequestValidator) bind(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return utils.NewValidationError("Invalid request body", err.Error())
	}
	return rv.Validate(out)
}

// identity returns the authenticated caller set by the auth middleware.
func identity(c *fiber.Ctx) (utils.Identity, error) {
	id, ok := utils.IdentityFrom(c)
	if !ok || id.UserID == "" {
		return utils.Identity{}, utils.NewUnauthorizedError("Not authorized to access this route")
	}
	return id, nil
}
