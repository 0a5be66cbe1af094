// Package httpx holds request helpers shared by the fiber handlers: the
// authenticated user stored by the JWT middleware, path id parsing and body
// binding with validation.
package httpx

import (
	"fmt"
	"strings"

	"github.com/jacinta25/social-media-API/internal/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userIDKey = "user_id"

var validate = validator.New(validator.WithRequiredStructEnabled())

func SetUserID(c *fiber.Ctx, userID string) {
	c.Locals(userIDKey, userID)
}

// UserID returns the authenticated user id or an Unauthorized error when the
// route was reached without the auth middleware.
func UserID(c *fiber.Ctx) (string, error) {
	userID, ok := c.Locals(userIDKey).(string)
	if !ok || userID == "" {
		return "", apperror.Unauthorized("authentication required")
	}
	return userID, nil
}

// ParamID reads a uuid path parameter. A malformed id cannot name an existing
// row, so it is reported as NotFound for the given entity.
func ParamID(c *fiber.Ctx, name, entity string) (string, error) {
	raw := c.Params(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperror.NotFound(entity + " not found")
	}
	return id.String(), nil
}

// Bind parses the request body into dst and validates its struct tags.
func Bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperror.Invalid("invalid payload")
	}
	return Validate(dst)
}

func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return apperror.Invalid(FormatValidationError(err))
	}
	return nil
}

func FormatValidationError(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, fieldMessage(fe))
	}
	return strings.Join(messages, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", field)
	case "alphanumunicode":
		return fmt.Sprintf("%s may only contain letters and digits", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
