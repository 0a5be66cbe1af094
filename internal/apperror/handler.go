package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// ErrorHandler renders every error returned by a fiber handler as
// {"error": message}. Internal errors are logged and their detail hidden.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	kind := KindOf(err)
	if kind == KindInternal {
		log.WithFields(log.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).WithError(err).Error("request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(StatusOf(kind)).JSON(fiber.Map{"error": err.Error()})
}
