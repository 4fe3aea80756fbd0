package handlers

import (
	"todoapp/internal/apperrors"

	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error onto the {status, message, error, code}
// envelope. Unclassified errors come back as a generic 500 so store details
// never leak to clients.
func respondError(c *fiber.Ctx, err error) error {
	appErr := apperrors.From(err)
	status := appErr.Kind.HTTPStatus()
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": appErr.Message,
		"error":   appErr.Code,
		"code":    status,
	})
}
