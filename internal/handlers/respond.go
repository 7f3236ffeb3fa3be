package handlers

import (
	"agenthub/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

// errorStatus maps the service error taxonomy onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case apperr.IsNotFound(err):
		return fiber.StatusNotFound
	case apperr.IsValidation(err):
		return fiber.StatusBadRequest
	case apperr.IsConfiguration(err):
		return fiber.StatusBadRequest
	case apperr.IsUpstream(err):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(errorStatus(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
