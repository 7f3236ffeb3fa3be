package handlers

import (
	"log"

	"agenthub/internal/dbschema"
	"agenthub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UtilsHandler handles utility endpoints
type UtilsHandler struct{}

// NewUtilsHandler creates a new utils handler
func NewUtilsHandler() *UtilsHandler {
	return &UtilsHandler{}
}

// InspectSchema connects to an external database and returns its structure.
// POST /utils/db/schema
func (h *UtilsHandler) InspectSchema(c *fiber.Ctx) error {
	var req models.SchemaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := dbschema.Inspect(c.Context(), req)
	if err != nil {
		log.Printf("❌ Schema inspection failed: %v", err)
		return respondError(c, err)
	}
	if result.Status == "error" {
		return c.Status(fiber.StatusBadRequest).JSON(result)
	}
	return c.JSON(result)
}
