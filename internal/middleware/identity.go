package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// DefaultOwner is the principal assumed when no identity header is sent.
const DefaultOwner = "local"

// Identity resolves the request principal from the X-Owner-ID header and
// stores it in locals for downstream handlers. There is no authentication
// here, identity is declared by the caller.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Header values point into the reused request buffer, copy
		// before storing in locals.
		owner := utils.CopyString(c.Get("X-Owner-ID"))
		if owner == "" {
			owner = DefaultOwner
		}
		c.Locals("owner_id", owner)
		return c.Next()
	}
}
