package handlers

import (
	"vendora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// extractUserClaims pulls the authenticated claims set by the auth
// middleware.
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}
