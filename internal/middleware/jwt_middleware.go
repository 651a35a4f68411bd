package middleware

import (
	"context"
	"log"
	"strings"

	"mandale/internal/errs"

	"github.com/gofiber/fiber/v2"
)

// TokenResolver turns a bearer token into a user id. *services.AuthService
// implements it.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(resolver TokenResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		userID, err := resolver.Resolve(c.UserContext(), strings.TrimSpace(parts[1]))
		if err != nil {
			if errs.KindOf(err) != errs.KindUnauthorized {
				log.Printf("Token resolution failed: %v", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": errs.Message(err),
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}
