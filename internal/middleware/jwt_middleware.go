package middleware

import (
	"log"
	"strings"

	"todoapp/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired is a Fiber middleware that checks for a valid JWT bearer
// token and stores the authenticated identity in the request context.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": "Authorization header is required",
				"code":    fiber.StatusUnauthorized,
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": "Authorization header format must be 'Bearer <token>'",
				"code":    fiber.StatusUnauthorized,
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": "Invalid or expired token",
				"code":    fiber.StatusUnauthorized,
			})
		}

		username, ok := claims["username"].(string)
		if !ok || username == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": "Invalid or expired token",
				"code":    fiber.StatusUnauthorized,
			})
		}

		// Store the authenticated identity for subsequent handlers
		c.Locals("username", username)
		c.Locals("user_id", claims["user_id"])

		return c.Next()
	}
}
