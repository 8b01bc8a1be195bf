package middleware

import (
	"log/slog"
	"strings"

	"pharmacy/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// LocalUserID is the fiber.Ctx locals key holding the authenticated user ID.
const LocalUserID = "user_id"

// OptionalAuth validates a bearer token when one is sent and stores its user_id claim in
// the request locals. Requests without an Authorization header pass through unchanged.
func OptionalAuth(tokens *auth.TokenService, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Next()
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":  "Unauthorized",
				"detail": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := tokens.Validate(parts[1])
		if err != nil {
			log.Warn("jwt validation failed", "err", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":  "Unauthorized",
				"detail": "Invalid or expired token",
			})
		}

		if userID, ok := auth.UserID(claims); ok {
			c.Locals(LocalUserID, userID)
		}
		return c.Next()
	}
}
