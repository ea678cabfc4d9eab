package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/z-cash/z_cash/internal/auth"
	"github.com/z-cash/z_cash/internal/config"
	"github.com/z-cash/z_cash/internal/identity"
)

// UserIDKey is the locals key holding the authenticated account id.
const UserIDKey = "user_id"

// JWTAuth resolves the bearer token to an account id. Everything behind it
// only ever sees the resolved id, never the credential.
func JWTAuth(cfg config.Config, repo identity.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		claims, err := auth.ParseAndVerifyHS256(tokenStr, []byte(cfg.JWTSecret))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}
		if _, err := repo.FindByID(c.UserContext(), sub); err != nil {
			return fiber.NewError(http.StatusUnauthorized, "unknown account")
		}

		c.Locals(UserIDKey, sub)
		return c.Next()
	}
}
