package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/onramp-pay/onramp/internal/auth"
)

// Locals keys set by JWTAuth.
const (
	LocalUserID = "user_id"
	LocalClaims = "claims"
)

// JWTAuth validates bearer access tokens, including the token version, and
// exposes the caller's id and claims to downstream handlers.
func JWTAuth(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if len(authz) < len("Bearer ") || !strings.EqualFold(authz[:len("Bearer ")], "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])

		claims, err := svc.Verify(c.UserContext(), tokenStr)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}
		uid, err := auth.UserID(claims)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		c.Locals(LocalUserID, uid)
		c.Locals(LocalClaims, claims)
		return c.Next()
	}
}
