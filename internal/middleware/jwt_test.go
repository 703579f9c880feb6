package middleware

import (
	"context"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/onramp-pay/onramp/internal/auth"
	"github.com/onramp-pay/onramp/internal/config"
	"github.com/onramp-pay/onramp/internal/identity"
)

func TestJWTAuth(t *testing.T) {
	repo := identity.NewMemoryRepository()
	ids := identity.NewService(repo, identity.WithBcryptCost(bcrypt.MinCost))
	user, err := ids.Register(context.Background(), identity.Credentials{Phone: "8899008899", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	svc := auth.NewService(config.Config{
		JWTSecret:       "access",
		RefreshSecret:   "refresh",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	}, repo)
	pair, err := svc.Login(user)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	app := fiber.New()
	app.Get("/me", JWTAuth(svc), func(c *fiber.Ctx) error {
		uid, _ := c.Locals(LocalUserID).(int64)
		return c.SendString(strconv.FormatInt(uid, 10))
	})

	call := func(header string) int {
		req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set(fiber.HeaderAuthorization, header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if status := call(""); status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}
	if status := call("Bearer " + pair.RefreshToken); status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for refresh token, got %d", status)
	}
	if status := call("bearer " + pair.AccessToken); status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	if err := svc.Logout(context.Background(), user.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if status := call("Bearer " + pair.AccessToken); status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", status)
	}
}
