package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/onramp-pay/onramp/internal/logging"
)

func login(t *testing.T, app *fiber.App, phone string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(`{"phone":"`+phone+`","password":"x"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestLoginRateLimitPerPhone(t *testing.T) {
	mr, cache := newRedis(t)
	app := fiber.New()
	app.Post("/login", LoginRateLimit(cache, 2, logging.Discard()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 2; i++ {
		if status := login(t, app, "8899008899"); status != fiber.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, status)
		}
	}
	if status := login(t, app, "8899008899"); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", status)
	}
	if status := login(t, app, "1111111111"); status != fiber.StatusOK {
		t.Fatalf("other phone must not be limited, got %d", status)
	}

	mr.FastForward(time.Minute + time.Second)
	if status := login(t, app, "8899008899"); status != fiber.StatusOK {
		t.Fatalf("expected window reset, got %d", status)
	}
}

func TestLoginRateLimitKeysFormBodiesByPhone(t *testing.T) {
	_, cache := newRedis(t)
	app := fiber.New()
	app.Post("/login", LoginRateLimit(cache, 1, logging.Discard()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	form := func(phone string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader("phone="+phone+"&password=x"))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if status := form("8899008899"); status != fiber.StatusOK {
		t.Fatalf("first attempt: expected 200, got %d", status)
	}
	if status := form("8899008899"); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 for the same phone, got %d", status)
	}
	// Same client address, different phone: only a phone-keyed limiter lets it through.
	if status := form("1111111111"); status != fiber.StatusOK {
		t.Fatalf("other phone must not be limited, got %d", status)
	}
}

func TestLoginRateLimitWithoutRedis(t *testing.T) {
	app := fiber.New()
	app.Post("/login", LoginRateLimit(nil, 1, nil), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	for i := 0; i < 3; i++ {
		if status := login(t, app, "8899008899"); status != fiber.StatusOK {
			t.Fatalf("expected no-op limiter, got %d", status)
		}
	}
}
