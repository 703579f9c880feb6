package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); !errors.Is(err, ErrMissingJWTSecret) {
		t.Fatalf("expected ErrMissingJWTSecret, got %v", err)
	}
}

func TestLoadDevDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("REFRESH_SECRET", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("WEBHOOK_PORT", "")
	t.Setenv("CAPTURE_TOKEN_TTL_SECONDS", "")
	t.Setenv("CAPTURE_TOKEN_TTL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RefreshSecret != "s3cret" {
		t.Fatalf("expected refresh secret to fall back to JWT secret, got %q", cfg.RefreshSecret)
	}
	if cfg.Address() != ":8080" || cfg.WebhookAddress() != ":3003" {
		t.Fatalf("unexpected addresses %s %s", cfg.Address(), cfg.WebhookAddress())
	}
	if cfg.CaptureTokenTTL != defaultCaptureTokenTTL {
		t.Fatalf("expected default capture ttl, got %s", cfg.CaptureTokenTTL)
	}
	if !cfg.AutoProvision {
		t.Fatal("auto provisioning must default to on")
	}
}

func TestLoadProductionRequiresStores(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL in production")
	}
}

func TestLoadDurationOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("ACCESS_TOKEN_TTL", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ShutdownPeriod != 3*time.Second {
		t.Fatalf("expected 3s shutdown, got %s", cfg.ShutdownPeriod)
	}
	if cfg.AccessTokenTTL != 90*time.Second {
		t.Fatalf("expected 90s access ttl, got %s", cfg.AccessTokenTTL)
	}
}

func TestLoadRejectsBadBcryptCost(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("BCRYPT_COST", "99")

	if _, err := Load(); err == nil {
		t.Fatal("expected bcrypt cost error")
	}
}
