package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/onramp-pay/onramp/internal/auth"
	"github.com/onramp-pay/onramp/internal/config"
	"github.com/onramp-pay/onramp/internal/funding"
	"github.com/onramp-pay/onramp/internal/identity"
	"github.com/onramp-pay/onramp/internal/ledger"
	"github.com/onramp-pay/onramp/internal/logging"
	"github.com/onramp-pay/onramp/internal/middleware"
	"github.com/onramp-pay/onramp/internal/notification"
	"github.com/onramp-pay/onramp/internal/wallet"
	"github.com/onramp-pay/onramp/internal/webhook"
)

// Deps aggregates shared dependencies required to wire routes. Ledger and
// Identities override the stores derived from DB, which tests use to share
// state between the two apps.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger

	Ledger     ledger.Ledger
	Identities identity.Repository
}

// Setup configures middlewares and the user-facing API routes.
func Setup(app *fiber.App, d Deps) error {
	d, err := prepare(d)
	if err != nil {
		return err
	}
	use(app, d, "api")
	RegisterHealthRoutes(app, d)

	walletSvc := wallet.NewService(d.Ledger)
	notifier := notification.NewLoggerNotifier(d.Logger)
	identitySvc := identity.NewService(d.Identities,
		identity.WithBcryptCost(d.Cfg.BcryptCost),
		identity.WithAutoProvision(d.Cfg.AutoProvision),
		identity.WithLogger(d.Logger),
	)
	authSvc := auth.NewService(d.Cfg, d.Identities)
	fundingSvc, err := funding.NewService(d.Ledger, funding.StaticBank{}, notifier)
	if err != nil {
		return err
	}

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	jwtmw := middleware.JWTAuth(authSvc)
	RegisterAuthRoutes(api, auth.NewHandler(identitySvc, authSvc, walletSvc, d.Logger),
		middleware.LoginRateLimit(d.Cache, d.Cfg.LoginAttemptsPerM, d.Logger), jwtmw)

	protected := api.Group("", jwtmw)
	RegisterIdentityRoutes(protected, identity.NewHandler(identitySvc))
	RegisterWalletRoutes(protected, wallet.NewHandler(walletSvc))

	var idem fiber.Handler
	if d.Cache != nil {
		idem = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}
	RegisterFundingRoutes(protected, funding.NewHandler(fundingSvc), idem)

	return nil
}

// SetupWebhook configures the bank webhook receiver.
func SetupWebhook(app *fiber.App, d Deps) error {
	d, err := prepare(d)
	if err != nil {
		return err
	}
	use(app, d, "webhook")
	RegisterHealthRoutes(app, d)

	var guard webhook.TokenGuard
	if d.Cache != nil {
		guard = webhook.NewRedisGuard(d.Cache, d.Cfg.CaptureTokenTTL)
	} else {
		guard = webhook.NewMemoryGuard(d.Cfg.CaptureTokenTTL)
	}
	processor := webhook.NewProcessor(d.Ledger, guard, notification.NewLoggerNotifier(d.Logger), d.Logger)
	RegisterWebhookRoutes(app, webhook.NewHandler(processor, d.Cfg.WebhookSecret, d.Logger))
	return nil
}

// prepare enforces store presence outside dev and fills in the stores.
func prepare(d Deps) (Deps, error) {
	if !d.Cfg.IsDev() {
		if d.DB == nil && d.Ledger == nil {
			return d, fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return d, fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}
	if d.Ledger == nil {
		if d.DB != nil {
			d.Ledger = ledger.NewPostgresLedger(d.DB)
		} else {
			d.Ledger = ledger.NewInMemory()
		}
	}
	if d.Identities == nil {
		if d.DB != nil {
			d.Identities = identity.NewPostgresRepository(d.DB)
		} else {
			d.Identities = identity.NewMemoryRepository()
		}
	}
	return d, nil
}

func use(app *fiber.App, d Deps, name string) {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Metrics(name))
	app.Use(middleware.Audit(d.Logger.With(slog.String("app", name))))
}
