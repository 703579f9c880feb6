package main

import (
	"context"
	"fmt"
	"os"

	"github.com/onramp-pay/onramp/internal/config"
	"github.com/onramp-pay/onramp/internal/infra"
	"github.com/onramp-pay/onramp/internal/logging"
	"github.com/onramp-pay/onramp/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With("app", "bankwebhook")
	if cfg.WebhookSecret == "" {
		logger.Warn("WEBHOOK_SECRET not set, deliveries are not authenticated")
	}

	stores, err := infra.Connect(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("connect stores", "error", err)
		os.Exit(1)
	}
	defer stores.Close(logger)

	srv, err := server.NewWebhook(cfg, stores.DB, stores.Cache, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	if err := server.Run(srv, cfg.ShutdownPeriod, logger); err != nil {
		logger.Error("server error", "error", err)
		stores.Close(logger)
		os.Exit(1)
	}
}
