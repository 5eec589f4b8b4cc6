package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"rentbot/internal/amqp"
	"rentbot/internal/backend"
	"rentbot/internal/billing"
	"rentbot/internal/bot"
	"rentbot/internal/config"
	"rentbot/internal/groupme"
	"rentbot/internal/ledger"
	"rentbot/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting rentbot-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Ledger store
	factory := backend.NewFactory(logger)
	result, err := factory.CreateBackend(ctx, backend.Config{
		Type:                backend.BackendType(cfg.DataBackend),
		SQLiteDBPath:        cfg.SQLiteDBPath,
		GoogleSpreadsheetID: cfg.GoogleSpreadsheetID,
		GoogleSheetName:     cfg.GoogleSheetName,
	})
	if err != nil {
		logger.Error("Failed to initialize ledger backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	svc := ledger.NewService(result.Store)
	chat := groupme.New(cfg.GroupMeToken, cfg.GroupMeBotID)

	var source billing.Source
	if cfg.BillingURL != "" {
		source = billing.NewHTTPSource(cfg.BillingURL)
		logger.Info("Billing source configured", "url", cfg.BillingURL)
	} else {
		source = billing.NewStaticSource(cfg.StaticRentCents, cfg.StaticUtilityCents)
		logger.Info("Using static billing amounts",
			"rent_cents", cfg.StaticRentCents,
			"utility_cents", cfg.StaticUtilityCents)
	}

	chargeWorker := worker.NewChargeWorker(svc, source, chat, worker.Config{
		BotName: cfg.BotName,
		Chat: bot.Config{
			LandlordName: cfg.LandlordName,
			VenmoURL:     cfg.LandlordVenmo,
			PayPalURL:    cfg.LandlordPayPal,
			AuditURL:     cfg.AuditSheetURL,
		},
	})

	group, ctx := errgroup.WithContext(ctx)

	// Consume charge-fetch requests from the webhook server
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		group.Go(func() error {
			return amqpClient.ConsumeChargeFetch(ctx, chargeWorker.HandleFetchMessage)
		})
	} else {
		logger.Info("AMQP disabled - running reminder loop only")
	}

	// First-of-month reminder loop
	group.Go(func() error {
		return chargeWorker.RunReminderLoop(ctx, cfg.ReminderCheckPeriod)
	})

	logger.Info("Worker running", "backend", cfg.DataBackend)
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
