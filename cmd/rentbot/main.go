package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"rentbot/internal/amqp"
	"rentbot/internal/backend"
	"rentbot/internal/billing"
	"rentbot/internal/bot"
	"rentbot/internal/config"
	"rentbot/internal/groupme"
	apphttp "rentbot/internal/http"
	"rentbot/internal/ledger"
	"rentbot/internal/worker"
)

func main() {
	listGroups := flag.Bool("list-groups", false, "list the groups visible to GROUPME_TOKEN and exit")
	createBot := flag.String("create-bot", "", "register the bot in the given group ID and exit")
	callbackURL := flag.String("callback-url", "", "webhook callback URL for -create-bot")
	flag.Parse()

	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()

	// Setup modes run before validation: registering the bot is how the
	// operator obtains GROUPME_BOT_ID in the first place.
	if *listGroups || *createBot != "" {
		if err := runSetup(cfg, *listGroups, *createBot, *callbackURL); err != nil {
			logger.Error("Setup command failed", "error", err)
			os.Exit(1)
		}
		return
	}

	logger.Info("Starting rentbot")

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	chatCfg := bot.Config{
		LandlordName: cfg.LandlordName,
		VenmoURL:     cfg.LandlordVenmo,
		PayPalURL:    cfg.LandlordPayPal,
		AuditURL:     cfg.AuditSheetURL,
	}
	dispatcher := bot.NewDispatcher(svc, chat, chatCfg)

	// Charge fetch path: queue if AMQP is configured, otherwise in-process.
	var publisher apphttp.ChargePublisher
	var fetcher apphttp.ChargeFetcher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP publisher initialized - charge fetches run on the worker")
	} else {
		source := chargeSource(cfg)
		fetcher = worker.NewChargeWorker(svc, source, chat, worker.Config{
			BotName: cfg.BotName,
			Chat:    chatCfg,
		})
		logger.Info("AMQP disabled - charge fetches run in-process")
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Dispatcher: dispatcher,
		Ledger:     svc,
		Messenger:  chat,
		Publisher:  publisher,
		Fetcher:    fetcher,
		Landlord:   cfg.LandlordName,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting rentbot server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

// runSetup handles the one-off operator commands for wiring the bot into a
// GroupMe group.
func runSetup(cfg *config.Config, listGroups bool, groupID, callbackURL string) error {
	if cfg.GroupMeToken == "" {
		return fmt.Errorf("GROUPME_TOKEN is required for setup commands")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := groupme.New(cfg.GroupMeToken, cfg.GroupMeBotID)

	if listGroups {
		groups, err := client.ListGroups(ctx)
		if err != nil {
			return err
		}
		for _, g := range groups {
			fmt.Printf("%s\t%s\n", g.ID, g.Name)
		}
		return nil
	}

	raw, err := client.CreateBot(ctx, groupme.BotConfig{
		Name:        cfg.BotName,
		GroupID:     groupID,
		CallbackURL: callbackURL,
	})
	if err != nil {
		return err
	}
	// The response carries the new bot ID; print it for GROUPME_BOT_ID.
	fmt.Println(raw)
	return nil
}

// chargeSource picks where charge amounts come from: a billing endpoint if
// configured, otherwise the static amounts from the environment.
func chargeSource(cfg *config.Config) billing.Source {
	if cfg.BillingURL != "" {
		return billing.NewHTTPSource(cfg.BillingURL)
	}
	return billing.NewStaticSource(cfg.StaticRentCents, cfg.StaticUtilityCents)
}
