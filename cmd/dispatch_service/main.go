package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/adapters/feedback"
	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/adapters/senders"
	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/app"
	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/repository/postgres"
	transporthttp "github.com/opencomms/messaging-dispatch/internal/dispatch_service/transport/http"
	"github.com/opencomms/messaging-dispatch/internal/platform/config"
	"github.com/opencomms/messaging-dispatch/internal/platform/database"
	"github.com/opencomms/messaging-dispatch/internal/platform/logger"
	"github.com/opencomms/messaging-dispatch/internal/platform/messagebroker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("Dispatch service starting", "log_level", cfg.LogLevel)

	ctx := context.Background()

	dbPool, err := database.NewDBPool(ctx, cfg.PostgresDSN)
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	bus, err := messagebroker.NewNATSClient(cfg.NATSUrl, "dispatch-service", appLogger)
	if err != nil {
		appLogger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer bus.Close()

	messageRepo := postgres.NewPgMessageRepository(dbPool)
	historyRepo := postgres.NewPgHistoryRepository(dbPool)
	whitelistRepo := postgres.NewPgWhitelistRepository(dbPool, appLogger)

	retry := app.NewRetryPolicy(app.RetryConfig{
		MaxAttempts:  cfg.RetryMaxAttempts,
		InitialDelay: cfg.RetryInitialDelay(),
		MaxDelay:     cfg.RetryMaxDelay(),
	})

	token := cfg.SenderAPIToken
	emailSender := senders.NewEmailSender(appLogger, cfg.EmailSenderURL, token, nil)
	smsSender := senders.NewSMSSender(appLogger, cfg.SMSSenderURL, token, nil)
	webMessageSender := senders.NewWebMessageSender(appLogger, cfg.WebMessageSenderURL, token, nil)
	digitalMailSender := senders.NewDigitalMailSender(appLogger, cfg.DigitalMailSenderURL, token, nil)
	snailMailSender := senders.NewSnailMailSender(appLogger, cfg.SnailMailSenderURL, token, nil)
	invoiceSender := senders.NewDigitalInvoiceSender(appLogger, cfg.DigitalInvoiceSenderURL, token, nil)
	slackSender := senders.NewSlackSender(appLogger, cfg.SlackWebhookURL, token, nil)
	feedbackClient := feedback.NewClient(appLogger, cfg.FeedbackSettingsURL, token, nil)

	consumer := app.NewDispatchConsumer(bus, appLogger, cfg.DispatchTimeout)
	consumer.Register(app.NewEmailDispatcher(messageRepo, whitelistRepo, emailSender, retry, appLogger))
	consumer.Register(app.NewSMSDispatcher(messageRepo, whitelistRepo, smsSender, retry, appLogger))
	consumer.Register(app.NewWebMessageDispatcher(messageRepo, whitelistRepo, webMessageSender, retry, appLogger))
	consumer.Register(app.NewDigitalMailDispatcher(messageRepo, whitelistRepo, digitalMailSender, retry, appLogger))
	consumer.Register(app.NewSnailMailDispatcher(messageRepo, snailMailSender, retry, appLogger))
	consumer.Register(app.NewDigitalInvoiceDispatcher(messageRepo, invoiceSender, retry, appLogger))
	consumer.Register(app.NewSlackDispatcher(messageRepo, slackSender, retry, appLogger))
	consumer.Register(app.NewLetterProcessor(messageRepo, digitalMailSender, snailMailSender, retry, appLogger))
	consumer.Register(app.NewMessageProcessor(messageRepo, feedbackClient, bus, appLogger))

	appCtx, cancelAppCtx := context.WithCancel(ctx)
	defer cancelAppCtx()

	if err := consumer.Start(appCtx); err != nil {
		appLogger.Error("Failed to start dispatch consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Stop()

	// Crash recovery: replay everything still PENDING before accepting new
	// work is even relevant; the consumer is already subscribed so replayed
	// signals land on this instance or its peers.
	recovery := app.NewRecoveryHandler(messageRepo, bus, appLogger)
	if replayed, err := recovery.ReplayPending(appCtx); err != nil {
		appLogger.Error("Startup recovery failed", "error", err)
		os.Exit(1)
	} else if replayed > 0 {
		appLogger.Info("Startup recovery replayed pending messages", "count", replayed)
	}

	var sweeper *cron.Cron
	if cfg.RecoverySweepSpec != "" {
		sweeper = cron.New()
		if _, err := recovery.Schedule(sweeper, cfg.RecoverySweepSpec); err != nil {
			appLogger.Error("Failed to schedule recovery sweep", "error", err, "spec", cfg.RecoverySweepSpec)
			os.Exit(1)
		}
		sweeper.Start()
		defer sweeper.Stop()
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: transporthttp.NewServer(historyRepo, appLogger).Router(),
	}
	go func() {
		appLogger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed", "error", err)
		}
	}()

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quitChan
	appLogger.Info("Shutdown signal received", "signal", receivedSignal.String())

	cancelAppCtx()
	_ = httpServer.Shutdown(context.Background())
	appLogger.Info("Dispatch service stopped")
}
