package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ticketpay/config"
	httpHandler "ticketpay/internal/adapter/http/handler"
	"ticketpay/internal/adapter/notify"
	paypalClient "ticketpay/internal/adapter/paypal"
	pgStorage "ticketpay/internal/adapter/storage/postgres"
	redisStorage "ticketpay/internal/adapter/storage/redis"
	"ticketpay/internal/core/ports"
	"ticketpay/internal/service"
	"ticketpay/internal/worker"
	"ticketpay/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env in development; env vars win over file values either way.
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting TicketPay payment service")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	organizerRepo := pgStorage.NewOrganizerRepo(pool)
	walletRepo := pgStorage.NewWalletRepo(pool, cfg.Payout.Currency)
	payoutRepo := pgStorage.NewPayoutRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	webhookRepo := pgStorage.NewWebhookEventRepo(pool)
	catalog := pgStorage.NewEventCatalogAdapter(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	dedupStore := redisStorage.NewEventDedupStore(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Outbound adapters
	paypal := paypalClient.NewClient(cfg.PayPal, cfg.Payout.Currency, logger.Component(log, "paypal"))
	notifier := notify.NewLogNotifier(logger.Component(log, "notify"))

	// Business services
	ledgerSvc := service.NewLedgerService(walletRepo, payoutRepo, txRepo, transactor, logger.Component(log, "ledger"))
	onboardingSvc := service.NewOnboardingService(organizerRepo, paypal, notifier, logger.Component(log, "onboarding"))
	orderSvc := service.NewOrderService(txRepo, organizerRepo, catalog, ledgerSvc, paypal, transactor, cfg.Payout.Currency, logger.Component(log, "orders"))
	payoutSvc := service.NewPayoutService(organizerRepo, payoutRepo, txRepo, ledgerSvc, paypal, cfg.Payout.MinimumAmount, cfg.Payout.Currency, logger.Component(log, "payouts"))
	walletSvc := service.NewWalletService(walletRepo, txRepo, cfg.Payout.Currency, logger.Component(log, "wallet"))
	webhookSvc := service.NewWebhookService(paypal, organizerRepo, txRepo, webhookRepo, dedupStore, onboardingSvc, orderSvc, ledgerSvc, notifier, logger.Component(log, "webhooks"))

	// Reconciliation worker: settles payments whose webhooks never arrived.
	reconciler := worker.NewReconciler(txRepo, orderSvc, paypal, cfg.Worker.StaleAfter, cfg.Worker.BatchSize, logger.Component(log, "reconciler"))
	if err := reconciler.Start(cfg.Worker.ReconcileSchedule); err != nil {
		log.Fatal().Err(err).Msg("Failed to start reconciliation worker")
	}
	defer reconciler.Stop()

	// Health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		OnboardingSvc:  onboardingSvc,
		OrderSvc:       orderSvc,
		WalletSvc:      walletSvc,
		PayoutSvc:      payoutSvc,
		WebhookSvc:     webhookSvc,
		JWTSecret:      cfg.Auth.JWTSecret,
		JWTIssuer:      cfg.Auth.Issuer,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
