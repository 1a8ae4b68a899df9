package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/printloom/printloom-backend/internal/config"
	"github.com/printloom/printloom-backend/internal/fulfillment"
	"github.com/printloom/printloom-backend/internal/handler"
	"github.com/printloom/printloom-backend/internal/imagegen"
	"github.com/printloom/printloom-backend/internal/logging"
	"github.com/printloom/printloom-backend/internal/metrics"
	"github.com/printloom/printloom-backend/internal/middleware"
	"github.com/printloom/printloom-backend/internal/notification"
	"github.com/printloom/printloom-backend/internal/payments"
	"github.com/printloom/printloom-backend/internal/pipeline"
	"github.com/printloom/printloom-backend/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("printloom-api", cfg.LogLevel, cfg.AppEnv)
	metrics.Register()

	db, err := connectDB(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	providerTimeout := time.Duration(cfg.ProviderTimeoutS) * time.Second

	records := repository.NewProcessingRecordRepository(db)
	verifier := payments.NewVerifier(cfg.StripeWebhookSecret, time.Duration(cfg.WebhookToleranceS)*time.Second)
	fulfillClient := fulfillment.NewClient(cfg.ProdigiBaseURL, cfg.ProdigiAPIKey, providerTimeout)
	notifyClient := notification.NewClient(cfg.SendgridBaseURL, cfg.SendgridAPIKey, cfg.MailFromAddress, cfg.MailFromName, providerTimeout)

	orchestrator := pipeline.NewOrchestrator(verifier, records, fulfillClient, notifyClient, pipeline.Policy{
		MaxAttempts: cfg.FulfillmentMaxAttempts,
		AckBudget:   time.Duration(cfg.AckBudgetMs) * time.Millisecond,
	})

	checkoutClient := payments.NewCheckoutClient(cfg.StripeAPIKey, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL, cfg.CheckoutUnitAmount)
	imageClient := imagegen.NewClient(cfg.OpenAIAPIKey)

	webhookHandler := handler.NewWebhookHandler(orchestrator)
	checkoutHandler := handler.NewCheckoutHandler(checkoutClient)
	productsHandler := handler.NewProductsHandler(fulfillClient)
	imageHandler := handler.NewImageHandler(imageClient)
	healthHandler := handler.NewHealthHandler(db)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/webhook", webhookHandler.ReceivePaymentWebhook)
	mux.HandleFunc("POST /api/checkout", checkoutHandler.CreateSession)
	mux.HandleFunc("POST /api/generate-image", imageHandler.Generate)
	mux.HandleFunc("GET /api/products", productsHandler.List)
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.Handle("GET /metrics", promhttp.Handler())

	root := middleware.RequestID(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Early-acked webhooks may still be retrying fulfillment.
	slog.Info("draining background fulfillment")
	orchestrator.Wait()

	slog.Info("server stopped")
}

func connectDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	pool := repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	}

	var err error
	for i := range 30 {
		var db *sql.DB
		db, err = repository.NewPostgresDB(ctx, cfg.DatabaseURL, pool)
		if err == nil {
			return db, nil
		}
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}

	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", err)
}
