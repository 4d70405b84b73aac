package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/seo-suite/backend/analyzer"
	"github.com/seo-suite/backend/api"
	"github.com/seo-suite/backend/auth"
	"github.com/seo-suite/backend/billing"
	"github.com/seo-suite/backend/config"
	"github.com/seo-suite/backend/logging"
	"github.com/seo-suite/backend/middleware"
	"github.com/seo-suite/backend/searchconsole"
	"github.com/seo-suite/backend/stats"
	"github.com/seo-suite/backend/store"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = 10 * time.Minute
	retainMonths    = 12
)

func main() {
	// Try .env.development first, then .env
	if !config.LoadEnvFiles() {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, logCloser, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("Server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	db, err := store.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return err
	}
	requests, err := logging.NewStatistics(filepath.Join(cfg.DataDir, "statistics.json"), cfg.GinMode == gin.DebugMode)
	if err != nil {
		logger.WithError(err).Warn("Failed to load request statistics, starting empty")
	}
	usage, err := stats.NewStorage(cfg.DataDir, logger)
	if err != nil {
		return err
	}
	usage.Cleanup(retainMonths)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Sweep()
			}
		}
	}()

	var provider billing.PaymentProvider
	if cfg.StripeSecretKey != "" {
		provider = billing.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, paid plans are disabled")
	}

	srv := api.NewServer(api.Deps{
		Store:         db,
		Analyzer:      analyzer.New(analyzer.NewFetcher(cfg.FetchTimeout), logger),
		Tokens:        auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Quota:         billing.NewQuotaChecker(db),
		Billing:       billing.NewService(db, provider, cfg.BaseURL, logger),
		SearchConsole: searchconsole.NewConnector(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI, db),
		Requests:      requests,
		Usage:         usage,
		Limiter:       limiter,
		Log:           logger,
		CORSOrigin:    cfg.CORSOrigin,
		SecureCookies: cfg.GinMode == gin.ReleaseMode,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on http://localhost:%s", cfg.Port)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
	if err := usage.Shutdown(); err != nil {
		logger.WithError(err).Error("Failed to flush usage statistics")
	}
	if err := requests.Save(); err != nil {
		logger.WithError(err).Error("Failed to save request statistics")
	}
	return nil
}
