package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"currency-exchange-service/internal/adapter/cache"
	httpRouter "currency-exchange-service/internal/adapter/http"
	"currency-exchange-service/internal/adapter/repository"
	"currency-exchange-service/internal/config"
	"currency-exchange-service/internal/domain/ports"
	"currency-exchange-service/internal/metrics"
	"currency-exchange-service/internal/service"
	"currency-exchange-service/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger(os.Getenv("LOG_LEVEL")).Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Log.Level)
	log.Info("Starting currency exchange service")

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)

	rateCache, closeCache, err := newRateCache(cfg.Cache, log.With("component", "rate_cache"))
	if err != nil {
		log.Error("Failed to initialise rate cache", "error", err)
		os.Exit(1)
	}
	defer closeCache()

	provider := repository.NewExchangeAPI(cfg.ExchangeAPI, log.With("component", "exchange_api"), appMetrics)
	directory := service.NewCurrencyDirectory(provider, log.With("component", "currency_directory"))

	exchangeService := service.NewExchangeService(
		directory,
		provider,
		rateCache,
		log.With("component", "exchange_service"),
		appMetrics,
		service.WithConcurrency(cfg.Converter.Concurrency),
	)
	handler := httpRouter.NewHandler(exchangeService, log, appMetrics)

	router := httpRouter.NewRouter(handler, log, appMetrics, prometheus.DefaultGatherer)
	routes := router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      routes,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, cancelSweep := context.WithCancel(context.Background())
	if cfg.Cache.TTL > 0 {
		go sweepCache(ctx, rateCache, cfg.Cache.SweepInterval, log)
	}

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	cancelSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}

// newRateCache builds the configured cache backend and its cleanup func.
func newRateCache(cfg config.CacheConfig, log *logger.Logger) (ports.RateCache, func(), error) {
	switch cfg.Backend {
	case config.CacheBackendBadger:
		if err := os.MkdirAll(cfg.BadgerPath, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		db, err := cache.OpenBadger(cfg.BadgerPath)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing badger", "error", err)
			}
		}
		log.Info("Using badger rate cache", "path", cfg.BadgerPath, "ttl", cfg.TTL)
		return cache.NewBadgerCache(db, cfg.TTL, log), closeDB, nil
	default:
		log.Info("Using in-memory rate cache", "ttl", cfg.TTL)
		return cache.NewMemoryCache(cfg.TTL, log), func() {}, nil
	}
}

// sweepCache periodically drops expired rate tables
func sweepCache(ctx context.Context, rateCache ports.RateCache, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := rateCache.ClearExpired(ctx); err != nil {
				log.Error("Failed to clear expired rates", "error", err)
			}
		case <-ctx.Done():
			log.Info("Stopping cache sweep goroutine")
			return
		}
	}
}
