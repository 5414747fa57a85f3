package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	backofficehttp "github.com/dejobratic/storefront/internal/backoffice/http"
	"github.com/dejobratic/storefront/internal/cart"
	carthttp "github.com/dejobratic/storefront/internal/cart/http"
	cartmemory "github.com/dejobratic/storefront/internal/cart/memory"
	cartredis "github.com/dejobratic/storefront/internal/cart/redis"
	"github.com/dejobratic/storefront/internal/config"
	"github.com/dejobratic/storefront/internal/database"
	discountpostgres "github.com/dejobratic/storefront/internal/discounts/adapters/postgres"
	idempostgres "github.com/dejobratic/storefront/internal/idempotency/postgres"
	invpostgres "github.com/dejobratic/storefront/internal/inventory/postgres"
	"github.com/dejobratic/storefront/internal/kafka"
	"github.com/dejobratic/storefront/internal/orders/adapters"
	ordershttp "github.com/dejobratic/storefront/internal/orders/adapters/http"
	orderspostgres "github.com/dejobratic/storefront/internal/orders/adapters/postgres"
	ordersapp "github.com/dejobratic/storefront/internal/orders/app"
	ordersmetrics "github.com/dejobratic/storefront/internal/orders/metrics"
	"github.com/dejobratic/storefront/internal/orders/ports"
	"github.com/dejobratic/storefront/internal/settings"
	settingspostgres "github.com/dejobratic/storefront/internal/settings/postgres"
	"github.com/dejobratic/storefront/internal/telemetry"
	"go.opentelemetry.io/otel"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := telemetry.NewLogger(parseLogLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing && cfg.Telemetry.OTelEndpoint != "",
		EnableMetrics:  cfg.Telemetry.EnableMetrics && cfg.Telemetry.OTelEndpoint != "",
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
		if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations completed")
	}

	meter := otel.Meter(cfg.Service.Name)

	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create database metrics: %w", err)
	}
	kafkaMetrics, err := kafka.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create kafka metrics: %w", err)
	}
	orderMetrics, err := ordersmetrics.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create order metrics: %w", err)
	}
	httpMetrics, err := ordershttp.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create http metrics: %w", err)
	}

	var eventBus ports.EventBus
	var busCloser interface{ Close() error }
	if len(cfg.Kafka.Brokers) > 0 {
		bus := kafka.NewEventBus(cfg.Kafka.Brokers, nil)
		eventBus = bus
		busCloser = bus
		logger.Info("kafka event bus enabled", "brokers", cfg.Kafka.Brokers)
	} else {
		eventBus = kafka.NewNoopEventBus()
		logger.Warn("no kafka brokers configured, events are logged only")
	}
	if busCloser != nil {
		defer func() {
			if err := busCloser.Close(); err != nil {
				logger.Error("event bus close failed", "error", err)
			}
		}()
	}

	ledger := invpostgres.NewLedger(pool)
	discountRepo := discountpostgres.NewRepository(pool)
	orderRepo := adapters.NewObservableRepository(orderspostgres.NewRepository(pool), dbMetrics)
	observableBus := adapters.NewObservableEventBus(eventBus, kafkaMetrics)
	idemStore := idempostgres.NewStore(pool)

	service := ordersapp.NewService(orderRepo, ledger, discountRepo, observableBus, idemStore, logger, orderMetrics)

	settingsCache := settings.NewCache(
		settingspostgres.NewStore(pool),
		time.Duration(cfg.Settings.CacheTTLSeconds)*time.Second,
	)

	var cartStore cart.Store
	if cfg.Redis.URL != "" {
		store, err := cartredis.NewStore(ctx, cfg.Redis.URL, time.Duration(cfg.Redis.CartTTLHours)*time.Hour)
		if err != nil {
			return fmt.Errorf("create cart store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("cart store close failed", "error", err)
			}
		}()
		cartStore = store
		logger.Info("redis cart store enabled")
	} else {
		cartStore = cartmemory.NewStore()
		logger.Warn("no redis configured, carts are held in memory")
	}
	cartService := cart.NewService(cartStore, ledger)

	go purgeIdempotencyKeys(ctx, logger, idemStore, time.Duration(cfg.Idempotency.RetentionHours)*time.Hour)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.CheckHealth(r.Context(), pool); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	mux.HandleFunc(cfg.HTTP.MetricsPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("# metrics are exported via OTLP\n"))
	})

	ordershttp.NewHandler(service, settingsCache).Register(mux)
	carthttp.NewHandler(cartService).Register(mux)
	backofficehttp.NewHandler(discountRepo, ledger, settingsCache).Register(mux)

	handler := withRecovery(ordershttp.WithMetrics(mux, httpMetrics))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}

// purgeIdempotencyKeys sweeps expired keys on an hourly tick until the
// context is cancelled.
func purgeIdempotencyKeys(ctx context.Context, logger *slog.Logger, store *idempostgres.Store, retention time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.PurgeOlderThan(ctx, retention)
			if err != nil {
				logger.Error("idempotency purge failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.Info("purged idempotency keys", "removed", removed)
			}
		}
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered", "error", rec)
				respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
