package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/skuengine/internal"
	"github.com/dukerupert/skuengine/internal/cache"
	"github.com/dukerupert/skuengine/internal/events"
	"github.com/dukerupert/skuengine/internal/handler"
	"github.com/dukerupert/skuengine/internal/postgres"
	"github.com/dukerupert/skuengine/internal/repository"
	"github.com/dukerupert/skuengine/internal/router"
	"github.com/dukerupert/skuengine/internal/telemetry"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize Sentry
	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Enabled:          cfg.Sentry.Enabled,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		Debug:            cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer flushSentry()
	defer telemetry.RecoverWithSentry()

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if err := internal.RunMigrations(ctx, sqlDB, logger); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	repo := repository.New(pool)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewSkuMetrics("skuengine", registry)

	skuCache := cache.NewSkuCache(cfg.Sku.CacheTTL)

	if cfg.Sku.CacheTTL > 0 {
		go func() {
			_ = cache.RunJanitor(ctx, skuCache, cfg.Sku.CacheTTL, logger)
		}()
	}

	checks := map[string]router.Checker{
		"database": router.CheckFunc(pool.Ping),
	}

	// Event bus
	instanceID := cfg.InstanceID + "-" + uuid.NewString()[:8]
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATS.URL != "" {
		conn, err := nats.Connect(cfg.NATS.URL,
			nats.Name("skuengine "+instanceID),
			nats.MaxReconnects(-1),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				if err != nil {
					logger.Warn("NATS disconnected", slog.String("error", err.Error()))
				}
			}),
			nats.ReconnectHandler(func(c *nats.Conn) {
				// Writes seen by others while disconnected were missed.
				skuCache.Invalidate()
				logger.Info("NATS reconnected", slog.String("url", c.ConnectedUrl()))
			}),
		)
		if err != nil {
			return fmt.Errorf("nats connection failed: %w", err)
		}
		defer conn.Drain()

		if _, err := events.Subscribe(conn, cfg.NATS.SubjectPrefix, instanceID, skuCache, logger); err != nil {
			return fmt.Errorf("nats subscribe failed: %w", err)
		}
		publisher = events.NewNATSPublisher(conn, cfg.NATS.SubjectPrefix, instanceID)
		checks["nats"] = router.CheckFunc(func(context.Context) error {
			if !conn.IsConnected() {
				return fmt.Errorf("nats status %s", conn.Status())
			}
			return nil
		})
		logger.Info("NATS connected", slog.String("url", conn.ConnectedUrl()), slog.String("instance", instanceID))
	}

	// Initialize services
	skuService := postgres.NewSkuService(repo, postgres.SkuSettings{
		Pattern:      cfg.Sku.Pattern,
		Placeholders: cfg.Sku.Placeholders,
	}, postgres.SkuServiceDeps{
		Cache:     skuCache,
		Publisher: publisher,
		Metrics:   metrics,
		Logger:    logger,
	})

	r := router.NewOps(router.OpsConfig{
		Gatherer: registry,
		Checks:   checks,
		Logger:   logger,
		HTTP:     telemetry.NewHTTPMetrics("skuengine", registry),
	})
	handler.RegisterSkuRoutes(r, handler.NewSkuHandler(skuService, logger))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr, "pattern", cfg.Sku.Pattern)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
