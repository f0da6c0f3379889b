package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	rediscache "taskmanager/internal/adapter/cache/redis"
	"taskmanager/internal/adapter/database/postgres"
	pgrepository "taskmanager/internal/adapter/database/postgres/repository"
	"taskmanager/internal/adapter/database/sqlite"
	sqliterepository "taskmanager/internal/adapter/database/sqlite/repository"
	adapterhttp "taskmanager/internal/adapter/http"
	"taskmanager/internal/adapter/http/routes"
	"taskmanager/internal/adapter/notification"
	"taskmanager/internal/adapter/session"
	"taskmanager/internal/core/port"
	"taskmanager/pkg/config"
	"taskmanager/pkg/logging"
	"taskmanager/pkg/telemetry"
)

func main() {
	ctx := context.Background()

	config.LoadEnv()
	cfg := config.TaskServiceConfig()

	logger, err := logging.NewLokiLogger(cfg.ServiceName, envOr("LOKI_URL", "http://localhost:3100"))

	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	defer logger.Sync()

	tel, err := telemetry.InitTelemetry(telemetry.TelemetryConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: "1.0.0",
		MetricsPort:    envOr("METRICS_PORT", "9092"),
		OTLPEndpoint:   envOr("OTLP_ENDPOINT", "localhost:4317"),
		Environment:    cfg.Environment,
	})

	if err != nil {
		log.Fatal("Failed to initialize telemetry:", err)
	}

	defer tel.Shutdown(ctx)

	metrics := telemetry.NewAppMetrics(tel.PrometheusRegistry)
	metrics.StartSystemMetrics(ctx)

	taskRepo, closeDB := openTaskRepository(ctx, cfg.DatabaseURL)
	defer closeDB()

	cache, err := rediscache.New(ctx, cfg.RedisURL)

	if err != nil {
		log.Fatal("Failed to connect to redis:", err)
	}

	defer cache.Close()

	resolver := session.NewRedisResolver(cache.Client())

	var notifier port.Notifier

	if cfg.SMTP.Host != "" {
		mailer := notification.NewMailer(cfg.SMTP, logger, metrics)
		mailer.Start(ctx)
		notifier = mailer
	} else {
		notifier = notification.NewNoop()
	}

	container := adapterhttp.NewTaskContainer(
		taskRepo, cache, notifier, metrics, cfg.ListCacheTTL)

	router := routes.SetupTaskRouter(routes.TaskHandlersConfig{
		TaskHandler: container.TaskHandler,
		Sessions:    resolver,
		Metrics:     metrics,
	}, metrics, logger, cfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logging.LogInfo(ctx, logger, "task-service starting on :"+cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logging.LogInfo(ctx, logger, "Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.LogError(ctx, logger, err, "Forced shutdown")
	}
}

// openTaskRepository picks the backing store from the database URL: a
// postgres URL opens the pooled pgx store, anything else (for example
// "sqlite") opens the embedded sqlite database at DATABASE_PATH.
func openTaskRepository(ctx context.Context, databaseURL string) (port.TaskRepository, func()) {
	if strings.HasPrefix(databaseURL, "postgres") {
		db, err := postgres.NewDB(ctx, databaseURL, "infra/migrations")

		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}

		return pgrepository.NewTaskRepository(db), db.Close
	}

	db := sqlite.NewDB()

	return sqliterepository.NewTaskRepository(db), func() { db.Close() }
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}
