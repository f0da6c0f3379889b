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

	"taskmanager/internal/adapter/database/postgres"
	pgrepository "taskmanager/internal/adapter/database/postgres/repository"
	"taskmanager/internal/adapter/database/sqlite"
	sqliterepository "taskmanager/internal/adapter/database/sqlite/repository"
	adapterhttp "taskmanager/internal/adapter/http"
	"taskmanager/internal/adapter/http/routes"
	"taskmanager/internal/core/port"
	"taskmanager/pkg/auth"
	"taskmanager/pkg/config"
	"taskmanager/pkg/logging"
	"taskmanager/pkg/telemetry"
)

func main() {
	ctx := context.Background()

	config.LoadEnv()
	cfg := config.UserServiceConfig()

	logger, err := logging.NewLokiLogger(cfg.ServiceName, envOr("LOKI_URL", "http://localhost:3100"))

	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	defer logger.Sync()

	tel, err := telemetry.InitTelemetry(telemetry.TelemetryConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: "1.0.0",
		MetricsPort:    envOr("METRICS_PORT", "9091"),
		OTLPEndpoint:   envOr("OTLP_ENDPOINT", "localhost:4317"),
		Environment:    cfg.Environment,
	})

	if err != nil {
		log.Fatal("Failed to initialize telemetry:", err)
	}

	defer tel.Shutdown(ctx)

	metrics := telemetry.NewAppMetrics(tel.PrometheusRegistry)
	metrics.StartSystemMetrics(ctx)

	userRepo, closeDB := openUserRepository(ctx, cfg.DatabaseURL)
	defer closeDB()

	tokens := auth.NewJWT(cfg.JWTSecret, cfg.TokenTTL)
	container := adapterhttp.NewUserContainer(userRepo, tokens, metrics)

	router := routes.SetupUserRouter(routes.UserHandlersConfig{
		AuthHandler: container.AuthHandler,
		UserHandler: container.UserHandler,
		Tokens:      tokens,
		Users:       container.UserUseCase,
	}, metrics, logger, cfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logging.LogInfo(ctx, logger, "user-service starting on :"+cfg.Port)

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

// openUserRepository picks the backing store from the database URL: a
// postgres URL opens the pooled pgx store, anything else (for example
// "sqlite") opens the embedded sqlite database at DATABASE_PATH.
func openUserRepository(ctx context.Context, databaseURL string) (port.UserRepository, func()) {
	if strings.HasPrefix(databaseURL, "postgres") {
		db, err := postgres.NewDB(ctx, databaseURL, "infra/migrations")

		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}

		return pgrepository.NewUserRepository(db), db.Close
	}

	db := sqlite.NewDB()

	return sqliterepository.NewUserRepository(db), func() { db.Close() }
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}
