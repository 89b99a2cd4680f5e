package main

import (
	"coin-market-service/internal/infrastructure/config"
	"coin-market-service/internal/infrastructure/logging"
	"coin-market-service/internal/infrastructure/metrics"
	"coin-market-service/internal/infrastructure/repositories/postgres"
	"coin-market-service/internal/infrastructure/web/handlers"
	"coin-market-service/internal/infrastructure/web/server"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"
)

const (
	serviceName = "favorites-store"
	version     = "1.0.0"
)

func main() {
	log.Println("Starting Favorites Store...")

	cfg, err := config.NewLoader().Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := config.NewValidator().ValidateStore(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	loggerConfig := logging.NewConfig(serviceName, version, config.GetEnvironment()).
		WithLevel(logging.LogLevelFromString(cfg.Logging.Level)).
		WithFormat(logging.LogFormatFromString(cfg.Logging.Format)).
		WithSource(cfg.Logging.AddSource)
	if err := logging.InitializeGlobalLoggers(loggerConfig); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}

	ctx := logging.WithRequestID(context.Background(), logging.GenerateRequestID())
	metrics.SetApplicationInfo(version, runtime.Version())

	connectCtx, cancelConnect := context.WithTimeout(ctx, 30*time.Second)
	pool, err := postgres.NewPool(connectCtx, cfg.Store.DatabaseURL, cfg.Store.MaxConns)
	if err == nil {
		err = postgres.Migrate(connectCtx, pool)
	}
	cancelConnect()
	if err != nil {
		logging.ErrorWithError(ctx, "Failed to prepare database", err, nil)
		os.Exit(1)
	}
	defer pool.Close()

	repo := postgres.NewFavoriteRepository(pool)
	router := server.NewStoreRouter(
		handlers.NewStoreHandler(repo),
		handlers.NewHealthHandler(handlers.ReadinessCheck{Name: "database", Check: repo.Ping}),
	)

	srv := server.NewServer(router, cfg.Store.Port, server.StoreEndpoints()...)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithError(ctx, "Failed to start server", err, logging.Fields{"port": cfg.Store.Port})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info(ctx, "Shutting down favorites store", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logging.ErrorWithError(ctx, "Server forced to shutdown", err, nil)
	}
}
