// @title Coin Market Service API
// @version 1.0
// @description Crypto market data with provider fallback and per-session favorites.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"coin-market-service/internal/application/services"
	"coin-market-service/internal/domain/interfaces"
	"coin-market-service/internal/infrastructure/config"
	"coin-market-service/internal/infrastructure/favorites"
	"coin-market-service/internal/infrastructure/logging"
	"coin-market-service/internal/infrastructure/metrics"
	"coin-market-service/internal/infrastructure/providers/coincap"
	"coin-market-service/internal/infrastructure/providers/coingecko"
	"coin-market-service/internal/infrastructure/ratelimit"
	"coin-market-service/internal/infrastructure/repositories/cache"
	"coin-market-service/internal/infrastructure/resilience"
	"coin-market-service/internal/infrastructure/web/handlers"
	"coin-market-service/internal/infrastructure/web/server"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"
)

const (
	serviceName = "coin-market-service"
	version     = "1.0.0"
)

func main() {
	log.Println("Starting Coin Market Service...")

	cfg, err := config.NewLoader().Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
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
	startTime := time.Now()

	logging.Info(ctx, "Initializing service components", logging.Fields{
		"environment":   config.GetEnvironment(),
		"cache_backend": cfg.Cache.Backend,
	})

	metrics.SetApplicationInfo(version, runtime.Version())

	backend, err := cache.NewFactory().CreateCache(ctx, cfg.Cache)
	if err != nil {
		logging.ErrorWithError(ctx, "Failed to create cache", err, nil)
		os.Exit(1)
	}
	if closer, ok := backend.(io.Closer); ok {
		defer closer.Close()
	}
	marketCache := cache.NewMarketCache(backend, cfg.Cache.KeyPrefix, cfg.Cache.TTL, cfg.Cache.FailureTTL)

	primary := coingecko.NewRestClient(cfg.Providers.Primary)
	secondary := coincap.NewRestClient(cfg.Providers.Secondary)
	retrier := resilience.NewRetrier(primary.Name(), cfg.Providers.Primary.MaxRetries, cfg.Providers.Primary.RetryDelay)

	marketService := services.NewMarketService(primary, secondary, marketCache, retrier, services.MarketServiceConfig{
		PrimaryTimeout:   cfg.Providers.Primary.Timeout,
		SecondaryTimeout: cfg.Providers.Secondary.Timeout,
	})

	sessions := services.NewSessionRegistry(favorites.NewRestClient(cfg.Favorites), services.SessionRegistryConfig{
		RefreshInterval: cfg.Favorites.RefreshInterval,
		IdleTimeout:     cfg.Favorites.SessionIdleTimeout,
	}, nil)

	var rateLimiter *ratelimit.RateLimitMiddleware
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimitMiddleware(cfg.RateLimit)
	}

	router := server.NewAPIRouter(server.APIHandlers{
		Coins:     handlers.NewCoinsHandler(marketService),
		Favorites: handlers.NewFavoritesHandler(sessions),
		Events:    handlers.NewEventsHandler(sessions, cfg.Favorites.EventBuffer),
		Health:    handlers.NewHealthHandler(cacheReadiness(backend)),
		RateLimit: rateLimiter,
	})

	srv := server.NewServer(router, cfg.Server.Port, server.APIEndpoints()...)

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()
	go runSessionSweeper(bgCtx, sessions, cfg.Favorites.SessionIdleTimeout/2)
	go runUptimeReporter(bgCtx, startTime)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithError(ctx, "Failed to start server", err, logging.Fields{"port": cfg.Server.Port})
			os.Exit(1)
		}
	}()

	logging.Info(ctx, "Coin Market Service is running", logging.Fields{
		"port":               cfg.Server.Port,
		"primary_provider":   primary.Name(),
		"secondary_provider": secondary.Name(),
		"favorites_store":    cfg.Favorites.BaseURL,
		"rate_limit_enabled": cfg.RateLimit.Enabled,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info(ctx, "Shutting down server", nil)
	stopBackground()

	// Cerrar los notificadores termina los streams WebSocket antes del Shutdown
	sessions.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logging.ErrorWithError(ctx, "Server forced to shutdown", err, nil)
	}

	logging.Info(ctx, "Server shutdown completed", logging.Fields{
		"uptime": time.Since(startTime).String(),
	})
}

// cacheReadiness usa Ping si el backend lo soporta (Redis); la caché en memoria siempre está lista
func cacheReadiness(backend interfaces.Cache) handlers.ReadinessCheck {
	type pinger interface {
		Ping(ctx context.Context) error
	}

	return handlers.ReadinessCheck{
		Name: "cache",
		Check: func(ctx context.Context) error {
			if p, ok := backend.(pinger); ok {
				return p.Ping(ctx)
			}
			return nil
		},
	}
}

// runSessionSweeper expulsa periódicamente las sesiones de favoritos inactivas
func runSessionSweeper(ctx context.Context, sessions *services.SessionRegistry, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logging.Info(ctx, "Starting favorites session sweeper", logging.Fields{"interval": interval.String()})

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if evicted := sessions.Sweep(now); evicted > 0 {
				logging.Info(ctx, "Evicted idle favorites sessions", logging.Fields{
					"evicted":   evicted,
					"remaining": sessions.Len(),
				})
			}
		}
	}
}

func runUptimeReporter(ctx context.Context, startTime time.Time) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateUptime(time.Since(startTime).Seconds())
		}
	}
}
