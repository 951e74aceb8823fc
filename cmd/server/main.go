package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/makkenzo/license-gate/internal/config"
	"github.com/makkenzo/license-gate/internal/domain/apikey"
	"github.com/makkenzo/license-gate/internal/domain/license"
	"github.com/makkenzo/license-gate/internal/domain/licenselog"
	"github.com/makkenzo/license-gate/internal/domain/user"
	"github.com/makkenzo/license-gate/internal/handler"
	"github.com/makkenzo/license-gate/internal/ratelimit"
	"github.com/makkenzo/license-gate/internal/service"
	"github.com/makkenzo/license-gate/internal/storage/memstorage"
	"github.com/makkenzo/license-gate/internal/storage/postgres"
	"github.com/makkenzo/license-gate/internal/storage/redis"
	"github.com/makkenzo/license-gate/internal/worker"
	"github.com/makkenzo/license-gate/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const backendRedis = "redis"

func main() {
	configPath := flag.String("config", "./configs/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewZapLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	sugarLogger := appLogger.Sugar()

	sugarLogger.Info("Starting application...")
	sugarLogger.Infof("Log level set to: %s", cfg.Log.Level)

	appCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	healthChecks := map[string]handler.Pinger{}

	var (
		licenseRepo license.Repository
		logRepo     licenselog.Repository
		userRepo    user.Repository
		apiKeyRepo  apikey.Repository
	)

	if cfg.Database.URL != "" {
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(cfg.Database.URL, appLogger); err != nil {
				sugarLogger.Fatalf("Failed to apply database migrations: %v", err)
			}
		}

		dbPool, err := postgres.NewPgxPool(appCtx, &cfg.Database, appLogger)
		if err != nil {
			sugarLogger.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer dbPool.Close()
		healthChecks["postgres"] = dbPool.Ping

		licenseRepo = postgres.NewLicenseRepository(dbPool, appLogger)
		logRepo = postgres.NewLicenseLogRepository(dbPool, appLogger)
		userRepo = postgres.NewUserRepository(dbPool, appLogger)
		apiKeyRepo = postgres.NewAPIKeyRepository(dbPool, appLogger)
	} else {
		sugarLogger.Warn("database.url is empty, using in-memory storage; data is lost on restart")
		licenseRepo = memstorage.NewLicenseRepository()
		logRepo = memstorage.NewLicenseLogRepository()
		userRepo = memstorage.NewUserRepository()
		apiKeyRepo = memstorage.NewAPIKeyRepository()
	}

	var redisClient *goredis.Client
	if cfg.RateLimit.Backend == backendRedis || cfg.Worker.Enabled {
		redisClient, err = redis.NewRedisClient(appCtx, &cfg.Redis, appLogger)
		if err != nil {
			sugarLogger.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		healthChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	var rateStore ratelimit.Store
	switch cfg.RateLimit.Backend {
	case backendRedis:
		rateStore = ratelimit.NewRedisStore(redisClient)
	default:
		rateStore = ratelimit.NewMemoryStore()
	}
	governor := ratelimit.NewGovernor(rateStore, appLogger, ratelimit.WithDefaults(cfg.RateLimit.Limit, cfg.RateLimit.Window))
	sugarLogger.Infof("Rate limit: %d requests per %s (%s store)", cfg.RateLimit.Limit, cfg.RateLimit.Window, cfg.RateLimit.Backend)

	licenseService := service.NewLicenseService(licenseRepo, logRepo, appLogger)
	apiKeyService := service.NewAPIKeyService(apiKeyRepo, appLogger)
	userService := service.NewUserService(userRepo, appLogger)
	authService, err := service.NewAuthService(userRepo, &cfg.JWT, appLogger)
	if err != nil {
		sugarLogger.Fatalf("Failed to initialize auth service: %v", err)
	}

	if _, err := authService.EnsureAdmin(appCtx, &cfg.Admin); err != nil {
		sugarLogger.Fatalf("Failed to bootstrap administrator: %v", err)
	}

	router := handler.NewRouter(handler.RouterDeps{
		CORS:           cfg.CORS,
		LicenseService: licenseService,
		AuthService:    authService,
		APIKeyService:  apiKeyService,
		UserService:    userService,
		APIKeyRepo:     apiKeyRepo,
		Governor:       governor,
		HealthChecks:   healthChecks,
		Logger:         appLogger,
	})

	g, groupCtx := errgroup.WithContext(appCtx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g.Go(func() error {
		sugarLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugarLogger.Errorf("HTTP server ListenAndServe error: %v", err)
			return fmt.Errorf("http server failed: %w", err)
		}
		sugarLogger.Info("HTTP server stopped listening.")
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		sugarLogger.Info("Shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownPeriod)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			sugarLogger.Errorf("HTTP server graceful shutdown failed: %v", err)
			return fmt.Errorf("http server shutdown error: %w", err)
		}
		sugarLogger.Info("HTTP server shutdown complete.")
		return nil
	})

	g.Go(func() error {
		return governor.RunSweeper(groupCtx, cfg.RateLimit.SweepInterval)
	})

	if cfg.Worker.Enabled {
		g.Go(func() error {
			if err := worker.RunWorkers(groupCtx, cfg, licenseService, appLogger); err != nil {
				sugarLogger.Error("Asynq worker failed", zap.Error(err))
				return fmt.Errorf("asynq worker error: %w", err)
			}
			sugarLogger.Info("Asynq workers finished gracefully.")
			return nil
		})
	} else {
		sugarLogger.Info("Background worker disabled, overdue licenses are only reported as expired at check time")
	}

	sugarLogger.Info("Application started. Waiting for interrupt signal (Ctrl+C) or component error...")

	waitErr := g.Wait()

	sugarLogger.Info("Shutdown sequence finished.")

	if waitErr != nil {
		if errors.Is(waitErr, context.Canceled) {
			sugarLogger.Info("Shutdown reason: Context canceled (likely due to OS signal).")
		} else {
			sugarLogger.Errorf("Application shutdown finished with unexpected error: %v", waitErr)
		}
	} else {
		sugarLogger.Info("Application shutdown successfully (all components finished without errors).")
	}

	sugarLogger.Info("Application exiting now.")
}
