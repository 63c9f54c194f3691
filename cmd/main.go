package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fazamuttaqien/cards/config"
	mysqldb "github.com/fazamuttaqien/cards/infra/mysql"
	redisdb "github.com/fazamuttaqien/cards/infra/redis"
	"github.com/fazamuttaqien/cards/internal/event"
	"github.com/fazamuttaqien/cards/internal/model"
	ratelimiter "github.com/fazamuttaqien/cards/pkg/rate-limiter"
	"github.com/fazamuttaqien/cards/pkg/telemetry"
	"github.com/fazamuttaqien/cards/presenter"
	"github.com/fazamuttaqien/cards/router"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	slog.Info("Starting cards service setup...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using system environment variables", "error", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	tel, err := telemetry.New(ctx, cfg)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize monitoring: %v", err))
	}

	db, err := mysqldb.InitializeDatabase(cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}

	if err := model.AutoMigrate(db); err != nil {
		zap.L().Fatal("Failed to migrate database", zap.Error(err))
	}
	zap.L().Info("Database migration completed", zap.Any("stats", mysqldb.GetStats(db)))

	redisClient, err := redisdb.MonitorRedis(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to connect to Redis", zap.Error(err))
	}
	go redisdb.WatchConnectionRedis(ctx, redisClient)

	publisher := event.New(cfg.KAFKA_BROKERS, cfg.KAFKA_CARD_TOPIC, tel.Log)

	limiter := ratelimiter.NewRateLimiter(redisClient, cfg.RATE_LIMIT_RPS, cfg.RATE_LIMIT_BURST, cfg.RATE_LIMIT_TTL)

	p := presenter.NewPresenter(db, redisClient, publisher, tel, cfg)
	app := router.NewRouter(p, db, redisClient, tel, cfg, limiter)

	addr := ":" + cfg.SERVER_PORT
	listenErr := make(chan error, 1)

	go func() {
		zap.L().Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
			return
		}
		listenErr <- nil
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		zap.L().Info("Received shutdown signal")
	case err := <-listenErr:
		if err != nil {
			zap.L().Error("Server listen error", zap.Error(err))
			exitCode = 1
		}
	}

	zap.L().Info("Starting graceful shutdown...", zap.Duration("timeout", cfg.SHUTDOWN_TIMEOUT))
	if err := app.ShutdownWithTimeout(cfg.SHUTDOWN_TIMEOUT); err != nil {
		zap.L().Error("Server shutdown error", zap.Error(err))
	} else {
		zap.L().Info("Server gracefully stopped.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.SHUTDOWN_TIMEOUT)
	defer cancel()

	if err := publisher.Close(); err != nil {
		zap.L().Error("Error closing card event publisher", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		zap.L().Error("Error disconnecting from Redis", zap.Error(err))
	}

	if err := mysqldb.Close(db, shutdownCtx); err != nil {
		zap.L().Error("Error disconnecting from MySQL", zap.Error(err))
	}

	if err := tel.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error during monitoring shutdown: %v\n", err)
	}

	if exitCode != 0 {
		cancel()
		stop()
		os.Exit(exitCode)
	}
}
