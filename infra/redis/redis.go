package redisdb

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fazamuttaqien/cards/config"
)

func NewRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.REDIS_ADDRESS,
		Password:     cfg.REDIS_PASSWORD,
		DB:           cfg.REDIS_DB,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
		MaxRetries:   3,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

// MonitorRedis blocks until Redis answers a ping or ctx is done.
func MonitorRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	for {
		client, err := NewRedis(cfg)
		if err == nil {
			zap.L().Info("Connected to Redis", zap.String("address", cfg.REDIS_ADDRESS))
			return client, nil
		}

		zap.L().Error("Failed to connect to Redis, retrying in 5 seconds...",
			zap.String("address", cfg.REDIS_ADDRESS),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
}

// WatchConnectionRedis pings the client every ten seconds and logs state
// changes. The client redials on its own; the watcher only reports.
func WatchConnectionRedis(ctx context.Context, client *redis.Client) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	healthy := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()

		switch {
		case err != nil && healthy:
			zap.L().Warn("Lost connection to Redis, card cache and rate limiter degraded", zap.Error(err))
			healthy = false
		case err == nil && !healthy:
			zap.L().Info("Redis connection restored")
			healthy = true
		}
	}
}
