package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fazamuttaqien/cards/internal/cache"
	"github.com/fazamuttaqien/cards/internal/domain"
	"github.com/fazamuttaqien/cards/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	noop_metric "go.opentelemetry.io/otel/metric/noop"
	noop_trace "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

func newCache(client *redis.Client) repository.CardCache {
	return cache.NewCardCache(
		client,
		time.Minute,
		noop_metric.NewMeterProvider().Meter("test-card-cache-meter"),
		noop_trace.NewTracerProvider().Tracer("test-card-cache-tracer"),
		zap.NewNop(),
	)
}

func TestCardCache_UnreachableRedisIsAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := newCache(client)

	card, err := c.Get(context.Background(), "9876543210")
	assert.NoError(t, err)
	assert.Nil(t, card)

	assert.Error(t, c.Set(context.Background(), &domain.Card{MobileNumber: "9876543210"}))
}

func TestCardCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_INTEGRATION_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_INTEGRATION_ADDRESS not set, skipping Redis cache tests")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	c := newCache(client)

	card := &domain.Card{
		CardID:          1,
		MobileNumber:    "9876543210",
		CardNumber:      "100000000042",
		CardType:        domain.CreditCard,
		TotalLimit:      domain.NewCardLimit,
		AvailableAmount: domain.NewCardLimit,
	}
	require.NoError(t, c.Set(ctx, card))

	got, err := c.Get(ctx, "9876543210")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, card.CardNumber, got.CardNumber)

	require.NoError(t, c.Delete(ctx, "9876543210"))
	got, err = c.Get(ctx, "9876543210")
	require.NoError(t, err)
	assert.Nil(t, got)
}
