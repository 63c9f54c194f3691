package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fazamuttaqien/cards/internal/domain"
	"github.com/fazamuttaqien/cards/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// cardCache keeps fetched cards in Redis keyed by mobile number. Redis
// failures degrade to a miss, never to a request error.
type cardCache struct {
	client redis.Cmdable
	ttl    time.Duration

	tracer    trace.Tracer
	log       *zap.Logger
	hitCount  metric.Int64Counter
	missCount metric.Int64Counter
}

func key(mobileNumber string) string { return "cards:mobile:" + mobileNumber }

// Get implements repository.CardCache. A miss returns (nil, nil).
func (c *cardCache) Get(ctx context.Context, mobileNumber string) (*domain.Card, error) {
	ctx, span := c.tracer.Start(ctx, "cache.GetCard")
	defer span.End()

	raw, err := c.client.Get(ctx, key(mobileNumber)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Card cache read failed, falling back to store",
				zap.String("trace_id", span.SpanContext().TraceID().String()),
				zap.Error(err),
			)
		}
		c.missCount.Add(ctx, 1, metric.WithAttributes(attribute.String("cache", "cards")))
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return nil, nil
	}

	var card domain.Card
	if err := json.Unmarshal(raw, &card); err != nil {
		c.log.Warn("Discarding undecodable card cache entry", zap.Error(err))
		c.missCount.Add(ctx, 1, metric.WithAttributes(attribute.String("cache", "cards")))
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return nil, nil
	}

	c.hitCount.Add(ctx, 1, metric.WithAttributes(attribute.String("cache", "cards")))
	span.SetAttributes(attribute.Bool("cache.hit", true))
	return &card, nil
}

// Set implements repository.CardCache.
func (c *cardCache) Set(ctx context.Context, card *domain.Card) error {
	b, err := json.Marshal(card)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key(card.MobileNumber), b, c.ttl).Err(); err != nil {
		c.log.Warn("Card cache write failed", zap.Error(err))
		return err
	}
	return nil
}

// Delete implements repository.CardCache.
func (c *cardCache) Delete(ctx context.Context, mobileNumber string) error {
	if err := c.client.Del(ctx, key(mobileNumber)).Err(); err != nil {
		c.log.Warn("Card cache invalidation failed", zap.Error(err))
		return err
	}
	return nil
}

func NewCardCache(
	client redis.Cmdable,
	ttl time.Duration,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) repository.CardCache {
	hitCount, _ := meter.Int64Counter(
		"cache.hit.count",
		metric.WithDescription("Number of card cache hits"),
		metric.WithUnit("{hit}"),
	)

	missCount, _ := meter.Int64Counter(
		"cache.miss.count",
		metric.WithDescription("Number of card cache misses"),
		metric.WithUnit("{miss}"),
	)

	return &cardCache{
		client:    client,
		ttl:       ttl,
		tracer:    tracer,
		log:       log,
		hitCount:  hitCount,
		missCount: missCount,
	}
}
