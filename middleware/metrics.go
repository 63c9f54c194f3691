package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// RequestMetrics counts and times requests per matched route. Spans come
// from otelfiber, which runs before it.
type RequestMetrics struct {
	requests     metric.Int64Counter
	duration     metric.Float64Histogram
	responseSize metric.Int64Histogram
	inFlight     metric.Int64UpDownCounter
}

func NewRequestMetrics(meter metric.Meter) (*RequestMetrics, error) {
	requests, err := meter.Int64Counter(
		"cards.http.requests",
		metric.WithDescription("Card API requests by route and status"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"cards.http.duration",
		metric.WithDescription("Card API request latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	responseSize, err := meter.Int64Histogram(
		"cards.http.response.size",
		metric.WithDescription("Card API response body size"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter(
		"cards.http.in_flight",
		metric.WithDescription("Card API requests being served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &RequestMetrics{
		requests:     requests,
		duration:     duration,
		responseSize: responseSize,
		inFlight:     inFlight,
	}, nil
}

// Handle renders handler errors itself so the recorded status is the one the
// client receives.
func (m *RequestMetrics) Handle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		method := attribute.String("http.method", c.Method())

		m.inFlight.Add(ctx, 1, metric.WithAttributes(method))
		defer m.inFlight.Add(ctx, -1, metric.WithAttributes(method))

		start := time.Now()

		if err := c.Next(); err != nil {
			if renderErr := c.App().ErrorHandler(c, err); renderErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		elapsed := float64(time.Since(start).Microseconds()) / 1000
		status := c.Response().StatusCode()
		size := int64(len(c.Response().Body()))

		attrs := metric.WithAttributes(
			method,
			attribute.String("http.route", c.Route().Path),
			attribute.Int("http.status_code", status),
		)
		m.requests.Add(ctx, 1, attrs)
		m.duration.Record(ctx, elapsed, attrs)
		m.responseSize.Record(ctx, size, attrs)

		if status >= fiber.StatusInternalServerError {
			zap.L().Warn("Card API request failed",
				zap.String("method", c.Method()),
				zap.String("route", c.Route().Path),
				zap.Int("status", status),
				zap.Float64("duration_ms", elapsed),
			)
		}

		return nil
	}
}
