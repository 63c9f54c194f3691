package router

import (
	"errors"
	"time"

	"github.com/fazamuttaqien/cards/config"
	mysqldb "github.com/fazamuttaqien/cards/infra/mysql"
	"github.com/fazamuttaqien/cards/internal/dto"
	"github.com/fazamuttaqien/cards/middleware"
	ratelimiter "github.com/fazamuttaqien/cards/pkg/rate-limiter"
	"github.com/fazamuttaqien/cards/pkg/telemetry"
	"github.com/fazamuttaqien/cards/presenter"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func NewRouter(
	presenter presenter.Presenter,
	db *gorm.DB,
	redisClient *redis.Client,
	tel *telemetry.OpenTelemetry,
	cfg *config.Config,
	limiter *ratelimiter.RateLimiter,
) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: ErrorCustomHandler(tel.Log),
	})

	// 1. Recovery from panic
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	// 2. Security Headers
	app.Use(helmet.New())
	// 3. CORS
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.ALLOW_ORIGINS,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${ip} ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(otelfiber.Middleware(
		otelfiber.WithTracerProvider(tel.TracerProvider),
		otelfiber.WithPropagators(otel.GetTextMapPropagator()),
	))

	if cfg.REQUESTS_METRIC {
		requestMetrics, err := middleware.NewRequestMetrics(tel.MeterProvider.Meter("cards-http"))
		if err != nil {
			zap.L().Fatal("Failed to create HTTP request metrics", zap.Error(err))
		}
		zap.L().Info("Enabling HTTP request metrics middleware")
		app.Use(requestMetrics.Handle())
	} else {
		zap.L().Info("HTTP request metrics middleware is disabled")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := mysqldb.Ping(db, c.Context()); err != nil {
			zap.L().Error("Health check failed: database ping error", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
		}
		if err := redisClient.Ping(c.Context()).Err(); err != nil {
			zap.L().Error("Health check failed: redis ping error", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  "redis connection failed",
			})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":      "healthy",
			"service":     cfg.SERVICE_NAME,
			"version":     cfg.SERVICE_VERSION,
			"environment": cfg.ENVIRONMENT,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := app.Group("/api")

	api.Use(limiter.RateLimitMiddleware())

	RegisterCardRoutes(api, presenter)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Resource not found")
	})

	return app
}

// RegisterCardRoutes mounts the card endpoints on the given router.
func RegisterCardRoutes(api fiber.Router, presenter presenter.Presenter) {
	api.Post("/create", presenter.CardPresenter.CreateCard)
	api.Get("/fetch", presenter.CardPresenter.FetchCardDetails)
	api.Put("/update", presenter.CardPresenter.UpdateCardDetails)
	api.Delete("/delete", presenter.CardPresenter.DeleteCardDetails)
}

// ErrorCustomHandler renders every error that reaches fiber as an
// ErrorResponseDto. Errors that are not *fiber.Error become a 500.
func ErrorCustomHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := err.Error()

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		}

		fields := []zap.Field{
			zap.Error(err),
			zap.String("path", c.Path()),
			zap.String("method", c.Method()),
			zap.Int("status_code", code),
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("Request error occured", fields...)
		} else {
			log.Debug("Request rejected", fields...)
		}

		return c.Status(code).JSON(dto.ErrorResponseDto{
			ApiPath:      "uri=" + c.Path(),
			ErrorCode:    code,
			ErrorMessage: message,
			ErrorTime:    time.Now().UTC(),
		})
	}
}
