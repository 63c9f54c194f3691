package cardhandler

import (
	"context"
	"time"

	"github.com/fazamuttaqien/cards/internal/dto"
	"github.com/fazamuttaqien/cards/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const mobileNumberParam = "mobileNumber"

type CardHandler struct {
	cardService     service.CardServices
	validate        *validator.Validate
	serviceTimeout  time.Duration
	meter           metric.Meter
	tracer          trace.Tracer
	log             *zap.Logger
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	errorCount      metric.Int64Counter
	responseSize    metric.Int64Histogram
}

func NewCardHandler(
	cardService service.CardServices,
	serviceTimeout time.Duration,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) *CardHandler {
	requestCount, err := meter.Int64Counter(
		"api.request.count",
		metric.WithDescription("Number of API requests received"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create request count metric", zap.Error(err))
	}

	requestDuration, err := meter.Float64Histogram(
		"api.request.duration",
		metric.WithDescription("Duration of API requests"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create request duration metric", zap.Error(err))
	}

	errorCount, err := meter.Int64Counter(
		"api.error.count",
		metric.WithDescription("Number of API errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create error count metric", zap.Error(err))
	}

	responseSize, err := meter.Int64Histogram(
		"api.response.size",
		metric.WithDescription("Size of API responses in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create response size metric", zap.Error(err))
	}

	if serviceTimeout <= 0 {
		serviceTimeout = 10 * time.Second
	}

	return &CardHandler{
		cardService:     cardService,
		validate:        NewValidator(),
		serviceTimeout:  serviceTimeout,
		meter:           meter,
		tracer:          tracer,
		log:             log,
		requestCount:    requestCount,
		requestDuration: requestDuration,
		errorCount:      errorCount,
		responseSize:    responseSize,
	}
}

// begin starts the span and request metrics shared by every card endpoint.
func (h *CardHandler) begin(c *fiber.Ctx, spanName string) (context.Context, trace.Span, time.Time) {
	ctx, span := h.tracer.Start(c.UserContext(), spanName)

	span.SetAttributes(
		attribute.String("http.method", c.Method()),
		attribute.String("http.route", c.Path()),
		attribute.String("http.user_agent", string(c.Request().Header.UserAgent())),
		attribute.String("http.client_ip", c.IP()),
	)

	h.log.Debug("Received card request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("client_ip", c.IP()),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	h.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
	))

	return ctx, span, time.Now()
}

// recordError records a failed request. Client errors come back as a
// *fiber.Error; anything else is returned untouched for the global handler.
func (h *CardHandler) recordError(
	ctx context.Context, span trace.Span, c *fiber.Ctx,
	start time.Time, err error, statusCode int, errorType, message string, fields ...zap.Field) error {
	h.errorCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
		attribute.String("error_type", errorType),
		attribute.Int("status_code", statusCode),
	))

	duration := float64(time.Since(start).Nanoseconds()) / 1e6
	h.requestDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
		attribute.Int("status_code", statusCode),
	))

	span.SetAttributes(
		attribute.String("error.type", errorType),
		attribute.String("error.message", err.Error()),
		attribute.Int("http.status_code", statusCode),
	)
	span.RecordError(err)

	logFields := append([]zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
		zap.Int("status_code", statusCode),
		zap.String("error_type", errorType),
		zap.Float64("duration_ms", duration),
		zap.Error(err),
	}, fields...)

	if statusCode >= fiber.StatusInternalServerError {
		h.log.Error(message, logFields...)
		return err
	}

	h.log.Warn(message, logFields...)
	return fiber.NewError(statusCode, message)
}

func (h *CardHandler) recordSuccess(
	ctx context.Context, span trace.Span, c *fiber.Ctx,
	start time.Time, statusCode int, responseData any, fields ...zap.Field) error {
	duration := float64(time.Since(start).Nanoseconds()) / 1e6
	h.requestDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
		attribute.Int("status_code", statusCode),
	))

	span.SetAttributes(
		attribute.Int("http.status_code", statusCode),
		attribute.Float64("request.duration_ms", duration),
	)

	logFields := append([]zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
		zap.Int("status_code", statusCode),
		zap.Float64("duration_ms", duration),
	}, fields...)

	h.log.Info("Request completed successfully", logFields...)

	if err := c.Status(statusCode).JSON(responseData); err != nil {
		return err
	}
	h.responseSize.Record(ctx, int64(len(c.Response().Body())), metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.Int("status_code", statusCode),
	))
	return nil
}

// mobileNumberQuery reads and validates the mobileNumber query parameter.
// A missing parameter and a malformed one are both client errors; an empty
// value passes.
func (h *CardHandler) mobileNumberQuery(ctx context.Context, span trace.Span, c *fiber.Ctx, start time.Time) (string, error) {
	if !c.Context().QueryArgs().Has(mobileNumberParam) {
		err := fiber.NewError(fiber.StatusBadRequest, "Required request parameter 'mobileNumber' is not present")
		return "", h.recordError(ctx, span, c, start, err,
			fiber.StatusBadRequest, "missing_parameter", err.Message)
	}

	mobileNumber := c.Query(mobileNumberParam)
	if err := checkMobileNumber(h.validate, mobileNumber); err != nil {
		return "", h.recordError(ctx, span, c, start, err,
			fiber.StatusBadRequest, "validation_error", MobileNumberMessage, zap.String("mobile_number", mobileNumber))
	}

	span.SetAttributes(attribute.String("card.mobile_number", mobileNumber))
	return mobileNumber, nil
}

func (h *CardHandler) CreateCard(c *fiber.Ctx) error {
	ctx, span, start := h.begin(c, "handler.CreateCard")
	defer span.End()

	mobileNumber, err := h.mobileNumberQuery(ctx, span, c, start)
	if err != nil {
		return err
	}

	serviceCtx, cancel := context.WithTimeout(ctx, h.serviceTimeout)
	defer cancel()

	if err := h.cardService.CreateCard(serviceCtx, mobileNumber); err != nil {
		return h.recordError(ctx, span, c, start, err,
			fiber.StatusInternalServerError, "service_error", "Failed to create card", zap.String("mobile_number", mobileNumber))
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusCreated,
		dto.NewResponse(dto.STATUS_201, dto.MESSAGE_201),
		zap.String("mobile_number", mobileNumber),
	)
}

func (h *CardHandler) FetchCardDetails(c *fiber.Ctx) error {
	ctx, span, start := h.begin(c, "handler.FetchCardDetails")
	defer span.End()

	mobileNumber, err := h.mobileNumberQuery(ctx, span, c, start)
	if err != nil {
		return err
	}

	serviceCtx, cancel := context.WithTimeout(ctx, h.serviceTimeout)
	defer cancel()

	card, err := h.cardService.FetchCard(serviceCtx, mobileNumber)
	if err != nil {
		return h.recordError(ctx, span, c, start, err,
			fiber.StatusInternalServerError, "service_error", "Failed to fetch card", zap.String("mobile_number", mobileNumber))
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK, card,
		zap.String("mobile_number", mobileNumber),
	)
}

func (h *CardHandler) UpdateCardDetails(c *fiber.Ctx) error {
	ctx, span, start := h.begin(c, "handler.UpdateCardDetails")
	defer span.End()

	var req dto.CardsDto
	if err := c.BodyParser(&req); err != nil {
		return h.recordError(ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Cannot parse request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return h.recordError(ctx, span, c, start, err,
			fiber.StatusBadRequest, "validation_error", validationMessage(err))
	}

	span.SetAttributes(
		attribute.String("card.mobile_number", req.MobileNumber),
		attribute.String("card.number", req.CardNumber),
	)

	serviceCtx, cancel := context.WithTimeout(ctx, h.serviceTimeout)
	defer cancel()

	updated, err := h.cardService.UpdateCard(serviceCtx, req)
	if err != nil {
		return h.recordError(ctx, span, c, start, err,
			fiber.StatusInternalServerError, "service_error", "Failed to update card", zap.String("card_number", req.CardNumber))
	}

	if !updated {
		return h.recordSuccess(ctx, span, c, start, fiber.StatusExpectationFailed,
			dto.NewResponse(dto.STATUS_417, dto.MESSAGE_417_UPDATE),
			zap.String("card_number", req.CardNumber),
		)
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK,
		dto.NewResponse(dto.STATUS_200, dto.MESSAGE_200),
		zap.String("card_number", req.CardNumber),
	)
}

func (h *CardHandler) DeleteCardDetails(c *fiber.Ctx) error {
	ctx, span, start := h.begin(c, "handler.DeleteCardDetails")
	defer span.End()

	mobileNumber, err := h.mobileNumberQuery(ctx, span, c, start)
	if err != nil {
		return err
	}

	serviceCtx, cancel := context.WithTimeout(ctx, h.serviceTimeout)
	defer cancel()

	deleted, err := h.cardService.DeleteCard(serviceCtx, mobileNumber)
	if err != nil {
		return h.recordError(ctx, span, c, start, err,
			fiber.StatusInternalServerError, "service_error", "Failed to delete card", zap.String("mobile_number", mobileNumber))
	}

	if !deleted {
		return h.recordSuccess(ctx, span, c, start, fiber.StatusExpectationFailed,
			dto.NewResponse(dto.STATUS_417, dto.MESSAGE_417_DELETE),
			zap.String("mobile_number", mobileNumber),
		)
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK,
		dto.NewResponse(dto.STATUS_200, dto.MESSAGE_200),
		zap.String("mobile_number", mobileNumber),
	)
}
