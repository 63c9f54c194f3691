package cardsrv

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/fazamuttaqien/cards/internal/domain"
	"github.com/fazamuttaqien/cards/internal/dto"
	"github.com/fazamuttaqien/cards/internal/repository"
	"github.com/fazamuttaqien/cards/internal/service"
	"github.com/fazamuttaqien/cards/pkg/common"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	auditActor     = "CARDS_MS"
	cardNumberBase = 100_000_000_000
	cardNumberSpan = 900_000_000
)

type cardService struct {
	cardRepository repository.CardRepository
	cardCache      repository.CardCache
	publisher      repository.CardEventPublisher

	meter             metric.Meter
	tracer            trace.Tracer
	log               *zap.Logger
	operationDuration metric.Float64Histogram
	operationCount    metric.Int64Counter
	errorCount        metric.Int64Counter
	cardsCreated      metric.Int64Counter
	cardsUpdated      metric.Int64Counter
	cardsDeleted      metric.Int64Counter
}

func (s *cardService) start(ctx context.Context, spanName, operation, mobileNumber string) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, spanName)

	s.operationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("service", "card"),
		),
	)

	span.SetAttributes(
		attribute.String("card.mobile_number", mobileNumber),
		attribute.String("service", "card"),
	)

	return ctx, span
}

func (s *cardService) recordDuration(ctx context.Context, start time.Time, operation, status string) float64 {
	duration := float64(time.Since(start).Milliseconds())
	s.operationDuration.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("service", "card"),
			attribute.String("status", status),
		),
	)
	return duration
}

func (s *cardService) fail(ctx context.Context, span trace.Span, start time.Time, operation, errorType, message string, err error) error {
	span.SetStatus(codes.Error, message)
	span.RecordError(err)

	s.log.Error(message,
		zap.String("operation", operation),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.Error(err),
	)

	s.errorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("service", "card"),
			attribute.String("error_type", errorType),
		),
	)

	s.recordDuration(ctx, start, operation, "error")
	return err
}

func (s *cardService) publish(ctx context.Context, eventType domain.CardEventType, card *domain.Card) {
	err := s.publisher.Publish(ctx, domain.CardEvent{
		Type:         eventType,
		MobileNumber: card.MobileNumber,
		CardNumber:   card.CardNumber,
	})
	if err != nil {
		s.log.Warn("Card event not published",
			zap.String("event_type", string(eventType)),
			zap.Uint64("card_id", card.CardID),
			zap.Error(err),
		)
	}
}

func newCardNumber() string {
	return strconv.FormatInt(cardNumberBase+rand.Int64N(cardNumberSpan), 10)
}

// CreateCard implements service.CardServices
func (s *cardService) CreateCard(ctx context.Context, mobileNumber string) error {
	ctx, span := s.start(ctx, "service.CreateCard", "create_card", mobileNumber)
	defer span.End()

	start := time.Now()

	existing, err := s.cardRepository.FindByMobileNumber(ctx, mobileNumber)
	if err != nil {
		return s.fail(ctx, span, start, "create_card", "repository_error", "Failed to check existing card", err)
	}
	if existing != nil {
		err := fmt.Errorf("%w: %s", common.ErrCardAlreadyExists, mobileNumber)
		return s.fail(ctx, span, start, "create_card", "duplicate_card", "Card already registered", err)
	}

	card := &domain.Card{
		MobileNumber:    mobileNumber,
		CardNumber:      newCardNumber(),
		CardType:        domain.CreditCard,
		TotalLimit:      domain.NewCardLimit,
		AmountUsed:      0,
		AvailableAmount: domain.NewCardLimit,
		CreatedBy:       auditActor,
	}

	created, err := s.cardRepository.CreateCard(ctx, card)
	if err != nil {
		return s.fail(ctx, span, start, "create_card", "create_failed", "Failed to create card", err)
	}

	s.publish(ctx, domain.CardCreated, created)

	s.cardsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("service", "card")))
	duration := s.recordDuration(ctx, start, "create_card", "success")

	s.log.Info("Card created successfully",
		zap.Uint64("card_id", created.CardID),
		zap.Float64("duration_ms", duration),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetStatus(codes.Ok, "Card created successfully")
	span.SetAttributes(attribute.Int64("card.id", int64(created.CardID)))

	return nil
}

// FetchCard implements service.CardServices
func (s *cardService) FetchCard(ctx context.Context, mobileNumber string) (*dto.CardsDto, error) {
	ctx, span := s.start(ctx, "service.FetchCard", "fetch_card", mobileNumber)
	defer span.End()

	start := time.Now()

	if cached, _ := s.cardCache.Get(ctx, mobileNumber); cached != nil {
		s.recordDuration(ctx, start, "fetch_card", "success")
		span.SetAttributes(attribute.Bool("cache.hit", true))
		span.SetStatus(codes.Ok, "Card served from cache")
		return dto.CardToDto(cached), nil
	}

	card, err := s.cardRepository.FindByMobileNumber(ctx, mobileNumber)
	if err != nil {
		return nil, s.fail(ctx, span, start, "fetch_card", "repository_error", "Failed to fetch card", err)
	}
	if card == nil {
		err := fmt.Errorf("%w: mobileNumber %s", common.ErrCardNotFound, mobileNumber)
		return nil, s.fail(ctx, span, start, "fetch_card", "card_not_found", "Card not found", err)
	}

	_ = s.cardCache.Set(ctx, card)

	duration := s.recordDuration(ctx, start, "fetch_card", "success")
	s.log.Debug("Card fetched",
		zap.Uint64("card_id", card.CardID),
		zap.Float64("duration_ms", duration),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetAttributes(attribute.Bool("cache.hit", false))
	span.SetStatus(codes.Ok, "Card fetched successfully")

	return dto.CardToDto(card), nil
}

// UpdateCard implements service.CardServices
func (s *cardService) UpdateCard(ctx context.Context, req dto.CardsDto) (bool, error) {
	ctx, span := s.start(ctx, "service.UpdateCard", "update_card", req.MobileNumber)
	defer span.End()

	start := time.Now()
	span.SetAttributes(attribute.String("card.number", req.CardNumber))

	card, err := s.cardRepository.FindByCardNumber(ctx, req.CardNumber)
	if err != nil {
		return false, s.fail(ctx, span, start, "update_card", "repository_error", "Failed to look up card", err)
	}
	if card == nil {
		err := fmt.Errorf("%w: cardNumber %s", common.ErrCardNotFound, req.CardNumber)
		return false, s.fail(ctx, span, start, "update_card", "card_not_found", "Card not found", err)
	}

	previousMobile := card.MobileNumber
	dto.ApplyToCard(req, card)
	card.RecalculateAvailable()
	card.UpdatedBy = auditActor

	rows, err := s.cardRepository.UpdateCard(ctx, card)
	if err != nil {
		return false, s.fail(ctx, span, start, "update_card", "update_failed", "Failed to update card", err)
	}

	_ = s.cardCache.Delete(ctx, previousMobile)
	if previousMobile != card.MobileNumber {
		_ = s.cardCache.Delete(ctx, card.MobileNumber)
	}

	if rows == 0 {
		s.recordDuration(ctx, start, "update_card", "not_modified")
		s.log.Warn("Card update changed no rows",
			zap.Uint64("card_id", card.CardID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
		)
		span.SetStatus(codes.Ok, "Card not modified")
		return false, nil
	}

	s.publish(ctx, domain.CardUpdated, card)

	s.cardsUpdated.Add(ctx, 1, metric.WithAttributes(attribute.String("service", "card")))
	duration := s.recordDuration(ctx, start, "update_card", "success")

	s.log.Info("Card updated successfully",
		zap.Uint64("card_id", card.CardID),
		zap.Float64("duration_ms", duration),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetStatus(codes.Ok, "Card updated successfully")
	return true, nil
}

// DeleteCard implements service.CardServices
func (s *cardService) DeleteCard(ctx context.Context, mobileNumber string) (bool, error) {
	ctx, span := s.start(ctx, "service.DeleteCard", "delete_card", mobileNumber)
	defer span.End()

	start := time.Now()

	card, err := s.cardRepository.FindByMobileNumber(ctx, mobileNumber)
	if err != nil {
		return false, s.fail(ctx, span, start, "delete_card", "repository_error", "Failed to look up card", err)
	}
	if card == nil {
		err := fmt.Errorf("%w: mobileNumber %s", common.ErrCardNotFound, mobileNumber)
		return false, s.fail(ctx, span, start, "delete_card", "card_not_found", "Card not found", err)
	}

	rows, err := s.cardRepository.DeleteByID(ctx, card.CardID)
	if err != nil {
		return false, s.fail(ctx, span, start, "delete_card", "delete_failed", "Failed to delete card", err)
	}

	_ = s.cardCache.Delete(ctx, mobileNumber)

	if rows == 0 {
		s.recordDuration(ctx, start, "delete_card", "not_modified")
		s.log.Warn("Card delete removed no rows",
			zap.Uint64("card_id", card.CardID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
		)
		span.SetStatus(codes.Ok, "Card not deleted")
		return false, nil
	}

	s.publish(ctx, domain.CardDeleted, card)

	s.cardsDeleted.Add(ctx, 1, metric.WithAttributes(attribute.String("service", "card")))
	duration := s.recordDuration(ctx, start, "delete_card", "success")

	s.log.Info("Card deleted successfully",
		zap.Uint64("card_id", card.CardID),
		zap.Float64("duration_ms", duration),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetStatus(codes.Ok, "Card deleted successfully")
	return true, nil
}

func NewCardService(
	cardRepository repository.CardRepository,
	cardCache repository.CardCache,
	publisher repository.CardEventPublisher,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) service.CardServices {
	operationDuration, _ := meter.Float64Histogram(
		"service.operation.duration",
		metric.WithDescription("Duration of service operations"),
		metric.WithUnit("ms"),
	)

	operationCount, _ := meter.Int64Counter(
		"service.operation.count",
		metric.WithDescription("Number of service operations"),
		metric.WithUnit("{operation}"),
	)

	errorCount, _ := meter.Int64Counter(
		"service.error.count",
		metric.WithDescription("Number of service errors"),
		metric.WithUnit("{error}"),
	)

	cardsCreated, _ := meter.Int64Counter(
		"service.cards.created",
		metric.WithDescription("Number of cards created"),
		metric.WithUnit("{card}"),
	)

	cardsUpdated, _ := meter.Int64Counter(
		"service.cards.updated",
		metric.WithDescription("Number of cards updated"),
		metric.WithUnit("{card}"),
	)

	cardsDeleted, _ := meter.Int64Counter(
		"service.cards.deleted",
		metric.WithDescription("Number of cards deleted"),
		metric.WithUnit("{card}"),
	)

	return &cardService{
		cardRepository: cardRepository,
		cardCache:      cardCache,
		publisher:      publisher,

		meter:             meter,
		tracer:            tracer,
		log:               log,
		operationDuration: operationDuration,
		operationCount:    operationCount,
		errorCount:        errorCount,
		cardsCreated:      cardsCreated,
		cardsUpdated:      cardsUpdated,
		cardsDeleted:      cardsDeleted,
	}
}
