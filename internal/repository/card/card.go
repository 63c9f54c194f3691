package cardrepo

import (
	"context"
	"errors"
	"time"

	"github.com/fazamuttaqien/cards/internal/domain"
	"github.com/fazamuttaqien/cards/internal/model"
	"github.com/fazamuttaqien/cards/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const cardsTable = "cards"

type cardRepository struct {
	db                 *gorm.DB
	meter              metric.Meter
	tracer             trace.Tracer
	log                *zap.Logger
	queryDuration      metric.Float64Histogram
	queryCount         metric.Int64Counter
	errorCount         metric.Int64Counter
	connectionGauge    metric.Int64UpDownCounter
	documentsInserted  metric.Int64Counter
	documentsRetrieved metric.Int64Counter
}

// begin opens the span and records the bookkeeping every query shares.
// The returned func must be deferred; it releases the connection gauge.
func (r *cardRepository) begin(ctx context.Context, spanName, operation string) (context.Context, trace.Span, func()) {
	ctx, span := r.tracer.Start(ctx, spanName)

	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("table", cardsTable),
	)
	r.connectionGauge.Add(ctx, 1, attrs)
	r.queryCount.Add(ctx, 1, attrs)

	span.SetAttributes(
		attribute.String("db.operation", operation),
		attribute.String("db.table", cardsTable),
	)

	return ctx, span, func() {
		r.connectionGauge.Add(ctx, -1, attrs)
		span.End()
	}
}

func (r *cardRepository) recordDuration(ctx context.Context, start time.Time, operation, status string) float64 {
	duration := float64(time.Since(start).Milliseconds())
	r.queryDuration.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("table", cardsTable),
			attribute.String("status", status),
		),
	)
	return duration
}

func (r *cardRepository) recordError(ctx context.Context, span trace.Span, start time.Time, operation, message string, err error, fields ...zap.Field) {
	span.SetStatus(codes.Error, message)
	span.RecordError(err)

	r.log.Error(message, append([]zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.Error(err),
	}, fields...)...)

	r.errorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("table", cardsTable),
			attribute.String("error", err.Error()),
		),
	)

	r.recordDuration(ctx, start, operation, "error")
}

// CreateCard implements repository.CardRepository.
func (r *cardRepository) CreateCard(ctx context.Context, card *domain.Card) (*domain.Card, error) {
	ctx, span, end := r.begin(ctx, "repository.CreateCard", "insert")
	defer end()

	start := time.Now()

	r.log.Debug("Creating card",
		zap.String("mobile_number", card.MobileNumber),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	row := model.CardFromEntity(card)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		r.recordError(ctx, span, start, "insert", "Failed to create card", err,
			zap.String("mobile_number", card.MobileNumber))
		return nil, err
	}

	r.documentsInserted.Add(ctx, 1, metric.WithAttributes(attribute.String("table", cardsTable)))
	duration := r.recordDuration(ctx, start, "insert", "success")

	r.log.Info("Card created",
		zap.Uint64("card_id", row.CardID),
		zap.String("mobile_number", row.MobileNumber),
		zap.Float64("duration_ms", duration),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetStatus(codes.Ok, "Card created successfully")
	span.SetAttributes(attribute.Int64("card.id", int64(row.CardID)))

	return model.CardToEntity(row), nil
}

// FindByMobileNumber implements repository.CardRepository.
func (r *cardRepository) FindByMobileNumber(ctx context.Context, mobileNumber string) (*domain.Card, error) {
	return r.findOne(ctx, "repository.FindByMobileNumber", "mobile_number", mobileNumber)
}

// FindByCardNumber implements repository.CardRepository.
func (r *cardRepository) FindByCardNumber(ctx context.Context, cardNumber string) (*domain.Card, error) {
	return r.findOne(ctx, "repository.FindByCardNumber", "card_number", cardNumber)
}

func (r *cardRepository) findOne(ctx context.Context, spanName, column, value string) (*domain.Card, error) {
	ctx, span, end := r.begin(ctx, spanName, "select")
	defer end()

	start := time.Now()
	span.SetAttributes(attribute.String("db.lookup", column))

	var row model.Card
	err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			duration := r.recordDuration(ctx, start, "select", "not_found")
			r.log.Debug("Card not found",
				zap.String("lookup", column),
				zap.Float64("duration_ms", duration),
				zap.String("trace_id", span.SpanContext().TraceID().String()),
			)
			span.SetStatus(codes.Ok, "Card not found")
			return nil, nil
		}

		r.recordError(ctx, span, start, "select", "Error finding card", err, zap.String("lookup", column))
		return nil, err
	}

	r.documentsRetrieved.Add(ctx, 1, metric.WithAttributes(attribute.String("table", cardsTable)))
	duration := r.recordDuration(ctx, start, "select", "success")

	r.log.Debug("Card found",
		zap.Uint64("card_id", row.CardID),
		zap.String("lookup", column),
		zap.Float64("duration_ms", duration),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetStatus(codes.Ok, "Card found successfully")

	return model.CardToEntity(row), nil
}

// UpdateCard implements repository.CardRepository. It returns the number of
// rows the store reports as changed.
func (r *cardRepository) UpdateCard(ctx context.Context, card *domain.Card) (int64, error) {
	ctx, span, end := r.begin(ctx, "repository.UpdateCard", "update")
	defer end()

	start := time.Now()
	span.SetAttributes(attribute.Int64("card.id", int64(card.CardID)))

	result := r.db.WithContext(ctx).
		Model(&model.Card{}).
		Where("card_id = ?", card.CardID).
		Updates(map[string]any{
			"mobile_number":    card.MobileNumber,
			"card_number":      card.CardNumber,
			"card_type":        card.CardType,
			"total_limit":      card.TotalLimit,
			"amount_used":      card.AmountUsed,
			"available_amount": card.AvailableAmount,
			"updated_by":       card.UpdatedBy,
		})
	if result.Error != nil {
		r.recordError(ctx, span, start, "update", "Failed to update card", result.Error,
			zap.Uint64("card_id", card.CardID))
		return 0, result.Error
	}

	duration := r.recordDuration(ctx, start, "update", "success")

	r.log.Info("Card updated",
		zap.Uint64("card_id", card.CardID),
		zap.Int64("rows_affected", result.RowsAffected),
		zap.Float64("duration_ms", duration),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetStatus(codes.Ok, "Card updated")
	span.SetAttributes(attribute.Int64("result.rows_affected", result.RowsAffected))

	return result.RowsAffected, nil
}

// DeleteByID implements repository.CardRepository.
func (r *cardRepository) DeleteByID(ctx context.Context, cardID uint64) (int64, error) {
	ctx, span, end := r.begin(ctx, "repository.DeleteByID", "delete")
	defer end()

	start := time.Now()
	span.SetAttributes(attribute.Int64("card.id", int64(cardID)))

	result := r.db.WithContext(ctx).Where("card_id = ?", cardID).Delete(&model.Card{})
	if result.Error != nil {
		r.recordError(ctx, span, start, "delete", "Failed to delete card", result.Error,
			zap.Uint64("card_id", cardID))
		return 0, result.Error
	}

	duration := r.recordDuration(ctx, start, "delete", "success")

	r.log.Info("Card deleted",
		zap.Uint64("card_id", cardID),
		zap.Int64("rows_affected", result.RowsAffected),
		zap.Float64("duration_ms", duration),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetStatus(codes.Ok, "Card deleted")
	span.SetAttributes(attribute.Int64("result.rows_affected", result.RowsAffected))

	return result.RowsAffected, nil
}

func NewCardRepository(
	db *gorm.DB,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) repository.CardRepository {
	queryDuration, _ := meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Duration of database queries"),
		metric.WithUnit("ms"),
	)

	queryCount, _ := meter.Int64Counter(
		"db.query.count",
		metric.WithDescription("Number of database queries"),
		metric.WithUnit("{query}"),
	)

	errorCount, _ := meter.Int64Counter(
		"db.error.count",
		metric.WithDescription("Number of database errors"),
		metric.WithUnit("{error}"),
	)

	connectionGauge, _ := meter.Int64UpDownCounter(
		"db.connections.active",
		metric.WithDescription("Number of active database connections"),
		metric.WithUnit("{connection}"),
	)

	documentsInserted, _ := meter.Int64Counter(
		"db.rows.inserted",
		metric.WithDescription("Number of rows inserted"),
		metric.WithUnit("{row}"),
	)

	documentsRetrieved, _ := meter.Int64Counter(
		"db.rows.retrieved",
		metric.WithDescription("Number of rows retrieved"),
		metric.WithUnit("{row}"),
	)

	return &cardRepository{
		db:                 db,
		meter:              meter,
		tracer:             tracer,
		log:                log,
		queryDuration:      queryDuration,
		queryCount:         queryCount,
		errorCount:         errorCount,
		connectionGauge:    connectionGauge,
		documentsInserted:  documentsInserted,
		documentsRetrieved: documentsRetrieved,
	}
}
