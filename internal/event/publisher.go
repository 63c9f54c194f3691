package event

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/fazamuttaqien/cards/internal/domain"
	"github.com/fazamuttaqien/cards/internal/repository"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewWriter(brokers, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
}

type KafkaPublisher struct {
	writer MessageWriter
	log    *zap.Logger
}

func NewKafkaPublisher(w MessageWriter, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, log: log}
}

// Publish stamps the event and writes it keyed by mobile number so every
// event for a card lands on the same partition.
func (p *KafkaPublisher) Publish(ctx context.Context, e domain.CardEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.MobileNumber),
		Value: b,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	})
	if err != nil {
		p.log.Error("Failed to publish card event",
			zap.String("event_id", e.EventID),
			zap.String("event_type", string(e.Type)),
			zap.Error(err),
		)
		return err
	}

	p.log.Debug("Card event published",
		zap.String("event_id", e.EventID),
		zap.String("event_type", string(e.Type)),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.CardEvent) error { return nil }
func (NoopPublisher) Close() error                                    { return nil }

// New returns a Kafka-backed publisher, or a no-op one when brokers is empty.
func New(brokers, topic string, log *zap.Logger) repository.CardEventPublisher {
	if strings.TrimSpace(brokers) == "" {
		log.Info("KAFKA_BROKERS not set, card events are disabled")
		return NoopPublisher{}
	}
	return NewKafkaPublisher(NewWriter(brokers, topic), log)
}
