package event_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fazamuttaqien/cards/internal/domain"
	"github.com/fazamuttaqien/cards/internal/event"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := event.NewKafkaPublisher(w, zap.NewNop())

	err := p.Publish(context.Background(), domain.CardEvent{
		Type:         domain.CardCreated,
		MobileNumber: "9876543210",
		CardNumber:   "100000000001",
	})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, []byte("9876543210"), msg.Key)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "card.created", string(msg.Headers[0].Value))

	var got domain.CardEvent
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.NotEmpty(t, got.EventID)
	assert.False(t, got.OccurredAt.IsZero())
	assert.Equal(t, "100000000001", got.CardNumber)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	p := event.NewKafkaPublisher(w, zap.NewNop())

	err := p.Publish(context.Background(), domain.CardEvent{Type: domain.CardDeleted, MobileNumber: "9876543210"})
	assert.EqualError(t, err, "broker unavailable")
}

func TestNew_WithoutBrokersIsNoop(t *testing.T) {
	p := event.New("", "cards.events", zap.NewNop())
	assert.IsType(t, event.NoopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), domain.CardEvent{Type: domain.CardUpdated}))
	assert.NoError(t, p.Close())
}
