package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderbook/internal/config"
)

func TestNewClientDisabledReturnsNoop(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	cfg := config.Config{Messaging: config.Messaging{Enabled: false, Kafka: config.Kafka{Topic: "orders.events"}}}

	client, err := NewClient(lc, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "orders.events", client.Topic())
	assert.NoError(t, client.Publish(context.Background(), []byte("k"), []byte("v"), nil))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, client.Consume(ctx, func(context.Context, Message) error { return nil }), context.DeadlineExceeded)
}

func TestNewClientUnknownDriver(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	cfg := config.Config{Messaging: config.Messaging{Enabled: true, Driver: "nats"}}

	_, err := NewClient(lc, cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported messaging driver")
}

func TestKafkaMessageHeadersRoundTrip(t *testing.T) {
	out := toKafkaMessage("orders.events", []byte("ORD-1"), []byte(`{}`), map[string]string{"event-type": "order.created"})
	require.Len(t, out.Headers, 1)
	assert.Equal(t, kafka.Header{Key: "event-type", Value: []byte("order.created")}, out.Headers[0])

	out.Offset = 42
	in := fromKafkaMessage(out)
	assert.Equal(t, "orders.events", in.Topic)
	assert.Equal(t, []byte("ORD-1"), in.Key)
	assert.Equal(t, int64(42), in.Offset)
	assert.Equal(t, "order.created", in.Headers["event-type"])
}

func TestFromKafkaMessageWithoutHeaders(t *testing.T) {
	in := fromKafkaMessage(kafka.Message{Topic: "t", Value: []byte("v")})
	assert.Nil(t, in.Headers)
	assert.Equal(t, []byte("v"), in.Value)
}
