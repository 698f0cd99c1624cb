package kafka

import (
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092", "localhost:9093"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost:9092", "localhost:9093"}, p.brokers)
	assert.Empty(t, p.writers)
	assert.Nil(t, p.transport.SASL)
	assert.Nil(t, p.transport.TLS)
}

func TestNewProducer_SASL(t *testing.T) {
	t.Run("scram", func(t *testing.T) {
		p, err := NewProducer(Config{
			Brokers:       []string{"kafka:9092"},
			SASLEnabled:   true,
			SASLMechanism: "SCRAM-SHA-512",
			SASLUsername:  "lending",
			SASLPassword:  "secret",
			TLS:           true,
		})
		require.NoError(t, err)
		assert.NotNil(t, p.transport.SASL)
		assert.NotNil(t, p.transport.TLS)
	})

	t.Run("unsupported mechanism", func(t *testing.T) {
		_, err := NewProducer(Config{SASLEnabled: true, SASLMechanism: "GSSAPI"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported SASL mechanism")
	})
}

func TestGetOrCreateWriter(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)

	w1 := p.getOrCreateWriter("lending.events")
	w2 := p.getOrCreateWriter("lending.events")
	w3 := p.getOrCreateWriter("healthcard.status_changed")

	assert.Same(t, w1, w2)
	assert.NotSame(t, w1, w3)
	assert.Len(t, p.writers, 2)

	require.NoError(t, p.Close())
	assert.Empty(t, p.writers)
}

func TestMessageConversion(t *testing.T) {
	msgs := toKafkaMessages([]Message{{
		Key:     []byte("loan-1"),
		Value:   []byte(`{"amount":"100.00"}`),
		Headers: map[string]string{"event_type": "lending.emi.applied"},
	}})
	require.Len(t, msgs, 1)
	assert.Equal(t, "loan-1", string(msgs[0].Key))
	require.Len(t, msgs[0].Headers, 1)
	assert.Equal(t, "event_type", msgs[0].Headers[0].Key)

	back := fromKafkaMessage(kafkago.Message{
		Key:     []byte("loan-1"),
		Value:   []byte("{}"),
		Headers: []kafkago.Header{{Key: "event_type", Value: []byte("x")}},
	})
	assert.Equal(t, "x", back.Headers["event_type"])
}
