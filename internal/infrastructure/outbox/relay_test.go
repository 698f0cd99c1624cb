package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricare/lending/internal/infrastructure/outbox"
	"github.com/ricare/lending/pkg/events"
	pkgkafka "github.com/ricare/lending/pkg/kafka"
)

type fakeOutbox struct {
	mu        sync.Mutex
	entries   []events.OutboxEntry
	published map[string]bool
	fetchErr  error
}

func (f *fakeOutbox) FetchUnpublished(_ context.Context, batchSize int) ([]events.OutboxEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []events.OutboxEntry
	for _, e := range f.entries {
		if !f.published[e.ID] && len(out) < batchSize {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		f.published[id] = true
	}
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	topic    string
	messages []pkgkafka.Message
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, topic string, messages ...pkgkafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topic = topic
	p.messages = append(p.messages, messages...)
	return nil
}

func newOutbox(n int) *fakeOutbox {
	f := &fakeOutbox{published: make(map[string]bool)}
	for i := 0; i < n; i++ {
		f.entries = append(f.entries, events.OutboxEntry{
			ID:            string(rune('a' + i)),
			AggregateID:   "loan-1",
			AggregateType: "Loan",
			EventType:     "lending.loan.emi_payment_applied",
			Payload:       []byte(`{}`),
			CreatedAt:     time.Date(2026, 1, 1, 0, i, 0, 0, time.UTC),
		})
	}
	return f
}

func TestRelayOnce_PublishesAndMarks(t *testing.T) {
	repo := newOutbox(3)
	pub := &fakePublisher{}
	relay := outbox.NewRelay(repo, pub, "lending.events", time.Second, 10, nil)

	n, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "lending.events", pub.topic)
	require.Len(t, pub.messages, 3)
	assert.Equal(t, []byte("loan-1"), pub.messages[0].Key)
	assert.Equal(t, "lending.loan.emi_payment_applied", pub.messages[0].Headers["event_type"])
	assert.Equal(t, "a", pub.messages[0].Headers["event_id"])

	n, err = relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRelayOnce_PublishFailureLeavesEntriesPending(t *testing.T) {
	repo := newOutbox(2)
	pub := &fakePublisher{err: errors.New("broker down")}
	relay := outbox.NewRelay(repo, pub, "lending.events", time.Second, 10, nil)

	_, err := relay.RelayOnce(context.Background())
	assert.ErrorContains(t, err, "broker down")
	assert.Empty(t, repo.published)
}

func TestRelayOnce_FetchFailure(t *testing.T) {
	repo := newOutbox(0)
	repo.fetchErr = errors.New("db gone")
	relay := outbox.NewRelay(repo, &fakePublisher{}, "t", time.Second, 10, nil)

	_, err := relay.RelayOnce(context.Background())
	assert.ErrorContains(t, err, "db gone")
}

func TestRun_DrainsFullBatchesUntilCancelled(t *testing.T) {
	repo := newOutbox(5)
	pub := &fakePublisher{}
	relay := outbox.NewRelay(repo, pub, "t", 10*time.Millisecond, 2, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	assert.Eventually(t, func() bool {
		pub.mu.Lock()
		defer pub.mu.Unlock()
		return len(pub.messages) == 5
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}
