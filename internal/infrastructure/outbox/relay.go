// Package outbox delivers domain events written by the repositories to Kafka.
package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ricare/lending/pkg/events"
	pkgkafka "github.com/ricare/lending/pkg/kafka"
)

// Publisher is satisfied by *pkgkafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// Relay polls the outbox and publishes pending entries in creation order.
// Delivery is at least once: an entry is marked only after Kafka acked it.
type Relay struct {
	repo      events.OutboxRepository
	publisher Publisher
	topic     string
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

// NewRelay creates a relay publishing to topic.
func NewRelay(
	repo events.OutboxRepository,
	publisher Publisher,
	topic string,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		repo:      repo,
		publisher: publisher,
		topic:     topic,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run relays until ctx is cancelled. Failed rounds are logged and retried on
// the next tick.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("outbox relay starting", "topic", r.topic, "interval", r.interval)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		for {
			n, err := r.RelayOnce(ctx)
			if err != nil {
				if ctx.Err() == nil {
					r.logger.Error("outbox relay round failed", "error", err)
				}
				break
			}
			// A full batch means more may be waiting.
			if n < r.batchSize {
				break
			}
		}

		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopping")
			return nil
		case <-ticker.C:
		}
	}
}

// RelayOnce publishes one batch and returns how many entries it delivered.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	entries, err := r.repo.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch outbox: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	messages := make([]pkgkafka.Message, 0, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		messages = append(messages, pkgkafka.Message{
			Key:   []byte(e.AggregateID),
			Value: e.Payload,
			Headers: map[string]string{
				"event_id":       e.ID,
				"event_type":     e.EventType,
				"aggregate_type": e.AggregateType,
			},
		})
		ids = append(ids, e.ID)
	}

	if err := r.publisher.Publish(ctx, r.topic, messages...); err != nil {
		return 0, fmt.Errorf("publish outbox batch: %w", err)
	}
	if err := r.repo.MarkPublished(ctx, ids); err != nil {
		return 0, fmt.Errorf("mark outbox published: %w", err)
	}

	r.logger.Debug("outbox batch relayed", "count", len(entries), "topic", r.topic)
	return len(entries), nil
}
