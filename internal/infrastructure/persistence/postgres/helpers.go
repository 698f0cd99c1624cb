package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ricare/lending/pkg/events"
)

// scannable is satisfied by pgx.Row and pgx.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// writeOutbox stores pending domain events in the same transaction as the
// aggregate rows that raised them.
func writeOutbox(ctx context.Context, tx pgx.Tx, evts []events.DomainEvent) error {
	entries, err := events.NewOutboxEntries(evts)
	if err != nil {
		return fmt.Errorf("build outbox entries: %w", err)
	}

	for _, e := range entries {
		_, err := tx.Exec(ctx, `
			INSERT INTO outbox (id, aggregate_id, aggregate_type, event_type, payload, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, e.ID, e.AggregateID, e.AggregateType, e.EventType, e.Payload, e.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert outbox event %s: %w", e.EventType, err)
		}
	}
	return nil
}
