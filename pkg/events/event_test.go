package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loanTouched struct {
	BaseEvent
	Amount string `json:"amount"`
}

func TestNewBaseEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("IST", 19800))
	event := NewBaseEvent("lending.loan.approved", "loan-123", "Loan", at)

	assert.NotEmpty(t, event.EventID())
	assert.Equal(t, "lending.loan.approved", event.EventType())
	assert.Equal(t, "loan-123", event.AggregateID())
	assert.Equal(t, "Loan", event.AggregateType())
	assert.True(t, event.OccurredAt().Equal(at))
	assert.Equal(t, time.UTC, event.OccurredAt().Location())
}

func TestNewBaseEvent_ZeroTimeDefaultsToNow(t *testing.T) {
	before := time.Now().UTC()
	event := NewBaseEvent("x", "agg", "Loan", time.Time{})
	after := time.Now().UTC()

	assert.False(t, event.OccurredAt().Before(before))
	assert.False(t, event.OccurredAt().After(after))
}

func TestBaseEventImplementsDomainEvent(t *testing.T) {
	var _ DomainEvent = BaseEvent{}
}

func TestNewOutboxEntry(t *testing.T) {
	event := loanTouched{
		BaseEvent: NewBaseEvent("lending.loan.touched", "agg-789", "Loan", time.Now()),
		Amount:    "100.00",
	}

	entry, err := NewOutboxEntry(event)
	require.NoError(t, err)

	assert.Equal(t, event.EventID(), entry.ID)
	assert.Equal(t, "agg-789", entry.AggregateID)
	assert.Equal(t, "Loan", entry.AggregateType)
	assert.Equal(t, "lending.loan.touched", entry.EventType)
	assert.Equal(t, event.OccurredAt(), entry.CreatedAt)
	assert.Nil(t, entry.PublishedAt)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(entry.Payload, &parsed))
	assert.Equal(t, "100.00", parsed["amount"])
}

func TestNewOutboxEntries(t *testing.T) {
	evts := []DomainEvent{
		NewBaseEvent("a", "1", "Loan", time.Now()),
		NewBaseEvent("b", "1", "Loan", time.Now()),
	}

	entries, err := NewOutboxEntries(evts)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].EventType)
	assert.Equal(t, "b", entries[1].EventType)
}

func TestEventCollector(t *testing.T) {
	t.Run("records in order", func(t *testing.T) {
		collector := &EventCollector{}
		collector.Record(NewBaseEvent("Event1", "agg", "Loan", time.Now()))
		collector.Record(NewBaseEvent("Event2", "agg", "Loan", time.Now()))

		evts := collector.Events()
		require.Len(t, evts, 2)
		assert.Equal(t, "Event1", evts[0].EventType())
		assert.Equal(t, "Event2", evts[1].EventType())
		assert.Len(t, collector.Events(), 2, "Events must not clear")
	})

	t.Run("clear returns and empties", func(t *testing.T) {
		collector := &EventCollector{}
		collector.Record(NewBaseEvent("Event1", "agg", "Loan", time.Now()))

		cleared := collector.ClearEvents()
		assert.Len(t, cleared, 1)
		assert.Empty(t, collector.Events())
	})

	t.Run("clear on empty returns nil", func(t *testing.T) {
		collector := &EventCollector{}
		assert.Nil(t, collector.ClearEvents())
	})
}
