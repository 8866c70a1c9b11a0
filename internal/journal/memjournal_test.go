package journal

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/Schera-ole/agentmon/internal/model"
)

func makeEvent(id string) models.AlertEvent {
	return models.AlertEvent{
		ID:         id,
		RuleID:     "rule-1",
		MetricName: "cpu_percent",
		Kind:       models.EventBreach,
		Value:      91,
		Threshold:  80,
		Severity:   models.SeverityWarning,
		Timestamp:  time.Now(),
	}
}

func TestMemJournal_AppendAndRecent(t *testing.T) {
	journal := NewMemJournal(10)
	ctx := context.Background()

	require.NoError(t, journal.Append(ctx, makeEvent("a")))
	require.NoError(t, journal.Append(ctx, makeEvent("b")))
	require.NoError(t, journal.Append(ctx, makeEvent("c")))

	// Newest first
	events, err := journal.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "c", events[0].ID)
	assert.Equal(t, "b", events[1].ID)
}

func TestMemJournal_RecentMoreThanStored(t *testing.T) {
	journal := NewMemJournal(10)
	ctx := context.Background()

	require.NoError(t, journal.Append(ctx, makeEvent("a")))

	events, err := journal.Recent(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestMemJournal_Empty(t *testing.T) {
	journal := NewMemJournal(10)

	events, err := journal.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestMemJournal_CapacityEviction(t *testing.T) {
	journal := NewMemJournal(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, journal.Append(ctx, makeEvent(fmt.Sprintf("event-%d", i))))
	}

	// Oldest two were evicted
	events, err := journal.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "event-4", events[0].ID)
	assert.Equal(t, "event-2", events[2].ID)
}

func TestMemJournal_PingAndClose(t *testing.T) {
	journal := NewMemJournal(10)
	assert.NoError(t, journal.Ping(context.Background()))
	assert.NoError(t, journal.Close())
}
