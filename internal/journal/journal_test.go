package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parklot/internal/events"
	"parklot/internal/model"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndQuery(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	entries := []Entry{
		{SlotID: 1, Event: events.TypeSlotAllocated, Category: "visitor", LicensePlate: "HU-A1", CreatedAt: base},
		{SlotID: 1, Event: events.TypeSlotReleased, Category: "visitor", LicensePlate: "HU-A1", Fee: 30.0, CreatedAt: base.Add(3 * time.Hour)},
		{SlotID: 2, Event: events.TypeResidentBilled, Category: "resident", Fee: 200.0, CreatedAt: base.Add(time.Hour)},
	}
	for _, e := range entries {
		require.NoError(t, j.Record(ctx, e))
	}

	t.Run("history per slot, newest first", func(t *testing.T) {
		got, err := j.EventsForSlot(ctx, 1)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, events.TypeSlotReleased, got[0].Event)
		assert.Equal(t, 30.0, got[0].Fee)
		assert.NotEmpty(t, got[0].ID, "ids are assigned on insert")
	})

	t.Run("fee total over a window", func(t *testing.T) {
		total, err := j.FeeTotalBetween(ctx, base, base.Add(4*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 230.0, total)

		total, err = j.FeeTotalBetween(ctx, base, base.Add(30*time.Minute))
		require.NoError(t, err)
		assert.Zero(t, total, "allocation events carry no fee")
	})

	t.Run("empty window sums to zero", func(t *testing.T) {
		total, err := j.FeeTotalBetween(ctx, base.AddDate(1, 0, 0), base.AddDate(2, 0, 0))
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}

func TestSubscribe(t *testing.T) {
	j := openTestJournal(t)
	bus := events.NewBus()
	j.Subscribe(bus)

	bus.Publish(events.Event{
		Type:         events.TypeSlotAllocated,
		SlotID:       7,
		Category:     model.Visitor,
		LicensePlate: "HU-Z9",
	})
	bus.Publish(events.Event{
		Type:     events.TypeSlotReleased,
		SlotID:   7,
		Category: model.Visitor,
		Fee:      10.0,
	})

	got, err := j.EventsForSlot(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "visitor", got[0].Category)
}
