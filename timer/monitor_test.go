package timer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPastDueNewTimer(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sched, err := NewConstantSchedule(time.Minute)
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pastDue, err := CheckPastDue(ctx, store, "t1", now, time.UTC, sched, nil)
	require.NoError(t, err)
	assert.Zero(t, pastDue)

	status, err := store.GetStatus(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, Never, status.Last)
	assert.Equal(t, now.Add(time.Minute), status.Next)
}

func TestCheckPastDueOnTime(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sched, err := NewConstantSchedule(time.Minute)
	require.NoError(t, err)

	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	status := ScheduleStatus{Last: last, Next: last.Add(time.Minute), LastUpdated: last}

	now := last.Add(time.Minute)
	pastDue, err := CheckPastDue(ctx, store, "t1", now, time.UTC, sched, &status)
	require.NoError(t, err)
	assert.Zero(t, pastDue)
}

func TestCheckPastDueLate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sched, err := NewConstantSchedule(time.Minute)
	require.NoError(t, err)

	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	status := ScheduleStatus{Last: last, Next: last.Add(time.Minute), LastUpdated: last}

	now := last.Add(4 * time.Minute)
	pastDue, err := CheckPastDue(ctx, store, "t1", now, time.UTC, sched, &status)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Minute, pastDue)
}

func TestCheckPastDueScheduleChanged(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sched, err := NewConstantSchedule(5 * time.Minute)
	require.NoError(t, err)

	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// status.Next was computed under a different (e.g. 1-minute) schedule.
	status := ScheduleStatus{Last: last, Next: last.Add(time.Minute), LastUpdated: last}

	now := last.Add(30 * time.Second)
	pastDue, err := CheckPastDue(ctx, store, "t1", now, time.UTC, sched, &status)
	require.NoError(t, err)
	assert.Zero(t, pastDue)

	rewritten, err := store.GetStatus(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, rewritten)
	assert.Equal(t, Never, rewritten.Last)
	assert.Equal(t, last.Add(5*time.Minute), rewritten.Next)
}

func TestCheckPastDueScheduleChangedIntoPast(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sched, err := NewConstantSchedule(time.Minute)
	require.NoError(t, err)

	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	status := ScheduleStatus{Last: last, Next: last.Add(time.Hour), LastUpdated: last}

	now := last.Add(2 * time.Hour)
	pastDue, err := CheckPastDue(ctx, store, "t1", now, time.UTC, sched, &status)
	require.NoError(t, err)
	assert.Zero(t, pastDue)

	rewritten, err := store.GetStatus(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Minute), rewritten.Next)
}
