package timer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDetermineLastOccurrence drives the clock-skew rule from spec.md §4.4
// directly: a fire landing a few milliseconds before status.Next must still
// be attributed to status.Next, not to the (slightly earlier) fire time,
// so schedule.Next never sees the same Next value applied twice.
func TestDetermineLastOccurrence(t *testing.T) {
	sched, err := NewConstantSchedule(time.Minute)
	require.NoError(t, err)

	exec := ExecutorFunc(func(_ context.Context, _ TimerInfo) error { return nil })
	l := NewListener("t1", sched, exec, WithSkewTolerance(5*time.Millisecond), WithUseMonitor(false))

	statusNext := time.Date(2024, 1, 1, 0, 10, 0, 0, time.UTC)
	status := &ScheduleStatus{Last: Never, Next: statusNext, LastUpdated: statusNext.Add(-time.Minute)}

	t.Run("on time", func(t *testing.T) {
		assert.Equal(t, statusNext, l.determineLastOccurrence(status, statusNext))
	})

	t.Run("late", func(t *testing.T) {
		late := statusNext.Add(2 * time.Second)
		assert.Equal(t, statusNext, l.determineLastOccurrence(status, late))
	})

	t.Run("early within skew tolerance snaps to status.Next", func(t *testing.T) {
		early := statusNext.Add(-3 * time.Millisecond)
		assert.Equal(t, statusNext, l.determineLastOccurrence(status, early))
	})

	t.Run("early beyond skew tolerance falls back to now", func(t *testing.T) {
		tooEarly := statusNext.Add(-50 * time.Millisecond)
		assert.Equal(t, tooEarly, l.determineLastOccurrence(status, tooEarly))
	})

	t.Run("no prior status returns now", func(t *testing.T) {
		now := statusNext.Add(-3 * time.Millisecond)
		assert.Equal(t, now, l.determineLastOccurrence(nil, now))
	})
}
