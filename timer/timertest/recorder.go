// Package timertest provides test doubles for exercising a timer.TimerListener
// without a real clock or durable monitor.
//
// Only for testing purposes - do not import into main code builds
package timertest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luno/timerhost/timer"
)

// RecordingExecutor is a timer.Executor that appends every invocation to an
// in-memory log instead of doing real work.
type RecordingExecutor struct {
	mu    sync.Mutex
	fires []timer.TimerInfo
	err   error
}

// NewRecordingExecutor returns a RecordingExecutor that always succeeds.
// Use WithErr to make it return a fixed error instead.
func NewRecordingExecutor() *RecordingExecutor {
	return &RecordingExecutor{}
}

// WithErr makes every future Execute call return err.
func (r *RecordingExecutor) WithErr(err error) *RecordingExecutor {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
	return r
}

func (r *RecordingExecutor) Execute(_ context.Context, info timer.TimerInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fires = append(r.fires, info)
	return r.err
}

// Fires returns a snapshot of every TimerInfo recorded so far.
func (r *RecordingExecutor) Fires() []timer.TimerInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]timer.TimerInfo, len(r.fires))
	copy(out, r.fires)
	return out
}

// Count returns how many times Execute has been called.
func (r *RecordingExecutor) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fires)
}

// AssertFiredN fails the test unless Execute has been called exactly n times
// within timeout, polling every 5ms.
func AssertFiredN(t *testing.T, r *RecordingExecutor, n int, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if r.Count() >= n {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, n, r.Count(), "unexpected fire count")
}

// AssertNotFired fails the test if Execute was ever called.
func AssertNotFired(t *testing.T, r *RecordingExecutor) {
	t.Helper()
	assert.Equal(t, 0, r.Count(), "expected no fires")
}
