package timer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/luno/timerhost/timer"
	"github.com/luno/timerhost/timer/timertest"
)

// step advances a fake clock once its goroutine is actually waiting on it,
// then waits for the listener to register its next wait before returning.
// The second wait is what makes a following "assert nothing fired yet"
// reliable: it only passes once the listener's processing of this tick
// (including a possible executor invocation) has completed and a new timer
// is armed.
func step(cl *clocktesting.FakeClock, d time.Duration) {
	for !cl.HasWaiters() {
		time.Sleep(time.Millisecond)
	}
	cl.Step(d)
	for !cl.HasWaiters() {
		time.Sleep(time.Millisecond)
	}
}

func TestListenerRunOnStartupPastDue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cl := clocktesting.NewFakeClock(now)

	sched, err := timer.NewConstantSchedule(10 * time.Minute)
	require.NoError(t, err)

	store := timer.NewMemoryStore()
	require.NoError(t, store.UpdateStatus(ctx, "t1", timer.ScheduleStatus{
		Last:        now.Add(-13 * time.Minute),
		Next:        now.Add(-3 * time.Minute),
		LastUpdated: now.Add(-13 * time.Minute),
	}))

	exec := timertest.NewRecordingExecutor()
	l := timer.NewListener("t1", sched, exec,
		timer.WithClock(cl),
		timer.WithMonitor(timer.NewMonitor(store)),
		timer.WithUseMonitor(true),
		timer.WithRunOnStartup())

	require.NoError(t, l.Start(ctx))
	defer l.Stop(ctx)

	timertest.AssertFiredN(t, exec, 1, time.Second)
	fires := exec.Fires()
	assert.True(t, fires[0].IsPastDue)
}

// TestListenerStopDuringInvocationPreventsFurtherFires implements the
// spec.md §8 "Stop during invocation" scenario: the executor itself calls
// Stop while it's running. Stop marks the listener Stopped (and closes its
// stop channel) before it ever blocks waiting for the in-flight fire to
// finish, so calling it reentrantly from inside the fire it is waiting on
// times out rather than deadlocking - by the time that happens the listener
// has already recorded it must not re-arm.
func TestListenerStopDuringInvocationPreventsFurtherFires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cl := clocktesting.NewFakeClock(now)

	sched, err := timer.NewConstantSchedule(time.Minute)
	require.NoError(t, err)

	rec := timertest.NewRecordingExecutor()
	var l *timer.TimerListener
	exec := timer.ExecutorFunc(func(_ context.Context, info timer.TimerInfo) error {
		_ = rec.Execute(context.Background(), info)

		stopCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_ = l.Stop(stopCtx)
		return nil
	})

	l = timer.NewListener("t1", sched, exec, timer.WithClock(cl), timer.WithUseMonitor(false))
	require.NoError(t, l.Start(ctx))

	// step would wait for a re-arm that a stopped listener never makes, so
	// advance the clock directly once the first arm is in place.
	for !cl.HasWaiters() {
		time.Sleep(time.Millisecond)
	}
	cl.Step(time.Minute)
	timertest.AssertFiredN(t, rec, 1, time.Second)

	// several more periods elapse; the listener must not have re-armed.
	cl.Step(5 * time.Minute)
	time.Sleep(20 * time.Millisecond)
	timertest.AssertFiredN(t, rec, 1, time.Second)
}

// TestListenerLongIntervalCarry implements the spec.md §8 "Long interval"
// scenario: a period longer than MaxTimerInterval is split across several
// carried arms, none of which invoke the executor until the full interval
// has elapsed.
func TestListenerLongIntervalCarry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cl := clocktesting.NewFakeClock(now)

	period := timer.MaxTimerInterval*2 + 4*24*time.Hour
	sched, err := timer.NewConstantSchedule(period)
	require.NoError(t, err)

	rec := timertest.NewRecordingExecutor()
	l := timer.NewListener("t1", sched, rec, timer.WithClock(cl), timer.WithUseMonitor(false))
	require.NoError(t, l.Start(ctx))
	defer l.Stop(ctx)

	step(cl, timer.MaxTimerInterval)
	timertest.AssertNotFired(t, rec)

	step(cl, timer.MaxTimerInterval)
	timertest.AssertNotFired(t, rec)

	step(cl, 4*24*time.Hour)
	timertest.AssertFiredN(t, rec, 1, time.Second)
}

func TestListenerDoubleStartRejected(t *testing.T) {
	ctx := context.Background()
	cl := clocktesting.NewFakeClock(time.Now())
	sched, err := timer.NewConstantSchedule(time.Minute)
	require.NoError(t, err)

	exec := timertest.NewRecordingExecutor()
	l := timer.NewListener("t1", sched, exec, timer.WithClock(cl), timer.WithUseMonitor(false))

	require.NoError(t, l.Start(ctx))
	defer l.Stop(ctx)

	err = l.Start(ctx)
	assert.Error(t, err)
}

func TestListenerStopBeforeStartRejected(t *testing.T) {
	ctx := context.Background()
	sched, err := timer.NewConstantSchedule(time.Minute)
	require.NoError(t, err)

	exec := timertest.NewRecordingExecutor()
	l := timer.NewListener("t1", sched, exec, timer.WithUseMonitor(false))

	err = l.Stop(ctx)
	assert.Error(t, err)
}
