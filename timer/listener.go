package timer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/luno/jettison/log"
	"k8s.io/utils/clock"
)

type listenerState int

const (
	stateCreated listenerState = iota
	stateStarted
	stateStopped
	stateDisposed
)

func (s listenerState) String() string {
	switch s {
	case stateCreated:
		return "created"
	case stateStarted:
		return "started"
	case stateStopped:
		return "stopped"
	case stateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// TimerListener is the per-timer state machine described in spec §4.4: it
// arms a clock.Timer, invokes an Executor at each scheduled occurrence
// (splitting intervals longer than MaxTimerInterval across several carried
// arms), advances a ScheduleMonitor, and stops cleanly without racing a
// late-completing fire back into a fresh arm.
//
// Valid transitions are Created -> Started -> Stopped -> Disposed; anything
// else is rejected with ErrPrecondition.
type TimerListener struct {
	name     string
	sched    Schedule
	executor Executor
	opts     options

	mu    sync.Mutex
	state listenerState

	status    *ScheduleStatus
	remaining time.Duration
	timer     clock.Timer

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewListener builds a TimerListener in the Created state. name identifies
// the timer for logging, metrics, and monitor storage.
func NewListener(name string, sched Schedule, executor Executor, opts ...Option) *TimerListener {
	return &TimerListener{
		name:     name,
		sched:    sched,
		executor: executor,
		opts:     resolveOptions(sched, opts),
	}
}

// Start runs the start protocol from spec §4.4: it loads any existing
// status, synchronously catches up a past-due or run-on-startup occurrence,
// and arms the first timer. It returns once the first arm is in place; the
// listener continues firing on its own goroutine until Stop is called.
func (l *TimerListener) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.state != stateCreated {
		s := l.state
		l.mu.Unlock()
		return errors.Wrap(ErrPrecondition, "start called outside the created state", j.KV("state", s.String()))
	}
	l.state = stateStarted
	l.stopCh = make(chan struct{})
	l.doneCh = make(chan struct{})
	l.mu.Unlock()

	now := l.opts.clock.Now().UTC()

	var status *ScheduleStatus
	var err error
	if *l.opts.useMonitor {
		status, err = l.opts.monitor.GetStatus(ctx, l.name)
		if err != nil {
			log.Error(ctx, errors.Wrap(ErrMonitorTransient, "load initial timer status", j.KV("timer_name", l.name)))
			status = nil
		}
	}
	l.logInitialStatus(ctx, status)

	var pastDue time.Duration
	if *l.opts.useMonitor {
		pastDue, err = l.opts.monitor.CheckPastDue(ctx, l.name, now, l.opts.tz, l.sched, status)
		if err != nil {
			log.Error(ctx, err)
			pastDue = 0
		} else if refreshed, rerr := l.opts.monitor.GetStatus(ctx, l.name); rerr == nil {
			status = refreshed
		}
	}

	if pastDue > 0 || l.opts.runOnStartup {
		status = l.fire(ctx, status, now, pastDue > 0)
	} else if !*l.opts.useMonitor {
		l.logNextOccurrences(ctx, now)
	}

	l.status = status
	next, err := l.nextFor(status, now)
	if err != nil {
		l.mu.Lock()
		l.state = stateStopped
		l.mu.Unlock()
		return err
	}
	l.armNext(next, now)

	go l.loop(ctx)
	return nil
}

// Stop cancels the timer and waits for any in-flight fire to finish. A fire
// that completes after Stop is called observes the stopped state and does
// not re-arm.
func (l *TimerListener) Stop(ctx context.Context) error {
	l.mu.Lock()
	if l.state != stateStarted {
		s := l.state
		l.mu.Unlock()
		return errors.Wrap(ErrPrecondition, "stop called outside the started state", j.KV("state", s.String()))
	}
	l.state = stateStopped
	done := l.doneCh
	close(l.stopCh)
	l.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// Dispose marks the listener as permanently finished. It must only be
// called after Stop.
func (l *TimerListener) Dispose() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != stateStopped {
		return errors.Wrap(ErrPrecondition, "dispose called outside the stopped state", j.KV("state", l.state.String()))
	}
	l.state = stateDisposed
	return nil
}

func (l *TimerListener) loop(ctx context.Context) {
	defer close(l.doneCh)
	for {
		select {
		case <-l.stopCh:
			l.timer.Stop()
			return
		case <-ctx.Done():
			l.timer.Stop()
			return
		case <-l.timer.C():
			if !l.onTick(ctx) {
				return
			}
		}
	}
}

func (l *TimerListener) onTick(ctx context.Context) bool {
	now := l.opts.clock.Now().UTC()

	if l.remaining > 0 {
		l.armCarry(now)
		return true
	}

	status := l.fire(ctx, l.status, now, false)
	l.status = status

	l.mu.Lock()
	stopped := l.state != stateStarted
	l.mu.Unlock()
	if stopped {
		return false
	}

	next, err := l.nextFor(status, now)
	if err != nil {
		log.Error(ctx, err)
		return false
	}
	l.armNext(next, now)
	return true
}

// fire runs the invocation half of the fire protocol: it determines the
// occurrence being serviced, hands a TimerInfo to the executor, and (when
// monitoring is enabled) persists the advanced status before returning. A
// transient monitor failure is logged and leaves status unchanged, so the
// next fire retries the write.
func (l *TimerListener) fire(ctx context.Context, status *ScheduleStatus, now time.Time, isPastDue bool) *ScheduleStatus {
	last := l.determineLastOccurrence(status, now)

	pastDue := now.Sub(last)
	if pastDue < 0 {
		pastDue = 0
	}

	info := TimerInfo{
		Name:        l.name,
		ScheduledAt: last,
		FiredAt:     now,
		PastDue:     pastDue,
		IsPastDue:   isPastDue,
	}

	timerFires.With(label(l.name)).Inc()
	timerPastDueSeconds.With(label(l.name)).Set(pastDue.Seconds())

	func() {
		defer func() {
			if r := recover(); r != nil {
				timerExecutorErrors.With(label(l.name)).Inc()
				log.Error(ctx, errors.Wrap(ErrExecutorFailed, fmt.Sprintf("timer executor panicked: %v", r), j.KV("timer_name", l.name)))
			}
		}()
		if err := l.executor.Execute(ctx, info); err != nil {
			timerExecutorErrors.With(label(l.name)).Inc()
			log.Error(ctx, errors.Wrap(ErrExecutorFailed, "timer executor returned an error", j.KV("timer_name", l.name)))
		}
	}()

	if !*l.opts.useMonitor {
		return status
	}

	nextUTC, err := l.sched.Next(last, l.opts.tz)
	if err != nil {
		log.Error(ctx, err)
		return status
	}

	updated := ScheduleStatus{Last: last, Next: nextUTC, LastUpdated: now}
	if err := l.opts.monitor.UpdateStatus(ctx, l.name, updated); err != nil {
		timerMonitorErrors.With(label(l.name)).Inc()
		log.Error(ctx, errors.Wrap(ErrMonitorTransient, "persist advanced timer status", j.KV("timer_name", l.name)))
		return status
	}
	return &updated
}

// determineLastOccurrence implements spec §4.4's lastOccurrence rule: the
// most recent scheduled occurrence at or before now, snapping an early fire
// within skewTolerance back onto status.Next so schedule.next never sees
// the same Next value twice.
func (l *TimerListener) determineLastOccurrence(status *ScheduleStatus, now time.Time) time.Time {
	if status == nil {
		return now
	}
	if now.Before(status.Next) {
		if status.Next.Sub(now) <= l.opts.skewTolerance {
			return status.Next
		}
		return now
	}
	return status.Next
}

func (l *TimerListener) nextFor(status *ScheduleStatus, now time.Time) (time.Time, error) {
	if status != nil {
		return status.Next, nil
	}
	return l.sched.Next(now, l.opts.tz)
}

func (l *TimerListener) armNext(next, now time.Time) {
	interval := next.Sub(now)
	if interval <= 0 {
		interval = time.Nanosecond
	}
	if interval > MaxTimerInterval {
		l.remaining = interval - MaxTimerInterval
		interval = MaxTimerInterval
		timerCarriedArms.With(label(l.name)).Inc()
	} else {
		l.remaining = 0
	}
	l.timer = l.opts.clock.NewTimer(interval)
}

func (l *TimerListener) armCarry(now time.Time) {
	interval := l.remaining
	if interval > MaxTimerInterval {
		l.remaining = interval - MaxTimerInterval
		interval = MaxTimerInterval
		timerCarriedArms.With(label(l.name)).Inc()
	} else {
		l.remaining = 0
	}
	if interval <= 0 {
		interval = time.Nanosecond
	}
	l.timer = l.opts.clock.NewTimer(interval)
}

func (l *TimerListener) logInitialStatus(ctx context.Context, status *ScheduleStatus) {
	var last, next, lastUpdated string
	if status != nil {
		last = status.Last.Format(time.RFC3339)
		next = status.Next.Format(time.RFC3339)
		lastUpdated = status.LastUpdated.Format(time.RFC3339)
	}
	log.Info(ctx, "timer status loaded",
		j.KV("timer_name", l.name), j.KV("last", last), j.KV("next", next), j.KV("last_updated", lastUpdated))
}

func (l *TimerListener) logNextOccurrences(ctx context.Context, now time.Time) {
	occurrences, err := NextN(l.sched, 5, now, l.opts.tz)
	if err != nil {
		log.Error(ctx, err)
		return
	}
	formatted := make([]string, len(occurrences))
	for i, t := range occurrences {
		formatted[i] = t.Format(time.RFC3339)
	}
	log.Info(ctx, fmt.Sprintf("The next 5 occurrences of the schedule will be: %s", strings.Join(formatted, ", ")),
		j.KV("timer_name", l.name))
}
