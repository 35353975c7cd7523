package timer

import (
	"time"

	"k8s.io/utils/clock"
)

// MaxTimerInterval is the largest interval a single arming of the underlying
// clock.Timer may cover. Longer waits are split across successive carried
// arms (see listener.go) rather than handed to the clock in one call, which
// mirrors the 32-bit millisecond ceiling the original timer platform
// enforced (2³¹ - 1 ms, ~24.8 days).
const MaxTimerInterval = (1<<31 - 1) * time.Millisecond

// DefaultSkewTolerance is how early a fire is allowed to land before its
// scheduled occurrence and still be treated as on time. See spec §4.4's
// discussion of clock skew.
const DefaultSkewTolerance = 5 * time.Millisecond

type options struct {
	tz            *time.Location
	monitor       ScheduleMonitor
	useMonitor    *bool
	runOnStartup  bool
	skewTolerance time.Duration
	clock         clock.Clock
}

// Option configures a TimerListener built by New.
type Option func(*options)

func defaultOptions() options {
	return options{
		tz:            time.UTC,
		skewTolerance: DefaultSkewTolerance,
		clock:         clock.RealClock{},
	}
}

func resolveOptions(sched Schedule, opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.useMonitor == nil {
		auto := autoUseMonitor(sched, o.clock, o.tz)
		o.useMonitor = &auto
	}
	if *o.useMonitor && o.monitor == nil {
		o.monitor = NewMonitor(NewMemoryStore())
	}
	return o
}

// autoUseMonitor implements the attribute-level UseMonitor default from
// spec §6: monitoring is switched off automatically for schedules that fire
// more than once a minute, since persisting status on every fire would
// dominate the work the executor does.
func autoUseMonitor(sched Schedule, cl clock.Clock, tz *time.Location) bool {
	if c, ok := sched.(ConstantSchedule); ok {
		return c.Period >= time.Minute
	}

	now := cl.Now().UTC()
	first, err := sched.Next(now, tz)
	if err != nil {
		return true
	}
	second, err := sched.Next(first, tz)
	if err != nil {
		return true
	}
	return second.Sub(first) >= time.Minute
}

// WithTimeZone sets the time zone local occurrences are evaluated in.
// Defaults to UTC.
func WithTimeZone(tz *time.Location) Option {
	return func(o *options) {
		o.tz = tz
	}
}

// WithMonitor sets the durable ScheduleMonitor backing status tracking.
// Defaults to an in-process MemoryStore whenever monitoring is enabled,
// either explicitly via WithUseMonitor(true) or by autoUseMonitor; when
// monitoring is disabled no store is used.
func WithMonitor(m ScheduleMonitor) Option {
	return func(o *options) {
		o.monitor = m
	}
}

// WithUseMonitor overrides the automatic UseMonitor detection described in
// spec §6.
func WithUseMonitor(use bool) Option {
	return func(o *options) {
		o.useMonitor = &use
	}
}

// WithRunOnStartup causes the listener to invoke the executor once
// immediately on Start, even if the timer isn't past due.
func WithRunOnStartup() Option {
	return func(o *options) {
		o.runOnStartup = true
	}
}

// WithSkewTolerance overrides DefaultSkewTolerance.
func WithSkewTolerance(d time.Duration) Option {
	return func(o *options) {
		o.skewTolerance = d
	}
}

// WithClock overrides the clock used to arm timers and read the current
// time. Mainly used during testing.
func WithClock(cl clock.Clock) Option {
	return func(o *options) {
		o.clock = cl
	}
}
