package timer

import (
	"context"
	"time"
)

// TimerInfo describes a single occurrence passed to an Executor.
type TimerInfo struct {
	// Name identifies the timer, as given to New.
	Name string
	// ScheduledAt is the UTC instant this occurrence was due.
	ScheduledAt time.Time
	// FiredAt is the UTC instant the listener actually invoked the executor,
	// which may trail ScheduledAt under load or after a restart.
	FiredAt time.Time
	// PastDue is FiredAt minus ScheduledAt, floored at zero.
	PastDue time.Duration
	// IsPastDue is true only for the catch-up invocation Start makes when the
	// monitor reports the timer past due. It is false for a run-on-startup
	// invocation that is not past due and for every timer-driven fire, however
	// late.
	IsPastDue bool
}

// Executor is the user-supplied job body a TimerListener invokes for each
// occurrence. A non-nil return (or a panic) is logged wrapped in
// ErrExecutorFailed; it never stops the listener, and the schedule advances
// as it would after a successful run.
type Executor interface {
	Execute(ctx context.Context, info TimerInfo) error
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, info TimerInfo) error

func (f ExecutorFunc) Execute(ctx context.Context, info TimerInfo) error {
	return f(ctx, info)
}
