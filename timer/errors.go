// Package timer implements a durable timer-trigger scheduler: it decides when a
// recurring Schedule should next fire, persists that decision through a
// ScheduleMonitor so occurrences survive a process restart, and drives the
// firing itself through a TimerListener.
package timer

import (
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
)

// ErrConfiguration is returned when a Schedule is constructed from an invalid
// cron or duration expression or a non-positive constant period; those cases
// are raised at construction time and are never recovered from. A nil time
// zone is not checked at construction: CronSchedule.Next returns
// ErrConfiguration when it is evaluated with one, and ConstantSchedule
// ignores the time zone.
var ErrConfiguration = errors.New("invalid timer schedule configuration", j.C("ERR_2b9a6e6f9a6a4e11"))

// ErrMonitorTransient wraps a failure to read or write ScheduleStatus through a
// Store. TimerListener logs it and proceeds as though monitoring were
// disabled for that single fire; the next fire retries the Store.
var ErrMonitorTransient = errors.New("schedule monitor storage failed", j.C("ERR_7c6f2a9d4b9c6e21"))

// ErrExecutorFailed wraps an error returned by the user executor. It is logged
// and never stops the schedule from advancing.
var ErrExecutorFailed = errors.New("timer executor failed", j.C("ERR_0d4b7f6a9c3e8f31"))

// ErrPrecondition is returned for programmer errors: a non-UTC instant passed
// to a UTC-only API, or a negative count passed to NextN. It is fatal and
// always surfaced to the caller.
var ErrPrecondition = errors.New("timer precondition violated", j.C("ERR_5f8e1c2d6a7b9041"))
