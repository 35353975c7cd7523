package timer

import (
	"context"
	"time"

	"github.com/luno/jettison/errors"
)

// Store is the minimal persistence capability a ScheduleMonitor needs.
// Concrete backends (memory, file, sqlite) implement only this; the past-due
// algorithm in CheckPastDue is shared logic layered on top, not something
// each backend reimplements.
type Store interface {
	// GetStatus returns the persisted status for timerName, or nil if none
	// has been written yet.
	GetStatus(ctx context.Context, timerName string) (*ScheduleStatus, error)
	// UpdateStatus persists status for timerName, replacing any prior value.
	UpdateStatus(ctx context.Context, timerName string, status ScheduleStatus) error
}

// ScheduleMonitor is the full capability TimerListener depends on: durable
// status storage plus the past-due calculation built on top of it.
type ScheduleMonitor interface {
	Store
	// CheckPastDue derives and persists the expected status for timerName and
	// returns how far past due it is (zero or positive; zero means on time).
	CheckPastDue(ctx context.Context, timerName string, nowUTC time.Time, tz *time.Location, sched Schedule, last *ScheduleStatus) (time.Duration, error)
}

type monitor struct {
	Store
}

// NewMonitor composes a Store with the shared CheckPastDue algorithm to
// produce a full ScheduleMonitor.
func NewMonitor(store Store) ScheduleMonitor {
	return monitor{Store: store}
}

func (m monitor) CheckPastDue(ctx context.Context, timerName string, nowUTC time.Time, tz *time.Location, sched Schedule, last *ScheduleStatus) (time.Duration, error) {
	return CheckPastDue(ctx, m.Store, timerName, nowUTC, tz, sched, last)
}

// CheckPastDue implements the past-due algorithm from spec.md §4.3. It is a
// free function, not a method any Store overrides, per the design note in
// spec.md §9 ("compose: the core provides checkPastDue(storage, …) as a free
// function").
func CheckPastDue(ctx context.Context, store Store, timerName string, nowUTC time.Time, tz *time.Location, sched Schedule, last *ScheduleStatus) (time.Duration, error) {
	if err := requireUTC(nowUTC); err != nil {
		return 0, err
	}

	if last == nil {
		nextUTC, err := sched.Next(nowUTC, tz)
		if err != nil {
			return 0, err
		}
		status := ScheduleStatus{Last: Never, Next: nextUTC, LastUpdated: nowUTC}
		if err := store.UpdateStatus(ctx, timerName, status); err != nil {
			return 0, errors.Wrap(ErrMonitorTransient, "persist new timer status")
		}
		return 0, nil
	}

	var expectedNext time.Time
	var lastUpdatedSource time.Time
	var err error
	switch {
	case !last.Last.Equal(Never):
		expectedNext, err = sched.Next(last.Last, tz)
		lastUpdatedSource = last.Last
	case !last.LastUpdated.Equal(Never):
		expectedNext, err = sched.Next(last.LastUpdated, tz)
		lastUpdatedSource = last.LastUpdated
	default:
		expectedNext, err = sched.Next(nowUTC, tz)
		lastUpdatedSource = nowUTC
	}
	if err != nil {
		return 0, err
	}

	recordedNext := last.Next
	if !last.Next.Equal(expectedNext) {
		// The schedule definition has changed since the status was written.
		if nowUTC.After(expectedNext) {
			expectedNext, err = sched.Next(nowUTC, tz)
			if err != nil {
				return 0, err
			}
			lastUpdatedSource = nowUTC
		}
		status := ScheduleStatus{Last: Never, Next: expectedNext, LastUpdated: lastUpdatedSource}
		if err := store.UpdateStatus(ctx, timerName, status); err != nil {
			return 0, errors.Wrap(ErrMonitorTransient, "persist updated timer status")
		}
		recordedNext = expectedNext
	}

	pastDue := nowUTC.Sub(recordedNext)
	if pastDue < 0 {
		pastDue = 0
	}
	return pastDue, nil
}
