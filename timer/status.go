package timer

import (
	"time"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
)

// Never is the sentinel UTC instant used for ScheduleStatus.Last before a
// timer has ever fired.
var Never = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// ScheduleStatus is the durable per-timer record a ScheduleMonitor persists.
// All three fields must be in time.UTC; Validate enforces that.
type ScheduleStatus struct {
	// Last is the UTC time of the most recent occurrence that actually fired.
	// It is Never before the timer has fired for the first time.
	Last time.Time `yaml:"last"`
	// Next is the UTC time at which the next occurrence is expected.
	Next time.Time `yaml:"next"`
	// LastUpdated is the UTC time at which Next was last (re)computed.
	LastUpdated time.Time `yaml:"last_updated"`
}

// Validate returns ErrPrecondition if any field is not in time.UTC.
func (s ScheduleStatus) Validate() error {
	if err := requireUTC(s.Last); err != nil {
		return errors.Wrap(err, "status.Last")
	}
	if err := requireUTC(s.Next); err != nil {
		return errors.Wrap(err, "status.Next")
	}
	if err := requireUTC(s.LastUpdated); err != nil {
		return errors.Wrap(err, "status.LastUpdated")
	}
	return nil
}

func requireUTC(t time.Time) error {
	if t.Location() != time.UTC {
		return errors.Wrap(ErrPrecondition, "time is not UTC", j.KV("location", t.Location().String()))
	}
	return nil
}
