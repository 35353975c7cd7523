package timer

import (
	"time"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
)

// ConstantSchedule fires at a fixed period after the previous occurrence.
// It is independent of the time zone passed to Next.
type ConstantSchedule struct {
	Period time.Duration
}

// NewConstantSchedule validates period is strictly positive before building a
// ConstantSchedule. A zero or negative period is an ErrConfiguration.
func NewConstantSchedule(period time.Duration) (ConstantSchedule, error) {
	if period <= 0 {
		return ConstantSchedule{}, errors.Wrap(ErrConfiguration, "period must be positive", j.KV("period", period))
	}
	return ConstantSchedule{Period: period}, nil
}

// Next implements Schedule.
func (c ConstantSchedule) Next(nowUTC time.Time, _ *time.Location) (time.Time, error) {
	if err := requireUTC(nowUTC); err != nil {
		return time.Time{}, err
	}
	return nowUTC.Add(c.Period), nil
}

// ParseConstant parses a duration string of the form [d.]hh:mm:ss[.fff], the
// same shape the attribute-level ScheduleExpression option accepts for
// constant schedules (see spec.md §6).
func ParseConstant(s string) (ConstantSchedule, error) {
	d, err := parseDayHourMinuteSecond(s)
	if err != nil {
		return ConstantSchedule{}, errors.Wrap(ErrConfiguration, "invalid duration expression", j.KV("expression", s))
	}
	return NewConstantSchedule(d)
}
