package timer

import (
	"time"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
)

// Schedule is the strategy that, given a UTC instant and a time zone, returns
// the strictly-next occurrence of a recurring schedule. Implementations must
// be pure and safe for concurrent use.
type Schedule interface {
	// Next returns the smallest occurrence strictly after nowUTC, evaluated in
	// tz. nowUTC must be in time.UTC or ErrPrecondition is returned.
	Next(nowUTC time.Time, tz *time.Location) (time.Time, error)
}

// NextN iterates Next count times, feeding each result back in as nowUTC.
// A negative count is a precondition violation.
func NextN(s Schedule, count int, nowUTC time.Time, tz *time.Location) ([]time.Time, error) {
	if count < 0 {
		return nil, errors.Wrap(ErrPrecondition, "negative count", j.KV("count", count))
	}
	out := make([]time.Time, 0, count)
	cur := nowUTC
	for i := 0; i < count; i++ {
		next, err := s.Next(cur, tz)
		if err != nil {
			return nil, err
		}
		out = append(out, next)
		cur = next
	}
	return out, nil
}
