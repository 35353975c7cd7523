package timer

import "time"

// zoneOffsetBounds returns the two distinct UTC offsets (in seconds) tz uses
// during year, sampled in January and July. For zones that don't observe any
// seasonal adjustment the two values are equal.
func zoneOffsetBounds(tz *time.Location, year int) (winter, summer int) {
	_, janOff := time.Date(year, time.January, 1, 0, 0, 0, 0, tz).Zone()
	_, julOff := time.Date(year, time.July, 1, 0, 0, 0, 0, tz).Zone()
	if janOff <= julOff {
		return janOff, julOff
	}
	return julOff, janOff
}

// dstDelta returns the absolute DST adjustment rule covering t's year: the
// magnitude of the seasonal offset swing tz applies around t.
func dstDelta(tz *time.Location, t time.Time) time.Duration {
	winter, summer := zoneOffsetBounds(tz, t.Year())
	delta := summer - winter
	if delta < 0 {
		delta = -delta
	}
	return time.Duration(delta) * time.Second
}

// wallClock is the civil-time reading used to probe a candidate local instant
// against both of a zone's offsets.
type wallClock struct {
	year         int
	month        time.Month
	day          int
	hour, minute int
	second       int
}

func wallOf(t time.Time) wallClock {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return wallClock{year: y, month: mo, day: d, hour: h, minute: mi, second: s}
}

func (w wallClock) at(offsetSeconds int) time.Time {
	loc := time.FixedZone("", offsetSeconds)
	return time.Date(w.year, w.month, w.day, w.hour, w.minute, w.second, 0, loc).UTC()
}

func (w wallClock) matches(u time.Time, tz *time.Location) bool {
	return wallOf(u.In(tz)) == w
}

// classifyLocal reports whether the civil-time reading of local (interpreted
// in tz) is invalid (falls in a skipped spring-forward hour), ambiguous
// (falls in a repeated fall-back hour), or neither. When ambiguous, early and
// late are the two UTC instants the wall-clock reading corresponds to, with
// early < late.
func classifyLocal(local time.Time, tz *time.Location) (invalid, ambiguous bool, early, late time.Time) {
	w := wallOf(local)
	winter, summer := zoneOffsetBounds(tz, w.year)
	if winter == summer {
		return false, false, time.Time{}, time.Time{}
	}

	uWinter := w.at(winter)
	uSummer := w.at(summer)
	matchWinter := w.matches(uWinter, tz)
	matchSummer := w.matches(uSummer, tz)

	switch {
	case matchWinter && matchSummer && !uWinter.Equal(uSummer):
		if uWinter.Before(uSummer) {
			return false, true, uWinter, uSummer
		}
		return false, true, uSummer, uWinter
	case matchWinter || matchSummer:
		return false, false, time.Time{}, time.Time{}
	default:
		return true, false, time.Time{}, time.Time{}
	}
}
