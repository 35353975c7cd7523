package timer

import (
	"time"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/robfig/cron/v3"
)

// cronParser parses six whitespace-separated fields: sec min hour dom month
// dow. This differs from cron.ParseStandard, which omits seconds.
var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// CronSchedule evaluates a six-field cron expression over local civil time in
// a named time zone, correctly handling DST transitions per spec.md §4.1.
type CronSchedule struct {
	expr cron.Schedule
	raw  string
}

// ParseCron parses expr as a six-field cron expression (seconds included).
// Ranges, lists, steps, and wildcards are supported per standard cron
// conventions.
func ParseCron(expr string) (CronSchedule, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return CronSchedule{}, errors.Wrap(ErrConfiguration, "invalid cron expression",
			j.KV("expression", expr), j.KV("parse_error", err.Error()))
	}
	return CronSchedule{expr: sched, raw: expr}, nil
}

// String returns the original cron expression text.
func (c CronSchedule) String() string {
	return c.raw
}

// Next implements Schedule. It iterates candidate local occurrences from the
// cron evaluator, resolving invalid (skipped) and ambiguous (repeated) local
// instants per spec.md §4.1, and returns the smallest UTC occurrence strictly
// after nowUTC.
func (c CronSchedule) Next(nowUTC time.Time, tz *time.Location) (time.Time, error) {
	if err := requireUTC(nowUTC); err != nil {
		return time.Time{}, err
	}
	if tz == nil {
		return time.Time{}, errors.Wrap(ErrConfiguration, "nil time zone")
	}

	local := nowUTC.In(tz)
	if _, ambiguous, _, _ := classifyLocal(local, tz); ambiguous {
		// Force the cursor to an unambiguous, strictly-earlier local instant so the
		// cron evaluator (which assumes monotonic local time) can't emit an
		// occurrence that maps to a UTC instant <= nowUTC. See spec.md §4.1 step 2.
		local = local.Add(-dstDelta(tz, local))
	}

	var candidates []time.Time
	cur := local
	for {
		cand := c.expr.Next(cur)

		invalid, ambiguous, early, late := classifyLocal(cand, tz)
		stop := true
		switch {
		case invalid:
			// spec.md §9 Open Question (a): always shift forward by exactly one
			// hour, not by the zone's specific DST delta.
			shifted := cand.Add(time.Hour)
			candidates = append(candidates, shifted.UTC())
		case ambiguous:
			peek := c.expr.Next(cand)
			delta := peek.Sub(cand)
			if delta < 4*time.Hour {
				candidates = append(candidates, early, late)
			} else {
				candidates = append(candidates, early)
			}
			// Keep iterating: a non-ambiguous candidate must also be produced
			// before we stop, so ambiguous candidates are fully enumerated.
			stop = false
		default:
			candidates = append(candidates, cand.UTC())
		}

		cur = cand
		if stop {
			break
		}
	}

	best, ok := smallestAfter(candidates, nowUTC)
	if !ok {
		// Defensive fallback: every candidate produced was <= nowUTC (can only
		// happen if cur didn't advance far enough); step forward once more.
		return c.Next(candidates[len(candidates)-1], tz)
	}
	return best, nil
}

func smallestAfter(candidates []time.Time, nowUTC time.Time) (time.Time, bool) {
	var best time.Time
	found := false
	for _, c := range candidates {
		if !c.After(nowUTC) {
			continue
		}
		if !found || c.Before(best) {
			best = c
			found = true
		}
	}
	return best, found
}
