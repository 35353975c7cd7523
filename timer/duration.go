package timer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseDayHourMinuteSecond parses the .NET-style TimeSpan text format used by
// constant ScheduleExpression values: "[d.]hh:mm:ss[.fff]". Examples:
// "00:05:00" (5 minutes), "1.00:00:00" (1 day), "00:00:30.500" (30.5s).
func parseDayHourMinuteSecond(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration expression")
	}

	var days int
	rest := s
	if idx := strings.Index(s, "."); idx >= 0 && strings.Count(s[:idx], ":") == 0 {
		// A "." before the first ":" separates the day component from the
		// clock component, e.g. "1.00:00:00".
		if colonIdx := strings.Index(s, ":"); colonIdx < 0 || idx < colonIdx {
			d, err := strconv.Atoi(s[:idx])
			if err != nil {
				return 0, fmt.Errorf("invalid day component: %w", err)
			}
			days = d
			rest = s[idx+1:]
		}
	}

	parts := strings.Split(rest, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("expected hh:mm:ss, got %q", rest)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour component: %w", err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute component: %w", err)
	}

	secStr := parts[2]
	var millis int
	if dotIdx := strings.Index(secStr, "."); dotIdx >= 0 {
		fraction := secStr[dotIdx+1:]
		secStr = secStr[:dotIdx]
		for len(fraction) < 3 {
			fraction += "0"
		}
		m, err := strconv.Atoi(fraction[:3])
		if err != nil {
			return 0, fmt.Errorf("invalid fractional seconds: %w", err)
		}
		millis = m
	}
	seconds, err := strconv.Atoi(secStr)
	if err != nil {
		return 0, fmt.Errorf("invalid second component: %w", err)
	}

	d := time.Duration(days)*24*time.Hour +
		time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond
	return d, nil
}
