package timer

import (
	"testing"
	"time"

	"github.com/luno/jettison/jtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConstantSchedule(t *testing.T) {
	_, err := NewConstantSchedule(0)
	jtest.Require(t, ErrConfiguration, err)

	_, err = NewConstantSchedule(-time.Second)
	jtest.Require(t, ErrConfiguration, err)

	s, err := NewConstantSchedule(time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, s.Period)
}

func TestConstantScheduleNext(t *testing.T) {
	s, err := NewConstantSchedule(5 * time.Minute)
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	next, err := s.Next(now, nil)
	require.NoError(t, err)
	assert.Equal(t, now.Add(5*time.Minute), next)
}

func TestConstantScheduleRequiresUTC(t *testing.T) {
	s, err := NewConstantSchedule(time.Minute)
	require.NoError(t, err)

	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	_, err = s.Next(time.Now().In(loc), nil)
	jtest.Require(t, ErrPrecondition, err)
}

func TestParseConstant(t *testing.T) {
	s, err := ParseConstant("00:05:00")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, s.Period)

	_, err = ParseConstant("bogus")
	jtest.Require(t, ErrConfiguration, err)
}
