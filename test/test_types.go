package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luno/timerhost"
)

// Only for testing purposes - do not import into main code builds

type EventLog chan host.Event

func (l EventLog) Append(_ context.Context, e host.Event) {
	l <- e
}

type EventConstraint interface {
	CheckMore(t *testing.T, e host.Event) bool
}

type Event host.Event

func (e Event) CheckMore(t *testing.T, got host.Event) bool {
	assert.Equal(t, host.Event(e), got)
	return false
}

type ConstraintFunc func(t *testing.T, e host.Event) bool

func (f ConstraintFunc) CheckMore(t *testing.T, got host.Event) bool {
	return f(t, got)
}
