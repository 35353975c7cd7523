package process

import (
	"context"

	"github.com/luno/timerhost"
)

// NoOp is a Process which doesn't do anything but runs until the app is terminated.
func NoOp() host.Process {
	return host.Process{
		Name: "noop",
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			return context.Cause(ctx)
		},
	}
}
