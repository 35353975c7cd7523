package timer

import (
	"context"

	"github.com/luno/timerhost"
)

// New builds a host.Process that runs a TimerListener for name's whole
// lifetime: Run starts the listener and blocks until ctx is cancelled;
// Shutdown stops the listener so any in-flight fire completes before the
// host moves on to the next process.
func New(name string, sched Schedule, executor Executor, opts ...Option) host.Process {
	listener := NewListener(name, sched, executor, opts...)

	return host.Process{
		Name: name,
		Run: func(ctx context.Context) error {
			if err := listener.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			return ctx.Err()
		},
		Shutdown: func(ctx context.Context) error {
			if err := listener.Stop(ctx); err != nil {
				return err
			}
			return listener.Dispose()
		},
	}
}
