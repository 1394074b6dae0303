package monitor

import (
	"context"

	"github.com/rileyhilliard/beamtop/internal/logger"
)

// Run owns the terminal for the life of the dashboard: it acquires a
// session on backend, starts reading opts.Keys, runs a controller drawing
// to it, and releases the terminal exactly once on every exit path, panics
// included.
func Run(ctx context.Context, backend Backend, opts Options) (err error) {
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}

	session, err := AcquireSession(backend, log)
	if err != nil {
		return err
	}
	defer session.Release()
	defer func() {
		if r := recover(); r != nil {
			session.Release()
			panic(r)
		}
	}()

	// Keys are only read after raw mode is on, so nothing typed while
	// connecting arrives line-buffered.
	if opts.Input == nil && opts.Keys != nil {
		input := NewInput(opts.Keys, backend.Size)
		defer input.Close()
		opts.Input = input
	}

	opts.Screen = session
	return NewController(opts).Run(ctx)
}
