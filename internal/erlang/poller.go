package erlang

import (
	"bufio"
	"context"
	stderrors "errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rileyhilliard/beamtop/internal/logger"
	"github.com/rileyhilliard/beamtop/internal/remote"
)

// ErrProbeExited is reported when the probe stops without saying why.
var ErrProbeExited = stderrors.New("probe exited")

// Poller runs the probe and turns its output into samples.
type Poller struct {
	runner  remote.Runner
	probe   Probe
	version *SystemVersion
	log     logger.Logger

	// ID keeps the probe's node name unique. Defaults to the process id.
	ID int
	// Now timestamps samples whose block carried no capture time.
	Now func() time.Time

	samples chan Sample
	once    sync.Once

	mu  sync.Mutex
	err error
}

// NewPoller creates a Poller. Nothing runs until Start.
func NewPoller(runner remote.Runner, probe Probe, version *SystemVersion, log logger.Logger) *Poller {
	if log == nil {
		log = logger.Noop()
	}
	return &Poller{
		runner:  runner,
		probe:   probe,
		version: version,
		log:     log,
		ID:      os.Getpid(),
		Now:     time.Now,
		samples: make(chan Sample, 1),
	}
}

// Samples returns the channel completed samples arrive on. It is closed when
// the probe stops; Err then reports why.
func (p *Poller) Samples() <-chan Sample {
	return p.samples
}

// Err returns the reason the samples channel was closed, or nil while it is
// still open.
func (p *Poller) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Start launches the probe in the background. Cancelling ctx stops it.
// Calling Start more than once has no effect.
func (p *Poller) Start(ctx context.Context) {
	p.once.Do(func() {
		go p.run(ctx)
	})
}

func (p *Poller) run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	pr, pw := io.Pipe()
	runDone := make(chan error, 1)
	go func() {
		argv := p.probe.Args(p.ID)
		p.log.Debug("starting probe on %s for %s", p.runner.Describe(), p.probe.Node)
		err := p.runner.Run(ctx, argv, pw)
		pw.CloseWithError(err)
		runDone <- err
	}()

	readErr := p.consume(ctx, pr)
	cancel()
	// Unblock the runner if it is still writing.
	pr.CloseWithError(io.ErrClosedPipe)
	runErr := <-runDone

	err := readErr
	if err == nil {
		err = runErr
	}
	if err == nil {
		err = ErrProbeExited
	}
	p.log.Info("probe for %s stopped: %v", p.probe.Node, err)

	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
	close(p.samples)
}

// consume reads probe output until it ends. It returns a non-nil error only
// for failures the probe reported itself.
func (p *Poller) consume(ctx context.Context, r io.Reader) error {
	var parse parser
	var last time.Time
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		kind, version, metrics, err := parse.feed(scanner.Text())
		if err != nil {
			var probeErr *ProbeError
			if stderrors.As(err, &probeErr) {
				return err
			}
			p.log.Warn("skipping probe output: %v", err)
			continue
		}

		switch kind {
		case lineVersion:
			if p.version != nil {
				p.version.Set(version)
			}
		case lineSample:
			// Capture time, not read time: blocks queue up in the pipe
			// while nobody is reading.
			ts := parse.captured
			if ts.IsZero() {
				ts = p.Now()
			}
			if ts.Before(last) {
				ts = last
			}
			last = ts
			sample := Sample{Timestamp: ts, Metrics: metrics}
			select {
			case p.samples <- sample:
			case <-ctx.Done():
				return nil
			}
		}
	}
	return nil
}
