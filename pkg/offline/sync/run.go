package sync

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/loop"
)

type RunConfig struct {
	// Interval between passes while idle (empty, offline, or drained).
	Interval time.Duration

	// MinBackoff and MaxBackoff bound delays after a halted pass.
	MinBackoff time.Duration
	MaxBackoff time.Duration

	// Wake starts the next pass early. Optional.
	Wake <-chan struct{}
}

// next decides when to run the next pass after r.
func next(r Report, bo backoff.BackOff, conf RunConfig) time.Duration {
	switch {
	case r.Skipped == SkipInFlight:
		return conf.Interval
	case r.Skipped != "":
		bo.Reset()
		return conf.Interval
	case r.Err != nil:
		d := bo.NextBackOff()
		if d == backoff.Stop {
			d = conf.MaxBackoff
		}
		return d
	case 0 < r.Remaining:
		// backlog is left beyond the batch.
		bo.Reset()
		return 0
	default:
		bo.Reset()
		return conf.Interval
	}
}

// Run repeats sync passes until ctx is done.
//
// After a halted pass, the next one waits with exponential backoff.
// While backlog remains after a successful pass, the next one starts at once.
func (s *Syncer) Run(ctx context.Context, conf RunConfig) error {
	if conf.Interval <= 0 {
		conf.Interval = 30 * time.Second
	}
	if conf.MinBackoff <= 0 {
		conf.MinBackoff = time.Second
	}
	if conf.MaxBackoff < conf.MinBackoff {
		conf.MaxBackoff = conf.MinBackoff
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = conf.MinBackoff
	bo.MaxInterval = conf.MaxBackoff
	bo.MaxElapsedTime = 0
	bo.Reset()

	opts := []loop.LoopOption{}
	if conf.Wake != nil {
		opts = append(opts, loop.WithWake(conf.Wake))
	}

	_, err := loop.Start(
		ctx, Report{},
		func(ctx context.Context, _ Report) (Report, loop.Next) {
			r := s.TrySync(ctx)
			return r, loop.Continue(next(r, bo, conf))
		},
		opts...,
	)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
