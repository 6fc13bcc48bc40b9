package sync

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Probe is a Connectivity checking the backend with a health function.
type Probe struct {
	check   func(context.Context) error
	timeout time.Duration
	logger  *zap.Logger

	online atomic.Bool
	back   chan struct{}
}

// NewProbe creates a Probe. check returns nil when the backend is healthy.
func NewProbe(check func(context.Context) error, timeout time.Duration, logger *zap.Logger) *Probe {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Probe{check: check, timeout: timeout, logger: logger, back: make(chan struct{}, 1)}
}

// Online checks the backend now.
func (p *Probe) Online(ctx context.Context) bool {
	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	err := p.check(cctx)
	now := err == nil
	was := p.online.Swap(now)

	switch {
	case now && !was:
		p.logger.Info("backend is reachable")
		select {
		case p.back <- struct{}{}:
		default:
		}
	case !now && was:
		p.logger.Warn("backend is unreachable", zap.Error(err))
	}
	return now
}

// Back receives when the backend turns reachable.
func (p *Probe) Back() <-chan struct{} {
	return p.back
}

// Watch checks the backend every interval until ctx is done.
func (p *Probe) Watch(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.Online(ctx)
		}
	}
}

// Merge forwards signals of every channel into one, until ctx is done.
//
// Signals are coalesced.
func Merge(ctx context.Context, chs ...<-chan struct{}) <-chan struct{} {
	out := make(chan struct{}, 1)
	for _, ch := range chs {
		go func(ch <-chan struct{}) {
			for {
				select {
				case <-ctx.Done():
					return
				case _, ok := <-ch:
					if !ok {
						return
					}
					select {
					case out <- struct{}{}:
					default:
					}
				}
			}
		}(ch)
	}
	return out
}
