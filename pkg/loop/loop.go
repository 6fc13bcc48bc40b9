// Package loop runs a task repeatedly, with intervals the task itself decides.
package loop

import (
	"context"
	"fmt"
	"time"
)

type Next struct {
	// if not nil, breaks with error
	err error

	// if quit == true and err == nil, breaks without error
	quit bool

	// otherwise, continue loop with interval.
	interval time.Duration
}

func (n Next) String() string {
	if n.err != nil {
		return fmt.Sprintf("[break] with error: %v", n.err)
	}
	if n.quit {
		return "[break] without error"
	}

	return fmt.Sprintf("[continue] interval: %s", n.interval)
}

// continue loop.
//
// args:
//
// - interval: sleep before starting next task.
func Continue(interval time.Duration) Next {
	return Next{interval: interval}
}

// break loop.
//
// args:
//
// - err: If you break loop with error, set non nil value.
func Break(err error) Next {
	return Next{quit: true, err: err}
}

// Task is a unit of work repeated by Start.
//
// It receives the value returned by the last run, and returns the value for the next run.
type Task[T any] func(context.Context, T) (T, Next)

// Start task in loop.
//
// Task should return 2 value.
//
// - T : any value the task needs, for example statistics or a retry state.
//
// - next: Continue(time.Duration) or Break(error).
// After Continue(d), the task is called again with the returned T after d,
// or earlier when a wake-up signal (see WithWake) arrives.
// Zero value (Next{}) equals Continue(0), that is, "go next ASAP!".
//
// Example
//
// Count 1 to 10:
//
//	Start(ctx, 1, func(_ context.Context, value int) (int, Next) {
//		value += 1
//		if 10 <= value {
//			return value, Break(nil)
//		}
//		return value, Continue(0)
//	})
//
// Args
//
// - ctx : context. When this context get be Done, loop will be break with ctx.Err().
//
// - init : your task will be called as task(ctx, init) at the first time.
//
// - task : task receiving (context, last value), then return (new value, Continue() or Break()).
//
// - options: options for loop.
//
// Returns
//
// - T: T task returns at last.
// This value is always returned wheather or not it returns non-nil error together.
//
// - error: error in Break(error), or ctx.Err(). It is nil when loop breaks with Break(nil).
func Start[T any](ctx context.Context, init T, task Task[T], options ...LoopOption) (T, error) {
	select {
	case <-ctx.Done():
		return init, ctx.Err()
	default:
	}

	value := init
	for {
		lc := &loopConfig{ctx: ctx}
		for _, opt := range options {
			lc = opt(lc)
		}

		v, n := func() (T, Next) {
			ctx := lc.ctx
			if lc.deferred != nil {
				defer lc.deferred()
			}
			return task(ctx, value)
		}()

		if n.err != nil {
			return v, n.err
		} else if n.quit {
			return v, nil
		}
		value = v

		timer := time.NewTimer(n.interval)
		select {
		case <-ctx.Done():
			// shutting down is priority. it should come first, and checking timer later.
			timer.Stop()
			return value, ctx.Err()
		case <-timer.C:
		case <-lc.wake:
			timer.Stop()
		}
	}
}

type loopConfig struct {
	ctx      context.Context
	deferred func()
	wake     <-chan struct{}
}

type LoopOption func(*loopConfig) *loopConfig

// set timeout per loop
//
// this timeout is set on context.Context passed to task.
func WithTimeout(d time.Duration) LoopOption {
	return func(lc *loopConfig) *loopConfig {
		ctx, cancel := context.WithTimeout(lc.ctx, d)
		return &loopConfig{
			ctx: ctx,
			deferred: func() {
				if lc.deferred != nil {
					defer lc.deferred()
				}
				cancel()
			},
			wake: lc.wake,
		}
	}
}

// WithWake cuts the interval short when ch receives.
//
// A receive during a task run is not lost if ch is buffered.
func WithWake(ch <-chan struct{}) LoopOption {
	return func(lc *loopConfig) *loopConfig {
		return &loopConfig{ctx: lc.ctx, deferred: lc.deferred, wake: ch}
	}
}
