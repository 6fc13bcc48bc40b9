// Package sync drains the offline queue into the backend.
//
// A pass sends items from the head in order, stops at the first failure,
// and removes exactly the items the backend confirmed.
package sync

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/offline/queue"
)

// Sender delivers an item to the backend. nil means the backend confirmed it.
type Sender interface {
	Send(ctx context.Context, item queue.Item) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, item queue.Item) error

func (f SenderFunc) Send(ctx context.Context, item queue.Item) error {
	return f(ctx, item)
}

// Connectivity tells whether the backend looks reachable.
type Connectivity interface {
	Online(ctx context.Context) bool
}

type alwaysOnline struct{}

func (alwaysOnline) Online(context.Context) bool { return true }

// Observer receives pass results, for metrics.
type Observer interface {
	Pass(result string)
	Sent(n int)
	Failed()
	QueueDepth(n int)
}

type nopObserver struct{}

func (nopObserver) Pass(string)    {}
func (nopObserver) Sent(int)       {}
func (nopObserver) Failed()        {}
func (nopObserver) QueueDepth(int) {}

// Reasons of skipped passes.
const (
	SkipInFlight = "in-flight"
	SkipOffline  = "offline"
	SkipEmpty    = "empty"
)

// Results of passes.
const (
	ResultSkipped = "skipped"
	ResultDrained = "drained"
	ResultHalted  = "halted"
)

// Report is the outcome of a sync pass.
type Report struct {
	// Skipped is a reason why the pass did nothing. Empty when the pass ran.
	Skipped string

	// Attempted is the number of items the pass tried to send.
	Attempted int

	// Sent is the number of items the backend confirmed.
	Sent int

	// Removed is the number of items removed from the queue.
	Removed int

	// Remaining is the queue length after the pass. -1 when unknown.
	Remaining int

	// Err halted the pass. Items from the failed one stay queued.
	Err error
}

// Result is one of ResultSkipped, ResultHalted or ResultDrained.
func (r Report) Result() string {
	switch {
	case r.Skipped != "":
		return ResultSkipped
	case r.Err != nil:
		return ResultHalted
	default:
		return ResultDrained
	}
}

// Syncer runs sync passes over a queue. Passes never overlap.
type Syncer struct {
	queue     *queue.Queue
	sender    Sender
	online    Connectivity
	batchSize int
	timeout   time.Duration
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
	observer  Observer

	inFlight atomic.Bool
}

type Option func(*Syncer)

// WithBatchSize caps items attempted in a pass. Default: 50.
func WithBatchSize(n int) Option {
	return func(s *Syncer) {
		if 0 < n {
			s.batchSize = n
		}
	}
}

// WithTimeout bounds a send of an item. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(s *Syncer) {
		if 0 < d {
			s.timeout = d
		}
	}
}

// WithConnectivity sets the connectivity check run before each pass. Default: always online.
func WithConnectivity(c Connectivity) Option {
	return func(s *Syncer) { s.online = c }
}

// WithBreaker replaces the circuit breaker guarding the sender.
func WithBreaker(st gobreaker.Settings) Option {
	return func(s *Syncer) { s.breaker = gobreaker.NewCircuitBreaker(st) }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Syncer) { s.logger = l }
}

func WithObserver(o Observer) Option {
	return func(s *Syncer) { s.observer = o }
}

// DefaultBreaker opens after 5 consecutive failures and probes again after 30 seconds.
func DefaultBreaker() gobreaker.Settings {
	return gobreaker.Settings{
		Name:    "aquafarmd",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	}
}

// New creates a Syncer sending items of q with sender.
func New(q *queue.Queue, sender Sender, opts ...Option) *Syncer {
	s := &Syncer{
		queue:     q,
		sender:    sender,
		online:    alwaysOnline{},
		batchSize: 50,
		timeout:   10 * time.Second,
		breaker:   gobreaker.NewCircuitBreaker(DefaultBreaker()),
		logger:    zap.NewNop(),
		observer:  nopObserver{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// TrySync runs a sync pass.
//
// It does nothing when another pass is running, the backend is offline,
// or the queue is empty. Otherwise it sends up to the batch size of items
// from the head, one by one, and stops at the first failure.
// Then it removes the items which were sent successfully, and no others.
func (s *Syncer) TrySync(ctx context.Context) Report {
	if !s.inFlight.CompareAndSwap(false, true) {
		return s.finish(Report{Skipped: SkipInFlight, Remaining: -1})
	}
	defer s.inFlight.Store(false)

	if !s.online.Online(ctx) {
		return s.finish(Report{Skipped: SkipOffline, Remaining: s.remaining(ctx)})
	}

	items, peekErr := s.queue.Peek(ctx, s.batchSize)
	if len(items) == 0 && peekErr == nil {
		return s.finish(Report{Skipped: SkipEmpty, Remaining: 0})
	}

	report := Report{}
	var lastSent int64
	for _, item := range items {
		report.Attempted++
		if err := s.send(ctx, item); err != nil {
			report.Err = err
			s.observer.Failed()
			s.logger.Warn(
				"sync halted", zap.Int64("seq", item.Seq), zap.String("type", string(item.Payload.Type())), zap.Error(err),
			)
			break
		}
		lastSent = item.Seq
		report.Sent++
	}
	if report.Err == nil && peekErr != nil {
		// an undecodable record is next to the items sent.
		report.Err = peekErr
		s.logger.Error("queue has an unreadable item", zap.Error(peekErr))
	}

	if 0 < report.Sent {
		// confirmed items are removed even if the caller has given up.
		removed, err := s.queue.RemoveThrough(context.WithoutCancel(ctx), lastSent)
		report.Removed = removed
		if err != nil {
			report.Err = errors.Join(report.Err, err)
		}
	}
	report.Remaining = s.remaining(ctx)
	return s.finish(report)
}

func (s *Syncer) send(ctx context.Context, item queue.Item) error {
	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.sender.Send(sctx, item)
	})
	return err
}

func (s *Syncer) remaining(ctx context.Context) int {
	n, err := s.queue.Len(context.WithoutCancel(ctx))
	if err != nil {
		return -1
	}
	return n
}

func (s *Syncer) finish(r Report) Report {
	s.observer.Pass(r.Result())
	if 0 < r.Sent {
		s.observer.Sent(r.Sent)
	}
	if 0 <= r.Remaining {
		s.observer.QueueDepth(r.Remaining)
	}
	if r.Skipped == "" {
		s.logger.Info(
			"sync pass",
			zap.String("result", r.Result()),
			zap.Int("attempted", r.Attempted),
			zap.Int("sent", r.Sent),
			zap.Int("removed", r.Removed),
			zap.Int("remaining", r.Remaining),
		)
	} else {
		s.logger.Debug("sync pass skipped", zap.String("reason", r.Skipped))
	}
	return r
}
