package sync_test

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/offline/queue"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/offline/sync"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func reading(ph float64) queue.WaterReading {
	r := queue.NewWaterReading(time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC))
	r.PH = &ph
	return r
}

func fill(t *testing.T, q *queue.Queue, phs ...float64) []queue.Item {
	t.Helper()
	items := []queue.Item{}
	for _, ph := range phs {
		it, err := q.Enqueue(context.Background(), reading(ph))
		require.NoError(t, err)
		items = append(items, it)
	}
	return items
}

func remainingPHs(t *testing.T, q *queue.Queue) []float64 {
	t.Helper()
	items, err := q.Peek(context.Background(), 100)
	require.NoError(t, err)
	ret := []float64{}
	for _, it := range items {
		ret = append(ret, *it.Payload.(queue.WaterReading).PH)
	}
	return ret
}

// backend records sent items and fails for items in failOn.
type backend struct {
	mu     gosync.Mutex
	sent   []float64
	failOn map[float64]error
}

func (b *backend) Send(_ context.Context, item queue.Item) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	ph := *item.Payload.(queue.WaterReading).PH
	if err, ok := b.failOn[ph]; ok {
		return err
	}
	b.sent = append(b.sent, ph)
	return nil
}

func (b *backend) Sent() []float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]float64{}, b.sent...)
}

type offline struct{}

func (offline) Online(context.Context) bool { return false }

func TestTrySync(t *testing.T) {
	ctx := context.Background()

	t.Run("it sends everything in order and empties the queue", func(t *testing.T) {
		q := queue.New(queue.NewMemory())
		defer q.Close()
		fill(t, q, 7.0, 7.1, 7.2)
		be := &backend{}

		r := sync.New(q, be).TrySync(ctx)

		assert.NoError(t, r.Err)
		assert.Equal(t, sync.ResultDrained, r.Result())
		assert.Equal(t, 3, r.Attempted)
		assert.Equal(t, 3, r.Sent)
		assert.Equal(t, 3, r.Removed)
		assert.Equal(t, 0, r.Remaining)
		assert.Equal(t, []float64{7.0, 7.1, 7.2}, be.Sent())
		assert.Empty(t, remainingPHs(t, q))
	})

	t.Run("it halts at the first failure and keeps the failed item and the rest", func(t *testing.T) {
		q := queue.New(queue.NewMemory())
		defer q.Close()
		fill(t, q, 7.0, 7.1, 7.2)
		boom := errors.New("500 internal server error")
		be := &backend{failOn: map[float64]error{7.1: boom}}

		r := sync.New(q, be).TrySync(ctx)

		assert.ErrorIs(t, r.Err, boom)
		assert.Equal(t, sync.ResultHalted, r.Result())
		assert.Equal(t, 2, r.Attempted)
		assert.Equal(t, 1, r.Sent)
		assert.Equal(t, 1, r.Removed)
		assert.Equal(t, 2, r.Remaining)
		assert.Equal(t, []float64{7.0}, be.Sent())
		assert.Equal(t, []float64{7.1, 7.2}, remainingPHs(t, q))
	})

	t.Run("a failure at the head removes nothing", func(t *testing.T) {
		q := queue.New(queue.NewMemory())
		defer q.Close()
		fill(t, q, 7.0, 7.1)
		be := &backend{failOn: map[float64]error{7.0: errors.New("timeout")}}

		r := sync.New(q, be).TrySync(ctx)

		assert.Error(t, r.Err)
		assert.Equal(t, 0, r.Removed)
		assert.Equal(t, []float64{7.0, 7.1}, remainingPHs(t, q))
	})

	t.Run("an empty queue makes no calls", func(t *testing.T) {
		q := queue.New(queue.NewMemory())
		defer q.Close()
		called := false
		s := sync.New(q, sync.SenderFunc(func(context.Context, queue.Item) error {
			called = true
			return nil
		}))

		r := s.TrySync(ctx)

		assert.Equal(t, sync.SkipEmpty, r.Skipped)
		assert.Equal(t, sync.ResultSkipped, r.Result())
		assert.False(t, called)
	})

	t.Run("when offline, it does nothing", func(t *testing.T) {
		q := queue.New(queue.NewMemory())
		defer q.Close()
		fill(t, q, 7.0)
		be := &backend{}

		r := sync.New(q, be, sync.WithConnectivity(offline{})).TrySync(ctx)

		assert.Equal(t, sync.SkipOffline, r.Skipped)
		assert.Equal(t, 1, r.Remaining)
		assert.Empty(t, be.Sent())
	})

	t.Run("it attempts at most the batch size", func(t *testing.T) {
		q := queue.New(queue.NewMemory())
		defer q.Close()
		fill(t, q, 6.0, 6.1, 6.2, 6.3, 6.4)
		be := &backend{}

		r := sync.New(q, be, sync.WithBatchSize(2)).TrySync(ctx)

		assert.NoError(t, r.Err)
		assert.Equal(t, 2, r.Sent)
		assert.Equal(t, 3, r.Remaining)
		assert.Equal(t, []float64{6.2, 6.3, 6.4}, remainingPHs(t, q))
	})

	t.Run("a pass started while another runs is skipped", func(t *testing.T) {
		q := queue.New(queue.NewMemory())
		defer q.Close()
		fill(t, q, 7.0)

		entered := make(chan struct{})
		release := make(chan struct{})
		s := sync.New(q, sync.SenderFunc(func(context.Context, queue.Item) error {
			close(entered)
			<-release
			return nil
		}))

		done := make(chan sync.Report)
		go func() { done <- s.TrySync(ctx) }()

		<-entered
		second := s.TrySync(ctx)
		close(release)
		first := <-done

		assert.Equal(t, sync.SkipInFlight, second.Skipped)
		assert.Equal(t, 1, first.Sent)
		assert.Equal(t, 0, first.Remaining)
	})

	t.Run("an open breaker halts passes without calling the backend", func(t *testing.T) {
		q := queue.New(queue.NewMemory())
		defer q.Close()
		fill(t, q, 7.0)

		calls := 0
		s := sync.New(
			q,
			sync.SenderFunc(func(context.Context, queue.Item) error {
				calls += 1
				return errors.New("503")
			}),
			sync.WithBreaker(gobreaker.Settings{
				Name:        "test",
				Timeout:     time.Hour,
				ReadyToTrip: func(c gobreaker.Counts) bool { return 1 <= c.ConsecutiveFailures },
			}),
		)

		first := s.TrySync(ctx)
		second := s.TrySync(ctx)

		assert.Error(t, first.Err)
		assert.ErrorIs(t, second.Err, gobreaker.ErrOpenState)
		assert.Equal(t, 1, calls)
		assert.Equal(t, 1, second.Remaining)
	})

	t.Run("items sent stay removed even if the caller gives up after sending", func(t *testing.T) {
		q := queue.New(queue.NewMemory())
		defer q.Close()
		fill(t, q, 7.0, 7.1)

		cctx, cancel := context.WithCancel(ctx)
		defer cancel()
		s := sync.New(q, sync.SenderFunc(func(ctx context.Context, item queue.Item) error {
			if *item.Payload.(queue.WaterReading).PH == 7.0 {
				cancel()
				return nil
			}
			return ctx.Err()
		}))

		r := s.TrySync(cctx)

		assert.Error(t, r.Err)
		assert.Equal(t, 1, r.Removed)
		assert.Equal(t, []float64{7.1}, remainingPHs(t, q))
	})
}

type recorder struct {
	mu      gosync.Mutex
	results []string
	sent    int
	failed  int
	depth   int
}

func (r *recorder) Pass(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func (r *recorder) Sent(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent += n
}

func (r *recorder) Failed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed += 1
}

func (r *recorder) QueueDepth(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.depth = n
}

func TestObserver(t *testing.T) {
	ctx := context.Background()
	q := queue.New(queue.NewMemory())
	defer q.Close()
	fill(t, q, 7.0, 7.1)
	rec := &recorder{}
	be := &backend{failOn: map[float64]error{7.1: errors.New("nope")}}

	s := sync.New(q, be, sync.WithObserver(rec))
	s.TrySync(ctx)

	assert.Equal(t, []string{sync.ResultHalted}, rec.results)
	assert.Equal(t, 1, rec.sent)
	assert.Equal(t, 1, rec.failed)
	assert.Equal(t, 1, rec.depth)
}

func TestRun(t *testing.T) {
	t.Run("it drains a backlog larger than a batch without waiting for the interval", func(t *testing.T) {
		q := queue.New(queue.NewMemory())
		defer q.Close()
		fill(t, q, 6.0, 6.1, 6.2, 6.3, 6.4)
		be := &backend{}
		s := sync.New(q, be, sync.WithBatchSize(2))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error)
		go func() {
			done <- s.Run(ctx, sync.RunConfig{Interval: time.Hour})
		}()

		require.Eventually(t, func() bool {
			return len(be.Sent()) == 5
		}, 3*time.Second, 10*time.Millisecond)
		cancel()
		assert.NoError(t, <-done)
		assert.Equal(t, []float64{6.0, 6.1, 6.2, 6.3, 6.4}, be.Sent())
	})

	t.Run("a wake signal starts a pass before the interval", func(t *testing.T) {
		q := queue.New(queue.NewMemory())
		defer q.Close()
		be := &backend{}
		s := sync.New(q, be)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error)
		go func() {
			done <- s.Run(ctx, sync.RunConfig{Interval: time.Hour, Wake: q.Enqueued()})
		}()

		fill(t, q, 7.3)
		require.Eventually(t, func() bool {
			return len(be.Sent()) == 1
		}, 3*time.Second, 10*time.Millisecond)
		cancel()
		assert.NoError(t, <-done)
	})

	t.Run("after a failure it retries with backoff", func(t *testing.T) {
		q := queue.New(queue.NewMemory())
		defer q.Close()
		fill(t, q, 7.0)

		mu := gosync.Mutex{}
		attempts := 0
		s := sync.New(
			q,
			sync.SenderFunc(func(context.Context, queue.Item) error {
				mu.Lock()
				defer mu.Unlock()
				attempts += 1
				if attempts < 3 {
					return errors.New("unavailable")
				}
				return nil
			}),
			sync.WithBreaker(gobreaker.Settings{Name: "never-trips", ReadyToTrip: func(gobreaker.Counts) bool { return false }}),
		)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error)
		go func() {
			done <- s.Run(ctx, sync.RunConfig{
				Interval:   time.Hour,
				MinBackoff: 5 * time.Millisecond,
				MaxBackoff: 20 * time.Millisecond,
			})
		}()

		require.Eventually(t, func() bool {
			n, err := q.Len(context.Background())
			return err == nil && n == 0
		}, 3*time.Second, 10*time.Millisecond)
		cancel()
		assert.NoError(t, <-done)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 3, attempts)
	})
}

func TestProbe(t *testing.T) {
	ctx := context.Background()
	var healthy error = errors.New("down")
	p := sync.NewProbe(func(context.Context) error { return healthy }, time.Second, nil)

	assert.False(t, p.Online(ctx))
	select {
	case <-p.Back():
		t.Fatal("signalled while down")
	default:
	}

	healthy = nil
	assert.True(t, p.Online(ctx))
	select {
	case <-p.Back():
	default:
		t.Fatal("no signal on recovery")
	}

	assert.True(t, p.Online(ctx))
	select {
	case <-p.Back():
		t.Fatal("signalled without transition")
	default:
	}
}
