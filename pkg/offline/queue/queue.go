// Package queue is the durable FIFO of mutations captured while offline.
package queue

import (
	"context"
	"sync"
)

// Queue wraps a Store; every operation holds one mutex.
type Queue struct {
	mu     sync.Mutex
	store  Store
	notify chan struct{}
}

func New(store Store) *Queue {
	return &Queue{store: store, notify: make(chan struct{}, 1)}
}

// Enqueue validates p and appends it at the tail.
//
// It returns after p is durably stored. When it returns error, p is not queued.
func (q *Queue) Enqueue(ctx context.Context, p Payload) (Item, error) {
	if err := p.Validate(); err != nil {
		return Item{}, err
	}
	typ, body, err := encode(p)
	if err != nil {
		return Item{}, err
	}

	q.mu.Lock()
	seq, err := q.store.Append(ctx, typ, body)
	q.mu.Unlock()
	if err != nil {
		return Item{}, err
	}

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return Item{Seq: seq, Payload: p}, nil
}

// Peek returns up to n items from the head without removing them.
//
// A record which cannot be decoded ends the result; it is returned as error
// together with the items before it.
func (q *Queue) Peek(ctx context.Context, n int) ([]Item, error) {
	q.mu.Lock()
	records, err := q.store.Head(ctx, n)
	q.mu.Unlock()
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(records))
	for _, r := range records {
		it, err := decode(r)
		if err != nil {
			return items, err
		}
		items = append(items, it)
	}
	return items, nil
}

// RemoveThrough removes items up to and including seq.
func (q *Queue) RemoveThrough(ctx context.Context, seq int64) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.store.DropThrough(ctx, seq)
}

// DropHead removes the head record, even if it cannot be decoded.
//
// It returns the seq of the removed record, or false when the queue is empty.
func (q *Queue) DropHead(ctx context.Context) (int64, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	head, err := q.store.Head(ctx, 1)
	if err != nil {
		return 0, false, err
	}
	if len(head) == 0 {
		return 0, false, nil
	}
	if _, err := q.store.DropThrough(ctx, head[0].Seq); err != nil {
		return 0, false, err
	}
	return head[0].Seq, true, nil
}

func (q *Queue) Len(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.store.Len(ctx)
}

// Enqueued receives after items are enqueued. Signals are coalesced.
func (q *Queue) Enqueued() <-chan struct{} {
	return q.notify
}

func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.store.Close()
}
