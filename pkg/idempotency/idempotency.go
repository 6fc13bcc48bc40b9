// Package idempotency remembers which reading an Idempotency-Key produced.
//
// Keys are scoped by tenant: the same key in two tenants names two readings.
package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

type Store interface {
	// Lookup returns the reading id recorded for key in the tenant of ctx.
	//
	// The bool is false when the key is unknown or expired.
	Lookup(ctx context.Context, key string) (string, bool, error)

	// Remember records readingId for key in the tenant of ctx.
	Remember(ctx context.Context, key string, readingId string) error

	Close() error
}

type memoryEntry struct {
	readingId string
	expiresAt time.Time
}

type memoryKey struct {
	tenant tenant.Id
	key    string
}

// Memory is a Store in process memory.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[memoryKey]memoryEntry
}

type MemoryOption func(*Memory)

func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

func NewMemory(ttl time.Duration, opts ...MemoryOption) *Memory {
	m := &Memory{ttl: ttl, now: time.Now, entries: map[memoryKey]memoryEntry{}}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Memory) Lookup(ctx context.Context, key string) (string, bool, error) {
	t, err := tenant.From(ctx)
	if err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	k := memoryKey{tenant: t, key: key}
	e, ok := m.entries[k]
	if !ok {
		return "", false, nil
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, k)
		return "", false, nil
	}
	return e.readingId, true, nil
}

func (m *Memory) Remember(ctx context.Context, key string, readingId string) error {
	t, err := tenant.From(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	m.entries[memoryKey{tenant: t, key: key}] = memoryEntry{readingId: readingId, expiresAt: now.Add(m.ttl)}
	return nil
}

func (m *Memory) Close() error {
	return nil
}

// Null is a Store remembering nothing.
type Null struct{}

func (Null) Lookup(context.Context, string) (string, bool, error) { return "", false, nil }

func (Null) Remember(context.Context, string, string) error { return nil }

func (Null) Close() error { return nil }
