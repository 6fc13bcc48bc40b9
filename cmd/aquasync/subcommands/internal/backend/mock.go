// Package backend has an in-process aquafarmd for tests of subcommands.
package backend

import (
	"context"
	"sync"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquasync/subcommands/common"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/configs/agent"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/offline/queue"
)

type Mock struct {
	mu sync.Mutex

	// Down is returned from Healthz when not nil.
	Down error

	// Reject maps Payload.Key() to the error Send returns for it.
	Reject map[string]error

	sent []queue.Item
}

var _ common.Backend = &Mock{}

func (m *Mock) Healthz(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Down
}

func (m *Mock) Send(_ context.Context, item queue.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.Reject[item.Payload.Key()]; ok {
		return err
	}
	m.sent = append(m.sent, item)
	return nil
}

// Sent returns keys of accepted items, in order.
func (m *Mock) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.sent))
	for _, it := range m.sent {
		keys = append(keys, it.Payload.Key())
	}
	return keys
}

// Dialer returns a Dialer which always gives m.
func (m *Mock) Dialer() common.Dialer {
	return func(*agent.Profile) (common.Backend, error) { return m, nil }
}
