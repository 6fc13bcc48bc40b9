// Package testenv builds common.Env for tests of subcommands.
package testenv

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquasync/subcommands/common"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/configs/agent"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/offline/queue"
)

const Tenant = "11111111-1111-4111-8111-111111111111"

// Profile returns a valid profile with a memory queue.
func Profile() *agent.Profile {
	return &agent.Profile{
		ApiRoot:  "http://aquafarmd.invalid",
		TenantId: Tenant,
		Queue:    agent.Queue{Driver: agent.QueueMemory},
		Sync:     agent.Sync{Interval: "50ms", Timeout: "1s", MaxBackoff: "200ms"},
	}
}

// New returns an Env of prof, and a queue on memory.
func New(t *testing.T, prof *agent.Profile) (common.Env, *queue.Queue) {
	t.Helper()
	env := common.Env{
		Logger:  zaptest.NewLogger(t),
		Name:    "test",
		Profile: prof,
		Store:   agent.ProfileStore{"test": prof},
	}
	q := queue.New(queue.NewMemory())
	t.Cleanup(func() { q.Close() })
	return env, q
}
