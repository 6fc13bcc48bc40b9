package agent_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/configs/agent"
)

const tenantId = "7d4c2b1a-0f9e-4d8c-b7a6-333333333333"

func TestProfile(t *testing.T) {
	t.Run("unmarshalling works well, and defaults are filled", func(t *testing.T) {
		store, err := agent.Unmarshall([]byte(`
pond-site:
    apiRoot: "https://api.example.com"
    tenantId: 7d4c2b1a-0f9e-4d8c-b7a6-333333333333
    token: tkn
    queue:
        path: /var/lib/aquasync/queue.db
    sync:
        batchSize: 20
        interval: 1m
    mqtt:
        broker: tcp://localhost:1883
`))
		if err != nil {
			t.Fatalf("failed to unmarshal.: %+v", err)
		}
		p, err := store.Get("pond-site")
		if err != nil {
			t.Fatal(err)
		}

		if p.Tenant().String() != tenantId {
			t.Errorf("tenant: %s", p.Tenant())
		}
		if p.QueueDriver() != agent.QueueSQLite {
			t.Errorf("queue driver: %s", p.QueueDriver())
		}
		if p.BatchSize() != 20 || p.Interval() != time.Minute {
			t.Errorf("sync: %d, %s", p.BatchSize(), p.Interval())
		}
		if p.Timeout() != 10*time.Second || p.MaxBackoff() != 5*time.Minute {
			t.Errorf("defaults: %s, %s", p.Timeout(), p.MaxBackoff())
		}
		if p.MQTTTopic() != "aquafarm/+/ponds/+/water" {
			t.Errorf("topic: %s", p.MQTTTopic())
		}
		if pool, err := p.CertPool(); pool != nil || err != nil {
			t.Errorf("cert pool: %v, %v", pool, err)
		}
	})

	t.Run("unknown profile is ErrProfileNotFound", func(t *testing.T) {
		if _, err := (agent.ProfileStore{}).Get("nope"); !errors.Is(err, agent.ErrProfileNotFound) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	for name, p := range map[string]agent.Profile{
		"relative apiRoot":    {ApiRoot: "api", TenantId: tenantId, Queue: agent.Queue{Driver: agent.QueueMemory}},
		"malformed tenantId":  {ApiRoot: "https://a.example", TenantId: "acme", Queue: agent.Queue{Driver: agent.QueueMemory}},
		"sqlite without path": {ApiRoot: "https://a.example", TenantId: tenantId},
		"unknown driver":      {ApiRoot: "https://a.example", TenantId: tenantId, Queue: agent.Queue{Driver: "kafka"}},
		"bad interval": {
			ApiRoot: "https://a.example", TenantId: tenantId,
			Queue: agent.Queue{Driver: agent.QueueMemory}, Sync: agent.Sync{Interval: "soon"},
		},
		"non-PEM CA": {
			ApiRoot: "https://a.example", TenantId: tenantId,
			Queue: agent.Queue{Driver: agent.QueueMemory}, Cert: agent.Cert{CA: "bm90IGEgY2VydA=="},
		},
	} {
		p := p
		t.Run("it is invalid: "+name, func(t *testing.T) {
			if err := p.Verify(); !errors.Is(err, agent.ErrProfileInvalid) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	t.Run("saved store can be loaded again", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "aquasync", "profiles.yaml")
		expected := agent.ProfileStore{
			"default": {
				ApiRoot: "https://api.example.com", TenantId: tenantId,
				Queue: agent.Queue{Driver: agent.QueueFile, Path: "/tmp/q.json"},
			},
		}
		if err := expected.Save(path); err != nil {
			t.Fatal(err)
		}
		actual, err := agent.LoadProfileStore(path)
		if err != nil {
			t.Fatal(err)
		}
		if !cmp.Equal(expected, actual) {
			t.Errorf("profiles:\n%s", cmp.Diff(expected, actual))
		}
	})

	t.Run("a missing file is ErrProfileStoreNotFound", func(t *testing.T) {
		_, err := agent.LoadProfileStore(filepath.Join(t.TempDir(), "none.yaml"))
		if !errors.Is(err, agent.ErrProfileStoreNotFound) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
