package idempotency_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/idempotency"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

const (
	tenantA = tenant.Id("11111111-1111-4111-8111-111111111111")
	tenantB = tenant.Id("22222222-2222-4222-8222-222222222222")
)

func behaviour(t *testing.T, store idempotency.Store) {
	ctxA := tenant.With(context.Background(), tenantA)
	ctxB := tenant.With(context.Background(), tenantB)
	run := uuid.NewString()

	t.Run("an unknown key is not found", func(t *testing.T) {
		_, ok, err := store.Lookup(ctxA, run+"-unknown")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("a remembered key is found in its tenant only", func(t *testing.T) {
		require.NoError(t, store.Remember(ctxA, run+"-1", "reading-1"))

		got, ok, err := store.Lookup(ctxA, run+"-1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "reading-1", got)

		_, ok, err = store.Lookup(ctxB, run+"-1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("without tenant, it fails closed", func(t *testing.T) {
		_, _, err := store.Lookup(context.Background(), run+"-1")
		assert.True(t, errors.Is(err, tenant.ErrNoTenant))
		assert.ErrorIs(t, store.Remember(context.Background(), run+"-1", "x"), tenant.ErrNoTenant)
	})
}

func TestMemory(t *testing.T) {
	behaviour(t, idempotency.NewMemory(time.Hour))

	t.Run("an expired key is forgotten", func(t *testing.T) {
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		store := idempotency.NewMemory(time.Minute, idempotency.WithClock(func() time.Time { return now }))
		ctx := tenant.With(context.Background(), tenantA)

		require.NoError(t, store.Remember(ctx, "k", "r"))
		now = now.Add(59 * time.Second)
		_, ok, _ := store.Lookup(ctx, "k")
		assert.True(t, ok)

		now = now.Add(time.Second)
		_, ok, _ = store.Lookup(ctx, "k")
		assert.False(t, ok)
	})
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("AQUAFARM_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("AQUAFARM_TEST_REDIS_ADDR is not set")
	}
	store, err := idempotency.NewRedis(context.Background(), addr, "", 0, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	behaviour(t, store)
}
