package common_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youta-t/flarc"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquasync/subcommands/common"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquasync/subcommands/internal/commandline"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/configs/agent"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/offline/queue"
)

const tenantA = "11111111-1111-4111-8111-111111111111"

func TestFlags(t *testing.T) {
	t.Run("without environment variables, the default profile in home is used", func(t *testing.T) {
		t.Setenv(common.EnvProfile, "")
		t.Setenv(common.EnvProfileStore, "")

		cf := common.Flags("/home/farmer")
		assert.Equal(t, "default", cf.Profile)
		assert.Equal(t, filepath.Join("/home/farmer", ".aquasync", "profiles.yaml"), cf.ProfileStore)
		assert.Equal(t, "warn", cf.Loglevel)
	})

	t.Run("environment variables take precedence", func(t *testing.T) {
		t.Setenv(common.EnvProfile, "pond-station")
		t.Setenv(common.EnvProfileStore, "/etc/aquasync/profiles.yaml")

		cf := common.Flags("/home/farmer")
		assert.Equal(t, "pond-station", cf.Profile)
		assert.Equal(t, "/etc/aquasync/profiles.yaml", cf.ProfileStore)
	})
}

func saveStore(t *testing.T, store agent.ProfileStore) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, store.Save(path))
	return path
}

func TestLoadEnv(t *testing.T) {
	prof := &agent.Profile{
		ApiRoot: "https://aquafarmd.example.com", TenantId: tenantA,
		Queue: agent.Queue{Driver: agent.QueueMemory},
	}

	t.Run("the named profile is loaded", func(t *testing.T) {
		path := saveStore(t, agent.ProfileStore{"field": prof})

		env, err := common.LoadEnv(common.CommonFlags{Profile: "field", ProfileStore: path})
		require.NoError(t, err)
		assert.Equal(t, "field", env.Name)
		assert.Equal(t, path, env.StorePath)
		assert.Equal(t, prof.ApiRoot, env.Profile.ApiRoot)
		assert.Same(t, env.Profile, env.Store["field"])
	})

	t.Run("a missing profile is an error", func(t *testing.T) {
		path := saveStore(t, agent.ProfileStore{"field": prof})

		_, err := common.LoadEnv(common.CommonFlags{Profile: "office", ProfileStore: path})
		assert.ErrorIs(t, err, agent.ErrProfileNotFound)
	})

	t.Run("a missing store is an error", func(t *testing.T) {
		_, err := common.LoadEnv(common.CommonFlags{
			Profile: "field", ProfileStore: filepath.Join(t.TempDir(), "nothing.yaml"),
		})
		assert.ErrorIs(t, err, agent.ErrProfileStoreNotFound)
	})
}

func TestOpenQueue(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for name, q := range map[string]agent.Queue{
		"sqlite": {Driver: agent.QueueSQLite, Path: filepath.Join(dir, "queue.db")},
		"file":   {Driver: agent.QueueFile, Path: filepath.Join(dir, "queue.json")},
		"memory": {Driver: agent.QueueMemory},
	} {
		t.Run("a "+name+" queue is opened and works", func(t *testing.T) {
			testee, err := common.OpenQueue(ctx, &agent.Profile{Queue: q})
			require.NoError(t, err)
			defer testee.Close()

			w := queue.NewWaterReading(time.Date(2026, 5, 1, 6, 0, 0, 0, time.UTC))
			ph := 7.2
			w.PH = &ph
			_, err = testee.Enqueue(ctx, w)
			require.NoError(t, err)

			n, err := testee.Len(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}

	t.Run("an unknown driver is an error", func(t *testing.T) {
		_, err := common.OpenQueue(ctx, &agent.Profile{Queue: agent.Queue{Driver: "tape"}})
		assert.ErrorIs(t, err, agent.ErrProfileInvalid)
	})
}

func TestNewProfileTask(t *testing.T) {
	prof := &agent.Profile{
		ApiRoot: "https://aquafarmd.example.com", TenantId: tenantA,
		Queue: agent.Queue{Driver: agent.QueueMemory},
	}
	path := saveStore(t, agent.ProfileStore{"field": prof})

	t.Run("the task receives the profile and the other params", func(t *testing.T) {
		var got common.Env
		var params []any
		testee := common.NewProfileTask(func(_ context.Context, env common.Env, _ flarc.Commandline[struct{}], p []any) error {
			got = env
			params = p
			return nil
		})

		cl, _ := commandline.New("aquasync test", struct{}{})
		err := testee(context.Background(), cl, []any{
			"before", common.CommonFlags{Profile: "field", ProfileStore: path, Loglevel: "off"}, "after",
		})
		require.NoError(t, err)
		assert.Equal(t, "field", got.Name)
		assert.Equal(t, tenantA, got.Profile.TenantId)
		assert.Equal(t, []any{"before", "after"}, params)
	})

	t.Run("an unknown log level is a usage error", func(t *testing.T) {
		testee := common.NewProfileTask(func(context.Context, common.Env, flarc.Commandline[struct{}], []any) error {
			t.Error("task should not be called")
			return nil
		})
		cl, _ := commandline.New("aquasync test", struct{}{})
		err := testee(context.Background(), cl, []any{
			common.CommonFlags{Profile: "field", ProfileStore: path, Loglevel: "loud"},
		})
		assert.ErrorIs(t, err, flarc.ErrUsage)
	})

	t.Run("without common flags, it fails", func(t *testing.T) {
		testee := common.NewProfileTask(func(context.Context, common.Env, flarc.Commandline[struct{}], []any) error {
			return errors.New("should not be called")
		})
		cl, _ := commandline.New("aquasync test", struct{}{})
		err := testee(context.Background(), cl, []any{})
		assert.ErrorContains(t, err, "common flags not found")
	})
}
