package token_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youta-t/flarc"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquasync/subcommands/internal/commandline"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquasync/subcommands/internal/testenv"
	subtoken "github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquasync/subcommands/token"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/auth"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/configs/agent"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

const otherTenant = "22222222-2222-4222-8222-222222222222"

func verify(t *testing.T, tok string) tenant.Principal {
	t.Helper()
	kr := auth.NewKeyring(map[string]auth.Key{"dev": {Secret: []byte("s3cret")}})
	claims, err := kr.Verify(tok)
	require.NoError(t, err)
	p, err := claims.Principal()
	require.NoError(t, err)
	return p
}

func TestTask(t *testing.T) {
	ctx := context.Background()
	flags := subtoken.Flag{Kid: "dev", Secret: "s3cret", Subject: "pond-station", TTL: "1h"}

	t.Run("a token for the tenant of the profile is printed", func(t *testing.T) {
		env, _ := testenv.New(t, testenv.Profile())
		cl, stdout := commandline.New("aquasync token", flags)

		require.NoError(t, subtoken.Task(time.Now)(ctx, env, cl, nil))

		p := verify(t, strings.TrimSpace(stdout.String()))
		assert.Equal(t, "pond-station", p.Subject)
		assert.Equal(t, tenant.Id(testenv.Tenant), p.Tenant)
	})

	t.Run("--tenant overrides the tenant", func(t *testing.T) {
		env, _ := testenv.New(t, testenv.Profile())
		f := flags
		f.Tenant = otherTenant
		cl, stdout := commandline.New("aquasync token", f)

		require.NoError(t, subtoken.Task(time.Now)(ctx, env, cl, nil))
		assert.Equal(t, tenant.Id(otherTenant), verify(t, strings.TrimSpace(stdout.String())).Tenant)
	})

	t.Run("--save writes the token into the profile store", func(t *testing.T) {
		env, _ := testenv.New(t, testenv.Profile())
		env.StorePath = filepath.Join(t.TempDir(), "profiles.yaml")
		f := flags
		f.Save = true
		cl, stdout := commandline.New("aquasync token", f)

		require.NoError(t, subtoken.Task(time.Now)(ctx, env, cl, nil))
		assert.Empty(t, stdout.String())

		store, err := agent.LoadProfileStore(env.StorePath)
		require.NoError(t, err)
		prof, err := store.Get(env.Name)
		require.NoError(t, err)
		assert.Equal(t, tenant.Id(testenv.Tenant), verify(t, prof.Token).Tenant)
	})

	t.Run("an expired ttl is not issued", func(t *testing.T) {
		env, _ := testenv.New(t, testenv.Profile())
		past := func() time.Time { return time.Now().Add(-2 * time.Hour) }
		cl, stdout := commandline.New("aquasync token", flags)

		require.NoError(t, subtoken.Task(past)(ctx, env, cl, nil))

		kr := auth.NewKeyring(map[string]auth.Key{"dev": {Secret: []byte("s3cret")}})
		_, err := kr.Verify(strings.TrimSpace(stdout.String()))
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	for name, f := range map[string]subtoken.Flag{
		"without secret":    {Kid: "dev", TTL: "1h"},
		"with a bad ttl":    {Kid: "dev", Secret: "s3cret", TTL: "forever"},
		"with a bad tenant": {Kid: "dev", Secret: "s3cret", TTL: "1h", Tenant: "acme"},
	} {
		t.Run(name+", it is a usage error", func(t *testing.T) {
			env, _ := testenv.New(t, testenv.Profile())
			cl, _ := commandline.New("aquasync token", f)
			assert.ErrorIs(t, subtoken.Task(time.Now)(ctx, env, cl, nil), flarc.ErrUsage)
		})
	}
}
