// Package common holds flags and adapters shared by aquasync subcommands.
package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/youta-t/flarc"
	"go.uber.org/zap"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/configs/agent"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/offline/queue"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/offline/rest"
	gosync "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/offline/sync"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/utils/logutil"
)

const (
	EnvProfile      = "AQUASYNC_PROFILE"
	EnvProfileStore = "AQUASYNC_PROFILE_STORE"
)

type CommonFlags struct {
	Profile      string `flag:"profile" alias:"p" help:"aquasync profile name to use"`
	ProfileStore string `flag:"profile-store" help:"path to aquasync profile store file"`
	Loglevel     string `flag:"loglevel" help:"log level: debug, info, warn, error or off"`
}

// Flags returns default common flags.
//
// Environment variables AQUASYNC_PROFILE and AQUASYNC_PROFILE_STORE take precedence.
// Otherwise, the profile is "default" in $home/.aquasync/profiles.yaml.
func Flags(home string) CommonFlags {
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		}
	}

	cf := CommonFlags{
		Profile:      "default",
		ProfileStore: filepath.Join(home, ".aquasync", "profiles.yaml"),
		Loglevel:     "warn",
	}
	if p := os.Getenv(EnvProfile); p != "" {
		cf.Profile = p
	}
	if s := os.Getenv(EnvProfileStore); s != "" {
		cf.ProfileStore = s
	}
	return cf
}

// Env is what a subcommand works with.
type Env struct {
	Logger *zap.Logger

	// Name of Profile in Store.
	Name    string
	Profile *agent.Profile

	Store     agent.ProfileStore
	StorePath string
}

type ProfileTask[T any] func(ctx context.Context, env Env, cl flarc.Commandline[T], params []any) error

// NewProfileTask adapts task to flarc.Task, loading the profile named by common flags.
func NewProfileTask[T any](task ProfileTask[T]) flarc.Task[T] {
	return func(ctx context.Context, cl flarc.Commandline[T], pos []any) error {
		var cf CommonFlags
		found := false
		params := make([]any, 0, len(pos))
		for _, p := range pos {
			switch v := p.(type) {
			case CommonFlags:
				found = true
				cf = v
			default:
				params = append(params, p)
			}
		}
		if !found {
			return errors.New("programming error: common flags not found")
		}

		logger, err := logutil.New(cf.Loglevel)
		if err != nil {
			return fmt.Errorf("%w: --loglevel: %w", flarc.ErrUsage, err)
		}
		defer logger.Sync()

		env, err := LoadEnv(cf)
		if err != nil {
			return err
		}
		env.Logger = logger.Named(cl.Fullname())
		return task(ctx, env, cl, params)
	}
}

// LoadEnv loads the profile named by cf.
func LoadEnv(cf CommonFlags) (Env, error) {
	store, err := agent.LoadProfileStore(cf.ProfileStore)
	if err != nil {
		if errors.Is(err, agent.ErrProfileStoreNotFound) {
			return Env{}, fmt.Errorf("%w. Create it, or pass --profile-store", err)
		}
		return Env{}, fmt.Errorf("%w: failed to load profile store (%s)", err, cf.ProfileStore)
	}
	prof, err := store.Get(cf.Profile)
	if err != nil {
		return Env{}, fmt.Errorf("%w: %s in %s", err, cf.Profile, cf.ProfileStore)
	}
	return Env{
		Logger:    zap.NewNop(),
		Name:      cf.Profile,
		Profile:   prof,
		Store:     store,
		StorePath: cf.ProfileStore,
	}, nil
}

type QueueTask[T any] func(ctx context.Context, env Env, q *queue.Queue, cl flarc.Commandline[T], params []any) error

// NewQueueTask adapts task to flarc.Task, opening the queue of the profile.
func NewQueueTask[T any](task QueueTask[T]) flarc.Task[T] {
	return NewProfileTask(func(ctx context.Context, env Env, cl flarc.Commandline[T], params []any) error {
		q, err := OpenQueue(ctx, env.Profile)
		if err != nil {
			return err
		}
		defer func() {
			if err := q.Close(); err != nil {
				env.Logger.Warn("failed to close queue", zap.Error(err))
			}
		}()
		return task(ctx, env, q, cl, params)
	})
}

// OpenQueue opens the queue store configured in prof.
func OpenQueue(ctx context.Context, prof *agent.Profile) (*queue.Queue, error) {
	var store queue.Store
	switch d := prof.QueueDriver(); d {
	case agent.QueueSQLite:
		s, err := queue.OpenSQLite(ctx, prof.Queue.Path)
		if err != nil {
			return nil, fmt.Errorf("opening queue at %s: %w", prof.Queue.Path, err)
		}
		store = s
	case agent.QueueFile:
		s, err := queue.OpenFile(prof.Queue.Path)
		if err != nil {
			return nil, fmt.Errorf("opening queue at %s: %w", prof.Queue.Path, err)
		}
		store = s
	case agent.QueueMemory:
		store = queue.NewMemory()
	default:
		return nil, fmt.Errorf("%w: queue.driver is unknown: %s", agent.ErrProfileInvalid, d)
	}
	return queue.New(store), nil
}

// Backend is aquafarmd as seen from the agent.
type Backend interface {
	gosync.Sender
	Healthz(ctx context.Context) error
}

// Dialer creates a Backend for a profile.
type Dialer func(prof *agent.Profile) (Backend, error)

// Dial is a Dialer of the REST client.
func Dial(prof *agent.Profile) (Backend, error) {
	c, err := rest.NewClient(prof)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create a client. The profile can be broken", err)
	}
	return c, nil
}
