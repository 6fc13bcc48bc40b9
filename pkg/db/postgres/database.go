package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	kpgbatch "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/batch"
	kpgfarm "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/farm"
	kpgfeeding "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/feeding"
	kpgnotif "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/notification"
	kpgpond "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/pond"
	kpool "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/pool"
	kpgreading "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/reading"
	kpgschema "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/schema"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/scope"
	xe "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/errors"
)

// DefaultRole is the role created by the schema for the application.
const DefaultRole = "aquafarm_app"

type aquafarmPG struct {
	pool kpool.Pool

	farms         kdb.FarmInterface
	ponds         kdb.PondInterface
	readings      kdb.ReadingInterface
	batches       kdb.BatchInterface
	feedings      kdb.FeedingInterface
	notifications kdb.NotificationInterface
	schema        kdb.SchemaInterface
}

type Config struct {
	// Role is switched to on each new connection. Empty means "stay the login user".
	//
	// Row level security does not restrain superusers. When the login user may be
	// one, keep Role.
	Role string

	SchemaRepository fs.FS
	MaxConns         int32
}

func DefaultConfig() Config {
	return Config{
		Role:             DefaultRole,
		SchemaRepository: kpgschema.Repository(),
	}
}

type Option func(*Config) *Config

func WithRole(role string) Option {
	return func(c *Config) *Config {
		c.Role = role
		return c
	}
}

func WithSchemaRepository(repository fs.FS) Option {
	return func(c *Config) *Config {
		c.SchemaRepository = repository
		return c
	}
}

func WithMaxConns(n int32) Option {
	return func(c *Config) *Config {
		c.MaxConns = n
		return c
	}
}

// New connects to the database at url.
func New(ctx context.Context, url string, options ...Option) (kdb.Database, error) {
	p, c, err := Connect(ctx, url, options...)
	if err != nil {
		return nil, err
	}
	return Wrap(p, c), nil
}

// Connect opens a connection pool configured for tenant-scoped access.
//
// Each new connection switches to Config.Role. Each released connection has its
// tenant setting cleared; a connection which cannot be cleared is destroyed.
func Connect(ctx context.Context, url string, options ...Option) (kpool.Pool, Config, error) {
	c := DefaultConfig()
	for _, o := range options {
		c = *o(&c)
	}

	pgconf, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, c, xe.Wrap(err)
	}
	if 0 < c.MaxConns {
		pgconf.MaxConns = c.MaxConns
	}
	if c.Role != "" {
		role := pgx.Identifier{c.Role}.Sanitize()
		pgconf.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			if _, err := conn.Exec(ctx, `SET ROLE `+role); err != nil {
				return fmt.Errorf("switching role to %s: %w", role, err)
			}
			return nil
		}
	}
	pgconf.AfterRelease = func(conn *pgx.Conn) bool {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := conn.Exec(ctx, `SELECT set_config($1, '', false)`, scope.Setting)
		return err == nil
	}

	p, err := pgxpool.ConnectConfig(ctx, pgconf)
	if err != nil {
		return nil, c, xe.Wrap(err)
	}
	return kpool.Wrap(p), c, nil
}

// Wrap builds a Database over an established pool.
func Wrap(pool kpool.Pool, c Config) kdb.Database {
	var schema kdb.SchemaInterface = nullSchema{}
	if c.SchemaRepository != nil {
		schema = kpgschema.New(pool, c.SchemaRepository)
	}
	return &aquafarmPG{
		pool:          pool,
		farms:         kpgfarm.New(pool),
		ponds:         kpgpond.New(pool),
		readings:      kpgreading.New(pool),
		batches:       kpgbatch.New(pool),
		feedings:      kpgfeeding.New(pool),
		notifications: kpgnotif.New(pool),
		schema:        schema,
	}
}

func (a *aquafarmPG) Farms() kdb.FarmInterface                 { return a.farms }
func (a *aquafarmPG) Ponds() kdb.PondInterface                 { return a.ponds }
func (a *aquafarmPG) Readings() kdb.ReadingInterface           { return a.readings }
func (a *aquafarmPG) Batches() kdb.BatchInterface              { return a.batches }
func (a *aquafarmPG) Feedings() kdb.FeedingInterface           { return a.feedings }
func (a *aquafarmPG) Notifications() kdb.NotificationInterface { return a.notifications }
func (a *aquafarmPG) Schema() kdb.SchemaInterface              { return a.schema }

func (a *aquafarmPG) Ping(ctx context.Context) error {
	return a.pool.Ping(ctx)
}

func (a *aquafarmPG) Close() error {
	a.pool.Close()
	return nil
}

type nullSchema struct{}

func (nullSchema) Version(context.Context) (int, error) { return -1, nil }

func (nullSchema) Upgrade(context.Context) error {
	return fmt.Errorf("no schema repository available")
}
