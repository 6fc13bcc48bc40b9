// Package testenv provides Postgres databases to integration tests.
//
// The database is taken from AQUAFARM_TEST_DB_DSN. Otherwise, when
// AQUAFARM_TEST_CONTAINERS is set, a disposable Postgres container is started.
// Without either, tests asking for a database are skipped.
package testenv

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	kpg "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres"
	kpool "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/pool"
	kpgschema "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/schema"
)

const (
	EnvDSN        = "AQUAFARM_TEST_DB_DSN"
	EnvContainers = "AQUAFARM_TEST_CONTAINERS"
)

// PoolBroker gives pools to tests. Tables are emptied before and after each test.
type PoolBroker interface {
	// GetPool returns a pool logged in as the administrative (login) user.
	// Row level security does not restrain it.
	GetPool(ctx context.Context, t *testing.T) kpool.Pool

	// GetAppPool returns a pool switched to the application role.
	GetAppPool(ctx context.Context, t *testing.T) kpool.Pool

	// GetDatabase returns a Database over GetAppPool.
	GetDatabase(ctx context.Context, t *testing.T) kdb.Database
}

type broker struct {
	dsn string
}

var (
	containerOnce sync.Once
	containerDSN  string
	containerErr  error
)

// NewPoolBroker returns a PoolBroker with the schema upgraded, or skips t.
func NewPoolBroker(ctx context.Context, t *testing.T) PoolBroker {
	t.Helper()

	dsn := os.Getenv(EnvDSN)
	if dsn == "" && os.Getenv(EnvContainers) != "" {
		containerOnce.Do(func() {
			containerDSN, containerErr = startContainer(context.Background())
		})
		if containerErr != nil {
			t.Fatalf("cannot start postgres container: %v", containerErr)
		}
		dsn = containerDSN
	}
	if dsn == "" {
		t.Skipf("no database: set %s or %s", EnvDSN, EnvContainers)
	}

	b := &broker{dsn: dsn}
	admin := b.GetPool(ctx, t)
	if err := kpgschema.New(admin, kpgschema.Repository()).Upgrade(ctx); err != nil {
		t.Fatalf("schema upgrade: %v", err)
	}
	return b
}

// the container lives as long as the test binary; ryuk reaps it afterwards.
func startContainer(ctx context.Context) (string, error) {
	c, err := tcpostgres.RunContainer(
		ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		tcpostgres.WithDatabase("aquafarm_test"),
		tcpostgres.WithUsername("test-user"),
		tcpostgres.WithPassword("test-pass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return "", fmt.Errorf("failed to start postgres container: %w", err)
	}
	dsn, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		c.Terminate(ctx)
		return "", fmt.Errorf("failed to get connection string: %w", err)
	}
	return dsn, nil
}

func (b *broker) connect(ctx context.Context, t *testing.T, options ...kpg.Option) (kpool.Pool, kpg.Config) {
	t.Helper()
	p, c, err := kpg.Connect(ctx, b.dsn, options...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(p.Close)
	return p, c
}

func (b *broker) GetPool(ctx context.Context, t *testing.T) kpool.Pool {
	t.Helper()
	p, _ := b.connect(ctx, t, kpg.WithRole(""))
	return p
}

func (b *broker) GetAppPool(ctx context.Context, t *testing.T) kpool.Pool {
	t.Helper()
	admin := b.GetPool(ctx, t)
	ClearTables(ctx, t, admin)
	t.Cleanup(func() { ClearTables(context.Background(), t, admin) })

	p, _ := b.connect(ctx, t)
	return p
}

func (b *broker) GetDatabase(ctx context.Context, t *testing.T) kdb.Database {
	t.Helper()
	p := b.GetAppPool(ctx, t)
	return kpg.Wrap(p, kpg.DefaultConfig())
}

func ClearTables(ctx context.Context, t *testing.T, p kpool.Pool) {
	t.Helper()

	conn, err := p.Acquire(ctx)
	if err != nil {
		t.Errorf("fail to clean-up tables: %v", err)
		return
	}
	defer conn.Release()

	if _, err := conn.Exec(
		ctx,
		`TRUNCATE "notification", "feeding", "fish_batch", "water_reading", "pond", "farm"`,
	); err != nil {
		t.Errorf("fail to clean-up tables: %v", err)
	}
}
