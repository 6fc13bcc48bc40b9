// Package memory is an in-process Database.
//
// There is no row-level security below this engine. Isolation is enforced by one
// chokepoint: every repository reaches rows only through Database.view or
// Database.update, which resolve the tenant from the context and hand out the
// partition of that tenant alone. Without a tenant they fail with kdb.ErrNoTenant.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

type partition struct {
	farms         []kdb.Farm
	ponds         []kdb.Pond
	readings      []kdb.WaterReading
	batches       []kdb.FishBatch
	feedings      []kdb.FeedingRecord
	notifications []kdb.Notification
}

type Database struct {
	mu         sync.RWMutex
	partitions map[tenant.Id]*partition

	now   func() time.Time
	newId func() string
}

var _ kdb.Database = &Database{}

type Option func(*Database)

// WithClock replaces the clock used for CreatedAt and similar timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Database) { d.now = now }
}

func New(options ...Option) *Database {
	d := &Database{
		partitions: map[tenant.Id]*partition{},
		now:        time.Now,
		newId:      uuid.NewString,
	}
	for _, o := range options {
		o(d)
	}
	return d
}

// view runs f over the partition of the tenant bound to ctx.
func (d *Database) view(ctx context.Context, f func(id tenant.Id, p *partition) error) error {
	id, err := tenant.From(ctx)
	if err != nil {
		return err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.partitions[id]
	if !ok {
		p = &partition{}
	}
	return f(id, p)
}

// update is view with write access. Changes made by f are kept even if f fails,
// so f should validate before it mutates.
func (d *Database) update(ctx context.Context, f func(id tenant.Id, p *partition) error) error {
	id, err := tenant.From(ctx)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.partitions[id]
	if !ok {
		p = &partition{}
		d.partitions[id] = p
	}
	return f(id, p)
}

func (d *Database) Farms() kdb.FarmInterface                 { return &farms{db: d} }
func (d *Database) Ponds() kdb.PondInterface                 { return &ponds{db: d} }
func (d *Database) Readings() kdb.ReadingInterface           { return &readings{db: d} }
func (d *Database) Batches() kdb.BatchInterface              { return &batches{db: d} }
func (d *Database) Feedings() kdb.FeedingInterface           { return &feedings{db: d} }
func (d *Database) Notifications() kdb.NotificationInterface { return &notifications{db: d} }

func (d *Database) Schema() kdb.SchemaInterface { return schemaless{} }

func (d *Database) Ping(context.Context) error { return nil }

func (d *Database) Close() error { return nil }

type schemaless struct{}

func (schemaless) Version(context.Context) (int, error) { return 0, nil }
func (schemaless) Upgrade(context.Context) error        { return nil }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func find[T any](rows []T, match func(T) bool) (int, bool) {
	for i, r := range rows {
		if match(r) {
			return i, true
		}
	}
	return -1, false
}
