package db

import "context"

// Database is the tenant-scoped storage of AquaFarm.
//
// Every method of every interface reads the tenant from its context.
// Without a tenant they fail with ErrNoTenant; they never return "all tenants".
type Database interface {
	Farms() FarmInterface
	Ponds() PondInterface
	Readings() ReadingInterface
	Batches() BatchInterface
	Feedings() FeedingInterface
	Notifications() NotificationInterface

	Schema() SchemaInterface

	Ping(ctx context.Context) error
	Close() error
}

type SchemaInterface interface {
	// Version returns the applied schema version. 0 means "nothing is applied".
	Version(ctx context.Context) (int, error)

	// Upgrade applies every schema version newer than the current one.
	Upgrade(ctx context.Context) error
}
