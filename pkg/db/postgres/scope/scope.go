// Package scope opens transactions bound to the tenant of the context.
//
// The tenant is handed to Postgres as the transaction-local setting app.tenant_id,
// which row level security policies compare with each row's tenant_id.
// Being transaction-local, the setting disappears on commit or rollback and never
// leaks to the next user of the pooled connection.
package scope

import (
	"context"

	kpgerr "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/errors"
	kpool "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/pool"
	xe "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/errors"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

// Setting is the name of the session variable policies read.
const Setting = "app.tenant_id"

// Begin starts a transaction and binds the tenant of ctx to it.
//
// Without a tenant in ctx it returns tenant.ErrNoTenant and does not touch the database.
func Begin(ctx context.Context, b kpool.Begin) (kpool.Tx, tenant.Id, error) {
	id, err := tenant.From(ctx)
	if err != nil {
		return nil, "", err
	}

	tx, err := b.Begin(ctx)
	if err != nil {
		return nil, "", xe.Wrap(err)
	}
	if _, err := tx.Exec(ctx, `SELECT set_config($1, $2, true)`, Setting, id.String()); err != nil {
		tx.Rollback(context.Background())
		return nil, "", xe.Wrap(err)
	}
	return tx, id, nil
}

// Run runs f in a tenant-bound transaction and commits when f succeeds.
//
// Errors from f and from commit are translated into errors of package db.
func Run[T any](ctx context.Context, b kpool.Begin, f func(tx kpool.Tx, id tenant.Id) (T, error)) (T, error) {
	tx, id, err := Begin(ctx, b)
	if err != nil {
		return *new(T), err
	}
	defer tx.Rollback(context.Background())

	ret, err := f(tx, id)
	if err != nil {
		return *new(T), kpgerr.Translate(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return *new(T), kpgerr.Translate(err)
	}
	return ret, nil
}

// Exec is Run for f without result.
func Exec(ctx context.Context, b kpool.Begin, f func(tx kpool.Tx, id tenant.Id) error) error {
	_, err := Run(ctx, b, func(tx kpool.Tx, id tenant.Id) (struct{}, error) {
		return struct{}{}, f(tx, id)
	})
	return err
}
