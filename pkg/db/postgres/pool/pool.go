// Package pool narrows pgx/pgxpool down to interfaces the repositories depend on.
//
// pgx returns concrete types (pgx.Tx, *pgxpool.Conn, *pgxpool.Pool) whose methods
// return other concrete types, so they cannot satisfy these interfaces directly.
// Wrap the pool once; everything derived from it is wrapped as well.
package pool

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Begin is something which starts a transaction: a pool, a connection or a transaction
// (which starts a savepoint).
type Begin interface {
	Begin(ctx context.Context) (Tx, error)
}

// BeginTx starts a transaction with options.
type BeginTx interface {
	Begin
	BeginTx(ctx context.Context, opts pgx.TxOptions) (Tx, error)
}

// Queryer sends SQL. See pgx for each method.
type Queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Tx is the subset of pgx.Tx in use.
type Tx interface {
	Queryer
	Begin

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Conn is the subset of *pgxpool.Conn in use.
type Conn interface {
	BeginTx
	Queryer

	Ping(ctx context.Context) error
	Release()
}

// Pool is the subset of *pgxpool.Pool in use.
type Pool interface {
	BeginTx

	Acquire(ctx context.Context) (Conn, error)
	Ping(ctx context.Context) error
	Close()
}

type tx struct{ base pgx.Tx }

var _ Tx = tx{}

func wrapTx(t pgx.Tx, err error) (Tx, error) {
	if t == nil {
		return nil, err
	}
	return tx{base: t}, err
}

func (t tx) Begin(ctx context.Context) (Tx, error) {
	return wrapTx(t.base.Begin(ctx))
}

func (t tx) Commit(ctx context.Context) error   { return t.base.Commit(ctx) }
func (t tx) Rollback(ctx context.Context) error { return t.base.Rollback(ctx) }

func (t tx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.base.Exec(ctx, sql, args...)
}

func (t tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return t.base.Query(ctx, sql, args...)
}

func (t tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.base.QueryRow(ctx, sql, args...)
}

type conn struct{ base *pgxpool.Conn }

var _ Conn = conn{}

func (c conn) Begin(ctx context.Context) (Tx, error) {
	return wrapTx(c.base.Begin(ctx))
}

func (c conn) BeginTx(ctx context.Context, opts pgx.TxOptions) (Tx, error) {
	return wrapTx(c.base.BeginTx(ctx, opts))
}

func (c conn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return c.base.Exec(ctx, sql, args...)
}

func (c conn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return c.base.Query(ctx, sql, args...)
}

func (c conn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return c.base.QueryRow(ctx, sql, args...)
}

func (c conn) Ping(ctx context.Context) error { return c.base.Ping(ctx) }
func (c conn) Release()                       { c.base.Release() }

type pool struct{ base *pgxpool.Pool }

var _ Pool = pool{}

func (p pool) Begin(ctx context.Context) (Tx, error) {
	return wrapTx(p.base.Begin(ctx))
}

func (p pool) BeginTx(ctx context.Context, opts pgx.TxOptions) (Tx, error) {
	return wrapTx(p.base.BeginTx(ctx, opts))
}

func (p pool) Acquire(ctx context.Context) (Conn, error) {
	c, err := p.base.Acquire(ctx)
	if c == nil {
		return nil, err
	}
	return conn{base: c}, err
}

func (p pool) Ping(ctx context.Context) error { return p.base.Ping(ctx) }
func (p pool) Close()                         { p.base.Close() }

func Wrap(p *pgxpool.Pool) Pool {
	return pool{base: p}
}
