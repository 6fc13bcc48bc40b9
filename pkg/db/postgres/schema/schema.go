// Package schema upgrades the database schema.
//
// A schema repository is a file tree whose top-level directories are named by
// version numbers ("1", "2", ...). Each directory holds .sql files applied in
// lexical order. The latest applied version is kept in table "schema_version".
package schema

import (
	"cmp"
	"context"
	"embed"
	"errors"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"

	kpool "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/pool"
	xe "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/errors"
)

//go:embed repository
var embedded embed.FS

// Repository is the schema repository built into the binary.
func Repository() fs.FS {
	sub, err := fs.Sub(embedded, "repository")
	if err != nil {
		panic(err) // the directory is embedded at build time
	}
	return sub
}

type pgSchema struct {
	pool       kpool.Pool
	repository fs.FS
}

// New creates a schema upgrader over repository.
func New(pool kpool.Pool, repository fs.FS) *pgSchema {
	return &pgSchema{pool: pool, repository: repository}
}

type Version struct {
	Number int
	Root   string
}

// Apply runs every .sql file of the version.
func (v Version) Apply(ctx context.Context, repository fs.FS, q kpool.Queryer) error {
	return fs.WalkDir(repository, v.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".sql") {
			return nil
		}
		query, err := fs.ReadFile(repository, p)
		if err != nil {
			return err
		}
		if _, err := q.Exec(ctx, string(query)); err != nil {
			return xe.WrapWithNote(p, err)
		}
		return nil
	})
}

func (s *pgSchema) Version(ctx context.Context) (int, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return -1, xe.Wrap(err)
	}
	defer conn.Release()
	return current(ctx, conn)
}

func current(ctx context.Context, q kpool.Queryer) (int, error) {
	var version *int
	if err := q.QueryRow(
		ctx, `SELECT max("version") FROM "schema_version"`,
	).Scan(&version); err != nil {
		if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) && pgerr.Code == pgerrcode.UndefinedTable {
			return 0, nil
		}
		return -1, xe.Wrap(err)
	}
	if version == nil {
		return 0, nil
	}
	return *version, nil
}

// Upgrade applies versions newer than the current one, in one transaction.
func (s *pgSchema) Upgrade(ctx context.Context) error {
	versions, err := Versions(s.repository)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer tx.Rollback(context.Background())

	// serialize concurrent upgraders
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('aquafarm.schema'))`); err != nil {
		return xe.Wrap(err)
	}

	cur, err := current(ctx, tx)
	if err != nil {
		return err
	}

	for _, v := range versions {
		if v.Number <= cur {
			continue
		}
		if err := v.Apply(ctx, s.repository, tx); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM "schema_version"`); err != nil {
			return xe.Wrap(err)
		}
		if _, err := tx.Exec(
			ctx, `INSERT INTO "schema_version" ("version") VALUES ($1)`, v.Number,
		); err != nil {
			return xe.Wrap(err)
		}
	}

	return xe.Wrap(tx.Commit(ctx))
}

// Versions lists versions in the repository, in ascending order.
//
// Top-level entries which are not directories named by a number are ignored.
func Versions(repository fs.FS) ([]Version, error) {
	entries, err := fs.ReadDir(repository, ".")
	if err != nil {
		return nil, xe.Wrap(err)
	}

	versions := make([]Version, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		n, err := strconv.Atoi(e.Name())
		if err != nil || n <= 0 {
			continue
		}
		versions = append(versions, Version{Number: n, Root: path.Clean(e.Name())})
	}
	slices.SortFunc(versions, func(a, b Version) int { return cmp.Compare(a.Number, b.Number) })
	return versions, nil
}

// Latest returns the newest version number in the repository, or 0.
func Latest(repository fs.FS) (int, error) {
	versions, err := Versions(repository)
	if err != nil || len(versions) == 0 {
		return 0, err
	}
	return versions[len(versions)-1].Number, nil
}
