// Package errors translates Postgres failures into errors of package db.
package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
)

// Translate maps err onto sentinel errors of package db, keeping err in the chain.
//
// Errors which have no domain meaning are returned as they are.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	pgerr := new(pgconn.PgError)
	if !errors.As(err, &pgerr) {
		return err
	}

	switch pgerr.Code {
	case pgerrcode.InsufficientPrivilege:
		// raised by WITH CHECK of row level security
		return fmt.Errorf("%w: %w", kdb.ErrTenantViolation, err)
	case pgerrcode.UniqueViolation, pgerrcode.ExclusionViolation:
		return fmt.Errorf("%w: %w", kdb.ErrConflict, err)
	case pgerrcode.ForeignKeyViolation:
		if strings.Contains(pgerr.Detail, "is still referenced") {
			return fmt.Errorf("%w: %w", kdb.ErrConflict, err)
		}
		return fmt.Errorf("%w: %w", kdb.ErrMissing, err)
	case pgerrcode.NotNullViolation:
		if pgerr.ColumnName == "tenant_id" {
			return fmt.Errorf("%w: %w", kdb.ErrNoTenant, err)
		}
		return fmt.Errorf("%w: %w", kdb.ErrInvalid, err)
	case pgerrcode.CheckViolation:
		return fmt.Errorf("%w: %w", kdb.ErrInvalid, err)
	case pgerrcode.InvalidTextRepresentation:
		// an id which is not even a UUID identifies nothing.
		return fmt.Errorf("%w: %w", kdb.ErrMissing, err)
	}
	return err
}

// NoRowsAsMissing turns pgx.ErrNoRows into kdb.Missing for table and identity.
func NoRowsAsMissing(err error, table, identity string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return kdb.Missing{Table: table, Identity: identity}
	}
	return Translate(err)
}
