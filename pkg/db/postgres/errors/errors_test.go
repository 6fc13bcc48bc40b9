package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	kpgerr "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/errors"
)

func TestTranslate(t *testing.T) {
	for name, testcase := range map[string]struct {
		when error
		then error
	}{
		"row level security violation": {
			when: &pgconn.PgError{Code: pgerrcode.InsufficientPrivilege, Message: `new row violates row-level security policy for table "pond"`},
			then: kdb.ErrTenantViolation,
		},
		"unique violation": {
			when: &pgconn.PgError{Code: pgerrcode.UniqueViolation},
			then: kdb.ErrConflict,
		},
		"foreign key to a missing parent": {
			when: &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, Detail: `Key (tenant_id, farm_id)=(...) is not present in table "farm".`},
			then: kdb.ErrMissing,
		},
		"foreign key from remaining children": {
			when: &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, Detail: `Key (tenant_id, farm_id)=(...) is still referenced from table "pond".`},
			then: kdb.ErrConflict,
		},
		"tenant_id left NULL because no tenant is bound": {
			when: &pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "tenant_id"},
			then: kdb.ErrNoTenant,
		},
		"check violation": {
			when: &pgconn.PgError{Code: pgerrcode.CheckViolation},
			then: kdb.ErrInvalid,
		},
		"malformed uuid": {
			when: fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation}),
			then: kdb.ErrMissing,
		},
	} {
		t.Run(name, func(t *testing.T) {
			got := kpgerr.Translate(testcase.when)
			if !errors.Is(got, testcase.then) {
				t.Errorf("expected %v, got %v", testcase.then, got)
			}
			pgerr := new(pgconn.PgError)
			if !errors.As(got, &pgerr) {
				t.Errorf("original error is lost: %v", got)
			}
		})
	}

	t.Run("unrelated errors pass through", func(t *testing.T) {
		boom := errors.New("boom")
		if got := kpgerr.Translate(boom); got != boom {
			t.Errorf("got %v", got)
		}
		if kpgerr.Translate(nil) != nil {
			t.Error("nil is translated into non-nil")
		}
	})

	t.Run("no rows is a missing record", func(t *testing.T) {
		err := kpgerr.NoRowsAsMissing(pgx.ErrNoRows, "pond", "p-1")
		var missing kdb.Missing
		if !errors.As(err, &missing) || missing.Table != "pond" || missing.Identity != "p-1" {
			t.Errorf("unexpected: %v", err)
		}
	})
}
