package farm

import (
	"context"

	"github.com/jackc/pgx/v4"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	kpgerr "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/errors"
	kpool "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/pool"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/scope"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

type farmPG struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.FarmInterface {
	return &farmPG{pool: pool}
}

const columns = `"farm_id", "tenant_id", "name", "location", "created_at"`

func scan(row pgx.Row) (kdb.Farm, error) {
	f := kdb.Farm{}
	err := row.Scan(&f.FarmId, &f.TenantId, &f.Name, &f.Location, &f.CreatedAt)
	return f, err
}

func (m *farmPG) Create(ctx context.Context, spec kdb.FarmSpec) (kdb.Farm, error) {
	if err := spec.Validate(); err != nil {
		return kdb.Farm{}, err
	}
	return scope.Run(ctx, m.pool, func(tx kpool.Tx, _ tenant.Id) (kdb.Farm, error) {
		return scan(tx.QueryRow(
			ctx,
			`INSERT INTO "farm" ("name", "location") VALUES ($1, $2) RETURNING `+columns,
			spec.Name, spec.Location,
		))
	})
}

func (m *farmPG) Get(ctx context.Context, farmId string) (kdb.Farm, error) {
	return scope.Run(ctx, m.pool, func(tx kpool.Tx, _ tenant.Id) (kdb.Farm, error) {
		f, err := scan(tx.QueryRow(ctx, `SELECT `+columns+` FROM "farm" WHERE "farm_id" = $1`, farmId))
		if err != nil {
			return kdb.Farm{}, kpgerr.NoRowsAsMissing(err, "farm", farmId)
		}
		return f, nil
	})
}

func (m *farmPG) List(ctx context.Context) ([]kdb.Farm, error) {
	return scope.Run(ctx, m.pool, func(tx kpool.Tx, _ tenant.Id) ([]kdb.Farm, error) {
		rows, err := tx.Query(ctx, `SELECT `+columns+` FROM "farm" ORDER BY "created_at", "farm_id"`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		farms := []kdb.Farm{}
		for rows.Next() {
			f, err := scan(rows)
			if err != nil {
				return nil, err
			}
			farms = append(farms, f)
		}
		return farms, rows.Err()
	})
}

func (m *farmPG) Delete(ctx context.Context, farmId string) error {
	return scope.Exec(ctx, m.pool, func(tx kpool.Tx, _ tenant.Id) error {
		tag, err := tx.Exec(ctx, `DELETE FROM "farm" WHERE "farm_id" = $1`, farmId)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return kdb.Missing{Table: "farm", Identity: farmId}
		}
		return nil
	})
}
