package pond

import (
	"context"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	kpgerr "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/errors"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/marshal"
	kpool "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/pool"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/scope"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

type pondPG struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.PondInterface {
	return &pondPG{pool: pool}
}

const columns = `"pond_id", "tenant_id", "farm_id", "name", "volume_m3", "created_at"`

func scan(row pgx.Row) (kdb.Pond, error) {
	p := kdb.Pond{}
	var volume pgtype.Float8
	if err := row.Scan(&p.PondId, &p.TenantId, &p.FarmId, &p.Name, &volume, &p.CreatedAt); err != nil {
		return kdb.Pond{}, err
	}
	p.VolumeM3 = marshal.Float8Ptr(volume)
	return p, nil
}

func (m *pondPG) Create(ctx context.Context, spec kdb.PondSpec) (kdb.Pond, error) {
	if err := spec.Validate(); err != nil {
		return kdb.Pond{}, err
	}
	return scope.Run(ctx, m.pool, func(tx kpool.Tx, _ tenant.Id) (kdb.Pond, error) {
		// the composite foreign key refuses farms of other tenants.
		return scan(tx.QueryRow(
			ctx,
			`INSERT INTO "pond" ("farm_id", "name", "volume_m3") VALUES ($1, $2, $3) RETURNING `+columns,
			spec.FarmId, spec.Name, marshal.Float8(spec.VolumeM3),
		))
	})
}

func (m *pondPG) Get(ctx context.Context, pondId string) (kdb.Pond, error) {
	return scope.Run(ctx, m.pool, func(tx kpool.Tx, _ tenant.Id) (kdb.Pond, error) {
		p, err := scan(tx.QueryRow(ctx, `SELECT `+columns+` FROM "pond" WHERE "pond_id" = $1`, pondId))
		if err != nil {
			return kdb.Pond{}, kpgerr.NoRowsAsMissing(err, "pond", pondId)
		}
		return p, nil
	})
}

func (m *pondPG) List(ctx context.Context, query kdb.PondQuery) ([]kdb.Pond, error) {
	return scope.Run(ctx, m.pool, func(tx kpool.Tx, _ tenant.Id) ([]kdb.Pond, error) {
		var (
			rows pgx.Rows
			err  error
		)
		if query.FarmId == "" {
			rows, err = tx.Query(ctx, `SELECT `+columns+` FROM "pond" ORDER BY "created_at", "pond_id"`)
		} else {
			rows, err = tx.Query(
				ctx,
				`SELECT `+columns+` FROM "pond" WHERE "farm_id" = $1 ORDER BY "created_at", "pond_id"`,
				query.FarmId,
			)
		}
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		ponds := []kdb.Pond{}
		for rows.Next() {
			p, err := scan(rows)
			if err != nil {
				return nil, err
			}
			ponds = append(ponds, p)
		}
		return ponds, rows.Err()
	})
}

func (m *pondPG) Delete(ctx context.Context, pondId string) error {
	return scope.Exec(ctx, m.pool, func(tx kpool.Tx, _ tenant.Id) error {
		tag, err := tx.Exec(ctx, `DELETE FROM "pond" WHERE "pond_id" = $1`, pondId)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return kdb.Missing{Table: "pond", Identity: pondId}
		}
		return nil
	})
}
