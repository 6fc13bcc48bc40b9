package batch

import (
	"context"

	"github.com/jackc/pgx/v4"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	kpgerr "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/errors"
	kpool "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/pool"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/scope"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

type batchPG struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.BatchInterface {
	return &batchPG{pool: pool}
}

const columns = `"batch_id", "tenant_id", "pond_id", "species", "count", "stocked_at", "created_at"`

func scan(row pgx.Row) (kdb.FishBatch, error) {
	b := kdb.FishBatch{}
	err := row.Scan(&b.BatchId, &b.TenantId, &b.PondId, &b.Species, &b.Count, &b.StockedAt, &b.CreatedAt)
	return b, err
}

func (m *batchPG) Stock(ctx context.Context, spec kdb.BatchSpec) (kdb.FishBatch, error) {
	if err := spec.Validate(); err != nil {
		return kdb.FishBatch{}, err
	}
	return scope.Run(ctx, m.pool, func(tx kpool.Tx, _ tenant.Id) (kdb.FishBatch, error) {
		return scan(tx.QueryRow(
			ctx,
			`INSERT INTO "fish_batch" ("pond_id", "species", "count", "stocked_at")
			VALUES ($1, $2, $3, $4) RETURNING `+columns,
			spec.PondId, spec.Species, spec.Count, spec.StockedAt,
		))
	})
}

func (m *batchPG) Get(ctx context.Context, batchId string) (kdb.FishBatch, error) {
	return scope.Run(ctx, m.pool, func(tx kpool.Tx, _ tenant.Id) (kdb.FishBatch, error) {
		b, err := scan(tx.QueryRow(ctx, `SELECT `+columns+` FROM "fish_batch" WHERE "batch_id" = $1`, batchId))
		if err != nil {
			return kdb.FishBatch{}, kpgerr.NoRowsAsMissing(err, "fish_batch", batchId)
		}
		return b, nil
	})
}

func (m *batchPG) List(ctx context.Context, query kdb.BatchQuery) ([]kdb.FishBatch, error) {
	return scope.Run(ctx, m.pool, func(tx kpool.Tx, _ tenant.Id) ([]kdb.FishBatch, error) {
		rows, err := tx.Query(
			ctx,
			`SELECT `+columns+` FROM "fish_batch"
			WHERE $1 = '' OR "pond_id"::text = $1
			ORDER BY "stocked_at", "batch_id"`,
			query.PondId,
		)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		batches := []kdb.FishBatch{}
		for rows.Next() {
			b, err := scan(rows)
			if err != nil {
				return nil, err
			}
			batches = append(batches, b)
		}
		return batches, rows.Err()
	})
}

func (m *batchPG) SetCount(ctx context.Context, batchId string, count int) (kdb.FishBatch, error) {
	if count < 0 {
		return kdb.FishBatch{}, kdb.Invalid{Field: "count", Reason: "should not be negative"}
	}
	return scope.Run(ctx, m.pool, func(tx kpool.Tx, _ tenant.Id) (kdb.FishBatch, error) {
		b, err := scan(tx.QueryRow(
			ctx,
			`UPDATE "fish_batch" SET "count" = $2 WHERE "batch_id" = $1 RETURNING `+columns,
			batchId, count,
		))
		if err != nil {
			return kdb.FishBatch{}, kpgerr.NoRowsAsMissing(err, "fish_batch", batchId)
		}
		return b, nil
	})
}
