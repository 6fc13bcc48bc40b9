package feeding

import (
	"context"

	"github.com/jackc/pgx/v4"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	kpool "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/pool"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/scope"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

type feedingPG struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.FeedingInterface {
	return &feedingPG{pool: pool}
}

const columns = `"feeding_id", "tenant_id", "batch_id", "feed_kg", "fed_at", "created_at"`

func scan(row pgx.Row) (kdb.FeedingRecord, error) {
	f := kdb.FeedingRecord{}
	err := row.Scan(&f.FeedingId, &f.TenantId, &f.BatchId, &f.FeedKg, &f.FedAt, &f.CreatedAt)
	return f, err
}

func (m *feedingPG) Record(ctx context.Context, spec kdb.FeedingSpec) (kdb.FeedingRecord, error) {
	if err := spec.Validate(); err != nil {
		return kdb.FeedingRecord{}, err
	}
	return scope.Run(ctx, m.pool, func(tx kpool.Tx, _ tenant.Id) (kdb.FeedingRecord, error) {
		return scan(tx.QueryRow(
			ctx,
			`INSERT INTO "feeding" ("batch_id", "feed_kg", "fed_at") VALUES ($1, $2, $3) RETURNING `+columns,
			spec.BatchId, spec.FeedKg, spec.FedAt,
		))
	})
}

func (m *feedingPG) List(ctx context.Context, batchId string) ([]kdb.FeedingRecord, error) {
	return scope.Run(ctx, m.pool, func(tx kpool.Tx, _ tenant.Id) ([]kdb.FeedingRecord, error) {
		var found bool
		if err := tx.QueryRow(
			ctx, `SELECT EXISTS (SELECT 1 FROM "fish_batch" WHERE "batch_id" = $1)`, batchId,
		).Scan(&found); err != nil {
			return nil, err
		}
		if !found {
			return nil, kdb.Missing{Table: "fish_batch", Identity: batchId}
		}

		rows, err := tx.Query(
			ctx,
			`SELECT `+columns+` FROM "feeding" WHERE "batch_id" = $1 ORDER BY "fed_at" DESC, "feeding_id"`,
			batchId,
		)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		feedings := []kdb.FeedingRecord{}
		for rows.Next() {
			f, err := scan(rows)
			if err != nil {
				return nil, err
			}
			feedings = append(feedings, f)
		}
		return feedings, rows.Err()
	})
}
