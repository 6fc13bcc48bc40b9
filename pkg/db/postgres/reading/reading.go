package reading

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	kpgerr "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/errors"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/marshal"
	kpool "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/pool"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/scope"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

type readingPG struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.ReadingInterface {
	return &readingPG{pool: pool}
}

const columns = `"reading_id", "tenant_id", "pond_id", "client_id",
	"temperature", "ph", "dissolved_oxygen", "recorded_at", "received_at"`

func scan(row pgx.Row) (kdb.WaterReading, error) {
	r := kdb.WaterReading{}
	var temperature, ph, do pgtype.Float8
	if err := row.Scan(
		&r.ReadingId, &r.TenantId, &r.PondId, &r.ClientId,
		&temperature, &ph, &do, &r.RecordedAt, &r.ReceivedAt,
	); err != nil {
		return kdb.WaterReading{}, err
	}
	r.Temperature = marshal.Float8Ptr(temperature)
	r.PH = marshal.Float8Ptr(ph)
	r.DissolvedOxygen = marshal.Float8Ptr(do)
	return r, nil
}

func (m *readingPG) Record(ctx context.Context, spec kdb.ReadingSpec) (kdb.WaterReading, bool, error) {
	if err := spec.Validate(); err != nil {
		return kdb.WaterReading{}, false, err
	}

	type result struct {
		reading kdb.WaterReading
		created bool
	}
	res, err := scope.Run(ctx, m.pool, func(tx kpool.Tx, _ tenant.Id) (result, error) {
		r, err := scan(tx.QueryRow(
			ctx,
			`INSERT INTO "water_reading"
				("pond_id", "client_id", "temperature", "ph", "dissolved_oxygen", "recorded_at")
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT ("tenant_id", "client_id") DO NOTHING
			RETURNING `+columns,
			spec.PondId, spec.ClientId,
			marshal.Float8(spec.Temperature), marshal.Float8(spec.PH), marshal.Float8(spec.DissolvedOxygen),
			spec.RecordedAt,
		))
		if err == nil {
			return result{reading: r, created: true}, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) || spec.ClientId == nil {
			return result{}, err
		}

		// conflicted on client id: it is a replay.
		r, err = scan(tx.QueryRow(
			ctx, `SELECT `+columns+` FROM "water_reading" WHERE "client_id" = $1`, *spec.ClientId,
		))
		if err != nil {
			return result{}, err
		}
		return result{reading: r, created: false}, nil
	})
	if err != nil {
		return kdb.WaterReading{}, false, err
	}
	return res.reading, res.created, nil
}

func (m *readingPG) Get(ctx context.Context, readingId string) (kdb.WaterReading, error) {
	return scope.Run(ctx, m.pool, func(tx kpool.Tx, _ tenant.Id) (kdb.WaterReading, error) {
		r, err := scan(tx.QueryRow(
			ctx, `SELECT `+columns+` FROM "water_reading" WHERE "reading_id" = $1`, readingId,
		))
		if err != nil {
			return kdb.WaterReading{}, kpgerr.NoRowsAsMissing(err, "water_reading", readingId)
		}
		return r, nil
	})
}

func (m *readingPG) List(ctx context.Context, query kdb.ReadingQuery) ([]kdb.WaterReading, error) {
	where := []string{}
	args := []any{}
	cond := func(expr string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(expr, len(args)))
	}
	if query.PondId != "" {
		cond(`"pond_id" = $%d`, query.PondId)
	}
	if query.Since != nil {
		cond(`$%d <= "recorded_at"`, *query.Since)
	}
	if query.Until != nil {
		cond(`"recorded_at" < $%d`, *query.Until)
	}

	sql := `SELECT ` + columns + ` FROM "water_reading"`
	if len(where) != 0 {
		sql += ` WHERE ` + strings.Join(where, " AND ")
	}
	sql += ` ORDER BY "recorded_at" DESC, "received_at" DESC`
	if 0 < query.Limit {
		args = append(args, query.Limit)
		sql += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	return scope.Run(ctx, m.pool, func(tx kpool.Tx, _ tenant.Id) ([]kdb.WaterReading, error) {
		rows, err := tx.Query(ctx, sql, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		readings := []kdb.WaterReading{}
		for rows.Next() {
			r, err := scan(rows)
			if err != nil {
				return nil, err
			}
			readings = append(readings, r)
		}
		return readings, rows.Err()
	})
}
