package notification

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

type notificationPG struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.NotificationInterface {
	return &notificationPG{pool: pool}
}

const columns = `"notification_id", "tenant_id", "kind", "message", "pond_id", "reading_id", "created_at", "read_at"`

func scan(row pgx.Row) (kdb.Notification, error) {
	n := kdb.Notification{}
	var kind string
	var readAt pgtype.Timestamptz
	if err := row.Scan(
		&n.NotificationId, &n.TenantId, &kind, &n.Message, &n.PondId, &n.ReadingId, &n.CreatedAt, &readAt,
	); err != nil {
		return kdb.Notification{}, err
	}
	n.Kind = kdb.NotificationKind(kind)
	n.ReadAt = marshal.Timestamptz(readAt)
	return n, nil
}

func (m *notificationPG) Create(ctx context.Context, spec kdb.NotificationSpec) (kdb.Notification, error) {
	return scope.Run(ctx, m.pool, func(tx kpool.Tx, _ tenant.Id) (kdb.Notification, error) {
		return scan(tx.QueryRow(
			ctx,
			`INSERT INTO "notification" ("kind", "message", "pond_id", "reading_id")
			VALUES ($1, $2, $3, $4) RETURNING `+columns,
			string(spec.Kind), spec.Message, spec.PondId, spec.ReadingId,
		))
	})
}

func (m *notificationPG) List(ctx context.Context, query kdb.NotificationQuery) ([]kdb.Notification, error) {
	return scope.Run(ctx, m.pool, func(tx kpool.Tx, _ tenant.Id) ([]kdb.Notification, error) {
		rows, err := tx.Query(
			ctx,
			`SELECT `+columns+` FROM "notification"
			WHERE NOT $1 OR "read_at" IS NULL
			ORDER BY "created_at" DESC, "notification_id"`,
			query.UnreadOnly,
		)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		ns := []kdb.Notification{}
		for rows.Next() {
			n, err := scan(rows)
			if err != nil {
				return nil, err
			}
			ns = append(ns, n)
		}
		return ns, rows.Err()
	})
}

func (m *notificationPG) MarkRead(ctx context.Context, notificationId string) (kdb.Notification, error) {
	return scope.Run(ctx, m.pool, func(tx kpool.Tx, _ tenant.Id) (kdb.Notification, error) {
		n, err := scan(tx.QueryRow(
			ctx,
			`UPDATE "notification" SET "read_at" = coalesce("read_at", now())
			WHERE "notification_id" = $1 RETURNING `+columns,
			notificationId,
		))
		if err != nil {
			return kdb.Notification{}, kpgerr.NoRowsAsMissing(err, "notification", notificationId)
		}
		return n, nil
	})
}
