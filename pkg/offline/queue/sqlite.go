package queue

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLite is a Store on a local SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the queue database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, stmt := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = FULL",
		`CREATE TABLE IF NOT EXISTS queue_item (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			payload BLOB NOT NULL,
			enqueued_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		)`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("initialize queue database: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Append(ctx context.Context, typ Type, payload []byte) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(
		ctx,
		`INSERT INTO queue_item (type, payload) VALUES (?, ?) RETURNING seq`,
		string(typ), payload,
	).Scan(&seq); err != nil {
		return 0, fmt.Errorf("append to queue: %w", err)
	}
	return seq, nil
}

func (s *SQLite) Head(ctx context.Context, n int) ([]Record, error) {
	if n <= 0 {
		return []Record{}, nil
	}
	rows, err := s.db.QueryContext(
		ctx, `SELECT seq, type, payload FROM queue_item ORDER BY seq LIMIT ?`, n,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	records := []Record{}
	for rows.Next() {
		var r Record
		var typ string
		var payload []byte
		if err := rows.Scan(&r.Seq, &typ, &payload); err != nil {
			return nil, err
		}
		r.Type = Type(typ)
		r.Payload = payload
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLite) DropThrough(ctx context.Context, seq int64) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM queue_item WHERE seq <= ?`, seq)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLite) Len(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM queue_item`).Scan(&n)
	return n, err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
