// Package sqlite keeps durable slots in a local SQLite file, the closest
// server-side analogue of the browser storage the billing form started with.
package sqlite

import (
	"context"
	"database/sql"
	"errors"

	_ "modernc.org/sqlite"

	"github.com/spsworld03/sps-bill-brew/internal/slot"
)

const schema = `
	CREATE TABLE IF NOT EXISTS durable_slots (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)
`

type Slot struct {
	db *sql.DB
}

func New(ctx context.Context, path string) (*Slot, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// One writer keeps whole-value replaces ordered and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Slot{db: db}, nil
}

func (s *Slot) Close() error {
	return s.db.Close()
}

func (s *Slot) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM durable_slots WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", slot.ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (s *Slot) Set(ctx context.Context, key string, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO durable_slots (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key)
		DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

func (s *Slot) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM durable_slots WHERE key = ?`, key)
	return err
}
