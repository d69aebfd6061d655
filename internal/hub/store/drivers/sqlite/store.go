// Package sqlite is the default KV driver, a single table in a SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/hub/internal/hub/store"
	_ "modernc.org/sqlite"
)

func init() {
	store.Register("sqlite", func(cfg store.DriverConfig) (store.KV, error) {
		if cfg.DatabaseFile == "" {
			return nil, errors.New("sqlite: database file is required")
		}
		s, err := NewStore(cfg.DatabaseFile)
		if err != nil {
			return nil, err
		}
		if err := s.ApplyMigrations(); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("sqlite: apply migrations: %w", err)
		}
		return s, nil
	})
}

type Store struct {
	db  *sql.DB
	dsn string
}

var _ store.KV = (*Store)(nil)

// NewStore opens dsn. Migrations are not applied; call ApplyMigrations.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// One connection: SQLite has a single writer and ":memory:" databases are
	// per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
