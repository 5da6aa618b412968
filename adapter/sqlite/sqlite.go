// Package sqlite provides a stash adapter that keeps each document in one row
// of a SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spetersoncode/stash"
	"github.com/spetersoncode/stash/codec"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const schema = `CREATE TABLE IF NOT EXISTS stash_documents (
	name       TEXT PRIMARY KEY,
	body       BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// DB is a SQLite database holding stash documents.
type DB struct {
	sqlDB *sql.DB
	path  string
}

// Open opens (or creates) the SQLite database at path and ensures the
// document table exists.
func Open(path string) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &DB{sqlDB: sqlDB, path: cleanPath}, nil
}

// Close closes the SQLite handle.
func (db *DB) Close() error {
	if db == nil || db.sqlDB == nil {
		return nil
	}
	return db.sqlDB.Close()
}

// Names lists the stored document names in ascending order.
func (db *DB) Names(ctx context.Context) ([]string, error) {
	rows, err := db.sqlDB.QueryContext(ctx, `SELECT name FROM stash_documents ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan document name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Adapter stores a value of type T as the body of one named document.
type Adapter[T any] struct {
	db    *DB
	name  string
	codec codec.Codec
}

// Option configures an Adapter.
type Option func(*options)

type options struct {
	codec codec.Codec
}

// WithCodec sets the body serialization format (default compact JSON).
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// Document returns an adapter for the document called name in db.
func Document[T any](db *DB, name string, opts ...Option) *Adapter[T] {
	o := &options{codec: codec.JSON{}}
	for _, opt := range opts {
		opt(o)
	}
	return &Adapter[T]{db: db, name: name, codec: o.codec}
}

// Location returns "<path>#<name>", used in error messages.
func (a *Adapter[T]) Location() string {
	return a.db.path + "#" + a.name
}

// Read loads and decodes the document. A missing row or empty body yields nil.
func (a *Adapter[T]) Read(ctx context.Context) (*T, error) {
	var body []byte
	err := a.db.sqlDB.QueryRowContext(ctx,
		`SELECT body FROM stash_documents WHERE name = ?`, a.name,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, a.storageError(stash.OpRead, err)
	}

	data, err := codec.Decode[T](a.codec, body)
	if err != nil {
		return nil, stash.NewMalformedError(a.Location(), err)
	}
	return data, nil
}

// Write replaces the document body. A nil data deletes the row.
func (a *Adapter[T]) Write(ctx context.Context, data *T) error {
	if data == nil {
		_, err := a.db.sqlDB.ExecContext(ctx, `DELETE FROM stash_documents WHERE name = ?`, a.name)
		if err != nil {
			return a.storageError(stash.OpWrite, err)
		}
		return nil
	}

	body, err := codec.Encode(a.codec, data)
	if err != nil {
		return stash.NewStorageError(stash.OpWrite, a.Location(), err)
	}

	_, err = a.db.sqlDB.ExecContext(ctx,
		`INSERT INTO stash_documents (name, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		a.name, body, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return a.storageError(stash.OpWrite, err)
	}
	return nil
}

func (a *Adapter[T]) storageError(op stash.Op, err error) *stash.StorageError {
	if isBusy(err) {
		return stash.NewTransientStorageError(op, a.Location(), err)
	}
	return stash.NewStorageError(op, a.Location(), err)
}

// isBusy reports whether err is a SQLite lock contention error.
func isBusy(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED:
			return true
		}
	}
	return false
}

var _ stash.Adapter[struct{}] = (*Adapter[struct{}])(nil)
