// Package bolt provides a stash adapter that keeps each document under one
// key of a bbolt bucket.
package bolt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spetersoncode/stash"
	"github.com/spetersoncode/stash/codec"
	bbolt "go.etcd.io/bbolt"
)

// DefaultBucket holds every document.
const DefaultBucket = "stash"

// DefaultTimeout bounds how long Open waits for the file lock.
const DefaultTimeout = time.Second

// DB is a bbolt database holding stash documents.
type DB struct {
	handle *bbolt.DB
	path   string
	bucket []byte
}

// OpenOption configures Open.
type OpenOption func(*openOptions)

type openOptions struct {
	bucket  string
	timeout time.Duration
}

// WithBucket sets the bucket documents are stored in.
func WithBucket(name string) OpenOption {
	return func(o *openOptions) {
		o.bucket = name
	}
}

// WithTimeout sets how long Open waits for another process to release the
// file lock. Zero waits forever.
func WithTimeout(d time.Duration) OpenOption {
	return func(o *openOptions) {
		o.timeout = d
	}
}

// Open opens (or creates) the bbolt file at path and ensures the bucket
// exists. A file locked by another process past the timeout yields a
// transient *stash.StorageError.
func Open(path string, opts ...OpenOption) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	o := &openOptions{bucket: DefaultBucket, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(o)
	}
	if o.bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, stash.NewStorageError(stash.OpRead, cleanPath, err)
	}

	handle, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: o.timeout})
	if err != nil {
		if errors.Is(err, bbolt.ErrTimeout) {
			return nil, stash.NewTransientStorageError(stash.OpRead, cleanPath, err)
		}
		return nil, stash.NewStorageError(stash.OpRead, cleanPath, err)
	}

	bucket := []byte(o.bucket)
	err = handle.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
			return fmt.Errorf("failed to create bucket %q: %w", o.bucket, err)
		}
		return nil
	})
	if err != nil {
		_ = handle.Close()
		return nil, err
	}

	return &DB{handle: handle, path: cleanPath, bucket: bucket}, nil
}

// Close releases the file lock and closes the database.
func (db *DB) Close() error {
	if db == nil || db.handle == nil {
		return nil
	}
	return db.handle.Close()
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Keys lists the stored document keys in ascending order.
func (db *DB) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var keys []string
	err := db.handle.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(db.bucket)
		if b == nil {
			return fmt.Errorf("bucket %s not found", db.bucket)
		}
		return b.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return keys, nil
}

// Adapter stores a value of type T under one key.
type Adapter[T any] struct {
	db    *DB
	key   []byte
	codec codec.Codec
}

// Option configures an Adapter.
type Option func(*options)

type options struct {
	codec codec.Codec
}

// WithCodec sets the value serialization format (default compact JSON).
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// Document returns an adapter for the document stored under key in db.
func Document[T any](db *DB, key string, opts ...Option) *Adapter[T] {
	o := &options{codec: codec.JSON{}}
	for _, opt := range opts {
		opt(o)
	}
	return &Adapter[T]{db: db, key: []byte(key), codec: o.codec}
}

// Location returns "<path>#<key>", used in error messages.
func (a *Adapter[T]) Location() string {
	return a.db.path + "#" + string(a.key)
}

// Read loads and decodes the document. A missing key or empty value yields nil.
func (a *Adapter[T]) Read(ctx context.Context) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, stash.NewStorageError(stash.OpRead, a.Location(), err)
	}

	var body []byte
	err := a.db.handle.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(a.db.bucket)
		if b == nil {
			return fmt.Errorf("bucket %s not found", a.db.bucket)
		}
		// Values are only valid for the life of the transaction.
		if v := b.Get(a.key); v != nil {
			body = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, stash.NewStorageError(stash.OpRead, a.Location(), err)
	}

	data, err := codec.Decode[T](a.codec, body)
	if err != nil {
		return nil, stash.NewMalformedError(a.Location(), err)
	}
	return data, nil
}

// Write replaces the document. A nil data deletes the key.
func (a *Adapter[T]) Write(ctx context.Context, data *T) error {
	if err := ctx.Err(); err != nil {
		return stash.NewStorageError(stash.OpWrite, a.Location(), err)
	}

	var body []byte
	if data != nil {
		raw, err := codec.Encode(a.codec, data)
		if err != nil {
			return stash.NewStorageError(stash.OpWrite, a.Location(), err)
		}
		body = raw
	}

	err := a.db.handle.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(a.db.bucket)
		if b == nil {
			return fmt.Errorf("bucket %s not found", a.db.bucket)
		}
		if data == nil {
			return b.Delete(a.key)
		}
		return b.Put(a.key, body)
	})
	if err != nil {
		return stash.NewStorageError(stash.OpWrite, a.Location(), err)
	}
	return nil
}

var _ stash.Adapter[struct{}] = (*Adapter[struct{}])(nil)
