package bolt

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/spetersoncode/stash"
	"github.com/spetersoncode/stash/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bbolt "go.etcd.io/bbolt"
)

type settings struct {
	Theme string          `json:"theme" yaml:"theme"`
	Flags map[string]bool `json:"flags" yaml:"flags"`
}

func openTempDB(t *testing.T, opts ...OpenOption) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "stash.bolt"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_Validation(t *testing.T) {
	_, err := Open(" ")
	assert.Error(t, err)

	_, err = Open(filepath.Join(t.TempDir(), "x.bolt"), WithBucket(""))
	assert.Error(t, err)
}

func TestOpen_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "stash.bolt")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, path, db.Path())
}

func TestOpen_LockedFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file locking differs on windows")
	}
	path := filepath.Join(t.TempDir(), "stash.bolt")

	first, err := Open(path)
	require.NoError(t, err)
	defer first.Close()

	// A second handle cannot take the exclusive lock
	_, err = Open(path, WithTimeout(50*time.Millisecond))
	require.Error(t, err)
	assert.ErrorIs(t, err, bbolt.ErrTimeout)

	var storageErr *stash.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.True(t, storageErr.Retryable())
}

func TestDocument_ReadMissing(t *testing.T) {
	db := openTempDB(t)

	got, err := Document[settings](db, "app").Read(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDocument_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stash.bolt")
	want := settings{Theme: "dark", Flags: map[string]bool{"beta": true}}

	db, err := Open(path)
	require.NoError(t, err)
	s := stash.MustNew[settings](Document[settings](db, "app"))
	s.Set(want)
	require.NoError(t, s.Write(ctx))
	require.NoError(t, db.Close())

	// Reopen the file with a fresh store
	db2, err := Open(path)
	require.NoError(t, err)
	defer db2.Close()

	fresh := stash.MustNew[settings](Document[settings](db2, "app"))
	require.NoError(t, fresh.Read(ctx))
	assert.Equal(t, &want, fresh.Data())
}

func TestDocument_WriteNilDeletes(t *testing.T) {
	ctx := context.Background()
	db := openTempDB(t)
	a := Document[settings](db, "app")

	require.NoError(t, a.Write(ctx, &settings{Theme: "light"}))
	require.NoError(t, a.Write(ctx, nil))

	got, err := a.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	keys, err := db.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestDocument_Isolation(t *testing.T) {
	ctx := context.Background()
	db := openTempDB(t)

	require.NoError(t, Document[settings](db, "b").Write(ctx, &settings{Theme: "b"}))
	require.NoError(t, Document[settings](db, "a").Write(ctx, &settings{Theme: "a"}))

	got, err := Document[settings](db, "a").Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Theme)

	keys, err := db.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestDocument_CustomBucketAndCodec(t *testing.T) {
	ctx := context.Background()
	db := openTempDB(t, WithBucket("settings"))
	a := Document[settings](db, "app", WithCodec(codec.YAML{}))

	require.NoError(t, a.Write(ctx, &settings{Theme: "dark"}))

	var raw []byte
	require.NoError(t, db.handle.View(func(tx *bbolt.Tx) error {
		raw = append(raw, tx.Bucket([]byte("settings")).Get([]byte("app"))...)
		return nil
	}))
	assert.Contains(t, string(raw), "theme: dark")

	got, err := a.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dark", got.Theme)
}

func TestDocument_Malformed(t *testing.T) {
	ctx := context.Background()
	db := openTempDB(t)
	require.NoError(t, db.handle.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(db.bucket).Put([]byte("app"), []byte("{broken"))
	}))

	got, err := Document[settings](db, "app").Read(ctx)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, stash.ErrMalformed)

	var storageErr *stash.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Contains(t, storageErr.Location, "#app")
}

func TestDocument_ClosedDB(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "stash.bolt"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	a := Document[settings](db, "app")

	_, err = a.Read(ctx)
	var readErr *stash.StorageError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, stash.OpRead, readErr.Op)

	err = a.Write(ctx, &settings{})
	var writeErr *stash.StorageError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, stash.OpWrite, writeErr.Op)
}

func TestDocument_CancelledContext(t *testing.T) {
	db := openTempDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Document[settings](db, "app").Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	err = Document[settings](db, "app").Write(ctx, &settings{})
	assert.ErrorIs(t, err, context.Canceled)
}
