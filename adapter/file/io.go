package file

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spetersoncode/stash"
)

// readFile returns the file content, or nil when the file does not exist.
func readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, stash.NewStorageError(stash.OpRead, path, err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, stash.NewStorageError(stash.OpRead, path, err)
	}
	return raw, nil
}

// writeFile replaces the content of path with raw, creating parent
// directories as needed.
func writeFile(ctx context.Context, path string, raw []byte, opts *Options) error {
	if err := ctx.Err(); err != nil {
		return stash.NewStorageError(stash.OpWrite, path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return stash.NewStorageError(stash.OpWrite, path, err)
	}

	if !opts.Atomic {
		if err := os.WriteFile(path, raw, opts.Perm); err != nil {
			return stash.NewStorageError(stash.OpWrite, path, err)
		}
		return nil
	}

	if err := replaceFile(dir, path, raw, opts.Perm); err != nil {
		return stash.NewStorageError(stash.OpWrite, path, err)
	}
	return nil
}

// replaceFile writes raw to a temporary file next to path and renames it
// into place. The temporary file is removed on any failure.
func replaceFile(dir, path string, raw []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(raw); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Chmod(perm); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
