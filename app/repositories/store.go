package repositories

import (
	"fmt"
	"io"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// Open opens the badger database at path. An empty path opens an in-memory
// database, which is what the tests use.
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	if path == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db at %q: %w", path, err)
	}
	return db, nil
}

// Backup writes a full backup of db to w.
func Backup(db *badger.DB, w io.Writer) error {
	if _, err := db.Backup(w, 0); err != nil {
		return fmt.Errorf("failed to backup database: %w", err)
	}
	return nil
}

// Restore loads a backup produced by Backup into db.
func Restore(db *badger.DB, r io.Reader) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic occurred during restore: %v", rec)
		}
	}()
	if err := db.Load(r, 4); err != nil {
		return fmt.Errorf("failed to restore database: %w", err)
	}
	return nil
}
