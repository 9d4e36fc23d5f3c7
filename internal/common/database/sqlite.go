// internal/common/database/sqlite.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// ErrStoreLocked is returned when another process holds the data directory.
var ErrStoreLocked = fmt.Errorf("sqlite store is locked by another process")

// SQLiteClient is the single-writer local store used by the mock API.
type SQLiteClient struct {
	DB   *sql.DB
	lock *flock.Flock
	path string
}

// OpenSQLite opens <dir>/<name>.db, holding <dir>/<name>.lock for the
// lifetime of the client so two processes never write the same file.
func OpenSQLite(dir, name string) (*SQLiteClient, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	lock := flock.New(filepath.Join(dir, name+".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock data dir: %w", err)
	}
	if !locked {
		return nil, ErrStoreLocked
	}

	path := filepath.Join(dir, name+".db")
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path))
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteClient{DB: db, lock: lock, path: path}, nil
}

func (c *SQLiteClient) Path() string {
	return c.path
}

// Close closes the database and releases the directory lock.
func (c *SQLiteClient) Close() error {
	var err error
	if c.DB != nil {
		err = c.DB.Close()
	}
	if c.lock != nil {
		if uerr := c.lock.Unlock(); err == nil {
			err = uerr
		}
	}
	return err
}

// OpenSQLiteReadOnly opens an existing store file without taking the lock,
// for readers running beside the process that owns it.
func OpenSQLiteReadOnly(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("sqlite store: %w", err)
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}
