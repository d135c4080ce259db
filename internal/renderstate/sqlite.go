// sqlite.go persists render flags in an on-disk SQLite database.

package renderstate

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const (
	createTableStmt = `
CREATE TABLE IF NOT EXISTS rendered (
    id TEXT PRIMARY KEY,
    digest TEXT NOT NULL,
    rendered_at TEXT NOT NULL
);`
	upsertStmt = `INSERT INTO rendered(id, digest, rendered_at) VALUES(?, ?, ?)
ON CONFLICT(id) DO UPDATE SET digest = excluded.digest, rendered_at = excluded.rendered_at`
	selectStmt = `SELECT digest FROM rendered WHERE id = ?`
	deleteStmt = `DELETE FROM rendered WHERE id = ?`
)

// SQLite is a Store backed by a SQLite file.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (or creates) the render-flag database at path.
func OpenSQLite(path string) (*SQLite, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("render state path cannot be empty")
	}
	dir := filepath.Dir(p)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create render state directory")
		}
	}
	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, errors.Wrap(err, "open render state database")
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, createTableStmt); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ensure rendered table")
	}
	return &SQLite{db: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) IsRendered(ctx context.Context, id, digest string) (bool, error) {
	var got string
	err := s.db.QueryRowContext(ctx, selectStmt, id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "lookup render flag for %s", id)
	}
	return got == digest, nil
}

func (s *SQLite) MarkRendered(ctx context.Context, id, digest string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, upsertStmt, id, digest, now); err != nil {
		return errors.Wrapf(err, "store render flag for %s", id)
	}
	return nil
}

func (s *SQLite) Clear(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, deleteStmt, id); err != nil {
		return fmt.Errorf("clear render flag for %s: %w", id, err)
	}
	return nil
}
