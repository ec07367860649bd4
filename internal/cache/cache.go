// Package cache provides the incremental weave cache. It remembers the
// content fingerprint of every source file the weaver has processed so
// unchanged files can be skipped on subsequent runs.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed fingerprint store.
// Use ":memory:" for an in-memory database, or a file path for persistence.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) the cache database at dbPath.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create cache directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS woven_files (
		path TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL,
		run_id TEXT NOT NULL,
		woven_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_run_id ON woven_files(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Unchanged reports whether path was last woven with exactly this content hash.
func (s *Store) Unchanged(ctx context.Context, path, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored string
	err := s.db.QueryRowContext(ctx,
		"SELECT content_hash FROM woven_files WHERE path = ?", path,
	).Scan(&stored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query fingerprint: %w", err)
	}
	return stored == hash, nil
}

// Record stores the fingerprint for path, tagged with the run that produced it.
func (s *Store) Record(ctx context.Context, path, hash, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO woven_files (path, content_hash, run_id, woven_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET content_hash = excluded.content_hash,
		 run_id = excluded.run_id, woven_at = excluded.woven_at`,
		path, hash, runID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("record fingerprint: %w", err)
	}
	return nil
}

// Forget drops the fingerprint for path, forcing a re-weave next run.
func (s *Store) Forget(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM woven_files WHERE path = ?", path); err != nil {
		return fmt.Errorf("forget fingerprint: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Fingerprint computes the content hash used as the cache key.
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
