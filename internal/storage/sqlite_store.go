package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS ratelimits (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// sqliteStore implements a Store on a single-table SQLite database.
type sqliteStore struct {
	db              *sql.DB
	mu              sync.Mutex
	lastCleanup     time.Time
	retention       time.Duration
	cleanupInterval time.Duration
}

func openSQLite(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &sqliteStore{
		db:              db,
		lastCleanup:     time.Now(),
		retention:       opts.Retention,
		cleanupInterval: opts.CleanupInterval,
	}, nil
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) Get(key string) (time.Time, bool, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM ratelimits WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query %q: %w", key, err)
	}
	ts, ok := decodeTimestamp(raw)
	return ts, ok, nil
}

func (s *sqliteStore) Put(key string, ts time.Time) error {
	if err := s.maybeCleanupExpired(time.Now()); err != nil {
		return err
	}
	_, err := s.db.Exec(
		`INSERT INTO ratelimits (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, encodeTimestamp(ts),
	)
	if err != nil {
		return fmt.Errorf("upsert %q: %w", key, err)
	}
	return nil
}

func (s *sqliteStore) maybeCleanupExpired(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return nil
	}
	cutoff := encodeTimestamp(now.Add(-s.retention))
	if _, err := s.db.Exec(`DELETE FROM ratelimits WHERE CAST(value AS INTEGER) < CAST(? AS INTEGER)`, cutoff); err != nil {
		return fmt.Errorf("cleanup expired: %w", err)
	}
	s.lastCleanup = now
	return nil
}
