package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Fixed-width timestamp layout so fetched_at strings order lexicographically
// and the purge cutoff can compare in SQL.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Cache is an on-disk document cache backed by SQLite. It lets repeat runs
// skip refetching documents the site is unlikely to have changed.
type Cache struct {
	db     *sql.DB
	path   string
	maxAge time.Duration
}

// OpenCache initializes or connects to the cache database. A maxAge of
// zero disables expiry.
func OpenCache(path string, maxAge time.Duration) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
        ref TEXT PRIMARY KEY,
        body BLOB NOT NULL,
        fetched_at TEXT NOT NULL
    )`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}

	return &Cache{db: db, path: path, maxAge: maxAge}, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached document for ref. Stale entries count as misses.
func (c *Cache) Get(ctx context.Context, ref string) ([]byte, bool, error) {
	row := c.db.QueryRowContext(ctx, `SELECT body, fetched_at FROM documents WHERE ref = ?`, ref)
	var body []byte
	var fetchedAt string
	if err := row.Scan(&body, &fetchedAt); errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}
	if c.maxAge > 0 {
		stamp, err := time.Parse(timestampLayout, fetchedAt)
		if err != nil || time.Since(stamp) > c.maxAge {
			return nil, false, nil
		}
	}
	return body, true, nil
}

// Put stores or replaces the document for ref.
func (c *Cache) Put(ctx context.Context, ref string, body []byte) error {
	timestamp := time.Now().UTC().Format(timestampLayout)
	_, err := c.db.ExecContext(
		ctx,
		`INSERT INTO documents (ref, body, fetched_at) VALUES (?, ?, ?)
         ON CONFLICT(ref) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		ref,
		body,
		timestamp,
	)
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Purge deletes entries older than maxAge. A no-op when expiry is off.
func (c *Cache) Purge(ctx context.Context) (int64, error) {
	if c.maxAge <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-c.maxAge).Format(timestampLayout)
	res, err := c.db.ExecContext(ctx, `DELETE FROM documents WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}
	return removed, nil
}
