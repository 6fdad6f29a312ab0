// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Cache stores scraped page content in SQLite keyed by URL, so resumed
// runs skip re-fetching pages the previous run already scraped.
type Cache struct {
	db *sql.DB
}

// OpenCache opens or creates the cache database at path.
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening scrape cache: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS pages (
		url TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		fetched_at TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached content for url, if present.
func (c *Cache) Get(url string) (string, bool) {
	var content string
	err := c.db.QueryRow(`SELECT content FROM pages WHERE url = ?`, url).Scan(&content)
	if err != nil {
		return "", false
	}
	return content, true
}

// Put stores content for url, replacing any previous entry.
func (c *Cache) Put(url, content string) error {
	_, err := c.db.Exec(
		`INSERT INTO pages (url, content, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET content=excluded.content, fetched_at=excluded.fetched_at`,
		url, content, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("caching %s: %w", url, err)
	}
	return nil
}
