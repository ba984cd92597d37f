// Package db persists sources, their words and difficulty analyses in SQLite.
package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Driver is the database/sql driver name registered by go-sqlite3.
const Driver = "sqlite3"

const migrationsSQL = `
CREATE TABLE IF NOT EXISTS sources (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_type TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL DEFAULT '',
	meta TEXT NOT NULL DEFAULT '',
	added_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(source_type, title, url)
);
CREATE TABLE IF NOT EXISTS words (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	word TEXT NOT NULL,
	lemma TEXT NOT NULL DEFAULT '',
	language TEXT NOT NULL DEFAULT '',
	cefr_level TEXT,
	confidence REAL,
	frequency_rank INTEGER,
	UNIQUE(word, lemma, language)
);
CREATE TABLE IF NOT EXISTS word_sources (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	word_id INTEGER NOT NULL REFERENCES words(id),
	source_id INTEGER NOT NULL REFERENCES sources(id),
	occurrence_count INTEGER NOT NULL DEFAULT 0,
	frequency REAL NOT NULL DEFAULT 0,
	local_level TEXT NOT NULL DEFAULT '',
	first_seen_at DATETIME,
	UNIQUE(word_id, source_id)
);
CREATE INDEX IF NOT EXISTS idx_word_sources_source ON word_sources(source_id);
CREATE TABLE IF NOT EXISTS analyses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL UNIQUE,
	source_id INTEGER NOT NULL REFERENCES sources(id),
	total_words INTEGER NOT NULL,
	unique_words INTEGER NOT NULL,
	difficulty_level TEXT,
	difficulty_score REAL,
	rarity_adjustment REAL,
	average_confidence REAL,
	average_frequency_rank REAL,
	breakdown TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_source ON analyses(source_id, created_at);
`

// Open opens (creating if needed) the database at path and runs migrations.
// ":memory:" is limited to one connection so every query sees the same database.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open(Driver, path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		conn.SetMaxOpenConns(1)
	}
	if err := InitDB(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return conn, nil
}

// InitDB runs migrations on the given DB connection.
func InitDB(db *sql.DB) error {
	for _, s := range strings.Split(migrationsSQL, ";") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
