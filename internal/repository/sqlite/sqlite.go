// Package sqlite implements the repository interfaces on SQLite.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the binary
// needs no C toolchain. It also ships the JSON1 functions the tag filter
// relies on (json_each).
//
// Every repository interface in internal/repository is implemented by the
// same *DB; the compile-time checks live next to each implementation.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath, applies pragmas and runs migrations.
//
// dbPath examples:
//   - "data/wisdom.db"  → file-based database
//   - ":memory:"        → in-memory database (tests)
//
// The pool is capped at one connection. SQLite serialises writers anyway,
// and an in-memory database only exists on the connection that created it.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Needed for ON DELETE CASCADE from apps to its join rows.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the database is reachable. Used by the health endpoint.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// migrate creates the schema. Every statement is idempotent, so it runs on
// each start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			account       TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			github_id     INTEGER UNIQUE,
			name          TEXT NOT NULL DEFAULT '',
			email         TEXT NOT NULL DEFAULT '',
			avatar_url    TEXT NOT NULL DEFAULT '',
			profile       TEXT NOT NULL DEFAULT '',
			role          TEXT NOT NULL DEFAULT 'user',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// tags holds a JSON array of strings, e.g. ["math","fun"].
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS apps (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			title      TEXT NOT NULL,
			content    TEXT NOT NULL DEFAULT '',
			user_id    INTEGER NOT NULL,
			tags       TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_apps_user_id ON apps(user_id);
		CREATE INDEX IF NOT EXISTS idx_apps_created_at ON apps(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating apps table: %w", err)
	}

	// One thumb and one favour per (app, user).
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS app_thumbs (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			app_id     INTEGER NOT NULL REFERENCES apps(id) ON DELETE CASCADE,
			user_id    INTEGER NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS uk_app_thumbs_app_user ON app_thumbs(app_id, user_id);
		CREATE INDEX IF NOT EXISTS idx_app_thumbs_user_id ON app_thumbs(user_id);

		CREATE TABLE IF NOT EXISTS app_favours (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			app_id     INTEGER NOT NULL REFERENCES apps(id) ON DELETE CASCADE,
			user_id    INTEGER NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS uk_app_favours_app_user ON app_favours(app_id, user_id);
		CREATE INDEX IF NOT EXISTS idx_app_favours_user_id ON app_favours(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating reaction tables: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS user_answers (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			app_id      INTEGER NOT NULL REFERENCES apps(id) ON DELETE CASCADE,
			user_id     INTEGER NOT NULL,
			choices     TEXT NOT NULL DEFAULT '[]',
			result_name TEXT NOT NULL,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_user_answers_app_id ON user_answers(app_id);
	`)
	if err != nil {
		return fmt.Errorf("creating user_answers table: %w", err)
	}

	return nil
}
