// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — a single file next to the binary. There is
// no separate server to run, which fits this app's scale: a handful of groups
// with tens of members each, all served by one process.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// SQLite — works everywhere Go works.
//
// CONCURRENCY NOTE:
// Requests are handled concurrently, and the gift claim flow relies on the
// database (not an in-process mutex) to arbitrate races: the claim is a single
// conditional UPDATE whose affected-row count tells us who won. WAL mode below
// is what lets concurrent readers proceed while such a write is in flight.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Blank import: the driver registers itself with database/sql under the
	// name "sqlite" via its init() function.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the repository interfaces
// for groups, users, and gifts. The server owns the lifecycle: New opens and
// migrates, Close releases the pool.
//
// There is deliberately no package-level cached handle — the connection is an
// explicitly constructed value injected into the services that need it.
type DB struct {
	conn *sql.DB
}

// New opens a SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/queregalo.db" → file-based database (persistent)
//   - ":memory:"          → in-memory database (used by the tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// A single connection sidesteps SQLITE_BUSY between concurrent writers
	// (SQLite allows one writer at a time anyway) and makes ":memory:" behave:
	// every new pool connection would otherwise open its own empty database.
	// Claims still race correctly — the conditional UPDATE decides the winner
	// whatever order the statements reach the connection in.
	conn.SetMaxOpenConns(1)

	// sql.Open doesn't actually connect; Ping forces the first connection so
	// a bad path or permissions problem surfaces here, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed concurrently with writes. Without it SQLite
	// locks the whole database file for every write.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. users.group_id, gifts.user_id
	// and gifts.locked_by all reference other tables, so turn them on.
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

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this idempotent,
// so it is safe to run on every startup.
//
// Schema notes:
//   - users has UNIQUE(group_id, name): a name is an identity within its group,
//     and re-registering it must find the existing row rather than add one.
//   - gifts.locked_by is NULLable; NULL means unclaimed. The claim transition
//     depends on this ("... WHERE locked_by IS NULL").
//   - gifts.price is an INTEGER. Prices are whole currency units; validation
//     upstream rejects zero and negatives.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS groups (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating groups table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			group_id   TEXT NOT NULL REFERENCES groups(id),
			name       TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(group_id, name)
		);
		CREATE INDEX IF NOT EXISTS idx_users_group_id ON users(group_id);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS gifts (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			name       TEXT NOT NULL,
			price      INTEGER NOT NULL,
			location   TEXT NOT NULL,
			locked_by  TEXT REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_gifts_user_id ON gifts(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating gifts table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE or PRIMARY KEY
// constraint failure. modernc.org/sqlite surfaces these as errors whose text
// contains the SQLite error message; there is no exported error type to match
// on, so we check the message.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}
