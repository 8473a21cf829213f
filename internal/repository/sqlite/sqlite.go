// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside the binary as a single
// file. No separate database server to install, configure, or manage. A gift
// registry for a circle of friends and family is exactly the single-server
// scale SQLite is good at, and ":memory:" databases make the adapter tests
// fast and hermetic.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// SQLite — works everywhere Go works.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Side-effect import: the driver registers itself with database/sql
	// under the name "sqlite".
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool. The per-entity stores (UserStore,
// WishlistStore, …) share it; each implements one repository interface.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" in tests.
//
// Pragmas ride in the DSN rather than in an Exec: they are per-connection
// settings, and database/sql opens and closes pooled connections on its own.
// A PRAGMA statement would configure only the one connection it happened to
// run on, and every other connection the pool opens would silently have
// foreign keys off — breaking the cascade chain
// user → wishlist → item → reservation/comment.
//
//   - foreign_keys(1): off by default in SQLite; the cascades depend on it.
//   - journal_mode(WAL): reads proceed while a write is in flight —
//     projection reads and reservation writes overlap in the server.
//   - busy_timeout(10000): writers wait for the lock instead of failing
//     with SQLITE_BUSY when reservations race.
func New(dbPath string) (*DB, error) {
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// sql.Open doesn't actually connect; Ping surfaces a bad path or
	// permissions problem immediately instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Always defer this wherever
// New() is called — it flushes the WAL and releases the file lock.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent;
// this runs on every startup.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			email         TEXT NOT NULL UNIQUE,
			name          TEXT NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			github_id     INTEGER NOT NULL DEFAULT 0,
			role          TEXT NOT NULL DEFAULT 'regular',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_github_id
			ON users(github_id) WHERE github_id > 0;
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS wishlists (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			visibility  TEXT NOT NULL DEFAULT 'hidden',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_wishlists_owner_id ON wishlists(owner_id);
	`)
	if err != nil {
		return fmt.Errorf("creating wishlists table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS items (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			wishlist_id INTEGER NOT NULL REFERENCES wishlists(id) ON DELETE CASCADE,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			url         TEXT NOT NULL DEFAULT '',
			amount      INTEGER NOT NULL CHECK (amount >= 1),
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_items_wishlist_id ON items(wishlist_id);
	`)
	if err != nil {
		return fmt.Errorf("creating items table: %w", err)
	}

	// UNIQUE(user_id, item_id): a user holds at most one reservation per
	// item. Changing the amount means remove + re-reserve.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS reservations (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			item_id    INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
			amount     INTEGER NOT NULL CHECK (amount >= 1),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, item_id)
		);
		CREATE INDEX IF NOT EXISTS idx_reservations_item_id ON reservations(item_id);
		CREATE INDEX IF NOT EXISTS idx_reservations_user_id ON reservations(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating reservations table: %w", err)
	}

	// Friendships are stored normalized: user_lo < user_hi. One row covers
	// both directions of the edge.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS friends (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_lo    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user_hi    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_lo, user_hi),
			CHECK (user_lo < user_hi)
		);
		CREATE INDEX IF NOT EXISTS idx_friends_user_hi ON friends(user_hi);
	`)
	if err != nil {
		return fmt.Errorf("creating friends table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			item_id    INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
			author_id  INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			body       TEXT NOT NULL,
			as_admin   INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_item_id ON comments(item_id);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint error.
// The pure-Go driver doesn't export a typed error for this, so we match the
// stable "UNIQUE constraint failed" text it produces.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
