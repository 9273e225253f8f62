// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation
// of the SQLite sources — works everywhere Go works, and lets tests spin
// up ":memory:" databases with zero setup.
//
// The schema is five relations: users, tweets, replies (self-referential),
// and the three interaction join tables keyed by (user_id, tweet_id).
// All dependent-row cleanup is declared ON DELETE CASCADE and enforced by
// SQLite itself — deleting a tweet drops its interactions and replies,
// and the self-referential cascade on replies removes whole subtrees
// without any application-side traversal.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// It implements repository.UserRepository, TweetRepository and
// ReplyRepository (see the compile-time checks in the per-entity files).
type DB struct {
	conn *sql.DB
}

// New opens the database, configures the connection, and runs migrations.
//
// dbPath examples:
//   - "data/twitter.db" → file-based database (persistent)
//   - ":memory:"        → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection, not a pool. PRAGMAs are per-connection, a second
	// pooled connection would silently run with foreign_keys OFF, and a
	// ":memory:" database isn't even shared across connections. SQLite
	// allows a single writer at a time anyway; database/sql queues the rest.
	conn.SetMaxOpenConns(1)

	// sql.Open only creates the pool; Ping forces a real connection so a
	// bad path or permissions problem surfaces here, not on first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight — important for a
	// web server where requests overlap.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. Every cascade in the
	// schema depends on this pragma being on.
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

// Close closes the connection pool. Callers defer this right after New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe to
// run on every start; a production deployment would move to a versioned
// migration tool once the schema starts changing.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id           TEXT NOT NULL UNIQUE,
			e_mail            TEXT NOT NULL UNIQUE,
			password_hash     TEXT NOT NULL,
			user_name         TEXT NOT NULL,
			phone_number      TEXT,
			self_introduction TEXT,
			place             TEXT,
			birthday          TEXT,
			profile_img       TEXT,
			avatar_img        TEXT,
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS tweets (
			tweet_id   INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    TEXT NOT NULL REFERENCES users(user_id),
			content    TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_tweets_created_at
			ON tweets(created_at DESC, tweet_id DESC);
	`)
	if err != nil {
		return fmt.Errorf("creating tweets table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS replies (
			reply_id        INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id         TEXT NOT NULL REFERENCES users(user_id),
			tweet_id        INTEGER NOT NULL REFERENCES tweets(tweet_id) ON DELETE CASCADE,
			parent_reply_id INTEGER REFERENCES replies(reply_id) ON DELETE CASCADE,
			content         TEXT NOT NULL,
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_replies_tweet_id ON replies(tweet_id);
		CREATE INDEX IF NOT EXISTS idx_replies_parent_reply_id ON replies(parent_reply_id);
	`)
	if err != nil {
		return fmt.Errorf("creating replies table: %w", err)
	}

	// The three interaction tables are structurally identical. The
	// composite primary key is the uniqueness constraint the toggle logic
	// leans on: a concurrent duplicate INSERT conflicts here instead of
	// creating a second row.
	for _, table := range interactionTables {
		_, err = db.conn.Exec(fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				user_id    TEXT NOT NULL REFERENCES users(user_id),
				tweet_id   INTEGER NOT NULL REFERENCES tweets(tweet_id) ON DELETE CASCADE,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (user_id, tweet_id)
			);
		`, table))
		if err != nil {
			return fmt.Errorf("creating %s table: %w", table, err)
		}
	}

	return nil
}
