/*
Package sqlite provides a SQLite-backed implementation of the repository interfaces.

It mirrors the MongoDB repositories statement for statement: a ticket claim is one
conditional UPDATE ... RETURNING, a credit is one UPDATE ... SET points = points + ?.
The unique constraint on tickets.code plays the role of the Mongo unique index.

Usage:

	store, err := sqlite.New("./data/luckyticket.db")
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	tickets := store.Tickets()
	users := store.Users()

Use ":memory:" for an in-memory database (tests).
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/luckyticket-backend/internal/repositories"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// Fixed-width UTC layout so that lexical order of stored timestamps is chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store owns the database handle shared by the ticket and user repositories.
type Store struct {
	db *sql.DB
}

// New opens (and migrates) a SQLite database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: ":memory:" databases are per-connection, and SQLite admits a single
	// writer anyway. Statements stay individually atomic.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tickets returns the ticket repository backed by this store.
func (s *Store) Tickets() *TicketRepository {
	return &TicketRepository{db: s.db}
}

// Users returns the user repository backed by this store.
func (s *Store) Users() *UserRepository {
	return &UserRepository{db: s.db}
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL,
		points INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tickets (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		reward INTEGER NOT NULL CHECK (reward > 0),
		state TEXT NOT NULL CHECK (state IN ('AVAILABLE', 'REDEEMED')),
		redeemed_by TEXT,
		redeemed_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK ((redeemed_by IS NULL) = (redeemed_at IS NULL)),
		CHECK ((state = 'REDEEMED') = (redeemed_by IS NOT NULL))
	);

	CREATE INDEX IF NOT EXISTS idx_tickets_state_created
		ON tickets(state, created_at);
	CREATE INDEX IF NOT EXISTS idx_tickets_redeemed_by
		ON tickets(redeemed_by, redeemed_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// translateError maps driver errors onto the repository sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repositories.ErrNotFound
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return repositories.ErrDuplicateKey
	}
	return err
}
