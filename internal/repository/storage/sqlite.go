package storage

import (
	"context"
	"database/sql"
	"fmt"

	// import the SQLite driver to register it with the database/sql package.
	_ "github.com/mattn/go-sqlite3"
)

// DSN options appended to every archive path.
const sqliteOptions = "?_busy_timeout=5000&_journal_mode=WAL"

var archiveSchema = []string{
	`CREATE TABLE IF NOT EXISTS matches (
		id          TEXT PRIMARY KEY,
		game_type   TEXT NOT NULL,
		winner_id   TEXT NOT NULL,
		loser_id    TEXT NOT NULL,
		winner_role TEXT NOT NULL,
		guesses     INTEGER NOT NULL,
		state       TEXT NOT NULL,
		finished_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS matches_winner_idx ON matches (winner_id, finished_at)`,
	`CREATE INDEX IF NOT EXISTS matches_loser_idx ON matches (loser_id, finished_at)`,
}

// Storage holds the match archive database.
type Storage struct {
	Connection *sql.DB
}

func NewSQLiteStorage(path string) (*Storage, error) {
	conn, err := sql.Open("sqlite3", path+sqliteOptions)
	if err != nil {
		return nil, fmt.Errorf("can't open match archive: %w", err)
	}

	if err = conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("can't reach match archive %q: %w", path, err)
	}

	return &Storage{Connection: conn}, nil
}

// Init creates the archive table and its per-player indexes.
func (that *Storage) Init(ctx context.Context) error {
	for _, stmt := range archiveSchema {
		if _, err := that.Connection.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("can't apply archive schema: %w", err)
		}
	}

	return nil
}

func (that *Storage) Close() error {
	if err := that.Connection.Close(); err != nil {
		return fmt.Errorf("can't close match archive: %w", err)
	}

	return nil
}
