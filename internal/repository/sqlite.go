package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS match_results (
	match_id     TEXT PRIMARY KEY,
	player1      TEXT NOT NULL,
	player2      TEXT NOT NULL,
	winner       INTEGER NOT NULL,
	reason       TEXT NOT NULL DEFAULT '',
	turns        INTEGER NOT NULL DEFAULT 0,
	commands     INTEGER NOT NULL DEFAULT 0,
	seed         INTEGER NOT NULL DEFAULT 0,
	content_hash TEXT NOT NULL DEFAULT '',
	started_at   INTEGER NOT NULL,
	finished_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS match_results_finished ON match_results (finished_at DESC);
CREATE INDEX IF NOT EXISTS match_results_player1 ON match_results (player1);
CREATE INDEX IF NOT EXISTS match_results_player2 ON match_results (player2);
`

// SQLiteStore persists results in an embedded SQLite database.
type SQLiteStore struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		cleanPath := filepath.Clean(path)
		if dir := filepath.Dir(cleanPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create storage dir: %w", err)
			}
		}
		dsn = cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty database
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveResult inserts or replaces the result of a match.
func (s *SQLiteStore) SaveResult(ctx context.Context, r Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	r, err := validateResult(r)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO match_results (
		   match_id, player1, player2, winner, reason, turns, commands,
		   seed, content_hash, started_at, finished_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(match_id) DO UPDATE SET
		   player1 = excluded.player1,
		   player2 = excluded.player2,
		   winner = excluded.winner,
		   reason = excluded.reason,
		   turns = excluded.turns,
		   commands = excluded.commands,
		   seed = excluded.seed,
		   content_hash = excluded.content_hash,
		   started_at = excluded.started_at,
		   finished_at = excluded.finished_at`,
		r.MatchID, r.Player1, r.Player2, r.Winner, r.Reason, r.Turns, r.Commands,
		r.Seed, r.ContentHash, toMillis(r.StartedAt), toMillis(r.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("save match result: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteResult(row rowScanner) (Result, error) {
	var (
		r                 Result
		started, finished int64
	)
	if err := row.Scan(&r.MatchID, &r.Player1, &r.Player2, &r.Winner, &r.Reason,
		&r.Turns, &r.Commands, &r.Seed, &r.ContentHash, &started, &finished); err != nil {
		return Result{}, err
	}
	r.StartedAt = fromMillis(started)
	r.FinishedAt = fromMillis(finished)
	return r, nil
}

const resultColumns = `match_id, player1, player2, winner, reason, turns, commands,
	seed, content_hash, started_at, finished_at`

func (s *SQLiteStore) GetResult(ctx context.Context, matchID string) (Result, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+resultColumns+` FROM match_results WHERE match_id = ?`, matchID)
	r, err := scanSQLiteResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, ErrResultNotFound
	}
	if err != nil {
		return Result{}, fmt.Errorf("get match result: %w", err)
	}
	return r, nil
}

// ListResults returns the most recently finished results first.
func (s *SQLiteStore) ListResults(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+resultColumns+` FROM match_results
		 ORDER BY finished_at DESC, match_id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list match results: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		r, err := scanSQLiteResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) PlayerRecord(ctx context.Context, player string) (Record, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT player1, player2, winner FROM match_results WHERE player1 = ? OR player2 = ?`,
		player, player)
	if err != nil {
		return Record{}, fmt.Errorf("query player record: %w", err)
	}
	defer rows.Close()

	rec := Record{Player: player}
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Player1, &r.Player2, &r.Winner); err != nil {
			return Record{}, fmt.Errorf("scan player record: %w", err)
		}
		tally(&rec, r)
	}
	return rec, rows.Err()
}
