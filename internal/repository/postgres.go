package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/berserkgame/berserk-server-go/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS match_results (
	match_id     TEXT PRIMARY KEY,
	player1      TEXT NOT NULL,
	player2      TEXT NOT NULL,
	winner       SMALLINT NOT NULL,
	reason       TEXT NOT NULL DEFAULT '',
	turns        INTEGER NOT NULL DEFAULT 0,
	commands     INTEGER NOT NULL DEFAULT 0,
	seed         BIGINT NOT NULL DEFAULT 0,
	content_hash TEXT NOT NULL DEFAULT '',
	started_at   TIMESTAMPTZ NOT NULL,
	finished_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS match_results_finished ON match_results (finished_at DESC);
`

// PostgresStore persists results in PostgreSQL through a pgx pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore connects to cfg.PostgresURL and makes sure the schema exists.
func NewPostgresStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	stats := pool.Stat()
	logger.Info("database connection pool initialized",
		zap.Int32("total_conns", stats.TotalConns()),
		zap.Int32("max_conns", stats.MaxConns()),
	)
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveResult(ctx context.Context, r Result) error {
	r, err := validateResult(r)
	if err != nil {
		return err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO match_results (
			match_id, player1, player2, winner, reason, turns, commands,
			seed, content_hash, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (match_id) DO UPDATE SET
			player1 = EXCLUDED.player1,
			player2 = EXCLUDED.player2,
			winner = EXCLUDED.winner,
			reason = EXCLUDED.reason,
			turns = EXCLUDED.turns,
			commands = EXCLUDED.commands,
			seed = EXCLUDED.seed,
			content_hash = EXCLUDED.content_hash,
			started_at = EXCLUDED.started_at,
			finished_at = EXCLUDED.finished_at
	`,
		r.MatchID, r.Player1, r.Player2, r.Winner, r.Reason, r.Turns, r.Commands,
		r.Seed, r.ContentHash, r.StartedAt, r.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("save match result: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit match result: %w", err)
	}
	s.logger.Debug("match result saved", zap.String("match_id", r.MatchID), zap.Int("winner", r.Winner))
	return nil
}

func scanPostgresResult(row pgx.Row) (Result, error) {
	var r Result
	err := row.Scan(&r.MatchID, &r.Player1, &r.Player2, &r.Winner, &r.Reason,
		&r.Turns, &r.Commands, &r.Seed, &r.ContentHash, &r.StartedAt, &r.FinishedAt)
	if err != nil {
		return Result{}, err
	}
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	return r, nil
}

func (s *PostgresStore) GetResult(ctx context.Context, matchID string) (Result, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM match_results WHERE match_id = $1`, matchID)
	r, err := scanPostgresResult(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Result{}, ErrResultNotFound
	}
	if err != nil {
		return Result{}, fmt.Errorf("get match result: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) ListResults(ctx context.Context, limit int) ([]Result, error) {
	query := `SELECT ` + resultColumns + ` FROM match_results ORDER BY finished_at DESC, match_id ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list match results: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		r, err := scanPostgresResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) PlayerRecord(ctx context.Context, player string) (Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE (player1 = $1 AND winner = 1) OR (player2 = $1 AND winner = 2)),
			COUNT(*) FILTER (WHERE (player1 = $1 AND winner = 2) OR (player2 = $1 AND winner = 1)),
			COUNT(*) FILTER (WHERE winner = 0)
		FROM match_results
		WHERE player1 = $1 OR player2 = $1
	`, player)
	rec := Record{Player: player}
	if err := row.Scan(&rec.Wins, &rec.Losses, &rec.Draws); err != nil {
		return Record{}, fmt.Errorf("query player record: %w", err)
	}
	return rec, nil
}
