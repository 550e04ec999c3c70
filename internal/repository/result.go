// Package repository persists finished matches.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/berserkgame/berserk-server-go/internal/config"
	"go.uber.org/zap"
)

// ErrResultNotFound is returned when no result exists for a match id.
var ErrResultNotFound = errors.New("match result not found")

// Result is the record of one finished match. Winner is 1 or 2, or 0 for a
// draw.
type Result struct {
	MatchID     string
	Player1     string
	Player2     string
	Winner      int
	Reason      string
	Turns       int
	Commands    int
	Seed        int64
	ContentHash string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Record is a player's win/loss/draw tally.
type Record struct {
	Player string
	Wins   int
	Losses int
	Draws  int
}

// ResultStore saves and queries match results.
type ResultStore interface {
	SaveResult(ctx context.Context, r Result) error
	GetResult(ctx context.Context, matchID string) (Result, error)
	ListResults(ctx context.Context, limit int) ([]Result, error)
	PlayerRecord(ctx context.Context, player string) (Record, error)
	Close() error
}

func validateResult(r Result) (Result, error) {
	r.MatchID = strings.TrimSpace(r.MatchID)
	if r.MatchID == "" {
		return r, fmt.Errorf("match id is required")
	}
	if r.Winner < 0 || r.Winner > 2 {
		return r, fmt.Errorf("winner %d out of range", r.Winner)
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = r.FinishedAt
	}
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	return r, nil
}

// tally adds r to rec from the point of view of rec.Player.
func tally(rec *Record, r Result) {
	seat := 0
	switch rec.Player {
	case r.Player1:
		seat = 1
	case r.Player2:
		seat = 2
	}
	switch {
	case seat == 0:
	case r.Winner == 0:
		rec.Draws++
	case r.Winner == seat:
		rec.Wins++
	default:
		rec.Losses++
	}
}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (ResultStore, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		return NewMemoryStore(), nil
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	case config.DriverPostgres:
		return NewPostgresStore(ctx, cfg, logger)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
