package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/berserkgame/berserk-server-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func exerciseStore(t *testing.T, store ResultStore) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	results := []Result{
		{MatchID: "AAA111", Player1: "Ada", Player2: "Bo", Winner: 1, Reason: "elimination", Turns: 12, Commands: 40, Seed: 7, StartedAt: base, FinishedAt: base.Add(10 * time.Minute)},
		{MatchID: "BBB222", Player1: "Bo", Player2: "Ada", Winner: 0, Reason: "draw", Turns: 30, FinishedAt: base.Add(20 * time.Minute)},
		{MatchID: "CCC333", Player1: "Cy", Player2: "Ada", Winner: 1, Reason: "concede", FinishedAt: base.Add(30 * time.Minute)},
	}
	for _, r := range results {
		require.NoError(t, store.SaveResult(ctx, r))
	}

	t.Run("get", func(t *testing.T) {
		got, err := store.GetResult(ctx, "AAA111")
		require.NoError(t, err)
		assert.Equal(t, results[0], got)

		draw, err := store.GetResult(ctx, "BBB222")
		require.NoError(t, err)
		assert.Equal(t, draw.FinishedAt, draw.StartedAt, "missing start defaults to finish")

		_, err = store.GetResult(ctx, "missing")
		assert.ErrorIs(t, err, ErrResultNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		all, err := store.ListResults(ctx, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "CCC333", all[0].MatchID)
		assert.Equal(t, "AAA111", all[2].MatchID)

		limited, err := store.ListResults(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, limited, 2)
	})

	t.Run("record", func(t *testing.T) {
		rec, err := store.PlayerRecord(ctx, "Ada")
		require.NoError(t, err)
		assert.Equal(t, Record{Player: "Ada", Wins: 1, Losses: 1, Draws: 1}, rec)

		none, err := store.PlayerRecord(ctx, "Nobody")
		require.NoError(t, err)
		assert.Equal(t, Record{Player: "Nobody"}, none)
	})

	t.Run("save replaces", func(t *testing.T) {
		again := results[0]
		again.Winner = 2
		require.NoError(t, store.SaveResult(ctx, again))
		got, err := store.GetResult(ctx, "AAA111")
		require.NoError(t, err)
		assert.Equal(t, 2, got.Winner)
	})

	t.Run("validation", func(t *testing.T) {
		assert.Error(t, store.SaveResult(ctx, Result{MatchID: "  "}))
		assert.Error(t, store.SaveResult(ctx, Result{MatchID: "X", Winner: 3}))
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	exerciseStore(t, store)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results.db")
	store, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	exerciseStore(t, store)
	require.NoError(t, store.Close())

	t.Run("reopen keeps data", func(t *testing.T) {
		reopened, err := OpenSQLite(context.Background(), path)
		require.NoError(t, err)
		defer reopened.Close()
		got, err := reopened.GetResult(context.Background(), "CCC333")
		require.NoError(t, err)
		assert.Equal(t, "Cy", got.Player1)
	})

	t.Run("in memory", func(t *testing.T) {
		mem, err := OpenSQLite(context.Background(), ":memory:")
		require.NoError(t, err)
		defer mem.Close()
		exerciseStore(t, mem)
	})

	_, err = OpenSQLite(context.Background(), " ")
	assert.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("BERSERK_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("BERSERK_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()
	store, err := NewPostgresStore(ctx, config.StorageConfig{PostgresURL: url, MaxConns: 2}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer store.Close()
	_, err = store.pool.Exec(ctx, "TRUNCATE match_results")
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	mem, err := Open(ctx, config.StorageConfig{Driver: config.DriverMemory}, logger)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, mem)

	lite, err := Open(ctx, config.StorageConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "r.db")}, logger)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, lite)
	require.NoError(t, lite.Close())

	_, err = Open(ctx, config.StorageConfig{Driver: "mongo"}, logger)
	assert.Error(t, err)
}
