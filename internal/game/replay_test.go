package game

import (
	"testing"

	"github.com/berserkgame/berserk-server-go/internal/game/dice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// playRecorded runs a short match on a seeded roller, recording every
// accepted command. Dice are left to the seed so the replay can reproduce them.
func playRecorded(t *testing.T, rec *ReplayRecorder) *Game {
	t.Helper()
	p1, p2 := duel()
	g := NewGame(zaptest.NewLogger(t), dice.NewRoller(7))
	require.NoError(t, g.SetupWithPlacement(p1, p2))
	rec.StartRecording("m1", 7, p1, p2)

	do := func(cmd Command) {
		t.Helper()
		ok, _ := g.ProcessCommand(cmd)
		require.True(t, ok, "command %s rejected", cmd)
		rec.RecordCommand("m1", cmd)
	}
	settle := func() {
		t.Helper()
		for g.Pending() != nil {
			do(ConfirmCommand(g.ActingPlayer(), true))
		}
	}

	runnerID := g.Board().GetCard(12).ID
	keeperID := g.Board().GetCard(17).ID

	do(AttackCommand(1, runnerID, 17))
	settle()
	do(EndTurnCommand(1))
	do(MoveCommand(2, keeperID, 22))
	do(EndTurnCommand(2))
	return g
}

func TestReplayReproducesMatch(t *testing.T) {
	rec := NewReplayRecorder(zaptest.NewLogger(t), t.TempDir())
	g := playRecorded(t, rec)

	r, ok := rec.GetReplay("m1")
	require.True(t, ok)
	require.True(t, rec.IsRecording("m1"))
	assert.GreaterOrEqual(t, r.Size(), 4)

	replayed, err := r.Play(zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, g.Checksum(), replayed.Checksum())

	t.Run("cursor", func(t *testing.T) {
		r.Start()
		first, ok := r.Next()
		require.True(t, ok)
		assert.Equal(t, CmdAttack, first.Type)

		prev, ok := r.Previous()
		require.True(t, ok)
		assert.Equal(t, first, prev)
		_, ok = r.Previous()
		assert.False(t, ok)

		assert.Equal(t, r.Size(), r.Skip(100))
		_, ok = r.Next()
		assert.False(t, ok)
		assert.Equal(t, 0, r.Skip(-100))
	})

	t.Run("game at start", func(t *testing.T) {
		start, err := r.GameAt(nil, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, start.CurrentPlayer())
		assert.Equal(t, 13, start.Board().GetCard(17).CurrLife)
	})

	t.Run("stopped recordings ignore commands", func(t *testing.T) {
		size := r.Size()
		rec.StopRecording("m1")
		rec.RecordCommand("m1", EndTurnCommand(1))
		assert.Equal(t, size, r.Size())
		assert.False(t, rec.IsRecording("m1"))
	})
}

func TestReplaySaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	rec := NewReplayRecorder(zaptest.NewLogger(t), dir)
	g := playRecorded(t, rec)
	r, _ := rec.GetReplay("m1")
	size := r.Size()

	require.NoError(t, rec.SaveReplay("m1"))
	_, ok := rec.GetReplay("m1")
	assert.False(t, ok, "saved replays leave memory")
	assert.Error(t, rec.SaveReplay("m1"))

	loaded, err := rec.LoadReplay("m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", loaded.MatchID)
	assert.Equal(t, int64(7), loaded.Seed)
	assert.Equal(t, size, loaded.Size())

	replayed, err := loaded.Play(nil)
	require.NoError(t, err)
	assert.Equal(t, g.Checksum(), replayed.Checksum())

	_, err = LoadReplayFromFile(dir, "missing")
	assert.Error(t, err)
}

func TestReplayDivergence(t *testing.T) {
	p1, p2 := duel()
	r := NewReplay("bad", 1, p1, p2)
	r.RecordCommand(EndTurnCommand(2))

	_, err := r.Play(nil)
	assert.Error(t, err)

	rec := NewReplayRecorder(nil, t.TempDir())
	rec.StartRecording("gone", 1, p1, p2)
	rec.ClearReplay("gone")
	_, ok := rec.GetReplay("gone")
	assert.False(t, ok)
}
