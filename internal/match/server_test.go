package match

import (
	"context"
	"sync"
	"testing"

	"github.com/berserkgame/berserk-server-go/internal/game"
	"github.com/berserkgame/berserk-server-go/internal/game/cards"
	"github.com/berserkgame/berserk-server-go/internal/game/dice"
	"github.com/berserkgame/berserk-server-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func duel() ([]game.Placement, []game.Placement) {
	return []game.Placement{{Name: "Бегущая по кронам", Position: 12}},
		[]game.Placement{{Name: "Хранитель гор", Position: 17}, {Name: "Лёккен", Position: 29}}
}

func newDuelServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer(zaptest.NewLogger(t), dice.NewRoller(1))
	p1, p2 := duel()
	require.NoError(t, s.SetupWithPlacement(p1, p2))
	return s
}

func TestServerApply(t *testing.T) {
	ctx := context.Background()

	t.Run("no game", func(t *testing.T) {
		s := NewServer(nil, nil)
		res := s.Apply(ctx, game.EndTurnCommand(1), true)
		assert.False(t, res.Accepted)
		assert.NotEmpty(t, res.Error)
		assert.False(t, s.Started())
		assert.Equal(t, game.NoWinner, s.Winner())
		assert.Empty(t, s.StateHash())
	})

	t.Run("concede is not a client command", func(t *testing.T) {
		s := newDuelServer(t)
		res := s.Apply(ctx, game.ConcedeCommand(1), true)
		assert.False(t, res.Accepted)
		assert.Contains(t, res.Error, "not allowed")
		assert.Nil(t, res.Snapshot)
		assert.Empty(t, s.CommandLog())
		assert.Equal(t, game.NoWinner, s.Winner())
	})

	t.Run("rejected commands are not logged", func(t *testing.T) {
		s := newDuelServer(t)
		before := s.StateHash()
		res := s.Apply(ctx, game.EndTurnCommand(2), true)
		assert.False(t, res.Accepted)
		assert.Empty(t, res.Events)
		assert.NotEmpty(t, res.Error)
		require.NotNil(t, res.Snapshot)
		assert.Empty(t, s.CommandLog())
		assert.Equal(t, before, s.StateHash())
	})

	t.Run("accepted commands", func(t *testing.T) {
		s := newDuelServer(t)
		before := s.StateHash()
		assert.Len(t, before, 16)

		res := s.Apply(ctx, game.EndTurnCommand(1), false)
		require.True(t, res.Accepted)
		assert.Empty(t, res.Error)
		assert.NotEmpty(t, res.Events)
		assert.Nil(t, res.Snapshot)

		assert.Equal(t, []game.Command{game.EndTurnCommand(1)}, s.CommandLog())
		assert.NotEqual(t, before, s.StateHash())
		assert.Equal(t, 2, s.ActingPlayer())
	})
}

func TestServerSnapshotRedaction(t *testing.T) {
	s := newDuelServer(t)

	res := s.Apply(context.Background(), game.MoveCommand(1, 1, 7), true)
	require.True(t, res.Accepted)
	require.NotNil(t, res.Snapshot)
	hidden := res.Snapshot.Board.Cells[29]
	require.NotNil(t, hidden)
	assert.True(t, hidden.Hidden)
	assert.Empty(t, hidden.Name)

	own := s.Snapshot(2).Board.Cells[29]
	require.NotNil(t, own)
	assert.Equal(t, "Лёккен", own.Name)

	full := s.Snapshot(0).Board.Cells[29]
	require.NotNil(t, full)
	assert.Equal(t, "Лёккен", full.Name)
}

func TestServerEndings(t *testing.T) {
	t.Run("concede", func(t *testing.T) {
		s := newDuelServer(t)
		res := s.Concede(2)
		require.True(t, res.Accepted)
		assert.Equal(t, 1, s.Winner())
		assert.Len(t, s.CommandLog(), 1)

		assert.False(t, s.Concede(1).Accepted)
		assert.False(t, s.AgreeDraw().Accepted)
	})

	t.Run("draw", func(t *testing.T) {
		s := newDuelServer(t)
		res := s.AgreeDraw()
		require.True(t, res.Accepted)
		var over bool
		for _, e := range res.Events {
			over = over || e.Type == rules.EventGameOver
		}
		assert.True(t, over)
		assert.Equal(t, 0, s.Winner())
	})

	t.Run("no game", func(t *testing.T) {
		s := NewServer(nil, nil)
		assert.False(t, s.Concede(1).Accepted)
		assert.False(t, s.AgreeDraw().Accepted)
	})
}

func TestServerSetupGame(t *testing.T) {
	s := NewServer(zaptest.NewLogger(t), dice.NewRoller(3))
	require.NoError(t, s.SetupGame(cards.StarterDeck(1), cards.StarterDeck(2)))
	assert.True(t, s.Started())
	assert.Equal(t, rules.PhaseMain, s.Game().Phase())
	assert.Equal(t, int64(3), s.Seed())
	assert.Equal(t, cards.ContentHash(), s.ContentHash())

	assert.Error(t, s.SetupGame([]string{"no such card"}, cards.StarterDeck(2)))
}

func TestServerConcurrentUse(t *testing.T) {
	s := newDuelServer(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(player int) {
			defer wg.Done()
			s.Apply(ctx, game.EndTurnCommand(player), true)
			_ = s.Snapshot(player)
			_ = s.StateHash()
		}(i%2 + 1)
	}
	wg.Wait()

	// turns alternate, so every accepted command was legal for its player
	log := s.CommandLog()
	for i, cmd := range log {
		assert.Equal(t, i%2+1, cmd.Player)
	}
}
