package match

import (
	"context"
	"testing"

	"github.com/berserkgame/berserk-server-go/internal/game"
	"github.com/berserkgame/berserk-server-go/internal/game/dice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestLocalClients(t *testing.T) {
	server, c1, c2 := CreateLocalMatch(zaptest.NewLogger(t), dice.NewRoller(5))
	p1, p2 := duel()
	require.NoError(t, server.SetupWithPlacement(p1, p2))
	ctx := context.Background()

	assert.Equal(t, 1, c1.Player())
	assert.Equal(t, 2, c2.Player())
	assert.Same(t, server.Game(), c1.Game())

	// the seat decides who acts, not the command
	res := c2.SendCommand(ctx, game.EndTurnCommand(1))
	assert.False(t, res.Accepted)

	res = c1.SendCommand(ctx, game.EndTurnCommand(2))
	require.True(t, res.Accepted)
	require.NotNil(t, res.Snapshot)
	assert.Equal(t, 2, res.Snapshot.CurrentPlayer)
	assert.Equal(t, 1, server.CommandLog()[0].Player)
}

func TestHotseatFollowsActingPlayer(t *testing.T) {
	roller := dice.NewRoller(5)
	server := NewServer(zaptest.NewLogger(t), roller)
	p1, p2 := duel()
	require.NoError(t, server.SetupWithPlacement(p1, p2))
	hs := NewHotseat(server)
	ctx := context.Background()

	assert.Equal(t, 1, hs.Active().Player())
	assert.Equal(t, 2, hs.Client(2).Player())

	require.True(t, hs.SendCommand(ctx, game.EndTurnCommand(0)).Accepted)
	assert.Equal(t, 2, hs.Active().Player())

	require.True(t, hs.SendCommand(ctx, game.EndTurnCommand(0)).Accepted)
	assert.Equal(t, 1, hs.Active().Player())

	t.Run("decision owner acts", func(t *testing.T) {
		roller.Inject(6, 2)
		res := hs.SendCommand(ctx, game.AttackCommand(0, 1, 17))
		require.True(t, res.Accepted)
		d := server.Game().Pending()
		require.NotNil(t, d)
		assert.Equal(t, d.ActingPlayer, hs.Active().Player())

		for server.Game().Pending() != nil {
			require.True(t, hs.SendCommand(ctx, game.ConfirmCommand(0, true)).Accepted)
		}
		assert.Equal(t, 1, hs.Active().Player())
	})
}
