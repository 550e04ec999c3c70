package match

import (
	"context"
	"errors"
	"testing"

	"github.com/berserkgame/berserk-server-go/internal/game"
	"github.com/berserkgame/berserk-server-go/internal/game/rules"
	"github.com/berserkgame/berserk-server-go/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingSender struct {
	sent []protocol.Message
	err  error
}

func (r *recordingSender) Send(msg protocol.Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func TestNetworkClientProcessResult(t *testing.T) {
	s := newDuelServer(t)
	client := NewNetworkClient(zaptest.NewLogger(t), nil, 1)
	require.NoError(t, client.SyncFromSnapshot(s.Snapshot(1)))

	var seenTurn []int
	client.Events().Subscribe(func(e rules.Event) {
		// snapshot is applied before events are published
		seenTurn = append(seenTurn, client.Game().CurrentPlayer())
	})

	res := s.Apply(context.Background(), game.EndTurnCommand(1), true)
	require.True(t, res.Accepted)
	require.NoError(t, client.ProcessResult(res))

	require.NotEmpty(t, seenTurn)
	for _, p := range seenTurn {
		assert.Equal(t, 2, p)
	}
	assert.Equal(t, res.Events, client.EventLog())
	assert.Equal(t, 2, client.Game().CurrentPlayer())
}

func TestNetworkClientHandleMessage(t *testing.T) {
	s := newDuelServer(t)
	sender := &recordingSender{}
	client := NewNetworkClient(zaptest.NewLogger(t), sender, 2)

	start, err := protocol.New(protocol.TypeGameStart, "AB12CD", 1, protocol.GameStart{
		Snapshot:     s.Snapshot(2),
		SnapshotHash: s.StateHash(),
		Player:       2,
	})
	require.NoError(t, err)
	require.NoError(t, client.HandleMessage(start))
	require.NotNil(t, client.Game())
	assert.Equal(t, s.StateHash(), client.SnapshotHash())
	assert.Equal(t, "Лёккен", client.Game().Board().GetCard(29).Stats.Name)

	t.Run("commands carry the seat and match", func(t *testing.T) {
		require.NoError(t, client.SendCommand(game.EndTurnCommand(1)))
		require.NoError(t, client.RequestResync())
		require.Len(t, sender.sent, 2)

		msg := sender.sent[0]
		assert.Equal(t, protocol.TypeCommand, msg.Type)
		assert.Equal(t, "AB12CD", msg.MatchID)
		assert.Equal(t, 1, msg.Seq)
		var payload protocol.CommandPayload
		require.NoError(t, msg.Decode(&payload))
		assert.Equal(t, 2, payload.Command.Player)

		assert.Equal(t, protocol.TypeRequestResync, sender.sent[1].Type)
		assert.Equal(t, 2, sender.sent[1].Seq)
	})

	t.Run("update", func(t *testing.T) {
		res := s.Apply(context.Background(), game.EndTurnCommand(1), false)
		require.True(t, res.Accepted)
		snap := s.Snapshot(2)
		update, err := protocol.New(protocol.TypeUpdate, "AB12CD", 2, protocol.Update{
			Accepted:     true,
			Events:       res.Events,
			Snapshot:     &snap,
			SnapshotHash: s.StateHash(),
		})
		require.NoError(t, err)
		require.NoError(t, client.HandleMessage(update))
		assert.Equal(t, 2, client.Game().CurrentPlayer())
		assert.Len(t, client.EventLog(), len(res.Events))
	})

	t.Run("resync and game over", func(t *testing.T) {
		s.Concede(1)
		resync, err := protocol.New(protocol.TypeResync, "AB12CD", 3, protocol.Resync{
			Snapshot: s.Snapshot(2), SnapshotHash: s.StateHash(),
		})
		require.NoError(t, err)
		require.NoError(t, client.HandleMessage(resync))
		assert.True(t, client.Game().IsOver())

		assert.Equal(t, game.NoWinner, client.Winner())
		over, err := protocol.New(protocol.TypeGameOver, "AB12CD", 4, protocol.GameOver{Winner: 2})
		require.NoError(t, err)
		require.NoError(t, client.HandleMessage(over))
		assert.Equal(t, 2, client.Winner())
	})

	t.Run("bad payload", func(t *testing.T) {
		err := client.HandleMessage(protocol.Message{Type: protocol.TypeUpdate, Payload: []byte("{")})
		assert.Error(t, err)
		assert.NoError(t, client.HandleMessage(protocol.Message{Type: protocol.TypeChat}))
	})
}

func TestNetworkClientWithoutConnection(t *testing.T) {
	client := NewNetworkClient(nil, nil, 1)
	assert.Error(t, client.SendCommand(game.EndTurnCommand(1)))
	assert.Error(t, client.RequestResync())
	assert.Nil(t, client.Game())

	failing := NewNetworkClient(nil, &recordingSender{err: errors.New("closed")}, 1)
	assert.Error(t, failing.SendCommand(game.EndTurnCommand(1)))
}
