package game

import (
	"testing"

	"github.com/berserkgame/berserk-server-go/internal/game/cards"
	"github.com/berserkgame/berserk-server-go/internal/game/interaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSnapshotRoundTrip(t *testing.T) {
	p1, p2 := duel()
	h := NewGameHarness(t, p1, p2)
	h.Roll(6, 2)
	h.Attack(12, 17)
	h.AssertAwaiting(interaction.KindExchangeChoice, 1)

	st := h.game.ToDict()
	require.NotNil(t, st.Interaction)
	require.NotNil(t, st.PendingDice)

	restored, err := FromDict(zaptest.NewLogger(t), nil, st)
	require.NoError(t, err)
	assert.Equal(t, h.game.Checksum(), restored.Checksum())
	assert.True(t, restored.AwaitingExchangeChoice())

	// both copies resolve the exchange the same way
	ok, _ := restored.ProcessCommand(ConfirmCommand(1, true))
	require.True(t, ok)
	h.Do(ConfirmCommand(1, true))
	assert.Equal(t, h.game.Checksum(), restored.Checksum())
}

func TestSnapshotRedaction(t *testing.T) {
	p1, p2 := duel()
	h := NewGameHarness(t, p1, p2)

	mine := h.game.SnapshotFor(2).Board.Cells[29]
	require.NotNil(t, mine)
	assert.Equal(t, "Лёккен", mine.Name)
	assert.False(t, mine.Hidden)

	theirs := h.game.SnapshotFor(1).Board.Cells[29]
	require.NotNil(t, theirs)
	assert.True(t, theirs.Hidden)
	assert.Empty(t, theirs.Name)
	assert.Equal(t, 2, theirs.Player)

	front := h.game.SnapshotFor(1).Board.Cells[17]
	require.NotNil(t, front)
	assert.Equal(t, keeper, front.Name, "revealed cards are never redacted")

	t.Run("redacted snapshot still restores", func(t *testing.T) {
		g, err := FromDict(nil, nil, h.game.SnapshotFor(1))
		require.NoError(t, err)
		c := g.Board().GetCard(29)
		require.NotNil(t, c)
		assert.True(t, c.FaceDown)
	})

	t.Run("revealed after player 2 starts", func(t *testing.T) {
		h.EndTurn()
		st := h.game.SnapshotFor(1).Board.Cells[29]
		assert.Equal(t, "Лёккен", st.Name)
	})
}

func TestSnapshotHidesOpponentHand(t *testing.T) {
	g := NewGame(nil, nil)
	require.NoError(t, g.SetupGame(cards.StarterDeck(1), cards.StarterDeck(2)))

	st := g.SnapshotFor(1)
	require.NotEmpty(t, st.HandP1)
	require.NotEmpty(t, st.HandP2)
	for _, c := range st.HandP1 {
		assert.NotEmpty(t, c.Name)
	}
	for _, c := range st.HandP2 {
		assert.True(t, c.Hidden)
		assert.Empty(t, c.Name)
	}

	full := g.ToDict()
	assert.Len(t, full.HandP2, len(st.HandP2))
	assert.NotEmpty(t, full.HandP2[0].Name)
}

func TestSerialization(t *testing.T) {
	p1, p2 := duel()
	h := NewGameHarness(t, p1, p2)
	h.Roll(3, 3)
	h.Attack(12, 17)
	st := h.game.ToDict()

	t.Run("roundtrip", func(t *testing.T) {
		require.NoError(t, ValidateSerializationRoundtrip(&st))
	})

	t.Run("checksum tracks changes", func(t *testing.T) {
		sum, err := st.ComputeChecksum()
		require.NoError(t, err)
		assert.Len(t, sum.Hash, 64)

		ok, err := st.VerifyChecksum(sum)
		require.NoError(t, err)
		assert.True(t, ok)

		changed := st
		changed.TurnNumber++
		ok, err = changed.VerifyChecksum(sum)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("bytes", func(t *testing.T) {
		data, err := st.SerializeToBytes()
		require.NoError(t, err)
		decoded, err := DeserializeFromBytes(data)
		require.NoError(t, err)
		assert.Equal(t, st.TurnNumber, decoded.TurnNumber)
		assert.Equal(t, st.Board.Cells[12].CurrLife, decoded.Board.Cells[12].CurrLife)

		_, err = DeserializeFromBytes([]byte("{not json"))
		assert.Error(t, err)
	})
}
