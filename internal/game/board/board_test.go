package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berserkgame/berserk-server-go/internal/game/cards"
)

func newCard(t *testing.T, name string, player, id int) *cards.Card {
	t.Helper()
	c, err := cards.Create(name, player, id)
	require.NoError(t, err)
	return c
}

func TestPlaceAndGet(t *testing.T) {
	b := New()
	for _, pos := range []int{0, 7, 29, 30, 32, 33, 35} {
		c := newCard(t, "Друид", 1, pos+1)
		require.True(t, b.PlaceCard(c, pos), "pos %d", pos)
		assert.Same(t, c, b.GetCard(pos))
		assert.Equal(t, pos, c.Position)
		assert.Same(t, c, b.GetCardByID(pos+1))
	}

	assert.False(t, b.PlaceCard(newCard(t, "Друид", 1, 99), 7), "occupied")
	assert.False(t, b.PlaceCard(newCard(t, "Друид", 1, 98), 36), "out of range")
	assert.False(t, b.PlaceCard(newCard(t, "Друид", 1, 97), -1))

	removed := b.RemoveCard(7)
	require.NotNil(t, removed)
	assert.Equal(t, NoPosition, removed.Position)
	assert.Nil(t, b.GetCard(7))
}

func TestMoveFromPositionSeven(t *testing.T) {
	b := New()
	c := newCard(t, "Друид", 1, 1)
	require.True(t, b.PlaceCard(c, 7))

	assert.ElementsMatch(t, []int{2, 6, 8, 12}, b.GetValidMoves(c))

	require.True(t, b.MoveCard(7, 12))
	assert.Equal(t, 12, c.Position)
	assert.Nil(t, b.GetCard(7))

	c.Webbed = true
	assert.Empty(t, b.GetValidMoves(c))
	c.Webbed = false
	c.Tap()
	assert.Empty(t, b.GetValidMoves(c))
}

func TestJumpMoves(t *testing.T) {
	b := New()
	c := newCard(t, "Матросы Аделаиды", 1, 1)
	require.True(t, b.PlaceCard(c, 0))
	moves := b.GetValidMoves(c)
	for _, pos := range moves {
		d := Manhattan(0, pos)
		assert.True(t, d >= 1 && d <= 3)
	}
	assert.Contains(t, moves, 15)
	assert.NotContains(t, moves, 20)
}

func TestAttackTargets(t *testing.T) {
	t.Run("adjacent living cards", func(t *testing.T) {
		b := New()
		atk := newCard(t, "Друид", 1, 1)
		enemy := newCard(t, "Друид", 2, 2)
		ally := newCard(t, "Друид", 1, 3)
		require.True(t, b.PlaceCard(atk, 12))
		require.True(t, b.PlaceCard(enemy, 18))
		require.True(t, b.PlaceCard(ally, 11))

		assert.ElementsMatch(t, []int{18, 11}, b.GetAttackTargets(atk, true))
		assert.ElementsMatch(t, []int{18}, b.GetAttackTargets(atk, false))
	})

	t.Run("restricted strike only hits the cell ahead", func(t *testing.T) {
		b := New()
		cyclops := newCard(t, "Циклоп", 1, 1)
		require.True(t, b.PlaceCard(cyclops, 12))
		require.True(t, b.PlaceCard(newCard(t, "Друид", 2, 2), 18))
		assert.Empty(t, b.GetAttackTargets(cyclops, true))
		require.True(t, b.PlaceCard(newCard(t, "Друид", 2, 3), 17))
		assert.Equal(t, []int{17}, b.GetAttackTargets(cyclops, true))
	})

	t.Run("flyer taunt restricts flyers", func(t *testing.T) {
		b := New()
		flyer := newCard(t, "Корпит", 2, 1)
		require.True(t, b.PlaceCard(flyer, 33))
		require.True(t, b.PlaceCard(newCard(t, "Друид", 1, 2), 3))
		require.True(t, b.PlaceCard(newCard(t, "Циклоп", 1, 3), 8))

		assert.ElementsMatch(t, []int{3, 8}, b.GetAttackTargets(flyer, false))

		require.True(t, b.PlaceCard(newCard(t, "Паук-пересмешник", 1, 4), 14))
		assert.Equal(t, []int{14}, b.GetAttackTargets(flyer, true))
	})
}

func TestValidDefenders(t *testing.T) {
	b := New()
	atk := newCard(t, "Друид", 1, 1)
	target := newCard(t, "Друид", 2, 2)
	near := newCard(t, "Друид", 2, 3)
	far := newCard(t, "Друид", 2, 4)
	tapped := newCard(t, "Друид", 2, 5)
	webbed := newCard(t, "Друид", 2, 6)
	require.True(t, b.PlaceCard(atk, 12))
	require.True(t, b.PlaceCard(target, 17))
	require.True(t, b.PlaceCard(near, 16))
	require.True(t, b.PlaceCard(far, 22))
	require.True(t, b.PlaceCard(tapped, 18))
	require.True(t, b.PlaceCard(webbed, 13))
	tapped.Tap()
	webbed.Webbed = true

	defenders := b.GetValidDefenders(atk, target)
	require.Len(t, defenders, 1)
	assert.Same(t, near, defenders[0])

	for _, d := range defenders {
		assert.False(t, d.Tapped)
		assert.False(t, d.Webbed)
		assert.True(t, d.IsAlive())
		assert.LessOrEqual(t, Chebyshev(d.Position, atk.Position), 1)
		assert.LessOrEqual(t, Chebyshev(d.Position, target.Position), 1)
	}

	t.Run("flying target only defended by flyers", func(t *testing.T) {
		fb := New()
		attacker := newCard(t, "Корпит", 1, 10)
		ft := newCard(t, "Корпит", 2, 11)
		other := newCard(t, "Дракс", 2, 12)
		ground := newCard(t, "Друид", 2, 13)
		require.True(t, fb.PlaceCard(attacker, 30))
		require.True(t, fb.PlaceCard(ft, 33))
		require.True(t, fb.PlaceCard(other, 34))
		require.True(t, fb.PlaceCard(ground, 20))
		got := fb.GetValidDefenders(attacker, ft)
		require.Len(t, got, 1)
		assert.Same(t, other, got[0])
	})
}

func TestCheckWinner(t *testing.T) {
	b := New()
	assert.Equal(t, 0, b.CheckWinner())
	p1 := newCard(t, "Друид", 1, 1)
	require.True(t, b.PlaceCard(p1, 0))
	assert.Equal(t, 1, b.CheckWinner())
	require.True(t, b.PlaceCard(newCard(t, "Корпит", 2, 2), 34))
	assert.Equal(t, -1, b.CheckWinner())
	p1.TakeDamage(99)
	assert.Equal(t, 2, b.CheckWinner())
}

func TestGraveyardAndVisualIndex(t *testing.T) {
	b := New()
	a := newCard(t, "Корпит", 1, 1)
	c := newCard(t, "Корпит", 1, 2)
	require.True(t, b.PlaceCard(a, 30))
	require.True(t, b.PlaceCard(c, 32))
	assert.Equal(t, 1, b.FlyingVisualIndex(32))

	b.SendToGraveyard(a)
	assert.Equal(t, NoPosition, a.Position)
	assert.Nil(t, b.GetCard(30))
	assert.Equal(t, 0, b.FlyingVisualIndex(32))
	assert.Equal(t, []*cards.Card{a}, b.Graveyard(1))
	assert.Same(t, a, b.FindCard(1))
}

func TestPlacementZones(t *testing.T) {
	b := New()
	assert.Len(t, b.PlacementZone(1), 15)
	assert.Len(t, b.PlacementZone(2), 15)
	assert.Equal(t, []int{33, 34, 35}, b.FlyingPlacementZone(2))
	assert.True(t, InPlacementZone(1, 14))
	assert.False(t, InPlacementZone(1, 15))
	assert.True(t, InPlacementZone(2, 35))
	assert.False(t, InPlacementZone(2, 30))
}

func TestDictRoundTrip(t *testing.T) {
	b := New()
	c := newCard(t, "Повелитель молний", 1, 1)
	c.Counters = 2
	require.True(t, b.PlaceCard(c, 4))
	require.True(t, b.PlaceCard(newCard(t, "Корпит", 2, 2), 35))
	dead := newCard(t, "Дракс", 2, 3)
	dead.TakeDamage(10)
	b.SendToGraveyard(dead)

	restored, err := FromDict(b.ToDict())
	require.NoError(t, err)
	assert.Equal(t, b.ToDict(), restored.ToDict())

	_, err = FromDict(State{Cells: []*cards.State{{ID: 1, Name: "missing"}}})
	assert.Error(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	b := New()
	c := newCard(t, "Друид", 1, 1)
	require.True(t, b.PlaceCard(c, 4))
	cpy := b.Clone()
	cpy.GetCard(4).TakeDamage(3)
	assert.Equal(t, 7, b.GetCard(4).CurrLife)
	assert.Equal(t, 4, cpy.GetCard(4).CurrLife)
}
