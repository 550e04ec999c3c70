package game

import (
	"testing"

	"github.com/berserkgame/berserk-server-go/internal/game/board"
	"github.com/berserkgame/berserk-server-go/internal/game/cards"
	"github.com/berserkgame/berserk-server-go/internal/game/interaction"
	"github.com/berserkgame/berserk-server-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	runner = "Бегущая по кронам"
	keeper = "Хранитель гор"
)

func duel() ([]Placement, []Placement) {
	return []Placement{{Name: runner, Position: 12}},
		[]Placement{{Name: keeper, Position: 17}, {Name: "Лёккен", Position: 29}}
}

func TestSetupWithPlacement(t *testing.T) {
	p1, p2 := duel()
	h := NewGameHarness(t, p1, p2)
	g := h.game

	assert.Equal(t, rules.PhaseMain, g.Phase())
	assert.Equal(t, 1, g.CurrentPlayer())
	assert.Equal(t, 1, g.TurnNumber())
	assert.Equal(t, NoWinner, g.Winner())

	assert.Equal(t, 1, h.At(12).ID)
	assert.False(t, h.At(12).FaceDown)
	assert.False(t, h.At(17).FaceDown, "player 2 front cards are revealed")
	assert.True(t, h.At(29).FaceDown, "player 2 back row stays hidden")

	t.Run("rejects foreign zone", func(t *testing.T) {
		g := NewGame(nil, nil)
		err := g.SetupWithPlacement([]Placement{{Name: runner, Position: 20}}, p2)
		require.Error(t, err)
		assert.Equal(t, rules.PhaseSetup, g.Phase())
	})

	t.Run("rejects ground card in flying zone", func(t *testing.T) {
		g := NewGame(nil, nil)
		require.Error(t, g.SetupWithPlacement([]Placement{{Name: runner, Position: board.FlyingP1Start}}, p2))
	})

	t.Run("second setup fails", func(t *testing.T) {
		assert.ErrorIs(t, g.SetupWithPlacement(p1, p2), ErrNotInSetup)
	})
}

func TestAutoPlacement(t *testing.T) {
	p1, err := AutoPlacement(cards.StarterDeck(1), 1)
	require.NoError(t, err)
	p2, err := AutoPlacement(cards.StarterDeck(2), 2)
	require.NoError(t, err)

	for _, p := range p1 {
		assert.True(t, board.InPlacementZone(1, p.Position), "%s at %d", p.Name, p.Position)
	}
	for _, p := range p2 {
		assert.True(t, board.InPlacementZone(2, p.Position), "%s at %d", p.Name, p.Position)
	}
	assert.Len(t, p1, 15, "player 1 fills the ground zone, extra cards stay out")

	g := NewGame(nil, nil)
	require.NoError(t, g.SetupWithPlacement(p1, p2))
	for _, f := range g.Board().GetFlyingCards(2) {
		assert.True(t, f.Stats.IsFlying)
	}
}

func TestHandPlacementFlow(t *testing.T) {
	g := NewGame(nil, nil)
	require.NoError(t, g.SetupGame(cards.StarterDeck(1), cards.StarterDeck(2)))

	hand := g.Hand(1)
	require.NotEmpty(t, hand)
	assert.GreaterOrEqual(t, hand[0].Cost(), hand[len(hand)-1].Cost(), "hand sorted by cost")

	assert.False(t, g.PlaceCardFromHand(1, hand[0].ID, 20), "outside zone")
	assert.False(t, g.FinishPlacement(1), "nothing placed yet")
	require.True(t, g.PlaceCardFromHand(1, hand[0].ID, 2))
	require.True(t, g.FinishPlacement(1))

	p2 := g.Hand(2)
	assert.False(t, g.PlaceCardFromHand(1, p2[0].ID, 17), "not player 1's turn to place")
	require.True(t, g.PlaceCardFromHand(2, p2[0].ID, 17))
	require.True(t, g.FinishPlacement(2))

	assert.Equal(t, rules.PhaseMain, g.Phase())
	assert.Empty(t, g.Hand(1))
	assert.True(t, hasEvent(g.DrainEvents(), rules.EventGameStarted))
}

func TestMoveFromPositionSeven(t *testing.T) {
	h := NewGameHarness(t,
		[]Placement{{Name: runner, Position: 7}, {Name: keeper, Position: 8}},
		[]Placement{{Name: keeper, Position: 27}},
	)
	card := h.At(7)

	want := []int{2, 6, 12}
	assert.ElementsMatch(t, want, h.game.ValidMoves(card))

	events := h.Do(MoveCommand(1, card.ID, 12))
	evt, ok := findEvent(events, rules.EventCardMoved)
	require.True(t, ok)
	assert.Equal(t, 7, evt.FromPosition)
	assert.Equal(t, 12, evt.ToPosition)
	assert.Equal(t, card.ID, evt.CardID)
	assert.Equal(t, 1, card.CurrMove)
	assert.Nil(t, h.game.Board().GetCard(7))
}

func TestIllegalCommandsLeaveStateUntouched(t *testing.T) {
	p1, p2 := duel()
	h := NewGameHarness(t, p1, p2)
	runnerID, keeperID := h.At(12).ID, h.At(17).ID

	cases := map[string]Command{
		"wrong player moves":      MoveCommand(2, keeperID, 22),
		"move onto occupied cell": MoveCommand(1, runnerID, 17),
		"move too far":            MoveCommand(1, runnerID, 0),
		"move opponent card":      MoveCommand(1, keeperID, 22),
		"attack empty cell":       AttackCommand(1, runnerID, 18),
		"attack out of reach":     AttackCommand(1, runnerID, 29),
		"end turn out of turn":    EndTurnCommand(2),
		"pass without window":     PassPriorityCommand(1),
		"choose without decision": ChoosePositionCommand(1, 17),
		"confirm without prompt":  ConfirmCommand(1, true),
		"skip without decision":   SkipCommand(1),
		"unknown ability":         UseAbilityCommand(1, runnerID, "discharge"),
		"instant without window":  UseInstantCommand(1, runnerID, "atk_plus1"),
		"unknown verb":            {Type: "FLY", Player: 1, Position: -1},
		"missing card":            MoveCommand(1, 99, 13),
	}
	for name, cmd := range cases {
		t.Run(name, func(t *testing.T) {
			h.Reject(cmd)
		})
	}
}

func TestAtMostOneDecisionPending(t *testing.T) {
	p1, p2 := duel()
	h := NewGameHarness(t, p1, p2)
	h.Roll(6, 2)
	h.Attack(12, 17)

	awaiting := []func() bool{
		h.game.AwaitingPriority, h.game.AwaitingAbilityTarget, h.game.AwaitingDefender,
		h.game.AwaitingCounterShot, h.game.AwaitingMovementShot, h.game.AwaitingValhalla,
		h.game.AwaitingHealConfirm, h.game.AwaitingExchangeChoice, h.game.AwaitingStenchChoice,
		h.game.AwaitingCounterSelection,
	}
	count := func() int {
		n := 0
		for _, f := range awaiting {
			if f() {
				n++
			}
		}
		return n
	}

	require.NotNil(t, h.game.Pending())
	assert.Equal(t, 1, count())
	assert.True(t, h.game.AwaitingExchangeChoice())

	h.Do(ConfirmCommand(1, true))
	assert.Nil(t, h.game.Pending())
	assert.Equal(t, 0, count())
}

func TestExchangeSixVersusTwo(t *testing.T) {
	t.Run("full exchange", func(t *testing.T) {
		p1, p2 := duel()
		h := NewGameHarness(t, p1, p2)
		attacker, defender := h.At(12), h.At(17)

		h.Roll(6, 2)
		h.Attack(12, 17)
		d := h.AssertAwaiting(interaction.KindExchangeChoice, 1)
		ctx := d.Context.(interaction.ExchangeContext)
		assert.True(t, ctx.AttackerAdvantage)
		assert.Equal(t, 4, ctx.RollDiff)

		h.Do(ConfirmCommand(1, true))
		h.AssertLife(defender.ID, defender.Life()-attacker.Attack()[2])
		h.AssertLife(attacker.ID, attacker.Life()-defender.Attack()[0])
		assert.True(t, attacker.Tapped)
	})

	t.Run("reduced exchange", func(t *testing.T) {
		p1, p2 := duel()
		h := NewGameHarness(t, p1, p2)
		attacker, defender := h.At(12), h.At(17)

		h.Roll(6, 2)
		h.Attack(12, 17)
		h.AssertAwaiting(interaction.KindExchangeChoice, 1)
		h.Reject(ConfirmCommand(2, false))

		h.Do(ConfirmCommand(1, false))
		h.AssertLife(defender.ID, defender.Life()-attacker.Attack()[1])
		h.AssertLife(attacker.ID, attacker.Life())
		require.NotNil(t, h.game.LastCombat())
		assert.Equal(t, 0, h.game.LastCombat().DefenderDamageDealt)
	})
}

func TestUnitWithOneLifeDies(t *testing.T) {
	p1, p2 := duel()
	h := NewGameHarness(t, p1, p2)
	victim := h.At(17)
	victim.CurrLife = 1

	h.Roll(2, 1)
	events := h.Attack(12, 17)

	died, ok := findEvent(events, rules.EventCardDied)
	require.True(t, ok)
	assert.Equal(t, victim.ID, died.CardID)
	assert.Equal(t, 17, died.Position)

	assert.False(t, victim.IsAlive())
	assert.Equal(t, cards.NoPosition, victim.Position)
	assert.Nil(t, h.game.Board().GetCard(17))
	assert.Contains(t, h.game.Board().Graveyard(2), victim)
	assert.True(t, victim.KilledByEnemy)
	assert.False(t, h.game.IsOver(), "player 2 still has a card")
}

func TestLastCardDeathEndsGame(t *testing.T) {
	h := NewGameHarness(t,
		[]Placement{{Name: runner, Position: 12}},
		[]Placement{{Name: keeper, Position: 17}},
	)
	h.At(17).CurrLife = 1

	h.Roll(2, 1)
	events := h.Attack(12, 17)
	over, ok := findEvent(events, rules.EventGameOver)
	require.True(t, ok)
	assert.Equal(t, 1, over.Winner)
	assert.True(t, h.game.IsOver())
	assert.Equal(t, 0, h.game.ActingPlayer())

	h.Reject(EndTurnCommand(1))
}

func TestDefenderInterception(t *testing.T) {
	h := NewGameHarness(t,
		[]Placement{{Name: runner, Position: 12}},
		[]Placement{{Name: keeper, Position: 17}, {Name: "Клаэр", Position: 18}},
	)
	guard := h.At(18)

	h.Attack(12, 17)
	d := h.AssertAwaiting(interaction.KindDefender, 2)
	assert.Equal(t, []int{guard.ID}, d.ValidCardIDs)
	assert.Equal(t, h.At(17).ID, d.TargetID)

	h.Reject(ChooseCardCommand(1, guard.ID))
	h.Reject(ChooseCardCommand(2, h.At(17).ID))

	guard = h.At(18)
	h.Roll(3, 3)
	h.Do(ChooseCardCommand(2, guard.ID))
	assert.Equal(t, 2, guard.DefenderBuffAttack, "defender_buff fires on defence")
	assert.True(t, guard.Tapped)

	t.Run("skip lets the target take the hit", func(t *testing.T) {
		h := NewGameHarness(t,
			[]Placement{{Name: runner, Position: 12}},
			[]Placement{{Name: keeper, Position: 17}, {Name: "Клаэр", Position: 18}},
		)
		h.Attack(12, 17)
		h.Roll(6, 1)
		h.Do(SkipCommand(2))
		target := h.At(17)
		h.AssertLife(target.ID, target.Life()-h.At(12).Attack()[2])
	})
}

func TestTurnCycle(t *testing.T) {
	p1, p2 := duel()
	h := NewGameHarness(t, p1, p2)

	events := h.EndTurn()
	assert.True(t, hasEvent(events, rules.EventTurnEnded))
	assert.Equal(t, 2, h.game.CurrentPlayer())
	assert.False(t, h.At(29).FaceDown, "player 2 reveals at the start of its turn")
	revealed, ok := findEvent(events, rules.EventCardRevealed)
	require.True(t, ok)
	require.NotNil(t, revealed.Card)

	h.EndTurn()
	assert.Equal(t, 1, h.game.CurrentPlayer())
	assert.Equal(t, 2, h.game.TurnNumber())
}

func TestConcede(t *testing.T) {
	p1, p2 := duel()
	h := NewGameHarness(t, p1, p2)
	events := h.Do(ConcedeCommand(2))
	over, ok := findEvent(events, rules.EventGameOver)
	require.True(t, ok)
	assert.Equal(t, 1, over.Winner)
	assert.Equal(t, 1, h.game.Winner())
}

func TestFriendlyFireNeedsTwoClicks(t *testing.T) {
	h := NewGameHarness(t,
		[]Placement{{Name: runner, Position: 12}, {Name: keeper, Position: 13}},
		[]Placement{{Name: keeper, Position: 27}},
	)
	ally := h.At(13)

	h.Attack(12, 13)
	h.AssertIdle()
	h.AssertLife(ally.ID, ally.Life())

	h.Roll(6, 1)
	h.Attack(12, 13)
	assert.Less(t, ally.CurrLife, ally.Life())
}

func TestForcedAttack(t *testing.T) {
	h := NewGameHarness(t,
		[]Placement{{Name: "Гном-басаарг", Position: 12}, {Name: runner, Position: 2}},
		[]Placement{{Name: keeper, Position: 17}},
	)
	h.EndTurn()
	h.At(17).Tapped = true
	h.EndTurn()

	h.At(17).Tapped = true
	h.game.updateForcedAttackers()
	gnome := h.At(12)
	require.True(t, h.game.HasForcedAttack())
	assert.Equal(t, []int{17}, h.game.ForcedAttackers()[gnome.ID])

	h.Reject(EndTurnCommand(1))
	h.Reject(MoveCommand(1, h.At(2).ID, 1))
	h.Roll(4)
	h.Attack(12, 17)
	assert.False(t, h.game.HasForcedAttack())
}

func TestAgreeDraw(t *testing.T) {
	p1, p2 := duel()
	h := NewGameHarness(t, p1, p2)

	ok, events := h.game.AgreeDraw()
	require.True(t, ok)
	evt, found := findEvent(events, rules.EventGameOver)
	require.True(t, found)
	assert.Equal(t, 0, evt.Winner)
	assert.True(t, h.game.IsOver())
	assert.Equal(t, 0, h.game.Winner())

	ok, _ = h.game.AgreeDraw()
	assert.False(t, ok, "finished games cannot be drawn again")

	t.Run("not during setup", func(t *testing.T) {
		ok, _ := NewGame(nil, nil).AgreeDraw()
		assert.False(t, ok)
	})
}
