package game

import (
	"slices"

	"github.com/berserkgame/berserk-server-go/internal/game/abilities"
	"github.com/berserkgame/berserk-server-go/internal/game/board"
	"github.com/berserkgame/berserk-server-go/internal/game/cards"
	"github.com/berserkgame/berserk-server-go/internal/game/rules"
)

func (g *Game) moveCard(card *cards.Card, pos int) bool {
	if g.pending != nil || g.HasForcedAttack() || !card.CanAct() {
		return false
	}
	if !slices.Contains(g.board.GetValidMoves(card), pos) {
		return false
	}
	g.lastCombat = nil
	if card.FaceDown {
		g.revealCard(card)
	}

	from := card.Position
	distance := board.Manhattan(from, pos)
	if !g.board.MoveCard(from, pos) {
		return false
	}
	if card.HasAbility(abilities.Jump.ID) {
		card.CurrMove = 0
	} else {
		card.CurrMove -= distance
	}

	evt := rules.NewEvent(rules.EventCardMoved, card.ID, card.Player)
	evt.FromPosition = from
	evt.ToPosition = pos
	evt.Position = pos
	g.emit(evt)
	g.log("%s: %d -> %d", card.Name(), from, pos)

	g.recalculateFormations()
	g.triggerMovementShot(card)
	g.updateForcedAttackers()
	return true
}

// CanPrepareFlyerAttack reports whether card may spend its turn preparing to
// strike flyers: only when the opponent has nothing but flyers left.
func (g *Game) CanPrepareFlyerAttack(card *cards.Card) bool {
	return card.Player == g.turn.CurrentPlayer() &&
		!card.Stats.IsFlying &&
		!card.Tapped &&
		!card.CanAttackFlyer &&
		g.opponentHasOnlyFlyers(card.Player)
}

func (g *Game) prepareFlyerAttack(card *cards.Card) bool {
	if g.pending != nil || !card.IsAlive() || !g.CanPrepareFlyerAttack(card) {
		return false
	}
	g.tapCard(card)
	card.CanAttackFlyer = true
	card.CanAttackFlyerUntil = g.turn.TurnNumber() + 1
	g.log("%s готовится атаковать летающих", card.Name())
	return true
}

// AttackTargets lists the positions card may attack, including enemy flyers
// once it has prepared for them.
func (g *Game) AttackTargets(card *cards.Card) []int {
	targets := g.board.GetAttackTargets(card, false)
	if card.CanAttackFlyer && !board.IsFlyingPos(card.Position) {
		for _, f := range g.board.GetFlyingCards(board.Opponent(card.Player)) {
			if f.IsAlive() && !slices.Contains(targets, f.Position) {
				targets = append(targets, f.Position)
			}
		}
	}
	return targets
}

// ValidMoves exposes the board's move generation for clients.
func (g *Game) ValidMoves(card *cards.Card) []int {
	if card.Player != g.turn.CurrentPlayer() || g.pending != nil || g.HasForcedAttack() {
		return nil
	}
	return g.board.GetValidMoves(card)
}
