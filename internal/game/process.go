package game

import (
	"github.com/berserkgame/berserk-server-go/internal/game/cards"
	"github.com/berserkgame/berserk-server-go/internal/game/interaction"
	"github.com/berserkgame/berserk-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// ProcessCommand validates and applies cmd. A rejected command returns false
// and no events, and the game is restored to exactly its prior state.
func (g *Game) ProcessCommand(cmd Command) (bool, []rules.Event) {
	saved := g.gameState.clone()
	g.events = nil

	if !g.route(cmd) {
		g.gameState = saved
		g.events = nil
		g.logger.Debug("command rejected",
			zap.String("type", string(cmd.Type)),
			zap.Int("player", cmd.Player),
			zap.Int("card_id", cmd.CardID),
			zap.Int("position", cmd.Position),
		)
		return false, nil
	}

	events := g.events
	g.events = nil
	g.logger.Debug("command applied",
		zap.String("type", string(cmd.Type)),
		zap.Int("player", cmd.Player),
		zap.Int("events", len(events)),
	)
	return true, events
}

func (g *Game) route(cmd Command) bool {
	if g.IsOver() || !cmd.Type.Valid() {
		return false
	}
	if cmd.Type == CmdConcede {
		return g.concede(cmd.Player)
	}
	if g.turn.Phase() != rules.PhaseMain {
		return false
	}
	if cmd.Player != g.ActingPlayer() {
		return false
	}

	var card *cards.Card
	switch cmd.Type {
	case CmdMove, CmdAttack, CmdUseAbility, CmdUseInstant, CmdPrepareFlyerAttack:
		card = g.board.GetCardByID(cmd.CardID)
		if card == nil || card.Player != cmd.Player {
			return false
		}
	}

	switch cmd.Type {
	case CmdMove:
		return g.moveCard(card, cmd.Position)
	case CmdAttack:
		return g.attack(card, cmd.Position)
	case CmdPrepareFlyerAttack:
		return g.prepareFlyerAttack(card)
	case CmdUseAbility:
		return g.useAbility(card, cmd.AbilityID)
	case CmdUseInstant:
		return g.useInstant(card, cmd.Option)
	case CmdConfirm:
		return g.confirm(cmd.Confirmed)
	case CmdCancel:
		return g.cancel()
	case CmdChoosePosition:
		return g.choosePosition(cmd.Position)
	case CmdChooseCard:
		return g.chooseCard(cmd.CardID)
	case CmdChooseAmount:
		return g.chooseAmount(cmd.Amount)
	case CmdPassPriority:
		return g.AwaitingPriority() && g.passPriority()
	case CmdSkip:
		return g.skip()
	case CmdEndTurn:
		return g.endTurn()
	}
	return false
}

func (g *Game) confirm(confirmed bool) bool {
	if g.pending == nil {
		return false
	}
	switch g.pending.Kind {
	case interaction.KindHealConfirm:
		return g.resolveHealConfirm(confirmed)
	case interaction.KindExchangeChoice:
		return g.resolveExchange(!confirmed)
	case interaction.KindStenchChoice:
		return g.resolveStench(confirmed)
	case interaction.KindCounterSelection:
		return g.confirmCounterSelection()
	}
	return false
}

// cancel aborts a cancellable decision; with nothing to cancel it is a no-op
// that still counts as accepted.
func (g *Game) cancel() bool {
	if g.pending != nil && g.pending.Kind.Cancellable() {
		g.log("Действие отменено")
		g.clearPending()
	}
	return true
}

func (g *Game) choosePosition(pos int) bool {
	if g.pending == nil || !g.pending.Kind.SelectsPosition() {
		return false
	}
	switch g.pending.Kind {
	case interaction.KindDefender:
		c := g.board.GetCard(pos)
		if c == nil {
			return false
		}
		return g.chooseDefender(c.ID)
	case interaction.KindAbilityTarget:
		return g.selectAbilityTarget(pos)
	case interaction.KindCounterShot:
		return g.selectCounterShot(pos)
	case interaction.KindMovementShot:
		return g.selectMovementShot(pos)
	case interaction.KindValhalla:
		return g.selectValhalla(pos)
	}
	return false
}

func (g *Game) chooseCard(cardID int) bool {
	if g.pending == nil {
		return false
	}
	if g.pending.Kind == interaction.KindDefender {
		return g.chooseDefender(cardID)
	}
	if g.pending.Kind.SelectsPosition() {
		c := g.board.GetCardByID(cardID)
		if c == nil {
			return false
		}
		return g.choosePosition(c.Position)
	}
	return false
}

func (g *Game) chooseAmount(n int) bool {
	if !g.AwaitingCounterSelection() {
		return false
	}
	g.pending.SelectedAmount = g.pending.ClampAmount(n)
	return true
}

func (g *Game) skip() bool {
	switch {
	case g.AwaitingDefender():
		return g.skipDefender()
	case g.AwaitingMovementShot():
		g.log("Выстрел при движении пропущен")
		g.clearPending()
		return true
	}
	return false
}

// AgreeDraw ends the game without a winner. It is driven by the match layer
// once both players agreed, so it is not a Command.
func (g *Game) AgreeDraw() (bool, []rules.Event) {
	if g.IsOver() || g.turn.Phase() == rules.PhaseSetup {
		return false, nil
	}
	g.events = nil
	g.finish(0)
	events := g.events
	g.events = nil
	return true, events
}

func (g *Game) concede(player int) bool {
	if player != 1 && player != 2 {
		return false
	}
	g.log("Игрок %d сдался", player)
	g.finish(3 - player)
	return true
}
