package game

import (
	"github.com/berserkgame/berserk-server-go/internal/game/abilities"
	"github.com/berserkgame/berserk-server-go/internal/game/board"
	"github.com/berserkgame/berserk-server-go/internal/game/interaction"
	"github.com/berserkgame/berserk-server-go/internal/game/rules"
	"go.uber.org/zap"
)

func (g *Game) startTurn() {
	player := g.turn.CurrentPlayer()
	if player == 2 {
		for _, c := range g.board.GetAllCards(2, true) {
			if c.FaceDown {
				g.revealCard(c)
			}
		}
	}

	for _, c := range g.board.GetAllCards(0, true) {
		c.ResetArmor()
		if c.InFormation {
			c.FormationArmorRemaining = c.FormationArmorMax
		} else {
			c.FormationArmorRemaining = 0
		}
		if c.Player == player {
			c.ResetForTurn()
		}
	}
	g.lastCombat = nil
	g.friendlyFire = board.NoPosition

	evt := rules.NewEvent(rules.EventTurnStarted, 0, player)
	evt.TurnNumber = g.turn.TurnNumber()
	g.emit(evt)
	g.log("Ход %d: игрок %d", g.turn.TurnNumber(), player)

	g.queueValhalla(player)
	g.processNextValhalla()
	g.turnStartTriggers(player)
	g.updateForcedAttackers()
}

// endTurn passes the turn. Open decisions that belong to the ending player's
// own choices are dropped; anything the opponent still has to answer blocks.
func (g *Game) endTurn() bool {
	if g.pending != nil {
		switch g.pending.Kind {
		case interaction.KindMovementShot, interaction.KindAbilityTarget, interaction.KindCounterSelection:
			g.clearPending()
		default:
			return false
		}
	}
	if g.HasForcedAttack() {
		return false
	}

	player := g.turn.CurrentPlayer()
	turn := g.turn.TurnNumber()
	for _, c := range g.board.GetAllCards(player, true) {
		c.TickDefenderBuff()
		if c.CanAttackFlyer && c.CanAttackFlyerUntil <= turn {
			c.CanAttackFlyer = false
			c.CanAttackFlyerUntil = 0
		}
		c.Webbed = false
	}

	evt := rules.NewEvent(rules.EventTurnEnded, 0, player)
	evt.TurnNumber = turn
	g.emit(evt)

	g.turn.Advance()
	g.startTurn()
	return true
}

func (g *Game) queueValhalla(player int) {
	for _, c := range g.board.Graveyard(player) {
		if !c.KilledByEnemy || c.ValhallaTriggered {
			continue
		}
		queued := false
		for _, a := range c.Abilities() {
			if a.Trigger == abilities.TriggerValhalla {
				g.pendingValhalla = append(g.pendingValhalla, ValhallaEntry{CardID: c.ID, AbilityID: a.ID})
				queued = true
			}
		}
		if queued {
			c.ValhallaTriggered = true
		}
	}
}

// processNextValhalla opens the next queued Valhalla decision that has a
// living ally to receive it.
func (g *Game) processNextValhalla() {
	for len(g.pendingValhalla) > 0 && g.pending == nil {
		entry := g.pendingValhalla[0]
		g.pendingValhalla = g.pendingValhalla[1:]

		dead := g.board.FindCard(entry.CardID)
		if dead == nil {
			continue
		}
		var positions, ids []int
		for _, c := range g.board.GetAllCards(dead.Player, true) {
			if c.IsAlive() {
				positions = append(positions, c.Position)
				ids = append(ids, c.ID)
			}
		}
		if len(positions) == 0 {
			continue
		}
		g.log("Вальхалла: %s выбирает союзника", dead.Name())
		g.setPending(interaction.New(interaction.ValhallaContext{AbilityID: entry.AbilityID}, dead.Player, dead.ID).
			WithPositions(positions).
			WithCards(ids))
	}
}

func (g *Game) selectValhalla(pos int) bool {
	d := g.pending
	if !d.AllowsPosition(pos) {
		return false
	}
	target := g.board.GetCard(pos)
	a, ok := abilities.Get(d.AbilityID())
	if target == nil || !ok {
		return false
	}
	switch a.ID {
	case abilities.ValhallaOva.ID:
		target.TempDiceBonus += a.DiceBonusAttack
	case abilities.ValhallaStrike.ID:
		target.TempAttackBonus += a.DamageBonus
	}
	evt := rules.NewEvent(rules.EventValhallaApplied, target.ID, target.Player)
	evt.Position = pos
	evt.SourceID = d.ActorID
	evt.AbilityID = a.ID
	g.emit(evt)
	g.log("Вальхалла усиливает %s", target.Name())

	g.clearPending()
	g.processNextValhalla()
	return true
}

func (g *Game) turnStartTriggers(player int) {
	for _, c := range g.board.GetAllCards(player, true) {
		if !c.IsAlive() {
			continue
		}
		for _, a := range c.Abilities() {
			if a.Trigger != abilities.TriggerTurnStart || !g.triggerPreconditions(c, a) {
				continue
			}
			g.applyTriggerEffect(c, a)
		}
	}
}

// updateForcedAttackers records the current player's must_attack_tapped cards
// that stand next to a tapped enemy, with the positions they must attack.
func (g *Game) updateForcedAttackers() {
	g.forcedAttackers = make(map[int][]int)
	if g.turn.Phase() != rules.PhaseMain {
		return
	}
	player := g.turn.CurrentPlayer()
	for _, c := range g.board.GetAllCards(player, false) {
		if !c.CanAct() || !c.HasAbility(abilities.MustAttackTapped.ID) {
			continue
		}
		var targets []int
		for _, pos := range g.board.GetAdjacentCells(c.Position, true) {
			t := g.board.GetCard(pos)
			if t != nil && t.IsAlive() && t.Player != player && t.Tapped {
				targets = append(targets, pos)
			}
		}
		if len(targets) > 0 {
			g.forcedAttackers[c.ID] = targets
		}
	}
}

// checkWinner ends the game once a side has no living cards.
func (g *Game) checkWinner() bool {
	if g.IsOver() {
		return true
	}
	w := g.board.CheckWinner()
	if w == NoWinner {
		return false
	}
	g.finish(w)
	return true
}

func (g *Game) finish(winner int) {
	g.priority.Close()
	g.stack.Clear()
	g.pendingDice = nil
	g.pendingValhalla = nil
	g.clearPending()
	g.forcedAttackers = make(map[int][]int)
	g.turn.End()
	g.winner = winner

	evt := rules.NewEvent(rules.EventGameOver, 0, 0)
	evt.Winner = winner
	g.emit(evt)
	if winner == 0 {
		g.log("Ничья")
	} else {
		g.log("Победил игрок %d", winner)
	}
	g.logger.Info("game over", zap.Int("winner", winner), zap.Int("turn", g.turn.TurnNumber()))
}
