package game

import (
	"github.com/berserkgame/berserk-server-go/internal/game/abilities"
	"github.com/berserkgame/berserk-server-go/internal/game/board"
	"github.com/berserkgame/berserk-server-go/internal/game/cards"
	"github.com/berserkgame/berserk-server-go/internal/game/interaction"
	"github.com/berserkgame/berserk-server-go/internal/game/rules"
)

// LuckOptions are the ways a luck instant may bend the pending roll.
var LuckOptions = []string{"atk_plus1", "atk_minus1", "atk_reroll", "def_plus1", "def_minus1", "def_reroll"}

func validLuckOption(option string) bool {
	for _, o := range LuckOptions {
		if o == option {
			return true
		}
	}
	return false
}

func instantAbility(c *cards.Card) *abilities.Ability {
	for _, a := range c.Abilities() {
		if a.IsInstant && a.Trigger == abilities.TriggerDiceRoll {
			return a
		}
	}
	return nil
}

// GetLegalInstants lists player's cards that could play an instant on the
// pending roll right now.
func (g *Game) GetLegalInstants(player int) []*cards.Card {
	if g.pendingDice == nil {
		return nil
	}
	var out []*cards.Card
	for _, c := range g.board.GetAllCards(player, true) {
		if !c.IsAlive() || c.Tapped || c.Webbed || g.stack.Contains(c.ID) {
			continue
		}
		if c.ID == g.pendingDice.AttackerID || c.ID == g.pendingDice.DefenderID {
			continue
		}
		a := instantAbility(c)
		if a == nil || !c.CanUseAbility(a.ID) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (g *Game) hasInstants(player int) bool {
	return len(g.GetLegalInstants(player)) > 0
}

// enterPriority opens the window for the pending roll if anybody can answer
// it. The current player acts first when holding an instant.
func (g *Game) enterPriority() bool {
	current := g.turn.CurrentPlayer()
	opp := board.Opponent(current)
	mine, theirs := g.hasInstants(current), g.hasInstants(opp)
	if !mine && !theirs {
		return false
	}
	g.stack.Clear()
	if mine {
		g.priority.Open(current)
	} else {
		g.priority.Open(opp, current)
	}
	g.setPending(interaction.New(interaction.PriorityContext{}, g.priority.Player(), 0))
	g.emitPriority()
	g.log("Приоритет у игрока %d", g.priority.Player())
	return true
}

func (g *Game) emitPriority() {
	g.emit(rules.NewEvent(rules.EventPriorityChanged, 0, g.priority.Player()))
}

func (g *Game) handPriority(player int, resetPasses bool) {
	if resetPasses {
		g.priority.Give(player)
	} else {
		g.priority.MoveTo(player)
	}
	g.pending.ActingPlayer = player
	g.emitPriority()
}

func (g *Game) useInstant(card *cards.Card, option string) bool {
	if !g.AwaitingPriority() || card.Player != g.priority.Player() || !validLuckOption(option) {
		return false
	}
	a := instantAbility(card)
	if a == nil {
		return false
	}
	legal := false
	for _, c := range g.GetLegalInstants(card.Player) {
		if c.ID == card.ID {
			legal = true
			break
		}
	}
	if !legal {
		return false
	}

	if card.FaceDown {
		g.revealCard(card)
	}
	g.stack.Push(rules.StackItem{CardID: card.ID, Player: card.Player, AbilityID: a.ID, Option: option})
	evt := rules.NewEvent(rules.EventInstantUsed, card.ID, card.Player)
	evt.Position = card.Position
	evt.AbilityID = a.ID
	evt.Option = option
	g.emit(evt)
	g.log("%s: %s (%s)", card.Name(), a.Name, option)

	opp := board.Opponent(card.Player)
	if g.hasInstants(opp) {
		g.handPriority(opp, true)
		return true
	}
	g.resolvePriority()
	return true
}

func (g *Game) passPriority() bool {
	player := g.priority.Player()
	g.priority.Pass(player)
	opp := board.Opponent(player)
	if !g.priority.HasPassed(opp) && g.hasInstants(opp) {
		g.handPriority(opp, false)
		return true
	}
	g.priority.Pass(opp)
	g.resolvePriority()
	return true
}

// resolvePriority applies the instant stack last-in first-out, closes the
// window and continues the action that rolled.
func (g *Game) resolvePriority() {
	resolved := false
	for !g.stack.IsEmpty() {
		item, err := g.stack.Pop()
		if err != nil {
			break
		}
		g.applyLuck(item)
		resolved = true
	}
	g.priority.Close()
	g.clearPending()
	g.emitPriority()

	ctx := g.pendingDice
	if ctx == nil {
		return
	}
	if resolved {
		evt := rules.NewEvent(rules.EventDiceRolled, ctx.AttackerID, 0)
		evt.AttackerID = ctx.AttackerID
		evt.DefenderID = ctx.DefenderID
		evt.AttackerRoll = ctx.AtkRoll + ctx.AtkModifier
		evt.DefenderRoll = ctx.DefRoll + ctx.DefModifier
		evt.AttackerBonus = ctx.AtkBonus
		evt.DefenderBonus = ctx.DefBonus
		g.emit(evt)
	}
	switch ctx.Type {
	case DiceMelee:
		g.finishCombat()
	case DiceRanged:
		g.finishRanged()
	case DiceMagic:
		g.finishMagic()
	}
}

func (g *Game) applyLuck(item rules.StackItem) {
	ctx := g.pendingDice
	card := g.board.GetCardByID(item.CardID)
	if ctx == nil || card == nil {
		return
	}
	defenceApplies := ctx.Type == DiceMelee && ctx.DefRoll > 0
	switch item.Option {
	case "atk_plus1":
		ctx.AtkModifier++
	case "atk_minus1":
		ctx.AtkModifier--
	case "atk_reroll":
		ctx.AtkRoll = g.roller.Roll()
	case "def_plus1":
		if defenceApplies {
			ctx.DefModifier++
		}
	case "def_minus1":
		if defenceApplies {
			ctx.DefModifier--
		}
	case "def_reroll":
		if defenceApplies {
			ctx.DefRoll = g.roller.Roll()
		}
	}
	g.tapCard(card)
	g.log("Удача %s: %s", card.Name(), item.Option)
}
