package game

import (
	"slices"

	"github.com/berserkgame/berserk-server-go/internal/game/abilities"
	"github.com/berserkgame/berserk-server-go/internal/game/board"
	"github.com/berserkgame/berserk-server-go/internal/game/cards"
	"github.com/berserkgame/berserk-server-go/internal/game/interaction"
	"github.com/berserkgame/berserk-server-go/internal/game/rules"
)

// abilityPreconditions checks the card-side requirements of an ability.
func (g *Game) abilityPreconditions(c *cards.Card, a *abilities.Ability) bool {
	if a.RequiresCounters > 0 && c.Counters < a.RequiresCounters {
		return false
	}
	if a.RequiresOwnRow != abilities.RowAny && !inOwnRow(c, a.RequiresOwnRow) {
		return false
	}
	col := column(c)
	if a.RequiresEdgeColumn && col != 0 && col != board.Cols-1 {
		return false
	}
	if a.RequiresCenterColumn && col != 2 {
		return false
	}
	if a.RequiresDamaged && !c.IsDamaged() {
		return false
	}
	if a.RequiresFormation && !c.InFormation {
		return false
	}
	return true
}

func (g *Game) triggerPreconditions(c *cards.Card, a *abilities.Ability) bool {
	if a.RequiresFormation && !c.InFormation {
		return false
	}
	if a.RequiresOwnRow != abilities.RowAny && !inOwnRow(c, a.RequiresOwnRow) {
		return false
	}
	if a.RequiresDamaged && !c.IsDamaged() {
		return false
	}
	return true
}

func targetAllowed(a *abilities.Ability, target *cards.Card) bool {
	if a.TargetMustBeTapped && !target.Tapped {
		return false
	}
	if a.TargetNotFlying && target.Stats.IsFlying {
		return false
	}
	return true
}

// AbilityTargets lists the positions card could aim ability a at.
func (g *Game) AbilityTargets(card *cards.Card, a *abilities.Ability) []int {
	if a.Range == 0 {
		return []int{card.Position}
	}
	if !board.IsValidPos(card.Position) {
		return nil
	}

	var candidates []int
	switch {
	case a.ID == abilities.Lunge.ID || a.ID == abilities.Lunge2.ID:
		candidates = g.lungeCells(card)
	case a.Range == 1:
		candidates = g.board.GetAdjacentCells(card.Position, true)
	default:
		for pos := 0; pos < board.Cells; pos++ {
			if board.Manhattan(card.Position, pos) <= a.Range && board.Chebyshev(card.Position, pos) >= a.MinRange {
				candidates = append(candidates, pos)
			}
		}
	}

	var out []int
	for _, pos := range candidates {
		t := g.board.GetCard(pos)
		if t == nil || !t.IsAlive() || !targetAllowed(a, t) {
			continue
		}
		switch a.TargetType {
		case abilities.TargetEnemy:
			if t.Player == card.Player {
				continue
			}
		case abilities.TargetAlly:
			if t.Player != card.Player || t == card {
				continue
			}
		case abilities.TargetAny:
		default:
			continue
		}
		out = append(out, pos)
	}
	return out
}

// lungeCells are the cells two steps away in a straight line whose middle
// cell holds no enemy.
func (g *Game) lungeCells(card *cards.Card) []int {
	col, row := board.Coords(card.Position)
	var out []int
	for _, d := range [][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}} {
		fc, fr := col+2*d[0], row+2*d[1]
		if fc < 0 || fc >= board.Cols || fr < 0 || fr >= board.Rows {
			continue
		}
		mid := g.board.GetCard(board.Pos(col+d[0], row+d[1]))
		if mid != nil && mid.Player != card.Player {
			continue
		}
		out = append(out, board.Pos(fc, fr))
	}
	return out
}

func (g *Game) useAbility(card *cards.Card, abilityID string) bool {
	g.lastCombat = nil
	if g.pending != nil || g.HasForcedAttack() {
		return false
	}
	a, ok := abilities.Get(abilityID)
	if !ok || !card.HasAbility(abilityID) || !a.IsActive() || a.IsInstant {
		return false
	}
	if !card.CanAct() || !card.CanUseAbility(a.ID) || !g.abilityPreconditions(card, a) {
		return false
	}
	if card.FaceDown {
		g.revealCard(card)
	}

	if a.ID == abilities.AxeStrike.ID && card.Counters > 0 {
		g.activated(card, a, 0)
		g.setPending(interaction.New(interaction.CounterSelectionContext{AbilityID: a.ID}, card.Player, card.ID).
			WithAmountRange(0, card.Counters))
		return true
	}
	if a.TargetType == abilities.TargetSelf {
		g.activated(card, a, card.ID)
		return g.executeAbility(card, card, a, 0)
	}

	targets := g.AbilityTargets(card, a)
	if len(targets) == 0 {
		return false
	}
	g.activated(card, a, 0)
	g.setPending(interaction.New(interaction.AbilityTargetContext{AbilityID: a.ID}, card.Player, card.ID).
		WithPositions(targets))
	return true
}

func (g *Game) activated(card *cards.Card, a *abilities.Ability, targetID int) {
	evt := rules.NewEvent(rules.EventAbilityActivated, card.ID, card.Player)
	evt.Position = card.Position
	evt.AbilityID = a.ID
	evt.TargetID = targetID
	g.emit(evt)
	g.log("%s: %s", card.Name(), a.Name)
}

func (g *Game) confirmCounterSelection() bool {
	d := g.pending
	card := g.board.GetCardByID(d.ActorID)
	a, ok := abilities.Get(d.AbilityID())
	if card == nil || !ok {
		return false
	}
	targets := g.AbilityTargets(card, a)
	if len(targets) == 0 {
		return false
	}
	spent := d.SelectedAmount
	g.clearPending()
	g.setPending(interaction.New(interaction.AbilityTargetContext{AbilityID: a.ID, CountersSpent: spent}, card.Player, card.ID).
		WithPositions(targets))
	return true
}

func (g *Game) selectAbilityTarget(pos int) bool {
	d := g.pending
	if !d.AllowsPosition(pos) {
		return false
	}
	ctx, ok := d.Context.(interaction.AbilityTargetContext)
	if !ok {
		return false
	}
	card := g.board.GetCardByID(d.ActorID)
	target := g.board.GetCard(pos)
	a, found := abilities.Get(ctx.AbilityID)
	if card == nil || target == nil || !found {
		return false
	}
	g.clearPending()
	return g.executeAbility(card, target, a, ctx.CountersSpent)
}

func (g *Game) executeAbility(card, target *cards.Card, a *abilities.Ability, spent int) bool {
	if target.FaceDown {
		g.revealCard(target)
	}
	if target != card {
		g.clearArrows()
		g.emitArrow(card.Position, target.Position, "ability")
	}

	switch a.ID {
	case abilities.WebThrow.ID, abilities.GainCounter.ID, abilities.BorgCounter.ID, abilities.AxeTap.ID:
		return g.applyEffect(card, target, a)

	case abilities.BorgStrike.ID:
		if card.Counters < a.RequiresCounters {
			return false
		}
		card.Counters -= a.RequiresCounters
		wasTapped := target.Tapped
		damage := max(0, a.DamageAmount-g.hitReduction(target, card))
		dealt, _ := g.dealDamage(target, damage, card, false)
		if wasTapped && target.IsAlive() {
			target.Stunned = true
			g.log("%s оглушён", target.Name())
		}
		g.setLastCombat(card, target, 0, 0, dealt, 0, 0, 0)
		g.handleDeath(target, card)
		g.tapCard(card)
		card.PutOnCooldown(a.ID, a.Cooldown)
		g.checkWinner()
		return true

	case abilities.AxeStrike.ID, abilities.MagicalStrike.ID:
		return g.magicAttack(card, target, a, spent)

	case abilities.Discharge.ID:
		damage := a.DamageAmount + 3*card.Counters
		card.Counters = max(0, card.Counters-1)
		if target.HasAbility(abilities.MagicImmune.ID) || target.HasAbility(abilities.DischargeImmune.ID) {
			g.log("%s защищён от разряда", target.Name())
		} else {
			dealt, _ := g.dealDamage(target, damage, card, true)
			g.setLastCombat(card, target, 0, 0, dealt, 0, 0, 0)
			g.handleDeath(target, card)
		}
		g.tapCard(card)
		card.PutOnCooldown(a.ID, a.Cooldown)
		g.checkWinner()
		return true

	case abilities.Lunge.ID, abilities.Lunge2.ID:
		dealt, webbed := g.dealDamage(target, a.DamageAmount, card, false)
		g.setLastCombat(card, target, 0, 0, dealt, 0, 0, 0)
		if !webbed {
			g.triggerHealOnAttack(card)
		}
		g.handleDeath(target, card)
		g.tapCard(card)
		card.PutOnCooldown(a.ID, a.Cooldown)
		g.checkWinner()
		return true
	}

	if a.IsRanged() {
		return g.rangedAttack(card, target, a)
	}
	if a.Effect != abilities.EffectNone {
		return g.applyEffect(card, target, a)
	}
	return false
}

// applyEffect runs the data-driven effect of an activated ability and taps
// the card.
func (g *Game) applyEffect(card, target *cards.Card, a *abilities.Ability) bool {
	switch a.Effect {
	case abilities.EffectHealTarget:
		g.heal(target, a.HealAmount)
	case abilities.EffectHealSelf:
		g.heal(card, a.HealAmount)
	case abilities.EffectFullHealSelf:
		g.heal(card, card.Life())
	case abilities.EffectBuffAttack:
		target.TempAttackBonus += a.DamageBonus
	case abilities.EffectBuffRanged:
		target.TempRangedBonus += a.DamageBonus
	case abilities.EffectBuffDice:
		target.TempDiceBonus += a.DiceBonusAttack
	case abilities.EffectGrantDirect:
		target.HasDirect = true
	case abilities.EffectGainCounter:
		if card.Counters >= card.MaxCounters {
			return false
		}
		card.Counters++
		g.log("%s получает фишку (%d)", card.Name(), card.Counters)
	case abilities.EffectApplyWebbed:
		target.Webbed = true
		g.log("%s опутан паутиной", target.Name())
	default:
		return false
	}
	g.tapCard(card)
	card.PutOnCooldown(a.ID, a.Cooldown)
	return true
}

// applyTriggerEffect is applyEffect for triggered abilities: it acts on the
// card itself and never taps.
func (g *Game) applyTriggerEffect(c *cards.Card, a *abilities.Ability) {
	switch a.Effect {
	case abilities.EffectHealSelf:
		g.heal(c, a.HealAmount)
	case abilities.EffectFullHealSelf:
		g.heal(c, c.Life())
	case abilities.EffectBuffAttack:
		c.TempAttackBonus += a.DamageBonus
	case abilities.EffectBuffRanged:
		c.TempRangedBonus += a.DamageBonus
	case abilities.EffectBuffDice:
		c.TempDiceBonus += a.DiceBonusAttack
	case abilities.EffectGrantDirect:
		c.HasDirect = true
	case abilities.EffectGainCounter:
		if c.Counters < c.MaxCounters {
			c.Counters++
		}
	}
}

// UsableAbilities lists the active abilities card could use right now.
func (g *Game) UsableAbilities(card *cards.Card) []string {
	if g.pending != nil || g.HasForcedAttack() || card.Player != g.turn.CurrentPlayer() || !card.CanAct() {
		return nil
	}
	var out []string
	for _, a := range card.Abilities() {
		if !a.IsActive() || a.IsInstant || !card.CanUseAbility(a.ID) || !g.abilityPreconditions(card, a) {
			continue
		}
		if a.TargetType != abilities.TargetSelf && a.ID != abilities.AxeStrike.ID && len(g.AbilityTargets(card, a)) == 0 {
			continue
		}
		out = append(out, a.ID)
	}
	return slices.Clip(out)
}
