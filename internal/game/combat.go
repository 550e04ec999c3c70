package game

import (
	"slices"

	"github.com/berserkgame/berserk-server-go/internal/game/abilities"
	"github.com/berserkgame/berserk-server-go/internal/game/board"
	"github.com/berserkgame/berserk-server-go/internal/game/cards"
	"github.com/berserkgame/berserk-server-go/internal/game/dice"
	"github.com/berserkgame/berserk-server-go/internal/game/interaction"
	"github.com/berserkgame/berserk-server-go/internal/game/rules"
)

func (g *Game) emitArrow(from, to int, kind string) {
	evt := rules.NewEvent(rules.EventArrowAdded, 0, 0)
	evt.FromPosition = from
	evt.ToPosition = to
	evt.ArrowType = kind
	g.emit(evt)
}

func (g *Game) clearArrows() {
	g.emit(rules.NewEvent(rules.EventArrowsCleared, 0, 0))
}

func hasDirectAttack(attacker, target *cards.Card) bool {
	if attacker.HasDirect {
		return true
	}
	if attacker.HasAbility(abilities.TappedBonus.ID) && target.Tapped {
		return true
	}
	for _, a := range passives(attacker) {
		if a.GrantsDirect {
			return true
		}
	}
	return false
}

func (g *Game) attack(card *cards.Card, pos int) bool {
	if g.pending != nil || !card.CanAct() {
		return false
	}
	if g.HasForcedAttack() && !slices.Contains(g.forcedAttackers[card.ID], pos) {
		return false
	}
	target := g.board.GetCard(pos)
	if target == nil || target == card {
		return false
	}

	friendly := target.Player == card.Player
	if friendly {
		if !slices.Contains(g.board.GetAttackTargets(card, true), pos) {
			return false
		}
	} else if !slices.Contains(g.AttackTargets(card), pos) {
		return false
	}

	g.lastCombat = nil
	if card.FaceDown {
		g.revealCard(card)
	}
	if card.CanAttackFlyer && target.Stats.IsFlying {
		card.CanAttackFlyer = false
		card.CanAttackFlyerUntil = 0
	}
	g.clearArrows()
	g.emitArrow(card.Position, pos, "attack")

	if friendly {
		if g.friendlyFire != pos {
			g.friendlyFire = pos
			g.log("Атаковать союзника %s? Повторите для подтверждения", target.Name())
			return true
		}
		g.friendlyFire = board.NoPosition
		g.log("%s атакует союзника %s", card.Name(), target.Name())
		g.resolveCombat(card, target)
		return true
	}
	g.friendlyFire = board.NoPosition

	var defenders []*cards.Card
	if !hasDirectAttack(card, target) {
		defenders = g.board.GetValidDefenders(card, target)
	}
	if len(defenders) > 0 {
		ids := make([]int, 0, len(defenders))
		positions := make([]int, 0, len(defenders))
		for _, d := range defenders {
			ids = append(ids, d.ID)
			positions = append(positions, d.Position)
		}
		g.log("%s атакует %s, игрок %d выбирает защитника", card.Name(), target.Name(), target.Player)
		g.setPending(interaction.New(interaction.DefenderContext{}, target.Player, card.ID).
			WithTarget(target.ID).
			WithCards(ids).
			WithPositions(positions))
		return true
	}

	if target.FaceDown {
		g.revealCard(target)
	}
	g.resolveCombat(card, target)
	return true
}

func (g *Game) chooseDefender(defenderID int) bool {
	d := g.pending
	if d == nil || d.Kind != interaction.KindDefender || !d.AllowsCard(defenderID) {
		return false
	}
	attacker := g.board.GetCardByID(d.ActorID)
	defender := g.board.GetCardByID(defenderID)
	if attacker == nil || defender == nil {
		return false
	}
	if defender.FaceDown {
		g.revealCard(defender)
	}
	g.log("%s перехватывает атаку", defender.Name())
	g.clearArrows()
	g.emitArrow(attacker.Position, defender.Position, "attack")

	for _, a := range defender.Abilities() {
		if a.Trigger == abilities.TriggerDefend {
			defender.DefenderBuffAttack = a.DamageBonus
			defender.DefenderBuffDice = a.DiceBonusAttack
			defender.DefenderBuffTurns = 1
			g.log("%s: %s", defender.Name(), a.StatusText)
		}
	}
	g.clearPending()

	g.resolveCombat(attacker, defender)

	if defender.IsAlive() && defender.OnBoard() && !defender.Tapped && !defender.HasAbility(abilities.DefenderNoTap.ID) {
		g.tapCard(defender)
	}
	return true
}

func (g *Game) skipDefender() bool {
	d := g.pending
	attacker := g.board.GetCardByID(d.ActorID)
	target := g.board.GetCardByID(d.TargetID)
	if attacker == nil || target == nil {
		return false
	}
	g.log("Защита не выставлена")
	if target.FaceDown {
		g.revealCard(target)
	}
	g.clearPending()
	g.resolveCombat(attacker, target)
	return true
}

// resolveCombat rolls the melee dice and either opens the priority window or
// finishes the fight at once.
func (g *Game) resolveCombat(attacker, defender *cards.Card) {
	if defender.Webbed {
		g.dealDamage(defender, 0, attacker, false)
		g.setLastCombat(attacker, defender, 0, 0, 0, 0, 0, 0)
		g.tapCard(attacker)
		g.checkWinner()
		return
	}

	tapped := defender.Tapped
	ctx := &DiceContext{
		Type:              DiceMelee,
		AttackerID:        attacker.ID,
		DefenderID:        defender.ID,
		TargetID:          defender.ID,
		AtkRoll:           g.roller.Roll(),
		AtkBonus:          g.attackDiceBonus(attacker),
		DefenderWasTapped: tapped,
	}
	if !tapped {
		ctx.DefRoll = g.roller.Roll()
		ctx.DefBonus = g.defenseDiceBonus(defender)
	}
	atk, def := attacker.EffectiveAttack(), defender.EffectiveAttack()
	ctx.DiceMatter = dice.Matters(fixedTable(atk[:]), fixedTable(def[:]), tapped)

	evt := rules.NewEvent(rules.EventDiceRolled, attacker.ID, attacker.Player)
	evt.AttackerID = attacker.ID
	evt.DefenderID = defender.ID
	evt.AttackerRoll = ctx.AtkRoll
	evt.DefenderRoll = ctx.DefRoll
	evt.AttackerBonus = ctx.AtkBonus
	evt.DefenderBonus = ctx.DefBonus
	g.emit(evt)
	g.log("%s [%d] vs %s [%d]", attacker.Name(), ctx.AtkRoll, defender.Name(), ctx.DefRoll)

	g.pendingDice = ctx
	if ctx.DiceMatter && g.enterPriority() {
		return
	}
	g.finishCombat()
}

// meleeOutcome turns the current dice into tiers and the roll difference.
func meleeOutcome(ctx *DiceContext) (dice.Outcome, int) {
	atkTotal := ctx.AtkRoll + ctx.AtkModifier + ctx.AtkBonus
	if ctx.DefenderWasTapped {
		return dice.Outcome{AttackerTier: dice.Tier(atkTotal), DefenderTier: -1}, 0
	}
	diff := atkTotal - (ctx.DefRoll + ctx.DefModifier + ctx.DefBonus)
	return dice.Opposed(diff, atkTotal), diff
}

func (g *Game) finishCombat() {
	ctx := g.pendingDice
	attacker := g.board.GetCardByID(ctx.AttackerID)
	defender := g.board.GetCardByID(ctx.DefenderID)
	if attacker == nil || defender == nil {
		g.pendingDice = nil
		return
	}

	out, diff := meleeOutcome(ctx)
	if out.Exchange && !ctx.ExchangeResolved {
		acting := defender.Player
		if diff > 0 {
			acting = attacker.Player
		}
		g.log("Обмен ударами: игрок %d выбирает полный или ослабленный удар", acting)
		g.setPending(interaction.New(interaction.ExchangeContext{AttackerAdvantage: diff > 0, RollDiff: diff}, acting, attacker.ID).
			WithTarget(defender.ID))
		return
	}
	g.applyMelee(attacker, defender, ctx, out)
}

// resolveExchange settles an exchange; reduce takes the weaker, one-sided result.
func (g *Game) resolveExchange(reduce bool) bool {
	ctx := g.pendingDice
	if ctx == nil || ctx.Type != DiceMelee {
		return false
	}
	attacker := g.board.GetCardByID(ctx.AttackerID)
	defender := g.board.GetCardByID(ctx.DefenderID)
	if attacker == nil || defender == nil {
		return false
	}
	g.clearPending()
	ctx.ExchangeResolved = true

	out, diff := meleeOutcome(ctx)
	if reduce {
		out = out.Reduced(diff)
		g.log("Выбран ослабленный удар")
	} else {
		g.log("Выбран полный обмен")
	}
	g.applyMelee(attacker, defender, ctx, out)
	return true
}

// strikeDamage is the raw damage of c hitting other at tier, before reductions.
func (g *Game) strikeDamage(c, other *cards.Card, tier int) int {
	return c.EffectiveAttack()[tier] + g.positionalBonus(c, tier) + g.formationAttackBonus(c) + g.elementBonus(c, other)
}

func (g *Game) applyMelee(attacker, defender *cards.Card, ctx *DiceContext, out dice.Outcome) {
	g.pendingDice = nil

	toDefender := 0
	if out.AttackerTier >= 0 {
		toDefender = g.strikeDamage(attacker, defender, out.AttackerTier)
		if ctx.DefenderWasTapped {
			if attacker.HasAbility(abilities.TappedBonus.ID) {
				toDefender += abilities.TappedBonus.DamageBonus
			}
			if attacker.HasAbility(abilities.ClosedAttackBonus.ID) {
				toDefender += abilities.ClosedAttackBonus.DamageBonus
			}
		}
		if attacker.HasAbility(abilities.AntiMagic.ID) && hasMagicAbility(defender) {
			toDefender++
		}
		toDefender = max(0, toDefender-g.damageReduction(defender, attacker, out.AttackerTier))
	}
	toAttacker := 0
	if out.DefenderTier >= 0 {
		toAttacker = g.strikeDamage(defender, attacker, out.DefenderTier)
		toAttacker = max(0, toAttacker-g.damageReduction(attacker, defender, out.DefenderTier))
	}

	dealt, _ := g.dealDamage(defender, toDefender, attacker, false)
	taken := attacker.TakeDamage(toAttacker)
	if toAttacker > 0 {
		evt := rules.NewEventWithAmount(rules.EventCardDamaged, attacker.ID, attacker.Player, taken)
		evt.Position = attacker.Position
		evt.SourceID = defender.ID
		g.emit(evt)
	}
	g.clearArrows()

	atkRoll := ctx.AtkRoll + ctx.AtkModifier
	defRoll := ctx.DefRoll + ctx.DefModifier
	g.setLastCombat(attacker, defender, atkRoll, defRoll, dealt, taken, ctx.AtkBonus, ctx.DefBonus)
	g.log("[%d+%d] vs [%d+%d]: %s -%d, %s -%d",
		atkRoll, ctx.AtkBonus, defRoll, ctx.DefBonus, defender.Name(), dealt, attacker.Name(), taken)

	if attacker.IsAlive() {
		g.triggerCounterShot(attacker)
		g.triggerHealOnAttack(attacker)
	}
	if attacker.IsAlive() && defender.IsAlive() {
		g.triggerStench(attacker, defender, ctx.DefenderWasTapped, out.AttackerTier >= 0)
	}

	g.handleDeath(defender, attacker)
	if !g.handleDeath(attacker, defender) && attacker.IsAlive() {
		g.tapCard(attacker)
	}
	g.updateForcedAttackers()
	g.checkWinner()
}

// rangedAttack shoots or throws at target with a ranged ability.
func (g *Game) rangedAttack(card, target *cards.Card, a *abilities.Ability) bool {
	if a.RangedType == abilities.RangedShot && target.HasAbility(abilities.ShotImmune.ID) {
		g.log("%s защищён от выстрелов", target.Name())
		g.tapCard(card)
		card.PutOnCooldown(a.ID, a.Cooldown)
		return true
	}
	ctx := &DiceContext{
		Type:       DiceRanged,
		AttackerID: card.ID,
		TargetID:   target.ID,
		DefenderID: target.ID,
		AtkRoll:    g.roller.Roll(),
		AbilityID:  a.ID,
		RangedType: string(a.RangedType),
		DiceMatter: !fixedTable(a.RangedDamage),
	}
	g.emitSingleRoll(card, target, ctx.AtkRoll)
	g.pendingDice = ctx
	if ctx.DiceMatter && g.enterPriority() {
		return true
	}
	g.finishRanged()
	return true
}

func (g *Game) emitSingleRoll(card, target *cards.Card, roll int) {
	evt := rules.NewEvent(rules.EventDiceRolled, card.ID, card.Player)
	evt.AttackerID = card.ID
	evt.DefenderID = target.ID
	evt.AttackerRoll = roll
	g.emit(evt)
	g.log("%s бросает [%d] по %s", card.Name(), roll, target.Name())
}

func (g *Game) finishRanged() {
	ctx := g.pendingDice
	g.pendingDice = nil
	card := g.board.GetCardByID(ctx.AttackerID)
	target := g.board.GetCardByID(ctx.TargetID)
	a, ok := abilities.Get(ctx.AbilityID)
	if card == nil || target == nil || !ok {
		return
	}

	roll := dice.Clamp(ctx.AtkRoll + ctx.AtkModifier)
	tier := dice.Tier(roll)
	damage := card.EffectiveAttack()[tier]
	if a.IsRanged() {
		damage = abilities.TierValue(a.RangedDamage, tier)
	}
	damage += card.TempRangedBonus
	if a.BonusRangedVsDefensive > 0 && g.hasDefensiveAbility(target) {
		damage += a.BonusRangedVsDefensive
	}

	dealt, _ := g.dealDamage(target, damage, card, false)
	g.setLastCombat(card, target, roll, 0, dealt, 0, 0, 0)
	g.log("%s: %s -%d", a.Name, target.Name(), dealt)

	g.handleDeath(target, card)
	g.tapCard(card)
	card.PutOnCooldown(a.ID, a.Cooldown)
	g.checkWinner()
}

// magicAttack resolves a magical strike; spent counters add damage.
func (g *Game) magicAttack(card, target *cards.Card, a *abilities.Ability, spent int) bool {
	if target.HasAbility(abilities.MagicImmune.ID) {
		card.Counters = max(0, card.Counters-spent)
		g.setLastCombat(card, target, 0, 0, 0, 0, 0, 0)
		g.log("%s защищён от магии", target.Name())
		g.tapCard(card)
		card.PutOnCooldown(a.ID, a.Cooldown)
		g.checkWinner()
		return true
	}
	ctx := &DiceContext{
		Type:          DiceMagic,
		AttackerID:    card.ID,
		TargetID:      target.ID,
		DefenderID:    target.ID,
		AtkRoll:       g.roller.Roll(),
		AbilityID:     a.ID,
		CountersSpent: spent,
		DiceMatter:    len(a.MagicDamage) == 3 && !fixedTable(a.MagicDamage),
	}
	g.emitSingleRoll(card, target, ctx.AtkRoll)
	g.pendingDice = ctx
	if ctx.DiceMatter && g.enterPriority() {
		return true
	}
	g.finishMagic()
	return true
}

func (g *Game) finishMagic() {
	ctx := g.pendingDice
	g.pendingDice = nil
	card := g.board.GetCardByID(ctx.AttackerID)
	target := g.board.GetCardByID(ctx.TargetID)
	a, ok := abilities.Get(ctx.AbilityID)
	if card == nil || target == nil || !ok {
		return
	}

	roll := dice.Clamp(ctx.AtkRoll + ctx.AtkModifier)
	damage := 2
	if len(a.MagicDamage) == 3 {
		damage = abilities.TierValue(a.MagicDamage, dice.Tier(roll))
	}
	damage += a.MagicCounterBonus * ctx.CountersSpent
	card.Counters = max(0, card.Counters-ctx.CountersSpent)
	damage = max(0, damage-g.hitReduction(target, card))

	dealt, _ := g.dealDamage(target, damage, card, true)
	g.setLastCombat(card, target, roll, 0, dealt, 0, 0, 0)
	g.log("%s: %s -%d", a.Name, target.Name(), dealt)

	g.handleDeath(target, card)
	g.tapCard(card)
	card.PutOnCooldown(a.ID, a.Cooldown)
	g.checkWinner()
}
