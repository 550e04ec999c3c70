package game

import (
	"slices"

	"github.com/berserkgame/berserk-server-go/internal/game/abilities"
	"github.com/berserkgame/berserk-server-go/internal/game/board"
	"github.com/berserkgame/berserk-server-go/internal/game/cards"
	"github.com/berserkgame/berserk-server-go/internal/game/interaction"
)

// Post-combat triggers open at most one decision: whichever fires first while
// nothing else is pending wins.

func (g *Game) triggerCounterShot(attacker *cards.Card) {
	if g.pending != nil || !attacker.HasAbility(abilities.CounterShot.ID) || !board.IsValidPos(attacker.Position) {
		return
	}
	var targets []int
	for _, c := range g.board.GetAllCards(0, false) {
		if c == attacker || !c.IsAlive() {
			continue
		}
		if board.Chebyshev(attacker.Position, c.Position) >= 2 {
			targets = append(targets, c.Position)
		}
	}
	for _, f := range g.board.GetFlyingCards(0) {
		if f.IsAlive() {
			targets = append(targets, f.Position)
		}
	}
	if len(targets) == 0 {
		return
	}
	g.setPending(interaction.New(interaction.CounterShotContext{Damage: abilities.CounterShot.DamageAmount}, attacker.Player, attacker.ID).
		WithPositions(targets))
	g.log("%s: выберите цель для выстрела", attacker.Name())
}

func (g *Game) selectCounterShot(pos int) bool {
	d := g.pending
	ctx, ok := d.Context.(interaction.CounterShotContext)
	if !ok || !d.AllowsPosition(pos) {
		return false
	}
	return g.shootTrigger(d.ActorID, pos, ctx.Damage)
}

func (g *Game) triggerMovementShot(card *cards.Card) {
	if g.pending != nil || !card.HasAbility(abilities.MovementShot.ID) || card.Tapped || !board.IsValidPos(card.Position) {
		return
	}
	backed := false
	for _, pos := range g.board.GetAdjacentCells(card.Position, false) {
		ally := g.board.GetCard(pos)
		if ally != nil && ally.Player == card.Player && ally.Cost() >= 7 {
			backed = true
			break
		}
	}
	if !backed {
		return
	}

	opp := board.Opponent(card.Player)
	var targets []int
	for _, c := range g.board.GetAllCards(opp, false) {
		if !c.IsAlive() {
			continue
		}
		if board.Manhattan(card.Position, c.Position) <= abilities.MovementShot.Range && board.Chebyshev(card.Position, c.Position) >= 2 {
			targets = append(targets, c.Position)
		}
	}
	for _, f := range g.board.GetFlyingCards(opp) {
		if f.IsAlive() && !slices.Contains(targets, f.Position) {
			targets = append(targets, f.Position)
		}
	}
	if len(targets) == 0 {
		return
	}
	g.setPending(interaction.New(interaction.MovementShotContext{Damage: abilities.MovementShot.DamageAmount}, card.Player, card.ID).
		WithPositions(targets))
	g.log("%s: можно выстрелить", card.Name())
}

func (g *Game) selectMovementShot(pos int) bool {
	d := g.pending
	ctx, ok := d.Context.(interaction.MovementShotContext)
	if !ok || !d.AllowsPosition(pos) {
		return false
	}
	return g.shootTrigger(d.ActorID, pos, ctx.Damage)
}

// shootTrigger resolves a free triggered shot from shooterID at pos.
func (g *Game) shootTrigger(shooterID, pos, damage int) bool {
	shooter := g.board.GetCardByID(shooterID)
	target := g.board.GetCard(pos)
	if shooter == nil || target == nil {
		return false
	}
	g.clearPending()
	g.emitArrow(shooter.Position, target.Position, "shot")
	if target.HasAbility(abilities.ShotImmune.ID) {
		g.log("%s защищён от выстрелов", target.Name())
		g.clearArrows()
		return true
	}
	dealt, _ := g.dealDamage(target, damage, shooter, false)
	g.log("%s стреляет: %s -%d", shooter.Name(), target.Name(), dealt)
	g.handleDeath(target, shooter)
	g.clearArrows()
	g.checkWinner()
	return true
}

// triggerHealOnAttack offers the attacker a heal equal to the medium strike
// of whatever stands directly in front of it.
func (g *Game) triggerHealOnAttack(attacker *cards.Card) {
	if g.pending != nil || !attacker.HasAbility(abilities.HealOnAttack.ID) || !attacker.IsAlive() || !board.IsValidPos(attacker.Position) {
		return
	}
	front := attacker.Position + board.Cols
	if attacker.Player == 2 {
		front = attacker.Position - board.Cols
	}
	if !board.IsValidPos(front) {
		return
	}
	fc := g.board.GetCard(front)
	if fc == nil {
		return
	}
	amount := fc.Stats.Attack[1]
	if amount <= 0 || !attacker.IsDamaged() {
		return
	}
	g.setPending(interaction.New(interaction.HealConfirmContext{HealAmount: amount}, attacker.Player, attacker.ID).
		WithTarget(fc.ID))
	g.log("%s: лечиться на %d?", attacker.Name(), amount)
}

func (g *Game) resolveHealConfirm(accept bool) bool {
	d := g.pending
	ctx, ok := d.Context.(interaction.HealConfirmContext)
	if !ok {
		return false
	}
	healer := g.board.GetCardByID(d.ActorID)
	if healer == nil {
		return false
	}
	g.clearPending()
	if accept && healer.IsAlive() {
		g.heal(healer, ctx.HealAmount)
	} else {
		g.log("%s отказывается от лечения", healer.Name())
	}
	return true
}

// triggerStench makes the owner of an untapped, hit target pick between
// tapping it and taking damage.
func (g *Game) triggerStench(attacker, target *cards.Card, wasTapped, hit bool) {
	if g.pending != nil || !attacker.HasAbility(abilities.HellishStench.ID) || wasTapped || !hit {
		return
	}
	if !target.IsAlive() || !target.OnBoard() || target.Tapped {
		return
	}
	damage := abilities.HellishStench.DamageAmount
	g.setPending(interaction.New(interaction.StenchContext{AttackerID: attacker.ID, DamageAmount: damage}, target.Player, attacker.ID).
		WithTarget(target.ID))
	g.log("%s: Адское зловоние! %s закрывается или получает %d", attacker.Name(), target.Name(), damage)
}

func (g *Game) resolveStench(tap bool) bool {
	d := g.pending
	ctx, ok := d.Context.(interaction.StenchContext)
	if !ok {
		return false
	}
	target := g.board.GetCardByID(d.TargetID)
	attacker := g.board.GetCardByID(ctx.AttackerID)
	g.clearPending()
	if target == nil {
		return true
	}
	if tap {
		g.tapCard(target)
		g.log("%s закрывается от зловония", target.Name())
		return true
	}
	dealt, _ := g.dealDamage(target, ctx.DamageAmount, attacker, false)
	g.log("%s получает %d от зловония", target.Name(), dealt)
	g.handleDeath(target, attacker)
	g.checkWinner()
	return true
}
