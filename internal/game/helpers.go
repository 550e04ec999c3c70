package game

import (
	"github.com/berserkgame/berserk-server-go/internal/game/abilities"
	"github.com/berserkgame/berserk-server-go/internal/game/board"
	"github.com/berserkgame/berserk-server-go/internal/game/cards"
	"github.com/berserkgame/berserk-server-go/internal/game/rules"
)

func column(c *cards.Card) int {
	if !board.IsValidPos(c.Position) {
		return -1
	}
	col, _ := board.Coords(c.Position)
	return col
}

// ownRow returns the row counted from the owner's home edge: 0 home, 2 the
// row facing the enemy, -1 when off the grid.
func ownRow(c *cards.Card) int {
	if !board.IsValidPos(c.Position) {
		return -1
	}
	_, row := board.Coords(c.Position)
	if c.Player == 2 {
		row = board.Rows - 1 - row
	}
	return row
}

func inOwnRow(c *cards.Card, req int) bool {
	switch req {
	case abilities.RowFront:
		return ownRow(c) == 2
	case abilities.RowMiddle:
		return ownRow(c) == 1
	case abilities.RowBack:
		return ownRow(c) == 0
	}
	return true
}

func isDiagonal(a, b *cards.Card) bool {
	if !board.IsValidPos(a.Position) || !board.IsValidPos(b.Position) {
		return false
	}
	ac, ar := board.Coords(a.Position)
	bc, br := board.Coords(b.Position)
	return ac != bc && ar != br
}

func passives(c *cards.Card) []*abilities.Ability {
	var out []*abilities.Ability
	for _, a := range c.Abilities() {
		if a.IsPassive() {
			out = append(out, a)
		}
	}
	return out
}

func fixedTable(values []int) bool {
	for _, v := range values {
		if v != values[0] {
			return false
		}
	}
	return true
}

func (g *Game) attackDiceBonus(c *cards.Card) int {
	bonus := c.TempDiceBonus + c.DefenderBuffDice
	for _, a := range passives(c) {
		if a.DiceBonusAttack <= 0 {
			continue
		}
		if a.RequiresEdgeColumn && column(c) != 0 && column(c) != board.Cols-1 {
			continue
		}
		bonus += a.DiceBonusAttack
	}
	return bonus
}

func (g *Game) defenseDiceBonus(c *cards.Card) int {
	bonus := 0
	for _, a := range passives(c) {
		switch {
		case a.DiceBonusDefense > 0:
			bonus += a.DiceBonusDefense
		case a.ID == abilities.CenterColumnDefense.ID && column(c) == 2:
			bonus++
		case a.IsFormation && a.FormationDiceBonus > 0 && g.formationActive(c, a):
			bonus += a.FormationDiceBonus
		}
	}
	return bonus
}

// damageReduction is what defender shaves off a strike from attacker at tier.
func (g *Game) damageReduction(defender, attacker *cards.Card, tier int) int {
	reduction := 0
	for _, a := range passives(defender) {
		switch {
		case a.ID == abilities.CenterColumnDefense.ID:
			if column(defender) == 2 && tier == 0 {
				reduction++
			}
		case a.DamageReduction > 0:
			switch {
			case a.ID == abilities.DiagonalDefense.ID:
				if isDiagonal(attacker, defender) {
					reduction += a.DamageReduction
				}
			case a.TargetElement != "":
				if string(attacker.Stats.Element) == a.TargetElement {
					reduction += a.DamageReduction
				}
			case a.CostThreshold == 0 || attacker.Cost() <= a.CostThreshold:
				reduction += a.DamageReduction
			}
		case a.IsFormation && a.FormationDamageReduction > 0 && g.formationActive(defender, a):
			reduction += a.FormationDamageReduction
		}
	}
	return reduction
}

// hitReduction applies to single hits such as magic and special strikes.
func (g *Game) hitReduction(defender, attacker *cards.Card) int {
	if defender.HasAbility(abilities.DiagonalDefense.ID) && isDiagonal(attacker, defender) {
		return abilities.DiagonalDefense.DamageReduction
	}
	return 0
}

func (g *Game) elementBonus(attacker, defender *cards.Card) int {
	bonus := 0
	for _, a := range attacker.Abilities() {
		if a.BonusDamageVsElement > 0 && a.TargetElement != "" && string(defender.Stats.Element) == a.TargetElement {
			bonus += a.BonusDamageVsElement
		}
	}
	return bonus
}

// positionalBonus adds per-tier damage that depends on where the card stands.
func (g *Game) positionalBonus(c *cards.Card, tier int) int {
	bonus := 0
	for _, a := range passives(c) {
		if a.ID == abilities.FrontRowStrong.ID && tier == 2 && inOwnRow(c, a.RequiresOwnRow) {
			bonus += a.DamageBonus
		}
	}
	return bonus
}

func (g *Game) formationAttackBonus(c *cards.Card) int {
	bonus := 0
	for _, a := range c.Abilities() {
		if a.IsFormation && a.FormationAttackBonus > 0 && g.formationActive(c, a) {
			bonus += a.FormationAttackBonus
		}
	}
	return bonus
}

func hasMagicAbility(c *cards.Card) bool {
	for _, a := range c.Abilities() {
		if a.IsMagic {
			return true
		}
	}
	return false
}

// hasDefensiveAbility is what throws with a bonus against defensive cards look for.
func (g *Game) hasDefensiveAbility(c *cards.Card) bool {
	if c.Armor() > 0 || c.FormationArmorMax > 0 {
		return true
	}
	for _, a := range c.Abilities() {
		if a.DiceBonusAttack > 0 || a.DiceBonusDefense > 0 {
			return true
		}
		if a.IsFormation && a.FormationDiceBonus > 0 && c.InFormation {
			return true
		}
	}
	return false
}

func hasFormationAbility(c *cards.Card) bool {
	for _, a := range c.Abilities() {
		if a.IsFormation {
			return true
		}
	}
	return false
}

// formationPartners are living orthogonal allies that also fight in formation.
func (g *Game) formationPartners(c *cards.Card) []*cards.Card {
	if !board.IsValidPos(c.Position) {
		return nil
	}
	var out []*cards.Card
	for _, pos := range g.board.GetAdjacentCells(c.Position, false) {
		ally := g.board.GetCard(pos)
		if ally != nil && ally.Player == c.Player && ally.IsAlive() && hasFormationAbility(ally) {
			out = append(out, ally)
		}
	}
	return out
}

// formationActive reports whether a formation ability of c currently applies.
func (g *Game) formationActive(c *cards.Card, a *abilities.Ability) bool {
	if !c.InFormation {
		return false
	}
	if !a.RequiresEliteAlly && !a.RequiresCommonAlly {
		return true
	}
	for _, ally := range g.formationPartners(c) {
		if a.RequiresEliteAlly && ally.Stats.IsElite {
			return true
		}
		if a.RequiresCommonAlly && !ally.Stats.IsElite {
			return true
		}
	}
	return false
}

func (g *Game) recalculateFormations() {
	for _, c := range g.board.GetAllCards(0, true) {
		was := c.InFormation
		c.InFormation = c.IsAlive() && hasFormationAbility(c) && len(g.formationPartners(c)) > 0
		if !c.InFormation {
			c.FormationArmorMax = 0
			c.FormationArmorRemaining = 0
			continue
		}
		armor := 0
		for _, a := range c.Abilities() {
			if a.IsFormation && a.FormationArmorBonus > 0 && g.formationActive(c, a) {
				armor += a.FormationArmorBonus
			}
		}
		c.FormationArmorMax = armor
		if !was {
			c.FormationArmorRemaining = armor
		} else {
			c.FormationArmorRemaining = min(c.FormationArmorRemaining, armor)
		}
	}
}

func (g *Game) opponentHasOnlyFlyers(player int) bool {
	opp := board.Opponent(player)
	for _, c := range g.board.GetAllCards(opp, false) {
		if c.IsAlive() {
			return false
		}
	}
	for _, c := range g.board.GetFlyingCards(opp) {
		if c.IsAlive() {
			return true
		}
	}
	return false
}

func (g *Game) tapCard(c *cards.Card) {
	c.Tap()
	evt := rules.NewEvent(rules.EventCardTapped, c.ID, c.Player)
	evt.Position = c.Position
	g.emit(evt)
}

// dealDamage hits target for amount. A web soaks the whole hit and breaks;
// formation armor then card armor absorb non-magical damage.
func (g *Game) dealDamage(target *cards.Card, amount int, source *cards.Card, magical bool) (dealt int, webbed bool) {
	if target.Webbed {
		target.Webbed = false
		g.emit(rules.NewEvent(rules.EventArrowsCleared, target.ID, target.Player))
		g.log("%s сбрасывает паутину", target.Name())
		return 0, true
	}
	if amount <= 0 {
		return 0, false
	}
	if !magical && target.FormationArmorRemaining > 0 {
		absorbed := min(amount, target.FormationArmorRemaining)
		target.FormationArmorRemaining -= absorbed
		amount -= absorbed
	}
	dealt, _ = target.TakeDamageWithArmor(amount, magical)

	evt := rules.NewEventWithAmount(rules.EventCardDamaged, target.ID, target.Player, dealt)
	evt.Position = target.Position
	if source != nil {
		evt.SourceID = source.ID
	}
	g.emit(evt)
	return dealt, false
}

func (g *Game) heal(c *cards.Card, amount int) int {
	healed := c.Heal(amount)
	if healed > 0 {
		evt := rules.NewEventWithAmount(rules.EventCardHealed, c.ID, c.Player, healed)
		evt.Position = c.Position
		g.emit(evt)
		g.log("%s восстанавливает %d", c.Name(), healed)
	}
	return healed
}

// handleDeath moves a dead card to its graveyard. killer may be nil.
func (g *Game) handleDeath(c, killer *cards.Card) bool {
	if c.IsAlive() || !c.OnBoard() {
		return false
	}
	evt := rules.NewEvent(rules.EventCardDied, c.ID, c.Player)
	evt.Position = c.Position
	evt.VisualIndex = g.board.FlyingVisualIndex(c.Position)
	g.emit(evt)
	g.log("%s погибает", c.Name())

	c.Tapped = false
	if killer != nil && killer.Player != c.Player {
		c.KilledByEnemy = true
		if killer.IsAlive() {
			for _, a := range killer.Abilities() {
				if a.Trigger == abilities.TriggerKill {
					g.applyTriggerEffect(killer, a)
				}
			}
		}
	}
	g.board.SendToGraveyard(c)
	g.recalculateFormations()
	return true
}

func (g *Game) setLastCombat(attacker, defender *cards.Card, atkRoll, defRoll, atkDealt, defDealt, atkBonus, defBonus int) {
	g.lastCombat = &CombatResult{
		AttackerRoll:        atkRoll,
		DefenderRoll:        defRoll,
		AttackerDamageDealt: atkDealt,
		DefenderDamageDealt: defDealt,
		AttackerBonus:       atkBonus,
		DefenderBonus:       defBonus,
		AttackerName:        attacker.Name(),
		DefenderName:        defender.Name(),
		AttackerPlayer:      attacker.Player,
		DefenderPlayer:      defender.Player,
	}
}
