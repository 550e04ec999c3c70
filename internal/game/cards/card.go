package cards

import (
	"fmt"

	"github.com/berserkgame/berserk-server-go/internal/game/abilities"
)

// NoPosition marks a card that is not on the board.
const NoPosition = -1

// Element is the card's realm.
type Element string

const (
	ElementMountains Element = "MOUNTAINS"
	ElementForest    Element = "FOREST"
	ElementNeutral   Element = "NEUTRAL"
	ElementPlains    Element = "PLAINS"
	ElementSwamps    Element = "SWAMPS"
	ElementDarkness  Element = "DARKNESS"
)

// Kind separates ground creatures from flyers.
type Kind string

const (
	KindCreature Kind = "CREATURE"
	KindFlyer    Kind = "FLYER"
)

// Stats is the immutable catalog definition of a card.
type Stats struct {
	Name        string
	Cost        int
	Element     Element
	Kind        Kind
	Life        int
	Attack      [3]int
	Move        int
	IsUnique    bool
	IsFlying    bool
	IsElite     bool
	Class       string
	Description string
	AbilityIDs  []string
	MaxCounters int
	Armor       int
	Image       string
}

// Card is a card instance in a game.
type Card struct {
	Stats    *Stats
	ID       int
	Player   int
	Position int

	CurrLife int
	CurrMove int
	Tapped   bool
	FaceDown bool

	Cooldowns map[string]int

	TempAttackBonus int
	TempRangedBonus int
	TempDiceBonus   int
	HasDirect       bool

	DefenderBuffAttack int
	DefenderBuffDice   int
	DefenderBuffTurns  int

	KilledByEnemy     bool
	ValhallaTriggered bool

	Webbed  bool
	Stunned bool

	Counters    int
	MaxCounters int

	InFormation             bool
	ArmorRemaining          int
	FormationArmorRemaining int
	FormationArmorMax       int

	CanAttackFlyer      bool
	CanAttackFlyerUntil int
}

// NewCard creates a fresh instance of stats for player.
func NewCard(stats *Stats, player, id int) *Card {
	return &Card{
		Stats:          stats,
		ID:             id,
		Player:         player,
		Position:       NoPosition,
		CurrLife:       stats.Life,
		CurrMove:       stats.Move,
		Cooldowns:      make(map[string]int),
		MaxCounters:    stats.MaxCounters,
		ArmorRemaining: stats.Armor,
	}
}

func (c *Card) Name() string    { return c.Stats.Name }
func (c *Card) Life() int       { return c.Stats.Life }
func (c *Card) Attack() [3]int  { return c.Stats.Attack }
func (c *Card) Move() int       { return c.Stats.Move }
func (c *Card) Cost() int       { return c.Stats.Cost }
func (c *Card) Armor() int      { return c.Stats.Armor }
func (c *Card) IsAlive() bool   { return c.CurrLife > 0 }
func (c *Card) IsDamaged() bool { return c.CurrLife < c.Stats.Life }
func (c *Card) OnBoard() bool   { return c.Position != NoPosition }

// CanAct reports whether the card may move, attack or use an ability.
func (c *Card) CanAct() bool {
	return !c.Tapped && c.IsAlive() && !c.Webbed
}

// HasAbility reports whether the card's definition lists abilityID.
func (c *Card) HasAbility(abilityID string) bool {
	for _, id := range c.Stats.AbilityIDs {
		if id == abilityID {
			return true
		}
	}
	return false
}

// Abilities resolves the card's ability definitions in catalog order.
func (c *Card) Abilities() []*abilities.Ability {
	out := make([]*abilities.Ability, 0, len(c.Stats.AbilityIDs))
	for _, id := range c.Stats.AbilityIDs {
		if a, ok := abilities.Get(id); ok {
			out = append(out, a)
		}
	}
	return out
}

// TakeDamage removes up to amount life and returns the damage actually taken.
func (c *Card) TakeDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	actual := min(amount, c.CurrLife)
	c.CurrLife -= actual
	return actual
}

// TakeDamageWithArmor lets remaining armor absorb non-magical damage first.
func (c *Card) TakeDamageWithArmor(amount int, magical bool) (dealt, absorbed int) {
	if !magical && c.ArmorRemaining > 0 && amount > 0 {
		absorbed = min(amount, c.ArmorRemaining)
		c.ArmorRemaining -= absorbed
		amount -= absorbed
	}
	return c.TakeDamage(amount), absorbed
}

// ResetArmor restores armor at the start of any turn.
func (c *Card) ResetArmor() {
	c.ArmorRemaining = c.Stats.Armor
}

// Heal restores up to amount life and returns the amount healed.
func (c *Card) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	actual := min(amount, c.Stats.Life-c.CurrLife)
	if actual < 0 {
		actual = 0
	}
	c.CurrLife += actual
	return actual
}

// ResetForTurn untaps the card (unless stunned) and clears per-turn bonuses.
func (c *Card) ResetForTurn() {
	if c.Stunned {
		c.Stunned = false
	} else {
		c.Tapped = false
	}
	c.CurrMove = c.Stats.Move
	c.TempAttackBonus = 0
	c.TempRangedBonus = 0
	c.TempDiceBonus = 0
	c.HasDirect = false

	for id, turns := range c.Cooldowns {
		if turns-1 <= 0 {
			delete(c.Cooldowns, id)
			continue
		}
		c.Cooldowns[id] = turns - 1
	}
}

// Tap closes the card and spends its remaining movement.
func (c *Card) Tap() {
	c.Tapped = true
	c.CurrMove = 0
}

// CanUseAbility reports whether abilityID is off cooldown and the card is ready.
func (c *Card) CanUseAbility(abilityID string) bool {
	if c.Tapped || !c.IsAlive() {
		return false
	}
	_, cooling := c.Cooldowns[abilityID]
	return !cooling
}

// PutOnCooldown blocks abilityID for the given number of owner turns.
func (c *Card) PutOnCooldown(abilityID string, turns int) {
	if turns <= 0 {
		return
	}
	if c.Cooldowns == nil {
		c.Cooldowns = make(map[string]int)
	}
	c.Cooldowns[abilityID] = turns
}

// EffectiveAttack returns the strike table with temporary bonuses applied.
func (c *Card) EffectiveAttack() [3]int {
	bonus := c.TempAttackBonus + c.DefenderBuffAttack
	base := c.Stats.Attack
	return [3]int{base[0] + bonus, base[1] + bonus, base[2] + bonus}
}

// ClearDefenderBuff drops an expired defender buff.
func (c *Card) ClearDefenderBuff() {
	c.DefenderBuffAttack = 0
	c.DefenderBuffDice = 0
	c.DefenderBuffTurns = 0
}

// TickDefenderBuff counts down the defender buff at the end of the owner's turn.
func (c *Card) TickDefenderBuff() {
	if c.DefenderBuffTurns <= 0 {
		return
	}
	c.DefenderBuffTurns--
	if c.DefenderBuffTurns <= 0 {
		c.ClearDefenderBuff()
	}
}

// Clone returns a deep copy of the card; Stats stays shared.
func (c *Card) Clone() *Card {
	cpy := *c
	cpy.Cooldowns = make(map[string]int, len(c.Cooldowns))
	for id, turns := range c.Cooldowns {
		cpy.Cooldowns[id] = turns
	}
	return &cpy
}

func (c *Card) String() string {
	return fmt.Sprintf("Card(%s, P%d, HP:%d/%d)", c.Stats.Name, c.Player, c.CurrLife, c.Stats.Life)
}
