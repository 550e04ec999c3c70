package cards

import "fmt"

// State is the plain serialisable form of a card used in snapshots.
type State struct {
	ID       int    `json:"id"`
	Name     string `json:"name,omitempty"`
	Player   int    `json:"player"`
	Position int    `json:"position"`
	Hidden   bool   `json:"hidden,omitempty"`

	CurrLife int  `json:"curr_life"`
	CurrMove int  `json:"curr_move"`
	Tapped   bool `json:"tapped"`
	FaceDown bool `json:"face_down"`

	Cooldowns map[string]int `json:"ability_cooldowns,omitempty"`

	TempAttackBonus int  `json:"temp_attack_bonus"`
	TempRangedBonus int  `json:"temp_ranged_bonus"`
	TempDiceBonus   int  `json:"temp_dice_bonus"`
	HasDirect       bool `json:"has_direct"`

	DefenderBuffAttack int `json:"defender_buff_attack"`
	DefenderBuffDice   int `json:"defender_buff_dice"`
	DefenderBuffTurns  int `json:"defender_buff_turns"`

	KilledByEnemy     bool `json:"killed_by_enemy"`
	ValhallaTriggered bool `json:"valhalla_triggered"`

	Webbed  bool `json:"webbed"`
	Stunned bool `json:"stunned"`

	Counters    int `json:"counters"`
	MaxCounters int `json:"max_counters"`

	InFormation             bool `json:"in_formation"`
	ArmorRemaining          int  `json:"armor_remaining"`
	FormationArmorRemaining int  `json:"formation_armor_remaining"`
	FormationArmorMax       int  `json:"formation_armor_max"`

	CanAttackFlyer      bool `json:"can_attack_flyer"`
	CanAttackFlyerUntil int  `json:"can_attack_flyer_until_turn"`
}

// hiddenStats stands in for a face-down opponent card whose identity is redacted.
var hiddenStats = &Stats{Name: "", Kind: KindCreature, Life: 1}

// ToState captures every runtime field of the card.
func (c *Card) ToState() State {
	var cooldowns map[string]int
	if len(c.Cooldowns) > 0 {
		cooldowns = make(map[string]int, len(c.Cooldowns))
		for id, turns := range c.Cooldowns {
			cooldowns[id] = turns
		}
	}
	return State{
		ID:                      c.ID,
		Name:                    c.Stats.Name,
		Player:                  c.Player,
		Position:                c.Position,
		CurrLife:                c.CurrLife,
		CurrMove:                c.CurrMove,
		Tapped:                  c.Tapped,
		FaceDown:                c.FaceDown,
		Cooldowns:               cooldowns,
		TempAttackBonus:         c.TempAttackBonus,
		TempRangedBonus:         c.TempRangedBonus,
		TempDiceBonus:           c.TempDiceBonus,
		HasDirect:               c.HasDirect,
		DefenderBuffAttack:      c.DefenderBuffAttack,
		DefenderBuffDice:        c.DefenderBuffDice,
		DefenderBuffTurns:       c.DefenderBuffTurns,
		KilledByEnemy:           c.KilledByEnemy,
		ValhallaTriggered:       c.ValhallaTriggered,
		Webbed:                  c.Webbed,
		Stunned:                 c.Stunned,
		Counters:                c.Counters,
		MaxCounters:             c.MaxCounters,
		InFormation:             c.InFormation,
		ArmorRemaining:          c.ArmorRemaining,
		FormationArmorRemaining: c.FormationArmorRemaining,
		FormationArmorMax:       c.FormationArmorMax,
		CanAttackFlyer:          c.CanAttackFlyer,
		CanAttackFlyerUntil:     c.CanAttackFlyerUntil,
	}
}

// HiddenState is the redacted view of a face-down card shown to its opponent.
func (c *Card) HiddenState() State {
	return State{
		ID:       c.ID,
		Player:   c.Player,
		Position: c.Position,
		FaceDown: true,
		Hidden:   true,
		CurrLife: 1,
	}
}

// FromState rebuilds a card from its snapshot form using the catalog.
func FromState(s State) (*Card, error) {
	stats := hiddenStats
	if !s.Hidden {
		found, ok := Lookup(s.Name)
		if !ok {
			return nil, fmt.Errorf("unknown card %q", s.Name)
		}
		stats = found
	}
	c := &Card{
		Stats:                   stats,
		ID:                      s.ID,
		Player:                  s.Player,
		Position:                s.Position,
		CurrLife:                s.CurrLife,
		CurrMove:                s.CurrMove,
		Tapped:                  s.Tapped,
		FaceDown:                s.FaceDown,
		Cooldowns:               make(map[string]int, len(s.Cooldowns)),
		TempAttackBonus:         s.TempAttackBonus,
		TempRangedBonus:         s.TempRangedBonus,
		TempDiceBonus:           s.TempDiceBonus,
		HasDirect:               s.HasDirect,
		DefenderBuffAttack:      s.DefenderBuffAttack,
		DefenderBuffDice:        s.DefenderBuffDice,
		DefenderBuffTurns:       s.DefenderBuffTurns,
		KilledByEnemy:           s.KilledByEnemy,
		ValhallaTriggered:       s.ValhallaTriggered,
		Webbed:                  s.Webbed,
		Stunned:                 s.Stunned,
		Counters:                s.Counters,
		MaxCounters:             s.MaxCounters,
		InFormation:             s.InFormation,
		ArmorRemaining:          s.ArmorRemaining,
		FormationArmorRemaining: s.FormationArmorRemaining,
		FormationArmorMax:       s.FormationArmorMax,
		CanAttackFlyer:          s.CanAttackFlyer,
		CanAttackFlyerUntil:     s.CanAttackFlyerUntil,
	}
	for id, turns := range s.Cooldowns {
		c.Cooldowns[id] = turns
	}
	return c, nil
}
