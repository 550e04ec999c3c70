package interaction

import (
	"fmt"
	"slices"
)

// State is the flat serialisable form of a decision.
type State struct {
	Kind           string `json:"kind"`
	ActingPlayer   int    `json:"acting_player"`
	ActorID        int    `json:"actor_id"`
	TargetID       int    `json:"target_id,omitempty"`
	ValidPositions []int  `json:"valid_positions,omitempty"`
	ValidCardIDs   []int  `json:"valid_card_ids,omitempty"`
	SelectedAmount int    `json:"selected_amount"`
	MinAmount      int    `json:"min_amount"`
	MaxAmount      int    `json:"max_amount"`

	AbilityID         string `json:"ability_id,omitempty"`
	CountersSpent     int    `json:"counters_spent,omitempty"`
	HealAmount        int    `json:"heal_amount,omitempty"`
	AttackerAdvantage bool   `json:"attacker_advantage,omitempty"`
	RollDiff          int    `json:"roll_diff,omitempty"`
	AttackerID        int    `json:"attacker_id,omitempty"`
	DamageAmount      int    `json:"damage_amount,omitempty"`
}

// ToState flattens the decision and its context.
func (d *Decision) ToState() State {
	st := State{
		Kind:           d.Kind.String(),
		ActingPlayer:   d.ActingPlayer,
		ActorID:        d.ActorID,
		TargetID:       d.TargetID,
		ValidPositions: slices.Clone(d.ValidPositions),
		ValidCardIDs:   slices.Clone(d.ValidCardIDs),
		SelectedAmount: d.SelectedAmount,
		MinAmount:      d.MinAmount,
		MaxAmount:      d.MaxAmount,
	}
	switch ctx := d.Context.(type) {
	case AbilityTargetContext:
		st.AbilityID = ctx.AbilityID
		st.CountersSpent = ctx.CountersSpent
	case ValhallaContext:
		st.AbilityID = ctx.AbilityID
	case CounterSelectionContext:
		st.AbilityID = ctx.AbilityID
	case HealConfirmContext:
		st.HealAmount = ctx.HealAmount
	case ExchangeContext:
		st.AttackerAdvantage = ctx.AttackerAdvantage
		st.RollDiff = ctx.RollDiff
	case StenchContext:
		st.AttackerID = ctx.AttackerID
		st.DamageAmount = ctx.DamageAmount
	case CounterShotContext:
		st.DamageAmount = ctx.Damage
	case MovementShotContext:
		st.DamageAmount = ctx.Damage
	}
	return st
}

// FromState rebuilds a decision, restoring the typed context for its kind.
func FromState(st State) (*Decision, error) {
	kind, ok := ParseKind(st.Kind)
	if !ok {
		return nil, fmt.Errorf("unknown interaction kind %q", st.Kind)
	}
	var ctx Context
	switch kind {
	case KindPriority:
		ctx = PriorityContext{}
	case KindAbilityTarget:
		ctx = AbilityTargetContext{AbilityID: st.AbilityID, CountersSpent: st.CountersSpent}
	case KindDefender:
		ctx = DefenderContext{}
	case KindCounterShot:
		ctx = CounterShotContext{Damage: st.DamageAmount}
	case KindMovementShot:
		ctx = MovementShotContext{Damage: st.DamageAmount}
	case KindValhalla:
		ctx = ValhallaContext{AbilityID: st.AbilityID}
	case KindHealConfirm:
		ctx = HealConfirmContext{HealAmount: st.HealAmount}
	case KindExchangeChoice:
		ctx = ExchangeContext{AttackerAdvantage: st.AttackerAdvantage, RollDiff: st.RollDiff}
	case KindStenchChoice:
		ctx = StenchContext{AttackerID: st.AttackerID, DamageAmount: st.DamageAmount}
	case KindCounterSelection:
		ctx = CounterSelectionContext{AbilityID: st.AbilityID}
	}
	return &Decision{
		Kind:           kind,
		ActingPlayer:   st.ActingPlayer,
		ActorID:        st.ActorID,
		TargetID:       st.TargetID,
		ValidPositions: slices.Clone(st.ValidPositions),
		ValidCardIDs:   slices.Clone(st.ValidCardIDs),
		SelectedAmount: st.SelectedAmount,
		MinAmount:      st.MinAmount,
		MaxAmount:      st.MaxAmount,
		Context:        ctx,
	}, nil
}
