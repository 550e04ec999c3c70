package interaction

import (
	"fmt"
	"slices"
)

// Kind identifies which micro-decision the game is waiting on.
type Kind int

const (
	KindPriority Kind = iota + 1
	KindAbilityTarget
	KindDefender
	KindCounterShot
	KindMovementShot
	KindValhalla
	KindHealConfirm
	KindExchangeChoice
	KindStenchChoice
	KindCounterSelection
)

var kindNames = map[Kind]string{
	KindPriority:         "PRIORITY",
	KindAbilityTarget:    "SELECT_ABILITY_TARGET",
	KindDefender:         "SELECT_DEFENDER",
	KindCounterShot:      "SELECT_COUNTER_SHOT",
	KindMovementShot:     "SELECT_MOVEMENT_SHOT",
	KindValhalla:         "SELECT_VALHALLA_TARGET",
	KindHealConfirm:      "CONFIRM_HEAL",
	KindExchangeChoice:   "CHOOSE_EXCHANGE",
	KindStenchChoice:     "CHOOSE_STENCH",
	KindCounterSelection: "SELECT_COUNTERS",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND_%d", int(k))
}

// ParseKind maps a wire name back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Skippable reports whether the acting player may decline the decision.
func (k Kind) Skippable() bool {
	return k == KindDefender || k == KindMovementShot
}

// Cancellable reports whether the acting player may abort the decision.
func (k Kind) Cancellable() bool {
	return k == KindAbilityTarget || k == KindCounterSelection
}

// SelectsPosition reports whether the decision is answered by choosing a board position.
func (k Kind) SelectsPosition() bool {
	switch k {
	case KindAbilityTarget, KindCounterShot, KindMovementShot, KindValhalla, KindDefender:
		return true
	}
	return false
}

// Context carries the per-kind payload of a decision.
type Context interface {
	kind() Kind
}

type PriorityContext struct{}

type AbilityTargetContext struct {
	AbilityID     string
	CountersSpent int
}

type DefenderContext struct{}

type CounterShotContext struct {
	Damage int
}

type MovementShotContext struct {
	Damage int
}

type ValhallaContext struct {
	AbilityID string
}

type HealConfirmContext struct {
	HealAmount int
}

type ExchangeContext struct {
	AttackerAdvantage bool
	RollDiff          int
}

type StenchContext struct {
	AttackerID   int
	DamageAmount int
}

type CounterSelectionContext struct {
	AbilityID string
}

func (PriorityContext) kind() Kind         { return KindPriority }
func (AbilityTargetContext) kind() Kind    { return KindAbilityTarget }
func (DefenderContext) kind() Kind         { return KindDefender }
func (CounterShotContext) kind() Kind      { return KindCounterShot }
func (MovementShotContext) kind() Kind     { return KindMovementShot }
func (ValhallaContext) kind() Kind         { return KindValhalla }
func (HealConfirmContext) kind() Kind      { return KindHealConfirm }
func (ExchangeContext) kind() Kind         { return KindExchangeChoice }
func (StenchContext) kind() Kind           { return KindStenchChoice }
func (CounterSelectionContext) kind() Kind { return KindCounterSelection }

// Decision is the single pending micro-decision of a game.
type Decision struct {
	Kind           Kind
	ActingPlayer   int
	ActorID        int
	TargetID       int
	ValidPositions []int
	ValidCardIDs   []int
	SelectedAmount int
	MinAmount      int
	MaxAmount      int
	Context        Context
}

// New builds a decision whose kind is taken from its context.
func New(ctx Context, acting, actorID int) *Decision {
	return &Decision{
		Kind:         ctx.kind(),
		ActingPlayer: acting,
		ActorID:      actorID,
		Context:      ctx,
	}
}

// WithPositions sets the selectable positions.
func (d *Decision) WithPositions(positions []int) *Decision {
	d.ValidPositions = slices.Clone(positions)
	return d
}

// WithCards sets the selectable card IDs.
func (d *Decision) WithCards(ids []int) *Decision {
	d.ValidCardIDs = slices.Clone(ids)
	return d
}

// WithTarget sets the card the decision is about.
func (d *Decision) WithTarget(id int) *Decision {
	d.TargetID = id
	return d
}

// WithAmountRange sets the bounds of an amount selection.
func (d *Decision) WithAmountRange(lo, hi int) *Decision {
	d.MinAmount, d.MaxAmount = lo, hi
	d.SelectedAmount = lo
	return d
}

// AllowsPosition reports whether pos is a legal answer.
func (d *Decision) AllowsPosition(pos int) bool {
	return slices.Contains(d.ValidPositions, pos)
}

// AllowsCard reports whether id is a legal answer.
func (d *Decision) AllowsCard(id int) bool {
	return slices.Contains(d.ValidCardIDs, id)
}

// ClampAmount limits n to the decision's amount range.
func (d *Decision) ClampAmount(n int) int {
	return max(d.MinAmount, min(n, d.MaxAmount))
}

// Clone copies the decision and its slices.
func (d *Decision) Clone() *Decision {
	if d == nil {
		return nil
	}
	cpy := *d
	cpy.ValidPositions = slices.Clone(d.ValidPositions)
	cpy.ValidCardIDs = slices.Clone(d.ValidCardIDs)
	return &cpy
}

// AbilityID returns the ability the decision belongs to, if any.
func (d *Decision) AbilityID() string {
	switch ctx := d.Context.(type) {
	case AbilityTargetContext:
		return ctx.AbilityID
	case ValhallaContext:
		return ctx.AbilityID
	case CounterSelectionContext:
		return ctx.AbilityID
	}
	return ""
}

func (d *Decision) String() string {
	return fmt.Sprintf("%s(player=%d actor=%d target=%d)", d.Kind, d.ActingPlayer, d.ActorID, d.TargetID)
}
