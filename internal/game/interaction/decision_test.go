package interaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindFromContext(t *testing.T) {
	cases := []struct {
		ctx  Context
		kind Kind
	}{
		{PriorityContext{}, KindPriority},
		{AbilityTargetContext{AbilityID: "lunge"}, KindAbilityTarget},
		{DefenderContext{}, KindDefender},
		{CounterShotContext{Damage: 2}, KindCounterShot},
		{MovementShotContext{Damage: 1}, KindMovementShot},
		{ValhallaContext{AbilityID: "valhalla_ova"}, KindValhalla},
		{HealConfirmContext{HealAmount: 3}, KindHealConfirm},
		{ExchangeContext{AttackerAdvantage: true, RollDiff: 4}, KindExchangeChoice},
		{StenchContext{AttackerID: 5, DamageAmount: 2}, KindStenchChoice},
		{CounterSelectionContext{AbilityID: "axe_strike"}, KindCounterSelection},
	}
	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			d := New(tc.ctx, 2, 9)
			assert.Equal(t, tc.kind, d.Kind)
			assert.Equal(t, 2, d.ActingPlayer)

			back, err := FromState(d.ToState())
			require.NoError(t, err)
			assert.Equal(t, d, back)
		})
	}
}

func TestSkippableAndCancellable(t *testing.T) {
	assert.True(t, KindDefender.Skippable())
	assert.True(t, KindMovementShot.Skippable())
	assert.False(t, KindCounterShot.Skippable())
	assert.True(t, KindAbilityTarget.Cancellable())
	assert.True(t, KindCounterSelection.Cancellable())
	assert.False(t, KindPriority.Cancellable())
}

func TestAmountRange(t *testing.T) {
	d := New(CounterSelectionContext{AbilityID: "axe_strike"}, 1, 3).WithAmountRange(0, 4)
	assert.Equal(t, 0, d.SelectedAmount)
	assert.Equal(t, 4, d.ClampAmount(10))
	assert.Equal(t, 0, d.ClampAmount(-3))
	assert.Equal(t, "axe_strike", d.AbilityID())
}

func TestAllowsPositionAndClone(t *testing.T) {
	d := New(AbilityTargetContext{AbilityID: "heal_ally"}, 1, 3).WithPositions([]int{4, 9})
	assert.True(t, d.AllowsPosition(9))
	assert.False(t, d.AllowsPosition(10))

	cpy := d.Clone()
	cpy.ValidPositions[0] = 99
	assert.Equal(t, 4, d.ValidPositions[0])
}

func TestParseUnknownKind(t *testing.T) {
	_, err := FromState(State{Kind: "NOPE"})
	assert.Error(t, err)
	assert.Equal(t, "KIND_99", Kind(99).String())
}
