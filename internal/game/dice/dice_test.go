package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollerInjectedFirst(t *testing.T) {
	r := NewRoller(42)
	r.Inject(6, 2)
	assert.Equal(t, []int{6, 2}, r.Pending())

	assert.Equal(t, 6, r.Roll())
	assert.Equal(t, 2, r.Roll())
	assert.Empty(t, r.Pending())

	v := r.Roll()
	assert.GreaterOrEqual(t, v, 1)
	assert.LessOrEqual(t, v, Sides)
	assert.Equal(t, 3, r.Rolled())
}

func TestRollerSeedIsDeterministic(t *testing.T) {
	a, b := NewRoller(7), NewRoller(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Roll(), b.Roll())
	}
	assert.Equal(t, int64(7), a.Seed())
}

func TestTierAndClamp(t *testing.T) {
	cases := map[int]int{1: 0, 3: 0, 4: 1, 5: 1, 6: 2, 8: 2}
	for total, tier := range cases {
		assert.Equal(t, tier, Tier(total), "total %d", total)
	}
	assert.Equal(t, 1, Clamp(-2))
	assert.Equal(t, 6, Clamp(9))
	assert.Equal(t, 4, Clamp(4))
}

func TestOpposedTable(t *testing.T) {
	cases := []struct {
		name string
		diff int
		atk  int
		want Outcome
	}{
		{"crushing", 6, 7, Outcome{2, -1, false}},
		{"strong exchange", 4, 6, Outcome{2, 0, true}},
		{"medium", 3, 5, Outcome{1, -1, false}},
		{"medium exchange", 2, 4, Outcome{1, 0, true}},
		{"weak", 1, 3, Outcome{0, -1, false}},
		{"tie high", 0, 5, Outcome{-1, 0, false}},
		{"tie low", 0, 4, Outcome{0, -1, false}},
		{"slightly behind", -1, 2, Outcome{0, -1, false}},
		{"mutual miss", -2, 2, Outcome{-1, -1, false}},
		{"counter weak", -3, 1, Outcome{-1, 0, false}},
		{"defender exchange", -4, 1, Outcome{0, 1, true}},
		{"counter medium", -5, 1, Outcome{-1, 1, false}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Opposed(tc.diff, tc.atk))
		})
	}
}

func TestReducedExchange(t *testing.T) {
	full := Opposed(4, 6)
	assert.Equal(t, Outcome{AttackerTier: 1, DefenderTier: -1}, full.Reduced(4))

	def := Opposed(-4, 1)
	assert.Equal(t, Outcome{AttackerTier: -1, DefenderTier: 0}, def.Reduced(-4))
}

func TestMatters(t *testing.T) {
	assert.True(t, Matters(false, true, false))
	assert.True(t, Matters(true, false, false))
	assert.False(t, Matters(true, true, false))
	assert.False(t, Matters(true, false, true))
}
