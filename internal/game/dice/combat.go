package dice

// Outcome is the result of an opposed melee roll: tiers for each side
// (-1 means no damage) and whether the advantaged side may choose an exchange.
type Outcome struct {
	AttackerTier int
	DefenderTier int
	Exchange     bool
}

// Opposed resolves the difference between attacker and defender totals.
func Opposed(diff, attackerTotal int) Outcome {
	switch {
	case diff >= 5:
		return Outcome{2, -1, false}
	case diff == 4:
		return Outcome{2, 0, true}
	case diff == 3:
		return Outcome{1, -1, false}
	case diff == 2:
		return Outcome{1, 0, true}
	case diff == 1:
		return Outcome{0, -1, false}
	case diff == 0:
		if attackerTotal >= 5 {
			return Outcome{-1, 0, false}
		}
		return Outcome{0, -1, false}
	case diff == -1:
		return Outcome{0, -1, false}
	case diff == -2:
		return Outcome{-1, -1, false}
	case diff == -3:
		return Outcome{-1, 0, false}
	case diff == -4:
		return Outcome{0, 1, true}
	}
	return Outcome{-1, 1, false}
}

// Reduced lowers the advantaged side's tier for an exchange taken as reduced.
// With the attacker ahead the attacker strikes one tier lower and the
// defender does not answer; otherwise the defender answers one tier lower
// and the attack misses.
func (o Outcome) Reduced(diff int) Outcome {
	if diff > 0 {
		return Outcome{AttackerTier: max(o.AttackerTier-1, 0), DefenderTier: -1}
	}
	return Outcome{AttackerTier: -1, DefenderTier: max(o.DefenderTier-1, 0)}
}

// Matters reports whether the roll can change a melee outcome. A side is
// fixed when its strike table deals the same damage on every tier; the roll
// is irrelevant when the attacker is fixed and the defender is either fixed
// or tapped.
func Matters(attackerFixed, defenderFixed, defenderTapped bool) bool {
	return !(attackerFixed && (defenderTapped || defenderFixed))
}
