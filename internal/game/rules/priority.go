package rules

import "slices"

// PriorityWindow tracks who holds priority while instants may be played after
// a dice roll, and which players have already passed.
type PriorityWindow struct {
	player int
	passed []int
}

// Open starts a window with player holding priority and the given players
// already counted as passed.
func (pw *PriorityWindow) Open(player int, passed ...int) {
	pw.player = player
	pw.passed = slices.Clone(passed)
}

// RestorePriorityWindow rebuilds a window from snapshot values.
func RestorePriorityWindow(player int, passed []int) PriorityWindow {
	return PriorityWindow{player: player, passed: slices.Clone(passed)}
}

// Player returns the player holding priority, or 0 when no window is open.
func (pw *PriorityWindow) Player() int {
	return pw.player
}

// Passed returns the players that passed in this window.
func (pw *PriorityWindow) Passed() []int {
	return slices.Clone(pw.passed)
}

// HasPassed reports whether player passed in this window.
func (pw *PriorityWindow) HasPassed(player int) bool {
	return slices.Contains(pw.passed, player)
}

// Pass records player as passed.
func (pw *PriorityWindow) Pass(player int) {
	if !pw.HasPassed(player) {
		pw.passed = append(pw.passed, player)
	}
}

// Give hands priority to player and forgets earlier passes.
func (pw *PriorityWindow) Give(player int) {
	pw.player = player
	pw.passed = nil
}

// MoveTo hands priority to player keeping earlier passes.
func (pw *PriorityWindow) MoveTo(player int) {
	pw.player = player
}

// Close ends the window.
func (pw *PriorityWindow) Close() {
	pw.player = 0
	pw.passed = nil
}

// Clone returns an independent copy of the window.
func (pw PriorityWindow) Clone() PriorityWindow {
	return PriorityWindow{player: pw.player, passed: slices.Clone(pw.passed)}
}
