package rules

import "fmt"

// Phase represents the broad phases of a match.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseMain
	PhaseGameOver
)

var phaseNames = map[Phase]string{
	PhaseSetup:    "SETUP",
	PhaseMain:     "MAIN",
	PhaseGameOver: "GAME_OVER",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// ParsePhase maps a phase name back to its value.
func ParsePhase(name string) (Phase, bool) {
	for p, n := range phaseNames {
		if n == name {
			return p, true
		}
	}
	return 0, false
}

// TurnManager tracks the phase, the player whose turn it is and the turn number.
// A turn number covers one turn of each player; it advances after player 2.
type TurnManager struct {
	phase         Phase
	turnNumber    int
	currentPlayer int
}

// NewTurnManager creates a turn manager in the setup phase with player 1 placing.
func NewTurnManager() TurnManager {
	return TurnManager{phase: PhaseSetup, currentPlayer: 1}
}

// RestoreTurnManager rebuilds a turn manager from snapshot values.
func RestoreTurnManager(phase Phase, turnNumber, currentPlayer int) TurnManager {
	return TurnManager{phase: phase, turnNumber: turnNumber, currentPlayer: currentPlayer}
}

// Phase returns the phase currently in progress.
func (tm *TurnManager) Phase() Phase {
	return tm.phase
}

// TurnNumber returns the current turn number (1-based once the match starts).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// CurrentPlayer returns the player who currently has the turn.
func (tm *TurnManager) CurrentPlayer() int {
	return tm.currentPlayer
}

// SetCurrentPlayer hands the turn to player without advancing the turn number.
func (tm *TurnManager) SetCurrentPlayer(player int) {
	tm.currentPlayer = player
}

// Begin enters the main phase on turn 1 with player 1 to act.
func (tm *TurnManager) Begin() {
	tm.phase = PhaseMain
	tm.turnNumber = 1
	tm.currentPlayer = 1
}

// Advance passes the turn to the other player and returns the new current player.
func (tm *TurnManager) Advance() int {
	if tm.currentPlayer == 1 {
		tm.currentPlayer = 2
	} else {
		tm.currentPlayer = 1
		tm.turnNumber++
	}
	return tm.currentPlayer
}

// End moves the match into the game-over phase.
func (tm *TurnManager) End() {
	tm.phase = PhaseGameOver
}
