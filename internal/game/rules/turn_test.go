package rules

import "testing"

func TestTurnManagerSequence(t *testing.T) {
	tm := NewTurnManager()
	if tm.Phase() != PhaseSetup || tm.CurrentPlayer() != 1 {
		t.Fatalf("expected setup with player 1, got %s/%d", tm.Phase(), tm.CurrentPlayer())
	}

	tm.Begin()
	expected := []struct {
		player int
		turn   int
	}{
		{2, 1},
		{1, 2},
		{2, 2},
		{1, 3},
	}
	for i, exp := range expected {
		if got := tm.Advance(); got != exp.player {
			t.Fatalf("step %d: expected player %d, got %d", i, exp.player, got)
		}
		if tm.TurnNumber() != exp.turn {
			t.Fatalf("step %d: expected turn %d, got %d", i, exp.turn, tm.TurnNumber())
		}
	}

	tm.End()
	if tm.Phase() != PhaseGameOver {
		t.Fatalf("expected game over, got %s", tm.Phase())
	}
}

func TestPhaseNames(t *testing.T) {
	for _, p := range []Phase{PhaseSetup, PhaseMain, PhaseGameOver} {
		back, ok := ParsePhase(p.String())
		if !ok || back != p {
			t.Fatalf("phase %s did not round-trip", p)
		}
	}
	if Phase(9).String() != "PHASE_9" {
		t.Fatalf("unexpected fallback name %s", Phase(9))
	}
}

func TestPriorityWindowPasses(t *testing.T) {
	var pw PriorityWindow
	pw.Open(2, 1)
	if pw.Player() != 2 || !pw.HasPassed(1) {
		t.Fatalf("expected player 2 with player 1 passed, got %d %v", pw.Player(), pw.Passed())
	}

	cpy := pw.Clone()
	pw.Pass(2)
	if cpy.HasPassed(2) {
		t.Fatalf("clone shares pass list")
	}

	pw.Give(1)
	if pw.HasPassed(1) || pw.HasPassed(2) {
		t.Fatalf("give should reset passes, got %v", pw.Passed())
	}

	pw.Close()
	if pw.Player() != 0 {
		t.Fatalf("expected closed window, got player %d", pw.Player())
	}
}
