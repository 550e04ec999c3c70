package game

import (
	"testing"

	"github.com/berserkgame/berserk-server-go/internal/game/cards"
	"github.com/berserkgame/berserk-server-go/internal/game/dice"
	"github.com/berserkgame/berserk-server-go/internal/game/interaction"
	"github.com/berserkgame/berserk-server-go/internal/game/rules"
	"go.uber.org/zap/zaptest"
)

// GameHarness sets up a started game from explicit placements and drives it
// with commands, failing the test on anything unexpected.
type GameHarness struct {
	t      *testing.T
	game   *Game
	roller *dice.Roller
}

// NewGameHarness starts a game with a fixed seed. Player 1 moves first.
func NewGameHarness(t *testing.T, p1, p2 []Placement) *GameHarness {
	t.Helper()
	roller := dice.NewRoller(42)
	g := NewGame(zaptest.NewLogger(t), roller)
	if err := g.SetupWithPlacement(p1, p2); err != nil {
		t.Fatalf("failed to set up game: %v", err)
	}
	g.DrainEvents()
	return &GameHarness{t: t, game: g, roller: roller}
}

// Roll queues dice results for the next rolls.
func (h *GameHarness) Roll(values ...int) {
	h.roller.Inject(values...)
}

// At returns the card at pos, failing if the cell is empty.
func (h *GameHarness) At(pos int) *cards.Card {
	h.t.Helper()
	c := h.game.Board().GetCard(pos)
	if c == nil {
		h.t.Fatalf("no card at position %d", pos)
	}
	return c
}

// Card looks a card up anywhere by ID.
func (h *GameHarness) Card(id int) *cards.Card {
	h.t.Helper()
	c := h.game.CardByID(id)
	if c == nil {
		h.t.Fatalf("card %d not found", id)
	}
	return c
}

// Do applies cmd and fails unless it is accepted.
func (h *GameHarness) Do(cmd Command) []rules.Event {
	h.t.Helper()
	ok, events := h.game.ProcessCommand(cmd)
	if !ok {
		h.t.Fatalf("command %s rejected", cmd)
	}
	return events
}

// Reject applies cmd and fails unless it is rejected without any trace.
func (h *GameHarness) Reject(cmd Command) {
	h.t.Helper()
	before := h.game.Checksum()
	ok, events := h.game.ProcessCommand(cmd)
	if ok {
		h.t.Fatalf("command %s accepted, want rejected", cmd)
	}
	if len(events) != 0 {
		h.t.Fatalf("rejected command %s emitted %d events", cmd, len(events))
	}
	if after := h.game.Checksum(); after != before {
		h.t.Fatalf("rejected command %s changed the game state", cmd)
	}
}

// Attack makes the card at from attack pos.
func (h *GameHarness) Attack(from, pos int) []rules.Event {
	h.t.Helper()
	c := h.At(from)
	return h.Do(AttackCommand(c.Player, c.ID, pos))
}

// EndTurn ends the current player's turn.
func (h *GameHarness) EndTurn() []rules.Event {
	h.t.Helper()
	return h.Do(EndTurnCommand(h.game.CurrentPlayer()))
}

// AssertAwaiting fails unless the pending decision is of kind and belongs to player.
func (h *GameHarness) AssertAwaiting(kind interaction.Kind, player int) *interaction.Decision {
	h.t.Helper()
	d := h.game.Pending()
	if d == nil {
		h.t.Fatalf("no pending decision, want %s", kind)
	}
	if d.Kind != kind {
		h.t.Fatalf("pending decision %s, want %s", d.Kind, kind)
	}
	if d.ActingPlayer != player {
		h.t.Fatalf("decision %s acting player %d, want %d", kind, d.ActingPlayer, player)
	}
	return d
}

// AssertIdle fails if any decision is pending.
func (h *GameHarness) AssertIdle() {
	h.t.Helper()
	if d := h.game.Pending(); d != nil {
		h.t.Fatalf("unexpected pending decision %s", d.Kind)
	}
}

// AssertLife checks the current life of a card.
func (h *GameHarness) AssertLife(id, want int) {
	h.t.Helper()
	if got := h.Card(id).CurrLife; got != want {
		h.t.Fatalf("card %d life = %d, want %d", id, got, want)
	}
}

func hasEvent(events []rules.Event, typ rules.EventType) bool {
	for _, e := range events {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func findEvent(events []rules.Event, typ rules.EventType) (rules.Event, bool) {
	for _, e := range events {
		if e.Type == typ {
			return e, true
		}
	}
	return rules.Event{}, false
}
