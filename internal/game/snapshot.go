package game

import (
	"fmt"

	"github.com/berserkgame/berserk-server-go/internal/game/board"
	"github.com/berserkgame/berserk-server-go/internal/game/cards"
	"github.com/berserkgame/berserk-server-go/internal/game/dice"
	"github.com/berserkgame/berserk-server-go/internal/game/interaction"
	"github.com/berserkgame/berserk-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// State is the plain nested form of a game, as sent to clients and hashed
// for divergence checks.
type State struct {
	Board         board.State `json:"board"`
	Phase         string      `json:"phase"`
	TurnNumber    int         `json:"turn_number"`
	CurrentPlayer int         `json:"current_player"`
	Winner        int         `json:"winner"`

	PriorityPlayer int               `json:"priority_player"`
	PriorityPassed []int             `json:"priority_passed,omitempty"`
	Stack          []rules.StackItem `json:"stack,omitempty"`

	Interaction *interaction.State `json:"interaction,omitempty"`
	PendingDice *DiceContext       `json:"pending_dice,omitempty"`
	LastCombat  *CombatResult      `json:"last_combat,omitempty"`

	PendingValhalla []ValhallaEntry `json:"pending_valhalla,omitempty"`
	FriendlyFire    int             `json:"friendly_fire_target"`
	ForcedAttackers map[int][]int   `json:"forced_attackers,omitempty"`

	NextCardID int           `json:"next_card_id"`
	Messages   []string      `json:"messages,omitempty"`
	HandP1     []cards.State `json:"hand_p1,omitempty"`
	HandP2     []cards.State `json:"hand_p2,omitempty"`
}

// ToDict captures the whole game without redaction.
func (g *Game) ToDict() State {
	return g.snapshot(0)
}

// SnapshotFor captures the game as player may see it: opponent cards that
// are still face down and the opponent's hand are replaced by placeholders.
func (g *Game) SnapshotFor(player int) State {
	return g.snapshot(player)
}

func (g *Game) snapshot(viewer int) State {
	var redact board.Redactor
	if viewer != 0 {
		redact = func(c *cards.Card) *cards.State {
			if c.Player != viewer && c.FaceDown {
				s := c.HiddenState()
				return &s
			}
			return nil
		}
	}

	st := State{
		Board:           g.board.ToDictFor(redact),
		Phase:           g.turn.Phase().String(),
		TurnNumber:      g.turn.TurnNumber(),
		CurrentPlayer:   g.turn.CurrentPlayer(),
		Winner:          g.winner,
		PriorityPlayer:  g.priority.Player(),
		PriorityPassed:  g.priority.Passed(),
		Stack:           g.stack.List(),
		PendingDice:     g.pendingDice.clone(),
		PendingValhalla: append([]ValhallaEntry(nil), g.pendingValhalla...),
		FriendlyFire:    g.friendlyFire,
		NextCardID:      g.nextCardID,
		Messages:        g.Messages(),
	}
	if g.pending != nil {
		is := g.pending.ToState()
		st.Interaction = &is
	}
	if g.lastCombat != nil {
		lc := *g.lastCombat
		st.LastCombat = &lc
	}
	if len(g.forcedAttackers) > 0 {
		st.ForcedAttackers = make(map[int][]int, len(g.forcedAttackers))
		for id, targets := range g.forcedAttackers {
			st.ForcedAttackers[id] = append([]int(nil), targets...)
		}
	}
	hand := func(owner int) []cards.State {
		var out []cards.State
		for _, c := range g.hands[owner-1] {
			if viewer != 0 && viewer != owner {
				out = append(out, c.HiddenState())
			} else {
				out = append(out, c.ToState())
			}
		}
		return out
	}
	st.HandP1 = hand(1)
	st.HandP2 = hand(2)
	return st
}

// FromDict rebuilds a game from a snapshot. Redacted cards come back as
// hidden placeholders; such a game is good for display, not for rules.
func FromDict(logger *zap.Logger, roller *dice.Roller, st State) (*Game, error) {
	b, err := board.FromDict(st.Board)
	if err != nil {
		return nil, fmt.Errorf("restore board: %w", err)
	}
	phase, ok := rules.ParsePhase(st.Phase)
	if !ok {
		return nil, fmt.Errorf("restore phase: unknown phase %q", st.Phase)
	}

	g := NewGame(logger, roller)
	g.board = b
	g.turn = rules.RestoreTurnManager(phase, st.TurnNumber, st.CurrentPlayer)
	g.winner = st.Winner
	g.priority = rules.RestorePriorityWindow(st.PriorityPlayer, st.PriorityPassed)
	g.stack.Restore(st.Stack)
	if st.Interaction != nil {
		d, err := interaction.FromState(*st.Interaction)
		if err != nil {
			return nil, fmt.Errorf("restore interaction: %w", err)
		}
		g.pending = d
	}
	g.pendingDice = st.PendingDice.clone()
	if st.LastCombat != nil {
		lc := *st.LastCombat
		g.lastCombat = &lc
	}
	g.pendingValhalla = append([]ValhallaEntry(nil), st.PendingValhalla...)
	g.friendlyFire = st.FriendlyFire
	for id, targets := range st.ForcedAttackers {
		g.forcedAttackers[id] = append([]int(nil), targets...)
	}
	g.nextCardID = max(st.NextCardID, 1)
	g.messages = append([]string(nil), st.Messages...)

	for i, hand := range [][]cards.State{st.HandP1, st.HandP2} {
		for _, s := range hand {
			c, err := cards.FromState(s)
			if err != nil {
				return nil, fmt.Errorf("restore hand of player %d: %w", i+1, err)
			}
			g.hands[i] = append(g.hands[i], c)
		}
	}
	return g, nil
}
