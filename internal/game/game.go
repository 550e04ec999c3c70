package game

import (
	"fmt"
	"time"

	"github.com/berserkgame/berserk-server-go/internal/game/board"
	"github.com/berserkgame/berserk-server-go/internal/game/cards"
	"github.com/berserkgame/berserk-server-go/internal/game/dice"
	"github.com/berserkgame/berserk-server-go/internal/game/interaction"
	"github.com/berserkgame/berserk-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// NoWinner is the winner value while the game is still running; 0 is a draw.
const NoWinner = -1

const maxMessages = 100

// DiceKind tells the priority window which action to continue once it closes.
type DiceKind string

const (
	DiceMelee  DiceKind = "melee"
	DiceRanged DiceKind = "ranged"
	DiceMagic  DiceKind = "magic"
)

// DiceContext is a roll waiting for the priority window or an exchange choice.
// Rolls never change after the fact except through a reroll; modifiers only
// change while priority is open.
type DiceContext struct {
	Type       DiceKind `json:"type"`
	AttackerID int      `json:"attacker_id"`
	DefenderID int      `json:"defender_id,omitempty"`
	TargetID   int      `json:"target_id,omitempty"`

	AtkRoll     int `json:"atk_roll"`
	AtkModifier int `json:"atk_modifier"`
	AtkBonus    int `json:"atk_bonus"`
	DefRoll     int `json:"def_roll"`
	DefModifier int `json:"def_modifier"`
	DefBonus    int `json:"def_bonus"`

	DiceMatter        bool `json:"dice_matter"`
	DefenderWasTapped bool `json:"defender_was_tapped"`

	AbilityID        string `json:"ability_id,omitempty"`
	RangedType       string `json:"ranged_type,omitempty"`
	ExchangeResolved bool   `json:"exchange_resolved"`
	CountersSpent    int    `json:"counters_spent,omitempty"`
}

func (d *DiceContext) clone() *DiceContext {
	if d == nil {
		return nil
	}
	cpy := *d
	return &cpy
}

// CombatResult is the read-only summary of the last resolved attack.
type CombatResult struct {
	AttackerRoll        int    `json:"attacker_roll"`
	DefenderRoll        int    `json:"defender_roll"`
	AttackerDamageDealt int    `json:"attacker_damage_dealt"`
	DefenderDamageDealt int    `json:"defender_damage_dealt"`
	AttackerBonus       int    `json:"attacker_bonus"`
	DefenderBonus       int    `json:"defender_bonus"`
	AttackerName        string `json:"attacker_name"`
	DefenderName        string `json:"defender_name"`
	AttackerPlayer      int    `json:"attacker_player"`
	DefenderPlayer      int    `json:"defender_player"`
}

// ValhallaEntry is a queued Valhalla ability of a card in the graveyard.
type ValhallaEntry struct {
	CardID    int    `json:"card_id"`
	AbilityID string `json:"ability_id"`
}

// gameState is everything a command may mutate. It is cloned before each
// command so a rejected command can be rolled back.
type gameState struct {
	board    *board.Board
	turn     rules.TurnManager
	winner   int
	priority rules.PriorityWindow
	stack    *rules.StackManager

	pending     *interaction.Decision
	pendingDice *DiceContext
	lastCombat  *CombatResult

	pendingValhalla []ValhallaEntry
	friendlyFire    int
	forcedAttackers map[int][]int

	nextCardID int
	messages   []string
	hands      [2][]*cards.Card
}

func newGameState() gameState {
	return gameState{
		board:           board.New(),
		turn:            rules.NewTurnManager(),
		winner:          NoWinner,
		stack:           rules.NewStackManager(),
		friendlyFire:    board.NoPosition,
		forcedAttackers: make(map[int][]int),
		nextCardID:      1,
	}
}

func (s *gameState) clone() gameState {
	cpy := *s
	cpy.board = s.board.Clone()
	cpy.priority = s.priority.Clone()
	cpy.stack = s.stack.Clone()
	cpy.pending = s.pending.Clone()
	cpy.pendingDice = s.pendingDice.clone()
	if s.lastCombat != nil {
		lc := *s.lastCombat
		cpy.lastCombat = &lc
	}
	cpy.pendingValhalla = append([]ValhallaEntry(nil), s.pendingValhalla...)
	cpy.forcedAttackers = make(map[int][]int, len(s.forcedAttackers))
	for id, targets := range s.forcedAttackers {
		cpy.forcedAttackers[id] = append([]int(nil), targets...)
	}
	cpy.messages = append([]string(nil), s.messages...)
	for i, hand := range s.hands {
		cpy.hands[i] = make([]*cards.Card, len(hand))
		for j, c := range hand {
			cpy.hands[i][j] = c.Clone()
		}
	}
	return cpy
}

// Game is the single authoritative rules engine of one match. It is not safe
// for concurrent use; callers serialise access (match.Server holds a mutex).
type Game struct {
	logger *zap.Logger
	roller *dice.Roller
	events []rules.Event

	gameState
}

// NewGame creates an empty game in the setup phase. A nil roller gets a
// time-seeded one.
func NewGame(logger *zap.Logger, roller *dice.Roller) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	if roller == nil {
		roller = dice.NewRoller(time.Now().UnixNano())
	}
	return &Game{
		logger:    logger,
		roller:    roller,
		gameState: newGameState(),
	}
}

func (g *Game) Board() *board.Board            { return g.board }
func (g *Game) Roller() *dice.Roller           { return g.roller }
func (g *Game) Phase() rules.Phase             { return g.turn.Phase() }
func (g *Game) TurnNumber() int                { return g.turn.TurnNumber() }
func (g *Game) CurrentPlayer() int             { return g.turn.CurrentPlayer() }
func (g *Game) Winner() int                    { return g.winner }
func (g *Game) IsOver() bool                   { return g.turn.Phase() == rules.PhaseGameOver }
func (g *Game) LastCombat() *CombatResult      { return g.lastCombat }
func (g *Game) Pending() *interaction.Decision { return g.pending }
func (g *Game) PendingDice() *DiceContext      { return g.pendingDice }
func (g *Game) PriorityPlayer() int            { return g.priority.Player() }
func (g *Game) StackItems() []rules.StackItem  { return g.stack.List() }
func (g *Game) ForcedAttackers() map[int][]int { return g.forcedAttackers }
func (g *Game) HasForcedAttack() bool          { return len(g.forcedAttackers) > 0 }

// Messages returns the most recent log lines, oldest first.
func (g *Game) Messages() []string {
	return append([]string(nil), g.messages...)
}

// Hand returns the cards player still holds during setup.
func (g *Game) Hand(player int) []*cards.Card {
	if player != 1 && player != 2 {
		return nil
	}
	return g.hands[player-1]
}

// CardByID finds a card on the board, in a graveyard or in a hand.
func (g *Game) CardByID(id int) *cards.Card {
	if c := g.board.FindCard(id); c != nil {
		return c
	}
	for _, hand := range g.hands {
		for _, c := range hand {
			if c.ID == id {
				return c
			}
		}
	}
	return nil
}

// ActingPlayer is the only player whose commands are accepted right now.
func (g *Game) ActingPlayer() int {
	switch {
	case g.IsOver():
		return 0
	case g.priority.Player() != 0:
		return g.priority.Player()
	case g.pending != nil:
		return g.pending.ActingPlayer
	}
	return g.turn.CurrentPlayer()
}

// Awaiting reports whether the pending decision is of kind.
func (g *Game) Awaiting(kind interaction.Kind) bool {
	return g.pending != nil && g.pending.Kind == kind
}

func (g *Game) AwaitingPriority() bool         { return g.Awaiting(interaction.KindPriority) }
func (g *Game) AwaitingAbilityTarget() bool    { return g.Awaiting(interaction.KindAbilityTarget) }
func (g *Game) AwaitingDefender() bool         { return g.Awaiting(interaction.KindDefender) }
func (g *Game) AwaitingCounterShot() bool      { return g.Awaiting(interaction.KindCounterShot) }
func (g *Game) AwaitingMovementShot() bool     { return g.Awaiting(interaction.KindMovementShot) }
func (g *Game) AwaitingValhalla() bool         { return g.Awaiting(interaction.KindValhalla) }
func (g *Game) AwaitingHealConfirm() bool      { return g.Awaiting(interaction.KindHealConfirm) }
func (g *Game) AwaitingExchangeChoice() bool   { return g.Awaiting(interaction.KindExchangeChoice) }
func (g *Game) AwaitingStenchChoice() bool     { return g.Awaiting(interaction.KindStenchChoice) }
func (g *Game) AwaitingCounterSelection() bool { return g.Awaiting(interaction.KindCounterSelection) }

// DrainEvents returns and clears the events produced outside ProcessCommand,
// such as during setup.
func (g *Game) DrainEvents() []rules.Event {
	out := g.events
	g.events = nil
	return out
}

func (g *Game) emit(evt rules.Event) {
	g.events = append(g.events, evt)
}

func (g *Game) log(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	g.messages = append(g.messages, msg)
	if len(g.messages) > maxMessages {
		g.messages = g.messages[len(g.messages)-maxMessages:]
	}
	evt := rules.NewEvent(rules.EventLogMessage, 0, 0)
	evt.Message = msg
	g.emit(evt)
	g.logger.Debug("game log", zap.String("message", msg))
}

// setPending installs the single outstanding decision.
func (g *Game) setPending(d *interaction.Decision) {
	g.pending = d
	evt := rules.NewEvent(rules.EventInteractionStarted, d.ActorID, d.ActingPlayer)
	evt.InteractionKind = d.Kind.String()
	evt.TargetID = d.TargetID
	evt.ValidPositions = append([]int(nil), d.ValidPositions...)
	evt.ValidCardIDs = append([]int(nil), d.ValidCardIDs...)
	evt.AbilityID = d.AbilityID()
	g.emit(evt)
}

func (g *Game) clearPending() {
	if g.pending == nil {
		return
	}
	evt := rules.NewEvent(rules.EventInteractionEnded, g.pending.ActorID, g.pending.ActingPlayer)
	evt.InteractionKind = g.pending.Kind.String()
	g.pending = nil
	g.emit(evt)
}

func (g *Game) nextID() int {
	id := g.nextCardID
	g.nextCardID++
	return id
}
