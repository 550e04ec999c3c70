// Package match wraps an authoritative game behind a command/result
// interface that local and networked clients share.
package match

import (
	"context"
	"fmt"
	"sync"

	"github.com/berserkgame/berserk-server-go/internal/game"
	"github.com/berserkgame/berserk-server-go/internal/game/cards"
	"github.com/berserkgame/berserk-server-go/internal/game/dice"
	"github.com/berserkgame/berserk-server-go/internal/game/rules"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/berserkgame/berserk-server-go/internal/match"

// CommandResult is what a client gets back for one command.
type CommandResult struct {
	Accepted bool          `json:"accepted"`
	Events   []rules.Event `json:"events,omitempty"`
	Snapshot *game.State   `json:"snapshot,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// AllowedCommands are the verbs a client may send through Apply. Conceding
// goes through Concede so transports can attach their own bookkeeping.
var AllowedCommands = func() map[game.CommandType]bool {
	allowed := make(map[game.CommandType]bool, len(game.CommandTypes))
	for _, t := range game.CommandTypes {
		if t != game.CmdConcede {
			allowed[t] = true
		}
	}
	return allowed
}()

// Server owns the authoritative game of one match. All methods are safe for
// concurrent use; commands are applied one at a time.
type Server struct {
	mu     sync.Mutex
	logger *zap.Logger
	roller *dice.Roller
	tracer trace.Tracer
	game   *game.Game
	log    []game.Command
}

// NewServer creates a match server. A nil roller gets a time-seeded one when
// the game is set up.
func NewServer(logger *zap.Logger, roller *dice.Roller) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		logger: logger,
		roller: roller,
		tracer: otel.Tracer(tracerName),
	}
}

// SetupGame starts a fresh game from two decks laid out the quick-start way.
func (s *Server) SetupGame(deck1, deck2 []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := game.NewGame(s.logger, s.roller)
	if err := g.SetupGame(deck1, deck2); err != nil {
		return fmt.Errorf("setup game: %w", err)
	}
	if err := g.AutoPlace(); err != nil {
		return fmt.Errorf("auto place: %w", err)
	}
	g.DrainEvents()
	s.game = g
	s.log = nil
	return nil
}

// SetupWithPlacement starts a fresh game from explicit starting positions.
func (s *Server) SetupWithPlacement(p1, p2 []game.Placement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := game.NewGame(s.logger, s.roller)
	if err := g.SetupWithPlacement(p1, p2); err != nil {
		return fmt.Errorf("setup with placement: %w", err)
	}
	g.DrainEvents()
	s.game = g
	s.log = nil
	return nil
}

// Apply validates and runs cmd. With includeSnapshot the result carries the
// sender's redacted view of the game after the command.
func (s *Server) Apply(ctx context.Context, cmd game.Command, includeSnapshot bool) CommandResult {
	_, span := s.tracer.Start(ctx, "match.apply", trace.WithAttributes(
		attribute.String("command.type", string(cmd.Type)),
		attribute.Int("command.player", cmd.Player),
		attribute.Int("command.card_id", cmd.CardID),
		attribute.Int("command.position", cmd.Position),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game == nil {
		span.SetStatus(codes.Error, "no game")
		return CommandResult{Error: "no game in progress"}
	}
	if !AllowedCommands[cmd.Type] {
		span.SetStatus(codes.Error, "not allowed")
		return CommandResult{Error: fmt.Sprintf("command type %s not allowed from client", cmd.Type)}
	}

	accepted, events := s.game.ProcessCommand(cmd)
	span.SetAttributes(
		attribute.Bool("command.accepted", accepted),
		attribute.Int("events", len(events)),
	)
	result := CommandResult{Accepted: accepted, Events: events}
	if accepted {
		s.log = append(s.log, cmd)
	} else {
		span.SetStatus(codes.Error, "rejected")
		result.Error = "illegal command"
	}
	if includeSnapshot {
		st := s.game.SnapshotFor(cmd.Player)
		result.Snapshot = &st
	}
	return result
}

// Concede ends the game in the opponent's favour.
func (s *Server) Concede(player int) CommandResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game == nil {
		return CommandResult{Error: "no game in progress"}
	}
	cmd := game.ConcedeCommand(player)
	accepted, events := s.game.ProcessCommand(cmd)
	if !accepted {
		return CommandResult{Error: "cannot concede"}
	}
	s.log = append(s.log, cmd)
	return CommandResult{Accepted: true, Events: events}
}

// AgreeDraw ends the game with no winner.
func (s *Server) AgreeDraw() CommandResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game == nil {
		return CommandResult{Error: "no game in progress"}
	}
	accepted, events := s.game.AgreeDraw()
	if !accepted {
		return CommandResult{Error: "game cannot be drawn"}
	}
	return CommandResult{Accepted: true, Events: events}
}

// Snapshot returns the game as player sees it; player 0 gets the full state.
func (s *Server) Snapshot(player int) game.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return game.State{}
	}
	return s.game.SnapshotFor(player)
}

// StateHash is a short digest of the full state for divergence checks.
func (s *Server) StateHash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return ""
	}
	sum := s.game.Checksum()
	if len(sum) < 16 {
		return sum
	}
	return sum[:16]
}

// ContentHash identifies the card and ability catalogs this server plays with.
func (s *Server) ContentHash() string {
	return cards.ContentHash()
}

// CommandLog returns the accepted commands in order.
func (s *Server) CommandLog() []game.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]game.Command, len(s.log))
	copy(out, s.log)
	return out
}

// Started reports whether a game has been set up.
func (s *Server) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game != nil
}

// Winner returns the winning player, 0 for a draw, or game.NoWinner.
func (s *Server) Winner() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return game.NoWinner
	}
	return s.game.Winner()
}

// ActingPlayer is the player the game is waiting on.
func (s *Server) ActingPlayer() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return 0
	}
	return s.game.ActingPlayer()
}

// Seed returns the seed of the dice roller, for replays.
func (s *Server) Seed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return 0
	}
	return s.game.Roller().Seed()
}

// Game exposes the authoritative game to in-process callers. Callers must not
// mutate it while other goroutines use the server.
func (s *Server) Game() *game.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game
}
