package match

import (
	"fmt"
	"sync"

	"github.com/berserkgame/berserk-server-go/internal/game"
	"github.com/berserkgame/berserk-server-go/internal/game/rules"
	"github.com/berserkgame/berserk-server-go/internal/protocol"
	"go.uber.org/zap"
)

// Sender delivers messages to the game server.
type Sender interface {
	Send(msg protocol.Message) error
}

// NetworkClient mirrors a remote match. Every snapshot from the server
// replaces the local game; events that came with it are then replayed into
// the event log and published on the bus for rendering.
type NetworkClient struct {
	mu       sync.Mutex
	logger   *zap.Logger
	sender   Sender
	player   int
	matchID  string
	seq      int
	game     *game.Game
	hash     string
	winner   int
	eventLog []rules.Event
	bus      *rules.EventBus
}

// NewNetworkClient creates a client for player. sender may be nil for a
// client that only consumes results.
func NewNetworkClient(logger *zap.Logger, sender Sender, player int) *NetworkClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NetworkClient{
		logger: logger,
		sender: sender,
		player: player,
		winner: game.NoWinner,
		bus:    rules.NewEventBus(),
	}
}

func (c *NetworkClient) Player() int { return c.player }

// Events is the bus local listeners subscribe to.
func (c *NetworkClient) Events() *rules.EventBus { return c.bus }

// Game returns the local copy rebuilt from the last snapshot, or nil.
func (c *NetworkClient) Game() *game.Game {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game
}

// SnapshotHash is the hash the server sent with the last snapshot.
func (c *NetworkClient) SnapshotHash() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hash
}

// Winner is the announced winner, or game.NoWinner while playing.
func (c *NetworkClient) Winner() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.winner
}

// EventLog returns every event received so far.
func (c *NetworkClient) EventLog() []rules.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]rules.Event, len(c.eventLog))
	copy(out, c.eventLog)
	return out
}

// SyncFromSnapshot replaces the local game with one rebuilt from st.
func (c *NetworkClient) SyncFromSnapshot(st game.State) error {
	g, err := game.FromDict(c.logger, nil, st)
	if err != nil {
		return fmt.Errorf("sync from snapshot: %w", err)
	}
	c.mu.Lock()
	c.game = g
	c.mu.Unlock()
	return nil
}

// ApplyEvents appends events to the log and publishes them.
func (c *NetworkClient) ApplyEvents(events []rules.Event) {
	c.mu.Lock()
	c.eventLog = append(c.eventLog, events...)
	c.mu.Unlock()
	c.bus.PublishBatch(events)
}

// ProcessResult syncs the snapshot before applying events, so listeners see
// the authoritative state when they react.
func (c *NetworkClient) ProcessResult(result CommandResult) error {
	if result.Snapshot != nil {
		if err := c.SyncFromSnapshot(*result.Snapshot); err != nil {
			return err
		}
	}
	if len(result.Events) > 0 {
		c.ApplyEvents(result.Events)
	}
	return nil
}

// SendCommand forwards cmd to the server. The outcome arrives later as an
// UPDATE message.
func (c *NetworkClient) SendCommand(cmd game.Command) error {
	if c.sender == nil {
		return fmt.Errorf("network client has no connection")
	}
	c.mu.Lock()
	c.seq++
	seq := c.seq
	matchID := c.matchID
	c.mu.Unlock()

	cmd.Player = c.player
	msg, err := protocol.New(protocol.TypeCommand, matchID, seq, protocol.CommandPayload{Command: cmd})
	if err != nil {
		return err
	}
	return c.sender.Send(msg)
}

// RequestResync asks the server for a fresh snapshot.
func (c *NetworkClient) RequestResync() error {
	if c.sender == nil {
		return fmt.Errorf("network client has no connection")
	}
	c.mu.Lock()
	c.seq++
	msg := protocol.Message{Type: protocol.TypeRequestResync, MatchID: c.matchID, Seq: c.seq}
	c.mu.Unlock()
	return c.sender.Send(msg)
}

// HandleMessage applies a game message from the server. Lobby and chat
// messages are ignored.
func (c *NetworkClient) HandleMessage(msg protocol.Message) error {
	switch msg.Type {
	case protocol.TypeMatchCreated, protocol.TypeMatchJoined:
		c.mu.Lock()
		c.matchID = msg.MatchID
		c.mu.Unlock()
		return nil

	case protocol.TypeGameStart:
		var start protocol.GameStart
		if err := msg.Decode(&start); err != nil {
			return err
		}
		c.mu.Lock()
		if msg.MatchID != "" {
			c.matchID = msg.MatchID
		}
		c.hash = start.SnapshotHash
		c.mu.Unlock()
		return c.SyncFromSnapshot(start.Snapshot)

	case protocol.TypeUpdate:
		var update protocol.Update
		if err := msg.Decode(&update); err != nil {
			return err
		}
		if !update.Accepted {
			c.logger.Debug("command rejected by server", zap.String("error", update.Error))
		}
		if update.SnapshotHash != "" {
			c.mu.Lock()
			c.hash = update.SnapshotHash
			c.mu.Unlock()
		}
		return c.ProcessResult(CommandResult{
			Accepted: update.Accepted,
			Events:   update.Events,
			Snapshot: update.Snapshot,
			Error:    update.Error,
		})

	case protocol.TypeResync:
		var resync protocol.Resync
		if err := msg.Decode(&resync); err != nil {
			return err
		}
		c.mu.Lock()
		c.hash = resync.SnapshotHash
		c.mu.Unlock()
		return c.SyncFromSnapshot(resync.Snapshot)

	case protocol.TypeGameOver:
		var over protocol.GameOver
		if err := msg.Decode(&over); err != nil {
			return err
		}
		c.mu.Lock()
		c.winner = over.Winner
		c.mu.Unlock()
		return nil
	}
	return nil
}
