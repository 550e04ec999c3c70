package match

import (
	"context"

	"github.com/berserkgame/berserk-server-go/internal/game"
	"github.com/berserkgame/berserk-server-go/internal/game/dice"
	"go.uber.org/zap"
)

// LocalClient talks to a server in the same process. The game is shared, so
// there is nothing to sync.
type LocalClient struct {
	server *Server
	player int
}

// NewLocalClient seats player at server.
func NewLocalClient(server *Server, player int) *LocalClient {
	return &LocalClient{server: server, player: player}
}

func (c *LocalClient) Player() int { return c.player }

// Game is the authoritative game itself.
func (c *LocalClient) Game() *game.Game { return c.server.Game() }

// SendCommand applies cmd as this client's player.
func (c *LocalClient) SendCommand(ctx context.Context, cmd game.Command) CommandResult {
	cmd.Player = c.player
	return c.server.Apply(ctx, cmd, true)
}

// CreateLocalMatch builds a server with one client per seat. The game still
// has to be set up on the returned server.
func CreateLocalMatch(logger *zap.Logger, roller *dice.Roller) (*Server, *LocalClient, *LocalClient) {
	server := NewServer(logger, roller)
	return server, NewLocalClient(server, 1), NewLocalClient(server, 2)
}

// Hotseat lets two people share one screen: every command goes out through
// whichever seat the game is waiting on.
type Hotseat struct {
	server  *Server
	clients [2]*LocalClient
}

// NewHotseat seats both players at server.
func NewHotseat(server *Server) *Hotseat {
	return &Hotseat{
		server:  server,
		clients: [2]*LocalClient{NewLocalClient(server, 1), NewLocalClient(server, 2)},
	}
}

// Active returns the client of the player who must act now: the priority
// holder, then the owner of a pending decision, then the current player.
func (h *Hotseat) Active() *LocalClient {
	if p := h.server.ActingPlayer(); p == 2 {
		return h.clients[1]
	}
	return h.clients[0]
}

// Client returns the client of player.
func (h *Hotseat) Client(player int) *LocalClient {
	if player == 2 {
		return h.clients[1]
	}
	return h.clients[0]
}

// SendCommand routes cmd through the active seat.
func (h *Hotseat) SendCommand(ctx context.Context, cmd game.Command) CommandResult {
	return h.Active().SendCommand(ctx, cmd)
}
