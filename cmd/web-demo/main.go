// Command web-demo serves hotseat Berserk games to a browser over a
// WebSocket. Both players share one connection; commands always go to the
// player who has to act.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"sync"

	"github.com/berserkgame/berserk-server-go/internal/game"
	"github.com/berserkgame/berserk-server-go/internal/game/cards"
	"github.com/berserkgame/berserk-server-go/internal/game/dice"
	"github.com/berserkgame/berserk-server-go/internal/game/rules"
	"github.com/berserkgame/berserk-server-go/internal/match"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var addr = flag.String("addr", ":8080", "listen address")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for demo
	},
}

type CardInfo struct {
	Name        string `json:"name"`
	Cost        int    `json:"cost"`
	Life        int    `json:"life"`
	Attack      [3]int `json:"attack"`
	Move        int    `json:"move"`
	Flying      bool   `json:"flying"`
	Description string `json:"description,omitempty"`
}

type WSMessage struct {
	Type   string          `json:"type"`
	GameID string          `json:"game_id,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type outMessage struct {
	Type   string `json:"type"`
	GameID string `json:"game_id,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type createGameData struct {
	Seed    int64            `json:"seed"`
	Player1 []game.Placement `json:"player1,omitempty"`
	Player2 []game.Placement `json:"player2,omitempty"`
}

type stateData struct {
	Active   int           `json:"active_player"`
	Snapshot game.State    `json:"snapshot"`
	Events   []rules.Event `json:"events,omitempty"`
	Accepted *bool         `json:"accepted,omitempty"`
	Error    string        `json:"error,omitempty"`
}

type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	gameID string
}

type Hub struct {
	logger     *zap.Logger
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	games      map[string]*demoGame
}

type demoGame struct {
	server  *match.Server
	hotseat *match.Hotseat
}

func newHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		games:      make(map[string]*demoGame),
	}
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Info("client unregistered", zap.String("game_id", client.gameID))
			}
			h.mu.Unlock()
		}
	}
}

// createGame sets up a hotseat game, from explicit armies when both are
// given and from the starter decks otherwise.
func (h *Hub) createGame(data createGameData) (string, *demoGame, error) {
	var roller *dice.Roller
	if data.Seed != 0 {
		roller = dice.NewRoller(data.Seed)
	}
	srv := match.NewServer(h.logger, roller)

	var err error
	if len(data.Player1) > 0 && len(data.Player2) > 0 {
		err = srv.SetupWithPlacement(data.Player1, data.Player2)
	} else {
		err = srv.SetupGame(cards.StarterDeck(1), cards.StarterDeck(2))
	}
	if err != nil {
		return "", nil, err
	}

	gameID := "game-" + uuid.NewString()[:8]
	g := &demoGame{server: srv, hotseat: match.NewHotseat(srv)}
	h.mu.Lock()
	h.games[gameID] = g
	h.mu.Unlock()
	h.logger.Info("hotseat game created", zap.String("game_id", gameID), zap.Int64("seed", srv.Seed()))
	return gameID, g, nil
}

func (h *Hub) game(gameID string) *demoGame {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.games[gameID]
}

func catalog() []CardInfo {
	names := cards.Names()
	out := make([]CardInfo, 0, len(names))
	for _, name := range names {
		s, ok := cards.Lookup(name)
		if !ok {
			continue
		}
		out = append(out, CardInfo{
			Name:        s.Name,
			Cost:        s.Cost,
			Life:        s.Life,
			Attack:      s.Attack,
			Move:        s.Move,
			Flying:      s.IsFlying,
			Description: s.Description,
		})
	}
	return out
}

func (h *Hub) handleMessage(client *Client, msg WSMessage) {
	h.logger.Debug("received message", zap.String("type", msg.Type), zap.String("game_id", client.gameID))

	switch msg.Type {
	case "cards":
		client.reply(outMessage{Type: "cards", Data: catalog()})

	case "create_game":
		var data createGameData
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				client.reply(outMessage{Type: "error", Data: err.Error()})
				return
			}
		}
		gameID, g, err := h.createGame(data)
		if err != nil {
			client.reply(outMessage{Type: "error", Data: err.Error()})
			return
		}
		client.gameID = gameID
		h.broadcastGameState(gameID, g, nil)

	case "join_game":
		g := h.game(msg.GameID)
		if g == nil {
			client.reply(outMessage{Type: "error", Data: "game not found"})
			return
		}
		client.gameID = msg.GameID
		client.reply(outMessage{Type: "game_state", GameID: msg.GameID, Data: g.state(nil)})

	case "command":
		g := h.game(client.gameID)
		if g == nil {
			client.reply(outMessage{Type: "error", Data: "no game"})
			return
		}
		var cmd game.Command
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			client.reply(outMessage{Type: "error", Data: "invalid command"})
			return
		}
		res := g.hotseat.SendCommand(context.Background(), cmd)
		h.broadcastGameState(client.gameID, g, &res)
	}
}

// state is the full board; both players sit at the same screen.
func (g *demoGame) state(res *match.CommandResult) stateData {
	st := stateData{
		Active:   g.hotseat.Active().Player(),
		Snapshot: g.server.Snapshot(0),
	}
	if res != nil {
		accepted := res.Accepted
		st.Accepted = &accepted
		st.Events = res.Events
		st.Error = res.Error
	}
	return st
}

func (h *Hub) broadcastGameState(gameID string, g *demoGame, res *match.CommandResult) {
	response, err := json.Marshal(outMessage{
		Type:   "game_state",
		GameID: gameID,
		Data:   g.state(res),
	})
	if err != nil {
		h.logger.Error("failed to encode game state", zap.Error(err))
		return
	}

	// Send to all clients in this game
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.gameID == gameID {
			select {
			case client.send <- response:
			default:
			}
		}
	}
}

func (c *Client) reply(msg outMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) readPump(hub *Hub) {
	defer func() {
		hub.unregister <- c
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			hub.logger.Warn("error unmarshaling message", zap.Error(err))
			continue
		}

		hub.handleMessage(c, msg)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			break
		}
	}
}

func serveWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
	}

	hub.register <- client

	go client.writePump()
	go client.readPump(hub)
}

func main() {
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	hub := newHub(logger)
	go hub.run()

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, w, r)
	})

	logger.Info("hotseat demo starting", zap.String("address", *addr))
	if err := http.ListenAndServe(*addr, nil); err != nil {
		logger.Fatal("ListenAndServe failed", zap.Error(err))
	}
}
