// Package protocol defines the messages exchanged between match clients and
// the game server, and the length-prefixed framing used on TCP.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/berserkgame/berserk-server-go/internal/game"
	"github.com/berserkgame/berserk-server-go/internal/game/rules"
)

// MessageType names a message on the wire.
type MessageType string

const (
	// Connection
	TypeHello   MessageType = "HELLO"
	TypeWelcome MessageType = "WELCOME"
	TypePing    MessageType = "PING"
	TypePong    MessageType = "PONG"
	TypeError   MessageType = "ERROR"

	// Lobby
	TypeCreateMatch       MessageType = "CREATE_MATCH"
	TypeJoinMatch         MessageType = "JOIN_MATCH"
	TypeLeaveMatch        MessageType = "LEAVE_MATCH"
	TypeListMatches       MessageType = "LIST_MATCHES"
	TypeMatchList         MessageType = "MATCH_LIST"
	TypeMatchCreated      MessageType = "MATCH_CREATED"
	TypeMatchJoined       MessageType = "MATCH_JOINED"
	TypeMatchLeft         MessageType = "MATCH_LEFT"
	TypePlayerJoined      MessageType = "PLAYER_JOINED"
	TypePlayerLeft        MessageType = "PLAYER_LEFT"
	TypePlayerReady       MessageType = "PLAYER_READY"
	TypePlayerReadyStatus MessageType = "PLAYER_READY_STATUS"
	TypePlacementDone     MessageType = "PLACEMENT_DONE"

	// Game
	TypeGameStart     MessageType = "GAME_START"
	TypeCommand       MessageType = "COMMAND"
	TypeUpdate        MessageType = "UPDATE"
	TypeResync        MessageType = "RESYNC"
	TypeRequestResync MessageType = "REQUEST_RESYNC"
	TypeGameOver      MessageType = "GAME_OVER"
	TypeChat          MessageType = "CHAT"
	TypeDrawOffer     MessageType = "DRAW_OFFER"
	TypeDrawOffered   MessageType = "DRAW_OFFERED"
	TypeDrawAccept    MessageType = "DRAW_ACCEPT"
	TypeConcede       MessageType = "CONCEDE"
)

// Message is the envelope of every frame. Seq is the sender's counter; the
// server numbers its own messages per session.
type Message struct {
	Type    MessageType     `json:"type"`
	MatchID string          `json:"match_id,omitempty"`
	Seq     int             `json:"seq"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// New builds a message with payload encoded as JSON. A nil payload leaves the
// field empty.
func New(t MessageType, matchID string, seq int, payload any) (Message, error) {
	msg := Message{Type: t, MatchID: matchID, Seq: seq}
	if payload == nil {
		return msg, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s payload: %w", t, err)
	}
	msg.Payload = raw
	return msg, nil
}

// Decode unmarshals the payload into v. An empty payload leaves v untouched.
func (m Message) Decode(v any) error {
	if len(m.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", m.Type, err)
	}
	return nil
}

// Hello opens a session. ContentHash must match the server's card catalogs.
type Hello struct {
	PlayerName  string `json:"player_name"`
	ContentHash string `json:"content_hash"`
}

// Welcome answers Hello with the id the server assigned.
type Welcome struct {
	PlayerID      string `json:"player_id"`
	ServerVersion string `json:"server_version,omitempty"`
}

// CreateMatch opens a new match. A password makes it private.
type CreateMatch struct {
	Password string `json:"password,omitempty"`
}

// MatchCreated carries the code of the new match; its creator sits as player 1.
type MatchCreated struct {
	MatchID string `json:"match_id"`
	Player  int    `json:"player"`
}

// JoinMatch names a match when the envelope does not.
type JoinMatch struct {
	MatchID  string `json:"match_id,omitempty"`
	Password string `json:"password,omitempty"`
}

// MatchJoined tells a player which seat is theirs.
type MatchJoined struct {
	Player   int         `json:"player"`
	Snapshot *game.State `json:"snapshot,omitempty"`
}

// PlayerJoined and PlayerLeft announce seat changes.
type PlayerJoined struct {
	Player     int    `json:"player"`
	PlayerName string `json:"player_name"`
}

type PlayerLeft struct {
	Player     int    `json:"player"`
	PlayerName string `json:"player_name"`
}

// MatchInfo describes an open match in MATCH_LIST.
type MatchInfo struct {
	MatchID     string `json:"match_id"`
	HostName    string `json:"host_name"`
	PlayerCount int    `json:"player_count"`
	IsStarted   bool   `json:"is_started"`
	Private     bool   `json:"private,omitempty"`
}

type MatchList struct {
	Matches []MatchInfo `json:"matches"`
}

// PlayerReady sets a seat's ready flag; an empty payload means ready.
type PlayerReady struct {
	Ready *bool `json:"ready,omitempty"`
}

type PlayerReadyStatus struct {
	Player     int    `json:"player"`
	Ready      bool   `json:"ready"`
	PlayerName string `json:"player_name"`
}

// PlacementDone submits the sender's starting army.
type PlacementDone struct {
	PlacedCards []game.Placement `json:"placed_cards"`
}

// GameStart carries the recipient's view of the starting board.
type GameStart struct {
	Snapshot     game.State `json:"snapshot"`
	SnapshotHash string     `json:"snapshot_hash"`
	Player       int        `json:"player"`
}

// CommandPayload wraps a game command. The player field is ignored by the
// server and replaced with the sender's seat.
type CommandPayload struct {
	Command game.Command `json:"command"`
}

// Update reports the outcome of a command to one player.
type Update struct {
	Accepted     bool          `json:"accepted"`
	Events       []rules.Event `json:"events,omitempty"`
	Snapshot     *game.State   `json:"snapshot,omitempty"`
	SnapshotHash string        `json:"snapshot_hash,omitempty"`
	Error        string        `json:"error,omitempty"`
}

type Resync struct {
	Snapshot     game.State `json:"snapshot"`
	SnapshotHash string     `json:"snapshot_hash"`
}

// GameOver announces the winner; 0 is a draw.
type GameOver struct {
	Winner int    `json:"winner"`
	Reason string `json:"reason,omitempty"`
}

type Error struct {
	Message string `json:"message"`
}

// Chat is sent with Text only; the server fills in who said it.
type Chat struct {
	Text       string `json:"text"`
	PlayerName string `json:"player_name,omitempty"`
	Player     int    `json:"player,omitempty"`
}

type DrawOffered struct {
	Player int `json:"player"`
}
