// Package lobby keeps the match rooms of the network server: seats, ready
// flags, placements, draw offers, and the player to match index.
package lobby

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/berserkgame/berserk-server-go/internal/game/dice"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MatchIDLength is the length of the match codes players share.
const MatchIDLength = 6

// Manager manages match rooms.
type Manager struct {
	matches   map[string]*Match
	players   map[string]string
	mu        sync.RWMutex
	logger    *zap.Logger
	newRoller func() *dice.Roller
}

// NewManager creates a new lobby manager.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		matches: make(map[string]*Match),
		players: make(map[string]string),
		logger:  logger,
		newRoller: func() *dice.Roller {
			return dice.NewRoller(time.Now().UnixNano())
		},
	}
}

// SetRollerFactory replaces how new matches get their dice.
func (m *Manager) SetRollerFactory(f func() *dice.Roller) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.newRoller = f
}

func newMatchID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:MatchIDLength])
}

// CreateMatch opens a match and seats its creator as player 1. A non-empty
// password makes it private.
func (m *Manager) CreateMatch(playerID, playerName, password string) (*Match, error) {
	var hash []byte
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash match password: %w", err)
		}
		hash = h
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, seated := m.players[playerID]; seated {
		return nil, ErrAlreadySeated
	}
	id := newMatchID()
	for m.matches[id] != nil {
		id = newMatchID()
	}
	mt := newMatch(id, m.logger, m.newRoller(), hash)
	if _, err := mt.join(playerID, playerName, password); err != nil {
		return nil, err
	}
	m.matches[id] = mt
	m.players[playerID] = id

	m.logger.Info("match created",
		zap.String("match_id", id),
		zap.String("host", playerName),
		zap.Bool("private", hash != nil),
	)
	return mt, nil
}

// JoinMatch seats a player in an existing match and returns the seat.
func (m *Manager) JoinMatch(matchID, playerID, playerName, password string) (*Match, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, seated := m.players[playerID]; seated {
		return nil, 0, ErrAlreadySeated
	}
	mt, ok := m.matches[strings.ToUpper(strings.TrimSpace(matchID))]
	if !ok {
		return nil, 0, ErrMatchNotFound
	}
	seat, err := mt.join(playerID, playerName, password)
	if err != nil {
		return nil, 0, err
	}
	m.players[playerID] = mt.ID

	m.logger.Info("player joined match",
		zap.String("match_id", mt.ID),
		zap.String("player_name", playerName),
		zap.Int("player", seat),
	)
	return mt, seat, nil
}

// LeaveMatch frees the player's seat. Matches left empty are removed.
func (m *Manager) LeaveMatch(playerID string) (*Match, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matchID, ok := m.players[playerID]
	if !ok {
		return nil, 0, ErrNotInLobby
	}
	delete(m.players, playerID)
	mt, ok := m.matches[matchID]
	if !ok {
		return nil, 0, ErrMatchNotFound
	}
	seat, empty := mt.leave(playerID)
	if empty {
		delete(m.matches, matchID)
		m.logger.Info("match removed", zap.String("match_id", matchID), zap.String("reason", "empty"))
	}
	return mt, seat, nil
}

// MatchOf returns the match the player is seated in.
func (m *Manager) MatchOf(playerID string) (*Match, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mt, ok := m.matches[m.players[playerID]]
	return mt, ok
}

// GetMatch retrieves a match by id.
func (m *Manager) GetMatch(matchID string) (*Match, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mt, ok := m.matches[strings.ToUpper(matchID)]
	return mt, ok
}

// RemoveMatch drops a match and unseats its players.
func (m *Manager) RemoveMatch(matchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(matchID)
}

func (m *Manager) removeLocked(matchID string) {
	mt, ok := m.matches[matchID]
	if !ok {
		return
	}
	for _, id := range mt.PlayerIDs() {
		delete(m.players, id)
	}
	delete(m.matches, matchID)
}

// ListOpen returns the matches a newcomer can still join, oldest first.
func (m *Manager) ListOpen() []MatchSnapshot {
	all := m.Snapshots()
	open := all[:0]
	for _, s := range all {
		if !s.Started && s.PlayerCount < 2 {
			open = append(open, s)
		}
	}
	return open
}

// Snapshots returns every match, oldest first.
func (m *Manager) Snapshots() []MatchSnapshot {
	m.mu.RLock()
	matches := make([]*Match, 0, len(m.matches))
	for _, mt := range m.matches {
		matches = append(matches, mt)
	}
	m.mu.RUnlock()

	out := make([]MatchSnapshot, 0, len(matches))
	for _, mt := range matches {
		out = append(out, mt.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreateTime.Equal(out[j].CreateTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreateTime.Before(out[j].CreateTime)
	})
	return out
}

// GetActiveMatchCount returns the number of started, unfinished matches.
func (m *Manager) GetActiveMatchCount() int {
	count := 0
	for _, s := range m.Snapshots() {
		if s.Started && !s.Finished {
			count++
		}
	}
	return count
}

// MatchCount returns the number of rooms.
func (m *Manager) MatchCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.matches)
}

// CleanupStale removes empty matches and matches that never started within
// maxAge. It returns what the removed matches looked like, seats included.
func (m *Manager) CleanupStale(now time.Time, maxAge time.Duration) []MatchSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []MatchSnapshot
	for _, mt := range m.matches {
		if mt.IsEmpty() || (!mt.IsStarted() && now.Sub(mt.CreateTime) > maxAge) {
			removed = append(removed, mt.Snapshot())
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].ID < removed[j].ID })
	for _, snap := range removed {
		m.removeLocked(snap.ID)
		m.logger.Info("cleaned up stale match", zap.String("match_id", snap.ID))
	}
	return removed
}
