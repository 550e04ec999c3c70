package lobby

import (
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/berserkgame/berserk-server-go/internal/game"
	"github.com/berserkgame/berserk-server-go/internal/game/board"
	"github.com/berserkgame/berserk-server-go/internal/game/dice"
	"github.com/berserkgame/berserk-server-go/internal/match"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrNotInLobby      = errors.New("player is not in a match")
	ErrMatchNotFound   = errors.New("match not found")
	ErrMatchFull       = errors.New("match is full")
	ErrMatchStarted    = errors.New("match already started")
	ErrMatchNotStarted = errors.New("match has not started")
	ErrWrongPassword   = errors.New("wrong match password")
	ErrAlreadySeated   = errors.New("player already in a match")
	ErrInvalidName     = errors.New("invalid player name")
	ErrEmptyPlacement  = errors.New("placement is empty")
	ErrBadPlacement    = errors.New("position outside placement zone")
)

// MaxNameLength bounds player names, in runes.
const MaxNameLength = 24

// NormalizeName trims and NFC-normalizes a player name.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(norm.NFC.String(name))
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

// NormalizeText NFC-normalizes chat text and trims surrounding space.
func NormalizeText(text string) string {
	return strings.TrimSpace(norm.NFC.String(text))
}

// DrawOutcome is what a draw offer led to.
type DrawOutcome int

const (
	// DrawIgnored: repeated offer, or nothing to draw.
	DrawIgnored DrawOutcome = iota
	// DrawOffered: the opponent must now answer.
	DrawOffered
	// DrawAgreed: both players want the draw.
	DrawAgreed
)

// Seat is one player slot of a match.
type Seat struct {
	PlayerID  string
	Name      string
	Ready     bool
	Placement []game.Placement
}

// SeatSnapshot captures a seat for external use.
type SeatSnapshot struct {
	Player   int
	PlayerID string
	Name     string
	Ready    bool
	Placed   bool
}

// MatchSnapshot captures a consistent view of a match.
type MatchSnapshot struct {
	ID          string
	HostName    string
	PlayerCount int
	Private     bool
	Started     bool
	Finished    bool
	Winner      int
	Seats       []SeatSnapshot
	CreateTime  time.Time
	StartTime   *time.Time
	EndTime     *time.Time
}

// Match is a two-seat game room. Player 1 is the creator.
type Match struct {
	ID         string
	CreateTime time.Time

	mu           sync.Mutex
	gameMu       sync.Mutex
	logger       *zap.Logger
	passwordHash []byte
	seats        [2]*Seat
	server       *match.Server
	drawOfferBy  int
	startTime    *time.Time
	endTime      *time.Time
	winner       int
}

func newMatch(id string, logger *zap.Logger, roller *dice.Roller, passwordHash []byte) *Match {
	return &Match{
		ID:           id,
		CreateTime:   time.Now(),
		logger:       logger,
		passwordHash: passwordHash,
		server:       match.NewServer(logger.With(zap.String("match_id", id)), roller),
		winner:       game.NoWinner,
	}
}

// Server is the authoritative game server of the match.
func (m *Match) Server() *match.Server { return m.server }

// Exclusive runs fn under the match's game lock. A command and the updates
// sent for it must not interleave with another command of the same match.
func (m *Match) Exclusive(fn func()) {
	m.gameMu.Lock()
	defer m.gameMu.Unlock()
	fn()
}

func (m *Match) checkPassword(password string) error {
	if len(m.passwordHash) == 0 {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// join seats a player in the first free seat.
func (m *Match) join(playerID, name, password string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.startTime != nil {
		return 0, ErrMatchStarted
	}
	if err := m.checkPassword(password); err != nil {
		return 0, err
	}
	for i, s := range m.seats {
		if s == nil {
			m.seats[i] = &Seat{PlayerID: playerID, Name: name}
			return i + 1, nil
		}
	}
	return 0, ErrMatchFull
}

// leave frees the player's seat and reports whether the match is now empty.
func (m *Match) leave(playerID string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	player := m.seatOfLocked(playerID)
	if player == 0 {
		return 0, m.emptyLocked()
	}
	m.seats[player-1] = nil
	if m.drawOfferBy == player {
		m.drawOfferBy = 0
	}
	return player, m.emptyLocked()
}

func (m *Match) seatOfLocked(playerID string) int {
	for i, s := range m.seats {
		if s != nil && s.PlayerID == playerID {
			return i + 1
		}
	}
	return 0
}

func (m *Match) emptyLocked() bool {
	return m.seats[0] == nil && m.seats[1] == nil
}

// SeatOf returns the seat of playerID, or 0.
func (m *Match) SeatOf(playerID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seatOfLocked(playerID)
}

// PlayerAt returns the id of the player in seat, or "".
func (m *Match) PlayerAt(seat int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seat < 1 || seat > 2 || m.seats[seat-1] == nil {
		return ""
	}
	return m.seats[seat-1].PlayerID
}

// PlayerIDs lists the seated players, player 1 first.
func (m *Match) PlayerIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, s := range m.seats {
		if s != nil {
			ids = append(ids, s.PlayerID)
		}
	}
	return ids
}

// IsEmpty reports whether both seats are free.
func (m *Match) IsEmpty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.emptyLocked()
}

// IsStarted reports whether the game has begun.
func (m *Match) IsStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startTime != nil
}

// SetReady records a seat's ready flag.
func (m *Match) SetReady(playerID string, ready bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	player := m.seatOfLocked(playerID)
	if player == 0 {
		return 0, ErrNotInLobby
	}
	if m.startTime != nil {
		return player, ErrMatchStarted
	}
	m.seats[player-1].Ready = ready
	return player, nil
}

// SubmitPlacement stores the player's starting army. Once both seats have
// placed, the game is set up and started is true.
func (m *Match) SubmitPlacement(playerID string, placements []game.Placement) (started bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	player := m.seatOfLocked(playerID)
	if player == 0 {
		return false, ErrNotInLobby
	}
	if m.startTime != nil {
		return false, ErrMatchStarted
	}
	if len(placements) == 0 {
		return false, ErrEmptyPlacement
	}
	for _, p := range placements {
		if !board.InPlacementZone(player, p.Position) {
			return false, ErrBadPlacement
		}
	}
	m.seats[player-1].Placement = append([]game.Placement(nil), placements...)

	if m.seats[0] == nil || m.seats[1] == nil ||
		len(m.seats[0].Placement) == 0 || len(m.seats[1].Placement) == 0 {
		return false, nil
	}
	if err := m.server.SetupWithPlacement(m.seats[0].Placement, m.seats[1].Placement); err != nil {
		// the second army is rejected; the first stays for another try
		m.seats[player-1].Placement = nil
		return false, err
	}
	now := time.Now()
	m.startTime = &now
	m.logger.Info("match started", zap.String("match_id", m.ID))
	return true, nil
}

// OfferDraw handles a draw offer from playerID. An offer while the opponent's
// offer is pending counts as accepting it.
func (m *Match) OfferDraw(playerID string) (int, DrawOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	player := m.seatOfLocked(playerID)
	if player == 0 {
		return 0, DrawIgnored, ErrNotInLobby
	}
	if m.startTime == nil {
		return player, DrawIgnored, ErrMatchNotStarted
	}
	if m.endTime != nil || m.drawOfferBy == player {
		return player, DrawIgnored, nil
	}
	if m.drawOfferBy != 0 {
		return player, DrawAgreed, nil
	}
	m.drawOfferBy = player
	return player, DrawOffered, nil
}

// AcceptDraw reports whether playerID may accept a pending draw offer.
func (m *Match) AcceptDraw(playerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	player := m.seatOfLocked(playerID)
	if player == 0 {
		return false, ErrNotInLobby
	}
	if m.startTime == nil {
		return false, ErrMatchNotStarted
	}
	return m.endTime == nil && m.drawOfferBy != 0 && m.drawOfferBy != player, nil
}

// ClearDrawOffer drops a pending offer, as any accepted game command does.
func (m *Match) ClearDrawOffer() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drawOfferBy = 0
}

// Finish records the result. It returns false if the match was already over.
func (m *Match) Finish(winner int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.endTime != nil {
		return false
	}
	now := time.Now()
	m.endTime = &now
	m.winner = winner
	m.drawOfferBy = 0
	return true
}

// IsFinished reports whether a result was recorded.
func (m *Match) IsFinished() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.endTime != nil
}

// Placement returns the army submitted by seat.
func (m *Match) Placement(seat int) []game.Placement {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seat < 1 || seat > 2 || m.seats[seat-1] == nil {
		return nil
	}
	return append([]game.Placement(nil), m.seats[seat-1].Placement...)
}

// Snapshot captures the match state.
func (m *Match) Snapshot() MatchSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := MatchSnapshot{
		ID:         m.ID,
		Private:    len(m.passwordHash) > 0,
		Started:    m.startTime != nil,
		Finished:   m.endTime != nil,
		Winner:     m.winner,
		CreateTime: m.CreateTime,
		StartTime:  cloneTime(m.startTime),
		EndTime:    cloneTime(m.endTime),
	}
	for i, s := range m.seats {
		if s == nil {
			continue
		}
		if i == 0 {
			snap.HostName = s.Name
		}
		snap.PlayerCount++
		snap.Seats = append(snap.Seats, SeatSnapshot{
			Player:   i + 1,
			PlayerID: s.PlayerID,
			Name:     s.Name,
			Ready:    s.Ready,
			Placed:   len(s.Placement) > 0,
		})
	}
	return snap
}

func cloneTime(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	t := *src
	return &t
}
