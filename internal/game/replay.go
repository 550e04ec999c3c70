package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/berserkgame/berserk-server-go/internal/game/dice"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Replay is a recorded match: the dice seed, both placements and every
// accepted command in order. Replaying them on a fresh game reproduces the
// match exactly.
type Replay struct {
	ID           string
	MatchID      string
	Seed         int64
	P1Placement  []Placement
	P2Placement  []Placement
	Commands     []Command
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates an empty replay for a match that starts from p1 and p2.
func NewReplay(matchID string, seed int64, p1, p2 []Placement) *Replay {
	return &Replay{
		ID:          uuid.NewString(),
		MatchID:     matchID,
		Seed:        seed,
		P1Placement: append([]Placement(nil), p1...),
		P2Placement: append([]Placement(nil), p2...),
	}
}

// RecordCommand appends an accepted command.
func (r *Replay) RecordCommand(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Commands = append(r.Commands, cmd)
}

// Start rewinds playback.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CurrentIndex = 0
}

// Next returns the next command and advances, or false at the end.
func (r *Replay) Next() (Command, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex < len(r.Commands) {
		cmd := r.Commands[r.CurrentIndex]
		r.CurrentIndex++
		return cmd, true
	}
	return Command{}, false
}

// Previous steps back and returns the command at the new position.
func (r *Replay) Previous() (Command, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		return r.Commands[r.CurrentIndex], true
	}
	return Command{}, false
}

// Skip moves the cursor by count, clamped to the recorded range.
func (r *Replay) Skip(count int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CurrentIndex = max(0, min(r.CurrentIndex+count, len(r.Commands)))
	return r.CurrentIndex
}

// Size returns the number of recorded commands.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.Commands)
}

// GameAt rebuilds the game after the first n commands.
func (r *Replay) GameAt(logger *zap.Logger, n int) (*Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g := NewGame(logger, dice.NewRoller(r.Seed))
	if err := g.SetupWithPlacement(r.P1Placement, r.P2Placement); err != nil {
		return nil, fmt.Errorf("replay setup: %w", err)
	}
	n = min(n, len(r.Commands))
	for i := 0; i < n; i++ {
		if ok, _ := g.ProcessCommand(r.Commands[i]); !ok {
			return nil, fmt.Errorf("replay diverged at command %d (%s)", i, r.Commands[i].Type)
		}
	}
	return g, nil
}

// Play rebuilds the final game of the replay.
func (r *Replay) Play(logger *zap.Logger) (*Game, error) {
	return r.GameAt(logger, r.Size())
}

// replayMetadata heads every replay file.
type replayMetadata struct {
	ID           string
	MatchID      string
	Timestamp    time.Time
	Version      int
	Seed         int64
	CommandCount int
}

func replayPath(directory, matchID string) string {
	return filepath.Join(directory, fmt.Sprintf("%s.replay", matchID))
}

// SaveToFile writes the replay to <directory>/<match id>.replay as gzipped gob.
func (r *Replay) SaveToFile(directory string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(replayPath(directory, r.MatchID))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	zw := gzip.NewWriter(file)
	defer zw.Close()
	enc := gob.NewEncoder(zw)

	meta := replayMetadata{
		ID:           r.ID,
		MatchID:      r.MatchID,
		Timestamp:    time.Now(),
		Version:      1,
		Seed:         r.Seed,
		CommandCount: len(r.Commands),
	}
	if err := enc.Encode(&meta); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := enc.Encode(r.P1Placement); err != nil {
		return fmt.Errorf("failed to encode placement of player 1: %w", err)
	}
	if err := enc.Encode(r.P2Placement); err != nil {
		return fmt.Errorf("failed to encode placement of player 2: %w", err)
	}
	for i, cmd := range r.Commands {
		if err := enc.Encode(cmd); err != nil {
			return fmt.Errorf("failed to encode command %d: %w", i, err)
		}
	}
	return nil
}

// LoadReplayFromFile reads a replay written by SaveToFile.
func LoadReplayFromFile(directory, matchID string) (*Replay, error) {
	file, err := os.Open(replayPath(directory, matchID))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	zr, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer zr.Close()
	dec := gob.NewDecoder(zr)

	var meta replayMetadata
	if err := dec.Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if meta.Version != 1 {
		return nil, fmt.Errorf("unsupported replay version: %d", meta.Version)
	}

	r := &Replay{ID: meta.ID, MatchID: meta.MatchID, Seed: meta.Seed}
	if err := dec.Decode(&r.P1Placement); err != nil {
		return nil, fmt.Errorf("failed to decode placement of player 1: %w", err)
	}
	if err := dec.Decode(&r.P2Placement); err != nil {
		return nil, fmt.Errorf("failed to decode placement of player 2: %w", err)
	}
	for i := 0; i < meta.CommandCount; i++ {
		var cmd Command
		if err := dec.Decode(&cmd); err != nil {
			return nil, fmt.Errorf("failed to decode command %d: %w", i, err)
		}
		r.Commands = append(r.Commands, cmd)
	}
	return r, nil
}

// ReplayRecorder keeps the replays of running matches and flushes them to
// disk when a match ends.
type ReplayRecorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay
	enabled map[string]bool
	saveDir string
}

// NewReplayRecorder creates a recorder writing into saveDir.
func NewReplayRecorder(logger *zap.Logger, saveDir string) *ReplayRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplayRecorder{
		logger:  logger,
		replays: make(map[string]*Replay),
		enabled: make(map[string]bool),
		saveDir: saveDir,
	}
}

// StartRecording begins recording matchID.
func (rr *ReplayRecorder) StartRecording(matchID string, seed int64, p1, p2 []Placement) *Replay {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	r := NewReplay(matchID, seed, p1, p2)
	rr.replays[matchID] = r
	rr.enabled[matchID] = true
	rr.logger.Info("started replay recording",
		zap.String("match_id", matchID),
		zap.String("replay_id", r.ID),
	)
	return r
}

// StopRecording keeps the replay but ignores further commands.
func (rr *ReplayRecorder) StopRecording(matchID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.enabled[matchID] = false
	rr.logger.Info("stopped replay recording", zap.String("match_id", matchID))
}

// RecordCommand appends cmd if matchID is being recorded.
func (rr *ReplayRecorder) RecordCommand(matchID string, cmd Command) {
	rr.mu.RLock()
	enabled := rr.enabled[matchID]
	r := rr.replays[matchID]
	rr.mu.RUnlock()

	if !enabled || r == nil {
		return
	}
	r.RecordCommand(cmd)
	rr.logger.Debug("recorded replay command",
		zap.String("match_id", matchID),
		zap.Int("command_count", r.Size()),
	)
}

// GetReplay returns the in-memory replay of matchID.
func (rr *ReplayRecorder) GetReplay(matchID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	r, ok := rr.replays[matchID]
	return r, ok
}

// SaveReplay writes the replay to disk and forgets it.
func (rr *ReplayRecorder) SaveReplay(matchID string) error {
	rr.mu.Lock()
	r, ok := rr.replays[matchID]
	if !ok {
		rr.mu.Unlock()
		return fmt.Errorf("no replay found for match %s", matchID)
	}
	delete(rr.replays, matchID)
	delete(rr.enabled, matchID)
	rr.mu.Unlock()

	if err := r.SaveToFile(rr.saveDir); err != nil {
		return fmt.Errorf("failed to save replay: %w", err)
	}
	rr.logger.Info("saved replay to disk",
		zap.String("match_id", matchID),
		zap.Int("command_count", r.Size()),
		zap.String("directory", rr.saveDir),
	)
	return nil
}

// LoadReplay reads a saved replay.
func (rr *ReplayRecorder) LoadReplay(matchID string) (*Replay, error) {
	r, err := LoadReplayFromFile(rr.saveDir, matchID)
	if err != nil {
		return nil, err
	}
	rr.logger.Info("loaded replay from disk",
		zap.String("match_id", matchID),
		zap.Int("command_count", r.Size()),
	)
	return r, nil
}

// ClearReplay drops a replay without saving it.
func (rr *ReplayRecorder) ClearReplay(matchID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	delete(rr.replays, matchID)
	delete(rr.enabled, matchID)
}

// IsRecording reports whether commands of matchID are being recorded.
func (rr *ReplayRecorder) IsRecording(matchID string) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	return rr.enabled[matchID]
}
