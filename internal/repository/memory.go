package repository

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps results in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	results map[string]Result
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{results: make(map[string]Result)}
}

func (s *MemoryStore) SaveResult(ctx context.Context, r Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r, err := validateResult(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[r.MatchID] = r
	return nil
}

func (s *MemoryStore) GetResult(ctx context.Context, matchID string) (Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[matchID]
	if !ok {
		return Result{}, ErrResultNotFound
	}
	return r, nil
}

// ListResults returns the most recently finished results first.
func (s *MemoryStore) ListResults(ctx context.Context, limit int) ([]Result, error) {
	s.mu.RLock()
	out := make([]Result, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, r)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].FinishedAt.Equal(out[j].FinishedAt) {
			return out[i].MatchID < out[j].MatchID
		}
		return out[i].FinishedAt.After(out[j].FinishedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) PlayerRecord(ctx context.Context, player string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec := Record{Player: player}
	for _, r := range s.results {
		tally(&rec, r)
	}
	return rec, nil
}

func (s *MemoryStore) Close() error { return nil }
