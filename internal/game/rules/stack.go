package rules

import (
	"errors"
	"sync"
)

// StackItem is an instant ability waiting on the priority stack.
type StackItem struct {
	CardID    int    `json:"card_id"`
	Player    int    `json:"player"`
	AbilityID string `json:"ability_id"`
	Option    string `json:"option"`
}

// StackManager manages the instant stack of a priority window.
type StackManager struct {
	mu    sync.Mutex
	items []StackItem
}

// NewStackManager creates a new stack manager.
func NewStackManager() *StackManager {
	return &StackManager{
		items: make([]StackItem, 0, 4),
	}
}

// Push adds an item to the top of the stack.
func (sm *StackManager) Push(item StackItem) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.items = append(sm.items, item)
}

// Pop removes the top item from the stack.
func (sm *StackManager) Pop() (StackItem, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if len(sm.items) == 0 {
		return StackItem{}, errors.New("stack empty")
	}

	idx := len(sm.items) - 1
	item := sm.items[idx]
	sm.items = sm.items[:idx]
	return item, nil
}

// Remove deletes the item placed by cardID.
func (sm *StackManager) Remove(cardID int) (StackItem, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for idx := len(sm.items) - 1; idx >= 0; idx-- {
		if sm.items[idx].CardID == cardID {
			item := sm.items[idx]
			sm.items = append(sm.items[:idx], sm.items[idx+1:]...)
			return item, true
		}
	}
	return StackItem{}, false
}

// Contains reports whether cardID already has an item on the stack.
func (sm *StackManager) Contains(cardID int) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for _, item := range sm.items {
		if item.CardID == cardID {
			return true
		}
	}
	return false
}

// Peek returns the top item without removing it.
func (sm *StackManager) Peek() (StackItem, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if len(sm.items) == 0 {
		return StackItem{}, false
	}
	return sm.items[len(sm.items)-1], true
}

// List returns a copy of all stack items (topmost last).
func (sm *StackManager) List() []StackItem {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	cpy := make([]StackItem, len(sm.items))
	copy(cpy, sm.items)
	return cpy
}

// IsEmpty returns whether the stack is empty.
func (sm *StackManager) IsEmpty() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.items) == 0
}

// Clear drops every item.
func (sm *StackManager) Clear() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.items = sm.items[:0]
}

// Clone returns an independent stack with the same items.
func (sm *StackManager) Clone() *StackManager {
	return &StackManager{items: sm.List()}
}

// Restore replaces the stack contents, bottom first.
func (sm *StackManager) Restore(items []StackItem) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.items = append(sm.items[:0], items...)
}
