package rules

import "testing"

func TestStackManagerPushPop(t *testing.T) {
	sm := NewStackManager()

	sm.Push(StackItem{CardID: 1, Player: 1, AbilityID: "luck", Option: "atk_plus1"})
	sm.Push(StackItem{CardID: 2, Player: 2, AbilityID: "luck", Option: "def_reroll"})

	item, err := sm.Pop()
	if err != nil {
		t.Fatalf("unexpected error popping top: %v", err)
	}
	if item.CardID != 2 {
		t.Fatalf("expected LIFO order (card 2), got %d", item.CardID)
	}

	item, err = sm.Pop()
	if err != nil {
		t.Fatalf("unexpected error popping second item: %v", err)
	}
	if item.Option != "atk_plus1" {
		t.Fatalf("expected remaining item to be atk_plus1, got %s", item.Option)
	}

	if !sm.IsEmpty() {
		t.Fatalf("expected stack to be empty")
	}
	if _, err := sm.Pop(); err == nil {
		t.Fatalf("expected error popping empty stack")
	}
}

func TestStackManagerRemoveAndContains(t *testing.T) {
	sm := NewStackManager()

	sm.Push(StackItem{CardID: 1})
	sm.Push(StackItem{CardID: 2})
	sm.Push(StackItem{CardID: 3})

	if !sm.Contains(2) {
		t.Fatalf("expected card 2 on the stack")
	}
	item, ok := sm.Remove(2)
	if !ok || item.CardID != 2 {
		t.Fatalf("expected to remove card 2, got %+v ok=%v", item, ok)
	}
	if sm.Contains(2) {
		t.Fatalf("card 2 should be gone")
	}

	top, _ := sm.Peek()
	if top.CardID != 3 {
		t.Fatalf("expected card 3 to remain on top, got %d", top.CardID)
	}
}

func TestStackManagerCloneIsIndependent(t *testing.T) {
	sm := NewStackManager()
	sm.Push(StackItem{CardID: 1})

	cpy := sm.Clone()
	cpy.Push(StackItem{CardID: 2})
	if len(sm.List()) != 1 {
		t.Fatalf("clone mutated the original stack")
	}

	sm.Restore(cpy.List())
	if len(sm.List()) != 2 {
		t.Fatalf("expected restored stack of 2, got %d", len(sm.List()))
	}
	sm.Clear()
	if !sm.IsEmpty() {
		t.Fatalf("expected empty stack after clear")
	}
}
