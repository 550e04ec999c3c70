package rules

import "testing"

func TestEventBusSubscribeTyped(t *testing.T) {
	bus := NewEventBus()

	moved := 0
	damaged := 0

	handle1 := bus.SubscribeTyped(EventCardMoved, func(e Event) {
		moved++
	})
	handle2 := bus.SubscribeTyped(EventCardDamaged, func(e Event) {
		damaged++
	})

	bus.Publish(NewEvent(EventCardMoved, 1, 1))
	if moved != 1 || damaged != 0 {
		t.Fatalf("expected moved=1 damaged=0, got %d/%d", moved, damaged)
	}

	bus.Publish(NewEventWithAmount(EventCardDamaged, 2, 2, 3))
	if moved != 1 || damaged != 1 {
		t.Fatalf("expected moved=1 damaged=1, got %d/%d", moved, damaged)
	}

	bus.UnsubscribeTyped(handle1)
	bus.Publish(NewEvent(EventCardMoved, 1, 1))
	if moved != 1 {
		t.Fatalf("expected moved count still 1 after unsubscribe, got %d", moved)
	}

	bus.Unsubscribe(handle2)
	bus.Publish(NewEventWithAmount(EventCardDamaged, 2, 2, 1))
	if damaged != 1 {
		t.Fatalf("expected damaged count still 1 after unsubscribe, got %d", damaged)
	}
}

func TestEventBusSubscribeAll(t *testing.T) {
	bus := NewEventBus()

	var seen []EventType
	handle := bus.Subscribe(func(e Event) {
		seen = append(seen, e.Type)
	})

	bus.PublishBatch([]Event{
		NewEvent(EventTurnStarted, 0, 1),
		NewEvent(EventCardTapped, 4, 1),
		NewEvent(EventTurnEnded, 0, 1),
	})
	if len(seen) != 3 || seen[1] != EventCardTapped {
		t.Fatalf("expected three events in order, got %v", seen)
	}

	bus.Unsubscribe(handle)
	bus.Publish(NewEvent(EventGameOver, 0, 0))
	if len(seen) != 3 {
		t.Fatalf("expected no delivery after unsubscribe, got %d", len(seen))
	}
}

func TestEventBusRejectsNilListener(t *testing.T) {
	bus := NewEventBus()
	if h := bus.Subscribe(nil); h != -1 {
		t.Fatalf("expected -1 handle for nil listener, got %d", h)
	}
	if h := bus.SubscribeTyped(EventCardDied, nil); h != -1 {
		t.Fatalf("expected -1 handle for nil typed listener, got %d", h)
	}
}

func TestNewEventDefaultsPositions(t *testing.T) {
	evt := NewEventWithAmount(EventCardHealed, 7, 2, 3)
	if evt.Position != NoPosition || evt.FromPosition != NoPosition || evt.ToPosition != NoPosition {
		t.Fatalf("expected unset positions, got %+v", evt)
	}
	if evt.CardID != 7 || evt.Player != 2 || evt.Amount != 3 {
		t.Fatalf("unexpected event fields: %+v", evt)
	}
}
