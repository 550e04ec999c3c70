package rules

import (
	"sync"

	"github.com/berserkgame/berserk-server-go/internal/game/cards"
)

// EventType indicates the category of a game event.
type EventType string

const (
	// Game/Turn events
	EventGameStarted EventType = "GAME_STARTED"
	EventTurnStarted EventType = "TURN_STARTED"
	EventTurnEnded   EventType = "TURN_ENDED"
	EventGameOver    EventType = "GAME_OVER"

	// Card events
	EventCardMoved    EventType = "CARD_MOVED"
	EventCardDamaged  EventType = "CARD_DAMAGED"
	EventCardHealed   EventType = "CARD_HEALED"
	EventCardTapped   EventType = "CARD_TAPPED"
	EventCardDied     EventType = "CARD_DIED"
	EventCardRevealed EventType = "CARD_REVEALED"

	// Combat and ability events
	EventDiceRolled         EventType = "DICE_ROLLED"
	EventAbilityActivated   EventType = "ABILITY_ACTIVATED"
	EventInstantUsed        EventType = "INSTANT_USED"
	EventValhallaApplied    EventType = "VALHALLA_APPLIED"
	EventPriorityChanged    EventType = "PRIORITY_CHANGED"
	EventInteractionStarted EventType = "INTERACTION_STARTED"
	EventInteractionEnded   EventType = "INTERACTION_ENDED"

	// Presentation hints
	EventArrowAdded    EventType = "ARROW_ADDED"
	EventArrowsCleared EventType = "ARROWS_CLEARED"
	EventLogMessage    EventType = "LOG_MESSAGE"
)

// NoPosition marks position fields that do not apply to an event.
const NoPosition = -1

// Event is a pure notification produced by an accepted command. It carries
// enough data (card, position, amount) for a client to render it without
// querying the game again.
type Event struct {
	Type   EventType `json:"type"`
	Player int       `json:"player,omitempty"`
	CardID int       `json:"card_id,omitempty"`

	Position     int `json:"position"`
	FromPosition int `json:"from_position"`
	ToPosition   int `json:"to_position"`
	VisualIndex  int `json:"visual_index"`

	Amount   int `json:"amount,omitempty"`
	SourceID int `json:"source_id,omitempty"`
	TargetID int `json:"target_id,omitempty"`

	AttackerID    int `json:"attacker_id,omitempty"`
	DefenderID    int `json:"defender_id,omitempty"`
	AttackerRoll  int `json:"attacker_roll,omitempty"`
	DefenderRoll  int `json:"defender_roll,omitempty"`
	AttackerBonus int `json:"attacker_bonus,omitempty"`
	DefenderBonus int `json:"defender_bonus,omitempty"`

	AbilityID string `json:"ability_id,omitempty"`
	Option    string `json:"option,omitempty"`

	Winner     int `json:"winner"`
	TurnNumber int `json:"turn_number,omitempty"`

	InteractionKind string `json:"interaction_kind,omitempty"`
	ValidPositions  []int  `json:"valid_positions,omitempty"`
	ValidCardIDs    []int  `json:"valid_card_ids,omitempty"`

	ArrowType string       `json:"arrow_type,omitempty"`
	Message   string       `json:"message,omitempty"`
	Card      *cards.State `json:"card,omitempty"`
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

// EventBus provides a synchronous publish/subscribe implementation with type filtering.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	bus.removeTyped(handle)
}

// UnsubscribeTyped removes a typed listener by handle.
func (bus *EventBus) UnsubscribeTyped(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.removeTyped(handle)
}

func (bus *EventBus) removeTyped(handle int) {
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to all registered listeners synchronously.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, listener := range bus.listeners {
		listener(event)
	}
	for _, listener := range bus.typedListeners[event.Type] {
		listener.Callback(event)
	}
}

// PublishBatch publishes the events of one command in order.
func (bus *EventBus) PublishBatch(events []Event) {
	for _, event := range events {
		bus.Publish(event)
	}
}

// NewEvent creates an event about cardID controlled by player.
func NewEvent(eventType EventType, cardID, player int) Event {
	return Event{
		Type:         eventType,
		CardID:       cardID,
		Player:       player,
		Position:     NoPosition,
		FromPosition: NoPosition,
		ToPosition:   NoPosition,
		VisualIndex:  NoPosition,
	}
}

// NewEventWithAmount creates an event carrying a numeric amount.
func NewEventWithAmount(eventType EventType, cardID, player, amount int) Event {
	evt := NewEvent(eventType, cardID, player)
	evt.Amount = amount
	return evt
}
