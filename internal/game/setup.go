package game

import (
	"errors"
	"fmt"
	"slices"

	"github.com/berserkgame/berserk-server-go/internal/game/board"
	"github.com/berserkgame/berserk-server-go/internal/game/cards"
	"github.com/berserkgame/berserk-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// ErrNotInSetup is returned by setup operations once the game has started.
var ErrNotInSetup = errors.New("game is not in setup")

// Placement puts the named catalog card on a starting position.
type Placement struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// SetupGame deals both decks into the hands, most expensive first, and waits
// for player 1 to place.
func (g *Game) SetupGame(deck1, deck2 []string) error {
	if g.turn.Phase() != rules.PhaseSetup {
		return ErrNotInSetup
	}
	for i, deck := range [][]string{deck1, deck2} {
		player := i + 1
		if err := cards.ValidateDeck(deck); err != nil {
			return fmt.Errorf("player %d deck: %w", player, err)
		}
		hand := make([]*cards.Card, 0, len(deck))
		for _, name := range deck {
			c, err := cards.Create(name, player, g.nextID())
			if err != nil {
				return fmt.Errorf("player %d deck: %w", player, err)
			}
			hand = append(hand, c)
		}
		cards.SortByCost(hand)
		g.hands[i] = hand
	}
	g.turn.SetCurrentPlayer(1)
	return nil
}

// PlaceCardFromHand moves a hand card of the placing player onto pos.
func (g *Game) PlaceCardFromHand(player, cardID, pos int) bool {
	if g.turn.Phase() != rules.PhaseSetup || player != g.turn.CurrentPlayer() {
		return false
	}
	hand := g.hands[player-1]
	idx := slices.IndexFunc(hand, func(c *cards.Card) bool { return c.ID == cardID })
	if idx < 0 {
		return false
	}
	card := hand[idx]
	zone := g.board.PlacementZone(player)
	if card.Stats.IsFlying {
		zone = append(zone, g.board.FlyingPlacementZone(player)...)
	}
	if !slices.Contains(zone, pos) || !g.board.PlaceCard(card, pos) {
		return false
	}
	card.FaceDown = true
	g.hands[player-1] = slices.Delete(hand, idx, idx+1)
	return true
}

// FinishPlacement ends the placing player's setup; once player 2 is done the
// game starts.
func (g *Game) FinishPlacement(player int) bool {
	if g.turn.Phase() != rules.PhaseSetup || player != g.turn.CurrentPlayer() {
		return false
	}
	if len(g.board.GetAllCards(player, true)) == 0 {
		return false
	}
	if player == 1 {
		g.turn.SetCurrentPlayer(2)
		return true
	}
	g.hands = [2][]*cards.Card{}
	g.begin()
	return true
}

// SetupWithPlacement builds both armies from explicit placements and starts
// the game. Card ids are assigned in placement order, player 1 first.
func (g *Game) SetupWithPlacement(p1, p2 []Placement) error {
	if g.turn.Phase() != rules.PhaseSetup {
		return ErrNotInSetup
	}
	b := board.New()
	next := 1
	for i, placements := range [][]Placement{p1, p2} {
		player := i + 1
		if len(placements) == 0 {
			return fmt.Errorf("player %d placed no cards", player)
		}
		names := make([]string, len(placements))
		for j, p := range placements {
			names[j] = p.Name
		}
		if err := cards.ValidateDeck(names); err != nil {
			return fmt.Errorf("player %d placement: %w", player, err)
		}
		for _, p := range placements {
			if !board.InPlacementZone(player, p.Position) {
				return fmt.Errorf("player %d: position %d outside placement zone", player, p.Position)
			}
			c, err := cards.Create(p.Name, player, next)
			if err != nil {
				return fmt.Errorf("player %d placement: %w", player, err)
			}
			if board.IsFlyingPos(p.Position) && !c.Stats.IsFlying {
				return fmt.Errorf("player %d: %s cannot start in the flying zone", player, p.Name)
			}
			if !b.PlaceCard(c, p.Position) {
				return fmt.Errorf("player %d: position %d already taken", player, p.Position)
			}
			c.FaceDown = true
			next++
		}
	}

	g.board = b
	g.nextCardID = next
	g.hands = [2][]*cards.Card{}
	g.begin()
	return nil
}

// AutoPlacement lays a deck out the quick-start way: ground cards by cost
// from the player's home edge, flyers into the flying zone (player 2 hides
// them in free back-row cells first). Cards that do not fit are left out.
func AutoPlacement(deck []string, player int) ([]Placement, error) {
	hand := make([]*cards.Card, 0, len(deck))
	for i, name := range deck {
		c, err := cards.Create(name, player, i+1)
		if err != nil {
			return nil, err
		}
		hand = append(hand, c)
	}
	cards.SortByCost(hand)

	var ground []int
	if player == 1 {
		for pos := 0; pos < 15; pos++ {
			ground = append(ground, pos)
		}
	} else {
		for pos := board.Cells - 1; pos >= 15; pos-- {
			ground = append(ground, pos)
		}
	}

	taken := make(map[int]bool)
	var out []Placement
	flyers := 0
	for _, c := range hand {
		if c.Stats.IsFlying {
			continue
		}
		if len(out) == len(ground) {
			break
		}
		pos := ground[len(out)]
		taken[pos] = true
		out = append(out, Placement{Name: c.Stats.Name, Position: pos})
	}
	for _, c := range hand {
		if !c.Stats.IsFlying || flyers == board.FlyingSlots {
			continue
		}
		pos := board.FlyingStart(player) + flyers
		if player == 2 {
			for back := 25; back < board.Cells; back++ {
				if !taken[back] {
					pos = back
					break
				}
			}
		}
		taken[pos] = true
		flyers++
		out = append(out, Placement{Name: c.Stats.Name, Position: pos})
	}
	return out, nil
}

// AutoPlace places both hands automatically and starts the game.
func (g *Game) AutoPlace() error {
	if g.turn.Phase() != rules.PhaseSetup {
		return ErrNotInSetup
	}
	var placements [2][]Placement
	for i, hand := range g.hands {
		names := make([]string, len(hand))
		for j, c := range hand {
			names[j] = c.Stats.Name
		}
		p, err := AutoPlacement(names, i+1)
		if err != nil {
			return err
		}
		placements[i] = p
	}
	return g.SetupWithPlacement(placements[0], placements[1])
}

// Placements reports where every living card of player stands.
func (g *Game) Placements(player int) []Placement {
	var out []Placement
	for _, c := range g.board.GetAllCards(player, true) {
		out = append(out, Placement{Name: c.Stats.Name, Position: c.Position})
	}
	return out
}

func (g *Game) begin() {
	g.revealAtStart()
	g.turn.Begin()
	g.emit(rules.NewEvent(rules.EventGameStarted, 0, 1))
	g.log("Игра началась")
	g.logger.Info("game started",
		zap.Int("cards_p1", len(g.board.GetAllCards(1, true))),
		zap.Int("cards_p2", len(g.board.GetAllCards(2, true))),
	)
	g.recalculateFormations()
	g.startTurn()
}

// revealAtStart opens player 1's army and everything of player 2 except the
// back row.
func (g *Game) revealAtStart() {
	for _, c := range g.board.GetAllCards(0, true) {
		if !c.FaceDown {
			continue
		}
		if c.Player == 2 && c.Position >= 25 && c.Position < board.Cells {
			continue
		}
		g.revealCard(c)
	}
}

// revealCard turns a card face up; a flyer still on the grid moves to a free
// flying slot.
func (g *Game) revealCard(c *cards.Card) {
	c.FaceDown = false
	if c.Stats.IsFlying && board.IsValidPos(c.Position) {
		if free := g.board.FlyingPlacementZone(c.Player); len(free) > 0 {
			g.board.RemoveCard(c.Position)
			g.board.PlaceCard(c, free[0])
		}
	}
	evt := rules.NewEvent(rules.EventCardRevealed, c.ID, c.Player)
	evt.Position = c.Position
	st := c.ToState()
	evt.Card = &st
	g.emit(evt)
}
