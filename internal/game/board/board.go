package board

import (
	"fmt"

	"github.com/berserkgame/berserk-server-go/internal/game/cards"
)

// Board geometry. Position = row*Cols + col for the main grid; the flying
// zones follow at 30..32 (player 1) and 33..35 (player 2).
const (
	Cols          = 5
	Rows          = 6
	Cells         = Cols * Rows
	FlyingSlots   = 3
	FlyingP1Start = 30
	FlyingP2Start = FlyingP1Start + FlyingSlots
	PositionCount = FlyingP2Start + FlyingSlots
	NoPosition    = cards.NoPosition
)

// Board holds every card on the grid, in the flying zones and in the graveyards.
type Board struct {
	cells       [Cells]*cards.Card
	flyingP1    [FlyingSlots]*cards.Card
	flyingP2    [FlyingSlots]*cards.Card
	graveyardP1 []*cards.Card
	graveyardP2 []*cards.Card
}

// New returns an empty board.
func New() *Board {
	return &Board{}
}

// Coords converts a main-grid position into (col, row).
func Coords(pos int) (col, row int) {
	return pos % Cols, pos / Cols
}

// Pos converts (col, row) into a main-grid position.
func Pos(col, row int) int {
	return row*Cols + col
}

// IsValidPos reports whether pos lies on the main grid.
func IsValidPos(pos int) bool {
	return pos >= 0 && pos < Cells
}

// IsFlyingPos reports whether pos lies in either flying zone.
func IsFlyingPos(pos int) bool {
	return pos >= FlyingP1Start && pos < PositionCount
}

// FlyingStart returns the first flying slot of player.
func FlyingStart(player int) int {
	if player == 1 {
		return FlyingP1Start
	}
	return FlyingP2Start
}

// Manhattan is the orthogonal distance between two grid positions.
func Manhattan(a, b int) int {
	ac, ar := Coords(a)
	bc, br := Coords(b)
	return abs(ac-bc) + abs(ar-br)
}

// Chebyshev is the king-move distance between two grid positions.
func Chebyshev(a, b int) int {
	ac, ar := Coords(a)
	bc, br := Coords(b)
	return max(abs(ac-bc), abs(ar-br))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (b *Board) flyingSlot(pos int) **cards.Card {
	switch {
	case pos >= FlyingP1Start && pos < FlyingP2Start:
		return &b.flyingP1[pos-FlyingP1Start]
	case pos >= FlyingP2Start && pos < PositionCount:
		return &b.flyingP2[pos-FlyingP2Start]
	}
	return nil
}

func (b *Board) slot(pos int) **cards.Card {
	if IsValidPos(pos) {
		return &b.cells[pos]
	}
	return b.flyingSlot(pos)
}

// GetCard returns the card at pos on the grid or in a flying zone.
func (b *Board) GetCard(pos int) *cards.Card {
	s := b.slot(pos)
	if s == nil {
		return nil
	}
	return *s
}

// GetCardByID finds a positioned card by ID.
func (b *Board) GetCardByID(id int) *cards.Card {
	for _, c := range b.GetAllCards(0, true) {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// FindCard looks a card up on the board and, failing that, in the graveyards.
func (b *Board) FindCard(id int) *cards.Card {
	if c := b.GetCardByID(id); c != nil {
		return c
	}
	for _, c := range b.graveyardP1 {
		if c.ID == id {
			return c
		}
	}
	for _, c := range b.graveyardP2 {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// PlaceCard puts card on an empty slot and records its position.
func (b *Board) PlaceCard(card *cards.Card, pos int) bool {
	s := b.slot(pos)
	if s == nil || *s != nil {
		return false
	}
	*s = card
	card.Position = pos
	return true
}

// RemoveCard takes the card off pos and clears its position.
func (b *Board) RemoveCard(pos int) *cards.Card {
	s := b.slot(pos)
	if s == nil || *s == nil {
		return nil
	}
	card := *s
	*s = nil
	card.Position = NoPosition
	return card
}

// MoveCard moves a card between two main-grid cells.
func (b *Board) MoveCard(from, to int) bool {
	if !IsValidPos(from) || !IsValidPos(to) {
		return false
	}
	if b.cells[from] == nil || b.cells[to] != nil {
		return false
	}
	card := b.cells[from]
	b.cells[from] = nil
	b.cells[to] = card
	card.Position = to
	return true
}

// GetAdjacentCells lists the orthogonal (and optionally diagonal) neighbours of pos.
func (b *Board) GetAdjacentCells(pos int, diagonals bool) []int {
	if !IsValidPos(pos) {
		return nil
	}
	col, row := Coords(pos)
	dirs := [][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	if diagonals {
		dirs = append(dirs, [2]int{1, 1}, [2]int{1, -1}, [2]int{-1, 1}, [2]int{-1, -1})
	}
	out := make([]int, 0, len(dirs))
	for _, d := range dirs {
		nc, nr := col+d[0], row+d[1]
		if nc >= 0 && nc < Cols && nr >= 0 && nr < Rows {
			out = append(out, Pos(nc, nr))
		}
	}
	return out
}

// GetValidMoves lists the empty cells card may move to.
func (b *Board) GetValidMoves(card *cards.Card) []int {
	if !IsValidPos(card.Position) || card.Tapped || card.Webbed || card.CurrMove <= 0 {
		return nil
	}
	var out []int
	if card.HasAbility("jump") {
		for pos := 0; pos < Cells; pos++ {
			if b.cells[pos] != nil {
				continue
			}
			if d := Manhattan(card.Position, pos); d > 0 && d <= card.CurrMove {
				out = append(out, pos)
			}
		}
		return out
	}
	for _, adj := range b.GetAdjacentCells(card.Position, false) {
		if b.cells[adj] == nil {
			out = append(out, adj)
		}
	}
	return out
}

// GetAttackTargets lists the positions card may attack, optionally including allies.
func (b *Board) GetAttackTargets(card *cards.Card, includeAllies bool) []int {
	if !card.OnBoard() || card.Tapped {
		return nil
	}
	if IsFlyingPos(card.Position) {
		return b.flyingAttackTargets(card, includeAllies)
	}
	if card.HasAbility("restricted_strike") {
		return b.restrictedStrikeTargets(card)
	}
	var out []int
	for _, adj := range b.GetAdjacentCells(card.Position, true) {
		target := b.cells[adj]
		if target == nil || !target.IsAlive() || target == card {
			continue
		}
		if target.Player != card.Player || includeAllies {
			out = append(out, adj)
		}
	}
	return out
}

func (b *Board) restrictedStrikeTargets(card *cards.Card) []int {
	col, row := Coords(card.Position)
	front := row + 1
	if card.Player == 2 {
		front = row - 1
	}
	if front < 0 || front >= Rows {
		return nil
	}
	pos := Pos(col, front)
	if target := b.cells[pos]; target != nil && target.IsAlive() && target.Player != card.Player {
		return []int{pos}
	}
	return nil
}

func (b *Board) flyingAttackTargets(card *cards.Card, includeAllies bool) []int {
	enemy := Opponent(card.Player)

	var taunts []int
	for pos, target := range b.cells {
		if target != nil && target.IsAlive() && target.Player == enemy && target.HasAbility("flyer_taunt") {
			taunts = append(taunts, pos)
		}
	}
	if len(taunts) > 0 {
		return taunts
	}

	var out []int
	consider := func(pos int, target *cards.Card) {
		if target == nil || !target.IsAlive() || target == card {
			return
		}
		if target.Player != card.Player || includeAllies {
			out = append(out, pos)
		}
	}
	for pos, target := range b.cells {
		consider(pos, target)
	}
	for i, target := range b.flyingP1 {
		consider(FlyingP1Start+i, target)
	}
	for i, target := range b.flyingP2 {
		consider(FlyingP2Start+i, target)
	}
	return out
}

// GetValidDefenders lists the target's allies that may intercept an attack on it.
func (b *Board) GetValidDefenders(attacker, target *cards.Card) []*cards.Card {
	if !attacker.OnBoard() || !target.OnBoard() {
		return nil
	}
	ready := func(c *cards.Card) bool {
		return c != nil && c != target && c.Player == target.Player && c.IsAlive() && !c.Webbed && !c.Tapped
	}

	var out []*cards.Card
	if IsFlyingPos(target.Position) || IsFlyingPos(attacker.Position) {
		for _, c := range b.GetFlyingCards(target.Player) {
			if ready(c) {
				out = append(out, c)
			}
		}
		if IsFlyingPos(target.Position) {
			return out
		}
		for _, pos := range b.GetAdjacentCells(target.Position, true) {
			if c := b.cells[pos]; ready(c) {
				out = append(out, c)
			}
		}
		return out
	}

	near := make(map[int]bool, 8)
	for _, pos := range b.GetAdjacentCells(attacker.Position, true) {
		near[pos] = true
	}
	for _, pos := range b.GetAdjacentCells(target.Position, true) {
		if !near[pos] {
			continue
		}
		if c := b.cells[pos]; ready(c) {
			out = append(out, c)
		}
	}
	return out
}

// GetAllCards returns positioned cards, filtered by player when player is 1 or 2.
func (b *Board) GetAllCards(player int, includeFlying bool) []*cards.Card {
	var out []*cards.Card
	keep := func(c *cards.Card) {
		if c != nil && (player == 0 || c.Player == player) {
			out = append(out, c)
		}
	}
	for _, c := range b.cells {
		keep(c)
	}
	if includeFlying {
		for _, c := range b.flyingP1 {
			keep(c)
		}
		for _, c := range b.flyingP2 {
			keep(c)
		}
	}
	return out
}

// GetFlyingCards returns the cards in the flying zones, filtered by player when non-zero.
func (b *Board) GetFlyingCards(player int) []*cards.Card {
	var out []*cards.Card
	for _, zone := range [][FlyingSlots]*cards.Card{b.flyingP1, b.flyingP2} {
		for _, c := range zone {
			if c != nil && (player == 0 || c.Player == player) {
				out = append(out, c)
			}
		}
	}
	return out
}

// FlyingVisualIndex counts the occupied slots before pos in its zone.
func (b *Board) FlyingVisualIndex(pos int) int {
	if !IsFlyingPos(pos) {
		return -1
	}
	start := FlyingP1Start
	if pos >= FlyingP2Start {
		start = FlyingP2Start
	}
	idx := 0
	for p := start; p < pos; p++ {
		if b.GetCard(p) != nil {
			idx++
		}
	}
	return idx
}

// SendToGraveyard removes card from the board and appends it to its owner's graveyard.
func (b *Board) SendToGraveyard(card *cards.Card) {
	if card.OnBoard() {
		if s := b.slot(card.Position); s != nil && *s == card {
			*s = nil
		}
		card.Position = NoPosition
	}
	if card.Player == 1 {
		b.graveyardP1 = append(b.graveyardP1, card)
	} else {
		b.graveyardP2 = append(b.graveyardP2, card)
	}
}

// Graveyard returns player's graveyard in death order.
func (b *Board) Graveyard(player int) []*cards.Card {
	if player == 1 {
		return b.graveyardP1
	}
	return b.graveyardP2
}

// PlacementZone lists the empty starting cells of player.
func (b *Board) PlacementZone(player int) []int {
	lo, hi := 0, 15
	if player == 2 {
		lo, hi = 15, Cells
	}
	var out []int
	for pos := lo; pos < hi; pos++ {
		if b.cells[pos] == nil {
			out = append(out, pos)
		}
	}
	return out
}

// FlyingPlacementZone lists player's empty flying slots.
func (b *Board) FlyingPlacementZone(player int) []int {
	start := FlyingStart(player)
	var out []int
	for i := 0; i < FlyingSlots; i++ {
		if b.GetCard(start+i) == nil {
			out = append(out, start+i)
		}
	}
	return out
}

// InPlacementZone reports whether pos belongs to player's starting area.
func InPlacementZone(player, pos int) bool {
	if player == 1 {
		return pos >= 0 && pos < 15 || pos >= FlyingP1Start && pos < FlyingP2Start
	}
	return pos >= 15 && pos < Cells || pos >= FlyingP2Start && pos < PositionCount
}

// CheckWinner returns 1 or 2 for a winner, 0 for a draw and -1 while both sides live.
func (b *Board) CheckWinner() int {
	alive := func(player int) bool {
		for _, c := range b.GetAllCards(player, true) {
			if c.IsAlive() {
				return true
			}
		}
		return false
	}
	p1, p2 := alive(1), alive(2)
	switch {
	case !p1 && !p2:
		return 0
	case !p1:
		return 2
	case !p2:
		return 1
	}
	return -1
}

// Opponent returns the other player.
func Opponent(player int) int {
	if player == 1 {
		return 2
	}
	return 1
}

func (b *Board) String() string {
	return fmt.Sprintf("Board(%d cards, graveyards %d/%d)",
		len(b.GetAllCards(0, true)), len(b.graveyardP1), len(b.graveyardP2))
}
