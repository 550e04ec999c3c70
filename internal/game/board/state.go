package board

import (
	"fmt"

	"github.com/berserkgame/berserk-server-go/internal/game/cards"
)

// State is the plain nested form of a board: one entry per slot, nil for empty.
type State struct {
	Cells       []*cards.State `json:"cells"`
	FlyingP1    []*cards.State `json:"flying_p1"`
	FlyingP2    []*cards.State `json:"flying_p2"`
	GraveyardP1 []cards.State  `json:"graveyard_p1"`
	GraveyardP2 []cards.State  `json:"graveyard_p2"`
}

// Redactor decides how a positioned card appears in a snapshot; returning
// nil keeps the full state.
type Redactor func(c *cards.Card) *cards.State

// ToDict captures the full board.
func (b *Board) ToDict() State {
	return b.ToDictFor(nil)
}

// ToDictFor captures the board, letting redact replace individual card states.
func (b *Board) ToDictFor(redact Redactor) State {
	encode := func(c *cards.Card) *cards.State {
		if c == nil {
			return nil
		}
		if redact != nil {
			if s := redact(c); s != nil {
				return s
			}
		}
		s := c.ToState()
		return &s
	}
	st := State{
		Cells:       make([]*cards.State, Cells),
		FlyingP1:    make([]*cards.State, FlyingSlots),
		FlyingP2:    make([]*cards.State, FlyingSlots),
		GraveyardP1: make([]cards.State, 0, len(b.graveyardP1)),
		GraveyardP2: make([]cards.State, 0, len(b.graveyardP2)),
	}
	for i, c := range b.cells {
		st.Cells[i] = encode(c)
	}
	for i := 0; i < FlyingSlots; i++ {
		st.FlyingP1[i] = encode(b.flyingP1[i])
		st.FlyingP2[i] = encode(b.flyingP2[i])
	}
	for _, c := range b.graveyardP1 {
		st.GraveyardP1 = append(st.GraveyardP1, c.ToState())
	}
	for _, c := range b.graveyardP2 {
		st.GraveyardP2 = append(st.GraveyardP2, c.ToState())
	}
	return st
}

// FromDict rebuilds a board from its plain form.
func FromDict(st State) (*Board, error) {
	b := New()
	if len(st.Cells) > Cells {
		return nil, fmt.Errorf("board has %d cells, want at most %d", len(st.Cells), Cells)
	}
	place := func(s *cards.State, pos int) error {
		if s == nil {
			return nil
		}
		c, err := cards.FromState(*s)
		if err != nil {
			return fmt.Errorf("slot %d: %w", pos, err)
		}
		if !b.PlaceCard(c, pos) {
			return fmt.Errorf("slot %d: cannot place card %d", pos, c.ID)
		}
		return nil
	}
	for i, s := range st.Cells {
		if err := place(s, i); err != nil {
			return nil, err
		}
	}
	for i := 0; i < FlyingSlots; i++ {
		if i < len(st.FlyingP1) {
			if err := place(st.FlyingP1[i], FlyingP1Start+i); err != nil {
				return nil, err
			}
		}
		if i < len(st.FlyingP2) {
			if err := place(st.FlyingP2[i], FlyingP2Start+i); err != nil {
				return nil, err
			}
		}
	}
	for _, s := range st.GraveyardP1 {
		c, err := cards.FromState(s)
		if err != nil {
			return nil, fmt.Errorf("graveyard p1: %w", err)
		}
		c.Position = NoPosition
		b.graveyardP1 = append(b.graveyardP1, c)
	}
	for _, s := range st.GraveyardP2 {
		c, err := cards.FromState(s)
		if err != nil {
			return nil, fmt.Errorf("graveyard p2: %w", err)
		}
		c.Position = NoPosition
		b.graveyardP2 = append(b.graveyardP2, c)
	}
	return b, nil
}

// Clone deep-copies the board and every card on it.
func (b *Board) Clone() *Board {
	cpy := New()
	for i, c := range b.cells {
		if c != nil {
			cpy.cells[i] = c.Clone()
		}
	}
	for i := 0; i < FlyingSlots; i++ {
		if c := b.flyingP1[i]; c != nil {
			cpy.flyingP1[i] = c.Clone()
		}
		if c := b.flyingP2[i]; c != nil {
			cpy.flyingP2[i] = c.Clone()
		}
	}
	for _, c := range b.graveyardP1 {
		cpy.graveyardP1 = append(cpy.graveyardP1, c.Clone())
	}
	for _, c := range b.graveyardP2 {
		cpy.graveyardP2 = append(cpy.graveyardP2, c.Clone())
	}
	return cpy
}
