package core

import (
	"fmt"
	"slices"
)

// Placement is one occupied cell
type Placement struct {
	Cell Cell
	Side Side
}

// Board maps cells to occupants. An absent cell is empty.
// Boards are treated as values: Apply returns a new board and never mutates the receiver.
type Board struct {
	grid  Grid
	cells map[Cell]Side
}

// NewBoard creates an empty board on the given grid
func NewBoard(g Grid) *Board {
	return &Board{grid: g, cells: make(map[Cell]Side, g.Size())}
}

// NewStartingBoard fills White's home rank and Black's home rank.
func NewStartingBoard(g Grid) *Board {
	b := NewBoard(g)
	for _, side := range Sides {
		rank := side.HomeRank(g)
		for f := 0; f < g.Files; f++ {
			b.cells[NewCell(f, rank)] = side
		}
	}
	return b
}

// NewBoardFromPlacements builds a board for setups and tests.
func NewBoardFromPlacements(g Grid, placements ...Placement) (*Board, error) {
	b := NewBoard(g)
	for _, p := range placements {
		if !g.Contains(p.Cell) {
			return nil, fmt.Errorf("%w: %s outside %s", ErrInvalidCell, p.Cell, g)
		}
		if !p.Side.Valid() {
			return nil, fmt.Errorf("%w: at %s", ErrInvalidSide, p.Cell)
		}
		if _, taken := b.cells[p.Cell]; taken {
			return nil, fmt.Errorf("%w: %s placed twice", ErrInvalidCell, p.Cell)
		}
		b.cells[p.Cell] = p.Side
	}
	return b, nil
}

func (b *Board) Grid() Grid { return b.grid }

// At returns the occupant of a cell, if any
func (b *Board) At(c Cell) (Side, bool) {
	s, ok := b.cells[c]
	return s, ok
}

func (b *Board) IsEmpty(c Cell) bool {
	_, ok := b.cells[c]
	return !ok
}

func (b *Board) IsOccupiedBy(c Cell, side Side) bool {
	s, ok := b.cells[c]
	return ok && s == side
}

// Count returns the total number of occupants
func (b *Board) Count() int { return len(b.cells) }

// CountSide returns the number of occupants belonging to side
func (b *Board) CountSide(side Side) int {
	n := 0
	for _, s := range b.cells {
		if s == side {
			n++
		}
	}
	return n
}

// Placements returns every occupant sorted by cell
func (b *Board) Placements() []Placement {
	out := make([]Placement, 0, len(b.cells))
	for c, s := range b.cells {
		out = append(out, Placement{Cell: c, Side: s})
	}
	slices.SortFunc(out, func(x, y Placement) int { return x.Cell.Compare(y.Cell) })
	return out
}

// Apply moves side's pawn from m.From to m.To, removing whatever stood on m.To.
// Legality is the caller's concern. The receiver is left untouched.
func (b *Board) Apply(m Move, side Side) *Board {
	next := b.Clone()
	delete(next.cells, m.To)
	delete(next.cells, m.From)
	next.cells[m.To] = side
	return next
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	cells := make(map[Cell]Side, len(b.cells))
	for c, s := range b.cells {
		cells[c] = s
	}
	return &Board{grid: b.grid, cells: cells}
}

// Equal reports whether both boards have the same grid and occupancy
func (b *Board) Equal(other *Board) bool {
	if b.grid != other.grid || len(b.cells) != len(other.cells) {
		return false
	}
	for c, s := range b.cells {
		if o, ok := other.cells[c]; !ok || o != s {
			return false
		}
	}
	return true
}
