package core

import (
	"fmt"
	"strconv"
)

const (
	MinFiles = 2
	MaxFiles = 8
	MinRanks = 3
	MaxRanks = 8
)

// Grid is the fixed board shape. Files are lettered from 'a', ranks numbered from 1.
type Grid struct {
	Files int
	Ranks int
}

// NewGrid creates a grid and validates its dimensions
func NewGrid(files, ranks int) (Grid, error) {
	g := Grid{Files: files, Ranks: ranks}
	if err := g.Validate(); err != nil {
		return Grid{}, err
	}
	return g, nil
}

// Validate keeps the grid small enough that the value table stays bounded.
func (g Grid) Validate() error {
	if g.Files < MinFiles || g.Files > MaxFiles {
		return fmt.Errorf("%w: files must be between %d and %d, got %d", ErrInvalidGrid, MinFiles, MaxFiles, g.Files)
	}
	if g.Ranks < MinRanks || g.Ranks > MaxRanks {
		return fmt.Errorf("%w: ranks must be between %d and %d, got %d", ErrInvalidGrid, MinRanks, MaxRanks, g.Ranks)
	}
	return nil
}

// Size returns the number of cells on the grid
func (g Grid) Size() int {
	return g.Files * g.Ranks
}

// Contains checks if the cell is within the grid bounds
func (g Grid) Contains(c Cell) bool {
	return c.File >= 0 && c.File < g.Files && c.Rank >= 1 && c.Rank <= g.Ranks
}

// String returns the grid as "FILESxRANKS"
func (g Grid) String() string {
	return fmt.Sprintf("%dx%d", g.Files, g.Ranks)
}

// Cell is a board square. File 0 is 'a'; Rank is 1-based.
type Cell struct {
	File int
	Rank int
}

// NewCell creates a new cell with the given file index and rank
func NewCell(file, rank int) Cell {
	return Cell{File: file, Rank: rank}
}

// ParseCell parses the "a1" notation
func ParseCell(s string) (Cell, error) {
	if len(s) < 2 {
		return Cell{}, fmt.Errorf("%w: %q", ErrInvalidCell, s)
	}
	f := s[0]
	if f < 'a' || f > 'z' {
		return Cell{}, fmt.Errorf("%w: %q", ErrInvalidCell, s)
	}
	rank, err := strconv.Atoi(s[1:])
	if err != nil || rank < 1 {
		return Cell{}, fmt.Errorf("%w: %q", ErrInvalidCell, s)
	}
	return Cell{File: int(f - 'a'), Rank: rank}, nil
}

// Shift returns the cell offset by the given file and rank deltas
func (c Cell) Shift(df, dr int) Cell {
	return Cell{File: c.File + df, Rank: c.Rank + dr}
}

// Less orders cells by file, then rank.
func (c Cell) Less(other Cell) bool {
	if c.File != other.File {
		return c.File < other.File
	}
	return c.Rank < other.Rank
}

// Compare returns -1, 0 or +1 following the Less ordering
func (c Cell) Compare(other Cell) int {
	switch {
	case c.Less(other):
		return -1
	case other.Less(c):
		return 1
	default:
		return 0
	}
}

// String returns the "a1" notation
func (c Cell) String() string {
	return string(rune('a'+c.File)) + strconv.Itoa(c.Rank)
}
