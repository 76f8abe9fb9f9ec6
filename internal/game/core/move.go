package core

import "fmt"

// Move is a (source, destination) pair. Whether it is a forward slide or a
// diagonal capture follows from its shape.
type Move struct {
	From Cell
	To   Cell
}

// NewMove creates a move between two cells
func NewMove(from, to Cell) Move {
	return Move{From: from, To: to}
}

// ParseMove parses the concatenated "a1a2" notation
func ParseMove(s string) (Move, error) {
	// The destination starts at the second letter.
	for i := 1; i < len(s); i++ {
		if s[i] >= 'a' && s[i] <= 'z' {
			from, err := ParseCell(s[:i])
			if err != nil {
				return Move{}, err
			}
			to, err := ParseCell(s[i:])
			if err != nil {
				return Move{}, err
			}
			return Move{From: from, To: to}, nil
		}
	}
	return Move{}, fmt.Errorf("%w: %q is not a move", ErrInvalidCell, s)
}

// IsDiagonal is true for the capture shape
func (m Move) IsDiagonal() bool {
	return m.From.File != m.To.File
}

// Less orders moves by source, then destination
func (m Move) Less(other Move) bool {
	if m.From != other.From {
		return m.From.Less(other.From)
	}
	return m.To.Less(other.To)
}

// Compare returns -1, 0 or +1 following the Less ordering
func (m Move) Compare(other Move) int {
	if c := m.From.Compare(other.From); c != 0 {
		return c
	}
	return m.To.Compare(other.To)
}

// String returns the source cell followed by the destination cell
func (m Move) String() string {
	return m.From.String() + m.To.String()
}
