package core

import "fmt"

// Side identifies one of the two players. The zero value is NoSide.
type Side int8

const (
	NoSide Side = iota
	White
	Black
)

// Sides lists the playable sides in turn order.
var Sides = [...]Side{White, Black}

// Valid reports whether s is White or Black
func (s Side) Valid() bool {
	return s == White || s == Black
}

// Opponent returns the other side. NoSide has no opponent.
func (s Side) Opponent() Side {
	switch s {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoSide
	}
}

// Forward is the rank delta of a single forward step
func (s Side) Forward() int {
	switch s {
	case White:
		return 1
	case Black:
		return -1
	default:
		return 0
	}
}

// HomeRank is the rank a side's pawns start on
func (s Side) HomeRank(g Grid) int {
	if s == Black {
		return g.Ranks
	}
	return 1
}

// WinningRank is the rank nearest the opponent's start.
func (s Side) WinningRank(g Grid) int {
	return s.Opponent().HomeRank(g)
}

// String returns the single-letter tag used in state keys and on disk
func (s Side) String() string {
	switch s {
	case White:
		return "W"
	case Black:
		return "B"
	default:
		return "-"
	}
}

// Name returns the lower-case display name
func (s Side) Name() string {
	switch s {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

// ParseSide accepts the tag ("W"/"B") or the display name ("white"/"black").
func ParseSide(s string) (Side, error) {
	switch s {
	case "W", "w", "white", "White":
		return White, nil
	case "B", "b", "black", "Black":
		return Black, nil
	default:
		return NoSide, fmt.Errorf("%w: %q", ErrInvalidSide, s)
	}
}
