package qtable

import (
	"strings"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
)

// StateKey is the canonical encoding of a board plus the side to move.
type StateKey string

// ActionKey is a move's source cell followed by its destination cell.
type ActionKey string

// EncodeState produces "<side>|<cell>:<side>,..." with cells in sorted order, so two
// boards with the same occupancy always encode the same way regardless of how they were
// built.
func EncodeState(board *core.Board, side core.Side) StateKey {
	placements := board.Placements()

	var sb strings.Builder
	sb.Grow(2 + len(placements)*5)
	sb.WriteString(side.String())
	sb.WriteByte('|')
	for i, p := range placements {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(p.Cell.String())
		sb.WriteByte(':')
		sb.WriteString(p.Side.String())
	}
	return StateKey(sb.String())
}

// ActionKeyOf returns the key for a move
func ActionKeyOf(m core.Move) ActionKey {
	return ActionKey(m.String())
}

// ActionKeysOf maps moves to keys, preserving order
func ActionKeysOf(moves []core.Move) []ActionKey {
	keys := make([]ActionKey, len(moves))
	for i, m := range moves {
		keys[i] = ActionKeyOf(m)
	}
	return keys
}

// Move parses the key back into a move
func (a ActionKey) Move() (core.Move, error) {
	return core.ParseMove(string(a))
}

// Side returns the side-to-move prefix of the key
func (k StateKey) Side() core.Side {
	tag, _, found := strings.Cut(string(k), "|")
	if !found {
		return core.NoSide
	}
	side, err := core.ParseSide(tag)
	if err != nil {
		return core.NoSide
	}
	return side
}
