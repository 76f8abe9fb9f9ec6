package rules

import (
	"slices"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
)

// captureFileOffsets are the two diagonal directions a pawn can take in.
var captureFileOffsets = [...]int{-1, 1}

// LegalMoves returns every legal move for side, sorted by source then destination.
//
// A pawn may slide one rank forward onto an empty cell, or step one rank forward and one
// file sideways onto a cell held by the opponent. Targets off the grid are skipped.
func LegalMoves(board *core.Board, side core.Side) []core.Move {
	if !side.Valid() {
		return nil
	}
	grid := board.Grid()
	opponent := side.Opponent()
	forward := side.Forward()

	var moves []core.Move
	for _, p := range board.Placements() {
		if p.Side != side {
			continue
		}

		ahead := p.Cell.Shift(0, forward)
		if grid.Contains(ahead) && board.IsEmpty(ahead) {
			moves = append(moves, core.NewMove(p.Cell, ahead))
		}

		for _, df := range captureFileOffsets {
			diag := p.Cell.Shift(df, forward)
			if grid.Contains(diag) && board.IsOccupiedBy(diag, opponent) {
				moves = append(moves, core.NewMove(p.Cell, diag))
			}
		}
	}

	slices.SortFunc(moves, core.Move.Compare)
	return moves
}

// HasLegalMove reports whether side can move at all
func HasLegalMove(board *core.Board, side core.Side) bool {
	return len(LegalMoves(board, side)) > 0
}

// IsLegal checks whether m is among side's legal moves
func IsLegal(board *core.Board, side core.Side, m core.Move) bool {
	return slices.Contains(LegalMoves(board, side), m)
}
