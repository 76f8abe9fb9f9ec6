package rules

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
)

// WinConditionChecker handles game over detection and winner determination
type WinConditionChecker struct {
	logger zerolog.Logger
}

// NewWinConditionChecker creates a new win condition checker
func NewWinConditionChecker(logger zerolog.Logger) *WinConditionChecker {
	return &WinConditionChecker{
		logger: logger.With().Str("component", "WinConditionChecker").Logger(),
	}
}

// CheckTerminal evaluates the board from the perspective of next, the side about to move.
// Returns (isOver, winner).
//
// A pawn on its winning rank wins outright. If both sides have one there, the side that
// just moved wins. Otherwise a side with no legal move loses.
func (wc *WinConditionChecker) CheckTerminal(board *core.Board, next core.Side) (bool, core.Side) {
	mover := next.Opponent()
	grid := board.Grid()

	var moverArrived, nextArrived bool
	for _, p := range board.Placements() {
		if p.Cell.Rank != p.Side.WinningRank(grid) {
			continue
		}
		switch p.Side {
		case mover:
			moverArrived = true
		case next:
			nextArrived = true
		}
	}

	switch {
	case moverArrived:
		if nextArrived {
			wc.logger.Warn().
				Str("mover", mover.Name()).
				Msg("Both sides on their winning rank, mover takes the tie")
		}
		wc.logger.Debug().Str("winner", mover.Name()).Msg("Pawn reached winning rank")
		return true, mover
	case nextArrived:
		wc.logger.Debug().Str("winner", next.Name()).Msg("Pawn reached winning rank")
		return true, next
	}

	if !HasLegalMove(board, next) {
		wc.logger.Debug().
			Str("stalled", next.Name()).
			Str("winner", mover.Name()).
			Msg("Side to move has no legal move")
		return true, mover
	}

	return false, core.NoSide
}
