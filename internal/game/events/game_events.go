package events

import (
	"time"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
)

// Event type constants
const (
	TypeGameStarted     = "game.started"
	TypeGameEnded       = "game.ended"
	TypeMoveExecuted    = "move.executed"
	TypeMoveRejected    = "move.rejected"
	TypeTableSettled    = "table.settled"
	TypeStateTransition = "state.transition"
)

// End reasons carried by GameEndedEvent
const (
	ReasonWinningRank = "winning_rank"
	ReasonNoMoves     = "no_moves"
	ReasonMoveLimit   = "move_limit"
)

// GameStartedEvent is published when a new game begins
type GameStartedEvent struct {
	BaseEvent
	Files  int
	Ranks  int
	ToMove core.Side
}

// NewGameStartedEvent creates a new GameStartedEvent
func NewGameStartedEvent(gameID string, grid core.Grid, toMove core.Side) *GameStartedEvent {
	return &GameStartedEvent{
		BaseEvent: newBase(TypeGameStarted, gameID),
		Files:     grid.Files,
		Ranks:     grid.Ranks,
		ToMove:    toMove,
	}
}

// MoveExecutedEvent is published after a move has been applied to the board
type MoveExecutedEvent struct {
	BaseEvent
	Side     core.Side
	Move     core.Move
	Capture  bool
	HalfMove int
	Human    bool
}

// NewMoveExecutedEvent creates a new MoveExecutedEvent
func NewMoveExecutedEvent(gameID string, side core.Side, m core.Move, capture bool, halfMove int, human bool) *MoveExecutedEvent {
	return &MoveExecutedEvent{
		BaseEvent: newBase(TypeMoveExecuted, gameID),
		Side:      side,
		Move:      m,
		Capture:   capture,
		HalfMove:  halfMove,
		Human:     human,
	}
}

// MoveRejectedEvent is published when a submitted move is refused
type MoveRejectedEvent struct {
	BaseEvent
	Side   core.Side
	Move   core.Move
	Reason string
}

// NewMoveRejectedEvent creates a new MoveRejectedEvent
func NewMoveRejectedEvent(gameID string, side core.Side, m core.Move, reason string) *MoveRejectedEvent {
	return &MoveRejectedEvent{
		BaseEvent: newBase(TypeMoveRejected, gameID),
		Side:      side,
		Move:      m,
		Reason:    reason,
	}
}

// GameEndedEvent is published when a game ends. Winner is NoSide for a draw.
type GameEndedEvent struct {
	BaseEvent
	Winner    core.Side
	HalfMoves int
	Duration  time.Duration
	Reason    string
}

// NewGameEndedEvent creates a new GameEndedEvent
func NewGameEndedEvent(gameID string, winner core.Side, halfMoves int, duration time.Duration, reason string) *GameEndedEvent {
	return &GameEndedEvent{
		BaseEvent: newBase(TypeGameEnded, gameID),
		Winner:    winner,
		HalfMoves: halfMoves,
		Duration:  duration,
		Reason:    reason,
	}
}

// TableSettledEvent is published once a finished game's outcome has been applied
type TableSettledEvent struct {
	BaseEvent
	Winner    core.Side
	Applied   int
	Skipped   int
	Persisted bool
	Err       error
}

// NewTableSettledEvent creates a new TableSettledEvent
func NewTableSettledEvent(gameID string, winner core.Side, applied, skipped int, persisted bool, err error) *TableSettledEvent {
	return &TableSettledEvent{
		BaseEvent: newBase(TypeTableSettled, gameID),
		Winner:    winner,
		Applied:   applied,
		Skipped:   skipped,
		Persisted: persisted,
		Err:       err,
	}
}

// StateTransitionEvent is published when the session state machine transitions between phases
type StateTransitionEvent struct {
	BaseEvent
	FromPhase string
	ToPhase   string
	Reason    string
}

// NewStateTransitionEvent creates a new StateTransitionEvent
func NewStateTransitionEvent(gameID, fromPhase, toPhase, reason string) *StateTransitionEvent {
	return &StateTransitionEvent{
		BaseEvent: newBase(TypeStateTransition, gameID),
		FromPhase: fromPhase,
		ToPhase:   toPhase,
		Reason:    reason,
	}
}
