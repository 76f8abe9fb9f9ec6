package game

import (
	"sync"
	"time"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/experience"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/states"
)

// Ply is one executed half-move
type Ply struct {
	Side    core.Side
	Move    core.Move
	Capture bool
	Human   bool
}

// Session is one game: board, side to move, trajectory and outcome. Moves on a session are
// serialized by its own lock; different sessions may be played concurrently.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	board      *core.Board
	toMove     core.Side
	trajectory *experience.Trajectory
	history    []Ply
	halfMoves  int
	maxHalf    int

	over    bool
	winner  core.Side
	reason  string
	settled bool

	gameCtx *states.GameContext
	machine *states.StateMachine
}

// Grid returns the board dimensions
func (s *Session) Grid() core.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Grid()
}

// Board returns the current board. Boards are never mutated in place, so the returned
// value stays valid after further moves.
func (s *Session) Board() *core.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board
}

// ToMove returns the side to move next
func (s *Session) ToMove() core.Side {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toMove
}

// HalfMoves returns how many moves have been played
func (s *Session) HalfMoves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.halfMoves
}

// MaxHalfMoves returns the move ceiling for this session
func (s *Session) MaxHalfMoves() int { return s.maxHalf }

// History returns a copy of the executed moves
func (s *Session) History() []Ply {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Ply, len(s.history))
	copy(out, s.history)
	return out
}

// Captures counts capturing moves played by side
func (s *Session) Captures(side core.Side) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.history {
		if p.Capture && p.Side == side {
			n++
		}
	}
	return n
}

// Decisions returns the number of recorded, not yet settled decisions
func (s *Session) Decisions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trajectory.Len()
}

// Outcome returns the winner and end reason. Winner is NoSide while running or for a draw.
func (s *Session) Outcome() (core.Side, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.winner, s.reason
}

// Phase returns the lifecycle phase
func (s *Session) Phase() states.GamePhase {
	return s.machine.CurrentPhase()
}

// Settled reports whether the outcome has been applied to the table
func (s *Session) Settled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settled
}

// Elapsed returns play time so far, or the total for a finished game
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameCtx.Elapsed()
}
