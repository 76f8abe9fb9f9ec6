package states

import (
	"errors"
	"time"
)

// CreatedState is the initial phase
type CreatedState struct{}

func NewCreatedState() State {
	return &CreatedState{}
}

func (s *CreatedState) Phase() GamePhase {
	return PhaseCreated
}

func (s *CreatedState) Enter(ctx *GameContext) error {
	return nil
}

func (s *CreatedState) Exit(ctx *GameContext) error {
	return nil
}

func (s *CreatedState) Validate(ctx *GameContext) error {
	return nil
}

// RunningState is active play
type RunningState struct{}

func NewRunningState() State {
	return &RunningState{}
}

func (s *RunningState) Phase() GamePhase {
	return PhaseRunning
}

func (s *RunningState) Enter(ctx *GameContext) error {
	ctx.StartTime = time.Now()
	ctx.Logger.Debug().Msg("Game running")
	return nil
}

func (s *RunningState) Exit(ctx *GameContext) error {
	return nil
}

func (s *RunningState) Validate(ctx *GameContext) error {
	if ctx.Finished {
		return errors.New("cannot run a finished game")
	}
	return nil
}

// OverState holds a finished game waiting to be settled
type OverState struct{}

func NewOverState() State {
	return &OverState{}
}

func (s *OverState) Phase() GamePhase {
	return PhaseOver
}

func (s *OverState) Enter(ctx *GameContext) error {
	ctx.EndTime = time.Now()
	ctx.Logger.Debug().
		Str("winner", ctx.Winner.Name()).
		Int("half_moves", ctx.HalfMoves).
		Dur("elapsed", ctx.Elapsed()).
		Msg("Game over")
	return nil
}

func (s *OverState) Exit(ctx *GameContext) error {
	return nil
}

func (s *OverState) Validate(ctx *GameContext) error {
	if !ctx.Finished {
		return errors.New("game has not reached a terminal condition")
	}
	return nil
}

// SettledState is the final phase
type SettledState struct{}

func NewSettledState() State {
	return &SettledState{}
}

func (s *SettledState) Phase() GamePhase {
	return PhaseSettled
}

func (s *SettledState) Enter(ctx *GameContext) error {
	return nil
}

func (s *SettledState) Exit(ctx *GameContext) error {
	return errors.New("settled games are closed")
}

func (s *SettledState) Validate(ctx *GameContext) error {
	if !ctx.Finished {
		return errors.New("only finished games can be settled")
	}
	return nil
}
