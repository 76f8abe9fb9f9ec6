package states

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
)

// GameContext carries the session facts the states validate against
type GameContext struct {
	GameID string
	Logger zerolog.Logger

	// StartTime is set when PhaseRunning is entered, EndTime when PhaseOver is entered
	StartTime time.Time
	EndTime   time.Time

	HalfMoves int
	Winner    core.Side
	// Finished is set by the session once a terminal condition has been detected
	Finished bool
}

// NewGameContext creates a new game context
func NewGameContext(gameID string, logger zerolog.Logger) *GameContext {
	return &GameContext{
		GameID: gameID,
		Logger: logger.With().Str("game_id", gameID).Logger(),
		Winner: core.NoSide,
	}
}

// Elapsed returns the play time so far, or the total once the game is over
func (gc *GameContext) Elapsed() time.Duration {
	if gc.StartTime.IsZero() {
		return 0
	}
	if !gc.EndTime.IsZero() {
		return gc.EndTime.Sub(gc.StartTime)
	}
	return time.Since(gc.StartTime)
}
