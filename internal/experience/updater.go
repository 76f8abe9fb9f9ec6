package experience

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/qtable"
)

// SettleResult summarizes one settled game
type SettleResult struct {
	Winner    core.Side
	Steps     int
	Applied   int
	Skipped   int
	Persisted bool
}

// Updater turns finished trajectories into table adjustments. Every visited (state, action)
// pair moves by the outcome reward for the side that chose it: no discounting, no step size.
type Updater struct {
	store   *qtable.Store
	rewards RewardConfig
	logger  zerolog.Logger
}

// NewUpdater creates an updater writing to store
func NewUpdater(store *qtable.Store, rewards RewardConfig, logger zerolog.Logger) *Updater {
	return &Updater{
		store:   store,
		rewards: rewards,
		logger:  logger.With().Str("component", "Updater").Logger(),
	}
}

// Rewards returns the reward configuration in use
func (u *Updater) Rewards() RewardConfig { return u.rewards }

// Deltas builds one adjustment per recorded step. Zero adjustments are omitted.
func (u *Updater) Deltas(traj *Trajectory, winner core.Side) []qtable.Delta {
	deltas := make([]qtable.Delta, 0, traj.Len())
	for _, step := range traj.steps {
		amount := u.rewards.Reward(step.Side, winner)
		if amount == 0 {
			continue
		}
		deltas = append(deltas, qtable.Delta{
			Side:   step.Side,
			State:  step.State,
			Action: step.Action,
			Amount: amount,
		})
	}
	return deltas
}

// Settle applies the outcome to every step of traj as one batch, then hands the table to the
// store for persistence. The trajectory is consumed. A persistence failure is returned after
// the in-memory update has been kept.
func (u *Updater) Settle(ctx context.Context, traj *Trajectory, winner core.Side) (SettleResult, error) {
	res := SettleResult{Winner: winner, Steps: traj.Len()}

	applied := u.store.Apply(u.Deltas(traj, winner))
	res.Applied = applied.Applied
	res.Skipped = applied.Skipped
	traj.Reset()

	persisted, err := u.store.Persist(ctx)
	res.Persisted = persisted

	u.logger.Debug().
		Str("winner", winner.Name()).
		Int("steps", res.Steps).
		Int("applied", res.Applied).
		Int("skipped", res.Skipped).
		Bool("persisted", persisted).
		Msg("Game settled")

	if err != nil {
		return res, fmt.Errorf("settle: %w", err)
	}
	return res, nil
}
