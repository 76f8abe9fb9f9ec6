package experience

import (
	"fmt"
	"math"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
)

// RewardConfig holds the per-step adjustment for each game outcome
type RewardConfig struct {
	Win  float64
	Loss float64
	Draw float64
}

// DefaultRewardConfig returns unit win/loss rewards and no change for draws
func DefaultRewardConfig() RewardConfig {
	return RewardConfig{
		Win:  1.0,
		Loss: -1.0,
		Draw: 0.0,
	}
}

// Validate rejects non-finite rewards and a win reward that does not beat the loss reward
func (c RewardConfig) Validate() error {
	for name, v := range map[string]float64{"win": c.Win, "loss": c.Loss, "draw": c.Draw} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s reward must be finite, got %v", name, v)
		}
	}
	if c.Win <= c.Loss {
		return fmt.Errorf("win reward (%v) must be greater than loss reward (%v)", c.Win, c.Loss)
	}
	return nil
}

// Reward returns the adjustment for a decision made by side in a game won by winner.
// A winner of NoSide means the game was drawn.
func (c RewardConfig) Reward(side, winner core.Side) float64 {
	switch {
	case !winner.Valid():
		return c.Draw
	case side == winner:
		return c.Win
	default:
		return c.Loss
	}
}
