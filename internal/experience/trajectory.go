package experience

import (
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/qtable"
)

// Step is one decision: the side that moved, the state it moved from and the action taken
type Step struct {
	Side   core.Side
	State  qtable.StateKey
	Action qtable.ActionKey
}

// Trajectory records every decision of one game in order. It belongs to a single session
// and is not safe for concurrent use.
type Trajectory struct {
	steps []Step
}

// NewTrajectory creates an empty trajectory with room for capacity steps
func NewTrajectory(capacity int) *Trajectory {
	if capacity < 0 {
		capacity = 0
	}
	return &Trajectory{steps: make([]Step, 0, capacity)}
}

// Append records a decision
func (t *Trajectory) Append(side core.Side, state qtable.StateKey, action qtable.ActionKey) {
	t.steps = append(t.steps, Step{Side: side, State: state, Action: action})
}

// Steps returns a copy of the recorded decisions
func (t *Trajectory) Steps() []Step {
	out := make([]Step, len(t.steps))
	copy(out, t.steps)
	return out
}

// Len returns the number of recorded decisions
func (t *Trajectory) Len() int { return len(t.steps) }

// CountSide returns how many decisions side made
func (t *Trajectory) CountSide(side core.Side) int {
	n := 0
	for _, s := range t.steps {
		if s.Side == side {
			n++
		}
	}
	return n
}

// Reset discards all steps
func (t *Trajectory) Reset() {
	t.steps = t.steps[:0]
}
