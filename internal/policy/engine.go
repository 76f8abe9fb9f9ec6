package policy

import (
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/experience"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/rules"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/qtable"
)

// Engine picks moves by sampling the value table
type Engine struct {
	store  *qtable.Store
	logger zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates a policy engine drawing from a source seeded with seed
func NewEngine(store *qtable.Store, seed uint64, logger zerolog.Logger) *Engine {
	return &Engine{
		store:  store,
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger.With().Str("component", "PolicyEngine").Logger(),
	}
}

// Choose samples one legal move for side and records the decision in traj.
// Returns false when side has no legal move, which the caller treats as a loss.
func (e *Engine) Choose(side core.Side, board *core.Board, traj *experience.Trajectory) (core.Move, bool) {
	moves := rules.LegalMoves(board, side)
	if len(moves) == 0 {
		return core.Move{}, false
	}

	byKey := make(map[qtable.ActionKey]core.Move, len(moves))
	for _, m := range moves {
		byKey[qtable.ActionKeyOf(m)] = m
	}

	key := qtable.EncodeState(board, side)
	entry := e.store.Prepare(side, key, qtable.ActionKeysOf(moves))

	// The table entry is the sampling universe; keys with no matching move are dropped.
	candidates := make([]qtable.ActionValue, 0, len(entry))
	for _, av := range entry {
		if _, ok := byKey[av.Action]; ok {
			candidates = append(candidates, av)
		}
	}
	if len(candidates) < len(entry) {
		e.logger.Warn().
			Str("state", string(key)).
			Int("entries", len(entry)).
			Int("usable", len(candidates)).
			Msg("Table entry holds actions the move generator did not produce")
	}
	if len(candidates) == 0 {
		return core.Move{}, false
	}

	values := make([]float64, len(candidates))
	for i, av := range candidates {
		values[i] = av.Value
	}
	weights := Weights(values)

	e.mu.Lock()
	idx := Sample(e.rng, weights)
	e.mu.Unlock()

	chosen := candidates[idx].Action
	if traj != nil {
		traj.Append(side, key, chosen)
	}

	e.logger.Trace().
		Str("side", side.Name()).
		Str("state", string(key)).
		Str("action", string(chosen)).
		Float64("weight", weights[idx]).
		Msg("Sampled move")
	return byKey[chosen], true
}
