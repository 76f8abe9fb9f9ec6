package experience

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/qtable"
)

type brokenDisk struct {
	qtable.NullPersistence
}

func (brokenDisk) Save(ctx context.Context, t *qtable.Table) error {
	return errors.New("no space left on device")
}

func newStore(t *testing.T, layer qtable.PersistenceLayer) *qtable.Store {
	t.Helper()
	return qtable.Open(context.Background(), qtable.DefaultConfig(), layer, zerolog.New(zerolog.NewTestWriter(t)))
}

func TestUpdater_SettleExactUnitAdjustments(t *testing.T) {
	store := newStore(t, nil)
	u := NewUpdater(store, DefaultRewardConfig(), zerolog.New(zerolog.NewTestWriter(t)))

	const (
		w1 qtable.StateKey = "W|a1:W,b1:W,a3:B"
		b1 qtable.StateKey = "B|a2:W,b1:W,a3:B"
		w2 qtable.StateKey = "W|a2:W,b1:W,a2:B"
	)
	store.EnsureState(core.White, w1, []qtable.ActionKey{"a1a2", "b1b2"})
	store.EnsureState(core.Black, b1, []qtable.ActionKey{"a3b2"})
	store.EnsureState(core.White, w2, []qtable.ActionKey{"b1b2"})
	// A pre-trained value moves relative to where it started.
	store.Apply([]qtable.Delta{{Side: core.White, State: w2, Action: "b1b2", Amount: 4}})

	traj := NewTrajectory(3)
	traj.Append(core.White, w1, "a1a2")
	traj.Append(core.Black, b1, "a3b2")
	traj.Append(core.White, w2, "b1b2")

	res, err := u.Settle(context.Background(), traj, core.White)
	require.NoError(t, err)
	assert.Equal(t, SettleResult{Winner: core.White, Steps: 3, Applied: 3, Persisted: true}, res)
	assert.Equal(t, 0, traj.Len(), "trajectory is consumed")

	v, _ := store.Value(core.White, w1, "a1a2")
	assert.Equal(t, qtable.DefaultSeedValue+1, v)
	v, _ = store.Value(core.White, w1, "b1b2")
	assert.Equal(t, qtable.DefaultSeedValue, v, "unvisited actions are untouched")
	v, _ = store.Value(core.Black, b1, "a3b2")
	assert.Equal(t, qtable.DefaultSeedValue-1, v)
	v, _ = store.Value(core.White, w2, "b1b2")
	assert.Equal(t, qtable.DefaultSeedValue+5, v)
}

func TestUpdater_SettleDrawLeavesValues(t *testing.T) {
	store := newStore(t, nil)
	u := NewUpdater(store, DefaultRewardConfig(), zerolog.Nop())

	store.EnsureState(core.White, "W|a1:W", []qtable.ActionKey{"a1a2"})
	traj := NewTrajectory(1)
	traj.Append(core.White, "W|a1:W", "a1a2")

	res, err := u.Settle(context.Background(), traj, core.NoSide)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Applied)
	assert.True(t, res.Persisted)

	v, _ := store.Value(core.White, "W|a1:W", "a1a2")
	assert.Equal(t, qtable.DefaultSeedValue, v)
}

func TestUpdater_SettleSkipsMissingEntries(t *testing.T) {
	store := newStore(t, nil)
	u := NewUpdater(store, DefaultRewardConfig(), zerolog.Nop())

	store.EnsureState(core.Black, "B|c3:B", []qtable.ActionKey{"c3c2"})
	traj := NewTrajectory(2)
	traj.Append(core.Black, "B|c3:B", "c3c2")
	traj.Append(core.White, "W|never-seeded", "a1a2")

	res, err := u.Settle(context.Background(), traj, core.Black)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, 1, res.Skipped)
}

func TestUpdater_SettlePersistFailureKeepsUpdate(t *testing.T) {
	store := newStore(t, &brokenDisk{})
	u := NewUpdater(store, DefaultRewardConfig(), zerolog.Nop())

	store.EnsureState(core.White, "W|a1:W", []qtable.ActionKey{"a1a2"})
	traj := NewTrajectory(1)
	traj.Append(core.White, "W|a1:W", "a1a2")

	res, err := u.Settle(context.Background(), traj, core.Black)
	require.Error(t, err)
	assert.ErrorIs(t, err, qtable.ErrPersist)
	assert.False(t, res.Persisted)
	assert.Equal(t, 1, res.Applied)

	v, _ := store.Value(core.White, "W|a1:W", "a1a2")
	assert.Equal(t, qtable.DefaultSeedValue-1, v)
}

func TestUpdater_CustomRewards(t *testing.T) {
	store := newStore(t, nil)
	u := NewUpdater(store, RewardConfig{Win: 2, Loss: -0.5, Draw: 0.25}, zerolog.Nop())

	store.EnsureState(core.White, "W|a1:W", []qtable.ActionKey{"a1a2"})
	store.EnsureState(core.Black, "B|a3:B", []qtable.ActionKey{"a3a2"})
	traj := NewTrajectory(2)
	traj.Append(core.White, "W|a1:W", "a1a2")
	traj.Append(core.Black, "B|a3:B", "a3a2")

	deltas := u.Deltas(traj, core.NoSide)
	require.Len(t, deltas, 2)
	assert.Equal(t, 0.25, deltas[0].Amount)

	_, err := u.Settle(context.Background(), traj, core.Black)
	require.NoError(t, err)
	v, _ := store.Value(core.White, "W|a1:W", "a1a2")
	assert.Equal(t, qtable.DefaultSeedValue-0.5, v)
	v, _ = store.Value(core.Black, "B|a3:B", "a3a2")
	assert.Equal(t, qtable.DefaultSeedValue+2, v)
}
