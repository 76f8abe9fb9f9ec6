package qtable

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
)

type failingPersistence struct {
	NullPersistence
	loadErr error
	saveErr error
	saves   int
}

func (f *failingPersistence) Load(ctx context.Context) (*Table, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return NewTable(), nil
}

func (f *failingPersistence) Save(ctx context.Context, t *Table) error {
	f.saves++
	return f.saveErr
}

func newTestStore(t *testing.T, layer PersistenceLayer) *Store {
	t.Helper()
	return Open(context.Background(), DefaultConfig(), layer, zerolog.New(zerolog.NewTestWriter(t)))
}

func TestStore_EnsureStateSeeds(t *testing.T) {
	s := newTestStore(t, nil)
	key := StateKey("W|a1:W,a3:B")

	seeded := s.EnsureState(core.White, key, []ActionKey{"a1a2", "a1b2"})
	assert.Equal(t, 2, seeded)

	v, ok := s.Value(core.White, key, "a1a2")
	require.True(t, ok)
	assert.Equal(t, DefaultSeedValue, v)

	_, ok = s.Value(core.Black, key, "a1a2")
	assert.False(t, ok, "sides have separate tables")
}

func TestStore_EnsureStateKeepsExistingValues(t *testing.T) {
	s := newTestStore(t, nil)
	key := StateKey("W|a1:W")

	s.EnsureState(core.White, key, []ActionKey{"a1a2"})
	s.Apply([]Delta{{Side: core.White, State: key, Action: "a1a2", Amount: 3}})

	seeded := s.EnsureState(core.White, key, []ActionKey{"a1a2", "a1b2"})
	assert.Equal(t, 1, seeded)

	values, ok := s.Values(core.White, key)
	require.True(t, ok)
	assert.Equal(t, []ActionValue{
		{Action: "a1a2", Value: DefaultSeedValue + 3},
		{Action: "a1b2", Value: DefaultSeedValue},
	}, values)
}

func TestStore_Prepare(t *testing.T) {
	s := newTestStore(t, nil)
	key := StateKey("B|b2:W,c3:B")

	values := s.Prepare(core.Black, key, []ActionKey{"c3c2", "c3b2"})
	assert.Equal(t, []ActionValue{
		{Action: "c3b2", Value: DefaultSeedValue},
		{Action: "c3c2", Value: DefaultSeedValue},
	}, values)
	assert.Equal(t, 1, s.StateCount(core.Black))
	assert.Equal(t, 0, s.StateCount(core.White))
}

func TestStore_ApplyRepeatedVisits(t *testing.T) {
	s := newTestStore(t, nil)
	key := StateKey("W|a1:W")
	s.EnsureState(core.White, key, []ActionKey{"a1a2"})

	res := s.Apply([]Delta{
		{Side: core.White, State: key, Action: "a1a2", Amount: 1},
		{Side: core.White, State: key, Action: "a1a2", Amount: 1},
		{Side: core.White, State: "W|missing", Action: "a1a2", Amount: 1},
	})

	assert.Equal(t, ApplyResult{Applied: 2, Skipped: 1}, res)
	v, _ := s.Value(core.White, key, "a1a2")
	assert.Equal(t, DefaultSeedValue+2, v)
	_, ok := s.Values(core.White, "W|missing")
	assert.False(t, ok, "skipped deltas never create entries")
}

func TestStore_SnapshotIsIndependent(t *testing.T) {
	s := newTestStore(t, nil)
	key := StateKey("W|a1:W")
	s.EnsureState(core.White, key, []ActionKey{"a1a2"})

	snap := s.Snapshot()
	s.Apply([]Delta{{Side: core.White, State: key, Action: "a1a2", Amount: -5}})

	assert.Equal(t, DefaultSeedValue, snap.White[key]["a1a2"])
}

func TestStore_OpenDegradesOnLoadError(t *testing.T) {
	layer := &failingPersistence{loadErr: errors.New("disk on fire")}
	s := newTestStore(t, layer)

	assert.Equal(t, 0, s.StateCount(core.White))
	assert.Equal(t, 0, s.StateCount(core.Black))
}

func TestStore_FlushCadence(t *testing.T) {
	layer := &failingPersistence{}
	cfg := DefaultConfig()
	cfg.FlushEvery = 3
	s := Open(context.Background(), cfg, layer, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		flushed, err := s.Persist(ctx)
		require.NoError(t, err)
		assert.False(t, flushed)
	}
	assert.Equal(t, 0, layer.saves)
	assert.Equal(t, 2, s.Pending())

	flushed, err := s.Persist(ctx)
	require.NoError(t, err)
	assert.True(t, flushed)
	assert.Equal(t, 1, layer.saves)
	assert.Equal(t, 0, s.Pending())

	_, err = s.Persist(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))
	assert.Equal(t, 2, layer.saves)
	assert.Equal(t, 0, s.Pending())
}

func TestStore_SaveFailureKeepsTable(t *testing.T) {
	layer := &failingPersistence{saveErr: errors.New("read-only filesystem")}
	s := newTestStore(t, layer)
	key := StateKey("W|a1:W")
	s.EnsureState(core.White, key, []ActionKey{"a1a2"})
	s.Apply([]Delta{{Side: core.White, State: key, Action: "a1a2", Amount: 1}})

	_, err := s.Persist(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersist)

	v, ok := s.Value(core.White, key, "a1a2")
	require.True(t, ok)
	assert.Equal(t, DefaultSeedValue+1, v)
	assert.Equal(t, 1, s.Pending(), "failed flush stays pending for retry")
}

func TestStore_ConcurrentUpdatesAreNotLost(t *testing.T) {
	s := newTestStore(t, nil)
	key := StateKey("W|a1:W")
	s.EnsureState(core.White, key, []ActionKey{"a1a2"})

	const workers, perWorker = 8, 250
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s.EnsureState(core.White, key, []ActionKey{"a1a2"})
				s.Apply([]Delta{{Side: core.White, State: key, Action: "a1a2", Amount: 1}})
			}
		}()
	}
	wg.Wait()

	v, _ := s.Value(core.White, key, "a1a2")
	assert.Equal(t, DefaultSeedValue+workers*perWorker, v)
}

func TestStore_FileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q_table.json")
	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx := context.Background()

	s := Open(ctx, DefaultConfig(), NewFilePersistence(path, logger), logger)
	s.EnsureState(core.White, "W|a1:W,b3:B", []ActionKey{"a1a2"})
	s.EnsureState(core.Black, "B|a2:W,b3:B", []ActionKey{"b3a2", "b3b2"})
	s.Apply([]Delta{
		{Side: core.White, State: "W|a1:W,b3:B", Action: "a1a2", Amount: -21.5},
		{Side: core.Black, State: "B|a2:W,b3:B", Action: "b3a2", Amount: 1},
	})
	require.NoError(t, s.Flush(ctx))

	reopened := Open(ctx, DefaultConfig(), NewFilePersistence(path, logger), logger)
	assert.True(t, s.Snapshot().Equal(reopened.Snapshot()))

	v, ok := reopened.Value(core.White, "W|a1:W,b3:B", "a1a2")
	require.True(t, ok)
	assert.Equal(t, -1.5, v)
}
