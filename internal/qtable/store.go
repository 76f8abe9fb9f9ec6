package qtable

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
)

// DefaultSeedValue is the score given to a (state, action) pair the first time it is seen.
const DefaultSeedValue = 20.0

// Config controls seeding and flush cadence
type Config struct {
	SeedValue float64
	// FlushEvery is the number of settled games between saves. 1 saves after every game.
	FlushEvery int
}

// DefaultConfig returns the default store configuration
func DefaultConfig() Config {
	return Config{
		SeedValue:  DefaultSeedValue,
		FlushEvery: 1,
	}
}

// Delta is a single adjustment to one stored score
type Delta struct {
	Side   core.Side
	State  StateKey
	Action ActionKey
	Amount float64
}

// ApplyResult reports how many deltas landed
type ApplyResult struct {
	Applied int
	Skipped int
}

type entryRef struct {
	side   core.Side
	state  StateKey
	action ActionKey
}

// Store owns the process-wide value table. Every session shares one Store; seeding,
// reading and applying updates happen under mu. Saves work on a cloned snapshot under
// saveMu so disk I/O never blocks decisions.
type Store struct {
	cfg    Config
	layer  PersistenceLayer
	logger zerolog.Logger

	mu      sync.Mutex
	table   *Table
	pending int

	saveMu sync.Mutex
}

// Open loads the table through layer. Load failures degrade to an empty table; a corrupt
// table file has already been moved aside by the layer, so later saves do not replace it.
func Open(ctx context.Context, cfg Config, layer PersistenceLayer, logger zerolog.Logger) *Store {
	if cfg.FlushEvery < 1 {
		cfg.FlushEvery = 1
	}
	if layer == nil {
		layer = &NullPersistence{}
	}
	s := &Store{
		cfg:    cfg,
		layer:  layer,
		logger: logger.With().Str("component", "ValueStore").Logger(),
	}

	t, err := layer.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Could not load value table, starting empty")
		t = NewTable()
	}
	s.table = t
	return s
}

// SeedValue returns the score given to newly seen actions
func (s *Store) SeedValue() float64 { return s.cfg.SeedValue }

// EnsureState seeds key for side with every action in actions. Existing scores are left
// alone; only missing actions are added. Returns the number of actions seeded.
func (s *Store) EnsureState(side core.Side, key StateKey, actions []ActionKey) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureState(side, key, actions)
}

func (s *Store) ensureState(side core.Side, key StateKey, actions []ActionKey) int {
	st := s.table.For(side)
	if st == nil {
		return 0
	}
	entry, ok := st[key]
	if !ok {
		entry = make(ActionValues, len(actions))
		st[key] = entry
	}
	seeded := 0
	for _, a := range actions {
		if _, exists := entry[a]; !exists {
			entry[a] = s.cfg.SeedValue
			seeded++
		}
	}
	return seeded
}

// Prepare seeds key like EnsureState and returns a sorted copy of its scores in the
// same critical section.
func (s *Store) Prepare(side core.Side, key StateKey, actions []ActionKey) []ActionValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := s.ensureState(side, key, actions); n > 0 {
		s.logger.Debug().
			Str("side", side.Name()).
			Str("state", string(key)).
			Int("seeded", n).
			Msg("Seeded actions")
	}
	st := s.table.For(side)
	if st == nil {
		return nil
	}
	return st[key].Sorted()
}

// Values returns a sorted copy of the scores stored for key
func (s *Store) Values(side core.Side, key StateKey) ([]ActionValue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.table.For(side)[key]
	if !ok {
		return nil, false
	}
	return entry.Sorted(), true
}

// Value returns one stored score
func (s *Store) Value(side core.Side, key StateKey, action ActionKey) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.table.For(side)[key][action]
	return v, ok
}

// StateCount returns the number of states stored for side
func (s *Store) StateCount(side core.Side) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.StateCount(side)
}

// Snapshot returns a deep copy of the table
func (s *Store) Snapshot() *Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Clone()
}

// Apply adds every delta to its stored score as one unit. The new scores are computed on a
// working set first and committed together, so concurrent readers never see half of a
// batch. Deltas for entries that do not exist are skipped.
func (s *Store) Apply(deltas []Delta) ApplyResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res ApplyResult
	working := make(map[entryRef]float64, len(deltas))
	for _, d := range deltas {
		current, ok := s.table.For(d.Side)[d.State][d.Action]
		if !ok {
			res.Skipped++
			continue
		}
		ref := entryRef{side: d.Side, state: d.State, action: d.Action}
		if staged, seen := working[ref]; seen {
			current = staged
		}
		working[ref] = current + d.Amount
		res.Applied++
	}

	for ref, v := range working {
		s.table.For(ref.side)[ref.state][ref.action] = v
	}

	if res.Skipped > 0 {
		s.logger.Warn().Int("skipped", res.Skipped).Msg("Updates referenced missing table entries")
	}
	return res
}

// Persist records one completed game and saves the table once FlushEvery games are pending.
// Returns whether a save happened.
func (s *Store) Persist(ctx context.Context) (bool, error) {
	s.mu.Lock()
	s.pending++
	due := s.pending >= s.cfg.FlushEvery
	s.mu.Unlock()

	if !due {
		return false, nil
	}
	if err := s.Flush(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Flush saves the current table. On failure the in-memory table is kept and the pending
// count is left as is, so the next flush retries.
func (s *Store) Flush(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	snapshot := s.table.Clone()
	flushed := s.pending
	s.mu.Unlock()

	if err := s.layer.Save(ctx, snapshot); err != nil {
		s.logger.Warn().Err(err).Int("pending_games", flushed).Msg("Value table save failed, keeping in-memory table")
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	s.mu.Lock()
	s.pending -= flushed
	if s.pending < 0 {
		s.pending = 0
	}
	s.mu.Unlock()

	s.logger.Debug().
		Int("white_states", snapshot.StateCount(core.White)).
		Int("black_states", snapshot.StateCount(core.Black)).
		Msg("Value table flushed")
	return nil
}

// Pending returns the number of settled games not yet saved
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Close flushes any pending games
func (s *Store) Close(ctx context.Context) error {
	if s.Pending() == 0 {
		return nil
	}
	return s.Flush(ctx)
}
