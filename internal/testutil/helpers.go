package testutil

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/qtable"
)

// NewTestRNG creates a deterministic random number generator for tests
func NewTestRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NopLogger returns a no-op logger for tests
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// TestLogger routes log output through t.Log
func TestLogger(t testing.TB) zerolog.Logger {
	return zerolog.New(zerolog.NewTestWriter(t))
}

// NewMemoryStore opens an in-memory value table with the default seed value
func NewMemoryStore(t testing.TB) *qtable.Store {
	t.Helper()
	return qtable.Open(context.Background(), qtable.DefaultConfig(), &qtable.NullPersistence{}, TestLogger(t))
}
