package game

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
)

// Manager keeps the sessions a driver has open, keyed by session ID
type Manager struct {
	engine   *Engine
	maxGames int
	logger   zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a manager. maxGames <= 0 means unlimited.
func NewManager(engine *Engine, maxGames int, logger zerolog.Logger) *Manager {
	return &Manager{
		engine:   engine,
		maxGames: maxGames,
		logger:   logger.With().Str("component", "GameManager").Logger(),
		sessions: make(map[string]*Session),
	}
}

// Engine returns the engine sessions are played with
func (m *Manager) Engine() *Engine { return m.engine }

// Create starts a new session and registers it
func (m *Manager) Create(grid core.Grid) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxGames > 0 && len(m.sessions) >= m.maxGames {
		m.logger.Warn().
			Int("current_games", len(m.sessions)).
			Int("max_games", m.maxGames).
			Msg("Rejecting game creation, at capacity")
		return nil, fmt.Errorf("%w: %d/%d", core.ErrTooManyGames, len(m.sessions), m.maxGames)
	}

	s, err := m.engine.NewGame(grid)
	if err != nil {
		return nil, err
	}
	m.sessions[s.ID] = s
	return s, nil
}

// Get looks a session up by ID
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownSession, id)
	}
	return s, nil
}

// Remove forgets a session. Unknown IDs are ignored.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count returns the number of registered sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs returns the registered session IDs in sorted order
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// CleanupSettled removes settled sessions created more than olderThan ago and returns how
// many were removed.
func (m *Manager) CleanupSettled(olderThan time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for id, s := range m.sessions {
		if s.Settled() && s.CreatedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Debug().Int("removed", removed).Msg("Cleaned up settled games")
	}
	return removed
}
