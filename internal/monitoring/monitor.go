package monitoring

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Progress is what the monitored run reports at each check
type Progress struct {
	Games       int
	WhiteStates int
	BlackStates int
}

// ProgressFunc reads the current progress of a run. It must be safe for concurrent use.
type ProgressFunc func() Progress

// Metrics is a snapshot of what the monitor has observed
type Metrics struct {
	Goroutines     int     `json:"goroutines"`
	BaseGoroutines int     `json:"base_goroutines"`
	PeakGoroutines int     `json:"peak_goroutines"`
	Games          int     `json:"games"`
	GamesPerSecond float64 `json:"games_per_second"`
	WhiteStates    int     `json:"white_states"`
	BlackStates    int     `json:"black_states"`
	Checks         int     `json:"checks"`
}

// RunMonitor periodically logs throughput, value table growth and goroutine counts for a
// long-running training job.
type RunMonitor struct {
	interval       time.Duration
	alertThreshold int
	alertCooldown  time.Duration
	progress       ProgressFunc
	logger         zerolog.Logger

	mu        sync.RWMutex
	metrics   Metrics
	lastGames int
	lastCheck time.Time
	lastAlert time.Time
}

// NewRunMonitor creates a monitor that checks every interval
func NewRunMonitor(interval time.Duration, progress ProgressFunc, logger zerolog.Logger) *RunMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	base := runtime.NumGoroutine()
	return &RunMonitor{
		interval:       interval,
		alertThreshold: 1000,
		alertCooldown:  5 * time.Minute,
		progress:       progress,
		logger:         logger.With().Str("component", "RunMonitor").Logger(),
		metrics: Metrics{
			Goroutines:     base,
			BaseGoroutines: base,
			PeakGoroutines: base,
		},
		lastCheck: time.Now(),
	}
}

// SetAlertThreshold sets the goroutine count above which a warning is logged
func (m *RunMonitor) SetAlertThreshold(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alertThreshold = n
}

// Run checks until ctx is done, then takes one final sample
func (m *RunMonitor) Run(ctx context.Context) {
	m.logger.Debug().
		Int("base_goroutines", m.Metrics().BaseGoroutines).
		Dur("interval", m.interval).
		Msg("Started run monitoring")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Check()
		case <-ctx.Done():
			m.Check()
			return
		}
	}
}

// Check takes one sample and logs it
func (m *RunMonitor) Check() Metrics {
	goroutines := runtime.NumGoroutine()
	var p Progress
	if m.progress != nil {
		p = m.progress()
	}
	now := time.Now()

	m.mu.Lock()
	elapsed := now.Sub(m.lastCheck).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.Games-m.lastGames) / elapsed
	}
	m.lastGames = p.Games
	m.lastCheck = now

	m.metrics.Goroutines = goroutines
	if goroutines > m.metrics.PeakGoroutines {
		m.metrics.PeakGoroutines = goroutines
	}
	m.metrics.Games = p.Games
	m.metrics.GamesPerSecond = rate
	m.metrics.WhiteStates = p.WhiteStates
	m.metrics.BlackStates = p.BlackStates
	m.metrics.Checks++

	alert := goroutines > m.alertThreshold && now.Sub(m.lastAlert) > m.alertCooldown
	if alert {
		m.lastAlert = now
	}
	snapshot := m.metrics
	threshold := m.alertThreshold
	m.mu.Unlock()

	m.logger.Debug().
		Int("games", snapshot.Games).
		Float64("games_per_second", snapshot.GamesPerSecond).
		Int("white_states", snapshot.WhiteStates).
		Int("black_states", snapshot.BlackStates).
		Int("goroutines", snapshot.Goroutines).
		Int("peak_goroutines", snapshot.PeakGoroutines).
		Msg("Run metrics")

	if alert {
		m.logger.Warn().
			Int("goroutines", goroutines).
			Int("threshold", threshold).
			Msg("High goroutine count detected - possible leak")
	}
	return snapshot
}

// Metrics returns the latest snapshot
func (m *RunMonitor) Metrics() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metrics
}
