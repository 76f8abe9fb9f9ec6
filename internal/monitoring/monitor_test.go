package monitoring

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMonitor_Check(t *testing.T) {
	var games atomic.Int64
	m := NewRunMonitor(time.Hour, func() Progress {
		return Progress{Games: int(games.Load()), WhiteStates: 4, BlackStates: 3}
	}, zerolog.New(zerolog.NewTestWriter(t)))

	base := m.Metrics()
	assert.Greater(t, base.BaseGoroutines, 0)
	assert.Equal(t, base.BaseGoroutines, base.PeakGoroutines)

	games.Store(10)
	got := m.Check()
	assert.Equal(t, 10, got.Games)
	assert.Equal(t, 4, got.WhiteStates)
	assert.Equal(t, 3, got.BlackStates)
	assert.Equal(t, 1, got.Checks)
	assert.Greater(t, got.GamesPerSecond, 0.0)
	assert.GreaterOrEqual(t, got.PeakGoroutines, got.BaseGoroutines)
	assert.Equal(t, got, m.Metrics())

	// No new games means no throughput
	got = m.Check()
	assert.Equal(t, 0.0, got.GamesPerSecond)
	assert.Equal(t, 2, got.Checks)
}

func TestRunMonitor_TracksPeak(t *testing.T) {
	m := NewRunMonitor(time.Hour, nil, zerolog.Nop())

	stop := make(chan struct{})
	started := make(chan struct{})
	for i := 0; i < 5; i++ {
		go func() {
			started <- struct{}{}
			<-stop
		}()
		<-started
	}
	peak := m.Check().PeakGoroutines
	close(stop)

	assert.GreaterOrEqual(t, peak, m.Metrics().BaseGoroutines+5)
	assert.GreaterOrEqual(t, m.Check().PeakGoroutines, peak)
}

func TestRunMonitor_AlertsOnce(t *testing.T) {
	var buf bytes.Buffer
	m := NewRunMonitor(time.Hour, nil, zerolog.New(&buf).Level(zerolog.WarnLevel))
	m.SetAlertThreshold(0)

	m.Check()
	m.Check()

	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("possible leak")))
}

func TestRunMonitor_RunStopsWithContext(t *testing.T) {
	var calls atomic.Int64
	m := NewRunMonitor(5*time.Millisecond, func() Progress {
		calls.Add(1)
		return Progress{}
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
	assert.GreaterOrEqual(t, m.Metrics().Checks, 2)
}
