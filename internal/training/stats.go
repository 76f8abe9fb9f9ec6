package training

import (
	"sync"
	"time"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
)

// GameResult is the outcome of one self-play game
type GameResult struct {
	Index         int
	Winner        core.Side
	Reason        string
	HalfMoves     int
	WhiteCaptures int
	BlackCaptures int
	Duration      time.Duration
	Persisted     bool
	PersistFailed bool
}

// EpochStats aggregates the games of one epoch
type EpochStats struct {
	Epoch          int
	Games          int
	WhiteWins      int
	BlackWins      int
	Draws          int
	TotalHalfMoves int
	WhiteCaptures  int
	BlackCaptures  int
	PersistErrors  int
}

// Wins returns the number of games side won
func (e EpochStats) Wins(side core.Side) int {
	switch side {
	case core.White:
		return e.WhiteWins
	case core.Black:
		return e.BlackWins
	default:
		return 0
	}
}

// WinRate returns the share of games side won
func (e EpochStats) WinRate(side core.Side) float64 {
	if e.Games == 0 {
		return 0
	}
	return float64(e.Wins(side)) / float64(e.Games)
}

// AvgHalfMoves returns the mean game length
func (e EpochStats) AvgHalfMoves() float64 {
	if e.Games == 0 {
		return 0
	}
	return float64(e.TotalHalfMoves) / float64(e.Games)
}

func (e *EpochStats) add(r GameResult) {
	e.Games++
	switch r.Winner {
	case core.White:
		e.WhiteWins++
	case core.Black:
		e.BlackWins++
	default:
		e.Draws++
	}
	e.TotalHalfMoves += r.HalfMoves
	e.WhiteCaptures += r.WhiteCaptures
	e.BlackCaptures += r.BlackCaptures
	if r.PersistFailed {
		e.PersistErrors++
	}
}

// Summary is the result of a training run
type Summary struct {
	Total    EpochStats
	Epochs   []EpochStats
	Duration time.Duration
	// Canceled is set when the run stopped before playing every requested game
	Canceled bool
}

// Collector groups game results into fixed-size epochs by game index. Safe for concurrent use.
type Collector struct {
	epochSize int

	mu     sync.Mutex
	total  EpochStats
	epochs []EpochStats
}

// NewCollector creates a collector for games epochs of epochSize games
func NewCollector(games, epochSize int) *Collector {
	if epochSize < 1 {
		epochSize = 1
	}
	n := (games + epochSize - 1) / epochSize
	epochs := make([]EpochStats, n)
	for i := range epochs {
		epochs[i].Epoch = i + 1
	}
	return &Collector{
		epochSize: epochSize,
		epochs:    epochs,
	}
}

// Add records r and returns the number of games recorded so far
func (c *Collector) Add(r GameResult) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := r.Index / c.epochSize
	for idx >= len(c.epochs) {
		c.epochs = append(c.epochs, EpochStats{Epoch: len(c.epochs) + 1})
	}
	c.epochs[idx].add(r)
	c.total.add(r)
	return c.total.Games
}

// Total returns the aggregate over every recorded game
func (c *Collector) Total() EpochStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Epochs returns a copy of the epochs that have at least one game
func (c *Collector) Epochs() []EpochStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]EpochStats, 0, len(c.epochs))
	for _, e := range c.epochs {
		if e.Games > 0 {
			out = append(out, e)
		}
	}
	return out
}
