package training

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/qtable"
)

// Config controls a bulk self-play run
type Config struct {
	Grid      core.Grid
	Games     int
	EpochSize int
	Workers   int
	// LogEvery logs progress after this many completed games. 0 disables progress logs.
	LogEvery int
}

// Validate checks the run parameters
func (c Config) Validate() error {
	if err := c.Grid.Validate(); err != nil {
		return err
	}
	if c.Games < 0 {
		return fmt.Errorf("games must be non-negative, got %d", c.Games)
	}
	if c.EpochSize < 1 {
		return fmt.Errorf("epoch size must be at least 1, got %d", c.EpochSize)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.LogEvery < 0 {
		return fmt.Errorf("log every must be non-negative, got %d", c.LogEvery)
	}
	return nil
}

// Trainer plays games against itself through a game engine, settling each one into the
// shared value table.
type Trainer struct {
	cfg    Config
	engine *game.Engine
	logger zerolog.Logger

	played atomic.Int64
}

// NewTrainer creates a trainer
func NewTrainer(cfg Config, engine *game.Engine, logger zerolog.Logger) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid training config: %w", err)
	}
	return &Trainer{
		cfg:    cfg,
		engine: engine,
		logger: logger.With().Str("component", "Trainer").Logger(),
	}, nil
}

// Run plays cfg.Games games across cfg.Workers workers. Canceling ctx stops handing out new
// games; games already in progress finish and are settled. Persistence failures are counted
// and logged but do not stop the run.
func (t *Trainer) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	collector := NewCollector(t.cfg.Games, t.cfg.EpochSize)

	t.logger.Info().
		Int("games", t.cfg.Games).
		Int("workers", t.cfg.Workers).
		Int("epoch_size", t.cfg.EpochSize).
		Str("grid", t.cfg.Grid.String()).
		Msg("Starting self-play")

	jobs := make(chan int)
	var dispatched atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < t.cfg.Games; i++ {
			select {
			case jobs <- i:
				dispatched.Add(1)
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})

	for w := 0; w < t.cfg.Workers; w++ {
		worker := w
		g.Go(func() error {
			for idx := range jobs {
				// Settlement must run even if ctx is canceled mid-game
				res, err := t.PlayOne(context.WithoutCancel(gctx), idx)
				if err != nil {
					return fmt.Errorf("worker %d game %d: %w", worker, idx, err)
				}
				done := collector.Add(res)
				t.played.Add(1)
				t.logProgress(done, collector)
			}
			return nil
		})
	}

	err := g.Wait()
	summary := &Summary{
		Total:    collector.Total(),
		Epochs:   collector.Epochs(),
		Duration: time.Since(start),
		Canceled: int(dispatched.Load()) < t.cfg.Games,
	}
	if err != nil {
		return summary, err
	}

	for _, e := range summary.Epochs {
		t.logger.Info().
			Int("epoch", e.Epoch).
			Int("games", e.Games).
			Int("white_wins", e.WhiteWins).
			Int("black_wins", e.BlackWins).
			Int("draws", e.Draws).
			Float64("avg_half_moves", e.AvgHalfMoves()).
			Msg("Epoch complete")
	}
	t.logger.Info().
		Int("games", summary.Total.Games).
		Int("white_wins", summary.Total.WhiteWins).
		Int("black_wins", summary.Total.BlackWins).
		Int("draws", summary.Total.Draws).
		Float64("avg_half_moves", summary.Total.AvgHalfMoves()).
		Dur("duration", summary.Duration).
		Bool("canceled", summary.Canceled).
		Msg("Self-play finished")

	return summary, nil
}

// Played returns the number of games finished across all runs
func (t *Trainer) Played() int {
	return int(t.played.Load())
}

// PlayOne plays a single game to the end and settles it
func (t *Trainer) PlayOne(ctx context.Context, index int) (GameResult, error) {
	s, err := t.engine.NewGame(t.cfg.Grid)
	if err != nil {
		return GameResult{}, err
	}

	for {
		if over, _ := t.engine.IsTerminal(s); over {
			break
		}
		if _, _, err := t.engine.Decide(s); err != nil {
			return GameResult{}, err
		}
	}

	res := GameResult{
		Index:         index,
		HalfMoves:     s.HalfMoves(),
		WhiteCaptures: s.Captures(core.White),
		BlackCaptures: s.Captures(core.Black),
	}
	res.Winner, res.Reason = s.Outcome()

	settled, err := t.engine.Settle(ctx, s)
	res.Duration = s.Elapsed()
	res.Persisted = settled.Persisted
	if err != nil {
		if !errors.Is(err, qtable.ErrPersist) {
			return res, err
		}
		res.PersistFailed = true
	}
	return res, nil
}

func (t *Trainer) logProgress(done int, c *Collector) {
	if t.cfg.LogEvery == 0 || done%t.cfg.LogEvery != 0 {
		return
	}
	total := c.Total()
	t.logger.Info().
		Int("played", done).
		Int("of", t.cfg.Games).
		Int("white_wins", total.WhiteWins).
		Int("black_wins", total.BlackWins).
		Int("draws", total.Draws).
		Float64("avg_half_moves", total.AvgHalfMoves()).
		Msg("Training progress")
}
