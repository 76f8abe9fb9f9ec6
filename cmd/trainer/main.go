package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/config"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/experience"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/events"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/monitoring"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/policy"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/qtable"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/training"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	env := flag.String("env", os.Getenv("APP_ENV"), "Environment overlay (merges config.<env>.yaml)")
	games := flag.Int("games", -1, "Number of self-play games (-1 to use config default)")
	workers := flag.Int("workers", -1, "Concurrent games (-1 to use config default)")
	files := flag.Int("files", -1, "Board files (-1 to use config default)")
	ranks := flag.Int("ranks", -1, "Board ranks (-1 to use config default)")
	tablePath := flag.String("table", "", "Value table file (empty to use config default)")
	statsFile := flag.String("stats", "", "CSV file for per-epoch statistics (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (trace, debug, info, warn, error) (empty to use config default)")
	logEvents := flag.Bool("log-events", false, "Log every game event at debug level")
	sample := flag.Bool("sample", true, "Play and print one game with the trained table when done")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if err := config.LoadEnvironmentConfig(".", *env); err != nil {
		log.Fatal().Err(err).Msg("Failed to load environment config")
	}
	cfg := config.Get()

	if *games == -1 {
		*games = cfg.Training.Games
	}
	if *workers == -1 {
		*workers = cfg.Training.Workers
	}
	if *files == -1 {
		*files = cfg.Game.Grid.Files
	}
	if *ranks == -1 {
		*ranks = cfg.Game.Grid.Ranks
	}
	if *tablePath == "" {
		*tablePath = cfg.Storage.Path
	}
	if *statsFile == "" {
		*statsFile = cfg.Training.StatsFile
	}
	if *logLevel == "" {
		*logLevel = cfg.Logging.Level
	}

	setupLogging(*logLevel, cfg.Logging.Format)

	// The log level follows the config file while training runs
	if config.ConfigFilePath() != "" {
		config.WatchConfig(func(e fsnotify.Event) {
			level := config.Get().Logging.Level
			setLevel(level)
			log.Info().Str("file", e.Name).Str("level", level).Msg("Config reloaded")
		}, func(e fsnotify.Event, err error) {
			log.Warn().Err(err).Str("file", e.Name).Msg("Ignoring config change")
		})
	}

	grid, err := core.NewGrid(*files, *ranks)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid board size")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal, finishing games in progress")
		cancel()
	}()

	layer, err := qtable.NewPersistenceLayer(qtable.PersistenceConfig{
		Type: qtable.PersistenceType(cfg.Storage.Type),
		Path: *tablePath,
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create persistence layer")
	}
	store := qtable.Open(ctx, qtable.Config{
		SeedValue:  cfg.Learning.SeedValue,
		FlushEvery: cfg.Storage.FlushEvery,
	}, layer, log.Logger)

	rewards := experience.RewardConfig{
		Win:  cfg.Learning.WinReward,
		Loss: cfg.Learning.LossReward,
		Draw: cfg.Learning.DrawReward,
	}
	if err := rewards.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid rewards")
	}

	bus := events.NewBus(log.Logger)
	if *logEvents {
		bus.On(subscribers.NewLoggerSubscriber(log.Logger, zerolog.DebugLevel).HandleEvent)
	}

	engine := game.NewEngine(
		game.EngineConfig{MaxHalfMoves: cfg.Game.MaxHalfMoves},
		store,
		policy.NewEngine(store, cfg.Training.RNGSeed, log.Logger),
		experience.NewUpdater(store, rewards, log.Logger),
		bus,
		log.Logger,
	)

	trainer, err := training.NewTrainer(training.Config{
		Grid:      grid,
		Games:     *games,
		EpochSize: cfg.Training.EpochSize,
		Workers:   *workers,
		LogEvery:  cfg.Training.LogEvery,
	}, engine, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create trainer")
	}

	var monitor *monitoring.RunMonitor
	monCtx, monCancel := context.WithCancel(ctx)
	monDone := make(chan struct{})
	if cfg.Training.MonitorInterval > 0 {
		monitor = monitoring.NewRunMonitor(cfg.Training.MonitorInterval, func() monitoring.Progress {
			return monitoring.Progress{
				Games:       trainer.Played(),
				WhiteStates: store.StateCount(core.White),
				BlackStates: store.StateCount(core.Black),
			}
		}, log.Logger)
		go func() {
			defer close(monDone)
			monitor.Run(monCtx)
		}()
	} else {
		close(monDone)
	}

	summary, err := trainer.Run(ctx)
	monCancel()
	<-monDone
	if monitor != nil {
		m := monitor.Metrics()
		log.Debug().Int("peak_goroutines", m.PeakGoroutines).Int("checks", m.Checks).Msg("Run monitor stopped")
	}
	if err != nil {
		closeStore(store)
		log.Fatal().Err(err).Msg("Training failed")
	}

	if *statsFile != "" {
		w, err := training.NewWriter(*statsFile)
		if err == nil {
			err = w.WriteEpochs(summary.Epochs)
		}
		if err != nil {
			log.Error().Err(err).Str("file", *statsFile).Msg("Failed to write epoch statistics")
		} else {
			log.Info().Str("file", *statsFile).Msg("Epoch statistics written")
		}
	}

	printSummary(summary, store)

	if *sample && !summary.Canceled {
		playSample(engine, grid)
	}

	closeStore(store)
}

// closeStore flushes whatever the last batch left pending, even after a signal
func closeStore(store *qtable.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to save value table")
	}
}

func printSummary(s *training.Summary, store *qtable.Store) {
	t := s.Total
	fmt.Printf("\nGames played: %d in %s\n", t.Games, s.Duration.Round(time.Millisecond))
	fmt.Printf("White wins:   %d (%.1f%%)\n", t.WhiteWins, 100*t.WinRate(core.White))
	fmt.Printf("Black wins:   %d (%.1f%%)\n", t.BlackWins, 100*t.WinRate(core.Black))
	fmt.Printf("Draws:        %d\n", t.Draws)
	fmt.Printf("Avg moves:    %.2f\n", t.AvgHalfMoves())
	fmt.Printf("States:       white %d, black %d\n", store.StateCount(core.White), store.StateCount(core.Black))
	if t.PersistErrors > 0 {
		fmt.Printf("Save errors:  %d\n", t.PersistErrors)
	}
	if s.Canceled {
		fmt.Println("Run interrupted before all games were played")
	}
}

// playSample plays one more game with the trained table and prints how it went. The game is
// settled like any other.
func playSample(engine *game.Engine, grid core.Grid) {
	s, err := engine.NewGame(grid)
	if err != nil {
		log.Error().Err(err).Msg("Failed to start sample game")
		return
	}
	for {
		if over, _ := engine.IsTerminal(s); over {
			break
		}
		if _, _, err := engine.Decide(s); err != nil {
			log.Error().Err(err).Msg("Sample game failed")
			return
		}
	}

	profile := termenv.ColorProfile()
	fmt.Println("\nSample game:")
	for i, ply := range s.History() {
		marker := ""
		if ply.Capture {
			marker = " x"
		}
		fmt.Printf("  %2d. %s %s%s\n", i+1, ply.Side, ply.Move, marker)
	}
	fmt.Print(game.Render(s.Board(), profile))

	winner, reason := s.Outcome()
	if winner.Valid() {
		fmt.Printf("%s wins (%s)\n", winner.Name(), reason)
	} else {
		fmt.Printf("Draw (%s)\n", reason)
	}

	if _, err := engine.Settle(context.Background(), s); err != nil {
		log.Warn().Err(err).Msg("Sample game not persisted")
	}
}

func setLevel(level string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)
}

func setupLogging(level, format string) {
	setLevel(level)

	if os.Getenv("APP_ENV") == "production" || format == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}
}
