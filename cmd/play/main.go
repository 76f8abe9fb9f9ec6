package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/config"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/experience"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/events"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/policy"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/qtable"
)

const help = `Commands:
  <move>   play a move such as a1a2 (source then destination)
  moves    list your legal moves
  values   show the stored values for your position
  new      abandon this game and start another
  quit     save and exit
`

type console struct {
	out     io.Writer
	profile termenv.Profile
	manager *game.Manager
	grid    core.Grid
	human   core.Side
	session *game.Session
}

func main() {
	configPath := flag.String("config", "", "Path to config file")
	side := flag.String("side", "", "Side to play, white or black (empty to use config default)")
	files := flag.Int("files", -1, "Board files (-1 to use config default)")
	ranks := flag.Int("ranks", -1, "Board ranks (-1 to use config default)")
	tablePath := flag.String("table", "", "Value table file (empty to use config default)")
	seed := flag.Uint64("seed", 0, "Policy seed (0 for time based)")
	logLevel := flag.String("log-level", "warn", "Log level")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()

	if *side != "" {
		config.Set("play.human_side", *side)
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
	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}

	setupLogging(*logLevel)

	human, err := cfg.HumanSide()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid side")
	}
	grid, err := core.NewGrid(*files, *ranks)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid board size")
	}

	layer, err := qtable.NewPersistenceLayer(qtable.PersistenceConfig{
		Type: qtable.PersistenceType(cfg.Storage.Type),
		Path: *tablePath,
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create persistence layer")
	}
	ctx := context.Background()
	store := qtable.Open(ctx, qtable.Config{
		SeedValue:  cfg.Learning.SeedValue,
		FlushEvery: cfg.Storage.FlushEvery,
	}, layer, log.Logger)
	defer func() {
		if err := store.Close(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to save value table")
		}
	}()

	rewards := experience.RewardConfig{
		Win:  cfg.Learning.WinReward,
		Loss: cfg.Learning.LossReward,
		Draw: cfg.Learning.DrawReward,
	}
	engine := game.NewEngine(
		game.EngineConfig{MaxHalfMoves: cfg.Game.MaxHalfMoves},
		store,
		policy.NewEngine(store, *seed, log.Logger),
		experience.NewUpdater(store, rewards, log.Logger),
		events.NewBus(log.Logger),
		log.Logger,
	)

	c := &console{
		out:     os.Stdout,
		profile: termenv.ColorProfile(),
		manager: game.NewManager(engine, cfg.Play.MaxGames, log.Logger),
		grid:    grid,
		human:   human,
	}
	if err := c.run(ctx, os.Stdin); err != nil {
		log.Error().Err(err).Msg("Play session ended with error")
	}
}

func (c *console) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintf(c.out, "You play %s on a %s board.\n%s\n", c.human.Name(), c.grid, help)
	if err := c.newGame(ctx); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit", "q":
			return nil
		case "help", "?":
			fmt.Fprint(c.out, help)
		case "new":
			c.manager.Remove(c.session.ID)
			if err := c.newGame(ctx); err != nil {
				return err
			}
		case "moves":
			c.printLegal()
		case "values":
			c.printValues()
		default:
			if err := c.humanMove(ctx, line); err != nil {
				return err
			}
		}
	}
}

// newGame starts a session and lets the computer open when the human plays Black
func (c *console) newGame(ctx context.Context) error {
	s, err := c.manager.Create(c.grid)
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}
	c.session = s
	fmt.Fprintln(c.out, "New game.")
	return c.advance(ctx)
}

func (c *console) humanMove(ctx context.Context, text string) error {
	engine := c.manager.Engine()
	if over, _ := engine.IsTerminal(c.session); over {
		fmt.Fprintln(c.out, "The game is over. Type new to play again.")
		return nil
	}

	m, err := core.ParseMove(text)
	if err != nil {
		fmt.Fprintf(c.out, "Could not read %q as a move. Type help for commands.\n", text)
		return nil
	}

	err = engine.SubmitMove(c.session, c.human, m)
	var illegal *game.IllegalMoveError
	switch {
	case errors.As(err, &illegal):
		fmt.Fprintf(c.out, "%s is not legal. Legal moves: %s\n", m, joinMoves(illegal.Legal))
		return nil
	case err != nil:
		fmt.Fprintf(c.out, "Move rejected: %v\n", err)
		return nil
	}
	return c.advance(ctx)
}

// advance plays computer moves until it is the human's turn or the game ends
func (c *console) advance(ctx context.Context) error {
	engine := c.manager.Engine()
	for {
		if over, _ := engine.IsTerminal(c.session); over {
			return c.finish(ctx)
		}
		if c.session.ToMove() == c.human {
			break
		}
		m, ok, err := engine.Decide(c.session)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintf(c.out, "Computer plays %s\n", m)
		}
	}

	fmt.Fprint(c.out, game.Render(c.session.Board(), c.profile))
	c.printValues()
	return nil
}

func (c *console) finish(ctx context.Context) error {
	fmt.Fprint(c.out, game.Render(c.session.Board(), c.profile))

	winner, reason := c.session.Outcome()
	switch {
	case !winner.Valid():
		fmt.Fprintf(c.out, "Draw (%s).\n", reason)
	case winner == c.human:
		fmt.Fprintf(c.out, "You win (%s).\n", reason)
	default:
		fmt.Fprintf(c.out, "Computer wins (%s).\n", reason)
	}

	res, err := c.manager.Engine().Settle(ctx, c.session)
	if err != nil && !errors.Is(err, qtable.ErrPersist) {
		return err
	}
	if err != nil {
		fmt.Fprintln(c.out, "Warning: the value table could not be saved, it will be retried.")
	}
	log.Debug().Int("applied", res.Applied).Bool("persisted", res.Persisted).Msg("Game settled")

	c.manager.CleanupSettled(0)
	fmt.Fprintln(c.out, "Type new to play again or quit to exit.")
	return nil
}

func (c *console) printLegal() {
	legal := c.manager.Engine().LegalMoves(c.session)
	if len(legal) == 0 {
		fmt.Fprintln(c.out, "No legal moves.")
		return
	}
	fmt.Fprintf(c.out, "Legal moves: %s\n", joinMoves(legal))
}

func (c *console) printValues() {
	if c.session.ToMove() != c.human {
		return
	}
	fmt.Fprint(c.out, game.RenderValues(c.human, c.manager.Engine().Preview(c.session), c.profile))
}

func joinMoves(moves []core.Move) string {
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

func setupLogging(level string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(logLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})
}
