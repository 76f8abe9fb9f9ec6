package game

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/experience"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/events"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/rules"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/states"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/policy"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/qtable"
)

// EngineConfig holds per-game limits
type EngineConfig struct {
	// MaxHalfMoves ends a game as a draw once reached. 0 means twice the number of cells.
	MaxHalfMoves int
}

// DefaultMaxHalfMoves returns the move ceiling used when none is configured
func DefaultMaxHalfMoves(g core.Grid) int {
	return 2 * g.Size()
}

// IllegalMoveError is returned when a submitted move is not in the legal set. Legal holds the
// moves that would have been accepted.
type IllegalMoveError struct {
	Side  core.Side
	Move  core.Move
	Legal []core.Move
}

func (e *IllegalMoveError) Error() string {
	legal := make([]string, len(e.Legal))
	for i, m := range e.Legal {
		legal[i] = m.String()
	}
	return fmt.Sprintf("%s: move %s: %v (legal: %s)", e.Side.Name(), e.Move, core.ErrIllegalMove, strings.Join(legal, " "))
}

func (e *IllegalMoveError) Unwrap() error { return core.ErrIllegalMove }

// Engine plays sessions against the shared value table
type Engine struct {
	cfg       EngineConfig
	store     *qtable.Store
	policy    *policy.Engine
	updater   *experience.Updater
	checker   *rules.WinConditionChecker
	bus       *events.Bus
	logger    zerolog.Logger
}

// NewEngine wires the core components together. A nil bus drops events.
func NewEngine(cfg EngineConfig, store *qtable.Store, pol *policy.Engine, updater *experience.Updater, bus *events.Bus, logger zerolog.Logger) *Engine {
	logger = logger.With().Str("component", "GameEngine").Logger()
	return &Engine{
		cfg:       cfg,
		store:     store,
		policy:    pol,
		updater:   updater,
		checker:   rules.NewWinConditionChecker(logger),
		bus:       bus,
		logger:    logger,
	}
}

// Store returns the value table the engine plays against
func (e *Engine) Store() *qtable.Store { return e.store }

// NewGame starts a session on grid with the starting position and White to move
func (e *Engine) NewGame(grid core.Grid) (*Session, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	maxHalf := e.cfg.MaxHalfMoves
	if maxHalf <= 0 {
		maxHalf = DefaultMaxHalfMoves(grid)
	}

	id := uuid.NewString()
	gameCtx := states.NewGameContext(id, e.logger)
	s := &Session{
		ID:         id,
		CreatedAt:  time.Now(),
		board:      core.NewStartingBoard(grid),
		toMove:     core.White,
		trajectory: experience.NewTrajectory(maxHalf),
		maxHalf:    maxHalf,
		winner:     core.NoSide,
		gameCtx:    gameCtx,
		machine:    states.NewStateMachine(gameCtx, e.bus),
	}

	if err := s.machine.TransitionTo(states.PhaseRunning, "game created"); err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}
	e.bus.Publish(events.NewGameStartedEvent(id, grid, s.toMove))

	s.mu.Lock()
	e.evaluate(s)
	s.mu.Unlock()

	e.logger.Debug().
		Str("game_id", id).
		Str("grid", grid.String()).
		Int("max_half_moves", maxHalf).
		Msg("Game created")
	return s, nil
}

// Decide plays one half-move for the side to move using the policy. It returns false when
// that side had no legal move; the session is then over with the opponent as winner.
func (e *Engine) Decide(s *Session) (core.Move, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.over {
		return core.Move{}, false, core.ErrGameOver
	}

	side := s.toMove
	m, ok := e.policy.Choose(side, s.board, s.trajectory)
	if !ok {
		e.finish(s, side.Opponent(), events.ReasonNoMoves)
		return core.Move{}, false, nil
	}

	e.play(s, side, m, false)
	return m, true, nil
}

// SubmitMove plays a move chosen outside the policy. Rejected moves leave the session
// untouched. Accepted moves are recorded like policy decisions so they are settled too.
func (e *Engine) SubmitMove(s *Session, side core.Side, m core.Move) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.over {
		return core.WrapMoveError(side, m, core.ErrGameOver)
	}
	if side != s.toMove {
		e.bus.Publish(events.NewMoveRejectedEvent(s.ID, side, m, "not your turn"))
		return core.WrapMoveError(side, m, core.ErrNotYourTurn)
	}

	legal := rules.LegalMoves(s.board, side)
	if !slices.Contains(legal, m) {
		e.bus.Publish(events.NewMoveRejectedEvent(s.ID, side, m, "illegal"))
		return &IllegalMoveError{Side: side, Move: m, Legal: legal}
	}

	key := qtable.EncodeState(s.board, side)
	e.store.EnsureState(side, key, qtable.ActionKeysOf(legal))
	s.trajectory.Append(side, key, qtable.ActionKeyOf(m))

	e.play(s, side, m, true)
	return nil
}

// LegalMoves returns the moves available to the side to move, or nil once the game is over
func (e *Engine) LegalMoves(s *Session) []core.Move {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.over {
		return nil
	}
	return rules.LegalMoves(s.board, s.toMove)
}

// Preview returns the stored values for the side to move in the current position, seeding
// unseen actions. Nil once the game is over.
func (e *Engine) Preview(s *Session) []qtable.ActionValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.over {
		return nil
	}
	legal := rules.LegalMoves(s.board, s.toMove)
	if len(legal) == 0 {
		return nil
	}
	return e.store.Prepare(s.toMove, qtable.EncodeState(s.board, s.toMove), qtable.ActionKeysOf(legal))
}

// IsTerminal reports whether the game is over and who won. The winner is NoSide for a draw.
func (e *Engine) IsTerminal(s *Session) (bool, core.Side) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.over, s.winner
}

// Settle applies the outcome to the value table and persists it. It must be called once per
// finished session. A persistence failure is returned after the in-memory update is kept, and
// the session still counts as settled.
func (e *Engine) Settle(ctx context.Context, s *Session) (experience.SettleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.over {
		return experience.SettleResult{}, core.ErrNotTerminal
	}
	if s.settled {
		return experience.SettleResult{}, core.ErrAlreadySettled
	}

	res, err := e.updater.Settle(ctx, s.trajectory, s.winner)
	s.settled = true

	if terr := s.machine.TransitionTo(states.PhaseSettled, "outcome applied"); terr != nil {
		e.logger.Error().Err(terr).Str("game_id", s.ID).Msg("Failed to mark game settled")
	}
	e.bus.Publish(events.NewTableSettledEvent(s.ID, s.winner, res.Applied, res.Skipped, res.Persisted, err))

	if err != nil {
		e.logger.Warn().Err(err).Str("game_id", s.ID).Msg("Value table not persisted")
		return res, err
	}
	return res, nil
}

// play applies m for side and evaluates the new position. Caller holds s.mu.
func (e *Engine) play(s *Session, side core.Side, m core.Move, human bool) {
	capture := s.board.IsOccupiedBy(m.To, side.Opponent())
	s.board = s.board.Apply(m, side)
	s.halfMoves++
	s.history = append(s.history, Ply{Side: side, Move: m, Capture: capture, Human: human})
	s.toMove = side.Opponent()

	e.bus.Publish(events.NewMoveExecutedEvent(s.ID, side, m, capture, s.halfMoves, human))
	e.evaluate(s)
}

// evaluate runs the terminal check for the side about to move. Caller holds s.mu.
func (e *Engine) evaluate(s *Session) {
	if over, winner := e.checker.CheckTerminal(s.board, s.toMove); over {
		reason := events.ReasonNoMoves
		if onWinningRank(s.board, winner) {
			reason = events.ReasonWinningRank
		}
		e.finish(s, winner, reason)
		return
	}
	if s.halfMoves >= s.maxHalf {
		e.logger.Warn().
			Str("game_id", s.ID).
			Int("half_moves", s.halfMoves).
			Msg("Move ceiling reached, ending game as a draw")
		e.finish(s, core.NoSide, events.ReasonMoveLimit)
	}
}

// finish closes the session. Caller holds s.mu.
func (e *Engine) finish(s *Session, winner core.Side, reason string) {
	s.over = true
	s.winner = winner
	s.reason = reason

	s.gameCtx.Finished = true
	s.gameCtx.Winner = winner
	s.gameCtx.HalfMoves = s.halfMoves
	if err := s.machine.TransitionTo(states.PhaseOver, reason); err != nil {
		e.logger.Error().Err(err).Str("game_id", s.ID).Msg("Failed to mark game over")
	}

	e.bus.Publish(events.NewGameEndedEvent(s.ID, winner, s.halfMoves, s.gameCtx.Elapsed(), reason))
}

func onWinningRank(b *core.Board, side core.Side) bool {
	rank := side.WinningRank(b.Grid())
	for _, p := range b.Placements() {
		if p.Side == side && p.Cell.Rank == rank {
			return true
		}
	}
	return false
}
