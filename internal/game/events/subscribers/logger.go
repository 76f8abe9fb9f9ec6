package subscribers

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/events"
)

// LoggerSubscriber logs events to structured logs. Register HandleEvent on a bus.
type LoggerSubscriber struct {
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	// If no filter is set, interested in all events
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent logs event unless the filter excludes its type
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	if !ls.InterestedIn(event.Type()) {
		return
	}

	eventLogger := ls.logger.With().
		Str("event_type", event.Type()).
		Str("game_id", event.GameID()).
		Time("timestamp", event.Timestamp()).
		Logger()

	// Create the base event log
	var logEvent *zerolog.Event
	switch ls.logLevel {
	case zerolog.DebugLevel:
		logEvent = eventLogger.Debug()
	case zerolog.InfoLevel:
		logEvent = eventLogger.Info()
	case zerolog.WarnLevel:
		logEvent = eventLogger.Warn()
	case zerolog.ErrorLevel:
		logEvent = eventLogger.Error()
	default:
		logEvent = eventLogger.Info()
	}

	switch e := event.(type) {
	case *events.GameStartedEvent:
		logEvent.
			Int("files", e.Files).
			Int("ranks", e.Ranks).
			Str("to_move", e.ToMove.Name())

	case *events.GameEndedEvent:
		logEvent.
			Str("winner", e.Winner.Name()).
			Int("half_moves", e.HalfMoves).
			Dur("duration", e.Duration).
			Str("reason", e.Reason)

	case *events.MoveExecutedEvent:
		logEvent.
			Str("side", e.Side.Name()).
			Str("move", e.Move.String()).
			Bool("capture", e.Capture).
			Int("half_move", e.HalfMove).
			Bool("human", e.Human)

	case *events.MoveRejectedEvent:
		logEvent.
			Str("side", e.Side.Name()).
			Str("move", e.Move.String()).
			Str("reason", e.Reason)

	case *events.TableSettledEvent:
		logEvent.
			Str("winner", e.Winner.Name()).
			Int("applied", e.Applied).
			Int("skipped", e.Skipped).
			Bool("persisted", e.Persisted).
			AnErr("persist_error", e.Err)

	case *events.StateTransitionEvent:
		logEvent.
			Str("from", e.FromPhase).
			Str("to", e.ToPhase).
			Str("reason", e.Reason)
	}

	// In dev mode, also log the full event as JSON
	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	// Send the log
	logEvent.Msg("Game event")
}
