package states

import "fmt"

// GamePhase represents the lifecycle phase of a session
type GamePhase int

const (
	// PhaseCreated - session allocated, board not yet in play
	PhaseCreated GamePhase = iota

	// PhaseRunning - moves are being played
	PhaseRunning

	// PhaseOver - a terminal condition was reached, outcome not yet applied to the table
	PhaseOver

	// PhaseSettled - outcome applied to the table; the session is closed
	PhaseSettled
)

// String returns the string representation of a GamePhase
func (p GamePhase) String() string {
	switch p {
	case PhaseCreated:
		return "Created"
	case PhaseRunning:
		return "Running"
	case PhaseOver:
		return "Over"
	case PhaseSettled:
		return "Settled"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// IsTerminal returns true once no more moves can be played
func (p GamePhase) IsTerminal() bool {
	return p == PhaseOver || p == PhaseSettled
}

// CanReceiveMoves returns true if the session accepts moves in this phase
func (p GamePhase) CanReceiveMoves() bool {
	return p == PhaseRunning
}

// AllowedTransitions returns the valid phases this phase can transition to
func (p GamePhase) AllowedTransitions() []GamePhase {
	switch p {
	case PhaseCreated:
		return []GamePhase{PhaseRunning}
	case PhaseRunning:
		return []GamePhase{PhaseOver}
	case PhaseOver:
		return []GamePhase{PhaseSettled}
	default:
		return []GamePhase{}
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p GamePhase) CanTransitionTo(target GamePhase) bool {
	for _, phase := range p.AllowedTransitions() {
		if phase == target {
			return true
		}
	}
	return false
}

// ParsePhase converts a string to a GamePhase
func ParsePhase(s string) (GamePhase, error) {
	switch s {
	case "Created":
		return PhaseCreated, nil
	case "Running":
		return PhaseRunning, nil
	case "Over":
		return PhaseOver, nil
	case "Settled":
		return PhaseSettled, nil
	default:
		return PhaseCreated, fmt.Errorf("unknown phase %q", s)
	}
}
