package document

import "fmt"

// State identifies where a document sits in the publishing lifecycle.
type State string

const (
	StateCreated          State = "CREATED"
	StateResearching      State = "RESEARCHING"
	StateDrafting         State = "DRAFTING"
	StateFactChecking     State = "FACT_CHECKING"
	StateEditing          State = "EDITING"
	StateCritiquing       State = "CRITIQUING"
	StatePublished        State = "PUBLISHED"
	StateRejected         State = "REJECTED"
	StateAwaitingApproval State = "AWAITING_APPROVAL"
)

// validStates is the set of recognized lifecycle states.
var validStates = map[State]bool{
	StateCreated:          true,
	StateResearching:      true,
	StateDrafting:         true,
	StateFactChecking:     true,
	StateEditing:          true,
	StateCritiquing:       true,
	StatePublished:        true,
	StateRejected:         true,
	StateAwaitingApproval: true,
}

// nextState maps each state on the main publishing path to its successor.
var nextState = map[State]State{
	StateCreated:      StateResearching,
	StateResearching:  StateDrafting,
	StateDrafting:     StateFactChecking,
	StateFactChecking: StateEditing,
	StateEditing:      StateCritiquing,
	StateCritiquing:   StatePublished,
}

// revisionEdge maps review states back to the phase that reworks their input.
var revisionEdge = map[State]State{
	StateFactChecking: StateDrafting,
	StateCritiquing:   StateEditing,
}

// Valid reports whether s is a recognized state.
func (s State) Valid() bool {
	return validStates[s]
}

// Terminal reports whether s ends the lifecycle. Terminal documents never
// transition again.
func (s State) Terminal() bool {
	return s == StatePublished || s == StateRejected
}

// Next returns the successor on the main publishing path, if any.
func (s State) Next() (State, bool) {
	n, ok := nextState[s]
	return n, ok
}

// CanTransition reports whether the move s -> to is legal: the next state on
// the main path, a revision edge, or REJECTED / AWAITING_APPROVAL from any
// non-terminal state. Exits from AWAITING_APPROVAL depend on the suspended
// state and are resolved by Document.Transition.
func (s State) CanTransition(to State) bool {
	if s.Terminal() || !to.Valid() || to == s {
		return false
	}
	if to == StateRejected {
		return true
	}
	if to == StateAwaitingApproval {
		return s != StateAwaitingApproval
	}
	if n, ok := nextState[s]; ok && n == to {
		return true
	}
	if r, ok := revisionEdge[s]; ok && r == to {
		return true
	}
	return false
}

// InvalidTransitionError reports an attempted illegal state transition.
type InvalidTransitionError struct {
	From State
	To   State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("document: invalid transition %s -> %s", e.From, e.To)
}
