// Package sensor reads the A/B break-beam sensors and turns the raw edge
// stream into pass detections via a finite state machine.
package sensor

import (
	"fmt"
	"sync"
	"time"
)

// State is a node in the break-beam pass-detection state machine.
type State int

const (
	StateIdle State = iota
	StateBActive
	StateBThenA
	StateAOnlyFromB
	StateAOnlyError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBActive:
		return "b_active"
	case StateBThenA:
		return "b_then_a"
	case StateAOnlyFromB:
		return "a_only_from_b"
	case StateAOnlyError:
		return "a_only_error"
	default:
		return "unknown"
	}
}

// Edge identifies which sensor transitioned and in which direction.
type Edge int

const (
	EdgeARise Edge = iota
	EdgeAFall
	EdgeBRise
	EdgeBFall
)

func (e Edge) String() string {
	switch e {
	case EdgeARise:
		return "A_ON"
	case EdgeAFall:
		return "A_OFF"
	case EdgeBRise:
		return "B_ON"
	case EdgeBFall:
		return "B_OFF"
	default:
		return "unknown"
	}
}

// Outcome is emitted by the state machine whenever a transition resolves
// into a decision the capture pipeline must act on.
type Outcome int

const (
	OutcomeNone    Outcome = iota
	OutcomeSave            // full left-to-right pass detected
	OutcomeDiscard         // partial / reversed / invariant-violating pass, no save
)

// Transition records one step of state machine history for diagnostics.
type Transition struct {
	From State
	To   State
	Edge Edge
	At   time.Time
}

var validTransitions = map[State][]State{
	StateIdle:       {StateBActive, StateAOnlyError},
	StateBActive:    {StateBThenA, StateIdle},
	StateBThenA:     {StateAOnlyFromB, StateBActive},
	StateAOnlyFromB: {StateIdle, StateBThenA},
	StateAOnlyError: {StateIdle},
}

// StateMachine implements spec §4.3's edge-event pass detector table
// exactly: IDLE -> B_ACTIVE -> B_THEN_A -> A_ONLY_FROM_B -> IDLE on a
// clean B up, A up, B down, A down sequence, with a recoverable
// backtrack from B_THEN_A back to B_ACTIVE on a premature A down, an
// invariant-violation path from IDLE straight to A_ONLY_ERROR if A
// fires with B never having risen, and a timeout back to IDLE if a pass
// stalls midway.
type StateMachine struct {
	mu      sync.Mutex
	current State
	history []Transition
	passStart time.Time
	timeout time.Duration
}

// NewStateMachine builds a state machine that resets to idle if a pass
// does not complete within timeout.
func NewStateMachine(timeout time.Duration) *StateMachine {
	return &StateMachine{
		current: StateIdle,
		timeout: timeout,
	}
}

func (m *StateMachine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *StateMachine) History() []Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Transition, len(m.history))
	copy(out, m.history)
	return out
}

// Apply feeds one raw edge into the machine and returns the resulting
// outcome, per spec §4.3's transition table.
func (m *StateMachine) Apply(edge Edge, at time.Time) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, outcome := nextState(m.current, edge)
	if next == m.current {
		return OutcomeNone, nil
	}
	if !transitionAllowed(m.current, next) {
		return OutcomeNone, fmt.Errorf("sensor: illegal transition %s -> %s on %s", m.current, next, edge)
	}

	m.history = append(m.history, Transition{From: m.current, To: next, Edge: edge, At: at})
	if m.current == StateIdle && next == StateBActive {
		m.passStart = at
	}
	m.current = next
	return outcome, nil
}

// PassStart returns the timestamp the current (or most recently
// completed) pass began at.
func (m *StateMachine) PassStart() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.passStart
}

// nextState implements spec §4.3's transition table verbatim: every
// case below is one row of the table.
//
//	IDLE          + B up   -> B_ACTIVE       (NONE)
//	IDLE          + A up   -> A_ONLY_ERROR   (DISCARD, invariant violation)
//	B_ACTIVE      + A up   -> B_THEN_A       (NONE)
//	B_ACTIVE      + B down -> IDLE           (DISCARD, return from left)
//	B_THEN_A      + B down -> A_ONLY_FROM_B  (NONE)
//	B_THEN_A      + A down -> B_ACTIVE       (NONE, recoverable backtrack)
//	A_ONLY_FROM_B + A down -> IDLE           (SAVE)
//	A_ONLY_FROM_B + B up   -> B_THEN_A       (NONE)
//	A_ONLY_ERROR  + A down -> IDLE           (NONE)
func nextState(cur State, edge Edge) (State, Outcome) {
	switch cur {
	case StateIdle:
		switch edge {
		case EdgeBRise:
			return StateBActive, OutcomeNone
		case EdgeARise:
			return StateAOnlyError, OutcomeDiscard
		}
	case StateBActive:
		switch edge {
		case EdgeARise:
			return StateBThenA, OutcomeNone
		case EdgeBFall:
			return StateIdle, OutcomeDiscard
		}
	case StateBThenA:
		switch edge {
		case EdgeBFall:
			return StateAOnlyFromB, OutcomeNone
		case EdgeAFall:
			// A fell before B cleared the left beam: the object has not
			// fully traversed, so the pass resumes rather than saving.
			return StateBActive, OutcomeNone
		}
	case StateAOnlyFromB:
		switch edge {
		case EdgeAFall:
			return StateIdle, OutcomeSave
		case EdgeBRise:
			return StateBThenA, OutcomeNone
		}
	case StateAOnlyError:
		if edge == EdgeAFall {
			return StateIdle, OutcomeNone
		}
	}
	return cur, OutcomeNone
}

func transitionAllowed(from, to State) bool {
	if from == to {
		return true
	}
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CheckTimeout resets a stalled pass back to idle if it has been sitting
// in a non-idle state longer than the configured timeout, returning true
// if a reset occurred.
func (m *StateMachine) CheckTimeout(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timeout <= 0 || m.current == StateIdle {
		return false
	}
	if now.Sub(m.passStart) < m.timeout {
		return false
	}
	m.history = append(m.history, Transition{From: m.current, To: StateIdle, At: now})
	m.current = StateIdle
	return true
}
