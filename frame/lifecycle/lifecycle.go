// Package lifecycle implements the 8-state finite state machine governing
// a frame's execution (spec component G). There is no single teacher file
// this is grounded on — 0xPolygon-polygon-edge tracks completion with a
// plain bool (state.stop) plus an error — so this package generalizes that
// bool/error pair into the full state diagram spec.md §4.G draws, using
// the teacher's sentinel-error style (errOutOfGas, errStackUnderflow, ...
// in state/runtime/evm/state.go) for the transition-rejection error.
package lifecycle

import (
	"errors"
	"fmt"
)

// State is one node of the frame lifecycle diagram (spec.md §4.G).
type State int

const (
	NotStarted State = iota
	CodeExecuting
	CodeSuccess
	CodeSuspended
	ExceptionalHalt
	Revert
	CompletedFailed
	CompletedSuccess
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "NOT_STARTED"
	case CodeExecuting:
		return "CODE_EXECUTING"
	case CodeSuccess:
		return "CODE_SUCCESS"
	case CodeSuspended:
		return "CODE_SUSPENDED"
	case ExceptionalHalt:
		return "EXCEPTIONAL_HALT"
	case Revert:
		return "REVERT"
	case CompletedFailed:
		return "COMPLETED_FAILED"
	case CompletedSuccess:
		return "COMPLETED_SUCCESS"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// IsTerminal reports whether s is one of the two states that trigger the
// completer.
func (s State) IsTerminal() bool {
	return s == CompletedSuccess || s == CompletedFailed
}

// ErrIllegalTransition is returned by SetState when the requested edge is
// not in the diagram spec.md §4.G draws.
var ErrIllegalTransition = errors.New("lifecycle: illegal state transition")

// ErrAlreadyTerminal is returned when SetState is called again after a
// terminal state has already been reached.
var ErrAlreadyTerminal = errors.New("lifecycle: frame already terminal")

var legalEdges = map[State]map[State]bool{
	NotStarted:      {CodeExecuting: true, ExceptionalHalt: true},
	CodeExecuting:   {CodeSuccess: true, CodeSuspended: true, ExceptionalHalt: true, Revert: true},
	CodeSuspended:   {CodeExecuting: true},
	CodeSuccess:     {CompletedSuccess: true},
	ExceptionalHalt: {CompletedFailed: true},
	Revert:          {CompletedFailed: true},
}

// Machine drives one frame through the lifecycle diagram and invokes its
// completer exactly once on reaching a terminal state (spec.md invariant 7).
type Machine struct {
	state     State
	completer func(State)
	completed bool
}

// New creates a machine in NotStarted, wired to completer. completer may be
// nil.
func New(completer func(State)) *Machine {
	return &Machine{state: NotStarted, completer: completer}
}

func (m *Machine) State() State { return m.state }

// SetState validates the requested transition against the diagram and, on
// reaching a terminal state, invokes the completer exactly once.
func (m *Machine) SetState(next State) error {
	if m.completed {
		return ErrAlreadyTerminal
	}

	if !legalEdges[m.state][next] {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.state, next)
	}

	m.state = next

	if next.IsTerminal() {
		m.completed = true

		if m.completer != nil {
			m.completer(next)
		}
	}

	return nil
}

// IsTerminal reports whether the machine has reached a terminal state.
func (m *Machine) IsTerminal() bool {
	return m.completed
}
