// Package frame implements the message-frame execution context: the
// mutable state one call/create invocation carries through its lifetime
// (operand and return stacks, memory, transient storage, warm sets,
// substate, and the lifecycle FSM), plus the Builder that constructs one
// and the Merge function that folds a completed child's effects into its
// parent.
//
// Grounded on the teacher's runtime.Contract /
// state/runtime/evm/state.go's "state" struct — the closest analogue to a
// message frame in 0xPolygon-polygon-edge — generalized from a flat
// single-section interpreter loop to the full component set spec.md
// names, and on the original Besu MessageFrame
// (_examples/original_source) for the fields the distillation compressed.
package frame

import (
	"github.com/0xEdge/frame-evm/frame/environment"
	"github.com/0xEdge/frame-evm/frame/haltreason"
	"github.com/0xEdge/frame-evm/frame/lifecycle"
	"github.com/0xEdge/frame-evm/frame/memory"
	"github.com/0xEdge/frame-evm/frame/returnstack"
	"github.com/0xEdge/frame-evm/frame/stack"
	"github.com/0xEdge/frame-evm/frame/substate"
	"github.com/0xEdge/frame-evm/frame/transient"
	"github.com/0xEdge/frame-evm/frame/warmset"
	"github.com/0xEdge/frame-evm/types"
	"github.com/0xEdge/frame-evm/word"
	metrics "github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"
)

// frameMetrics is the metrics namespace, matching the teacher's
// txPoolMetrics-style constant in txpool/txpool.go.
const frameMetrics = "frame"

// MaxCallDepth documents the recursion bound the interpreter is expected
// to enforce (SUPPLEMENTED FEATURES #7). The frame core does not check it
// itself — spec.md is explicit that the core "does not schedule across
// frames" — but a Depth() past this value is the interpreter's cue to
// halt with an exceptional condition of its own choosing.
const MaxCallDepth = 1024

// Type distinguishes a top-level/nested contract creation from a plain
// message call (SUPPLEMENTED FEATURES #1, spec.md §3).
type Type int

const (
	MessageCall Type = iota
	ContractCreation
)

func (t Type) String() string {
	if t == ContractCreation {
		return "CONTRACT_CREATION"
	}

	return "MESSAGE_CALL"
}

// Frame is one call/create invocation's complete execution context.
type Frame struct {
	id      string
	typ     Type
	pc      int
	section int

	stack       *stack.Stack
	returnStack *returnstack.ReturnStack
	memory      *memory.Memory
	transient   *transient.Storage
	warmSet     *warmset.WarmSet
	substate    *substate.Substate
	lifecycle   *lifecycle.Machine

	env *environment.Environment

	gasRemaining uint64
	isStatic     bool
	depth        int

	outputData []byte
	returnData []byte

	exceptionalHaltReason haltreason.Reason
	reverted              bool
	revertReason          []byte

	lastUpdatedMemory  *MemoryUpdate
	lastUpdatedStorage *StorageUpdate
	currentOperation   string

	parent *Frame
	// completer fires only from NotifyCompletion, never automatically off
	// the lifecycle machine itself (Build wires lifecycle.New(nil)) — the
	// interpreter must call NotifyCompletion once it observes a terminal
	// state.
	completer func(*Frame)
	notified  bool

	logger hclog.Logger
	tracer Tracer
}

// MemoryUpdate records the most recent explicit memory write, for tracer
// consumption (spec component K).
type MemoryUpdate struct {
	Offset uint64
	Data   []byte
}

// StorageUpdate records the most recent explicit storage-adjacent write
// (transient-storage set), for tracer consumption.
type StorageUpdate struct {
	Address types.Address
	Slot    word.Word
	Value   word.Word
}

func (f *Frame) ID() string                            { return f.id }
func (f *Frame) Type() Type                            { return f.typ }
func (f *Frame) Depth() int                            { return f.depth }
func (f *Frame) IsStatic() bool                        { return f.isStatic }
func (f *Frame) Environment() *environment.Environment { return f.env }
func (f *Frame) State() lifecycle.State                { return f.lifecycle.State() }
func (f *Frame) IsTerminal() bool                      { return f.lifecycle.IsTerminal() }

// PC and Section report the frame's current position; CallFunction sets
// PC to target.EntryPoint-1 (and JumpFunction sets it to -1) in
// anticipation of the interpreter's own pc++ step (spec.md §4.H).
func (f *Frame) PC() int      { return f.pc }
func (f *Frame) Section() int { return f.section }

func (f *Frame) SetPC(pc int)           { f.pc = pc }
func (f *Frame) SetSection(section int) { f.section = section }

func (f *Frame) OutputData() []byte { return f.outputData }
func (f *Frame) ReturnData() []byte { return f.returnData }

func (f *Frame) SetOutputData(data []byte) { f.outputData = data }
func (f *Frame) SetReturnData(data []byte) { f.returnData = data }

// ExceptionalHaltReason and RevertReason are the two optional pieces of
// context that, together with the terminal FSM state, fully describe a
// frame's outcome (spec.md §7, "User-visible behavior").
func (f *Frame) ExceptionalHaltReason() haltreason.Reason { return f.exceptionalHaltReason }
func (f *Frame) RevertReason() []byte                     { return f.revertReason }

func (f *Frame) Parent() *Frame { return f.parent }

// SetState drives the frame's lifecycle machine, logs the transition the
// way the teacher logs pool state changes, and increments the relevant
// metric on reaching ExceptionalHalt or Revert.
func (f *Frame) SetState(next lifecycle.State) error {
	prev := f.lifecycle.State()

	if err := f.lifecycle.SetState(next); err != nil {
		return err
	}

	f.logger.Trace("state transition", "frame", f.id, "from", prev.String(), "to", next.String())

	switch next {
	case lifecycle.CodeExecuting:
		if prev == lifecycle.NotStarted {
			f.tracer.CaptureFrameStart(f)
		}
	case lifecycle.ExceptionalHalt:
		metrics.IncrCounter([]string{frameMetrics, "exceptional_halt"}, 1)
	case lifecycle.Revert:
		metrics.IncrCounter([]string{frameMetrics, "revert"}, 1)
	}

	if next.IsTerminal() {
		f.tracer.CaptureFrameEnd(f)
	}

	return nil
}

// Halt transitions the frame to ExceptionalHalt, recording reason for
// later inspection.
func (f *Frame) Halt(reason haltreason.Reason) error {
	f.exceptionalHaltReason = reason

	return f.SetState(lifecycle.ExceptionalHalt)
}

// StartRevert transitions the frame to Revert, recording reason (the
// bytes an opcode's REVERT operand carried).
func (f *Frame) StartRevert(reason []byte) error {
	f.reverted = true
	f.revertReason = reason

	return f.SetState(lifecycle.Revert)
}

// NotifyCompletion invokes the completer callback supplied at
// construction, once, the first time the frame is observed in a terminal
// state (spec.md §6, "Completion: notifyCompletion (invokes completer)";
// invariant 9, "completer is invoked exactly once"). Calling it before the
// frame is terminal, or calling it again afterward, is a no-op.
func (f *Frame) NotifyCompletion() {
	if !f.lifecycle.IsTerminal() || f.notified {
		return
	}

	f.notified = true

	if f.completer != nil {
		f.completer(f)
	}
}
