// Package codesection models structured (EOF) code and the CALLF / JUMPF /
// RETF control-flow operations that move execution between code sections
// (spec component H). Legacy code is represented as a single section 0,
// matching spec.md §3.
//
// The teacher predates EOF, so there's no direct file this generalizes;
// it's grounded on the shape of the teacher's own control-flow primitives
// in 0xPolygon-polygon-edge/state/runtime/evm/state.go (ip/section fields,
// stack-size checks before executing an instruction) generalized from a
// single flat program counter to a (section, pc) pair with an explicit
// return-stack, and on spec.md §4.H's operation contracts directly.
package codesection

import "github.com/0xEdge/frame-evm/frame/haltreason"

// Section describes one code section's calling convention: where it
// starts, how many stack items it consumes and produces, and how much
// additional stack depth it may use.
type Section struct {
	EntryPoint     int
	Inputs         int
	Outputs        int
	MaxStackHeight int
}

// Code is a sequence of code sections. Legacy code has exactly one,
// section 0.
type Code struct {
	Sections []Section
	valid    bool
}

// New wraps sections as valid code. Structural EOF validation (code that
// fails container/type-section checks) is an opcode-dispatch concern
// (spec.md §1, out of scope); callers that already know their code is
// invalid should use Invalid instead.
func New(sections ...Section) *Code {
	return &Code{Sections: sections, valid: true}
}

// Invalid returns an EOF container that failed validation: IsValid returns
// false and GetCodeSection always misses, matching spec.md §4.I's
// "code.isValid() ? code.section(0).entryPoint : 0" construction rule.
func Invalid() *Code {
	return &Code{valid: false}
}

// IsValid reports whether entry-point lookup on this code is safe.
func (c *Code) IsValid() bool {
	return c.valid && len(c.Sections) > 0
}

// GetCodeSection returns section i, or false if it's out of range or the
// code itself is invalid.
func (c *Code) GetCodeSection(i int) (Section, bool) {
	if !c.valid || i < 0 || i >= len(c.Sections) {
		return Section{}, false
	}

	return c.Sections[i], true
}

// StackState is the minimal view over the operand and return stacks that
// the control-flow operations need. frame.Frame satisfies it by exposing
// its own stack/return-stack.
type StackState interface {
	StackSize() int
	StackMaxSize() int
	ReturnStackPeek() (section, returnPC, stackHeight int, ok bool)
	ReturnStackPush(section, returnPC, stackHeight int)
	ReturnStackPop() (section, returnPC, stackHeight int, ok bool)
	ReturnStackIsEmpty() bool
}

// CallResult carries the new (section, pc) target on success.
type CallResult struct {
	Section int
	PC      int
}

// CallFunction implements CALLF (spec.md §4.H). currentSection and pc are
// the caller's position; pc is the offset of the CALLF instruction itself
// — the pushed return address is pc+2 to account for the two-byte
// immediate, and the caller's own pc+=1 post-instruction step.
func CallFunction(code *Code, s StackState, currentSection, pc, targetSection int) (CallResult, haltreason.Reason) {
	target, ok := code.GetCodeSection(targetSection)
	if !ok {
		return CallResult{}, haltreason.CodeSectionMissing
	}

	if s.StackSize()+target.MaxStackHeight > s.StackMaxSize() {
		return CallResult{}, haltreason.TooManyStackItems
	}

	if s.StackSize() < target.Inputs {
		return CallResult{}, haltreason.TooFewInputsForCodeSection
	}

	s.ReturnStackPush(currentSection, pc+2, s.StackSize()-target.Inputs)

	return CallResult{Section: targetSection, PC: target.EntryPoint - 1}, haltreason.None
}

// JumpFunction implements JUMPF: a tail call that does not touch the
// return stack.
func JumpFunction(code *Code, s StackState, targetSection int) (CallResult, haltreason.Reason) {
	target, ok := code.GetCodeSection(targetSection)
	if !ok {
		return CallResult{}, haltreason.CodeSectionMissing
	}

	_, _, stackHeight, ok := s.ReturnStackPeek()
	if !ok {
		return CallResult{}, haltreason.CodeSectionMissing
	}

	if s.StackSize() != stackHeight+target.Inputs {
		return CallResult{}, haltreason.JumpfStackMismatch
	}

	return CallResult{Section: targetSection, PC: -1}, haltreason.None
}

// ReturnResult reports the outcome of RETF: either the return-stack is now
// empty (Done, section's output is the frame's final output) or execution
// resumes at (Section, PC) in the caller.
type ReturnResult struct {
	Done    bool
	Section int
	PC      int
}

// ReturnFunction implements RETF.
func ReturnFunction(s StackState, currentSectionOutputs int) (ReturnResult, haltreason.Reason) {
	section, pc, stackHeight, ok := s.ReturnStackPop()
	if !ok {
		return ReturnResult{}, haltreason.CodeSectionMissing
	}

	if s.StackSize() != stackHeight+currentSectionOutputs {
		return ReturnResult{}, haltreason.IncorrectCodeSectionReturnOutputs
	}

	if s.ReturnStackIsEmpty() {
		return ReturnResult{Done: true}, haltreason.None
	}

	return ReturnResult{Section: section, PC: pc}, haltreason.None
}
