package frame

import (
	"math/big"

	"github.com/0xEdge/frame-evm/frame/codesection"
	"github.com/0xEdge/frame-evm/frame/haltreason"
	"github.com/0xEdge/frame-evm/frame/returnstack"
	"github.com/0xEdge/frame-evm/frame/substate"
	"github.com/0xEdge/frame-evm/types"
	"github.com/0xEdge/frame-evm/word"
	metrics "github.com/armon/go-metrics"
)

// resetHooks clears the tracer observation hooks. Per spec.md §4.K it must
// be called at the start of each opcode, before the opcode's own writes
// (if any) re-populate them.
func (f *Frame) resetHooks() {
	f.lastUpdatedMemory = nil
	f.lastUpdatedStorage = nil
}

// BeginOperation clears the tracer hooks and records the opcode name the
// interpreter is about to execute, matching the teacher's per-instruction
// bookkeeping in state/runtime/evm/state.go.
func (f *Frame) BeginOperation(name string) {
	f.resetHooks()
	f.currentOperation = name
}

// EndOperation notifies the tracer that the current opcode has finished,
// so it can inspect LastUpdatedMemory/LastUpdatedStorage before the next
// BeginOperation resets them.
func (f *Frame) EndOperation() {
	f.tracer.CaptureOperation(f)
}

func (f *Frame) CurrentOperation() string           { return f.currentOperation }
func (f *Frame) LastUpdatedMemory() *MemoryUpdate   { return f.lastUpdatedMemory }
func (f *Frame) LastUpdatedStorage() *StorageUpdate { return f.lastUpdatedStorage }

// --- Stack ---

func (f *Frame) StackPush(val word.Word) error           { return f.stack.Push(val) }
func (f *Frame) StackPop() (word.Word, error)            { return f.stack.Pop() }
func (f *Frame) StackPeek(offset int) (word.Word, error) { return f.stack.Peek(offset) }
func (f *Frame) StackSet(offset int, val word.Word) error {
	return f.stack.Set(offset, val)
}
func (f *Frame) StackBulkPop(n int) ([]word.Word, error) { return f.stack.BulkPop(n) }
func (f *Frame) StackSize() int                          { return f.stack.Size() }
func (f *Frame) StackMaxSize() int                       { return f.stack.MaxSize() }

// --- Return stack ---

func (f *Frame) ReturnStackPush(section, returnPC, stackHeight int) {
	f.returnStack.Push(returnstack.Item{Section: section, ReturnPC: returnPC, StackHeight: stackHeight})
}

func (f *Frame) ReturnStackPop() (section, returnPC, stackHeight int, ok bool) {
	item, err := f.returnStack.Pop()
	if err != nil {
		return 0, 0, 0, false
	}

	return item.Section, item.ReturnPC, item.StackHeight, true
}

func (f *Frame) ReturnStackPeek() (section, returnPC, stackHeight int, ok bool) {
	item, err := f.returnStack.Peek()
	if err != nil {
		return 0, 0, 0, false
	}

	return item.Section, item.ReturnPC, item.StackHeight, true
}

func (f *Frame) ReturnStackSize() int     { return f.returnStack.Size() }
func (f *Frame) ReturnStackIsEmpty() bool { return f.returnStack.IsEmpty() }

// --- Memory ---

// ReadMemory returns a defensive copy of [offset, offset+length).
func (f *Frame) ReadMemory(offset, length uint64) []byte {
	return f.memory.GetBytes(offset, length)
}

// WriteMemory writes data at offset, marking the write as an explicit
// tracer-visible update per spec.md §4.K.
func (f *Frame) WriteMemory(offset uint64, data []byte) {
	f.memory.SetBytes(offset, uint64(len(data)), data)
	f.lastUpdatedMemory = &MemoryUpdate{Offset: offset, Data: data}
}

// WriteMemoryInternal performs the same write without setting the tracer
// hook, for bookkeeping the interpreter doesn't want surfaced as an
// opcode-level effect (spec.md §4.K, "internal writes ... do not" set the
// hook).
func (f *Frame) WriteMemoryInternal(offset uint64, data []byte) {
	f.memory.SetBytes(offset, uint64(len(data)), data)
}

func (f *Frame) MemoryByteSize() uint64 { return f.memory.GetActiveBytes() }
func (f *Frame) MemoryWordSize() uint64 { return f.memory.GetActiveWords() }

func (f *Frame) CalculateNewMemoryWords(offset, length uint64) uint64 {
	return f.memory.CalculateNewActiveWords(offset, length)
}

func (f *Frame) EnsureMemoryCapacity(offset, length uint64) {
	f.memory.EnsureCapacityForBytes(offset, length)
}

func (f *Frame) CopyMemory(dst, src, length uint64) {
	f.memory.Copy(dst, src, length)
}

// --- Gas ---

func (f *Frame) Gas() uint64 { return f.gasRemaining }

func (f *Frame) SetGas(amount uint64) { f.gasRemaining = amount }

// DecrementGas returns the new remaining amount as a signed value; a
// negative result signals the caller should treat this as
// InsufficientGas (spec.md §6, "decrement returns the new value;
// overdraft does not itself raise"). gasRemaining itself is left
// unmodified on overdraft — the interpreter halts the frame rather than
// letting it run with an invalid balance.
func (f *Frame) DecrementGas(amount uint64) int64 {
	next := int64(f.gasRemaining) - int64(amount)
	if next < 0 {
		return next
	}

	f.gasRemaining = uint64(next)

	return next
}

func (f *Frame) IncrementGas(amount uint64) uint64 {
	f.gasRemaining += amount

	return f.gasRemaining
}

func (f *Frame) ClearGas() { f.gasRemaining = 0 }

// --- Control flow ---
//
// These wrap frame/codesection's free functions, passing the frame itself
// as the StackState. They return the halt reason directly rather than an
// error (spec.md §7, "control-flow operations return an optional halt
// reason rather than raising"); the interpreter is responsible for
// performing the FSM transition when the reason isn't haltreason.None.

func (f *Frame) CallFunction(targetSection int) (codesection.CallResult, haltreason.Reason) {
	res, reason := codesection.CallFunction(f.env.Code(), f, f.section, f.pc, targetSection)
	if reason == haltreason.None {
		f.section = res.Section
		f.pc = res.PC
	}

	return res, reason
}

func (f *Frame) JumpFunction(targetSection int) (codesection.CallResult, haltreason.Reason) {
	res, reason := codesection.JumpFunction(f.env.Code(), f, targetSection)
	if reason == haltreason.None {
		f.section = res.Section
		f.pc = res.PC
	}

	return res, reason
}

func (f *Frame) ReturnFunction(currentSectionOutputs int) (codesection.ReturnResult, haltreason.Reason) {
	res, reason := codesection.ReturnFunction(f, currentSectionOutputs)
	if reason == haltreason.None && !res.Done {
		f.section = res.Section
		f.pc = res.PC
	}

	return res, reason
}

// --- Warm sets ---

// WarmUpAddress reports whether addr was already warm (in this frame or
// an ancestor) and increments the "cold access upgraded to warm" metric
// when it wasn't.
func (f *Frame) WarmUpAddress(addr types.Address) bool {
	wasWarm := f.warmSet.WarmUpAddress(addr)
	if !wasWarm {
		metrics.IncrCounter([]string{frameMetrics, "warm_up_address"}, 1)
	}

	return wasWarm
}

func (f *Frame) WarmUpStorage(addr types.Address, slot types.Hash) bool {
	wasWarm := f.warmSet.WarmUpStorage(addr, slot)
	if !wasWarm {
		metrics.IncrCounter([]string{frameMetrics, "warm_up_storage"}, 1)
	}

	return wasWarm
}

// --- Transient storage ---

func (f *Frame) TransientGet(addr types.Address, slot types.Hash) word.Word {
	return f.transient.Get(addr, slot)
}

func (f *Frame) TransientSet(addr types.Address, slot types.Hash, val word.Word) {
	f.transient.Set(addr, slot, val)
	f.lastUpdatedStorage = &StorageUpdate{Address: addr, Slot: *word.FromHash(slot), Value: val}
}

func (f *Frame) TransientCommitToParent() {
	f.transient.CommitToParent()
}

// --- Substate ---

func (f *Frame) AddLog(l substate.Log)     { f.substate.AddLog(l) }
func (f *Frame) AddLogs(ls []substate.Log) { f.substate.AddLogs(ls) }
func (f *Frame) Logs() []substate.Log      { return f.substate.Logs() }

func (f *Frame) IncrementGasRefund(delta uint64) { f.substate.IncrementGasRefund(delta) }
func (f *Frame) ClearGasRefund()                 { f.substate.ClearGasRefund() }
func (f *Frame) GasRefund() uint64               { return f.substate.GasRefund() }

func (f *Frame) AddSelfDestruct(addr types.Address) { f.substate.AddSelfDestruct(addr) }
func (f *Frame) AddCreate(addr types.Address)       { f.substate.AddCreate(addr) }
func (f *Frame) SelfDestructs() []types.Address     { return f.substate.SelfDestructs() }
func (f *Frame) Creates() []types.Address           { return f.substate.Creates() }

func (f *Frame) AddRefund(addr types.Address, amount *big.Int) {
	f.substate.AddRefund(addr, amount)
}

func (f *Frame) Refunds() map[types.Address]*big.Int { return f.substate.Refunds() }

func (f *Frame) WasCreatedInTransaction(addr types.Address) bool {
	return f.substate.WasCreatedInTransaction(addr)
}
