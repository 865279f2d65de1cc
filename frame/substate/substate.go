// Package substate implements the accumulators a frame gathers during
// execution and either merges into its parent on success or discards on
// revert: logs, the gas refund counter, the self-destruct and create sets,
// and pending balance refunds (spec component F). Grounded on the
// teacher's Contract/ExecutionResult fields in
// 0xPolygon-polygon-edge/state/runtime/runtime.go and its journal-entry
// pattern in state/runtime/journal.go, and on the original Besu
// MessageFrame's log/refund/selfDestruct/create accumulators
// (_examples/original_source/evm/.../MessageFrame.java).
package substate

import (
	"math/big"

	"github.com/0xEdge/frame-evm/types"
	"github.com/0xEdge/frame-evm/word"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/umbracle/fastrlp"
)

// Log is a single emitted event: recipient address, indexed topics, and
// opaque data — the fully-formed shape the original MessageFrame conveys,
// rather than raw undecoded bytes.
type Log struct {
	Address types.Address
	Topics  []word.Word
	Data    []byte
}

// MarshalRLPWith renders the log the way a transaction receipt would,
// using the teacher's declared fastrlp dependency (umbracle/fastrlp,
// already required by 0xPolygon-polygon-edge/types for header/tx
// encoding).
func (l Log) MarshalRLPWith(a *fastrlp.Arena) *fastrlp.Value {
	v := a.NewArray()
	v.Set(a.NewCopyBytes(l.Address.Bytes()))

	topics := a.NewArray()
	for _, t := range l.Topics {
		b := t.Bytes32()
		topics.Set(a.NewCopyBytes(b[:]))
	}

	v.Set(topics)
	v.Set(a.NewCopyBytes(l.Data))

	return v
}

// Substate accumulates the side effects of one frame's execution.
type Substate struct {
	logs          []Log
	gasRefund     uint64
	selfDestructs mapset.Set[types.Address]
	creates       mapset.Set[types.Address]
	refunds       map[types.Address]*big.Int
	parent        *Substate
}

// New creates an empty substate linked to parent (nil for the root frame),
// used for WasCreatedInTransaction's ancestor walk.
func New(parent *Substate) *Substate {
	return &Substate{
		selfDestructs: mapset.NewThreadUnsafeSet[types.Address](),
		creates:       mapset.NewThreadUnsafeSet[types.Address](),
		refunds:       make(map[types.Address]*big.Int),
		parent:        parent,
	}
}

func (s *Substate) AddLog(l Log)     { s.logs = append(s.logs, l) }
func (s *Substate) AddLogs(ls []Log) { s.logs = append(s.logs, ls...) }
func (s *Substate) Logs() []Log      { return s.logs }

func (s *Substate) IncrementGasRefund(delta uint64) { s.gasRefund += delta }
func (s *Substate) ClearGasRefund()                 { s.gasRefund = 0 }
func (s *Substate) GasRefund() uint64               { return s.gasRefund }

// AddSelfDestruct and AddCreate are idempotent (spec.md §4.F). A frame
// never records both for the same address (spec.md invariant 5); enforcing
// the exclusion is the caller's responsibility since only the caller knows
// which operation is in flight.
func (s *Substate) AddSelfDestruct(addr types.Address) { s.selfDestructs.Add(addr) }
func (s *Substate) AddCreate(addr types.Address)       { s.creates.Add(addr) }

func (s *Substate) SelfDestructs() []types.Address { return s.selfDestructs.ToSlice() }
func (s *Substate) Creates() []types.Address       { return s.creates.ToSlice() }

// AddRefund is last-write-wins per address.
func (s *Substate) AddRefund(addr types.Address, amount *big.Int) {
	s.refunds[addr] = amount
}

func (s *Substate) Refunds() map[types.Address]*big.Int { return s.refunds }

// WasCreatedInTransaction reports whether addr was recorded as created by
// this frame or any ancestor.
func (s *Substate) WasCreatedInTransaction(addr types.Address) bool {
	if s == nil {
		return false
	}

	if s.creates.Contains(addr) {
		return true
	}

	return s.parent.WasCreatedInTransaction(addr)
}

// MergeInto folds this frame's substate into parent on success, per
// spec.md §4.J: logs appended in order, self-destructs/creates unioned,
// refunds merged (last-write-wins), gas refund accumulated.
func (s *Substate) MergeInto(parent *Substate) {
	if parent == nil {
		return
	}

	parent.logs = append(parent.logs, s.logs...)
	parent.selfDestructs = parent.selfDestructs.Union(s.selfDestructs)
	parent.creates = parent.creates.Union(s.creates)
	parent.gasRefund += s.gasRefund

	for addr, amount := range s.refunds {
		parent.refunds[addr] = amount
	}
}
