// Package warmset tracks EIP-2929 warm addresses and warm (address, slot)
// pairs, with parent-frame inheritance (spec component E). It generalizes
// the teacher's access-list journal entries in
// 0xPolygon-polygon-edge/state/runtime/journal.go
// (AccessListAddAccountChange / AccessListAddSlotChange) from a
// revert-by-journal design to the spec's revert-by-discard design, and
// uses github.com/deckarep/golang-set/v2 for the underlying sets — the
// generic successor to golang-set that bnb-chain-bsc's go.mod pulls in for
// exactly this purpose (self-destruct/create/warm-address bookkeeping).
package warmset

import (
	"github.com/0xEdge/frame-evm/types"
	mapset "github.com/deckarep/golang-set/v2"
)

// StorageKey identifies a single warm storage slot.
type StorageKey struct {
	Address types.Address
	Slot    types.Hash
}

// WarmSet holds the addresses and storage slots warmed by one frame, plus
// a link to the parent frame's WarmSet for inheritance lookups.
type WarmSet struct {
	addresses mapset.Set[types.Address]
	storage   mapset.Set[StorageKey]
	parent    *WarmSet
}

// New creates an empty warm set linked to parent (nil for the root frame).
func New(parent *WarmSet) *WarmSet {
	return &WarmSet{
		addresses: mapset.NewThreadUnsafeSet[types.Address](),
		storage:   mapset.NewThreadUnsafeSet[StorageKey](),
		parent:    parent,
	}
}

// WarmUpAddress marks addr warm in this frame and reports whether it was
// already warm anywhere along the parent chain (the EIP-2929 sense of
// "already warm", used to price the access).
func (w *WarmSet) WarmUpAddress(addr types.Address) bool {
	if w.addresses.Contains(addr) {
		return true
	}

	w.addresses.Add(addr)

	return w.parent.isWarmAddress(addr)
}

func (w *WarmSet) isWarmAddress(addr types.Address) bool {
	if w == nil {
		return false
	}

	if w.addresses.Contains(addr) {
		return true
	}

	return w.parent.isWarmAddress(addr)
}

// WarmUpStorage is WarmUpAddress's analogue for (address, slot) pairs.
func (w *WarmSet) WarmUpStorage(addr types.Address, slot types.Hash) bool {
	key := StorageKey{Address: addr, Slot: slot}
	if w.storage.Contains(key) {
		return true
	}

	w.storage.Add(key)

	return w.parent.isWarmStorage(key)
}

func (w *WarmSet) isWarmStorage(key StorageKey) bool {
	if w == nil {
		return false
	}

	if w.storage.Contains(key) {
		return true
	}

	return w.parent.isWarmStorage(key)
}

// SeedAddress marks addr warm without consulting or reporting on ancestry —
// used at frame construction to pre-warm the sender, the contract, and
// the transaction's access-list addresses (spec.md §4.I).
func (w *WarmSet) SeedAddress(addr types.Address) {
	w.addresses.Add(addr)
}

// SeedStorage marks (addr, slot) warm without consulting ancestry.
func (w *WarmSet) SeedStorage(addr types.Address, slot types.Hash) {
	w.storage.Add(StorageKey{Address: addr, Slot: slot})
}

// MergeInto unions this frame's warm sets into parent. Idempotent and
// commutative (spec.md testable property 10): merging the same child twice
// leaves parent unchanged after the first merge.
func (w *WarmSet) MergeInto(parent *WarmSet) {
	if parent == nil {
		return
	}

	parent.addresses = parent.addresses.Union(w.addresses)
	parent.storage = parent.storage.Union(w.storage)
}

// Addresses returns the addresses warmed locally in this frame (not
// including ancestors), for inspection/testing.
func (w *WarmSet) Addresses() []types.Address {
	return w.addresses.ToSlice()
}

// Storage returns the storage keys warmed locally in this frame.
func (w *WarmSet) Storage() []StorageKey {
	return w.storage.ToSlice()
}
