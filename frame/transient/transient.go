// Package transient implements the per-frame transient storage overlay
// (EIP-1153, spec component D). There is no direct teacher analogue —
// 0xPolygon-polygon-edge predates EIP-1153 — so this package is grounded
// on the teacher's map-based AccessList pattern
// (state/runtime/access_list_test.go) generalized from a set to a
// value-carrying map, and on spec.md §4.D's parent-chain read/memoize
// rule.
package transient

import (
	"github.com/0xEdge/frame-evm/types"
	"github.com/0xEdge/frame-evm/word"
)

// Key identifies a transient storage slot.
type Key struct {
	Address types.Address
	Slot    types.Hash
}

// Storage is a single frame's transient-storage overlay. A frame with no
// parent is the root of a transaction; Get on the root returns zero for
// any key it hasn't written itself.
type Storage struct {
	values map[Key]word.Word
	parent *Storage
}

// New creates an empty transient storage overlay linked to parent (nil for
// the root frame).
func New(parent *Storage) *Storage {
	return &Storage{parent: parent}
}

// Get resolves a key against this frame, then its ancestors. Per spec.md
// §4.D / §9, once a read has traversed to an ancestor the resolved value —
// including the implicit zero when no ancestor has the key — is memoized
// into this frame's own map. This deliberately mirrors the source's
// observed (if surprising) behavior: it turns a "pure" read into a local
// write.
func (s *Storage) Get(addr types.Address, slot types.Hash) word.Word {
	key := Key{Address: addr, Slot: slot}

	if v, ok := s.values[key]; ok {
		return v
	}

	v := s.resolveFromAncestor(key)
	s.set(key, v)

	return v
}

func (s *Storage) resolveFromAncestor(key Key) word.Word {
	if s.parent == nil {
		return word.Word{}
	}

	return s.parent.Get(key.Address, key.Slot)
}

// Set writes a value into this frame only; ancestors are untouched until
// CommitToParent is called.
func (s *Storage) Set(addr types.Address, slot types.Hash, val word.Word) {
	s.set(Key{Address: addr, Slot: slot}, val)
}

func (s *Storage) set(key Key, val word.Word) {
	if s.values == nil {
		s.values = make(map[Key]word.Word)
	}

	s.values[key] = val
}

// CommitToParent overwrites the parent's entries with this frame's entries,
// last-write-wins by child into parent (spec.md §4.D, §4.J). The caller
// must only invoke this on frame success — per spec.md §9, commit is a
// caller decision, not something the state machine enforces.
func (s *Storage) CommitToParent() {
	if s.parent == nil {
		return
	}

	for k, v := range s.values {
		s.parent.set(k, v)
	}
}
