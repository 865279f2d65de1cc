// Package word defines the 256-bit value type shared by every layer of the
// message-frame core: stack slots, storage values, and memory words are all
// a Word. It wraps github.com/holiman/uint256, the arbitrary-precision
// replacement the go-ethereum family uses in place of math/big.Int on
// interpreter hot paths (grounded on the uint256 dependency declared by
// both bnb-chain-bsc and 420Integrated-go-420coin's go.mod).
package word

import (
	"github.com/0xEdge/frame-evm/types"
	"github.com/holiman/uint256"
)

// Word is a 256-bit unsigned integer, usable interchangeably as a stack
// slot, a storage value, or a 32-byte big-endian byte string.
type Word = uint256.Int

// Zero returns the zero word. Provided so callers don't need to reach for
// uint256 directly just to get a zero value.
func Zero() *Word {
	return new(Word)
}

// FromHash converts a Hash (already 32-byte big-endian) into a Word.
func FromHash(h types.Hash) *Word {
	var w Word
	w.SetBytes32(h[:])

	return &w
}

// ToHash renders a Word as a 32-byte big-endian Hash.
func ToHash(w *Word) types.Hash {
	return types.Hash(w.Bytes32())
}

// FromAddress left-pads a 20-byte address into a Word, matching how the EVM
// stack represents addresses pushed by ADDRESS/CALLER/ORIGIN et al.
func FromAddress(a types.Address) *Word {
	var w Word
	w.SetBytes(a[:])

	return &w
}

// ToAddress truncates a Word to its low 20 bytes, matching how the
// interpreter recovers an address pushed onto the stack.
func ToAddress(w *Word) types.Address {
	b := w.Bytes32()

	return types.BytesToAddress(b[12:])
}
