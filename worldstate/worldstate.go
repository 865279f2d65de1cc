// Package worldstate declares the narrow read interface the frame
// aggregate needs from a host's account database (spec.md §6,
// "World-updater interface consumed by the core"). It is consumed only
// during frame construction, to pre-warm access-list storage keys — the
// core never persists state, so this package has no writer, no trie, and
// no storage backend of its own.
//
// Grounded on 0xPolygon-polygon-edge/state/runtime/runtime.go's Host
// interface, narrowed to the two methods the builder actually calls
// (Get/GetStorageValue) rather than the teacher's full
// balance/nonce/code/log/selfdestruct surface, which belongs to the
// interpreter, not the frame core.
package worldstate

import (
	"github.com/0xEdge/frame-evm/types"
	"github.com/0xEdge/frame-evm/word"
)

// Account is the narrow per-account view the builder needs to pre-warm
// storage slots named in an access list.
type Account interface {
	GetStorageValue(slot word.Word) word.Word
}

// Reader is the host's account lookup, implemented by whatever
// world-state/trie layer a node embeds this module in.
type Reader interface {
	Get(address types.Address) (Account, bool)
}
