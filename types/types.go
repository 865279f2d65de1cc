// Package types holds the fixed-width identifiers shared by every layer of
// the message-frame core: 20-byte addresses and 32-byte hashes/words.
package types

import (
	"fmt"
	"strings"

	"github.com/0xEdge/frame-evm/helper/hex"
)

const (
	HashLength    = 32
	AddressLength = 20
)

var (
	ZeroAddress = Address{}
	ZeroHash    = Hash{}
)

// Hash is a 32-byte identifier: a keccak digest, a storage slot, or a
// 256-bit word serialized big-endian.
type Hash [HashLength]byte

// Address is a 20-byte account identifier.
type Address [AddressLength]byte

func minInt(i, j int) int {
	if i < j {
		return i
	}

	return j
}

func BytesToHash(b []byte) Hash {
	var h Hash

	size := minInt(len(b), HashLength)
	copy(h[HashLength-size:], b[len(b)-size:])

	return h
}

func BytesToAddress(b []byte) Address {
	var a Address

	size := minInt(len(b), AddressLength)
	copy(a[AddressLength-size:], b[len(b)-size:])

	return a
}

func StringToHash(str string) Hash {
	return BytesToHash(stringToBytes(str))
}

func StringToAddress(str string) Address {
	return BytesToAddress(stringToBytes(str))
}

func stringToBytes(str string) []byte {
	str = strings.TrimPrefix(str, "0x")
	if len(str)%2 == 1 {
		str = "0" + str
	}

	b, _ := hex.DecodeString(str)

	return b
}

func (h Hash) Bytes() []byte { return h[:] }
func (h Hash) String() string {
	return hex.EncodeToHex(h[:])
}

func (a Address) Bytes() []byte { return a[:] }
func (a Address) String() string {
	return hex.EncodeToHex(a[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(input []byte) error {
	*h = BytesToHash(stringToBytes(string(input)))
	return nil
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(input []byte) error {
	buf := stringToBytes(string(input))
	if len(buf) != AddressLength {
		return fmt.Errorf("types: address must be %d bytes, got %d", AddressLength, len(buf))
	}

	*a = BytesToAddress(buf)

	return nil
}
