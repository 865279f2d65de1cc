// Package memory implements the frame's lazily-grown byte-addressable
// memory region (spec component C). It generalizes the teacher's
// state.memory / extendByteSlice / checkMemory trio in
// 0xPolygon-polygon-edge/state/runtime/evm/state.go into a standalone,
// gas-agnostic buffer: this package only tracks bytes and active-word
// accounting, leaving memory-expansion gas pricing to the (out of scope)
// opcode dispatch loop.
package memory

// Memory is a byte-addressable region that starts empty and grows in
// 32-byte-aligned steps as offsets are touched. Reads beyond the active
// region return zero-filled slices; the region is logically infinite.
type Memory struct {
	store []byte
}

// New returns an empty memory region.
func New() *Memory {
	return &Memory{}
}

// CalculateNewActiveWords is pure: it returns the active word count the
// region would have if [offset, offset+length) were touched, without
// mutating anything.
func (m *Memory) CalculateNewActiveWords(offset, length uint64) uint64 {
	if length == 0 {
		return m.GetActiveWords()
	}

	need := numWords(offset + length)
	if have := m.GetActiveWords(); have > need {
		return have
	}

	return need
}

func numWords(sizeBytes uint64) uint64 {
	return (sizeBytes + 31) / 32
}

// EnsureCapacityForBytes grows the underlying buffer and the active-word
// counter to cover [offset, offset+length). Growth is monotonic: shrinking
// is never performed within a frame's life (spec.md invariant 6).
func (m *Memory) EnsureCapacityForBytes(offset, length uint64) {
	if length == 0 {
		return
	}

	need := numWords(offset+length) * 32
	if uint64(len(m.store)) >= need {
		return
	}

	m.store = extend(m.store, int(need))
}

func extend(b []byte, needLen int) []byte {
	b = b[:cap(b)]
	if n := needLen - cap(b); n > 0 {
		b = append(b, make([]byte, n)...)
	}

	return b[:needLen]
}

// GetActiveBytes returns the size, in bytes, of the active region.
func (m *Memory) GetActiveBytes() uint64 {
	return uint64(len(m.store))
}

// GetActiveWords returns the size, in 32-byte words, of the active region.
func (m *Memory) GetActiveWords() uint64 {
	return uint64(len(m.store)) / 32
}

// SetByte writes a single byte at offset, growing the region if needed.
func (m *Memory) SetByte(offset uint64, val byte) {
	m.EnsureCapacityForBytes(offset, 1)
	m.store[offset] = val
}

// SetBytes writes src at [offset, offset+length). If src is shorter than
// length it is right-padded with zeros; if longer, it is truncated.
func (m *Memory) SetBytes(offset, length uint64, src []byte) {
	m.EnsureCapacityForBytes(offset, length)
	dst := m.store[offset : offset+length]

	n := copy(dst, src)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// SetBytesFrom writes length bytes from src starting at srcOffset into
// memory at offset, right-padding with zeros past the end of src (the
// CALLDATACOPY/CODECOPY/RETURNDATACOPY read pattern).
func (m *Memory) SetBytesFrom(offset, srcOffset, length uint64, src []byte) {
	m.EnsureCapacityForBytes(offset, length)
	dst := m.store[offset : offset+length]

	if srcOffset >= uint64(len(src)) {
		for i := range dst {
			dst[i] = 0
		}

		return
	}

	n := copy(dst, src[srcOffset:])
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// SetBytesRightAligned writes src into [offset, offset+length), left-padding
// with zeros when src is shorter than length (the PUSH-immediate /
// big-endian-word write pattern, as opposed to SetBytes's right-pad).
func (m *Memory) SetBytesRightAligned(offset, length uint64, src []byte) {
	m.EnsureCapacityForBytes(offset, length)
	dst := m.store[offset : offset+length]

	pad := len(dst) - len(src)
	if pad < 0 {
		pad = 0
		src = src[len(src)-len(dst):]
	}

	for i := 0; i < pad; i++ {
		dst[i] = 0
	}

	copy(dst[pad:], src)
}

// GetMutableBytes returns a slice aliasing the underlying store, growing it
// first if necessary. Mutations through the returned slice are visible to
// subsequent reads.
func (m *Memory) GetMutableBytes(offset, length uint64) []byte {
	m.EnsureCapacityForBytes(offset, length)

	return m.store[offset : offset+length]
}

// GetBytes returns a defensive copy of [offset, offset+length), zero-filled
// past the active region.
func (m *Memory) GetBytes(offset, length uint64) []byte {
	out := make([]byte, length)

	active := m.GetActiveBytes()
	if offset >= active {
		return out
	}

	end := offset + length
	if end > active {
		end = active
	}

	copy(out, m.store[offset:end])

	return out
}

// Copy copies length bytes from src to dst within the region. Overlapping
// ranges behave as if copied through an intermediate buffer (spec.md
// testable property 4), matching the semantics of Go's builtin copy over a
// single backing array plus an explicit staging buffer for safety when the
// ranges overlap.
func (m *Memory) Copy(dst, src, length uint64) {
	if length == 0 {
		return
	}

	end := dst
	if src+length > end {
		end = src + length
	}

	if dst+length > end {
		end = dst + length
	}

	m.EnsureCapacityForBytes(0, end)

	staging := make([]byte, length)
	copy(staging, m.store[src:src+length])
	copy(m.store[dst:dst+length], staging)
}
