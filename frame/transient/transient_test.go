package transient

import (
	"testing"

	"github.com/0xEdge/frame-evm/types"
	"github.com/0xEdge/frame-evm/word"
	"github.com/stretchr/testify/assert"
)

var addrA = types.StringToAddress("0xaa")
var slot5 = types.StringToHash("0x05")

func TestReadWithoutWritesIsZero(t *testing.T) {
	t.Parallel()

	s := New(nil)
	got := s.Get(addrA, slot5)
	assert.True(t, got.IsZero())
}

func TestSetThenGet(t *testing.T) {
	t.Parallel()

	s := New(nil)
	v := word.Zero()
	v.SetUint64(7)
	s.Set(addrA, slot5, *v)

	assert.Equal(t, *v, s.Get(addrA, slot5))
}

// TestParentChainReadAndCommit exercises S5: parent has (A,5)->v1; child
// sets (A,5)->v2; without commit parent still reads v1; after commit
// parent reads v2.
func TestParentChainReadAndCommit(t *testing.T) {
	t.Parallel()

	parent := New(nil)
	v1 := word.Zero()
	v1.SetUint64(1)
	parent.Set(addrA, slot5, *v1)

	child := New(parent)
	v2 := word.Zero()
	v2.SetUint64(2)
	child.Set(addrA, slot5, *v2)

	assert.Equal(t, *v1, parent.Get(addrA, slot5), "parent unaffected before commit")

	child.CommitToParent()
	assert.Equal(t, *v2, parent.Get(addrA, slot5), "parent overwritten after commit")
}

func TestChildReadsThroughToAncestorAndMemoizes(t *testing.T) {
	t.Parallel()

	parent := New(nil)
	v1 := word.Zero()
	v1.SetUint64(9)
	parent.Set(addrA, slot5, *v1)

	child := New(parent)
	got := child.Get(addrA, slot5)
	assert.Equal(t, *v1, got)

	// mutate the parent afterwards; the child's memoized copy must not
	// change, matching the source's memoize-on-read behavior.
	v3 := word.Zero()
	v3.SetUint64(3)
	parent.Set(addrA, slot5, *v3)

	assert.Equal(t, *v1, child.Get(addrA, slot5))
}

func TestUncommittedChildDoesNotLeak(t *testing.T) {
	t.Parallel()

	parent := New(nil)
	child := New(parent)

	v := word.Zero()
	v.SetUint64(4)
	child.Set(addrA, slot5, *v)

	got := parent.Get(addrA, slot5)
	assert.True(t, got.IsZero())
}
