package codesection

import (
	"testing"

	"github.com/0xEdge/frame-evm/frame/haltreason"
	"github.com/stretchr/testify/assert"
)

// fakeStack is a minimal StackState double so this package's tests don't
// need to import the frame aggregate (which would import codesection).
type fakeStack struct {
	size    int
	maxSize int
	items   []returnItem
}

type returnItem struct {
	section, pc, height int
}

func newFakeStack(size int) *fakeStack {
	return &fakeStack{size: size, maxSize: 1024, items: []returnItem{{0, 0, 0}}}
}

func (f *fakeStack) StackSize() int    { return f.size }
func (f *fakeStack) StackMaxSize() int { return f.maxSize }

func (f *fakeStack) ReturnStackPeek() (int, int, int, bool) {
	if len(f.items) == 0 {
		return 0, 0, 0, false
	}

	top := f.items[len(f.items)-1]

	return top.section, top.pc, top.height, true
}

func (f *fakeStack) ReturnStackPush(section, pc, height int) {
	f.items = append(f.items, returnItem{section, pc, height})
}

func (f *fakeStack) ReturnStackPop() (int, int, int, bool) {
	if len(f.items) == 0 {
		return 0, 0, 0, false
	}

	top := f.items[len(f.items)-1]
	f.items = f.items[:len(f.items)-1]

	return top.section, top.pc, top.height, true
}

func (f *fakeStack) ReturnStackIsEmpty() bool { return len(f.items) == 0 }

// TestCallfRetfRoundTrip is scenario S2 from spec.md §8.
func TestCallfRetfRoundTrip(t *testing.T) {
	t.Parallel()

	code := New(
		Section{EntryPoint: 0, Inputs: 0, Outputs: 0, MaxStackHeight: 2},
		Section{EntryPoint: 16, Inputs: 1, Outputs: 1, MaxStackHeight: 1},
	)

	s := newFakeStack(1) // one word pushed already

	res, reason := CallFunction(code, s, 0, 0, 1)
	assert.Equal(t, haltreason.None, reason)
	assert.Equal(t, 1, res.Section)
	assert.Equal(t, 15, res.PC) // entry 16 - 1

	section, pc, height, ok := s.ReturnStackPeek()
	assert.True(t, ok)
	assert.Equal(t, 0, section)
	assert.Equal(t, 2, pc)
	assert.Equal(t, 0, height)

	s.size = 1 // section 1 pushed its single output word

	ret, reason := ReturnFunction(s, code.Sections[1].Outputs)
	assert.Equal(t, haltreason.None, reason)
	assert.False(t, ret.Done)
	assert.Equal(t, 0, ret.Section)
	assert.Equal(t, 2, ret.PC)
	assert.Equal(t, 1, s.Size())
}

func (f *fakeStack) Size() int { return len(f.items) }

// TestJumpfStackMismatch is scenario S3.
func TestJumpfStackMismatch(t *testing.T) {
	t.Parallel()

	code := New(
		Section{EntryPoint: 0, Inputs: 0, Outputs: 0, MaxStackHeight: 4},
		Section{EntryPoint: 10, Inputs: 2, Outputs: 0, MaxStackHeight: 0},
	)

	s := newFakeStack(3) // returnStackTop.stackHeight = 0, target.inputs = 2 -> mismatch

	_, reason := JumpFunction(code, s, 1)
	assert.Equal(t, haltreason.JumpfStackMismatch, reason)
}

func TestCallfCodeSectionMissing(t *testing.T) {
	t.Parallel()

	code := New(Section{EntryPoint: 0, Inputs: 0, Outputs: 0, MaxStackHeight: 0})
	s := newFakeStack(0)

	_, reason := CallFunction(code, s, 0, 0, 5)
	assert.Equal(t, haltreason.CodeSectionMissing, reason)
}

func TestCallfTooManyStackItems(t *testing.T) {
	t.Parallel()

	code := New(
		Section{EntryPoint: 0, Inputs: 0, Outputs: 0, MaxStackHeight: 0},
		Section{EntryPoint: 1, Inputs: 0, Outputs: 0, MaxStackHeight: 1020},
	)
	s := newFakeStack(10)

	_, reason := CallFunction(code, s, 0, 0, 1)
	assert.Equal(t, haltreason.TooManyStackItems, reason)
}

func TestCallfTooFewInputs(t *testing.T) {
	t.Parallel()

	code := New(
		Section{EntryPoint: 0, Inputs: 0, Outputs: 0, MaxStackHeight: 0},
		Section{EntryPoint: 1, Inputs: 3, Outputs: 0, MaxStackHeight: 0},
	)
	s := newFakeStack(1)

	_, reason := CallFunction(code, s, 0, 0, 1)
	assert.Equal(t, haltreason.TooFewInputsForCodeSection, reason)
}

func TestRetfIncorrectOutputs(t *testing.T) {
	t.Parallel()

	s := newFakeStack(5)
	s.ReturnStackPush(0, 4, 2) // expects stack size == 2 + outputs

	_, reason := ReturnFunction(s, 1) // 5 != 2+1
	assert.Equal(t, haltreason.IncorrectCodeSectionReturnOutputs, reason)
}

func TestRetfEmptiesReturnStackToDone(t *testing.T) {
	t.Parallel()

	s := newFakeStack(0) // sentinel only, stackHeight 0, outputs 0

	ret, reason := ReturnFunction(s, 0)
	assert.Equal(t, haltreason.None, reason)
	assert.True(t, ret.Done)
	assert.True(t, s.ReturnStackIsEmpty())
}

func TestCodeIsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, New(Section{}).IsValid())
	assert.False(t, Invalid().IsValid())

	_, ok := Invalid().GetCodeSection(0)
	assert.False(t, ok)
}
