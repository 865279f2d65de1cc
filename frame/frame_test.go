package frame

import (
	"math/big"
	"testing"

	"github.com/0xEdge/frame-evm/frame/codesection"
	"github.com/0xEdge/frame-evm/frame/haltreason"
	"github.com/0xEdge/frame-evm/frame/lifecycle"
	"github.com/0xEdge/frame-evm/frame/substate"
	"github.com/0xEdge/frame-evm/types"
	"github.com/0xEdge/frame-evm/word"
	"github.com/0xEdge/frame-evm/worldstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	addrRecipient = types.StringToAddress("0x01")
	addrSender    = types.StringToAddress("0x02")
	addrOrigin    = types.StringToAddress("0x03")
)

type fakeBlockValues struct{}

func (fakeBlockValues) Number() uint64                 { return 1 }
func (fakeBlockValues) Timestamp() uint64               { return 1 }
func (fakeBlockValues) Difficulty() *big.Int            { return big.NewInt(0) }
func (fakeBlockValues) BaseFee() *big.Int               { return big.NewInt(0) }
func (fakeBlockValues) GasLimit() uint64                { return 30_000_000 }
func (fakeBlockValues) MixHashOrPrevRandao() types.Hash { return types.ZeroHash }

type emptyWorld struct{}

func (emptyWorld) Get(types.Address) (worldstate.Account, bool) { return nil, false }

func newTestBuilder(gas uint64) *Builder {
	return NewBuilder(MessageCall).
		WithFrameStack(NewStack()).
		WithWorldState(emptyWorld{}).
		WithInitialGas(gas).
		WithRecipient(addrRecipient).
		WithOriginator(addrOrigin).
		WithContract(addrRecipient).
		WithSender(addrSender).
		WithGasPrice(big.NewInt(1)).
		WithValue(big.NewInt(0)).
		WithApparentValue(big.NewInt(0)).
		WithCode(codesection.New(codesection.Section{EntryPoint: 0, Inputs: 0, Outputs: 0, MaxStackHeight: 4})).
		WithBlockValues(fakeBlockValues{}).
		WithDepth(0).
		WithCompleter(func(*Frame) {}).
		WithMiningBeneficiary(types.ZeroAddress).
		WithBlockHashLookup(func(int64) types.Hash { return types.ZeroHash })
}

// TestSimpleMemoryWriteRead is scenario S1.
func TestSimpleMemoryWriteRead(t *testing.T) {
	t.Parallel()

	f, err := newTestBuilder(100000).Build()
	require.NoError(t, err)

	data := make([]byte, 32)
	data[31] = 0x01

	f.WriteMemory(0, data)
	got := f.ReadMemory(0, 32)

	assert.Equal(t, data, got)
	assert.Equal(t, uint64(32), f.MemoryByteSize())
	assert.Equal(t, uint64(1), f.MemoryWordSize())
	assert.Equal(t, &MemoryUpdate{Offset: 0, Data: data}, f.LastUpdatedMemory())
}

func TestBuildMissingFieldsReturnsMultierror(t *testing.T) {
	t.Parallel()

	_, err := NewBuilder(MessageCall).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recipient")
	assert.Contains(t, err.Error(), "completer")
}

func TestBuildSeedsPCFromCodeEntryPoint(t *testing.T) {
	t.Parallel()

	code := codesection.New(codesection.Section{EntryPoint: 5, Inputs: 0, Outputs: 0, MaxStackHeight: 0})
	f, err := newTestBuilder(1000).WithCode(code).Build()
	require.NoError(t, err)
	assert.Equal(t, 5, f.PC())
}

func TestBuildSeedsWarmSetWithSenderAndContract(t *testing.T) {
	t.Parallel()

	f, err := newTestBuilder(1000).Build()
	require.NoError(t, err)

	assert.True(t, f.WarmUpAddress(addrSender))
	assert.True(t, f.WarmUpAddress(addrRecipient)) // newTestBuilder sets contract == recipient
}

// TestBuildSeedsContractNotRecipientWhenTheyDiffer covers the
// DELEGATECALL/CALLCODE shape spec.md §4.E exists for: the frame executes
// contract's code against recipient's storage, so it's contract — the
// address whose code is running — that must come pre-warmed, not
// recipient (MessageFrame.java:331-332 warms sender and contract, never
// recipient).
func TestBuildSeedsContractNotRecipientWhenTheyDiffer(t *testing.T) {
	t.Parallel()

	addrContract := types.StringToAddress("0x05")

	f, err := newTestBuilder(1000).WithContract(addrContract).Build()
	require.NoError(t, err)

	assert.True(t, f.WarmUpAddress(addrContract))
	assert.False(t, f.WarmUpAddress(addrRecipient))
}

// TestFSMReachesTerminalExactlyOnce is scenario/invariant 9.
func TestFSMReachesTerminalExactlyOnce(t *testing.T) {
	t.Parallel()

	calls := 0

	f, err := NewBuilder(MessageCall).
		WithFrameStack(NewStack()).
		WithWorldState(emptyWorld{}).
		WithInitialGas(1000).
		WithRecipient(addrRecipient).
		WithOriginator(addrOrigin).
		WithContract(addrRecipient).
		WithSender(addrSender).
		WithGasPrice(big.NewInt(1)).
		WithValue(big.NewInt(0)).
		WithApparentValue(big.NewInt(0)).
		WithCode(codesection.New(codesection.Section{})).
		WithBlockValues(fakeBlockValues{}).
		WithDepth(0).
		WithCompleter(func(*Frame) { calls++ }).
		WithMiningBeneficiary(types.ZeroAddress).
		WithBlockHashLookup(func(int64) types.Hash { return types.ZeroHash }).
		Build()
	require.NoError(t, err)

	require.NoError(t, f.SetState(lifecycle.CodeExecuting))
	require.NoError(t, f.SetState(lifecycle.CodeSuccess))
	require.NoError(t, f.SetState(lifecycle.CompletedSuccess))

	f.NotifyCompletion()
	f.NotifyCompletion()

	assert.Equal(t, 1, calls)
}

// TestChildMergeOnSuccess exercises S4/S5-style parent/child interaction
// end to end through the frame aggregate rather than the leaf packages
// directly.
func TestChildMergeOnSuccess(t *testing.T) {
	t.Parallel()

	frames := NewStack()

	parent, err := NewBuilder(MessageCall).
		WithFrameStack(frames).
		WithWorldState(emptyWorld{}).
		WithInitialGas(100000).
		WithRecipient(addrRecipient).
		WithOriginator(addrOrigin).
		WithContract(addrRecipient).
		WithSender(addrSender).
		WithGasPrice(big.NewInt(1)).
		WithValue(big.NewInt(0)).
		WithApparentValue(big.NewInt(0)).
		WithCode(codesection.New(codesection.Section{})).
		WithBlockValues(fakeBlockValues{}).
		WithDepth(0).
		WithCompleter(func(*Frame) {}).
		WithMiningBeneficiary(types.ZeroAddress).
		WithBlockHashLookup(func(int64) types.Hash { return types.ZeroHash }).
		Build()
	require.NoError(t, err)

	slot := types.StringToHash("0x05")
	parent.TransientSet(addrRecipient, slot, *word.FromHash(types.StringToHash("0x01")))

	child, err := NewBuilder(MessageCall).
		WithFrameStack(frames).
		WithWorldState(emptyWorld{}).
		WithParent(parent).
		WithInitialGas(50000).
		WithRecipient(addrRecipient).
		WithOriginator(addrOrigin).
		WithContract(addrRecipient).
		WithSender(addrRecipient).
		WithGasPrice(big.NewInt(1)).
		WithValue(big.NewInt(0)).
		WithApparentValue(big.NewInt(0)).
		WithCode(codesection.New(codesection.Section{})).
		WithBlockValues(fakeBlockValues{}).
		WithDepth(1).
		WithCompleter(func(*Frame) {}).
		WithMiningBeneficiary(types.ZeroAddress).
		WithBlockHashLookup(func(int64) types.Hash { return types.ZeroHash }).
		Build()
	require.NoError(t, err)

	// S4: child warms A independently; parent unaffected until merge.
	assert.False(t, child.WarmUpAddress(addrOrigin))

	// S5: child overwrites the inherited transient value but doesn't leak
	// it to the parent without a commit.
	newVal := *word.FromHash(types.StringToHash("0x02"))
	child.TransientSet(addrRecipient, slot, newVal)
	assert.Equal(t, *word.FromHash(types.StringToHash("0x01")), parent.TransientGet(addrRecipient, slot))

	child.AddLog(substate.Log{Address: addrRecipient})
	child.SetOutputData([]byte{0xAB})

	require.NoError(t, child.SetState(lifecycle.CodeExecuting))
	require.NoError(t, child.SetState(lifecycle.CodeSuccess))
	require.NoError(t, child.SetState(lifecycle.CompletedSuccess))

	Merge(child)

	assert.True(t, parent.WarmUpAddress(addrOrigin))
	assert.Equal(t, newVal, parent.TransientGet(addrRecipient, slot))
	assert.Len(t, parent.Logs(), 1)
	assert.Equal(t, []byte{0xAB}, parent.ReturnData())
}

func TestChildDiscardOnRevertConveysRevertData(t *testing.T) {
	t.Parallel()

	frames := NewStack()

	parent, err := newTestBuilder(100000).WithFrameStack(frames).Build()
	require.NoError(t, err)

	child, err := NewBuilder(MessageCall).
		WithFrameStack(frames).
		WithWorldState(emptyWorld{}).
		WithParent(parent).
		WithInitialGas(1000).
		WithRecipient(addrRecipient).
		WithOriginator(addrOrigin).
		WithContract(addrRecipient).
		WithSender(addrRecipient).
		WithGasPrice(big.NewInt(1)).
		WithValue(big.NewInt(0)).
		WithApparentValue(big.NewInt(0)).
		WithCode(codesection.New(codesection.Section{})).
		WithBlockValues(fakeBlockValues{}).
		WithDepth(1).
		WithCompleter(func(*Frame) {}).
		WithMiningBeneficiary(types.ZeroAddress).
		WithBlockHashLookup(func(int64) types.Hash { return types.ZeroHash }).
		Build()
	require.NoError(t, err)

	require.NoError(t, child.SetState(lifecycle.CodeExecuting))
	require.NoError(t, child.StartRevert([]byte("nope")))
	require.NoError(t, child.SetState(lifecycle.CompletedFailed))

	Merge(child)

	assert.Equal(t, []byte("nope"), parent.ReturnData())
	assert.False(t, parent.WarmUpAddress(addrOrigin)) // not warmed: merge discarded
}

func TestCallFunctionUpdatesFrameSectionAndPC(t *testing.T) {
	t.Parallel()

	code := codesection.New(
		codesection.Section{EntryPoint: 0, Inputs: 0, Outputs: 0, MaxStackHeight: 2},
		codesection.Section{EntryPoint: 16, Inputs: 1, Outputs: 1, MaxStackHeight: 1},
	)

	f, err := newTestBuilder(1000).WithCode(code).Build()
	require.NoError(t, err)
	require.NoError(t, f.StackPush(word.Word{}))

	_, reason := f.CallFunction(1)
	assert.Equal(t, haltreason.None, reason)
	assert.Equal(t, 1, f.Section())
	assert.Equal(t, 15, f.PC())
}

func TestJumpFunctionUpdatesFrameSectionAndPC(t *testing.T) {
	t.Parallel()

	code := codesection.New(
		codesection.Section{EntryPoint: 0, Inputs: 0, Outputs: 0, MaxStackHeight: 2},
		codesection.Section{EntryPoint: 16, Inputs: 1, Outputs: 1, MaxStackHeight: 1},
	)

	f, err := newTestBuilder(1000).WithCode(code).Build()
	require.NoError(t, err)
	require.NoError(t, f.StackPush(word.Word{}))

	_, reason := f.JumpFunction(1)
	assert.Equal(t, haltreason.None, reason)
	assert.Equal(t, 1, f.Section())
	assert.Equal(t, -1, f.PC())
}
