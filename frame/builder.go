package frame

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/0xEdge/frame-evm/frame/codesection"
	"github.com/0xEdge/frame-evm/frame/environment"
	"github.com/0xEdge/frame-evm/frame/lifecycle"
	"github.com/0xEdge/frame-evm/frame/memory"
	"github.com/0xEdge/frame-evm/frame/returnstack"
	"github.com/0xEdge/frame-evm/frame/stack"
	"github.com/0xEdge/frame-evm/frame/substate"
	"github.com/0xEdge/frame-evm/frame/transient"
	"github.com/0xEdge/frame-evm/frame/warmset"
	"github.com/0xEdge/frame-evm/types"
	"github.com/0xEdge/frame-evm/word"
	"github.com/0xEdge/frame-evm/worldstate"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	multierror "github.com/hashicorp/go-multierror"
)

// AccessList is the set of (address, [slots]) pairs an originating
// transaction declared, warmed into the root frame at construction
// (spec.md §4.I, "warm each access-list storage key by pre-reading the
// world state"). Grounded on the teacher's AccessList shape in
// state/runtime/access_list_test.go, narrowed to what the builder needs.
type AccessList map[types.Address][]types.Hash

var errMissingField = errors.New("frame: missing required field")

// Builder assembles a Frame's mandatory fields and rejects construction
// if any are missing, in the manner of the teacher's other constructors
// (spec.md §6, "Frame-construction contract").
type Builder struct {
	typ      Type
	typeSet  bool
	frames   *Stack
	world    worldstate.Reader
	worldSet bool
	parent   *Frame

	initialGas uint64
	gasSet     bool

	recipient    types.Address
	recipientSet bool

	originator    types.Address
	originatorSet bool

	contract    types.Address
	contractSet bool

	sender    types.Address
	senderSet bool

	gasPrice *big.Int
	value    *big.Int
	apparent *big.Int

	inputData []byte

	code    *codesection.Code
	codeSet bool

	blockValues environment.BlockValues

	depth    int
	depthSet bool

	completer    func(*Frame)
	completerSet bool

	miningBeneficiary    types.Address
	miningBeneficiarySet bool
	blockHashLookup      func(int64) types.Hash

	versionedHashes  []types.Hash
	accessList       AccessList
	contextVariables []environment.Variable

	maxStackSize int
	isStatic     bool
	logger       hclog.Logger
	tracer       Tracer
}

// NewBuilder starts a Builder for the given frame type.
func NewBuilder(typ Type) *Builder {
	return &Builder{typ: typ, typeSet: true, maxStackSize: stack.DefaultMaxSize}
}

func (b *Builder) WithFrameStack(s *Stack) *Builder            { b.frames = s; return b }
func (b *Builder) WithWorldState(w worldstate.Reader) *Builder { b.world = w; b.worldSet = true; return b }
func (b *Builder) WithParent(p *Frame) *Builder                { b.parent = p; return b }

func (b *Builder) WithInitialGas(gas uint64) *Builder {
	b.initialGas = gas
	b.gasSet = true

	return b
}

func (b *Builder) WithRecipient(addr types.Address) *Builder {
	b.recipient = addr
	b.recipientSet = true

	return b
}

func (b *Builder) WithOriginator(addr types.Address) *Builder {
	b.originator = addr
	b.originatorSet = true

	return b
}

func (b *Builder) WithContract(addr types.Address) *Builder {
	b.contract = addr
	b.contractSet = true

	return b
}

func (b *Builder) WithSender(addr types.Address) *Builder {
	b.sender = addr
	b.senderSet = true

	return b
}

func (b *Builder) WithGasPrice(v *big.Int) *Builder { b.gasPrice = v; return b }
func (b *Builder) WithValue(v *big.Int) *Builder    { b.value = v; return b }
func (b *Builder) WithApparentValue(v *big.Int) *Builder {
	b.apparent = v
	return b
}

func (b *Builder) WithInputData(data []byte) *Builder { b.inputData = data; return b }

func (b *Builder) WithCode(code *codesection.Code) *Builder {
	b.code = code
	b.codeSet = true

	return b
}

func (b *Builder) WithBlockValues(bv environment.BlockValues) *Builder {
	b.blockValues = bv
	return b
}

func (b *Builder) WithDepth(depth int) *Builder {
	b.depth = depth
	b.depthSet = true

	return b
}

func (b *Builder) WithCompleter(fn func(*Frame)) *Builder {
	b.completer = fn
	b.completerSet = true

	return b
}

func (b *Builder) WithMiningBeneficiary(addr types.Address) *Builder {
	b.miningBeneficiary = addr
	b.miningBeneficiarySet = true

	return b
}

func (b *Builder) WithBlockHashLookup(fn func(int64) types.Hash) *Builder {
	b.blockHashLookup = fn
	return b
}

func (b *Builder) WithVersionedHashes(hashes []types.Hash) *Builder {
	b.versionedHashes = hashes
	return b
}

func (b *Builder) WithAccessList(al AccessList) *Builder {
	b.accessList = al
	return b
}

// WithContextVariables seeds the environment's context-variable bag at
// construction. There is no equivalent setter on the built Frame — per
// spec.md §4.L context variables, like every other environment field, are
// fixed once Build returns.
func (b *Builder) WithContextVariables(vars ...environment.Variable) *Builder {
	b.contextVariables = append(b.contextVariables, vars...)
	return b
}

func (b *Builder) WithMaxStackSize(size int) *Builder {
	b.maxStackSize = size
	return b
}

func (b *Builder) WithStatic(isStatic bool) *Builder {
	b.isStatic = isStatic
	return b
}

func (b *Builder) WithLogger(logger hclog.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithTracer(tracer Tracer) *Builder {
	b.tracer = tracer
	return b
}

// Build validates the mandatory field set (spec.md §4.I) and, if
// complete, constructs the Frame: it seeds the program counter from the
// code's first section, pushes the return-stack sentinel, and pre-warms
// the sender/contract plus every access-list entry by reading the world
// state (spec.md §4.I, "On construction").
func (b *Builder) Build() (*Frame, error) {
	var errs *multierror.Error

	if !b.typeSet {
		errs = multierror.Append(errs, missingField("type"))
	}

	if b.frames == nil {
		errs = multierror.Append(errs, missingField("frame stack"))
	}

	if !b.worldSet {
		errs = multierror.Append(errs, missingField("world updater"))
	}

	if !b.gasSet {
		errs = multierror.Append(errs, missingField("initialGas"))
	}

	if !b.recipientSet {
		errs = multierror.Append(errs, missingField("recipient"))
	}

	if !b.originatorSet {
		errs = multierror.Append(errs, missingField("originator"))
	}

	if !b.contractSet {
		errs = multierror.Append(errs, missingField("contract"))
	}

	if b.gasPrice == nil {
		errs = multierror.Append(errs, missingField("gasPrice"))
	}

	if !b.senderSet {
		errs = multierror.Append(errs, missingField("sender"))
	}

	if b.value == nil {
		errs = multierror.Append(errs, missingField("value"))
	}

	if b.apparent == nil {
		errs = multierror.Append(errs, missingField("apparentValue"))
	}

	if !b.codeSet {
		errs = multierror.Append(errs, missingField("code"))
	}

	if b.blockValues == nil {
		errs = multierror.Append(errs, missingField("blockValues"))
	}

	if !b.depthSet || b.depth < 0 {
		errs = multierror.Append(errs, missingField("depth (>= 0)"))
	}

	if !b.completerSet {
		errs = multierror.Append(errs, missingField("completer"))
	}

	if !b.miningBeneficiarySet {
		errs = multierror.Append(errs, missingField("miningBeneficiary"))
	}

	if b.blockHashLookup == nil {
		errs = multierror.Append(errs, missingField("blockHashLookup"))
	}

	if errs.ErrorOrNil() != nil {
		return nil, errs
	}

	logger := b.logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	tracer := b.tracer
	if tracer == nil {
		tracer = NullTracer{}
	}

	env := environment.New(environment.Config{
		Recipient:         b.recipient,
		Sender:            b.sender,
		Originator:        b.originator,
		Contract:          b.contract,
		Value:             b.value,
		ApparentValue:     b.apparent,
		GasPrice:          b.gasPrice,
		InputData:         b.inputData,
		Code:              b.code,
		BlockValues:       b.blockValues,
		MiningBeneficiary: b.miningBeneficiary,
		BlockHashLookup:   b.blockHashLookup,
		VersionedHashes:   b.versionedHashes,
		ContextVariables:  b.contextVariables,
	})

	var parentWarmSet *warmset.WarmSet
	var parentTransient *transient.Storage
	var parentSubstate *substate.Substate

	if b.parent != nil {
		parentWarmSet = b.parent.warmSet
		parentTransient = b.parent.transient
		parentSubstate = b.parent.substate
	}

	f := &Frame{
		id:           uuid.New().String(),
		typ:          b.typ,
		stack:        stack.New(b.maxStackSize),
		returnStack:  returnstack.New(),
		memory:       memory.New(),
		transient:    transient.New(parentTransient),
		warmSet:      warmset.New(parentWarmSet),
		substate:     substate.New(parentSubstate),
		env:          env,
		gasRemaining: b.initialGas,
		isStatic:     b.isStatic,
		depth:        b.depth,
		parent:       b.parent,
		completer:    b.completer,
		logger:       logger,
		tracer:       tracer,
	}

	f.lifecycle = lifecycle.New(nil)

	if b.code.IsValid() {
		entry, _ := b.code.GetCodeSection(0)
		f.pc = entry.EntryPoint
	} else {
		f.pc = 0
	}

	f.warmSet.SeedAddress(b.sender)
	f.warmSet.SeedAddress(b.contract)

	for addr, slots := range b.accessList {
		f.warmSet.SeedAddress(addr)

		for _, slot := range slots {
			f.warmSet.SeedStorage(addr, slot)
			preWarmStorageValue(b.world, addr, slot)
		}
	}

	b.frames.Push(f)

	return f, nil
}

// preWarmStorageValue reads the world state for its side effect on a real
// backend (e.g. populating an on-disk trie's page cache); the frame core
// itself only needs the warm-set membership, not the value, so the result
// is intentionally discarded (spec.md §6, "Used only during construction
// for access-list pre-warming").
func preWarmStorageValue(world worldstate.Reader, addr types.Address, slot types.Hash) {
	account, ok := world.Get(addr)
	if !ok {
		return
	}

	_ = account.GetStorageValue(*word.FromHash(slot))
}

func missingField(name string) error {
	return fmt.Errorf("%w: %s", errMissingField, name)
}
