// Package environment holds the read-only view a frame carries for its
// entire lifetime (spec component L): recipient, sender, originator,
// value, gas price, block values, input data, code, and the miscellany
// the original Besu MessageFrame calls contextVariables. Every field is
// set once at construction (spec.md §4.L); accessors never allow mutation.
package environment

import (
	"math/big"

	"github.com/0xEdge/frame-evm/frame/codesection"
	"github.com/0xEdge/frame-evm/types"
	"github.com/umbracle/fastrlp"
)

// BlockValues is the read-only view of the enclosing block that a frame
// needs (spec.md §3, "blockValues"), expanded per the Besu BlockValues
// interface (SUPPLEMENTED FEATURES #6): number, timestamp, difficulty,
// base fee, gas limit, and the post-merge mix-hash/prevrandao field.
type BlockValues interface {
	Number() uint64
	Timestamp() uint64
	Difficulty() *big.Int
	BaseFee() *big.Int
	GasLimit() uint64
	MixHashOrPrevRandao() types.Hash
}

// ContextKey is a typed key into a frame's context-variable bag
// (SUPPLEMENTED FEATURES #2), replacing the original's untyped
// map[string]any with a comparable generic key so ContextValue returns
// the concrete type without a caller-side assertion.
type ContextKey[T any] struct {
	name string
}

// NewContextKey names a context variable. Keys are identified by name
// alone: two keys with the same name address the same variable, whatever
// their type parameter.
func NewContextKey[T any](name string) ContextKey[T] {
	return ContextKey[T]{name: name}
}

func (k ContextKey[T]) Name() string { return k.name }

// contextValue erases the key's type so a single map can hold
// heterogeneous ContextKey values.
type contextValue struct {
	key   string
	value any
}

// Variable is a type-erased (key, value) pair for seeding an Environment's
// context-variable bag at construction time, via Config.ContextVariables.
// There is no post-construction setter: like every other environment
// field, context variables are fixed once New returns (spec.md §4.L,
// "every environment field is set at construction and never mutated
// thereafter"; MessageFrame.java's contextVariables is a final field
// populated only through its Builder).
type Variable struct {
	name  string
	value any
}

// NewVariable pairs key with value for inclusion in Config.ContextVariables.
func NewVariable[T any](key ContextKey[T], value T) Variable {
	return Variable{name: key.name, value: value}
}

// Environment is the full immutable field set spec.md §3 lists under
// "Environment (immutable)", plus the SUPPLEMENTED FEATURES additions.
type Environment struct {
	recipient         types.Address
	sender            types.Address
	originator        types.Address
	contract          types.Address
	value             *big.Int
	apparentValue     *big.Int
	gasPrice          *big.Int
	inputData         []byte
	code              *codesection.Code
	blockValues       BlockValues
	miningBeneficiary types.Address
	blockHashLookup   func(blockNumber int64) types.Hash
	versionedHashes   []types.Hash
	contextVariables  map[string]contextValue
}

// Config bundles the constructor arguments; Builder in the frame package
// validates presence before calling New.
type Config struct {
	Recipient         types.Address
	Sender            types.Address
	Originator        types.Address
	Contract          types.Address
	Value             *big.Int
	ApparentValue     *big.Int
	GasPrice          *big.Int
	InputData         []byte
	Code              *codesection.Code
	BlockValues       BlockValues
	MiningBeneficiary types.Address
	BlockHashLookup   func(blockNumber int64) types.Hash
	VersionedHashes   []types.Hash
	ContextVariables  []Variable
}

// New builds an Environment from cfg. It performs no validation itself —
// that is the frame Builder's job (spec.md §6, "Frame-construction
// contract").
func New(cfg Config) *Environment {
	vars := make(map[string]contextValue, len(cfg.ContextVariables))
	for _, v := range cfg.ContextVariables {
		vars[v.name] = contextValue{key: v.name, value: v.value}
	}

	return &Environment{
		recipient:         cfg.Recipient,
		sender:            cfg.Sender,
		originator:        cfg.Originator,
		contract:          cfg.Contract,
		value:             cfg.Value,
		apparentValue:     cfg.ApparentValue,
		gasPrice:          cfg.GasPrice,
		inputData:         cfg.InputData,
		code:              cfg.Code,
		blockValues:       cfg.BlockValues,
		miningBeneficiary: cfg.MiningBeneficiary,
		blockHashLookup:   cfg.BlockHashLookup,
		versionedHashes:   cfg.VersionedHashes,
		contextVariables:  vars,
	}
}

func (e *Environment) Recipient() types.Address  { return e.recipient }
func (e *Environment) Sender() types.Address     { return e.sender }
func (e *Environment) Originator() types.Address { return e.originator }
func (e *Environment) Contract() types.Address   { return e.contract }
func (e *Environment) Value() *big.Int           { return e.value }
func (e *Environment) ApparentValue() *big.Int   { return e.apparentValue }
func (e *Environment) GasPrice() *big.Int        { return e.gasPrice }
func (e *Environment) InputData() []byte         { return e.inputData }
func (e *Environment) Code() *codesection.Code   { return e.code }
func (e *Environment) BlockValues() BlockValues  { return e.blockValues }

func (e *Environment) MiningBeneficiary() types.Address { return e.miningBeneficiary }

// BlockHash looks up the hash of an ancestor block. Returns the zero hash
// if no lookup function was configured.
func (e *Environment) BlockHash(blockNumber int64) types.Hash {
	if e.blockHashLookup == nil {
		return types.ZeroHash
	}

	return e.blockHashLookup(blockNumber)
}

// VersionedHashes returns the EIP-4844 blob versioned hashes attached to
// the originating transaction, or nil if none were configured.
func (e *Environment) VersionedHashes() []types.Hash {
	return e.versionedHashes
}

// MarshalRLPWith renders VersionedHashes as an RLP list, mirroring how
// the teacher's types package encodes hash lists for transaction
// envelopes (kept dependency: umbracle/fastrlp).
func (e *Environment) MarshalRLPWith(a *fastrlp.Arena) *fastrlp.Value {
	v := a.NewArray()

	for _, h := range e.versionedHashes {
		v.Set(a.NewBytes(h.Bytes()))
	}

	return v
}

// ContextValue returns the value stored under key and whether it was
// present. A value stored under the same name with a different type (for
// example through another key of another type) is reported as absent.
func ContextValue[T any](e *Environment, key ContextKey[T]) (T, bool) {
	var zero T

	stored, ok := e.contextVariables[key.name]
	if !ok {
		return zero, false
	}

	typed, ok := stored.value.(T)
	if !ok {
		return zero, false
	}

	return typed, true
}
