// Package privacy validates the fields Besu's private-transaction
// extension adds on top of a normal transaction (spec.md §6, "peripheral
// component, included only to document its minimal interface"). It is
// translated from PrivateTransactionValidator.java in
// _examples/original_source, generalized from Besu's ValidationResult
// wrapper to a plain Result enum return.
package privacy

import (
	"errors"
	"math/big"

	"github.com/hashicorp/go-hclog"
)

// Result is the outcome of Validate. Valid means the transaction may
// proceed; every other value names why it was rejected.
type Result int

const (
	Valid Result = iota
	PrivateValueNotZero
	PrivateUnimplementedTransactionType
	InvalidSignature
	WrongChainID
	ReplayProtectedSignaturesNotSupported
	PrivateNonceTooLow
	IncorrectPrivateNonce
)

func (r Result) String() string {
	switch r {
	case Valid:
		return "VALID"
	case PrivateValueNotZero:
		return "PRIVATE_VALUE_NOT_ZERO"
	case PrivateUnimplementedTransactionType:
		return "PRIVATE_UNIMPLEMENTED_TRANSACTION_TYPE"
	case InvalidSignature:
		return "INVALID_SIGNATURE"
	case WrongChainID:
		return "WRONG_CHAIN_ID"
	case ReplayProtectedSignaturesNotSupported:
		return "REPLAY_PROTECTED_SIGNATURES_NOT_SUPPORTED"
	case PrivateNonceTooLow:
		return "PRIVATE_NONCE_TOO_LOW"
	case IncorrectPrivateNonce:
		return "INCORRECT_PRIVATE_NONCE"
	default:
		return "UNKNOWN"
	}
}

// Restriction mirrors Besu's Restriction enum. UNRESTRICTED private
// transactions are out of scope here — the original only ever validates
// against RESTRICTED — but the type is kept so callers can express the
// field honestly rather than a bare bool.
type Restriction int

const (
	Restricted Restriction = iota
	Unrestricted
)

// Transaction is the subset of a private transaction's fields the
// validator inspects.
type Transaction struct {
	Value       *big.Int
	Restriction Restriction
	ChainID     *big.Int // nil means absent, matching the original's Optional<BigInteger>
	Nonce       uint64
	SenderErr   error // non-nil if signature recovery failed
}

// ErrSenderUnrecoverable is returned via Transaction.SenderErr by a
// caller that could not recover a sender address from the transaction's
// signature (the original catches an IllegalArgumentException from EC
// point decompression for this case).
var ErrSenderUnrecoverable = errors.New("privacy: sender not recoverable from signature")

// Validator checks private transactions against a node's configured
// chain ID (spec.md §6).
type Validator struct {
	chainID *big.Int // nil means the node runs without replay protection
	logger  hclog.Logger
}

// NewValidator builds a Validator for chainID (nil for no replay
// protection), logging with the given logger (defaults to a null logger).
func NewValidator(chainID *big.Int, logger hclog.Logger) *Validator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Validator{chainID: chainID, logger: logger}
}

// Validate checks tx's private fields, signature/chain-id agreement, and
// nonce against accountNonce, in that order — matching the original's
// early-return ordering (spec.md §6).
func (v *Validator) Validate(tx Transaction, accountNonce uint64, allowFutureNonces bool) Result {
	v.logger.Debug("validating private transaction fields")

	if res := validatePrivateFields(tx); res != Valid {
		v.logger.Debug("private transaction fields invalid", "result", res.String())
		return res
	}

	if res := v.validateSignature(tx); res != Valid {
		v.logger.Debug("private transaction signature invalid", "result", res.String())
		return res
	}

	if accountNonce > tx.Nonce {
		v.logger.Debug("private transaction nonce too low", "nonce", tx.Nonce, "account", accountNonce)
		return PrivateNonceTooLow
	}

	if !allowFutureNonces && accountNonce != tx.Nonce {
		v.logger.Debug("private transaction nonce mismatch", "nonce", tx.Nonce, "account", accountNonce)
		return IncorrectPrivateNonce
	}

	return Valid
}

func validatePrivateFields(tx Transaction) Result {
	if tx.Value != nil && tx.Value.Sign() != 0 {
		return PrivateValueNotZero
	}

	if tx.Restriction != Restricted {
		return PrivateUnimplementedTransactionType
	}

	return Valid
}

func (v *Validator) validateSignature(tx Transaction) Result {
	if v.chainID != nil && tx.ChainID != nil && v.chainID.Cmp(tx.ChainID) != 0 {
		return WrongChainID
	}

	if v.chainID == nil && tx.ChainID != nil {
		return ReplayProtectedSignaturesNotSupported
	}

	if errors.Is(tx.SenderErr, ErrSenderUnrecoverable) {
		return InvalidSignature
	}

	return Valid
}
