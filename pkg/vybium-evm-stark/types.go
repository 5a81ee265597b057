package vybiumevmstark

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/arithmetic"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/curve"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/protocols"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/trace"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/utils"
)

// FieldElement represents an element of the Goldilocks field, the base
// field of all witness columns
type FieldElement = field.Element

// Config represents the configuration for trace generation and the
// randomized arguments
type Config = utils.Config

// DefaultConfig returns a configuration with 100-bit soundness defaults
func DefaultConfig() *Config {
	return utils.DefaultConfig()
}

// ExecutionTrace holds the CPU, arithmetic, memory and range-check
// tables of one recorded execution
type ExecutionTrace = trace.ExecutionTrace

// NewExecutionTrace creates an empty execution trace
func NewExecutionTrace() *ExecutionTrace {
	return trace.NewExecutionTrace()
}

// Arithmetic operation selectors accepted by ExecuteOperation
const (
	// OpAdd is 256-bit addition modulo 2^256
	OpAdd = arithmetic.IsAdd

	// OpSub is 256-bit subtraction modulo 2^256
	OpSub = arithmetic.IsSub

	// OpLt is the 256-bit unsigned less-than comparison
	OpLt = arithmetic.IsLt

	// OpGt is the 256-bit unsigned greater-than comparison
	OpGt = arithmetic.IsGt

	// OpMul is 256-bit multiplication modulo 2^256
	OpMul = arithmetic.IsMul
)

// CrossTableLookup declares one multiset equality between filtered table
// projections
type CrossTableLookup = protocols.CrossTableLookup

// AffinePoint represents a secp256k1 point in affine coordinates
type AffinePoint = curve.AffinePoint

// ProjectivePoint represents a secp256k1 point in projective coordinates
type ProjectivePoint = curve.ProjectivePoint

// Generator returns the secp256k1 base point
func Generator() AffinePoint {
	return curve.Generator()
}

// TraceProof carries the committed columns of the randomized arguments
// over one execution trace: the cross-table lookup Z columns and the
// memory permutation Z polynomials, together with the challenges they
// were built from
type TraceProof struct {
	// Ctls are the lookup declarations the Z columns answer
	Ctls []CrossTableLookup

	// CtlData holds the Z column of every (table, challenge) instance
	CtlData protocols.CtlData

	// MemoryZPolys are the permutation Z polynomials of the memory
	// table's sorted copy, one per batch
	MemoryZPolys [][]FieldElement

	// MemoryGrandProducts are the terminal grand products the memory Z
	// polynomials close on, one per batch. Each is one exactly when the
	// sorted copy is a genuine permutation of the access log.
	MemoryGrandProducts []FieldElement

	// ChallengeSet is the Fiat-Shamir randomness of the cross-table
	// lookups
	ChallengeSet protocols.GrandProductChallengeSet

	// PermutationChallengeSets is the randomness of the batched memory
	// permutation argument
	PermutationChallengeSets []protocols.PermutationChallengeSet

	// PaddedHeight is the shared power-of-two height of all tables
	PaddedHeight int
}
