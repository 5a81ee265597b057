package vybiumevmstark

import (
	"encoding/binary"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/secp256k1/fr"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/curve"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/protocols"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/trace"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/utils"
)

// Prover builds the randomized-argument columns over a recorded
// execution trace
type Prover struct {
	config *Config
}

// NewProver creates a prover with the given configuration
func NewProver(config *Config) (*Prover, error) {
	if err := config.Validate(); err != nil {
		return nil, &StarkError{
			Code:    ErrInvalidConfig,
			Message: "invalid configuration",
			Cause:   err,
		}
	}
	return &Prover{config: config.Clone()}, nil
}

// ProveTrace pads and checks the trace, draws the Fiat-Shamir
// challenges, and computes the cross-table lookup and memory permutation
// Z columns
func (p *Prover) ProveTrace(et *ExecutionTrace) (*TraceProof, error) {
	if et == nil {
		return nil, &StarkError{Code: ErrInvalidInput, Message: "nil execution trace"}
	}
	if err := et.PadAllTables(); err != nil {
		return nil, &StarkError{Code: ErrInvalidWitness, Message: "padding failed", Cause: err}
	}
	if err := et.Validate(); err != nil {
		return nil, &StarkError{Code: ErrInvalidWitness, Message: "malformed trace", Cause: err}
	}
	if err := et.Arith.CheckConstraints(); err != nil {
		return nil, &StarkError{Code: ErrInvalidWitness, Message: "arithmetic witness inconsistent", Cause: err}
	}
	if err := et.Memory.CheckConsistency(); err != nil {
		return nil, &StarkError{Code: ErrInvalidWitness, Message: "memory witness inconsistent", Cause: err}
	}
	if err := et.Memory.CheckConstraints(); err != nil {
		return nil, &StarkError{Code: ErrInvalidWitness, Message: "memory witness inconsistent", Cause: err}
	}
	if err := et.RangeCheck.CheckConstraints(); err != nil {
		return nil, &StarkError{Code: ErrInvalidWitness, Message: "range-check witness inconsistent", Cause: err}
	}

	channel := p.seedChannel(et)
	challengeSet := protocols.GetGrandProductChallengeSet(channel, p.config.NumChallenges)
	permutationSets := protocols.GetNPermutationChallengeSets(channel, p.config.NumChallenges, p.config.PermutationBatchSize)

	ctls := et.CrossTableLookups()
	ctlData, err := protocols.CrossTableLookupData(et.Traces(), ctls, challengeSet)
	if err != nil {
		return nil, &StarkError{Code: ErrProofGeneration, Message: "computing cross-table lookup columns", Cause: err}
	}

	memoryPairs := et.PermutationPairs()[trace.MemoryTable]
	memoryZs, memoryGPs, err := protocols.ComputePermutationZPolys(
		memoryPairs, permutationSets, p.config.NumChallenges, p.config.PermutationBatchSize,
		et.Memory.GetMainColumns())
	if err != nil {
		return nil, &StarkError{Code: ErrProofGeneration, Message: "computing memory permutation columns", Cause: err}
	}

	log := utils.Logger()
	log.Debug().
		Int("paddedHeight", et.PaddedHeight).
		Int("log2Height", utils.Log2(et.PaddedHeight)).
		Int("ctls", len(ctls)).
		Int("memoryZPolys", len(memoryZs)).
		Msg("trace proven")

	return &TraceProof{
		Ctls:                     ctls,
		CtlData:                  ctlData,
		MemoryZPolys:             memoryZs,
		MemoryGrandProducts:      memoryGPs,
		ChallengeSet:             challengeSet,
		PermutationChallengeSets: permutationSets,
		PaddedHeight:             et.PaddedHeight,
	}, nil
}

// seedChannel binds the transcript to the shape of the trace before any
// challenge is drawn. The draw order afterwards is fixed.
func (p *Prover) seedChannel(et *ExecutionTrace) *utils.Channel {
	channel := utils.NewChannel(p.config.HashFunction)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(et.PaddedHeight))
	channel.Send(buf[:])
	for _, table := range et.GetAllTables() {
		binary.BigEndian.PutUint64(buf[:], uint64(table.GetHeight()))
		channel.Send(buf[:])
	}
	return channel
}

// Verifier checks the randomized-argument columns of a trace proof
type Verifier struct {
	config *Config
}

// NewVerifier creates a verifier with the given configuration
func NewVerifier(config *Config) (*Verifier, error) {
	if err := config.Validate(); err != nil {
		return nil, &StarkError{
			Code:    ErrInvalidConfig,
			Message: "invalid configuration",
			Cause:   err,
		}
	}
	return &Verifier{config: config.Clone()}, nil
}

// VerifyTrace checks the cross-table grand product equalities and the
// terminal grand products of the memory permutation columns. A mismatch
// is the deterministic cryptographic rejection outcome.
func (v *Verifier) VerifyTrace(proof *TraceProof) error {
	if proof == nil {
		return &StarkError{Code: ErrInvalidInput, Message: "nil proof"}
	}
	if len(proof.ChallengeSet.Challenges) != v.config.NumChallenges {
		return &StarkError{Code: ErrInvalidInput, Message: "challenge count does not match configuration"}
	}

	if err := protocols.VerifyCrossTableLookups(proof.Ctls, proof.CtlData, v.config.NumChallenges); err != nil {
		return &StarkError{Code: ErrProofVerification, Message: "cross-table lookup mismatch", Cause: err}
	}

	if len(proof.MemoryGrandProducts) != len(proof.MemoryZPolys) {
		return &StarkError{Code: ErrInvalidInput, Message: "memory grand product count does not match Z columns"}
	}
	for i, z := range proof.MemoryZPolys {
		if len(z) != proof.PaddedHeight {
			return &StarkError{Code: ErrInvalidInput, Message: "memory Z column has wrong height"}
		}
		// The running product closes on the grand product of the quotient
		// column, which is one exactly for a genuine permutation.
		if !proof.MemoryGrandProducts[i].Equal(field.One) {
			return &StarkError{Code: ErrProofVerification, Message: fmt.Sprintf("memory permutation column %d does not close at one", i)}
		}
	}
	return nil
}

// ScalarMul computes k*P on secp256k1 through the GLV endomorphism
// decomposition
func ScalarMul(k *fr.Element, p AffinePoint) (ProjectivePoint, error) {
	result, err := curve.GlvMul(k, p)
	if err != nil {
		return ProjectivePoint{}, &StarkError{Code: ErrInvalidInput, Message: "scalar multiplication failed", Cause: err}
	}
	return result, nil
}

// MultiScalarMul computes the multi-scalar multiplication
// sum_i scalars[i]*generators[i] with the configured window width
func (p *Prover) MultiScalarMul(scalars []fr.Element, generators []ProjectivePoint) (ProjectivePoint, error) {
	result, err := curve.MsmParallel(scalars, generators, p.config.MsmWindowBits)
	if err != nil {
		return ProjectivePoint{}, &StarkError{Code: ErrInvalidInput, Message: "multi-scalar multiplication failed", Cause: err}
	}
	return result, nil
}
