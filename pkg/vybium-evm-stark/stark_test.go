package vybiumevmstark

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/secp256k1/fr"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

func recordedTrace(t *testing.T) *ExecutionTrace {
	t.Helper()
	et := NewExecutionTrace()

	sum, err := et.ExecuteOperation(OpAdd, uint256.NewInt(3), uint256.NewInt(5))
	require.NoError(t, err)
	require.Equal(t, uint64(8), sum.Uint64())

	_, err = et.ExecuteOperation(OpMul, uint256.NewInt(6), uint256.NewInt(7))
	require.NoError(t, err)
	_, err = et.ExecuteOperation(OpLt, uint256.NewInt(3), uint256.NewInt(9))
	require.NoError(t, err)

	require.NoError(t, et.Memory.Write(1, 100))
	v, err := et.Memory.Read(1)
	require.NoError(t, err)
	require.Equal(t, uint64(100), v)

	return et
}

func TestProveAndVerifyTrace(t *testing.T) {
	et := recordedTrace(t)

	prover, err := NewProver(DefaultConfig())
	require.NoError(t, err)
	proof, err := prover.ProveTrace(et)
	require.NoError(t, err)
	require.NotNil(t, proof)
	require.Equal(t, et.PaddedHeight, proof.PaddedHeight)

	verifier, err := NewVerifier(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, verifier.VerifyTrace(proof))
}

func TestProveTraceIsDeterministic(t *testing.T) {
	prover, err := NewProver(DefaultConfig())
	require.NoError(t, err)

	first, err := prover.ProveTrace(recordedTrace(t))
	require.NoError(t, err)
	second, err := prover.ProveTrace(recordedTrace(t))
	require.NoError(t, err)

	require.Equal(t, first.ChallengeSet, second.ChallengeSet)
	require.Equal(t, first.MemoryZPolys, second.MemoryZPolys)
}

func TestVerifyTraceRejectsTampering(t *testing.T) {
	prover, err := NewProver(DefaultConfig())
	require.NoError(t, err)
	proof, err := prover.ProveTrace(recordedTrace(t))
	require.NoError(t, err)

	// Scale the final grand product of one lookup side.
	for table, zs := range proof.CtlData.ZsPerTable {
		last := len(zs[0].Z) - 1
		proof.CtlData.ZsPerTable[table][0].Z[last] = zs[0].Z[last].Add(field.One)
		break
	}

	verifier, err := NewVerifier(DefaultConfig())
	require.NoError(t, err)
	err = verifier.VerifyTrace(proof)
	require.ErrorIs(t, err, &StarkError{Code: ErrProofVerification})
}

func TestVerifyTraceRejectsBadMemoryGrandProduct(t *testing.T) {
	prover, err := NewProver(DefaultConfig())
	require.NoError(t, err)
	proof, err := prover.ProveTrace(recordedTrace(t))
	require.NoError(t, err)

	// An honest prover closes every memory grand product at one.
	require.NotEmpty(t, proof.MemoryGrandProducts)
	for _, gp := range proof.MemoryGrandProducts {
		require.True(t, gp.Equal(field.One))
	}

	proof.MemoryGrandProducts[0] = field.New(2)

	verifier, err := NewVerifier(DefaultConfig())
	require.NoError(t, err)
	err = verifier.VerifyTrace(proof)
	require.ErrorIs(t, err, &StarkError{Code: ErrProofVerification})

	// A count mismatch with the Z columns is malformed input.
	proof.MemoryGrandProducts = proof.MemoryGrandProducts[1:]
	require.ErrorIs(t, verifier.VerifyTrace(proof), &StarkError{Code: ErrInvalidInput})
}

func TestProverRejectsInvalidConfig(t *testing.T) {
	config := DefaultConfig().WithMsmWindowBits(99)
	_, err := NewProver(config)
	require.ErrorIs(t, err, &StarkError{Code: ErrInvalidConfig})

	_, err = NewVerifier(DefaultConfig().WithHashFunction("md5"))
	require.ErrorIs(t, err, &StarkError{Code: ErrInvalidConfig})
}

func TestProveTraceRejectsNil(t *testing.T) {
	prover, err := NewProver(DefaultConfig())
	require.NoError(t, err)
	_, err = prover.ProveTrace(nil)
	require.ErrorIs(t, err, &StarkError{Code: ErrInvalidInput})

	verifier, err := NewVerifier(DefaultConfig())
	require.NoError(t, err)
	require.ErrorIs(t, verifier.VerifyTrace(nil), &StarkError{Code: ErrInvalidInput})
}

func TestScalarMulFacade(t *testing.T) {
	g := Generator()

	var k fr.Element
	k.SetUint64(3)
	got, err := ScalarMul(&k, g)
	require.NoError(t, err)

	gp := g.ToProjective()
	want := gp.Add(gp.Double())
	require.True(t, got.Eq(want))
}

func TestMultiScalarMulFacade(t *testing.T) {
	prover, err := NewProver(DefaultConfig())
	require.NoError(t, err)

	g := Generator().ToProjective()
	scalars := make([]fr.Element, 2)
	scalars[0].SetUint64(2)
	scalars[1].SetUint64(3)

	got, err := prover.MultiScalarMul(scalars, []ProjectivePoint{g, g})
	require.NoError(t, err)

	// 2G + 3G = 5G.
	want := g.Double().Double().Add(g)
	require.True(t, got.Eq(want))
}
