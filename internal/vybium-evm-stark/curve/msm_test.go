package curve

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/consensys/gnark-crypto/ecc/secp256k1/fr"
)

func TestToDigitsReconstruction(t *testing.T) {
	rng := rand.New(rand.NewSource(61))

	for _, w := range []int{1, 2, 5, 8, 16} {
		for trial := 0; trial < 10; trial++ {
			s := randFr(rng)
			digits := toDigits(&s, w)
			require.Len(t, digits, NumDigits(w))

			// sum_j digits[j] * 2^(w*j) recovers the scalar.
			reconstructed := new(big.Int)
			for j := len(digits) - 1; j >= 0; j-- {
				reconstructed.Lsh(reconstructed, uint(w))
				reconstructed.Add(reconstructed, big.NewInt(int64(digits[j])))
			}
			var want big.Int
			s.BigInt(&want)
			require.Zero(t, reconstructed.Cmp(&want), "w=%d", w)
		}
	}
}

func TestMsmMatchesNaive(t *testing.T) {
	rng := rand.New(rand.NewSource(62))
	g := Generator().ToProjective()

	for w := 1; w <= 8; w++ {
		for numGens := 1; numGens <= 8; numGens++ {
			generators := make([]ProjectivePoint, numGens)
			scalars := make([]fr.Element, numGens)
			want := ProjectiveIdentity()
			for i := range generators {
				generators[i] = mulSmall(g, 1+rng.Uint64()%100000)
				scalars[i] = randFr(rng)
				want = want.Add(scalarMulNaive(generators[i], &scalars[i]))
			}

			precomputation, err := MsmPrecompute(generators, w)
			require.NoError(t, err)

			sequential, err := MsmExecute(precomputation, scalars)
			require.NoError(t, err)
			require.True(t, sequential.Eq(want), "sequential, w=%d gens=%d", w, numGens)

			parallel, err := MsmExecuteParallel(precomputation, scalars)
			require.NoError(t, err)
			require.True(t, parallel.Eq(want), "parallel, w=%d gens=%d", w, numGens)
		}
	}
}

func TestMsmConcrete(t *testing.T) {
	g := Generator().ToProjective()
	generators := []ProjectivePoint{g, g.Double(), g.Double().Add(g)}

	words := [][2]uint64{
		{11111111, 22222222},
		{33333333, 44444444},
		{55555555, 66666666},
	}
	scalars := make([]fr.Element, len(words))
	want := ProjectiveIdentity()
	for i, w := range words {
		value := new(big.Int).SetUint64(w[1])
		value.Lsh(value, 64)
		value.Or(value, new(big.Int).SetUint64(w[0]))
		scalars[i].SetBigInt(value)
		want = want.Add(scalarMulNaive(generators[i], &scalars[i]))
	}

	got, err := MsmParallel(scalars, generators, 5)
	require.NoError(t, err)
	require.True(t, got.Eq(want))
}

func TestMsmZeroScalar(t *testing.T) {
	g := Generator().ToProjective()
	var zero, five fr.Element
	five.SetUint64(5)

	got, err := MsmParallel([]fr.Element{zero, five}, []ProjectivePoint{g.Double(), g}, 4)
	require.NoError(t, err)
	require.True(t, got.Eq(mulSmall(g, 5)))

	// All-zero scalars sum to the identity.
	got, err = MsmParallel([]fr.Element{zero}, []ProjectivePoint{g}, 4)
	require.NoError(t, err)
	require.True(t, got.IsIdentity())
}

func TestMsmArgumentValidation(t *testing.T) {
	g := Generator().ToProjective()

	_, err := MsmPrecompute([]ProjectivePoint{g}, 0)
	require.Error(t, err)
	_, err = MsmPrecompute([]ProjectivePoint{g}, 17)
	require.Error(t, err)

	precomputation, err := MsmPrecompute([]ProjectivePoint{g}, 5)
	require.NoError(t, err)
	_, err = MsmExecute(precomputation, make([]fr.Element, 2))
	require.Error(t, err)
	_, err = MsmExecuteParallel(precomputation, nil)
	require.Error(t, err)
}
