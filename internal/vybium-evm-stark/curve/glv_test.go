package curve

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/consensys/gnark-crypto/ecc/secp256k1/fp"
	"github.com/consensys/gnark-crypto/ecc/secp256k1/fr"
)

func TestGlvConstants(t *testing.T) {
	// beta is a nontrivial cube root of unity in the base field.
	beta := GlvBeta()
	var betaCubed, one fp.Element
	betaCubed.Square(&beta)
	betaCubed.Mul(&betaCubed, &beta)
	one.SetOne()
	require.True(t, betaCubed.Equal(&one))
	require.False(t, beta.Equal(&one))

	// lambda is a nontrivial cube root of unity mod the group order.
	lambda := GlvLambda()
	var lambdaBig big.Int
	lambda.BigInt(&lambdaBig)
	cube := new(big.Int).Exp(&lambdaBig, big.NewInt(3), fr.Modulus())
	require.Zero(t, cube.Cmp(big.NewInt(1)))
}

func TestEndomorphismIsLambdaMul(t *testing.T) {
	rng := rand.New(rand.NewSource(71))
	g := Generator().ToProjective()
	lambda := GlvLambda()

	points := []AffinePoint{Generator()}
	for i := 0; i < 5; i++ {
		points = append(points, mulSmall(g, 1+rng.Uint64()%100000).ToAffine())
	}

	for i, p := range points {
		phi := Endomorphism(p)
		require.True(t, phi.IsOnCurve(), "point %d", i)
		want := scalarMulNaive(p.ToProjective(), &lambda)
		require.True(t, phi.ToProjective().Eq(want), "point %d", i)
	}

	require.True(t, Endomorphism(AffineIdentity()).Zero)
}

func TestDecomposeScalar(t *testing.T) {
	rng := rand.New(rand.NewSource(72))
	order := fr.Modulus()
	lambda := GlvLambda()
	var lambdaBig big.Int
	lambda.BigInt(&lambdaBig)

	for trial := 0; trial < 25; trial++ {
		k := randFr(rng)
		k1, k2, k1Neg, k2Neg := DecomposeScalar(&k)

		var k1Big, k2Big, kBig big.Int
		k1.BigInt(&k1Big)
		k2.BigInt(&k2Big)
		k.BigInt(&kBig)

		// Both components are short.
		require.LessOrEqual(t, k1Big.BitLen(), 129, "trial %d", trial)
		require.LessOrEqual(t, k2Big.BitLen(), 129, "trial %d", trial)

		// +-k1 +- k2 * lambda recombines to k mod the group order.
		if k1Neg {
			k1Big.Neg(&k1Big)
		}
		if k2Neg {
			k2Big.Neg(&k2Big)
		}
		recombined := new(big.Int).Mul(&k2Big, &lambdaBig)
		recombined.Add(recombined, &k1Big)
		recombined.Mod(recombined, order)
		require.Zero(t, recombined.Cmp(&kBig), "trial %d", trial)
	}
}

func TestGlvMulMatchesNaive(t *testing.T) {
	rng := rand.New(rand.NewSource(73))
	g := Generator().ToProjective()

	for trial := 0; trial < 20; trial++ {
		p := mulSmall(g, 1+rng.Uint64()%1000000).ToAffine()
		k := randFr(rng)

		got, err := GlvMul(&k, p)
		require.NoError(t, err)

		want := scalarMulNaive(p.ToProjective(), &k)
		require.True(t, got.Eq(want), "trial %d", trial)
	}
}

func TestGlvMulEdgeScalars(t *testing.T) {
	p := Generator()

	var zero fr.Element
	got, err := GlvMul(&zero, p)
	require.NoError(t, err)
	require.True(t, got.IsIdentity())

	var one fr.Element
	one.SetOne()
	got, err = GlvMul(&one, p)
	require.NoError(t, err)
	require.True(t, got.Eq(p.ToProjective()))

	// order - 1 maps P to -P.
	minusOne := new(big.Int).Sub(fr.Modulus(), big.NewInt(1))
	var k fr.Element
	k.SetBigInt(minusOne)
	got, err = GlvMul(&k, p)
	require.NoError(t, err)
	require.True(t, got.Eq(p.ToProjective().Neg()))
}
