package curve

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// randAffinePoints builds n random multiples of the generator, seasoned
// with identities and cancelling pairs so every pairwise-addition case is
// exercised
func randAffinePoints(rng *rand.Rand, n int) []AffinePoint {
	g := Generator().ToProjective()
	points := make([]AffinePoint, 0, n)
	for len(points) < n {
		switch rng.Intn(5) {
		case 0:
			points = append(points, AffineIdentity())
		case 1:
			if n-len(points) >= 2 {
				p := mulSmall(g, 1+rng.Uint64()%1000).ToAffine()
				points = append(points, p, p.Neg())
			} else {
				points = append(points, mulSmall(g, 1+rng.Uint64()%1000).ToAffine())
			}
		case 2:
			// Duplicate forces the doubling path.
			p := mulSmall(g, 1+rng.Uint64()%1000).ToAffine()
			points = append(points, p)
			if len(points) < n {
				points = append(points, p)
			}
		default:
			points = append(points, mulSmall(g, 1+rng.Uint64()%1000).ToAffine())
		}
	}
	return points
}

func naiveSum(points []AffinePoint) ProjectivePoint {
	acc := ProjectiveIdentity()
	for _, p := range points {
		acc = acc.AddAffine(p)
	}
	return acc
}

func TestAffineSummationStrategiesAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(51))

	for _, n := range []int{0, 1, 2, 3, 5, 8, 17, 50, 100, 200} {
		points := randAffinePoints(rng, n)
		want := naiveSum(points)

		pairwise := AffineSummationPairwise(points)
		require.True(t, pairwise.ToProjective().Eq(want), "pairwise, n=%d", n)

		batched := AffineSummationBatchInversion(points)
		require.True(t, batched.ToProjective().Eq(want), "batch inversion, n=%d", n)

		best := AffineSummationBest(points)
		require.True(t, best.ToProjective().Eq(want), "best, n=%d", n)
	}
}

func TestAffineSummationAllIdentity(t *testing.T) {
	points := make([]AffinePoint, 9)
	for i := range points {
		points[i] = AffineIdentity()
	}
	require.True(t, AffineSummationPairwise(points).Zero)
	require.True(t, AffineSummationBatchInversion(points).Zero)
}

func TestAffineSummationCancellingList(t *testing.T) {
	g := Generator().ToProjective()
	p := mulSmall(g, 42).ToAffine()
	points := []AffinePoint{p, p.Neg(), p.Neg(), p}
	require.True(t, AffineSummationBatchInversion(points).Zero)
	require.True(t, AffineSummationPairwise(points).Zero)
}

func TestAffineMultiSummationBest(t *testing.T) {
	rng := rand.New(rand.NewSource(52))

	lists := [][]AffinePoint{
		randAffinePoints(rng, 0),
		randAffinePoints(rng, 1),
		randAffinePoints(rng, 13),
		randAffinePoints(rng, 64),
		randAffinePoints(rng, 200),
	}

	results := AffineMultiSummationBest(lists)
	require.Len(t, results, len(lists))
	for i, points := range lists {
		require.True(t, results[i].ToProjective().Eq(naiveSum(points)), "list %d", i)
	}
}

func TestPairwiseSumCount(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 1},
		{4, 2},
		{8, 4},
		{9, 4},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, pairwiseSumCount(tt.n), "n=%d", tt.n)
	}
}
