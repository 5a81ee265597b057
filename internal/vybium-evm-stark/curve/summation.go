package curve

import (
	"github.com/consensys/gnark-crypto/ecc/secp256k1/fp"
)

// PairwiseSumThreshold is the total number of pairwise additions below
// which plain affine addition beats the batched-inversion method, whose
// per-batch overhead only amortizes across enough pairs
const PairwiseSumThreshold = 70

// AffineSummationBest sums a list of affine points, picking the summation
// strategy from the amount of work the list implies
func AffineSummationBest(points []AffinePoint) AffinePoint {
	if pairwiseSumCount(len(points)) < PairwiseSumThreshold {
		return AffineSummationPairwise(points)
	}
	return AffineSummationBatchInversion(points)
}

// AffineMultiSummationBest sums several lists, sharing batched inversions
// across all of them when the combined work is large enough
func AffineMultiSummationBest(summations [][]AffinePoint) []AffinePoint {
	total := 0
	for _, points := range summations {
		total += pairwiseSumCount(len(points))
	}
	if total < PairwiseSumThreshold {
		out := make([]AffinePoint, len(summations))
		for i, points := range summations {
			out[i] = AffineSummationPairwise(points)
		}
		return out
	}
	return affineMultiSummationBatchInversion(summations)
}

// pairwiseSumCount counts the affine pairwise additions of a single
// halving pass over n points
func pairwiseSumCount(n int) int {
	return n / 2
}

// AffineSummationPairwise sums points with one pass of inversion-free
// affine pairwise additions, folding the projective partials as it goes
func AffineSummationPairwise(points []AffinePoint) AffinePoint {
	acc := ProjectiveIdentity()
	for i := 0; i+1 < len(points); i += 2 {
		acc = acc.Add(points[i].Add(points[i+1]))
	}
	if len(points)%2 == 1 {
		acc = acc.AddAffine(points[len(points)-1])
	}
	return acc.ToAffine()
}

// AffineSummationBatchInversion sums points by repeated halving, sharing
// one batched inversion per halving pass
func AffineSummationBatchInversion(points []AffinePoint) AffinePoint {
	results := affineMultiSummationBatchInversion([][]AffinePoint{points})
	return results[0]
}

// affineMultiSummationBatchInversion reduces every list by halving passes
// until each holds at most one point, with all slope denominators of one
// pass inverted in a single batch
func affineMultiSummationBatchInversion(summations [][]AffinePoint) []AffinePoint {
	current := make([][]AffinePoint, len(summations))
	for i, points := range summations {
		current[i] = append([]AffinePoint{}, points...)
	}

	for {
		done := true
		for _, points := range current {
			if len(points) > 1 {
				done = false
				break
			}
		}
		if done {
			break
		}
		current = multiSummationReduceOnce(current)
	}

	out := make([]AffinePoint, len(current))
	for i, points := range current {
		if len(points) == 0 {
			out[i] = AffineIdentity()
		} else {
			out[i] = points[0]
		}
	}
	return out
}

// pendingSum is one non-trivial pairwise addition awaiting its inverted
// slope denominator
type pendingSum struct {
	list, slot int
	p1, p2     AffinePoint
	double     bool
}

// multiSummationReduceOnce halves every list once. Trivial pairs, where an
// operand is the identity or the operands cancel, are resolved directly
// and consume no inverse; the rest share one batched inversion.
func multiSummationReduceOnce(summations [][]AffinePoint) [][]AffinePoint {
	next := make([][]AffinePoint, len(summations))
	var pending []pendingSum
	var denominators []fp.Element

	for l, points := range summations {
		n := len(points)
		reduced := make([]AffinePoint, (n+1)/2)
		for i := 0; i+1 < n; i += 2 {
			p1, p2 := points[i], points[i+1]
			slot := i / 2
			switch {
			case p1.Zero:
				reduced[slot] = p2
			case p2.Zero:
				reduced[slot] = p1
			case p1.Eq(p2.Neg()):
				reduced[slot] = AffineIdentity()
			case p1.Eq(p2):
				var den fp.Element
				den.Double(&p1.Y)
				pending = append(pending, pendingSum{list: l, slot: slot, p1: p1, p2: p2, double: true})
				denominators = append(denominators, den)
			default:
				var den fp.Element
				den.Sub(&p1.X, &p2.X)
				pending = append(pending, pendingSum{list: l, slot: slot, p1: p1, p2: p2})
				denominators = append(denominators, den)
			}
		}
		if n%2 == 1 {
			reduced[len(reduced)-1] = points[n-1]
		}
		next[l] = reduced
	}

	inverses := fp.BatchInvert(denominators)
	for i, sum := range pending {
		next[sum.list][sum.slot] = addWithSlopeDenominatorInverse(sum, &inverses[i])
	}
	return next
}

// addWithSlopeDenominatorInverse completes a pairwise addition given the
// precomputed inverse of its slope denominator
func addWithSlopeDenominatorInverse(sum pendingSum, denInv *fp.Element) AffinePoint {
	var q fp.Element
	if sum.double {
		// q = 3 x1^2 / 2 y1
		var num fp.Element
		num.Square(&sum.p1.X)
		var t fp.Element
		t.Double(&num)
		num.Add(&num, &t)
		q.Mul(&num, denInv)

		var x3, y3 fp.Element
		x3.Square(&q)
		t.Double(&sum.p1.X)
		x3.Sub(&x3, &t)
		t.Sub(&sum.p1.X, &x3)
		y3.Mul(&q, &t)
		y3.Sub(&y3, &sum.p1.Y)
		return AffinePoint{X: x3, Y: y3}
	}

	// q = (y1 - y2) / (x1 - x2)
	var num fp.Element
	num.Sub(&sum.p1.Y, &sum.p2.Y)
	q.Mul(&num, denInv)

	var x3, y3, t fp.Element
	x3.Square(&q)
	x3.Sub(&x3, &sum.p1.X)
	x3.Sub(&x3, &sum.p2.X)
	t.Sub(&sum.p1.X, &x3)
	y3.Mul(&q, &t)
	y3.Sub(&y3, &sum.p1.Y)
	return AffinePoint{X: x3, Y: y3}
}
