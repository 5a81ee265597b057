package curve

import (
	"fmt"
	"math/big"

	"golang.org/x/sync/errgroup"

	"github.com/consensys/gnark-crypto/ecc/secp256k1/fr"
)

// DigitsPerChunk is the number of digit buckets summed together by one
// worker of the parallel MSM reduction. Chunking digit values lets each
// chunk share batched inversions while keeping enough chunks to spread
// across workers.
const DigitsPerChunk = 80

// MsmPrecomputation holds, for each generator, the points (2^w)^i * g for
// every digit position i of a w-bit windowed decomposition
type MsmPrecomputation struct {
	powersPerGenerator [][]AffinePoint
	w                  int
}

// NumDigits returns the digit count of a w-bit windowed scalar
func NumDigits(w int) int {
	return (fr.Bits + w - 1) / w
}

// MsmPrecompute computes the window tables of the given generators, one
// generator per worker
func MsmPrecompute(generators []ProjectivePoint, w int) (*MsmPrecomputation, error) {
	if w <= 0 || w > 16 {
		return nil, fmt.Errorf("window width must be in [1, 16], got %d", w)
	}

	powers := make([][]AffinePoint, len(generators))
	var g errgroup.Group
	for i := range generators {
		g.Go(func() error {
			powers[i] = precomputeSingleGenerator(generators[i], w)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &MsmPrecomputation{powersPerGenerator: powers, w: w}, nil
}

func precomputeSingleGenerator(gen ProjectivePoint, w int) []AffinePoint {
	digits := NumDigits(w)
	powers := make([]ProjectivePoint, digits)
	powers[0] = gen
	for i := 1; i < digits; i++ {
		power := powers[i-1]
		for j := 0; j < w; j++ {
			power = power.Double()
		}
		powers[i] = power
	}
	return ProjectiveToAffineBatch(powers)
}

// MsmExecute computes sum_i scalars[i] * generators[i] sequentially. For
// each digit value from the largest down to 1, the running sum u picks up
// the window points carrying that digit, and y accumulates u, so a point
// with digit d is counted d times.
func MsmExecute(precomputation *MsmPrecomputation, scalars []fr.Element) (ProjectivePoint, error) {
	if len(scalars) != len(precomputation.powersPerGenerator) {
		return ProjectivePoint{}, fmt.Errorf("expected %d scalars, got %d",
			len(precomputation.powersPerGenerator), len(scalars))
	}

	digitsPerScalar := make([][]int, len(scalars))
	for i := range scalars {
		digitsPerScalar[i] = toDigits(&scalars[i], precomputation.w)
	}

	base := 1 << precomputation.w
	y := ProjectiveIdentity()
	u := ProjectiveIdentity()
	for j := base - 1; j >= 1; j-- {
		for i := range scalars {
			for idx, digit := range digitsPerScalar[i] {
				if digit == j {
					u = u.AddAffine(precomputation.powersPerGenerator[i][idx])
				}
			}
		}
		y = y.Add(u)
	}
	return y, nil
}

// MsmExecuteParallel computes the same sum with the digit buckets
// pre-reduced in parallel. The final reduction over digit values is
// inherently sequential and must run from the highest digit down.
func MsmExecuteParallel(precomputation *MsmPrecomputation, scalars []fr.Element) (ProjectivePoint, error) {
	if len(scalars) != len(precomputation.powersPerGenerator) {
		return ProjectivePoint{}, fmt.Errorf("expected %d scalars, got %d",
			len(precomputation.powersPerGenerator), len(scalars))
	}

	base := 1 << precomputation.w
	digitOccurrences := make([][]AffinePoint, base)
	for i := range scalars {
		digits := toDigits(&scalars[i], precomputation.w)
		for idx, digit := range digits {
			if digit != 0 {
				digitOccurrences[digit] = append(digitOccurrences[digit], precomputation.powersPerGenerator[i][idx])
			}
		}
	}

	// Bucket sums for digit values 1..base-1, one chunk of digit values
	// per worker.
	buckets := digitOccurrences[1:]
	digitAcc := make([]AffinePoint, len(buckets))
	var g errgroup.Group
	for start := 0; start < len(buckets); start += DigitsPerChunk {
		end := min(start+DigitsPerChunk, len(buckets))
		g.Go(func() error {
			copy(digitAcc[start:end], AffineMultiSummationBest(buckets[start:end]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ProjectivePoint{}, err
	}

	y := ProjectiveIdentity()
	u := ProjectiveIdentity()
	for j := base - 1; j >= 1; j-- {
		u = u.AddAffine(digitAcc[j-1])
		y = y.Add(u)
	}
	return y, nil
}

// MsmParallel is the one-shot form: precompute the window tables, then
// execute in parallel
func MsmParallel(scalars []fr.Element, generators []ProjectivePoint, w int) (ProjectivePoint, error) {
	precomputation, err := MsmPrecompute(generators, w)
	if err != nil {
		return ProjectivePoint{}, err
	}
	return MsmExecuteParallel(precomputation, scalars)
}

// toDigits decomposes a scalar into w-bit digits, least significant digit
// first
func toDigits(s *fr.Element, w int) []int {
	var value big.Int
	s.BigInt(&value)

	digits := make([]int, NumDigits(w))
	for j := range digits {
		digit := 0
		for bit := w - 1; bit >= 0; bit-- {
			digit = digit<<1 | int(value.Bit(j*w+bit))
		}
		digits[j] = digit
	}
	return digits
}
