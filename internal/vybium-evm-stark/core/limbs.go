// Package core provides limb decomposition and batch field operations
// shared by the arithmetic constraint units
package core

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

const (
	// NumLimbs is the number of 16-bit limbs in a 256-bit value
	NumLimbs = 16

	// LimbBits is the width of a single limb
	LimbBits = 16

	// LimbMask extracts one limb from a machine word
	LimbMask = (1 << LimbBits) - 1
)

// NewFromInt64 maps a signed value to its field representative
func NewFromInt64(v int64) field.Element {
	if v < 0 {
		return field.New(uint64(-v)).Neg()
	}
	return field.New(uint64(v))
}

// U256ToLimbs decomposes a 256-bit value into 16-bit limbs, least significant first
func U256ToLimbs(x *uint256.Int) [NumLimbs]field.Element {
	var limbs [NumLimbs]field.Element
	for i := 0; i < 4; i++ {
		w := x[i]
		for j := 0; j < 4; j++ {
			limbs[4*i+j] = field.New((w >> (LimbBits * j)) & LimbMask)
		}
	}
	return limbs
}

// U256ToInt64Limbs decomposes a 256-bit value into 16-bit limbs held in
// signed machine integers, as used by witness generation
func U256ToInt64Limbs(x *uint256.Int) [NumLimbs]int64 {
	var limbs [NumLimbs]int64
	for i := 0; i < 4; i++ {
		w := x[i]
		for j := 0; j < 4; j++ {
			limbs[4*i+j] = int64((w >> (LimbBits * j)) & LimbMask)
		}
	}
	return limbs
}

// LimbsToU256 recombines 16-bit limbs into a 256-bit value.
// A limb holding a value >= 2^16 means the witness is malformed, so the
// range check runs unconditionally rather than as a debug assertion.
func LimbsToU256(limbs []field.Element) (*uint256.Int, error) {
	if len(limbs) != NumLimbs {
		return nil, fmt.Errorf("expected %d limbs, got %d", NumLimbs, len(limbs))
	}

	var out uint256.Int
	for i, limb := range limbs {
		v := limb.Value()
		if v > LimbMask {
			return nil, fmt.Errorf("limb %d out of range: %d does not fit in %d bits", i, v, LimbBits)
		}
		out[i/4] |= v << (LimbBits * (i % 4))
	}
	return &out, nil
}

// CombineLimbPairs converts 16-bit limbs into 32-bit limbs:
// limb32[k] = limb16[2k] + limb16[2k+1] * 2^16
func CombineLimbPairs(limbs []field.Element) ([]field.Element, error) {
	if len(limbs)%2 != 0 {
		return nil, fmt.Errorf("need an even number of 16-bit limbs, got %d", len(limbs))
	}

	combined := make([]field.Element, len(limbs)/2)
	for k := range combined {
		lo := limbs[2*k].Value()
		hi := limbs[2*k+1].Value()
		if lo > LimbMask || hi > LimbMask {
			return nil, fmt.Errorf("limb pair %d out of range: lo=%d hi=%d", k, lo, hi)
		}
		combined[k] = field.New(lo | hi<<LimbBits)
	}
	return combined, nil
}

// SplitLimbPairs converts 32-bit limbs back into 16-bit limbs.
// Inverse of CombineLimbPairs; the conversion is lossless for valid inputs.
func SplitLimbPairs(limbs []field.Element) ([]field.Element, error) {
	split := make([]field.Element, 2*len(limbs))
	for k, limb := range limbs {
		v := limb.Value()
		if v >= 1<<(2*LimbBits) {
			return nil, fmt.Errorf("limb %d out of range: %d does not fit in %d bits", k, v, 2*LimbBits)
		}
		split[2*k] = field.New(v & LimbMask)
		split[2*k+1] = field.New(v >> LimbBits)
	}
	return split, nil
}

// PolMulLo returns the low NumLimbs coefficients of the product a(x)*b(x),
// where a and b are polynomials with the limbs as coefficients
func PolMulLo(a, b [NumLimbs]int64) [NumLimbs]int64 {
	var res [NumLimbs]int64
	for d := 0; d < NumLimbs; d++ {
		for i := 0; i <= d; i++ {
			res[d] += a[i] * b[d-i]
		}
	}
	return res
}

// PolSubAssign subtracts b from a coefficient-wise
func PolSubAssign(a *[NumLimbs]int64, b [NumLimbs]int64) {
	for i := range a {
		a[i] -= b[i]
	}
}

// PolRemoveRootPow2 divides the polynomial a(x) by (x - 2^exp), assuming
// the division leaves no low-order remainder. The quotient is computed by
// synthetic division from the constant term upward:
//
//	q[0] = -a[0] / 2^exp
//	q[i] = (q[i-1] - a[i]) / 2^exp
func PolRemoveRootPow2(a [NumLimbs]int64, exp uint) [NumLimbs]int64 {
	var res [NumLimbs]int64
	acc := int64(0)
	for i := range a {
		acc = (acc - a[i]) >> exp
		res[i] = acc
	}
	return res
}

// PolMulLoElems is PolMulLo over field elements, used on the evaluation side
func PolMulLoElems(a, b [NumLimbs]field.Element) [NumLimbs]field.Element {
	var res [NumLimbs]field.Element
	for d := 0; d < NumLimbs; d++ {
		res[d] = field.Zero
		for i := 0; i <= d; i++ {
			res[d] = res[d].Add(a[i].Mul(b[d-i]))
		}
	}
	return res
}

// PolSubAssignElems subtracts b from a coefficient-wise over field elements
func PolSubAssignElems(a *[NumLimbs]field.Element, b [NumLimbs]field.Element) {
	for i := range a {
		a[i] = a[i].Sub(b[i])
	}
}

// PolAdjoinRoot computes the low NumLimbs coefficients of (x - root) * p(x):
//
//	res[0] = -root * p[0]
//	res[i] = p[i-1] - root * p[i]
//
// The coefficient of x^NumLimbs is dropped, matching the mod-2^256
// truncation of the multiplication unit.
func PolAdjoinRoot(p [NumLimbs]field.Element, root field.Element) [NumLimbs]field.Element {
	var res [NumLimbs]field.Element
	res[0] = root.Mul(p[0]).Neg()
	for i := 1; i < NumLimbs; i++ {
		res[i] = p[i-1].Sub(root.Mul(p[i]))
	}
	return res
}
