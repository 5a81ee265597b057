package curve

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/secp256k1/fp"
	"github.com/consensys/gnark-crypto/ecc/secp256k1/fr"
)

// The GLV endomorphism of secp256k1: phi(x, y) = (beta * x, y) acts on
// the group as multiplication by lambda. Scalars decompose as
// k = k1 + k2 * lambda with k1, k2 roughly half the bit length of the
// group order, via the lattice basis (a1, b1), (a2, b2).
var (
	glvBeta   fp.Element
	glvLambda fr.Element

	glvA1      = bigFromLimbs(16747920425669159701, 3496713202691238861, 0, 0)
	glvMinusB1 = bigFromLimbs(8022177200260244675, 16448129721693014056, 0, 0)
	glvA2      = bigFromLimbs(6323353552219852760, 1498098850674701302, 1, 0)
	glvB2      = glvA1
)

func init() {
	glvBeta.SetBigInt(bigFromLimbs(13923278643952681454, 11308619431505398165, 7954561588662645993, 8856726876819556112))
	glvLambda.SetBigInt(bigFromLimbs(16069571880186789234, 1310022930574435960, 11900229862571533402, 6008836872998760672))
}

// bigFromLimbs assembles a big.Int from 64-bit limbs, least significant
// first
func bigFromLimbs(limbs ...uint64) *big.Int {
	value := new(big.Int)
	for i := len(limbs) - 1; i >= 0; i-- {
		value.Lsh(value, 64)
		value.Or(value, new(big.Int).SetUint64(limbs[i]))
	}
	return value
}

// GlvBeta returns the base-field constant of the endomorphism
func GlvBeta() fp.Element {
	return glvBeta
}

// GlvLambda returns the group-order eigenvalue of the endomorphism
func GlvLambda() fr.Element {
	return glvLambda
}

// Endomorphism applies phi(x, y) = (beta * x, y)
func Endomorphism(p AffinePoint) AffinePoint {
	if p.Zero {
		return p
	}
	var x fp.Element
	x.Mul(&glvBeta, &p.X)
	return AffinePoint{X: x, Y: p.Y}
}

// DecomposeScalar splits k into (k1, k2) with k = +-k1 +- k2 * lambda
// mod the group order, both components at most half the order's bit
// length. The sign flags report which components were negated to keep
// them short.
func DecomposeScalar(k *fr.Element) (k1, k2 fr.Element, k1Neg, k2Neg bool) {
	var kBig big.Int
	k.BigInt(&kBig)
	order := fr.Modulus()

	c1 := roundedDiv(new(big.Int).Mul(glvB2, &kBig), order)
	c2 := roundedDiv(new(big.Int).Mul(glvMinusB1, &kBig), order)

	k1Raw := new(big.Int).Mul(c1, glvA1)
	k1Raw.Add(k1Raw, new(big.Int).Mul(c2, glvA2))
	k1Raw.Sub(&kBig, k1Raw)
	k1Raw.Mod(k1Raw, order)

	k2Raw := new(big.Int).Mul(c1, glvMinusB1)
	k2Raw.Sub(k2Raw, new(big.Int).Mul(c2, glvB2))
	k2Raw.Mod(k2Raw, order)

	halfOrder := new(big.Int).Rsh(order, 1)
	if k1Raw.Cmp(halfOrder) > 0 {
		k1Raw.Sub(order, k1Raw)
		k1Neg = true
	}
	if k2Raw.Cmp(halfOrder) > 0 {
		k2Raw.Sub(order, k2Raw)
		k2Neg = true
	}

	k1.SetBigInt(k1Raw)
	k2.SetBigInt(k2Raw)
	return k1, k2, k1Neg, k2Neg
}

// roundedDiv divides x by n rounding to the nearest integer, halves away
// from zero
func roundedDiv(x, n *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(x, n, new(big.Int))
	if r.Lsh(r, 1).Cmp(n) >= 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// GlvMul computes k * P through the endomorphism: a two-scalar MSM of the
// half-length components against P and phi(P)
func GlvMul(k *fr.Element, p AffinePoint) (ProjectivePoint, error) {
	k1, k2, k1Neg, k2Neg := DecomposeScalar(k)

	first := p.ToProjective()
	if k1Neg {
		first = first.Neg()
	}
	second := Endomorphism(p).ToProjective()
	if k2Neg {
		second = second.Neg()
	}

	return MsmParallel([]fr.Element{k1, k2}, []ProjectivePoint{first, second}, 5)
}
