// Package curve implements secp256k1 group arithmetic: affine and
// projective points, batched summation, windowed multi-scalar
// multiplication and GLV endomorphism-based scalar multiplication
package curve

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/secp256k1/fp"
)

// AffinePoint represents a secp256k1 point in affine coordinates. The
// identity has no affine representation and is carried in the Zero flag.
type AffinePoint struct {
	X, Y fp.Element
	Zero bool
}

// ProjectivePoint represents a secp256k1 point in homogeneous projective
// coordinates. The identity is any point with Z = 0.
type ProjectivePoint struct {
	X, Y, Z fp.Element
}

// Generator returns the secp256k1 base point
func Generator() AffinePoint {
	var g AffinePoint
	g.X.SetString("0x79BE667EF9DCBBAC55A06295CE870B07029BFCDB2DCE28D959F2815B16F81798")
	g.Y.SetString("0x483ADA7726A3C4655DA4FBFC0E1108A8FD17B448A68554199C47D08FFB10D4B8")
	return g
}

// AffineIdentity returns the identity in affine form
func AffineIdentity() AffinePoint {
	return AffinePoint{Zero: true}
}

// ProjectiveIdentity returns the identity in projective form
func ProjectiveIdentity() ProjectivePoint {
	var p ProjectivePoint
	p.Y.SetOne()
	return p
}

// NewAffinePoint builds an affine point from coordinates, rejecting points
// off the curve
func NewAffinePoint(x, y fp.Element) (AffinePoint, error) {
	p := AffinePoint{X: x, Y: y}
	if !p.IsOnCurve() {
		return AffinePoint{}, fmt.Errorf("point is not on the curve")
	}
	return p, nil
}

// IsOnCurve reports whether the point satisfies y^2 = x^3 + 7
func (p AffinePoint) IsOnCurve() bool {
	if p.Zero {
		return true
	}
	var lhs, rhs, seven fp.Element
	lhs.Square(&p.Y)
	rhs.Square(&p.X)
	rhs.Mul(&rhs, &p.X)
	seven.SetUint64(7)
	rhs.Add(&rhs, &seven)
	return lhs.Equal(&rhs)
}

// Neg returns the additive inverse
func (p AffinePoint) Neg() AffinePoint {
	if p.Zero {
		return p
	}
	var y fp.Element
	y.Neg(&p.Y)
	return AffinePoint{X: p.X, Y: y}
}

// Eq reports whether two affine points are equal
func (p AffinePoint) Eq(q AffinePoint) bool {
	if p.Zero || q.Zero {
		return p.Zero == q.Zero
	}
	return p.X.Equal(&q.X) && p.Y.Equal(&q.Y)
}

// ToProjective lifts the point to projective coordinates
func (p AffinePoint) ToProjective() ProjectivePoint {
	if p.Zero {
		return ProjectiveIdentity()
	}
	var out ProjectivePoint
	out.X = p.X
	out.Y = p.Y
	out.Z.SetOne()
	return out
}

// Add returns P + Q in projective form using the add-1998-cmo-2 formulas
// specialized to Z1 = Z2 = 1, dispatching to doubling when the operands
// coincide
func (p AffinePoint) Add(q AffinePoint) ProjectivePoint {
	if p.Zero {
		return q.ToProjective()
	}
	if q.Zero {
		return p.ToProjective()
	}

	var u, v fp.Element
	u.Sub(&q.Y, &p.Y)
	v.Sub(&q.X, &p.X)

	if v.IsZero() {
		if u.IsZero() {
			return p.ToProjective().Double()
		}
		return ProjectiveIdentity()
	}

	var uu, vv, vvv, r, a, t fp.Element
	uu.Square(&u)
	vv.Square(&v)
	vvv.Mul(&v, &vv)
	r.Mul(&vv, &p.X)
	a.Sub(&uu, &vvv)
	t.Double(&r)
	a.Sub(&a, &t)

	var out ProjectivePoint
	out.X.Mul(&v, &a)
	t.Sub(&r, &a)
	out.Y.Mul(&u, &t)
	t.Mul(&vvv, &p.Y)
	out.Y.Sub(&out.Y, &t)
	out.Z = vvv
	return out
}

// IsIdentity reports whether the point is the identity
func (p ProjectivePoint) IsIdentity() bool {
	return p.Z.IsZero()
}

// Neg returns the additive inverse
func (p ProjectivePoint) Neg() ProjectivePoint {
	var y fp.Element
	y.Neg(&p.Y)
	return ProjectivePoint{X: p.X, Y: y, Z: p.Z}
}

// Eq reports whether two projective points represent the same group
// element, comparing cross products to avoid inversions
func (p ProjectivePoint) Eq(q ProjectivePoint) bool {
	if p.IsIdentity() || q.IsIdentity() {
		return p.IsIdentity() == q.IsIdentity()
	}
	var lhs, rhs fp.Element
	lhs.Mul(&p.X, &q.Z)
	rhs.Mul(&q.X, &p.Z)
	if !lhs.Equal(&rhs) {
		return false
	}
	lhs.Mul(&p.Y, &q.Z)
	rhs.Mul(&q.Y, &p.Z)
	return lhs.Equal(&rhs)
}

// ToAffine normalizes the point to affine coordinates
func (p ProjectivePoint) ToAffine() AffinePoint {
	if p.IsIdentity() {
		return AffineIdentity()
	}
	var zInv, x, y fp.Element
	zInv.Inverse(&p.Z)
	x.Mul(&p.X, &zInv)
	y.Mul(&p.Y, &zInv)
	return AffinePoint{X: x, Y: y}
}

// ProjectiveToAffineBatch normalizes many points with a single batched
// inversion. Identity points map to the affine identity.
func ProjectiveToAffineBatch(points []ProjectivePoint) []AffinePoint {
	zs := make([]fp.Element, len(points))
	for i, p := range points {
		zs[i] = p.Z
	}
	// BatchInvert leaves zero entries untouched, which is what identity
	// points need.
	zInvs := fp.BatchInvert(zs)

	out := make([]AffinePoint, len(points))
	for i, p := range points {
		if p.IsIdentity() {
			out[i] = AffineIdentity()
			continue
		}
		var x, y fp.Element
		x.Mul(&p.X, &zInvs[i])
		y.Mul(&p.Y, &zInvs[i])
		out[i] = AffinePoint{X: x, Y: y}
	}
	return out
}

// Double returns 2P using the dbl-2007-bl formulas specialized to a = 0
func (p ProjectivePoint) Double() ProjectivePoint {
	if p.IsIdentity() {
		return p
	}

	var xx, w, s, ss, sss, r, rr, b, h, t fp.Element
	xx.Square(&p.X)
	w.Double(&xx)
	w.Add(&w, &xx)
	s.Mul(&p.Y, &p.Z)
	s.Double(&s)
	ss.Square(&s)
	sss.Mul(&s, &ss)
	r.Mul(&p.Y, &s)
	rr.Square(&r)
	b.Add(&p.X, &r)
	b.Square(&b)
	b.Sub(&b, &xx)
	b.Sub(&b, &rr)
	h.Square(&w)
	h.Sub(&h, &b)
	h.Sub(&h, &b)

	var out ProjectivePoint
	out.X.Mul(&h, &s)
	t.Sub(&b, &h)
	out.Y.Mul(&w, &t)
	t.Double(&rr)
	out.Y.Sub(&out.Y, &t)
	out.Z = sss
	return out
}

// Add returns P + Q using the add-1998-cmo-2 formulas, dispatching to
// doubling when the operands coincide
func (p ProjectivePoint) Add(q ProjectivePoint) ProjectivePoint {
	if p.IsIdentity() {
		return q
	}
	if q.IsIdentity() {
		return p
	}

	var y2z1, y1z2, u, x2z1, x1z2, v fp.Element
	y2z1.Mul(&q.Y, &p.Z)
	y1z2.Mul(&p.Y, &q.Z)
	u.Sub(&y2z1, &y1z2)
	x2z1.Mul(&q.X, &p.Z)
	x1z2.Mul(&p.X, &q.Z)
	v.Sub(&x2z1, &x1z2)

	if v.IsZero() {
		if u.IsZero() {
			return p.Double()
		}
		return ProjectiveIdentity()
	}

	var uu, vv, vvv, r, a, z1z2, t fp.Element
	uu.Square(&u)
	vv.Square(&v)
	vvv.Mul(&v, &vv)
	r.Mul(&vv, &x1z2)
	z1z2.Mul(&p.Z, &q.Z)
	a.Mul(&uu, &z1z2)
	a.Sub(&a, &vvv)
	t.Double(&r)
	a.Sub(&a, &t)

	var out ProjectivePoint
	out.X.Mul(&v, &a)
	t.Sub(&r, &a)
	out.Y.Mul(&u, &t)
	t.Mul(&vvv, &y1z2)
	out.Y.Sub(&out.Y, &t)
	out.Z.Mul(&vvv, &z1z2)
	return out
}

// AddAffine returns P + Q for an affine Q, saving the Z2 multiplications
// of the general formulas
func (p ProjectivePoint) AddAffine(q AffinePoint) ProjectivePoint {
	if q.Zero {
		return p
	}
	if p.IsIdentity() {
		return q.ToProjective()
	}

	var u, v, t fp.Element
	u.Mul(&q.Y, &p.Z)
	u.Sub(&u, &p.Y)
	v.Mul(&q.X, &p.Z)
	v.Sub(&v, &p.X)

	if v.IsZero() {
		if u.IsZero() {
			return p.Double()
		}
		return ProjectiveIdentity()
	}

	var uu, vv, vvv, r, a fp.Element
	uu.Square(&u)
	vv.Square(&v)
	vvv.Mul(&v, &vv)
	r.Mul(&vv, &p.X)
	a.Mul(&uu, &p.Z)
	a.Sub(&a, &vvv)
	t.Double(&r)
	a.Sub(&a, &t)

	var out ProjectivePoint
	out.X.Mul(&v, &a)
	t.Sub(&r, &a)
	out.Y.Mul(&u, &t)
	t.Mul(&vvv, &p.Y)
	out.Y.Sub(&out.Y, &t)
	out.Z.Mul(&vvv, &p.Z)
	return out
}
