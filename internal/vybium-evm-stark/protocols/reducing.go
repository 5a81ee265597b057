package protocols

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// ReducingFactor folds a linear combination sum_i base^i * terms[i] into a
// sequence of multiply-accumulates (Horner's rule), avoiding computing the
// powers of the challenge independently.
type ReducingFactor struct {
	base field.Element
}

// NewReducingFactor creates a reducing factor for the given challenge
func NewReducingFactor(base field.Element) ReducingFactor {
	return ReducingFactor{base: base}
}

// Reduce returns sum_i base^i * terms[i]
func (r ReducingFactor) Reduce(terms []field.Element) field.Element {
	acc := field.Zero
	for i := len(terms) - 1; i >= 0; i-- {
		acc = acc.Mul(r.base).Add(terms[i])
	}
	return acc
}

// ReduceWithOffset returns offset + sum_i base^i * terms[i], the reduced
// row combination used by the permutation and cross-table arguments
func (r ReducingFactor) ReduceWithOffset(terms []field.Element, offset field.Element) field.Element {
	return r.Reduce(terms).Add(offset)
}
