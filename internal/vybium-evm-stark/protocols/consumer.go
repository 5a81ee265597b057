// Package protocols implements the constraint accumulation, permutation
// and cross-table lookup arguments of the multi-table STARK
package protocols

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// ConstraintConsumer combines many individual zero-test constraints into
// randomized linear combinations, one running sum per alpha challenge.
// Row filtering is expressed through the evaluations of X - g^(n-1) and
// the first/last-row Lagrange basis polynomials at the current point.
type ConstraintConsumer struct {
	// Random values used to combine multiple constraints into one
	alphas []field.Element

	// Running sums of constraints emitted so far, scaled by powers of alpha
	constraintAccs []field.Element

	// The evaluation of X - g^(n-1), zero exactly at the last row
	zLast field.Element

	// The evaluation of the Lagrange basis polynomial which is nonzero at
	// the point associated with the first trace row
	lagrangeBasisFirst field.Element

	// The evaluation of the Lagrange basis polynomial which is nonzero at
	// the point associated with the last trace row
	lagrangeBasisLast field.Element

	debugAPI bool
}

// NewConstraintConsumer creates a consumer for the given alpha challenges
// and row-filter evaluations
func NewConstraintConsumer(alphas []field.Element, zLast, lagrangeBasisFirst, lagrangeBasisLast field.Element) *ConstraintConsumer {
	accs := make([]field.Element, len(alphas))
	for i := range accs {
		accs[i] = field.Zero
	}
	return &ConstraintConsumer{
		alphas:             alphas,
		constraintAccs:     accs,
		zLast:              zLast,
		lagrangeBasisFirst: lagrangeBasisFirst,
		lagrangeBasisLast:  lagrangeBasisLast,
	}
}

// Accumulators returns the running constraint sums
func (c *ConstraintConsumer) Accumulators() []field.Element {
	return c.constraintAccs
}

// Constraint adds one constraint valid on all rows
func (c *ConstraintConsumer) Constraint(constraint field.Element) {
	for i, alpha := range c.alphas {
		c.constraintAccs[i] = c.constraintAccs[i].Mul(alpha).Add(constraint)
	}
}

// ConstraintTransition adds one constraint valid on all rows except the
// last, where the relation to a next row is vacuous
func (c *ConstraintConsumer) ConstraintTransition(constraint field.Element) {
	c.Constraint(constraint.Mul(c.zLast))
}

// ConstraintFirstRow adds one constraint that only applies to the first
// row of the trace
func (c *ConstraintConsumer) ConstraintFirstRow(constraint field.Element) {
	c.Constraint(constraint.Mul(c.lagrangeBasisFirst))
}

// ConstraintLastRow adds one constraint that only applies to the last
// row of the trace
func (c *ConstraintConsumer) ConstraintLastRow(constraint field.Element) {
	c.Constraint(constraint.Mul(c.lagrangeBasisLast))
}

// ConstraintWrapping adds one constraint with no row filtering at all,
// constraining the wrap-around transition from the last row to the first
// as well. Used for relations that truly must hold cyclically.
func (c *ConstraintConsumer) ConstraintWrapping(constraint field.Element) {
	c.Constraint(constraint)
}

// NewDebugConsumer creates a consumer whose row filters can be toggled to
// check individual constraint classes in unit tests
func NewDebugConsumer() *ConstraintConsumer {
	return &ConstraintConsumer{
		alphas:             []field.Element{field.One},
		constraintAccs:     []field.Element{field.Zero},
		zLast:              field.One,
		lagrangeBasisFirst: field.One,
		lagrangeBasisLast:  field.One,
		debugAPI:           true,
	}
}

// ActivateFirstRow configures the debug consumer as if evaluating at the
// first trace row
func (c *ConstraintConsumer) ActivateFirstRow() {
	if !c.debugAPI {
		panic("debug filters require a debug consumer")
	}
	c.lagrangeBasisFirst = field.One
	c.zLast = field.One
	c.lagrangeBasisLast = field.Zero
}

// ActivateTransition configures the debug consumer as if evaluating at an
// interior trace row
func (c *ConstraintConsumer) ActivateTransition() {
	if !c.debugAPI {
		panic("debug filters require a debug consumer")
	}
	c.lagrangeBasisFirst = field.Zero
	c.zLast = field.One
	c.lagrangeBasisLast = field.Zero
}

// ActivateLastRow configures the debug consumer as if evaluating at the
// last trace row
func (c *ConstraintConsumer) ActivateLastRow() {
	if !c.debugAPI {
		panic("debug filters require a debug consumer")
	}
	c.lagrangeBasisFirst = field.Zero
	c.zLast = field.Zero
	c.lagrangeBasisLast = field.One
}

// Failed reports whether any accumulated constraint is nonzero
func (c *ConstraintConsumer) Failed() bool {
	for _, acc := range c.constraintAccs {
		if !acc.IsZero() {
			return true
		}
	}
	return false
}

// Reset clears the accumulators so the consumer can be reused across rows
func (c *ConstraintConsumer) Reset() {
	for i := range c.constraintAccs {
		c.constraintAccs[i] = field.Zero
	}
}
