package arithmetic

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/core"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/protocols"
)

// ErrUnsupportedOperation reports an operation the arithmetic table has no
// unit for
var ErrUnsupportedOperation = errors.New("unsupported arithmetic operation")

// goldilocksInverse65536 is the inverse of 2^16 in the Goldilocks field,
// used to propagate carries without a division
const goldilocksInverse65536 uint64 = 18446462594437939201

// GenerateAddcy fills one arithmetic row for an addition, subtraction or
// ordered comparison of two 256-bit operands. The four operations share
// one carry-chain relation X + Y = Z + CY * 2^256 with the registers
// playing different roles per operation:
//
//	ADD: in0 + in1 = out + aux * 2^256
//	SUB: in1 + out = in0 + aux * 2^256
//	LT:  in1 + aux = in0 + out * 2^256
//	GT:  in0 + aux = in1 + out * 2^256
//
// so SUB witnesses the difference in the output register, while LT and GT
// witness the difference in the auxiliary register and the borrow bit, the
// comparison result, in the output register.
func GenerateAddcy(lv []field.Element, op int, leftIn, rightIn *uint256.Int) error {
	if len(lv) != NumArithColumns {
		return fmt.Errorf("expected %d columns, got %d", NumArithColumns, len(lv))
	}

	for s := 0; s < NumSelectors; s++ {
		lv[s] = field.Zero
	}
	lv[op] = field.One

	writeRegister(lv, InputRegister0, leftIn)
	writeRegister(lv, InputRegister1, rightIn)

	switch op {
	case IsAdd:
		sum, carry := new(uint256.Int).AddOverflow(leftIn, rightIn)
		writeRegister(lv, OutputRegister, sum)
		writeCarry(lv, AuxInputRegister0, carry)
	case IsSub:
		diff, borrow := new(uint256.Int).SubOverflow(leftIn, rightIn)
		writeRegister(lv, OutputRegister, diff)
		writeCarry(lv, AuxInputRegister0, borrow)
	case IsLt:
		diff, borrow := new(uint256.Int).SubOverflow(leftIn, rightIn)
		writeRegister(lv, AuxInputRegister0, diff)
		writeCarry(lv, OutputRegister, borrow)
	case IsGt:
		diff, borrow := new(uint256.Int).SubOverflow(rightIn, leftIn)
		writeRegister(lv, AuxInputRegister0, diff)
		writeCarry(lv, OutputRegister, borrow)
	default:
		return fmt.Errorf("%w: selector %d", ErrUnsupportedOperation, op)
	}
	return nil
}

func writeRegister(lv []field.Element, base int, v *uint256.Int) {
	limbs := core.U256ToLimbs(v)
	copy(lv[base:base+core.NumLimbs], limbs[:])
}

func writeCarry(lv []field.Element, base int, carry bool) {
	lv[base] = field.Zero
	if carry {
		lv[base] = field.One
	}
	for i := 1; i < core.NumLimbs; i++ {
		lv[base+i] = field.Zero
	}
}

// EvalAddcy evaluates the carry-chain constraints of all four operations
// on one row. With every selector zero the emitted terms vanish no matter
// what the registers hold.
func EvalAddcy(lv []field.Element, consumer *protocols.ConstraintConsumer) {
	in0 := lv[InputRegister0 : InputRegister0+core.NumLimbs]
	in1 := lv[InputRegister1 : InputRegister1+core.NumLimbs]
	out := lv[OutputRegister : OutputRegister+core.NumLimbs]
	aux := lv[AuxInputRegister0 : AuxInputRegister0+core.NumLimbs]

	evalAddcyConstraints(consumer, lv[IsAdd], in0, in1, out, aux, false)
	evalAddcyConstraints(consumer, lv[IsSub], in1, out, in0, aux, false)
	evalAddcyConstraints(consumer, lv[IsLt], in1, aux, in0, out, false)
	evalAddcyConstraints(consumer, lv[IsGt], in0, aux, in1, out, false)
}

// evalAddcyConstraints pins the relation x + y = z + givenCy * 2^256 limb
// by limb. For each limb, t = cy + x_i + y_i - z_i must be 0 or 2^16, and
// the next carry is t / 2^16. The claimed carry-out must be boolean, live
// only in its first limb, and match the propagated carry. Two-row
// operations read z from the following row, so their limb constraints are
// emitted as transitions and the boolean check is left to the owner of the
// carry column.
func evalAddcyConstraints(consumer *protocols.ConstraintConsumer, filter field.Element, x, y, z, givenCy []field.Element, isTwoRowOp bool) {
	overflow := field.New(1 << core.LimbBits)
	overflowInv := field.New(goldilocksInverse65536)

	cy := field.Zero
	for i := 0; i < core.NumLimbs; i++ {
		t := cy.Add(x[i]).Add(y[i]).Sub(z[i])
		limbConstraint := filter.Mul(t).Mul(t.Sub(overflow))
		if isTwoRowOp {
			consumer.ConstraintTransition(limbConstraint)
		} else {
			consumer.Constraint(limbConstraint)
		}
		cy = t.Mul(overflowInv)
	}

	if isTwoRowOp {
		consumer.ConstraintTransition(filter.Mul(cy.Sub(givenCy[0])))
		for i := 1; i < core.NumLimbs; i++ {
			consumer.ConstraintTransition(filter.Mul(givenCy[i]))
		}
	} else {
		consumer.Constraint(filter.Mul(givenCy[0]).Mul(givenCy[0].Sub(field.One)))
		consumer.Constraint(filter.Mul(cy.Sub(givenCy[0])))
		for i := 1; i < core.NumLimbs; i++ {
			consumer.Constraint(filter.Mul(givenCy[i]))
		}
	}
}
