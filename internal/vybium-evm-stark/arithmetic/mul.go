package arithmetic

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/core"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/protocols"
)

// AuxCoeffAbsMax bounds the absolute value of a multiplication quotient
// coefficient. Quotient limbs are stored offset by this constant so the
// committed columns hold only non-negative range-checked values.
const AuxCoeffAbsMax = 1 << 20

// GenerateMul fills one arithmetic row for a 256-bit multiplication. The
// output register receives left * right mod 2^256 via schoolbook
// column-wise multiplication. The auxiliary registers receive the quotient
// Q of
//
//	A(x) * B(x) - C(x) = (x - 2^16) * Q(x)
//
// offset by AuxCoeffAbsMax and split into 16-bit lo and hi halves.
func GenerateMul(lv []field.Element, leftIn, rightIn *uint256.Int) error {
	if len(lv) != NumArithColumns {
		return fmt.Errorf("expected %d columns, got %d", NumArithColumns, len(lv))
	}

	for s := 0; s < NumSelectors; s++ {
		lv[s] = field.Zero
	}
	lv[IsMul] = field.One

	writeRegister(lv, InputRegister0, leftIn)
	writeRegister(lv, InputRegister1, rightIn)

	leftLimbs := core.U256ToInt64Limbs(leftIn)
	rightLimbs := core.U256ToInt64Limbs(rightIn)

	// Propagate carries through the column-wise product to obtain the
	// 16-bit output limbs. The carry out of the top limb is the part of the
	// product beyond 2^256.
	unreducedProd := core.PolMulLo(leftLimbs, rightLimbs)
	var outputLimbs [core.NumLimbs]int64
	var cy int64
	for col := 0; col < core.NumLimbs; col++ {
		t := unreducedProd[col] + cy
		cy = t >> core.LimbBits
		outputLimbs[col] = t & core.LimbMask
	}
	for i, limb := range outputLimbs {
		lv[OutputRegister+i] = field.New(uint64(limb))
	}

	// A(x)*B(x) - C(x) vanishes at x = 2^16, so synthetic division by
	// (x - 2^16) is exact up to the coefficient of x^16, which carries the
	// discarded part of the product.
	core.PolSubAssign(&unreducedProd, outputLimbs)
	auxLimbs := core.PolRemoveRootPow2(unreducedProd, core.LimbBits)
	auxLimbs[core.NumLimbs-1] = -cy

	for i, c := range auxLimbs {
		if c > AuxCoeffAbsMax || c < -AuxCoeffAbsMax {
			return fmt.Errorf("quotient coefficient %d out of range: %d", i, c)
		}
		offset := uint64(c + AuxCoeffAbsMax)
		lv[AuxInputRegister0+i] = field.New(offset & core.LimbMask)
		lv[AuxInputRegister1+i] = field.New(offset >> core.LimbBits)
	}
	return nil
}

// EvalMul evaluates the multiplication constraints on one row: the
// column-wise product of the inputs, less the output, must equal
// (x - 2^16) times the witnessed quotient, coefficient by coefficient
func EvalMul(lv []field.Element, consumer *protocols.ConstraintConsumer) {
	isMul := lv[IsMul]
	base := field.New(1 << core.LimbBits)
	offset := field.New(AuxCoeffAbsMax)

	var in0, in1, out, aux [core.NumLimbs]field.Element
	for i := 0; i < core.NumLimbs; i++ {
		in0[i] = lv[InputRegister0+i]
		in1[i] = lv[InputRegister1+i]
		out[i] = lv[OutputRegister+i]
		aux[i] = lv[AuxInputRegister0+i].Add(lv[AuxInputRegister1+i].Mul(base)).Sub(offset)
	}

	constrPoly := core.PolMulLoElems(in0, in1)
	core.PolSubAssignElems(&constrPoly, out)
	adjoined := core.PolAdjoinRoot(aux, base)
	for i := 0; i < core.NumLimbs; i++ {
		consumer.Constraint(isMul.Mul(constrPoly[i].Sub(adjoined[i])))
	}
}
