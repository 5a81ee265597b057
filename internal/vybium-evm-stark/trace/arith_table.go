package trace

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/arithmetic"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/core"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/protocols"
)

// ArithTrace holds the rows of the 256-bit arithmetic unit. Each row is
// one operation with its operands, result and auxiliary witness.
type ArithTrace struct {
	rows         [][]field.Element
	height       int
	paddedHeight int
}

// NewArithTrace creates an empty arithmetic table
func NewArithTrace() *ArithTrace {
	return &ArithTrace{}
}

// GetID returns the table's unique identifier
func (t *ArithTrace) GetID() TableID {
	return ArithTable
}

// GetHeight returns the number of operation rows before padding
func (t *ArithTrace) GetHeight() int {
	if t.paddedHeight != 0 {
		return t.height
	}
	return len(t.rows)
}

// GetPaddedHeight returns the height after padding
func (t *ArithTrace) GetPaddedHeight() int {
	return t.paddedHeight
}

// GetMainColumns returns the witness columns, column-major
func (t *ArithTrace) GetMainColumns() [][]field.Element {
	return rowsToColumns(t.rows, arithmetic.NumArithColumns)
}

// AddOperation appends one arithmetic row, driving the unit generators to
// fill the output and auxiliary registers
func (t *ArithTrace) AddOperation(op int, left, right *uint256.Int) error {
	if t.paddedHeight != 0 {
		return fmt.Errorf("arith table is padded and immutable")
	}

	row := make([]field.Element, arithmetic.NumArithColumns)
	var err error
	switch op {
	case arithmetic.IsMul:
		err = arithmetic.GenerateMul(row, left, right)
	default:
		err = arithmetic.GenerateAddcy(row, op, left, right)
	}
	if err != nil {
		return fmt.Errorf("generating %s row %d: %w", TableID(ArithTable), len(t.rows), err)
	}
	t.rows = append(t.rows, row)
	return nil
}

// Pad extends the table with all-zero rows, which every unit ignores
// since their selectors are zero
func (t *ArithTrace) Pad(targetHeight int) error {
	if targetHeight < len(t.rows) {
		return fmt.Errorf("target height %d below current height %d", targetHeight, len(t.rows))
	}
	t.height = len(t.rows)
	for len(t.rows) < targetHeight {
		t.rows = append(t.rows, zeroRow(arithmetic.NumArithColumns))
	}
	t.paddedHeight = targetHeight
	return nil
}

// CheckConstraints evaluates every unit's constraints on every row and
// reports the first violation
func (t *ArithTrace) CheckConstraints() error {
	consumer := protocols.NewDebugConsumer()
	consumer.ActivateTransition()
	for r, row := range t.rows {
		arithmetic.EvalAddcy(row, consumer)
		arithmetic.EvalMul(row, consumer)
		if consumer.Failed() {
			return fmt.Errorf("arithmetic constraints violated at row %d", r)
		}
		consumer.Reset()
	}
	return nil
}

// LimbValues returns the register limbs of every operation row, the
// values the range-check table must cover
func (t *ArithTrace) LimbValues() []field.Element {
	registers := []int{
		arithmetic.InputRegister0,
		arithmetic.InputRegister1,
		arithmetic.OutputRegister,
	}
	var values []field.Element
	for _, row := range t.rows {
		for _, base := range registers {
			values = append(values, row[base:base+core.NumLimbs]...)
		}
	}
	return values
}

// arithOperandColumns lists the columns projected into the cross-table
// lookup with the CPU: both input registers and the output register
func arithOperandColumns() []int {
	columns := make([]int, 0, 3*core.NumLimbs)
	for _, base := range []int{arithmetic.InputRegister0, arithmetic.InputRegister1, arithmetic.OutputRegister} {
		for i := 0; i < core.NumLimbs; i++ {
			columns = append(columns, base+i)
		}
	}
	return columns
}
