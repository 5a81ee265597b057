package trace

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/arithmetic"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/core"
)

// CPU table layout: a clock column, one selector per arithmetic
// operation, and the operand and result registers of the request
const (
	CPUClock = iota

	cpuSelectorBase = 1

	CPUIn0  = cpuSelectorBase + arithmetic.NumSelectors
	CPUIn1  = CPUIn0 + core.NumLimbs
	CPUOut  = CPUIn1 + core.NumLimbs
	CPUNext = CPUOut + core.NumLimbs

	NumCPUColumns = CPUNext
)

// CPUSelectorColumn returns the CPU column holding the selector of the
// given arithmetic operation
func CPUSelectorColumn(op int) int {
	return cpuSelectorBase + op
}

// CPUTrace records one row per executed cycle. Cycles requesting an
// arithmetic operation carry the operands and the result, which the
// cross-table lookup matches against the arithmetic table.
type CPUTrace struct {
	rows         [][]field.Element
	height       int
	paddedHeight int
}

// NewCPUTrace creates an empty CPU table
func NewCPUTrace() *CPUTrace {
	return &CPUTrace{}
}

// GetID returns the table's unique identifier
func (t *CPUTrace) GetID() TableID {
	return CPUTable
}

// GetHeight returns the number of cycles before padding
func (t *CPUTrace) GetHeight() int {
	if t.paddedHeight != 0 {
		return t.height
	}
	return len(t.rows)
}

// GetPaddedHeight returns the height after padding
func (t *CPUTrace) GetPaddedHeight() int {
	return t.paddedHeight
}

// GetMainColumns returns the witness columns, column-major
func (t *CPUTrace) GetMainColumns() [][]field.Element {
	return rowsToColumns(t.rows, NumCPUColumns)
}

// AddIdleCycle appends a cycle making no arithmetic request
func (t *CPUTrace) AddIdleCycle() error {
	if t.paddedHeight != 0 {
		return fmt.Errorf("cpu table is padded and immutable")
	}
	row := zeroRow(NumCPUColumns)
	row[CPUClock] = field.New(uint64(len(t.rows)))
	t.rows = append(t.rows, row)
	return nil
}

// AddOperation appends a cycle requesting an arithmetic operation and
// returns its result. The recorded result register matches what the
// arithmetic unit will witness for the same operands.
func (t *CPUTrace) AddOperation(op int, left, right *uint256.Int) (*uint256.Int, error) {
	if t.paddedHeight != 0 {
		return nil, fmt.Errorf("cpu table is padded and immutable")
	}

	var result *uint256.Int
	switch op {
	case arithmetic.IsAdd:
		result = new(uint256.Int).Add(left, right)
	case arithmetic.IsSub:
		result = new(uint256.Int).Sub(left, right)
	case arithmetic.IsLt:
		result = uint256.NewInt(0)
		if left.Lt(right) {
			result.SetOne()
		}
	case arithmetic.IsGt:
		result = uint256.NewInt(0)
		if left.Gt(right) {
			result.SetOne()
		}
	case arithmetic.IsMul:
		result = new(uint256.Int).Mul(left, right)
	default:
		return nil, fmt.Errorf("%w: selector %d", arithmetic.ErrUnsupportedOperation, op)
	}

	row := zeroRow(NumCPUColumns)
	row[CPUClock] = field.New(uint64(len(t.rows)))
	row[CPUSelectorColumn(op)] = field.One
	writeCPURegister(row, CPUIn0, left)
	writeCPURegister(row, CPUIn1, right)
	writeCPURegister(row, CPUOut, result)
	t.rows = append(t.rows, row)
	return result, nil
}

func writeCPURegister(row []field.Element, base int, v *uint256.Int) {
	limbs := core.U256ToLimbs(v)
	copy(row[base:base+core.NumLimbs], limbs[:])
}

// Pad extends the table with idle cycles
func (t *CPUTrace) Pad(targetHeight int) error {
	if targetHeight < len(t.rows) {
		return fmt.Errorf("target height %d below current height %d", targetHeight, len(t.rows))
	}
	t.height = len(t.rows)
	for len(t.rows) < targetHeight {
		row := zeroRow(NumCPUColumns)
		row[CPUClock] = field.New(uint64(len(t.rows)))
		t.rows = append(t.rows, row)
	}
	t.paddedHeight = targetHeight
	return nil
}

// cpuOperandColumns lists the CPU columns projected into the cross-table
// lookup with the arithmetic table, in the same order as the arithmetic
// side
func cpuOperandColumns() []int {
	columns := make([]int, 0, 3*core.NumLimbs)
	for _, base := range []int{CPUIn0, CPUIn1, CPUOut} {
		for i := 0; i < core.NumLimbs; i++ {
			columns = append(columns, base+i)
		}
	}
	return columns
}
