package trace

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/core"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/protocols"
)

// Range-check table layout: the values to check, the counter column
// 0..height-1 they must appear in, and the sorted permuted copies the
// lookup argument constrains
const (
	RcInput = iota
	RcTable
	RcPermutedInput
	RcPermutedTable

	NumRangeCheckColumns
)

// RangeCheckTrace proves every submitted value fits in 16 bits. The
// table column enumerates 0..height-1, so the trace demands a padded
// height large enough to contain its largest value.
type RangeCheckTrace struct {
	inputs        []field.Element
	table         []field.Element
	permutedInput []field.Element
	permutedTable []field.Element
	maxValue      uint64
	height        int
	paddedHeight  int
}

// NewRangeCheckTrace creates an empty range-check table
func NewRangeCheckTrace() *RangeCheckTrace {
	return &RangeCheckTrace{}
}

// GetID returns the table's unique identifier
func (t *RangeCheckTrace) GetID() TableID {
	return RangeCheckTable
}

// GetHeight returns the minimum height the table needs: enough rows for
// every input, and enough counter rows to reach the largest value
func (t *RangeCheckTrace) GetHeight() int {
	if t.paddedHeight != 0 {
		return t.height
	}
	height := len(t.inputs)
	if needed := int(t.maxValue) + 1; needed > height {
		height = needed
	}
	return height
}

// GetPaddedHeight returns the height after padding
func (t *RangeCheckTrace) GetPaddedHeight() int {
	return t.paddedHeight
}

// AddValue submits one value for range checking
func (t *RangeCheckTrace) AddValue(value field.Element) error {
	if t.paddedHeight != 0 {
		return fmt.Errorf("range-check table is padded and immutable")
	}
	v := value.Value()
	if v > core.LimbMask {
		return fmt.Errorf("value %d exceeds 16 bits", v)
	}
	if v > t.maxValue {
		t.maxValue = v
	}
	t.inputs = append(t.inputs, value)
	return nil
}

// AddValues submits a batch of values for range checking
func (t *RangeCheckTrace) AddValues(values []field.Element) error {
	for _, v := range values {
		if err := t.AddValue(v); err != nil {
			return err
		}
	}
	return nil
}

// Pad extends the inputs with zeros, fills the counter column and builds
// the permuted copies
func (t *RangeCheckTrace) Pad(targetHeight int) error {
	if targetHeight < t.GetHeight() {
		return fmt.Errorf("target height %d below required height %d", targetHeight, t.GetHeight())
	}
	t.height = t.GetHeight()
	for len(t.inputs) < targetHeight {
		t.inputs = append(t.inputs, field.Zero)
	}

	t.table = make([]field.Element, targetHeight)
	for r := range t.table {
		t.table[r] = field.New(uint64(r))
	}

	permutedInput, permutedTable, err := protocols.PermutedCols(t.inputs, t.table)
	if err != nil {
		return fmt.Errorf("building permuted columns: %w", err)
	}
	t.permutedInput = permutedInput
	t.permutedTable = permutedTable

	t.paddedHeight = targetHeight
	return nil
}

// GetMainColumns returns the witness columns, column-major. The counter
// and permuted columns are only populated once the table is padded.
func (t *RangeCheckTrace) GetMainColumns() [][]field.Element {
	columns := make([][]field.Element, NumRangeCheckColumns)
	columns[RcInput] = append([]field.Element{}, t.inputs...)
	columns[RcTable] = append([]field.Element{}, t.table...)
	columns[RcPermutedInput] = append([]field.Element{}, t.permutedInput...)
	columns[RcPermutedTable] = append([]field.Element{}, t.permutedTable...)
	for c := range columns {
		for len(columns[c]) < len(t.inputs) {
			columns[c] = append(columns[c], field.Zero)
		}
	}
	return columns
}

// CheckConstraints evaluates the lookup constraints on every row pair of
// the padded table, wrapping around, and reports the first violation
func (t *RangeCheckTrace) CheckConstraints() error {
	if t.paddedHeight == 0 {
		return fmt.Errorf("range-check table must be padded before checking")
	}
	n := t.paddedHeight
	consumer := protocols.NewDebugConsumer()
	for r := 0; r < n; r++ {
		next := (r + 1) % n
		switch r {
		case 0:
			consumer.ActivateFirstRow()
		case n - 1:
			consumer.ActivateLastRow()
		default:
			consumer.ActivateTransition()
		}
		vars := protocols.LookupCheckVars{
			LocalPermutedInput: t.permutedInput[r],
			NextPermutedInput:  t.permutedInput[next],
			NextPermutedTable:  t.permutedTable[next],
		}
		protocols.EvalLookups(vars, t.permutedTable[r], consumer)
		if consumer.Failed() {
			return fmt.Errorf("range-check constraints violated at row %d", r)
		}
		consumer.Reset()
	}
	return nil
}
