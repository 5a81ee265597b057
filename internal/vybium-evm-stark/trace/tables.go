// Package trace provides the multi-table execution trace: the CPU,
// arithmetic, memory and range-check tables plus the cross-table lookup
// declarations binding them together
package trace

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/arithmetic"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/core"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/protocols"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/utils"
)

// TableID uniquely identifies each table in the multi-table architecture
type TableID int

const (
	// CPUTable records the main execution trace
	CPUTable TableID = iota

	// ArithTable holds the 256-bit arithmetic unit rows
	ArithTable

	// MemoryTable ensures memory consistency
	MemoryTable

	// RangeCheckTable proves limb values fit in 16 bits
	RangeCheckTable

	// NumTables counts the table kinds
	NumTables
)

// String returns the name of the table
func (id TableID) String() string {
	switch id {
	case CPUTable:
		return "CPU"
	case ArithTable:
		return "Arith"
	case MemoryTable:
		return "Memory"
	case RangeCheckTable:
		return "RangeCheck"
	default:
		return "Unknown"
	}
}

// ExecutionTable is the interface that all tables must implement
type ExecutionTable interface {
	// GetID returns the table's unique identifier
	GetID() TableID

	// GetHeight returns the current height (number of rows) before padding
	GetHeight() int

	// GetPaddedHeight returns the height after padding to a power of 2
	GetPaddedHeight() int

	// GetMainColumns returns the committed witness columns, column-major
	GetMainColumns() [][]field.Element

	// Pad extends the table to the target height with padding rows
	Pad(targetHeight int) error
}

// ExecutionTrace holds all tables and their cross-table lookup
// declarations. Tables are append-only during witness generation and
// immutable after padding.
type ExecutionTrace struct {
	CPU        *CPUTrace
	Arith      *ArithTrace
	Memory     *MemoryTrace
	RangeCheck *RangeCheckTrace

	// Metadata
	PaddedHeight int
}

// NewExecutionTrace creates an empty execution trace with all tables
// initialized
func NewExecutionTrace() *ExecutionTrace {
	return &ExecutionTrace{
		CPU:        NewCPUTrace(),
		Arith:      NewArithTrace(),
		Memory:     NewMemoryTrace(),
		RangeCheck: NewRangeCheckTrace(),
	}
}

// ExecuteOperation runs one arithmetic operation through the whole
// trace: the CPU records the request, the arithmetic unit witnesses the
// computation, and the operand and result limbs are submitted for range
// checking. Returns the 256-bit result.
func (et *ExecutionTrace) ExecuteOperation(op int, left, right *uint256.Int) (*uint256.Int, error) {
	result, err := et.CPU.AddOperation(op, left, right)
	if err != nil {
		return nil, err
	}
	if err := et.Arith.AddOperation(op, left, right); err != nil {
		return nil, err
	}
	for _, v := range []*uint256.Int{left, right, result} {
		limbs := core.U256ToLimbs(v)
		if err := et.RangeCheck.AddValues(limbs[:]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// GetTable retrieves a specific table by ID
func (et *ExecutionTrace) GetTable(id TableID) (ExecutionTable, error) {
	switch id {
	case CPUTable:
		return et.CPU, nil
	case ArithTable:
		return et.Arith, nil
	case MemoryTable:
		return et.Memory, nil
	case RangeCheckTable:
		return et.RangeCheck, nil
	default:
		return nil, fmt.Errorf("invalid table ID: %d", id)
	}
}

// GetAllTables returns all tables in ID order
func (et *ExecutionTrace) GetAllTables() []ExecutionTable {
	return []ExecutionTable{et.CPU, et.Arith, et.Memory, et.RangeCheck}
}

// ComputePaddedHeight determines the shared padded height: a power of 2
// at least as large as the tallest table
func (et *ExecutionTrace) ComputePaddedHeight() int {
	maxHeight := 1
	for _, table := range et.GetAllTables() {
		if height := table.GetHeight(); height > maxHeight {
			maxHeight = height
		}
	}
	et.PaddedHeight = utils.NextPowerOfTwo(maxHeight)
	return et.PaddedHeight
}

// PadAllTables pads all tables to the computed padded height
func (et *ExecutionTrace) PadAllTables() error {
	if et.PaddedHeight == 0 {
		et.ComputePaddedHeight()
	}
	for _, table := range et.GetAllTables() {
		if err := table.Pad(et.PaddedHeight); err != nil {
			return fmt.Errorf("failed to pad %s table: %w", table.GetID(), err)
		}
	}
	return nil
}

// Validate checks that the trace is well-formed
func (et *ExecutionTrace) Validate() error {
	if et.PaddedHeight == 0 {
		et.ComputePaddedHeight()
	}
	for _, table := range et.GetAllTables() {
		if table.GetPaddedHeight() != et.PaddedHeight {
			return fmt.Errorf("%s table has incorrect padded height: got %d, expected %d",
				table.GetID(), table.GetPaddedHeight(), et.PaddedHeight)
		}
	}
	return nil
}

// Traces returns every table's columns keyed by table ID, the layout the
// cross-table lookup prover consumes
func (et *ExecutionTrace) Traces() map[int][][]field.Element {
	traces := make(map[int][][]field.Element, NumTables)
	for _, table := range et.GetAllTables() {
		traces[int(table.GetID())] = table.GetMainColumns()
	}
	return traces
}

// CrossTableLookups declares the standard lookups: for each operation
// kind, the CPU rows requesting it form the same multiset as the
// arithmetic rows executing it, projected on the operand and output
// registers
func (et *ExecutionTrace) CrossTableLookups() []protocols.CrossTableLookup {
	ctls := make([]protocols.CrossTableLookup, 0, arithmetic.NumSelectors)
	for op := 0; op < arithmetic.NumSelectors; op++ {
		ctls = append(ctls, protocols.CrossTableLookup{
			Looking: []protocols.TableWithColumns{{
				Table:   int(CPUTable),
				Columns: cpuOperandColumns(),
				Filter:  CPUSelectorColumn(op),
			}},
			Looked: protocols.TableWithColumns{
				Table:   int(ArithTable),
				Columns: arithOperandColumns(),
				Filter:  op,
			},
		})
	}
	return ctls
}

// PermutationPairs declares the intra-table permutation arguments: the
// memory table's address-sorted copy is a permutation of its original
// columns
func (et *ExecutionTrace) PermutationPairs() map[TableID][]protocols.PermutationPair {
	return map[TableID][]protocols.PermutationPair{
		MemoryTable: {et.Memory.PermutationPair()},
	}
}

// TableStats holds statistics for a single table
type TableStats struct {
	Height       int
	PaddedHeight int
	MainColumns  int
}

// GetTableStatistics returns statistics per table
func (et *ExecutionTrace) GetTableStatistics() map[TableID]TableStats {
	stats := make(map[TableID]TableStats, NumTables)
	for _, table := range et.GetAllTables() {
		stats[table.GetID()] = TableStats{
			Height:       table.GetHeight(),
			PaddedHeight: table.GetPaddedHeight(),
			MainColumns:  len(table.GetMainColumns()),
		}
	}
	return stats
}

// rowsToColumns transposes row-major witness data into the column-major
// layout the arguments consume
func rowsToColumns(rows [][]field.Element, width int) [][]field.Element {
	columns := make([][]field.Element, width)
	for c := range columns {
		columns[c] = make([]field.Element, len(rows))
		for r, row := range rows {
			columns[c][r] = row[c]
		}
	}
	return columns
}

// zeroRow returns an all-zero padding row of the given width
func zeroRow(width int) []field.Element {
	row := make([]field.Element, width)
	for i := range row {
		row[i] = field.Zero
	}
	return row
}
