package protocols

import (
	"fmt"
	"sort"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// PermutedCols builds the permuted copies of an input column and a table
// column used by the range-check lookup argument. The permuted input
// column is sorted; the permuted table column is a rearrangement of the
// table aligning each fresh input value with its table entry, with the
// remaining table values parked in the slots of repeated inputs.
func PermutedCols(inputs, table []field.Element) ([]field.Element, []field.Element, error) {
	n := len(inputs)
	if len(table) != n {
		return nil, nil, fmt.Errorf("input column length %d does not match table column length %d", n, len(table))
	}
	if n == 0 {
		return nil, nil, fmt.Errorf("empty columns")
	}

	sortedInputs := make([]field.Element, n)
	copy(sortedInputs, inputs)
	sort.Slice(sortedInputs, func(i, j int) bool {
		return sortedInputs[i].Value() < sortedInputs[j].Value()
	})

	sortedTable := make([]field.Element, n)
	copy(sortedTable, table)
	sort.Slice(sortedTable, func(i, j int) bool {
		return sortedTable[i].Value() < sortedTable[j].Value()
	})

	// First match each fresh input value against the sorted table,
	// collecting the table values the inputs skip over. Slots of repeated
	// inputs are filled afterwards from the collected leftovers; the
	// transition constraint is satisfied there by the input repeat alone.
	permutedTable := make([]field.Element, n)
	var repeatSlots []int
	var unusedTableVals []field.Element
	tableIdx := 0

	for i := 0; i < n; i++ {
		input := sortedInputs[i]
		if i > 0 && input.Equal(sortedInputs[i-1]) {
			repeatSlots = append(repeatSlots, i)
			continue
		}
		for tableIdx < n && sortedTable[tableIdx].Value() < input.Value() {
			unusedTableVals = append(unusedTableVals, sortedTable[tableIdx])
			tableIdx++
		}
		if tableIdx >= n || !sortedTable[tableIdx].Equal(input) {
			return nil, nil, fmt.Errorf("input value %d not found in table", input.Value())
		}
		permutedTable[i] = sortedTable[tableIdx]
		tableIdx++
	}
	for tableIdx < n {
		unusedTableVals = append(unusedTableVals, sortedTable[tableIdx])
		tableIdx++
	}

	for _, slot := range repeatSlots {
		permutedTable[slot] = unusedTableVals[len(unusedTableVals)-1]
		unusedTableVals = unusedTableVals[:len(unusedTableVals)-1]
	}

	return sortedInputs, permutedTable, nil
}

// LookupCheckVars holds the permuted column evaluations at the local and
// next rows
type LookupCheckVars struct {
	LocalPermutedInput field.Element
	NextPermutedInput  field.Element
	NextPermutedTable  field.Element
}

// EvalLookups evaluates the constraints of the range-check lookup: on the
// first row the permuted input equals the permuted table value, and on
// every transition the next permuted input either repeats the local one or
// matches the next permuted table value:
//
//	(in' - in) * (in' - t') = 0
func EvalLookups(vars LookupCheckVars, localPermutedTable field.Element, consumer *ConstraintConsumer) {
	consumer.ConstraintFirstRow(vars.LocalPermutedInput.Sub(localPermutedTable))

	diffInput := vars.NextPermutedInput.Sub(vars.LocalPermutedInput)
	diffTable := vars.NextPermutedInput.Sub(vars.NextPermutedTable)
	consumer.ConstraintTransition(diffInput.Mul(diffTable))
}
