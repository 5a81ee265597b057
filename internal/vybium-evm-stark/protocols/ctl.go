package protocols

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/utils"
)

// NoFilter marks a table projection without a filter column; every row of
// the table then contributes to the grand product.
const NoFilter = -1

// GrandProductChallenge is the (beta, gamma) randomness of one grand
// product instance. It plays the same role as a permutation challenge, so
// the two share a representation.
type GrandProductChallenge = PermutationChallenge

// GrandProductChallengeSet carries NumChallenges independent grand product
// challenges
type GrandProductChallengeSet = PermutationChallengeSet

// GetGrandProductChallengeSet draws numChallenges independent grand
// product challenges from the transcript, beta before gamma
func GetGrandProductChallengeSet(channel *utils.Channel, numChallenges int) GrandProductChallengeSet {
	return GetPermutationChallengeSet(channel, numChallenges)
}

// TableWithColumns is a projection of one table: the columns that are
// combined into the grand product, optionally gated by a 0/1 filter column
type TableWithColumns struct {
	// Table identifies the trace this projection reads from
	Table int

	// Columns lists the projected column indices, combined Horner-style
	// with the beta challenge
	Columns []int

	// Filter is the index of a 0/1 column selecting the contributing rows,
	// or NoFilter
	Filter int
}

// CrossTableLookup declares that the filtered projections of the looking
// tables, taken together, form the same multiset as the filtered
// projection of the looked table
type CrossTableLookup struct {
	Looking []TableWithColumns
	Looked  TableWithColumns
}

// CtlZData is one committed Z column together with the data needed to
// check it
type CtlZData struct {
	Z         []field.Element
	Challenge GrandProductChallenge
	Columns   []int
	Filter    int
}

// CtlData collects the Z columns of every (table, challenge) instance,
// keyed by table, in the order the cross-table lookups were declared
type CtlData struct {
	ZsPerTable map[int][]CtlZData
}

// CtlCombine computes the reduced row combination gamma + sum_j beta^j
// row[j] for the projected columns of one row
func CtlCombine(challenge GrandProductChallenge, row []field.Element) field.Element {
	return NewReducingFactor(challenge.Beta).ReduceWithOffset(row, challenge.Gamma)
}

// ctlSelect is the per-row grand product factor. Filtered-out rows
// contribute a factor of one:
//
//	select = filter * (combine - 1) + 1
func ctlSelect(filter, combine field.Element) field.Element {
	return filter.Mul(combine.Sub(field.One)).Add(field.One)
}

// CrossTableLookupData computes the Z column of every (table, challenge)
// instance. The looking and looked sides of one lookup use the same
// challenge so their final grand products can be compared.
//
// traces maps a table identifier to its column-major trace.
func CrossTableLookupData(traces map[int][][]field.Element, ctls []CrossTableLookup, challengeSet GrandProductChallengeSet) (CtlData, error) {
	data := CtlData{ZsPerTable: make(map[int][]CtlZData)}

	for c, ctl := range ctls {
		for _, challenge := range challengeSet.Challenges {
			sides := append(append([]TableWithColumns{}, ctl.Looking...), ctl.Looked)
			for _, side := range sides {
				trace, ok := traces[side.Table]
				if !ok {
					return CtlData{}, fmt.Errorf("cross-table lookup %d references unknown table %d", c, side.Table)
				}
				z, err := computeCtlZColumn(trace, side, challenge)
				if err != nil {
					return CtlData{}, fmt.Errorf("cross-table lookup %d, table %d: %w", c, side.Table, err)
				}
				data.ZsPerTable[side.Table] = append(data.ZsPerTable[side.Table], CtlZData{
					Z:         z,
					Challenge: challenge,
					Columns:   side.Columns,
					Filter:    side.Filter,
				})
			}
		}
	}
	return data, nil
}

// computeCtlZColumn computes the running product
//
//	Z[0] = select(0)
//	Z[i] = Z[i-1] * select(i)
//
// so Z[last] is the grand product of the filtered row combinations
func computeCtlZColumn(trace [][]field.Element, side TableWithColumns, challenge GrandProductChallenge) ([]field.Element, error) {
	if len(trace) == 0 || len(trace[0]) == 0 {
		return nil, fmt.Errorf("empty trace")
	}
	degree := len(trace[0])

	row := make([]field.Element, len(side.Columns))
	z := make([]field.Element, degree)
	acc := field.One
	for i := 0; i < degree; i++ {
		for j, col := range side.Columns {
			if col >= len(trace) {
				return nil, fmt.Errorf("column %d out of range", col)
			}
			row[j] = trace[col][i]
		}
		combine := CtlCombine(challenge, row)

		filter := field.One
		if side.Filter != NoFilter {
			filter = trace[side.Filter][i]
			if !filter.IsZero() && !filter.Equal(field.One) {
				return nil, fmt.Errorf("filter column %d holds non-boolean value at row %d", side.Filter, i)
			}
		}

		acc = acc.Mul(ctlSelect(filter, combine))
		z[i] = acc
	}
	return z, nil
}

// CtlCheckVars holds the values needed to check one Z column at a row
// pair: the committed Z at the local and next rows plus the local and
// next trace rows of the owning table
type CtlCheckVars struct {
	LocalZ      field.Element
	NextZ       field.Element
	LocalValues []field.Element
	NextValues  []field.Element
	Challenge   GrandProductChallenge
	Columns     []int
	Filter      int
}

// EvalCrossTableLookupChecks evaluates the boundary and transition
// constraints of one Z column:
//
//	first row:  Z = select(first)
//	transition: Z(next) = Z(local) * select(next)
func EvalCrossTableLookupChecks(vars CtlCheckVars, consumer *ConstraintConsumer) {
	localRow := make([]field.Element, len(vars.Columns))
	nextRow := make([]field.Element, len(vars.Columns))
	for j, col := range vars.Columns {
		localRow[j] = vars.LocalValues[col]
		nextRow[j] = vars.NextValues[col]
	}

	localFilter := field.One
	nextFilter := field.One
	if vars.Filter != NoFilter {
		localFilter = vars.LocalValues[vars.Filter]
		nextFilter = vars.NextValues[vars.Filter]
	}

	localSelect := ctlSelect(localFilter, CtlCombine(vars.Challenge, localRow))
	nextSelect := ctlSelect(nextFilter, CtlCombine(vars.Challenge, nextRow))

	consumer.ConstraintFirstRow(vars.LocalZ.Sub(localSelect))
	consumer.ConstraintTransition(vars.NextZ.Sub(vars.LocalZ.Mul(nextSelect)))
}

// VerifyCrossTableLookups checks the cross-table grand product equality:
// for every lookup and every challenge, the product of the looking tables'
// final Z values must equal the looked table's final Z value. A mismatch
// is the deterministic cryptographic rejection outcome, not a runtime
// fault.
func VerifyCrossTableLookups(ctls []CrossTableLookup, data CtlData, numChallenges int) error {
	// Per-table cursors into the Z columns, which were appended in
	// declaration order.
	cursor := make(map[int]int)
	next := func(table int) (CtlZData, error) {
		zs := data.ZsPerTable[table]
		i := cursor[table]
		if i >= len(zs) {
			return CtlZData{}, fmt.Errorf("missing Z column for table %d", table)
		}
		cursor[table] = i + 1
		return zs[i], nil
	}

	for c, ctl := range ctls {
		for chal := 0; chal < numChallenges; chal++ {
			lookingProduct := field.One
			for _, looking := range ctl.Looking {
				zData, err := next(looking.Table)
				if err != nil {
					return err
				}
				lookingProduct = lookingProduct.Mul(zData.Z[len(zData.Z)-1])
			}

			lookedZ, err := next(ctl.Looked.Table)
			if err != nil {
				return err
			}
			lookedProduct := lookedZ.Z[len(lookedZ.Z)-1]

			if !lookingProduct.Equal(lookedProduct) {
				return fmt.Errorf("cross-table lookup %d failed for challenge %d: looking product %d != looked product %d",
					c, chal, lookingProduct.Value(), lookedProduct.Value())
			}
		}
	}
	return nil
}
