package trace

import (
	"fmt"
	"sort"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/protocols"
)

// Memory table layout: the access log in program order, followed by the
// same log sorted by (address, clock). The sorted copy is tied to the
// original through a permutation argument and carries the consistency
// constraints.
const (
	MemAddr = iota
	MemClock
	MemIsWrite
	MemValue

	MemSortedAddr
	MemSortedClock
	MemSortedIsWrite
	MemSortedValue

	// MemSortedAddrChanged is the witness bit marking rows of the sorted
	// copy that start a new address run.
	MemSortedAddrChanged

	NumMemoryColumns
)

// memoryAccess is one row of the access log
type memoryAccess struct {
	addr    uint64
	clock   uint64
	isWrite bool
	value   uint64
}

// MemoryTrace records every memory access and proves read consistency:
// each read returns the most recently written value at its address
type MemoryTrace struct {
	accesses     []memoryAccess
	sorted       []memoryAccess
	current      map[uint64]uint64
	clock        uint64
	height       int
	paddedHeight int
}

// NewMemoryTrace creates an empty memory table
func NewMemoryTrace() *MemoryTrace {
	return &MemoryTrace{current: make(map[uint64]uint64)}
}

// GetID returns the table's unique identifier
func (t *MemoryTrace) GetID() TableID {
	return MemoryTable
}

// GetHeight returns the number of accesses before padding
func (t *MemoryTrace) GetHeight() int {
	if t.paddedHeight != 0 {
		return t.height
	}
	return len(t.accesses)
}

// GetPaddedHeight returns the height after padding
func (t *MemoryTrace) GetPaddedHeight() int {
	return t.paddedHeight
}

// Write records a store
func (t *MemoryTrace) Write(addr, value uint64) error {
	if t.paddedHeight != 0 {
		return fmt.Errorf("memory table is padded and immutable")
	}
	t.accesses = append(t.accesses, memoryAccess{addr: addr, clock: t.clock, isWrite: true, value: value})
	t.current[addr] = value
	t.clock++
	return nil
}

// Read records a load and returns the current value, failing on an
// address never written
func (t *MemoryTrace) Read(addr uint64) (uint64, error) {
	if t.paddedHeight != 0 {
		return 0, fmt.Errorf("memory table is padded and immutable")
	}
	value, ok := t.current[addr]
	if !ok {
		return 0, fmt.Errorf("read of unwritten address %d", addr)
	}
	t.accesses = append(t.accesses, memoryAccess{addr: addr, clock: t.clock, value: value})
	t.clock++
	return value, nil
}

// Pad extends the access log with repeats of the last access, then
// rebuilds the sorted copy
func (t *MemoryTrace) Pad(targetHeight int) error {
	if targetHeight < len(t.accesses) {
		return fmt.Errorf("target height %d below current height %d", targetHeight, len(t.accesses))
	}
	t.height = len(t.accesses)

	// Padding rows repeat the last access so the sorted-copy constraints
	// stay satisfied. An empty table pads with writes of zero to address
	// zero.
	for len(t.accesses) < targetHeight {
		pad := memoryAccess{clock: t.clock, isWrite: true}
		if n := len(t.accesses); n > 0 {
			last := t.accesses[n-1]
			pad.addr = last.addr
			pad.value = last.value
		}
		t.accesses = append(t.accesses, pad)
		t.clock++
	}

	t.sorted = append([]memoryAccess{}, t.accesses...)
	sort.SliceStable(t.sorted, func(i, j int) bool {
		if t.sorted[i].addr != t.sorted[j].addr {
			return t.sorted[i].addr < t.sorted[j].addr
		}
		return t.sorted[i].clock < t.sorted[j].clock
	})

	t.paddedHeight = targetHeight
	return nil
}

// GetMainColumns returns the witness columns, column-major. The sorted
// copy is only populated once the table is padded.
func (t *MemoryTrace) GetMainColumns() [][]field.Element {
	columns := make([][]field.Element, NumMemoryColumns)
	for c := range columns {
		columns[c] = make([]field.Element, len(t.accesses))
	}
	fillAccessColumns(columns, MemAddr, t.accesses)
	fillAccessColumns(columns, MemSortedAddr, t.sorted)
	for r, access := range t.sorted {
		if r == 0 || access.addr != t.sorted[r-1].addr {
			columns[MemSortedAddrChanged][r] = field.One
		}
	}
	return columns
}

func fillAccessColumns(columns [][]field.Element, base int, accesses []memoryAccess) {
	for r, access := range accesses {
		columns[base+MemAddr][r] = field.New(access.addr)
		columns[base+MemClock][r] = field.New(access.clock)
		if access.isWrite {
			columns[base+MemIsWrite][r] = field.One
		} else {
			columns[base+MemIsWrite][r] = field.Zero
		}
		columns[base+MemValue][r] = field.New(access.value)
	}
}

// PermutationPair ties the sorted copy to the original access log
func (t *MemoryTrace) PermutationPair() protocols.PermutationPair {
	return protocols.PermutationPair{ColumnPairs: [][2]int{
		{MemAddr, MemSortedAddr},
		{MemClock, MemSortedClock},
		{MemIsWrite, MemSortedIsWrite},
		{MemValue, MemSortedValue},
	}}
}

// EvalSortedConstraints evaluates the consistency constraints of one
// sorted-copy row pair: addresses never decrease, and within an address
// a read repeats the previous value. The first access to an address must
// be a write, expressed through the MemSortedAddrChanged witness bit of
// the next row.
func EvalSortedConstraints(localAddr, localValue, nextAddr, nextIsWrite, nextValue, addrChanged field.Element, consumer *protocols.ConstraintConsumer) {
	// addrChanged is boolean.
	consumer.Constraint(addrChanged.Mul(addrChanged.Sub(field.One)))

	// addrChanged = 0 forces equal addresses.
	sameAddr := field.One.Sub(addrChanged)
	consumer.ConstraintTransition(sameAddr.Mul(nextAddr.Sub(localAddr)))

	// Within an address, clocks strictly increase is delegated to the
	// range-check table; here a read must repeat the previous value.
	isRead := field.One.Sub(nextIsWrite)
	consumer.ConstraintTransition(sameAddr.Mul(isRead).Mul(nextValue.Sub(localValue)))

	// A new address starts with a write.
	consumer.ConstraintTransition(addrChanged.Mul(isRead))
}

// CheckConstraints evaluates the sorted-copy constraints over the full
// witness, row pair by row pair
func (t *MemoryTrace) CheckConstraints() error {
	if t.paddedHeight == 0 {
		return fmt.Errorf("memory table must be padded before checking")
	}
	columns := t.GetMainColumns()
	consumer := protocols.NewDebugConsumer()
	consumer.ActivateTransition()
	for r := 0; r+1 < t.paddedHeight; r++ {
		EvalSortedConstraints(
			columns[MemSortedAddr][r],
			columns[MemSortedValue][r],
			columns[MemSortedAddr][r+1],
			columns[MemSortedIsWrite][r+1],
			columns[MemSortedValue][r+1],
			columns[MemSortedAddrChanged][r+1],
			consumer,
		)
		if consumer.Failed() {
			return fmt.Errorf("memory constraints violated at row %d", r)
		}
		consumer.Reset()
	}
	// The first sorted row opens an address run, so it must be a write.
	if !columns[MemSortedAddrChanged][0].Equal(field.One) ||
		!columns[MemSortedIsWrite][0].Equal(field.One) {
		return fmt.Errorf("sorted copy does not open with a write")
	}
	return nil
}

// CheckConsistency walks the sorted copy and reports the first
// consistency violation, the concrete counterpart of the constraints
func (t *MemoryTrace) CheckConsistency() error {
	if t.paddedHeight == 0 {
		return fmt.Errorf("memory table must be padded before checking")
	}
	for i := 1; i < len(t.sorted); i++ {
		prev, cur := t.sorted[i-1], t.sorted[i]
		if cur.addr < prev.addr {
			return fmt.Errorf("sorted copy out of order at row %d", i)
		}
		if cur.addr == prev.addr {
			if cur.clock <= prev.clock {
				return fmt.Errorf("clock not increasing at row %d", i)
			}
			if !cur.isWrite && cur.value != prev.value {
				return fmt.Errorf("read at row %d returns %d, last write was %d", i, cur.value, prev.value)
			}
		} else if !cur.isWrite {
			return fmt.Errorf("address %d first accessed by a read at row %d", cur.addr, i)
		}
	}
	if len(t.sorted) > 0 && !t.sorted[0].isWrite {
		return fmt.Errorf("address %d first accessed by a read at row 0", t.sorted[0].addr)
	}
	return nil
}
