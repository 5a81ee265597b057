// Package arithmetic implements the 256-bit integer units of the
// arithmetic table: addition, subtraction, ordered comparison and
// multiplication over 16-bit limb columns
package arithmetic

import (
	"github.com/vybium/vybium-evm-stark/internal/vybium-evm-stark/core"
)

// Operation selector columns. Exactly one is set per row.
const (
	IsAdd = iota
	IsSub
	IsLt
	IsGt
	IsMul

	NumSelectors
)

// Shared register layout of one arithmetic row. Every register spans
// core.NumLimbs columns of 16-bit limbs, least significant first.
const (
	InputRegister0 = NumSelectors + core.NumLimbs*iota
	InputRegister1
	OutputRegister
	AuxInputRegister0
	AuxInputRegister1

	NumArithColumns
)

// RegisterLimb returns the column index of limb i of the register starting
// at base
func RegisterLimb(base, i int) int {
	return base + i
}
