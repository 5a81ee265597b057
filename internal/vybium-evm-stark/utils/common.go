package utils

import "math/bits"

// Trace heights are powers of two so row indexing wraps with a mask and
// transcripts can bind the log-height directly.

// IsPowerOfTwo reports whether n is a positive power of two
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Log2 returns the base-2 logarithm of a power of two, or -1 when n is
// not one
func Log2(n int) int {
	if !IsPowerOfTwo(n) {
		return -1
	}
	return bits.TrailingZeros64(uint64(n))
}

// NextPowerOfTwo returns the smallest power of two not below n.
// Non-positive inputs map to 1.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len64(uint64(n-1))
}
