package trace

import (
	"fmt"
)

// Stack permutation scaffolding for the CPU stack scheduler: given the
// stack contents before and after a reordering, find a permutation
// realizing it and decompose that permutation into swaps the CPU can
// execute one at a time.

// FindPermutation returns perm such that b[i] = a[perm[i]] for all i.
// Duplicate values are matched greedily in order of appearance. Fails
// when a and b are not permutations of each other.
func FindPermutation[T comparable](a, b []T) ([]int, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}

	positions := make(map[T][]int, len(a))
	for i := len(a) - 1; i >= 0; i-- {
		positions[a[i]] = append(positions[a[i]], i)
	}

	perm := make([]int, len(b))
	for i, v := range b {
		avail := positions[v]
		if len(avail) == 0 {
			return nil, fmt.Errorf("value at position %d has no unmatched source", i)
		}
		perm[i] = avail[len(avail)-1]
		positions[v] = avail[:len(avail)-1]
	}
	return perm, nil
}

// ApplyPerm returns the slice b with b[i] = a[perm[i]]
func ApplyPerm[T any](perm []int, a []T) ([]T, error) {
	if len(perm) != len(a) {
		return nil, fmt.Errorf("permutation length %d does not match slice length %d", len(perm), len(a))
	}
	b := make([]T, len(a))
	for i, src := range perm {
		if src < 0 || src >= len(a) {
			return nil, fmt.Errorf("index %d out of range at position %d", src, i)
		}
		b[i] = a[src]
	}
	return b, nil
}

// IsPermutation reports whether perm is a bijection on 0..len(perm)-1
func IsPermutation(perm []int) bool {
	seen := make([]bool, len(perm))
	for _, v := range perm {
		if v < 0 || v >= len(perm) || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// CombineCycles builds the permutation of size n that is the product of
// the given disjoint cycles. Positions not named by any cycle are fixed.
// A cycle (c0 c1 ... ck) sends a[c0] to position c1, a[c1] to c2, and
// a[ck] back to c0.
func CombineCycles(cycles [][]int, n int) ([]int, error) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	used := make([]bool, n)
	for _, cycle := range cycles {
		for _, pos := range cycle {
			if pos < 0 || pos >= n {
				return nil, fmt.Errorf("cycle position %d out of range", pos)
			}
			if used[pos] {
				return nil, fmt.Errorf("position %d appears in more than one cycle", pos)
			}
			used[pos] = true
		}
	}
	for _, cycle := range cycles {
		for i, pos := range cycle {
			next := cycle[(i+1)%len(cycle)]
			perm[next] = pos
		}
	}
	return perm, nil
}

// PermutationToTranspositions decomposes perm into a sequence of swaps
// whose left-to-right application realizes it. Each cycle of length k
// contributes k-1 transpositions.
func PermutationToTranspositions(perm []int) ([][2]int, error) {
	if !IsPermutation(perm) {
		return nil, fmt.Errorf("not a permutation")
	}
	var swaps [][2]int
	visited := make([]bool, len(perm))
	for start := range perm {
		if visited[start] {
			continue
		}
		// Walk the cycle through start. The swaps come out in the order
		// that realizes the inverse, so each cycle's run is reversed.
		var cycleSwaps [][2]int
		for i := perm[start]; i != start; i = perm[i] {
			visited[i] = true
			cycleSwaps = append(cycleSwaps, [2]int{start, i})
		}
		visited[start] = true
		for j := len(cycleSwaps) - 1; j >= 0; j-- {
			swaps = append(swaps, cycleSwaps[j])
		}
	}
	return swaps, nil
}
