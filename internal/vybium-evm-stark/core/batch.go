package core

import (
	"fmt"
	"sync"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// BatchInversion inverts all elements using Montgomery's trick.
// This is approximately 3x faster than individual inversions for large batches.
//
// Algorithm:
// 1. Compute accumulative products: acc[i] = elements[0] * ... * elements[i]
// 2. Invert the final accumulator: acc[n-1]^(-1)
// 3. Back-substitute to compute individual inverses
func BatchInversion(elements []field.Element) ([]field.Element, error) {
	n := len(elements)
	if n == 0 {
		return []field.Element{}, nil
	}

	// Zero cannot be inverted; reject up front so the accumulator phases
	// never see a zero product.
	for i, elem := range elements {
		if elem.IsZero() {
			return nil, fmt.Errorf("cannot invert zero element at index %d", i)
		}
	}

	if n == 1 {
		return []field.Element{elements[0].Inverse()}, nil
	}

	// Phase 1: accumulate products
	acc := make([]field.Element, n)
	acc[0] = elements[0]
	for i := 1; i < n; i++ {
		acc[i] = acc[i-1].Mul(elements[i])
	}

	// Phase 2: invert the final accumulator
	accInv := acc[n-1].Inverse()

	// Phase 3: back-substitute to compute individual inverses
	// elements[i]^(-1) = acc[i-1] * acc[i]^(-1)
	results := make([]field.Element, n)
	for i := n - 1; i > 0; i-- {
		results[i] = accInv.Mul(acc[i-1])
		accInv = accInv.Mul(elements[i])
	}
	results[0] = accInv

	return results, nil
}

// ParallelBatchInversion performs batch inversion with parallelization for
// very large batches. Uses batch inversion on chunks, then combines results.
func ParallelBatchInversion(elements []field.Element, numWorkers int) ([]field.Element, error) {
	n := len(elements)
	if n == 0 {
		return []field.Element{}, nil
	}

	// For small batches the goroutine overhead dominates.
	if n < 1000 || numWorkers <= 1 {
		return BatchInversion(elements)
	}

	chunkSize := (n + numWorkers - 1) / numWorkers
	results := make([]field.Element, n)

	var wg sync.WaitGroup
	errChan := make(chan error, numWorkers)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			start := workerID * chunkSize
			if start >= n {
				return
			}
			end := min(start+chunkSize, n)

			inverted, err := BatchInversion(elements[start:end])
			if err != nil {
				errChan <- fmt.Errorf("worker %d failed: %w", workerID, err)
				return
			}

			copy(results[start:end], inverted)
		}(w)
	}

	wg.Wait()
	close(errChan)

	if err := <-errChan; err != nil {
		return nil, err
	}

	return results, nil
}
