package core

import (
	"math/rand"
	"testing"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

func randNonzeroElements(rng *rand.Rand, n int) []field.Element {
	elements := make([]field.Element, n)
	for i := range elements {
		for {
			elements[i] = field.New(rng.Uint64() % field.P)
			if !elements[i].IsZero() {
				break
			}
		}
	}
	return elements
}

func TestBatchInversion(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, n := range []int{0, 1, 2, 3, 10, 100} {
		elements := randNonzeroElements(rng, n)

		inverses, err := BatchInversion(elements)
		if err != nil {
			t.Fatalf("n=%d: BatchInversion failed: %v", n, err)
		}
		if len(inverses) != n {
			t.Fatalf("n=%d: got %d inverses", n, len(inverses))
		}

		for i := range elements {
			product := elements[i].Mul(inverses[i])
			if !product.Equal(field.One) {
				t.Errorf("n=%d: element %d: x * x^-1 = %d, want 1", n, i, product.Value())
			}
		}
	}
}

func TestBatchInversionRejectsZero(t *testing.T) {
	elements := []field.Element{field.New(3), field.Zero, field.New(5)}
	if _, err := BatchInversion(elements); err == nil {
		t.Error("expected error when batch contains zero")
	}
}

func TestParallelBatchInversion(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	elements := randNonzeroElements(rng, 4096)

	sequential, err := BatchInversion(elements)
	if err != nil {
		t.Fatalf("BatchInversion failed: %v", err)
	}

	parallel, err := ParallelBatchInversion(elements, 4)
	if err != nil {
		t.Fatalf("ParallelBatchInversion failed: %v", err)
	}

	for i := range sequential {
		if !sequential[i].Equal(parallel[i]) {
			t.Fatalf("element %d: sequential and parallel results differ", i)
		}
	}
}

func TestParallelBatchInversionPropagatesError(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	elements := randNonzeroElements(rng, 2048)
	elements[1500] = field.Zero

	if _, err := ParallelBatchInversion(elements, 4); err == nil {
		t.Error("expected error when a chunk contains zero")
	}
}
