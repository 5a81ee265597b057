package protocols

import (
	"math/rand"
	"testing"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

func TestReducingFactorMatchesPowers(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	base := field.New(rng.Uint64() % field.P)
	factor := NewReducingFactor(base)

	terms := make([]field.Element, 9)
	for i := range terms {
		terms[i] = field.New(rng.Uint64() % field.P)
	}

	// Explicit sum_i base^i * terms[i]
	want := field.Zero
	power := field.One
	for _, term := range terms {
		want = want.Add(term.Mul(power))
		power = power.Mul(base)
	}

	got := factor.Reduce(terms)
	if !got.Equal(want) {
		t.Errorf("Reduce: got %d, want %d", got.Value(), want.Value())
	}

	offset := field.New(rng.Uint64() % field.P)
	gotOffset := factor.ReduceWithOffset(terms, offset)
	if !gotOffset.Equal(want.Add(offset)) {
		t.Errorf("ReduceWithOffset: got %d, want %d", gotOffset.Value(), want.Add(offset).Value())
	}
}

func TestReducingFactorEmpty(t *testing.T) {
	factor := NewReducingFactor(field.New(5))
	if !factor.Reduce(nil).IsZero() {
		t.Error("reducing no terms should give zero")
	}
	offset := field.New(3)
	if !factor.ReduceWithOffset(nil, offset).Equal(offset) {
		t.Error("reducing no terms with an offset should give the offset")
	}
}
