package protocols

import (
	"testing"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

func TestConstraintConsumerAccumulation(t *testing.T) {
	alphas := []field.Element{field.New(3), field.New(7)}
	consumer := NewConstraintConsumer(alphas, field.One, field.One, field.One)

	c1 := field.New(5)
	c2 := field.New(11)
	consumer.Constraint(c1)
	consumer.Constraint(c2)

	// acc = (0 * alpha + c1) * alpha + c2
	for i, alpha := range alphas {
		want := c1.Mul(alpha).Add(c2)
		got := consumer.Accumulators()[i]
		if !got.Equal(want) {
			t.Errorf("accumulator %d: got %d, want %d", i, got.Value(), want.Value())
		}
	}
}

func TestConstraintConsumerRowFilters(t *testing.T) {
	zLast := field.New(13)
	first := field.New(17)
	last := field.New(19)
	v := field.New(2)

	tests := []struct {
		name string
		emit func(c *ConstraintConsumer)
		want field.Element
	}{
		{"transition scales by zLast", func(c *ConstraintConsumer) { c.ConstraintTransition(v) }, v.Mul(zLast)},
		{"first row scales by first Lagrange basis", func(c *ConstraintConsumer) { c.ConstraintFirstRow(v) }, v.Mul(first)},
		{"last row scales by last Lagrange basis", func(c *ConstraintConsumer) { c.ConstraintLastRow(v) }, v.Mul(last)},
		{"wrapping applies no filter", func(c *ConstraintConsumer) { c.ConstraintWrapping(v) }, v},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consumer := NewConstraintConsumer([]field.Element{field.One}, zLast, first, last)
			tt.emit(consumer)
			got := consumer.Accumulators()[0]
			if !got.Equal(tt.want) {
				t.Errorf("got %d, want %d", got.Value(), tt.want.Value())
			}
		})
	}
}

func TestDebugConsumerFilters(t *testing.T) {
	consumer := NewDebugConsumer()
	v := field.New(42)

	// At an interior row, first and last row constraints are vacuous.
	consumer.ActivateTransition()
	consumer.ConstraintFirstRow(v)
	consumer.ConstraintLastRow(v)
	if consumer.Failed() {
		t.Error("boundary constraints should be vacuous on interior rows")
	}
	consumer.ConstraintTransition(v)
	if !consumer.Failed() {
		t.Error("nonzero transition constraint should fail on interior rows")
	}

	// At the last row, transition constraints are vacuous.
	consumer.Reset()
	consumer.ActivateLastRow()
	consumer.ConstraintTransition(v)
	consumer.ConstraintFirstRow(v)
	if consumer.Failed() {
		t.Error("transition and first-row constraints should be vacuous on the last row")
	}
	consumer.ConstraintLastRow(v)
	if !consumer.Failed() {
		t.Error("nonzero last-row constraint should fail on the last row")
	}

	// At the first row, first-row constraints are live.
	consumer.Reset()
	consumer.ActivateFirstRow()
	consumer.ConstraintLastRow(v)
	if consumer.Failed() {
		t.Error("last-row constraints should be vacuous on the first row")
	}
	consumer.ConstraintFirstRow(v)
	if !consumer.Failed() {
		t.Error("nonzero first-row constraint should fail on the first row")
	}

	// Wrapping constraints are live everywhere, the last row included.
	consumer.Reset()
	consumer.ActivateLastRow()
	consumer.ConstraintWrapping(v)
	if !consumer.Failed() {
		t.Error("nonzero wrapping constraint should fail on every row")
	}
}

func TestDebugFiltersPanicOnProverConsumer(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic when toggling filters on a non-debug consumer")
		}
	}()
	consumer := NewConstraintConsumer([]field.Element{field.One}, field.One, field.One, field.One)
	consumer.ActivateFirstRow()
}

func TestConsumerReset(t *testing.T) {
	consumer := NewDebugConsumer()
	consumer.Constraint(field.New(9))
	if !consumer.Failed() {
		t.Fatal("expected nonzero accumulator")
	}
	consumer.Reset()
	if consumer.Failed() {
		t.Error("Reset should clear the accumulators")
	}
}
