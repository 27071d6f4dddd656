package tensor

import (
	"math"
	"testing"
)

func TestElementwiseOps(t *testing.T) {
	a := MustFromSlice([]float64{1, 2, 3, 4}, Shape{2, 2})
	b := MustFromSlice([]float64{10, 20, 30, 40}, Shape{2, 2})

	sum := a.Add(b)
	if sum.At(1, 1) != 44 {
		t.Errorf("Add: got %f, want 44", sum.At(1, 1))
	}
	diff := b.Sub(a)
	if diff.At(0, 0) != 9 {
		t.Errorf("Sub: got %f, want 9", diff.At(0, 0))
	}
	prod := a.Mul(b)
	if prod.At(0, 1) != 40 {
		t.Errorf("Mul: got %f, want 40", prod.At(0, 1))
	}
	if a.At(0, 0) != 1 {
		t.Error("elementwise ops must not mutate their receiver")
	}
}

func TestAddPanicsOnShapeMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on shape mismatch")
		}
	}()
	New(Shape{2, 2}).Add(New(Shape{4}))
}

func TestScaleAndApply(t *testing.T) {
	x := MustFromSlice([]float64{-1, 0, 2}, Shape{3})
	if got := x.Scale(3).At(2); got != 6 {
		t.Errorf("Scale: got %f, want 6", got)
	}
	relu := x.Apply(func(v float64) float64 { return math.Max(0, v) })
	want := []float64{0, 0, 2}
	for i, w := range want {
		if relu.Data()[i] != w {
			t.Errorf("Apply: index %d = %f, want %f", i, relu.Data()[i], w)
		}
	}
}

func TestSumRows(t *testing.T) {
	x := MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	got := x.SumRows()
	want := []float64{5, 7, 9}
	for i, w := range want {
		if got.Data()[i] != w {
			t.Errorf("SumRows index %d = %f, want %f", i, got.Data()[i], w)
		}
	}
}

func TestTranspose(t *testing.T) {
	x := MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	xt := x.Transpose()
	if !xt.Shape().Equal(Shape{3, 2}) {
		t.Fatalf("Transpose shape = %v, want [3, 2]", xt.Shape())
	}
	if xt.At(2, 1) != 6 || xt.At(0, 1) != 4 {
		t.Errorf("Transpose values wrong: %v", xt.Data())
	}
}

func TestMatMul(t *testing.T) {
	a := MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	b := MustFromSlice([]float64{7, 8, 9, 10, 11, 12}, Shape{3, 2})
	c := MatMul(a, b)

	// Row 0: [1*7+2*9+3*11, 1*8+2*10+3*12] = [58, 64]
	// Row 1: [4*7+5*9+6*11, 4*8+5*10+6*12] = [139, 154]
	want := []float64{58, 64, 139, 154}
	for i, w := range want {
		if math.Abs(c.Data()[i]-w) > 1e-12 {
			t.Errorf("MatMul index %d = %f, want %f", i, c.Data()[i], w)
		}
	}
}

func TestMatMul_InnerDimMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on inner dimension mismatch")
		}
	}()
	MatMul(New(Shape{2, 3}), New(Shape{2, 3}))
}
