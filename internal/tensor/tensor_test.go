package tensor

import (
	"math/rand"
	"testing"
)

func TestShape_NumElements(t *testing.T) {
	tests := []struct {
		shape Shape
		want  int
	}{
		{Shape{}, 1},
		{Shape{5}, 5},
		{Shape{2, 3}, 6},
		{Shape{2, 0, 4}, 0},
		{Shape{2, 1, 28, 28}, 1568},
	}
	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("NumElements(%v) = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestShape_Strides(t *testing.T) {
	strides := Shape{2, 3, 4}.Strides()
	want := []int{12, 4, 1}
	for i := range want {
		if strides[i] != want[i] {
			t.Fatalf("Strides() = %v, want %v", strides, want)
		}
	}
}

func TestFromSlice_ShapeMismatch(t *testing.T) {
	if _, err := FromSlice([]float64{1, 2, 3}, Shape{2, 2}); err == nil {
		t.Error("expected error for 3 elements into shape [2, 2]")
	}
}

func TestTensor_AtSet(t *testing.T) {
	x := New(Shape{2, 3})
	x.Set(7.5, 1, 2)
	if got := x.At(1, 2); got != 7.5 {
		t.Errorf("At(1, 2) = %f, want 7.5", got)
	}
	if got := x.Data()[5]; got != 7.5 {
		t.Errorf("flat index 5 = %f, want 7.5", got)
	}
}

func TestTensor_AtPanicsOutOfBounds(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-bounds index")
		}
	}()
	New(Shape{2, 2}).At(2, 0)
}

func TestTensor_CloneIsIndependent(t *testing.T) {
	x := MustFromSlice([]float64{1, 2, 3, 4}, Shape{2, 2})
	y := x.Clone()
	y.Set(99, 0, 0)
	if x.At(0, 0) != 1 {
		t.Error("Clone() shares data with the original")
	}
}

func TestTensor_ReshapeSharesData(t *testing.T) {
	x := MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	y := x.Reshape(Shape{3, 2})
	y.Set(42, 0, 1)
	if x.At(0, 1) != 42 {
		t.Error("Reshape() should share the underlying data")
	}
}

func TestTensor_ReshapePanicsOnCountMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for element-count mismatch")
		}
	}()
	New(Shape{2, 3}).Reshape(Shape{4})
}

func TestRandn_Deterministic(t *testing.T) {
	a := Randn(Shape{10}, 0.5, rand.New(rand.NewSource(42)))
	b := Randn(Shape{10}, 0.5, rand.New(rand.NewSource(42)))
	if a.MaxAbsDiff(b) != 0 {
		t.Error("Randn with the same seed should be reproducible")
	}
}
