package tensor

import (
	"fmt"
	"math"
)

func (t *Tensor) assertSameShape(op string, other *Tensor) {
	if !t.shape.Equal(other.shape) {
		panic(fmt.Sprintf("tensor: %s shape mismatch: %v vs %v", op, t.shape, other.shape))
	}
}

// Add returns t + other elementwise.
func (t *Tensor) Add(other *Tensor) *Tensor {
	t.assertSameShape("add", other)
	out := New(t.shape)
	for i := range t.data {
		out.data[i] = t.data[i] + other.data[i]
	}
	return out
}

// Sub returns t - other elementwise.
func (t *Tensor) Sub(other *Tensor) *Tensor {
	t.assertSameShape("sub", other)
	out := New(t.shape)
	for i := range t.data {
		out.data[i] = t.data[i] - other.data[i]
	}
	return out
}

// Mul returns t * other elementwise (Hadamard product).
func (t *Tensor) Mul(other *Tensor) *Tensor {
	t.assertSameShape("mul", other)
	out := New(t.shape)
	for i := range t.data {
		out.data[i] = t.data[i] * other.data[i]
	}
	return out
}

// Scale returns s * t.
func (t *Tensor) Scale(s float64) *Tensor {
	out := New(t.shape)
	for i := range t.data {
		out.data[i] = s * t.data[i]
	}
	return out
}

// AddScalar returns t + s elementwise.
func (t *Tensor) AddScalar(s float64) *Tensor {
	out := New(t.shape)
	for i := range t.data {
		out.data[i] = t.data[i] + s
	}
	return out
}

// Apply returns f mapped over every element.
func (t *Tensor) Apply(f func(float64) float64) *Tensor {
	out := New(t.shape)
	for i := range t.data {
		out.data[i] = f(t.data[i])
	}
	return out
}

// AddInPlace accumulates other into t and returns t.
func (t *Tensor) AddInPlace(other *Tensor) *Tensor {
	t.assertSameShape("add", other)
	for i := range t.data {
		t.data[i] += other.data[i]
	}
	return t
}

// Zero resets every element to 0.
func (t *Tensor) Zero() {
	for i := range t.data {
		t.data[i] = 0
	}
}

// Sum returns the sum over all elements.
func (t *Tensor) Sum() float64 {
	sum := 0.0
	for _, v := range t.data {
		sum += v
	}
	return sum
}

// SumRows sums a 2-D tensor over its rows, returning shape [cols].
// This is the gradient reduction for a broadcast bias.
func (t *Tensor) SumRows() *Tensor {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("tensor: SumRows requires a 2-D tensor, got %v", t.shape))
	}
	rows, cols := t.shape[0], t.shape[1]
	out := New(Shape{cols})
	for r := 0; r < rows; r++ {
		base := r * cols
		for c := 0; c < cols; c++ {
			out.data[c] += t.data[base+c]
		}
	}
	return out
}

// Transpose returns the transpose of a 2-D tensor.
func (t *Tensor) Transpose() *Tensor {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("tensor: Transpose requires a 2-D tensor, got %v", t.shape))
	}
	rows, cols := t.shape[0], t.shape[1]
	out := New(Shape{cols, rows})
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.data[c*rows+r] = t.data[r*cols+c]
		}
	}
	return out
}

// MaxAbsDiff returns the largest absolute elementwise difference.
// Used by tests to compare against reference values.
func (t *Tensor) MaxAbsDiff(other *Tensor) float64 {
	t.assertSameShape("maxAbsDiff", other)
	maxDiff := 0.0
	for i := range t.data {
		d := math.Abs(t.data[i] - other.data[i])
		if d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff
}
