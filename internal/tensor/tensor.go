// Package tensor implements the dense float64 tensor used throughout Chalk.
//
// Tensors are row-major flat slices with an explicit Shape. Layers never
// mutate their inputs: operations return fresh tensors, and in-place access
// goes through Data(), At() and Set(). Construction from untrusted sizes
// returns an error; shape mismatches inside numeric code are programmer
// errors and panic with a descriptive message.
package tensor

import "fmt"

// Tensor is a dense, row-major float64 tensor.
type Tensor struct {
	shape   Shape
	strides []int
	data    []float64
}

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) *Tensor {
	return &Tensor{
		shape:   shape.Clone(),
		strides: shape.Strides(),
		data:    make([]float64, shape.NumElements()),
	}
}

// FromSlice creates a tensor that copies data into the given shape.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	t := New(shape)
	copy(t.data, data)
	return t, nil
}

// MustFromSlice is FromSlice for statically correct literals; it panics on
// element-count mismatch.
func MustFromSlice(data []float64, shape Shape) *Tensor {
	t, err := FromSlice(data, shape)
	if err != nil {
		panic(err)
	}
	return t
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Data returns the underlying flat slice (zero-copy).
//
// WARNING: modifications to the returned slice modify the tensor.
func (t *Tensor) Data() []float64 {
	return t.data
}

// At returns the element at the given indices.
// Panics if the index arity or bounds are wrong.
func (t *Tensor) At(indices ...int) float64 {
	return t.data[t.offset(indices)]
}

// Set stores value at the given indices.
func (t *Tensor) Set(value float64, indices ...int) {
	t.data[t.offset(indices)] = value
}

func (t *Tensor) offset(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("tensor: expected %d indices for shape %v, got %d", len(t.shape), t.shape, len(indices)))
	}
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("tensor: index %d out of bounds for dimension %d (size %d)", idx, i, t.shape[i]))
		}
		offset += idx * t.strides[i]
	}
	return offset
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	out := New(t.shape)
	copy(out.data, t.data)
	return out
}

// Reshape returns a view with a new shape sharing the same data.
// The element counts must agree.
func (t *Tensor) Reshape(shape Shape) *Tensor {
	if shape.NumElements() != len(t.data) {
		panic(fmt.Sprintf("tensor: cannot reshape %v (%d elements) to %v (%d elements)",
			t.shape, len(t.data), shape, shape.NumElements()))
	}
	return &Tensor{
		shape:   shape.Clone(),
		strides: shape.Strides(),
		data:    t.data,
	}
}

// Item returns the single value of a one-element tensor.
func (t *Tensor) Item() float64 {
	if len(t.data) != 1 {
		panic(fmt.Sprintf("tensor: Item() requires exactly one element, got shape %v", t.shape))
	}
	return t.data[0]
}

// String returns a short human-readable description.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor%v", t.shape)
}
