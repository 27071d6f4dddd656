package tensor

import (
	"fmt"
	"strings"
)

// Shape describes the dimensions of a tensor, outermost first.
//
// Example:
//
//	Shape{32, 1, 28, 28} // batch of 32 single-channel 28x28 images
type Shape []int

// NumElements returns the total number of elements a tensor of this
// shape holds. An empty shape describes a scalar and returns 1.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Equal reports whether two shapes have identical dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Strides returns the row-major strides for this shape.
func (s Shape) Strides() []int {
	strides := make([]int, len(s))
	stride := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= s[i]
	}
	return strides
}

// Clone returns an independent copy of the shape.
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// String returns the shape in [d0, d1, ...] form.
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, dim := range s {
		parts[i] = fmt.Sprintf("%d", dim)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
