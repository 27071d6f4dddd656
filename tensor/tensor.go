// Copyright 2026 The Chalk Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for Chalk's dense float64
// tensors.
//
// Example:
//
//	x := tensor.Zeros(tensor.Shape{2, 3})
//	y := tensor.Ones(tensor.Shape{2, 3})
//	z := x.Add(y)
package tensor

import (
	"math/rand"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} is a 3-D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Tensor is a dense row-major float64 tensor.
type Tensor = tensor.Tensor

// New creates a zero-filled tensor.
func New(shape Shape) *Tensor {
	return tensor.New(shape)
}

// FromSlice creates a tensor from data, which must match the shape's
// element count.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// MustFromSlice is FromSlice that panics on size mismatch.
func MustFromSlice(data []float64, shape Shape) *Tensor {
	return tensor.MustFromSlice(data, shape)
}

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Ones creates a one-filled tensor.
func Ones(shape Shape) *Tensor {
	return tensor.Ones(shape)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float64) *Tensor {
	return tensor.Full(shape, value)
}

// Randn creates a tensor of N(0, std²) samples drawn from rng.
func Randn(shape Shape, std float64, rng *rand.Rand) *Tensor {
	return tensor.Randn(shape, std, rng)
}

// Rand creates a tensor of uniform [0, 1) samples drawn from rng.
func Rand(shape Shape, rng *rand.Rand) *Tensor {
	return tensor.Rand(shape, rng)
}

// MatMul multiplies two 2-D tensors.
func MatMul(a, b *Tensor) *Tensor {
	return tensor.MatMul(a, b)
}
