package tensor

import "math/rand"

// Zeros creates a tensor filled with 0.
func Zeros(shape Shape) *Tensor {
	return New(shape)
}

// Ones creates a tensor filled with 1.
func Ones(shape Shape) *Tensor {
	return Full(shape, 1)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float64) *Tensor {
	t := New(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Randn creates a tensor with samples from N(0, std²) drawn from rng.
func Randn(shape Shape, std float64, rng *rand.Rand) *Tensor {
	t := New(shape)
	for i := range t.data {
		t.data[i] = rng.NormFloat64() * std
	}
	return t
}

// Rand creates a tensor with uniform samples from [0, 1) drawn from rng.
func Rand(shape Shape, rng *rand.Rand) *Tensor {
	t := New(shape)
	for i := range t.data {
		t.data[i] = rng.Float64()
	}
	return t
}
