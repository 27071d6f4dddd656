// Package cpu implements the spatial kernels behind Chalk's conv and pool
// layers: im2col/col2im, Conv2D forward/backward and Max/Avg Pool2D
// forward/backward.
//
// Padding follows the convention of the layer configs: pad is the *total*
// number of zero rows (or columns) added per spatial dimension, split evenly
// between the two sides. Only even pads are supported by the layers, so the
// split is exact. Output sizes are
//
//	out = (in + pad - kernel)/stride + 1
//
// Kernels never mutate their inputs.
package cpu

import (
	"fmt"

	"github.com/chalk-ml/chalk/internal/parallel"
)

// Backend executes spatial kernels on the CPU.
type Backend struct {
	par parallel.Config
}

// New creates a CPU backend with default loop chunking.
func New() *Backend {
	return &Backend{par: parallel.DefaultConfig()}
}

// outputSize computes the spatial output size for one dimension.
func outputSize(in, kernel, pad, stride int) int {
	return (in+pad-kernel)/stride + 1
}

func assert4D(name string, shape []int) {
	if len(shape) != 4 {
		panic(fmt.Sprintf("cpu: %s must be 4-D [N, C, H, W], got %d dims", name, len(shape)))
	}
}
