package nn

import (
	"math"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// ReLU applies max(0, x) elementwise.
//
// Backward masks the gradient where the forward input was negative; the
// boundary x == 0 passes the gradient through, matching the reference
// formulas.
type ReLU struct {
	name  string
	input *tensor.Tensor
}

// NewReLU creates a ReLU activation layer.
func NewReLU(name string) *ReLU {
	return &ReLU{name: name}
}

func (r *ReLU) Name() string { return r.name }

// Forward computes max(0, input).
func (r *ReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	r.input = input
	return input.Apply(func(v float64) float64 { return math.Max(0, v) })
}

// Backward returns outGrad where the input was >= 0, zero elsewhere.
func (r *ReLU) Backward(outGrad *tensor.Tensor) *tensor.Tensor {
	inGrad := tensor.New(outGrad.Shape().Clone())
	in := r.input.Data()
	src := outGrad.Data()
	dst := inGrad.Data()
	for i := range src {
		if in[i] >= 0 {
			dst[i] = src[i]
		}
	}
	return inGrad
}

func (r *ReLU) Parameters() []*Parameter { return nil }

// sigmoidOf maps 1/(1+e^-x) over a tensor. Shared by the recurrent cells.
func sigmoidOf(t *tensor.Tensor) *tensor.Tensor {
	return t.Apply(func(v float64) float64 { return 1 / (1 + math.Exp(-v)) })
}

// tanhOf maps tanh over a tensor.
func tanhOf(t *tensor.Tensor) *tensor.Tensor {
	return t.Apply(math.Tanh)
}
