package nn

import (
	"fmt"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// Linear2D applies the same affine transform at every timestep.
//
// Input [batch, time, inFeatures] -> output [batch, time, outFeatures],
// computed by folding batch and time together and reusing the Linear math.
type Linear2D struct {
	name   string
	weight *Parameter
	bias   *Parameter
	input  *tensor.Tensor
}

// NewLinear2D creates a temporal affine layer.
func NewLinear2D(inFeatures, outFeatures int, name string, init Initializer) *Linear2D {
	weight := tensor.New(tensor.Shape{inFeatures, outFeatures})
	init.Init(weight, inFeatures, outFeatures)

	return &Linear2D{
		name:   name,
		weight: NewParameter(name+".weight", weight),
		bias:   NewParameter(name+".bias", tensor.New(tensor.Shape{outFeatures})),
	}
}

func (l *Linear2D) Name() string { return l.name }

// Forward computes x @ W + b per timestep.
func (l *Linear2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 3 || shape[2] != l.weight.Data.Shape()[0] {
		panic(fmt.Sprintf("linear2d %s: input shape %v incompatible with weight %v",
			l.name, shape, l.weight.Data.Shape()))
	}
	l.input = input

	batch, steps := shape[0], shape[1]
	flat := input.Reshape(tensor.Shape{batch * steps, shape[2]})
	out := addBiasRows(tensor.MatMul(flat, l.weight.Data), l.bias.Data)
	return out.Reshape(tensor.Shape{batch, steps, l.weight.Data.Shape()[1]})
}

// Backward folds time into the batch dimension and applies the Linear
// gradient formulas.
func (l *Linear2D) Backward(outGrad *tensor.Tensor) *tensor.Tensor {
	shape := l.input.Shape()
	batch, steps, in := shape[0], shape[1], shape[2]
	out := l.weight.Data.Shape()[1]

	flatGrad := outGrad.Reshape(tensor.Shape{batch * steps, out})
	flatIn := l.input.Reshape(tensor.Shape{batch * steps, in})

	inGrad := tensor.MatMul(flatGrad, l.weight.Data.Transpose())
	l.weight.Grad.AddInPlace(tensor.MatMul(flatIn.Transpose(), flatGrad))
	l.bias.Grad.AddInPlace(flatGrad.SumRows())

	return inGrad.Reshape(tensor.Shape{batch, steps, in})
}

func (l *Linear2D) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}
