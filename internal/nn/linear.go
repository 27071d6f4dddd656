package nn

import (
	"fmt"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// Linear is a fully connected layer: y = x @ W + b.
//
// Weight shape [inFeatures, outFeatures], bias shape [outFeatures].
// Input [batch, inFeatures] -> output [batch, outFeatures].
type Linear struct {
	name   string
	weight *Parameter
	bias   *Parameter
	input  *tensor.Tensor
}

// NewLinear creates a fully connected layer. The weight is filled by init,
// the bias starts at zero.
func NewLinear(inFeatures, outFeatures int, name string, init Initializer) *Linear {
	weight := tensor.New(tensor.Shape{inFeatures, outFeatures})
	init.Init(weight, inFeatures, outFeatures)

	return &Linear{
		name:   name,
		weight: NewParameter(name+".weight", weight),
		bias:   NewParameter(name+".bias", tensor.New(tensor.Shape{outFeatures})),
	}
}

func (l *Linear) Name() string { return l.name }

// Forward computes x @ W + b.
func (l *Linear) Forward(input *tensor.Tensor) *tensor.Tensor {
	if len(input.Shape()) != 2 || input.Shape()[1] != l.weight.Data.Shape()[0] {
		panic(fmt.Sprintf("linear %s: input shape %v incompatible with weight %v",
			l.name, input.Shape(), l.weight.Data.Shape()))
	}
	l.input = input
	return addBiasRows(tensor.MatMul(input, l.weight.Data), l.bias.Data)
}

// Backward computes
//
//	dX = dY @ Wᵀ
//	dW += Xᵀ @ dY
//	db += column sums of dY
func (l *Linear) Backward(outGrad *tensor.Tensor) *tensor.Tensor {
	inGrad := tensor.MatMul(outGrad, l.weight.Data.Transpose())
	l.weight.Grad.AddInPlace(tensor.MatMul(l.input.Transpose(), outGrad))
	l.bias.Grad.AddInPlace(outGrad.SumRows())
	return inGrad
}

func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// addBiasRows adds a [cols] bias to every row of a [rows, cols] tensor.
func addBiasRows(t, bias *tensor.Tensor) *tensor.Tensor {
	rows, cols := t.Shape()[0], t.Shape()[1]
	out := t.Clone()
	data := out.Data()
	b := bias.Data()
	for r := 0; r < rows; r++ {
		base := r * cols
		for c := 0; c < cols; c++ {
			data[base+c] += b[c]
		}
	}
	return out
}
