package nn

import (
	"github.com/chalk-ml/chalk/internal/tensor"
)

// RNNCell is the elementary tanh recurrence:
//
//	h' = tanh(x @ W + h @ U + b)
//
// W: [inFeatures, units] (kernel), U: [units, units] (recurrent kernel),
// b: [units].
type RNNCell struct {
	name            string
	inFeatures      int
	units           int
	kernel          *Parameter
	recurrentKernel *Parameter
	bias            *Parameter
}

// NewRNNCell creates a tanh recurrent cell with init-filled kernels and a
// zero bias.
func NewRNNCell(inFeatures, units int, name string, init Initializer) *RNNCell {
	kernel := tensor.New(tensor.Shape{inFeatures, units})
	init.Init(kernel, inFeatures, units)
	recurrent := tensor.New(tensor.Shape{units, units})
	init.Init(recurrent, units, units)

	return &RNNCell{
		name:            name,
		inFeatures:      inFeatures,
		units:           units,
		kernel:          NewParameter(name+".kernel", kernel),
		recurrentKernel: NewParameter(name+".recurrent_kernel", recurrent),
		bias:            NewParameter(name+".bias", tensor.New(tensor.Shape{units})),
	}
}

func (c *RNNCell) InFeatures() int { return c.inFeatures }
func (c *RNNCell) Units() int      { return c.units }

// Step computes tanh(x @ W + h @ U + b).
func (c *RNNCell) Step(x, prevH *tensor.Tensor) *tensor.Tensor {
	pre := tensor.MatMul(x, c.kernel.Data).
		Add(tensor.MatMul(prevH, c.recurrentKernel.Data))
	return tanhOf(addBiasRows(pre, c.bias.Data))
}

// StepBackward recomputes the step output and pushes the gradient through
// the tanh:
//
//	dPre = outGrad * (1 - h'²)
//	dx = dPre @ Wᵀ, dh = dPre @ Uᵀ
//	dW += xᵀ @ dPre, dU += hᵀ @ dPre, db += column sums of dPre
func (c *RNNCell) StepBackward(outGrad, x, prevH *tensor.Tensor) (*tensor.Tensor, *tensor.Tensor) {
	h := c.Step(x, prevH)
	dPre := outGrad.Mul(h.Apply(func(v float64) float64 { return 1 - v*v }))

	xGrad := tensor.MatMul(dPre, c.kernel.Data.Transpose())
	hGrad := tensor.MatMul(dPre, c.recurrentKernel.Data.Transpose())

	c.kernel.Grad.AddInPlace(tensor.MatMul(x.Transpose(), dPre))
	c.recurrentKernel.Grad.AddInPlace(tensor.MatMul(prevH.Transpose(), dPre))
	c.bias.Grad.AddInPlace(dPre.SumRows())

	return xGrad, hGrad
}

func (c *RNNCell) Parameters() []*Parameter {
	return []*Parameter{c.kernel, c.recurrentKernel, c.bias}
}
