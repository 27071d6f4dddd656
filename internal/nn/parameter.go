package nn

import "github.com/chalk-ml/chalk/internal/tensor"

// Parameter is a named trainable tensor with its accumulated gradient.
//
// Backward passes add into Grad, so gradients from multiple timesteps
// (BPTT) or multiple calls accumulate until ZeroGrad.
type Parameter struct {
	name string
	Data *tensor.Tensor
	Grad *tensor.Tensor
}

// NewParameter wraps data as a trainable parameter with a zeroed gradient.
func NewParameter(name string, data *tensor.Tensor) *Parameter {
	return &Parameter{
		name: name,
		Data: data,
		Grad: tensor.New(data.Shape().Clone()),
	}
}

// Name returns the parameter's identifier, e.g. "conv1.weight".
func (p *Parameter) Name() string {
	return p.name
}

// ZeroGrad resets the accumulated gradient to zero.
func (p *Parameter) ZeroGrad() {
	p.Grad.Zero()
}
