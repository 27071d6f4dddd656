package nn

import "github.com/chalk-ml/chalk/internal/tensor"

// Sequential chains layers in order. It starts in training mode.
type Sequential struct {
	name     string
	layers   []Layer
	training bool
}

// NewSequential creates a model from an ordered list of layers.
func NewSequential(name string, layers ...Layer) *Sequential {
	return &Sequential{name: name, layers: layers, training: true}
}

func (s *Sequential) Name() string { return s.name }

// Add appends a layer.
func (s *Sequential) Add(layer Layer) *Sequential {
	s.layers = append(s.layers, layer)
	return s
}

// Layers returns the layers in forward order.
func (s *Sequential) Layers() []Layer {
	return s.layers
}

// Forward runs every layer in order.
func (s *Sequential) Forward(input *tensor.Tensor) *tensor.Tensor {
	out := input
	for _, layer := range s.layers {
		out = layer.Forward(out)
	}
	return out
}

// Backward runs the layers in reverse, threading the gradient through and
// accumulating parameter gradients.
func (s *Sequential) Backward(outGrad *tensor.Tensor) *tensor.Tensor {
	grad := outGrad
	for i := len(s.layers) - 1; i >= 0; i-- {
		grad = s.layers[i].Backward(grad)
	}
	return grad
}

// Parameters collects the parameters of every layer in forward order.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, layer := range s.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// SetTraining switches the model (and its mode-aware layers, such as
// Dropout) between training and inference behavior.
func (s *Sequential) SetTraining(training bool) {
	s.training = training
	for _, layer := range s.layers {
		if m, ok := layer.(modeAware); ok {
			m.SetTraining(training)
		}
	}
}

// Training reports whether the model is in training mode.
func (s *Sequential) Training() bool {
	return s.training
}
