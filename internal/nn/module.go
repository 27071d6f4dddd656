// Package nn implements Chalk's neural network layers.
//
// Every layer exposes an explicit backward pass instead of relying on an
// autodiff graph: Forward caches whatever the gradient formulas need, and
// Backward consumes the gradient w.r.t. the layer output and returns the
// gradient w.r.t. the layer input, accumulating parameter gradients into
// Parameter.Grad along the way. Forward never mutates its input tensor.
//
// Layers compose through Sequential:
//
//	model := nn.NewSequential("mlp",
//	    nn.NewLinear(784, 128, "fc1", init),
//	    nn.NewReLU("relu1"),
//	    nn.NewLinear(128, 10, "fc2", init),
//	)
package nn

import "github.com/chalk-ml/chalk/internal/tensor"

// Layer is the interface shared by all network layers.
type Layer interface {
	// Name identifies the layer inside a model (used for checkpoints
	// and logging).
	Name() string

	// Forward computes the layer output and caches the values its
	// backward pass needs.
	Forward(input *tensor.Tensor) *tensor.Tensor

	// Backward consumes the gradient w.r.t. the output of the most
	// recent Forward call and returns the gradient w.r.t. its input.
	// Parameter gradients are accumulated into Parameter.Grad.
	Backward(outGrad *tensor.Tensor) *tensor.Tensor

	// Parameters returns the layer's trainable parameters, empty for
	// parameter-free layers.
	Parameters() []*Parameter
}

// modeAware is implemented by layers that behave differently during
// training and inference (currently Dropout).
type modeAware interface {
	SetTraining(training bool)
}
