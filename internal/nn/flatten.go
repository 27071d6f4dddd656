package nn

import "github.com/chalk-ml/chalk/internal/tensor"

// Flatten reshapes [batch, ...] to [batch, prod(...)], preserving the
// batch dimension. Backward restores the original shape.
type Flatten struct {
	name    string
	inShape tensor.Shape
}

// NewFlatten creates a flatten layer.
func NewFlatten(name string) *Flatten {
	return &Flatten{name: name}
}

func (f *Flatten) Name() string { return f.name }

func (f *Flatten) Forward(input *tensor.Tensor) *tensor.Tensor {
	f.inShape = input.Shape().Clone()
	batch := f.inShape[0]
	return input.Clone().Reshape(tensor.Shape{batch, input.NumElements() / batch})
}

func (f *Flatten) Backward(outGrad *tensor.Tensor) *tensor.Tensor {
	return outGrad.Clone().Reshape(f.inShape)
}

func (f *Flatten) Parameters() []*Parameter { return nil }
