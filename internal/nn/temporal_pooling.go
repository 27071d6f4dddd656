package nn

import (
	"fmt"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// TemporalPooling averages a sequence over its time axis:
// [batch, time, features] -> [batch, features]. Backward spreads the
// gradient uniformly, 1/time per step.
type TemporalPooling struct {
	name    string
	inShape tensor.Shape
}

// NewTemporalPooling creates a mean-over-time layer.
func NewTemporalPooling(name string) *TemporalPooling {
	return &TemporalPooling{name: name}
}

func (p *TemporalPooling) Name() string { return p.name }

func (p *TemporalPooling) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 3 {
		panic(fmt.Sprintf("temporal pooling %s: expected [batch, time, features], got %v", p.name, shape))
	}
	p.inShape = shape.Clone()

	batch, steps, feat := shape[0], shape[1], shape[2]
	out := tensor.New(tensor.Shape{batch, feat})
	src := input.Data()
	dst := out.Data()
	for b := 0; b < batch; b++ {
		for t := 0; t < steps; t++ {
			base := b*steps*feat + t*feat
			for f := 0; f < feat; f++ {
				dst[b*feat+f] += src[base+f]
			}
		}
	}
	return out.Scale(1 / float64(steps))
}

func (p *TemporalPooling) Backward(outGrad *tensor.Tensor) *tensor.Tensor {
	batch, steps, feat := p.inShape[0], p.inShape[1], p.inShape[2]
	inGrad := tensor.New(p.inShape.Clone())
	src := outGrad.Data()
	dst := inGrad.Data()
	inv := 1 / float64(steps)
	for b := 0; b < batch; b++ {
		for t := 0; t < steps; t++ {
			base := b*steps*feat + t*feat
			for f := 0; f < feat; f++ {
				dst[base+f] = src[b*feat+f] * inv
			}
		}
	}
	return inGrad
}

func (p *TemporalPooling) Parameters() []*Parameter { return nil }
