package nn

import (
	"fmt"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// BiRNN processes a sequence in both directions with two independent
// cells and concatenates the per-step states.
//
// Input [batch, time, inFeatures] -> output [batch, time, 2*units]: the
// first units features come from the left-to-right pass, the rest from
// the right-to-left pass re-reversed to original time order.
type BiRNN struct {
	name  string
	fwd   *RNN
	bwd   *RNN
	units int
}

// NewBiRNN creates a bidirectional layer from two cells with matching
// dimensions.
func NewBiRNN(forward, backward Cell, name string) *BiRNN {
	if forward.Units() != backward.Units() || forward.InFeatures() != backward.InFeatures() {
		panic(fmt.Sprintf("birnn %s: direction cells disagree: fwd %dx%d, bwd %dx%d",
			name, forward.InFeatures(), forward.Units(), backward.InFeatures(), backward.Units()))
	}
	return &BiRNN{
		name:  name,
		fwd:   NewRNN(forward, name+".forward"),
		bwd:   NewRNN(backward, name+".backward"),
		units: forward.Units(),
	}
}

func (b *BiRNN) Name() string { return b.name }

// Forward runs both directions and concatenates their states per step.
func (b *BiRNN) Forward(input *tensor.Tensor) *tensor.Tensor {
	fOut := b.fwd.Forward(input)
	rOut := reverseTime(b.bwd.Forward(reverseTime(input)))
	return concatFeatures(fOut, rOut)
}

// Backward splits the gradient into the two direction halves and routes
// each through its RNN, summing the resulting input gradients.
func (b *BiRNN) Backward(outGrad *tensor.Tensor) *tensor.Tensor {
	fGrad, rGrad := splitFeatures(outGrad, b.units)
	dxF := b.fwd.Backward(fGrad)
	dxR := reverseTime(b.bwd.Backward(reverseTime(rGrad)))
	return dxF.Add(dxR)
}

func (b *BiRNN) Parameters() []*Parameter {
	return append(b.fwd.Parameters(), b.bwd.Parameters()...)
}

// reverseTime flips a [batch, time, features] tensor along the time axis.
func reverseTime(t3 *tensor.Tensor) *tensor.Tensor {
	batch, steps, feat := t3.Shape()[0], t3.Shape()[1], t3.Shape()[2]
	out := tensor.New(t3.Shape().Clone())
	src := t3.Data()
	dst := out.Data()
	for b := 0; b < batch; b++ {
		for t := 0; t < steps; t++ {
			from := b*steps*feat + t*feat
			to := b*steps*feat + (steps-1-t)*feat
			copy(dst[to:to+feat], src[from:from+feat])
		}
	}
	return out
}

// concatFeatures joins two [batch, time, f] tensors along the feature axis.
func concatFeatures(a, b *tensor.Tensor) *tensor.Tensor {
	batch, steps := a.Shape()[0], a.Shape()[1]
	fa, fb := a.Shape()[2], b.Shape()[2]
	out := tensor.New(tensor.Shape{batch, steps, fa + fb})
	aData, bData, dst := a.Data(), b.Data(), out.Data()
	for i := 0; i < batch*steps; i++ {
		copy(dst[i*(fa+fb):i*(fa+fb)+fa], aData[i*fa:(i+1)*fa])
		copy(dst[i*(fa+fb)+fa:(i+1)*(fa+fb)], bData[i*fb:(i+1)*fb])
	}
	return out
}

// splitFeatures is the inverse of concatFeatures for a known first width.
func splitFeatures(t3 *tensor.Tensor, firstWidth int) (*tensor.Tensor, *tensor.Tensor) {
	batch, steps, feat := t3.Shape()[0], t3.Shape()[1], t3.Shape()[2]
	secondWidth := feat - firstWidth
	a := tensor.New(tensor.Shape{batch, steps, firstWidth})
	b := tensor.New(tensor.Shape{batch, steps, secondWidth})
	src, aData, bData := t3.Data(), a.Data(), b.Data()
	for i := 0; i < batch*steps; i++ {
		copy(aData[i*firstWidth:(i+1)*firstWidth], src[i*feat:i*feat+firstWidth])
		copy(bData[i*secondWidth:(i+1)*secondWidth], src[i*feat+firstWidth:(i+1)*feat])
	}
	return a, b
}
