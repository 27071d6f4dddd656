package nn

import (
	"fmt"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// RNN drives a recurrent cell across a sequence.
//
// Input [batch, time, inFeatures] -> output [batch, time, units] with the
// initial hidden state at zero. Forward caches the per-step inputs and
// hidden states so Backward can run backpropagation through time,
// accumulating cell parameter gradients across every step.
type RNN struct {
	name   string
	cell   Cell
	inputs []*tensor.Tensor // x_t, one [batch, in] slice per step
	states []*tensor.Tensor // h_0 .. h_T, states[t] is the state *before* step t
}

// NewRNN wraps a cell as a sequence layer.
func NewRNN(cell Cell, name string) *RNN {
	return &RNN{name: name, cell: cell}
}

func (r *RNN) Name() string { return r.name }

// Forward unrolls the cell over the time axis.
func (r *RNN) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 3 || shape[2] != r.cell.InFeatures() {
		panic(fmt.Sprintf("rnn %s: expected input [batch, time, %d], got %v",
			r.name, r.cell.InFeatures(), shape))
	}

	batch, steps := shape[0], shape[1]
	units := r.cell.Units()

	r.inputs = make([]*tensor.Tensor, steps)
	r.states = make([]*tensor.Tensor, steps+1)
	r.states[0] = tensor.New(tensor.Shape{batch, units})

	output := tensor.New(tensor.Shape{batch, steps, units})
	for t := 0; t < steps; t++ {
		x := timeSlice(input, t)
		h := r.cell.Step(x, r.states[t])
		r.inputs[t] = x
		r.states[t+1] = h
		setTimeSlice(output, t, h)
	}
	return output
}

// Backward runs BPTT: the hidden-state gradient carried from step t+1 is
// added to the output gradient at step t before stepping the cell
// backward.
func (r *RNN) Backward(outGrad *tensor.Tensor) *tensor.Tensor {
	steps := len(r.inputs)
	batch := outGrad.Shape()[0]
	inGrad := tensor.New(tensor.Shape{batch, steps, r.cell.InFeatures()})

	carry := tensor.New(tensor.Shape{batch, r.cell.Units()})
	for t := steps - 1; t >= 0; t-- {
		dh := timeSlice(outGrad, t).Add(carry)
		xGrad, prevHGrad := r.cell.StepBackward(dh, r.inputs[t], r.states[t])
		setTimeSlice(inGrad, t, xGrad)
		carry = prevHGrad
	}
	return inGrad
}

func (r *RNN) Parameters() []*Parameter {
	return r.cell.Parameters()
}

// timeSlice copies step t of a [batch, time, features] tensor into a
// [batch, features] tensor.
func timeSlice(t3 *tensor.Tensor, t int) *tensor.Tensor {
	batch, steps, feat := t3.Shape()[0], t3.Shape()[1], t3.Shape()[2]
	out := tensor.New(tensor.Shape{batch, feat})
	src := t3.Data()
	dst := out.Data()
	for b := 0; b < batch; b++ {
		copy(dst[b*feat:(b+1)*feat], src[b*steps*feat+t*feat:b*steps*feat+(t+1)*feat])
	}
	return out
}

// setTimeSlice writes a [batch, features] tensor into step t of a
// [batch, time, features] tensor.
func setTimeSlice(t3 *tensor.Tensor, t int, slice *tensor.Tensor) {
	batch, steps, feat := t3.Shape()[0], t3.Shape()[1], t3.Shape()[2]
	dst := t3.Data()
	src := slice.Data()
	for b := 0; b < batch; b++ {
		copy(dst[b*steps*feat+t*feat:b*steps*feat+(t+1)*feat], src[b*feat:(b+1)*feat])
	}
}
