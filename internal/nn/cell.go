package nn

import "github.com/chalk-ml/chalk/internal/tensor"

// Cell is a single recurrent step: it combines the input at one timestep
// with the previous hidden state. Cells are driven across a sequence by
// RNN and BiRNN.
//
// Backward receives the gradient w.r.t. the new hidden state together with
// the exact tensors the forward step saw, recomputes the gates, returns
// the gradients w.r.t. x and prevH and accumulates parameter gradients.
type Cell interface {
	InFeatures() int
	Units() int

	// Step computes the next hidden state from x [batch, inFeatures]
	// and prevH [batch, units].
	Step(x, prevH *tensor.Tensor) *tensor.Tensor

	// StepBackward computes (xGrad, prevHGrad) for one timestep and
	// accumulates into the cell's parameter gradients.
	StepBackward(outGrad, x, prevH *tensor.Tensor) (*tensor.Tensor, *tensor.Tensor)

	Parameters() []*Parameter
}

// colBlock extracts columns [from, to) of a 2-D tensor.
// Used to address the packed z|r|h kernel blocks of the GRU.
func colBlock(t *tensor.Tensor, from, to int) *tensor.Tensor {
	rows, cols := t.Shape()[0], t.Shape()[1]
	width := to - from
	out := tensor.New(tensor.Shape{rows, width})
	src := t.Data()
	dst := out.Data()
	for r := 0; r < rows; r++ {
		copy(dst[r*width:(r+1)*width], src[r*cols+from:r*cols+to])
	}
	return out
}

// addColBlock accumulates a [rows, to-from] block into columns [from, to)
// of dst.
func addColBlock(dst, block *tensor.Tensor, from, to int) {
	rows, cols := dst.Shape()[0], dst.Shape()[1]
	width := to - from
	d := dst.Data()
	s := block.Data()
	for r := 0; r < rows; r++ {
		for c := 0; c < width; c++ {
			d[r*cols+from+c] += s[r*width+c]
		}
	}
}
