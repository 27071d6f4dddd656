package nn

import (
	"fmt"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// Embedding maps discrete token IDs to dense learned vectors.
//
// Weight: [numEmbeddings, embedDim]. Forward takes indices [batch, time]
// (integer values stored as float64) and returns [batch, time, embedDim].
// Backward scatter-adds the incoming gradient into the rows that were
// looked up; indices themselves receive no gradient.
type Embedding struct {
	name     string
	numEmbed int
	embedDim int
	weight   *Parameter
	indices  *tensor.Tensor
}

// NewEmbedding creates an embedding table filled by init.
func NewEmbedding(numEmbeddings, embedDim int, name string, init Initializer) *Embedding {
	weight := tensor.New(tensor.Shape{numEmbeddings, embedDim})
	init.Init(weight, numEmbeddings, embedDim)

	return &Embedding{
		name:     name,
		numEmbed: numEmbeddings,
		embedDim: embedDim,
		weight:   NewParameter(name+".weight", weight),
	}
}

func (e *Embedding) Name() string { return e.name }

// Forward looks up one weight row per index.
func (e *Embedding) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("embedding %s: expected indices [batch, time], got %v", e.name, shape))
	}
	e.indices = input

	batch, steps := shape[0], shape[1]
	out := tensor.New(tensor.Shape{batch, steps, e.embedDim})
	w := e.weight.Data.Data()
	dst := out.Data()

	for i, raw := range input.Data() {
		idx := int(raw)
		if idx < 0 || idx >= e.numEmbed {
			panic(fmt.Sprintf("embedding %s: index %d out of range [0, %d)", e.name, idx, e.numEmbed))
		}
		copy(dst[i*e.embedDim:(i+1)*e.embedDim], w[idx*e.embedDim:(idx+1)*e.embedDim])
	}
	return out
}

// Backward scatter-adds outGrad rows into the weight gradient and returns
// a zero gradient for the (non-differentiable) indices.
func (e *Embedding) Backward(outGrad *tensor.Tensor) *tensor.Tensor {
	grad := e.weight.Grad.Data()
	src := outGrad.Data()

	for i, raw := range e.indices.Data() {
		idx := int(raw)
		base := idx * e.embedDim
		row := src[i*e.embedDim : (i+1)*e.embedDim]
		for j, v := range row {
			grad[base+j] += v
		}
	}
	return tensor.New(e.indices.Shape().Clone())
}

func (e *Embedding) Parameters() []*Parameter {
	return []*Parameter{e.weight}
}
