package dataset

import (
	"math/rand"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// Batch is one training minibatch.
type Batch struct {
	Inputs *tensor.Tensor
	Labels []int
}

// Batcher yields minibatches over an example tensor whose first axis is
// the example axis, optionally reshuffling order every epoch.
type Batcher struct {
	inputs    *tensor.Tensor
	labels    []int
	batchSize int
	shuffle   bool
	rng       *rand.Rand
	order     []int
	cursor    int
}

// NewBatcher creates a batcher. With shuffle enabled the order is drawn
// from rng at every Reset; a nil rng keeps the natural order.
func NewBatcher(inputs *tensor.Tensor, labels []int, batchSize int, rng *rand.Rand) *Batcher {
	order := make([]int, len(labels))
	for i := range order {
		order[i] = i
	}
	b := &Batcher{
		inputs:    inputs,
		labels:    labels,
		batchSize: batchSize,
		shuffle:   rng != nil,
		rng:       rng,
		order:     order,
	}
	b.Reset()
	return b
}

// Reset rewinds to the first batch and reshuffles if enabled.
func (b *Batcher) Reset() {
	b.cursor = 0
	if b.shuffle {
		b.rng.Shuffle(len(b.order), func(i, j int) {
			b.order[i], b.order[j] = b.order[j], b.order[i]
		})
	}
}

// Batches returns the number of batches per epoch; a short final batch
// counts.
func (b *Batcher) Batches() int {
	return (len(b.labels) + b.batchSize - 1) / b.batchSize
}

// Next returns the next minibatch, or false at the end of the epoch.
func (b *Batcher) Next() (Batch, bool) {
	if b.cursor >= len(b.order) {
		return Batch{}, false
	}
	end := b.cursor + b.batchSize
	if end > len(b.order) {
		end = len(b.order)
	}
	idx := b.order[b.cursor:end]
	b.cursor = end

	shape := b.inputs.Shape()
	plane := 1
	for _, d := range shape[1:] {
		plane *= d
	}
	outShape := append(tensor.Shape{len(idx)}, shape[1:]...)
	out := tensor.New(outShape)
	labels := make([]int, len(idx))

	src := b.inputs.Data()
	dst := out.Data()
	for i, example := range idx {
		copy(dst[i*plane:(i+1)*plane], src[example*plane:(example+1)*plane])
		labels[i] = b.labels[example]
	}
	return Batch{Inputs: out, Labels: labels}, true
}
