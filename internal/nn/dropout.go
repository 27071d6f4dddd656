package nn

import (
	"fmt"
	"math/rand"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// Dropout randomly zeroes activations during training.
//
// Inverted dropout: each element is kept with probability 1-rate and the
// kept values are scaled by 1/(1-rate), so inference is the identity and
// no rescaling is needed at eval time. The cached mask stores the scaled
// keep factor (0 or 1/(1-rate)) and the backward pass is outGrad * mask.
type Dropout struct {
	name     string
	rate     float64
	training bool
	seed     int64
	hasSeed  bool
	rng      *rand.Rand
	mask     *tensor.Tensor
}

// NewDropout creates a dropout layer. rate is the probability of zeroing
// a neuron and must lie in [0, 1).
func NewDropout(rate float64, name string) *Dropout {
	if rate < 0 || rate >= 1 {
		panic(fmt.Sprintf("dropout %s: rate must be in [0, 1), got %g", name, rate))
	}
	return &Dropout{
		name:     name,
		rate:     rate,
		training: true,
		//nolint:gosec // math/rand is appropriate for dropout masks
		rng: rand.New(rand.NewSource(rand.Int63())),
	}
}

func (d *Dropout) Name() string { return d.name }

// SetSeed makes every forward pass draw the same mask, which keeps
// gradient checks deterministic. Without a seed, masks are fresh per call.
func (d *Dropout) SetSeed(seed int64) {
	d.seed = seed
	d.hasSeed = true
}

// SetTraining switches between mask sampling (training) and identity
// (inference).
func (d *Dropout) SetTraining(training bool) {
	d.training = training
}

// Forward samples a keep mask and applies it. In inference mode the input
// passes through untouched.
func (d *Dropout) Forward(input *tensor.Tensor) *tensor.Tensor {
	if !d.training {
		d.mask = nil
		return input
	}

	rng := d.rng
	if d.hasSeed {
		rng = rand.New(rand.NewSource(d.seed))
	}

	scale := 1 / (1 - d.rate)
	d.mask = tensor.New(input.Shape().Clone())
	mask := d.mask.Data()
	for i := range mask {
		if rng.Float64() >= d.rate {
			mask[i] = scale
		}
	}
	return input.Mul(d.mask)
}

// Backward applies the cached mask to the gradient; identity in
// inference mode.
func (d *Dropout) Backward(outGrad *tensor.Tensor) *tensor.Tensor {
	if !d.training {
		return outGrad
	}
	return outGrad.Mul(d.mask)
}

func (d *Dropout) Parameters() []*Parameter { return nil }

// Rate returns the drop probability.
func (d *Dropout) Rate() float64 { return d.rate }
