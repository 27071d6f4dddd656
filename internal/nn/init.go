package nn

import (
	"math"
	"math/rand"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// Initializer fills a weight tensor before training.
type Initializer interface {
	Init(t *tensor.Tensor, fanIn, fanOut int)
}

// Gaussian initializes weights from N(0, Std²).
type Gaussian struct {
	Std float64
	rng *rand.Rand
}

// NewGaussian creates a Gaussian initializer drawing from rng.
func NewGaussian(std float64, rng *rand.Rand) Gaussian {
	return Gaussian{Std: std, rng: rng}
}

// Init fills t with N(0, Std²) samples. Fan sizes are ignored.
func (g Gaussian) Init(t *tensor.Tensor, _, _ int) {
	data := t.Data()
	for i := range data {
		data[i] = g.rng.NormFloat64() * g.Std
	}
}

// Xavier initializes weights from the Glorot uniform distribution
// U(-b, b) with b = sqrt(6 / (fanIn + fanOut)), keeping activation
// variance roughly constant across layers.
type Xavier struct {
	rng *rand.Rand
}

// NewXavier creates a Xavier initializer drawing from rng.
func NewXavier(rng *rand.Rand) Xavier {
	return Xavier{rng: rng}
}

// Init fills t with Glorot uniform samples.
func (x Xavier) Init(t *tensor.Tensor, fanIn, fanOut int) {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	data := t.Data()
	for i := range data {
		data[i] = (x.rng.Float64()*2 - 1) * bound
	}
}

// ZeroInit leaves the tensor at zero. Used for biases.
type ZeroInit struct{}

// Init is a no-op: fresh tensors are already zero.
func (ZeroInit) Init(_ *tensor.Tensor, _, _ int) {}
