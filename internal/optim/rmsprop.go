package optim

import (
	"math"

	"github.com/chalk-ml/chalk/internal/nn"
	"github.com/chalk-ml/chalk/internal/tensor"
)

// RMSprop divides each update by a running root-mean-square of the
// gradient:
//
//	cache = rho * cache + (1-rho) * gradient²
//	param = param - lr_t * gradient / (sqrt(cache) + eps)
//
// With Decay > 0 the effective rate shrinks hyperbolically over update
// steps:
//
//	lr_t = lr / (1 + decay * iterations)
//
// where iterations counts Step calls starting at zero, so the first
// update uses the full base rate.
type RMSprop struct {
	params     []*nn.Parameter
	lr         float64
	rho        float64
	eps        float64
	decay      float64
	iterations int
	cache      map[*nn.Parameter]*tensor.Tensor
}

// RMSpropConfig holds the RMSprop hyperparameters.
type RMSpropConfig struct {
	LR    float64 // base learning rate (default: 0.001)
	Rho   float64 // cache decay factor (default: 0.9)
	Eps   float64 // denominator fuzz (default: 1e-8)
	Decay float64 // hyperbolic learning-rate decay (default: 0)
}

// NewRMSprop creates an RMSprop optimizer over params. Zero config fields
// fall back to the defaults; the squared-gradient cache starts at zero.
func NewRMSprop(params []*nn.Parameter, config RMSpropConfig) *RMSprop {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Rho == 0 {
		config.Rho = 0.9
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	cache := make(map[*nn.Parameter]*tensor.Tensor, len(params))
	for _, p := range params {
		cache[p] = tensor.New(p.Data.Shape().Clone())
	}
	return &RMSprop{
		params: params,
		lr:     config.LR,
		rho:    config.Rho,
		eps:    config.Eps,
		decay:  config.Decay,
		cache:  cache,
	}
}

// Step applies one RMSprop update to every parameter.
func (r *RMSprop) Step() {
	lr := r.lr
	if r.decay > 0 {
		lr = r.lr / (1 + r.decay*float64(r.iterations))
	}
	r.iterations++

	for _, p := range r.params {
		cache := r.cache[p].Data()
		data := p.Data.Data()
		grad := p.Grad.Data()
		for i, g := range grad {
			cache[i] = r.rho*cache[i] + (1-r.rho)*g*g
			data[i] -= lr * g / (math.Sqrt(cache[i]) + r.eps)
		}
	}
}

// ZeroGrad clears every parameter gradient.
func (r *RMSprop) ZeroGrad() { zeroGrads(r.params) }

// LR returns the base learning rate (before decay).
func (r *RMSprop) LR() float64 { return r.lr }

// SetLR overrides the base learning rate.
func (r *RMSprop) SetLR(lr float64) { r.lr = lr }

// Iterations returns the number of Step calls so far.
func (r *RMSprop) Iterations() int { return r.iterations }
