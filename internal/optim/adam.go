package optim

import (
	"math"

	"github.com/chalk-ml/chalk/internal/nn"
	"github.com/chalk-ml/chalk/internal/tensor"
)

// Adam implements adaptive moment estimation.
//
// Update rule:
//
//	m = beta1 * m + (1-beta1) * gradient
//	v = beta2 * v + (1-beta2) * gradient²
//	mHat = m / (1 - beta1^t)
//	vHat = v / (1 - beta2^t)
//	param = param - lr * mHat / (sqrt(vHat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization"
// (Kingma & Ba, 2014).
type Adam struct {
	params []*nn.Parameter
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	t      int // timestep for bias correction
	m      map[*nn.Parameter]*tensor.Tensor
	v      map[*nn.Parameter]*tensor.Tensor
}

// AdamConfig holds the Adam hyperparameters.
type AdamConfig struct {
	LR    float64    // learning rate (default: 0.001)
	Betas [2]float64 // moment decay factors (default: 0.9, 0.999)
	Eps   float64    // denominator fuzz (default: 1e-8)
}

// NewAdam creates an Adam optimizer over params with zeroed moment
// estimates.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas == [2]float64{} {
		config.Betas = [2]float64{0.9, 0.999}
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	m := make(map[*nn.Parameter]*tensor.Tensor, len(params))
	v := make(map[*nn.Parameter]*tensor.Tensor, len(params))
	for _, p := range params {
		m[p] = tensor.New(p.Data.Shape().Clone())
		v[p] = tensor.New(p.Data.Shape().Clone())
	}
	return &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      m,
		v:      v,
	}
}

// Step applies one bias-corrected Adam update to every parameter.
func (a *Adam) Step() {
	a.t++
	corr1 := 1 - math.Pow(a.beta1, float64(a.t))
	corr2 := 1 - math.Pow(a.beta2, float64(a.t))

	for _, p := range a.params {
		m := a.m[p].Data()
		v := a.v[p].Data()
		data := p.Data.Data()
		grad := p.Grad.Data()
		for i, g := range grad {
			m[i] = a.beta1*m[i] + (1-a.beta1)*g
			v[i] = a.beta2*v[i] + (1-a.beta2)*g*g
			mHat := m[i] / corr1
			vHat := v[i] / corr2
			data[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
		}
	}
}

// ZeroGrad clears every parameter gradient.
func (a *Adam) ZeroGrad() { zeroGrads(a.params) }

// LR returns the learning rate.
func (a *Adam) LR() float64 { return a.lr }

// SetLR overrides the learning rate.
func (a *Adam) SetLR(lr float64) { a.lr = lr }
