package optim

import (
	"github.com/chalk-ml/chalk/internal/nn"
	"github.com/chalk-ml/chalk/internal/tensor"
)

// SGD implements stochastic gradient descent with optional momentum.
//
// Without momentum:
//
//	param = param - lr * gradient
//
// With momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	params     []*nn.Parameter
	lr         float64
	momentum   float64
	velocities map[*nn.Parameter]*tensor.Tensor
}

// SGDConfig holds the SGD hyperparameters.
type SGDConfig struct {
	LR       float64 // learning rate (default: 0.01)
	Momentum float64 // momentum factor in [0, 1) (default: 0)
}

// NewSGD creates an SGD optimizer over params. Velocity buffers are
// allocated lazily only when momentum is enabled.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	s := &SGD{params: params, lr: config.LR, momentum: config.Momentum}
	if config.Momentum != 0 {
		s.velocities = make(map[*nn.Parameter]*tensor.Tensor, len(params))
		for _, p := range params {
			s.velocities[p] = tensor.New(p.Data.Shape().Clone())
		}
	}
	return s
}

// Step applies one SGD update to every parameter.
func (s *SGD) Step() {
	for _, p := range s.params {
		data := p.Data.Data()
		grad := p.Grad.Data()

		if s.momentum == 0 {
			for i, g := range grad {
				data[i] -= s.lr * g
			}
			continue
		}

		vel := s.velocities[p].Data()
		for i, g := range grad {
			vel[i] = s.momentum*vel[i] + g
			data[i] -= s.lr * vel[i]
		}
	}
}

// ZeroGrad clears every parameter gradient.
func (s *SGD) ZeroGrad() { zeroGrads(s.params) }

// LR returns the learning rate.
func (s *SGD) LR() float64 { return s.lr }

// SetLR overrides the learning rate.
func (s *SGD) SetLR(lr float64) { s.lr = lr }
