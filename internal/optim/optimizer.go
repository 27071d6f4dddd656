// Package optim implements optimization algorithms for training.
//
// Optimizers update parameters in place from the gradients the explicit
// backward passes accumulate into Parameter.Grad:
//
//	opt := optim.NewRMSprop(model.Parameters(), optim.RMSpropConfig{LR: 0.001})
//	for epoch := range epochs {
//	    logits := model.Forward(batch)
//	    model.Backward(loss.Backward(logits, labels))
//	    opt.Step()
//	    opt.ZeroGrad()
//	}
package optim

import "github.com/chalk-ml/chalk/internal/nn"

// Optimizer is the interface shared by all update rules.
type Optimizer interface {
	// Step applies one update to every parameter from its accumulated
	// gradient.
	Step()

	// ZeroGrad clears every parameter gradient. Call it after Step so
	// the next backward pass starts from zero.
	ZeroGrad()

	// LR returns the current base learning rate.
	LR() float64

	// SetLR overrides the base learning rate, for schedules driven from
	// outside the optimizer.
	SetLR(lr float64)
}

// zeroGrads clears the gradients of every parameter in the slice.
func zeroGrads(params []*nn.Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
