// Package gradcheck verifies explicit backward passes against central
// finite differences. It is test support promoted to a package because
// every layer in this repo hand-derives its gradients.
package gradcheck

import (
	"math"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// DefaultEps is the finite-difference step. 1e-6 balances truncation and
// rounding error for float64.
const DefaultEps = 1e-6

// Numerical computes dLoss/dParam by central differences, perturbing each
// element of param in place and re-evaluating loss. param is restored
// before returning.
func Numerical(loss func() float64, param *tensor.Tensor, eps float64) *tensor.Tensor {
	if eps <= 0 {
		eps = DefaultEps
	}
	grad := tensor.New(param.Shape().Clone())
	data := param.Data()
	out := grad.Data()

	for i := range data {
		orig := data[i]
		data[i] = orig + eps
		plus := loss()
		data[i] = orig - eps
		minus := loss()
		data[i] = orig
		out[i] = (plus - minus) / (2 * eps)
	}
	return grad
}

// MaxRelError returns max |a-b| / max(1, |a|, |b|) over all elements: an
// absolute comparison near zero, relative for large magnitudes.
func MaxRelError(a, b *tensor.Tensor) float64 {
	worst := 0.0
	av, bv := a.Data(), b.Data()
	for i := range av {
		scale := math.Max(1, math.Max(math.Abs(av[i]), math.Abs(bv[i])))
		if e := math.Abs(av[i]-bv[i]) / scale; e > worst {
			worst = e
		}
	}
	return worst
}
