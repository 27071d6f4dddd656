package nn

import (
	"github.com/chalk-ml/chalk/internal/tensor"
)

// GRUCell is a gated recurrent unit with packed kernels and no bias.
//
// kernel: [inFeatures, 3*units], recurrentKernel: [units, 3*units], both
// with column blocks ordered update | reset | candidate (z | r | h):
//
//	z  = σ(x @ Wz + h @ Uz)          update gate
//	r  = σ(x @ Wr + h @ Ur)          reset gate
//	ĥ  = tanh(x @ Wh + (r ∘ h) @ Uh) candidate state
//	h' = (1-z) ∘ ĥ + z ∘ h
type GRUCell struct {
	name            string
	inFeatures      int
	units           int
	kernel          *Parameter
	recurrentKernel *Parameter
}

// NewGRUCell creates a GRU cell with init-filled packed kernels.
func NewGRUCell(inFeatures, units int, name string, init Initializer) *GRUCell {
	kernel := tensor.New(tensor.Shape{inFeatures, 3 * units})
	init.Init(kernel, inFeatures, units)
	recurrent := tensor.New(tensor.Shape{units, 3 * units})
	init.Init(recurrent, units, units)

	return &GRUCell{
		name:            name,
		inFeatures:      inFeatures,
		units:           units,
		kernel:          NewParameter(name+".kernel", kernel),
		recurrentKernel: NewParameter(name+".recurrent_kernel", recurrent),
	}
}

func (c *GRUCell) InFeatures() int { return c.inFeatures }
func (c *GRUCell) Units() int      { return c.units }

// gates evaluates z, r and ĥ for the given input and state.
func (c *GRUCell) gates(x, prevH *tensor.Tensor) (z, r, hCand *tensor.Tensor) {
	u := c.units
	wz := colBlock(c.kernel.Data, 0, u)
	wr := colBlock(c.kernel.Data, u, 2*u)
	wh := colBlock(c.kernel.Data, 2*u, 3*u)
	uz := colBlock(c.recurrentKernel.Data, 0, u)
	ur := colBlock(c.recurrentKernel.Data, u, 2*u)
	uh := colBlock(c.recurrentKernel.Data, 2*u, 3*u)

	z = sigmoidOf(tensor.MatMul(x, wz).Add(tensor.MatMul(prevH, uz)))
	r = sigmoidOf(tensor.MatMul(x, wr).Add(tensor.MatMul(prevH, ur)))
	hCand = tanhOf(tensor.MatMul(x, wh).Add(tensor.MatMul(r.Mul(prevH), uh)))
	return z, r, hCand
}

// Step computes h' = (1-z) ∘ ĥ + z ∘ h.
func (c *GRUCell) Step(x, prevH *tensor.Tensor) *tensor.Tensor {
	z, _, hCand := c.gates(x, prevH)
	ones := tensor.Ones(z.Shape().Clone())
	return ones.Sub(z).Mul(hCand).Add(z.Mul(prevH))
}

// StepBackward recomputes the gates from the cached inputs and walks the
// forward chain in reverse:
//
//	dz  = outGrad ∘ (h - ĥ),   dzRaw = dz ∘ z ∘ (1-z)
//	dĥ  = outGrad ∘ (1-z),     dĥRaw = dĥ ∘ (1-ĥ²)
//	dr  = (dĥRaw @ Uhᵀ) ∘ h,   drRaw = dr ∘ r ∘ (1-r)
//	dx  = dzRaw @ Wzᵀ + drRaw @ Wrᵀ + dĥRaw @ Whᵀ
//	dh  = dzRaw @ Uzᵀ + drRaw @ Urᵀ + (dĥRaw @ Uhᵀ) ∘ r + outGrad ∘ z
//
// Kernel gradients accumulate into the corresponding packed blocks.
func (c *GRUCell) StepBackward(outGrad, x, prevH *tensor.Tensor) (*tensor.Tensor, *tensor.Tensor) {
	u := c.units
	wz := colBlock(c.kernel.Data, 0, u)
	wr := colBlock(c.kernel.Data, u, 2*u)
	wh := colBlock(c.kernel.Data, 2*u, 3*u)
	uz := colBlock(c.recurrentKernel.Data, 0, u)
	ur := colBlock(c.recurrentKernel.Data, u, 2*u)
	uh := colBlock(c.recurrentKernel.Data, 2*u, 3*u)

	z, r, hCand := c.gates(x, prevH)

	dz := outGrad.Mul(prevH.Sub(hCand))
	dzRaw := dz.Mul(z).Mul(z.Apply(func(v float64) float64 { return 1 - v }))

	dh := outGrad.Mul(z.Apply(func(v float64) float64 { return 1 - v }))
	dhRaw := dh.Mul(hCand.Apply(func(v float64) float64 { return 1 - v*v }))

	dhRawUh := tensor.MatMul(dhRaw, uh.Transpose())
	dr := dhRawUh.Mul(prevH)
	drRaw := dr.Mul(r).Mul(r.Apply(func(v float64) float64 { return 1 - v }))

	xGrad := tensor.MatMul(dzRaw, wz.Transpose()).
		Add(tensor.MatMul(drRaw, wr.Transpose())).
		Add(tensor.MatMul(dhRaw, wh.Transpose()))

	prevHGrad := tensor.MatMul(dzRaw, uz.Transpose()).
		Add(tensor.MatMul(drRaw, ur.Transpose())).
		Add(dhRawUh.Mul(r)).
		Add(outGrad.Mul(z))

	xT := x.Transpose()
	addColBlock(c.kernel.Grad, tensor.MatMul(xT, dzRaw), 0, u)
	addColBlock(c.kernel.Grad, tensor.MatMul(xT, drRaw), u, 2*u)
	addColBlock(c.kernel.Grad, tensor.MatMul(xT, dhRaw), 2*u, 3*u)

	hT := prevH.Transpose()
	addColBlock(c.recurrentKernel.Grad, tensor.MatMul(hT, dzRaw), 0, u)
	addColBlock(c.recurrentKernel.Grad, tensor.MatMul(hT, drRaw), u, 2*u)
	addColBlock(c.recurrentKernel.Grad, tensor.MatMul(prevH.Mul(r).Transpose(), dhRaw), 2*u, 3*u)

	return xGrad, prevHGrad
}

func (c *GRUCell) Parameters() []*Parameter {
	return []*Parameter{c.kernel, c.recurrentKernel}
}
