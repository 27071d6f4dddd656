package nn

import (
	"math/rand"
	"testing"

	"github.com/chalk-ml/chalk/internal/backend/cpu"
	"github.com/chalk-ml/chalk/internal/gradcheck"
	"github.com/chalk-ml/chalk/internal/tensor"
)

func TestConv2D_OutputShape(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	conv := NewConv2D(Conv2DConfig{
		InChannels: 1, OutChannels: 3, KernelH: 3, KernelW: 3, Stride: 1, Pad: 2,
	}, "conv", NewXavier(rng), cpu.New())

	out := conv.Forward(tensor.Randn(tensor.Shape{2, 1, 5, 5}, 1.0, rng))
	// (5 + 2 - 3)/1 + 1 = 5: "same" output with total padding 2.
	if !out.Shape().Equal(tensor.Shape{2, 3, 5, 5}) {
		t.Errorf("output shape = %v, want [2, 3, 5, 5]", out.Shape())
	}
}

func TestConv2D_Gradients(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	conv := NewConv2D(Conv2DConfig{
		InChannels: 2, OutChannels: 2, KernelH: 2, KernelW: 2, Stride: 1, Pad: 0,
	}, "conv", NewXavier(rng), cpu.New())

	x := tensor.Randn(tensor.Shape{2, 2, 4, 4}, 1.0, rng)
	coef := tensor.Randn(tensor.Shape{2, 2, 3, 3}, 1.0, rng)

	loss := func() float64 { return conv.Forward(x).Mul(coef).Sum() }

	conv.Forward(x)
	inGrad := conv.Backward(coef)

	if err := gradcheck.MaxRelError(inGrad, gradcheck.Numerical(loss, x, 0)); err > 1e-6 {
		t.Errorf("input gradient off by %g", err)
	}
	if err := gradcheck.MaxRelError(conv.weight.Grad, gradcheck.Numerical(loss, conv.weight.Data, 0)); err > 1e-6 {
		t.Errorf("weight gradient off by %g", err)
	}
	if err := gradcheck.MaxRelError(conv.bias.Grad, gradcheck.Numerical(loss, conv.bias.Data, 0)); err > 1e-6 {
		t.Errorf("bias gradient off by %g", err)
	}
}

func TestConv2D_RejectsOddPad(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("odd padding should panic")
		}
	}()
	NewConv2D(Conv2DConfig{
		InChannels: 1, OutChannels: 1, KernelH: 3, KernelW: 3, Stride: 1, Pad: 1,
	}, "conv", ZeroInit{}, cpu.New())
}

func TestPool2D_MaxKnownValues(t *testing.T) {
	pool := NewPool2D(Pool2DConfig{
		Type: MaxPool, PoolH: 2, PoolW: 2, Stride: 2, Pad: 0,
	}, "pool", cpu.New())

	x := tensor.MustFromSlice([]float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}, tensor.Shape{1, 1, 4, 4})

	out := pool.Forward(x)
	want := []float64{6, 8, 14, 16}
	for i, w := range want {
		if out.Data()[i] != w {
			t.Errorf("out[%d] = %f, want %f", i, out.Data()[i], w)
		}
	}
}

func TestPool2D_MaxBackwardTiesShareGradient(t *testing.T) {
	pool := NewPool2D(Pool2DConfig{
		Type: MaxPool, PoolH: 2, PoolW: 2, Stride: 2, Pad: 0,
	}, "pool", cpu.New())

	// Both 5s in the window are maximal; each must receive the gradient.
	x := tensor.MustFromSlice([]float64{
		5, 5,
		1, 2,
	}, tensor.Shape{1, 1, 2, 2})
	pool.Forward(x)
	inGrad := pool.Backward(tensor.Ones(tensor.Shape{1, 1, 1, 1}))

	want := []float64{1, 1, 0, 0}
	for i, w := range want {
		if inGrad.Data()[i] != w {
			t.Errorf("inGrad[%d] = %f, want %f", i, inGrad.Data()[i], w)
		}
	}
}

func TestPool2D_AvgGradients(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	pool := NewPool2D(Pool2DConfig{
		Type: AvgPool, PoolH: 2, PoolW: 2, Stride: 1, Pad: 0,
	}, "pool", cpu.New())

	x := tensor.Randn(tensor.Shape{1, 2, 4, 4}, 1.0, rng)
	coef := tensor.Randn(tensor.Shape{1, 2, 3, 3}, 1.0, rng)

	loss := func() float64 { return pool.Forward(x).Mul(coef).Sum() }

	pool.Forward(x)
	inGrad := pool.Backward(coef)

	if err := gradcheck.MaxRelError(inGrad, gradcheck.Numerical(loss, x, 0)); err > 1e-8 {
		t.Errorf("input gradient off by %g", err)
	}
}

func TestPool2D_RejectsUnknownType(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("unknown pool type should panic")
		}
	}()
	NewPool2D(Pool2DConfig{
		Type: PoolType("median"), PoolH: 2, PoolW: 2, Stride: 2,
	}, "pool", cpu.New())
}
