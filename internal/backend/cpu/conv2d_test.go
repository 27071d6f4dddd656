package cpu

import (
	"math"
	"math/rand"
	"testing"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// naiveConv2D is a direct sliding-window reference implementation.
func naiveConv2D(input, weight, bias *tensor.Tensor, stride, pad int) *tensor.Tensor {
	n, cIn, h, w := input.Shape()[0], input.Shape()[1], input.Shape()[2], input.Shape()[3]
	cOut, kh, kw := weight.Shape()[0], weight.Shape()[2], weight.Shape()[3]
	hOut := (h+pad-kh)/stride + 1
	wOut := (w+pad-kw)/stride + 1
	half := pad / 2

	out := tensor.New(tensor.Shape{n, cOut, hOut, wOut})
	for bi := 0; bi < n; bi++ {
		for co := 0; co < cOut; co++ {
			for oh := 0; oh < hOut; oh++ {
				for ow := 0; ow < wOut; ow++ {
					sum := 0.0
					if bias != nil {
						sum = bias.At(co)
					}
					for ci := 0; ci < cIn; ci++ {
						for y := 0; y < kh; y++ {
							for x := 0; x < kw; x++ {
								ih := oh*stride - half + y
								iw := ow*stride - half + x
								if ih >= 0 && ih < h && iw >= 0 && iw < w {
									sum += input.At(bi, ci, ih, iw) * weight.At(co, ci, y, x)
								}
							}
						}
					}
					out.Set(sum, bi, co, oh, ow)
				}
			}
		}
	}
	return out
}

func TestConv2D_KnownValues(t *testing.T) {
	backend := New()

	// 3x3 input, 2x2 kernel of ones, no padding: each output is the
	// sum of a 2x2 patch.
	input := tensor.MustFromSlice([]float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}, tensor.Shape{1, 1, 3, 3})
	weight := tensor.Ones(tensor.Shape{1, 1, 2, 2})

	out := backend.Conv2D(input, weight, nil, 1, 0)

	want := []float64{12, 16, 24, 28}
	if !out.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
		t.Fatalf("output shape = %v, want [1, 1, 2, 2]", out.Shape())
	}
	for i, w := range want {
		if math.Abs(out.Data()[i]-w) > 1e-12 {
			t.Errorf("output[%d] = %f, want %f", i, out.Data()[i], w)
		}
	}
}

func TestConv2D_Bias(t *testing.T) {
	backend := New()
	input := tensor.Zeros(tensor.Shape{1, 1, 2, 2})
	weight := tensor.Ones(tensor.Shape{2, 1, 2, 2})
	bias := tensor.MustFromSlice([]float64{0.5, -1.5}, tensor.Shape{2})

	out := backend.Conv2D(input, weight, bias, 1, 0)
	if out.At(0, 0, 0, 0) != 0.5 || out.At(0, 1, 0, 0) != -1.5 {
		t.Errorf("bias not applied per channel: %v", out.Data())
	}
}

func TestConv2D_MatchesNaive(t *testing.T) {
	backend := New()
	rng := rand.New(rand.NewSource(7))

	cases := []struct {
		stride, pad int
	}{
		{1, 0},
		{1, 2},
		{2, 2},
	}
	for _, tc := range cases {
		input := tensor.Randn(tensor.Shape{2, 3, 6, 5}, 1.0, rng)
		weight := tensor.Randn(tensor.Shape{4, 3, 3, 3}, 1.0, rng)
		bias := tensor.Randn(tensor.Shape{4}, 1.0, rng)

		got := backend.Conv2D(input, weight, bias, tc.stride, tc.pad)
		want := naiveConv2D(input, weight, bias, tc.stride, tc.pad)

		if !got.Shape().Equal(want.Shape()) {
			t.Fatalf("stride=%d pad=%d: shape %v, want %v", tc.stride, tc.pad, got.Shape(), want.Shape())
		}
		if diff := got.MaxAbsDiff(want); diff > 1e-10 {
			t.Errorf("stride=%d pad=%d: max diff %g vs naive conv", tc.stride, tc.pad, diff)
		}
	}
}

func TestConv2D_DoesNotMutateInput(t *testing.T) {
	backend := New()
	rng := rand.New(rand.NewSource(1))
	input := tensor.Randn(tensor.Shape{1, 2, 4, 4}, 1.0, rng)
	weight := tensor.Randn(tensor.Shape{3, 2, 3, 3}, 1.0, rng)
	saved := input.Clone()

	backend.Conv2D(input, weight, nil, 1, 2)
	if input.MaxAbsDiff(saved) != 0 {
		t.Error("Conv2D mutated its input")
	}
}

func TestConv2DBackward_NumericalGradient(t *testing.T) {
	backend := New()
	rng := rand.New(rand.NewSource(11))

	input := tensor.Randn(tensor.Shape{2, 2, 5, 4}, 1.0, rng)
	weight := tensor.Randn(tensor.Shape{3, 2, 3, 3}, 0.5, rng)
	bias := tensor.Randn(tensor.Shape{3}, 0.5, rng)
	stride, pad := 1, 2

	out := backend.Conv2D(input, weight, bias, stride, pad)
	// Loss = sum(coef * output), so dLoss/dOutput = coef.
	coef := tensor.Randn(out.Shape().Clone(), 1.0, rng)
	loss := func() float64 {
		return backend.Conv2D(input, weight, bias, stride, pad).Mul(coef).Sum()
	}

	inGrad, wGrad, bGrad := backend.Conv2DBackward(coef, input, weight, stride, pad)

	const eps = 1e-6
	checkGrad := func(name string, param, analytic *tensor.Tensor) {
		t.Helper()
		data := param.Data()
		for _, i := range []int{0, len(data) / 2, len(data) - 1} {
			orig := data[i]
			data[i] = orig + eps
			plus := loss()
			data[i] = orig - eps
			minus := loss()
			data[i] = orig

			numeric := (plus - minus) / (2 * eps)
			if math.Abs(numeric-analytic.Data()[i]) > 1e-4 {
				t.Errorf("%s grad[%d]: numeric %f, analytic %f", name, i, numeric, analytic.Data()[i])
			}
		}
	}

	checkGrad("input", input, inGrad)
	checkGrad("weight", weight, wGrad)
	checkGrad("bias", bias, bGrad)
}
