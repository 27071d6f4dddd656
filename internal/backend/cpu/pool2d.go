package cpu

import (
	"math"

	"github.com/chalk-ml/chalk/internal/parallel"
	"github.com/chalk-ml/chalk/internal/tensor"
)

// MaxPool2D computes the max-pooling forward pass over [N, C, H, W].
// Zero padding participates in the window like any other value.
func (b *Backend) MaxPool2D(input *tensor.Tensor, ph, pw, stride, pad int) *tensor.Tensor {
	return b.pool2d(input, ph, pw, stride, pad, true)
}

// AvgPool2D computes the average-pooling forward pass over [N, C, H, W].
// The mean is taken over the full window, padding zeros included.
func (b *Backend) AvgPool2D(input *tensor.Tensor, ph, pw, stride, pad int) *tensor.Tensor {
	return b.pool2d(input, ph, pw, stride, pad, false)
}

func (b *Backend) pool2d(input *tensor.Tensor, ph, pw, stride, pad int, maxPool bool) *tensor.Tensor {
	assert4D("pool2d input", input.Shape())
	n, c, h, w := input.Shape()[0], input.Shape()[1], input.Shape()[2], input.Shape()[3]
	hOut := outputSize(h, ph, pad, stride)
	wOut := outputSize(w, pw, pad, stride)
	half := pad / 2

	output := tensor.New(tensor.Shape{n, c, hOut, wOut})
	in := input.Data()
	out := output.Data()

	parallel.For(n*c, b.par, func(k int) {
		bi, ci := k/c, k%c
		srcBase := bi*c*h*w + ci*h*w
		dstBase := bi*c*hOut*wOut + ci*hOut*wOut

		for oh := 0; oh < hOut; oh++ {
			for ow := 0; ow < wOut; ow++ {
				hStart := oh*stride - half
				wStart := ow*stride - half

				best := math.Inf(-1)
				sum := 0.0
				for y := 0; y < ph; y++ {
					ih := hStart + y
					for x := 0; x < pw; x++ {
						iw := wStart + x
						v := 0.0 // zero padding
						if ih >= 0 && ih < h && iw >= 0 && iw < w {
							v = in[srcBase+ih*w+iw]
						}
						if v > best {
							best = v
						}
						sum += v
					}
				}

				if maxPool {
					out[dstBase+oh*wOut+ow] = best
				} else {
					out[dstBase+oh*wOut+ow] = sum / float64(ph*pw)
				}
			}
		}
	})

	return output
}

// MaxPool2DBackward routes outGrad to every input position that attained
// the window maximum. Ties all receive the gradient; contributions landing
// on padding are discarded.
func (b *Backend) MaxPool2DBackward(outGrad, input *tensor.Tensor, ph, pw, stride, pad int) *tensor.Tensor {
	return b.pool2dBackward(outGrad, input, ph, pw, stride, pad, true)
}

// AvgPool2DBackward spreads outGrad uniformly, 1/(ph*pw) per window
// position; the padding share is discarded.
func (b *Backend) AvgPool2DBackward(outGrad, input *tensor.Tensor, ph, pw, stride, pad int) *tensor.Tensor {
	return b.pool2dBackward(outGrad, input, ph, pw, stride, pad, false)
}

func (b *Backend) pool2dBackward(outGrad, input *tensor.Tensor, ph, pw, stride, pad int, maxPool bool) *tensor.Tensor {
	assert4D("pool2d outGrad", outGrad.Shape())
	assert4D("pool2d input", input.Shape())
	n, c, h, w := input.Shape()[0], input.Shape()[1], input.Shape()[2], input.Shape()[3]
	hOut := outGrad.Shape()[2]
	wOut := outGrad.Shape()[3]
	half := pad / 2

	inGrad := tensor.New(input.Shape().Clone())
	in := input.Data()
	grad := outGrad.Data()
	dst := inGrad.Data()

	parallel.For(n*c, b.par, func(k int) {
		bi, ci := k/c, k%c
		srcBase := bi*c*h*w + ci*h*w
		gradBase := bi*c*hOut*wOut + ci*hOut*wOut

		for oh := 0; oh < hOut; oh++ {
			for ow := 0; ow < wOut; ow++ {
				g := grad[gradBase+oh*wOut+ow]
				hStart := oh*stride - half
				wStart := ow*stride - half

				if !maxPool {
					share := g / float64(ph*pw)
					for y := 0; y < ph; y++ {
						ih := hStart + y
						for x := 0; x < pw; x++ {
							iw := wStart + x
							if ih >= 0 && ih < h && iw >= 0 && iw < w {
								dst[srcBase+ih*w+iw] += share
							}
						}
					}
					continue
				}

				// Recompute the window max, padding zeros included.
				best := math.Inf(-1)
				for y := 0; y < ph; y++ {
					ih := hStart + y
					for x := 0; x < pw; x++ {
						iw := wStart + x
						v := 0.0
						if ih >= 0 && ih < h && iw >= 0 && iw < w {
							v = in[srcBase+ih*w+iw]
						}
						if v > best {
							best = v
						}
					}
				}
				for y := 0; y < ph; y++ {
					ih := hStart + y
					for x := 0; x < pw; x++ {
						iw := wStart + x
						if ih >= 0 && ih < h && iw >= 0 && iw < w && in[srcBase+ih*w+iw] == best {
							dst[srcBase+ih*w+iw] += g
						}
					}
				}
			}
		}
	})

	return inGrad
}
