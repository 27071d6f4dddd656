package cpu

import (
	"github.com/chalk-ml/chalk/internal/parallel"
	"github.com/chalk-ml/chalk/internal/tensor"
)

// Im2Col unrolls conv receptive fields into a matrix.
//
// Input [N, C, H, W] becomes [N*Hout*Wout, C*Kh*Kw]: one row per output
// position, one column per kernel weight. Positions that fall into the
// zero padding contribute 0.
func (b *Backend) Im2Col(input *tensor.Tensor, kh, kw, stride, pad int) *tensor.Tensor {
	assert4D("im2col input", input.Shape())
	n, c, h, w := input.Shape()[0], input.Shape()[1], input.Shape()[2], input.Shape()[3]
	hOut := outputSize(h, kh, pad, stride)
	wOut := outputSize(w, kw, pad, stride)
	half := pad / 2

	colWidth := c * kh * kw
	colHeight := n * hOut * wOut
	cols := tensor.New(tensor.Shape{colHeight, colWidth})

	in := input.Data()
	out := cols.Data()

	parallel.For(colHeight, b.par, func(row int) {
		bi := row / (hOut * wOut)
		rem := row % (hOut * wOut)
		oh := rem / wOut
		ow := rem % wOut

		hStart := oh*stride - half
		wStart := ow*stride - half
		dst := row * colWidth

		for ci := 0; ci < c; ci++ {
			srcBase := bi*c*h*w + ci*h*w
			for y := 0; y < kh; y++ {
				ih := hStart + y
				for x := 0; x < kw; x++ {
					iw := wStart + x
					if ih >= 0 && ih < h && iw >= 0 && iw < w {
						out[dst] = in[srcBase+ih*w+iw]
					}
					dst++
				}
			}
		}
	})

	return cols
}

// Col2Im scatters an unrolled gradient back onto the input layout,
// accumulating where receptive fields overlap. Contributions to padding
// positions are discarded. The inverse of Im2Col for gradients.
func (b *Backend) Col2Im(cols *tensor.Tensor, n, c, h, w, kh, kw, stride, pad int) *tensor.Tensor {
	hOut := outputSize(h, kh, pad, stride)
	wOut := outputSize(w, kw, pad, stride)
	half := pad / 2
	colWidth := c * kh * kw

	out := tensor.New(tensor.Shape{n, c, h, w})
	dst := out.Data()
	src := cols.Data()

	// Sequential: rows overlap in the output, scatter-add is not
	// independent per row.
	for row := 0; row < n*hOut*wOut; row++ {
		bi := row / (hOut * wOut)
		rem := row % (hOut * wOut)
		oh := rem / wOut
		ow := rem % wOut

		hStart := oh*stride - half
		wStart := ow*stride - half
		srcIdx := row * colWidth

		for ci := 0; ci < c; ci++ {
			dstBase := bi*c*h*w + ci*h*w
			for y := 0; y < kh; y++ {
				ih := hStart + y
				for x := 0; x < kw; x++ {
					iw := wStart + x
					if ih >= 0 && ih < h && iw >= 0 && iw < w {
						dst[dstBase+ih*w+iw] += src[srcIdx]
					}
					srcIdx++
				}
			}
		}
	}

	return out
}
