package cpu

import (
	"fmt"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// Conv2D computes the convolution forward pass.
//
// input:  [N, Cin, H, W]
// weight: [Cout, Cin, Kh, Kw]
// bias:   [Cout] (may be nil)
// output: [N, Cout, Hout, Wout]
//
// The convolution is expressed as im2col followed by one matmul
// (Chellapilla et al., 2006), the same scheme the reference formulas use.
func (b *Backend) Conv2D(input, weight, bias *tensor.Tensor, stride, pad int) *tensor.Tensor {
	assert4D("conv2d input", input.Shape())
	assert4D("conv2d weight", weight.Shape())

	n, cIn, h, w := input.Shape()[0], input.Shape()[1], input.Shape()[2], input.Shape()[3]
	cOut, cInK, kh, kw := weight.Shape()[0], weight.Shape()[1], weight.Shape()[2], weight.Shape()[3]
	if cIn != cInK {
		panic(fmt.Sprintf("cpu: conv2d input channels %d != weight channels %d", cIn, cInK))
	}

	hOut := outputSize(h, kh, pad, stride)
	wOut := outputSize(w, kw, pad, stride)
	if hOut <= 0 || wOut <= 0 {
		panic(fmt.Sprintf("cpu: conv2d produces empty output %dx%d (check kernel/stride/pad)", hOut, wOut))
	}

	colWidth := cIn * kh * kw
	cols := b.Im2Col(input, kh, kw, stride, pad) // [N*Hout*Wout, colWidth]
	wMat := weight.Reshape(tensor.Shape{cOut, colWidth})

	// [N*Hout*Wout, colWidth] @ [colWidth, Cout] -> [N*Hout*Wout, Cout]
	prod := tensor.MatMul(cols, wMat.Transpose())

	output := tensor.New(tensor.Shape{n, cOut, hOut, wOut})
	outData := output.Data()
	prodData := prod.Data()
	plane := hOut * wOut

	for row := 0; row < n*plane; row++ {
		bi := row / plane
		pos := row % plane
		for co := 0; co < cOut; co++ {
			v := prodData[row*cOut+co]
			if bias != nil {
				v += bias.Data()[co]
			}
			outData[bi*cOut*plane+co*plane+pos] = v
		}
	}

	return output
}

// Conv2DBackward computes gradients for the convolution.
//
// Returns (inGrad, weightGrad, biasGrad) with the shapes of input, weight
// and [Cout] respectively.
func (b *Backend) Conv2DBackward(outGrad, input, weight *tensor.Tensor, stride, pad int) (*tensor.Tensor, *tensor.Tensor, *tensor.Tensor) {
	assert4D("conv2d outGrad", outGrad.Shape())
	assert4D("conv2d input", input.Shape())

	n, cIn, h, w := input.Shape()[0], input.Shape()[1], input.Shape()[2], input.Shape()[3]
	cOut, kh, kw := weight.Shape()[0], weight.Shape()[2], weight.Shape()[3]
	hOut := outGrad.Shape()[2]
	wOut := outGrad.Shape()[3]
	plane := hOut * wOut
	colWidth := cIn * kh * kw

	// Re-pack outGrad [N, Cout, Hout, Wout] as [N*Hout*Wout, Cout] to
	// line up with the im2col row order.
	dY := tensor.New(tensor.Shape{n * plane, cOut})
	dYData := dY.Data()
	gradData := outGrad.Data()
	for row := 0; row < n*plane; row++ {
		bi := row / plane
		pos := row % plane
		for co := 0; co < cOut; co++ {
			dYData[row*cOut+co] = gradData[bi*cOut*plane+co*plane+pos]
		}
	}

	wMat := weight.Reshape(tensor.Shape{cOut, colWidth})

	// dX = col2im(dY @ W)
	dCols := tensor.MatMul(dY, wMat) // [N*Hout*Wout, colWidth]
	inGrad := b.Col2Im(dCols, n, cIn, h, w, kh, kw, stride, pad)

	// dW = dYᵀ @ im2col(input)
	cols := b.Im2Col(input, kh, kw, stride, pad)
	wGrad := tensor.MatMul(dY.Transpose(), cols).Reshape(weight.Shape().Clone())

	// db = sum of dY over every output position
	bGrad := dY.SumRows()

	return inGrad, wGrad, bGrad
}
