package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MatMul computes the matrix product a @ b for 2-D tensors.
//
// a: [m, k], b: [k, n] -> [m, n]. The multiplication is delegated to
// gonum's BLAS-backed mat.Dense, which is the hot path for Linear layers
// and the im2col convolution.
func MatMul(a, b *Tensor) *Tensor {
	if len(a.shape) != 2 || len(b.shape) != 2 {
		panic(fmt.Sprintf("tensor: MatMul requires 2-D tensors, got %v and %v", a.shape, b.shape))
	}
	m, k := a.shape[0], a.shape[1]
	k2, n := b.shape[0], b.shape[1]
	if k != k2 {
		panic(fmt.Sprintf("tensor: MatMul inner dimension mismatch: %v @ %v", a.shape, b.shape))
	}

	out := New(Shape{m, n})
	if m == 0 || n == 0 || k == 0 {
		return out
	}

	am := mat.NewDense(m, k, a.data)
	bm := mat.NewDense(k2, n, b.data)
	om := mat.NewDense(m, n, out.data)
	om.Mul(am, bm)
	return out
}
