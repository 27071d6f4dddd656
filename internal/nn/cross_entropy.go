package nn

import (
	"fmt"
	"math"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// crossEntropyEps guards the log against zero probability mass.
const crossEntropyEps = 1e-12

// SoftmaxCrossEntropy combines a numerically stable softmax with the mean
// negative log-likelihood over integer class labels.
//
// It is not a Layer: the loss sits outside the model, consuming logits
// [batch, classes] and labels [batch].
type SoftmaxCrossEntropy struct{}

// NewSoftmaxCrossEntropy creates the loss.
func NewSoftmaxCrossEntropy() *SoftmaxCrossEntropy {
	return &SoftmaxCrossEntropy{}
}

// Forward returns the mean loss and the probability matrix.
//
// Logits are shifted by their row max before exponentiation, and the log
// uses a small eps, matching the reference formulas.
func (s *SoftmaxCrossEntropy) Forward(logits *tensor.Tensor, labels []int) (float64, *tensor.Tensor) {
	logProbs := s.logProbs(logits, labels)
	batch, classes := logits.Shape()[0], logits.Shape()[1]

	probs := logProbs.Apply(math.Exp)
	loss := 0.0
	for i, label := range labels {
		loss -= logProbs.Data()[i*classes+label]
	}
	return loss / float64(batch), probs
}

// Backward returns dLoss/dLogits = (probs - onehot(labels)) / batch.
func (s *SoftmaxCrossEntropy) Backward(logits *tensor.Tensor, labels []int) *tensor.Tensor {
	logProbs := s.logProbs(logits, labels)
	batch, classes := logits.Shape()[0], logits.Shape()[1]

	grad := logProbs.Apply(math.Exp)
	data := grad.Data()
	for i, label := range labels {
		data[i*classes+label] -= 1
	}
	return grad.Scale(1 / float64(batch))
}

func (s *SoftmaxCrossEntropy) logProbs(logits *tensor.Tensor, labels []int) *tensor.Tensor {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("cross entropy: expected logits [batch, classes], got %v", shape))
	}
	batch, classes := shape[0], shape[1]
	if len(labels) != batch {
		panic(fmt.Sprintf("cross entropy: %d labels for batch of %d", len(labels), batch))
	}
	for _, label := range labels {
		if label < 0 || label >= classes {
			panic(fmt.Sprintf("cross entropy: label %d out of range [0, %d)", label, classes))
		}
	}

	out := tensor.New(shape.Clone())
	src := logits.Data()
	dst := out.Data()
	for r := 0; r < batch; r++ {
		row := src[r*classes : (r+1)*classes]

		rowMax := math.Inf(-1)
		for _, v := range row {
			if v > rowMax {
				rowMax = v
			}
		}
		z := 0.0
		for _, v := range row {
			z += math.Exp(v - rowMax)
		}
		logZ := math.Log(z + crossEntropyEps)
		for c, v := range row {
			dst[r*classes+c] = v - rowMax - logZ
		}
	}
	return out
}
