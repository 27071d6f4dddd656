package train

import (
	"gonum.org/v1/gonum/floats"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// Accuracy returns the fraction of rows of probs [batch, classes] whose
// argmax equals the label.
func Accuracy(probs *tensor.Tensor, labels []int) float64 {
	if len(labels) == 0 {
		return 0
	}
	return float64(countCorrect(probs, labels)) / float64(len(labels))
}

// countCorrect counts rows whose argmax matches the label.
func countCorrect(probs *tensor.Tensor, labels []int) int {
	classes := probs.Shape()[1]
	data := probs.Data()
	correct := 0
	for i, label := range labels {
		row := data[i*classes : (i+1)*classes]
		if floats.MaxIdx(row) == label {
			correct++
		}
	}
	return correct
}
