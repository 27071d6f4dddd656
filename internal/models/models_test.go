package models

import (
	"math/rand"
	"testing"

	"github.com/chalk-ml/chalk/internal/nn"
	"github.com/chalk-ml/chalk/internal/tensor"
)

func TestFashionMNIST_ForwardShape(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	// Shrink the images so the test stays fast; the layer stack is the
	// same as the full configuration.
	model := NewFashionMNIST(FashionMNISTConfig{ImageSize: 12}, rng)
	model.SetTraining(false)

	out := model.Forward(tensor.Randn(tensor.Shape{2, 1, 12, 12}, 1.0, rng))
	if !out.Shape().Equal(tensor.Shape{2, 10}) {
		t.Fatalf("output shape = %v, want [2, 10]", out.Shape())
	}
}

func TestFashionMNIST_BackwardShapesAndGrads(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	model := NewFashionMNIST(FashionMNISTConfig{ImageSize: 10}, rng)

	x := tensor.Randn(tensor.Shape{2, 1, 10, 10}, 1.0, rng)
	logits := model.Forward(x)
	loss := nn.NewSoftmaxCrossEntropy()
	_, _ = loss.Forward(logits, []int{3, 7})
	inGrad := model.Backward(loss.Backward(logits, []int{3, 7}))

	if !inGrad.Shape().Equal(x.Shape()) {
		t.Fatalf("input gradient shape = %v, want %v", inGrad.Shape(), x.Shape())
	}
	for _, p := range model.Parameters() {
		if !p.Grad.Shape().Equal(p.Data.Shape()) {
			t.Errorf("parameter %s: grad shape %v, data shape %v",
				p.Name(), p.Grad.Shape(), p.Data.Shape())
		}
	}
	// Every conv and linear weight should have picked up some gradient.
	for _, name := range []string{"conv1.weight", "conv4.weight", "fclayer1.weight", "fclayer2.bias"} {
		if !hasNonzeroGrad(model, name) {
			t.Errorf("parameter %s received no gradient", name)
		}
	}
}

func TestFashionMNIST_ParameterNames(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	model := NewFashionMNIST(FashionMNISTConfig{ImageSize: 10}, rng)

	// Four convs and two fully connected layers, each with weight+bias.
	params := model.Parameters()
	if len(params) != 12 {
		t.Fatalf("got %d parameters, want 12", len(params))
	}
	if params[0].Name() != "conv1.weight" {
		t.Errorf("first parameter = %s, want conv1.weight", params[0].Name())
	}
}

func TestSentiment_ForwardShape(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	model := NewSentiment(SentimentConfig{
		VocabSize: 50, EmbedDim: 16, Units: 8, Hidden: 6,
	}, rng)
	model.SetTraining(false)

	tokens := tensor.New(tensor.Shape{3, 7})
	for i := range tokens.Data() {
		tokens.Data()[i] = float64(rng.Intn(50))
	}
	out := model.Forward(tokens)
	if !out.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("output shape = %v, want [3, 2]", out.Shape())
	}
}

func TestSentiment_BackwardReachesEmbedding(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	model := NewSentiment(SentimentConfig{
		VocabSize: 20, EmbedDim: 8, Units: 4, Hidden: 5,
	}, rng)

	tokens := tensor.New(tensor.Shape{2, 5})
	for i := range tokens.Data() {
		tokens.Data()[i] = float64(rng.Intn(20))
	}
	logits := model.Forward(tokens)
	loss := nn.NewSoftmaxCrossEntropy()
	model.Backward(loss.Backward(logits, []int{0, 1}))

	for _, name := range []string{
		"embedding.weight",
		"birnn.forward_cell.kernel",
		"birnn.backward_cell.recurrent_kernel",
		"linear1.weight",
		"linear2.weight",
	} {
		if !hasNonzeroGrad(model, name) {
			t.Errorf("parameter %s received no gradient", name)
		}
	}
}

func TestSentiment_DefaultsMatchReference(t *testing.T) {
	cfg := SentimentConfig{VocabSize: 100}.withDefaults()
	if cfg.EmbedDim != 500 || cfg.Units != 70 || cfg.Hidden != 50 || cfg.Classes != 2 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func hasNonzeroGrad(model *nn.Sequential, name string) bool {
	for _, p := range model.Parameters() {
		if p.Name() == name {
			for _, v := range p.Grad.Data() {
				if v != 0 {
					return true
				}
			}
			return false
		}
	}
	return false
}
