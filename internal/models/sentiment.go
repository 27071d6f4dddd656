package models

import (
	"math/rand"

	"github.com/chalk-ml/chalk/internal/nn"
)

// SentimentConfig sizes the recurrent classifier. Zero values fall back
// to the reference configuration.
type SentimentConfig struct {
	VocabSize int     // required
	EmbedDim  int     // default 500
	Units     int     // recurrent units per direction, default 70
	Hidden    int     // post-recurrent projection width, default 50
	Classes   int     // default 2
	Std       float64 // Gaussian std, default 0.01
}

func (c SentimentConfig) withDefaults() SentimentConfig {
	if c.EmbedDim == 0 {
		c.EmbedDim = 500
	}
	if c.Units == 0 {
		c.Units = 70
	}
	if c.Hidden == 0 {
		c.Hidden = 50
	}
	if c.Classes == 0 {
		c.Classes = 2
	}
	if c.Std == 0 {
		c.Std = 0.01
	}
	return c
}

// NewSentiment builds the recurrent reference network:
//
//	Embedding(vocab, 500) -> BiRNN(500, 70) -> Linear2D(140, 50)
//	-> TemporalPooling -> Linear(50, classes)
//
// The input is [batch, time] token IDs; mean-over-time pooling collapses
// the sequence before the final classifier.
func NewSentiment(cfg SentimentConfig, rng *rand.Rand) *nn.Sequential {
	cfg = cfg.withDefaults()
	init := nn.NewGaussian(cfg.Std, rng)

	return nn.NewSequential("sentiment",
		nn.NewEmbedding(cfg.VocabSize, cfg.EmbedDim, "embedding", init),
		nn.NewBiRNN(
			nn.NewGRUCell(cfg.EmbedDim, cfg.Units, "birnn.forward_cell", init),
			nn.NewGRUCell(cfg.EmbedDim, cfg.Units, "birnn.backward_cell", init),
			"birnn",
		),
		nn.NewLinear2D(2*cfg.Units, cfg.Hidden, "linear1", init),
		nn.NewTemporalPooling("temporal_pooling"),
		nn.NewLinear(cfg.Hidden, cfg.Classes, "linear2", init),
	)
}
