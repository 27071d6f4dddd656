// Package train runs the training loop: epochs over shuffled minibatches
// with per-epoch validation, plus grid and random hyperparameter search.
package train

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/chalk-ml/chalk/internal/checkpoint"
	"github.com/chalk-ml/chalk/internal/dataset"
	"github.com/chalk-ml/chalk/internal/nn"
	"github.com/chalk-ml/chalk/internal/optim"
	"github.com/chalk-ml/chalk/internal/tensor"
)

// Model is what the trainer drives: a network with an explicit backward
// pass and a training/inference switch.
type Model interface {
	Forward(input *tensor.Tensor) *tensor.Tensor
	Backward(outGrad *tensor.Tensor) *tensor.Tensor
	Parameters() []*nn.Parameter
	SetTraining(training bool)
}

// Config holds the training-loop settings.
type Config struct {
	Epochs    int
	BatchSize int
	Seed      int64 // shuffle seed; 0 means time-based

	// CheckpointPath, when set, saves the parameters every time the
	// validation accuracy reaches a new best.
	CheckpointPath string
	ModelName      string // recorded in checkpoint metadata
}

// Trainer fits a model with softmax cross-entropy.
type Trainer struct {
	model  Model
	opt    optim.Optimizer
	loss   *nn.SoftmaxCrossEntropy
	config Config
	logger zerolog.Logger
}

// New creates a trainer.
func New(model Model, opt optim.Optimizer, config Config, logger zerolog.Logger) *Trainer {
	if config.Epochs <= 0 {
		config.Epochs = 1
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 32
	}
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}
	return &Trainer{
		model:  model,
		opt:    opt,
		loss:   nn.NewSoftmaxCrossEntropy(),
		config: config,
		logger: logger,
	}
}

// Fit trains for the configured number of epochs and returns the loss and
// accuracy history. val may have zero length, in which case validation is
// skipped.
func (t *Trainer) Fit(trainInputs *tensor.Tensor, trainLabels []int, valInputs *tensor.Tensor, valLabels []int) *History {
	//nolint:gosec // math/rand is appropriate for batch shuffling
	rng := rand.New(rand.NewSource(t.config.Seed))
	batcher := dataset.NewBatcher(trainInputs, trainLabels, t.config.BatchSize, rng)
	history := &History{}
	bestAcc := 0.0

	for epoch := 1; epoch <= t.config.Epochs; epoch++ {
		start := time.Now()
		trainLoss, trainAcc := t.runEpoch(batcher)
		history.TrainLoss = append(history.TrainLoss, trainLoss)
		history.TrainAcc = append(history.TrainAcc, trainAcc)

		event := t.logger.Info().
			Int("epoch", epoch).
			Float64("train_loss", trainLoss).
			Float64("train_acc", trainAcc).
			Dur("elapsed", time.Since(start))

		if len(valLabels) > 0 {
			valLoss, valAcc := t.Evaluate(valInputs, valLabels)
			history.ValLoss = append(history.ValLoss, valLoss)
			history.ValAcc = append(history.ValAcc, valAcc)
			event = event.
				Float64("val_loss", valLoss).
				Float64("val_acc", valAcc)

			if t.config.CheckpointPath != "" && valAcc > bestAcc {
				bestAcc = valAcc
				if err := checkpoint.Save(t.config.CheckpointPath, t.model.Parameters(), checkpoint.Meta{
					Model: t.config.ModelName,
					Epoch: epoch,
					Loss:  valLoss,
				}); err != nil {
					t.logger.Error().Err(err).Msg("checkpoint save failed")
				}
			}
		}
		event.Msg("epoch complete")
	}
	return history
}

// runEpoch runs one pass over the shuffled training set and returns the
// mean loss and accuracy across batches, weighted by batch size.
func (t *Trainer) runEpoch(batcher *dataset.Batcher) (float64, float64) {
	t.model.SetTraining(true)
	batcher.Reset()

	lossSum, correct, seen := 0.0, 0, 0
	for {
		batch, ok := batcher.Next()
		if !ok {
			break
		}
		logits := t.model.Forward(batch.Inputs)
		loss, probs := t.loss.Forward(logits, batch.Labels)
		t.model.Backward(t.loss.Backward(logits, batch.Labels))
		t.opt.Step()
		t.opt.ZeroGrad()

		n := len(batch.Labels)
		lossSum += loss * float64(n)
		correct += countCorrect(probs, batch.Labels)
		seen += n
	}
	return lossSum / float64(seen), float64(correct) / float64(seen)
}

// Evaluate computes the mean loss and accuracy over a dataset without
// updating the model.
func (t *Trainer) Evaluate(inputs *tensor.Tensor, labels []int) (float64, float64) {
	t.model.SetTraining(false)
	defer t.model.SetTraining(true)

	batcher := dataset.NewBatcher(inputs, labels, t.config.BatchSize, nil)
	lossSum, correct, seen := 0.0, 0, 0
	for {
		batch, ok := batcher.Next()
		if !ok {
			break
		}
		logits := t.model.Forward(batch.Inputs)
		loss, probs := t.loss.Forward(logits, batch.Labels)

		n := len(batch.Labels)
		lossSum += loss * float64(n)
		correct += countCorrect(probs, batch.Labels)
		seen += n
	}
	return lossSum / float64(seen), float64(correct) / float64(seen)
}
