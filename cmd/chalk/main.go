// Package main provides the Chalk CLI: training and hyperparameter
// search for the reference networks.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/chalk-ml/chalk/internal/checkpoint"
	"github.com/chalk-ml/chalk/internal/dataset"
	"github.com/chalk-ml/chalk/internal/models"
	"github.com/chalk-ml/chalk/internal/optim"
	"github.com/chalk-ml/chalk/internal/train"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Printf("Chalk %s\n", version)
	case "train-mnist":
		err = trainMNIST(os.Args[2:], logger)
	case "train-sentiment":
		err = trainSentiment(os.Args[2:], logger)
	case "tune":
		err = tune(os.Args[2:], logger)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("command failed")
	}
}

func usage() {
	fmt.Println("Chalk - explicit-gradient neural networks in Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  train-mnist      Train the Fashion-MNIST convolutional network")
	fmt.Println("  train-sentiment  Train the bidirectional sentiment network")
	fmt.Println("  tune             Grid/random hyperparameter search")
	fmt.Println("  version          Show version")
}

func trainMNIST(args []string, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("train-mnist", flag.ExitOnError)
	images := fs.String("images", "train-images-idx3-ubyte", "IDX image file")
	labels := fs.String("labels", "train-labels-idx1-ubyte", "IDX label file")
	valFrac := fs.Float64("val", 0.1, "validation fraction")
	epochs := fs.Int("epochs", 5, "training epochs")
	batchSize := fs.Int("batch", 32, "batch size")
	lr := fs.Float64("lr", 0.001, "learning rate")
	decay := fs.Float64("decay", 0, "hyperbolic learning-rate decay")
	seed := fs.Int64("seed", 5242, "random seed")
	out := fs.String("out", "fashion_mnist.chk", "checkpoint output path")
	plotPath := fs.String("plot", "", "optional PNG loss-curve path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	set, err := dataset.LoadImageSet(*images, *labels)
	if err != nil {
		return err
	}
	trainSet, valSet, err := set.Split(set.Len() - int(float64(set.Len())**valFrac))
	if err != nil {
		return err
	}
	logger.Info().Int("train", trainSet.Len()).Int("val", valSet.Len()).Msg("dataset loaded")

	//nolint:gosec // math/rand is appropriate for weight initialization
	rng := rand.New(rand.NewSource(*seed))
	model := models.NewFashionMNIST(models.FashionMNISTConfig{}, rng)
	opt := optim.NewRMSprop(model.Parameters(), optim.RMSpropConfig{LR: *lr, Decay: *decay})
	trainer := train.New(model, opt, train.Config{
		Epochs: *epochs, BatchSize: *batchSize, Seed: *seed,
		CheckpointPath: *out, ModelName: "fashion_mnist",
	}, logger)

	history := trainer.Fit(trainSet.Images, trainSet.Labels, valSet.Images, valSet.Labels)
	fmt.Println(history.AsciiLossCurve(10))
	if *plotPath != "" {
		if err := history.SaveLossPlot(*plotPath); err != nil {
			return err
		}
	}

	epoch, acc := history.Best()
	logger.Info().Int("best_epoch", epoch).Float64("best_val_acc", acc).
		Str("checkpoint", *out).Msg("training finished")
	return nil
}

func trainSentiment(args []string, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("train-sentiment", flag.ExitOnError)
	data := fs.String("data", "train.tsv", "label<TAB>text training file")
	valData := fs.String("val-data", "", "optional validation file")
	vocabSize := fs.Int("vocab", 5000, "vocabulary size")
	maxLen := fs.Int("max-len", 60, "sequence length after padding")
	epochs := fs.Int("epochs", 5, "training epochs")
	batchSize := fs.Int("batch", 32, "batch size")
	lr := fs.Float64("lr", 0.001, "learning rate")
	seed := fs.Int64("seed", 5242, "random seed")
	out := fs.String("out", "sentiment.chk", "checkpoint output path")
	bpe := fs.String("bpe", "", "use a tiktoken BPE encoding (e.g. cl100k_base) instead of the word tokenizer")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tok, vocabLen, err := buildTokenizer(*data, *bpe, *vocabSize)
	if err != nil {
		return err
	}
	trainSet, err := dataset.LoadSentiment(*data, tok, *maxLen)
	if err != nil {
		return err
	}
	valSet := &dataset.TextSet{}
	if *valData != "" {
		valSet, err = dataset.LoadSentiment(*valData, tok, *maxLen)
		if err != nil {
			return err
		}
	}
	logger.Info().Int("train", trainSet.Len()).Int("val", valSet.Len()).
		Int("vocab", vocabLen).Msg("dataset loaded")

	//nolint:gosec // math/rand is appropriate for weight initialization
	rng := rand.New(rand.NewSource(*seed))
	model := models.NewSentiment(models.SentimentConfig{VocabSize: vocabLen}, rng)
	opt := optim.NewRMSprop(model.Parameters(), optim.RMSpropConfig{LR: *lr})
	trainer := train.New(model, opt, train.Config{
		Epochs: *epochs, BatchSize: *batchSize, Seed: *seed,
		CheckpointPath: *out, ModelName: "sentiment",
	}, logger)

	history := trainer.Fit(trainSet.Tokens, trainSet.Labels, valSet.Tokens, valSet.Labels)
	fmt.Println(history.AsciiLossCurve(10))

	epoch, acc := history.Best()
	logger.Info().Int("best_epoch", epoch).Float64("best_acc", acc).Msg("training finished")
	if valSet.Len() == 0 {
		// Without validation the trainer never checkpoints; keep the
		// final weights.
		return checkpoint.Save(*out, model.Parameters(), checkpoint.Meta{
			Model: "sentiment",
			Epoch: *epochs,
			Loss:  history.TrainLoss[len(history.TrainLoss)-1],
		})
	}
	return nil
}

// buildTokenizer picks the word tokenizer (vocabulary built from the
// training corpus) or a tiktoken BPE encoding.
func buildTokenizer(dataPath, bpe string, vocabSize int) (dataset.Tokenizer, int, error) {
	if bpe != "" {
		tok, err := dataset.NewBPETokenizer(bpe, vocabSize)
		if err != nil {
			return nil, 0, err
		}
		return tok, tok.VocabSize(), nil
	}

	raw, err := os.ReadFile(dataPath)
	if err != nil {
		return nil, 0, err
	}
	vocab := dataset.BuildVocabulary([]string{string(raw)}, vocabSize)
	tok := dataset.NewWordTokenizer(vocab)
	return tok, tok.VocabSize(), nil
}

func tune(args []string, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("tune", flag.ExitOnError)
	images := fs.String("images", "train-images-idx3-ubyte", "IDX image file")
	labels := fs.String("labels", "train-labels-idx1-ubyte", "IDX label file")
	subset := fs.Int("subset", 2000, "training examples per trial")
	valSize := fs.Int("val-size", 500, "validation examples")
	epochs := fs.Int("epochs", 2, "epochs per trial")
	random := fs.Int("random", 0, "random-search trials (0 = full grid)")
	seed := fs.Int64("seed", 5242, "random seed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	set, err := dataset.LoadImageSet(*images, *labels)
	if err != nil {
		return err
	}
	trainSet, err := set.Subset(0, *subset)
	if err != nil {
		return err
	}
	valSet, err := set.Subset(*subset, *subset+*valSize)
	if err != nil {
		return err
	}

	space := train.SearchSpace{
		LRs:        []float64{0.01, 0.001, 0.0001},
		Decays:     []float64{0, 0.01},
		BatchSizes: []int{32, 64},
		Epochs:     *epochs,
	}
	combos := space.Grid()
	//nolint:gosec // math/rand is appropriate for search sampling
	rng := rand.New(rand.NewSource(*seed))
	if *random > 0 {
		combos = space.Sample(*random, rng)
	}
	logger.Info().Int("trials", len(combos)).Msg("starting search")

	tuner := &train.Tuner{
		NewModel: func() train.Model {
			return models.NewFashionMNIST(models.FashionMNISTConfig{}, rng)
		},
		Seed:   *seed,
		Logger: logger,
	}
	trials := tuner.Run(combos, trainSet.Images, trainSet.Labels, valSet.Images, valSet.Labels)

	fmt.Println("rank  lr        decay   batch  val_acc")
	for i, trial := range trials {
		fmt.Printf("%4d  %-8g  %-6g  %-5d  %.4f\n",
			i+1, trial.Params.LR, trial.Params.Decay, trial.Params.BatchSize, trial.ValAcc)
	}
	return nil
}
