package train

import (
	"math/rand"
	"sort"

	"github.com/rs/zerolog"

	"github.com/chalk-ml/chalk/internal/optim"
	"github.com/chalk-ml/chalk/internal/tensor"
)

// Params is one hyperparameter combination under trial.
type Params struct {
	LR        float64
	Decay     float64
	Rho       float64
	BatchSize int
	Epochs    int
}

// SearchSpace enumerates candidate values per hyperparameter. Empty
// slices fall back to a single default.
type SearchSpace struct {
	LRs        []float64
	Decays     []float64
	Rhos       []float64
	BatchSizes []int
	Epochs     int
}

func (s SearchSpace) normalized() SearchSpace {
	if len(s.LRs) == 0 {
		s.LRs = []float64{0.001}
	}
	if len(s.Decays) == 0 {
		s.Decays = []float64{0}
	}
	if len(s.Rhos) == 0 {
		s.Rhos = []float64{0.9}
	}
	if len(s.BatchSizes) == 0 {
		s.BatchSizes = []int{32}
	}
	if s.Epochs <= 0 {
		s.Epochs = 1
	}
	return s
}

// Grid expands the full cartesian product of the space.
func (s SearchSpace) Grid() []Params {
	s = s.normalized()
	var out []Params
	for _, lr := range s.LRs {
		for _, decay := range s.Decays {
			for _, rho := range s.Rhos {
				for _, bs := range s.BatchSizes {
					out = append(out, Params{
						LR: lr, Decay: decay, Rho: rho,
						BatchSize: bs, Epochs: s.Epochs,
					})
				}
			}
		}
	}
	return out
}

// Sample draws n combinations uniformly from the space.
func (s SearchSpace) Sample(n int, rng *rand.Rand) []Params {
	s = s.normalized()
	out := make([]Params, n)
	for i := range out {
		out[i] = Params{
			LR:        s.LRs[rng.Intn(len(s.LRs))],
			Decay:     s.Decays[rng.Intn(len(s.Decays))],
			Rho:       s.Rhos[rng.Intn(len(s.Rhos))],
			BatchSize: s.BatchSizes[rng.Intn(len(s.BatchSizes))],
			Epochs:    s.Epochs,
		}
	}
	return out
}

// Trial is the outcome of training one hyperparameter combination.
type Trial struct {
	Params  Params
	ValAcc  float64
	ValLoss float64
	History *History
}

// Tuner trains a fresh model per hyperparameter combination and ranks the
// results by validation accuracy.
type Tuner struct {
	// NewModel builds an independently initialized model per trial.
	NewModel func() Model
	Seed     int64
	Logger   zerolog.Logger
}

// Run trains every combination and returns the trials sorted best first.
func (t *Tuner) Run(
	combos []Params,
	trainInputs *tensor.Tensor, trainLabels []int,
	valInputs *tensor.Tensor, valLabels []int,
) []Trial {
	trials := make([]Trial, 0, len(combos))
	for i, params := range combos {
		model := t.NewModel()
		opt := optim.NewRMSprop(model.Parameters(), optim.RMSpropConfig{
			LR:    params.LR,
			Rho:   params.Rho,
			Decay: params.Decay,
		})
		trainer := New(model, opt, Config{
			Epochs:    params.Epochs,
			BatchSize: params.BatchSize,
			Seed:      t.Seed + int64(i),
		}, t.Logger)

		history := trainer.Fit(trainInputs, trainLabels, valInputs, valLabels)
		trial := Trial{Params: params, History: history}
		if n := len(history.ValAcc); n > 0 {
			trial.ValAcc = history.ValAcc[n-1]
			trial.ValLoss = history.ValLoss[n-1]
		}
		trials = append(trials, trial)

		t.Logger.Info().
			Int("trial", i+1).
			Int("total", len(combos)).
			Float64("lr", params.LR).
			Float64("decay", params.Decay).
			Int("batch_size", params.BatchSize).
			Float64("val_acc", trial.ValAcc).
			Msg("trial complete")
	}

	sort.SliceStable(trials, func(i, j int) bool {
		return trials[i].ValAcc > trials[j].ValAcc
	})
	return trials
}
