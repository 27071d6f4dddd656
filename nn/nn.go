// Copyright 2026 The Chalk Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public API for Chalk's neural network layers.
//
// Every layer implements an explicit Forward/Backward pair; models are
// assembled with Sequential:
//
//	rng := rand.New(rand.NewSource(1))
//	model := nn.NewSequential("mlp",
//	    nn.NewLinear(784, 128, "fc1", nn.NewXavier(rng)),
//	    nn.NewReLU("relu1"),
//	    nn.NewLinear(128, 10, "fc2", nn.NewXavier(rng)),
//	)
package nn

import (
	"math/rand"

	"github.com/chalk-ml/chalk/internal/backend/cpu"
	"github.com/chalk-ml/chalk/internal/nn"
)

// Layer is the interface shared by all network layers.
type Layer = nn.Layer

// Parameter is a named trainable tensor with its accumulated gradient.
type Parameter = nn.Parameter

// Initializer fills a weight tensor before training.
type Initializer = nn.Initializer

// Gaussian initializes weights from N(0, Std²).
type Gaussian = nn.Gaussian

// Xavier initializes weights from the Glorot uniform distribution.
type Xavier = nn.Xavier

// ZeroInit leaves weights at zero.
type ZeroInit = nn.ZeroInit

// NewGaussian creates a Gaussian initializer drawing from rng.
func NewGaussian(std float64, rng *rand.Rand) Gaussian {
	return nn.NewGaussian(std, rng)
}

// NewXavier creates a Xavier initializer drawing from rng.
func NewXavier(rng *rand.Rand) Xavier {
	return nn.NewXavier(rng)
}

// Layers.

// Linear is a fully connected layer.
type Linear = nn.Linear

// Linear2D applies the same affine transform at every timestep.
type Linear2D = nn.Linear2D

// ReLU applies max(0, x) elementwise.
type ReLU = nn.ReLU

// Flatten reshapes [batch, ...] to [batch, prod(...)].
type Flatten = nn.Flatten

// Dropout randomly zeroes activations during training.
type Dropout = nn.Dropout

// Embedding maps token IDs to dense learned vectors.
type Embedding = nn.Embedding

// Conv2D is a 2-D convolution layer.
type Conv2D = nn.Conv2D

// Conv2DConfig describes a convolution layer.
type Conv2DConfig = nn.Conv2DConfig

// Pool2D is a 2-D pooling layer.
type Pool2D = nn.Pool2D

// Pool2DConfig describes a pooling layer.
type Pool2DConfig = nn.Pool2DConfig

// PoolType selects the pooling reduction.
type PoolType = nn.PoolType

// Pooling reductions.
const (
	MaxPool PoolType = nn.MaxPool
	AvgPool PoolType = nn.AvgPool
)

// Recurrent layers.

// Cell is a single recurrent step.
type Cell = nn.Cell

// RNNCell is the elementary tanh recurrence.
type RNNCell = nn.RNNCell

// GRUCell is a gated recurrent unit with packed kernels and no bias.
type GRUCell = nn.GRUCell

// RNN drives a recurrent cell across a sequence.
type RNN = nn.RNN

// BiRNN processes a sequence in both directions and concatenates the
// per-step states.
type BiRNN = nn.BiRNN

// TemporalPooling averages a sequence over its time axis.
type TemporalPooling = nn.TemporalPooling

// Sequential chains layers in order.
type Sequential = nn.Sequential

// SoftmaxCrossEntropy is a softmax followed by mean negative
// log-likelihood.
type SoftmaxCrossEntropy = nn.SoftmaxCrossEntropy

// NewLinear creates a fully connected layer.
func NewLinear(inFeatures, outFeatures int, name string, init Initializer) *Linear {
	return nn.NewLinear(inFeatures, outFeatures, name, init)
}

// NewLinear2D creates a temporal affine layer.
func NewLinear2D(inFeatures, outFeatures int, name string, init Initializer) *Linear2D {
	return nn.NewLinear2D(inFeatures, outFeatures, name, init)
}

// NewReLU creates a ReLU activation layer.
func NewReLU(name string) *ReLU {
	return nn.NewReLU(name)
}

// NewFlatten creates a flatten layer.
func NewFlatten(name string) *Flatten {
	return nn.NewFlatten(name)
}

// NewDropout creates a dropout layer with the given drop rate in [0, 1).
func NewDropout(rate float64, name string) *Dropout {
	return nn.NewDropout(rate, name)
}

// NewEmbedding creates an embedding table filled by init.
func NewEmbedding(numEmbeddings, embedDim int, name string, init Initializer) *Embedding {
	return nn.NewEmbedding(numEmbeddings, embedDim, name, init)
}

// NewConv2D creates a convolution layer on the CPU backend.
func NewConv2D(cfg Conv2DConfig, name string, init Initializer, backend *cpu.Backend) *Conv2D {
	return nn.NewConv2D(cfg, name, init, backend)
}

// NewPool2D creates a pooling layer on the CPU backend.
func NewPool2D(cfg Pool2DConfig, name string, backend *cpu.Backend) *Pool2D {
	return nn.NewPool2D(cfg, name, backend)
}

// NewRNNCell creates a tanh recurrent cell.
func NewRNNCell(inFeatures, units int, name string, init Initializer) *RNNCell {
	return nn.NewRNNCell(inFeatures, units, name, init)
}

// NewGRUCell creates a GRU cell.
func NewGRUCell(inFeatures, units int, name string, init Initializer) *GRUCell {
	return nn.NewGRUCell(inFeatures, units, name, init)
}

// NewRNN wraps a cell as a sequence layer.
func NewRNN(cell Cell, name string) *RNN {
	return nn.NewRNN(cell, name)
}

// NewBiRNN creates a bidirectional layer from two cells.
func NewBiRNN(forward, backward Cell, name string) *BiRNN {
	return nn.NewBiRNN(forward, backward, name)
}

// NewTemporalPooling creates a mean-over-time layer.
func NewTemporalPooling(name string) *TemporalPooling {
	return nn.NewTemporalPooling(name)
}

// NewSequential creates a model from an ordered list of layers.
func NewSequential(name string, layers ...Layer) *Sequential {
	return nn.NewSequential(name, layers...)
}

// NewSoftmaxCrossEntropy creates the classification loss.
func NewSoftmaxCrossEntropy() *SoftmaxCrossEntropy {
	return nn.NewSoftmaxCrossEntropy()
}
