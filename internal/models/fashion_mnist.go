// Package models provides the two reference network configurations: a
// convolutional classifier for Fashion-MNIST and a bidirectional
// recurrent classifier for sentiment analysis.
package models

import (
	"math/rand"

	"github.com/chalk-ml/chalk/internal/backend/cpu"
	"github.com/chalk-ml/chalk/internal/nn"
)

// FashionMNISTConfig sizes the convolutional classifier. Zero values fall
// back to the reference configuration for 28x28 single-channel images
// with 10 classes.
type FashionMNISTConfig struct {
	ImageSize int
	Classes   int
	ConvStd   float64 // Gaussian std for conv kernels
	LinearStd float64 // Gaussian std for fully connected weights
	Dropout1  float64 // after the first conv block
	Dropout2  float64 // after the second conv block
	Dropout3  float64 // after the first fully connected layer
}

func (c FashionMNISTConfig) withDefaults() FashionMNISTConfig {
	if c.ImageSize == 0 {
		c.ImageSize = 28
	}
	if c.Classes == 0 {
		c.Classes = 10
	}
	if c.ConvStd == 0 {
		c.ConvStd = 0.001
	}
	if c.LinearStd == 0 {
		c.LinearStd = 0.01
	}
	if c.Dropout1 == 0 {
		c.Dropout1 = 0.25
	}
	if c.Dropout2 == 0 {
		c.Dropout2 = 0.25
	}
	if c.Dropout3 == 0 {
		c.Dropout3 = 0.37
	}
	return c
}

// convOut is the conv/pool output-size formula: (in + pad - k)/stride + 1.
func convOut(in, kernel, pad, stride int) int {
	return (in+pad-kernel)/stride + 1
}

// NewFashionMNIST builds the convolutional reference network:
//
//	[Conv3x3 pad2 + ReLU] x2 -> MaxPool2x2 s1 -> Dropout
//	[Conv3x3 pad2 + ReLU] x2 -> MaxPool2x2 s1 -> Dropout  (64 channels)
//	Flatten -> Linear(., 512) + ReLU + Dropout -> Linear(512, classes)
//
// The flatten width is derived from the size formulas rather than
// hardcoded, so the model holds together for any input size.
func NewFashionMNIST(cfg FashionMNISTConfig, rng *rand.Rand) *nn.Sequential {
	cfg = cfg.withDefaults()
	backend := cpu.New()
	convInit := nn.NewGaussian(cfg.ConvStd, rng)
	fcInit := nn.NewGaussian(cfg.LinearStd, rng)

	conv := func(in, out int) nn.Conv2DConfig {
		return nn.Conv2DConfig{
			InChannels: in, OutChannels: out,
			KernelH: 3, KernelW: 3, Stride: 1, Pad: 2,
		}
	}
	pool := nn.Pool2DConfig{Type: nn.MaxPool, PoolH: 2, PoolW: 2, Stride: 1, Pad: 0}

	// 28 -> 28 -> 28 -> 27 through the first block, 27 -> 27 -> 27 -> 26
	// through the second.
	size := cfg.ImageSize
	size = convOut(size, 3, 2, 1)
	size = convOut(size, 3, 2, 1)
	size = convOut(size, 2, 0, 1)
	size = convOut(size, 3, 2, 1)
	size = convOut(size, 3, 2, 1)
	size = convOut(size, 2, 0, 1)
	flatWidth := 64 * size * size

	return nn.NewSequential("fashion_mnist",
		nn.NewConv2D(conv(1, 32), "conv1", convInit, backend),
		nn.NewReLU("relu1"),
		nn.NewConv2D(conv(32, 32), "conv2", convInit, backend),
		nn.NewReLU("relu2"),
		nn.NewPool2D(pool, "pooling1", backend),
		nn.NewDropout(cfg.Dropout1, "dropout1"),

		nn.NewConv2D(conv(32, 64), "conv3", convInit, backend),
		nn.NewReLU("relu3"),
		nn.NewConv2D(conv(64, 64), "conv4", convInit, backend),
		nn.NewReLU("relu4"),
		nn.NewPool2D(pool, "pooling2", backend),
		nn.NewDropout(cfg.Dropout2, "dropout2"),

		nn.NewFlatten("flatten"),
		nn.NewLinear(flatWidth, 512, "fclayer1", fcInit),
		nn.NewReLU("relu5"),
		nn.NewDropout(cfg.Dropout3, "dropout3"),
		nn.NewLinear(512, cfg.Classes, "fclayer2", fcInit),
	)
}
