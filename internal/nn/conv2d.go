package nn

import (
	"fmt"

	"github.com/chalk-ml/chalk/internal/backend/cpu"
	"github.com/chalk-ml/chalk/internal/tensor"
)

// Conv2DConfig describes a convolution layer.
//
// Pad is the total number of zero rows (or columns) added per spatial
// dimension, split evenly between the two sides; only even values are
// accepted. Output size is (in + Pad - kernel)/Stride + 1.
type Conv2DConfig struct {
	InChannels  int
	OutChannels int
	KernelH     int
	KernelW     int
	Stride      int
	Pad         int
}

// Conv2D is a 2-D convolution layer.
//
// Input [batch, InChannels, H, W] -> output [batch, OutChannels, Hout, Wout].
// Weight shape [OutChannels, InChannels, KernelH, KernelW], bias [OutChannels].
type Conv2D struct {
	name    string
	cfg     Conv2DConfig
	weight  *Parameter
	bias    *Parameter
	backend *cpu.Backend
	input   *tensor.Tensor
}

// NewConv2D creates a convolution layer. The weight is filled by init with
// fanIn = InChannels*KernelH*KernelW; the bias starts at zero.
func NewConv2D(cfg Conv2DConfig, name string, init Initializer, backend *cpu.Backend) *Conv2D {
	if cfg.Stride <= 0 {
		panic(fmt.Sprintf("conv2d %s: invalid stride %d", name, cfg.Stride))
	}
	if cfg.Pad < 0 || cfg.Pad%2 != 0 {
		panic(fmt.Sprintf("conv2d %s: pad must be even and non-negative, got %d", name, cfg.Pad))
	}

	weight := tensor.New(tensor.Shape{cfg.OutChannels, cfg.InChannels, cfg.KernelH, cfg.KernelW})
	fanIn := cfg.InChannels * cfg.KernelH * cfg.KernelW
	fanOut := cfg.OutChannels * cfg.KernelH * cfg.KernelW
	init.Init(weight, fanIn, fanOut)

	return &Conv2D{
		name:    name,
		cfg:     cfg,
		weight:  NewParameter(name+".weight", weight),
		bias:    NewParameter(name+".bias", tensor.New(tensor.Shape{cfg.OutChannels})),
		backend: backend,
	}
}

func (c *Conv2D) Name() string { return c.name }

// Forward runs the im2col convolution kernel.
func (c *Conv2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	if len(input.Shape()) != 4 || input.Shape()[1] != c.cfg.InChannels {
		panic(fmt.Sprintf("conv2d %s: expected input [N, %d, H, W], got %v",
			c.name, c.cfg.InChannels, input.Shape()))
	}
	c.input = input
	return c.backend.Conv2D(input, c.weight.Data, c.bias.Data, c.cfg.Stride, c.cfg.Pad)
}

// Backward accumulates weight and bias gradients and returns the input
// gradient.
func (c *Conv2D) Backward(outGrad *tensor.Tensor) *tensor.Tensor {
	inGrad, wGrad, bGrad := c.backend.Conv2DBackward(outGrad, c.input, c.weight.Data, c.cfg.Stride, c.cfg.Pad)
	c.weight.Grad.AddInPlace(wGrad)
	c.bias.Grad.AddInPlace(bGrad)
	return inGrad
}

func (c *Conv2D) Parameters() []*Parameter {
	return []*Parameter{c.weight, c.bias}
}
