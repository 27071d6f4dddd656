package nn

import (
	"fmt"

	"github.com/chalk-ml/chalk/internal/backend/cpu"
	"github.com/chalk-ml/chalk/internal/tensor"
)

// PoolType selects the pooling reduction.
type PoolType string

const (
	// MaxPool takes the window maximum.
	MaxPool PoolType = "max"
	// AvgPool takes the window mean.
	AvgPool PoolType = "avg"
)

// Pool2DConfig describes a pooling layer. Pad follows the Conv2DConfig
// convention: total zeros per spatial dimension, even, split evenly.
type Pool2DConfig struct {
	Type   PoolType
	PoolH  int
	PoolW  int
	Stride int
	Pad    int
}

// Pool2D is a 2-D pooling layer without trainable parameters.
//
// Input [batch, channels, H, W] -> output [batch, channels, Hout, Wout].
type Pool2D struct {
	name    string
	cfg     Pool2DConfig
	backend *cpu.Backend
	input   *tensor.Tensor
}

// NewPool2D creates a pooling layer. Panics if cfg.Type is neither
// MaxPool nor AvgPool.
func NewPool2D(cfg Pool2DConfig, name string, backend *cpu.Backend) *Pool2D {
	if cfg.Type != MaxPool && cfg.Type != AvgPool {
		panic(fmt.Sprintf("pool2d %s: unsupported pool type %q", name, cfg.Type))
	}
	if cfg.Stride <= 0 {
		panic(fmt.Sprintf("pool2d %s: invalid stride %d", name, cfg.Stride))
	}
	if cfg.Pad < 0 || cfg.Pad%2 != 0 {
		panic(fmt.Sprintf("pool2d %s: pad must be even and non-negative, got %d", name, cfg.Pad))
	}
	return &Pool2D{name: name, cfg: cfg, backend: backend}
}

func (p *Pool2D) Name() string { return p.name }

func (p *Pool2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	p.input = input
	if p.cfg.Type == MaxPool {
		return p.backend.MaxPool2D(input, p.cfg.PoolH, p.cfg.PoolW, p.cfg.Stride, p.cfg.Pad)
	}
	return p.backend.AvgPool2D(input, p.cfg.PoolH, p.cfg.PoolW, p.cfg.Stride, p.cfg.Pad)
}

func (p *Pool2D) Backward(outGrad *tensor.Tensor) *tensor.Tensor {
	if p.cfg.Type == MaxPool {
		return p.backend.MaxPool2DBackward(outGrad, p.input, p.cfg.PoolH, p.cfg.PoolW, p.cfg.Stride, p.cfg.Pad)
	}
	return p.backend.AvgPool2DBackward(outGrad, p.input, p.cfg.PoolH, p.cfg.PoolW, p.cfg.Stride, p.cfg.Pad)
}

func (p *Pool2D) Parameters() []*Parameter { return nil }
