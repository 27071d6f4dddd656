// Copyright 2026 The Chalk Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the public API for Chalk's CPU compute backend:
// im2col convolution and pooling kernels with worker-pool parallelism.
package cpu

import (
	internalcpu "github.com/chalk-ml/chalk/internal/backend/cpu"
)

// Backend is the CPU implementation of the convolution and pooling
// kernels.
type Backend = internalcpu.Backend

// New creates a CPU backend with the default parallelism settings.
//
// Example:
//
//	backend := cpu.New()
//	out := backend.Conv2D(input, weight, bias, 1, 2)
func New() *Backend {
	return internalcpu.New()
}
