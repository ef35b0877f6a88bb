// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend.
//
// The CPU backend is always compiled in and is the fallback for every
// other device family. Element-wise operations are split across goroutines
// for large inputs and matrix multiplication uses gonum's BLAS.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/tensorcore/backend/cpu"
//	    "github.com/born-ml/tensorcore/tensor"
//	)
//
//	func main() {
//	    x, _ := tensor.FromVec([]float32{1, 2, 3}, tensor.Shape{3}, tensor.WithBackend(cpu.New()))
//	}
//
// # Thread Safety
//
// The CPU backend holds no mutable state and is safe for concurrent use.
package cpu

import (
	internalcpu "github.com/born-ml/tensorcore/internal/backend/cpu"
	"github.com/born-ml/tensorcore/internal/parallel"
	"github.com/born-ml/tensorcore/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a CPU backend that parallelizes across all CPUs.
func New() *Backend {
	return internalcpu.New(parallel.DefaultConfig())
}

// NewSequential creates a CPU backend that never spawns goroutines.
func NewSequential() *Backend {
	return internalcpu.New(parallel.Sequential())
}
