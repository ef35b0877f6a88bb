// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/tensorcore/internal/backend"
	"github.com/born-ml/tensorcore/internal/device"
	"github.com/born-ml/tensorcore/internal/engine"
	"github.com/born-ml/tensorcore/internal/tensor"
)

// Tensor is an immutable float32 array bound to a backend.
type Tensor = tensor.Tensor

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Option configures tensor construction.
type Option = tensor.Option

// Backend is the compute contract every device family implements.
type Backend = backend.Backend

// Engine resolves and caches backend handles.
type Engine = engine.Engine

// Device identifies a compute device family.
type Device = device.Kind

// Device constants.
const (
	CPU    Device = device.CPU
	CUDA   Device = device.CUDA
	WebGPU Device = device.WebGPU
	Metal  Device = device.Metal
)

// Errors reported by tensor construction and operations.
type (
	InvalidShapeError         = tensor.InvalidShapeError
	InvalidDataLengthError    = tensor.InvalidDataLengthError
	InvalidOperationError     = tensor.InvalidOperationError
	InvalidAxisError          = tensor.InvalidAxisError
	MatrixMultiplicationError = tensor.MatrixMultiplicationError
	InvalidBackendError       = tensor.InvalidBackendError
)

// New creates a 2-D tensor from rows of equal length.
func New(rows [][]float32, opts ...Option) (*Tensor, error) {
	return tensor.New(rows, opts...)
}

// FromVec creates a tensor of the given shape from a copy of data.
//
// Example:
//
//	x, err := tensor.FromVec([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
func FromVec(data []float32, shape Shape, opts ...Option) (*Tensor, error) {
	return tensor.FromVec(data, shape, opts...)
}

// WithBackend constructs the tensor on b, bypassing device selection.
func WithBackend(b Backend) Option {
	return tensor.WithBackend(b)
}

// OnDevice requests a device family. An unavailable family falls back to
// the next one in priority order.
func OnDevice(kind Device) Option {
	return tensor.OnDevice(kind)
}

// WithEngine resolves backends through e instead of the process engine.
func WithEngine(e *Engine) Option {
	return tensor.WithEngine(e)
}

// DefaultEngine returns the process engine used when no option overrides it.
func DefaultEngine() *Engine {
	return engine.Default()
}

// ParseDevice parses a device family name such as "cuda" or "webgpu".
func ParseDevice(name string) (Device, error) {
	return device.ParseKind(name)
}
