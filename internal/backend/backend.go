// Package backend defines the capability contract every compute backend
// implements. Backends work on flat row-major float32 buffers; shapes are
// validated by the tensor layer before any call reaches a backend.
package backend

import "github.com/born-ml/tensorcore/internal/device"

// Backend is a compute backend.
//
// Implementations never modify their inputs and always return freshly
// allocated, fully materialized buffers: GPU backends wait for their queue
// before returning. All methods are safe for concurrent use.
//
// A non-nil error from an operation is a device fault (lost device, failed
// buffer mapping). Shape problems never reach a backend.
type Backend interface {
	// Name returns a human-readable backend identifier, e.g. "CPU" or the adapter name.
	Name() string

	// Kind returns the device family this backend runs on.
	Kind() device.Kind

	// MatMul multiplies a [m,k] matrix by a [k,n] matrix into a [m,n] result.
	MatMul(a, b []float32, m, k, n int) ([]float32, error)

	// Element-wise binary operations on equal-length buffers.
	Add(a, b []float32) ([]float32, error)
	Sub(a, b []float32) ([]float32, error)
	Multiply(a, b []float32) ([]float32, error)
	Div(a, b []float32) ([]float32, error)

	// Reductions.
	Sum(a []float32) (float32, error)
	Mean(a []float32) (float32, error) // ErrEmptyInput when a is empty.

	// Element-wise unary operations.
	Exp(a []float32) ([]float32, error)
	Sqrt(a []float32) ([]float32, error)
	Pow(a []float32, power float32) ([]float32, error)
}

// Releaser is implemented by backends holding device resources.
type Releaser interface {
	Release()
}
