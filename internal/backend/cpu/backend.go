// Package cpu implements the reference CPU backend. Element-wise loops are
// split across goroutines with internal/parallel; MatMul goes through gonum BLAS.
package cpu

import (
	"github.com/born-ml/tensorcore/internal/backend"
	"github.com/born-ml/tensorcore/internal/device"
	"github.com/born-ml/tensorcore/internal/parallel"
)

// Compiled is always true: the CPU backend is part of every build.
const Compiled = true

// Verify that CPUBackend implements Backend.
var _ backend.Backend = (*CPUBackend)(nil)

// CPUBackend implements the backend contract on the host CPU.
// It holds no mutable state and is safe for concurrent use.
type CPUBackend struct {
	par parallel.Config
}

// New creates a new CPU backend.
func New(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{par: cfg}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Kind returns the compute device.
func (cpu *CPUBackend) Kind() device.Kind {
	return device.CPU
}

// Add performs element-wise addition.
func (cpu *CPUBackend) Add(a, b []float32) ([]float32, error) {
	if err := backend.CheckBinary("add", a, b); err != nil {
		return nil, err
	}
	return parallel.Zip(a, b, func(x, y float32) float32 { return x + y }, cpu.par), nil
}

// Sub performs element-wise subtraction.
func (cpu *CPUBackend) Sub(a, b []float32) ([]float32, error) {
	if err := backend.CheckBinary("sub", a, b); err != nil {
		return nil, err
	}
	return parallel.Zip(a, b, func(x, y float32) float32 { return x - y }, cpu.par), nil
}

// Multiply performs element-wise multiplication.
func (cpu *CPUBackend) Multiply(a, b []float32) ([]float32, error) {
	if err := backend.CheckBinary("mul", a, b); err != nil {
		return nil, err
	}
	return parallel.Zip(a, b, func(x, y float32) float32 { return x * y }, cpu.par), nil
}

// Div performs element-wise division. Division by zero follows IEEE 754.
func (cpu *CPUBackend) Div(a, b []float32) ([]float32, error) {
	if err := backend.CheckBinary("div", a, b); err != nil {
		return nil, err
	}
	return parallel.Zip(a, b, func(x, y float32) float32 { return x / y }, cpu.par), nil
}
