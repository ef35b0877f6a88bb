//go:build cuda && cgo

// Package cuda implements the native-kernel GPU backend on top of the
// prebuilt libtensor_ops.a (see scripts/build-kernels.sh) and the CUDA runtime.
package cuda

/*
#cgo CFLAGS: -I${SRCDIR}/../../../kernels/cuda
#cgo LDFLAGS: -L${SRCDIR}/../../../build/cuda -ltensor_ops -lcudart -lstdc++
#include "tensor_ops.h"
*/
import "C"

import (
	"fmt"
	"math"
	"sync"
	"unsafe"

	"github.com/born-ml/tensorcore/internal/backend"
	"github.com/born-ml/tensorcore/internal/device"
)

// Compiled reports whether the CUDA backend is part of this build.
const Compiled = true

// Verify that Backend implements Backend.
var _ backend.Backend = (*Backend)(nil)

// Backend dispatches to the CUDA kernel launchers. Launches are serialized:
// the launchers use the default stream.
type Backend struct {
	mu      sync.Mutex
	devices int
}

// New creates a CUDA backend. Fails with backend.ErrUnavailable when no
// device is present or the runtime cannot be initialized.
func New() (*Backend, error) {
	n, err := deviceCount()
	if err != nil {
		return nil, fmt.Errorf("cuda: %w: %v", backend.ErrUnavailable, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("cuda: %w: no CUDA device found", backend.ErrUnavailable)
	}
	return &Backend{devices: n}, nil
}

// Available reports whether at least one CUDA device is present.
func Available() bool {
	n, err := deviceCount()
	return err == nil && n > 0
}

func deviceCount() (int, error) {
	var n C.int
	if code := C.tc_device_count(&n); code != 0 {
		return 0, codeError(code)
	}
	return int(n), nil
}

func codeError(code C.int) error {
	return fmt.Errorf("cuda error %d: %s", int(code), C.GoString(C.tc_error_string(code)))
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return fmt.Sprintf("CUDA (%d device(s))", b.devices)
}

// Kind returns the compute device.
func (b *Backend) Kind() device.Kind {
	return device.CUDA
}

func ptr(s []float32) *C.float {
	if len(s) == 0 {
		return nil
	}
	return (*C.float)(unsafe.Pointer(&s[0]))
}

func checkSize(op string, n int) error {
	if n > math.MaxInt32 {
		return fmt.Errorf("cuda: %s: %d elements exceed the kernel index range", op, n)
	}
	return nil
}

func (b *Backend) binary(op string, code C.int, x, y []float32) ([]float32, error) {
	if err := backend.CheckBinary(op, x, y); err != nil {
		return nil, err
	}
	if err := checkSize(op, len(x)); err != nil {
		return nil, err
	}
	out := make([]float32, len(x))
	if len(x) == 0 {
		return out, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if rc := C.tc_binary(code, ptr(x), ptr(y), ptr(out), C.int(len(x))); rc != 0 {
		return nil, fmt.Errorf("cuda: %s: %w", op, codeError(rc))
	}
	return out, nil
}

func (b *Backend) unary(op string, code C.int, x []float32, value float32) ([]float32, error) {
	if err := checkSize(op, len(x)); err != nil {
		return nil, err
	}
	out := make([]float32, len(x))
	if len(x) == 0 {
		return out, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if rc := C.tc_unary(code, ptr(x), ptr(out), C.int(len(x)), C.float(value)); rc != 0 {
		return nil, fmt.Errorf("cuda: %s: %w", op, codeError(rc))
	}
	return out, nil
}

// Add performs element-wise addition.
func (b *Backend) Add(x, y []float32) ([]float32, error) { return b.binary("add", C.TC_ADD, x, y) }

// Sub performs element-wise subtraction.
func (b *Backend) Sub(x, y []float32) ([]float32, error) { return b.binary("sub", C.TC_SUB, x, y) }

// Multiply performs element-wise multiplication.
func (b *Backend) Multiply(x, y []float32) ([]float32, error) {
	return b.binary("mul", C.TC_MUL, x, y)
}

// Div performs element-wise division.
func (b *Backend) Div(x, y []float32) ([]float32, error) { return b.binary("div", C.TC_DIV, x, y) }

// Exp computes element-wise exponential.
func (b *Backend) Exp(x []float32) ([]float32, error) { return b.unary("exp", C.TC_EXP, x, 0) }

// Sqrt computes element-wise square root.
func (b *Backend) Sqrt(x []float32) ([]float32, error) { return b.unary("sqrt", C.TC_SQRT, x, 0) }

// Pow raises each element to power.
func (b *Backend) Pow(x []float32, power float32) ([]float32, error) {
	return b.unary("pow", C.TC_POW, x, power)
}

// MatMul performs (M, K) @ (K, N) -> (M, N) with a tiled kernel.
func (b *Backend) MatMul(x, y []float32, m, k, n int) ([]float32, error) {
	if err := backend.CheckMatMul(x, y, m, k, n); err != nil {
		return nil, err
	}
	if err := checkSize("matmul", max(m*k, k*n, m*n)); err != nil {
		return nil, err
	}
	out := make([]float32, m*n)
	if m == 0 || k == 0 || n == 0 {
		return out, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if rc := C.tc_matmul(ptr(x), ptr(y), ptr(out), C.int(m), C.int(k), C.int(n)); rc != 0 {
		return nil, fmt.Errorf("cuda: matmul: %w", codeError(rc))
	}
	return out, nil
}

// Sum adds all elements.
func (b *Backend) Sum(x []float32) (float32, error) {
	if err := checkSize("sum", len(x)); err != nil {
		return 0, err
	}
	if len(x) == 0 {
		return 0, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	var out C.float
	if rc := C.tc_sum(ptr(x), C.int(len(x)), &out); rc != 0 {
		return 0, fmt.Errorf("cuda: sum: %w", codeError(rc))
	}
	return float32(out), nil
}

// Mean returns the arithmetic mean of all elements.
func (b *Backend) Mean(x []float32) (float32, error) {
	if len(x) == 0 {
		return 0, backend.ErrEmptyInput
	}
	s, err := b.Sum(x)
	if err != nil {
		return 0, err
	}
	return s / float32(len(x)), nil
}
