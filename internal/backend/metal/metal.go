//go:build darwin && metal && cgo

// Package metal implements the vendor-shader GPU backend. Kernels are loaded
// from a prebuilt tensor_ops.metallib (see scripts/build-kernels.sh).
package metal

/*
#cgo LDFLAGS: -framework Metal -framework Foundation
#cgo CFLAGS: -fobjc-arc
#include "metal_bridge.h"
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"unsafe"

	"github.com/born-ml/tensorcore/internal/backend"
	"github.com/born-ml/tensorcore/internal/device"
)

// Compiled reports whether the Metal backend is part of this build.
const Compiled = true

// Verify that Backend implements the contract.
var (
	_ backend.Backend  = (*Backend)(nil)
	_ backend.Releaser = (*Backend)(nil)
)

// Backend runs kernels on the system default Metal device. Calls are
// serialized on one command queue.
type Backend struct {
	mu   sync.Mutex
	ref  C.TCMetalRef
	name string
}

// New loads LibraryName from artifactsDir. A missing library or device
// fails with backend.ErrUnavailable.
func New(artifactsDir string) (*Backend, error) {
	path := filepath.Join(artifactsDir, LibraryName)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("metal: %w: %v", backend.ErrUnavailable, err)
	}

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	var cErr *C.char
	ref := C.tc_metal_init(cPath, &cErr)
	if ref == nil {
		msg := C.GoString(cErr)
		C.free(unsafe.Pointer(cErr))
		return nil, fmt.Errorf("metal: %w: %s", backend.ErrUnavailable, msg)
	}

	return &Backend{
		ref:  ref,
		name: C.GoString(C.tc_metal_device_name(ref)),
	}, nil
}

// Available reports whether a Metal device is present.
func Available() bool {
	return C.tc_metal_available() != 0
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "Metal (" + b.name + ")"
}

// Kind returns the compute device.
func (b *Backend) Kind() device.Kind {
	return device.Metal
}

// Release frees the device context. The backend must not be used afterwards.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ref != nil {
		C.tc_metal_free(b.ref)
		b.ref = nil
	}
}

func ptr(s []float32) *C.float {
	if len(s) == 0 {
		return nil
	}
	return (*C.float)(unsafe.Pointer(&s[0]))
}

func status(op string, rc C.int) error {
	switch rc {
	case C.TC_METAL_OK:
		return nil
	case C.TC_METAL_NO_PIPELINE:
		return fmt.Errorf("metal: %s: kernel missing from %s", op, LibraryName)
	case C.TC_METAL_ALLOC_FAILED:
		return fmt.Errorf("metal: %s: buffer allocation failed", op)
	default:
		return fmt.Errorf("metal: %s: command buffer failed", op)
	}
}

func checkSize(op string, n int) error {
	if n > math.MaxInt32 {
		return fmt.Errorf("metal: %s: %d elements exceed the kernel index range", op, n)
	}
	return nil
}

func (b *Backend) binary(op, kernel string, x, y []float32) ([]float32, error) {
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

	cKernel := C.CString(kernel)
	defer C.free(unsafe.Pointer(cKernel))

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := status(op, C.tc_metal_binary(b.ref, cKernel, ptr(x), ptr(y), ptr(out), C.int(len(x)))); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Backend) unary(op, kernel string, x []float32, value float32) ([]float32, error) {
	if err := checkSize(op, len(x)); err != nil {
		return nil, err
	}
	out := make([]float32, len(x))
	if len(x) == 0 {
		return out, nil
	}

	cKernel := C.CString(kernel)
	defer C.free(unsafe.Pointer(cKernel))

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := status(op, C.tc_metal_unary(b.ref, cKernel, ptr(x), ptr(out), C.int(len(x)), C.float(value))); err != nil {
		return nil, err
	}
	return out, nil
}

// Add performs element-wise addition.
func (b *Backend) Add(x, y []float32) ([]float32, error) { return b.binary("add", "add_kernel", x, y) }

// Sub performs element-wise subtraction.
func (b *Backend) Sub(x, y []float32) ([]float32, error) { return b.binary("sub", "sub_kernel", x, y) }

// Multiply performs element-wise multiplication.
func (b *Backend) Multiply(x, y []float32) ([]float32, error) {
	return b.binary("mul", "mul_kernel", x, y)
}

// Div performs element-wise division.
func (b *Backend) Div(x, y []float32) ([]float32, error) { return b.binary("div", "div_kernel", x, y) }

// Exp computes element-wise exponential.
func (b *Backend) Exp(x []float32) ([]float32, error) { return b.unary("exp", "exp_kernel", x, 0) }

// Sqrt computes element-wise square root.
func (b *Backend) Sqrt(x []float32) ([]float32, error) { return b.unary("sqrt", "sqrt_kernel", x, 0) }

// Pow raises each element to power.
func (b *Backend) Pow(x []float32, power float32) ([]float32, error) {
	return b.unary("pow", "pow_kernel", x, power)
}

// MatMul performs (M, K) @ (K, N) -> (M, N).
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
	if err := status("matmul", C.tc_metal_matmul(b.ref, ptr(x), ptr(y), ptr(out), C.int(m), C.int(k), C.int(n))); err != nil {
		return nil, err
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
	if err := status("sum", C.tc_metal_sum(b.ref, ptr(x), C.int(len(x)), &out)); err != nil {
		return 0, err
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
