//go:build !windows

// Package webgpu implements the compute-shader GPU backend.
// This build does not include it: New always fails with backend.ErrUnavailable.
package webgpu

import (
	"fmt"

	"github.com/born-ml/tensorcore/internal/backend"
)

// Compiled reports whether the WebGPU backend is part of this build.
const Compiled = false

// New always fails on this platform.
func New() (backend.Backend, error) {
	return nil, fmt.Errorf("webgpu: %w: not compiled into this build", backend.ErrUnavailable)
}

// Available always reports false on this platform.
func Available() bool { return false }
