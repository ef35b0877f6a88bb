//go:build !cuda || !cgo

// Package cuda implements the native-kernel GPU backend.
// Build with -tags cuda (and cgo enabled) to include it.
package cuda

import (
	"fmt"

	"github.com/born-ml/tensorcore/internal/backend"
)

// Compiled reports whether the CUDA backend is part of this build.
const Compiled = false

// New always fails in this build.
func New() (backend.Backend, error) {
	return nil, fmt.Errorf("cuda: %w: not compiled into this build (use -tags cuda)", backend.ErrUnavailable)
}

// Available always reports false in this build.
func Available() bool { return false }
