//go:build !darwin || !metal || !cgo

// Package metal implements the vendor-shader GPU backend.
// Build on macOS with -tags metal (and cgo enabled) to include it.
package metal

import (
	"fmt"

	"github.com/born-ml/tensorcore/internal/backend"
)

// Compiled reports whether the Metal backend is part of this build.
const Compiled = false

// New always fails in this build.
func New(_ string) (backend.Backend, error) {
	return nil, fmt.Errorf("metal: %w: not compiled into this build (use -tags metal on darwin)", backend.ErrUnavailable)
}

// Available always reports false in this build.
func Available() bool { return false }
