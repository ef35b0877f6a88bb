// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU compute-shader backend.
//
// The backend is compiled on Windows, where the wgpu-native runtime is
// loaded without cgo. On other platforms New reports the backend as
// unavailable and tensors fall back to the next device family.
//
// Example:
//
//	import (
//	    "github.com/born-ml/tensorcore/backend/webgpu"
//	    "github.com/born-ml/tensorcore/tensor"
//	)
//
//	func main() {
//	    gpu, err := webgpu.New()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    x, _ := tensor.FromVec(data, tensor.Shape{1024, 1024}, tensor.WithBackend(gpu))
//	}
package webgpu

import (
	internalwebgpu "github.com/born-ml/tensorcore/internal/backend/webgpu"
	"github.com/born-ml/tensorcore/tensor"
)

// Compiled reports whether the WebGPU backend is part of this build.
const Compiled = internalwebgpu.Compiled

// New creates a WebGPU backend on the default adapter.
//
// Returns an error wrapping the unavailable sentinel if no compatible GPU
// or runtime is present. A backend that holds GPU resources can be freed
// through its Release method.
func New() (tensor.Backend, error) {
	b, err := internalwebgpu.New()
	if err != nil {
		return nil, err
	}
	return b, nil
}

// IsAvailable checks if WebGPU is available on the current system.
//
// This function attempts to initialize a WebGPU adapter to verify
// that a compatible GPU and drivers are present.
func IsAvailable() bool {
	return internalwebgpu.Available()
}
