// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides immutable float32 tensors that run on the best
// available compute device.
//
// # Overview
//
// A tensor is a dense row-major array bound to a backend. The backend is
// chosen on construction: the process engine probes CUDA, WebGPU and Metal
// in that order and falls back to the pure Go CPU backend when none of them
// can be used. Every operation validates shapes first and returns a new
// tensor on the same backend.
//
// # Basic Usage
//
//	import "github.com/born-ml/tensorcore/tensor"
//
//	func main() {
//	    a, _ := tensor.New([][]float32{{1, 2}, {3, 4}})
//	    b, _ := tensor.New([][]float32{{5, 6}, {7, 8}})
//
//	    c, _ := a.MatMul(b) // [[19 22] [43 50]]
//	    fmt.Printf("%v\n", c)
//	}
//
// # Devices
//
// OnDevice requests a family explicitly and WithBackend injects a handle:
//
//	x, err := tensor.FromVec(data, tensor.Shape{2, 3}, tensor.OnDevice(tensor.WebGPU))
//
// Selection can be steered without code changes through TENSORCORE_DEVICE,
// TENSORCORE_DISABLE and a YAML file named by TENSORCORE_CONFIG.
//
// # Thread Safety
//
// Tensors are never modified after construction and may be shared between
// goroutines.
package tensor
