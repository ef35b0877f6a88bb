//go:build windows

// Package webgpu implements the compute-shader GPU backend.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings.
package webgpu

import (
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/born-ml/tensorcore/internal/backend"
	"github.com/born-ml/tensorcore/internal/device"
)

// Compiled reports whether the WebGPU backend is part of this build.
const Compiled = true

// Verify that Backend implements the contract.
var (
	_ backend.Backend  = (*Backend)(nil)
	_ backend.Releaser = (*Backend)(nil)
)

// Backend implements tensor operations on GPU using WebGPU.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline cache
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	// submitMu serializes queue submission and readback.
	submitMu sync.Mutex

	adapterInfo wgpu.AdapterInfo
	released    bool
}

// New creates a new WebGPU backend.
// Returns an error wrapping backend.ErrUnavailable if WebGPU is not available
// or initialization fails.
func New() (b *Backend, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			b = nil
			err = fmt.Errorf("webgpu: %w: native library not available: %v", backend.ErrUnavailable, r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: %w: failed to request adapter: %v", backend.ErrUnavailable, adapterErr)
	}

	info := adapter.GetInfo()

	dev, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: %w: failed to request device: %v", backend.ErrUnavailable, deviceErr)
	}

	queue := dev.GetQueue()
	if queue == nil {
		dev.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: %w: failed to get queue", backend.ErrUnavailable)
	}

	return &Backend{
		instance:    instance,
		adapter:     adapter,
		device:      dev,
		queue:       queue,
		shaders:     make(map[string]*wgpu.ShaderModule),
		pipelines:   make(map[string]*wgpu.ComputePipeline),
		adapterInfo: info,
	}, nil
}

// Available checks if a WebGPU adapter can be obtained on this system.
func Available() (available bool) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()

	return true
}

// Name returns the backend name including the adapter.
func (b *Backend) Name() string {
	if b.adapterInfo.Device == "" {
		return "WebGPU"
	}
	return fmt.Sprintf("WebGPU (%s %s)", b.adapterInfo.Device, b.adapterInfo.Vendor)
}

// Kind returns the compute device.
func (b *Backend) Kind() device.Kind {
	return device.WebGPU
}

// Release releases all GPU resources. The backend must not be used afterwards.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return
	}
	b.released = true

	for _, pipeline := range b.pipelines {
		pipeline.Release()
	}
	for _, shader := range b.shaders {
		shader.Release()
	}
	b.pipelines = nil
	b.shaders = nil

	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.instance.Release()
}
