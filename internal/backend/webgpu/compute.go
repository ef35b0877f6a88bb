//go:build windows

package webgpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
)

var errReleased = errors.New("webgpu: backend released")

// compileShader compiles WGSL shader code into a ShaderModule.
// Results are cached in the Backend's shaders map.
func (b *Backend) compileShader(name, code string) (*wgpu.ShaderModule, error) {
	b.mu.RLock()
	shader, exists := b.shaders[name]
	released := b.released
	b.mu.RUnlock()
	if released {
		return nil, errReleased
	}
	if exists {
		return shader, nil
	}

	shader = b.device.CreateShaderModuleWGSL(code)

	b.mu.Lock()
	defer b.mu.Unlock()
	if cached, ok := b.shaders[name]; ok {
		shader.Release()
		return cached, nil
	}
	b.shaders[name] = shader
	return shader, nil
}

// pipeline returns a cached ComputePipeline or compiles a new one.
func (b *Backend) pipeline(name, code string) (*wgpu.ComputePipeline, error) {
	b.mu.RLock()
	p, exists := b.pipelines[name]
	b.mu.RUnlock()
	if exists {
		return p, nil
	}

	shader, err := b.compileShader(name, code)
	if err != nil {
		return nil, err
	}

	// Create compute pipeline with auto layout (nil layout)
	p = b.device.CreateComputePipelineSimple(nil, shader, "main")

	b.mu.Lock()
	defer b.mu.Unlock()
	if cached, ok := b.pipelines[name]; ok {
		p.Release()
		return cached, nil
	}
	b.pipelines[name] = p
	return p, nil
}

// createBuffer creates a storage buffer holding data.
func (b *Backend) createBuffer(data []float32) *wgpu.Buffer {
	size := uint64(len(data) * 4)

	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(unsafe.Slice((*float32)(mappedPtr), len(data)), data)
	buffer.Unmap()

	return buffer
}

// createOutputBuffer creates an uninitialized storage buffer of n floats.
func (b *Backend) createOutputBuffer(n int) *wgpu.Buffer {
	return b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  uint64(n * 4),
	})
}

// createUniformBuffer creates a 16-byte uniform buffer.
func (b *Backend) createUniformBuffer(params [16]byte) *wgpu.Buffer {
	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             16,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, 16)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(unsafe.Slice((*byte)(mappedPtr), 16), params[:])
	buffer.Unmap()

	return buffer
}

// dispatch binds buffers in order, runs one compute pass and reads n floats
// back from the buffer bound at index out.
func (b *Backend) dispatch(pipeline *wgpu.ComputePipeline, buffers []*wgpu.Buffer, sizes []uint64,
	out int, n int, x, y uint32) ([]float32, error) {
	entries := make([]wgpu.BindGroupEntry, len(buffers))
	for i, buf := range buffers {
		entries[i] = wgpu.BufferBindingEntry(uint32(i), buf, 0, sizes[i])
	}
	bindGroup := b.device.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), entries)
	defer bindGroup.Release()

	size := uint64(n * 4)
	staging := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer staging.Release()

	b.submitMu.Lock()
	defer b.submitMu.Unlock()

	encoder := b.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)
	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	computePass.DispatchWorkgroups(x, y, 1)
	computePass.End()
	encoder.CopyBufferToBuffer(buffers[out], 0, staging, 0, size)
	b.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("webgpu: failed to map staging buffer: %w", err)
	}
	result := make([]float32, n)
	mappedPtr := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(result, unsafe.Slice((*float32)(mappedPtr), n))
	staging.Unmap()

	return result, nil
}

// workgroups returns the folded dispatch grid covering n invocations.
func workgroups(n int) (x, y uint32) {
	return dispatchGrid((n + workgroupSize - 1) / workgroupSize)
}

// runBinaryOp executes an element-wise shader over two equal-length buffers.
func (b *Backend) runBinaryOp(x, y []float32, name, code string) ([]float32, error) {
	if len(x) == 0 {
		return []float32{}, nil
	}
	pipeline, err := b.pipeline(name, code)
	if err != nil {
		return nil, err
	}

	bufA := b.createBuffer(x)
	defer bufA.Release()
	bufB := b.createBuffer(y)
	defer bufB.Release()
	bufOut := b.createOutputBuffer(len(x))
	defer bufOut.Release()

	var params [16]byte
	//nolint:gosec // G115: buffer length fits u32, checked by the caller
	binary.LittleEndian.PutUint32(params[0:4], uint32(len(x)))
	bufParams := b.createUniformBuffer(params)
	defer bufParams.Release()

	size := uint64(len(x) * 4)
	gx, gy := workgroups(len(x))
	return b.dispatch(pipeline,
		[]*wgpu.Buffer{bufA, bufB, bufOut, bufParams},
		[]uint64{size, size, size, 16},
		2, len(x), gx, gy)
}

// runUnaryOp executes an element-wise shader; value is passed as params.value.
func (b *Backend) runUnaryOp(x []float32, value float32, name, code string) ([]float32, error) {
	if len(x) == 0 {
		return []float32{}, nil
	}
	pipeline, err := b.pipeline(name, code)
	if err != nil {
		return nil, err
	}

	bufIn := b.createBuffer(x)
	defer bufIn.Release()
	bufOut := b.createOutputBuffer(len(x))
	defer bufOut.Release()

	var params [16]byte
	//nolint:gosec // G115: buffer length fits u32, checked by the caller
	binary.LittleEndian.PutUint32(params[0:4], uint32(len(x)))
	binary.LittleEndian.PutUint32(params[4:8], math.Float32bits(value))
	bufParams := b.createUniformBuffer(params)
	defer bufParams.Release()

	size := uint64(len(x) * 4)
	gx, gy := workgroups(len(x))
	return b.dispatch(pipeline,
		[]*wgpu.Buffer{bufIn, bufOut, bufParams},
		[]uint64{size, size, 16},
		1, len(x), gx, gy)
}

// runMatMul executes C = A @ B with one invocation per output element.
func (b *Backend) runMatMul(x, y []float32, m, k, n int) ([]float32, error) {
	if m == 0 || n == 0 {
		return []float32{}, nil
	}
	if k == 0 {
		return make([]float32, m*n), nil
	}
	pipeline, err := b.pipeline("matmul", matmulShader)
	if err != nil {
		return nil, err
	}

	bufA := b.createBuffer(x)
	defer bufA.Release()
	bufB := b.createBuffer(y)
	defer bufB.Release()
	bufOut := b.createOutputBuffer(m * n)
	defer bufOut.Release()

	var params [16]byte
	//nolint:gosec // G115: matrix dimensions fit u32, checked by the caller
	binary.LittleEndian.PutUint32(params[0:4], uint32(m))
	//nolint:gosec // G115: see above
	binary.LittleEndian.PutUint32(params[4:8], uint32(k))
	//nolint:gosec // G115: see above
	binary.LittleEndian.PutUint32(params[8:12], uint32(n))
	bufParams := b.createUniformBuffer(params)
	defer bufParams.Release()

	gx, gy := workgroups(m * n)
	return b.dispatch(pipeline,
		[]*wgpu.Buffer{bufA, bufB, bufOut, bufParams},
		[]uint64{uint64(len(x) * 4), uint64(len(y) * 4), uint64(m * n * 4), 16},
		2, m*n, gx, gy)
}

// runSum reduces x to one partial per workgroup on the GPU and folds the
// partials on the host.
func (b *Backend) runSum(x []float32) (float32, error) {
	if len(x) == 0 {
		return 0, nil
	}
	pipeline, err := b.pipeline("global_sum", globalSumShader)
	if err != nil {
		return 0, err
	}

	gx, gy := workgroups(len(x))
	groups := int(gx) * int(gy)
	bufIn := b.createBuffer(x)
	defer bufIn.Release()
	bufOut := b.createOutputBuffer(groups)
	defer bufOut.Release()

	var params [16]byte
	//nolint:gosec // G115: buffer length fits u32, checked by the caller
	binary.LittleEndian.PutUint32(params[0:4], uint32(len(x)))
	bufParams := b.createUniformBuffer(params)
	defer bufParams.Release()

	partials, err := b.dispatch(pipeline,
		[]*wgpu.Buffer{bufIn, bufOut, bufParams},
		[]uint64{uint64(len(x) * 4), uint64(groups * 4), 16},
		1, groups, gx, gy)
	if err != nil {
		return 0, err
	}

	var sum float32
	for _, p := range partials {
		sum += p
	}
	return sum, nil
}
