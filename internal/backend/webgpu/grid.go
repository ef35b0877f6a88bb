package webgpu

import "fmt"

// WebGPU default device limits. Adapters may report more; the backend does
// not request raised limits, so these are what every device guarantees.
const (
	maxWorkgroupsPerDimension   = 65535
	maxStorageBufferBindingSize = 128 << 20
)

// workgroupSize is the number of invocations per workgroup in the
// element-wise, matmul and sum shaders.
const workgroupSize = 256

// maxElements is the largest float32 buffer a single binding can hold.
const maxElements = maxStorageBufferBindingSize / 4

func checkSize(op string, n int) error {
	if n > maxElements {
		return fmt.Errorf("webgpu: %s: %d elements exceed the %d-element storage binding limit", op, n, maxElements)
	}
	return nil
}

// dispatchGrid folds groups workgroups into an x*y grid with neither side
// above the per-dimension limit. Shaders linearise the invocation as
// id.x + id.y*(num_workgroups.x*workgroupSize) and bounds-check the result,
// so x*y may exceed groups.
func dispatchGrid(groups int) (x, y uint32) {
	if groups <= maxWorkgroupsPerDimension {
		//nolint:gosec // G115: bounded by maxWorkgroupsPerDimension
		return uint32(groups), 1
	}
	rows := (groups + maxWorkgroupsPerDimension - 1) / maxWorkgroupsPerDimension
	//nolint:gosec // G115: groups is bounded by checkSize
	return maxWorkgroupsPerDimension, uint32(rows)
}
