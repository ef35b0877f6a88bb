// Package device describes the compute device families tensorcore can run on
// and decides which one services the process.
package device

import (
	"fmt"
	"strings"
)

// Kind identifies a compute device family.
type Kind int

// Supported device families.
const (
	CPU    Kind = iota // Reference implementation, always compiled in.
	CUDA               // Native-kernel GPU.
	WebGPU             // Compute-shader GPU.
	Metal              // Vendor-shader GPU.
)

// Priority is the fixed probing order, most preferred first.
// CPU is last: it is the guaranteed fallback.
var Priority = []Kind{CUDA, WebGPU, Metal, CPU}

// String returns the lower-case device family name.
func (k Kind) String() string {
	switch k {
	case CPU:
		return "cpu"
	case CUDA:
		return "cuda"
	case WebGPU:
		return "webgpu"
	case Metal:
		return "metal"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Valid reports whether k is one of the known families.
func (k Kind) Valid() bool {
	return k >= CPU && k <= Metal
}

// Accelerated reports whether k is a GPU family.
func (k Kind) Accelerated() bool {
	return k.Valid() && k != CPU
}

// ParseKind parses a family name as printed by String. Matching ignores case
// and surrounding whitespace.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cpu":
		return CPU, nil
	case "cuda":
		return CUDA, nil
	case "webgpu", "wgpu":
		return WebGPU, nil
	case "metal", "mps":
		return Metal, nil
	default:
		return CPU, fmt.Errorf("device: unknown device kind %q", name)
	}
}
