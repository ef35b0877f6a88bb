package cpu

import "github.com/born-ml/tensorcore/internal/backend"

// Sum adds all elements in index order with a float32 accumulator.
func (cpu *CPUBackend) Sum(a []float32) (float32, error) {
	return sumFloat32(a), nil
}

// Mean returns the arithmetic mean of all elements.
func (cpu *CPUBackend) Mean(a []float32) (float32, error) {
	if len(a) == 0 {
		return 0, backend.ErrEmptyInput
	}
	return sumFloat32(a) / float32(len(a)), nil
}

func sumFloat32(a []float32) float32 {
	var s float32
	for _, v := range a {
		s += v
	}
	return s
}
