package cpu

import (
	"math"

	"github.com/born-ml/tensorcore/internal/parallel"
)

// Exp computes element-wise exponential: exp(x).
func (cpu *CPUBackend) Exp(a []float32) ([]float32, error) {
	return parallel.Map(a, func(x float32) float32 {
		return float32(math.Exp(float64(x)))
	}, cpu.par), nil
}

// Sqrt computes element-wise square root. Negative inputs yield NaN.
func (cpu *CPUBackend) Sqrt(a []float32) ([]float32, error) {
	return parallel.Map(a, func(x float32) float32 {
		return float32(math.Sqrt(float64(x)))
	}, cpu.par), nil
}

// Pow raises each element to power.
func (cpu *CPUBackend) Pow(a []float32, power float32) ([]float32, error) {
	p := float64(power)
	switch power {
	case 1:
		return append([]float32(nil), a...), nil
	case 2:
		return parallel.Map(a, func(x float32) float32 { return x * x }, cpu.par), nil
	}
	return parallel.Map(a, func(x float32) float32 {
		return float32(math.Pow(float64(x), p))
	}, cpu.par), nil
}
