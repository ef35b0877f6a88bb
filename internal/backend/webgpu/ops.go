//go:build windows

package webgpu

import "github.com/born-ml/tensorcore/internal/backend"

// Add performs element-wise addition on GPU.
func (b *Backend) Add(x, y []float32) ([]float32, error) {
	return b.binary("add", x, y, addShader)
}

// Sub performs element-wise subtraction on GPU.
func (b *Backend) Sub(x, y []float32) ([]float32, error) {
	return b.binary("sub", x, y, subShader)
}

// Multiply performs element-wise multiplication on GPU.
func (b *Backend) Multiply(x, y []float32) ([]float32, error) {
	return b.binary("mul", x, y, mulShader)
}

// Div performs element-wise division on GPU.
func (b *Backend) Div(x, y []float32) ([]float32, error) {
	return b.binary("div", x, y, divShader)
}

func (b *Backend) binary(op string, x, y []float32, code string) ([]float32, error) {
	if err := backend.CheckBinary(op, x, y); err != nil {
		return nil, err
	}
	if err := checkSize(op, len(x)); err != nil {
		return nil, err
	}
	return b.runBinaryOp(x, y, op, code)
}

// Exp computes element-wise exponential on GPU.
func (b *Backend) Exp(x []float32) ([]float32, error) {
	if err := checkSize("exp", len(x)); err != nil {
		return nil, err
	}
	return b.runUnaryOp(x, 0, "exp", expShader)
}

// Sqrt computes element-wise square root on GPU.
func (b *Backend) Sqrt(x []float32) ([]float32, error) {
	if err := checkSize("sqrt", len(x)); err != nil {
		return nil, err
	}
	return b.runUnaryOp(x, 0, "sqrt", sqrtShader)
}

// Pow raises each element to power on GPU.
func (b *Backend) Pow(x []float32, power float32) ([]float32, error) {
	if err := checkSize("pow", len(x)); err != nil {
		return nil, err
	}
	return b.runUnaryOp(x, power, "pow", powShader)
}

// MatMul performs matrix multiplication on GPU.
func (b *Backend) MatMul(x, y []float32, m, k, n int) ([]float32, error) {
	if err := backend.CheckMatMul(x, y, m, k, n); err != nil {
		return nil, err
	}
	if err := checkSize("matmul", max(m*k, k*n, m*n)); err != nil {
		return nil, err
	}
	return b.runMatMul(x, y, m, k, n)
}

// Sum adds all elements on GPU.
func (b *Backend) Sum(x []float32) (float32, error) {
	if err := checkSize("sum", len(x)); err != nil {
		return 0, err
	}
	return b.runSum(x)
}

// Mean returns the arithmetic mean of all elements.
func (b *Backend) Mean(x []float32) (float32, error) {
	if len(x) == 0 {
		return 0, backend.ErrEmptyInput
	}
	s, err := b.Sum(x)
	if err != nil {
		return 0, err
	}
	return s / float32(len(x)), nil
}
