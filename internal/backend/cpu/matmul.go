package cpu

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/born-ml/tensorcore/internal/backend"
)

// MatMul performs matrix multiplication.
// (M, K) @ (K, N) -> (M, N) via SGEMM.
func (cpu *CPUBackend) MatMul(a, b []float32, m, k, n int) ([]float32, error) {
	if err := backend.CheckMatMul(a, b, m, k, n); err != nil {
		return nil, err
	}

	c := make([]float32, m*n)
	// gonum rejects zero strides; an empty inner dimension leaves C zeroed.
	if m == 0 || k == 0 || n == 0 {
		return c, nil
	}

	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
		blas32.General{Rows: m, Cols: k, Stride: k, Data: a},
		blas32.General{Rows: k, Cols: n, Stride: n, Data: b},
		0,
		blas32.General{Rows: m, Cols: n, Stride: n, Data: c},
	)
	return c, nil
}
