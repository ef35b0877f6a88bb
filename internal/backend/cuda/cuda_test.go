//go:build cuda && cgo

package cuda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tensorcore/internal/backend/cpu"
	"github.com/born-ml/tensorcore/internal/parallel"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New()
	if err != nil {
		t.Skipf("CUDA not available: %v", err)
	}
	return b
}

func TestMatMul(t *testing.T) {
	b := newTestBackend(t)

	got, err := b.MatMul([]float32{1, 2, 3, 4}, []float32{5, 6, 7, 8}, 2, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{19, 22, 43, 50}, got)
}

func TestAgreesWithCPU(t *testing.T) {
	b := newTestBackend(t)
	ref := cpu.New(parallel.Sequential())

	x := make([]float32, 1000)
	y := make([]float32, 1000)
	for i := range x {
		x[i] = float32(i%31) * 0.1
		y[i] = float32(i%17)*0.2 + 1
	}

	got, err := b.Div(x, y)
	require.NoError(t, err)
	want, _ := ref.Div(x, y)
	assert.InDeltaSlice(t, want, got, 1e-5)

	got, err = b.Pow(x, 2)
	require.NoError(t, err)
	want, _ = ref.Pow(x, 2)
	assert.InDeltaSlice(t, want, got, 1e-3)

	s, err := b.Sum(x)
	require.NoError(t, err)
	ws, _ := ref.Sum(x)
	assert.InEpsilon(t, ws, s, 1e-4)
}
