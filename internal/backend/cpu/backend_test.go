package cpu

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tensorcore/internal/backend"
	"github.com/born-ml/tensorcore/internal/device"
	"github.com/born-ml/tensorcore/internal/parallel"
)

// Helper to create test backend. Chunks are small so parallel paths run.
func newTestBackend() *CPUBackend {
	return New(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 2})
}

func TestCPUBackend_New(t *testing.T) {
	b := New(parallel.DefaultConfig())
	assert.Equal(t, "CPU", b.Name())
	assert.Equal(t, device.CPU, b.Kind())
}

func TestCPUBackend_Elementwise(t *testing.T) {
	b := newTestBackend()
	x := []float32{1, 2, 3, 4, 5, 6}
	y := []float32{6, 5, 4, 3, 2, 1}

	tests := []struct {
		name string
		op   func(a, b []float32) ([]float32, error)
		want []float32
	}{
		{"add", b.Add, []float32{7, 7, 7, 7, 7, 7}},
		{"sub", b.Sub, []float32{-5, -3, -1, 1, 3, 5}},
		{"mul", b.Multiply, []float32{6, 10, 12, 12, 10, 6}},
		{"div", b.Div, []float32{1.0 / 6, 0.4, 0.75, 4.0 / 3, 2.5, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op(x, y)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, got, 1e-6)
		})
	}

	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, x, "inputs must not be modified")
}

func TestCPUBackend_LengthMismatch(t *testing.T) {
	b := newTestBackend()
	_, err := b.Add([]float32{1, 2}, []float32{1})
	assert.ErrorIs(t, err, backend.ErrLengthMismatch)
}

func TestCPUBackend_DivByZero(t *testing.T) {
	got, err := newTestBackend().Div([]float32{1, -1, 0}, []float32{0, 0, 0})
	require.NoError(t, err)
	assert.True(t, math.IsInf(float64(got[0]), 1))
	assert.True(t, math.IsInf(float64(got[1]), -1))
	assert.True(t, math.IsNaN(float64(got[2])))
}

func TestCPUBackend_Unary(t *testing.T) {
	b := newTestBackend()

	got, err := b.Exp([]float32{0, 1})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{1, float32(math.E)}, got, 1e-6)

	got, err = b.Sqrt([]float32{4, 9, -1})
	require.NoError(t, err)
	assert.Equal(t, float32(2), got[0])
	assert.Equal(t, float32(3), got[1])
	assert.True(t, math.IsNaN(float64(got[2])))

	for _, p := range []float32{1, 2, 3, 0.5} {
		got, err = b.Pow([]float32{4, 9}, p)
		require.NoError(t, err)
		assert.InDelta(t, math.Pow(4, float64(p)), got[0], 1e-4)
		assert.InDelta(t, math.Pow(9, float64(p)), got[1], 1e-4)
	}
}

func TestCPUBackend_SumMean(t *testing.T) {
	b := newTestBackend()

	s, err := b.Sum([]float32{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, float32(10), s)

	s, err = b.Sum(nil)
	require.NoError(t, err)
	assert.Equal(t, float32(0), s)

	m, err := b.Mean([]float32{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), m)

	_, err = b.Mean(nil)
	assert.ErrorIs(t, err, backend.ErrEmptyInput)
}

func TestCPUBackend_Concurrent(t *testing.T) {
	b := newTestBackend()
	x := make([]float32, 1000)
	for i := range x {
		x[i] = float32(i)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := b.Add(x, x)
			assert.NoError(t, err)
			assert.Equal(t, float32(1998), got[999])
		}()
	}
	wg.Wait()
}
