package device

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probe(kind Kind, compiled, available bool) Probe {
	return Probe{Kind: kind, Compiled: compiled, Available: func() bool { return available }}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		name string
	}{
		{CPU, "cpu"},
		{CUDA, "cuda"},
		{WebGPU, "webgpu"},
		{Metal, "metal"},
		{Kind(42), "unknown(42)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.name, tt.kind.String())
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Priority {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseKind("  WebGPU ")
	require.NoError(t, err)
	assert.Equal(t, WebGPU, got)

	_, err = ParseKind("vulkan2")
	assert.Error(t, err)
}

func TestKindValid(t *testing.T) {
	assert.True(t, Metal.Valid())
	assert.False(t, Kind(-1).Valid())
	assert.False(t, Kind(4).Valid())
	assert.False(t, CPU.Accelerated())
	assert.True(t, CUDA.Accelerated())
}

func TestSelectDefaultFallsBackToCPU(t *testing.T) {
	m := NewManager(nil)
	assert.Equal(t, CPU, m.SelectDefault())

	m = NewManager([]Probe{
		probe(CUDA, false, true), // not compiled in: ignored even if "available"
		probe(WebGPU, true, false),
		probe(Metal, true, false),
	})
	assert.Equal(t, CPU, m.SelectDefault())
}

func TestSelectDefaultPriority(t *testing.T) {
	m := NewManager([]Probe{
		probe(CUDA, true, false),
		probe(WebGPU, true, true),
		probe(Metal, true, true),
	})
	assert.Equal(t, WebGPU, m.SelectDefault())

	m = NewManager([]Probe{
		probe(CUDA, true, true),
		probe(WebGPU, true, true),
	})
	assert.Equal(t, CUDA, m.SelectDefault())
}

func TestSelectDefaultIsCached(t *testing.T) {
	var calls atomic.Int32
	m := NewManager([]Probe{{
		Kind:     WebGPU,
		Compiled: true,
		Available: func() bool {
			calls.Add(1)
			return true
		},
	}})

	for i := 0; i < 5; i++ {
		assert.Equal(t, WebGPU, m.SelectDefault())
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestSelectDefaultRecoversProbePanic(t *testing.T) {
	m := NewManager([]Probe{
		{Kind: CUDA, Compiled: true, Available: func() bool { panic("libcudart.so not found") }},
		probe(Metal, true, true),
	})
	assert.Equal(t, Metal, m.SelectDefault())
}

func TestPreferredAndDisabled(t *testing.T) {
	probes := []Probe{
		probe(CUDA, true, true),
		probe(WebGPU, true, true),
		probe(Metal, true, true),
	}

	m := NewManager(probes, WithPreferred(Metal))
	assert.Equal(t, []Kind{Metal, CUDA, WebGPU, CPU}, m.Order())
	assert.Equal(t, Metal, m.SelectDefault())

	m = NewManager(probes, WithDisabled(CUDA, CPU))
	assert.Equal(t, []Kind{WebGPU, Metal, CPU}, m.Order())
	assert.Equal(t, WebGPU, m.SelectDefault())
	assert.False(t, m.Usable(CUDA))
	assert.True(t, m.Usable(CPU))

	m = NewManager(probes, WithPreferred(CPU))
	assert.Equal(t, CPU, m.Order()[len(m.Order())-1])
	assert.Equal(t, CUDA, m.SelectDefault())
}

func TestEnumerate(t *testing.T) {
	m := NewManager([]Probe{
		probe(CUDA, false, false),
		probe(WebGPU, true, true),
		probe(Metal, true, false),
	}, WithDisabled(Metal))

	statuses, err := m.Enumerate(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 4)

	assert.Equal(t, Status{Kind: CUDA}, statuses[0])
	assert.Equal(t, Status{Kind: WebGPU, Compiled: true, Available: true, Selected: true}, statuses[1])
	assert.Equal(t, Status{Kind: Metal, Compiled: true}, statuses[2])
	assert.Equal(t, Status{Kind: CPU, Compiled: true, Available: true}, statuses[3])
}

func TestEnumerateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewManager(nil).Enumerate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestEnumerateChecksFamiliesConcurrently pins the concurrency contract
// documented on Available: each family only reports available once the other has
// started, which cannot happen if they run one after another.
func TestEnumerateChecksFamiliesConcurrently(t *testing.T) {
	cudaStarted := make(chan struct{})
	webgpuStarted := make(chan struct{})
	rendezvous := func(mine, other chan struct{}) func() bool {
		return func() bool {
			close(mine)
			select {
			case <-other:
				return true
			case <-time.After(5 * time.Second):
				return false
			}
		}
	}

	m := NewManager([]Probe{
		{Kind: CUDA, Compiled: true, Available: rendezvous(cudaStarted, webgpuStarted)},
		{Kind: WebGPU, Compiled: true, Available: rendezvous(webgpuStarted, cudaStarted)},
	}, WithPreferred(WebGPU))

	// SelectDefault runs first so Enumerate is the only caller of the funcs.
	m.once.Do(func() { m.selected = CPU })

	statuses, err := m.Enumerate(context.Background())
	require.NoError(t, err)
	assert.True(t, statuses[0].Available)
	assert.True(t, statuses[1].Available)
}

func TestDisabledIgnoresNonAccelerated(t *testing.T) {
	m := NewManager(nil, WithDisabled(CPU, Kind(42)))
	assert.Empty(t, m.disabled)
	assert.Equal(t, []Kind{CUDA, WebGPU, Metal, CPU}, m.Order())
}
