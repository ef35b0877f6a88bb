// Package backendtest provides a recording backend for tests.
package backendtest

import (
	"math"
	"sync"

	"github.com/born-ml/tensorcore/internal/backend"
	"github.com/born-ml/tensorcore/internal/device"
)

// Verify that Recorder implements Backend.
var _ backend.Backend = (*Recorder)(nil)

// Recorder is a naive backend that records every call it receives.
// Operations can be made to fail with Fail.
type Recorder struct {
	name string
	kind device.Kind

	mu       sync.Mutex
	calls    []string
	failures map[string]error
	released bool
}

// New creates a Recorder reporting the given kind.
func New(kind device.Kind) *Recorder {
	return &Recorder{
		name:     "recorder-" + kind.String(),
		kind:     kind,
		failures: make(map[string]error),
	}
}

// Fail makes every subsequent call of op return err.
func (r *Recorder) Fail(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op] = err
}

// Calls returns the recorded operation names in call order.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Released reports whether Release was called.
func (r *Recorder) Released() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}

// Release implements backend.Releaser.
func (r *Recorder) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = true
}

// Name returns the backend name.
func (r *Recorder) Name() string { return r.name }

// Kind returns the reported device family.
func (r *Recorder) Kind() device.Kind { return r.kind }

func (r *Recorder) record(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, op)
	return r.failures[op]
}

// MatMul multiplies naively.
func (r *Recorder) MatMul(a, b []float32, m, k, n int) ([]float32, error) {
	if err := r.record("matmul"); err != nil {
		return nil, err
	}
	if err := backend.CheckMatMul(a, b, m, k, n); err != nil {
		return nil, err
	}
	out := make([]float32, m*n)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var acc float32
			for p := 0; p < k; p++ {
				acc += a[i*k+p] * b[p*n+j]
			}
			out[i*n+j] = acc
		}
	}
	return out, nil
}

// Add adds element-wise.
func (r *Recorder) Add(a, b []float32) ([]float32, error) {
	return r.zip("add", a, b, func(x, y float32) float32 { return x + y })
}

// Sub subtracts element-wise.
func (r *Recorder) Sub(a, b []float32) ([]float32, error) {
	return r.zip("sub", a, b, func(x, y float32) float32 { return x - y })
}

// Multiply multiplies element-wise.
func (r *Recorder) Multiply(a, b []float32) ([]float32, error) {
	return r.zip("mul", a, b, func(x, y float32) float32 { return x * y })
}

// Div divides element-wise.
func (r *Recorder) Div(a, b []float32) ([]float32, error) {
	return r.zip("div", a, b, func(x, y float32) float32 { return x / y })
}

// Sum adds all elements.
func (r *Recorder) Sum(a []float32) (float32, error) {
	if err := r.record("sum"); err != nil {
		return 0, err
	}
	var s float32
	for _, v := range a {
		s += v
	}
	return s, nil
}

// Mean averages all elements.
func (r *Recorder) Mean(a []float32) (float32, error) {
	if err := r.record("mean"); err != nil {
		return 0, err
	}
	if len(a) == 0 {
		return 0, backend.ErrEmptyInput
	}
	var s float32
	for _, v := range a {
		s += v
	}
	return s / float32(len(a)), nil
}

// Exp computes e^x element-wise.
func (r *Recorder) Exp(a []float32) ([]float32, error) {
	return r.mapf("exp", a, func(x float32) float32 { return float32(math.Exp(float64(x))) })
}

// Sqrt computes the square root element-wise.
func (r *Recorder) Sqrt(a []float32) ([]float32, error) {
	return r.mapf("sqrt", a, func(x float32) float32 { return float32(math.Sqrt(float64(x))) })
}

// Pow raises every element to power.
func (r *Recorder) Pow(a []float32, power float32) ([]float32, error) {
	return r.mapf("pow", a, func(x float32) float32 { return float32(math.Pow(float64(x), float64(power))) })
}

func (r *Recorder) zip(op string, a, b []float32, fn func(x, y float32) float32) ([]float32, error) {
	if err := r.record(op); err != nil {
		return nil, err
	}
	if err := backend.CheckBinary(op, a, b); err != nil {
		return nil, err
	}
	out := make([]float32, len(a))
	for i := range a {
		out[i] = fn(a[i], b[i])
	}
	return out, nil
}

func (r *Recorder) mapf(op string, a []float32, fn func(float32) float32) ([]float32, error) {
	if err := r.record(op); err != nil {
		return nil, err
	}
	out := make([]float32, len(a))
	for i, v := range a {
		out[i] = fn(v)
	}
	return out, nil
}
