package main

import (
	"context"
	"fmt"
	"math"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/born-ml/tensorcore/internal/backend"
	"github.com/born-ml/tensorcore/internal/backend/cpu"
	"github.com/born-ml/tensorcore/internal/parallel"
	"github.com/born-ml/tensorcore/internal/tensor"
)

// ErrMismatch is returned by verify when a backend disagrees with the reference.
var ErrMismatch = errors.New("backend results differ from the CPU reference")

type check struct {
	op  string
	run func(a, b *tensor.Tensor) (*tensor.Tensor, error)
}

// workload operates on a as [64, 48] and b as [48, 32]. Only matmul uses b.
var workload = []check{
	{"matmul", func(a, b *tensor.Tensor) (*tensor.Tensor, error) { return a.MatMul(b) }},
	{"add", func(a, _ *tensor.Tensor) (*tensor.Tensor, error) { return a.Add(a) }},
	{"sub", func(a, _ *tensor.Tensor) (*tensor.Tensor, error) {
		h, err := a.MulScalar(0.5)
		if err != nil {
			return nil, err
		}
		return a.Sub(h)
	}},
	{"mul", func(a, _ *tensor.Tensor) (*tensor.Tensor, error) { return a.Mul(a) }},
	{"div", func(a, _ *tensor.Tensor) (*tensor.Tensor, error) {
		d, err := a.AddScalar(2)
		if err != nil {
			return nil, err
		}
		return a.Div(d)
	}},
	{"exp", func(a, _ *tensor.Tensor) (*tensor.Tensor, error) { return a.Exp() }},
	{"sqrt", func(a, _ *tensor.Tensor) (*tensor.Tensor, error) { return a.Sqrt() }},
	{"pow", func(a, _ *tensor.Tensor) (*tensor.Tensor, error) { return a.Pow(3) }},
	{"sum", func(a, _ *tensor.Tensor) (*tensor.Tensor, error) {
		s, err := a.SumAll()
		if err != nil {
			return nil, err
		}
		return tensor.FromVec([]float32{s}, tensor.Shape{1}, tensor.WithBackend(a.Backend()))
	}},
	{"mean", func(a, _ *tensor.Tensor) (*tensor.Tensor, error) {
		m, err := a.Mean()
		if err != nil {
			return nil, err
		}
		return tensor.FromVec([]float32{m}, tensor.Shape{1}, tensor.WithBackend(a.Backend()))
	}},
}

// operands builds the workload inputs on b. Values stay in [0, 1) so exp and
// pow do not blow up and sqrt is defined.
func operands(b backend.Backend) (*tensor.Tensor, *tensor.Tensor, error) {
	ramp := func(n int, seed float64) []float32 {
		out := make([]float32, n)
		for i := range out {
			out[i] = float32(math.Mod(float64(i)*seed, 1))
		}
		return out
	}
	x, err := tensor.FromVec(ramp(64*48, 0.618), tensor.Shape{64, 48}, tensor.WithBackend(b))
	if err != nil {
		return nil, nil, err
	}
	y, err := tensor.FromVec(ramp(48*32, 0.414), tensor.Shape{48, 32}, tensor.WithBackend(b))
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// verify runs the workload on every available family. The engine's CPU
// backend is checked too: its parallel split must match the sequential
// reference.
func (e *env) verify(tol float32) error {
	statuses, err := e.engine.Manager().Enumerate(context.Background())
	if err != nil {
		return err
	}

	ref := cpu.New(parallel.Sequential())
	refA, refB, err := operands(ref)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(e.out)
	table.SetHeader([]string{"Device", "Backend", "Op", "Result"})
	table.SetBorder(false)

	failures := 0
	for _, s := range statuses {
		if !s.Available {
			continue
		}
		b, err := e.engine.Open(s.Kind)
		if err != nil {
			return err
		}
		if b.Kind() != s.Kind {
			e.log.WithField("device", s.Kind).Warn("backend fell back, skipping")
			continue
		}
		a, bb, err := operands(b)
		if err != nil {
			return err
		}
		for _, c := range workload {
			result := compare(c, refA, refB, a, bb, tol)
			if result != "ok" {
				failures++
			}
			table.Append([]string{s.Kind.String(), b.Name(), c.op, result})
		}
	}
	table.Render()

	if failures > 0 {
		return errors.Wrapf(ErrMismatch, "%d checks failed", failures)
	}
	return nil
}

func compare(c check, refA, refB, a, b *tensor.Tensor, tol float32) string {
	want, err := c.run(refA, refB)
	if err != nil {
		return fmt.Sprintf("reference error: %v", err)
	}
	got, err := c.run(a, b)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	// Sums grow with the element count; compare them relative to magnitude.
	if got.Len() == 1 {
		w := want.Data()[0]
		tol *= max(1, float32(math.Abs(float64(w))))
	}
	if !want.AllClose(got, tol) {
		return "mismatch"
	}
	return "ok"
}
