package tensor

import "math"

// Sum reduces a 2-D tensor along axis: axis 0 gives [1, cols], axis 1 gives [rows, 1].
func (t *Tensor) Sum(axis int) (*Tensor, error) {
	if err := checkAxis2D("sum", t.shape, axis); err != nil {
		return nil, err
	}
	return t.reduce2D(axis, 0, func(acc, x float32) float32 { return acc + x })
}

// MaxAlongAxis takes the maximum along axis with the shapes of Sum.
// Empty reductions yield -Inf.
func (t *Tensor) MaxAlongAxis(axis int) (*Tensor, error) {
	if err := checkAxis2D("max_along_axis", t.shape, axis); err != nil {
		return nil, err
	}
	return t.reduce2D(axis, float32(math.Inf(-1)), func(acc, x float32) float32 {
		if x > acc {
			return x
		}
		return acc
	})
}

func (t *Tensor) reduce2D(axis int, init float32, fn func(acc, x float32) float32) (*Tensor, error) {
	rows, cols := t.shape[0], t.shape[1]
	if axis == 0 {
		out := make([]float32, cols)
		for j := range out {
			acc := init
			for i := 0; i < rows; i++ {
				acc = fn(acc, t.data[i*cols+j])
			}
			out[j] = acc
		}
		return t.derive(out, Shape{1, cols})
	}

	out := make([]float32, rows)
	for i := range out {
		acc := init
		for _, x := range t.data[i*cols : (i+1)*cols] {
			acc = fn(acc, x)
		}
		out[i] = acc
	}
	return t.derive(out, Shape{rows, 1})
}

// SumAll adds every element.
func (t *Tensor) SumAll() (float32, error) {
	s, err := t.backend.Sum(t.data)
	if err != nil {
		return 0, t.fault(err, "sum_all")
	}
	return s, nil
}

// Mean returns the arithmetic mean of every element.
func (t *Tensor) Mean() (float32, error) {
	if len(t.data) == 0 {
		return 0, &InvalidOperationError{Op: "mean", Reason: "cannot compute mean of empty tensor"}
	}
	m, err := t.backend.Mean(t.data)
	if err != nil {
		return 0, t.fault(err, "mean")
	}
	return m, nil
}
