// Package tensor provides the immutable float32 tensor and its operations.
// Every operation validates shapes, dispatches to the tensor's backend (or a
// local loop) and returns a new tensor on the same backend.
package tensor

import (
	"github.com/pkg/errors"

	"github.com/born-ml/tensorcore/internal/backend"
	"github.com/born-ml/tensorcore/internal/device"
)

// Tensor is a dense row-major float32 array bound to a backend.
// Tensors are never modified after construction and are safe to share
// between goroutines.
type Tensor struct {
	data    []float32
	shape   Shape
	backend backend.Backend
}

// New creates a 2-D tensor from rows. Every row must have the length of the first.
func New(rows [][]float32, opts ...Option) (*Tensor, error) {
	if len(rows) == 0 {
		return nil, &InvalidOperationError{Op: "new", Reason: "no rows"}
	}
	cols := len(rows[0])
	if cols == 0 {
		return nil, &InvalidOperationError{Op: "new", Reason: "first row is empty"}
	}

	data := make([]float32, 0, len(rows)*cols)
	for _, row := range rows {
		if len(row) != cols {
			return nil, &InvalidDataLengthError{Expected: cols, Got: len(row)}
		}
		data = append(data, row...)
	}

	b, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	return &Tensor{data: data, shape: Shape{len(rows), cols}, backend: b}, nil
}

// FromVec creates a tensor of the given shape from a copy of data.
func FromVec(data []float32, shape Shape, opts ...Option) (*Tensor, error) {
	if err := validate(data, shape); err != nil {
		return nil, err
	}
	b, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	return &Tensor{data: append([]float32(nil), data...), shape: shape.Clone(), backend: b}, nil
}

func validate(data []float32, shape Shape) error {
	if err := shape.Validate(); err != nil {
		return &InvalidShapeError{Expected: nil, Got: shape.Clone()}
	}
	if n := shape.NumElements(); len(data) != n {
		return &InvalidDataLengthError{Expected: n, Got: len(data)}
	}
	return nil
}

// derive wraps a freshly computed buffer on t's backend, re-checking the
// length invariant. data must not be shared with anything else.
func (t *Tensor) derive(data []float32, shape Shape) (*Tensor, error) {
	if err := validate(data, shape); err != nil {
		return nil, err
	}
	return &Tensor{data: data, shape: shape, backend: t.backend}, nil
}

// fault wraps a backend error with the operation and backend name.
func (t *Tensor) fault(err error, op string) error {
	return errors.Wrapf(err, "%s on %s", op, t.backend.Name())
}

// Shape returns a copy of the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape.Clone()
}

// Data returns a copy of the tensor's elements in row-major order.
func (t *Tensor) Data() []float32 {
	return append([]float32(nil), t.data...)
}

// Len returns the number of elements.
func (t *Tensor) Len() int {
	return len(t.data)
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.shape)
}

// Backend returns the backend the tensor is bound to.
func (t *Tensor) Backend() backend.Backend {
	return t.backend
}

// Device returns the device family of the tensor's backend.
func (t *Tensor) Device() device.Kind {
	return t.backend.Kind()
}
