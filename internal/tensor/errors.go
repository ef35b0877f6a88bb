package tensor

import (
	"fmt"

	"github.com/born-ml/tensorcore/internal/device"
)

// InvalidShapeError reports an operand whose shape violates an operation's contract.
type InvalidShapeError struct {
	Expected Shape
	Got      Shape
}

// Error implements the error interface.
func (e *InvalidShapeError) Error() string {
	return fmt.Sprintf("invalid shape: expected %v, got %v", []int(e.Expected), []int(e.Got))
}

// InvalidDataLengthError reports a buffer whose length does not match its shape.
type InvalidDataLengthError struct {
	Expected int
	Got      int
}

// Error implements the error interface.
func (e *InvalidDataLengthError) Error() string {
	return fmt.Sprintf("invalid data length: expected %d, got %d", e.Expected, e.Got)
}

// InvalidOperationError reports an operation that cannot run on its input.
type InvalidOperationError struct {
	Op     string
	Reason string
}

// Error implements the error interface.
func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid operation %q: %s", e.Op, e.Reason)
}

// InvalidAxisError reports an axis outside the tensor's rank.
type InvalidAxisError struct {
	Axis  int
	Shape Shape
}

// Error implements the error interface.
func (e *InvalidAxisError) Error() string {
	return fmt.Sprintf("invalid axis %d for tensor with shape %v", e.Axis, []int(e.Shape))
}

// MatrixMultiplicationError reports operands that cannot be multiplied.
type MatrixMultiplicationError struct {
	Left  Shape
	Right Shape
}

// Error implements the error interface.
func (e *MatrixMultiplicationError) Error() string {
	return fmt.Sprintf("invalid dimensions for matrix multiplication: left shape %v, right shape %v",
		[]int(e.Left), []int(e.Right))
}

// InvalidBackendError reports a request for a device family that does not exist.
type InvalidBackendError struct {
	Backend device.Kind
}

// Error implements the error interface.
func (e *InvalidBackendError) Error() string {
	return fmt.Sprintf("invalid backend: %v", e.Backend)
}
