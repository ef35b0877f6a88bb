package backend

import "github.com/pkg/errors"

// Common errors.
var (
	// ErrUnavailable is wrapped by constructors when a device family is not
	// compiled in, no device is present, or a required artifact is missing.
	ErrUnavailable = errors.New("backend unavailable")

	ErrEmptyInput     = errors.New("empty input")
	ErrLengthMismatch = errors.New("buffer length mismatch")
)

// CheckBinary verifies that both operands of an element-wise operation have
// the same length.
func CheckBinary(op string, a, b []float32) error {
	if len(a) != len(b) {
		return errors.Wrapf(ErrLengthMismatch, "%s: %d vs %d", op, len(a), len(b))
	}
	return nil
}

// CheckMatMul verifies buffer lengths against the [m,k]x[k,n] dimensions.
func CheckMatMul(a, b []float32, m, k, n int) error {
	if m < 0 || k < 0 || n < 0 {
		return errors.Errorf("matmul: negative dimension %dx%dx%d", m, k, n)
	}
	if len(a) != m*k {
		return errors.Wrapf(ErrLengthMismatch, "matmul: lhs has %d elements, want %d", len(a), m*k)
	}
	if len(b) != k*n {
		return errors.Wrapf(ErrLengthMismatch, "matmul: rhs has %d elements, want %d", len(b), k*n)
	}
	return nil
}
