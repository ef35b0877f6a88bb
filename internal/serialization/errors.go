package serialization

import (
	"errors"
	"fmt"
)

// Decoding and encoding errors.
var (
	ErrTruncated         = errors.New("truncated tensor encoding")
	ErrTrailingBytes     = errors.New("trailing bytes after last element")
	ErrDimOverflow       = errors.New("dimension does not fit in 32 bits")
	ErrRankTooLarge      = errors.New("rank exceeds maximum")
	ErrTooManyElements   = errors.New("element count exceeds maximum")
	ErrHeaderTooLarge    = errors.New("header exceeds maximum size")
	ErrUnsupportedDType  = errors.New("unsupported dtype")
	ErrTooManyTensors    = errors.New("too many tensors in file")
	ErrInvalidTensorName = errors.New("invalid tensor name")
)

// ValidationError provides detailed information about a malformed safetensors header.
type ValidationError struct {
	Type    string // Type of error (e.g., "offset_overlap", "out_of_bounds")
	Tensor  string // Primary tensor name involved
	Tensor2 string // Secondary tensor name (for overlap errors)
	Details string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Tensor2 != "" {
		return fmt.Sprintf("%s: tensors %q and %q: %s", e.Type, e.Tensor, e.Tensor2, e.Details)
	}
	if e.Tensor != "" {
		return fmt.Sprintf("%s: tensor %q: %s", e.Type, e.Tensor, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}

// Unwrap maps name and count failures onto their sentinels.
func (e *ValidationError) Unwrap() error {
	switch e.Type {
	case "invalid_name", "name_too_long":
		return ErrInvalidTensorName
	case "too_many_tensors":
		return ErrTooManyTensors
	default:
		return nil
	}
}
