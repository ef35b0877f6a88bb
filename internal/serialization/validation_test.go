package serialization

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTensorOffsets(t *testing.T) {
	tests := []struct {
		name     string
		tensors  []TensorMeta
		dataSize int64
		wantType string
	}{
		{
			name: "adjacent regions",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: 100},
				{Name: "b", Offset: 100, Size: 200},
			},
			dataSize: 300,
		},
		{
			name: "overlap by one byte",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: 100},
				{Name: "b", Offset: 99, Size: 100},
			},
			dataSize: 300,
			wantType: "offset_overlap",
		},
		{
			name: "unsorted overlap",
			tensors: []TensorMeta{
				{Name: "b", Offset: 50, Size: 100},
				{Name: "a", Offset: 0, Size: 100},
			},
			dataSize: 300,
			wantType: "offset_overlap",
		},
		{
			name:     "past the end",
			tensors:  []TensorMeta{{Name: "a", Offset: 100, Size: 200}},
			dataSize: 250,
			wantType: "out_of_bounds",
		},
		{
			name:     "offset beyond data",
			tensors:  []TensorMeta{{Name: "a", Offset: 1000, Size: 0}},
			dataSize: 250,
			wantType: "out_of_bounds",
		},
		{
			name:     "negative size",
			tensors:  []TensorMeta{{Name: "a", Offset: 0, Size: -1}},
			dataSize: 250,
			wantType: "negative_offset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTensorOffsets(tt.tensors, tt.dataSize)
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.wantType, verr.Type)
		})
	}
}

func TestValidateTensorOffsetsTooMany(t *testing.T) {
	tensors := make([]TensorMeta, MaxTensorCount+1)
	err := ValidateTensorOffsets(tensors, 0)
	assert.ErrorIs(t, err, ErrTooManyTensors)
}

func TestValidateTensorName(t *testing.T) {
	bad := []string{
		"",
		"../../../etc/passwd",
		"..\\..\\windows\\system32",
		"layer/0/weight",
		"tensor\x00hidden",
		strings.Repeat("a", MaxTensorNameLen+1),
	}
	for _, name := range bad {
		assert.ErrorIs(t, ValidateTensorName(name), ErrInvalidTensorName, "%q", name)
	}

	for _, name := range []string{"weight", "layer.0.weight", "output:logits", "embedding-matrix"} {
		assert.NoError(t, ValidateTensorName(name), name)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Type: "offset_overlap", Tensor: "a", Tensor2: "b", Details: "regions [0-100] and [50-150] overlap"}
	assert.Equal(t, `offset_overlap: tensors "a" and "b": regions [0-100] and [50-150] overlap`, err.Error())

	err = &ValidationError{Type: "out_of_bounds", Tensor: "a", Details: "x"}
	assert.Equal(t, `out_of_bounds: tensor "a": x`, err.Error())

	err = &ValidationError{Type: "too_many_tensors", Details: "got 2, max 1"}
	assert.Equal(t, "too_many_tensors: got 2, max 1", err.Error())
}

func FuzzValidateTensorName(f *testing.F) {
	f.Add("normal_tensor_name")
	f.Add("../malicious")
	f.Add("\x00null_byte")

	f.Fuzz(func(_ *testing.T, name string) {
		_ = ValidateTensorName(name)
	})
}
