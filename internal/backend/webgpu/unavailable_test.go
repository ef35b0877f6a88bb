//go:build !windows

package webgpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/born-ml/tensorcore/internal/backend"
)

func TestUnavailable(t *testing.T) {
	assert.False(t, Compiled)
	assert.False(t, Available())

	b, err := New()
	assert.Nil(t, b)
	assert.ErrorIs(t, err, backend.ErrUnavailable)
}
