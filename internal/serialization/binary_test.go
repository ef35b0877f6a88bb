package serialization

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tensorcore/internal/config"
	"github.com/born-ml/tensorcore/internal/device"
	"github.com/born-ml/tensorcore/internal/engine"
	"github.com/born-ml/tensorcore/internal/tensor"
)

var testEngine = engine.New(config.Default(), engine.WithManager(device.NewManager(nil)))

func onCPU() tensor.Option {
	return tensor.WithEngine(testEngine)
}

func mustVec(t testing.TB, data []float32, shape tensor.Shape) *tensor.Tensor {
	t.Helper()
	x, err := tensor.FromVec(data, shape, onCPU())
	require.NoError(t, err)
	return x
}

func encodeRaw(words ...uint32) []byte {
	var b []byte
	for _, w := range words {
		b = binary.LittleEndian.AppendUint32(b, w)
	}
	return b
}

func TestMarshalLayout(t *testing.T) {
	x := mustVec(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	b, err := Marshal(x)
	require.NoError(t, err)
	require.Len(t, b, 4*(1+2+6))

	want := encodeRaw(2, 2, 3)
	for _, v := range x.Data() {
		want = binary.LittleEndian.AppendUint32(want, math.Float32bits(v))
	}
	assert.Equal(t, want, b)
}

func TestRoundTripBitIdentical(t *testing.T) {
	values := []float32{
		0, float32(math.Copysign(0, -1)), 1.5, -3.25,
		math.MaxFloat32, math.SmallestNonzeroFloat32,
		float32(math.Inf(1)), float32(math.Inf(-1)),
		math.Float32frombits(0x7fc00001), // NaN with payload
	}

	tests := []struct {
		name  string
		data  []float32
		shape tensor.Shape
	}{
		{"vector", values, tensor.Shape{len(values)}},
		{"matrix", values[:8], tensor.Shape{2, 4}},
		{"rank3", values[:8], tensor.Shape{2, 2, 2}},
		{"scalar", values[2:3], tensor.Shape{}},
		{"empty", nil, tensor.Shape{3, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := mustVec(t, tt.data, tt.shape)
			b, err := Marshal(x)
			require.NoError(t, err)

			y, err := Unmarshal(b, onCPU())
			require.NoError(t, err)
			assert.Equal(t, x.Shape(), y.Shape())

			got := y.Data()
			require.Len(t, got, len(tt.data))
			for i := range tt.data {
				assert.Equal(t, math.Float32bits(tt.data[i]), math.Float32bits(got[i]), "element %d", i)
			}
		})
	}
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		wantErr error
	}{
		{"empty", nil, ErrTruncated},
		{"short rank", []byte{1, 0, 0}, ErrTruncated},
		{"header longer than input", encodeRaw(3, 2, 2), ErrTruncated},
		{"huge rank", encodeRaw(math.MaxUint32), ErrTruncated},
		{"trailing partial element", append(encodeRaw(1, 1, 0), 0xff), ErrTrailingBytes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal(tt.input, onCPU())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUnmarshalCountMismatch(t *testing.T) {
	// Shape [2, 2] with three elements.
	b := encodeRaw(2, 2, 2, 0, 0, 0)

	_, err := Unmarshal(b, onCPU())
	var lenErr *tensor.InvalidDataLengthError
	require.ErrorAs(t, err, &lenErr)
	assert.Equal(t, 4, lenErr.Expected)
	assert.Equal(t, 3, lenErr.Got)
}

func TestUnmarshalOverflowingShape(t *testing.T) {
	// 65536^4 elements overflows int; there is no payload.
	b := encodeRaw(4, 1<<16, 1<<16, 1<<16, 1<<16)

	_, err := Unmarshal(b, onCPU())
	var shapeErr *tensor.InvalidShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, tensor.Shape{1 << 16, 1 << 16, 1 << 16, 1 << 16}, shapeErr.Got)

	_, err = NewDecoder(bytes.NewReader(b), onCPU()).Decode()
	assert.ErrorIs(t, err, ErrTooManyElements)
}

func TestStream(t *testing.T) {
	a := mustVec(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := mustVec(t, []float32{5, 6, 7}, tensor.Shape{3})
	c := mustVec(t, nil, tensor.Shape{0})

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, x := range []*tensor.Tensor{a, b, c} {
		require.NoError(t, enc.Encode(x))
	}

	dec := NewDecoder(&buf, onCPU())
	for _, want := range []*tensor.Tensor{a, b, c} {
		got, err := dec.Decode()
		require.NoError(t, err)
		assert.Equal(t, want.Shape(), got.Shape())
		assert.Equal(t, want.Data(), got.Data())
	}
	_, err := dec.Decode()
	assert.Equal(t, io.EOF, err)
}

func TestDecoderErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		wantErr error
	}{
		{"partial rank", []byte{2, 0}, ErrTruncated},
		{"partial dims", encodeRaw(2, 3), ErrTruncated},
		{"partial elements", encodeRaw(1, 3, 0, 0), ErrTruncated},
		{"rank limit", encodeRaw(MaxRank + 1), ErrRankTooLarge},
		{"element limit", encodeRaw(2, 1<<16, 1<<16), ErrTooManyElements},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder(bytes.NewReader(tt.input), onCPU()).Decode()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func FuzzUnmarshal(f *testing.F) {
	f.Add([]byte{})
	f.Add(encodeRaw(2, 2, 2, 0, 0, 0, 0))
	f.Add(encodeRaw(math.MaxUint32, 1))
	f.Add(append(encodeRaw(1, 1), 1, 2))
	f.Add(encodeRaw(4, 1<<16, 1<<16, 1<<16, 1<<16))
	f.Add(encodeRaw(3, 0, math.MaxUint32, math.MaxUint32))

	f.Fuzz(func(t *testing.T, b []byte) {
		x, err := Unmarshal(b, onCPU())
		if err != nil {
			return
		}
		out, err := Marshal(x)
		require.NoError(t, err)
		assert.Equal(t, b, out)
	})
}
