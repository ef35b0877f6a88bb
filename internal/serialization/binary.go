package serialization

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/born-ml/tensorcore/internal/tensor"
)

const wordSize = 4

// Stream limits. A whole buffer bounds itself; a stream does not.
const (
	MaxRank           = 1 << 16
	MaxStreamElements = 1 << 28
)

// Marshal encodes t as rank, dimensions and elements.
func Marshal(t *tensor.Tensor) ([]byte, error) {
	shape := t.Shape()
	if err := checkDims(shape); err != nil {
		return nil, err
	}
	data := t.Data()
	buf := make([]byte, 0, wordSize*(1+len(shape)+len(data)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(shape)))
	for _, d := range shape {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(d))
	}
	for _, v := range data {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf, nil
}

// Unmarshal decodes a buffer produced by Marshal. Every complete element
// after the header is data; the count must match the shape.
func Unmarshal(b []byte, opts ...tensor.Option) (*tensor.Tensor, error) {
	if len(b) < wordSize {
		return nil, errors.Wrapf(ErrTruncated, "need %d bytes for rank, got %d", wordSize, len(b))
	}
	rank := uint64(binary.LittleEndian.Uint32(b))
	body := b[wordSize:]
	if rank*wordSize > uint64(len(body)) {
		return nil, errors.Wrapf(ErrTruncated, "rank %d needs %d header bytes, got %d", rank, rank*wordSize, len(body))
	}

	shape := decodeShape(body[:rank*wordSize])
	payload := body[rank*wordSize:]
	if rem := len(payload) % wordSize; rem != 0 {
		return nil, errors.Wrapf(ErrTrailingBytes, "%d bytes", rem)
	}
	return tensor.FromVec(decodeFloats(payload), shape, opts...)
}

// Encoder writes tensors to a stream.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one tensor.
func (e *Encoder) Encode(t *tensor.Tensor) error {
	b, err := Marshal(t)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(b); err != nil {
		return errors.Wrap(err, "write tensor")
	}
	return nil
}

// Decoder reads tensors written by an Encoder.
type Decoder struct {
	r    io.Reader
	opts []tensor.Option
}

// NewDecoder returns a decoder reading from r. opts apply to every decoded tensor.
func NewDecoder(r io.Reader, opts ...tensor.Option) *Decoder {
	return &Decoder{r: r, opts: opts}
}

// Decode reads the next tensor. It returns io.EOF when the stream ends
// cleanly between tensors and ErrTruncated when it ends inside one.
func (d *Decoder) Decode() (*tensor.Tensor, error) {
	var word [wordSize]byte
	if _, err := io.ReadFull(d.r, word[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, readError(err, "rank")
	}
	rank := binary.LittleEndian.Uint32(word[:])
	if rank > MaxRank {
		return nil, errors.Wrapf(ErrRankTooLarge, "rank %d, max %d", rank, MaxRank)
	}

	header := make([]byte, int(rank)*wordSize)
	if _, err := io.ReadFull(d.r, header); err != nil {
		return nil, readError(err, "dimensions")
	}
	shape := decodeShape(header)

	n := uint64(1)
	for _, dim := range shape {
		if dim != 0 && n > MaxStreamElements/uint64(dim) {
			return nil, errors.Wrapf(ErrTooManyElements, "shape %v", []int(shape))
		}
		n *= uint64(dim)
	}
	if n > MaxStreamElements {
		return nil, errors.Wrapf(ErrTooManyElements, "shape %v", []int(shape))
	}

	payload := make([]byte, int(n)*wordSize)
	if _, err := io.ReadFull(d.r, payload); err != nil {
		return nil, readError(err, "elements")
	}
	return tensor.FromVec(decodeFloats(payload), shape, d.opts...)
}

func readError(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errors.Wrapf(ErrTruncated, "reading %s", what)
	}
	return errors.Wrapf(err, "read %s", what)
}

func checkDims(shape tensor.Shape) error {
	if uint64(len(shape)) > math.MaxUint32 {
		return errors.Wrapf(ErrDimOverflow, "rank %d", len(shape))
	}
	for i, d := range shape {
		if uint64(d) > math.MaxUint32 {
			return errors.Wrapf(ErrDimOverflow, "dimension %d is %d", i, d)
		}
	}
	return nil
}

// decodeShape reads len(b)/4 dimensions. On 32-bit platforms a dimension
// that overflows int wraps negative and is rejected by shape validation.
func decodeShape(b []byte) tensor.Shape {
	shape := make(tensor.Shape, len(b)/wordSize)
	for i := range shape {
		shape[i] = int(binary.LittleEndian.Uint32(b[i*wordSize:]))
	}
	return shape
}

func decodeFloats(b []byte) []float32 {
	data := make([]float32, len(b)/wordSize)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*wordSize:]))
	}
	return data
}
