package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/born-ml/tensorcore/internal/tensor"
)

const (
	metadataKey = "__metadata__"
	dtypeF32    = "F32"
)

// SafeTensorHeader is one tensor entry of a safetensors JSON header.
type SafeTensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// WriteSafeTensors writes tensors to w in safetensors format.
//
// Format:
// [8 bytes: header_size (uint64 LE)]
// [header_size bytes: JSON header]
// [tensor data: raw little-endian float32]
//
// Tensors are written in alphabetical order by name.
func WriteSafeTensors(w io.Writer, tensors map[string]*tensor.Tensor, metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]interface{}, len(names)+1)
	if len(metadata) > 0 {
		header[metadataKey] = metadata
	}

	var offset int64
	for _, name := range names {
		t := tensors[name]
		size := int64(t.Len()) * wordSize
		shape := make([]int64, t.Rank())
		for i, d := range t.Shape() {
			shape[i] = int64(d)
		}
		header[name] = SafeTensorHeader{
			DType:       dtypeF32,
			Shape:       shape,
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "marshal header")
	}

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return errors.Wrap(err, "write header size")
	}
	if _, err := bw.Write(headerJSON); err != nil {
		return errors.Wrap(err, "write header")
	}

	var word [wordSize]byte
	for _, name := range names {
		for _, v := range tensors[name].Data() {
			binary.LittleEndian.PutUint32(word[:], math.Float32bits(v))
			if _, err := bw.Write(word[:]); err != nil {
				return errors.Wrapf(err, "write tensor %s", name)
			}
		}
	}
	return errors.Wrap(bw.Flush(), "flush")
}

// SaveSafeTensors writes tensors to a new file at path.
func SaveSafeTensors(path string, tensors map[string]*tensor.Tensor, metadata map[string]string) (err error) {
	//nolint:gosec // G304: path comes from the caller
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create file")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "close file")
		}
	}()
	return WriteSafeTensors(f, tensors, metadata)
}

// ReadSafeTensors reads a safetensors stream. Only F32 tensors are
// supported. opts apply to every decoded tensor.
func ReadSafeTensors(r io.Reader, opts ...tensor.Option) (map[string]*tensor.Tensor, map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, readError(err, "header size")
	}
	if headerSize > MaxHeaderSize {
		return nil, nil, errors.Wrapf(ErrHeaderTooLarge, "%d bytes", headerSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, nil, readError(err, "header")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &raw); err != nil {
		return nil, nil, errors.Wrap(err, "parse header")
	}

	var metadata map[string]string
	if m, ok := raw[metadataKey]; ok {
		if err := json.Unmarshal(m, &metadata); err != nil {
			return nil, nil, errors.Wrap(err, "parse metadata")
		}
		delete(raw, metadataKey)
	}
	if len(raw) > MaxTensorCount {
		return nil, nil, &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(raw), MaxTensorCount),
		}
	}

	metas := make([]TensorMeta, 0, len(raw))
	for name, entry := range raw {
		meta, err := parseEntry(name, entry)
		if err != nil {
			return nil, nil, err
		}
		metas = append(metas, meta)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read data")
	}
	if err := ValidateTensorOffsets(metas, int64(len(data))); err != nil {
		return nil, nil, err
	}

	tensors := make(map[string]*tensor.Tensor, len(metas))
	for _, m := range metas {
		t, err := tensor.FromVec(decodeFloats(data[m.Offset:m.Offset+m.Size]), m.Shape, opts...)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "tensor %s", m.Name)
		}
		tensors[m.Name] = t
	}
	return tensors, metadata, nil
}

// LoadSafeTensors reads the safetensors file at path.
func LoadSafeTensors(path string, opts ...tensor.Option) (map[string]*tensor.Tensor, map[string]string, error) {
	//nolint:gosec // G304: path comes from the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open file")
	}
	defer func() { _ = f.Close() }()
	return ReadSafeTensors(bufio.NewReader(f), opts...)
}

func parseEntry(name string, entry json.RawMessage) (TensorMeta, error) {
	if err := ValidateTensorName(name); err != nil {
		return TensorMeta{}, err
	}
	var h SafeTensorHeader
	if err := json.Unmarshal(entry, &h); err != nil {
		return TensorMeta{}, errors.Wrapf(err, "parse tensor %s", name)
	}
	if h.DType != dtypeF32 {
		return TensorMeta{}, errors.Wrapf(ErrUnsupportedDType, "tensor %s has dtype %s", name, h.DType)
	}

	start, end := h.DataOffsets[0], h.DataOffsets[1]
	meta := TensorMeta{Name: name, Shape: make([]int, len(h.Shape)), Offset: start, Size: end - start}
	n := int64(1)
	for i, d := range h.Shape {
		if d < 0 || (d != 0 && n > meta.Size/wordSize/d+1) {
			return TensorMeta{}, &ValidationError{
				Type:    "size_mismatch",
				Tensor:  name,
				Details: fmt.Sprintf("shape %v does not fit %d bytes", h.Shape, meta.Size),
			}
		}
		meta.Shape[i] = int(d)
		n *= d
	}
	if n*wordSize != meta.Size {
		return TensorMeta{}, &ValidationError{
			Type:    "size_mismatch",
			Tensor:  name,
			Details: fmt.Sprintf("shape %v needs %d bytes, region has %d", h.Shape, n*wordSize, meta.Size),
		}
	}
	return meta, nil
}
