// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package serialize encodes tensors as compact little-endian binary, msgpack
// maps or safetensors files.
//
// Example:
//
//	b, err := serialize.Marshal(x)
//	...
//	y, err := serialize.Unmarshal(b)
package serialize

import (
	"io"

	"github.com/born-ml/tensorcore/internal/serialization"
	"github.com/born-ml/tensorcore/tensor"
)

// Decoding errors.
var (
	ErrTruncated     = serialization.ErrTruncated
	ErrTrailingBytes = serialization.ErrTrailingBytes
	ErrDimOverflow   = serialization.ErrDimOverflow
)

// Encoder writes tensors to a stream.
type Encoder = serialization.Encoder

// Decoder reads tensors written by an Encoder.
type Decoder = serialization.Decoder

// Marshal encodes t as rank, dimensions and elements.
func Marshal(t *tensor.Tensor) ([]byte, error) {
	return serialization.Marshal(t)
}

// Unmarshal decodes a buffer produced by Marshal.
func Unmarshal(b []byte, opts ...tensor.Option) (*tensor.Tensor, error) {
	return serialization.Unmarshal(b, opts...)
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return serialization.NewEncoder(w)
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader, opts ...tensor.Option) *Decoder {
	return serialization.NewDecoder(r, opts...)
}

// MarshalMsgpack encodes t as a {shape, data} msgpack map.
func MarshalMsgpack(t *tensor.Tensor) ([]byte, error) {
	return serialization.MarshalMsgpack(t)
}

// UnmarshalMsgpack decodes a {shape, data} msgpack map.
func UnmarshalMsgpack(b []byte, opts ...tensor.Option) (*tensor.Tensor, error) {
	return serialization.UnmarshalMsgpack(b, opts...)
}

// SaveSafeTensors writes named tensors to a safetensors file.
func SaveSafeTensors(path string, tensors map[string]*tensor.Tensor, metadata map[string]string) error {
	return serialization.SaveSafeTensors(path, tensors, metadata)
}

// LoadSafeTensors reads named float32 tensors from a safetensors file.
func LoadSafeTensors(path string, opts ...tensor.Option) (map[string]*tensor.Tensor, map[string]string, error) {
	return serialization.LoadSafeTensors(path, opts...)
}
