package main

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/born-ml/tensorcore/internal/serialization"
	"github.com/born-ml/tensorcore/internal/tensor"
)

const (
	formatBinary  = "binary"
	formatMsgpack = "msgpack"
)

// textTensor is the JSON form read by encode and written by decode.
type textTensor struct {
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

func checkFormat(format string) error {
	if format != formatBinary && format != formatMsgpack {
		return errors.Errorf("unknown format %q (want %s or %s)", format, formatBinary, formatMsgpack)
	}
	return nil
}

// encode reads a stream of JSON tensors. Binary output frames every tensor;
// msgpack output accepts exactly one.
func (e *env) encode(format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	opt := tensor.WithEngine(e.engine)

	dec := json.NewDecoder(e.in)
	enc := serialization.NewEncoder(e.out)
	count := 0
	for {
		var tt textTensor
		if err := dec.Decode(&tt); err == io.EOF {
			break
		} else if err != nil {
			return errors.Wrap(err, "parse input")
		}
		t, err := tensor.FromVec(tt.Data, tt.Shape, opt)
		if err != nil {
			return errors.Wrapf(err, "tensor %d", count)
		}
		count++

		if format == formatMsgpack {
			if count > 1 {
				return errors.New("msgpack output holds a single tensor")
			}
			b, err := serialization.MarshalMsgpack(t)
			if err != nil {
				return err
			}
			if _, err := e.out.Write(b); err != nil {
				return errors.Wrap(err, "write output")
			}
			continue
		}
		if err := enc.Encode(t); err != nil {
			return err
		}
	}
	e.log.WithField("tensors", count).Debug("encoded")
	return nil
}

// decode writes one JSON object per line for every tensor in the input.
func (e *env) decode(format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	opt := tensor.WithEngine(e.engine)
	out := json.NewEncoder(e.out)

	if format == formatMsgpack {
		b, err := io.ReadAll(e.in)
		if err != nil {
			return errors.Wrap(err, "read input")
		}
		t, err := serialization.UnmarshalMsgpack(b, opt)
		if err != nil {
			return err
		}
		return writeText(out, t)
	}

	dec := serialization.NewDecoder(e.in, opt)
	for {
		t, err := dec.Decode()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := writeText(out, t); err != nil {
			return err
		}
	}
}

func writeText(enc *json.Encoder, t *tensor.Tensor) error {
	tt := textTensor{Shape: t.Shape(), Data: t.Data()}
	if tt.Shape == nil {
		tt.Shape = []int{}
	}
	if tt.Data == nil {
		tt.Data = []float32{}
	}
	return errors.Wrap(enc.Encode(tt), "write output")
}
