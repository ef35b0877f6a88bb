package serialization

import (
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack"

	"github.com/born-ml/tensorcore/internal/tensor"
)

// wireTensor is the msgpack map exchanged with other services.
type wireTensor struct {
	Shape []int     `msgpack:"shape"`
	Data  []float32 `msgpack:"data"`
}

// MarshalMsgpack encodes t as a {shape, data} map.
func MarshalMsgpack(t *tensor.Tensor) ([]byte, error) {
	b, err := msgpack.Marshal(&wireTensor{Shape: t.Shape(), Data: t.Data()})
	if err != nil {
		return nil, errors.Wrap(err, "encode msgpack tensor")
	}
	return b, nil
}

// UnmarshalMsgpack decodes a {shape, data} map. The result is validated like
// any tensor built with FromVec.
func UnmarshalMsgpack(b []byte, opts ...tensor.Option) (*tensor.Tensor, error) {
	var w wireTensor
	if err := msgpack.Unmarshal(b, &w); err != nil {
		return nil, errors.Wrap(err, "decode msgpack tensor")
	}
	return tensor.FromVec(w.Data, w.Shape, opts...)
}
