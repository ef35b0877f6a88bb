// Package serialization encodes tensors for storage and interchange.
//
// The binary encoding is little-endian:
//
//	[4 bytes: rank R (uint32)]
//	[R x 4 bytes: dimensions (uint32)]
//	[float32 elements, row-major]
//
// Marshal and Unmarshal work on whole buffers, where the element count is
// whatever follows the header. Encoder and Decoder frame a stream of
// tensors back to back, taking the element count from the shape.
//
// MarshalMsgpack and UnmarshalMsgpack exchange {shape, data} maps with
// msgpack peers. WriteSafeTensors and ReadSafeTensors store named float32
// tensors in the safetensors layout used by HuggingFace tooling.
//
// Decoding never panics on malformed input: every failure is an error and
// every decoded tensor passes the same validation as tensor.FromVec.
package serialization
