package tensor

// MatMul returns the matrix product of two 2-D tensors, [m,k] @ [k,n] -> [m,n].
func (t *Tensor) MatMul(other *Tensor) (*Tensor, error) {
	if err := checkMatMul(t.shape, other.shape); err != nil {
		return nil, err
	}
	m, k, n := t.shape[0], t.shape[1], other.shape[1]
	out, err := t.backend.MatMul(t.data, other.data, m, k, n)
	if err != nil {
		return nil, t.fault(err, "matmul")
	}
	return t.derive(out, Shape{m, n})
}

// Transpose swaps the axes of a 2-D tensor.
func (t *Tensor) Transpose() (*Tensor, error) {
	if len(t.shape) != 2 {
		return nil, &InvalidShapeError{Expected: Shape{2}, Got: t.shape.Clone()}
	}
	m, n := t.shape[0], t.shape[1]
	out := make([]float32, len(t.data))
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			out[j*m+i] = t.data[i*n+j]
		}
	}
	return t.derive(out, Shape{n, m})
}

// Reshape returns a tensor with the same elements in the same order and a
// new shape. The element buffer is shared; neither tensor can modify it.
func (t *Tensor) Reshape(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil || shape.NumElements() != len(t.data) {
		return nil, &InvalidShapeError{Expected: shape.Clone(), Got: Shape{len(t.data)}}
	}
	return &Tensor{data: t.data, shape: shape.Clone(), backend: t.backend}, nil
}
