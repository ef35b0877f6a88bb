package tensor

import "math"

// Add returns t + other. other must have t's shape, or be a [f] row when t
// is [b, f], in which case it is added to every row.
func (t *Tensor) Add(other *Tensor) (*Tensor, error) {
	if isRowBroadcast(t.shape, other.shape) {
		return t.rowBroadcast(other, func(x, y float32) float32 { return x + y })
	}
	if err := checkSameShape(t.shape, other.shape); err != nil {
		return nil, err
	}
	out, err := t.backend.Add(t.data, other.data)
	if err != nil {
		return nil, t.fault(err, "add")
	}
	return t.derive(out, t.shape)
}

// Sub returns t - other with the broadcasting rule of Add.
func (t *Tensor) Sub(other *Tensor) (*Tensor, error) {
	if isRowBroadcast(t.shape, other.shape) {
		return t.rowBroadcast(other, func(x, y float32) float32 { return x - y })
	}
	if err := checkSameShape(t.shape, other.shape); err != nil {
		return nil, err
	}
	out, err := t.backend.Sub(t.data, other.data)
	if err != nil {
		return nil, t.fault(err, "sub")
	}
	return t.derive(out, t.shape)
}

func (t *Tensor) rowBroadcast(row *Tensor, fn func(x, y float32) float32) (*Tensor, error) {
	features := t.shape[1]
	out := make([]float32, len(t.data))
	for i := range out {
		out[i] = fn(t.data[i], row.data[i%features])
	}
	return t.derive(out, t.shape)
}

// Mul returns the element-wise product. Shapes must be equal.
func (t *Tensor) Mul(other *Tensor) (*Tensor, error) {
	if err := checkSameShape(t.shape, other.shape); err != nil {
		return nil, err
	}
	out, err := t.backend.Multiply(t.data, other.data)
	if err != nil {
		return nil, t.fault(err, "mul")
	}
	return t.derive(out, t.shape)
}

// Div returns the element-wise quotient. Shapes must be equal; division by
// zero follows IEEE 754.
func (t *Tensor) Div(other *Tensor) (*Tensor, error) {
	if err := checkSameShape(t.shape, other.shape); err != nil {
		return nil, err
	}
	out, err := t.backend.Div(t.data, other.data)
	if err != nil {
		return nil, t.fault(err, "div")
	}
	return t.derive(out, t.shape)
}

// mapLocal applies fn to every element on the host.
func (t *Tensor) mapLocal(fn func(float32) float32) (*Tensor, error) {
	out := make([]float32, len(t.data))
	for i, v := range t.data {
		out[i] = fn(v)
	}
	return t.derive(out, t.shape)
}

// MulScalar multiplies every element by s.
func (t *Tensor) MulScalar(s float32) (*Tensor, error) {
	return t.mapLocal(func(x float32) float32 { return x * s })
}

// AddScalar adds s to every element.
func (t *Tensor) AddScalar(s float32) (*Tensor, error) {
	return t.mapLocal(func(x float32) float32 { return x + s })
}

// Clip clamps every element to [lo, hi].
func (t *Tensor) Clip(lo, hi float32) (*Tensor, error) {
	if lo > hi {
		return nil, &InvalidOperationError{Op: "clip", Reason: "min must not exceed max"}
	}
	return t.mapLocal(func(x float32) float32 {
		return max(lo, min(x, hi))
	})
}

// Log computes the natural logarithm. Non-positive inputs give -Inf or NaN.
func (t *Tensor) Log() (*Tensor, error) {
	return t.mapLocal(func(x float32) float32 { return float32(math.Log(float64(x))) })
}

// Neg negates every element.
func (t *Tensor) Neg() (*Tensor, error) {
	return t.mapLocal(func(x float32) float32 { return -x })
}

// Exp computes e^x element-wise.
func (t *Tensor) Exp() (*Tensor, error) {
	out, err := t.backend.Exp(t.data)
	if err != nil {
		return nil, t.fault(err, "exp")
	}
	return t.derive(out, t.shape)
}

// Pow raises every element to power.
func (t *Tensor) Pow(power float32) (*Tensor, error) {
	out, err := t.backend.Pow(t.data, power)
	if err != nil {
		return nil, t.fault(err, "pow")
	}
	return t.derive(out, t.shape)
}

// Sqrt computes the square root element-wise. Negative inputs give NaN.
func (t *Tensor) Sqrt() (*Tensor, error) {
	out, err := t.backend.Sqrt(t.data)
	if err != nil {
		return nil, t.fault(err, "sqrt")
	}
	return t.derive(out, t.shape)
}
