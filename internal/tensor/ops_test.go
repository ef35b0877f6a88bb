package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tensorcore/internal/backend/backendtest"
	"github.com/born-ml/tensorcore/internal/device"
)

func TestMatMul(t *testing.T) {
	a := mustNew(t, [][]float32{{1, 2}, {3, 4}})
	b := mustNew(t, [][]float32{{5, 6}, {7, 8}})

	c, err := a.MatMul(b)
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 2}, c.Shape())
	assert.Equal(t, []float32{19, 22, 43, 50}, c.Data())
}

func TestMatMulMismatch(t *testing.T) {
	a := mustVec(t, make([]float32, 6), Shape{2, 3})
	b := mustVec(t, make([]float32, 8), Shape{4, 2})

	_, err := a.MatMul(b)
	var mmErr *MatrixMultiplicationError
	require.ErrorAs(t, err, &mmErr)
	assert.Equal(t, Shape{2, 3}, mmErr.Left)
	assert.Equal(t, Shape{4, 2}, mmErr.Right)

	v := mustVec(t, make([]float32, 3), Shape{3})
	_, err = a.MatMul(v)
	assert.ErrorAs(t, err, &mmErr, "rank 1 rhs")
}

func TestTranspose(t *testing.T) {
	a := mustNew(t, [][]float32{{1, 2, 3}, {4, 5, 6}})

	at, err := a.Transpose()
	require.NoError(t, err)
	assert.Equal(t, Shape{3, 2}, at.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, at.Data())

	back, err := at.Transpose()
	require.NoError(t, err)
	assert.True(t, back.AllClose(a, 0))
}

func TestTransposeRequires2D(t *testing.T) {
	v := mustVec(t, []float32{1, 2, 3}, Shape{3})
	_, err := v.Transpose()
	var shapeErr *InvalidShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, Shape{2}, shapeErr.Expected)
	assert.Equal(t, Shape{3}, shapeErr.Got)
}

func TestReshape(t *testing.T) {
	a := mustVec(t, []float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})

	r, err := a.Reshape(Shape{3, 2})
	require.NoError(t, err)
	assert.Equal(t, Shape{3, 2}, r.Shape())
	assert.Equal(t, a.Data(), r.Data())

	r, err = a.Reshape(Shape{6})
	require.NoError(t, err)
	assert.Equal(t, a.Data(), r.Data())

	_, err = a.Reshape(Shape{4, 2})
	var shapeErr *InvalidShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, Shape{4, 2}, shapeErr.Expected)
	assert.Equal(t, Shape{6}, shapeErr.Got)
}

func TestReshapeEmptyToOverflowingShape(t *testing.T) {
	empty := mustVec(t, nil, Shape{0})

	_, err := empty.Reshape(Shape{0, math.MaxInt/2 + 1, 4})
	var shapeErr *InvalidShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, Shape{0}, shapeErr.Got)

	r, err := empty.Reshape(Shape{math.MaxInt, 0})
	require.NoError(t, err)
	assert.Equal(t, Shape{math.MaxInt, 0}, r.Shape())
}

func TestAddSub(t *testing.T) {
	a := mustNew(t, [][]float32{{1, 2}, {3, 4}})
	b := mustNew(t, [][]float32{{10, 20}, {30, 40}})

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, []float32{11, 22, 33, 44}, sum.Data())

	diff, err := b.Sub(a)
	require.NoError(t, err)
	assert.Equal(t, []float32{9, 18, 27, 36}, diff.Data())
}

func TestRowBroadcast(t *testing.T) {
	rec := backendtest.New(device.CPU)
	a, err := New([][]float32{{1, 2}, {3, 4}}, WithBackend(rec))
	require.NoError(t, err)
	row, err := FromVec([]float32{10, 20}, Shape{2}, WithBackend(rec))
	require.NoError(t, err)

	sum, err := a.Add(row)
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 2}, sum.Shape())
	assert.Equal(t, []float32{11, 22, 13, 24}, sum.Data())

	diff, err := a.Sub(row)
	require.NoError(t, err)
	assert.Equal(t, []float32{-9, -18, -7, -16}, diff.Data())

	assert.Empty(t, rec.Calls(), "row broadcast runs locally")
}

func TestBinaryShapeMismatch(t *testing.T) {
	a := mustVec(t, make([]float32, 6), Shape{2, 3})
	b := mustVec(t, make([]float32, 6), Shape{3, 2})
	row := mustVec(t, make([]float32, 3), Shape{3})

	ops := map[string]func(*Tensor) (*Tensor, error){
		"add": a.Add, "sub": a.Sub, "mul": a.Mul, "div": a.Div,
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			_, err := op(b)
			var shapeErr *InvalidShapeError
			require.ErrorAs(t, err, &shapeErr)
			assert.Equal(t, Shape{2, 3}, shapeErr.Expected)
			assert.Equal(t, Shape{3, 2}, shapeErr.Got)
		})
	}

	// Mul and Div never broadcast.
	_, err := a.Mul(row)
	assert.Error(t, err)
	_, err = a.Div(row)
	assert.Error(t, err)

	// Broadcasting is only lhs [b,f] with rhs [f].
	_, err = row.Add(a)
	assert.Error(t, err)
}

func TestMulDiv(t *testing.T) {
	a := mustNew(t, [][]float32{{1, 2}, {3, 4}})
	b := mustNew(t, [][]float32{{2, 2}, {0, 8}})

	p, err := a.Mul(b)
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 4, 0, 32}, p.Data())

	q, err := a.Div(b)
	require.NoError(t, err)
	d := q.Data()
	assert.Equal(t, float32(0.5), d[0])
	assert.True(t, math.IsInf(float64(d[2]), 1))
	assert.Equal(t, float32(0.5), d[3])
}

func TestScalarOps(t *testing.T) {
	a := mustNew(t, [][]float32{{1, -2}, {3, -4}})

	x, err := a.MulScalar(2)
	require.NoError(t, err)
	assert.Equal(t, []float32{2, -4, 6, -8}, x.Data())

	x, err = a.AddScalar(1)
	require.NoError(t, err)
	assert.Equal(t, []float32{2, -1, 4, -3}, x.Data())

	x, err = a.Neg()
	require.NoError(t, err)
	assert.Equal(t, []float32{-1, 2, -3, 4}, x.Data())

	x, err = a.Clip(-1, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, -1, 2, -1}, x.Data())

	_, err = a.Clip(2, -1)
	assert.Error(t, err)
}

func TestLocalOpsSkipBackend(t *testing.T) {
	rec := backendtest.New(device.CPU)
	a, err := FromVec([]float32{1, 2, 3, 4}, Shape{2, 2}, WithBackend(rec))
	require.NoError(t, err)

	_, _ = a.MulScalar(2)
	_, _ = a.AddScalar(2)
	_, _ = a.Clip(0, 1)
	_, _ = a.Log()
	_, _ = a.Neg()
	_, _ = a.Transpose()
	_, _ = a.Reshape(Shape{4})
	_, _ = a.Sum(0)
	_, _ = a.MaxAlongAxis(1)
	assert.Empty(t, rec.Calls())

	_, _ = a.Exp()
	_, _ = a.Pow(2)
	_, _ = a.Sqrt()
	_, _ = a.Mean()
	_, _ = a.SumAll()
	_, _ = a.MatMul(a)
	_, _ = a.Add(a)
	_, _ = a.Mul(a)
	assert.Equal(t, []string{"exp", "pow", "sqrt", "mean", "sum", "matmul", "add", "mul"}, rec.Calls())
}

func TestUnary(t *testing.T) {
	a := mustVec(t, []float32{0, 1, 4}, Shape{3})

	e, err := a.Exp()
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{1, float32(math.E), float32(math.Exp(4))}, e.Data(), 1e-4)

	s, err := a.Sqrt()
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 2}, s.Data())

	p, err := a.Pow(2)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 16}, p.Data())

	l, err := a.Log()
	require.NoError(t, err)
	assert.True(t, math.IsInf(float64(l.Data()[0]), -1))
	assert.Equal(t, float32(0), l.Data()[1])

	neg := mustVec(t, []float32{-1}, Shape{1})
	s, err = neg.Sqrt()
	require.NoError(t, err)
	assert.True(t, math.IsNaN(float64(s.Data()[0])))
}
