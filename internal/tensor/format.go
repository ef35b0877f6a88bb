package tensor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// String returns a short description: shape, device and elements.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(shape=%v, device=%v, data=%s)", []int(t.shape), t.Device(), t.nested())
}

// Format implements fmt.Formatter. %v prints the elements as nested rows,
// %+v and %s print String.
func (t *Tensor) Format(f fmt.State, verb rune) {
	switch {
	case verb == 'v' && !f.Flag('+'):
		fmt.Fprint(f, t.nested())
	case verb == 'v' || verb == 's':
		fmt.Fprint(f, t.String())
	default:
		fmt.Fprintf(f, "%%!%c(*tensor.Tensor)", verb)
	}
}

// nested renders the elements with one bracket level per dimension.
func (t *Tensor) nested() string {
	if len(t.shape) == 0 {
		return formatElem(t.data[0])
	}
	var sb strings.Builder
	writeNested(&sb, t.data, t.shape, len(t.shape))
	return sb.String()
}

func writeNested(sb *strings.Builder, data []float32, shape Shape, rank int) {
	sb.WriteByte('[')
	if len(shape) == 1 {
		for i, v := range data {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(formatElem(v))
		}
		sb.WriteByte(']')
		return
	}

	stride := shape.ComputeStrides()[0]
	for i := 0; i < shape[0]; i++ {
		if i > 0 {
			sb.WriteByte('\n')
			sb.WriteString(strings.Repeat(" ", rank-len(shape)+1))
		}
		writeNested(sb, data[i*stride:(i+1)*stride], shape[1:], rank)
	}
	sb.WriteByte(']')
}

func formatElem(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

// AllClose reports whether other has the same shape and every element lies
// within tol of t's. NaNs compare equal to NaNs, infinities to infinities
// of the same sign.
func (t *Tensor) AllClose(other *Tensor, tol float32) bool {
	if !t.shape.Equal(other.shape) {
		return false
	}
	for i, a := range t.data {
		b := other.data[i]
		switch {
		case a == b:
		case math.IsNaN(float64(a)) && math.IsNaN(float64(b)):
		case float32(math.Abs(float64(a-b))) <= tol:
		default:
			return false
		}
	}
	return true
}
