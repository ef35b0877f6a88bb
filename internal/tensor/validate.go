package tensor

// Shape checks run before any backend dispatch.

// isRowBroadcast reports whether rhs is a [f] row added to every row of a [b, f] lhs.
func isRowBroadcast(lhs, rhs Shape) bool {
	return len(lhs) == 2 && len(rhs) == 1 && lhs[1] == rhs[0]
}

func checkSameShape(lhs, rhs Shape) error {
	if !lhs.Equal(rhs) {
		return &InvalidShapeError{Expected: lhs.Clone(), Got: rhs.Clone()}
	}
	return nil
}

func checkMatMul(lhs, rhs Shape) error {
	if len(lhs) != 2 || len(rhs) != 2 || lhs[1] != rhs[0] {
		return &MatrixMultiplicationError{Left: lhs.Clone(), Right: rhs.Clone()}
	}
	return nil
}

// checkAxis2D validates an axis reduction: the axis is checked against the
// rank first, then the rank itself.
func checkAxis2D(op string, s Shape, axis int) error {
	if axis < 0 || axis >= len(s) {
		return &InvalidAxisError{Axis: axis, Shape: s.Clone()}
	}
	if len(s) != 2 {
		return &InvalidOperationError{Op: op, Reason: "operation currently only supports 2D tensors"}
	}
	return nil
}
