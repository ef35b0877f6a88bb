// Package loss computes scalar training losses from prediction and target tensors.
//
// The losses are built only on tensor operations, so they run on whichever
// backend the predictions are bound to.
package loss

import (
	"fmt"
	"math"

	"github.com/born-ml/tensorcore/internal/tensor"
)

// Epsilon keeps probabilities away from 0 and 1 before taking logarithms.
const Epsilon = 1e-15

// ShapeMismatchError reports predictions and targets of different shapes.
type ShapeMismatchError struct {
	Expected tensor.Shape // predictions
	Got      tensor.Shape // targets
}

// Error implements the error interface.
func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("loss: invalid shape: expected %v, got %v", []int(e.Expected), []int(e.Got))
}

func checkShapes(predictions, targets *tensor.Tensor) error {
	if !predictions.Shape().Equal(targets.Shape()) {
		return &ShapeMismatchError{Expected: predictions.Shape(), Got: targets.Shape()}
	}
	return nil
}

// MSE computes mean((predictions - targets)²).
//
// Example:
//
//	pred, _ := tensor.New([][]float32{{0.5, 0.5}})
//	target, _ := tensor.New([][]float32{{1, 0}})
//	l, _ := loss.MSE(pred, target) // 0.25
func MSE(predictions, targets *tensor.Tensor) (float32, error) {
	if err := checkShapes(predictions, targets); err != nil {
		return 0, err
	}
	diff, err := predictions.Sub(targets)
	if err != nil {
		return 0, err
	}
	squared, err := diff.Mul(diff)
	if err != nil {
		return 0, err
	}
	return squared.Mean()
}

// CrossEntropy computes the element-wise log loss
//
//	-mean(y·log(p) + (1-y)·log(1-p))
//
// with p clipped to [Epsilon, 1-Epsilon]. For a one-hot target row this
// equals the binary cross entropy of every class against the rest.
func CrossEntropy(predictions, targets *tensor.Tensor) (float32, error) {
	if err := checkShapes(predictions, targets); err != nil {
		return 0, err
	}
	return logLoss(predictions, targets)
}

// BinaryCrossEntropy computes -1/N · Σ(y·log(p) + (1-y)·log(1-p)) for
// predicted probabilities p and binary labels y.
func BinaryCrossEntropy(predictions, targets *tensor.Tensor) (float32, error) {
	if err := checkShapes(predictions, targets); err != nil {
		return 0, err
	}
	return logLoss(predictions, targets)
}

// clipBounds returns [Epsilon, 1-Epsilon] as float32. 1-Epsilon rounds to 1
// in float32, so the upper bound is the largest float32 below 1.
func clipBounds() (lo, hi float32) {
	lo, hi = Epsilon, float32(1-Epsilon)
	if hi >= 1 {
		hi = math.Nextafter32(1, 0)
	}
	return lo, hi
}

func logLoss(predictions, targets *tensor.Tensor) (float32, error) {
	lo, hi := clipBounds()
	p, err := predictions.Clip(lo, hi)
	if err != nil {
		return 0, err
	}

	logP, err := p.Log()
	if err != nil {
		return 0, err
	}
	oneMinusP, err := complement(p)
	if err != nil {
		return 0, err
	}
	log1mP, err := oneMinusP.Log()
	if err != nil {
		return 0, err
	}
	oneMinusY, err := complement(targets)
	if err != nil {
		return 0, err
	}

	pos, err := targets.Mul(logP)
	if err != nil {
		return 0, err
	}
	neg, err := oneMinusY.Mul(log1mP)
	if err != nil {
		return 0, err
	}
	sum, err := pos.Add(neg)
	if err != nil {
		return 0, err
	}
	mean, err := sum.Mean()
	if err != nil {
		return 0, err
	}
	return -mean, nil
}

// complement computes 1 - t.
func complement(t *tensor.Tensor) (*tensor.Tensor, error) {
	neg, err := t.Neg()
	if err != nil {
		return nil, err
	}
	return neg.AddScalar(1)
}
