// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package loss provides scalar training losses over tensors.
//
// Example:
//
//	pred, _ := tensor.New([][]float32{{0.9, 0.1}})
//	target, _ := tensor.New([][]float32{{1, 0}})
//	l, err := loss.BinaryCrossEntropy(pred, target)
package loss

import (
	"github.com/born-ml/tensorcore/internal/loss"
	"github.com/born-ml/tensorcore/tensor"
)

// Epsilon keeps probabilities away from 0 and 1 before taking logarithms.
const Epsilon = loss.Epsilon

// ShapeMismatchError reports predictions and targets of different shapes.
type ShapeMismatchError = loss.ShapeMismatchError

// MSE computes the mean squared error.
func MSE(predictions, targets *tensor.Tensor) (float32, error) {
	return loss.MSE(predictions, targets)
}

// CrossEntropy computes the element-wise log loss of probabilities against targets.
func CrossEntropy(predictions, targets *tensor.Tensor) (float32, error) {
	return loss.CrossEntropy(predictions, targets)
}

// BinaryCrossEntropy computes the binary cross entropy of probabilities against 0/1 labels.
func BinaryCrossEntropy(predictions, targets *tensor.Tensor) (float32, error) {
	return loss.BinaryCrossEntropy(predictions, targets)
}
