package iomodel

import (
	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/train/losses"
)

// LabelSmoothingLoss returns a sparse categorical cross-entropy loss
// with label smoothing: the one-hot target is mixed with the uniform
// distribution at weight smoothing. A zero smoothing factor returns
// plain cross-entropy.
func LabelSmoothingLoss(
	smoothing float64,
) func(labels, predictions []*Node) *Node {
	if smoothing == 0 {
		return losses.SparseCategoricalCrossEntropyLogits
	}
	return func(labels, predictions []*Node) *Node {
		ce := losses.SparseCategoricalCrossEntropyLogits(labels, predictions)

		// Cross-entropy of the uniform target against the logits:
		// -mean(log-probabilities) per example.
		logits := predictions[0]
		logProbs := Log(Softmax(logits))
		uniform := Neg(ReduceMean(logProbs, -1))

		smoothed := Add(
			MulScalar(ce, 1-smoothing),
			MulScalar(uniform, smoothing),
		)
		return smoothed
	}
}
