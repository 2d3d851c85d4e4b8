package iomodel

import (
	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/types/exceptions"
	"github.com/gomlx/gomlx/types/shapes"
	"github.com/gomlx/gomlx/types/tensor"
)

// Inferer executes the classifier forward pass outside the training
// loop and returns hard class predictions.
type Inferer struct {
	exec *context.Exec
}

// NewInferer compiles an inference executor over the given context.
// The context variables are reused as-is, so the executor sees whatever
// weights training or a checkpoint left behind.
func NewInferer(
	manager *Manager, ctx *context.Context, c *Classifier,
) (*Inferer, error) {
	var exec *context.Exec
	err := exceptions.TryCatch[error](func() {
		exec = context.NewExec(manager, ctx.Reuse(),
			func(ctx *context.Context, images *Node) *Node {
				ctx.SetTraining(images.Graph(), false)
				logits := c.ModelGraph(ctx, nil, []*Node{images})[0]
				return ArgMax(logits, -1, shapes.Int32)
			})
	})
	if err != nil {
		return nil, err
	}
	return &Inferer{exec: exec}, nil
}

// Predict returns the predicted class of every image in the batch.
func (inf *Inferer) Predict(images tensor.Tensor) ([]int, error) {
	var preds []int
	err := exceptions.TryCatch[error](func() {
		res := inf.exec.Call(images)[0]
		ref := res.Local().AcquireData()
		defer ref.Release()
		preds = shapes.CastAsDType(ref.Flat(), shapes.Int64).([]int)
	})
	if err != nil {
		return nil, err
	}
	return preds, nil
}
