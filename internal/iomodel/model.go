// Package iomodel builds the classifier computation graphs for GoMLX.
//
// A classifier is a named convolutional backbone under the "backbone"
// context scope and a dense readout head under the "head" scope. The
// scope split is what makes two-phase fine-tuning possible: freezing
// the backbone is flipping the Trainable flag of every variable under
// its scope.
package iomodel

import (
	"fmt"
	"sort"
	"strings"

	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/layers"
	"github.com/gomlx/gomlx/types/shapes"
)

// DType used for model computation.
const DType = shapes.Float32

// Context scopes separating the pretrained feature extractor from the
// freshly initialized readout.
const (
	BackboneScope = "backbone"
	HeadScope     = "head"
)

// backboneSpec describes one conv-net stage layout: filters per stage,
// two strided convolutions per stage.
type backboneSpec struct {
	filters []int
	// hidden is the width of the readout's hidden layer.
	hidden int
}

// backbones is the registry of named backbones. Names follow
// small/medium/large capacity.
var backbones = map[string]backboneSpec{
	"cnn_s": {filters: []int{32, 64, 128}, hidden: 256},
	"cnn_m": {filters: []int{48, 96, 192, 384}, hidden: 512},
	"cnn_l": {filters: []int{64, 128, 256, 512}, hidden: 768},
}

// Backbones returns the sorted names of registered backbones.
func Backbones() []string {
	res := make([]string, 0, len(backbones))
	for name := range backbones {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// Classifier builds the model graph for a named backbone and a fixed
// number of classes.
type Classifier struct {
	backbone   string
	spec       backboneSpec
	numClasses int
	dropout    float64
}

// New creates a Classifier. The backbone name must be registered.
func New(backbone string, numClasses int) (*Classifier, error) {
	spec, ok := backbones[backbone]
	if !ok {
		return nil, UnknownBackboneError(backbone, Backbones())
	}
	if numClasses <= 0 {
		return nil, fmt.Errorf("classifier needs at least one class, got %d", numClasses)
	}
	return &Classifier{
		backbone:   backbone,
		spec:       spec,
		numClasses: numClasses,
		dropout:    0.1,
	}, nil
}

// Backbone returns the backbone name.
func (c *Classifier) Backbone() string { return c.backbone }

// NumClasses returns the classifier output width.
func (c *Classifier) NumClasses() int { return c.numClasses }

// ModelGraph builds the logits graph. It has the signature expected by
// train.NewTrainer: inputs[0] is the NHWC image batch; the returned
// slice holds one logits node shaped [batch, numClasses].
func (c *Classifier) ModelGraph(
	ctx *context.Context, spec any, inputs []*Node,
) []*Node {
	_ = spec // Not used.
	images := inputs[0]
	embed := c.backboneGraph(ctx.In(BackboneScope), images)
	logits := c.headGraph(ctx.In(HeadScope), embed)
	return []*Node{logits}
}

// backboneGraph stacks strided convolution stages and pools the
// spatial axes away, returning embeddings shaped [batch, features].
func (c *Classifier) backboneGraph(ctx *context.Context, images *Node) *Node {
	embed := images
	for ii, filters := range c.spec.filters {
		ctx := ctx.In(fmt.Sprintf("stage_%d", ii))
		// Strided conv halves the resolution, the second conv refines.
		embed = layers.Convolution(ctx.In("reduce"), embed).
			KernelSize(3).Filters(filters).Strides(2).Done()
		embed = layers.Relu(embed)
		embed = layers.Convolution(ctx.In("refine"), embed).
			KernelSize(3).Filters(filters).Strides(1).Done()
		embed = layers.Relu(embed)
		embed = layers.LayerNormalization(ctx, embed, -1).Done()
	}
	// Global average pool over height and width.
	return ReduceMean(embed, 1, 2)
}

// headGraph is the readout: a dense hidden layer with dropout and the
// final logits layer.
func (c *Classifier) headGraph(ctx *context.Context, embed *Node) *Node {
	g := embed.Graph()
	if c.dropout > 0 {
		embed = layers.Dropout(
			ctx.In("dropout"), embed, ConstAsDType(g, DType, c.dropout))
	}
	embed = layers.DenseWithBias(ctx.In("hidden"), embed, c.spec.hidden)
	embed = layers.Relu(embed)
	return layers.DenseWithBias(ctx.In("logits"), embed, c.numClasses)
}

// SetBackboneTrainable flips the Trainable flag of every variable under
// the backbone scope. Head variables always stay trainable.
func SetBackboneTrainable(ctx *context.Context, trainable bool) {
	prefix := context.ScopeSeparator + BackboneScope
	ctx.EnumerateVariables(func(v *context.Variable) {
		if strings.Contains(v.Scope(), prefix) {
			v.Trainable = trainable
		}
	})
}
