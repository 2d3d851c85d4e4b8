package iotrain

import (
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/types/shapes"
	"github.com/gomlx/gomlx/types/tensor"
)

// swaAverager keeps a running mean of the trainable model weights for
// stochastic weight averaging. Accumulation happens on the host at
// epoch boundaries; the averaged weights are written back once at the
// end of the run.
//
// Counts are per variable: a variable that joins the trainable set
// late, as backbone variables do after the unfreeze, averages only
// over the epochs it was actually observed.
type swaAverager struct {
	n      int
	mean   map[string][]float64
	counts map[string]int
}

func newSWAAverager() *swaAverager {
	return &swaAverager{
		mean:   make(map[string][]float64),
		counts: make(map[string]int),
	}
}

// Steps returns how many epochs were folded into the average.
func (s *swaAverager) Steps() int { return s.n }

// Accumulate folds the current trainable float32 variables into the
// running mean. Optimizer state and frozen variables are skipped.
func (s *swaAverager) Accumulate(ctx *context.Context) {
	s.n++
	ctx.EnumerateVariables(func(v *context.Variable) {
		if !v.Trainable {
			return
		}
		val := v.Value()
		if val.Shape().DType != shapes.Float32 {
			return
		}
		ref := val.Local().AcquireData()
		defer ref.Release()
		flat := shapes.CastAsDType(ref.Flat(), shapes.Float64).([]float64)
		s.fold(varKey(v), flat)
	})
}

// fold adds one observation of a variable to its running mean.
func (s *swaAverager) fold(key string, x []float64) {
	s.counts[key]++
	mean, ok := s.mean[key]
	if !ok {
		mean = make([]float64, len(x))
		s.mean[key] = mean
	}
	foldMean(mean, x, s.counts[key])
}

// Apply writes the averaged weights back into the context variables.
func (s *swaAverager) Apply(ctx *context.Context) {
	if s.n == 0 {
		return
	}
	ctx.EnumerateVariables(func(v *context.Variable) {
		mean, ok := s.mean[varKey(v)]
		if !ok {
			return
		}
		dims := v.Value().Shape().Dimensions
		flat := make([]float32, len(mean))
		for i, x := range mean {
			flat[i] = float32(x)
		}
		v.SetValue(tensor.FromFlatDataAndDimensions(flat, dims...))
	})
}

func varKey(v *context.Variable) string {
	return v.Scope() + context.ScopeSeparator + v.Name()
}

// foldMean updates the running mean in place with the n-th observation.
func foldMean(mean, x []float64, n int) {
	for i := range mean {
		mean[i] += (x[i] - mean[i]) / float64(n)
	}
}
