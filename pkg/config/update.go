package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gnames/gn"
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
// Excludes runtime-only fields (HomeDir, Pretrained, EarlyStopping, SWAStart,
// TrainerOpts, StrictJoin, RunInference, Checkpoint, Seed, LRScheduler).
// Used for round-tripping config.yaml ↔ Config conversions.
func (c *Config) ToOptions() []Option {
	var res []Option
	var s string
	var i int
	var f float64

	s = c.Dataset.Dir
	if s != "" {
		res = append(res, OptDatasetDir(s))
	}

	s = c.Model.Backbone
	if s != "" {
		res = append(res, OptModelBackbone(s))
	}

	s = c.Training.CheckpointsDir
	if s != "" {
		res = append(res, OptCheckpointsDir(s))
	}
	i = c.Training.BatchSize
	if i > 0 {
		res = append(res, OptBatchSize(i))
	}
	s = c.Training.Optimizer
	if s != "" {
		res = append(res, OptOptimizer(s))
	}
	i = c.Training.ImageSize
	if i > 0 {
		res = append(res, OptImageSize(i))
	}
	f = c.Training.LearningRate
	if f > 0 {
		res = append(res, OptLearningRate(f))
	}
	f = c.Training.LabelSmoothing
	if f > 0 {
		res = append(res, OptLabelSmoothing(f))
	}
	i = c.Training.MaxEpochs
	if i > 0 {
		res = append(res, OptMaxEpochs(i))
	}
	i = c.Training.FreezeEpochs
	if i > 0 {
		res = append(res, OptFreezeEpochs(i))
	}
	f = c.Training.ValSplit
	if f > 0 {
		res = append(res, OptValSplit(f))
	}

	i = c.Predict.ImageSize
	if i > 0 {
		res = append(res, OptPredictImageSize(i))
	}
	i = c.Predict.BatchSize
	if i > 0 {
		res = append(res, OptPredictBatchSize(i))
	}

	s = c.Log.Format
	if s != "" {
		res = append(res, OptLogFormat(s))
	}
	s = c.Log.Level
	if s != "" {
		res = append(res, OptLogLevel(s))
	}
	s = c.Log.Destination
	if s != "" {
		res = append(res, OptLogDestination(s))
	}

	i = c.JobsNumber
	if i > 0 {
		res = append(res, OptJobsNumber(i))
	}
	return res
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		gn.Warn("<em>%s</em> cannot be empty, ignoring", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidFloat(name string, f float64) bool {
	res := f > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive, ignoring %v", name, f)
	}
	return res
}

func warnRange(name string, f float64) {
	gn.Warn("<em>%s</em> is out of range, ignoring %v", name, f)
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Model.Backbone":       {"cnn_s": s, "cnn_m": s, "cnn_l": s},
		"Training.Optimizer":   {"adam": s, "adamw": s, "sgd": s},
		"Training.LRScheduler": {"cosine": s, "exponential": s},
		"Log.Level":            {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":           {"json": s, "text": s},
		"Log.Destination":      {"file": s, "stderr": s, "stdout": s},
	}
	vals := slices.Sorted(maps.Keys(data[name]))
	var lines []string
	for _, v := range vals {
		line := fmt.Sprintf("  * %s", v)
		lines = append(lines, line)
	}
	if _, ok := data[name][val]; ok {
		return true
	} else {
		gn.Warn(
			"<em>%s</em> does not support '%s' as a value. "+
				"Valid values are: \n%s\nIgnoring...",
			[]string{name, val, strings.Join(lines, "\n")},
		)
		return false
	}
}
