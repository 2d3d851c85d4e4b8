package config_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gnames/herbid/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	tempHome := t.TempDir()

	tests := []struct {
		msg string
		fn  func(string) string
		res string
	}{
		{
			msg: "config dir",
			fn:  config.ConfigDir,
			res: filepath.Join(tempHome, ".config", "herbid"),
		},
		{
			msg: "cache dir",
			fn:  config.CacheDir,
			res: filepath.Join(tempHome, ".cache", "herbid"),
		},
		{
			msg: "log dir",
			fn:  config.LogDir,
			res: filepath.Join(tempHome, ".local", "share", "herbid", "logs"),
		},
		{
			msg: "track file",
			fn:  config.TrackFilePath,
			res: filepath.Join(tempHome, ".cache", "herbid", "runs.db"),
		},
	}

	for _, v := range tests {
		res := v.fn(tempHome)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestNew(t *testing.T) {
	cfg := config.New()

	t.Run("creates valid default config", func(t *testing.T) {
		require.NotNil(t, cfg)

		// Model and training defaults
		assert.Equal(t, "cnn_m", cfg.Model.Backbone)
		assert.Equal(t, 24, cfg.Training.BatchSize)
		assert.Equal(t, "adamw", cfg.Training.Optimizer)
		assert.Equal(t, 320, cfg.Training.ImageSize)
		assert.Equal(t, 5e-3, cfg.Training.LearningRate)
		assert.Equal(t, 0.01, cfg.Training.LabelSmoothing)
		assert.Equal(t, 20, cfg.Training.MaxEpochs)
		assert.Equal(t, 2, cfg.Training.FreezeEpochs)
		assert.Equal(t, 0.1, cfg.Training.ValSplit)
		assert.Nil(t, cfg.Training.EarlyStopping)
		assert.Nil(t, cfg.Training.SWAStart)

		// Inference defaults use a higher resolution
		assert.Equal(t, 384, cfg.Predict.ImageSize)
		assert.Equal(t, 16, cfg.Predict.BatchSize)
		assert.True(t, cfg.Predict.RunInference)

		// Log defaults
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "file", cfg.Log.Destination)

		// JobsNumber defaults to CPU count
		assert.Equal(t, runtime.NumCPU(), cfg.JobsNumber)
	})
}

func TestOptionBackbone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "sets valid backbone",
			input:    "cnn_l",
			expected: "cnn_l",
		},
		{
			name:     "normalizes case",
			input:    "CNN_S",
			expected: "cnn_s",
		},
		{
			name:     "rejects unknown backbone",
			input:    "resnet50",
			expected: "cnn_m",
		},
		{
			name:     "rejects empty string",
			input:    "",
			expected: "cnn_m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptModelBackbone(tt.input)})
			assert.Equal(t, tt.expected, cfg.Model.Backbone)
		})
	}
}

func TestOptionValSplit(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"sets valid fraction", 0.2, 0.2},
		{"rejects zero", 0, 0.1},
		{"rejects one", 1, 0.1},
		{"rejects negative", -0.5, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptValSplit(tt.input)})
			assert.Equal(t, tt.expected, cfg.Training.ValSplit)
		})
	}
}

func TestOptionLabelSmoothing(t *testing.T) {
	cfg := config.New()

	// zero disables smoothing
	cfg.Update([]config.Option{config.OptLabelSmoothing(0)})
	assert.Equal(t, 0.0, cfg.Training.LabelSmoothing)

	// out-of-range values are rejected
	cfg.Update([]config.Option{config.OptLabelSmoothing(1.5)})
	assert.Equal(t, 0.0, cfg.Training.LabelSmoothing)
}

func TestOptionSWAStart(t *testing.T) {
	cfg := config.New()

	frac := 0.75
	cfg.Update([]config.Option{config.OptSWAStart(&frac)})
	require.NotNil(t, cfg.Training.SWAStart)
	assert.Equal(t, 0.75, *cfg.Training.SWAStart)

	// out-of-range fraction is rejected
	cfg = config.New()
	bad := 1.5
	cfg.Update([]config.Option{config.OptSWAStart(&bad)})
	assert.Nil(t, cfg.Training.SWAStart)
}

func TestOptionRuntimeOnly(t *testing.T) {
	cfg := config.New()
	delta := 0.001
	cfg.Update([]config.Option{
		config.OptDatasetStrictJoin(true),
		config.OptModelPretrained(true),
		config.OptModelPretrainedDir("/tmp/base"),
		config.OptLRScheduler("cosine"),
		config.OptEarlyStopping(&delta),
		config.OptSeed(7),
		config.OptTrainerOpts(map[string]string{"num_threads": "4"}),
		config.OptRunInference(false),
	})

	assert.True(t, cfg.Dataset.StrictJoin)
	assert.True(t, cfg.Model.Pretrained)
	assert.Equal(t, "/tmp/base", cfg.Model.PretrainedDir)
	assert.Equal(t, "cosine", cfg.Training.LRScheduler)
	require.NotNil(t, cfg.Training.EarlyStopping)
	assert.Equal(t, 0.001, *cfg.Training.EarlyStopping)
	assert.Equal(t, int64(7), cfg.Training.Seed)
	assert.Equal(t, "4", cfg.Training.TrainerOpts["num_threads"])
	assert.False(t, cfg.Predict.RunInference)
}

func TestToOptionsRoundTrip(t *testing.T) {
	src := config.New()
	src.Update([]config.Option{
		config.OptDatasetDir("/data/herbarium"),
		config.OptModelBackbone("cnn_l"),
		config.OptBatchSize(48),
		config.OptImageSize(224),
		config.OptJobsNumber(4),
	})

	dst := config.New()
	dst.Update(src.ToOptions())

	assert.Equal(t, "/data/herbarium", dst.Dataset.Dir)
	assert.Equal(t, "cnn_l", dst.Model.Backbone)
	assert.Equal(t, 48, dst.Training.BatchSize)
	assert.Equal(t, 224, dst.Training.ImageSize)
	assert.Equal(t, 4, dst.JobsNumber)

	// runtime-only fields never travel through ToOptions
	src.Update([]config.Option{config.OptDatasetStrictJoin(true)})
	dst = config.New()
	dst.Update(src.ToOptions())
	assert.False(t, dst.Dataset.StrictJoin)
}
