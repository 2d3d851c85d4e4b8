// Package config provides configuration management for Herbid.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Dataset: dir
//   - Training: checkpoints_dir, batch_size, backbone, optimizer, image_size,
//     learning_rate, label_smoothing, max_epochs, freeze_epochs, val_split
//   - Predict: image_size, batch_size
//   - Log: level, format, destination
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - Model.Pretrained/PretrainedDir, Training.LRScheduler, EarlyStopping,
//     SWAStart, Seed, TrainerOpts, Dataset.StrictJoin, Predict.RunInference,
//     Predict.Checkpoint (per-command)
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use HERBID_ prefix with underscores for nesting:
//
//	HERBID_DATASET_DIR=~/datasets/herbarium-2022-fgvc9
//	HERBID_TRAINING_BATCH_SIZE=24
//	HERBID_LOG_LEVEL=info
//	HERBID_JOBS_NUMBER=12
package config

import (
	"runtime"
)

// Config represents the complete Herbid configuration.
type Config struct {
	// Dataset describes where metadata and image files live.
	Dataset DatasetConfig `mapstructure:"dataset" yaml:"dataset"`

	// Model describes the classifier backbone.
	Model ModelConfig `mapstructure:"model" yaml:"model"`

	// Training contains the fine-tuning hyperparameters.
	Training TrainingConfig `mapstructure:"training" yaml:"training"`

	// Predict contains settings for batch inference and submission output.
	Predict PredictConfig `mapstructure:"predict" yaml:"predict"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers for image
	// decoding and augmentation. Default is the number of CPU threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// DatasetConfig describes the on-disk dataset layout.
type DatasetConfig struct {
	// Dir is the dataset root. It must contain train_metadata.json,
	// test_metadata.json and the train_images/test_images directories.
	Dir string `mapstructure:"dir" yaml:"dir"`

	// StrictJoin turns unresolved foreign keys in the metadata join
	// into a fatal error instead of a warning.
	StrictJoin bool
}

// ModelConfig describes the classifier backbone.
type ModelConfig struct {
	// Backbone is the name of a registered convolutional backbone.
	Backbone string `mapstructure:"backbone" yaml:"backbone"`

	// Pretrained loads backbone weights from PretrainedDir before
	// fine-tuning starts.
	Pretrained bool

	// PretrainedDir is a checkpoint directory holding backbone weights.
	PretrainedDir string
}

// TrainingConfig contains the fine-tuning hyperparameters.
type TrainingConfig struct {
	// CheckpointsDir is where model checkpoints and submissions are written.
	CheckpointsDir string `mapstructure:"checkpoints_dir" yaml:"checkpoints_dir"`

	// BatchSize is the number of images per training batch.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`

	// Optimizer is the name of a gomlx optimizer ("adam", "adamw", "sgd").
	Optimizer string `mapstructure:"optimizer" yaml:"optimizer"`

	// ImageSize is the square input resolution used for training.
	ImageSize int `mapstructure:"image_size" yaml:"image_size"`

	// LearningRate is the initial learning rate.
	LearningRate float64 `mapstructure:"learning_rate" yaml:"learning_rate"`

	// LabelSmoothing is the label smoothing factor of the
	// cross-entropy loss.
	LabelSmoothing float64 `mapstructure:"label_smoothing" yaml:"label_smoothing"`

	// MaxEpochs is the maximum number of fine-tuning epochs.
	MaxEpochs int `mapstructure:"max_epochs" yaml:"max_epochs"`

	// FreezeEpochs is the number of initial epochs during which the
	// backbone stays frozen and only the head trains.
	FreezeEpochs int `mapstructure:"freeze_epochs" yaml:"freeze_epochs"`

	// ValSplit is the fraction of training rows held out for validation.
	ValSplit float64 `mapstructure:"val_split" yaml:"val_split"`

	// LRScheduler is an optional learning-rate schedule name
	// ("cosine", "exponential"). Empty means constant learning rate.
	LRScheduler string

	// EarlyStopping, when set, stops training if validation F1 improves
	// by less than this delta between epochs.
	EarlyStopping *float64

	// SWAStart, when set, starts stochastic weight averaging at this
	// fraction of MaxEpochs (0 < SWAStart < 1).
	SWAStart *float64

	// Seed drives the validation split and augmentation randomness.
	Seed int64

	// TrainerOpts is the residual map of string-keyed trainer overrides
	// passed through from the CLI. Validated at startup.
	TrainerOpts map[string]string
}

// PredictConfig contains settings for batch inference.
type PredictConfig struct {
	// ImageSize is the square input resolution for inference, typically
	// higher than the training resolution.
	ImageSize int `mapstructure:"image_size" yaml:"image_size"`

	// BatchSize is the number of images per inference batch.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`

	// RunInference, when true, runs batch inference right after
	// training and writes the submission file.
	RunInference bool

	// Checkpoint is a checkpoint directory to load for standalone
	// prediction.
	Checkpoint string
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Model: ModelConfig{
			Backbone: "cnn_m",
		},
		Training: TrainingConfig{
			BatchSize:      24,
			Optimizer:      "adamw",
			ImageSize:      320,
			LearningRate:   5e-3,
			LabelSmoothing: 0.01,
			MaxEpochs:      20,
			FreezeEpochs:   2,
			ValSplit:       0.1,
			Seed:           42,
		},
		Predict: PredictConfig{
			ImageSize:    384,
			BatchSize:    16,
			RunInference: true,
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(), // Default to number of CPU threads
	}
	return res
}
