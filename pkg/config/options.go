package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptDatasetDir sets the dataset root directory.
func OptDatasetDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Dataset Dir", s) {
			c.Dataset.Dir = s
		}
	}
}

// OptDatasetStrictJoin makes unresolved foreign keys in the metadata
// join fatal.
// Runtime-only field - not in ToOptions().
func OptDatasetStrictJoin(b bool) Option {
	return func(c *Config) {
		c.Dataset.StrictJoin = b
	}
}

// OptModelBackbone sets the backbone name.
// Valid values: "cnn_s", "cnn_m", "cnn_l".
func OptModelBackbone(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Model.Backbone", s) {
			c.Model.Backbone = s
		}
	}
}

// OptModelPretrained enables loading of backbone weights before
// fine-tuning.
// Runtime-only field - not in ToOptions().
func OptModelPretrained(b bool) Option {
	return func(c *Config) {
		c.Model.Pretrained = b
	}
}

// OptModelPretrainedDir sets the checkpoint directory with backbone
// weights.
// Runtime-only field - not in ToOptions().
func OptModelPretrainedDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Pretrained Dir", s) {
			c.Model.PretrainedDir = s
		}
	}
}

// OptCheckpointsDir sets the directory for checkpoints and submissions.
func OptCheckpointsDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Checkpoints Dir", s) {
			c.Training.CheckpointsDir = s
		}
	}
}

// OptBatchSize sets the number of images per training batch.
func OptBatchSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Batch Size", i) {
			c.Training.BatchSize = i
		}
	}
}

// OptOptimizer sets the optimizer name.
// Valid values: "adam", "adamw", "sgd".
func OptOptimizer(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Training.Optimizer", s) {
			c.Training.Optimizer = s
		}
	}
}

// OptImageSize sets the square input resolution used for training.
func OptImageSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Image Size", i) {
			c.Training.ImageSize = i
		}
	}
}

// OptLearningRate sets the initial learning rate.
func OptLearningRate(f float64) Option {
	return func(c *Config) {
		if isValidFloat("Learning Rate", f) {
			c.Training.LearningRate = f
		}
	}
}

// OptLabelSmoothing sets the label smoothing factor of the loss.
// Zero disables smoothing.
func OptLabelSmoothing(f float64) Option {
	return func(c *Config) {
		if f >= 0 && f < 1 {
			c.Training.LabelSmoothing = f
		} else {
			warnRange("Label Smoothing", f)
		}
	}
}

// OptMaxEpochs sets the maximum number of fine-tuning epochs.
func OptMaxEpochs(i int) Option {
	return func(c *Config) {
		if isValidInt("Max Epochs", i) {
			c.Training.MaxEpochs = i
		}
	}
}

// OptFreezeEpochs sets the number of initial epochs with a frozen
// backbone. Zero means train end to end from the start.
func OptFreezeEpochs(i int) Option {
	return func(c *Config) {
		if i >= 0 {
			c.Training.FreezeEpochs = i
		} else {
			warnRange("Freeze Epochs", float64(i))
		}
	}
}

// OptValSplit sets the fraction of training rows held out for
// validation.
func OptValSplit(f float64) Option {
	return func(c *Config) {
		if f > 0 && f < 1 {
			c.Training.ValSplit = f
		} else {
			warnRange("Validation Split", f)
		}
	}
}

// OptLRScheduler sets the learning-rate schedule name.
// Valid values: "cosine", "exponential".
// Runtime-only field - not in ToOptions().
func OptLRScheduler(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if s == "" {
			return
		}
		if isValidEnum("Training.LRScheduler", s) {
			c.Training.LRScheduler = s
		}
	}
}

// OptEarlyStopping sets the minimum validation F1 delta below which
// training stops early.
// Runtime-only field - not in ToOptions().
func OptEarlyStopping(f *float64) Option {
	return func(c *Config) {
		if f != nil {
			c.Training.EarlyStopping = f
		}
	}
}

// OptSWAStart sets the epoch fraction at which stochastic weight
// averaging begins.
// Runtime-only field - not in ToOptions().
func OptSWAStart(f *float64) Option {
	return func(c *Config) {
		if f == nil {
			return
		}
		if *f > 0 && *f < 1 {
			c.Training.SWAStart = f
		} else {
			warnRange("SWA Start", *f)
		}
	}
}

// OptSeed sets the seed for the validation split and augmentations.
// Runtime-only field - not in ToOptions().
func OptSeed(i int64) Option {
	return func(c *Config) {
		c.Training.Seed = i
	}
}

// OptTrainerOpts sets the residual trainer overrides.
// Runtime-only field - not in ToOptions().
func OptTrainerOpts(m map[string]string) Option {
	return func(c *Config) {
		if len(m) > 0 {
			c.Training.TrainerOpts = m
		}
	}
}

// OptPredictImageSize sets the square input resolution for inference.
func OptPredictImageSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Predict Image Size", i) {
			c.Predict.ImageSize = i
		}
	}
}

// OptPredictBatchSize sets the number of images per inference batch.
func OptPredictBatchSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Predict Batch Size", i) {
			c.Predict.BatchSize = i
		}
	}
}

// OptRunInference toggles batch inference after training.
// Runtime-only field - not in ToOptions().
func OptRunInference(b bool) Option {
	return func(c *Config) {
		c.Predict.RunInference = b
	}
}

// OptPredictCheckpoint sets the checkpoint directory for standalone
// prediction.
// Runtime-only field - not in ToOptions().
func OptPredictCheckpoint(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Checkpoint", s) {
			c.Predict.Checkpoint = s
		}
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptJobsNumber sets the number of concurrent workers for image
// decoding and augmentation. Default is runtime.NumCPU().
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptHomeDir sets the home directory for config, cache, and log locations.
// Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}
