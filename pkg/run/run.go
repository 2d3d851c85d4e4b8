// Package run describes one training run: its identity, derived
// artifact names and final results.
package run

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run identifies one training run and the configuration facts that
// name its artifacts.
type Run struct {
	// ID is a short unique run identifier.
	ID string
	// Backbone is the backbone name used for the run.
	Backbone string
	// ImageSize is the training input resolution.
	ImageSize int
	// Started is the wall-clock start of the run.
	Started time.Time
	// ConfigJSON is a JSON snapshot of the effective configuration,
	// stored for reproducibility in the run registry.
	ConfigJSON string
}

// New creates a Run with a fresh identifier.
func New(backbone string, imageSize int) *Run {
	return &Run{
		ID:        NewID(),
		Backbone:  backbone,
		ImageSize: imageSize,
		Started:   time.Now(),
	}
}

// NewID returns a short unique run identifier, the first block of a
// random UUID. Uniqueness per run matters; derivability does not.
func NewID() string {
	return uuid.New().String()[:8]
}

// CheckpointName derives the checkpoint directory name from the run
// identity. Two distinct (id, backbone, size) triples never collide.
func (r *Run) CheckpointName() string {
	return fmt.Sprintf("herbarium-classif-%s_%s-%dpx",
		r.ID, r.Backbone, r.ImageSize)
}

// SubmissionName derives the submission file name from the run
// identity.
func (r *Run) SubmissionName() string {
	return fmt.Sprintf("submission_herbarium-%s_%s-%d.csv",
		r.ID, r.Backbone, r.ImageSize)
}

// Result is the outcome of a finished training run.
type Result struct {
	Run *Run
	// CheckpointPath is the directory of the best checkpoint.
	CheckpointPath string
	// BestEpoch is the epoch that produced the best validation F1.
	BestEpoch int
	// BestF1 is the best validation macro F1.
	BestF1 float64
	// Epochs is the number of epochs actually run (early stopping may
	// end the run before MaxEpochs).
	Epochs int
	// Duration of the whole fitting procedure.
	Duration time.Duration
}
