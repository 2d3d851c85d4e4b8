// Package herbid defines the public interfaces of the Herbid pipeline.
//
// The pipeline has four stages wired together by the CLI: metadata
// loading, dataset assembly with image transforms, fine-tuning of a
// convolutional classifier, and batch inference that produces a
// submission file. Implementations live in internal/io* packages; all
// heavy lifting (optimization, batching execution, checkpoint
// serialization) is delegated to the GoMLX framework.
package herbid

import (
	"context"

	"github.com/gnames/herbid/pkg/metadata"
	"github.com/gnames/herbid/pkg/run"
)

// MetadataLoader reads dataset metadata from the dataset root and
// produces the joined training table and the test table.
type MetadataLoader interface {
	// LoadTrain reads train_metadata.json and joins annotations with
	// images, categories and institutions. The returned table has
	// exactly one row per annotation. Missing files or keys are fatal.
	LoadTrain(ctx context.Context) (*metadata.TrainTable, error)

	// LoadTest reads test_metadata.json into a table indexed by
	// image ID.
	LoadTest(ctx context.Context) (*metadata.TestTable, error)
}

// FineTuner runs the two-phase fine-tuning procedure and persists the
// best checkpoint by validation macro F1.
type FineTuner interface {
	// Run trains the classifier on the given table and returns the
	// result of the run, including the path of the best checkpoint.
	// Any failure aborts the run; there are no retries.
	Run(ctx context.Context, table *metadata.TrainTable) (*run.Result, error)
}

// Predictor applies a trained model to the test table and writes the
// submission file.
type Predictor interface {
	// Predict runs batch inference and returns the submission file
	// path. It produces exactly one prediction per test row.
	Predict(ctx context.Context, table *metadata.TestTable) (string, error)
}

// Tracker receives per-epoch scalar metrics for an experiment run.
// Tracking is observability only: a Tracker must not influence
// training results.
type Tracker interface {
	// StartRun registers a run with its configuration snapshot.
	StartRun(ctx context.Context, r *run.Run) error

	// Scalar records one named scalar for an epoch of a run.
	Scalar(ctx context.Context, runID string, epoch int, name string, value float64) error

	// Close flushes and releases the underlying store.
	Close() error
}
