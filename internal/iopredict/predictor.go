// Package iopredict runs batch inference over the test images and
// writes the competition submission file.
//
// The model is restored from a checkpoint directory; the checkpoint's
// own parameters decide the backbone and the number of classes, so a
// submission can be produced long after the training process is gone.
package iopredict

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gnfmt"
	"github.com/gnames/herbid/internal/iodataset"
	"github.com/gnames/herbid/internal/iomodel"
	"github.com/gnames/herbid/pkg/config"
	"github.com/gnames/herbid/pkg/herbid"
	"github.com/gnames/herbid/pkg/metadata"
	"github.com/gnames/herbid/pkg/run"
	"github.com/gnames/herbid/pkg/transform"
	. "github.com/gomlx/gomlx/graph"
	mlctx "github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/context/checkpoints"
	"github.com/gomlx/gomlx/types/exceptions"
)

// predictor implements the herbid.Predictor interface.
type predictor struct {
	cfg  *config.Config
	r    *run.Run
	ckpt string
}

// New creates a Predictor that restores the given checkpoint directory
// and names the submission after the run.
func New(cfg *config.Config, r *run.Run, checkpointDir string) herbid.Predictor {
	return &predictor{cfg: cfg, r: r, ckpt: checkpointDir}
}

// Predict runs batch inference over the test table in its row order
// and returns the path of the written submission file. Exactly one
// prediction is produced per test row.
func (p *predictor) Predict(
	ctx context.Context,
	table *metadata.TestTable,
) (string, error) {
	start := time.Now()
	if p.ckpt == "" {
		return "", CheckpointMissingError(p.ckpt)
	}
	if _, err := os.Stat(p.ckpt); err != nil {
		return "", CheckpointMissingError(p.ckpt)
	}

	manager, mCtx, classifier, err := p.restore()
	if err != nil {
		return "", err
	}
	inferer, err := iomodel.NewInferer(manager, mCtx, classifier)
	if err != nil {
		return "", SetupError(err)
	}

	imagesDir := filepath.Join(p.cfg.Dataset.Dir, "test_images")
	ds := iodataset.FromTestTable(
		"test", table, imagesDir,
		transform.New(p.cfg.Predict.ImageSize),
		p.cfg.Predict.BatchSize, p.cfg.JobsNumber,
	)

	slog.Info("Starting batch inference",
		"rows", humanize.Comma(int64(table.Len())),
		"image_size", p.cfg.Predict.ImageSize,
		"batch_size", p.cfg.Predict.BatchSize,
		"checkpoint", p.ckpt,
	)

	bar := pb.StartNew(ds.Len())
	preds := make([]int, 0, ds.Len())
	for {
		if err = ctx.Err(); err != nil {
			return "", RunError(err)
		}
		_, inputs, _, err := ds.Yield()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", RunError(err)
		}
		batch, err := inferer.Predict(inputs[0])
		if err != nil {
			return "", RunError(err)
		}
		preds = append(preds, batch...)
		bar.Add(len(batch))
	}
	bar.Finish()

	if len(preds) != table.Len() {
		return "", RunError(fmt.Errorf(
			"got %d predictions for %d rows", len(preds), table.Len()))
	}

	path := filepath.Join(p.cfg.Training.CheckpointsDir, p.r.SubmissionName())
	if err = writeSubmission(path, ds.IDs(), preds); err != nil {
		return "", err
	}

	slog.Info("Wrote submission",
		"path", path,
		"rows", humanize.Comma(int64(len(preds))),
		"duration", gnfmt.TimeString(time.Since(start).Seconds()),
	)
	return path, nil
}

// restore loads the checkpoint into a fresh context and rebuilds the
// classifier from the checkpoint's saved parameters.
func (p *predictor) restore() (
	*Manager, *mlctx.Context, *iomodel.Classifier, error,
) {
	var manager *Manager
	err := exceptions.TryCatch[error](func() {
		manager = BuildManager().Done()
	})
	if err != nil {
		return nil, nil, nil, SetupError(err)
	}

	mCtx := mlctx.NewContext(manager)
	if _, err = checkpoints.Build(mCtx).Dir(p.ckpt).Done(); err != nil {
		return nil, nil, nil, CheckpointMissingError(p.ckpt)
	}

	backbone := paramString(mCtx, "backbone", p.cfg.Model.Backbone)
	numClasses, ok := paramInt(mCtx, "num_classes")
	if !ok {
		return nil, nil, nil, SetupError(fmt.Errorf(
			"checkpoint %s misses the num_classes parameter", p.ckpt))
	}

	classifier, err := iomodel.New(backbone, numClasses)
	if err != nil {
		return nil, nil, nil, err
	}
	return manager, mCtx, classifier, nil
}

// writeSubmission writes the Id,Predicted CSV in the given row order.
func writeSubmission(
	path string, ids []metadata.ImageID, preds []int,
) error {
	f, err := os.Create(path)
	if err != nil {
		return WriteError(path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err = w.Write([]string{"Id", "Predicted"}); err != nil {
		return WriteError(path, err)
	}
	for i, id := range ids {
		rec := []string{id.String(), strconv.Itoa(preds[i])}
		if err = w.Write(rec); err != nil {
			return WriteError(path, err)
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return WriteError(path, err)
	}
	return nil
}

// paramString reads a string parameter saved with the checkpoint,
// falling back to the configured value.
func paramString(mCtx *mlctx.Context, key, fallback string) string {
	if v, ok := mCtx.GetParam(key); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// paramInt reads an integer parameter saved with the checkpoint. JSON
// round-trips may turn it into a float64.
func paramInt(mCtx *mlctx.Context, key string) (int, bool) {
	v, ok := mCtx.GetParam(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
