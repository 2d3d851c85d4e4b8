// Package iotrain orchestrates the two-phase fine-tuning of a
// herbarium classifier.
//
// Phase one trains only the readout head with the backbone frozen;
// phase two unfreezes the backbone. Gradient descent itself runs in
// GoMLX; this package owns the epoch loop, validation scoring,
// checkpoint selection, early stopping and weight averaging.
package iotrain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnfmt"
	"github.com/gnames/herbid/internal/iodataset"
	"github.com/gnames/herbid/internal/iomodel"
	"github.com/gnames/herbid/pkg/config"
	"github.com/gnames/herbid/pkg/herbid"
	"github.com/gnames/herbid/pkg/metadata"
	"github.com/gnames/herbid/pkg/run"
	"github.com/gnames/herbid/pkg/score"
	"github.com/gnames/herbid/pkg/transform"
	. "github.com/gomlx/gomlx/graph"
	mlctx "github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/context/checkpoints"
	"github.com/gomlx/gomlx/ml/data"
	"github.com/gomlx/gomlx/ml/train"
	"github.com/gomlx/gomlx/ml/train/commandline"
	"github.com/gomlx/gomlx/ml/train/metrics"
	"github.com/gomlx/gomlx/ml/train/optimizers"
	"github.com/gomlx/gomlx/types/exceptions"
	"github.com/gomlx/gomlx/types/shapes"
	"github.com/gomlx/gomlx/types/tensor"
)

// finetuner implements the herbid.FineTuner interface.
type finetuner struct {
	cfg *config.Config
	trk herbid.Tracker
}

// New creates a FineTuner. The tracker is optional; a nil tracker
// disables run recording.
func New(cfg *config.Config, trk herbid.Tracker) herbid.FineTuner {
	return &finetuner{cfg: cfg, trk: trk}
}

// Run trains the classifier on the joined training table and returns
// the run result with the path of the best checkpoint by validation
// macro F1. Any failure aborts the run.
func (f *finetuner) Run(
	ctx context.Context,
	table *metadata.TrainTable,
) (*run.Result, error) {
	start := time.Now()
	tCfg := f.cfg.Training

	opts, err := parseTrainerOpts(tCfg.TrainerOpts)
	if err != nil {
		return nil, err
	}

	trainRows, valRows, err := iodataset.Split(table, tCfg.ValSplit, tCfg.Seed)
	if err != nil {
		return nil, err
	}

	r := run.New(f.cfg.Model.Backbone, tCfg.ImageSize)
	if snap, encErr := gnfmt.GNjson{}.Encode(f.cfg); encErr == nil {
		r.ConfigJSON = string(snap)
	}
	f.startRun(ctx, r)

	slog.Info("Starting fine-tuning",
		"run_id", r.ID,
		"backbone", r.Backbone,
		"image_size", r.ImageSize,
		"train_rows", humanize.Comma(int64(len(trainRows))),
		"val_rows", humanize.Comma(int64(len(valRows))),
		"classes", table.NumClasses,
	)

	classifier, err := iomodel.New(f.cfg.Model.Backbone, table.NumClasses)
	if err != nil {
		return nil, err
	}

	var manager *Manager
	err = exceptions.TryCatch[error](func() {
		manager = BuildManager().
			NumThreads(opts.numThreads).
			Platform(opts.platform).
			Done()
	})
	if err != nil {
		return nil, SetupError(err)
	}

	mCtx := mlctx.NewContext(manager)
	mCtx.SetParam(optimizers.LearningRateKey, tCfg.LearningRate)
	// Saved with the checkpoint, so prediction can rebuild the model
	// without access to the training metadata.
	mCtx.SetParam("backbone", f.cfg.Model.Backbone)
	mCtx.SetParam("num_classes", table.NumClasses)

	checkpoint, ckptDir, err := f.buildCheckpoint(mCtx, r, opts)
	if err != nil {
		return nil, err
	}

	imagesDir := filepath.Join(f.cfg.Dataset.Dir, "train_images")
	trainDS := iodataset.FromTrainRows(
		"train", trainRows, imagesDir, transform.New(tCfg.ImageSize),
		tCfg.BatchSize, f.cfg.JobsNumber,
		iodataset.WithAugment(),
		iodataset.WithInfinite(),
		iodataset.WithSeed(tCfg.Seed),
	)
	stepsPerEpoch := trainDS.StepsPerEpoch()
	feed := data.Parallel(trainDS)

	valDS := iodataset.FromTrainRows(
		"validation", valRows, imagesDir, transform.New(tCfg.ImageSize),
		tCfg.BatchSize, f.cfg.JobsNumber,
	)
	valTruth := asInts(valDS.Labels())

	frozen := tCfg.FreezeEpochs > 0
	if frozen {
		iomodel.SetBackboneTrainable(mCtx, false)
		slog.Info("Backbone frozen", "epochs", tCfg.FreezeEpochs)
	}
	loop, err := f.newLoop(manager, mCtx, classifier)
	if err != nil {
		return nil, err
	}

	var swa *swaAverager
	swaStartEpoch := 0
	if tCfg.SWAStart != nil {
		swaStartEpoch = int(math.Ceil(*tCfg.SWAStart * float64(tCfg.MaxEpochs)))
		if swaStartEpoch < 1 {
			swaStartEpoch = 1
		}
		swa = newSWAAverager()
	}
	var stopper *earlyStopper
	if tCfg.EarlyStopping != nil {
		stopper = newEarlyStopper(*tCfg.EarlyStopping)
	}

	res := &run.Result{Run: r, CheckpointPath: ckptDir, BestF1: -1}
	var inferer *iomodel.Inferer

	for epoch := 1; epoch <= tCfg.MaxEpochs; epoch++ {
		if err = ctx.Err(); err != nil {
			return nil, FitError(epoch, err)
		}
		if frozen && epoch > tCfg.FreezeEpochs {
			iomodel.SetBackboneTrainable(mCtx, true)
			frozen = false
			// The set of gradients changed, compile a fresh trainer.
			loop, err = f.newLoop(manager, mCtx, classifier)
			if err != nil {
				return nil, err
			}
			slog.Info("Backbone unfrozen", "epoch", epoch)
		}

		lr, err := ScheduleLR(
			tCfg.LRScheduler, tCfg.LearningRate, epoch, tCfg.MaxEpochs)
		if err != nil {
			return nil, err
		}
		mCtx.SetParam(optimizers.LearningRateKey, lr)

		batchMetrics, err := loop.RunSteps(feed, stepsPerEpoch)
		if err != nil {
			return nil, FitError(epoch, err)
		}
		trainLoss := scalarFloat(batchMetrics[0])

		if inferer == nil {
			// Variables exist only after the first training step, so
			// the inference executor has to wait for them.
			inferer, err = iomodel.NewInferer(manager, mCtx, classifier)
			if err != nil {
				return nil, SetupError(err)
			}
		}
		preds, err := f.validate(inferer, valDS)
		if err != nil {
			return nil, FitError(epoch, err)
		}
		f1 := score.MacroF1(preds, valTruth, table.NumClasses)
		acc := score.Accuracy(preds, valTruth)
		res.Epochs = epoch

		slog.Info("Epoch finished",
			"epoch", epoch,
			"train_loss", trainLoss,
			"val_f1", f1,
			"val_accuracy", acc,
			"learning_rate", lr,
		)
		f.track(ctx, r.ID, epoch, map[string]float64{
			"train_loss":    trainLoss,
			"val_f1":        f1,
			"val_accuracy":  acc,
			"learning_rate": lr,
		})

		if f1 > res.BestF1 {
			res.BestF1 = f1
			res.BestEpoch = epoch
			if err = checkpoint.Save(); err != nil {
				return nil, CheckpointError(ckptDir, err)
			}
			slog.Info("Saved best checkpoint", "epoch", epoch, "val_f1", f1)
		}
		if swa != nil && epoch >= swaStartEpoch {
			swa.Accumulate(mCtx)
		}
		if stopper != nil && stopper.ShouldStop(f1) {
			slog.Info("Early stopping",
				"epoch", epoch, "best_f1", res.BestF1)
			break
		}
	}

	if swa != nil && swa.Steps() > 0 {
		if err = f.applySWA(ctx, swa, mCtx, inferer, valDS, valTruth,
			table.NumClasses, checkpoint, res); err != nil {
			return nil, err
		}
	}

	res.Duration = time.Since(start)
	slog.Info("Fine-tuning finished",
		"run_id", r.ID,
		"best_epoch", res.BestEpoch,
		"best_f1", res.BestF1,
		"epochs", res.Epochs,
		"checkpoint", res.CheckpointPath,
		"duration", gnfmt.TimeString(res.Duration.Seconds()),
	)
	return res, nil
}

// buildCheckpoint prepares the run's checkpoint directory and its
// handler. Pretrained weights are staged into the directory first, so
// the handler picks them up as the starting point.
func (f *finetuner) buildCheckpoint(
	mCtx *mlctx.Context, r *run.Run, opts *trainerOpts,
) (*checkpoints.Handler, string, error) {
	ckptDir := filepath.Join(f.cfg.Training.CheckpointsDir, r.CheckpointName())
	if err := os.MkdirAll(ckptDir, 0755); err != nil {
		return nil, "", CheckpointError(ckptDir, err)
	}
	if f.cfg.Model.Pretrained {
		if err := copyDir(f.cfg.Model.PretrainedDir, ckptDir); err != nil {
			return nil, "", PretrainedLoadError(f.cfg.Model.PretrainedDir, err)
		}
		slog.Info("Loaded pretrained weights",
			"dir", f.cfg.Model.PretrainedDir)
	}
	checkpoint, err := checkpoints.Build(mCtx).
		Dir(ckptDir).
		Keep(opts.checkpointKeep).
		Done()
	if err != nil {
		if f.cfg.Model.Pretrained {
			return nil, "", PretrainedLoadError(f.cfg.Model.PretrainedDir, err)
		}
		return nil, "", CheckpointError(ckptDir, err)
	}
	return checkpoint, ckptDir, nil
}

// newLoop compiles a trainer for the current trainable-variable set
// and wraps it into a training loop with a progress bar.
func (f *finetuner) newLoop(
	manager *Manager, mCtx *mlctx.Context, classifier *iomodel.Classifier,
) (*train.Loop, error) {
	var loop *train.Loop
	err := exceptions.TryCatch[error](func() {
		movingAcc := metrics.NewMovingAverageSparseCategoricalAccuracy(
			"Moving Accuracy", "~acc", 0.01)
		meanAcc := metrics.NewSparseCategoricalAccuracy(
			"Mean Accuracy", "#acc")
		trainer := train.NewTrainer(
			manager, mCtx, classifier.ModelGraph,
			iomodel.LabelSmoothingLoss(f.cfg.Training.LabelSmoothing),
			optimizers.MustOptimizerByName(f.cfg.Training.Optimizer),
			[]metrics.Interface{movingAcc},
			[]metrics.Interface{meanAcc},
		)
		loop = train.NewLoop(trainer)
		commandline.AttachProgressBar(loop)
	})
	if err != nil {
		return nil, SetupError(err)
	}
	return loop, nil
}

// validate runs one pass over the validation dataset and collects hard
// predictions in dataset order.
func (f *finetuner) validate(
	inferer *iomodel.Inferer, ds *iodataset.Dataset,
) ([]int, error) {
	ds.Reset()
	preds := make([]int, 0, ds.Len())
	for {
		_, inputs, _, err := ds.Yield()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		batch, err := inferer.Predict(inputs[0])
		if err != nil {
			return nil, err
		}
		preds = append(preds, batch...)
	}
	return preds, nil
}

// applySWA writes the averaged weights back and keeps them only when
// they beat the best checkpoint so far.
func (f *finetuner) applySWA(
	ctx context.Context,
	swa *swaAverager,
	mCtx *mlctx.Context,
	inferer *iomodel.Inferer,
	valDS *iodataset.Dataset,
	valTruth []int,
	numClasses int,
	checkpoint *checkpoints.Handler,
	res *run.Result,
) error {
	swa.Apply(mCtx)
	preds, err := f.validate(inferer, valDS)
	if err != nil {
		return FitError(res.Epochs, err)
	}
	f1 := score.MacroF1(preds, valTruth, numClasses)
	slog.Info("Applied weight averaging",
		"epochs_averaged", swa.Steps(), "val_f1", f1)
	f.track(ctx, res.Run.ID, res.Epochs, map[string]float64{"swa_val_f1": f1})

	if f1 > res.BestF1 {
		res.BestF1 = f1
		res.BestEpoch = res.Epochs
		if err = checkpoint.Save(); err != nil {
			return CheckpointError(res.CheckpointPath, err)
		}
		slog.Info("Saved averaged checkpoint", "val_f1", f1)
	}
	return nil
}

// startRun registers the run with the tracker. Tracking failures are
// logged, never fatal.
func (f *finetuner) startRun(ctx context.Context, r *run.Run) {
	if f.trk == nil {
		return
	}
	if err := f.trk.StartRun(ctx, r); err != nil {
		slog.Warn("Cannot register run", "run_id", r.ID, "error", err)
	}
}

func (f *finetuner) track(
	ctx context.Context,
	runID string, epoch int, vals map[string]float64,
) {
	if f.trk == nil {
		return
	}
	for name, v := range vals {
		if err := f.trk.Scalar(ctx, runID, epoch, name, v); err != nil {
			slog.Warn("Cannot record metric", "name", name, "error", err)
		}
	}
}

// scalarFloat extracts a scalar metric value from a tensor.
func scalarFloat(t tensor.Tensor) float64 {
	ref := t.Local().AcquireData()
	defer ref.Release()
	return shapes.CastAsDType(ref.Flat(), shapes.Float64).([]float64)[0]
}

func asInts(labels []int32) []int {
	res := make([]int, len(labels))
	for i, l := range labels {
		res[i] = int(l)
	}
	return res
}

// copyDir copies the regular files of a flat directory, as checkpoint
// directories are.
func copyDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		bs, err := os.ReadFile(filepath.Join(src, e.Name()))
		if err != nil {
			return err
		}
		err = os.WriteFile(filepath.Join(dst, e.Name()), bs, 0644)
		if err != nil {
			return err
		}
	}
	return nil
}
