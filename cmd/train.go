/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/herbid/internal/iometa"
	"github.com/gnames/herbid/internal/iopredict"
	"github.com/gnames/herbid/internal/iotrack"
	"github.com/gnames/herbid/internal/iotrain"
	"github.com/gnames/herbid/pkg/config"
	"github.com/gnames/herbid/pkg/herbid"
	"github.com/gnames/herbid/pkg/parserpool"
	"github.com/spf13/cobra"
)

// getTrainCmd returns the train command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getTrainCmd() *cobra.Command {
	trainCmd := &cobra.Command{
		Use:   "train",
		Short: "Fine-tunes a species classifier on herbarium images",
		Long: `Fine-tune a convolutional classifier on the herbarium dataset.

This command:
  1. Loads train_metadata.json and joins annotations with images,
     categories and institutions
  2. Holds out a validation fraction of the rows
  3. Trains the readout head with a frozen backbone, then unfreezes
     the backbone and fine-tunes the whole network
  4. Scores every epoch with validation macro F1 and keeps the best
     checkpoint
  5. Optionally runs batch inference over the test images and writes
     the submission file

Dataset layout: <dataset-dir>/train_metadata.json,
<dataset-dir>/train_images/, <dataset-dir>/test_images/.

Examples:
  # Train with the defaults from config.yaml
  herbid train -d ~/datasets/herbarium

  # Larger backbone, cosine schedule, early stopping
  herbid train -d ~/datasets/herbarium --backbone cnn_l \
    --lr-scheduler cosine --early-stopping 0.001

  # Resume from pretrained backbone weights, skip inference
  herbid train -d ~/datasets/herbarium \
    --pretrained-dir ~/.cache/herbid/base --run-inference=false

  # Pass low-level overrides to the training machinery
  herbid train -d ~/datasets/herbarium \
    --trainer-opt num_threads=8 --trainer-opt checkpoint_keep=5`,
		Aliases: []string{"fit"},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runTrain(cmd)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	f := trainCmd.Flags()
	f.StringP("dataset-dir", "d", "", "dataset root directory")
	f.StringP("checkpoints-dir", "c", "", "directory for checkpoints and submissions")
	f.IntP("batch-size", "b", 0, "images per training batch")
	f.IntP("jobs", "j", 0, "concurrent image-processing workers")
	f.String("backbone", "", "backbone name (cnn_s, cnn_m, cnn_l)")
	f.Bool("pretrained", false, "start from pretrained backbone weights")
	f.String("pretrained-dir", "", "checkpoint directory with pretrained weights")
	f.StringP("optimizer", "o", "", "optimizer name (adam, adamw, sgd)")
	f.IntP("image-size", "i", 0, "square image resolution for training")
	f.String("lr-scheduler", "", "learning-rate schedule (cosine, exponential)")
	f.Float64P("learning-rate", "l", 0, "initial learning rate")
	f.Float64("label-smoothing", 0, "label smoothing factor of the loss")
	f.IntP("max-epochs", "e", 0, "maximum number of epochs")
	f.Int("freeze-epochs", 0, "epochs with a frozen backbone")
	f.Float64("val-split", 0, "validation fraction of training rows")
	f.Float64("early-stopping", 0, "stop when F1 improves less than this delta")
	f.Float64("swa", 0, "start weight averaging at this fraction of epochs")
	f.Bool("run-inference", true, "write the submission after training")
	f.Int("predict-size", 0, "square image resolution for inference")
	f.Bool("strict-join", false, "treat unresolved metadata references as fatal")
	f.Int64("seed", 0, "seed for the split and augmentation randomness")
	f.StringArray("trainer-opt", nil, "low-level override key=value (repeatable)")

	return trainCmd
}

func runTrain(cmd *cobra.Command) error {
	ctx := context.Background()

	trainOpts, err := trainFlagOpts(cmd)
	if err != nil {
		return err
	}
	cfg.Update(trainOpts)

	if cfg.Dataset.Dir == "" {
		return fmt.Errorf(
			"dataset directory is not set, use --dataset-dir or dataset.dir in config")
	}
	if cfg.Training.CheckpointsDir == "" {
		dir := filepath.Join(config.CacheDir(homeDir), "checkpoints")
		cfg.Update([]config.Option{config.OptCheckpointsDir(dir)})
		slog.Info("Using default checkpoints directory", "dir", dir)
	}

	pool := parserpool.NewPool(cfg.JobsNumber)
	defer pool.Close()
	ldr := iometa.New(cfg, pool)

	table, err := ldr.LoadTrain(ctx)
	if err != nil {
		return err
	}

	trk := openTracker()
	if trk != nil {
		defer trk.Close()
	}
	ft := iotrain.New(cfg, trk)
	res, err := ft.Run(ctx, table)
	if err != nil {
		return err
	}
	gn.Info(
		"Best checkpoint (epoch %d, F1 %.4f) is at <em>%s</em>",
		res.BestEpoch, res.BestF1, res.CheckpointPath,
	)

	if !cfg.Predict.RunInference {
		return nil
	}

	testTable, err := ldr.LoadTest(ctx)
	if err != nil {
		return err
	}
	p := iopredict.New(cfg, res.Run, res.CheckpointPath)
	subPath, err := p.Predict(ctx, testTable)
	if err != nil {
		return err
	}
	gn.Info("Submission file is at <em>%s</em>", subPath)
	return nil
}

// trainFlagOpts converts the flags the user actually set into config
// options. Unset flags leave the config values alone.
func trainFlagOpts(cmd *cobra.Command) ([]config.Option, error) {
	var res []config.Option
	f := cmd.Flags()

	if f.Changed("dataset-dir") {
		s, _ := f.GetString("dataset-dir")
		res = append(res, config.OptDatasetDir(s))
	}
	if f.Changed("checkpoints-dir") {
		s, _ := f.GetString("checkpoints-dir")
		res = append(res, config.OptCheckpointsDir(s))
	}
	if f.Changed("batch-size") {
		i, _ := f.GetInt("batch-size")
		res = append(res, config.OptBatchSize(i))
	}
	if f.Changed("jobs") {
		i, _ := f.GetInt("jobs")
		res = append(res, config.OptJobsNumber(i))
	}
	if f.Changed("backbone") {
		s, _ := f.GetString("backbone")
		res = append(res, config.OptModelBackbone(s))
	}
	if f.Changed("pretrained") {
		b, _ := f.GetBool("pretrained")
		res = append(res, config.OptModelPretrained(b))
	}
	if f.Changed("pretrained-dir") {
		s, _ := f.GetString("pretrained-dir")
		res = append(res,
			config.OptModelPretrainedDir(s),
			config.OptModelPretrained(true),
		)
	}
	if f.Changed("optimizer") {
		s, _ := f.GetString("optimizer")
		res = append(res, config.OptOptimizer(s))
	}
	if f.Changed("image-size") {
		i, _ := f.GetInt("image-size")
		res = append(res, config.OptImageSize(i))
	}
	if f.Changed("lr-scheduler") {
		s, _ := f.GetString("lr-scheduler")
		res = append(res, config.OptLRScheduler(s))
	}
	if f.Changed("learning-rate") {
		v, _ := f.GetFloat64("learning-rate")
		res = append(res, config.OptLearningRate(v))
	}
	if f.Changed("label-smoothing") {
		v, _ := f.GetFloat64("label-smoothing")
		res = append(res, config.OptLabelSmoothing(v))
	}
	if f.Changed("max-epochs") {
		i, _ := f.GetInt("max-epochs")
		res = append(res, config.OptMaxEpochs(i))
	}
	if f.Changed("freeze-epochs") {
		i, _ := f.GetInt("freeze-epochs")
		res = append(res, config.OptFreezeEpochs(i))
	}
	if f.Changed("val-split") {
		v, _ := f.GetFloat64("val-split")
		res = append(res, config.OptValSplit(v))
	}
	if f.Changed("early-stopping") {
		v, _ := f.GetFloat64("early-stopping")
		res = append(res, config.OptEarlyStopping(&v))
	}
	if f.Changed("swa") {
		v, _ := f.GetFloat64("swa")
		res = append(res, config.OptSWAStart(&v))
	}
	if f.Changed("run-inference") {
		b, _ := f.GetBool("run-inference")
		res = append(res, config.OptRunInference(b))
	}
	if f.Changed("predict-size") {
		i, _ := f.GetInt("predict-size")
		res = append(res, config.OptPredictImageSize(i))
	}
	if f.Changed("strict-join") {
		b, _ := f.GetBool("strict-join")
		res = append(res, config.OptDatasetStrictJoin(b))
	}
	if f.Changed("seed") {
		i, _ := f.GetInt64("seed")
		res = append(res, config.OptSeed(i))
	}
	if f.Changed("trainer-opt") {
		raw, _ := f.GetStringArray("trainer-opt")
		m, err := parseKeyValues(raw)
		if err != nil {
			return nil, err
		}
		res = append(res, config.OptTrainerOpts(m))
	}
	return res, nil
}

// parseKeyValues turns repeated key=value flags into a map.
func parseKeyValues(raw []string) (map[string]string, error) {
	res := make(map[string]string, len(raw))
	for _, kv := range raw {
		key, val, found := strings.Cut(kv, "=")
		if !found || key == "" {
			return nil, fmt.Errorf(
				"malformed trainer option %q, expected key=value", kv)
		}
		res[key] = val
	}
	return res, nil
}

// openTracker opens the run registry. Tracking is observability only,
// so a failure downgrades to a warning.
func openTracker() herbid.Tracker {
	trk, err := iotrack.New(config.TrackFilePath(homeDir))
	if err != nil {
		slog.Warn("Cannot open run registry, tracking disabled",
			"error", err)
		return nil
	}
	return trk
}
