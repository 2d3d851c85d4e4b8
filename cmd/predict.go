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

	"github.com/gnames/gn"
	"github.com/gnames/herbid/internal/iometa"
	"github.com/gnames/herbid/internal/iopredict"
	"github.com/gnames/herbid/pkg/config"
	"github.com/gnames/herbid/pkg/parserpool"
	"github.com/gnames/herbid/pkg/run"
	"github.com/spf13/cobra"
)

// getPredictCmd returns the predict command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getPredictCmd() *cobra.Command {
	predictCmd := &cobra.Command{
		Use:   "predict",
		Short: "Writes a submission file from a trained checkpoint",
		Long: `Run batch inference over the test images with a trained model.

This command:
  1. Loads test_metadata.json from the dataset directory
  2. Restores the model from a checkpoint directory
  3. Predicts a species for every test image, in metadata row order
  4. Writes the Id,Predicted submission CSV next to the checkpoints

The checkpoint remembers its backbone and the number of classes, so
only the checkpoint directory is needed.

Examples:
  # Predict with an explicit checkpoint
  herbid predict -d ~/datasets/herbarium \
    --checkpoint ~/.cache/herbid/checkpoints/herbarium-classif-1a2b3c4d_cnn_m-320px

  # Lower the inference resolution and batch size
  herbid predict -d ~/datasets/herbarium --checkpoint <dir> \
    --predict-size 320 -b 8`,
		Aliases: []string{"infer"},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runPredict(cmd)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	f := predictCmd.Flags()
	f.StringP("dataset-dir", "d", "", "dataset root directory")
	f.StringP("checkpoints-dir", "c", "", "directory for submissions")
	f.String("checkpoint", "", "checkpoint directory of a trained model")
	f.String("backbone", "", "backbone name when the checkpoint omits it")
	f.Int("predict-size", 0, "square image resolution for inference")
	f.IntP("batch-size", "b", 0, "images per inference batch")
	f.IntP("jobs", "j", 0, "concurrent image-processing workers")

	return predictCmd
}

func runPredict(cmd *cobra.Command) error {
	ctx := context.Background()

	cfg.Update(predictFlagOpts(cmd))

	if cfg.Dataset.Dir == "" {
		return fmt.Errorf(
			"dataset directory is not set, use --dataset-dir or dataset.dir in config")
	}
	if cfg.Predict.Checkpoint == "" {
		return fmt.Errorf("checkpoint directory is not set, use --checkpoint")
	}
	if cfg.Training.CheckpointsDir == "" {
		dir := filepath.Join(config.CacheDir(homeDir), "checkpoints")
		cfg.Update([]config.Option{config.OptCheckpointsDir(dir)})
		slog.Info("Using default checkpoints directory", "dir", dir)
	}

	pool := parserpool.NewPool(cfg.JobsNumber)
	defer pool.Close()
	ldr := iometa.New(cfg, pool)

	table, err := ldr.LoadTest(ctx)
	if err != nil {
		return err
	}

	r := run.New(cfg.Model.Backbone, cfg.Predict.ImageSize)
	p := iopredict.New(cfg, r, cfg.Predict.Checkpoint)
	subPath, err := p.Predict(ctx, table)
	if err != nil {
		return err
	}
	gn.Info("Submission file is at <em>%s</em>", subPath)
	return nil
}

func predictFlagOpts(cmd *cobra.Command) []config.Option {
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
	if f.Changed("checkpoint") {
		s, _ := f.GetString("checkpoint")
		res = append(res, config.OptPredictCheckpoint(s))
	}
	if f.Changed("backbone") {
		s, _ := f.GetString("backbone")
		res = append(res, config.OptModelBackbone(s))
	}
	if f.Changed("predict-size") {
		i, _ := f.GetInt("predict-size")
		res = append(res, config.OptPredictImageSize(i))
	}
	if f.Changed("batch-size") {
		i, _ := f.GetInt("batch-size")
		res = append(res, config.OptPredictBatchSize(i))
	}
	if f.Changed("jobs") {
		i, _ := f.GetInt("jobs")
		res = append(res, config.OptJobsNumber(i))
	}
	return res
}
