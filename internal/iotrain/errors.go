package iotrain

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/herbid/pkg/errcode"
)

func SetupError(err error) error {
	msg := "Cannot set up the training run"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.TrainSetupError,
		Msg:  msg,
		Err: fmt.Errorf("from %s: cannot set up training: %w",
			fn, err),
	}
}

func FitError(epoch int, err error) error {
	msg := "Training failed at epoch <em>%d</em>"
	vars := []any{epoch}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.TrainFitError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: epoch %d failed: %w",
			fn, epoch, err),
	}
}

func CheckpointError(dir string, err error) error {
	msg := "Cannot save checkpoint to <em>%s</em>"
	vars := []any{dir}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.TrainCheckpointError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot save checkpoint: %w",
			fn, err),
	}
}

func TrainerOptionError(key, value string) error {
	msg := "Unknown or malformed trainer option <em>%s=%s</em>"
	vars := []any{key, value}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.TrainTrainerOptionError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: bad trainer option %s=%q",
			fn, key, value),
	}
}

func UnknownSchedulerError(name string) error {
	msg := "Unknown learning-rate scheduler <em>%s</em>"
	vars := []any{name}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ModelUnknownSchedulerError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: unknown scheduler %q, use 'cosine' or 'exponential'",
			fn, name),
	}
}

func PretrainedLoadError(dir string, err error) error {
	msg := "Cannot load pretrained weights from <em>%s</em>"
	vars := []any{dir}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ModelPretrainedLoadError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot load pretrained weights: %w",
			fn, err),
	}
}
