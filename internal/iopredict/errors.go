package iopredict

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/herbid/pkg/errcode"
)

func SetupError(err error) error {
	msg := "Cannot set up batch inference"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.PredictSetupError,
		Msg:  msg,
		Err: fmt.Errorf("from %s: cannot set up inference: %w",
			fn, err),
	}
}

func RunError(err error) error {
	msg := "Batch inference failed"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.PredictRunError,
		Msg:  msg,
		Err: fmt.Errorf("from %s: inference failed: %w",
			fn, err),
	}
}

func WriteError(path string, err error) error {
	msg := "Cannot write submission file <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.PredictWriteError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot write submission: %w",
			fn, err),
	}
}

func CheckpointMissingError(dir string) error {
	msg := "Checkpoint directory <em>%s</em> does not exist"
	vars := []any{dir}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.PredictCheckpointMissingError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: checkpoint %q not found", fn, dir),
	}
}
