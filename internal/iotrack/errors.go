package iotrack

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/herbid/pkg/errcode"
)

func OpenError(path string, err error) error {
	msg := "Cannot open run registry <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.TrackOpenError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot open registry: %w",
			fn, err),
	}
}

func WriteError(runID string, err error) error {
	msg := "Cannot record data for run <em>%s</em>"
	vars := []any{runID}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.TrackWriteError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot write run data: %w",
			fn, err),
	}
}
