package iodataset

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/herbid/pkg/errcode"
)

func ImageOpenError(path string, err error) error {
	msg := "Cannot open image <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DatasetImageOpenError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot open image: %w",
			fn, err),
	}
}

func SplitError(fraction float64) error {
	msg := "Validation split %v is out of (0, 1)"
	vars := []any{fraction}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DatasetSplitError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: invalid validation split %v",
			fn, fraction),
	}
}
