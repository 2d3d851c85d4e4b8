package iomodel

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/herbid/pkg/errcode"
)

func UnknownBackboneError(name string, known []string) error {
	msg := "Unknown backbone <em>%s</em>, valid backbones: %s"
	vars := []any{name, strings.Join(known, ", ")}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ModelUnknownBackboneError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: unknown backbone %q",
			fn, name),
	}
}
