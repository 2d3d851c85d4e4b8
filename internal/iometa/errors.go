package iometa

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/herbid/pkg/errcode"
	"github.com/gnames/herbid/pkg/metadata"
)

func MetaFileMissingError(path string, err error) error {
	msg := "Cannot read metadata file <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.MetaFileMissingError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot read metadata: %w",
			fn, err),
	}
}

func MetaDecodeError(path string, err error) error {
	msg := "Metadata file <em>%s</em> is not well-formed JSON"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.MetaDecodeError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot decode metadata: %w",
			fn, err),
	}
}

func MetaMissingKeyError(path, key string) error {
	msg := "Metadata file <em>%s</em> misses the '%s' array"
	vars := []any{path, key}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.MetaMissingKeyError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: metadata key %q absent or empty",
			fn, key),
	}
}

func MetaJoinError(path string, stats metadata.JoinStats) error {
	msg := "Metadata join of <em>%s</em> left unresolved references"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.MetaJoinError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"from %s: unresolved keys: %d images, %d categories, %d institutions",
			fn, stats.MissingImages, stats.MissingCategories,
			stats.MissingInstitutions),
	}
}

func MetaEmptyTestError(path string) error {
	msg := "Test metadata <em>%s</em> contains no records"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.MetaEmptyTestError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: empty test metadata", fn),
	}
}
