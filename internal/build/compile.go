// Package build runs the front end and the lowering pipeline over a source
// file and caches the results.
package build

import (
	"fmt"
	"strings"

	"github.com/orizon-lang/rangeopt/internal/codegen"
	"github.com/orizon-lang/rangeopt/internal/hir"
	"github.com/orizon-lang/rangeopt/internal/lir"
	"github.com/orizon-lang/rangeopt/internal/mir"
	"github.com/orizon-lang/rangeopt/internal/parser"
)

// Unit is one compiled source file.
type Unit struct {
	Filename string
	Source   string
	Program  *hir.HIRProgram
	MIR      *mir.Module
	Report   *codegen.Report
}

// LIR selects the LIR of the unit.
func (u *Unit) LIR() *lir.Module {
	return codegen.SelectToLIR(u.MIR)
}

// ErrorList collects the diagnostics of one front-end phase.
type ErrorList []error

func (l ErrorList) Error() string {
	msgs := make([]string, 0, len(l))
	for _, err := range l {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

// Unwrap exposes every collected error to errors.Is and errors.As.
func (l ErrorList) Unwrap() []error { return l }

// Compile parses, resolves and lowers src.
func Compile(filename, src string, opts codegen.Options) (*Unit, error) {
	prog, errs := parser.ParseSource(src, filename)
	if len(errs) > 0 {
		return nil, fmt.Errorf("parse %s: %w", filename, ErrorList(errs))
	}

	h, errs := hir.Resolve(prog, filename)
	if len(errs) > 0 {
		return nil, fmt.Errorf("resolve %s: %w", filename, ErrorList(errs))
	}

	m, report, err := codegen.LowerProgram(h, opts)
	if err != nil {
		return nil, fmt.Errorf("lower %s: %w", filename, err)
	}

	return &Unit{Filename: filename, Source: src, Program: h, MIR: m, Report: report}, nil
}
