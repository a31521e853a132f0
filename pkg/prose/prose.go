package prose

import (
	"fmt"
	"os"

	"mercator-hq/prose/pkg/prose/ast"
	"mercator-hq/prose/pkg/prose/compiler"
	"mercator-hq/prose/pkg/prose/diag"
	"mercator-hq/prose/pkg/prose/parser"
	"mercator-hq/prose/pkg/prose/validator"
)

// CheckResult is the combined outcome of running all front-end stages over
// one source text.
type CheckResult struct {
	// Program is the parse tree. Always non-nil, even when errors were
	// found; unparseable regions are simply absent from it.
	Program *ast.Program

	// Valid reports whether no stage found an error. Warnings do not
	// affect validity.
	Valid bool

	// Errors and Warnings aggregate diagnostics from all stages in the
	// order the stages ran: lexer, parser, validator.
	Errors   []*diag.Diagnostic
	Warnings []*diag.Diagnostic
}

// Diagnostics returns errors and warnings as one list, errors first.
func (r *CheckResult) Diagnostics() []*diag.Diagnostic {
	out := make([]*diag.Diagnostic, 0, len(r.Errors)+len(r.Warnings))
	out = append(out, r.Errors...)
	out = append(out, r.Warnings...)
	return out
}

// Check runs the full front end over source: tokenize, parse, validate.
// It never fails with a Go error; everything wrong with the input is
// reported through diagnostics.
func Check(source string, opts ...Option) *CheckResult {
	cfg := newOptions(opts)

	parsed := parser.Parse(source, cfg.parser...)
	verdict := validator.Validate(parsed.Program, cfg.validator...)

	list := diag.NewList()
	list.Merge(parsed.Diagnostics)
	for _, d := range verdict.Diagnostics() {
		list.Add(d)
	}

	return &CheckResult{
		Program:  parsed.Program,
		Valid:    !list.HasErrors(),
		Errors:   list.Errors(),
		Warnings: list.Warnings(),
	}
}

// CheckFile reads path and runs Check over its contents.
func CheckFile(path string, opts ...Option) (*CheckResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Check(string(data), opts...), nil
}

// ParseAndValidate is Check plus canonical compilation. The compiled form
// is only produced for valid programs; for invalid input Compiled is nil.
func ParseAndValidate(source string, opts ...Option) (*CheckResult, *compiler.Result) {
	result := Check(source, opts...)
	if !result.Valid {
		return result, nil
	}
	return result, compiler.Compile(result.Program)
}

// Option configures the stages Check runs.
type Option func(*options)

type options struct {
	parser    []parser.Option
	validator []validator.Option
}

func newOptions(opts []Option) *options {
	cfg := &options{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithParserOptions forwards options to the parser stage.
func WithParserOptions(opts ...parser.Option) Option {
	return func(cfg *options) {
		cfg.parser = append(cfg.parser, opts...)
	}
}

// WithValidatorOptions forwards options to the validator stage.
func WithValidatorOptions(opts ...validator.Option) Option {
	return func(cfg *options) {
		cfg.validator = append(cfg.validator, opts...)
	}
}
