package validator

import (
	"mercator-hq/prose/pkg/prose/ast"
	"mercator-hq/prose/pkg/prose/diag"
	"mercator-hq/prose/pkg/prose/token"
)

// DefaultMaxPromptLength is the prompt length above which the validator
// warns. Long prompts execute fine but usually signal work that should be
// split across sessions.
const DefaultMaxPromptLength = 10000

// Validator runs the semantic passes over a parsed program: declaration
// collection, block-cycle detection, and the scoped statement walk. A
// Validator is single-use; create a new one per program.
type Validator struct {
	diags  *diag.List
	decls  *declarations
	scopes *scopeStack

	maxPromptLength int
}

// Option adjusts validator behavior.
type Option func(*Validator)

// WithMaxPromptLength overrides the prompt length warning threshold.
func WithMaxPromptLength(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxPromptLength = n
		}
	}
}

// New creates a validator with default settings.
func New(opts ...Option) *Validator {
	v := &Validator{
		diags:           diag.NewList(),
		scopes:          newScopeStack(),
		maxPromptLength: DefaultMaxPromptLength,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Result is the outcome of validating one program. Valid is false exactly
// when Errors is non-empty; warnings never affect validity.
type Result struct {
	Valid    bool
	Errors   []*diag.Diagnostic
	Warnings []*diag.Diagnostic
}

// Diagnostics returns errors and warnings as a single list, errors first.
func (r *Result) Diagnostics() []*diag.Diagnostic {
	out := make([]*diag.Diagnostic, 0, len(r.Errors)+len(r.Warnings))
	out = append(out, r.Errors...)
	out = append(out, r.Warnings...)
	return out
}

// Validate runs every semantic check against the program and reports all
// findings. Validation never mutates the program, so validating the same
// tree twice yields the same result.
func Validate(program *ast.Program, opts ...Option) *Result {
	return New(opts...).Validate(program)
}

// Validate performs the full semantic analysis. A nil program validates
// trivially: the empty program is valid.
func (v *Validator) Validate(program *ast.Program) *Result {
	if program != nil {
		v.decls = v.collectDeclarations(program)
		for _, stmt := range program.Statements {
			v.validateStatement(stmt, true)
		}
	}

	return &Result{
		Valid:    !v.diags.HasErrors(),
		Errors:   v.diags.Errors(),
		Warnings: v.diags.Warnings(),
	}
}

func (v *Validator) errorf(span token.Span, code, message string) {
	v.diags.AddError(diag.StageValidate, code, message, span)
}
