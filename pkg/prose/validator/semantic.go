package validator

import (
	"fmt"

	"mercator-hq/prose/pkg/prose/ast"
	"mercator-hq/prose/pkg/prose/diag"
)

// validateStatement is the scoped walk's statement dispatch. Scoping is
// Python-like, not C-like:
//
//   - if/elif/else and try/catch/finally bodies do NOT push a scope:
//     exactly one straight-line branch runs, so bindings escape into the
//     enclosing scope and following code may use them.
//   - loop, for-each, repeat, and pipeline-stage bodies DO push a scope:
//     they may run zero times, so nothing inside is guaranteed to exist
//     afterwards.
//   - block bodies and choice options are isolated: mutually exclusive or
//     function-like, nothing leaks out.
func (v *Validator) validateStatement(stmt ast.Statement, topLevel bool) {
	switch s := stmt.(type) {
	case nil:
		return

	case *ast.ImportStatement:
		// Collected in the declaration pass; skills are opaque names.

	case *ast.AgentDefinition:
		if !topLevel {
			v.errorf(s.Span, "nested-definition",
				"agent definitions may only appear at program top level")
		}
		v.validateProperties(s.Properties, "agent", knownAgentProperties)

	case *ast.BlockDefinition:
		if !topLevel {
			v.errorf(s.Span, "nested-definition",
				"block definitions may only appear at program top level")
		}
		if len(s.Body) == 0 {
			v.errorf(s.Span, "empty-body", "block definition has an empty body")
		}
		v.scopes.push()
		for _, param := range s.Parameters {
			if param != nil {
				v.declareName(param, false)
			}
		}
		for _, inner := range s.Body {
			v.validateStatement(inner, false)
		}
		v.scopes.pop()

	case *ast.DoStatement:
		v.validateDo(s)

	case *ast.SessionStatement:
		v.validateSession(s)

	case *ast.ArrowExpression:
		v.validateExpression(s)

	case *ast.LetBinding:
		v.validateExpression(s.Value)
		v.declareName(s.Name, false)

	case *ast.ConstBinding:
		v.validateExpression(s.Value)
		v.declareName(s.Name, true)

	case *ast.Assignment:
		v.validateExpression(s.Value)
		v.validateAssignmentTarget(s)

	case *ast.ForEachBlock:
		v.validateExpression(s.Iterable)
		v.scopes.push()
		if s.Variable != nil {
			v.declareName(s.Variable, false)
		}
		for _, inner := range s.Body {
			v.validateStatement(inner, false)
		}
		v.scopes.pop()

	case *ast.LoopBlock:
		v.validateLoopHeader(s)
		v.scopes.push()
		if s.IterationVar != nil {
			v.declareName(s.IterationVar, false)
		}
		for _, inner := range s.Body {
			v.validateStatement(inner, false)
		}
		v.scopes.pop()

	case *ast.RepeatBlock:
		v.validateRepeatCount(s)
		v.scopes.push()
		for _, inner := range s.Body {
			v.validateStatement(inner, false)
		}
		v.scopes.pop()

	case *ast.ParallelBlock:
		v.validateParallel(s)

	case *ast.TryBlock:
		for _, inner := range s.Body {
			v.validateStatement(inner, false)
		}
		if s.Catch != nil {
			if s.Catch.Variable != nil {
				v.declareName(s.Catch.Variable, false)
			}
			for _, inner := range s.Catch.Body {
				v.validateStatement(inner, false)
			}
		}
		if s.Finally != nil {
			for _, inner := range s.Finally.Body {
				v.validateStatement(inner, false)
			}
		}

	case *ast.ChoiceBlock:
		if len(s.Options) == 0 {
			v.errorf(s.Span, "empty-body", "choice block has no options")
		}
		for _, opt := range s.Options {
			v.scopes.push()
			for _, inner := range opt.Body {
				v.validateStatement(inner, false)
			}
			v.scopes.pop()
		}

	case *ast.IfStatement:
		if len(s.Body) == 0 {
			v.errorf(s.Span, "empty-body", "if statement has an empty body")
		}
		for _, inner := range s.Body {
			v.validateStatement(inner, false)
		}
		for _, elif := range s.Elifs {
			for _, inner := range elif.Body {
				v.validateStatement(inner, false)
			}
		}
		if s.Else != nil {
			for _, inner := range s.Else.Body {
				v.validateStatement(inner, false)
			}
		}

	case *ast.ExpressionStatement:
		v.validateExpression(s.Expression)

	default:
		v.errorf(stmt.Pos(), "internal", fmt.Sprintf("unhandled statement type %T", stmt))
	}
}

// validateExpression resolves names and recurses into nested work units.
func (v *Validator) validateExpression(expr ast.Expression) {
	switch e := expr.(type) {
	case nil:
		return

	case *ast.Identifier:
		v.resolveVariable(e)

	case *ast.StringLiteral:
		v.checkInterpolations(e)

	case *ast.NumberLiteral, *ast.Discretion:
		// Self-contained.

	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			v.validateExpression(el)
		}

	case *ast.ObjectLiteral:
		for _, name := range e.Names {
			v.resolveVariable(name)
		}

	case *ast.SessionStatement:
		v.validateSession(e)

	case *ast.DoStatement:
		v.validateDo(e)

	case *ast.ArrowExpression:
		v.validateExpression(e.Left)
		v.validateExpression(e.Right)

	case *ast.PipeExpression:
		v.validatePipe(e)

	default:
		v.errorf(expr.Pos(), "internal", fmt.Sprintf("unhandled expression type %T", expr))
	}
}

// resolveVariable reports an undefined variable reference with a typo
// suggestion when a close name is in scope.
func (v *Validator) resolveVariable(id *ast.Identifier) {
	if id == nil {
		return
	}
	if v.scopes.lookup(id.Name) != nil {
		return
	}
	v.diags.AddErrorWithSuggestion(diag.StageValidate, "undefined-variable",
		fmt.Sprintf("undefined variable %q", id.Name),
		id.Span,
		diag.SuggestName(id.Name, v.scopes.visibleNames()))
}

// declareName binds a name in the current scope, enforcing the duplicate
// and collision rules: a same-scope redefinition is an error, a shadow of
// an ancestor binding is a warning, and a collision with an agent name is
// an error since sessions reference agents by bare name.
func (v *Validator) declareName(id *ast.Identifier, isConst bool) {
	if id == nil {
		return
	}

	if _, ok := v.decls.agents[id.Name]; ok {
		v.errorf(id.Span, "name-collision",
			fmt.Sprintf("variable %q collides with the agent of the same name", id.Name))
		return
	}

	if prev := v.scopes.lookupLocal(id.Name); prev != nil {
		v.diags.AddErrorWithSuggestion(diag.StageValidate, "duplicate-variable",
			fmt.Sprintf("duplicate variable %q in the same scope", id.Name),
			id.Span,
			fmt.Sprintf("%q is already declared at line %d", id.Name, prev.declaredLine))
		return
	}

	if prev := v.scopes.lookupOuter(id.Name); prev != nil {
		v.diags.AddWarning(diag.StageValidate, "shadowed-variable",
			fmt.Sprintf("variable %q shadows the declaration at line %d", id.Name, prev.declaredLine),
			id.Span)
	}

	v.scopes.declare(&binding{
		name:         id.Name,
		isConst:      isConst,
		declaredLine: id.Span.Start.Line,
	})
}

func (v *Validator) validateAssignmentTarget(s *ast.Assignment) {
	if s.Name == nil {
		return
	}
	b := v.scopes.lookup(s.Name.Name)
	if b == nil {
		v.diags.AddErrorWithSuggestion(diag.StageValidate, "undefined-variable",
			fmt.Sprintf("assignment to undeclared variable %q", s.Name.Name),
			s.Name.Span,
			fmt.Sprintf("declare it first: let %s = ...", s.Name.Name))
		return
	}
	if b.isConst {
		v.errorf(s.Name.Span, "const-reassignment",
			fmt.Sprintf("cannot reassign constant %q declared at line %d", s.Name.Name, b.declaredLine))
	}
}

// validateDo resolves the block reference and splices the block's
// top-level bindings into the call-site scope. Invocation models textual
// inlining, so code after "do setup" may use variables that "block setup:"
// defines; this is a deliberate deviation from strict lexical scoping.
func (v *Validator) validateDo(s *ast.DoStatement) {
	for _, arg := range s.Arguments {
		v.validateExpression(arg)
	}

	if s.Block == nil {
		return
	}
	def, ok := v.decls.blocks[s.Block.Name]
	if !ok {
		v.diags.AddErrorWithSuggestion(diag.StageValidate, "undefined-block",
			fmt.Sprintf("undefined block %q", s.Block.Name),
			s.Block.Span,
			diag.SuggestName(s.Block.Name, v.decls.blockNames()))
		return
	}

	if len(s.Arguments) > len(def.Parameters) {
		v.errorf(s.Span, "argument-mismatch",
			fmt.Sprintf("block %q takes %d parameter(s) but %d argument(s) were given",
				s.Block.Name, len(def.Parameters), len(s.Arguments)))
	}

	for _, name := range v.decls.blockBindings[s.Block.Name] {
		if v.scopes.lookupLocal(name) == nil {
			v.scopes.declare(&binding{
				name:         name,
				declaredLine: s.Span.Start.Line,
			})
		}
	}
}

// validateSession checks the prompt-or-agent rule, resolves the agent
// reference, and applies the prompt lint warnings.
func (v *Validator) validateSession(s *ast.SessionStatement) {
	if s.Prompt == nil && s.Agent == nil {
		v.errorf(s.Span, "session-missing-target",
			"session requires a prompt string or an agent reference")
	}

	if s.Agent != nil {
		if _, ok := v.decls.agents[s.Agent.Name]; !ok {
			v.diags.AddErrorWithSuggestion(diag.StageValidate, "undefined-agent",
				fmt.Sprintf("undefined agent %q", s.Agent.Name),
				s.Agent.Span,
				diag.SuggestName(s.Agent.Name, v.decls.agentNames()))
		}
	}

	if s.Prompt != nil {
		v.checkPrompt(s.Prompt)
	}

	v.validateProperties(s.Properties, "session", knownSessionProperties)
}

func (v *Validator) checkPrompt(lit *ast.StringLiteral) {
	if lit.Value == "" {
		v.diags.AddWarning(diag.StageValidate, "empty-prompt",
			"session has an empty prompt", lit.Span)
	}
	if len(lit.Value) > v.maxPromptLength {
		v.diags.AddWarning(diag.StageValidate, "long-prompt",
			fmt.Sprintf("prompt is %d characters long (over %d); consider splitting the work",
				len(lit.Value), v.maxPromptLength),
			lit.Span)
	}
	v.checkInterpolations(lit)
}

// checkInterpolations resolves every {name} recorded in a string literal
// against the scope chain at the point of use.
func (v *Validator) checkInterpolations(lit *ast.StringLiteral) {
	if lit == nil {
		return
	}
	for _, interp := range lit.Interpolations() {
		if v.scopes.lookup(interp.Name) != nil {
			continue
		}
		v.diags.AddErrorWithSuggestion(diag.StageValidate, "undefined-variable",
			fmt.Sprintf("undefined variable %q in interpolation", interp.Name),
			lit.Span,
			diag.SuggestName(interp.Name, v.scopes.visibleNames()))
	}
}

// validatePipe checks stage arity rules and walks each stage body in its
// own scope.
func (v *Validator) validatePipe(e *ast.PipeExpression) {
	v.validateExpression(e.Source)

	for _, stage := range e.Stages {
		if stage.Operation == ast.PipeReduce && len(stage.Parameters) < 2 {
			v.errorf(stage.Span, "reduce-parameters",
				"reduce requires an accumulator and an item parameter, e.g. reduce (acc, item):")
		}
		if len(stage.Body) == 0 {
			v.errorf(stage.Span, "empty-body",
				fmt.Sprintf("%s stage has an empty body", stage.Operation))
		}

		v.scopes.push()
		for _, param := range stage.Parameters {
			if param != nil {
				v.declareName(param, false)
			}
		}
		for _, inner := range stage.Body {
			v.validateStatement(inner, false)
		}
		v.scopes.pop()
	}
}
