package validator

import (
	"fmt"
	"math"

	"mercator-hq/prose/pkg/prose/ast"
	"mercator-hq/prose/pkg/prose/diag"
)

// Recognized property names. Unknown names are warnings, not errors: the
// execution engine may grow properties the toolchain does not know about.
var (
	knownSessionProperties = []string{"model", "prompt", "context", "retry"}
	knownAgentProperties   = []string{"model", "prompt", "context", "retry", "skills", "permissions", "description"}
)

// validateProperties applies the shared property rules for sessions and
// agents: unknown names warn with a typo suggestion, and each known name
// gets its value checked.
func (v *Validator) validateProperties(props []*ast.Property, owner string, known []string) {
	seen := make(map[string]int)
	for _, prop := range props {
		if prop == nil || prop.Name == nil {
			continue
		}
		name := prop.Name.Name

		if prevLine, dup := seen[name]; dup {
			v.diags.AddWarning(diag.StageValidate, "duplicate-property",
				fmt.Sprintf("property %q repeats the setting at line %d; the later value wins", name, prevLine),
				prop.Name.Span)
		}
		seen[name] = prop.Name.Span.Start.Line

		if !containsString(known, name) {
			v.diags.AddWarningWithSuggestion(diag.StageValidate, "unknown-property",
				fmt.Sprintf("unknown %s property %q", owner, name),
				prop.Name.Span,
				diag.SuggestProperty(name, owner, known))
			continue
		}

		v.validatePropertyValue(name, prop)
	}
}

// validatePropertyValue dispatches on the property name. Property values
// live in different namespaces: "context" references variables, "skills"
// references imports, "prompt" is a prompt string, and "model",
// "permissions", and "description" are opaque to the toolchain.
func (v *Validator) validatePropertyValue(name string, prop *ast.Property) {
	switch name {
	case "prompt":
		if lit, ok := prop.Value.(*ast.StringLiteral); ok {
			v.checkPrompt(lit)
		}

	case "retry":
		v.checkRetry(prop)

	case "context":
		v.validateExpression(prop.Value)

	case "skills":
		v.checkSkills(prop)

	default:
		// Opaque value; still resolve interpolations in string literals.
		if lit, ok := prop.Value.(*ast.StringLiteral); ok {
			v.checkInterpolations(lit)
		}
	}
}

// checkRetry enforces that retry counts are non-negative integer literals.
func (v *Validator) checkRetry(prop *ast.Property) {
	num, ok := prop.Value.(*ast.NumberLiteral)
	if !ok {
		v.errorf(prop.Span, "invalid-retry", "retry must be a number literal")
		return
	}
	if !num.IsInt || num.Value < 0 {
		v.errorf(num.Span, "invalid-retry",
			fmt.Sprintf("retry must be a non-negative integer, got %s", num.Raw))
	}
}

// checkSkills warns when an agent names a skill that no import statement
// brought in. This is a warning rather than an error: the execution engine
// resolves skills itself, and an unimported name may still be valid there.
func (v *Validator) checkSkills(prop *ast.Property) {
	names := skillNames(prop.Value)
	for _, id := range names {
		if id == nil {
			continue
		}
		if _, ok := v.decls.imports[id.Name]; ok {
			continue
		}
		v.diags.AddWarningWithSuggestion(diag.StageValidate, "unimported-skill",
			fmt.Sprintf("skill %q is not imported", id.Name),
			id.Span,
			diag.SuggestName(id.Name, v.decls.importNames()))
	}
}

// skillNames extracts the identifiers from a skills value, which may be a
// single name or an array of names.
func skillNames(value ast.Expression) []*ast.Identifier {
	switch val := value.(type) {
	case *ast.Identifier:
		return []*ast.Identifier{val}
	case *ast.ArrayLiteral:
		var names []*ast.Identifier
		for _, el := range val.Elements {
			if id, ok := el.(*ast.Identifier); ok {
				names = append(names, id)
			}
		}
		return names
	default:
		return nil
	}
}

// validateLoopHeader checks the iteration cap when one is present.
func (v *Validator) validateLoopHeader(s *ast.LoopBlock) {
	if s.MaxIterations == nil {
		return
	}
	num := s.MaxIterations
	if !num.IsInt || num.Value < 1 {
		v.errorf(num.Span, "invalid-loop-cap",
			fmt.Sprintf("loop iteration cap must be a positive integer, got %s", num.Raw))
	}
}

// validateRepeatCount accepts either a non-negative integer literal or a
// variable reference resolved against the current scope.
func (v *Validator) validateRepeatCount(s *ast.RepeatBlock) {
	switch count := s.Count.(type) {
	case *ast.NumberLiteral:
		if !count.IsInt || count.Value < 0 || count.Value > math.MaxUint32 {
			v.errorf(count.Span, "invalid-repeat-count",
				fmt.Sprintf("repeat count must be a non-negative integer, got %s", count.Raw))
		}
	case *ast.Identifier:
		v.resolveVariable(count)
	case nil:
		// Parser already reported the missing count.
	default:
		v.errorf(s.Count.Pos(), "invalid-repeat-count",
			"repeat count must be a number or a variable")
	}
}

// validateParallel enforces the join strategy rules and walks each branch
// in its own scope. Branch result names bind in the enclosing scope after
// the block, since the join produces them regardless of which branch wins.
func (v *Validator) validateParallel(s *ast.ParallelBlock) {
	switch s.Strategy {
	case "all":
		if s.Count != nil {
			v.errorf(s.Count.Span, "invalid-parallel",
				`strategy "all" does not take a count`)
		}
	case "first":
		if s.Count != nil {
			v.errorf(s.Count.Span, "invalid-parallel",
				`strategy "first" does not take a count`)
		}
		if len(s.Branches) < 2 {
			v.errorf(s.Span, "invalid-parallel",
				`strategy "first" requires at least two branches`)
		}
	case "any":
		if s.Count == nil {
			v.errorf(s.Span, "invalid-parallel",
				`strategy "any" requires a count, e.g. parallel ("any", 2):`)
		} else if !s.Count.IsInt || s.Count.Value < 1 {
			v.errorf(s.Count.Span, "invalid-parallel",
				fmt.Sprintf("parallel count must be a positive integer, got %s", s.Count.Raw))
		} else if int(s.Count.Value) > len(s.Branches) {
			v.errorf(s.Count.Span, "invalid-parallel",
				fmt.Sprintf("count %d exceeds the %d available branch(es)", int(s.Count.Value), len(s.Branches)))
		}
		if len(s.Branches) < 2 {
			v.errorf(s.Span, "invalid-parallel",
				`strategy "any" requires at least two branches`)
		}
	default:
		v.diags.AddErrorWithSuggestion(diag.StageValidate, "invalid-parallel",
			fmt.Sprintf("unknown join strategy %q", s.Strategy),
			s.Span,
			diag.SuggestJoinStrategy())
	}

	if len(s.Branches) == 0 {
		v.errorf(s.Span, "empty-body", "parallel block has no branches")
	}

	for _, branch := range s.Branches {
		v.scopes.push()
		v.validateStatement(branch.Statement, false)
		v.scopes.pop()
	}

	for _, branch := range s.Branches {
		if branch.Name != nil {
			v.declareName(branch.Name, false)
		}
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
