package compiler

import (
	"strings"

	"mercator-hq/prose/pkg/prose/ast"
)

// renderExpression renders an expression as a single line of canonical
// source. String literals re-quote from the recorded raw text so escapes
// and interpolations survive the round trip byte for byte.
func renderExpression(expr ast.Expression) string {
	switch e := expr.(type) {
	case nil:
		return ""

	case *ast.Identifier:
		if e == nil {
			return ""
		}
		return e.Name

	case *ast.StringLiteral:
		if e == nil {
			return `""`
		}
		return renderString(e)

	case *ast.NumberLiteral:
		if e == nil {
			return "0"
		}
		return e.Raw

	case *ast.ArrayLiteral:
		parts := make([]string, 0, len(e.Elements))
		for _, el := range e.Elements {
			parts = append(parts, renderExpression(el))
		}
		return "[" + strings.Join(parts, ", ") + "]"

	case *ast.ObjectLiteral:
		parts := make([]string, 0, len(e.Names))
		for _, id := range e.Names {
			parts = append(parts, id.Name)
		}
		return "{" + strings.Join(parts, ", ") + "}"

	case *ast.Discretion:
		if e == nil {
			return ""
		}
		if e.Multiline {
			return "***" + e.Expression + "***"
		}
		return "**" + e.Expression + "**"

	case *ast.SessionStatement:
		return renderSession(e)

	case *ast.DoStatement:
		return renderDo(e)

	case *ast.ArrowExpression:
		return renderExpression(e.Left) + " -> " + renderExpression(e.Right)

	case *ast.PipeExpression:
		// Pipelines carry bodies and render through the statement printer;
		// this path only appears for a malformed tree, so render the source
		// collection alone.
		return renderExpression(e.Source)
	}

	return ""
}

// renderString reproduces the literal from its recorded raw form when
// available, falling back to re-escaping the cooked value.
func renderString(lit *ast.StringLiteral) string {
	if lit.Meta != nil && lit.Meta.Raw != "" {
		return lit.Meta.Raw
	}
	return quote(lit.Value)
}

// quote escapes a cooked string value back into a double-quoted literal.
// Interpolation braces pass through untouched: they are part of the value.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func renderSession(s *ast.SessionStatement) string {
	head := sessionHead(s)
	// Property-carrying sessions cannot render on one line; the statement
	// printer handles them. In expression position properties are absent.
	return head
}

func renderDo(s *ast.DoStatement) string {
	if s == nil || s.Block == nil {
		return "do"
	}
	head := "do " + s.Block.Name
	if len(s.Arguments) > 0 {
		args := make([]string, 0, len(s.Arguments))
		for _, arg := range s.Arguments {
			args = append(args, renderExpression(arg))
		}
		head += " (" + strings.Join(args, ", ") + ")"
	}
	return head
}
