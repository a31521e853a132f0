package compiler

import (
	"fmt"
	"strings"

	"mercator-hq/prose/pkg/prose/ast"
)

// Result holds the output of compiling a program to canonical source.
type Result struct {
	// Code is the canonical rendering: four-space indentation, one
	// statement per line, comments stripped.
	Code string

	// StrippedComments counts the comments removed during rendering.
	StrippedComments int

	// SourceMap maps each line of Code back to the source line of the
	// statement that produced it.
	SourceMap *SourceMap
}

// Compile renders a program in canonical form. Canonical output re-parses
// to a structurally identical program, which is what makes it safe to hand
// to the execution engine or a formatter.
func Compile(program *ast.Program) *Result {
	p := &printer{sourceMap: NewSourceMap()}
	if program != nil {
		p.printStatements(program.Statements, 0)
	}
	return &Result{
		Code:             p.buf.String(),
		StrippedComments: countComments(program),
		SourceMap:        p.sourceMap,
	}
}

func countComments(program *ast.Program) int {
	if program == nil {
		return 0
	}
	return len(program.Comments)
}

// printer renders statements line by line, tracking the output line number
// for the source map.
type printer struct {
	buf       strings.Builder
	line      int
	sourceMap *SourceMap
}

const indentUnit = "    "

func (p *printer) emit(depth int, text string, sourceLine int) {
	p.line++
	for i := 0; i < depth; i++ {
		p.buf.WriteString(indentUnit)
	}
	p.buf.WriteString(text)
	p.buf.WriteByte('\n')
	p.sourceMap.Add(p.line, sourceLine)
}

func (p *printer) printStatements(stmts []ast.Statement, depth int) {
	for _, stmt := range stmts {
		p.printStatement(stmt, depth)
	}
}

func (p *printer) printStatement(stmt ast.Statement, depth int) {
	switch s := stmt.(type) {
	case nil:
		return

	case *ast.ImportStatement:
		names := make([]string, 0, len(s.Names))
		for _, id := range s.Names {
			names = append(names, id.Name)
		}
		p.emit(depth, "import "+strings.Join(names, ", "), s.Span.Start.Line)

	case *ast.AgentDefinition:
		p.emit(depth, "agent "+s.Name.Name+":", s.Span.Start.Line)
		p.printProperties(s.Properties, depth+1)

	case *ast.BlockDefinition:
		head := "block " + s.Name.Name
		if len(s.Parameters) > 0 {
			params := make([]string, 0, len(s.Parameters))
			for _, id := range s.Parameters {
				params = append(params, id.Name)
			}
			head += "(" + strings.Join(params, ", ") + ")"
		}
		p.emit(depth, head+":", s.Span.Start.Line)
		p.printStatements(s.Body, depth+1)

	case *ast.DoStatement:
		p.emit(depth, renderExpression(s), s.Span.Start.Line)

	case *ast.SessionStatement:
		if len(s.Properties) > 0 {
			p.emit(depth, sessionHead(s)+":", s.Span.Start.Line)
			p.printProperties(s.Properties, depth+1)
		} else {
			p.emit(depth, sessionHead(s), s.Span.Start.Line)
		}

	case *ast.LetBinding:
		p.emit(depth, "let "+s.Name.Name+" = "+renderExpression(s.Value), s.Span.Start.Line)

	case *ast.ConstBinding:
		p.emit(depth, "const "+s.Name.Name+" = "+renderExpression(s.Value), s.Span.Start.Line)

	case *ast.Assignment:
		p.emit(depth, s.Name.Name+" = "+renderExpression(s.Value), s.Span.Start.Line)

	case *ast.ForEachBlock:
		p.emit(depth, "for "+s.Variable.Name+" in "+renderExpression(s.Iterable)+":", s.Span.Start.Line)
		p.printStatements(s.Body, depth+1)

	case *ast.LoopBlock:
		p.emit(depth, loopHead(s)+":", s.Span.Start.Line)
		p.printStatements(s.Body, depth+1)

	case *ast.RepeatBlock:
		p.emit(depth, "repeat "+renderExpression(s.Count)+" times:", s.Span.Start.Line)
		p.printStatements(s.Body, depth+1)

	case *ast.ParallelBlock:
		p.emit(depth, parallelHead(s)+":", s.Span.Start.Line)
		for _, branch := range s.Branches {
			p.printBranch(branch, depth+1)
		}

	case *ast.TryBlock:
		p.emit(depth, "try:", s.Span.Start.Line)
		p.printStatements(s.Body, depth+1)
		if s.Catch != nil {
			head := "catch"
			if s.Catch.Variable != nil {
				head += " " + s.Catch.Variable.Name
			}
			p.emit(depth, head+":", s.Catch.Span.Start.Line)
			p.printStatements(s.Catch.Body, depth+1)
		}
		if s.Finally != nil {
			p.emit(depth, "finally:", s.Finally.Span.Start.Line)
			p.printStatements(s.Finally.Body, depth+1)
		}

	case *ast.ChoiceBlock:
		head := "choice"
		if s.Prompt != nil {
			head += " " + renderExpression(s.Prompt)
		}
		p.emit(depth, head+":", s.Span.Start.Line)
		for _, opt := range s.Options {
			optHead := "option"
			if opt.Label != nil {
				optHead += " " + renderExpression(opt.Label)
			}
			p.emit(depth+1, optHead+":", opt.Span.Start.Line)
			p.printStatements(opt.Body, depth+2)
		}

	case *ast.IfStatement:
		p.emit(depth, "if "+renderExpression(s.Condition)+":", s.Span.Start.Line)
		p.printStatements(s.Body, depth+1)
		for _, elif := range s.Elifs {
			p.emit(depth, "elif "+renderExpression(elif.Condition)+":", elif.Span.Start.Line)
			p.printStatements(elif.Body, depth+1)
		}
		if s.Else != nil {
			p.emit(depth, "else:", s.Else.Span.Start.Line)
			p.printStatements(s.Else.Body, depth+1)
		}

	case *ast.ArrowExpression:
		p.emit(depth, renderExpression(s), s.Span.Start.Line)

	case *ast.ExpressionStatement:
		p.printExpressionStatement(s, depth)
	}
}

func (p *printer) printExpressionStatement(s *ast.ExpressionStatement, depth int) {
	if pipe, ok := s.Expression.(*ast.PipeExpression); ok {
		p.printPipe(pipe, depth, s.Span.Start.Line)
		return
	}
	p.emit(depth, renderExpression(s.Expression), s.Span.Start.Line)
}

// printPipe renders a pipeline. The first stage shares a line with the
// source; later stages start with '|' at the enclosing indentation, each
// carrying its own indented body.
func (p *printer) printPipe(pipe *ast.PipeExpression, depth, sourceLine int) {
	if len(pipe.Stages) == 0 {
		p.emit(depth, renderExpression(pipe.Source), sourceLine)
		return
	}
	for i, stage := range pipe.Stages {
		head := stageHead(stage)
		if i == 0 {
			head = renderExpression(pipe.Source) + " | " + head
			p.emit(depth, head+":", sourceLine)
		} else {
			p.emit(depth, "| "+head+":", stage.Span.Start.Line)
		}
		p.printStatements(stage.Body, depth+1)
	}
}

func stageHead(stage *ast.PipeStage) string {
	head := string(stage.Operation)
	if len(stage.Parameters) > 0 {
		params := make([]string, 0, len(stage.Parameters))
		for _, id := range stage.Parameters {
			params = append(params, id.Name)
		}
		head += " (" + strings.Join(params, ", ") + ")"
	}
	return head
}

func (p *printer) printBranch(branch *ast.ParallelBranch, depth int) {
	if branch.Name != nil {
		if expr, ok := singleLine(branch.Statement); ok {
			p.emit(depth, branch.Name.Name+" = "+expr, branch.Span.Start.Line)
			return
		}
	}
	p.printStatement(branch.Statement, depth)
}

func (p *printer) printProperties(props []*ast.Property, depth int) {
	for _, prop := range props {
		p.emit(depth, prop.Name.Name+": "+renderExpression(prop.Value), prop.Span.Start.Line)
	}
}

// singleLine renders a statement on one line when it has no indented body.
func singleLine(stmt ast.Statement) (string, bool) {
	switch s := stmt.(type) {
	case *ast.SessionStatement:
		if len(s.Properties) == 0 {
			return sessionHead(s), true
		}
	case *ast.DoStatement:
		return renderExpression(s), true
	case *ast.ArrowExpression:
		return renderExpression(s), true
	case *ast.ExpressionStatement:
		if _, isPipe := s.Expression.(*ast.PipeExpression); !isPipe {
			return renderExpression(s.Expression), true
		}
	}
	return "", false
}

func sessionHead(s *ast.SessionStatement) string {
	switch {
	case s.Prompt != nil:
		return "session " + renderExpression(s.Prompt)
	case s.Name != nil && s.Agent != nil:
		return "session " + s.Name.Name + ": " + s.Agent.Name
	case s.Agent != nil:
		return "session: " + s.Agent.Name
	default:
		return "session"
	}
}

func loopHead(s *ast.LoopBlock) string {
	head := "loop"
	switch s.Variant {
	case ast.LoopUntil:
		head += " until " + renderExpression(s.Condition)
	case ast.LoopWhile:
		head += " while " + renderExpression(s.Condition)
	}
	if s.IterationVar != nil {
		head += " as " + s.IterationVar.Name
	}
	if s.MaxIterations != nil {
		head += " (" + s.MaxIterations.Raw + ")"
	}
	return head
}

func parallelHead(s *ast.ParallelBlock) string {
	if s.Strategy == "all" && s.Count == nil {
		return "parallel"
	}
	head := fmt.Sprintf("parallel (%q", s.Strategy)
	if s.Count != nil {
		head += ", " + s.Count.Raw
	}
	return head + ")"
}
