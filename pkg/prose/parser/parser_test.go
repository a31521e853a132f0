package parser

import (
	"fmt"
	"strings"
	"testing"

	"mercator-hq/prose/pkg/prose/ast"
)

func parseValid(t *testing.T, source string) *ast.Program {
	t.Helper()
	result := Parse(source)
	if result.Diagnostics.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", result.Diagnostics.Errors())
	}
	return result.Program
}

func TestParse_EmptyProgram(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "empty string", source: ""},
		{name: "only whitespace", source: "\n\n   \n"},
		{name: "only comments", source: "# just a comment\n# another\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse(tt.source)
			if result.Program == nil {
				t.Fatal("program is nil")
			}
			if len(result.Program.Statements) != 0 {
				t.Errorf("statements = %d, want 0", len(result.Program.Statements))
			}
			if result.Diagnostics.Count() != 0 {
				t.Errorf("diagnostics = %v, want none", result.Diagnostics)
			}
		})
	}
}

func TestParse_SessionForms(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		wantPrompt string
		wantAgent  string
		wantName   string
	}{
		{
			name:       "literal prompt",
			source:     `session "Hello, world"`,
			wantPrompt: "Hello, world",
		},
		{
			name:      "anonymous agent session",
			source:    "session : researcher",
			wantAgent: "researcher",
		},
		{
			name:      "named agent session",
			source:    "session review : researcher",
			wantAgent: "researcher",
			wantName:  "review",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program := parseValid(t, tt.source)
			if len(program.Statements) != 1 {
				t.Fatalf("statements = %d, want 1", len(program.Statements))
			}
			sess, ok := program.Statements[0].(*ast.SessionStatement)
			if !ok {
				t.Fatalf("statement is %T, want *ast.SessionStatement", program.Statements[0])
			}

			if tt.wantPrompt != "" {
				if sess.Prompt == nil || sess.Prompt.Value != tt.wantPrompt {
					t.Errorf("prompt = %v, want %q", sess.Prompt, tt.wantPrompt)
				}
			}
			if tt.wantAgent != "" {
				if sess.Agent == nil || sess.Agent.Name != tt.wantAgent {
					t.Errorf("agent = %v, want %q", sess.Agent, tt.wantAgent)
				}
			}
			if tt.wantName != "" {
				if sess.Name == nil || sess.Name.Name != tt.wantName {
					t.Errorf("name = %v, want %q", sess.Name, tt.wantName)
				}
			}
		})
	}
}

func TestParse_SessionPropertyBlock(t *testing.T) {
	source := strings.Join([]string{
		`session "summarize the findings"`,
		`    model: sonnet`,
		`    retry: 2`,
		``,
	}, "\n")

	program := parseValid(t, source)
	sess := program.Statements[0].(*ast.SessionStatement)
	if len(sess.Properties) != 2 {
		t.Fatalf("properties = %d, want 2", len(sess.Properties))
	}
	if sess.Properties[0].Name.Name != "model" || sess.Properties[1].Name.Name != "retry" {
		t.Errorf("property names = %q, %q", sess.Properties[0].Name.Name, sess.Properties[1].Name.Name)
	}
}

func TestParse_AgentDefinition(t *testing.T) {
	source := strings.Join([]string{
		"agent researcher:",
		`    model: opus`,
		`    prompt: "You research topics deeply"`,
		`    skills: [web_search]`,
		``,
	}, "\n")

	program := parseValid(t, source)
	def, ok := program.Statements[0].(*ast.AgentDefinition)
	if !ok {
		t.Fatalf("statement is %T, want *ast.AgentDefinition", program.Statements[0])
	}
	if def.Name.Name != "researcher" {
		t.Errorf("name = %q, want researcher", def.Name.Name)
	}
	if len(def.Properties) != 3 {
		t.Errorf("properties = %d, want 3", len(def.Properties))
	}
}

func TestParse_BlockDefinitionAndDo(t *testing.T) {
	source := strings.Join([]string{
		"block summarize(topic, depth):",
		`    session "summarize {topic} at {depth}"`,
		``,
		`do summarize ("ai", "shallow")`,
		``,
	}, "\n")

	program := parseValid(t, source)
	if len(program.Statements) != 2 {
		t.Fatalf("statements = %d, want 2", len(program.Statements))
	}

	def := program.Statements[0].(*ast.BlockDefinition)
	if def.Name.Name != "summarize" || len(def.Parameters) != 2 {
		t.Errorf("block %q with %d params, want summarize with 2", def.Name.Name, len(def.Parameters))
	}

	do := program.Statements[1].(*ast.DoStatement)
	if do.Block.Name != "summarize" || len(do.Arguments) != 2 {
		t.Errorf("do %q with %d args, want summarize with 2", do.Block.Name, len(do.Arguments))
	}
}

func TestParse_ArrowChainIsRightAssociative(t *testing.T) {
	program := parseValid(t, `session "a" -> session "b" -> session "c"`)

	arrow, ok := program.Statements[0].(*ast.ArrowExpression)
	if !ok {
		t.Fatalf("statement is %T, want *ast.ArrowExpression", program.Statements[0])
	}
	if _, ok := arrow.Left.(*ast.SessionStatement); !ok {
		t.Errorf("left is %T, want session", arrow.Left)
	}
	right, ok := arrow.Right.(*ast.ArrowExpression)
	if !ok {
		t.Fatalf("right is %T, want nested arrow", arrow.Right)
	}
	if _, ok := right.Right.(*ast.SessionStatement); !ok {
		t.Errorf("rightmost is %T, want session", right.Right)
	}
}

func TestParse_Bindings(t *testing.T) {
	source := strings.Join([]string{
		`let topic = "economics"`,
		`const depth = "full"`,
		`topic = "history"`,
		``,
	}, "\n")

	program := parseValid(t, source)
	if len(program.Statements) != 3 {
		t.Fatalf("statements = %d, want 3", len(program.Statements))
	}
	if _, ok := program.Statements[0].(*ast.LetBinding); !ok {
		t.Errorf("statement 0 is %T, want let", program.Statements[0])
	}
	if _, ok := program.Statements[1].(*ast.ConstBinding); !ok {
		t.Errorf("statement 1 is %T, want const", program.Statements[1])
	}
	if _, ok := program.Statements[2].(*ast.Assignment); !ok {
		t.Errorf("statement 2 is %T, want assignment", program.Statements[2])
	}
}

func TestParse_LoopForms(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		wantVariant ast.LoopVariant
		wantVar     string
		wantCap     bool
	}{
		{
			name:        "plain loop",
			source:      "loop:\n    session \"step\"\n",
			wantVariant: ast.LoopPlain,
		},
		{
			name:        "loop until",
			source:      "loop until **the output is stable**:\n    session \"step\"\n",
			wantVariant: ast.LoopUntil,
		},
		{
			name:        "loop while with iteration variable and cap",
			source:      "loop while **issues remain** as attempt (5):\n    session \"fix attempt {attempt}\"\n",
			wantVariant: ast.LoopWhile,
			wantVar:     "attempt",
			wantCap:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program := parseValid(t, tt.source)
			loop, ok := program.Statements[0].(*ast.LoopBlock)
			if !ok {
				t.Fatalf("statement is %T, want *ast.LoopBlock", program.Statements[0])
			}
			if loop.Variant != tt.wantVariant {
				t.Errorf("variant = %v, want %v", loop.Variant, tt.wantVariant)
			}
			if tt.wantVar != "" && (loop.IterationVar == nil || loop.IterationVar.Name != tt.wantVar) {
				t.Errorf("iteration var = %v, want %q", loop.IterationVar, tt.wantVar)
			}
			if tt.wantCap != (loop.MaxIterations != nil) {
				t.Errorf("cap present = %v, want %v", loop.MaxIterations != nil, tt.wantCap)
			}
		})
	}
}

func TestParse_ForEach(t *testing.T) {
	source := "for item in [a, b, c]:\n    session \"handle {item}\"\n"
	program := parseValid(t, source)

	loop := program.Statements[0].(*ast.ForEachBlock)
	if loop.Variable.Name != "item" {
		t.Errorf("variable = %q, want item", loop.Variable.Name)
	}
	if _, ok := loop.Iterable.(*ast.ArrayLiteral); !ok {
		t.Errorf("iterable is %T, want array", loop.Iterable)
	}
	if len(loop.Body) != 1 {
		t.Errorf("body = %d statements, want 1", len(loop.Body))
	}
}

func TestParse_Repeat(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "with times", source: "repeat 3 times:\n    session \"go\"\n"},
		{name: "without times", source: "repeat 3:\n    session \"go\"\n"},
		{name: "variable count", source: "repeat n times:\n    session \"go\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program := parseValid(t, tt.source)
			if _, ok := program.Statements[0].(*ast.RepeatBlock); !ok {
				t.Fatalf("statement is %T, want *ast.RepeatBlock", program.Statements[0])
			}
		})
	}
}

func TestParse_ParallelForms(t *testing.T) {
	tests := []struct {
		name         string
		source       string
		wantStrategy string
		wantCount    bool
		wantBranches int
	}{
		{
			name: "default all",
			source: strings.Join([]string{
				"parallel:",
				`    a = session "one"`,
				`    b = session "two"`,
				``,
			}, "\n"),
			wantStrategy: "all",
			wantBranches: 2,
		},
		{
			name: "first strategy",
			source: strings.Join([]string{
				`parallel ("first"):`,
				`    session "one"`,
				`    session "two"`,
				``,
			}, "\n"),
			wantStrategy: "first",
			wantBranches: 2,
		},
		{
			name: "any with count",
			source: strings.Join([]string{
				`parallel ("any", 2):`,
				`    session "one"`,
				`    session "two"`,
				`    session "three"`,
				``,
			}, "\n"),
			wantStrategy: "any",
			wantCount:    true,
			wantBranches: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program := parseValid(t, tt.source)
			par, ok := program.Statements[0].(*ast.ParallelBlock)
			if !ok {
				t.Fatalf("statement is %T, want *ast.ParallelBlock", program.Statements[0])
			}
			if par.Strategy != tt.wantStrategy {
				t.Errorf("strategy = %q, want %q", par.Strategy, tt.wantStrategy)
			}
			if (par.Count != nil) != tt.wantCount {
				t.Errorf("count present = %v, want %v", par.Count != nil, tt.wantCount)
			}
			if len(par.Branches) != tt.wantBranches {
				t.Errorf("branches = %d, want %d", len(par.Branches), tt.wantBranches)
			}
		})
	}
}

func TestParse_ParallelBranchExpressionValues(t *testing.T) {
	source := strings.Join([]string{
		"parallel:",
		`    a = session "one"`,
		`    b = "literal"`,
		`    c = 3`,
		`    d = [x, y]`,
		``,
	}, "\n")

	program := parseValid(t, source)
	par, ok := program.Statements[0].(*ast.ParallelBlock)
	if !ok {
		t.Fatalf("statement is %T, want *ast.ParallelBlock", program.Statements[0])
	}
	if len(par.Branches) != 4 {
		t.Fatalf("branches = %d, want 4", len(par.Branches))
	}

	if _, ok := par.Branches[0].Statement.(*ast.SessionStatement); !ok {
		t.Errorf("branch a statement is %T, want *ast.SessionStatement", par.Branches[0].Statement)
	}

	wantExprs := []struct {
		name string
		expr ast.Expression
	}{
		{"b", &ast.StringLiteral{}},
		{"c", &ast.NumberLiteral{}},
		{"d", &ast.ArrayLiteral{}},
	}
	for i, want := range wantExprs {
		branch := par.Branches[i+1]
		if branch.Name == nil || branch.Name.Name != want.name {
			t.Errorf("branch %d name = %v, want %q", i+1, branch.Name, want.name)
			continue
		}
		es, ok := branch.Statement.(*ast.ExpressionStatement)
		if !ok {
			t.Errorf("branch %q statement is %T, want *ast.ExpressionStatement", want.name, branch.Statement)
			continue
		}
		if fmt.Sprintf("%T", es.Expression) != fmt.Sprintf("%T", want.expr) {
			t.Errorf("branch %q value is %T, want %T", want.name, es.Expression, want.expr)
		}
	}
}

func TestParse_TryCatchFinally(t *testing.T) {
	source := strings.Join([]string{
		"try:",
		`    session "risky work"`,
		"catch err:",
		`    session "recover from {err}"`,
		"finally:",
		`    session "clean up"`,
		``,
	}, "\n")

	program := parseValid(t, source)
	try := program.Statements[0].(*ast.TryBlock)
	if len(try.Body) != 1 {
		t.Errorf("try body = %d, want 1", len(try.Body))
	}
	if try.Catch == nil || try.Catch.Variable == nil || try.Catch.Variable.Name != "err" {
		t.Errorf("catch = %+v, want variable err", try.Catch)
	}
	if try.Finally == nil || len(try.Finally.Body) != 1 {
		t.Errorf("finally = %+v, want one statement", try.Finally)
	}
}

func TestParse_Choice(t *testing.T) {
	source := strings.Join([]string{
		"choice **pick the best approach**:",
		`    option "fast":`,
		`        session "quick pass"`,
		`    option "thorough":`,
		`        session "deep pass"`,
		``,
	}, "\n")

	program := parseValid(t, source)
	choice := program.Statements[0].(*ast.ChoiceBlock)
	if choice.Prompt == nil {
		t.Error("choice prompt missing")
	}
	if len(choice.Options) != 2 {
		t.Fatalf("options = %d, want 2", len(choice.Options))
	}
	if choice.Options[0].Label == nil || choice.Options[0].Label.Value != "fast" {
		t.Errorf("first option label = %v, want fast", choice.Options[0].Label)
	}
}

func TestParse_IfElifElse(t *testing.T) {
	source := strings.Join([]string{
		"if **the build passed**:",
		`    session "ship it"`,
		"elif **only tests failed**:",
		`    session "fix the tests"`,
		"else:",
		`    session "investigate"`,
		``,
	}, "\n")

	program := parseValid(t, source)
	stmt := program.Statements[0].(*ast.IfStatement)
	if stmt.Condition == nil || stmt.Condition.Expression != "the build passed" {
		t.Errorf("condition = %+v", stmt.Condition)
	}
	if len(stmt.Elifs) != 1 {
		t.Errorf("elifs = %d, want 1", len(stmt.Elifs))
	}
	if stmt.Else == nil {
		t.Error("else clause missing")
	}
}

func TestParse_PipeChain(t *testing.T) {
	source := strings.Join([]string{
		"results | map (item):",
		`    session "summarize {item}"`,
		"| filter (summary):",
		`    session "keep useful: {summary}"`,
		``,
	}, "\n")

	program := parseValid(t, source)
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	pipe := stmt.Expression.(*ast.PipeExpression)

	if len(pipe.Stages) != 2 {
		t.Fatalf("stages = %d, want 2", len(pipe.Stages))
	}
	if pipe.Stages[0].Operation != ast.PipeMap || pipe.Stages[1].Operation != ast.PipeFilter {
		t.Errorf("operations = %v, %v", pipe.Stages[0].Operation, pipe.Stages[1].Operation)
	}
	if len(pipe.Stages[0].Parameters) != 1 || pipe.Stages[0].Parameters[0].Name != "item" {
		t.Errorf("stage 0 parameters = %v", pipe.Stages[0].Parameters)
	}
}

func TestParse_Comments(t *testing.T) {
	source := strings.Join([]string{
		"# workflow header",
		`session "work"  # inline note`,
		``,
	}, "\n")

	program := parseValid(t, source)
	if len(program.Statements) != 1 {
		t.Errorf("statements = %d, want 1", len(program.Statements))
	}
	if len(program.Comments) != 2 {
		t.Errorf("comments = %d, want 2", len(program.Comments))
	}
}

func TestParse_OrphanClauses(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "orphan catch", source: "catch err:\n    session \"never\"\n"},
		{name: "orphan finally", source: "finally:\n    session \"never\"\n"},
		{name: "orphan elif", source: "elif **x**:\n    session \"never\"\n"},
		{name: "orphan else", source: "else:\n    session \"never\"\n"},
		{name: "orphan option", source: "option \"a\":\n    session \"never\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse(tt.source)
			errs := result.Diagnostics.Errors()
			if len(errs) != 1 {
				t.Fatalf("errors = %d (%v), want exactly 1", len(errs), errs)
			}
			if errs[0].Code != "orphan-clause" {
				t.Errorf("code = %q, want orphan-clause", errs[0].Code)
			}
		})
	}
}

func TestParse_RecoversAndContinues(t *testing.T) {
	source := strings.Join([]string{
		"let = broken",
		`session "still parsed"`,
		``,
	}, "\n")

	result := Parse(source)
	if !result.Diagnostics.HasErrors() {
		t.Fatal("expected at least one error")
	}

	found := false
	for _, stmt := range result.Program.Statements {
		if sess, ok := stmt.(*ast.SessionStatement); ok && sess.Prompt != nil && sess.Prompt.Value == "still parsed" {
			found = true
		}
	}
	if !found {
		t.Error("statement after the damaged line was not parsed")
	}
}

func TestParse_UnexpectedTopLevelIndent(t *testing.T) {
	result := Parse("    session \"indented\"\n")
	if !result.Diagnostics.HasCode("unexpected-indent") {
		t.Errorf("expected unexpected-indent, got %v", result.Diagnostics)
	}
}

func TestParse_MaxDepth(t *testing.T) {
	var b strings.Builder
	depth := 8
	for i := 0; i < depth; i++ {
		b.WriteString(strings.Repeat("    ", i))
		b.WriteString("if **go deeper**:\n")
	}
	b.WriteString(strings.Repeat("    ", depth))
	b.WriteString("session \"bottom\"\n")

	result := Parse(b.String(), WithMaxDepth(4))
	if !result.Diagnostics.HasCode("max-depth-exceeded") {
		t.Errorf("expected max-depth-exceeded, got %v", result.Diagnostics)
	}
}

func TestParse_IndentWidthDoesNotMatter(t *testing.T) {
	two := Parse("if **x**:\n  session \"a\"\n")
	four := Parse("if **x**:\n    session \"a\"\n")

	if two.Diagnostics.HasErrors() || four.Diagnostics.HasErrors() {
		t.Fatalf("unexpected errors: %v / %v", two.Diagnostics, four.Diagnostics)
	}
	if len(two.Program.Statements) != len(four.Program.Statements) {
		t.Error("different statement counts for equivalent indentation widths")
	}
}
