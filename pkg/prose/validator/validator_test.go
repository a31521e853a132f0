package validator

import (
	"fmt"
	"strings"
	"testing"

	"mercator-hq/prose/pkg/prose/diag"
	"mercator-hq/prose/pkg/prose/parser"
)

func validate(t *testing.T, source string) *Result {
	t.Helper()
	parsed := parser.Parse(source)
	if parsed.Diagnostics.HasErrors() {
		t.Fatalf("source does not parse: %v", parsed.Diagnostics.Errors())
	}
	return Validate(parsed.Program)
}

func errorCodes(r *Result) []string {
	codes := make([]string, 0, len(r.Errors))
	for _, d := range r.Errors {
		codes = append(codes, d.Code)
	}
	return codes
}

func warningCodes(r *Result) []string {
	codes := make([]string, 0, len(r.Warnings))
	for _, d := range r.Warnings {
		codes = append(codes, d.Code)
	}
	return codes
}

func contains(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

func TestValidate_EmptyProgram(t *testing.T) {
	result := validate(t, "")
	if !result.Valid {
		t.Errorf("empty program invalid: %v", result.Errors)
	}
	if len(result.Errors)+len(result.Warnings) != 0 {
		t.Errorf("diagnostics = %v %v, want none", result.Errors, result.Warnings)
	}
}

func TestValidate_References(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		wantValid bool
		wantError string
	}{
		{
			name:      "session with literal prompt",
			source:    `session "Hello"`,
			wantValid: true,
		},
		{
			name: "session referencing a defined agent",
			source: strings.Join([]string{
				"agent researcher:",
				"    model: opus",
				"session : researcher",
				"",
			}, "\n"),
			wantValid: true,
		},
		{
			name:      "session referencing an undefined agent",
			source:    "session : researcher",
			wantValid: false,
			wantError: "undefined-agent",
		},
		{
			name:      "bare session",
			source:    "session",
			wantValid: false,
			wantError: "session-missing-target",
		},
		{
			name:      "do on undefined block",
			source:    "do setup",
			wantValid: false,
			wantError: "undefined-block",
		},
		{
			name: "do before the block definition",
			source: strings.Join([]string{
				"do setup",
				"block setup:",
				`    session "prepare"`,
				"",
			}, "\n"),
			wantValid: true,
		},
		{
			name:      "undefined interpolation",
			source:    `session "analyze {topic}"`,
			wantValid: false,
			wantError: "undefined-variable",
		},
		{
			name: "interpolation of a declared variable",
			source: strings.Join([]string{
				`let topic = "economics"`,
				`session "analyze {topic}"`,
				"",
			}, "\n"),
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validate(t, tt.source)
			if result.Valid != tt.wantValid {
				t.Errorf("valid = %v, want %v (errors: %v)", result.Valid, tt.wantValid, result.Errors)
			}
			if tt.wantError != "" && !contains(errorCodes(result), tt.wantError) {
				t.Errorf("missing error %q, got %v", tt.wantError, errorCodes(result))
			}
		})
	}
}

func TestValidate_DuplicateAgentReportsOnce(t *testing.T) {
	source := strings.Join([]string{
		"agent researcher:",
		"    model: opus",
		"agent researcher:",
		"    model: sonnet",
		"",
	}, "\n")

	result := validate(t, source)
	if result.Valid {
		t.Fatal("duplicate agent accepted")
	}
	dups := 0
	for _, code := range errorCodes(result) {
		if code == "duplicate-agent" {
			dups++
		}
	}
	if dups != 1 {
		t.Errorf("duplicate-agent reported %d times, want exactly 1", dups)
	}
}

func TestValidate_BlockCycles(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		wantValid bool
	}{
		{
			name: "direct cycle",
			source: strings.Join([]string{
				"block a:",
				"    do a",
				"",
			}, "\n"),
			wantValid: false,
		},
		{
			name: "indirect cycle",
			source: strings.Join([]string{
				"block a:",
				"    do b",
				"block b:",
				"    do a",
				"",
			}, "\n"),
			wantValid: false,
		},
		{
			name: "diamond is not a cycle",
			source: strings.Join([]string{
				"block leaf:",
				`    session "work"`,
				"block left:",
				"    do leaf",
				"block right:",
				"    do leaf",
				"do left",
				"do right",
				"",
			}, "\n"),
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validate(t, tt.source)
			if result.Valid != tt.wantValid {
				t.Errorf("valid = %v, want %v (errors: %v)", result.Valid, tt.wantValid, result.Errors)
			}
			if !tt.wantValid && !contains(errorCodes(result), "block-cycle") {
				t.Errorf("missing block-cycle, got %v", errorCodes(result))
			}
		})
	}
}

func TestValidate_ScopeRules(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		wantValid   bool
		wantError   string
		wantWarning string
	}{
		{
			name: "if body bindings escape",
			source: strings.Join([]string{
				"if **ready**:",
				`    let result = session "work"`,
				`session "use {result}"`,
				"",
			}, "\n"),
			wantValid: true,
		},
		{
			name: "loop body bindings do not escape",
			source: strings.Join([]string{
				"loop until **done**:",
				`    let draft = session "write"`,
				`session "publish {draft}"`,
				"",
			}, "\n"),
			wantValid: false,
			wantError: "undefined-variable",
		},
		{
			name: "for body bindings do not escape",
			source: strings.Join([]string{
				"for item in [a, b]:",
				`    let note = session "annotate {item}"`,
				`session "collect {note}"`,
				"",
			}, "\n"),
			wantValid: false,
			wantError: "undefined-variable",
		},
		{
			name: "same scope redeclaration",
			source: strings.Join([]string{
				`let x = "a"`,
				`let x = "b"`,
				"",
			}, "\n"),
			wantValid: false,
			wantError: "duplicate-variable",
		},
		{
			name: "inner scope shadow warns",
			source: strings.Join([]string{
				`let x = "outer"`,
				"loop:",
				`    let x = "inner"`,
				"",
			}, "\n"),
			wantValid:   true,
			wantWarning: "shadowed-variable",
		},
		{
			name: "const reassignment",
			source: strings.Join([]string{
				`const depth = "full"`,
				`depth = "shallow"`,
				"",
			}, "\n"),
			wantValid: false,
			wantError: "const-reassignment",
		},
		{
			name:      "assignment to undeclared",
			source:    `x = "value"`,
			wantValid: false,
			wantError: "undefined-variable",
		},
		{
			name: "do splices block bindings",
			source: strings.Join([]string{
				"block setup:",
				`    let env = "staging"`,
				"do setup",
				`session "deploy to {env}"`,
				"",
			}, "\n"),
			wantValid: true,
		},
		{
			name: "catch variable usable after",
			source: strings.Join([]string{
				"try:",
				`    session "risky"`,
				"catch err:",
				`    session "failed: {err}"`,
				"",
			}, "\n"),
			wantValid: true,
		},
		{
			name: "variable colliding with agent name",
			source: strings.Join([]string{
				"agent writer:",
				"    model: opus",
				`let writer = "not the agent"`,
				"",
			}, "\n"),
			wantValid: false,
			wantError: "name-collision",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validate(t, tt.source)
			if result.Valid != tt.wantValid {
				t.Errorf("valid = %v, want %v (errors: %v)", result.Valid, tt.wantValid, result.Errors)
			}
			if tt.wantError != "" && !contains(errorCodes(result), tt.wantError) {
				t.Errorf("missing error %q, got %v", tt.wantError, errorCodes(result))
			}
			if tt.wantWarning != "" && !contains(warningCodes(result), tt.wantWarning) {
				t.Errorf("missing warning %q, got %v", tt.wantWarning, warningCodes(result))
			}
		})
	}
}

func TestValidate_ParallelRules(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		wantValid bool
	}{
		{
			name: "any without count",
			source: strings.Join([]string{
				`parallel ("any"):`,
				`    session "one"`,
				`    session "two"`,
				"",
			}, "\n"),
			wantValid: false,
		},
		{
			name: "any count exceeds branches",
			source: strings.Join([]string{
				`parallel ("any", 5):`,
				`    session "one"`,
				`    session "two"`,
				"",
			}, "\n"),
			wantValid: false,
		},
		{
			name: "first with one branch",
			source: strings.Join([]string{
				`parallel ("first"):`,
				`    session "only"`,
				"",
			}, "\n"),
			wantValid: false,
		},
		{
			name: "branch results bind after the block",
			source: strings.Join([]string{
				"parallel:",
				`    a = session "one"`,
				`    b = session "two"`,
				`session "combine {a} and {b}"`,
				"",
			}, "\n"),
			wantValid: true,
		},
		{
			name: "branch variables stay isolated from siblings",
			source: strings.Join([]string{
				"parallel:",
				`    session "plain branch"`,
				`    let tmp = session "other branch"`,
				`session "use {tmp}"`,
				"",
			}, "\n"),
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validate(t, tt.source)
			if result.Valid != tt.wantValid {
				t.Errorf("valid = %v, want %v (errors: %v)", result.Valid, tt.wantValid, result.Errors)
			}
		})
	}
}

func TestValidate_PromptWarnings(t *testing.T) {
	t.Run("empty prompt", func(t *testing.T) {
		result := validate(t, `session ""`)
		if !result.Valid {
			t.Errorf("empty prompt should be valid, got %v", result.Errors)
		}
		if !contains(warningCodes(result), "empty-prompt") {
			t.Errorf("missing empty-prompt warning, got %v", warningCodes(result))
		}
	})

	t.Run("prompt at the length boundary", func(t *testing.T) {
		atLimit := validate(t, `session "`+strings.Repeat("a", 10000)+`"`)
		if contains(warningCodes(atLimit), "long-prompt") {
			t.Error("10000-character prompt warned")
		}

		overLimit := validate(t, `session "`+strings.Repeat("a", 10001)+`"`)
		if !contains(warningCodes(overLimit), "long-prompt") {
			t.Errorf("10001-character prompt did not warn, got %v", warningCodes(overLimit))
		}
		if !overLimit.Valid {
			t.Error("long prompt should stay valid")
		}
	})
}

func TestValidate_Properties(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		wantValid   bool
		wantWarning string
		wantError   string
	}{
		{
			name: "unknown session property warns",
			source: strings.Join([]string{
				`session "work"`,
				"    temperature: high",
				"",
			}, "\n"),
			wantValid:   true,
			wantWarning: "unknown-property",
		},
		{
			name: "skills is valid on agents",
			source: strings.Join([]string{
				"import web_search",
				"agent researcher:",
				"    skills: [web_search]",
				"",
			}, "\n"),
			wantValid: true,
		},
		{
			name: "unimported skill warns",
			source: strings.Join([]string{
				"agent researcher:",
				"    skills: [web_search]",
				"",
			}, "\n"),
			wantValid:   true,
			wantWarning: "unimported-skill",
		},
		{
			name: "negative retry is an error",
			source: strings.Join([]string{
				`session "work"`,
				"    retry: -1",
				"",
			}, "\n"),
			wantValid: false,
			wantError: "invalid-retry",
		},
		{
			name: "fractional retry is an error",
			source: strings.Join([]string{
				`session "work"`,
				"    retry: 1.5",
				"",
			}, "\n"),
			wantValid: false,
			wantError: "invalid-retry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validate(t, tt.source)
			if result.Valid != tt.wantValid {
				t.Errorf("valid = %v, want %v (errors: %v)", result.Valid, tt.wantValid, result.Errors)
			}
			if tt.wantWarning != "" && !contains(warningCodes(result), tt.wantWarning) {
				t.Errorf("missing warning %q, got %v", tt.wantWarning, warningCodes(result))
			}
			if tt.wantError != "" && !contains(errorCodes(result), tt.wantError) {
				t.Errorf("missing error %q, got %v", tt.wantError, errorCodes(result))
			}
		})
	}
}

func TestValidate_Suggestions(t *testing.T) {
	source := strings.Join([]string{
		"agent researcher:",
		"    model: opus",
		"session : reseacher",
		"",
	}, "\n")

	result := validate(t, source)
	if result.Valid {
		t.Fatal("typo accepted")
	}
	found := false
	for _, err := range result.Errors {
		if err.Code == "undefined-agent" && strings.Contains(err.Suggestion, "researcher") {
			found = true
		}
	}
	if !found {
		t.Errorf("no suggestion mentioning researcher in %v", result.Errors)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	// The mutual block cycle matters here: cycle detection walks a graph
	// held in maps, and used to report a different do statement depending
	// on iteration order.
	source := strings.Join([]string{
		"agent researcher:",
		"    model: opus",
		"block a:",
		"    do b",
		"block b:",
		"    do a",
		"session : reseacher",
		`session "analyze {topic}"`,
		"",
	}, "\n")

	parsed := parser.Parse(source)
	first := Validate(parsed.Program)

	for run := 0; run < 20; run++ {
		again := Validate(parsed.Program)
		if first.Valid != again.Valid {
			t.Fatalf("valid changed between runs: %v then %v", first.Valid, again.Valid)
		}
		if diff := diffDiagnostics(first.Diagnostics(), again.Diagnostics()); diff != "" {
			t.Fatalf("diagnostics changed on run %d: %s", run, diff)
		}
	}
}

// diffDiagnostics compares two diagnostic lists field by field and returns
// a description of the first difference, or "" when they are equivalent.
func diffDiagnostics(a, b []*diag.Diagnostic) string {
	if len(a) != len(b) {
		return fmt.Sprintf("count %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Code != b[i].Code || a[i].Message != b[i].Message ||
			a[i].Suggestion != b[i].Suggestion || a[i].Span != b[i].Span {
			return fmt.Sprintf("diagnostic %d: %q at %s vs %q at %s",
				i, a[i].Message, a[i].Span, b[i].Message, b[i].Span)
		}
	}
	return ""
}

func TestValidate_NestedDefinitions(t *testing.T) {
	source := strings.Join([]string{
		"block outer:",
		"    block inner:",
		`        session "nested"`,
		"",
	}, "\n")

	result := validate(t, source)
	if result.Valid {
		t.Fatal("nested block definition accepted")
	}
	if !contains(errorCodes(result), "nested-definition") {
		t.Errorf("missing nested-definition, got %v", errorCodes(result))
	}
}
