package compiler

import (
	"strings"
	"testing"

	"mercator-hq/prose/pkg/prose/parser"
)

func compileSource(t *testing.T, source string) *Result {
	t.Helper()
	parsed := parser.Parse(source)
	if parsed.Diagnostics.HasErrors() {
		t.Fatalf("source does not parse: %v", parsed.Diagnostics.Errors())
	}
	return Compile(parsed.Program)
}

func TestCompile_Canonicalization(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "empty program",
			source: "",
			want:   "",
		},
		{
			name:   "simple session",
			source: `session "Hello"`,
			want:   "session \"Hello\"\n",
		},
		{
			name:   "comments are stripped",
			source: "# header\nsession \"work\"  # inline\n",
			want:   "session \"work\"\n",
		},
		{
			name:   "two space indentation becomes four",
			source: "if **ready**:\n  session \"go\"\n",
			want:   "if **ready**:\n    session \"go\"\n",
		},
		{
			name:   "import list",
			source: "import web_search,  file_io\n",
			want:   "import web_search, file_io\n",
		},
		{
			name:   "agent definition",
			source: "agent writer:\n        model: opus\n        retry: 2\n",
			want:   "agent writer:\n    model: opus\n    retry: 2\n",
		},
		{
			name:   "escapes survive via raw text",
			source: `session "line one\nline two"`,
			want:   "session \"line one\\nline two\"\n",
		},
		{
			name:   "interpolations survive",
			source: "let topic = \"go\"\nsession \"study {topic}\"\n",
			want:   "let topic = \"go\"\nsession \"study {topic}\"\n",
		},
		{
			name:   "arrow chain",
			source: `session "a" -> session "b"`,
			want:   "session \"a\" -> session \"b\"\n",
		},
		{
			name:   "parallel default strategy",
			source: "parallel:\n    a = session \"one\"\n    b = session \"two\"\n",
			want:   "parallel:\n    a = session \"one\"\n    b = session \"two\"\n",
		},
		{
			name:   "parallel any form",
			source: "parallel (\"any\", 2):\n    session \"one\"\n    session \"two\"\n    session \"three\"\n",
			want:   "parallel (\"any\", 2):\n    session \"one\"\n    session \"two\"\n    session \"three\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := compileSource(t, tt.source)
			if result.Code != tt.want {
				t.Errorf("canonical form:\n%q\nwant:\n%q", result.Code, tt.want)
			}
		})
	}
}

func TestCompile_StrippedCommentCount(t *testing.T) {
	result := compileSource(t, "# one\nsession \"x\"  # two\n# three\n")
	if result.StrippedComments != 3 {
		t.Errorf("stripped = %d, want 3", result.StrippedComments)
	}
}

// Canonical output must itself be a fixed point: compiling the re-parsed
// canonical form yields the same text.
func TestCompile_RoundTrip(t *testing.T) {
	sources := map[string]string{
		"workflow with control flow": strings.Join([]string{
			"import web_search",
			"",
			"agent researcher:",
			`    model: opus`,
			`    prompt: "You research topics"`,
			"    skills: [web_search]",
			"",
			"block gather(topic):",
			`    session "collect sources on {topic}"`,
			"",
			`let topic = "distributed consensus"`,
			`do gather ("raft")`,
			"",
			"if **the sources look credible**:",
			`    let summary = session "summarize the findings"`,
			"else:",
			`    session "search again"`,
			"",
			"loop until **the draft is polished** as round (5):",
			`    session "revise draft, round {round}"`,
			"",
			"try:",
			"    session : researcher",
			"catch err:",
			`    session "recover: {err}"`,
			"finally:",
			`    session "archive everything"`,
			"",
		}, "\n"),
		"pipelines and choice": strings.Join([]string{
			"let sources = [a, b, c]",
			"sources | map (item):",
			`    session "summarize {item}"`,
			"| filter (summary):",
			`    session "keep useful: {summary}"`,
			"",
			"choice **pick a direction**:",
			`    option "fast":`,
			`        session "quick pass"`,
			`    option "careful":`,
			`        session "slow pass"`,
			"",
		}, "\n"),
	}

	for name, source := range sources {
		t.Run(name, func(t *testing.T) {
			first := compileSource(t, source)

			reparsed := parser.Parse(first.Code)
			if reparsed.Diagnostics.HasErrors() {
				t.Fatalf("canonical output does not re-parse: %v\noutput:\n%s",
					reparsed.Diagnostics.Errors(), first.Code)
			}

			second := Compile(reparsed.Program)
			if second.Code != first.Code {
				t.Errorf("canonical form is not a fixed point:\nfirst:\n%s\nsecond:\n%s",
					first.Code, second.Code)
			}
		})
	}
}

func TestCompile_SourceMap(t *testing.T) {
	source := strings.Join([]string{
		"# header comment",
		"",
		`let x = "a"`,
		"if **ready**:",
		`    session "go {x}"`,
		"",
	}, "\n")

	result := compileSource(t, source)

	// Line 1 of output is the let on source line 3.
	if got := result.SourceMap.SourceLine(1); got != 3 {
		t.Errorf("output line 1 maps to source line %d, want 3", got)
	}
	// Line 3 of output is the session on source line 5.
	if got := result.SourceMap.SourceLine(3); got != 5 {
		t.Errorf("output line 3 maps to source line %d, want 5", got)
	}
	if result.SourceMap.SourceLine(99) != 0 {
		t.Error("unmapped line should return 0")
	}
}
