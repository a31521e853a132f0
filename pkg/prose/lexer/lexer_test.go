package lexer

import (
	"strings"
	"testing"

	"mercator-hq/prose/pkg/prose/token"
)

func tokenTypes(t *testing.T, source string) []token.Type {
	t.Helper()
	result := Tokenize(source)
	types := make([]token.Type, 0, len(result.Tokens))
	for _, tok := range result.Tokens {
		types = append(types, tok.Type)
	}
	return types
}

func equalTypes(a, b []token.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTokenize_Basic(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []token.Type
	}{
		{
			name:   "empty source",
			source: "",
			want:   []token.Type{token.EOF},
		},
		{
			name:   "single session",
			source: `session "Hello"`,
			want:   []token.Type{token.SESSION, token.STRING, token.NEWLINE, token.EOF},
		},
		{
			name:   "let binding",
			source: `let x = "value"`,
			want:   []token.Type{token.LET, token.IDENT, token.ASSIGN, token.STRING, token.NEWLINE, token.EOF},
		},
		{
			name:   "keywords are case sensitive",
			source: "Session",
			want:   []token.Type{token.IDENT, token.NEWLINE, token.EOF},
		},
		{
			name:   "arrow operator",
			source: `session "a" -> session "b"`,
			want: []token.Type{
				token.SESSION, token.STRING, token.ARROW,
				token.SESSION, token.STRING, token.NEWLINE, token.EOF,
			},
		},
		{
			name:   "number literal",
			source: "repeat 3 times:",
			want:   []token.Type{token.REPEAT, token.NUMBER, token.TIMES, token.COLON, token.NEWLINE, token.EOF},
		},
		{
			name:   "array literal",
			source: "let xs = [a, b]",
			want: []token.Type{
				token.LET, token.IDENT, token.ASSIGN,
				token.LBRACKET, token.IDENT, token.COMMA, token.IDENT, token.RBRACKET,
				token.NEWLINE, token.EOF,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenTypes(t, tt.source)
			if !equalTypes(got, tt.want) {
				t.Errorf("token types = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenize_Indentation(t *testing.T) {
	source := "block setup:\n    let x = \"a\"\n    let y = \"b\"\nsession \"done\"\n"
	want := []token.Type{
		token.BLOCK, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT,
		token.LET, token.IDENT, token.ASSIGN, token.STRING, token.NEWLINE,
		token.LET, token.IDENT, token.ASSIGN, token.STRING, token.NEWLINE,
		token.DEDENT,
		token.SESSION, token.STRING, token.NEWLINE,
		token.EOF,
	}
	got := tokenTypes(t, source)
	if !equalTypes(got, want) {
		t.Errorf("token types = %v, want %v", got, want)
	}
}

func TestTokenize_DedentAtEOF(t *testing.T) {
	source := "if **ready**:\n    if **still ready**:\n        session \"go\""
	result := Tokenize(source)

	dedents := 0
	for _, tok := range result.Tokens {
		if tok.Type == token.DEDENT {
			dedents++
		}
	}
	if dedents != 2 {
		t.Errorf("dedents at EOF = %d, want 2", dedents)
	}
	last := result.Tokens[len(result.Tokens)-1]
	if last.Type != token.EOF {
		t.Errorf("last token = %v, want EOF", last.Type)
	}
}

func TestTokenize_BlankAndCommentLinesIgnoreIndentation(t *testing.T) {
	source := "block setup:\n    let x = \"a\"\n\n        # indented comment\n    let y = \"b\"\n"
	result := Tokenize(source)

	if result.Diagnostics.HasErrors() {
		t.Fatalf("unexpected errors: %v", result.Diagnostics.Errors())
	}
	indents, dedents := 0, 0
	for _, tok := range result.Tokens {
		switch tok.Type {
		case token.INDENT:
			indents++
		case token.DEDENT:
			dedents++
		}
	}
	if indents != 1 || dedents != 1 {
		t.Errorf("indents=%d dedents=%d, want 1 and 1", indents, dedents)
	}
}

func TestTokenize_TabsRoundUp(t *testing.T) {
	// A tab advances to the next multiple of four, so tab and four spaces
	// produce the same indentation level.
	tabbed := Tokenize("if **x**:\n\tsession \"a\"\n")
	spaced := Tokenize("if **x**:\n    session \"a\"\n")

	if tabbed.Diagnostics.HasErrors() {
		t.Fatalf("unexpected errors: %v", tabbed.Diagnostics.Errors())
	}
	if len(tabbed.Tokens) != len(spaced.Tokens) {
		t.Fatalf("token count %d != %d", len(tabbed.Tokens), len(spaced.Tokens))
	}
	for i := range tabbed.Tokens {
		if tabbed.Tokens[i].Type != spaced.Tokens[i].Type {
			t.Errorf("token %d: %v != %v", i, tabbed.Tokens[i].Type, spaced.Tokens[i].Type)
		}
	}
}

func TestTokenize_InconsistentIndent(t *testing.T) {
	// Dedent to a width that matches no open level.
	source := "if **a**:\n        session \"x\"\n    session \"y\"\n"
	result := Tokenize(source)

	if !result.Diagnostics.HasCode("inconsistent-indent") {
		t.Errorf("expected inconsistent-indent, got %v", result.Diagnostics.Errors())
	}
}

func TestTokenize_CommentTokens(t *testing.T) {
	source := "# leading comment\nsession \"hi\"  # trailing\n"

	withComments := Tokenize(source)
	count := 0
	for _, tok := range withComments.Tokens {
		if tok.Type == token.COMMENT {
			count++
		}
	}
	if count != 2 {
		t.Errorf("comment tokens = %d, want 2", count)
	}

	without := Tokenize(source, WithComments(false))
	for _, tok := range without.Tokens {
		if tok.Type == token.COMMENT {
			t.Error("comment token present with comments disabled")
		}
	}
}

func TestTokenize_Strings(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		wantValue string
		wantCode  string
	}{
		{
			name:      "plain string",
			source:    `session "hello world"`,
			wantValue: "hello world",
		},
		{
			name:      "hash inside string is not a comment",
			source:    `session "hello # not a comment"`,
			wantValue: "hello # not a comment",
		},
		{
			name:      "newline escape",
			source:    `session "a\nb"`,
			wantValue: "a\nb",
		},
		{
			name:      "escaped quote",
			source:    `session "say \"hi\""`,
			wantValue: `say "hi"`,
		},
		{
			name:      "escaped braces",
			source:    `session "literal \{brace\}"`,
			wantValue: "literal {brace}",
		},
		{
			name:      "unicode escape",
			source:    `session "snowman ☃"`,
			wantValue: "snowman ☃",
		},
		{
			name:      "unknown escape kept literally",
			source:    `session "odd \q escape"`,
			wantValue: `odd \q escape`,
			wantCode:  "bad-escape",
		},
		{
			name:     "unterminated string",
			source:   `session "never closed`,
			wantCode: "unterminated-string",
		},
		{
			name:      "triple quoted keeps backslashes raw",
			source:    `session """raw \n text"""`,
			wantValue: `raw \n text`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Tokenize(tt.source)

			if tt.wantCode != "" {
				if !result.Diagnostics.HasCode(tt.wantCode) {
					t.Errorf("missing diagnostic %q, got %v", tt.wantCode, result.Diagnostics)
				}
			} else if result.Diagnostics.Count() != 0 {
				t.Errorf("unexpected diagnostics: %v", result.Diagnostics)
			}

			if tt.wantValue != "" {
				var str *token.Token
				for i := range result.Tokens {
					if result.Tokens[i].Type == token.STRING {
						str = &result.Tokens[i]
						break
					}
				}
				if str == nil {
					t.Fatal("no string token produced")
				}
				if str.Value != tt.wantValue {
					t.Errorf("string value = %q, want %q", str.Value, tt.wantValue)
				}
			}
		})
	}
}

func TestTokenize_Interpolation(t *testing.T) {
	result := Tokenize(`session "analyze {topic} for {audience}"`)

	var str *token.Token
	for i := range result.Tokens {
		if result.Tokens[i].Type == token.STRING {
			str = &result.Tokens[i]
		}
	}
	if str == nil || str.StringMeta == nil {
		t.Fatal("string token or metadata missing")
	}

	interps := str.StringMeta.Interpolations
	if len(interps) != 2 {
		t.Fatalf("interpolations = %d, want 2", len(interps))
	}
	if interps[0].Name != "topic" || interps[1].Name != "audience" {
		t.Errorf("interpolation names = %q, %q", interps[0].Name, interps[1].Name)
	}
	// Braces stay in the cooked value verbatim.
	if !strings.Contains(str.Value, "{topic}") {
		t.Errorf("value %q lost its interpolation braces", str.Value)
	}
}

func TestTokenize_InvalidInterpolationIsLiteral(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "space in braces", source: `session "not {an interp}"`},
		{name: "empty braces", source: `session "empty {}"`},
		{name: "unclosed brace", source: `session "open {forever"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Tokenize(tt.source)
			if result.Diagnostics.HasErrors() {
				t.Errorf("unexpected errors: %v", result.Diagnostics.Errors())
			}
			for _, tok := range result.Tokens {
				if tok.Type == token.STRING && tok.StringMeta != nil && len(tok.StringMeta.Interpolations) != 0 {
					t.Errorf("recorded interpolations %v for literal braces", tok.StringMeta.Interpolations)
				}
			}
		})
	}
}

func TestTokenize_Discretion(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		wantValue string
		wantCode  string
	}{
		{
			name:      "inline marker",
			source:    "if **the tests pass**:",
			wantValue: "the tests pass",
		},
		{
			name:      "multiline marker",
			source:    "if ***the review\nfound no blocking issues***:",
			wantValue: "the review\nfound no blocking issues",
		},
		{
			name:     "inline marker does not span lines",
			source:   "if **broken\ncondition**:",
			wantCode: "unterminated-discretion",
		},
		{
			name:     "lone asterisk",
			source:   "if *oops*:",
			wantCode: "unexpected-character",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Tokenize(tt.source)

			if tt.wantCode != "" {
				if !result.Diagnostics.HasCode(tt.wantCode) {
					t.Errorf("missing diagnostic %q, got %v", tt.wantCode, result.Diagnostics)
				}
				return
			}

			var disc *token.Token
			for i := range result.Tokens {
				if result.Tokens[i].Type == token.DISCRETION {
					disc = &result.Tokens[i]
				}
			}
			if disc == nil {
				t.Fatal("no discretion token produced")
			}
			if disc.Value != tt.wantValue {
				t.Errorf("discretion value = %q, want %q", disc.Value, tt.wantValue)
			}
		})
	}
}

func TestTokenize_Positions(t *testing.T) {
	result := Tokenize("let x = \"a\"\nlet y = \"b\"\n")

	var second *token.Token
	seen := 0
	for i := range result.Tokens {
		if result.Tokens[i].Type == token.LET {
			seen++
			if seen == 2 {
				second = &result.Tokens[i]
			}
		}
	}
	if second == nil {
		t.Fatal("second let not found")
	}
	if second.Span.Start.Line != 2 || second.Span.Start.Column != 1 {
		t.Errorf("second let at %d:%d, want 2:1", second.Span.Start.Line, second.Span.Start.Column)
	}
}
