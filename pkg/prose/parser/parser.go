package parser

import (
	"strings"

	"mercator-hq/prose/pkg/prose/ast"
	"mercator-hq/prose/pkg/prose/diag"
	"mercator-hq/prose/pkg/prose/lexer"
	"mercator-hq/prose/pkg/prose/token"
)

// Result holds the outcome of parsing one source text. Program is never
// nil: malformed input yields a partial program plus diagnostics, so
// callers can still validate and report whatever did parse.
type Result struct {
	Program     *ast.Program
	Diagnostics *diag.List
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxDepth caps statement nesting depth. Exceeding the cap is reported
// as a parse error instead of risking stack exhaustion on pathological
// input. Default: 64.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		if depth > 0 {
			p.maxDepth = depth
		}
	}
}

// WithLexerOptions forwards options to the lexer when parsing raw source
// through Parse. Ignored by New, which takes pre-lexed tokens.
func WithLexerOptions(opts ...lexer.Option) Option {
	return func(p *Parser) {
		p.lexerOpts = append(p.lexerOpts, opts...)
	}
}

// Parse tokenizes and parses a full source text. Lexer diagnostics are
// merged into the result ahead of parse diagnostics.
func Parse(source string, opts ...Option) *Result {
	// Lexer options have to be known before tokenizing, so collect them
	// with a throwaway parser first.
	scratch := &Parser{}
	for _, opt := range opts {
		opt(scratch)
	}
	lexed := lexer.Tokenize(source, scratch.lexerOpts...)

	p := New(source, lexed.Tokens, opts...)
	program := p.parseProgram()

	diags := diag.NewList()
	diags.Merge(lexed.Diagnostics)
	diags.Merge(p.diags)

	return &Result{Program: program, Diagnostics: diags}
}

// Parser is a recursive-descent parser over a lexed token stream. It uses
// one token of lookahead, plus a second token for the session-header
// disambiguation, and recovers from errors by skipping to the next logical
// line rather than aborting.
type Parser struct {
	source   string
	tokens   []token.Token // significant tokens only; always ends with EOF
	pos      int
	diags    *diag.List
	comments []*ast.Comment

	depth     int
	maxDepth  int
	lexerOpts []lexer.Option
}

// New creates a parser over an already-lexed token stream. Comment trivia
// is split out of the grammar stream here and surfaces on Program.Comments.
func New(source string, tokens []token.Token, opts ...Option) *Parser {
	p := &Parser{
		source:   source,
		diags:    diag.NewList(),
		maxDepth: 64,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.tokens = make([]token.Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Trivia {
			if tok.Type == token.COMMENT {
				p.comments = append(p.comments, &ast.Comment{Text: tok.Value, Span: tok.Span})
			}
			continue
		}
		p.tokens = append(p.tokens, tok)
	}
	if len(p.tokens) == 0 {
		p.tokens = append(p.tokens, token.Token{Type: token.EOF})
	}

	return p
}

// ----- token cursor -----

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) at(tt token.Type) bool { return p.cur().Type == tt }

func (p *Parser) atEnd() bool { return p.at(token.EOF) }

func (p *Parser) advance() token.Token {
	tok := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

// match consumes the current token if it has the given type.
func (p *Parser) match(tt token.Type) bool {
	if p.at(tt) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of the given type, or records one error at the
// current position and continues as if the token were present.
func (p *Parser) expect(tt token.Type, context string) token.Token {
	if p.at(tt) {
		return p.advance()
	}
	p.errorHere("expected-token",
		"expected "+describe(tt)+" "+context+", found "+describeToken(p.cur()))
	return token.Token{Type: tt, Span: p.cur().Span}
}

func (p *Parser) prevEnd() token.Position {
	if p.pos == 0 {
		return p.cur().Span.Start
	}
	return p.tokens[p.pos-1].Span.End
}

func (p *Parser) spanFrom(start token.Position) token.Span {
	return token.Span{Start: start, End: p.prevEnd()}
}

// ----- diagnostics -----

func (p *Parser) errorHere(code, msg string) {
	p.diags.AddError(diag.StageParse, code, msg, p.cur().Span)
}

func (p *Parser) errorAt(code, msg string, span token.Span) {
	p.diags.AddError(diag.StageParse, code, msg, span)
}

// ----- recovery -----

// syncToNextLine discards tokens through the next NEWLINE, then skips any
// indented region that follows, so one bad statement costs exactly one
// diagnostic and takes its whole body with it.
func (p *Parser) syncToNextLine() {
	for !p.atEnd() && !p.at(token.NEWLINE) {
		p.advance()
	}
	p.match(token.NEWLINE)

	if p.at(token.INDENT) {
		p.skipBalanced()
	}
}

// skipBalanced consumes an INDENT..DEDENT region, including nested ones.
func (p *Parser) skipBalanced() {
	depth := 0
	for !p.atEnd() {
		switch p.cur().Type {
		case token.INDENT:
			depth++
		case token.DEDENT:
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

// ----- program -----

func (p *Parser) parseProgram() *ast.Program {
	program := &ast.Program{
		Statements: make([]ast.Statement, 0),
		Comments:   p.comments,
	}
	start := p.cur().Span.Start

	for !p.atEnd() {
		if p.match(token.NEWLINE) {
			continue
		}
		if p.at(token.INDENT) {
			p.errorHere("unexpected-indent", "unexpected indentation at top level")
			p.skipBalanced()
			continue
		}
		if p.match(token.DEDENT) {
			continue
		}

		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
	}

	program.Span = token.Span{Start: start, End: p.cur().Span.End}
	return program
}

// discretionAt builds a Discretion node from a DISCRETION token, recovering
// the multiline flag from the raw marker text.
func (p *Parser) discretionAt(tok token.Token) *ast.Discretion {
	raw := ""
	if tok.Span.Start.Offset < len(p.source) && tok.Span.End.Offset <= len(p.source) {
		raw = p.source[tok.Span.Start.Offset:tok.Span.End.Offset]
	}
	return &ast.Discretion{
		Expression: tok.Value,
		Multiline:  strings.HasPrefix(raw, "***"),
		Span:       tok.Span,
	}
}

func describe(tt token.Type) string {
	switch tt {
	case token.COLON:
		return "':'"
	case token.NEWLINE:
		return "end of line"
	case token.INDENT:
		return "an indented block"
	case token.DEDENT:
		return "end of block"
	case token.IDENT:
		return "an identifier"
	case token.STRING:
		return "a string"
	case token.NUMBER:
		return "a number"
	case token.ASSIGN:
		return "'='"
	case token.RPAREN:
		return "')'"
	case token.RBRACKET:
		return "']'"
	case token.RBRACE:
		return "'}'"
	case token.IN:
		return "'in'"
	case token.DISCRETION:
		return "a **discretion** condition"
	default:
		return tt.String()
	}
}

func describeToken(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.NEWLINE:
		return "end of line"
	case token.INDENT:
		return "indentation"
	case token.DEDENT:
		return "end of block"
	case token.STRING:
		return "string literal"
	default:
		if tok.Value != "" {
			return "'" + tok.Value + "'"
		}
		return tok.Type.String()
	}
}
