package lexer

import (
	"mercator-hq/prose/pkg/prose/diag"
	"mercator-hq/prose/pkg/prose/token"
)

// Result holds the outcome of tokenizing one source text. The token stream
// is always terminated (DEDENTs for every open level, then EOF), even when
// the input is malformed, so the parser never has to handle a truncated
// stream.
type Result struct {
	Tokens      []token.Token
	Diagnostics *diag.List
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithComments controls whether COMMENT tokens are emitted. Default: true.
func WithComments(include bool) Option {
	return func(l *Lexer) { l.includeComments = include }
}

// WithTabWidth sets the tab width used when measuring indentation. Tabs
// round the current column up to the next multiple of this width.
// Default: 4.
func WithTabWidth(width int) Option {
	return func(l *Lexer) {
		if width > 0 {
			l.tabWidth = width
		}
	}
}

// Tokenize scans a full source text into a token stream. It never fails:
// malformed input produces diagnostics plus best-effort recovery tokens.
func Tokenize(source string, opts ...Option) *Result {
	l := New(source, opts...)
	l.run()
	return &Result{Tokens: l.tokens, Diagnostics: l.diags}
}

// Lexer scans Prose source text. All state lives on the struct; a Lexer is
// used for a single source text and is not safe for concurrent use.
type Lexer struct {
	src  string
	cur  int // byte offset of the next unread character
	line int // 1-based
	col  int // 1-based column of the next unread character

	indents     []int // open indentation levels, always starts [0]
	atLineStart bool

	tokens []token.Token
	diags  *diag.List

	includeComments bool
	tabWidth        int
}

// New creates a lexer over the given source.
func New(source string, opts ...Option) *Lexer {
	l := &Lexer{
		src:             source,
		line:            1,
		col:             1,
		indents:         []int{0},
		atLineStart:     true,
		tokens:          make([]token.Token, 0, len(source)/8),
		diags:           diag.NewList(),
		includeComments: true,
		tabWidth:        4,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ----- cursor -----

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) peekAt(n int) (byte, bool) {
	idx := l.cur + n
	if idx >= len(l.src) {
		return 0, false
	}
	return l.src[idx], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) pos() token.Position {
	return token.Position{Line: l.line, Column: l.col, Offset: l.cur}
}

func (l *Lexer) emit(tt token.Type, value string, start token.Position) {
	l.tokens = append(l.tokens, token.Token{
		Type:  tt,
		Value: value,
		Span:  token.Span{Start: start, End: l.pos()},
	})
}

func (l *Lexer) errorAt(code, msg string, start token.Position) {
	l.diags.AddError(diag.StageLex, code, msg, token.Span{Start: start, End: l.pos()})
}

func (l *Lexer) warnAt(code, msg string, start token.Position) {
	l.diags.AddWarning(diag.StageLex, code, msg, token.Span{Start: start, End: l.pos()})
}

// lastSignificant returns the last non-trivia token emitted, or nil.
func (l *Lexer) lastSignificant() *token.Token {
	for i := len(l.tokens) - 1; i >= 0; i-- {
		if !l.tokens[i].Trivia {
			return &l.tokens[i]
		}
	}
	return nil
}

// ----- main loop -----

func (l *Lexer) run() {
	for !l.isAtEnd() {
		if l.atLineStart {
			l.handleLineStart()
			continue
		}
		l.scanToken()
	}

	// Terminate the final logical line if it lacked a trailing newline.
	if last := l.lastSignificant(); last != nil && last.Type != token.NEWLINE {
		l.emit(token.NEWLINE, "", l.pos())
	}

	// Close every open indentation level.
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.emit(token.DEDENT, "", l.pos())
	}

	l.emit(token.EOF, "", l.pos())
}

// handleLineStart measures leading whitespace and emits INDENT/DEDENT
// tokens. Blank lines and comment-only lines never change indentation.
func (l *Lexer) handleLineStart() {
	start := l.pos()
	width := 0
	for {
		ch, ok := l.peek()
		if !ok {
			return // trailing whitespace before EOF; run() finishes up
		}
		if ch == ' ' {
			width++
			l.advance()
			continue
		}
		if ch == '\t' {
			// Tabs round up to the next multiple of the tab width.
			width = (width/l.tabWidth + 1) * l.tabWidth
			l.advance()
			continue
		}
		break
	}

	ch, ok := l.peek()
	if !ok {
		return
	}

	switch ch {
	case '\n':
		l.advance()
		return // blank line
	case '\r':
		l.advance()
		if next, ok := l.peek(); ok && next == '\n' {
			l.advance()
		}
		return // blank line
	case '#':
		l.scanComment()
		// Consume the line terminator so the next line is measured fresh.
		if next, ok := l.peek(); ok && (next == '\n' || next == '\r') {
			l.advance()
			if next == '\r' {
				if nn, ok := l.peek(); ok && nn == '\n' {
					l.advance()
				}
			}
		}
		return
	}

	l.applyIndent(width, start)
	l.atLineStart = false
}

// applyIndent reconciles the measured width against the indent stack.
func (l *Lexer) applyIndent(width int, start token.Position) {
	top := l.indents[len(l.indents)-1]

	if width > top {
		l.indents = append(l.indents, width)
		l.emit(token.INDENT, "", start)
		return
	}

	for width < l.indents[len(l.indents)-1] {
		l.indents = l.indents[:len(l.indents)-1]
		l.emit(token.DEDENT, "", start)
	}

	if width != l.indents[len(l.indents)-1] {
		l.errorAt("inconsistent-indent",
			"inconsistent indentation: dedent does not match any outer indentation level", start)
		// Recover by treating this width as a valid level.
		l.indents = append(l.indents, width)
	}
}

// scanToken scans one token from within a logical line.
func (l *Lexer) scanToken() {
	// Skip inline whitespace.
	for {
		ch, ok := l.peek()
		if !ok {
			return
		}
		if ch == ' ' || ch == '\t' {
			l.advance()
			continue
		}
		break
	}

	start := l.pos()
	ch, ok := l.peek()
	if !ok {
		return
	}

	switch {
	case ch == '\n':
		l.advance()
		l.emit(token.NEWLINE, "", start)
		l.atLineStart = true
	case ch == '\r':
		l.advance()
		if next, ok := l.peek(); ok && next == '\n' {
			l.advance()
		}
		l.emit(token.NEWLINE, "", start)
		l.atLineStart = true
	case ch == '#':
		l.scanComment()
	case ch == '"':
		l.scanString(start)
	case ch == '*':
		l.scanDiscretion(start)
	case isDigit(ch):
		l.scanNumber(start)
	case isIdentStart(ch):
		l.scanIdentifier(start)
	default:
		l.scanPunctuation(ch, start)
	}
}

func (l *Lexer) scanPunctuation(ch byte, start token.Position) {
	single := map[byte]token.Type{
		':': token.COLON,
		',': token.COMMA,
		'=': token.ASSIGN,
		'|': token.PIPE,
		'(': token.LPAREN,
		')': token.RPAREN,
		'[': token.LBRACKET,
		']': token.RBRACKET,
		'{': token.LBRACE,
		'}': token.RBRACE,
	}

	if tt, ok := single[ch]; ok {
		l.advance()
		l.emit(tt, string(ch), start)
		return
	}

	if ch == '-' {
		if next, ok := l.peekAt(1); ok && next == '>' {
			l.advance()
			l.advance()
			l.emit(token.ARROW, "->", start)
			return
		}
	}

	l.advance()
	l.errorAt("unexpected-character", "unexpected character "+quoteByte(ch), start)
	l.emit(token.ILLEGAL, string(ch), start)
}

// scanComment consumes a '#' comment up to (not including) the line
// terminator. Comment tokens are trivia: they never affect the grammar.
func (l *Lexer) scanComment() {
	start := l.pos()
	for {
		ch, ok := l.peek()
		if !ok || ch == '\n' || ch == '\r' {
			break
		}
		l.advance()
	}
	if l.includeComments {
		tok := token.Token{
			Type:   token.COMMENT,
			Value:  l.src[start.Offset:l.cur],
			Span:   token.Span{Start: start, End: l.pos()},
			Trivia: true,
		}
		l.tokens = append(l.tokens, tok)
	}
}

func (l *Lexer) scanNumber(start token.Position) {
	for {
		ch, ok := l.peek()
		if !ok || !isDigit(ch) {
			break
		}
		l.advance()
	}
	// Decimal part only when a digit follows the dot; "3." stays NUMBER "3"
	// followed by an unexpected '.'.
	if ch, ok := l.peek(); ok && ch == '.' {
		if next, ok := l.peekAt(1); ok && isDigit(next) {
			l.advance()
			for {
				ch, ok := l.peek()
				if !ok || !isDigit(ch) {
					break
				}
				l.advance()
			}
		}
	}
	l.emit(token.NUMBER, l.src[start.Offset:l.cur], start)
}

// scanIdentifier scans an identifier or keyword. Hyphens are legal inside
// identifiers (kebab-case agent and block names), but a trailing "->" must
// stay an arrow: consumption stops when the next two characters are "->".
func (l *Lexer) scanIdentifier(start token.Position) {
	l.advance()
	for {
		ch, ok := l.peek()
		if !ok || !isIdentPart(ch) {
			break
		}
		if ch == '-' {
			if next, ok := l.peekAt(1); ok && next == '>' {
				break
			}
		}
		l.advance()
	}

	text := l.src[start.Offset:l.cur]
	l.emit(token.Lookup(text), text, start)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isIdentStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || isDigit(b) || b == '-'
}

func quoteByte(b byte) string {
	return "'" + string(b) + "'"
}
