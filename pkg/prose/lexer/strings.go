package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"mercator-hq/prose/pkg/prose/token"
)

// scanString scans either a single-line "..." literal or a triple-quoted
// """...""" literal. The opening quote has not been consumed yet.
//
// Single-line strings interpret backslash escapes; a raw newline before the
// closing quote is an error. Triple-quoted strings take every character
// literally (no escapes) and may span lines. Both forms record {name}
// interpolations while keeping the braces verbatim in the resolved value:
// substitution is the Orchestrator's job, not the toolchain's.
func (l *Lexer) scanString(start token.Position) {
	if l.hasTripleQuote() {
		l.scanTripleString(start)
		return
	}

	l.advance() // opening quote

	meta := &token.StringMeta{}
	var value strings.Builder
	terminated := false

scan:
	for {
		ch, ok := l.peek()
		if !ok {
			break
		}
		switch ch {
		case '"':
			l.advance()
			terminated = true
			break scan
		case '\n', '\r':
			break scan
		case '\\':
			l.scanEscape(&value, meta)
		case '{':
			l.scanInterpolation(&value, meta)
		default:
			l.advance()
			value.WriteByte(ch)
		}
	}

	if !terminated {
		l.errorAt("unterminated-string", "unterminated string literal", start)
	}

	meta.Raw = l.src[start.Offset:l.cur]
	l.emitString(value.String(), meta, start)
}

func (l *Lexer) hasTripleQuote() bool {
	b1, ok1 := l.peekAt(1)
	b2, ok2 := l.peekAt(2)
	return ok1 && ok2 && b1 == '"' && b2 == '"'
}

func (l *Lexer) scanTripleString(start token.Position) {
	l.advance()
	l.advance()
	l.advance() // opening """

	meta := &token.StringMeta{TripleQuoted: true}
	var value strings.Builder
	terminated := false

	for {
		ch, ok := l.peek()
		if !ok {
			break
		}
		if ch == '"' && l.hasTripleQuote() {
			l.advance()
			l.advance()
			l.advance()
			terminated = true
			break
		}
		if ch == '{' {
			l.scanInterpolation(&value, meta)
			continue
		}
		// No escape interpretation in triple-quoted strings: backslashes
		// pass through literally.
		l.advance()
		value.WriteByte(ch)
	}

	if !terminated {
		l.errorAt("unterminated-string", "unterminated triple-quoted string literal", start)
	}

	meta.Raw = l.src[start.Offset:l.cur]
	l.emitString(value.String(), meta, start)
}

func (l *Lexer) emitString(value string, meta *token.StringMeta, start token.Position) {
	l.tokens = append(l.tokens, token.Token{
		Type:       token.STRING,
		Value:      value,
		Span:       token.Span{Start: start, End: l.pos()},
		StringMeta: meta,
	})
}

// scanEscape consumes a backslash escape inside a single-line string.
// Unrecognized escapes are warnings, not errors: the escaped character is
// kept literally and scanning continues.
func (l *Lexer) scanEscape(value *strings.Builder, meta *token.StringMeta) {
	escStart := l.pos()
	l.advance() // backslash

	esc, ok := l.peek()
	if !ok {
		l.warnAt("bad-escape", "backslash at end of input", escStart)
		value.WriteByte('\\')
		return
	}
	if esc == '\n' || esc == '\r' {
		// Leave the newline for the unterminated-string path.
		value.WriteByte('\\')
		return
	}
	l.advance()

	switch esc {
	case 'n':
		value.WriteByte('\n')
	case 't':
		value.WriteByte('\t')
	case 'r':
		value.WriteByte('\r')
	case '\\':
		value.WriteByte('\\')
	case '"':
		value.WriteByte('"')
	case '#':
		value.WriteByte('#')
	case '0':
		value.WriteByte(0)
	case '{':
		value.WriteByte('{')
	case '}':
		value.WriteByte('}')
	case 'u':
		l.scanUnicodeEscape(value, meta, escStart)
		return
	default:
		l.warnAt("bad-escape",
			fmt.Sprintf("unrecognized escape sequence '\\%c'", esc), escStart)
		// Keep the sequence literally, backslash included.
		value.WriteByte('\\')
		value.WriteByte(esc)
		return
	}

	meta.EscapeSequences = append(meta.EscapeSequences, l.src[escStart.Offset:l.cur])
}

func (l *Lexer) scanUnicodeEscape(value *strings.Builder, meta *token.StringMeta, escStart token.Position) {
	var hex strings.Builder
	for i := 0; i < 4; i++ {
		ch, ok := l.peek()
		if !ok || !isHexDigit(ch) {
			l.warnAt("bad-escape",
				"\\u escape requires 4 hex digits; keeping text literally", escStart)
			value.WriteString(`\u`)
			value.WriteString(hex.String())
			return
		}
		hex.WriteByte(ch)
		l.advance()
	}

	code, err := strconv.ParseUint(hex.String(), 16, 32)
	if err != nil {
		l.warnAt("bad-escape", "invalid \\u escape; keeping text literally", escStart)
		value.WriteString(`\u` + hex.String())
		return
	}

	value.WriteRune(rune(code))
	meta.EscapeSequences = append(meta.EscapeSequences, l.src[escStart.Offset:l.cur])
}

// scanInterpolation handles a '{' inside a string literal. When the braces
// enclose a syntactically valid identifier the occurrence is recorded and
// the raw text, braces included, is appended to the value. Anything else
// ("{}", "{not valid!}", an unclosed "{") is kept as literal text without a
// diagnostic: the lexer stays permissive and the validator judges the names
// it can actually see.
func (l *Lexer) scanInterpolation(value *strings.Builder, meta *token.StringMeta) {
	// Look ahead for IDENT '}' without consuming.
	n := 1
	ch, ok := l.peekAt(n)
	if !ok || !isIdentStart(ch) {
		l.advance()
		value.WriteByte('{')
		return
	}
	n++
	for {
		ch, ok = l.peekAt(n)
		if !ok {
			break
		}
		if !isIdentPart(ch) {
			break
		}
		n++
	}
	if !ok || ch != '}' {
		l.advance()
		value.WriteByte('{')
		return
	}

	raw := l.src[l.cur : l.cur+n+1]
	name := raw[1 : len(raw)-1]
	meta.Interpolations = append(meta.Interpolations, token.Interpolation{
		Name:   name,
		Offset: value.Len(),
		Raw:    raw,
	})
	for i := 0; i <= n; i++ {
		l.advance()
	}
	value.WriteString(raw)
}

// scanDiscretion scans a **...** or ***...*** discretion marker. The
// enclosed text is an opaque natural-language condition, captured verbatim
// for AI evaluation at execution time and never parsed further.
func (l *Lexer) scanDiscretion(start token.Position) {
	second, ok := l.peekAt(1)
	if !ok || second != '*' {
		l.advance()
		l.errorAt("unexpected-character", "unexpected character '*'", start)
		l.emit(token.ILLEGAL, "*", start)
		return
	}

	third, _ := l.peekAt(2)
	multiline := third == '*'

	if multiline {
		l.advance()
		l.advance()
		l.advance()
		l.scanDiscretionBody(start, "***", true)
		return
	}

	l.advance()
	l.advance()
	l.scanDiscretionBody(start, "**", false)
}

func (l *Lexer) scanDiscretionBody(start token.Position, closer string, multiline bool) {
	bodyStart := l.cur
	for {
		ch, ok := l.peek()
		if !ok {
			l.errorAt("unterminated-discretion", "unterminated discretion marker", start)
			l.emit(token.DISCRETION, strings.TrimSpace(l.src[bodyStart:l.cur]), start)
			return
		}
		if !multiline && (ch == '\n' || ch == '\r') {
			l.errorAt("unterminated-discretion",
				"inline discretion marker must close with '**' on the same line", start)
			l.emit(token.DISCRETION, strings.TrimSpace(l.src[bodyStart:l.cur]), start)
			return
		}
		if ch == '*' && strings.HasPrefix(l.src[l.cur:], closer) {
			body := l.src[bodyStart:l.cur]
			for range closer {
				l.advance()
			}
			l.emit(token.DISCRETION, strings.TrimSpace(body), start)
			return
		}
		l.advance()
	}
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
